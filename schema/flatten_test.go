package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/streamcatalog/catalog"
	"github.com/c360/streamcatalog/errors"
	"github.com/c360/streamcatalog/registry"
	"github.com/c360/streamcatalog/resolver"
)

func mustFlatten(t *testing.T, definition string, origin catalog.FieldOrigin) []catalog.SchemaField {
	t.Helper()
	parsed, err := Parse(definition)
	require.NoError(t, err)
	return Flatten(parsed, origin)
}

func paths(fields []catalog.SchemaField) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Path
	}
	return out
}

func TestFlattenFlatRecord(t *testing.T) {
	fields := mustFlatten(t, `{
		"type": "record", "name": "Order", "namespace": "com.acme",
		"fields": [
			{"name": "id", "type": "string"},
			{"name": "amount", "type": "double"},
			{"name": "count", "type": "long"}
		]
	}`, catalog.OriginValue)

	require.Len(t, fields, 3)
	assert.Equal(t, []string{"id", "amount", "count"}, paths(fields))
	assert.Equal(t, "string", fields[0].Type)
	assert.Equal(t, "double", fields[1].Type)
	assert.Equal(t, catalog.OriginValue, fields[0].Origin)
	assert.False(t, fields[0].Nullable)
}

func TestFlattenNestedRecord(t *testing.T) {
	fields := mustFlatten(t, `{
		"type": "record", "name": "Order", "namespace": "com.acme",
		"fields": [
			{"name": "id", "type": "string"},
			{"name": "customer", "type": {
				"type": "record", "name": "Customer",
				"fields": [
					{"name": "name", "type": "string"},
					{"name": "email", "type": "string"}
				]
			}}
		]
	}`, catalog.OriginValue)

	assert.Equal(t, []string{"id", "customer.name", "customer.email"}, paths(fields))
}

func TestFlattenNullableUnion(t *testing.T) {
	fields := mustFlatten(t, `{
		"type": "record", "name": "Order", "namespace": "com.acme",
		"fields": [
			{"name": "note", "type": ["null", "string"], "default": null}
		]
	}`, catalog.OriginValue)

	require.Len(t, fields, 1)
	assert.Equal(t, "note", fields[0].Path)
	assert.Equal(t, "string", fields[0].Type)
	assert.True(t, fields[0].Nullable)
}

func TestFlattenNonNullableUnion(t *testing.T) {
	fields := mustFlatten(t, `{
		"type": "record", "name": "Order", "namespace": "com.acme",
		"fields": [
			{"name": "id", "type": ["string", "long"]}
		]
	}`, catalog.OriginValue)

	require.Len(t, fields, 1)
	assert.Equal(t, "union", fields[0].Type)
	assert.Equal(t, "union[string,long]", fields[0].NativeType)
	assert.False(t, fields[0].Nullable)
}

func TestFlattenPrimitiveArrayAndMap(t *testing.T) {
	fields := mustFlatten(t, `{
		"type": "record", "name": "Order", "namespace": "com.acme",
		"fields": [
			{"name": "tags", "type": {"type": "array", "items": "string"}},
			{"name": "attrs", "type": {"type": "map", "values": "long"}}
		]
	}`, catalog.OriginValue)

	require.Len(t, fields, 2)
	assert.Equal(t, "array", fields[0].Type)
	assert.Equal(t, "array<string>", fields[0].NativeType)
	assert.Equal(t, "map", fields[1].Type)
	assert.Equal(t, "map<long>", fields[1].NativeType)
}

func TestFlattenArrayOfRecords(t *testing.T) {
	fields := mustFlatten(t, `{
		"type": "record", "name": "Order", "namespace": "com.acme",
		"fields": [
			{"name": "lines", "type": {"type": "array", "items": {
				"type": "record", "name": "Line",
				"fields": [
					{"name": "sku", "type": "string"},
					{"name": "qty", "type": "int"}
				]
			}}}
		]
	}`, catalog.OriginValue)

	assert.Equal(t, []string{"lines.sku", "lines.qty"}, paths(fields))
}

func TestFlattenRecursiveRecord(t *testing.T) {
	fields := mustFlatten(t, `{
		"type": "record", "name": "Node", "namespace": "com.acme",
		"fields": [
			{"name": "value", "type": "string"},
			{"name": "next", "type": ["null", "Node"], "default": null}
		]
	}`, catalog.OriginValue)

	require.Len(t, fields, 2)
	assert.Equal(t, "value", fields[0].Path)
	assert.Equal(t, "next", fields[1].Path)
	assert.Equal(t, "record", fields[1].Type)
	assert.Equal(t, "com.acme.Node", fields[1].NativeType)
	assert.True(t, fields[1].Nullable)
}

func TestFlattenEnumAndFixed(t *testing.T) {
	fields := mustFlatten(t, `{
		"type": "record", "name": "Order", "namespace": "com.acme",
		"fields": [
			{"name": "status", "type": {"type": "enum", "name": "Status", "symbols": ["NEW", "PAID"]}},
			{"name": "digest", "type": {"type": "fixed", "name": "Digest", "size": 16}}
		]
	}`, catalog.OriginValue)

	require.Len(t, fields, 2)
	assert.Equal(t, "enum", fields[0].Type)
	assert.Equal(t, "com.acme.Status", fields[0].NativeType)
	assert.Equal(t, "fixed", fields[1].Type)
	assert.Equal(t, "com.acme.Digest", fields[1].NativeType)
}

func TestFlattenPrimitiveRoot(t *testing.T) {
	fields := mustFlatten(t, `"string"`, catalog.OriginKey)

	require.Len(t, fields, 1)
	assert.Equal(t, "", fields[0].Path)
	assert.Equal(t, "string", fields[0].Type)
	assert.Equal(t, catalog.OriginKey, fields[0].Origin)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse(`{"type": "recccord"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSchemaParse)
	assert.True(t, errors.IsInvalid(err))
}

func TestMergeKeyFieldsFirst(t *testing.T) {
	pair := resolver.Pair{
		Topic: "orders",
		Key: resolver.Resolution{Schema: &registry.RegisteredSchema{
			Subject: "orders-key", Format: registry.FormatAvro, Definition: `"string"`,
		}},
		Value: resolver.Resolution{Schema: &registry.RegisteredSchema{
			Subject: "orders-value", Format: registry.FormatAvro,
			Definition: `{"type": "record", "name": "Order", "fields": [{"name": "id", "type": "string"}]}`,
		}},
	}

	merged, err := Merge(pair)
	require.NoError(t, err)
	assert.True(t, merged.KeyOK)
	assert.True(t, merged.ValueOK)
	require.Len(t, merged.Fields, 2)
	assert.Equal(t, catalog.OriginKey, merged.Fields[0].Origin)
	assert.Equal(t, catalog.OriginValue, merged.Fields[1].Origin)
}

func TestMergeMissingSides(t *testing.T) {
	merged, err := Merge(resolver.Pair{Topic: "orders"})
	require.NoError(t, err)
	assert.True(t, merged.Empty())
	assert.Empty(t, merged.Fields)
}

func TestMergeUnsupportedFormat(t *testing.T) {
	pair := resolver.Pair{
		Topic: "orders",
		Value: resolver.Resolution{Schema: &registry.RegisteredSchema{
			Subject: "orders-value", Format: registry.FormatProtobuf, Definition: "message Order {}",
		}},
	}

	merged, err := Merge(pair)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnsupportedSchemaFormat)
	assert.True(t, merged.Empty())
}

func TestMergeKeepsParseableSide(t *testing.T) {
	pair := resolver.Pair{
		Topic: "orders",
		Key: resolver.Resolution{Schema: &registry.RegisteredSchema{
			Subject: "orders-key", Format: registry.FormatProtobuf, Definition: "message OrderKey {}",
		}},
		Value: resolver.Resolution{Schema: &registry.RegisteredSchema{
			Subject: "orders-value", Format: registry.FormatAvro,
			Definition: `{"type": "record", "name": "Order", "fields": [{"name": "id", "type": "string"}]}`,
		}},
	}

	merged, err := Merge(pair)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnsupportedSchemaFormat)
	assert.False(t, merged.KeyOK)
	assert.True(t, merged.ValueOK)
	require.Len(t, merged.Fields, 1)
	assert.Equal(t, catalog.OriginValue, merged.Fields[0].Origin)
}

func TestMergeUnparseableSideKeepsOther(t *testing.T) {
	pair := resolver.Pair{
		Topic: "orders",
		Key: resolver.Resolution{Schema: &registry.RegisteredSchema{
			Subject: "orders-key", Format: registry.FormatAvro, Definition: `"string"`,
		}},
		Value: resolver.Resolution{Schema: &registry.RegisteredSchema{
			Subject: "orders-value", Format: registry.FormatAvro, Definition: "this is not avro",
		}},
	}

	merged, err := Merge(pair)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSchemaParse)
	assert.True(t, merged.KeyOK)
	assert.False(t, merged.ValueOK)
	require.Len(t, merged.Fields, 1)
	assert.Equal(t, catalog.OriginKey, merged.Fields[0].Origin)
}
