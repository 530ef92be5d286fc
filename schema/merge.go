package schema

import (
	stderrors "errors"
	"fmt"

	"github.com/c360/streamcatalog/catalog"
	"github.com/c360/streamcatalog/errors"
	"github.com/c360/streamcatalog/registry"
	"github.com/c360/streamcatalog/resolver"
)

// Merged is the combined field view of a topic's key and value schemas.
// KeyOK and ValueOK report which sides contributed a parseable Avro schema.
type Merged struct {
	Fields  []catalog.SchemaField
	KeyOK   bool
	ValueOK bool
}

// Empty reports whether neither side produced fields.
func (m Merged) Empty() bool {
	return !m.KeyOK && !m.ValueOK
}

// Merge flattens both sides of a resolved pair into a single ordered field
// list, key fields first. Sides are flattened independently: a side without a
// schema is skipped, and a side whose schema fails to parse or is not Avro
// contributes zero fields while the other side's fields are kept. The joined
// error carries every failing side for the caller to report.
func Merge(pair resolver.Pair) (Merged, error) {
	var merged Merged
	var errs []error

	keyFields, keyOK, err := flattenSide(pair.Key.Schema, catalog.OriginKey)
	if err != nil {
		errs = append(errs, err)
	}
	valueFields, valueOK, err := flattenSide(pair.Value.Schema, catalog.OriginValue)
	if err != nil {
		errs = append(errs, err)
	}

	merged.KeyOK = keyOK
	merged.ValueOK = valueOK
	merged.Fields = append(keyFields, valueFields...)
	return merged, stderrors.Join(errs...)
}

func flattenSide(rs *registry.RegisteredSchema, origin catalog.FieldOrigin) ([]catalog.SchemaField, bool, error) {
	if rs == nil {
		return nil, false, nil
	}
	if rs.Format != registry.FormatAvro {
		return nil, false, unsupportedFormat(rs)
	}

	parsed, err := Parse(rs.Definition)
	if err != nil {
		return nil, false, fmt.Errorf("subject %s: %w", rs.Subject, err)
	}
	return Flatten(parsed, origin), true, nil
}

func unsupportedFormat(rs *registry.RegisteredSchema) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: subject %s has %s schema", errors.ErrUnsupportedSchemaFormat, rs.Subject, rs.Format),
		"schema", "Merge", "flatten schema")
}

