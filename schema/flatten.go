// Package schema flattens Avro schema definitions into ordered field lists
// suitable for a dataset schema aspect. Nested records become dotted paths;
// key and value schemas merge into one list with key fields first.
package schema

import (
	"fmt"

	"github.com/hamba/avro/v2"

	"github.com/c360/streamcatalog/catalog"
	"github.com/c360/streamcatalog/errors"
)

// Parse parses a raw Avro schema definition.
func Parse(definition string) (avro.Schema, error) {
	s, err := avro.Parse(definition)
	if err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrSchemaParse, err), "schema", "Parse", "parse avro definition")
	}
	return s, nil
}

// Flatten walks a parsed schema and returns its fields in declaration
// order. A non-record root yields a single field with an empty path.
func Flatten(s avro.Schema, origin catalog.FieldOrigin) []catalog.SchemaField {
	w := &walker{origin: origin, seen: make(map[string]struct{})}
	w.walk("", s, false)
	return w.fields
}

type walker struct {
	origin catalog.FieldOrigin
	seen   map[string]struct{}
	fields []catalog.SchemaField
}

func (w *walker) walk(path string, s avro.Schema, nullable bool) {
	switch sch := s.(type) {
	case *avro.RefSchema:
		w.walk(path, sch.Schema(), nullable)

	case *avro.UnionSchema:
		if inner, ok := nullableInner(sch); ok {
			w.walk(path, inner, true)
			return
		}
		w.leaf(path, "union", unionNative(sch), nullable)

	case *avro.RecordSchema:
		// Recursive record types terminate at the repeated reference.
		if _, ok := w.seen[sch.FullName()]; ok {
			w.leaf(path, "record", sch.FullName(), nullable)
			return
		}
		w.seen[sch.FullName()] = struct{}{}
		for _, f := range sch.Fields() {
			w.walk(childPath(path, f.Name()), f.Type(), false)
		}
		delete(w.seen, sch.FullName())

	case *avro.ArraySchema:
		if isComplex(sch.Items()) {
			w.walk(path, sch.Items(), nullable)
			return
		}
		w.leaf(path, "array", fmt.Sprintf("array<%s>", nativeType(sch.Items())), nullable)

	case *avro.MapSchema:
		if isComplex(sch.Values()) {
			w.walk(path, sch.Values(), nullable)
			return
		}
		w.leaf(path, "map", fmt.Sprintf("map<%s>", nativeType(sch.Values())), nullable)

	default:
		w.leaf(path, typeName(s), nativeType(s), nullable)
	}
}

func (w *walker) leaf(path, typ, native string, nullable bool) {
	w.fields = append(w.fields, catalog.SchemaField{
		Path:       path,
		Type:       typ,
		NativeType: native,
		Origin:     w.origin,
		Nullable:   nullable,
	})
}

func childPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// nullableInner unwraps a two-branch union containing null, the common
// "optional field" encoding.
func nullableInner(u *avro.UnionSchema) (avro.Schema, bool) {
	if !u.Nullable() {
		return nil, false
	}
	for _, t := range u.Types() {
		if t.Type() != avro.Null {
			return t, true
		}
	}
	return nil, false
}

func isComplex(s avro.Schema) bool {
	if ref, ok := s.(*avro.RefSchema); ok {
		s = ref.Schema()
	}
	switch s.Type() {
	case avro.Record, avro.Array, avro.Map:
		return true
	case avro.Union:
		u := s.(*avro.UnionSchema)
		if inner, ok := nullableInner(u); ok {
			return isComplex(inner)
		}
		return false
	default:
		return false
	}
}

func typeName(s avro.Schema) string {
	switch s.(type) {
	case *avro.EnumSchema:
		return "enum"
	case *avro.FixedSchema:
		return "fixed"
	default:
		return string(s.Type())
	}
}

func nativeType(s avro.Schema) string {
	switch sch := s.(type) {
	case *avro.RefSchema:
		return nativeType(sch.Schema())
	case *avro.RecordSchema:
		return sch.FullName()
	case *avro.EnumSchema:
		return sch.FullName()
	case *avro.FixedSchema:
		return sch.FullName()
	case *avro.UnionSchema:
		return unionNative(sch)
	default:
		return string(s.Type())
	}
}

func unionNative(u *avro.UnionSchema) string {
	native := "union["
	for i, t := range u.Types() {
		if i > 0 {
			native += ","
		}
		native += nativeType(t)
	}
	return native + "]"
}
