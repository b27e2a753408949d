// Package data contains the default [domain.Document] implementation and the
// parser turning maps and structs into documents.
package data

import (
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	goreflect "github.com/goccy/go-reflect"

	"github.com/firelite-db/firelite/domain"
)

// TagName is the struct tag consulted when parsing structs into documents.
const TagName = "firelite"

var timeTyp = goreflect.TypeOf(*new(time.Time))

// M implements domain.Document by using a hashed map. Duplicates replace old
// values.
type M map[string]any

// NewDocument returns a new instance of [domain.Document] built from a map,
// a struct, or nil (empty document).
func NewDocument(in any) (domain.Document, error) {
	if in == nil {
		return M{}, nil
	}
	if doc, ok := in.(domain.Document); ok {
		return doc, nil
	}
	if doc := parseSimple(in); doc != nil {
		return doc, nil
	}

	r := goreflect.ValueNoEscapeOf(in)
	k := r.Kind()
	for k == goreflect.Interface || k == reflect.Pointer {
		if r.IsNil() {
			return M{}, nil
		}
		r = r.Elem()
		k = r.Kind()
	}
	if k != goreflect.Struct && k != goreflect.Map {
		return nil, fmt.Errorf("expected map or struct, got %s", r.Type().String())
	}
	doc, err := parseReflect(r)
	if err != nil {
		return nil, err
	}
	return doc.(domain.Document), nil
}

func parseSimple(v any) domain.Document {
	switch t := v.(type) {
	case M:
		return t
	case map[string]any:
		return parseMap(t)
	case map[string]string:
		return parseMap(t)
	case map[string]bool:
		return parseMap(t)
	case map[string]int:
		return parseMap(t)
	case map[string]int64:
		return parseMap(t)
	case map[string]float64:
		return parseMap(t)
	case map[string]time.Time:
		return parseMap(t)
	default:
		return nil
	}
}

func parseMap[T any](v map[string]T) domain.Document {
	res := make(M, len(v))
	for k, item := range v {
		parsed, err := parseAny(item)
		if err != nil {
			res[k] = item
			continue
		}
		res[k] = parsed
	}
	return res
}

func parseAny(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case domain.Document, domain.Transform, time.Time:
		return t, nil
	case map[string]any:
		return parseMap(t), nil
	case []any:
		res := make([]any, len(t))
		for n, item := range t {
			parsed, err := parseAny(item)
			if err != nil {
				return nil, err
			}
			res[n] = parsed
		}
		return res, nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return t, nil
	default:
		return parseReflect(goreflect.ValueNoEscapeOf(v))
	}
}

func parseReflect(r goreflect.Value) (any, error) {
	for r.Kind() == reflect.Pointer || r.Kind() == goreflect.Interface {
		if r.IsNil() {
			return nil, nil
		}
		r = r.Elem()
	}
	switch r.Kind() {
	case goreflect.Invalid:
		return nil, nil
	case goreflect.Slice:
		if r.IsNil() {
			return nil, nil
		}
		fallthrough
	case goreflect.Array:
		return parseList(r)
	case goreflect.Struct:
		if r.Type() == timeTyp {
			return r.Interface(), nil
		}
		if t, ok := r.Interface().(domain.Transform); ok {
			return t, nil
		}
		return parseStruct(r)
	case goreflect.Map:
		if r.IsNil() {
			return nil, nil
		}
		return parseMapReflect(r)
	default:
		return r.Interface(), nil
	}
}

func parseStruct(r goreflect.Value) (domain.Document, error) {
	typ := r.Type()
	numField := r.NumField()

	res := make(M, numField)

	for n := range numField {
		field := typ.Field(n)
		if field.PkgPath != "" {
			continue
		}

		info, err := parseField(r.Field(n), field)
		if err != nil {
			return nil, err
		}
		if info == nil {
			continue
		}
		res[info.name] = info.value
	}
	return res, nil
}

func parseMapReflect(v goreflect.Value) (domain.Document, error) {
	res := make(M, v.Len())
	for _, k := range v.MapKeys() {
		str := k.String()
		var err error
		if res[str], err = parseReflect(v.MapIndex(k)); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type field struct {
	name  string
	value any
}

func parseField(r goreflect.Value, typ goreflect.StructField) (*field, error) {
	name := typ.Name
	var tagSegments []string
	if tag, ok := typ.Tag.Lookup(TagName); ok {
		if tag == "-" {
			return nil, nil
		}
		tagSegments = strings.Split(tag, ",")
		if tagSegments[0] != "" {
			name = tagSegments[0]
		}
		tagSegments = tagSegments[1:]
	}
	if slices.Contains(tagSegments, "omitempty") && isNullable(typ.Type) && r.IsNil() {
		return nil, nil
	}
	if slices.Contains(tagSegments, "omitzero") && r.IsZero() {
		return nil, nil
	}

	value, err := parseReflect(r)
	if err != nil {
		return nil, err
	}

	return &field{name: name, value: value}, nil
}

func parseList(r goreflect.Value) (any, error) {
	length := r.Len()
	res := make([]any, length)
	for i := range length {
		item, err := parseReflect(r.Index(i))
		if err != nil {
			return nil, err
		}
		res[i] = item
	}
	return res, nil
}

func isNullable(t goreflect.Type) bool {
	k := t.Kind()
	return k == reflect.Pointer ||
		k == reflect.Slice ||
		k == reflect.Map ||
		k == reflect.Interface
}

// Copy returns a deep copy of doc. Nested documents and arrays are copied;
// scalar values are shared.
func Copy(doc domain.Document) domain.Document {
	if doc == nil {
		return nil
	}
	res := make(M, doc.Len())
	for k, v := range doc.Iter() {
		res[k] = copyAny(v)
	}
	return res
}

func copyAny(v any) any {
	switch t := v.(type) {
	case domain.Document:
		return Copy(t)
	case []any:
		res := make([]any, len(t))
		for n, item := range t {
			res[n] = copyAny(item)
		}
		return res
	default:
		return v
	}
}

// Get implements domain.Document.
func (d M) Get(key string) any {
	return d[key]
}

// Set implements domain.Document.
func (d M) Set(key string, value any) {
	d[key] = value
}

// Unset implements domain.Document.
func (d M) Unset(key string) {
	delete(d, key)
}

// D implements domain.Document.
func (d M) D(key string) domain.Document {
	if doc, ok := d[key].(domain.Document); ok {
		return doc
	}
	return nil
}

// Iter implements domain.Document.
func (d M) Iter() iter.Seq2[string, any] {
	return maps.All(d)
}

// Keys implements domain.Document.
func (d M) Keys() iter.Seq[string] {
	return maps.Keys(d)
}

// Values implements domain.Document.
func (d M) Values() iter.Seq[any] {
	return maps.Values(d)
}

// Has implements domain.Document.
func (d M) Has(key string) bool {
	_, has := d[key]
	return has
}

// Len implements domain.Document.
func (d M) Len() int {
	return len(d)
}
