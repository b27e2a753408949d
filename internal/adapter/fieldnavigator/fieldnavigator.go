// Package fieldnavigator contains the default [domain.FieldNavigator]
// implementation, resolving dotted field paths over documents and arrays.
package fieldnavigator

import (
	"strconv"
	"strings"

	"github.com/firelite-db/firelite/domain"
)

// FieldNavigator implements [domain.FieldNavigator].
type FieldNavigator struct {
	docFac domain.DocumentFactory
}

// NewFieldNavigator returns a new instance of [domain.FieldNavigator].
func NewFieldNavigator(docFac domain.DocumentFactory) domain.FieldNavigator {
	return &FieldNavigator{
		docFac: docFac,
	}
}

// GetAddress implements [domain.FieldNavigator].
func (fn *FieldNavigator) GetAddress(field string) ([]string, error) {
	return strings.Split(field, "."), nil
}

// GetField implements [domain.FieldNavigator]. A path whose intermediate
// parts are missing, point inside a scalar, or index an array out of bounds
// resolves to an absent position.
func (fn *FieldNavigator) GetField(obj any, addr ...string) (domain.GetSetter, error) {
	return fn.getField(obj, addr, false)
}

// EnsureField implements [domain.FieldNavigator]. Missing intermediate
// documents are created so the returned position is settable; the leaf key
// itself is left unset until the caller sets it.
func (fn *FieldNavigator) EnsureField(obj any, addr ...string) (domain.GetSetter, error) {
	return fn.getField(obj, addr, true)
}

func (fn *FieldNavigator) getField(obj any, addr []string, ensure bool) (domain.GetSetter, error) {
	if obj == nil || len(addr) == 0 {
		return NewGetSetterEmpty(), nil
	}

	curr := obj
	for idx, part := range addr {
		last := idx == len(addr)-1

		switch t := curr.(type) {
		case domain.Document:
			if last {
				return NewGetSetterWithDoc(t, part), nil
			}
			if !t.Has(part) {
				if !ensure {
					return NewGetSetterEmpty(), nil
				}
				newDoc, err := fn.docFac(nil)
				if err != nil {
					return nil, err
				}
				t.Set(part, newDoc)
			}
			curr = t.Get(part)

		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(t) {
				return NewGetSetterEmpty(), nil
			}
			if last {
				return NewGetSetterWithArrayIndex(t, i), nil
			}
			curr = t[i]

		default:
			// a path part inside a scalar is unreachable
			return NewGetSetterEmpty(), nil
		}
	}

	return NewGetSetterEmpty(), nil
}
