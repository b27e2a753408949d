// Package transform contains the default [domain.TransformEngine]
// implementation. It resolves field-transform directives against stored
// state at commit time, so a whole commit observes a single timestamp.
package transform

import (
	"time"

	"github.com/firelite-db/firelite/domain"
	"github.com/firelite-db/firelite/internal/adapter/comparer"
	"github.com/firelite-db/firelite/internal/adapter/data"
	"github.com/firelite-db/firelite/internal/adapter/fieldnavigator"
)

// Engine implements [domain.TransformEngine].
type Engine struct {
	cmpr   domain.Comparer
	fn     domain.FieldNavigator
	docFac domain.DocumentFactory
}

// NewEngine returns a new implementation of [domain.TransformEngine].
func NewEngine(options ...domain.TransformOption) domain.TransformEngine {
	opts := domain.TransformOptions{
		Comparer:        comparer.NewComparer(),
		DocumentFactory: data.NewDocument,
	}
	for _, option := range options {
		option(&opts)
	}
	if opts.FieldNavigator == nil {
		opts.FieldNavigator = fieldnavigator.NewFieldNavigator(opts.DocumentFactory)
	}
	return &Engine{
		cmpr:   opts.Comparer,
		fn:     opts.FieldNavigator,
		docFac: opts.DocumentFactory,
	}
}

// Resolve implements [domain.TransformEngine].
func (e *Engine) Resolve(current domain.Getter, t domain.Transform, commit time.Time) (any, bool, error) {
	switch tr := t.(type) {
	case domain.ServerTimestamp:
		return commit, false, nil

	case domain.Increment:
		// a missing or non-numeric current value counts as zero
		base := 0.0
		if current != nil {
			if value, defined := current.Get(); defined {
				if f, ok := toFloat64(value); ok {
					base = f
				}
			}
		}
		return base + tr.Delta, false, nil

	case domain.ArrayUnion:
		arr := e.currentArray(current)
		for _, el := range tr.Elements {
			found, err := e.contains(arr, el)
			if err != nil {
				return nil, false, err
			}
			if !found {
				arr = append(arr, el)
			}
		}
		return arr, false, nil

	case domain.ArrayRemove:
		arr := e.currentArray(current)
		res := make([]any, 0, len(arr))
		for _, el := range arr {
			found, err := e.contains(tr.Elements, el)
			if err != nil {
				return nil, false, err
			}
			if !found {
				res = append(res, el)
			}
		}
		return res, false, nil

	case domain.DeleteField:
		return nil, true, nil

	default:
		return nil, false, &domain.ConfigurationError{Detail: "unknown transform"}
	}
}

// Apply implements [domain.TransformEngine]. A nil result means the document
// is deleted.
func (e *Engine) Apply(current domain.Document, op domain.Operation, commit time.Time) (domain.Document, error) {
	switch op.Kind {
	case domain.KindDelete:
		return nil, nil
	case domain.KindCreate, domain.KindSet, domain.KindUpdate:
	default:
		return nil, &domain.ConfigurationError{Detail: "unknown operation kind " + string(op.Kind)}
	}

	base, err := e.base(current, op)
	if err != nil {
		return nil, err
	}
	payload, err := e.payload(op)
	if err != nil {
		return nil, err
	}

	// update data keys are dotted field paths; create and set keys are
	// literal field names nesting through subdocuments
	dotted := op.Kind == domain.KindUpdate
	if err := e.merge(base, payload, nil, dotted, commit); err != nil {
		return nil, err
	}
	return base, nil
}

// payload normalizes the operation data into a document. Raw maps and tagged
// structs go through the document factory.
func (e *Engine) payload(op domain.Operation) (domain.Document, error) {
	if op.Data == nil {
		return nil, nil
	}
	if doc, ok := op.Data.(domain.Document); ok {
		return doc, nil
	}
	return e.docFac(op.Data)
}

func (e *Engine) base(current domain.Document, op domain.Operation) (domain.Document, error) {
	fresh := op.Kind == domain.KindCreate ||
		(op.Kind == domain.KindSet && !op.Options.Merge)
	if fresh || current == nil {
		return e.docFac(nil)
	}
	return data.Copy(current), nil
}

func (e *Engine) merge(base domain.Document, payload domain.Document, prefix []string, dotted bool, commit time.Time) error {
	if payload == nil {
		return nil
	}
	for key, value := range payload.Iter() {
		addr := prefix
		if dotted {
			parts, err := e.fn.GetAddress(key)
			if err != nil {
				return err
			}
			addr = append(addr[:len(addr):len(addr)], parts...)
		} else {
			addr = append(addr[:len(addr):len(addr)], key)
		}

		switch v := value.(type) {
		case domain.Transform:
			if err := e.applyTransform(base, addr, v, commit); err != nil {
				return err
			}
		case domain.Document:
			if err := e.merge(base, v, addr, false, commit); err != nil {
				return err
			}
		default:
			gs, err := e.fn.EnsureField(base, addr...)
			if err != nil {
				return err
			}
			gs.Set(value)
		}
	}
	return nil
}

func (e *Engine) applyTransform(base domain.Document, addr []string, t domain.Transform, commit time.Time) error {
	current, err := e.fn.GetField(base, addr...)
	if err != nil {
		return err
	}

	value, removed, err := e.Resolve(current, t, commit)
	if err != nil {
		return err
	}
	if removed {
		if _, defined := current.Get(); defined {
			current.Unset()
		}
		return nil
	}

	gs, err := e.fn.EnsureField(base, addr...)
	if err != nil {
		return err
	}
	gs.Set(value)
	return nil
}

// currentArray reads the stored value as an array; missing or non-array
// values count as empty.
func (e *Engine) currentArray(current domain.Getter) []any {
	if current == nil {
		return nil
	}
	value, defined := current.Get()
	if !defined {
		return nil
	}
	arr, ok := value.([]any)
	if !ok {
		return nil
	}
	return append([]any(nil), arr...)
}

func (e *Engine) contains(arr []any, el any) (bool, error) {
	for _, v := range arr {
		comp, err := e.cmpr.Compare(v, el)
		if err != nil {
			return false, err
		}
		if comp == 0 {
			return true, nil
		}
	}
	return false, nil
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
