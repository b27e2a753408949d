// Package evaluator contains the default [domain.Evaluator] implementation.
// It applies a constraint set to an in-memory snapshot sequence the way the
// remote backend would: filter, order, cursor, offset/limit, projection and
// distinct, in that sequence.
package evaluator

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/firelite-db/firelite/domain"
	"github.com/firelite-db/firelite/internal/adapter/comparer"
	"github.com/firelite-db/firelite/internal/adapter/data"
	"github.com/firelite-db/firelite/internal/adapter/fieldnavigator"
	"github.com/firelite-db/firelite/internal/adapter/hasher"
)

// Evaluator implements [domain.Evaluator].
type Evaluator struct {
	cmpr   domain.Comparer
	fn     domain.FieldNavigator
	hshr   domain.Hasher
	docFac domain.DocumentFactory
}

// NewEvaluator returns a new implementation of [domain.Evaluator].
func NewEvaluator(options ...domain.EvaluatorOption) domain.Evaluator {
	opts := domain.EvaluatorOptions{
		Comparer:        comparer.NewComparer(),
		Hasher:          hasher.NewHasher(),
		DocumentFactory: data.NewDocument,
	}
	for _, option := range options {
		option(&opts)
	}
	if opts.FieldNavigator == nil {
		opts.FieldNavigator = fieldnavigator.NewFieldNavigator(opts.DocumentFactory)
	}
	return &Evaluator{
		cmpr:   opts.Comparer,
		fn:     opts.FieldNavigator,
		hshr:   opts.Hasher,
		docFac: opts.DocumentFactory,
	}
}

// Evaluate implements [domain.Evaluator]. An empty match is an empty
// sequence, never an error.
func (e *Evaluator) Evaluate(docs []domain.Snapshot, set domain.ConstraintSet) ([]domain.Snapshot, error) {
	res := make([]domain.Snapshot, 0, len(docs))
	for _, snap := range docs {
		matches, err := e.Match(snap.Data(), set.Constraints)
		if err != nil {
			return nil, fmt.Errorf("matching document %s/%s: %w", snap.Collection, snap.ID, err)
		}
		if matches {
			res = append(res, snap)
		}
	}

	if err := e.sort(res, set.Orders); err != nil {
		return nil, fmt.Errorf("sorting: %w", err)
	}

	res = e.applyCursor(res, set.Cursor)
	res = e.skipAndLimit(res, set.Offset, set.Limit)

	if len(set.Select) > 0 {
		projected, err := e.project(res, set.Select)
		if err != nil {
			return nil, fmt.Errorf("projecting: %w", err)
		}
		res = projected
	}

	if set.Distinct {
		deduped, err := e.distinct(res)
		if err != nil {
			return nil, fmt.Errorf("deduplicating: %w", err)
		}
		res = deduped
	}

	return res, nil
}

// Match folds the constraints over the document left to right, honoring each
// constraint's connector. An empty constraint list matches everything.
func (e *Evaluator) Match(doc domain.Document, constraints []domain.Constraint) (bool, error) {
	res := true
	for n, c := range constraints {
		matches, err := e.evalConstraint(doc, c)
		if err != nil {
			return false, err
		}
		if n == 0 {
			res = matches
			continue
		}
		if c.Connector() == domain.Or {
			res = res || matches
		} else {
			res = res && matches
		}
	}
	return res, nil
}

func (e *Evaluator) evalConstraint(doc domain.Document, c domain.Constraint) (bool, error) {
	switch t := c.(type) {
	case domain.BasicConstraint:
		return e.evalBasic(doc, t)
	case domain.MembershipConstraint:
		return e.evalMembership(doc, t)
	case domain.NullConstraint:
		return e.evalNull(doc, t)
	case domain.NestedConstraint:
		return e.Match(doc, t.Constraints)
	default:
		return false, domain.ErrUnknownConstraint
	}
}

func (e *Evaluator) evalBasic(doc domain.Document, c domain.BasicConstraint) (bool, error) {
	field, err := e.resolve(doc, c.Field)
	if err != nil {
		return false, err
	}
	value, defined := field.Get()

	switch c.Operator {
	case domain.OpEqual:
		if !defined {
			return false, nil
		}
		comp, err := e.cmpr.Compare(value, c.Value)
		return comp == 0, err

	case domain.OpNotEqual:
		// an absent field differs from every concrete value
		if !defined {
			return true, nil
		}
		comp, err := e.cmpr.Compare(value, c.Value)
		return comp != 0, err

	case domain.OpLess, domain.OpLessOrEqual, domain.OpGreater, domain.OpGreaterOrEqual:
		if !defined || !e.cmpr.Comparable(value, c.Value) {
			return false, nil
		}
		comp, err := e.cmpr.Compare(value, c.Value)
		if err != nil {
			return false, err
		}
		switch c.Operator {
		case domain.OpLess:
			return comp < 0, nil
		case domain.OpLessOrEqual:
			return comp <= 0, nil
		case domain.OpGreater:
			return comp > 0, nil
		default:
			return comp >= 0, nil
		}

	case domain.OpIn, domain.OpNotIn:
		values, ok := c.Value.([]any)
		if !ok {
			return false, fmt.Errorf("%q operator requires an array value", c.Operator)
		}
		return e.evalMembership(doc, domain.MembershipConstraint{
			Field:  c.Field,
			Values: values,
			Negate: c.Operator == domain.OpNotIn,
		})

	case domain.OpArrayContains:
		if !defined {
			return false, nil
		}
		arr, ok := value.([]any)
		if !ok {
			return false, nil
		}
		return e.member(c.Value, arr)

	case domain.OpArrayContainsAny:
		if !defined {
			return false, nil
		}
		arr, ok := value.([]any)
		if !ok {
			return false, nil
		}
		wanted, ok := c.Value.([]any)
		if !ok {
			return false, fmt.Errorf("%q operator requires an array value", c.Operator)
		}
		for _, w := range wanted {
			found, err := e.member(w, arr)
			if err != nil || found {
				return found, err
			}
		}
		return false, nil

	case domain.OpLike:
		if !defined {
			return false, nil
		}
		str, ok := value.(string)
		if !ok {
			return false, nil
		}
		pattern, ok := c.Value.(string)
		if !ok {
			return false, fmt.Errorf("%q operator requires a string value", c.Operator)
		}
		needle := strings.ToLower(strings.ReplaceAll(pattern, "%", ""))
		return strings.Contains(strings.ToLower(str), needle), nil

	default:
		return false, fmt.Errorf("unknown operator %q", c.Operator)
	}
}

func (e *Evaluator) evalMembership(doc domain.Document, c domain.MembershipConstraint) (bool, error) {
	field, err := e.resolve(doc, c.Field)
	if err != nil {
		return false, err
	}
	value, defined := field.Get()
	if !defined {
		return false, nil
	}
	found, err := e.member(value, c.Values)
	if err != nil {
		return false, err
	}
	if c.Negate {
		return !found, nil
	}
	return found, nil
}

func (e *Evaluator) evalNull(doc domain.Document, c domain.NullConstraint) (bool, error) {
	field, err := e.resolve(doc, c.Field)
	if err != nil {
		return false, err
	}
	value, defined := field.Get()
	isNull := !defined || value == nil
	if c.Negate {
		return !isNull, nil
	}
	return isNull, nil
}

func (e *Evaluator) member(value any, values []any) (bool, error) {
	for _, v := range values {
		comp, err := e.cmpr.Compare(value, v)
		if err != nil {
			return false, err
		}
		if comp == 0 {
			return true, nil
		}
	}
	return false, nil
}

func (e *Evaluator) resolve(doc domain.Document, field string) (domain.GetSetter, error) {
	addr, err := e.fn.GetAddress(field)
	if err != nil {
		return nil, err
	}
	return e.fn.GetField(doc, addr...)
}

// sort orders snapshots by the given criteria, absent and null values
// first; full ties fall back to document id ascending so evaluation stays
// deterministic.
func (e *Evaluator) sort(docs []domain.Snapshot, orders []domain.OrderSpec) error {
	var err error
	slices.SortStableFunc(docs, func(a, b domain.Snapshot) int {
		if err != nil {
			return 0
		}
		for _, order := range orders {
			comp, cErr := e.compareByCriterion(a, b, order)
			if cErr != nil {
				err = cErr
				return 0
			}
			if comp != 0 {
				return comp
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return err
}

func (e *Evaluator) compareByCriterion(a, b domain.Snapshot, order domain.OrderSpec) (int, error) {
	fieldA, err := e.resolve(a.Data(), order.Field)
	if err != nil {
		return 0, err
	}
	fieldB, err := e.resolve(b.Data(), order.Field)
	if err != nil {
		return 0, err
	}
	comp, err := e.cmpr.Compare(fieldA, fieldB)
	if err != nil {
		return 0, err
	}
	if order.Direction == domain.Descending {
		comp = -comp
	}
	return comp, nil
}

// applyCursor cuts the ordered sequence at the anchor document. An anchor id
// absent from the sequence leaves the sequence untouched.
func (e *Evaluator) applyCursor(docs []domain.Snapshot, cursor *domain.CursorSpec) []domain.Snapshot {
	if cursor == nil {
		return docs
	}
	at := slices.IndexFunc(docs, func(s domain.Snapshot) bool {
		return s.ID == cursor.DocumentID
	})
	if at < 0 {
		return docs
	}
	if cursor.Before {
		return docs[:at]
	}
	return docs[at+1:]
}

func (e *Evaluator) skipAndLimit(docs []domain.Snapshot, offset, limit int64) []domain.Snapshot {
	length := int64(len(docs))

	offset = max(offset, 0)
	offset = min(offset, length)
	docs = docs[offset:]

	if limit > 0 && limit < int64(len(docs)) {
		docs = docs[:limit]
	}
	return docs
}

func (e *Evaluator) project(docs []domain.Snapshot, fields []string) ([]domain.Snapshot, error) {
	res := make([]domain.Snapshot, len(docs))
	for n, snap := range docs {
		projected, err := e.docFac(nil)
		if err != nil {
			return nil, err
		}
		for _, field := range fields {
			addr, err := e.fn.GetAddress(field)
			if err != nil {
				return nil, err
			}
			src, err := e.fn.GetField(snap.Data(), addr...)
			if err != nil {
				return nil, err
			}
			value, defined := src.Get()
			if !defined {
				continue
			}
			dst, err := e.fn.EnsureField(projected, addr...)
			if err != nil {
				return nil, err
			}
			dst.Set(value)
		}
		res[n] = snap.WithData(projected)
	}
	return res, nil
}

// distinct keeps the first occurrence of each payload, comparing by hash
// bucket and then by full-value equality.
func (e *Evaluator) distinct(docs []domain.Snapshot) ([]domain.Snapshot, error) {
	res := make([]domain.Snapshot, 0, len(docs))
	buckets := make(map[uint64][]domain.Document)

Outer:
	for _, snap := range docs {
		h, err := e.hshr.Hash(snap.Data())
		if err != nil {
			return nil, err
		}
		for _, seen := range buckets[h] {
			comp, err := e.cmpr.Compare(snap.Data(), seen)
			if err != nil {
				return nil, err
			}
			if comp == 0 {
				continue Outer
			}
		}
		buckets[h] = append(buckets[h], snap.Data())
		res = append(res, snap)
	}
	return res, nil
}
