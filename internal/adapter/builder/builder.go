// Package builder contains the fluent constraint builder. Builders
// accumulate filter, order, pagination and projection state and never fail;
// every method returns the builder for chaining.
package builder

import (
	"strings"

	"github.com/firelite-db/firelite/domain"
)

// Builder accumulates a [domain.ConstraintSet]. The zero value is unusable;
// use [NewBuilder]. Accumulation is purely additive: constraints cannot be
// removed once added.
type Builder struct {
	set domain.ConstraintSet
}

// NewBuilder returns an empty constraint builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Where adds an and-joined basic constraint.
func (b *Builder) Where(field string, op domain.Operator, value any) *Builder {
	return b.add(domain.BasicConstraint{
		Field:    field,
		Operator: op,
		Value:    value,
		Boolean:  domain.And,
	})
}

// OrWhere adds a basic constraint OR'd with everything accumulated before
// it. It is not nested automatically; use [Builder.WhereNested] for grouping.
func (b *Builder) OrWhere(field string, op domain.Operator, value any) *Builder {
	return b.add(domain.BasicConstraint{
		Field:    field,
		Operator: op,
		Value:    value,
		Boolean:  domain.Or,
	})
}

// WhereIn adds a constraint requiring the field value to be one of values.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	return b.add(domain.MembershipConstraint{
		Field:   field,
		Values:  values,
		Boolean: domain.And,
	})
}

// WhereNotIn adds a constraint requiring the field value to be none of
// values.
func (b *Builder) WhereNotIn(field string, values []any) *Builder {
	return b.add(domain.MembershipConstraint{
		Field:   field,
		Values:  values,
		Negate:  true,
		Boolean: domain.And,
	})
}

// WhereNull adds a constraint matching documents whose field is null or
// absent.
func (b *Builder) WhereNull(field string) *Builder {
	return b.add(domain.NullConstraint{
		Field:   field,
		Boolean: domain.And,
	})
}

// WhereNotNull adds a constraint matching documents whose field is defined
// and not null.
func (b *Builder) WhereNotNull(field string) *Builder {
	return b.add(domain.NullConstraint{
		Field:   field,
		Negate:  true,
		Boolean: domain.And,
	})
}

// WhereBetween adds the pair of constraints field >= low AND field <= high.
func (b *Builder) WhereBetween(field string, low, high any) *Builder {
	return b.
		Where(field, domain.OpGreaterOrEqual, low).
		Where(field, domain.OpLessOrEqual, high)
}

// WhereNested passes a sub-builder to fn and stores its constraints as one
// and-joined nested group.
func (b *Builder) WhereNested(fn func(*Builder)) *Builder {
	return b.nested(fn, domain.And)
}

// OrWhereNested passes a sub-builder to fn and stores its constraints as one
// nested group OR'd with everything accumulated before it.
func (b *Builder) OrWhereNested(fn func(*Builder)) *Builder {
	return b.nested(fn, domain.Or)
}

func (b *Builder) nested(fn func(*Builder), boolean domain.Boolean) *Builder {
	sub := NewBuilder()
	fn(sub)
	return b.add(domain.NestedConstraint{
		Constraints: sub.set.Constraints,
		Boolean:     boolean,
	})
}

// OrderBy appends a sort criterion. Direction is case-insensitive; anything
// other than "desc" sorts ascending.
func (b *Builder) OrderBy(field string, direction domain.Direction) *Builder {
	dir := domain.Ascending
	if strings.EqualFold(string(direction), string(domain.Descending)) {
		dir = domain.Descending
	}
	b.set.Orders = append(b.set.Orders, domain.OrderSpec{Field: field, Direction: dir})
	return b
}

// Limit caps the number of returned documents.
func (b *Builder) Limit(n int64) *Builder {
	b.set.Limit = n
	return b
}

// Offset skips the first n documents of the ordered sequence.
func (b *Builder) Offset(n int64) *Builder {
	b.set.Offset = n
	return b
}

// StartAfter anchors the result window strictly after the document with the
// given id in the ordered sequence.
func (b *Builder) StartAfter(documentID string) *Builder {
	b.set.Cursor = &domain.CursorSpec{DocumentID: documentID}
	return b
}

// StartBefore anchors the result window strictly before the document with
// the given id in the ordered sequence.
func (b *Builder) StartBefore(documentID string) *Builder {
	b.set.Cursor = &domain.CursorSpec{DocumentID: documentID, Before: true}
	return b
}

// Select restricts result payloads to the given dotted field paths.
func (b *Builder) Select(fields ...string) *Builder {
	b.set.Select = append(b.set.Select, fields...)
	return b
}

// Distinct deduplicates results by full-value equality of the (possibly
// projected) payload.
func (b *Builder) Distinct() *Builder {
	b.set.Distinct = true
	return b
}

// Build returns the accumulated constraint set.
func (b *Builder) Build() domain.ConstraintSet {
	return b.set
}

func (b *Builder) add(c domain.Constraint) *Builder {
	b.set.Constraints = append(b.set.Constraints, c)
	return b
}
