// Package indexcheck contains the default [domain.IndexValidator]
// implementation. It reproduces the remote backend's compound-index
// requirement rules in-process and keeps the registry of known index
// definitions per collection.
package indexcheck

import (
	"slices"
	"sync"

	"github.com/firelite-db/firelite/domain"
)

// IndexCheck implements [domain.IndexValidator].
type IndexCheck struct {
	mu          sync.RWMutex
	definitions map[string][]domain.IndexDefinition
}

// NewIndexCheck returns a new implementation of [domain.IndexValidator]
// with an empty registry.
func NewIndexCheck() domain.IndexValidator {
	return &IndexCheck{
		definitions: make(map[string][]domain.IndexDefinition),
	}
}

// Register implements [domain.IndexValidator].
func (ic *IndexCheck) Register(def domain.IndexDefinition) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.definitions[def.Collection] = append(ic.definitions[def.Collection], def)
}

// Definitions implements [domain.IndexValidator].
func (ic *IndexCheck) Definitions(collection string) []domain.IndexDefinition {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return slices.Clone(ic.definitions[collection])
}

// RequiresIndex implements [domain.IndexValidator]. A compound index is
// required when more than one constraint is present, when a single
// constraint co-occurs with an order on a different field, or when an array
// operator co-occurs with any other constraint or any order.
func (ic *IndexCheck) RequiresIndex(set domain.ConstraintSet) bool {
	leaves := flatten(set.Constraints)

	if len(leaves) > 1 {
		return true
	}
	if len(leaves) == 0 {
		return false
	}

	leaf := leaves[0]
	if isArrayOperator(leaf) && len(set.Orders) > 0 {
		return true
	}
	for _, order := range set.Orders {
		if order.Field != constraintField(leaf) {
			return true
		}
	}
	return false
}

// RequiredFields implements [domain.IndexValidator]. The minimal field list
// is the constraint fields (ascending) in accumulation order, followed by
// the order fields with their requested directions. A field already covered
// by a constraint entry is not repeated for an ascending order on it.
func (ic *IndexCheck) RequiredFields(set domain.ConstraintSet) []domain.IndexField {
	var res []domain.IndexField
	seen := make(map[string]bool)

	for _, leaf := range flatten(set.Constraints) {
		field := constraintField(leaf)
		if field == "" || seen[field] {
			continue
		}
		seen[field] = true
		res = append(res, domain.IndexField{Field: field, Direction: domain.Ascending})
	}

	for _, order := range set.Orders {
		if order.Direction == domain.Ascending && seen[order.Field] {
			continue
		}
		res = append(res, domain.IndexField{Field: order.Field, Direction: order.Direction})
	}
	return res
}

// HasMatchingIndex implements [domain.IndexValidator]. A registered index
// satisfies the requirement when the required field list is a
// prefix-compatible match of its field list: same fields, same directions,
// in the same order.
func (ic *IndexCheck) HasMatchingIndex(collection string, set domain.ConstraintSet) bool {
	required := ic.RequiredFields(set)

	ic.mu.RLock()
	defer ic.mu.RUnlock()
	for _, def := range ic.definitions[collection] {
		if covers(def.Fields, required) {
			return true
		}
	}
	return false
}

func covers(have, want []domain.IndexField) bool {
	if len(have) < len(want) {
		return false
	}
	for n, f := range want {
		if have[n] != f {
			return false
		}
	}
	return true
}

func flatten(constraints []domain.Constraint) []domain.Constraint {
	var res []domain.Constraint
	for _, c := range constraints {
		if nested, ok := c.(domain.NestedConstraint); ok {
			res = append(res, flatten(nested.Constraints)...)
			continue
		}
		res = append(res, c)
	}
	return res
}

func constraintField(c domain.Constraint) string {
	switch t := c.(type) {
	case domain.BasicConstraint:
		return t.Field
	case domain.MembershipConstraint:
		return t.Field
	case domain.NullConstraint:
		return t.Field
	default:
		return ""
	}
}

func isArrayOperator(c domain.Constraint) bool {
	basic, ok := c.(domain.BasicConstraint)
	if !ok {
		return false
	}
	return basic.Operator == domain.OpArrayContains ||
		basic.Operator == domain.OpArrayContainsAny
}
