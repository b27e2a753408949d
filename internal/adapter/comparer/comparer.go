// Package comparer contains the default [domain.Comparer] implementation.
//
// Values order across types by a fixed rank: absent < null < numbers <
// strings < booleans < times < arrays < documents. Numbers compare through
// big.Float so integer and floating values equate without precision loss.
package comparer

import (
	"cmp"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/firelite-db/firelite/domain"
)

const (
	rankAbsent = iota
	rankNull
	rankNumber
	rankString
	rankBool
	rankTime
	rankArray
	rankDocument
	rankUnknown
)

// Comparer implements domain.Comparer.
type Comparer struct{}

// NewComparer returns a new implementation of domain.Comparer.
func NewComparer() domain.Comparer {
	return &Comparer{}
}

// Comparable implements domain.Comparer. Only defined values of the same
// rank among numbers, strings and times are considered orderable for range
// operators.
func (c *Comparer) Comparable(a, b any) bool {
	if !c.defined(a) || !c.defined(b) {
		return false
	}
	a, b = c.value(a), c.value(b)

	ra, rb := c.rank(a), c.rank(b)
	if ra != rb {
		return false
	}
	switch ra {
	case rankNumber, rankString, rankTime:
		return true
	default:
		return false
	}
}

// Compare implements domain.Comparer.
func (c *Comparer) Compare(a any, b any) (int, error) {
	if !c.defined(a) || !c.defined(b) {
		return cmp.Compare(c.boolToInt(c.defined(a)), c.boolToInt(c.defined(b))), nil
	}
	a, b = c.value(a), c.value(b)

	ra, rb := c.rank(a), c.rank(b)
	if ra == rankUnknown || rb == rankUnknown {
		return 0, fmt.Errorf("cannot compare unexpected types %T and %T", a, b)
	}
	if ra != rb {
		return cmp.Compare(ra, rb), nil
	}

	switch ra {
	case rankNull:
		return 0, nil
	case rankNumber:
		an, _ := asNumber(a)
		bn, _ := asNumber(b)
		return an.Cmp(bn), nil
	case rankString:
		return cmp.Compare(a.(string), b.(string)), nil
	case rankBool:
		return cmp.Compare(c.boolToInt(a.(bool)), c.boolToInt(b.(bool))), nil
	case rankTime:
		return a.(time.Time).Compare(b.(time.Time)), nil
	case rankArray:
		return c.compareArray(a.([]any), b.([]any))
	default:
		return c.compareDoc(a.(domain.Document), b.(domain.Document))
	}
}

func (c *Comparer) rank(v any) int {
	if v == nil {
		return rankNull
	}
	if _, ok := asNumber(v); ok {
		return rankNumber
	}
	switch v.(type) {
	case string:
		return rankString
	case bool:
		return rankBool
	case time.Time:
		return rankTime
	case []any:
		return rankArray
	case domain.Document:
		return rankDocument
	default:
		return rankUnknown
	}
}

func (c *Comparer) compareArray(a, b []any) (int, error) {
	for i := range min(len(a), len(b)) {
		comp, err := c.Compare(a[i], b[i])
		if err != nil || comp != 0 {
			return comp, err
		}
	}
	// common section was identical, longest one wins
	return cmp.Compare(len(a), len(b)), nil
}

func (c *Comparer) compareDoc(a, b domain.Document) (int, error) {
	aKeys := slices.Sorted(a.Keys())
	bKeys := slices.Sorted(b.Keys())

	for i := range min(len(aKeys), len(bKeys)) {
		if comp := cmp.Compare(aKeys[i], bKeys[i]); comp != 0 {
			return comp, nil
		}
		comp, err := c.Compare(a.Get(aKeys[i]), b.Get(bKeys[i]))
		if err != nil || comp != 0 {
			return comp, err
		}
	}
	return cmp.Compare(len(aKeys), len(bKeys)), nil
}

func (c *Comparer) boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (c *Comparer) defined(v any) bool {
	if g, ok := v.(domain.Getter); ok {
		_, defined := g.Get()
		return defined
	}
	return true
}

func (c *Comparer) value(v any) any {
	if g, ok := v.(domain.Getter); ok {
		val, _ := g.Get()
		return val
	}
	return v
}

func asNumber(v any) (*big.Float, bool) {
	// a zero-precision Float promotes to exact 64-bit precision on the
	// first Set; big.NewFloat would pin it to 53 bits and round large ints
	r := new(big.Float)
	switch n := v.(type) {
	case int:
		r.SetInt64(int64(n))
	case int8:
		r.SetInt64(int64(n))
	case int16:
		r.SetInt64(int64(n))
	case int32:
		r.SetInt64(int64(n))
	case int64:
		r.SetInt64(n)
	case uint:
		r.SetUint64(uint64(n))
	case uint8:
		r.SetUint64(uint64(n))
	case uint16:
		r.SetUint64(uint64(n))
	case uint32:
		r.SetUint64(uint64(n))
	case uint64:
		r.SetUint64(n)
	case float32:
		r.SetFloat64(float64(n))
	case float64:
		r.SetFloat64(n)
	default:
		return nil, false
	}
	return r, true
}
