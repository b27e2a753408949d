package fieldnavigator

import "github.com/firelite-db/firelite/domain"

// NewGetSetterEmpty returns a position that is absent and cannot be set.
func NewGetSetterEmpty() domain.GetSetter {
	return emptyGetSetter{}
}

type emptyGetSetter struct{}

// Get implements [domain.GetSetter].
func (emptyGetSetter) Get() (any, bool) { return nil, false }

// Set implements [domain.GetSetter].
func (emptyGetSetter) Set(any) {}

// Unset implements [domain.GetSetter].
func (emptyGetSetter) Unset() {}

// NewGetSetterWithDoc returns a position bound to a key of a document. The
// position counts as defined only while the key is set.
func NewGetSetterWithDoc(doc domain.Document, key string) domain.GetSetter {
	return &docGetSetter{doc: doc, key: key}
}

type docGetSetter struct {
	doc domain.Document
	key string
}

// Get implements [domain.GetSetter].
func (g *docGetSetter) Get() (any, bool) {
	if !g.doc.Has(g.key) {
		return nil, false
	}
	return g.doc.Get(g.key), true
}

// Set implements [domain.GetSetter].
func (g *docGetSetter) Set(v any) {
	g.doc.Set(g.key, v)
}

// Unset implements [domain.GetSetter].
func (g *docGetSetter) Unset() {
	g.doc.Unset(g.key)
}

// NewGetSetterWithArrayIndex returns a position bound to an index of an
// array. Unsetting replaces the element with nil so sibling indexes keep
// their meaning.
func NewGetSetterWithArrayIndex(arr []any, idx int) domain.GetSetter {
	return &arrayGetSetter{arr: arr, idx: idx}
}

type arrayGetSetter struct {
	arr []any
	idx int
}

// Get implements [domain.GetSetter].
func (g *arrayGetSetter) Get() (any, bool) {
	if g.idx < 0 || g.idx >= len(g.arr) {
		return nil, false
	}
	return g.arr[g.idx], true
}

// Set implements [domain.GetSetter].
func (g *arrayGetSetter) Set(v any) {
	if g.idx >= 0 && g.idx < len(g.arr) {
		g.arr[g.idx] = v
	}
}

// Unset implements [domain.GetSetter].
func (g *arrayGetSetter) Unset() {
	if g.idx >= 0 && g.idx < len(g.arr) {
		g.arr[g.idx] = nil
	}
}
