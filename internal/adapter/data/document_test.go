package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/firelite-db/firelite/domain"
)

type A = []any

type DocumentTestSuite struct {
	suite.Suite
}

func (s *DocumentTestSuite) parse(in any) domain.Document {
	doc, err := NewDocument(in)
	s.Require().NoError(err)
	return doc
}

// Nil parses to an empty document and an existing document passes through.
func (s *DocumentTestSuite) TestPassthrough() {
	s.Zero(s.parse(nil).Len())

	m := M{"a": 1}
	doc := s.parse(m)
	s.Equal(domain.Document(m), doc)
}

// Plain maps parse recursively into documents and arrays.
func (s *DocumentTestSuite) TestMaps() {
	doc := s.parse(map[string]any{
		"name": "x",
		"sub":  map[string]any{"n": 1},
		"tags": []any{"a", map[string]any{"b": 2}},
	})

	s.Equal("x", doc.Get("name"))
	s.Equal(1, doc.D("sub").Get("n"))

	tags, ok := doc.Get("tags").(A)
	s.Require().True(ok)
	s.Equal("a", tags[0])
	s.Equal(2, tags[1].(domain.Document).Get("b"))
}

// Typed maps parse without reflection.
func (s *DocumentTestSuite) TestTypedMaps() {
	s.Equal(3, s.parse(map[string]int{"n": 3}).Get("n"))
	s.Equal("v", s.parse(map[string]string{"k": "v"}).Get("k"))
}

// Struct fields parse by tag name, honoring rename, skip and omission.
func (s *DocumentTestSuite) TestStructTags() {
	type item struct {
		Name    string  `firelite:"name"`
		Price   float64 `firelite:"price,omitzero"`
		Note    *string `firelite:"note,omitempty"`
		Ignored string  `firelite:"-"`
		Plain   int
	}

	doc := s.parse(item{Name: "x", Ignored: "drop me", Plain: 2})

	s.Equal("x", doc.Get("name"))
	s.Equal(2, doc.Get("Plain"))
	s.False(doc.Has("price"))
	s.False(doc.Has("note"))
	s.False(doc.Has("Ignored"))
	s.False(doc.Has("-"))
	s.False(doc.Has("hidden"))
}

// Pointers dereference, nested structs and slices recurse.
func (s *DocumentTestSuite) TestStructNesting() {
	type sub struct {
		N int `firelite:"n"`
	}
	type item struct {
		Sub  *sub  `firelite:"sub"`
		Tags []sub `firelite:"tags"`
	}

	doc := s.parse(&item{Sub: &sub{N: 1}, Tags: []sub{{N: 2}}})

	s.Equal(1, doc.D("sub").Get("n"))
	tags := doc.Get("tags").(A)
	s.Equal(2, tags[0].(domain.Document).Get("n"))
}

// Times and transforms survive parsing as themselves.
func (s *DocumentTestSuite) TestOpaqueValues() {
	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	doc := s.parse(map[string]any{
		"at":  now,
		"n":   domain.Increment{Delta: 2},
		"arr": []any{domain.ArrayUnion{Elements: []any{1}}},
	})

	s.Equal(now, doc.Get("at"))
	s.Equal(domain.Increment{Delta: 2}, doc.Get("n"))
	s.Equal(domain.ArrayUnion{Elements: []any{1}}, doc.Get("arr").(A)[0])
}

// Scalars are not documents.
func (s *DocumentTestSuite) TestRejectsScalars() {
	_, err := NewDocument(42)
	s.Error(err)
	_, err = NewDocument("nope")
	s.Error(err)
}

// Copy is deep for documents and arrays.
func (s *DocumentTestSuite) TestCopy() {
	orig := M{"sub": M{"n": 1}, "tags": A{"x"}}
	dup := Copy(orig)

	dup.D("sub").Set("n", 2)
	dup.Get("tags").(A)[0] = "mutated"

	s.Equal(1, orig.D("sub").Get("n"))
	s.Equal("x", orig.Get("tags").(A)[0])
	s.Nil(Copy(nil))
}

func TestDocumentTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentTestSuite))
}
