package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/firelite-db/firelite/domain"
	"github.com/firelite-db/firelite/internal/adapter/data"
	"github.com/firelite-db/firelite/internal/adapter/fieldnavigator"
)

type M = data.M

type A = []any

type TransformTestSuite struct {
	suite.Suite
	engine domain.TransformEngine
	commit time.Time
}

func (s *TransformTestSuite) getter(doc M, field string) domain.GetSetter {
	fn := fieldnavigator.NewFieldNavigator(data.NewDocument)
	addr, err := fn.GetAddress(field)
	s.Require().NoError(err)
	gs, err := fn.GetField(doc, addr...)
	s.Require().NoError(err)
	return gs
}

func (s *TransformTestSuite) resolve(doc M, field string, t domain.Transform) any {
	value, removed, err := s.engine.Resolve(s.getter(doc, field), t, s.commit)
	s.Require().NoError(err)
	s.Require().False(removed)
	return value
}

// ServerTimestamp resolves to the commit instant.
func (s *TransformTestSuite) TestServerTimestamp() {
	s.Equal(s.commit, s.resolve(M{}, "at", domain.ServerTimestamp{}))
}

// Increment on a missing field counts the base as zero.
func (s *TransformTestSuite) TestIncrementMissingField() {
	s.Equal(5.0, s.resolve(M{}, "count", domain.Increment{Delta: 5}))
}

// Increment adds to the stored numeric value across representations.
func (s *TransformTestSuite) TestIncrementExisting() {
	s.Equal(15.0, s.resolve(M{"count": 10}, "count", domain.Increment{Delta: 5}))
	s.Equal(7.5, s.resolve(M{"count": 10.0}, "count", domain.Increment{Delta: -2.5}))
	s.Equal(3.0, s.resolve(M{"count": int64(1)}, "count", domain.Increment{Delta: 2}))
}

// Increment treats a non-numeric stored value as zero.
func (s *TransformTestSuite) TestIncrementNonNumeric() {
	s.Equal(5.0, s.resolve(M{"count": "many"}, "count", domain.Increment{Delta: 5}))
}

// ArrayUnion appends only elements not already present, preserving order.
func (s *TransformTestSuite) TestArrayUnion() {
	res := s.resolve(M{"tags": A{"a", "b"}}, "tags", domain.ArrayUnion{Elements: A{"b", "c"}})
	s.Equal(A{"a", "b", "c"}, res)
}

// ArrayUnion of already present elements changes nothing.
func (s *TransformTestSuite) TestArrayUnionIdempotent() {
	res := s.resolve(M{"tags": A{"a", "b"}}, "tags", domain.ArrayUnion{Elements: A{"a", "b"}})
	s.Equal(A{"a", "b"}, res)
}

// ArrayUnion on a missing field starts from an empty array.
func (s *TransformTestSuite) TestArrayUnionMissing() {
	res := s.resolve(M{}, "tags", domain.ArrayUnion{Elements: A{"x"}})
	s.Equal(A{"x"}, res)
}

// ArrayRemove drops every equal element and keeps the remainder in order.
func (s *TransformTestSuite) TestArrayRemove() {
	res := s.resolve(M{"tags": A{"a", "b", "a", "c"}}, "tags", domain.ArrayRemove{Elements: A{"a"}})
	s.Equal(A{"b", "c"}, res)
}

// ArrayRemove of an absent element is a no-op.
func (s *TransformTestSuite) TestArrayRemoveAbsentElement() {
	res := s.resolve(M{"tags": A{"a", "b"}}, "tags", domain.ArrayRemove{Elements: A{"z"}})
	s.Equal(A{"a", "b"}, res)
}

// DeleteField reports removal.
func (s *TransformTestSuite) TestDeleteField() {
	_, removed, err := s.engine.Resolve(s.getter(M{"x": 1}, "x"), domain.DeleteField{}, s.commit)
	s.Require().NoError(err)
	s.True(removed)
}

// A create resolves transforms against an empty base.
func (s *TransformTestSuite) TestApplyCreate() {
	doc, err := s.engine.Apply(nil, domain.Operation{
		Kind:       domain.KindCreate,
		Collection: "items",
		ID:         "a",
		Data:       M{"name": "x", "count": domain.Increment{Delta: 5}, "at": domain.ServerTimestamp{}},
	}, s.commit)
	s.Require().NoError(err)
	s.Equal("x", doc.Get("name"))
	s.Equal(5.0, doc.Get("count"))
	s.Equal(s.commit, doc.Get("at"))
}

// A plain set replaces the stored document entirely.
func (s *TransformTestSuite) TestApplySetReplaces() {
	current := M{"old": true, "count": 10}
	doc, err := s.engine.Apply(current, domain.Operation{
		Kind: domain.KindSet,
		Data: M{"count": domain.Increment{Delta: 5}},
	}, s.commit)
	s.Require().NoError(err)
	s.False(doc.Has("old"))
	s.Equal(5.0, doc.Get("count"))
}

// A merge set keeps unrelated fields and resolves against stored state.
func (s *TransformTestSuite) TestApplySetMerge() {
	current := M{"old": true, "count": 10}
	doc, err := s.engine.Apply(current, domain.Operation{
		Kind:    domain.KindSet,
		Data:    M{"count": domain.Increment{Delta: 5}},
		Options: domain.OperationOptions{Merge: true},
	}, s.commit)
	s.Require().NoError(err)
	s.Equal(true, doc.Get("old"))
	s.Equal(15.0, doc.Get("count"))
}

// Update keys are dotted field paths into the stored document.
func (s *TransformTestSuite) TestApplyUpdateDottedPath() {
	current := M{"specs": M{"weight": 5, "color": "red"}}
	doc, err := s.engine.Apply(current, domain.Operation{
		Kind: domain.KindUpdate,
		Data: M{"specs.weight": 7},
	}, s.commit)
	s.Require().NoError(err)
	s.Equal(7, doc.D("specs").Get("weight"))
	s.Equal("red", doc.D("specs").Get("color"))
}

// DeleteField inside an update removes the field from the stored state.
func (s *TransformTestSuite) TestApplyUpdateDeleteField() {
	current := M{"a": 1, "b": 2}
	doc, err := s.engine.Apply(current, domain.Operation{
		Kind: domain.KindUpdate,
		Data: M{"b": domain.DeleteField{}},
	}, s.commit)
	s.Require().NoError(err)
	s.Equal(1, doc.Get("a"))
	s.False(doc.Has("b"))
}

// Nested payload documents merge through intermediate documents.
func (s *TransformTestSuite) TestApplyNestedPayload() {
	doc, err := s.engine.Apply(nil, domain.Operation{
		Kind: domain.KindSet,
		Data: M{"specs": M{"weight": domain.Increment{Delta: 2}}},
	}, s.commit)
	s.Require().NoError(err)
	s.Equal(2.0, doc.D("specs").Get("weight"))
}

// Raw operation data normalizes through the document factory; data that
// cannot become a document fails.
func (s *TransformTestSuite) TestApplyRawPayload() {
	type item struct {
		Name  string `firelite:"name"`
		Count domain.Transform
	}
	doc, err := s.engine.Apply(nil, domain.Operation{
		Kind: domain.KindCreate,
		Data: item{Name: "x", Count: domain.Increment{Delta: 5}},
	}, s.commit)
	s.Require().NoError(err)
	s.Equal("x", doc.Get("name"))
	s.Equal(5.0, doc.Get("Count"))

	_, err = s.engine.Apply(nil, domain.Operation{
		Kind: domain.KindCreate,
		Data: 42,
	}, s.commit)
	s.Error(err)
}

// A delete resolves to no document.
func (s *TransformTestSuite) TestApplyDelete() {
	doc, err := s.engine.Apply(M{"a": 1}, domain.Operation{Kind: domain.KindDelete}, s.commit)
	s.Require().NoError(err)
	s.Nil(doc)
}

// Apply never mutates the stored document it starts from.
func (s *TransformTestSuite) TestApplyDoesNotMutateCurrent() {
	current := M{"count": 10}
	_, err := s.engine.Apply(current, domain.Operation{
		Kind:    domain.KindSet,
		Data:    M{"count": domain.Increment{Delta: 5}},
		Options: domain.OperationOptions{Merge: true},
	}, s.commit)
	s.Require().NoError(err)
	s.Equal(10, current["count"])
}

func (s *TransformTestSuite) SetupTest() {
	s.engine = NewEngine()
	s.commit = time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
}

func TestTransformTestSuite(t *testing.T) {
	suite.Run(t, new(TransformTestSuite))
}
