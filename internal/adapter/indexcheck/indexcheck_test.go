package indexcheck

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/firelite-db/firelite/domain"
	"github.com/firelite-db/firelite/internal/adapter/builder"
)

type IndexCheckTestSuite struct {
	suite.Suite
	check domain.IndexValidator
}

// A single equality constraint is served without a compound index.
func (s *IndexCheckTestSuite) TestSingleConstraintNeedsNoIndex() {
	set := builder.NewBuilder().Where("color", domain.OpEqual, "red").Build()
	s.False(s.check.RequiresIndex(set))
}

// Two constraints on different fields require a compound index.
func (s *IndexCheckTestSuite) TestTwoConstraintsRequireIndex() {
	set := builder.NewBuilder().
		Where("color", domain.OpEqual, "red").
		Where("price", domain.OpLess, 50).
		Build()
	s.True(s.check.RequiresIndex(set))
}

// An order on the constrained field itself is index-free.
func (s *IndexCheckTestSuite) TestOrderOnSameField() {
	set := builder.NewBuilder().
		Where("price", domain.OpGreater, 10).
		OrderBy("price", domain.Ascending).
		Build()
	s.False(s.check.RequiresIndex(set))
}

// An order on a different field than the constraint requires an index.
func (s *IndexCheckTestSuite) TestOrderOnOtherField() {
	set := builder.NewBuilder().
		Where("color", domain.OpEqual, "red").
		OrderBy("price", domain.Descending).
		Build()
	s.True(s.check.RequiresIndex(set))
}

// An array operator combined with any order requires an index.
func (s *IndexCheckTestSuite) TestArrayOperatorWithOrder() {
	set := builder.NewBuilder().
		Where("tags", domain.OpArrayContains, "go").
		OrderBy("tags", domain.Ascending).
		Build()
	s.True(s.check.RequiresIndex(set))
}

// Nested groups count their leaves toward the requirement.
func (s *IndexCheckTestSuite) TestNestedLeavesCount() {
	set := builder.NewBuilder().
		WhereNested(func(q *builder.Builder) {
			q.Where("a", domain.OpEqual, 1).Where("b", domain.OpEqual, 2)
		}).
		Build()
	s.True(s.check.RequiresIndex(set))
}

// The minimal field list is constraint fields ascending, then order fields
// with their requested directions.
func (s *IndexCheckTestSuite) TestRequiredFields() {
	set := builder.NewBuilder().
		Where("color", domain.OpEqual, "red").
		Where("size", domain.OpEqual, "m").
		OrderBy("price", domain.Descending).
		Build()

	s.Equal([]domain.IndexField{
		{Field: "color", Direction: domain.Ascending},
		{Field: "size", Direction: domain.Ascending},
		{Field: "price", Direction: domain.Descending},
	}, s.check.RequiredFields(set))
}

// An ascending order on an already constrained field is not repeated.
func (s *IndexCheckTestSuite) TestRequiredFieldsDedup() {
	set := builder.NewBuilder().
		Where("price", domain.OpGreater, 10).
		OrderBy("price", domain.Ascending).
		Build()

	s.Equal([]domain.IndexField{
		{Field: "price", Direction: domain.Ascending},
	}, s.check.RequiredFields(set))
}

// A registered index matches when the required fields are a prefix of its
// field list with identical directions.
func (s *IndexCheckTestSuite) TestHasMatchingIndex() {
	s.check.Register(domain.IndexDefinition{
		Collection: "items",
		Fields: []domain.IndexField{
			{Field: "color", Direction: domain.Ascending},
			{Field: "price", Direction: domain.Descending},
			{Field: "size", Direction: domain.Ascending},
		},
	})

	matching := builder.NewBuilder().
		Where("color", domain.OpEqual, "red").
		OrderBy("price", domain.Descending).
		Build()
	s.True(s.check.HasMatchingIndex("items", matching))

	wrongDirection := builder.NewBuilder().
		Where("color", domain.OpEqual, "red").
		OrderBy("price", domain.Ascending).
		Build()
	s.False(s.check.HasMatchingIndex("items", wrongDirection))

	otherCollection := builder.NewBuilder().
		Where("color", domain.OpEqual, "red").
		OrderBy("price", domain.Descending).
		Build()
	s.False(s.check.HasMatchingIndex("orders", otherCollection))
}

// Definitions reports the registered indexes per collection.
func (s *IndexCheckTestSuite) TestDefinitions() {
	def := domain.IndexDefinition{
		Collection: "items",
		Fields:     []domain.IndexField{{Field: "a", Direction: domain.Ascending}},
	}
	s.check.Register(def)
	s.Equal([]domain.IndexDefinition{def}, s.check.Definitions("items"))
	s.Empty(s.check.Definitions("orders"))
}

func (s *IndexCheckTestSuite) SetupTest() {
	s.check = NewIndexCheck()
}

func TestIndexCheckTestSuite(t *testing.T) {
	suite.Run(t, new(IndexCheckTestSuite))
}
