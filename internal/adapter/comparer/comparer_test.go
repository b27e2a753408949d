package comparer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/firelite-db/firelite/domain"
	"github.com/firelite-db/firelite/internal/adapter/data"
)

type M = data.M
type A = []any

type ComparerTestSuite struct {
	suite.Suite
	c domain.Comparer
}

func (s *ComparerTestSuite) compare(a, b any) int {
	comp, err := s.c.Compare(a, b)
	s.Require().NoError(err)
	return comp
}

// Numbers compare by value regardless of their Go type.
func (s *ComparerTestSuite) TestNumbersAcrossTypes() {
	s.Zero(s.compare(1, 1.0))
	s.Zero(s.compare(int64(3), uint8(3)))
	s.Negative(s.compare(2, 2.5))
	s.Positive(s.compare(float32(10), 9))
}

// Large integers keep their precision.
func (s *ComparerTestSuite) TestLargeIntegerPrecision() {
	s.Positive(s.compare(int64(1<<53+1), int64(1<<53)))
}

// Strings, booleans and times compare within their own rank.
func (s *ComparerTestSuite) TestScalarRanks() {
	s.Negative(s.compare("apple", "banana"))
	s.Negative(s.compare(false, true))

	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Negative(s.compare(early, early.Add(time.Hour)))
	s.Zero(s.compare(early, early))
}

// Values of different ranks order by the fixed rank sequence.
func (s *ComparerTestSuite) TestCrossRankOrdering() {
	s.Negative(s.compare(nil, 1))
	s.Negative(s.compare(1, "1"))
	s.Negative(s.compare("z", true))
	s.Negative(s.compare(true, time.Now()))
	s.Negative(s.compare(time.Now(), A{}))
	s.Negative(s.compare(A{}, M{}))
}

// Arrays compare element by element, the longer one winning a tie.
func (s *ComparerTestSuite) TestArrays() {
	s.Zero(s.compare(A{1, 2}, A{1.0, 2.0}))
	s.Negative(s.compare(A{1, 2}, A{1, 3}))
	s.Negative(s.compare(A{1}, A{1, 0}))
}

// Documents compare by sorted key, then value.
func (s *ComparerTestSuite) TestDocuments() {
	s.Zero(s.compare(M{"a": 1}, M{"a": 1.0}))
	s.Negative(s.compare(M{"a": 1}, M{"a": 2}))
	s.Negative(s.compare(M{"a": 1}, M{"b": 1}))
	s.Negative(s.compare(M{"a": 1}, M{"a": 1, "b": 0}))
}

// An unexpected type is a comparison error.
func (s *ComparerTestSuite) TestUnknownType() {
	_, err := s.c.Compare(struct{}{}, 1)
	s.Error(err)
}

// Range operators only apply within numbers, strings and times.
func (s *ComparerTestSuite) TestComparable() {
	s.True(s.c.Comparable(1, 2.5))
	s.True(s.c.Comparable("a", "b"))
	s.True(s.c.Comparable(time.Now(), time.Now()))
	s.False(s.c.Comparable(1, "1"))
	s.False(s.c.Comparable(true, false))
	s.False(s.c.Comparable(nil, 1))
	s.False(s.c.Comparable(A{1}, A{2}))
}

func (s *ComparerTestSuite) SetupTest() {
	s.c = NewComparer()
}

func TestComparerTestSuite(t *testing.T) {
	suite.Run(t, new(ComparerTestSuite))
}
