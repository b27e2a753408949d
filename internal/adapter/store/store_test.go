package store

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/firelite-db/firelite/domain"
	"github.com/firelite-db/firelite/internal/adapter/builder"
	"github.com/firelite-db/firelite/internal/adapter/clock"
	"github.com/firelite-db/firelite/internal/adapter/data"
	"github.com/firelite-db/firelite/internal/adapter/sink"
)

type M = data.M

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
	now   time.Time
}

func (s *StoreTestSuite) create(col, id string, payload M) {
	s.Require().NoError(s.store.Apply(s.ctx, domain.Operation{
		Kind:       domain.KindCreate,
		Collection: col,
		ID:         id,
		Data:       payload,
	}))
}

// A created document reads back with its payload and Exists set.
func (s *StoreTestSuite) TestCreateAndRead() {
	s.create("items", "a", M{"name": "x", "price": 10})

	snap, err := s.store.Read(s.ctx, "items", "a")
	s.Require().NoError(err)
	s.True(snap.Exists)
	s.Equal("x", snap.Data().Get("name"))
}

// Reading a missing document is not an error.
func (s *StoreTestSuite) TestReadMissing() {
	snap, err := s.store.Read(s.ctx, "items", "nope")
	s.Require().NoError(err)
	s.False(snap.Exists)
}

// Mutating a read payload never affects stored state.
func (s *StoreTestSuite) TestReadIsolation() {
	s.create("items", "a", M{"name": "x"})

	snap, err := s.store.Read(s.ctx, "items", "a")
	s.Require().NoError(err)
	snap.Data().Set("name", "mutated")

	again, err := s.store.Read(s.ctx, "items", "a")
	s.Require().NoError(err)
	s.Equal("x", again.Data().Get("name"))
}

// DataTo decodes the payload into a tagged struct.
func (s *StoreTestSuite) TestDataTo() {
	s.create("items", "a", M{"name": "x", "price": 10})

	var target struct {
		Name  string `firelite:"name"`
		Price int    `firelite:"price"`
	}
	snap, err := s.store.Read(s.ctx, "items", "a")
	s.Require().NoError(err)
	s.Require().NoError(snap.DataTo(&target))
	s.Equal("x", target.Name)
	s.Equal(10, target.Price)
}

// Apply accepts raw maps and tagged structs as operation data.
func (s *StoreTestSuite) TestApplyRawPayloads() {
	type character struct {
		Name string
		Sty  string `firelite:"style"`
	}
	s.Require().NoError(s.store.Apply(s.ctx,
		domain.Operation{Kind: domain.KindCreate, Collection: "characters", ID: "zangief",
			Data: character{Name: "Zangief", Sty: "grappler"}},
		domain.Operation{Kind: domain.KindCreate, Collection: "characters", ID: "ryu",
			Data: map[string]any{"style": "shoto"}},
	))

	snap, err := s.store.Read(s.ctx, "characters", "zangief")
	s.Require().NoError(err)
	s.Equal("Zangief", snap.Data().Get("Name"))
	s.Equal("grappler", snap.Data().Get("style"))

	snap, err = s.store.Read(s.ctx, "characters", "ryu")
	s.Require().NoError(err)
	s.Equal("shoto", snap.Data().Get("style"))

	err = s.store.Apply(s.ctx, domain.Operation{
		Kind: domain.KindCreate, Collection: "characters", ID: "bad", Data: 42,
	})
	s.Error(err)
}

// Creating over an existing document conflicts.
func (s *StoreTestSuite) TestCreateConflict() {
	s.create("items", "a", M{"n": 1})

	err := s.store.Apply(s.ctx, domain.Operation{
		Kind:       domain.KindCreate,
		Collection: "items",
		ID:         "a",
		Data:       M{"n": 2},
	})
	var conflict *domain.ConflictError
	s.Require().ErrorAs(err, &conflict)
	s.Equal("a", conflict.ID)
}

// Updating a missing document fails; deleting one does not.
func (s *StoreTestSuite) TestUpdateMissingAndDeleteIdempotent() {
	err := s.store.Apply(s.ctx, domain.Operation{
		Kind:       domain.KindUpdate,
		Collection: "items",
		ID:         "nope",
		Data:       M{"n": 1},
	})
	var notFound *domain.NotFoundError
	s.Require().ErrorAs(err, &notFound)

	s.NoError(s.store.Apply(s.ctx, domain.Operation{
		Kind:       domain.KindDelete,
		Collection: "items",
		ID:         "nope",
	}))
}

// A failing operation rolls the whole Apply back.
func (s *StoreTestSuite) TestApplyIsAtomic() {
	err := s.store.Apply(s.ctx,
		domain.Operation{Kind: domain.KindCreate, Collection: "items", ID: "a", Data: M{"n": 1}},
		domain.Operation{Kind: domain.KindUpdate, Collection: "items", ID: "missing", Data: M{"n": 2}},
	)
	s.Require().Error(err)

	snap, err := s.store.Read(s.ctx, "items", "a")
	s.Require().NoError(err)
	s.False(snap.Exists)
}

// Later operations in one Apply observe earlier staged writes.
func (s *StoreTestSuite) TestApplyReadsOwnWrites() {
	err := s.store.Apply(s.ctx,
		domain.Operation{Kind: domain.KindCreate, Collection: "items", ID: "a", Data: M{"n": 1}},
		domain.Operation{Kind: domain.KindUpdate, Collection: "items", ID: "a",
			Data: M{"n": domain.Increment{Delta: 4}}},
	)
	s.Require().NoError(err)

	snap, err := s.store.Read(s.ctx, "items", "a")
	s.Require().NoError(err)
	s.Equal(5.0, snap.Data().Get("n"))
}

// Every server timestamp within one Apply resolves to the same instant.
func (s *StoreTestSuite) TestCommitTimestamp() {
	err := s.store.Apply(s.ctx,
		domain.Operation{Kind: domain.KindCreate, Collection: "items", ID: "a",
			Data: M{"at": domain.ServerTimestamp{}}},
		domain.Operation{Kind: domain.KindCreate, Collection: "items", ID: "b",
			Data: M{"at": domain.ServerTimestamp{}}},
	)
	s.Require().NoError(err)

	a, _ := s.store.Read(s.ctx, "items", "a")
	b, _ := s.store.Read(s.ctx, "items", "b")
	s.Equal(s.now, a.Data().Get("at"))
	s.Equal(a.Data().Get("at"), b.Data().Get("at"))
}

// An empty-id create gets an id assigned.
func (s *StoreTestSuite) TestAutoID() {
	s.Require().NoError(s.store.Apply(s.ctx, domain.Operation{
		Kind:       domain.KindCreate,
		Collection: "items",
		Data:       M{"n": 1},
	}))

	res, err := s.store.Query(s.ctx, "items", builder.NewBuilder().Build())
	s.Require().NoError(err)
	s.Require().Len(res, 1)
	s.NotEmpty(res[0].ID)
}

// Queries run the full filter, order and pagination pipeline.
func (s *StoreTestSuite) TestQuery() {
	s.create("items", "a", M{"price": 10})
	s.create("items", "b", M{"price": 20})
	s.create("items", "c", M{"price": 5})

	res, err := s.store.Query(s.ctx, "items", builder.NewBuilder().
		OrderBy("price", domain.Descending).
		Limit(2).
		Build())
	s.Require().NoError(err)
	s.Require().Len(res, 2)
	s.Equal("b", res[0].ID)
	s.Equal("a", res[1].ID)
}

// Querying an unknown collection yields an empty sequence.
func (s *StoreTestSuite) TestQueryUnknownCollection() {
	res, err := s.store.Query(s.ctx, "nope", builder.NewBuilder().Build())
	s.Require().NoError(err)
	s.Empty(res)
}

// Strict mode rejects compound queries with no matching registered index.
func (s *StoreTestSuite) TestStrictIndexes() {
	strict := NewStore(
		domain.WithStoreClock(clock.NewFixed(s.now)),
		domain.WithStoreStrictIndexes(true),
	)
	s.Require().NoError(strict.Apply(s.ctx, domain.Operation{
		Kind: domain.KindCreate, Collection: "items", ID: "a",
		Data: M{"color": "red", "price": 10},
	}))

	set := builder.NewBuilder().
		Where("color", domain.OpEqual, "red").
		OrderBy("price", domain.Descending).
		Build()

	_, err := strict.Query(s.ctx, "items", set)
	var required *domain.IndexRequiredError
	s.Require().ErrorAs(err, &required)
	s.Equal("items", required.Collection)

	s.Require().NoError(strict.EnsureIndex(s.ctx, domain.IndexDefinition{
		Collection: "items",
		Fields: []domain.IndexField{
			{Field: "color", Direction: domain.Ascending},
			{Field: "price", Direction: domain.Descending},
		},
	}))

	res, err := strict.Query(s.ctx, "items", set)
	s.Require().NoError(err)
	s.Len(res, 1)
}

// A maintained single-field index narrows equality lookups and stays
// consistent through updates and deletes.
func (s *StoreTestSuite) TestLiveIndexMaintenance() {
	s.Require().NoError(s.store.EnsureIndex(s.ctx, domain.IndexDefinition{
		Collection: "items",
		Fields:     []domain.IndexField{{Field: "color", Direction: domain.Ascending}},
	}))

	s.create("items", "a", M{"color": "red"})
	s.create("items", "b", M{"color": "blue"})

	res, err := s.store.Query(s.ctx, "items", builder.NewBuilder().
		Where("color", domain.OpEqual, "red").Build())
	s.Require().NoError(err)
	s.Require().Len(res, 1)
	s.Equal("a", res[0].ID)

	s.Require().NoError(s.store.Apply(s.ctx, domain.Operation{
		Kind: domain.KindUpdate, Collection: "items", ID: "a",
		Data: M{"color": "green"},
	}))
	res, err = s.store.Query(s.ctx, "items", builder.NewBuilder().
		Where("color", domain.OpEqual, "red").Build())
	s.Require().NoError(err)
	s.Empty(res)

	s.Require().NoError(s.store.Apply(s.ctx, domain.Operation{
		Kind: domain.KindDelete, Collection: "items", ID: "b",
	}))
	res, err = s.store.Query(s.ctx, "items", builder.NewBuilder().
		Where("color", domain.OpEqual, "blue").Build())
	s.Require().NoError(err)
	s.Empty(res)
}

// Committed operations are journaled one JSON line each and notified to the
// sink.
func (s *StoreTestSuite) TestJournalAndSink() {
	var buf bytes.Buffer
	memory := sink.NewMemory()
	st := NewStore(
		domain.WithStoreClock(clock.NewFixed(s.now)),
		domain.WithStoreJournal(&buf),
		domain.WithStoreSink(memory),
	)

	s.Require().NoError(st.Apply(s.ctx,
		domain.Operation{Kind: domain.KindCreate, Collection: "items", ID: "a", Data: M{"n": 1}},
		domain.Operation{Kind: domain.KindDelete, Collection: "items", ID: "a"},
	))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	s.Len(lines, 2)

	events := memory.Events()
	s.Require().Len(events, 2)
	s.Equal(domain.KindCreate, events[0].Kind)
	s.Equal(domain.KindDelete, events[1].Kind)
	s.Equal(s.now, events[0].Timestamp)
}

// A canceled context stops Apply before it takes the commit lock.
func (s *StoreTestSuite) TestApplyCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	err := s.store.Apply(ctx, domain.Operation{
		Kind: domain.KindCreate, Collection: "items", ID: "a", Data: M{"n": 1},
	})
	s.ErrorIs(err, context.Canceled)
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	s.store = NewStore(domain.WithStoreClock(clock.NewFixed(s.now)))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
