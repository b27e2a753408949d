// Package store contains the in-memory [domain.Client] implementation. It
// keeps collections of documents keyed by id, serializes commits through a
// context-aware mutex and maintains the registered compound indexes on every
// applied operation.
package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"sync"

	"github.com/firelite-db/firelite/domain"
	"github.com/firelite-db/firelite/internal/adapter/clock"
	"github.com/firelite-db/firelite/internal/adapter/comparer"
	"github.com/firelite-db/firelite/internal/adapter/data"
	"github.com/firelite-db/firelite/internal/adapter/decoder"
	"github.com/firelite-db/firelite/internal/adapter/evaluator"
	"github.com/firelite-db/firelite/internal/adapter/fieldnavigator"
	"github.com/firelite-db/firelite/internal/adapter/hasher"
	"github.com/firelite-db/firelite/internal/adapter/idgen"
	"github.com/firelite-db/firelite/internal/adapter/index"
	"github.com/firelite-db/firelite/internal/adapter/indexcheck"
	"github.com/firelite-db/firelite/internal/adapter/journal"
	"github.com/firelite-db/firelite/internal/adapter/sink"
	"github.com/firelite-db/firelite/internal/adapter/transform"
	"github.com/firelite-db/firelite/pkg/ctxsync"
)

type collection struct {
	docs    map[string]domain.Document
	indexes []*index.LiveIndex
}

// Store implements [domain.Client].
type Store struct {
	commitMu *ctxsync.Mutex
	dataMu   sync.RWMutex

	collections map[string]*collection

	cmpr   domain.Comparer
	docFac domain.DocumentFactory
	fn     domain.FieldNavigator
	eval   domain.Evaluator
	idxv   domain.IndexValidator
	engine domain.TransformEngine
	clk    domain.Clock
	idgen  domain.IDGenerator
	dec    domain.Decoder
	snk    domain.EventSink
	jrnl   *journal.Journal
	strict bool
}

// NewStore returns a new in-memory implementation of [domain.Client].
func NewStore(options ...domain.StoreOption) *Store {
	var opts domain.StoreOptions
	for _, option := range options {
		option(&opts)
	}
	if opts.Comparer == nil {
		opts.Comparer = comparer.NewComparer()
	}
	if opts.DocumentFactory == nil {
		opts.DocumentFactory = data.NewDocument
	}
	if opts.IndexValidator == nil {
		opts.IndexValidator = indexcheck.NewIndexCheck()
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewClock()
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = idgen.NewIDGenerator()
	}
	if opts.Decoder == nil {
		opts.Decoder = decoder.NewDecoder()
	}
	if opts.Hasher == nil {
		opts.Hasher = hasher.NewHasher()
	}
	if opts.FieldNavigator == nil {
		opts.FieldNavigator = fieldnavigator.NewFieldNavigator(opts.DocumentFactory)
	}
	if opts.Evaluator == nil {
		opts.Evaluator = evaluator.NewEvaluator(
			domain.WithEvaluatorComparer(opts.Comparer),
			domain.WithEvaluatorFieldNavigator(opts.FieldNavigator),
			domain.WithEvaluatorHasher(opts.Hasher),
			domain.WithEvaluatorDocumentFactory(opts.DocumentFactory),
		)
	}
	if opts.TransformEngine == nil {
		opts.TransformEngine = transform.NewEngine(
			domain.WithTransformComparer(opts.Comparer),
			domain.WithTransformFieldNavigator(opts.FieldNavigator),
			domain.WithTransformDocumentFactory(opts.DocumentFactory),
		)
	}

	return &Store{
		commitMu:    ctxsync.NewMutex(),
		collections: make(map[string]*collection),
		cmpr:        opts.Comparer,
		docFac:      opts.DocumentFactory,
		fn:          opts.FieldNavigator,
		eval:        opts.Evaluator,
		idxv:        opts.IndexValidator,
		engine:      opts.TransformEngine,
		clk:         opts.Clock,
		idgen:       opts.IDGenerator,
		dec:         opts.Decoder,
		snk:         opts.Sink,
		jrnl:        journal.NewJournal(opts.Journal),
		strict:      opts.Strict,
	}
}

// Read implements [domain.Client]. A missing document yields a snapshot with
// Exists false, not an error.
func (s *Store) Read(ctx context.Context, col, id string) (domain.Snapshot, error) {
	select {
	case <-ctx.Done():
		return domain.Snapshot{}, ctx.Err()
	default:
	}

	s.dataMu.RLock()
	defer s.dataMu.RUnlock()

	c := s.collections[col]
	if c == nil {
		return domain.NewSnapshot(col, id, nil, false, s.dec), nil
	}
	doc, ok := c.docs[id]
	if !ok {
		return domain.NewSnapshot(col, id, nil, false, s.dec), nil
	}
	// payloads are cloned on read so callers can never mutate stored state
	return domain.NewSnapshot(col, id, data.Copy(doc), true, s.dec), nil
}

// Query implements [domain.Client].
func (s *Store) Query(ctx context.Context, col string, set domain.ConstraintSet) ([]domain.Snapshot, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if s.strict && s.idxv.RequiresIndex(set) && !s.idxv.HasMatchingIndex(col, set) {
		return nil, &domain.IndexRequiredError{
			Collection: col,
			Fields:     s.idxv.RequiredFields(set),
		}
	}

	snaps, err := s.candidates(ctx, col, set)
	if err != nil {
		return nil, err
	}
	return s.eval.Evaluate(snaps, set)
}

// Apply implements [domain.Client]. All operations commit atomically: new
// states are staged first, observing earlier staged writes, and stored only
// when every operation stages cleanly.
func (s *Store) Apply(ctx context.Context, ops ...domain.Operation) error {
	if err := s.commitMu.LockWithContext(ctx); err != nil {
		return err
	}
	defer s.commitMu.Unlock()

	commit := s.clk.Now()

	type staged struct {
		op  domain.Operation
		doc domain.Document // nil means delete
		old domain.Document
	}
	plan := make([]staged, 0, len(ops))
	overlay := make(map[string]domain.Document)

	for n, op := range ops {
		if op.ID == "" {
			if op.Kind != domain.KindCreate && op.Kind != domain.KindSet {
				return &domain.ConfigurationError{
					Detail: fmt.Sprintf("operation %d: %s requires a document id", n, op.Kind),
				}
			}
			op.ID = s.idgen.NewID()
		}

		key := op.Collection + "/" + op.ID
		current, exists, overlaid := s.lookup(overlay, key, op.Collection, op.ID)

		switch op.Kind {
		case domain.KindCreate:
			if exists {
				return &domain.ConflictError{
					Collection: op.Collection,
					ID:         op.ID,
					Reason:     "document already exists",
				}
			}
		case domain.KindUpdate:
			if !exists {
				return &domain.NotFoundError{Collection: op.Collection, ID: op.ID}
			}
		}

		next, err := s.engine.Apply(current, op, commit)
		if err != nil {
			return fmt.Errorf("operation %d: %w", n, err)
		}

		overlay[key] = next
		old := current
		if overlaid {
			// the pre-commit state is what rollback and indexes care
			// about, not the intermediate staged one
			for i := len(plan) - 1; i >= 0; i-- {
				if plan[i].op.Collection == op.Collection && plan[i].op.ID == op.ID {
					old = plan[i].old
					break
				}
			}
		}
		plan = append(plan, staged{op: op, doc: next, old: old})
	}

	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	var idxErrs []error
	entries := make([]journal.Entry, 0, len(plan))
	for _, st := range plan {
		c := s.collections[st.op.Collection]
		if c == nil {
			c = &collection{docs: make(map[string]domain.Document)}
			s.collections[st.op.Collection] = c
		}

		stored, existed := c.docs[st.op.ID]
		if st.doc == nil {
			delete(c.docs, st.op.ID)
		} else {
			c.docs[st.op.ID] = st.doc
		}

		for _, idx := range c.indexes {
			var err error
			switch {
			case existed && st.doc == nil:
				err = idx.Remove(ctx, st.op.ID, stored)
			case existed:
				err = idx.Update(ctx, st.op.ID, stored, st.doc)
			case st.doc != nil:
				err = idx.Insert(ctx, st.op.ID, st.doc)
			}
			if err != nil {
				idxErrs = append(idxErrs, err)
			}
		}

		entries = append(entries, journal.Entry{
			Kind:       st.op.Kind,
			Collection: st.op.Collection,
			ID:         st.op.ID,
			Data:       toMap(st.doc),
			Timestamp:  commit,
		})
	}

	if err := s.jrnl.Record(ctx, entries...); err != nil {
		idxErrs = append(idxErrs, err)
	}

	for _, st := range plan {
		sink.Notify(s.snk, domain.Event{
			Collection: st.op.Collection,
			Kind:       st.op.Kind,
			ID:         st.op.ID,
			Timestamp:  commit,
		})
	}

	if len(idxErrs) > 0 {
		return errors.Join(idxErrs...)
	}
	return nil
}

// EnsureIndex registers a compound index definition and builds the maintained
// index over the collection's current documents.
func (s *Store) EnsureIndex(ctx context.Context, def domain.IndexDefinition) error {
	if def.Collection == "" || len(def.Fields) == 0 {
		return &domain.ConfigurationError{Detail: "index requires a collection and at least one field"}
	}

	idx, err := index.NewLiveIndex(
		domain.WithLiveIndexFields(def.Fields...),
		domain.WithLiveIndexComparer(s.cmpr),
		domain.WithLiveIndexFieldNavigator(s.fn),
	)
	if err != nil {
		return err
	}

	s.dataMu.Lock()
	defer s.dataMu.Unlock()

	c := s.collections[def.Collection]
	if c == nil {
		c = &collection{docs: make(map[string]domain.Document)}
		s.collections[def.Collection] = c
	}
	if err := idx.Reset(ctx, c.docs); err != nil {
		return err
	}

	c.indexes = append(c.indexes, idx)
	s.idxv.Register(def)
	return nil
}

// lookup resolves the current state of a document, preferring a state staged
// earlier in the same commit.
func (s *Store) lookup(overlay map[string]domain.Document, key, col, id string) (domain.Document, bool, bool) {
	if doc, ok := overlay[key]; ok {
		return doc, doc != nil, true
	}

	s.dataMu.RLock()
	defer s.dataMu.RUnlock()

	c := s.collections[col]
	if c == nil {
		return nil, false, false
	}
	doc, ok := c.docs[id]
	return doc, ok, false
}

// candidates gathers the snapshots to evaluate, narrowing through a
// maintained index when one covers a conjunctive constraint on its first
// field.
func (s *Store) candidates(ctx context.Context, col string, set domain.ConstraintSet) ([]domain.Snapshot, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()

	c := s.collections[col]
	if c == nil {
		return nil, nil
	}

	if ids, ok, err := s.indexedCandidates(ctx, c, set); err != nil {
		return nil, err
	} else if ok {
		res := make([]domain.Snapshot, 0, len(ids))
		for _, id := range ids {
			doc, stored := c.docs[id]
			if !stored {
				continue
			}
			res = append(res, domain.NewSnapshot(col, id, data.Copy(doc), true, s.dec))
		}
		return res, nil
	}

	res := make([]domain.Snapshot, 0, len(c.docs))
	for id, doc := range c.docs {
		res = append(res, domain.NewSnapshot(col, id, data.Copy(doc), true, s.dec))
	}
	return res, nil
}

// indexedCandidates narrows the candidate set through a single-field
// maintained index. Narrowing is only sound when every constraint is
// and-joined, so any or-joined or nested constraint disables it.
func (s *Store) indexedCandidates(ctx context.Context, c *collection, set domain.ConstraintSet) ([]string, bool, error) {
	if len(set.Constraints) == 0 {
		return nil, false, nil
	}
	for n, cons := range set.Constraints {
		if n > 0 && cons.Connector() == domain.Or {
			return nil, false, nil
		}
		if _, nested := cons.(domain.NestedConstraint); nested {
			return nil, false, nil
		}
	}

	for _, idx := range c.indexes {
		fields := idx.Fields()
		if len(fields) != 1 {
			continue
		}
		ids, ok, err := s.scanIndex(ctx, idx, fields[0].Field, set.Constraints)
		if err != nil || ok {
			return ids, ok, err
		}
	}
	return nil, false, nil
}

func (s *Store) scanIndex(ctx context.Context, idx *index.LiveIndex, field string, constraints []domain.Constraint) ([]string, bool, error) {
	for _, cons := range constraints {
		basic, ok := cons.(domain.BasicConstraint)
		if !ok || basic.Field != field {
			continue
		}

		switch basic.Operator {
		case domain.OpEqual:
			matches, err := idx.GetMatching(basic.Value)
			if err != nil {
				return nil, false, err
			}
			ids, err := collectIDs(matches)
			return ids, err == nil, err

		case domain.OpLess:
			return s.rangeScan(ctx, idx, nil, &index.Bound{Value: basic.Value})
		case domain.OpLessOrEqual:
			return s.rangeScan(ctx, idx, nil, &index.Bound{Value: basic.Value, Inclusive: true})
		case domain.OpGreater:
			return s.rangeScan(ctx, idx, &index.Bound{Value: basic.Value}, nil)
		case domain.OpGreaterOrEqual:
			return s.rangeScan(ctx, idx, &index.Bound{Value: basic.Value, Inclusive: true}, nil)
		}
	}
	return nil, false, nil
}

func (s *Store) rangeScan(ctx context.Context, idx *index.LiveIndex, lower, upper *index.Bound) ([]string, bool, error) {
	seq, err := idx.GetBetweenBounds(ctx, lower, upper)
	if err != nil {
		return nil, false, err
	}
	ids, err := collectIDs(seq)
	return ids, err == nil, err
}

func collectIDs(seq iter.Seq2[string, error]) ([]string, error) {
	var ids []string
	for id, err := range seq {
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func toMap(doc domain.Document) map[string]any {
	if doc == nil {
		return nil
	}
	if m, ok := doc.(data.M); ok {
		return m
	}
	return maps.Collect(doc.Iter())
}
