// Package index contains the maintained compound index backing strict-mode
// queries. An index keeps document ids ordered by a composite key extracted
// from each payload, so equality and range lookups can narrow the candidate
// set before full evaluation.
package index

import (
	"context"
	"iter"
	"slices"

	"github.com/vinicius-lino-figueiredo/bst"
	"github.com/vinicius-lino-figueiredo/bst/adapter/avl"

	"github.com/firelite-db/firelite/domain"
	"github.com/firelite-db/firelite/internal/adapter/comparer"
	"github.com/firelite-db/firelite/internal/adapter/data"
	"github.com/firelite-db/firelite/internal/adapter/fieldnavigator"
)

// Bound delimits one side of a key range.
type Bound struct {
	Value     any
	Inclusive bool
}

// LiveIndex keeps an ordered mapping from composite field keys to document
// ids, maintained on every commit.
type LiveIndex struct {
	fields         []domain.IndexField
	tree           bst.BST[any, string]
	comparer       domain.Comparer
	bstComparer    bst.Comparer[any, string]
	fieldNavigator domain.FieldNavigator
}

// NewLiveIndex returns a maintained index over the configured field list.
func NewLiveIndex(options ...domain.LiveIndexOption) (*LiveIndex, error) {
	opts := domain.LiveIndexOptions{
		Comparer: comparer.NewComparer(),
	}
	for _, option := range options {
		option(&opts)
	}
	if len(opts.Fields) == 0 {
		return nil, &domain.ConfigurationError{Detail: "index requires at least one field"}
	}
	if opts.FieldNavigator == nil {
		opts.FieldNavigator = fieldnavigator.NewFieldNavigator(data.NewDocument)
	}

	bstComparer := NewBSTComparer(opts.Comparer, opts.Fields)

	return &LiveIndex{
		fields:         opts.Fields,
		tree:           avl.NewBST(false, 8, bstComparer),
		comparer:       opts.Comparer,
		bstComparer:    bstComparer,
		fieldNavigator: opts.FieldNavigator,
	}, nil
}

// Fields returns the ordered field list the index covers.
func (i *LiveIndex) Fields() []domain.IndexField {
	return slices.Clone(i.fields)
}

// Reset discards the tree and reindexes the given documents.
func (i *LiveIndex) Reset(ctx context.Context, docs map[string]domain.Document) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	i.tree = avl.NewBST(false, 8, i.bstComparer)
	for id, doc := range docs {
		if err := i.Insert(ctx, id, doc); err != nil {
			return err
		}
	}
	return nil
}

// getKeys extracts the index keys for a payload. A single-field index over an
// array value yields one key per element; a multi-field index yields one
// composite key. Absent fields key as nil.
func (i *LiveIndex) getKeys(doc domain.Document) ([]any, error) {
	if len(i.fields) != 1 {
		return i.getCompositeKey(doc)
	}

	value, err := i.fieldValue(doc, i.fields[0].Field)
	if err != nil {
		return nil, err
	}
	if arr, ok := value.([]any); ok && len(arr) > 0 {
		return arr, nil
	}
	return []any{value}, nil
}

func (i *LiveIndex) getCompositeKey(doc domain.Document) ([]any, error) {
	k := make(data.M, len(i.fields))
	for _, f := range i.fields {
		value, err := i.fieldValue(doc, f.Field)
		if err != nil {
			return nil, err
		}
		k[f.Field] = value
	}
	return []any{k}, nil
}

func (i *LiveIndex) fieldValue(doc domain.Document, field string) (any, error) {
	addr, err := i.fieldNavigator.GetAddress(field)
	if err != nil {
		return nil, err
	}
	gs, err := i.fieldNavigator.GetField(doc, addr...)
	if err != nil {
		return nil, err
	}
	value, _ := gs.Get()
	return value, nil
}

// Insert indexes a document under every key its payload yields. A partial
// failure removes the keys inserted so far.
func (i *LiveIndex) Insert(ctx context.Context, id string, doc domain.Document) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	keys, err := i.getKeys(doc)
	if err != nil {
		return err
	}
	slices.SortFunc(keys, i.compareThings)
	keys = slices.CompactFunc(keys, func(a, b any) bool { return i.compareThings(a, b) == 0 })

	inserted := make([]any, 0, len(keys))
	for _, k := range keys {
		if err = i.tree.Insert(k, id); err != nil {
			break
		}
		inserted = append(inserted, k)
	}
	if err != nil {
		for _, k := range inserted {
			_ = i.tree.Delete(k, &id)
		}
		return err
	}
	return nil
}

// Remove drops every key the payload yields for the document.
func (i *LiveIndex) Remove(ctx context.Context, id string, doc domain.Document) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	keys, err := i.getKeys(doc)
	if err != nil {
		return err
	}
	slices.SortFunc(keys, i.compareThings)
	keys = slices.CompactFunc(keys, func(a, b any) bool { return i.compareThings(a, b) == 0 })

	for _, k := range keys {
		_ = i.tree.Delete(k, &id)
	}
	return nil
}

// Update reindexes a document, restoring the old state when the new payload
// cannot be inserted.
func (i *LiveIndex) Update(ctx context.Context, id string, oldDoc, newDoc domain.Document) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := i.Remove(ctx, id, oldDoc); err != nil {
		return err
	}
	if err := i.Insert(ctx, id, newDoc); err != nil {
		_ = i.Insert(context.WithoutCancel(ctx), id, oldDoc)
		return err
	}
	return nil
}

// GetMatching returns the ids stored under the given keys, in key order.
func (i *LiveIndex) GetMatching(keys ...any) (iter.Seq2[string, error], error) {
	sorted := slices.Clone(keys)
	slices.SortFunc(sorted, i.compareThings)
	sorted = slices.CompactFunc(sorted, func(a, b any) bool { return i.compareThings(a, b) == 0 })

	return func(yield func(string, error) bool) {
		for _, k := range sorted {
			found, err := i.tree.Search(k)
			if err != nil {
				yield("", err)
				return
			}
			if found == nil {
				continue
			}
			for _, id := range found.Values() {
				if !yield(id, nil) {
					return
				}
			}
		}
	}, nil
}

// GetBetweenBounds returns the ids whose keys fall inside the given range,
// in key order. A nil bound leaves that side open.
func (i *LiveIndex) GetBetweenBounds(ctx context.Context, lower, upper *Bound) (iter.Seq2[string, error], error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var qry bst.Query[any]
	if lower != nil {
		qry.GreaterThan = &bst.Bound[any]{Value: lower.Value, IncludeEqual: lower.Inclusive}
	}
	if upper != nil {
		qry.LowerThan = &bst.Bound[any]{Value: upper.Value, IncludeEqual: upper.Inclusive}
	}
	return i.tree.Query(qry), nil
}

// GetAll returns every indexed id in key order.
func (i *LiveIndex) GetAll() iter.Seq[string] {
	return i.tree.GetAll()
}

// GetNumberOfKeys returns the number of distinct keys in the tree.
func (i *LiveIndex) GetNumberOfKeys() int {
	return i.tree.GetNumberOfKeys()
}

func (i *LiveIndex) compareThings(a any, b any) int {
	comp, _ := i.comparer.Compare(a, b)
	return comp
}
