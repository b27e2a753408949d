// Package batch contains the batch coordinator: a write-only accumulator of
// operations committed in fixed-size chunks. Each chunk commits atomically;
// the batch as a whole does not, and a chunk failure stops execution without
// rolling back the chunks already committed.
package batch

import (
	"context"
	"fmt"

	"github.com/firelite-db/firelite/domain"
	"github.com/firelite-db/firelite/internal/adapter/clock"
	"github.com/firelite-db/firelite/internal/adapter/data"
	"github.com/firelite-db/firelite/internal/adapter/validate"
)

// Batch accumulates operations for chunked commit. Not safe for concurrent
// use; a batch belongs to one goroutine.
type Batch struct {
	client    domain.Client
	validator domain.Validator
	docFac    domain.DocumentFactory
	clk       domain.Clock
	maxOps    int
	chunkSize int

	ops      []domain.Operation
	executed bool
}

// NewBatch returns an empty batch committing through client.
func NewBatch(client domain.Client, options ...domain.BatchOption) *Batch {
	opts := domain.BatchOptions{
		MaxOperations:   domain.DefaultLimits().MaxOperations,
		ChunkSize:       100,
		Validator:       validate.NewValidate(),
		DocumentFactory: data.NewDocument,
		Clock:           clock.NewClock(),
	}
	for _, option := range options {
		option(&opts)
	}
	return &Batch{
		client:    client,
		validator: opts.Validator,
		docFac:    opts.DocumentFactory,
		clk:       opts.Clock,
		maxOps:    opts.MaxOperations,
		chunkSize: opts.ChunkSize,
	}
}

// Len returns the number of accumulated operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Add appends an operation. It fails with [domain.ErrOperationLimit] once the
// batch holds the configured maximum.
func (b *Batch) Add(op domain.Operation) error {
	if b.executed {
		return domain.ErrAlreadyExecuted
	}
	if len(b.ops) >= b.maxOps {
		return domain.ErrOperationLimit
	}
	b.ops = append(b.ops, op)
	return nil
}

// Create appends a create of a document that must not exist yet.
func (b *Batch) Create(collection, id string, payload any) error {
	doc, err := b.docFac(payload)
	if err != nil {
		return err
	}
	return b.Add(domain.Operation{
		Kind:       domain.KindCreate,
		Collection: collection,
		ID:         id,
		Data:       doc,
	})
}

// Set appends a full write (or merge) of a document.
func (b *Batch) Set(collection, id string, payload any, opts ...domain.SetOption) error {
	doc, err := b.docFac(payload)
	if err != nil {
		return err
	}
	var oo domain.OperationOptions
	for _, opt := range opts {
		opt(&oo)
	}
	return b.Add(domain.Operation{
		Kind:       domain.KindSet,
		Collection: collection,
		ID:         id,
		Data:       doc,
		Options:    oo,
	})
}

// Update appends a merge into a document that must exist. Data keys are
// dotted field paths.
func (b *Batch) Update(collection, id string, payload any) error {
	doc, err := b.docFac(payload)
	if err != nil {
		return err
	}
	return b.Add(domain.Operation{
		Kind:       domain.KindUpdate,
		Collection: collection,
		ID:         id,
		Data:       doc,
	})
}

// Delete appends a delete of a document.
func (b *Batch) Delete(collection, id string) error {
	return b.Add(domain.Operation{
		Kind:       domain.KindDelete,
		Collection: collection,
		ID:         id,
	})
}

// Execute validates the accumulated operations and commits them in chunks. A
// chunk failure stops execution; earlier chunks stay committed and the result
// metadata reports how far the batch got. A batch executes at most once.
func (b *Batch) Execute(ctx context.Context) domain.Result {
	start := b.clk.Now()
	done := func(res domain.Result) domain.Result {
		res.Duration = b.clk.Now().Sub(start)
		return res
	}

	if b.executed {
		return done(domain.Result{Err: domain.ErrAlreadyExecuted})
	}
	b.executed = true

	if len(b.ops) == 0 {
		return done(domain.Result{
			Success:  true,
			Metadata: map[string]any{"committed": 0, "chunks": 0},
		})
	}

	if err := b.validator.ValidateOrFail(b.ops...); err != nil {
		return done(domain.Result{Err: err})
	}

	chunks := b.chunk()
	committed := 0
	for n, chunk := range chunks {
		if err := b.client.Apply(ctx, chunk...); err != nil {
			return done(domain.Result{
				Err: fmt.Errorf("chunk %d of %d: %w", n+1, len(chunks), err),
				Metadata: map[string]any{
					"committed":    committed,
					"chunks":       len(chunks),
					"failed_chunk": n,
				},
			})
		}
		committed += len(chunk)
	}

	return done(domain.Result{
		Success: true,
		Metadata: map[string]any{
			"committed": committed,
			"chunks":    len(chunks),
		},
	})
}

func (b *Batch) chunk() [][]domain.Operation {
	size := b.chunkSize
	if size <= 0 {
		size = len(b.ops)
	}
	var res [][]domain.Operation
	for at := 0; at < len(b.ops); at += size {
		end := min(at+size, len(b.ops))
		res = append(res, b.ops[at:end])
	}
	return res
}
