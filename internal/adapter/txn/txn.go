// Package txn contains the transaction coordinator. A transaction runs a
// work function against a buffered handle, commits the buffer atomically on
// success and retries the whole attempt on transient failures, backing off
// between attempts.
package txn

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/firelite-db/firelite/domain"
	"github.com/firelite-db/firelite/internal/adapter/clock"
	"github.com/firelite-db/firelite/internal/adapter/data"
	"github.com/firelite-db/firelite/internal/adapter/transform"
	"github.com/firelite-db/firelite/internal/adapter/validate"
)

// WorkFunc is the unit of transactional work. It may be invoked multiple
// times and must not keep state between invocations.
type WorkFunc func(ctx context.Context, tx domain.Tx) error

// Txn implements the retrying transaction coordinator.
type Txn struct {
	client      domain.Client
	validator   domain.Validator
	docFac      domain.DocumentFactory
	engine      domain.TransformEngine
	clk         domain.Clock
	maxAttempts int
	policy      domain.BackOffPolicy
}

// NewTxn returns a transaction coordinator committing through client. The
// default policy retries up to 5 attempts with exponential backoff.
func NewTxn(client domain.Client, options ...domain.TxOption) *Txn {
	opts := domain.TxOptions{
		MaxAttempts:     5,
		BackOff:         backoff.NewExponentialBackOff(),
		Validator:       validate.NewValidate(),
		DocumentFactory: data.NewDocument,
		TransformEngine: transform.NewEngine(),
		Clock:           clock.NewClock(),
	}
	for _, option := range options {
		option(&opts)
	}
	return &Txn{
		client:      client,
		validator:   opts.Validator,
		docFac:      opts.DocumentFactory,
		engine:      opts.TransformEngine,
		clk:         opts.Clock,
		maxAttempts: max(opts.MaxAttempts, 1),
		policy:      opts.BackOff,
	}
}

// Run executes fn transactionally. Every attempt starts from a fresh buffer;
// only errors marked transient are retried, and the attempt count is
// reported in the result metadata.
func (t *Txn) Run(ctx context.Context, fn WorkFunc) domain.Result {
	start := t.clk.Now()
	done := func(res domain.Result, attempts int) domain.Result {
		res.Duration = t.clk.Now().Sub(start)
		res.Metadata = map[string]any{"attempts": attempts}
		return res
	}

	t.policy.Reset()

	var lastErr error
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		h := &handle{txn: t}

		err := fn(ctx, h)
		if err == nil {
			err = h.commit(ctx)
		}
		if err == nil {
			return done(domain.Result{Success: true}, attempt)
		}

		lastErr = err
		if !domain.IsTransient(err) || attempt == t.maxAttempts {
			return done(domain.Result{Err: err}, attempt)
		}

		delay := t.policy.NextBackOff()
		if delay < 0 {
			// the policy gave up before the attempt bound
			return done(domain.Result{Err: err}, attempt)
		}
		select {
		case <-ctx.Done():
			return done(domain.Result{Err: ctx.Err()}, attempt)
		case <-time.After(delay):
		}
	}

	return done(domain.Result{Err: lastErr}, t.maxAttempts)
}

// handle implements [domain.Tx] over a buffered operation list.
type handle struct {
	txn *Txn
	ops []domain.Operation
}

// Snapshot implements [domain.Tx]. The stored state is read through the
// client and the operations buffered so far are replayed on top, so a
// transaction observes its own writes.
func (h *handle) Snapshot(ctx context.Context, collection, id string) (domain.Snapshot, error) {
	snap, err := h.txn.client.Read(ctx, collection, id)
	if err != nil {
		return domain.Snapshot{}, err
	}

	doc := snap.Data()
	exists := snap.Exists
	provisional := h.txn.clk.Now()

	for _, op := range h.ops {
		if op.Collection != collection || op.ID != id {
			continue
		}
		switch op.Kind {
		case domain.KindCreate:
			if exists {
				return domain.Snapshot{}, &domain.ConflictError{
					Collection: collection,
					ID:         id,
					Reason:     "document already exists",
				}
			}
		case domain.KindUpdate:
			if !exists {
				return domain.Snapshot{}, &domain.NotFoundError{Collection: collection, ID: id}
			}
		}

		doc, err = h.txn.engine.Apply(doc, op, provisional)
		if err != nil {
			return domain.Snapshot{}, err
		}
		exists = doc != nil
	}

	res := snap.WithData(doc)
	res.Exists = exists
	return res, nil
}

// Create implements [domain.Tx].
func (h *handle) Create(collection, id string, payload any) error {
	doc, err := h.txn.docFac(payload)
	if err != nil {
		return err
	}
	h.ops = append(h.ops, domain.Operation{
		Kind:       domain.KindCreate,
		Collection: collection,
		ID:         id,
		Data:       doc,
	})
	return nil
}

// Set implements [domain.Tx].
func (h *handle) Set(collection, id string, payload any, opts ...domain.SetOption) error {
	doc, err := h.txn.docFac(payload)
	if err != nil {
		return err
	}
	var oo domain.OperationOptions
	for _, opt := range opts {
		opt(&oo)
	}
	h.ops = append(h.ops, domain.Operation{
		Kind:       domain.KindSet,
		Collection: collection,
		ID:         id,
		Data:       doc,
		Options:    oo,
	})
	return nil
}

// Update implements [domain.Tx].
func (h *handle) Update(collection, id string, payload any) error {
	doc, err := h.txn.docFac(payload)
	if err != nil {
		return err
	}
	h.ops = append(h.ops, domain.Operation{
		Kind:       domain.KindUpdate,
		Collection: collection,
		ID:         id,
		Data:       doc,
	})
	return nil
}

// Delete implements [domain.Tx].
func (h *handle) Delete(collection, id string) {
	h.ops = append(h.ops, domain.Operation{
		Kind:       domain.KindDelete,
		Collection: collection,
		ID:         id,
	})
}

func (h *handle) commit(ctx context.Context) error {
	if len(h.ops) == 0 {
		return nil
	}
	if err := h.txn.validator.ValidateOrFail(h.ops...); err != nil {
		return err
	}
	return h.txn.client.Apply(ctx, h.ops...)
}
