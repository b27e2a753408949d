// Package firelite provides an embedded Firestore-like document data layer
// for golang.
//
// Documents live in named collections, addressed by id. Queries are built
// fluently with [NewQuery], evaluated with the same filter, order, cursor and
// pagination semantics as the remote backend, and validated against its
// compound-index rules. Writes go through batches ([NewBatch]) or retrying
// transactions ([NewTransaction]), with field transforms such as
// [ServerTimestamp] and [Increment] resolved at commit time.
//
// The basic usage starts with creating a new [Store] instance, which can be
// done by calling [NewStore].
package firelite

import (
	"context"
	"io"

	"github.com/firelite-db/firelite/domain"
	"github.com/firelite-db/firelite/internal/adapter/batch"
	"github.com/firelite-db/firelite/internal/adapter/builder"
	"github.com/firelite-db/firelite/internal/adapter/evaluator"
	"github.com/firelite-db/firelite/internal/adapter/indexcheck"
	"github.com/firelite-db/firelite/internal/adapter/journal"
	"github.com/firelite-db/firelite/internal/adapter/sink"
	"github.com/firelite-db/firelite/internal/adapter/store"
	"github.com/firelite-db/firelite/internal/adapter/transform"
	"github.com/firelite-db/firelite/internal/adapter/txn"
	"github.com/firelite-db/firelite/internal/adapter/validate"
)

var (
	// ErrOperationLimit is returned by [Batch.Add] when the batch already
	// holds the configured maximum number of operations.
	ErrOperationLimit = domain.ErrOperationLimit
	// ErrAlreadyExecuted is returned when reusing a [Batch] that has
	// already executed.
	ErrAlreadyExecuted = domain.ErrAlreadyExecuted
	// ErrUnknownConstraint is returned when query evaluation meets a
	// constraint variant it does not know.
	ErrUnknownConstraint = domain.ErrUnknownConstraint
)

// ErrTargetNil is returned when user provides a nil value as a target to
// decode data, for example, calling [Snapshot.DataTo].
type ErrTargetNil = domain.ErrTargetNil

// ValidationError aggregates every limit or shape violation found in one
// validation pass.
type ValidationError = domain.ValidationError

// IndexRequiredError is returned by [Store.Query] in strict mode when no
// registered compound index satisfies the query.
type IndexRequiredError = domain.IndexRequiredError

// NotFoundError is returned when a referenced document is absent but required
// to exist.
type NotFoundError = domain.NotFoundError

// ConflictError is returned on a precondition mismatch, such as creating a
// document that already exists.
type ConflictError = domain.ConflictError

// TransientError marks a retryable failure. Transactions retry only errors
// wrapped in it.
type TransientError = domain.TransientError

// ConfigurationError is returned for malformed coordinator input, such as an
// unknown operation kind.
type ConfigurationError = domain.ConfigurationError

// IsTransient reports whether err is (or wraps) a [TransientError].
func IsTransient(err error) bool {
	return domain.IsTransient(err)
}

// Document represents the payload of a stored record.
type Document = domain.Document

// DocumentFactory represents a [Document] constructor that can be
// reimplemented. It should accept structured data types and create an
// equivalent [Document], respecting the given structure. If nil is given as
// argument, a document of length 0 should be returned.
type DocumentFactory = domain.DocumentFactory

// Snapshot is the read-time view of a document.
type Snapshot = domain.Snapshot

// Comparer provides ordering and comparison for different data types.
type Comparer = domain.Comparer

// Decoder converts between different data representations.
type Decoder = domain.Decoder

// FieldNavigator provides field access operations with dot notation support.
type FieldNavigator = domain.FieldNavigator

// Hasher generates hash values for data deduplication.
type Hasher = domain.Hasher

// Clock supplies commit timestamps.
type Clock = domain.Clock

// IDGenerator is used to create unique ids for new documents.
type IDGenerator = domain.IDGenerator

// EventSink receives fire-and-forget notifications of committed operations.
type EventSink = domain.EventSink

// Event is the audit notification emitted after a committed operation.
type Event = domain.Event

// Client is the capability surface coordinators require from a document
// database. [Store] implements it; a remote driver can be substituted.
type Client = domain.Client

// Tx is the transactional handle passed to a transaction work function.
type Tx = domain.Tx

// Evaluator applies a constraint set to a snapshot sequence.
type Evaluator = domain.Evaluator

// IndexValidator reproduces the backend's compound-index requirement rules.
type IndexValidator = domain.IndexValidator

// TransformEngine resolves field-transform directives against stored state.
type TransformEngine = domain.TransformEngine

// Validator performs the stateless limit and shape checks on proposed
// operations.
type Validator = domain.Validator

// BackOffPolicy yields the delay applied between transaction attempts.
type BackOffPolicy = domain.BackOffPolicy

// Constraint is one filter condition applied during query evaluation.
type Constraint = domain.Constraint

// ConstraintSet is the accumulated output of a [Query] and the input of query
// evaluation.
type ConstraintSet = domain.ConstraintSet

// Operator is a filter comparison operator accepted by constraints.
type Operator = domain.Operator

// Comparison operators accepted by [Query.Where].
const (
	OpEqual            = domain.OpEqual
	OpNotEqual         = domain.OpNotEqual
	OpLess             = domain.OpLess
	OpLessOrEqual      = domain.OpLessOrEqual
	OpGreater          = domain.OpGreater
	OpGreaterOrEqual   = domain.OpGreaterOrEqual
	OpIn               = domain.OpIn
	OpNotIn            = domain.OpNotIn
	OpArrayContains    = domain.OpArrayContains
	OpArrayContainsAny = domain.OpArrayContainsAny
	OpLike             = domain.OpLike
)

// Direction tells which way a sort criterion orders.
type Direction = domain.Direction

// Sort directions accepted by [Query.OrderBy].
const (
	Ascending  = domain.Ascending
	Descending = domain.Descending
)

// Transform is a write-time directive resolved against the stored value
// instead of overwriting it.
type Transform = domain.Transform

// ServerTimestamp resolves to the commit timestamp.
type ServerTimestamp = domain.ServerTimestamp

// Increment adds its delta to the stored numeric value, defaulting an absent
// base to zero.
type Increment = domain.Increment

// ArrayUnion appends each element not already present in the stored array.
type ArrayUnion = domain.ArrayUnion

// ArrayRemove removes every stored element equal to any of its elements.
type ArrayRemove = domain.ArrayRemove

// DeleteField removes the field from the document entirely.
type DeleteField = domain.DeleteField

// Kind discriminates the mutation operation variants.
type Kind = domain.Kind

// Mutation operation kinds.
const (
	KindCreate = domain.KindCreate
	KindUpdate = domain.KindUpdate
	KindSet    = domain.KindSet
	KindDelete = domain.KindDelete
)

// Operation is the unit of mutation submitted to batches and transactions.
type Operation = domain.Operation

// Result is the outcome reported by a coordinator run.
type Result = domain.Result

// IndexField is one entry of a compound index field list.
type IndexField = domain.IndexField

// IndexDefinition describes a registered compound index for one collection.
type IndexDefinition = domain.IndexDefinition

// Limits are the validation bounds applied to proposed operations.
type Limits = domain.Limits

// DefaultLimits returns the backend-compatible default validation limits.
func DefaultLimits() Limits {
	return domain.DefaultLimits()
}

// Violation is a single validation failure, addressed by a dotted field path.
type Violation = domain.Violation

// Store is the in-memory document store. All methods are safe to use
// concurrently from multiple goroutines.
type Store = store.Store

// NewStore creates a new [Store] instance with the provided configuration
// options:
//
// - [WithStoreComparer]: sets the comparer for value comparison operations.
//
// - [WithStoreDocumentFactory]: sets the function for creating documents.
//
// - [WithStoreFieldNavigator]: sets the navigator for dotted field access.
//
// - [WithStoreEvaluator]: sets the query evaluator implementation.
//
// - [WithStoreIndexValidator]: sets the compound-index validator.
//
// - [WithStoreTransformEngine]: sets the transform engine.
//
// - [WithStoreClock]: sets the clock supplying commit timestamps.
//
// - [WithStoreIDGenerator]: sets the generator for auto-assigned ids.
//
// - [WithStoreDecoder]: sets the decoder used by snapshot DataTo.
//
// - [WithStoreHasher]: sets the hasher used for distinct deduplication.
//
// - [WithStoreSink]: sets the audit event sink.
//
// - [WithStoreJournal]: sets the writer receiving the commit journal.
//
// - [WithStoreStrictIndexes]: enables strict compound-index validation.
func NewStore(options ...StoreOption) *Store {
	return store.NewStore(options...)
}

// Query is the fluent constraint builder.
type Query = builder.Builder

// NewQuery returns an empty constraint builder.
func NewQuery() *Query {
	return builder.NewBuilder()
}

// Batch accumulates operations for chunked commit.
type Batch = batch.Batch

// NewBatch returns an empty batch committing through client. Options:
//
// - [WithBatchMaxOperations]: overrides the operation cap (default 500).
//
// - [WithBatchChunkSize]: overrides the chunk size (default 100).
//
// - [WithBatchValidator]: sets the validator run before commit.
//
// - [WithBatchDocumentFactory]: sets the function for creating documents.
//
// - [WithBatchClock]: sets the clock measuring execution duration.
func NewBatch(client Client, options ...BatchOption) *Batch {
	return batch.NewBatch(client, options...)
}

// Transaction is the retrying transaction coordinator.
type Transaction = txn.Txn

// WorkFunc is the unit of transactional work.
type WorkFunc = txn.WorkFunc

// NewTransaction returns a transaction coordinator committing through client.
// Options:
//
// - [WithTxMaxAttempts]: bounds the retry loop (default 5).
//
// - [WithTxBackOff]: sets the delay policy applied between attempts.
//
// - [WithTxValidator]: sets the validator run before commit.
//
// - [WithTxDocumentFactory]: sets the function for creating documents.
//
// - [WithTxTransformEngine]: sets the engine used by snapshot reads.
//
// - [WithTxClock]: sets the clock used for durations.
func NewTransaction(client Client, options ...TxOption) *Transaction {
	return txn.NewTxn(client, options...)
}

// NewEvaluator returns the default query evaluator.
func NewEvaluator(options ...EvaluatorOption) Evaluator {
	return evaluator.NewEvaluator(options...)
}

// NewIndexValidator returns a compound-index validator with an empty
// registry.
func NewIndexValidator() IndexValidator {
	return indexcheck.NewIndexCheck()
}

// NewTransformEngine returns the default transform engine.
func NewTransformEngine(options ...TransformOption) TransformEngine {
	return transform.NewEngine(options...)
}

// NewValidator returns the default operation validator.
func NewValidator(options ...ValidatorOption) Validator {
	return validate.NewValidate(options...)
}

// NewMemorySink returns an [EventSink] recording events for later
// inspection.
func NewMemorySink() *sink.Memory {
	return sink.NewMemory()
}

// JournalEntry is one committed operation as written to the commit journal.
type JournalEntry = journal.Entry

// ReplayJournal streams the entries of a recorded commit journal to fn in
// commit order.
func ReplayJournal(ctx context.Context, r io.Reader, fn func(JournalEntry) error) error {
	return journal.Replay(ctx, r, fn)
}

// StoreOption configures the store through the functional options pattern.
type StoreOption = domain.StoreOption

// EvaluatorOption configures the query evaluator.
type EvaluatorOption = domain.EvaluatorOption

// TransformOption configures the transform engine.
type TransformOption = domain.TransformOption

// ValidatorOption configures the operation validator.
type ValidatorOption = domain.ValidatorOption

// BatchOption configures a batch coordinator.
type BatchOption = domain.BatchOption

// TxOption configures a transaction coordinator.
type TxOption = domain.TxOption

// SetOption configures a set operation.
type SetOption = domain.SetOption

// WithMerge makes a set merge into the existing document instead of replacing
// it.
func WithMerge(merge bool) SetOption {
	return domain.WithMerge(merge)
}

// WithStoreComparer sets the comparer for value comparison operations.
func WithStoreComparer(c Comparer) StoreOption {
	return domain.WithStoreComparer(c)
}

// WithStoreDocumentFactory sets the function for creating [Document]
// instances.
func WithStoreDocumentFactory(f DocumentFactory) StoreOption {
	return domain.WithStoreDocumentFactory(f)
}

// WithStoreFieldNavigator sets the navigator for dotted field access.
func WithStoreFieldNavigator(fn FieldNavigator) StoreOption {
	return domain.WithStoreFieldNavigator(fn)
}

// WithStoreEvaluator sets the query evaluator implementation.
func WithStoreEvaluator(e Evaluator) StoreOption {
	return domain.WithStoreEvaluator(e)
}

// WithStoreIndexValidator sets the compound-index validator.
func WithStoreIndexValidator(iv IndexValidator) StoreOption {
	return domain.WithStoreIndexValidator(iv)
}

// WithStoreTransformEngine sets the transform engine.
func WithStoreTransformEngine(te TransformEngine) StoreOption {
	return domain.WithStoreTransformEngine(te)
}

// WithStoreClock sets the clock supplying commit timestamps.
func WithStoreClock(c Clock) StoreOption {
	return domain.WithStoreClock(c)
}

// WithStoreIDGenerator sets the generator for auto-assigned document ids.
func WithStoreIDGenerator(g IDGenerator) StoreOption {
	return domain.WithStoreIDGenerator(g)
}

// WithStoreDecoder sets the decoder used by [Snapshot.DataTo].
func WithStoreDecoder(d Decoder) StoreOption {
	return domain.WithStoreDecoder(d)
}

// WithStoreHasher sets the hasher used for distinct deduplication.
func WithStoreHasher(h Hasher) StoreOption {
	return domain.WithStoreHasher(h)
}

// WithStoreSink sets the audit event sink.
func WithStoreSink(s EventSink) StoreOption {
	return domain.WithStoreSink(s)
}

// WithStoreJournal sets the writer receiving the commit journal.
func WithStoreJournal(w io.Writer) StoreOption {
	return domain.WithStoreJournal(w)
}

// WithStoreStrictIndexes enables strict compound-index validation on queries.
func WithStoreStrictIndexes(strict bool) StoreOption {
	return domain.WithStoreStrictIndexes(strict)
}

// WithBatchMaxOperations overrides the batch operation cap.
func WithBatchMaxOperations(n int) BatchOption {
	return domain.WithBatchMaxOperations(n)
}

// WithBatchChunkSize overrides the number of operations committed per chunk.
func WithBatchChunkSize(n int) BatchOption {
	return domain.WithBatchChunkSize(n)
}

// WithBatchValidator sets the validator run before each commit.
func WithBatchValidator(v Validator) BatchOption {
	return domain.WithBatchValidator(v)
}

// WithBatchDocumentFactory sets the function for creating [Document]
// instances.
func WithBatchDocumentFactory(f DocumentFactory) BatchOption {
	return domain.WithBatchDocumentFactory(f)
}

// WithBatchClock sets the clock measuring execution duration.
func WithBatchClock(c Clock) BatchOption {
	return domain.WithBatchClock(c)
}

// WithTxMaxAttempts bounds the transaction retry loop.
func WithTxMaxAttempts(n int) TxOption {
	return domain.WithTxMaxAttempts(n)
}

// WithTxBackOff sets the delay policy applied between attempts.
func WithTxBackOff(b BackOffPolicy) TxOption {
	return domain.WithTxBackOff(b)
}

// WithTxValidator sets the validator run before commit.
func WithTxValidator(v Validator) TxOption {
	return domain.WithTxValidator(v)
}

// WithTxDocumentFactory sets the function for creating [Document] instances.
func WithTxDocumentFactory(f DocumentFactory) TxOption {
	return domain.WithTxDocumentFactory(f)
}

// WithTxTransformEngine sets the transform engine used by snapshot reads.
func WithTxTransformEngine(te TransformEngine) TxOption {
	return domain.WithTxTransformEngine(te)
}

// WithTxClock sets the clock used for durations and provisional timestamps.
func WithTxClock(c Clock) TxOption {
	return domain.WithTxClock(c)
}

// WithValidatorLimits overrides the default validation limits.
func WithValidatorLimits(l Limits) ValidatorOption {
	return domain.WithValidatorLimits(l)
}

// WithValidatorDocumentFactory sets the function for creating [Document]
// instances.
func WithValidatorDocumentFactory(f DocumentFactory) ValidatorOption {
	return domain.WithValidatorDocumentFactory(f)
}
