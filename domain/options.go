package domain

import (
	"io"
	"time"
)

// BackOffPolicy yields the delay to apply before the next retry attempt.
// It is satisfied by the github.com/cenkalti/backoff/v5 BackOff
// implementations.
type BackOffPolicy interface {
	// NextBackOff returns the next delay.
	NextBackOff() time.Duration
	// Reset restores the policy to its initial state.
	Reset()
}

// StoreOption configures the in-memory store through the functional options
// pattern.
type StoreOption func(*StoreOptions)

// StoreOptions contains parameters for customizing a store.
type StoreOptions struct {
	// Comparer orders and equates field values.
	Comparer Comparer
	// DocumentFactory builds documents from structured data.
	DocumentFactory DocumentFactory
	// FieldNavigator resolves dotted field paths.
	FieldNavigator FieldNavigator
	// Evaluator applies constraint sets to snapshots.
	Evaluator Evaluator
	// IndexValidator keeps the compound-index registry and rules.
	IndexValidator IndexValidator
	// TransformEngine resolves field transforms at commit time.
	TransformEngine TransformEngine
	// Clock supplies commit timestamps.
	Clock Clock
	// IDGenerator supplies ids for documents created without one.
	IDGenerator IDGenerator
	// Decoder decodes snapshot payloads into caller structs.
	Decoder Decoder
	// Hasher hashes values for distinct deduplication.
	Hasher Hasher
	// Sink receives committed-operation events. Optional.
	Sink EventSink
	// Journal receives a JSON line per committed operation. Optional.
	Journal io.Writer
	// Strict makes queries fail with an IndexRequiredError when no
	// registered index satisfies a query that requires one.
	Strict bool
}

// WithStoreComparer sets the comparer for value comparison operations.
func WithStoreComparer(c Comparer) StoreOption {
	return func(o *StoreOptions) { o.Comparer = c }
}

// WithStoreDocumentFactory sets the function for creating documents.
func WithStoreDocumentFactory(f DocumentFactory) StoreOption {
	return func(o *StoreOptions) { o.DocumentFactory = f }
}

// WithStoreFieldNavigator sets the navigator for dotted field access.
func WithStoreFieldNavigator(fn FieldNavigator) StoreOption {
	return func(o *StoreOptions) { o.FieldNavigator = fn }
}

// WithStoreEvaluator sets the query evaluator implementation.
func WithStoreEvaluator(e Evaluator) StoreOption {
	return func(o *StoreOptions) { o.Evaluator = e }
}

// WithStoreIndexValidator sets the compound-index validator.
func WithStoreIndexValidator(iv IndexValidator) StoreOption {
	return func(o *StoreOptions) { o.IndexValidator = iv }
}

// WithStoreTransformEngine sets the transform engine.
func WithStoreTransformEngine(te TransformEngine) StoreOption {
	return func(o *StoreOptions) { o.TransformEngine = te }
}

// WithStoreClock sets the clock supplying commit timestamps.
func WithStoreClock(c Clock) StoreOption {
	return func(o *StoreOptions) { o.Clock = c }
}

// WithStoreIDGenerator sets the generator for auto-assigned document ids.
func WithStoreIDGenerator(g IDGenerator) StoreOption {
	return func(o *StoreOptions) { o.IDGenerator = g }
}

// WithStoreDecoder sets the decoder used by snapshot DataTo.
func WithStoreDecoder(d Decoder) StoreOption {
	return func(o *StoreOptions) { o.Decoder = d }
}

// WithStoreHasher sets the hasher used for distinct deduplication.
func WithStoreHasher(h Hasher) StoreOption {
	return func(o *StoreOptions) { o.Hasher = h }
}

// WithStoreSink sets the audit event sink.
func WithStoreSink(s EventSink) StoreOption {
	return func(o *StoreOptions) { o.Sink = s }
}

// WithStoreJournal sets the writer receiving the committed-operation
// journal.
func WithStoreJournal(w io.Writer) StoreOption {
	return func(o *StoreOptions) { o.Journal = w }
}

// WithStoreStrictIndexes enables strict compound-index validation on
// queries.
func WithStoreStrictIndexes(strict bool) StoreOption {
	return func(o *StoreOptions) { o.Strict = strict }
}

// EvaluatorOption configures the query evaluator through the functional
// options pattern.
type EvaluatorOption func(*EvaluatorOptions)

// EvaluatorOptions contains parameters for customizing query evaluation.
type EvaluatorOptions struct {
	Comparer        Comparer
	FieldNavigator  FieldNavigator
	Hasher          Hasher
	DocumentFactory DocumentFactory
}

// WithEvaluatorComparer sets the comparer for constraint comparisons.
func WithEvaluatorComparer(c Comparer) EvaluatorOption {
	return func(o *EvaluatorOptions) { o.Comparer = c }
}

// WithEvaluatorFieldNavigator sets the navigator for dotted field access.
func WithEvaluatorFieldNavigator(fn FieldNavigator) EvaluatorOption {
	return func(o *EvaluatorOptions) { o.FieldNavigator = fn }
}

// WithEvaluatorHasher sets the hasher used for distinct deduplication.
func WithEvaluatorHasher(h Hasher) EvaluatorOption {
	return func(o *EvaluatorOptions) { o.Hasher = h }
}

// WithEvaluatorDocumentFactory sets the function for creating documents.
func WithEvaluatorDocumentFactory(f DocumentFactory) EvaluatorOption {
	return func(o *EvaluatorOptions) { o.DocumentFactory = f }
}

// TransformOption configures the transform engine through the functional
// options pattern.
type TransformOption func(*TransformOptions)

// TransformOptions contains parameters for customizing transform
// resolution.
type TransformOptions struct {
	Comparer        Comparer
	FieldNavigator  FieldNavigator
	DocumentFactory DocumentFactory
}

// WithTransformComparer sets the comparer used for array-union and
// array-remove equality.
func WithTransformComparer(c Comparer) TransformOption {
	return func(o *TransformOptions) { o.Comparer = c }
}

// WithTransformFieldNavigator sets the navigator for dotted field access.
func WithTransformFieldNavigator(fn FieldNavigator) TransformOption {
	return func(o *TransformOptions) { o.FieldNavigator = fn }
}

// WithTransformDocumentFactory sets the function for creating documents.
func WithTransformDocumentFactory(f DocumentFactory) TransformOption {
	return func(o *TransformOptions) { o.DocumentFactory = f }
}

// ValidatorOption configures the batch validator through the functional
// options pattern.
type ValidatorOption func(*ValidatorOptions)

// ValidatorOptions contains parameters for customizing validation.
type ValidatorOptions struct {
	Limits Limits
	// DocumentFactory normalizes raw operation data before the shape
	// checks walk it.
	DocumentFactory DocumentFactory
}

// WithValidatorLimits overrides the default validation limits.
func WithValidatorLimits(l Limits) ValidatorOption {
	return func(o *ValidatorOptions) { o.Limits = l }
}

// WithValidatorDocumentFactory sets the function for creating documents.
func WithValidatorDocumentFactory(f DocumentFactory) ValidatorOption {
	return func(o *ValidatorOptions) { o.DocumentFactory = f }
}

// BatchOption configures a batch coordinator through the functional options
// pattern.
type BatchOption func(*BatchOptions)

// BatchOptions contains parameters for customizing batch execution.
type BatchOptions struct {
	// MaxOperations is the hard cap on operations per batch.
	MaxOperations int
	// ChunkSize is the number of operations committed per chunk.
	ChunkSize int
	// Validator checks operations before commit.
	Validator Validator
	// DocumentFactory builds documents from the data handed to the
	// convenience methods.
	DocumentFactory DocumentFactory
	// Clock measures elapsed execution duration.
	Clock Clock
}

// WithBatchMaxOperations overrides the operation cap (default 500).
func WithBatchMaxOperations(n int) BatchOption {
	return func(o *BatchOptions) { o.MaxOperations = n }
}

// WithBatchChunkSize overrides the chunk size (default 100).
func WithBatchChunkSize(n int) BatchOption {
	return func(o *BatchOptions) { o.ChunkSize = n }
}

// WithBatchValidator sets the validator run before each commit.
func WithBatchValidator(v Validator) BatchOption {
	return func(o *BatchOptions) { o.Validator = v }
}

// WithBatchDocumentFactory sets the function for creating documents.
func WithBatchDocumentFactory(f DocumentFactory) BatchOption {
	return func(o *BatchOptions) { o.DocumentFactory = f }
}

// WithBatchClock sets the clock measuring execution duration.
func WithBatchClock(c Clock) BatchOption {
	return func(o *BatchOptions) { o.Clock = c }
}

// TxOption configures a transaction coordinator through the functional
// options pattern.
type TxOption func(*TxOptions)

// TxOptions contains parameters for customizing transaction execution.
type TxOptions struct {
	// MaxAttempts bounds the retry loop.
	MaxAttempts int
	// BackOff yields the delay between attempts.
	BackOff BackOffPolicy
	// Validator checks buffered operations before commit.
	Validator Validator
	// DocumentFactory builds documents from the data handed to the
	// transactional handle.
	DocumentFactory DocumentFactory
	// TransformEngine resolves buffered transforms for
	// read-your-writes snapshots.
	TransformEngine TransformEngine
	// Clock measures elapsed duration and provisional timestamps.
	Clock Clock
}

// WithTxMaxAttempts overrides the attempt bound (default 5).
func WithTxMaxAttempts(n int) TxOption {
	return func(o *TxOptions) { o.MaxAttempts = n }
}

// WithTxBackOff sets the delay policy applied between attempts.
func WithTxBackOff(b BackOffPolicy) TxOption {
	return func(o *TxOptions) { o.BackOff = b }
}

// WithTxValidator sets the validator run before commit.
func WithTxValidator(v Validator) TxOption {
	return func(o *TxOptions) { o.Validator = v }
}

// WithTxDocumentFactory sets the function for creating documents.
func WithTxDocumentFactory(f DocumentFactory) TxOption {
	return func(o *TxOptions) { o.DocumentFactory = f }
}

// WithTxTransformEngine sets the transform engine used by snapshot reads.
func WithTxTransformEngine(te TransformEngine) TxOption {
	return func(o *TxOptions) { o.TransformEngine = te }
}

// WithTxClock sets the clock used for durations and provisional
// timestamps.
func WithTxClock(c Clock) TxOption {
	return func(o *TxOptions) { o.Clock = c }
}

// SetOption configures a set operation through the functional options
// pattern.
type SetOption func(*OperationOptions)

// WithMerge makes the set merge into the existing document instead of
// replacing it.
func WithMerge(merge bool) SetOption {
	return func(o *OperationOptions) { o.Merge = merge }
}

// LiveIndexOption configures a maintained compound index through the
// functional options pattern.
type LiveIndexOption func(*LiveIndexOptions)

// LiveIndexOptions contains parameters for customizing a maintained index.
type LiveIndexOptions struct {
	Fields         []IndexField
	Comparer       Comparer
	FieldNavigator FieldNavigator
}

// WithLiveIndexFields sets the ordered field list the index covers.
func WithLiveIndexFields(fields ...IndexField) LiveIndexOption {
	return func(o *LiveIndexOptions) { o.Fields = fields }
}

// WithLiveIndexComparer sets the comparer ordering index keys.
func WithLiveIndexComparer(c Comparer) LiveIndexOption {
	return func(o *LiveIndexOptions) { o.Comparer = c }
}

// WithLiveIndexFieldNavigator sets the navigator extracting index keys.
func WithLiveIndexFieldNavigator(fn FieldNavigator) LiveIndexOption {
	return func(o *LiveIndexOptions) { o.FieldNavigator = fn }
}
