// Package domain contains the entities, capability interfaces, typed errors
// and functional options shared by every firelite adapter.
//
// The package has no dependency on any adapter: adapters implement these
// interfaces and are wired together through functional options.
package domain

import (
	"context"
	"iter"
	"time"
)

// Document represents the payload of a stored record: a mapping from field
// name to value. Values may be scalars, []any sequences or nested Documents.
// Document is read by one goroutine at a time and does not need to be
// concurrency safe.
type Document interface {
	// Get returns the value under the given key, or nil if unset.
	Get(string) any
	// Set sets the value under the given key.
	Set(string, any)
	// Unset removes the value under the given key.
	Unset(string)
	// D returns the subdocument under the given key, if any.
	D(string) Document
	// Has reports whether a value is set under the given key.
	Has(string) bool
	// Iter returns an unordered sequence of key-value pairs.
	Iter() iter.Seq2[string, any]
	// Keys returns an unordered sequence of keys.
	Keys() iter.Seq[string]
	// Values returns an unordered sequence of values.
	Values() iter.Seq[any]
	// Len returns the number of set fields.
	Len() int
}

// DocumentFactory constructs a [Document] from structured data (maps or
// structs). Given nil it returns an empty document.
type DocumentFactory = func(any) (Document, error)

// Comparer provides ordering and comparison operations across the value
// types a document may hold.
type Comparer interface {
	// Compare returns -1, 0, or 1 based on the comparison of two values.
	Compare(any, any) (int, error)
	// Comparable returns true if two values can be ordered against each
	// other.
	Comparable(any, any) bool
}

// Getter represents a resolved field value that can be absent. An absent
// value is one whose path does not exist in the document; an explicit nil is
// defined.
type Getter interface {
	// Get returns the value and whether it counts as defined.
	Get() (value any, defined bool)
}

// GetSetter is a navigable position inside a [Document]. Absent positions
// can neither be set nor unset.
type GetSetter interface {
	Getter
	// Set stores a new value at the position.
	Set(any)
	// Unset removes the value from its parent container.
	Unset()
}

// FieldNavigator provides dot-path field access over documents.
type FieldNavigator interface {
	// GetAddress splits a dotted field path into its parts.
	GetAddress(field string) ([]string, error)
	// GetField resolves a path, returning an absent position when any
	// part of the path is missing.
	GetField(obj any, addr ...string) (GetSetter, error)
	// EnsureField resolves a path, creating intermediate documents so
	// the returned position is settable.
	EnsureField(obj any, addr ...string) (GetSetter, error)
}

// Clock supplies the commit timestamp used to resolve server-timestamp
// transforms.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Hasher generates hash values for data deduplication.
type Hasher interface {
	// Hash generates a hash value for the given data.
	Hash(any) (uint64, error)
}

// Decoder converts between data representations, typically a [Document] and
// a caller-defined struct.
type Decoder interface {
	// Decode converts from one data format to another.
	Decode(any, any) error
}

// IDGenerator creates unique ids for documents created without one.
type IDGenerator interface {
	// NewID returns a new unique document id.
	NewID() string
}

// EventSink receives fire-and-forget notifications of committed operations.
// A sink must never be able to affect the outcome of the commit that feeds
// it; callers guard sink invocations accordingly.
type EventSink interface {
	Notify(Event)
}

// Evaluator applies a constraint set to a snapshot sequence: filter, order,
// cursor, offset/limit, projection, distinct.
type Evaluator interface {
	Evaluate(docs []Snapshot, set ConstraintSet) ([]Snapshot, error)
}

// IndexValidator reproduces the backend's compound-index requirement rules
// and keeps the registry of known index definitions.
type IndexValidator interface {
	// RequiresIndex reports whether the constraint set can only be
	// served by a compound index.
	RequiresIndex(set ConstraintSet) bool
	// RequiredFields returns the minimal field list a compound index
	// must cover to serve the constraint set.
	RequiredFields(set ConstraintSet) []IndexField
	// HasMatchingIndex reports whether a registered index satisfies the
	// requirement for the collection.
	HasMatchingIndex(collection string, set ConstraintSet) bool
	// Register adds an index definition to the registry.
	Register(def IndexDefinition)
	// Definitions returns the registered definitions for a collection.
	Definitions(collection string) []IndexDefinition
}

// TransformEngine resolves field-transform directives against stored state.
type TransformEngine interface {
	// Resolve resolves one transform against the current stored value.
	// The removed result is true when the field must be deleted.
	Resolve(current Getter, t Transform, commit time.Time) (value any, removed bool, err error)
	// Apply produces the new document state for an operation, resolving
	// every transform in its data against the current state with the
	// given commit timestamp. A nil result means the document is
	// deleted.
	Apply(current Document, op Operation, commit time.Time) (Document, error)
}

// Validator performs the stateless limit and shape checks on proposed
// operations.
type Validator interface {
	// Validate returns every violation found in the operation.
	Validate(op Operation) []Violation
	// ValidateOrFail aggregates all violations across the given
	// operations into a single error, or returns nil.
	ValidateOrFail(ops ...Operation) error
}

// Client is the capability surface the coordinators require from a document
// database: address documents, read snapshots, run queries and apply atomic
// groups of operations. The in-memory store implements it; a remote driver
// can be substituted without touching the coordinators.
type Client interface {
	// Read returns the snapshot of a single document. The snapshot's
	// Exists flag is false when the document is not stored; this is not
	// an error.
	Read(ctx context.Context, collection, id string) (Snapshot, error)
	// Query evaluates a constraint set against a collection.
	Query(ctx context.Context, collection string, set ConstraintSet) ([]Snapshot, error)
	// Apply commits a group of operations as one atomic unit.
	Apply(ctx context.Context, ops ...Operation) error
}

// Tx is the transactional handle passed to a transaction work function.
// Reads observe writes buffered earlier in the same attempt; writes are
// committed only if the work function returns without error.
type Tx interface {
	// Snapshot reads a document as of the current attempt.
	Snapshot(ctx context.Context, collection, id string) (Snapshot, error)
	// Create buffers a create of a document that must not exist yet.
	Create(collection, id string, data any) error
	// Set buffers a full write (or merge) of a document.
	Set(collection, id string, data any, opts ...SetOption) error
	// Update buffers a merge into a document that must exist.
	Update(collection, id string, data any) error
	// Delete buffers a delete of a document.
	Delete(collection, id string)
}
