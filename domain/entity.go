package domain

import "time"

// Direction indicates the sort direction of an order criterion.
type Direction string

const (
	// Ascending sorts from smallest to largest.
	Ascending Direction = "asc"
	// Descending sorts from largest to smallest.
	Descending Direction = "desc"
)

// Operator is a filter comparison operator accepted by constraints.
type Operator string

const (
	OpEqual            Operator = "="
	OpNotEqual         Operator = "!="
	OpLess             Operator = "<"
	OpLessOrEqual      Operator = "<="
	OpGreater          Operator = ">"
	OpGreaterOrEqual   Operator = ">="
	OpIn               Operator = "in"
	OpNotIn            Operator = "not-in"
	OpArrayContains    Operator = "array-contains"
	OpArrayContainsAny Operator = "array-contains-any"
	OpLike             Operator = "like"
)

// Boolean tells how a constraint combines with the result of the constraints
// accumulated before it.
type Boolean string

const (
	And Boolean = "and"
	Or  Boolean = "or"
)

// Constraint is one filter condition applied during query evaluation. It is a
// sealed union: the concrete variants are [BasicConstraint],
// [MembershipConstraint], [NullConstraint] and [NestedConstraint].
type Constraint interface {
	// Connector returns how the constraint joins the expression built so
	// far.
	Connector() Boolean

	constraint()
}

// BasicConstraint compares a single field against a value using an
// [Operator].
type BasicConstraint struct {
	Field    string
	Operator Operator
	Value    any
	Boolean  Boolean
}

// MembershipConstraint checks whether a field value belongs (or does not
// belong) to a set of values.
type MembershipConstraint struct {
	Field   string
	Values  []any
	Negate  bool
	Boolean Boolean
}

// NullConstraint checks whether a field is null or absent. With Negate set it
// requires a defined, non-null value.
type NullConstraint struct {
	Field   string
	Negate  bool
	Boolean Boolean
}

// NestedConstraint groups sub-constraints that are evaluated first and folded
// into the outer expression as a single boolean.
type NestedConstraint struct {
	Constraints []Constraint
	Boolean     Boolean
}

// Connector implements [Constraint].
func (c BasicConstraint) Connector() Boolean { return c.Boolean }

// Connector implements [Constraint].
func (c MembershipConstraint) Connector() Boolean { return c.Boolean }

// Connector implements [Constraint].
func (c NullConstraint) Connector() Boolean { return c.Boolean }

// Connector implements [Constraint].
func (c NestedConstraint) Connector() Boolean { return c.Boolean }

func (BasicConstraint) constraint()      {}
func (MembershipConstraint) constraint() {}
func (NullConstraint) constraint()       {}
func (NestedConstraint) constraint()     {}

// OrderSpec is one sort criterion. A query carries a sequence of them,
// applied primary first.
type OrderSpec struct {
	Field     string
	Direction Direction
}

// CursorSpec anchors pagination on a document's position in the ordered
// result sequence. Before selects the documents strictly before the anchor;
// otherwise the documents strictly after it are selected.
type CursorSpec struct {
	DocumentID string
	Before     bool
}

// ConstraintSet is the accumulated output of a constraint builder and the
// input of the query evaluator.
type ConstraintSet struct {
	Constraints []Constraint
	Orders      []OrderSpec
	Cursor      *CursorSpec
	Limit       int64
	Offset      int64
	Select      []string
	Distinct    bool
}

// Transform is a write-time directive resolved against the stored value
// instead of overwriting it. It is a sealed union: the concrete variants are
// [ServerTimestamp], [Increment], [ArrayUnion], [ArrayRemove] and
// [DeleteField].
type Transform interface{ transform() }

// ServerTimestamp resolves to the commit timestamp. All ServerTimestamp
// directives within one commit resolve to the same instant.
type ServerTimestamp struct{}

// Increment adds Delta to the stored numeric value, defaulting an absent or
// null base to zero.
type Increment struct{ Delta float64 }

// ArrayUnion appends each element not already present in the stored array,
// preserving order.
type ArrayUnion struct{ Elements []any }

// ArrayRemove removes every stored element equal to any of Elements,
// preserving the order of the remainder.
type ArrayRemove struct{ Elements []any }

// DeleteField removes the field from the document entirely.
type DeleteField struct{}

func (ServerTimestamp) transform() {}
func (Increment) transform()       {}
func (ArrayUnion) transform()      {}
func (ArrayRemove) transform()     {}
func (DeleteField) transform()     {}

// Kind discriminates the mutation operation variants.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindSet    Kind = "set"
	KindDelete Kind = "delete"
)

// Operation is the unit of mutation submitted to batch and transaction
// coordinators.
type Operation struct {
	Kind       Kind
	Collection string
	ID         string
	// Data is the write payload: a [Document], a map or a tagged struct.
	// Consumers normalize it through a [DocumentFactory] before applying
	// it.
	Data    any
	Options OperationOptions
}

// OperationOptions carries per-operation flags.
type OperationOptions struct {
	// Merge makes a set operation merge its data into the existing
	// document instead of replacing it.
	Merge bool
}

// Result is the outcome reported by a coordinator run.
type Result struct {
	Success  bool
	Data     any
	Err      error
	Duration time.Duration
	Metadata map[string]any
}

// IndexField is one entry of a compound index field list.
type IndexField struct {
	Field     string
	Direction Direction
}

// IndexDefinition describes a registered compound index for one collection.
type IndexDefinition struct {
	Collection string
	Fields     []IndexField
}

// Event is the audit notification emitted after a committed operation.
type Event struct {
	Collection string
	Kind       Kind
	ID         string
	Timestamp  time.Time
}

// Limits are the validation bounds applied to proposed operations.
type Limits struct {
	MaxOperations        int
	MaxDocumentSizeBytes int
	MaxFieldNameLength   int
	MaxStringLength      int
	MaxArrayElements     int
	MaxIDLength          int
}

// DefaultLimits returns the backend-compatible default validation limits.
func DefaultLimits() Limits {
	return Limits{
		MaxOperations:        500,
		MaxDocumentSizeBytes: 1 << 20,
		MaxFieldNameLength:   1500,
		MaxStringLength:      1048487,
		MaxArrayElements:     20000,
		MaxIDLength:          1500,
	}
}

// Violation is a single validation failure, addressed by a dotted field path.
type Violation struct {
	Path    string
	Message string
}
