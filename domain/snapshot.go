package domain

// Snapshot is the read-time view of a document: its address, whether it
// exists, and its payload.
type Snapshot struct {
	Collection string
	ID         string
	Exists     bool

	data Document
	dec  Decoder
}

// NewSnapshot builds a snapshot. The decoder is used by [Snapshot.DataTo]
// and may be nil when decoding is not needed.
func NewSnapshot(collection, id string, data Document, exists bool, dec Decoder) Snapshot {
	return Snapshot{
		Collection: collection,
		ID:         id,
		Exists:     exists,
		data:       data,
		dec:        dec,
	}
}

// Data returns the document payload, or nil when the document does not
// exist.
func (s Snapshot) Data() Document {
	return s.data
}

// WithData returns a copy of the snapshot carrying a different payload.
// Projections use it so the original snapshot is left untouched.
func (s Snapshot) WithData(data Document) Snapshot {
	s.data = data
	return s
}

// DataTo decodes the payload into target, which must be a non-nil pointer.
func (s Snapshot) DataTo(target any) error {
	if target == nil {
		return &ErrTargetNil{}
	}
	if !s.Exists {
		return &NotFoundError{Collection: s.Collection, ID: s.ID}
	}
	return s.dec.Decode(s.data, target)
}
