// Package journal appends one JSON line per committed operation to a
// caller-provided writer. Entries carry the resolved payload, so replaying a
// journal reproduces the exact stored state without re-running transforms.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/dolmen-go/contextio"

	"github.com/firelite-db/firelite/domain"
)

// Entry is one committed operation as written to the journal.
type Entry struct {
	Kind       domain.Kind    `json:"kind"`
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Data       map[string]any `json:"data,omitempty"`
	Timestamp  time.Time      `json:"ts"`
}

// Journal serializes entry groups onto a writer. Safe for concurrent use.
type Journal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewJournal returns a journal appending to w. A nil writer produces a
// journal whose Record is a no-op.
func NewJournal(w io.Writer) *Journal {
	return &Journal{w: w}
}

// Record appends the entries, one JSON line each. Writes are cancelable
// through ctx.
func (j *Journal) Record(ctx context.Context, entries ...Entry) error {
	if j == nil || j.w == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	enc := json.NewEncoder(contextio.NewWriter(ctx, j.w))
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

// Replay streams the entries of a recorded journal to fn in commit order.
// Reading stops at the first malformed line, fn error or ctx cancellation.
func Replay(ctx context.Context, r io.Reader, fn func(Entry) error) error {
	dec := json.NewDecoder(contextio.NewReader(ctx, r))
	for {
		var e Entry
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
}
