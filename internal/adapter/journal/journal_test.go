package journal

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/firelite-db/firelite/domain"
)

type JournalTestSuite struct {
	suite.Suite
	ctx context.Context
	now time.Time
}

func (s *JournalTestSuite) entries() []Entry {
	return []Entry{
		{Kind: domain.KindCreate, Collection: "items", ID: "a",
			Data: map[string]any{"n": 1.0}, Timestamp: s.now},
		{Kind: domain.KindDelete, Collection: "items", ID: "a", Timestamp: s.now},
	}
}

// Recorded entries replay in commit order with their payloads intact.
func (s *JournalTestSuite) TestRecordReplayRoundtrip() {
	var buf bytes.Buffer
	s.Require().NoError(NewJournal(&buf).Record(s.ctx, s.entries()...))

	var got []Entry
	s.Require().NoError(Replay(s.ctx, &buf, func(e Entry) error {
		got = append(got, e)
		return nil
	}))
	s.Equal(s.entries(), got)
}

// Each entry occupies exactly one line.
func (s *JournalTestSuite) TestOneLinePerEntry() {
	var buf bytes.Buffer
	s.Require().NoError(NewJournal(&buf).Record(s.ctx, s.entries()...))
	s.Len(strings.Split(strings.TrimSpace(buf.String()), "\n"), 2)
}

// A journal without a writer silently drops entries.
func (s *JournalTestSuite) TestNilWriterNoOp() {
	s.NoError(NewJournal(nil).Record(s.ctx, s.entries()...))
}

// Replay surfaces the callback error and stops reading.
func (s *JournalTestSuite) TestReplayCallbackError() {
	var buf bytes.Buffer
	s.Require().NoError(NewJournal(&buf).Record(s.ctx, s.entries()...))

	seen := 0
	err := Replay(s.ctx, &buf, func(Entry) error {
		seen++
		return fmt.Errorf("stop")
	})
	s.Require().EqualError(err, "stop")
	s.Equal(1, seen)
}

// Replay fails on a malformed line instead of skipping it.
func (s *JournalTestSuite) TestReplayMalformedLine() {
	r := strings.NewReader("{\"kind\":\"create\"}\nnot json\n")
	err := Replay(s.ctx, r, func(Entry) error { return nil })
	s.Error(err)
}

// A canceled context stops recording.
func (s *JournalTestSuite) TestRecordCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	var buf bytes.Buffer
	err := NewJournal(&buf).Record(ctx, s.entries()...)
	s.ErrorIs(err, context.Canceled)
}

func (s *JournalTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
}

func TestJournalTestSuite(t *testing.T) {
	suite.Run(t, new(JournalTestSuite))
}
