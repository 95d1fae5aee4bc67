package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"rollcall/internal/queue"
	"rollcall/internal/webhook"
)

// Message types published for settled triggers.
const (
	TypeSyncSent   = "sync.sent"
	TypeSyncFailed = "sync.failed"
)

// FromResult converts a settled trigger into a journal entry.
func FromResult(res webhook.Result) Entry {
	return Entry{
		ID:          res.ID,
		Endpoint:    res.URL,
		Origin:      res.Origin,
		TriggeredBy: res.TriggeredBy,
		Outcome:     res.Outcome,
		Error:       res.Error,
		Total:       res.Summary.TotalStudents,
		Present:     res.Summary.Present,
		Absent:      res.Summary.Absent,
		Late:        res.Summary.Late,
		DurationMS:  res.Duration.Milliseconds(),
		OccurredAt:  res.StartedAt,
	}
}

// Publisher puts settled triggers on the queue.
type Publisher struct {
	q queue.Queue
}

// NewPublisher wraps q. A nil queue publishes nothing.
func NewPublisher(q queue.Queue) *Publisher {
	return &Publisher{q: q}
}

// Publish enqueues res. Failures are returned for logging only; the trigger
// outcome is never changed by them.
func (p *Publisher) Publish(ctx context.Context, res webhook.Result) error {
	if p == nil || p.q == nil || res.ID == "" {
		return nil
	}
	body, err := json.Marshal(FromResult(res))
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	typ := TypeSyncSent
	if res.Outcome == webhook.OutcomeFailed {
		typ = TypeSyncFailed
	}
	return p.q.Publish(ctx, queue.Message{Type: typ, Body: body})
}

// Recorder drains queue messages into a Writer.
type Recorder struct {
	w Writer
}

// NewRecorder creates a recorder writing to w.
func NewRecorder(w Writer) *Recorder {
	return &Recorder{w: w}
}

// Run consumes msgs until the channel closes. It returns the number of
// entries written.
func (r *Recorder) Run(ctx context.Context, msgs <-chan queue.Message) int {
	written := 0
	for msg := range msgs {
		if msg.Type != TypeSyncSent && msg.Type != TypeSyncFailed {
			continue
		}
		var e Entry
		if err := json.Unmarshal(msg.Body, &e); err != nil {
			log.Printf("journal: decode %s failed: %v", msg.Type, err)
			continue
		}
		if e.OccurredAt.IsZero() {
			e.OccurredAt = time.Now().UTC()
		}
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		err := r.w.Insert(writeCtx, e)
		cancel()
		if err != nil {
			log.Printf("journal: insert %s failed: %v", e.ID, err)
			continue
		}
		written++
	}
	return written
}
