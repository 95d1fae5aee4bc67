package webhook

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/attendance"
	"rollcall/internal/metrics"
	"rollcall/internal/roster"
)

var (
	// ErrEmptyURL is the validation error for a missing webhook URL.
	ErrEmptyURL = errors.New("webhook url is required")
	// ErrInFlight is returned while a previous trigger has not settled.
	ErrInFlight = errors.New("a sync is already in progress")
)

// DispatchError wraps a failure to send the request at all.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string { return "dispatch webhook: " + e.Err.Error() }
func (e *DispatchError) Unwrap() error { return e.Err }

// Outcome values recorded for every settled trigger.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Request describes one trigger.
type Request struct {
	URL         string
	Origin      string
	TriggeredBy string
}

// Result describes a settled trigger. Sent only means the request left the
// process; delivery is never confirmed.
type Result struct {
	ID          string
	URL         string
	Origin      string
	TriggeredBy string
	Outcome     string
	Error       string
	Summary     Summary
	StartedAt   time.Time
	Duration    time.Duration
}

// Exporter sends the record list to a webhook, one trigger at a time.
type Exporter struct {
	dispatcher Dispatcher
	now        func() time.Time
	inFlight   atomic.Bool
}

// NewExporter creates an exporter on top of d.
func NewExporter(d Dispatcher) *Exporter {
	return &Exporter{dispatcher: d, now: time.Now}
}

// Busy reports whether a trigger is currently in flight.
func (e *Exporter) Busy() bool { return e.inFlight.Load() }

// Trigger validates req, builds the payload and dispatches it once. No retry
// is attempted. A nil error means the request was sent, not that it was
// accepted by the receiver.
func (e *Exporter) Trigger(ctx context.Context, req Request, records []roster.Record) (Result, error) {
	if strings.TrimSpace(req.URL) == "" {
		metrics.SyncDispatches.WithLabelValues("rejected").Inc()
		return Result{}, ErrEmptyURL
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		metrics.SyncDispatches.WithLabelValues("rejected").Inc()
		return Result{}, ErrInFlight
	}
	defer e.inFlight.Store(false)

	started := e.now()
	payload := BuildPayload(records, req.Origin, started)
	res := Result{
		ID:          uuid.NewString(),
		URL:         strings.TrimSpace(req.URL),
		Origin:      req.Origin,
		TriggeredBy: req.TriggeredBy,
		Outcome:     OutcomeSent,
		Summary:     payload.Summary,
		StartedAt:   started.UTC(),
	}

	err := e.dispatcher.Dispatch(ctx, res.URL, payload)
	res.Duration = e.now().Sub(started)
	metrics.SyncDuration.Observe(res.Duration.Seconds())
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		metrics.SyncDispatches.WithLabelValues(OutcomeFailed).Inc()
		log.Printf("sync %s to webhook failed: %v", res.ID, err)
		return res, &DispatchError{Err: err}
	}
	metrics.SyncDispatches.WithLabelValues(OutcomeSent).Inc()
	log.Printf("sync %s dispatched (%d records)", res.ID, payload.Summary.TotalStudents)
	return res, nil
}

// NoticeFor maps a Trigger error to the message shown to the user.
func NoticeFor(err error) attendance.Notice {
	switch {
	case err == nil:
		return attendance.Notice{
			Title:       "Attendance Data Sent!",
			Description: "The attendance data was sent to Google Sheets via the webhook. Please check your spreadsheet to confirm it was updated.",
		}
	case errors.Is(err, ErrEmptyURL):
		return attendance.Notice{
			Title:       "Error",
			Description: "Please enter your webhook URL",
			Variant:     attendance.Destructive,
		}
	case errors.Is(err, ErrInFlight):
		return attendance.Notice{
			Title:       "Sync in progress",
			Description: "Wait for the current sync to finish before sending again.",
			Variant:     attendance.Destructive,
		}
	default:
		return attendance.Notice{
			Title:       "Error",
			Description: "Failed to trigger the webhook. Please check the URL and try again.",
			Variant:     attendance.Destructive,
		}
	}
}
