package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"

	"rollcall/internal/metrics"
	"rollcall/internal/roster"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// Notice is a user-facing message shown after an action.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

// Destructive marks a notice as an error.
const Destructive = "destructive"

// Service coordinates reads and mutations of the record store.
type Service struct {
	store *Store
}

// NewService creates a service backed by a store.
func NewService(store *Store) *Service {
	svc := &Service{store: store}
	metrics.ObserveSummary(roster.Summarize(store.Snapshot()))
	return svc
}

// Records returns the records visible under f and the size of the full list.
func (s *Service) Records(f roster.Filter) ([]roster.Record, int) {
	all := s.store.Snapshot()
	return f.Apply(all), len(all)
}

// All returns the full list.
func (s *Service) All() []roster.Record {
	return s.store.Snapshot()
}

// Classes returns the distinct class labels.
func (s *Service) Classes() []string {
	return roster.Classes(s.store.Snapshot())
}

// Summary aggregates the full list.
func (s *Service) Summary() roster.Summary {
	return roster.Summarize(s.store.Snapshot())
}

// Report aggregates one class ("all" for every class).
func (s *Service) Report(class string) roster.Report {
	return roster.ClassReport(s.store.Snapshot(), class)
}

// SetStatus changes the status of one record. An unknown id still replaces
// the list (unchanged) and reports ErrNotFound.
func (s *Service) SetStatus(ctx context.Context, id string, status roster.Status) (roster.Record, error) {
	if err := ctx.Err(); err != nil {
		return roster.Record{}, err
	}
	next := s.store.Dispatch(roster.SetStatus{ID: id, Status: status})
	metrics.ObserveSummary(roster.Summarize(next))

	for _, r := range next {
		if r.ID == id {
			metrics.StatusChanges.WithLabelValues(metrics.StatusLabel(status)).Inc()
			return r, nil
		}
	}
	return roster.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// MarkVisiblePresent marks every record visible under f as present and
// leaves hidden records untouched.
func (s *Service) MarkVisiblePresent(ctx context.Context, f roster.Filter) (int, Notice, error) {
	if err := ctx.Err(); err != nil {
		return 0, Notice{}, err
	}
	// Visible ids are resolved against the same list the action is applied to.
	var marked int
	next := s.store.Dispatch(visiblePresent{filter: f, marked: &marked})
	metrics.ObserveSummary(roster.Summarize(next))
	metrics.StatusChanges.WithLabelValues(metrics.StatusLabel(roster.StatusPresent)).Add(float64(marked))

	log.Printf("bulk update: marked %d records present (q=%q class=%q)", marked, f.Query, f.Class)
	return marked, Notice{
		Title:       "Bulk Update",
		Description: fmt.Sprintf("Marked %d students as present", marked),
	}, nil
}

// visiblePresent resolves the filter inside the store lock and delegates to
// roster.MarkPresent.
type visiblePresent struct {
	filter roster.Filter
	marked *int
}

func (v visiblePresent) Apply(records []roster.Record) []roster.Record {
	ids := v.filter.IDs(records)
	*v.marked = len(ids)
	return roster.Reduce(records, roster.MarkPresent{IDs: ids})
}
