package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/attendance"
	"rollcall/internal/roster"
)

type fakeDispatcher struct {
	calls   atomic.Int32
	err     error
	release chan struct{}
	started chan struct{}
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, url string, p Payload) error {
	f.calls.Add(1)
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.err
}

var _ Dispatcher = (*fakeDispatcher)(nil)
var _ Dispatcher = (*Client)(nil)

func marked() []roster.Record {
	records := roster.SampleRecords()
	records[0].Status = roster.StatusPresent
	records[1].Status = roster.StatusAbsent
	records[2].Status = roster.StatusLate
	return records
}

func TestBuildPayload(t *testing.T) {
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	p := BuildPayload(marked(), "http://localhost:8081", now)

	assert.Equal(t, now.UTC(), p.Timestamp)
	assert.Equal(t, "http://localhost:8081", p.TriggeredFrom)
	assert.Len(t, p.AttendanceData, 12)
	assert.Equal(t, Summary{TotalStudents: 12, Present: 1, Absent: 1, Late: 1}, p.Summary)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "attendance_data")
	assert.Contains(t, doc, "triggered_from")
	summary := doc["summary"].(map[string]any)
	assert.EqualValues(t, 12, summary["total_students"])
}

func TestTriggerEmptyURLDispatchesNothing(t *testing.T) {
	d := &fakeDispatcher{}
	e := NewExporter(d)

	for _, url := range []string{"", "   "} {
		_, err := e.Trigger(context.Background(), Request{URL: url}, marked())
		assert.ErrorIs(t, err, ErrEmptyURL)
	}
	assert.Zero(t, d.calls.Load())
	assert.Equal(t, "Please enter your webhook URL", NoticeFor(ErrEmptyURL).Description)
	assert.Equal(t, attendance.Destructive, NoticeFor(ErrEmptyURL).Variant)
}

func TestTriggerIgnoresServerFailure(t *testing.T) {
	var got Payload
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewExporter(NewClient(time.Second))
	res, err := e.Trigger(context.Background(), Request{URL: srv.URL, Origin: "test", TriggeredBy: "Ms. Rao"}, marked())

	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, res.Outcome)
	assert.Equal(t, "Ms. Rao", res.TriggeredBy)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "test", got.TriggeredFrom)
	assert.Equal(t, 12, got.Summary.TotalStudents)
	assert.Equal(t, "Attendance Data Sent!", NoticeFor(err).Title)
	assert.False(t, e.Busy())
}

func TestTriggerDispatchFailure(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"malformed url", "http://[::1"},
		{"unsupported scheme", "ftp-ish://example"},
		{"unreachable host", "http://127.0.0.1:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExporter(NewClient(time.Second))
			res, err := e.Trigger(context.Background(), Request{URL: tt.url}, marked())

			var de *DispatchError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, OutcomeFailed, res.Outcome)
			assert.NotEmpty(t, res.Error)
			assert.Equal(t, "Error", NoticeFor(err).Title)
			assert.False(t, e.Busy(), "in-flight flag cleared after failure")
		})
	}
}

func TestTriggerRejectsConcurrentSync(t *testing.T) {
	d := &fakeDispatcher{release: make(chan struct{}), started: make(chan struct{})}
	e := NewExporter(d)

	done := make(chan error, 1)
	go func() {
		_, err := e.Trigger(context.Background(), Request{URL: "http://sink"}, marked())
		done <- err
	}()
	<-d.started
	assert.True(t, e.Busy())

	_, err := e.Trigger(context.Background(), Request{URL: "http://sink"}, marked())
	assert.ErrorIs(t, err, ErrInFlight)

	close(d.release)
	require.NoError(t, <-done)
	assert.False(t, e.Busy())
	assert.EqualValues(t, 1, d.calls.Load())
}

func TestTriggerNoRetry(t *testing.T) {
	d := &fakeDispatcher{err: errors.New("connection refused")}
	e := NewExporter(d)

	_, err := e.Trigger(context.Background(), Request{URL: "http://sink"}, marked())
	assert.Error(t, err)
	assert.EqualValues(t, 1, d.calls.Load())
}
