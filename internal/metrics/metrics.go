package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rollcall/internal/roster"
)

var (
	// StatusChanges counts records moved to a status, by status label.
	StatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rollcall",
		Name:      "status_changes_total",
		Help:      "Attendance records moved to a status.",
	}, []string{"status"})

	// SyncDispatches counts webhook triggers by outcome.
	SyncDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rollcall",
		Name:      "sync_dispatches_total",
		Help:      "Webhook sync triggers by outcome (sent, failed, rejected).",
	}, []string{"outcome"})

	// SyncDuration observes how long a dispatch took to settle.
	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rollcall",
		Name:      "sync_dispatch_seconds",
		Help:      "Time until a webhook dispatch settles.",
		Buckets:   prometheus.DefBuckets,
	})

	records = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "rollcall",
		Name:      "records",
		Help:      "Current records by status.",
	}, []string{"status"})

	attendanceRate = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "rollcall",
		Name:      "attendance_rate_percent",
		Help:      "Present plus late over total, in percent.",
	})
)

// ObserveSummary publishes the gauges derived from the current list.
func ObserveSummary(s roster.Summary) {
	records.WithLabelValues("present").Set(float64(s.Present))
	records.WithLabelValues("absent").Set(float64(s.Absent))
	records.WithLabelValues("late").Set(float64(s.Late))
	records.WithLabelValues("unmarked").Set(float64(s.Unmarked))
	attendanceRate.Set(s.AttendanceRate)
}

// StatusLabel maps a status to its metric label.
func StatusLabel(s roster.Status) string {
	if s == roster.StatusUnmarked {
		return "unmarked"
	}
	return strings.ToLower(string(s))
}
