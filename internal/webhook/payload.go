package webhook

import (
	"time"

	"rollcall/internal/roster"
)

// Summary is the counts block attached to every payload.
type Summary struct {
	TotalStudents int `json:"total_students"`
	Present       int `json:"present"`
	Absent        int `json:"absent"`
	Late          int `json:"late"`
}

// Payload is the JSON document posted to the webhook.
type Payload struct {
	Timestamp      time.Time       `json:"timestamp"`
	TriggeredFrom  string          `json:"triggered_from"`
	AttendanceData []roster.Record `json:"attendance_data"`
	Summary        Summary         `json:"summary"`
}

// BuildPayload snapshots records into a payload stamped with now.
func BuildPayload(records []roster.Record, origin string, now time.Time) Payload {
	s := roster.Summarize(records)
	data := roster.Clone(records)
	return Payload{
		Timestamp:      now.UTC(),
		TriggeredFrom:  origin,
		AttendanceData: data,
		Summary: Summary{
			TotalStudents: s.Total,
			Present:       s.Present,
			Absent:        s.Absent,
			Late:          s.Late,
		},
	}
}
