package roster

import (
	"math"
	"time"
)

// Summary holds the counts behind the dashboard charts.
type Summary struct {
	Total          int     `json:"total"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Late           int     `json:"late"`
	Unmarked       int     `json:"unmarked"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// Summarize counts statuses and computes the attendance rate, where late
// students count as attending. The rate is 0 for an empty list.
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			s.Present++
		case StatusAbsent:
			s.Absent++
		case StatusLate:
			s.Late++
		default:
			s.Unmarked++
		}
	}
	s.AttendanceRate = percent(s.Present+s.Late, s.Total)
	return s
}

// ClassRow is one line of the per-class breakdown.
type ClassRow struct {
	Class        string  `json:"class"`
	Total        int     `json:"total"`
	Present      int     `json:"present"`
	PresenceRate float64 `json:"presence_rate"`
}

// Report is the reports page view: a summary of the selected class plus a
// breakdown of every class.
type Report struct {
	Class        string     `json:"class"`
	Summary      Summary    `json:"summary"`
	PresenceRate float64    `json:"presence_rate"`
	Classes      []ClassRow `json:"classes"`
}

// ClassReport builds the report for class ("all" or empty for every class).
// PresenceRate counts present students only.
func ClassReport(records []Record, class string) Report {
	if class == "" {
		class = AllClasses
	}
	selected := Filter{Class: class}.Apply(records)
	sum := Summarize(selected)

	rep := Report{
		Class:        class,
		Summary:      sum,
		PresenceRate: percent(sum.Present, sum.Total),
	}
	for _, c := range Classes(records) {
		cs := Summarize(Filter{Class: c}.Apply(records))
		rep.Classes = append(rep.Classes, ClassRow{
			Class:        c,
			Total:        cs.Total,
			Present:      cs.Present,
			PresenceRate: percent(cs.Present, cs.Total),
		})
	}
	return rep
}

// SheetRow is the flat row shape sent to spreadsheets and CSV exports.
type SheetRow struct {
	Date       string `json:"date"`
	RollNumber string `json:"rollNumber"`
	Name       string `json:"name"`
	Class      string `json:"class"`
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
}

// SheetRows flattens records for the given session date.
func SheetRows(records []Record, date string, now time.Time) []SheetRow {
	ts := now.UTC().Format(time.RFC3339)
	rows := make([]SheetRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, SheetRow{
			Date:       date,
			RollNumber: r.RollNumber,
			Name:       r.Name,
			Class:      r.Class,
			Status:     r.Status.Label(),
			Timestamp:  ts,
		})
	}
	return rows
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}
