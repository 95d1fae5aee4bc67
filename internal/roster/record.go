package roster

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the attendance state of a single record.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusLate    Status = "Late"
	// StatusUnmarked is the initial state; it travels as an empty string.
	StatusUnmarked Status = ""
)

// ErrInvalidStatus is returned by ParseStatus for unknown values.
var ErrInvalidStatus = errors.New("invalid status")

// ErrDuplicateID is returned when two records share an id.
var ErrDuplicateID = errors.New("duplicate record id")

// ParseStatus accepts Present, Absent, Late, Unmarked or "" in any case.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present":
		return StatusPresent, nil
	case "absent":
		return StatusAbsent, nil
	case "late":
		return StatusLate, nil
	case "unmarked", "":
		return StatusUnmarked, nil
	}
	return StatusUnmarked, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Label is the human readable form used in sheet rows.
func (s Status) Label() string {
	if s == StatusUnmarked {
		return "Not Marked"
	}
	return string(s)
}

// Record is one student's attendance entry for the current session.
type Record struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
	Class      string `json:"class"`
	Status     Status `json:"status"`
	Avatar     string `json:"avatar"`
}

// Validate checks that every id in the list is unique.
func Validate(records []Record) error {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// Clone returns a copy of records that shares no backing array with the input.
func Clone(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}

// SampleRecords returns the fixed seed loaded at start-up.
func SampleRecords() []Record {
	seed := []struct{ name, roll, class, avatar string }{
		{"Rahul Sharma", "CSE001", "CSE-A", "student-1.jpg"},
		{"Priya Singh", "CSE002", "CSE-A", "student-2.jpg"},
		{"Amit Kumar", "CSE003", "CSE-A", "student-3.jpg"},
		{"Sneha Patel", "CSE004", "CSE-A", "student-4.jpg"},
		{"Ravi Gupta", "CSE005", "CSE-A", "student-1.jpg"},
		{"Kavya Nair", "ECE001", "ECE-A", "student-2.jpg"},
		{"Arjun Reddy", "ECE002", "ECE-A", "student-3.jpg"},
		{"Pooja Sharma", "ECE003", "ECE-A", "student-4.jpg"},
		{"Vikram Singh", "EEE001", "EEE-A", "student-1.jpg"},
		{"Meera Krishnan", "EEE002", "EEE-A", "student-2.jpg"},
		{"Suresh Kumar", "MECH001", "MECH-A", "student-3.jpg"},
		{"Anita Sharma", "MECH002", "MECH-A", "student-4.jpg"},
	}
	records := make([]Record, 0, len(seed))
	for i, s := range seed {
		records = append(records, Record{
			ID:         fmt.Sprintf("%d", i+1),
			Name:       s.name,
			RollNumber: s.roll,
			Class:      s.class,
			Status:     StatusUnmarked,
			Avatar:     s.avatar,
		})
	}
	return records
}
