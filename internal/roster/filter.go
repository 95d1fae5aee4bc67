package roster

import "strings"

// AllClasses disables the class restriction of a Filter.
const AllClasses = "all"

// Filter selects the visible subset of the record list.
type Filter struct {
	Query string `form:"q" json:"q"`
	Class string `form:"class" json:"class"`
}

// Matches reports whether r is visible under f.
func (f Filter) Matches(r Record) bool {
	q := strings.ToLower(f.Query)
	matchesSearch := strings.Contains(strings.ToLower(r.Name), q) ||
		strings.Contains(strings.ToLower(r.RollNumber), q)
	matchesClass := f.Class == "" || f.Class == AllClasses || r.Class == f.Class
	return matchesSearch && matchesClass
}

// Apply returns the matching records in source order.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// IDs returns the ids of the records visible under f.
func (f Filter) IDs(records []Record) []string {
	visible := f.Apply(records)
	ids := make([]string, 0, len(visible))
	for _, r := range visible {
		ids = append(ids, r.ID)
	}
	return ids
}

// Classes lists distinct class labels in first-seen order.
func Classes(records []Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Class]; ok {
			continue
		}
		seen[r.Class] = struct{}{}
		out = append(out, r.Class)
	}
	return out
}
