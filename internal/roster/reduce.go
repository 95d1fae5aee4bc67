package roster

// Action is a state transition applied by Reduce.
type Action interface {
	Apply(records []Record) []Record
}

// SetStatus changes the status of the record with ID.
type SetStatus struct {
	ID     string
	Status Status
}

func (a SetStatus) Apply(records []Record) []Record {
	out := Clone(records)
	for i := range out {
		if out[i].ID == a.ID {
			out[i].Status = a.Status
		}
	}
	return out
}

// MarkPresent marks every record listed in IDs as present.
type MarkPresent struct {
	IDs []string
}

func (a MarkPresent) Apply(records []Record) []Record {
	// Build the updated visible subset first, then merge it back by id.
	updated := make(map[string]Record, len(a.IDs))
	want := make(map[string]struct{}, len(a.IDs))
	for _, id := range a.IDs {
		want[id] = struct{}{}
	}
	for _, r := range records {
		if _, ok := want[r.ID]; ok {
			r.Status = StatusPresent
			updated[r.ID] = r
		}
	}

	out := make([]Record, len(records))
	for i, r := range records {
		if u, ok := updated[r.ID]; ok {
			out[i] = u
			continue
		}
		out[i] = r
	}
	return out
}

// Reduce returns the list that results from applying action to records.
// The input slice is never modified.
func Reduce(records []Record, action Action) []Record {
	if action == nil {
		return Clone(records)
	}
	return action.Apply(records)
}
