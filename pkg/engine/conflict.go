package engine

// Resolution policies recorded on a FieldConflict.
const (
	ResolutionFirstNonEmpty = "first_non_empty"
	ResolutionMostFrequent  = "most_frequent"
)

// FieldConflict represents a disagreement between the rows of one group on a
// scalar field. The group is still merged; the conflict is only recorded.
type FieldConflict struct {
	Group      int      `json:"group"`
	Field      string   `json:"field"`
	Kept       string   `json:"kept"`
	Discarded  []string `json:"discarded"`
	Rows       []int    `json:"rows"`
	Resolution string   `json:"resolution"`
}

// detectConflict returns a conflict when values holds a non-empty value other
// than kept. values must already be in comparison form, aligned with rows.
func detectConflict(field string, values []string, rows []int, kept, resolution string) *FieldConflict {
	var discarded []string
	seen := map[string]bool{kept: true, "": true}
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		discarded = append(discarded, v)
	}
	if len(discarded) == 0 {
		return nil
	}
	return &FieldConflict{
		Field:      field,
		Kept:       kept,
		Discarded:  discarded,
		Rows:       append([]int(nil), rows...),
		Resolution: resolution,
	}
}
