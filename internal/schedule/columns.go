package schedule

import "sort"

// AssignColumns performs greedy leftmost-fit column assignment over the
// occurrences of one overlap group and returns occurrence id → column
// index. Occurrences are visited sorted by (StartMinutes, ChildName);
// each takes the smallest index not occupied by an already placed
// occurrence it overlaps in time. Indices at or past maxColumns collapse
// into the single shared overflow bucket at maxColumns.
//
// Greedy leftmost-fit can use more columns than the theoretical minimum
// on adversarial inputs. The visit order and the resulting column of
// each occurrence are part of the layout contract; callers depend on
// them staying stable.
func AssignColumns(occs []Occurrence, maxColumns int) map[string]int {
	ordered := make([]Occurrence, len(occs))
	copy(ordered, occs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].StartMinutes != ordered[j].StartMinutes {
			return ordered[i].StartMinutes < ordered[j].StartMinutes
		}
		return ordered[i].ChildName < ordered[j].ChildName
	})

	assigned := make(map[string]int, len(ordered))
	for i, occ := range ordered {
		occupied := make(map[int]bool)
		for j := 0; j < i; j++ {
			prior := ordered[j]
			if IntervalsOverlap(occ.StartMinutes, occ.EndMinutes, prior.StartMinutes, prior.EndMinutes) {
				occupied[assigned[prior.ID]] = true
			}
		}

		col := 0
		for occupied[col] {
			col++
		}
		if col > maxColumns {
			col = maxColumns
		}
		assigned[occ.ID] = col
	}

	return assigned
}
