package schedule

import (
	"math"
	"sort"
)

// DefaultMaxColumns is the column cap used when the caller does not
// supply a positive value.
const DefaultMaxColumns = 4

// LayoutSegment is the geometry of one occurrence over one sub-interval
// of constant concurrency. Width and Left are percentages of the day
// column, rounded to two decimals. ColumnIndex is the occurrence's slot
// among the occurrences visible during the segment, counted from zero
// in assigned-column order; once an earlier column drains, the
// survivors shift left and widen. An overflow segment carries the
// sentinel ColumnIndex equal to the cap and zero geometry; it is
// excluded from the tiled 100% partition and left for the caller's
// "+N more" presentation.
type LayoutSegment struct {
	StartMinutes int     `json:"start_minutes"`
	EndMinutes   int     `json:"end_minutes"`
	ColumnIndex  int     `json:"column_index"`
	ColumnCount  int     `json:"column_count"`
	Width        float64 `json:"width"`
	Left         float64 `json:"left"`
}

// ActivityLayout is the complete layout result for one occurrence: its
// assigned column, the overflow flag and one LayoutSegment per distinct
// concurrency sub-interval. An occurrence whose concurrency never
// changes has exactly one segment.
type ActivityLayout struct {
	Occurrence Occurrence
	Column     int
	IsOverflow bool
	Segments   []LayoutSegment
}

// CalculateLayout turns overlap groups into per-occurrence layout
// descriptors. maxColumns caps the number of side-by-side columns;
// a non-positive value falls back to DefaultMaxColumns. At every
// instant the visible occurrences of a group tile [0%, 100%) exactly,
// up to two-decimal rounding; the per-segment slot renumbering is what
// keeps that partition closed when occurrences in lower columns end
// before their neighbors.
func CalculateLayout(groups []OverlapGroup, maxColumns int) []ActivityLayout {
	if maxColumns <= 0 {
		maxColumns = DefaultMaxColumns
	}

	var layouts []ActivityLayout
	for _, group := range groups {
		columns := AssignColumns(group.Occurrences, maxColumns)
		slots := segmentSlots(group.Segments, columns, maxColumns)

		for _, occ := range group.Occurrences {
			col := columns[occ.ID]
			overflow := col >= maxColumns

			layout := ActivityLayout{
				Occurrence: occ,
				Column:     col,
				IsOverflow: overflow,
			}

			for si, seg := range group.Segments {
				if !seg.Contains(occ.ID) {
					continue
				}
				ls := LayoutSegment{
					StartMinutes: seg.StartMinutes,
					EndMinutes:   seg.EndMinutes,
				}
				if overflow {
					count := seg.Count
					if count > maxColumns {
						count = maxColumns
					}
					ls.ColumnIndex = maxColumns
					ls.ColumnCount = count
				} else {
					slot := slots[si][occ.ID]
					visible := len(slots[si])
					ls.ColumnIndex = slot
					ls.ColumnCount = visible
					ls.Width = round2(100 / float64(visible))
					ls.Left = round2(float64(slot) / float64(visible) * 100)
				}
				layout.Segments = append(layout.Segments, ls)
			}

			layouts = append(layouts, layout)
		}
	}

	return layouts
}

// segmentSlots maps, per segment, every visible occurrence id to its
// slot. Visible means assigned a column below the cap; slots renumber
// the visible columns from zero preserving their order. Occurrences
// sharing a segment pairwise overlap, so their assigned columns are
// distinct and the order is total.
func segmentSlots(segments []TimeSegment, columns map[string]int, maxColumns int) []map[string]int {
	slots := make([]map[string]int, len(segments))
	for si, seg := range segments {
		visible := make([]string, 0, len(seg.OccurrenceIDs))
		for _, id := range seg.OccurrenceIDs {
			if columns[id] < maxColumns {
				visible = append(visible, id)
			}
		}
		sort.Slice(visible, func(i, j int) bool {
			return columns[visible[i]] < columns[visible[j]]
		})

		m := make(map[string]int, len(visible))
		for slot, id := range visible {
			m[id] = slot
		}
		slots[si] = m
	}
	return slots
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
