package schedule

import "sort"

// TimeSegment is a half-open minute interval [StartMinutes, EndMinutes)
// on a single day during which a fixed set of occurrences is active.
// Segments produced for one day are contiguous per group, non-overlapping
// and sorted by start.
type TimeSegment struct {
	StartMinutes  int
	EndMinutes    int
	OccurrenceIDs []string // sorted for determinism
	Count         int
}

// Contains reports whether the occurrence is active throughout the
// segment.
func (s TimeSegment) Contains(occID string) bool {
	for _, id := range s.OccurrenceIDs {
		if id == occID {
			return true
		}
	}
	return false
}

// OverlapGroup is a maximal set of same-day occurrences connected by a
// chain of time overlaps (A overlaps B and B overlaps C puts all three
// in one group even when A and C never touch), together with the
// TimeSegments spanning the set.
type OverlapGroup struct {
	Occurrences []Occurrence
	Segments    []TimeSegment
}

// sweepEvent is one boundary of an occurrence interval.
type sweepEvent struct {
	minute int
	isEnd  bool
	occID  string
}

// DetectOverlaps partitions same-day occurrences into overlap groups and
// computes each group's piecewise active-set timeline.
//
// The sweep walks start/end events in minute order. At equal minutes all
// starts are processed before any end, and a segment is only closed when
// the minute advances, so an occurrence ending exactly when another
// starts never shares a segment with it. Grouping is the transitive
// closure over shared segments, built with a disjoint set. An empty
// input yields an empty result.
func DetectOverlaps(occs []Occurrence) []OverlapGroup {
	if len(occs) == 0 {
		return nil
	}

	events := make([]sweepEvent, 0, len(occs)*2)
	for _, o := range occs {
		events = append(events, sweepEvent{minute: o.StartMinutes, occID: o.ID})
		events = append(events, sweepEvent{minute: o.EndMinutes, isEnd: true, occID: o.ID})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].minute != events[j].minute {
			return events[i].minute < events[j].minute
		}
		return !events[i].isEnd && events[j].isEnd
	})

	// 1. Sweep: close a segment whenever the minute advances while
	//    anything is active.
	active := make(map[string]bool)
	var segments []TimeSegment
	prev := events[0].minute
	for _, ev := range events {
		if ev.minute != prev {
			if len(active) > 0 {
				segments = append(segments, closeSegment(prev, ev.minute, active))
			}
			prev = ev.minute
		}
		if ev.isEnd {
			delete(active, ev.occID)
		} else {
			active[ev.occID] = true
		}
	}

	// 2. Merge: any segment naming two or more occurrences chains them
	//    into one group.
	ds := newDisjointSet()
	for _, o := range occs {
		ds.add(o.ID)
	}
	for _, seg := range segments {
		for i := 1; i < len(seg.OccurrenceIDs); i++ {
			ds.union(seg.OccurrenceIDs[0], seg.OccurrenceIDs[i])
		}
	}

	// 3. Bucket occurrences and segments by group root. Every id inside
	//    one segment shares a root by construction, so attributing the
	//    segment to its first member is unambiguous.
	groupIdx := make(map[string]int)
	var groups []OverlapGroup
	for _, o := range occs {
		root := ds.find(o.ID)
		gi, ok := groupIdx[root]
		if !ok {
			gi = len(groups)
			groupIdx[root] = gi
			groups = append(groups, OverlapGroup{})
		}
		groups[gi].Occurrences = append(groups[gi].Occurrences, o)
	}
	for _, seg := range segments {
		gi := groupIdx[ds.find(seg.OccurrenceIDs[0])]
		groups[gi].Segments = append(groups[gi].Segments, seg)
	}

	for gi := range groups {
		segs := groups[gi].Segments
		sort.SliceStable(segs, func(i, j int) bool {
			return segs[i].StartMinutes < segs[j].StartMinutes
		})
	}

	return groups
}

// closeSegment snapshots the active set into a finished TimeSegment.
func closeSegment(start, end int, active map[string]bool) TimeSegment {
	ids := make([]string, 0, len(active))
	for id := range active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return TimeSegment{
		StartMinutes:  start,
		EndMinutes:    end,
		OccurrenceIDs: ids,
		Count:         len(ids),
	}
}

// ── disjoint set ──

// disjointSet is a string-keyed union-find with path compression.
type disjointSet struct {
	parent map[string]string
}

func newDisjointSet() *disjointSet {
	return &disjointSet{parent: make(map[string]string)}
}

func (d *disjointSet) add(id string) {
	if _, ok := d.parent[id]; !ok {
		d.parent[id] = id
	}
}

func (d *disjointSet) find(id string) string {
	d.add(id)
	root := id
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[id] != root {
		d.parent[id], id = root, d.parent[id]
	}
	return root
}

func (d *disjointSet) union(a, b string) {
	ra, rb := d.find(a), d.find(b)
	if ra != rb {
		d.parent[rb] = ra
	}
}
