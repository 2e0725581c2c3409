// Package availability computes the free time of a room for one date: the
// working window minus that day's bookings, and the discrete start/end options
// a booking form can offer within the result. All functions are pure.
package availability

import (
	"sort"

	"roomly/backend/internal/domain"
)

// OptionStride is the granularity of selectable start and end times.
const OptionStride = 30

// Interval is a half-open span [Start, End) within a single day.
type Interval struct {
	Start domain.TimeOfDay
	End   domain.TimeOfDay
}

func (iv Interval) Contains(t domain.TimeOfDay) bool {
	return iv.Start <= t && t < iv.End
}

func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && iv.End > other.Start
}

// ComputeFree subtracts the booked intervals from the working window.
// Each booked interval removes its intersection from every window piece it
// touches: full cover drops the piece, a prefix or suffix cover trims it, and
// a strictly interior cover splits it in two. Booked intervals are assumed
// pairwise disjoint (the store's non-overlap invariant), so a single pass per
// booking is sufficient. The result is sorted, pairwise disjoint, and never
// contains zero-length intervals.
func ComputeFree(window []Interval, booked []Interval) []Interval {
	free := make([]Interval, 0, len(window)+len(booked))
	for _, w := range window {
		if w.Start < w.End {
			free = append(free, w)
		}
	}

	for _, b := range booked {
		if b.Start >= b.End {
			continue
		}
		next := make([]Interval, 0, len(free)+1)
		for _, f := range free {
			if !f.Overlaps(b) {
				next = append(next, f)
				continue
			}
			if b.Start > f.Start {
				next = append(next, Interval{Start: f.Start, End: b.Start})
			}
			if b.End < f.End {
				next = append(next, Interval{Start: b.End, End: f.End})
			}
		}
		free = next
	}

	sort.Slice(free, func(i, j int) bool { return free[i].Start < free[j].Start })
	return free
}

// ComputeFreeForEdit recomputes availability for a booking being edited: the
// booking's own slot is treated as still free, so the editor can keep, shrink,
// or extend it without seeing it as taken. The own slot is re-injected into
// the free set and touching neighbors are coalesced before the remaining
// bookings are subtracted.
func ComputeFreeForEdit(window []Interval, others []Interval, own Interval) []Interval {
	free := ComputeFree(window, others)
	if own.Start >= own.End {
		return free
	}
	free = append(free, own)
	sort.Slice(free, func(i, j int) bool { return free[i].Start < free[j].Start })
	return MergeTouching(free)
}

// MergeTouching coalesces a start-sorted interval list, joining spans whose
// boundaries touch or overlap. One left-to-right scan reaches a fixed point
// on sorted input.
func MergeTouching(sorted []Interval) []Interval {
	if len(sorted) == 0 {
		return nil
	}
	merged := make([]Interval, 0, len(sorted))
	merged = append(merged, sorted[0])
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// StartOptions returns every selectable booking start: 30-minute strides from
// each free interval's start, strictly before its end, deduplicated and sorted.
func StartOptions(free []Interval) []domain.TimeOfDay {
	seen := make(map[domain.TimeOfDay]struct{})
	out := make([]domain.TimeOfDay, 0, len(free)*4)
	for _, iv := range free {
		for t := iv.Start; t < iv.End; t += OptionStride {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EndOptions returns the selectable end times for a chosen start: every
// 30-minute stride strictly after start, up to and including the end of the
// free interval that contains start. Empty when no interval contains it.
func EndOptions(free []Interval, start domain.TimeOfDay) []domain.TimeOfDay {
	for _, iv := range free {
		if !iv.Contains(start) {
			continue
		}
		out := make([]domain.TimeOfDay, 0, (iv.End-start)/OptionStride+1)
		for t := start + OptionStride; t <= iv.End; t += OptionStride {
			out = append(out, t)
		}
		return out
	}
	return nil
}
