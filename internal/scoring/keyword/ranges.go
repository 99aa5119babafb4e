package keyword

import (
	"sort"
	"time"
)

// WeightedRange is a date interval carrying a relevance weight.
type WeightedRange struct {
	Start  time.Time
	End    time.Time
	Weight float64
}

// MergeWeightedYears merges overlapping ranges, keeping the maximum weight
// for any overlapped period, and returns the total weighted years. This
// prevents two concurrent roles from double-counting the same calendar time.
func MergeWeightedYears(ranges []WeightedRange) float64 {
	var valid []WeightedRange
	for _, r := range ranges {
		if r.Weight > 0 && r.End.After(r.Start) {
			valid = append(valid, r)
		}
	}
	if len(valid) == 0 {
		return 0
	}

	// Boundary sweep: between consecutive boundaries the covering set is
	// constant, so the max weight is too.
	boundaries := make([]time.Time, 0, len(valid)*2)
	for _, r := range valid {
		boundaries = append(boundaries, r.Start, r.End)
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Before(boundaries[j]) })

	total := 0.0
	for i := 0; i < len(boundaries)-1; i++ {
		segStart, segEnd := boundaries[i], boundaries[i+1]
		if !segEnd.After(segStart) {
			continue
		}
		maxW := 0.0
		for _, r := range valid {
			if !r.Start.After(segStart) && !r.End.Before(segEnd) && r.Weight > maxW {
				maxW = r.Weight
			}
		}
		if maxW > 0 {
			total += segEnd.Sub(segStart).Hours() / (24 * 365.25) * maxW
		}
	}
	return total
}
