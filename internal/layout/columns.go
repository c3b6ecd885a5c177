package layout

import (
	"math"
	"sort"
)

// DefaultMaxCols is the default upper bound on inferred table columns.
const DefaultMaxCols = 6

// EstimateColumns infers column center positions from the horizontal centers
// of all tokens across the page's rows. The target column count is
// median(row lengths)+1 clamped to [2, maxCols]; the centers are then
// partitioned with 1-D agglomerative clustering and each cluster's mean
// becomes a column center.
//
// Returned centers are strictly increasing and never exceed maxCols. Empty
// input yields nil.
func EstimateColumns(rows []Row, maxCols int) []float64 {
	if maxCols <= 0 {
		maxCols = DefaultMaxCols
	}

	var centers []float64
	lengths := make([]int, 0, len(rows))
	for _, r := range rows {
		lengths = append(lengths, len(r))
		for _, t := range r {
			centers = append(centers, t.CenterX())
		}
	}
	if len(centers) == 0 {
		return nil
	}

	target := targetColumnCount(lengths, maxCols)
	cols := agglomerate1D(centers, target)
	if len(cols) >= 2 {
		return cols
	}
	// Degenerate input (e.g. every token at the same horizontal position):
	// fall back to deduplicated, subsampled raw centers.
	return subsampleCenters(centers, target)
}

func targetColumnCount(rowLengths []int, maxCols int) int {
	n := int(medianInts(rowLengths)) + 1
	if n < 2 {
		n = 2
	}
	if n > maxCols {
		n = maxCols
	}
	return n
}

func medianInts(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]int, len(vals))
	copy(sorted, vals)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// agglomerate1D partitions scalar values into at most target contiguous
// clusters by sorting them and repeatedly merging the two adjacent clusters
// whose means are closest. Clusters whose means coincide are collapsed so the
// returned means stay strictly increasing.
func agglomerate1D(values []float64, target int) []float64 {
	type cluster struct {
		sum float64
		n   int
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	clusters := make([]cluster, len(sorted))
	for i, v := range sorted {
		clusters[i] = cluster{sum: v, n: 1}
	}
	mean := func(c cluster) float64 { return c.sum / float64(c.n) }

	for len(clusters) > target {
		best := 0
		bestGap := math.Inf(1)
		for i := 0; i+1 < len(clusters); i++ {
			gap := mean(clusters[i+1]) - mean(clusters[i])
			if gap < bestGap {
				bestGap = gap
				best = i
			}
		}
		clusters[best] = cluster{
			sum: clusters[best].sum + clusters[best+1].sum,
			n:   clusters[best].n + clusters[best+1].n,
		}
		clusters = append(clusters[:best+1], clusters[best+2:]...)
	}

	out := make([]float64, 0, len(clusters))
	for _, c := range clusters {
		m := mean(c)
		if len(out) > 0 && m <= out[len(out)-1] {
			continue
		}
		out = append(out, m)
	}
	return out
}

// subsampleCenters deduplicates centers rounded to whole pixels and, when more
// unique positions remain than target, thins them at a fixed stride.
func subsampleCenters(centers []float64, target int) []float64 {
	seen := make(map[int]struct{}, len(centers))
	var uniq []int
	for _, c := range centers {
		r := int(math.Round(c))
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		uniq = append(uniq, r)
	}
	sort.Ints(uniq)

	if len(uniq) > target {
		step := len(uniq) / target
		if step < 1 {
			step = 1
		}
		thinned := make([]int, 0, target)
		for i := 0; i < len(uniq) && len(thinned) < target; i += step {
			thinned = append(thinned, uniq[i])
		}
		uniq = thinned
	}

	out := make([]float64, len(uniq))
	for i, v := range uniq {
		out[i] = float64(v)
	}
	return out
}
