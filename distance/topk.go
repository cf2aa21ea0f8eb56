package distance

import (
	"container/heap"
	"math"
	"slices"
)

// maxHeap keeps the current k best neighbors with the worst on top.
type maxHeap []Neighbor

func worse(a, b Neighbor) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.Row > b.Row
}

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)        { *h = append(*h, x.(Neighbor)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// selectNearest returns the k rows with the smallest distances, ascending, skipping
// rows beyond maxDistance and NaN distances.
func selectNearest(dist []float64, k int, maxDistance float64) []Neighbor {
	if k > len(dist) {
		k = len(dist)
	}
	h := make(maxHeap, 0, k)
	for row, d := range dist {
		if math.IsNaN(d) || d > maxDistance {
			continue
		}
		n := Neighbor{Distance: d, Row: row}
		if h.Len() < k {
			heap.Push(&h, n)
			continue
		}
		if k > 0 && worse(h[0], n) {
			h[0] = n
			heap.Fix(&h, 0)
		}
	}
	out := []Neighbor(h)
	slices.SortFunc(out, func(a, b Neighbor) int {
		switch {
		case worse(b, a):
			return -1
		case worse(a, b):
			return 1
		}
		return 0
	})
	return out
}
