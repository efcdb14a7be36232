// Package wheel implements the spin wheel outcome policy.
package wheel

// Source yields uniform draws; math/rand/v2 *Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// Segments is the fixed ordered set of point values on the wheel.
var Segments = []int64{2, 4, 6, 8, 10, 12, 14, 16, 18, 20}

// Spin draws a landing segment uniformly and returns its index and value.
// The index lets the client animate the wheel to the matching stop.
func Spin(r Source) (index int, value int64) {
	index = r.IntN(len(Segments))
	return index, Segments[index]
}
