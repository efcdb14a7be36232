// Package scratch implements the scratch card outcome policy.
package scratch

// Source yields uniform draws; math/rand/v2 *Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// Prize bounds and the reveal threshold. The prize is fixed when the card is
// issued; it is granted only once the client has scratched away more than
// RevealThreshold of the covering layer.
const (
	MinPrize        = 1
	MaxPrize        = 20
	RevealThreshold = 0.4
)

// Card is a single scratch card with its prize fixed at issue time.
type Card struct {
	Prize int64
}

// NewCard issues a card with a uniform prize in [MinPrize, MaxPrize].
func NewCard(r Source) Card {
	return Card{Prize: int64(MinPrize + r.IntN(MaxPrize-MinPrize+1))}
}

// Revealed reports whether the scratched-away fraction crosses the
// reveal threshold.
func Revealed(fraction float64) bool {
	return fraction > RevealThreshold
}
