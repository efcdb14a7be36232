// Package slot implements the slot machine outcome policy.
package slot

// Source yields uniform draws; math/rand/v2 *Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// The 6-symbol reel alphabet.
const (
	SymbolCherry  = "🍒"
	SymbolLemon   = "🍋"
	SymbolGrape   = "🍇"
	SymbolDiamond = "💎"
	SymbolSeven   = "7️⃣"
	SymbolBell    = "🔔"
)

// Symbols is the reel alphabet in display order.
var Symbols = []string{SymbolCherry, SymbolLemon, SymbolGrape, SymbolDiamond, SymbolSeven, SymbolBell}

// Payout values.
const (
	TripleSevenPayout   = 100
	TripleDiamondPayout = 50
	TriplePayout        = 30
	PairPayout          = 5
)

// Roll draws three independent reel symbols.
func Roll(r Source) (left, middle, right string) {
	left = Symbols[r.IntN(len(Symbols))]
	middle = Symbols[r.IntN(len(Symbols))]
	right = Symbols[r.IntN(len(Symbols))]
	return left, middle, right
}

// CalculatePayout returns the points won for a reel combination:
// three sevens pay 100, three diamonds 50, any other triple 30,
// exactly two matching symbols 5, and no match 0.
func CalculatePayout(left, middle, right string) int64 {
	if left == middle && middle == right {
		switch left {
		case SymbolSeven:
			return TripleSevenPayout
		case SymbolDiamond:
			return TripleDiamondPayout
		default:
			return TriplePayout
		}
	}

	if left == middle || middle == right || left == right {
		return PairPayout
	}

	return 0
}
