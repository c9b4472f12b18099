package game

// Symbol is one reel face.
type Symbol string

const (
	Cherry  Symbol = "🍒"
	Lemon   Symbol = "🍋"
	Orange  Symbol = "🍊"
	Star    Symbol = "⭐"
	Diamond Symbol = "💎"
)

// Symbols is the fixed reel alphabet; draws are uniform over it.
var Symbols = [5]Symbol{Cherry, Lemon, Orange, Star, Diamond}

// tripleMultipliers pays a symbol-specific multiple when all three
// reels match. Rarer-feeling symbols pay more.
var tripleMultipliers = map[Symbol]int64{
	Diamond: 50,
	Star:    20,
	Cherry:  10,
	Lemon:   5,
	Orange:  3,
}

const pairMultiplier = 2

// Outcome is an ordered triple of reel faces, immutable once drawn.
type Outcome [3]Symbol

// Payout computes winnings for a stake in whole tokens. Integer
// arithmetic only; multipliers never produce fractions.
func Payout(stake int64, out Outcome) int64 {
	if out[0] == out[1] && out[1] == out[2] {
		return stake * tripleMultipliers[out[0]]
	}
	if out[0] == out[1] || out[1] == out[2] || out[0] == out[2] {
		return stake * pairMultiplier
	}
	return 0
}

// TripleMultiplier exposes the table for status/debug surfaces.
func TripleMultiplier(s Symbol) int64 {
	return tripleMultipliers[s]
}
