package token

// Decimals is the game token's decimal exponent. Every amount crossing
// the chain boundary is an integer count of minor units scaled by it.
const Decimals = 6

const minorPerToken = 1_000_000

func ToMinor(tokens int64) int64 {
	return tokens * minorPerToken
}

// FromMinor truncates toward zero. All amounts the engine produces are
// whole tokens, so nothing is lost in practice.
func FromMinor(minor int64) int64 {
	return minor / minorPerToken
}
