package oracle

import (
	"context"
	"errors"

	"token-slots/internal/chain"
	"token-slots/internal/token"
)

// ErrUnavailable reports that the ledger could not be read. It is never
// collapsed into a zero balance; a false zero would let a spin proceed
// against funds we cannot see.
var ErrUnavailable = errors.New("oracle_unavailable")

// Oracle reads spendable balances from the external ledger. Pure reads,
// idempotent, never triggers a write.
type Oracle struct {
	ledger chain.Ledger
}

func New(l chain.Ledger) *Oracle {
	return &Oracle{ledger: l}
}

// Balance returns the party's game-token balance in whole tokens. A
// party with no token account reads as zero.
func (o *Oracle) Balance(ctx context.Context, party chain.Address) (int64, error) {
	handle, err := o.ledger.ResolveAccount(ctx, party)
	if err != nil {
		if errors.Is(err, chain.ErrNotFound) {
			return 0, nil
		}
		return 0, ErrUnavailable
	}
	amount, err := o.ledger.ReadAccountAmount(ctx, handle)
	if err != nil {
		if errors.Is(err, chain.ErrNotFound) {
			return 0, nil
		}
		return 0, ErrUnavailable
	}
	return token.FromMinor(amount), nil
}

// FeeReserve returns the party's native fee-currency balance in native
// minor units.
func (o *Oracle) FeeReserve(ctx context.Context, party chain.Address) (int64, error) {
	amount, err := o.ledger.ReadNativeFeeBalance(ctx, party)
	if err != nil {
		return 0, ErrUnavailable
	}
	return amount, nil
}
