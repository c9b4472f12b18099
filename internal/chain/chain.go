package chain

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("account_not_found")
	ErrUnreachable       = errors.New("ledger_unreachable")
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrInsufficientFee   = errors.New("insufficient_fee_funds")
	ErrConfirmTimeout    = errors.New("confirm_timeout")
)

// Address identifies a party on the ledger, player or house.
type Address string

// AccountHandle points at a party's token account for the game token.
type AccountHandle string

// Ledger is the surface the settlement core needs from the external
// chain. Implementations confirm a transfer before returning its
// reference, so a returned reference means the value really moved.
type Ledger interface {
	ResolveAccount(ctx context.Context, owner Address) (AccountHandle, error)
	CreateAccount(ctx context.Context, owner Address, feePayer Address) (AccountHandle, error)
	ReadAccountAmount(ctx context.Context, handle AccountHandle) (int64, error)
	SubmitTransfer(ctx context.Context, from, to AccountHandle, amountMinor int64, authority, feePayer Address) (string, error)
	ReadNativeFeeBalance(ctx context.Context, owner Address) (int64, error)
}
