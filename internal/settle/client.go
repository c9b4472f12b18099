package settle

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"token-slots/internal/chain"
)

// Receipt is the externally-confirmed result of one ledger mutation.
// Immutable once produced; Err is set exactly when Success is false.
type Receipt struct {
	Success   bool
	Reference string
	Err       error
}

// Client submits value transfers to the ledger and converts every
// failure mode into a typed receipt. It never retries: resubmitting a
// transfer whose fate is unknown could double-spend, so retry policy
// belongs to the caller, keyed by its request identifier.
type Client struct {
	ledger         chain.Ledger
	confirmTimeout time.Duration
}

const defaultConfirmTimeout = 30 * time.Second

func NewClient(l chain.Ledger, confirmTimeout time.Duration) *Client {
	if confirmTimeout <= 0 {
		confirmTimeout = defaultConfirmTimeout
	}
	return &Client{ledger: l, confirmTimeout: confirmTimeout}
}

// Transfer moves amountMinor of the game token between owners, lazily
// creating the destination account with feePayer covering the creation
// fee. The submission and confirmation wait are shielded from caller
// cancellation: once we are past account resolution the transfer must
// reach a terminal state regardless of whether the caller is still
// listening. A confirmation timeout yields chain.ErrConfirmTimeout,
// meaning the transfer's fate is unknown, not that it failed.
func (c *Client) Transfer(ctx context.Context, from, to chain.Address, amountMinor int64, feePayer chain.Address) Receipt {
	toHandle, err := c.ledger.ResolveAccount(ctx, to)
	if errors.Is(err, chain.ErrNotFound) {
		log.Debug().Str("owner", string(to)).Msg("creating token account")
		toHandle, err = c.ledger.CreateAccount(ctx, to, feePayer)
	}
	if err != nil {
		return failed(err)
	}
	fromHandle, err := c.ledger.ResolveAccount(ctx, from)
	if err != nil {
		return failed(err)
	}

	subCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.confirmTimeout)
	defer cancel()
	ref, err := c.ledger.SubmitTransfer(subCtx, fromHandle, toHandle, amountMinor, from, feePayer)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, chain.ErrConfirmTimeout) {
			return failed(chain.ErrConfirmTimeout)
		}
		return failed(err)
	}
	return Receipt{Success: true, Reference: ref}
}

func failed(err error) Receipt {
	return Receipt{Err: err}
}
