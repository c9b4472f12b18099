package engine

import (
	"token-slots/internal/chain"
	"token-slots/internal/game"
	"token-slots/internal/settle"
)

type Status string

const (
	// StatusSettled: debit confirmed, outcome resolved, any winnings
	// paid.
	StatusSettled Status = "settled"
	// StatusPartiallyFailed: the debit landed but the credit did not.
	// The player is owed the payout; an operator must reconcile.
	StatusPartiallyFailed Status = "partially_failed"
	// StatusUnknown: the debit confirmation timed out. The stake may
	// or may not have moved; no outcome was drawn.
	StatusUnknown Status = "unknown"
)

// Request is one wager. RequestID is the caller-generated
// deduplication token; replays of the same id return the recorded
// result instead of settling twice.
type Request struct {
	RequestID string        `json:"request_id"`
	Party     chain.Address `json:"party"`
	Stake     int64         `json:"stake"`
}

// ReceiptView is the transport-friendly shape of a transfer receipt.
type ReceiptView struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference,omitempty"`
	Error     string `json:"error,omitempty"`
}

func receiptView(r settle.Receipt) ReceiptView {
	v := ReceiptView{Success: r.Success, Reference: r.Reference}
	if r.Err != nil {
		v.Error = r.Err.Error()
	}
	return v
}

// Result is assembled per spin and not persisted beyond the journal
// row derived from it. Balances are fresh post-transfer reads, absent
// when the ledger could not be re-read.
type Result struct {
	SettlementID string        `json:"settlement_id"`
	Status       Status        `json:"status"`
	Symbols      []game.Symbol `json:"symbols,omitempty"`
	Stake        int64         `json:"stake"`
	Payout       int64         `json:"payout"`
	Message      string        `json:"message,omitempty"`
	Debit        ReceiptView   `json:"debit_receipt"`
	Credit       *ReceiptView  `json:"credit_receipt,omitempty"`
	PartyBalance *int64        `json:"party_balance,omitempty"`
	HouseBalance *int64        `json:"house_balance,omitempty"`
	Note         string        `json:"note,omitempty"`
}

type HouseStatus struct {
	Balance     int64 `json:"balance"`
	FeeReserve  int64 `json:"fee_reserve"`
	Operational bool  `json:"operational"`
}
