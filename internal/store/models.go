package store

import "time"

// Settlement is one journal row: the durable record of a spin that
// economically occurred. PartiallyFailed and unknown rows carry enough
// detail for an operator to reconcile by hand.
type Settlement struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	Party      string    `json:"party"`
	Stake      int64     `json:"stake"`
	Payout     int64     `json:"payout"`
	Status     string    `json:"status"`
	DebitRef   string    `json:"debit_ref,omitempty"`
	CreditRef  string    `json:"credit_ref,omitempty"`
	Note       string    `json:"note,omitempty"`
	Reconciled bool      `json:"reconciled"`
	CreatedAt  time.Time `json:"created_at"`
}
