package settle

import (
	"context"
	"errors"
	"testing"
	"time"

	"token-slots/internal/chain"
)

func newFundedLedger() *chain.Memory {
	m := chain.NewMemory()
	m.Seed("alice", 10_000_000)
	m.Seed("house", 50_000_000)
	m.SeedFee("house", 100_000_000)
	return m
}

func TestTransferSuccess(t *testing.T) {
	m := newFundedLedger()
	c := NewClient(m, time.Second)

	rcpt := c.Transfer(context.Background(), "alice", "house", 1_000_000, "house")
	if !rcpt.Success {
		t.Fatalf("transfer failed: %v", rcpt.Err)
	}
	if rcpt.Reference == "" {
		t.Fatal("success receipt missing reference")
	}
	if got := m.AmountOf("house"); got != 51_000_000 {
		t.Fatalf("house = %d, want 51000000", got)
	}
}

func TestTransferCreatesDestination(t *testing.T) {
	m := chain.NewMemory()
	m.Seed("house", 50_000_000)
	m.SeedFee("house", 100_000_000)
	c := NewClient(m, time.Second)

	rcpt := c.Transfer(context.Background(), "house", "fresh-player", 2_000_000, "house")
	if !rcpt.Success {
		t.Fatalf("transfer failed: %v", rcpt.Err)
	}
	if got := m.AmountOf("fresh-player"); got != 2_000_000 {
		t.Fatalf("fresh-player = %d, want 2000000", got)
	}
}

func TestTransferCreationFeeUnpayable(t *testing.T) {
	m := chain.NewMemory()
	m.Seed("house", 50_000_000)
	// No native fee balance at all.
	c := NewClient(m, time.Second)

	rcpt := c.Transfer(context.Background(), "house", "fresh-player", 2_000_000, "house")
	if rcpt.Success {
		t.Fatal("transfer succeeded without creation fee funds")
	}
	if !errors.Is(rcpt.Err, chain.ErrInsufficientFee) {
		t.Fatalf("err = %v, want ErrInsufficientFee", rcpt.Err)
	}
}

func TestTransferInsufficientFundsIsTyped(t *testing.T) {
	m := newFundedLedger()
	c := NewClient(m, time.Second)

	rcpt := c.Transfer(context.Background(), "alice", "house", 999_000_000, "house")
	if rcpt.Success {
		t.Fatal("transfer succeeded beyond balance")
	}
	if !errors.Is(rcpt.Err, chain.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", rcpt.Err)
	}
}

func TestTransferConfirmTimeout(t *testing.T) {
	m := newFundedLedger()
	m.SetConfirmDelay(time.Second)
	c := NewClient(m, 20*time.Millisecond)

	rcpt := c.Transfer(context.Background(), "alice", "house", 1_000_000, "house")
	if rcpt.Success {
		t.Fatal("transfer reported success past confirm timeout")
	}
	if !errors.Is(rcpt.Err, chain.ErrConfirmTimeout) {
		t.Fatalf("err = %v, want ErrConfirmTimeout", rcpt.Err)
	}
}

func TestTransferShieldedFromCallerCancel(t *testing.T) {
	m := newFundedLedger()
	m.SetConfirmDelay(30 * time.Millisecond)
	c := NewClient(m, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	m.SetSubmitHook(func(_, _ chain.AccountHandle) error {
		cancel()
		return nil
	})
	rcpt := c.Transfer(ctx, "alice", "house", 1_000_000, "house")
	if !rcpt.Success {
		t.Fatalf("transfer aborted by caller cancellation: %v", rcpt.Err)
	}
}
