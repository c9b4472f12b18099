package chain

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Memory is an in-process simulated ledger. Demo mode and tests run
// against it; it models lazy account creation, creation and transfer
// fees in the native currency, confirmation latency, and injectable
// failures.
type Memory struct {
	mu          sync.Mutex
	accounts    map[AccountHandle]int64
	feeBalances map[Address]int64

	creationFee  int64
	transferFee  int64
	confirmDelay time.Duration
	unreachable  bool
	submitHook   func(from, to AccountHandle) error

	calls   atomic.Int64
	submits atomic.Int64
}

const (
	defaultCreationFee = 2_000_000
	defaultTransferFee = 5_000
)

func NewMemory() *Memory {
	return &Memory{
		accounts:    make(map[AccountHandle]int64),
		feeBalances: make(map[Address]int64),
		creationFee: defaultCreationFee,
		transferFee: defaultTransferFee,
	}
}

func handleFor(owner Address) AccountHandle {
	return AccountHandle("spl:" + string(owner))
}

// Seed creates owner's token account holding amountMinor.
func (m *Memory) Seed(owner Address, amountMinor int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[handleFor(owner)] = amountMinor
}

// Faucet credits owner's token account, creating it for free. Only
// the demo faucet endpoint uses this; real accounts pay creation fees.
func (m *Memory) Faucet(owner Address, amountMinor int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[handleFor(owner)] += amountMinor
}

// SeedFee funds owner's native fee balance.
func (m *Memory) SeedFee(owner Address, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feeBalances[owner] = amount
}

func (m *Memory) SetUnreachable(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unreachable = v
}

func (m *Memory) SetConfirmDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmDelay = d
}

// SetSubmitHook installs fn to run at the start of every transfer
// submission; a non-nil return fails that transfer.
func (m *Memory) SetSubmitHook(fn func(from, to AccountHandle) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitHook = fn
}

// Calls reports how many ledger operations of any kind were made.
func (m *Memory) Calls() int64 { return m.calls.Load() }

// Submits reports how many transfer submissions were attempted.
func (m *Memory) Submits() int64 { return m.submits.Load() }

// AmountOf is a test convenience; it reads owner's token balance
// without counting as a ledger call.
func (m *Memory) AmountOf(owner Address) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[handleFor(owner)]
}

func (m *Memory) ResolveAccount(_ context.Context, owner Address) (AccountHandle, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unreachable {
		return "", ErrUnreachable
	}
	h := handleFor(owner)
	if _, ok := m.accounts[h]; !ok {
		return "", ErrNotFound
	}
	return h, nil
}

func (m *Memory) CreateAccount(_ context.Context, owner Address, feePayer Address) (AccountHandle, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unreachable {
		return "", ErrUnreachable
	}
	h := handleFor(owner)
	if _, ok := m.accounts[h]; ok {
		return h, nil
	}
	if m.feeBalances[feePayer] < m.creationFee {
		return "", ErrInsufficientFee
	}
	m.feeBalances[feePayer] -= m.creationFee
	m.accounts[h] = 0
	return h, nil
}

func (m *Memory) ReadAccountAmount(_ context.Context, handle AccountHandle) (int64, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unreachable {
		return 0, ErrUnreachable
	}
	amount, ok := m.accounts[handle]
	if !ok {
		return 0, ErrNotFound
	}
	return amount, nil
}

func (m *Memory) ReadNativeFeeBalance(_ context.Context, owner Address) (int64, error) {
	m.calls.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unreachable {
		return 0, ErrUnreachable
	}
	return m.feeBalances[owner], nil
}

func (m *Memory) SubmitTransfer(ctx context.Context, from, to AccountHandle, amountMinor int64, _ Address, feePayer Address) (string, error) {
	m.calls.Add(1)
	m.submits.Add(1)

	m.mu.Lock()
	unreachable := m.unreachable
	hook := m.submitHook
	delay := m.confirmDelay
	m.mu.Unlock()

	if unreachable {
		return "", ErrUnreachable
	}
	if hook != nil {
		if err := hook(from, to); err != nil {
			return "", err
		}
	}

	// Confirmation wait. Expiring here means the transfer never
	// landed in this simulation.
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[from]; !ok {
		return "", ErrNotFound
	}
	if _, ok := m.accounts[to]; !ok {
		return "", ErrNotFound
	}
	if m.accounts[from] < amountMinor {
		return "", ErrInsufficientFunds
	}
	if m.feeBalances[feePayer] < m.transferFee {
		return "", ErrInsufficientFee
	}
	m.feeBalances[feePayer] -= m.transferFee
	m.accounts[from] -= amountMinor
	m.accounts[to] += amountMinor
	return newReference(), nil
}
