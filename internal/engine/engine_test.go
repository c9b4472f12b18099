package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"token-slots/internal/chain"
	"token-slots/internal/game"
	"token-slots/internal/oracle"
	"token-slots/internal/settle"
	"token-slots/internal/stats"
	"token-slots/internal/store"
	"token-slots/internal/token"
)

type fixedDrawer struct {
	out game.Outcome
}

func (d fixedDrawer) Draw() game.Outcome { return d.out }

var (
	winningDraw = fixedDrawer{out: game.Outcome{game.Diamond, game.Diamond, game.Diamond}}
	losingDraw  = fixedDrawer{out: game.Outcome{game.Cherry, game.Lemon, game.Orange}}
)

type rig struct {
	ledger  *chain.Memory
	eng     *Engine
	stats   *stats.MemoryRepository
	journal *store.MemoryJournal
}

func newRig(drawer Drawer, confirmTimeout time.Duration) *rig {
	ledger := chain.NewMemory()
	ledger.Seed("house", token.ToMinor(1_000_000))
	ledger.SeedFee("house", 100_000_000)
	statsRepo := stats.NewMemoryRepository()
	journal := store.NewMemoryJournal()
	eng := New(
		Config{House: "house", MinFeeReserve: 10_000},
		oracle.New(ledger),
		settle.NewClient(ledger, confirmTimeout),
		drawer,
		statsRepo,
		journal,
	)
	return &rig{ledger: ledger, eng: eng, stats: statsRepo, journal: journal}
}

func TestSpinRejectsInvalidStake(t *testing.T) {
	r := newRig(losingDraw, time.Second)
	r.ledger.Seed("alice", token.ToMinor(1000))

	for _, stake := range []int64{0, -5, 9, 1001} {
		_, err := r.eng.Spin(context.Background(), Request{RequestID: "req", Party: "alice", Stake: stake})
		if !errors.Is(err, ErrInvalidStake) {
			t.Fatalf("stake %d: err = %v, want ErrInvalidStake", stake, err)
		}
	}
	if calls := r.ledger.Calls(); calls != 0 {
		t.Fatalf("ledger calls = %d, want 0 for rejected stakes", calls)
	}
}

func TestSpinRejectsMissingRequestID(t *testing.T) {
	r := newRig(losingDraw, time.Second)
	r.ledger.Seed("alice", token.ToMinor(1000))

	_, err := r.eng.Spin(context.Background(), Request{Party: "alice", Stake: 100})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestSpinInsufficientFunds(t *testing.T) {
	r := newRig(losingDraw, time.Second)
	r.ledger.Seed("alice", token.ToMinor(5))

	_, err := r.eng.Spin(context.Background(), Request{RequestID: "req", Party: "alice", Stake: 10})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if submits := r.ledger.Submits(); submits != 0 {
		t.Fatalf("transfers submitted = %d, want 0", submits)
	}
	if st := r.stats.Get("alice"); st.TotalSpins != 0 {
		t.Fatalf("stats recorded for rejected spin: %+v", st)
	}
}

func TestSpinOracleUnavailableIsNotZeroBalance(t *testing.T) {
	r := newRig(losingDraw, time.Second)
	r.ledger.Seed("alice", token.ToMinor(1000))
	r.ledger.SetUnreachable(true)

	_, err := r.eng.Spin(context.Background(), Request{RequestID: "req", Party: "alice", Stake: 100})
	if !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("err = %v, want ErrOracleUnavailable", err)
	}
}

func TestSpinHouseIlliquid(t *testing.T) {
	r := newRig(losingDraw, time.Second)
	r.ledger.Seed("alice", token.ToMinor(1000))
	r.ledger.SeedFee("house", 5_000) // below MinFeeReserve, above zero

	_, err := r.eng.Spin(context.Background(), Request{RequestID: "req", Party: "alice", Stake: 100})
	if !errors.Is(err, ErrHouseIlliquid) {
		t.Fatalf("err = %v, want ErrHouseIlliquid", err)
	}
	if r.eng.Halted() {
		t.Fatal("non-zero reserve should reject, not halt")
	}
}

func TestSpinHaltsOnExhaustedFeeReserve(t *testing.T) {
	r := newRig(losingDraw, time.Second)
	r.ledger.Seed("alice", token.ToMinor(1000))
	r.ledger.SeedFee("house", 0)

	_, err := r.eng.Spin(context.Background(), Request{RequestID: "req", Party: "alice", Stake: 100})
	if !errors.Is(err, ErrHouseIlliquid) {
		t.Fatalf("err = %v, want ErrHouseIlliquid", err)
	}
	if !r.eng.Halted() {
		t.Fatal("engine should halt once the fee reserve is exhausted")
	}
	_, err = r.eng.Spin(context.Background(), Request{RequestID: "req2", Party: "alice", Stake: 100})
	if !errors.Is(err, ErrHalted) {
		t.Fatalf("err = %v, want ErrHalted", err)
	}
}

func TestSpinDebitFailureDrawsNoOutcome(t *testing.T) {
	r := newRig(winningDraw, time.Second)
	r.ledger.Seed("alice", token.ToMinor(1000))
	r.ledger.SetSubmitHook(func(_, _ chain.AccountHandle) error {
		return chain.ErrInsufficientFunds
	})

	_, err := r.eng.Spin(context.Background(), Request{RequestID: "req", Party: "alice", Stake: 100})
	if !errors.Is(err, ErrDebitFailed) {
		t.Fatalf("err = %v, want ErrDebitFailed", err)
	}
	if st := r.stats.Get("alice"); st.TotalSpins != 0 {
		t.Fatalf("stats recorded for failed debit: %+v", st)
	}
	rows, _ := r.journal.List(context.Background(), "", false, 50, 0)
	if len(rows) != 0 {
		t.Fatalf("journal rows = %d, want 0 for rejection", len(rows))
	}
}

func TestSpinWinSettlesEndToEnd(t *testing.T) {
	r := newRig(winningDraw, time.Second)
	r.ledger.Seed("alice", token.ToMinor(1000))

	res, err := r.eng.Spin(context.Background(), Request{RequestID: "req", Party: "alice", Stake: 100})
	if err != nil {
		t.Fatalf("spin: %v", err)
	}
	if res.Status != StatusSettled {
		t.Fatalf("status = %s, want settled", res.Status)
	}
	if res.Payout != 5000 {
		t.Fatalf("payout = %d, want 5000", res.Payout)
	}
	if res.Message == "" {
		t.Fatal("winning result should carry a message")
	}
	if !res.Debit.Success || res.Credit == nil || !res.Credit.Success {
		t.Fatalf("receipts = %+v / %+v, want both successful", res.Debit, res.Credit)
	}
	if res.PartyBalance == nil || *res.PartyBalance != 1000-100+5000 {
		t.Fatalf("party balance = %v, want 5900", res.PartyBalance)
	}
	if st := r.stats.Get("alice"); st.TotalSpins != 1 || st.TotalWon != 5000 || st.BiggestWin != 5000 {
		t.Fatalf("stats = %+v", st)
	}
	rows, _ := r.journal.List(context.Background(), "settled", false, 50, 0)
	if len(rows) != 1 || rows[0].Payout != 5000 {
		t.Fatalf("journal = %+v, want one settled row", rows)
	}
}

func TestSpinLossSettlesWithoutCredit(t *testing.T) {
	r := newRig(losingDraw, time.Second)
	r.ledger.Seed("alice", token.ToMinor(100))

	res, err := r.eng.Spin(context.Background(), Request{RequestID: "req", Party: "alice", Stake: 10})
	if err != nil {
		t.Fatalf("spin: %v", err)
	}
	if res.Status != StatusSettled || res.Payout != 0 {
		t.Fatalf("result = %+v, want settled zero payout", res)
	}
	if res.Credit != nil {
		t.Fatalf("credit receipt present on a loss: %+v", res.Credit)
	}
	if got := r.ledger.AmountOf("alice"); got != token.ToMinor(90) {
		t.Fatalf("alice = %d, want 90 tokens", got)
	}
	if st := r.stats.Get("alice"); st.TotalSpins != 1 || st.TotalWagered != 10 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestSpinCreditFailureIsPartialNotLoss(t *testing.T) {
	r := newRig(winningDraw, time.Second)
	r.ledger.Seed("alice", token.ToMinor(1000))

	var submits atomic.Int64
	r.ledger.SetSubmitHook(func(_, _ chain.AccountHandle) error {
		if submits.Add(1) == 2 {
			return chain.ErrUnreachable // fail only the credit
		}
		return nil
	})

	res, err := r.eng.Spin(context.Background(), Request{RequestID: "req", Party: "alice", Stake: 100})
	if err != nil {
		t.Fatalf("spin: %v", err)
	}
	if res.Status != StatusPartiallyFailed {
		t.Fatalf("status = %s, want partially_failed", res.Status)
	}
	if !res.Debit.Success {
		t.Fatal("debit receipt should be successful")
	}
	if res.Credit == nil || res.Credit.Success {
		t.Fatalf("credit receipt = %+v, want failed", res.Credit)
	}
	if res.Payout != 5000 {
		t.Fatalf("payout = %d, want 5000 still owed", res.Payout)
	}
	// The spin economically occurred; stats must not pretend otherwise.
	if st := r.stats.Get("alice"); st.TotalSpins != 1 {
		t.Fatalf("stats = %+v, want spin recorded", st)
	}
	rows, _ := r.journal.List(context.Background(), "partially_failed", true, 50, 0)
	if len(rows) != 1 || rows[0].DebitRef == "" {
		t.Fatalf("journal = %+v, want one unreconciled partial row with debit ref", rows)
	}
}

func TestSpinDebitTimeoutIsUnknownNotRejected(t *testing.T) {
	r := newRig(winningDraw, 20*time.Millisecond)
	r.ledger.Seed("alice", token.ToMinor(1000))
	r.ledger.SetConfirmDelay(time.Second)

	res, err := r.eng.Spin(context.Background(), Request{RequestID: "req", Party: "alice", Stake: 100})
	if err != nil {
		t.Fatalf("spin: %v", err)
	}
	if res.Status != StatusUnknown {
		t.Fatalf("status = %s, want unknown", res.Status)
	}
	if len(res.Symbols) != 0 {
		t.Fatalf("outcome drawn against an unconfirmed stake: %v", res.Symbols)
	}
	if st := r.stats.Get("alice"); st.TotalSpins != 0 {
		t.Fatalf("stats recorded for unknown debit: %+v", st)
	}
	rows, _ := r.journal.List(context.Background(), "unknown", true, 50, 0)
	if len(rows) != 1 {
		t.Fatalf("journal rows = %d, want 1 unknown row", len(rows))
	}
}

func TestSpinIdempotentReplay(t *testing.T) {
	r := newRig(losingDraw, time.Second)
	r.ledger.Seed("alice", token.ToMinor(1000))

	req := Request{RequestID: "dup", Party: "alice", Stake: 10}
	first, err := r.eng.Spin(context.Background(), req)
	if err != nil {
		t.Fatalf("first spin: %v", err)
	}
	second, err := r.eng.Spin(context.Background(), req)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if first.SettlementID != second.SettlementID {
		t.Fatalf("replay settled separately: %s vs %s", first.SettlementID, second.SettlementID)
	}
	if submits := r.ledger.Submits(); submits != 1 {
		t.Fatalf("submits = %d, want 1 despite replay", submits)
	}
}

func TestSpinSurvivesCallerDisconnect(t *testing.T) {
	r := newRig(winningDraw, time.Second)
	r.ledger.Seed("alice", token.ToMinor(1000))
	r.ledger.SetConfirmDelay(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	r.ledger.SetSubmitHook(func(_, _ chain.AccountHandle) error {
		cancel() // player disconnects mid-debit
		return nil
	})

	res, err := r.eng.Spin(ctx, Request{RequestID: "req", Party: "alice", Stake: 100})
	if err != nil {
		t.Fatalf("spin: %v", err)
	}
	if res.Status != StatusSettled {
		t.Fatalf("status = %s, want settled despite disconnect", res.Status)
	}
	if res.Credit == nil || !res.Credit.Success {
		t.Fatalf("winnings not paid after disconnect: %+v", res.Credit)
	}
}

func TestEngineHaltsAfterRepeatedOracleFailures(t *testing.T) {
	r := newRig(losingDraw, time.Second)
	r.ledger.Seed("alice", token.ToMinor(1000))
	r.ledger.SetUnreachable(true)

	for i := 0; i < oracleFailHaltThreshold; i++ {
		_, err := r.eng.Spin(context.Background(), Request{RequestID: store.NewID(), Party: "alice", Stake: 100})
		if !errors.Is(err, ErrOracleUnavailable) {
			t.Fatalf("spin %d: err = %v, want ErrOracleUnavailable", i, err)
		}
	}
	r.ledger.SetUnreachable(false)
	_, err := r.eng.Spin(context.Background(), Request{RequestID: "after", Party: "alice", Stake: 100})
	if !errors.Is(err, ErrHalted) {
		t.Fatalf("err = %v, want ErrHalted after repeated oracle failures", err)
	}
}

func TestHouseStatus(t *testing.T) {
	r := newRig(losingDraw, time.Second)

	status, err := r.eng.HouseStatus(context.Background())
	if err != nil {
		t.Fatalf("house status: %v", err)
	}
	if !status.Operational {
		t.Fatalf("status = %+v, want operational", status)
	}
	if status.Balance != 1_000_000 {
		t.Fatalf("balance = %d, want 1000000", status.Balance)
	}

	r.eng.Halt()
	status, err = r.eng.HouseStatus(context.Background())
	if err != nil {
		t.Fatalf("house status after halt: %v", err)
	}
	if status.Operational {
		t.Fatal("halted engine reported operational")
	}
}

func TestJanitorEvictsOldResults(t *testing.T) {
	r := newRig(losingDraw, time.Second)
	r.ledger.Seed("alice", token.ToMinor(1000))

	if _, err := r.eng.Spin(context.Background(), Request{RequestID: "old", Party: "alice", Stake: 10}); err != nil {
		t.Fatalf("spin: %v", err)
	}
	r.eng.evictExpired(time.Now().Add(time.Hour))
	if res := r.eng.recallResult("old"); res != nil {
		t.Fatal("expired result still remembered")
	}
}
