package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"token-slots/internal/chain"
	"token-slots/internal/game"
	"token-slots/internal/oracle"
	"token-slots/internal/settle"
	"token-slots/internal/stats"
	"token-slots/internal/store"
	"token-slots/internal/token"
)

// Drawer produces spin outcomes. Production uses *game.Generator.
type Drawer interface {
	Draw() game.Outcome
}

// Journal records settlements that economically occurred.
type Journal interface {
	Append(ctx context.Context, rec store.Settlement) error
}

type Config struct {
	House         chain.Address
	MinStake      int64
	MaxStake      int64
	MinFeeReserve int64 // native minor units
	ResultTTL     time.Duration
	TokenSymbol   string
}

// consecutive oracle failures before the engine stops taking spins
const oracleFailHaltThreshold = 5

const houseLockKey = "house"

// Engine settles wagers. Settlement is serialized per party for the
// whole balance-check-through-credit window, and per house account
// around each transfer, so concurrent spins can never double-spend a
// balance they both observed.
type Engine struct {
	cfg       Config
	oracle    *oracle.Oracle
	transfers *settle.Client
	drawer    Drawer
	stats     stats.Repository
	journal   Journal

	locks       *keyedLocks
	halted      atomic.Bool
	inflight    sync.WaitGroup
	oracleFails atomic.Int32

	mu     sync.Mutex
	recent map[string]recentResult
}

type recentResult struct {
	res *Result
	at  time.Time
}

func New(cfg Config, o *oracle.Oracle, transfers *settle.Client, drawer Drawer, statsRepo stats.Repository, journal Journal) *Engine {
	if cfg.MinStake <= 0 {
		cfg.MinStake = 10
	}
	if cfg.MaxStake <= 0 {
		cfg.MaxStake = 1000
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 10 * time.Minute
	}
	if cfg.TokenSymbol == "" {
		cfg.TokenSymbol = "OGB"
	}
	return &Engine{
		cfg:       cfg,
		oracle:    o,
		transfers: transfers,
		drawer:    drawer,
		stats:     statsRepo,
		journal:   journal,
		locks:     newKeyedLocks(),
		recent:    make(map[string]recentResult),
	}
}

// Spin settles one wager. Rejections return a nil result and one of
// the sentinel errors in errors.go; anything that economically
// occurred returns a result, including partial failures.
func (e *Engine) Spin(ctx context.Context, req Request) (*Result, error) {
	metricSpinTotal.Add(1)
	if e.halted.Load() {
		metricSpinRejectedTotal.Add(1)
		return nil, ErrHalted
	}
	if req.Party == "" || req.RequestID == "" {
		metricSpinRejectedTotal.Add(1)
		return nil, ErrInvalidRequest
	}
	if req.Stake < e.cfg.MinStake || req.Stake > e.cfg.MaxStake {
		metricSpinRejectedTotal.Add(1)
		return nil, ErrInvalidStake
	}

	if res := e.recallResult(req.RequestID); res != nil {
		metricSpinReplayedTotal.Add(1)
		return res, nil
	}

	e.inflight.Add(1)
	defer e.inflight.Done()

	unlock := e.locks.lock(string(req.Party))
	defer unlock()

	// A duplicate may have settled while we waited on the lock.
	if res := e.recallResult(req.RequestID); res != nil {
		metricSpinReplayedTotal.Add(1)
		return res, nil
	}

	balance, err := e.oracle.Balance(ctx, req.Party)
	if err != nil {
		e.noteOracleFailure()
		metricSpinRejectedTotal.Add(1)
		return nil, ErrOracleUnavailable
	}
	e.oracleFails.Store(0)
	if balance < req.Stake {
		metricSpinRejectedTotal.Add(1)
		return nil, ErrInsufficientFunds
	}

	reserve, err := e.oracle.FeeReserve(ctx, e.cfg.House)
	if err != nil {
		e.noteOracleFailure()
		metricSpinRejectedTotal.Add(1)
		return nil, ErrOracleUnavailable
	}
	if reserve < e.cfg.MinFeeReserve {
		if reserve == 0 {
			e.halt("house fee reserve exhausted")
		}
		metricSpinRejectedTotal.Add(1)
		return nil, ErrHouseIlliquid
	}

	debit := e.houseTransfer(ctx, req.Party, e.cfg.House, token.ToMinor(req.Stake))
	if !debit.Success {
		if errors.Is(debit.Err, chain.ErrConfirmTimeout) {
			// The stake may still land; this is not a rejection.
			res := e.unknownResult(ctx, req, debit)
			e.rememberResult(req.RequestID, res)
			return res, nil
		}
		metricSpinRejectedTotal.Add(1)
		return nil, fmt.Errorf("%w: %v", ErrDebitFailed, debit.Err)
	}

	res := e.settleAfterDebit(ctx, req, debit)
	e.rememberResult(req.RequestID, res)
	return res, nil
}

// settleAfterDebit finishes a spin whose stake is committed. The
// caller's context no longer governs: a disconnected player must not
// leave a debited stake unresolved.
func (e *Engine) settleAfterDebit(ctx context.Context, req Request, debit settle.Receipt) *Result {
	ctx = context.WithoutCancel(ctx)

	out := e.drawer.Draw()
	payout := game.Payout(req.Stake, out)

	res := &Result{
		SettlementID: store.NewID(),
		Status:       StatusSettled,
		Symbols:      out[:],
		Stake:        req.Stake,
		Payout:       payout,
		Debit:        receiptView(debit),
	}
	if payout > 0 {
		res.Message = fmt.Sprintf("You won %d %s!", payout, e.cfg.TokenSymbol)
		credit := e.houseTransfer(ctx, e.cfg.House, req.Party, token.ToMinor(payout))
		cv := receiptView(credit)
		res.Credit = &cv
		if !credit.Success {
			res.Status = StatusPartiallyFailed
			res.Note = "winnings unpaid; pending reconciliation"
			metricSpinPartialTotal.Add(1)
			log.Error().
				Str("settlement_id", res.SettlementID).
				Str("party", string(req.Party)).
				Int64("stake", req.Stake).
				Int64("payout", payout).
				Str("debit_ref", debit.Reference).
				Err(credit.Err).
				Msg("credit failed after confirmed debit")
		}
	} else {
		res.Message = "No win this time"
	}

	// Fresh reads; the ledger is authoritative and other spins may
	// have moved either balance meanwhile.
	if bal, err := e.oracle.Balance(ctx, req.Party); err == nil {
		res.PartyBalance = &bal
	}
	if bal, err := e.oracle.Balance(ctx, e.cfg.House); err == nil {
		res.HouseBalance = &bal
	}

	if res.Status == StatusSettled {
		metricSpinSettledTotal.Add(1)
	}
	e.stats.Record(string(req.Party), req.Stake, payout)
	e.appendJournal(ctx, req, res)
	return res
}

// unknownResult records a spin whose debit confirmation timed out. No
// outcome is drawn: a wager cannot resolve against a stake whose fate
// is unknown. Operators reconcile from the journal row.
func (e *Engine) unknownResult(ctx context.Context, req Request, debit settle.Receipt) *Result {
	metricSpinUnknownTotal.Add(1)
	res := &Result{
		SettlementID: store.NewID(),
		Status:       StatusUnknown,
		Stake:        req.Stake,
		Debit:        receiptView(debit),
		Note:         "debit confirmation timed out; pending reconciliation",
	}
	log.Error().
		Str("settlement_id", res.SettlementID).
		Str("party", string(req.Party)).
		Int64("stake", req.Stake).
		Msg("debit confirmation timed out")
	e.appendJournal(context.WithoutCancel(ctx), req, res)
	return res
}

// houseTransfer runs a transfer under the global house lock; the
// house's token and fee balances are shared across all spins.
func (e *Engine) houseTransfer(ctx context.Context, from, to chain.Address, amountMinor int64) settle.Receipt {
	unlock := e.locks.lock(houseLockKey)
	defer unlock()
	return e.transfers.Transfer(ctx, from, to, amountMinor, e.cfg.House)
}

func (e *Engine) appendJournal(ctx context.Context, req Request, res *Result) {
	rec := store.Settlement{
		ID:        res.SettlementID,
		RequestID: req.RequestID,
		Party:     string(req.Party),
		Stake:     res.Stake,
		Payout:    res.Payout,
		Status:    string(res.Status),
		DebitRef:  res.Debit.Reference,
		Note:      res.Note,
	}
	if res.Credit != nil {
		rec.CreditRef = res.Credit.Reference
	}
	if err := e.journal.Append(ctx, rec); err != nil {
		// The journal is derived state; the settlement stands.
		log.Error().Err(err).Str("settlement_id", rec.ID).Msg("journal append failed")
	}
}

func (e *Engine) recallResult(requestID string) *Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rr, ok := e.recent[requestID]; ok {
		return rr.res
	}
	return nil
}

func (e *Engine) rememberResult(requestID string, res *Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recent[requestID] = recentResult{res: res, at: time.Now()}
}

func (e *Engine) noteOracleFailure() {
	if e.oracleFails.Add(1) >= oracleFailHaltThreshold {
		e.halt("balance oracle unreachable repeatedly")
	}
}

func (e *Engine) halt(reason string) {
	if e.halted.CompareAndSwap(false, true) {
		log.Error().Str("reason", reason).Msg("engine halted; rejecting new spins")
	}
}

// Halt stops acceptance of new spins. In-flight spins still run to a
// terminal state.
func (e *Engine) Halt() { e.halt("operator request") }

func (e *Engine) Halted() bool { return e.halted.Load() }

// HouseStatus reports the house's token balance, fee reserve and
// whether the engine is taking spins.
func (e *Engine) HouseStatus(ctx context.Context) (*HouseStatus, error) {
	balance, err := e.oracle.Balance(ctx, e.cfg.House)
	if err != nil {
		return nil, err
	}
	reserve, err := e.oracle.FeeReserve(ctx, e.cfg.House)
	if err != nil {
		return nil, err
	}
	return &HouseStatus{
		Balance:     balance,
		FeeReserve:  reserve,
		Operational: !e.halted.Load() && reserve >= e.cfg.MinFeeReserve,
	}, nil
}

// Drain blocks until in-flight spins reach terminal states or ctx
// expires. Used on shutdown.
func (e *Engine) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartJanitor evicts remembered results older than ResultTTL so the
// deduplication map does not grow without bound.
func (e *Engine) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.evictExpired(time.Now())
			}
		}
	}()
}

func (e *Engine) evictExpired(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, rr := range e.recent {
		if now.Sub(rr.at) > e.cfg.ResultTTL {
			delete(e.recent, id)
		}
	}
}
