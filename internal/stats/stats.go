package stats

import "sync"

// PlayerStatistics are derived per-party counters. They are never
// authoritative for money and can be rebuilt from the settlement
// journal if lost.
type PlayerStatistics struct {
	TotalSpins   int64 `json:"total_spins"`
	TotalWagered int64 `json:"total_wagered"`
	TotalWon     int64 `json:"total_won"`
	BiggestWin   int64 `json:"biggest_win"`
}

// Repository keys statistics by party. Entries are created on first
// spin and only ever grow.
type Repository interface {
	Record(party string, stake, payout int64)
	Get(party string) PlayerStatistics
}

type MemoryRepository struct {
	mu      sync.Mutex
	byParty map[string]*PlayerStatistics
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byParty: make(map[string]*PlayerStatistics)}
}

func (r *MemoryRepository) Record(party string, stake, payout int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.byParty[party]
	if !ok {
		st = &PlayerStatistics{}
		r.byParty[party] = st
	}
	st.TotalSpins++
	st.TotalWagered += stake
	st.TotalWon += payout
	if payout > st.BiggestWin {
		st.BiggestWin = payout
	}
}

func (r *MemoryRepository) Get(party string) PlayerStatistics {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.byParty[party]; ok {
		return *st
	}
	return PlayerStatistics{}
}
