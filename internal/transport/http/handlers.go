package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"token-slots/internal/chain"
	"token-slots/internal/engine"
	"token-slots/internal/oracle"
	"token-slots/internal/stats"
	"token-slots/internal/token"
)

type Handlers struct {
	eng       *engine.Engine
	oracle    *oracle.Oracle
	statsRepo stats.Repository
	journal   SettlementJournal
	demoChain *chain.Memory // nil outside demo mode
}

func NewHandlers(eng *engine.Engine, o *oracle.Oracle, statsRepo stats.Repository, journal SettlementJournal, demoChain *chain.Memory) *Handlers {
	return &Handlers{eng: eng, oracle: o, statsRepo: statsRepo, journal: journal, demoChain: demoChain}
}

type spinRequest struct {
	RequestID string `json:"request_id"`
	Party     string `json:"party"`
	Stake     int64  `json:"stake"`
}

func (h *Handlers) Spin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req spinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		res, err := h.eng.Spin(r.Context(), engine.Request{
			RequestID: req.RequestID,
			Party:     chain.Address(req.Party),
			Stake:     req.Stake,
		})
		if err != nil {
			switch {
			case errors.Is(err, engine.ErrInvalidRequest):
				WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			case errors.Is(err, engine.ErrInvalidStake):
				WriteHTTPError(w, http.StatusBadRequest, "invalid_stake")
			case errors.Is(err, engine.ErrInsufficientFunds):
				WriteHTTPError(w, http.StatusPaymentRequired, "insufficient_funds")
			case errors.Is(err, engine.ErrOracleUnavailable):
				WriteHTTPError(w, http.StatusServiceUnavailable, "oracle_unavailable")
			case errors.Is(err, engine.ErrHouseIlliquid):
				WriteHTTPError(w, http.StatusServiceUnavailable, "house_illiquid")
			case errors.Is(err, engine.ErrHalted):
				WriteHTTPError(w, http.StatusServiceUnavailable, "engine_halted")
			case errors.Is(err, engine.ErrDebitFailed):
				WriteHTTPError(w, http.StatusBadGateway, "debit_failed")
			default:
				WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			}
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

func (h *Handlers) Balance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		party := chi.URLParam(r, "party")
		if party == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		balance, err := h.oracle.Balance(r.Context(), chain.Address(party))
		if err != nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "oracle_unavailable")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"party": party, "balance": balance})
	}
}

func (h *Handlers) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		party := chi.URLParam(r, "party")
		if party == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		_ = json.NewEncoder(w).Encode(h.statsRepo.Get(party))
	}
}

func (h *Handlers) HouseStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := h.eng.HouseStatus(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "oracle_unavailable")
			return
		}
		_ = json.NewEncoder(w).Encode(status)
	}
}

type faucetRequest struct {
	Party  string `json:"party"`
	Amount int64  `json:"amount"`
}

// Faucet hands out demo tokens; routed only in demo mode.
func (h *Handlers) Faucet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req faucetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Party == "" || req.Amount <= 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		h.demoChain.Faucet(chain.Address(req.Party), token.ToMinor(req.Amount))
		balance, err := h.oracle.Balance(r.Context(), chain.Address(req.Party))
		if err != nil {
			WriteHTTPError(w, http.StatusServiceUnavailable, "oracle_unavailable")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"party": req.Party, "balance": balance})
	}
}

func (h *Handlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          true,
			"operational": !h.eng.Halted(),
		})
	}
}
