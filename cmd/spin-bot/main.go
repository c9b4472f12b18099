package main

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"token-slots/internal/config"
)

type spinRequest struct {
	RequestID string `json:"request_id"`
	Party     string `json:"party"`
	Stake     int64  `json:"stake"`
}

type spinResult struct {
	SettlementID string   `json:"settlement_id"`
	Status       string   `json:"status"`
	Symbols      []string `json:"symbols,omitempty"`
	Payout       int64    `json:"payout"`
	Message      string   `json:"message"`
	PartyBalance *int64   `json:"party_balance,omitempty"`
}

type errorResult struct {
	Error string `json:"error"`
}

func main() {
	_ = godotenv.Load()
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal(err)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	interval := time.Duration(cfg.IntervalMS) * time.Millisecond

	faucet(client, cfg)

	count := 0
	for {
		if cfg.Spins > 0 && count >= cfg.Spins {
			log.Printf("done after %d spins", count)
			return
		}
		spin(client, cfg)
		count++
		time.Sleep(interval)
	}
}

func spin(client *http.Client, cfg config.BotConfig) {
	req := spinRequest{
		RequestID: uuid.NewString(),
		Party:     cfg.Party,
		Stake:     cfg.Stake,
	}
	payload, _ := json.Marshal(req)
	resp, err := client.Post(cfg.ServerURL+"/api/spin", "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("spin failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorResult
		_ = json.NewDecoder(resp.Body).Decode(&e)
		log.Printf("spin rejected: status=%d error=%s", resp.StatusCode, e.Error)
		return
	}
	var res spinResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		log.Printf("decode result: %v", err)
		return
	}
	balance := int64(-1)
	if res.PartyBalance != nil {
		balance = *res.PartyBalance
	}
	log.Printf("%v %s payout=%d balance=%d %s", res.Symbols, res.Status, res.Payout, balance, res.Message)
}

// faucet tops the bot up when the server runs in demo mode. A 404 just
// means the faucet route is not mounted; ignore it.
func faucet(client *http.Client, cfg config.BotConfig) {
	payload, _ := json.Marshal(map[string]any{
		"party":  cfg.Party,
		"amount": cfg.Stake * 100,
	})
	resp, err := client.Post(cfg.ServerURL+"/api/faucet", "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("faucet failed: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		var body struct {
			Balance int64 `json:"balance"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		log.Printf("faucet: balance=%d", body.Balance)
	}
}
