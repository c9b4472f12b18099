package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"token-slots/internal/chain"
	"token-slots/internal/config"
	"token-slots/internal/engine"
	"token-slots/internal/game"
	"token-slots/internal/logging"
	"token-slots/internal/oracle"
	"token-slots/internal/settle"
	"token-slots/internal/stats"
	"token-slots/internal/store"
	"token-slots/internal/token"
	httptransport "token-slots/internal/transport/http"
	"token-slots/internal/wallet"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Missing .env is fine; production sets real environment variables.
	_ = godotenv.Load()
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	houseWallet, err := wallet.LoadOrCreate(cfg.HouseWalletPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.HouseWalletPath).Msg("house wallet init failed")
	}
	house := houseWallet.Address()
	log.Info().Str("house", string(house)).Msg("house wallet loaded")

	var ledger chain.Ledger
	var demoChain *chain.Memory
	switch cfg.Mode {
	case "demo":
		mem := chain.NewMemory()
		mem.Seed(house, token.ToMinor(cfg.DemoHouseTokens))
		mem.SeedFee(house, cfg.DemoHouseFee)
		ledger = mem
		demoChain = mem
		log.Info().Int64("house_tokens", cfg.DemoHouseTokens).Msg("demo chain seeded")
	case "live":
		if cfg.LedgerGatewayURL == "" {
			log.Fatal().Msg("LEDGER_GATEWAY_URL required in live mode")
		}
		ledger = chain.NewHTTPClient(cfg.LedgerGatewayURL, time.Duration(cfg.ConfirmTimeoutSecs)*time.Second)
	default:
		log.Fatal().Str("mode", cfg.Mode).Msg("unknown mode; want demo or live")
	}

	journal, closeJournal, err := newJournal(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("journal init failed")
	}
	defer closeJournal()

	o := oracle.New(ledger)
	transfers := settle.NewClient(ledger, time.Duration(cfg.ConfirmTimeoutSecs)*time.Second)
	statsRepo := stats.NewMemoryRepository()
	drawer := game.NewGenerator(nil)

	eng := engine.New(engine.Config{
		House:         house,
		MinStake:      cfg.MinStake,
		MaxStake:      cfg.MaxStake,
		MinFeeReserve: cfg.MinFeeReserve,
		TokenSymbol:   cfg.TokenSymbol,
	}, o, transfers, drawer, statsRepo, journal)
	eng.StartJanitor(context.Background(), time.Minute)

	h := httptransport.NewHandlers(eng, o, statsRepo, journal, demoChain)
	r := httptransport.NewRouter(h, cfg.AdminAPIKey)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("mode", cfg.Mode).Msg("http listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Fatal().Err(err).Msg("server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	// Let in-flight settlements finish paying out before exiting.
	if err := eng.Drain(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("settlement drain timed out")
	}
	log.Info().Msg("server stopped cleanly")
}

type serverJournal interface {
	engine.Journal
	httptransport.SettlementJournal
}

func newJournal(cfg config.ServerConfig) (serverJournal, func(), error) {
	if cfg.PostgresDSN == "" {
		log.Warn().Msg("POSTGRES_DSN unset; settlement journal is in-memory only")
		return store.NewMemoryJournal(), func() {}, nil
	}
	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Ping(context.Background()); err != nil {
		st.Close()
		return nil, nil, err
	}
	if err := st.Bootstrap(context.Background()); err != nil {
		st.Close()
		return nil, nil, err
	}
	return st, st.Close, nil
}
