package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// Mode selects the ledger: "demo" runs against an in-process
	// simulated chain, "live" against a ledger gateway.
	Mode             string `env:"MODE" envDefault:"demo"`
	LedgerGatewayURL string `env:"LEDGER_GATEWAY_URL"`

	PostgresDSN string `env:"POSTGRES_DSN"`
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	HouseWalletPath string `env:"HOUSE_WALLET_PATH" envDefault:"house-wallet.json"`
	TokenSymbol     string `env:"TOKEN_SYMBOL" envDefault:"OGB"`

	MinStake           int64 `env:"MIN_STAKE" envDefault:"10"`
	MaxStake           int64 `env:"MAX_STAKE" envDefault:"1000"`
	MinFeeReserve      int64 `env:"MIN_FEE_RESERVE" envDefault:"100000"`
	ConfirmTimeoutSecs int   `env:"CONFIRM_TIMEOUT_SECS" envDefault:"30"`

	// Demo-mode seeding, in whole tokens except the native fee amount.
	DemoHouseTokens int64 `env:"DEMO_HOUSE_TOKENS" envDefault:"1000000"`
	DemoHouseFee    int64 `env:"DEMO_HOUSE_FEE" envDefault:"100000000"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
