package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	ServerURL  string `env:"SERVER_URL" envDefault:"http://localhost:8080"`
	Party      string `env:"PARTY" envDefault:"demo-player"`
	Stake      int64  `env:"STAKE" envDefault:"10"`
	IntervalMS int    `env:"INTERVAL_MS" envDefault:"1000"`
	Spins      int    `env:"SPINS" envDefault:"0"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
