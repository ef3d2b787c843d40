package config

import (
	"errors"

	"github.com/caarlos0/env/v11"

	"landmarket/internal/config/configs"
)

// Config aggregates every configuration section. Nested structs are parsed
// with their envPrefix; defaults live on the configs types.
type Config struct {
	// Env names the deployment environment (prod, dev).
	Env string `env:"ENV" envDefault:"prod"`

	HTTP      configs.HTTP      `envPrefix:"HTTP_"`
	Log       configs.Logger    `envPrefix:"LOG_"`
	Psql      configs.Postgres  `envPrefix:"PSQL_"`
	Redis     configs.Redis     `envPrefix:"REDIS_"`
	Store     configs.Store     `envPrefix:"STORE_"`
	Ledger    configs.Ledger    `envPrefix:"LEDGER_"`
	Scheduler configs.Scheduler `envPrefix:"SCHEDULER_"`
	Payment   configs.Payment   `envPrefix:"PAYMENT_"`

	// SeedDemo writes a demo member actor and sample campaigns on startup.
	SeedDemo bool `env:"SEED_DEMO" envDefault:"false"`
}

// Load reads Config from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := errors.Join(cfg.Store.Validate(), cfg.Ledger.Validate()); err != nil {
		return cfg, err
	}
	return cfg, nil
}
