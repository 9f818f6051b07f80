package config

import (
	"github.com/spf13/pflag"
)

// QuoteConfig holds configuration for the quote command.
type QuoteConfig struct {
	Pool        PoolConfig
	TicksFile   string
	LogsFile    string
	PGDSN       string
	PoolAddress string
	ZeroForOne  bool
	Amount      string
	PriceLimit  string
	MaxSteps    int
	LogLevel    string
}

// LoadQuote merges config file, environment variables, and flags into
// QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return QuoteConfig{}, err
	}

	cfg := QuoteConfig{
		Pool:        poolConfig(v),
		TicksFile:   v.GetString("ticks"),
		LogsFile:    v.GetString("logs"),
		PGDSN:       v.GetString("pg-dsn"),
		PoolAddress: v.GetString("pool-address"),
		ZeroForOne:  v.GetBool("zero-for-one"),
		Amount:      v.GetString("amount"),
		PriceLimit:  v.GetString("price-limit"),
		MaxSteps:    v.GetInt("max-steps"),
		LogLevel:    v.GetString("log-level"),
	}
	return cfg, nil
}
