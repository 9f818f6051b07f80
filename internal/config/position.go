package config

import (
	"github.com/spf13/pflag"
)

// PositionConfig holds configuration for the position command.
type PositionConfig struct {
	Pool         PoolConfig
	TickLower    int
	TickUpper    int
	Liquidity    string
	ToleranceNum uint64
	ToleranceDen uint64
	LogLevel     string
}

// LoadPosition merges config file, environment variables, and flags into
// PositionConfig.
func LoadPosition(cfgFile string, flags *pflag.FlagSet) (PositionConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return PositionConfig{}, err
	}

	cfg := PositionConfig{
		Pool:         poolConfig(v),
		TickLower:    v.GetInt("tick-lower"),
		TickUpper:    v.GetInt("tick-upper"),
		Liquidity:    v.GetString("position-liquidity"),
		ToleranceNum: v.GetUint64("tolerance-num"),
		ToleranceDen: v.GetUint64("tolerance-den"),
		LogLevel:     v.GetString("log-level"),
	}
	return cfg, nil
}
