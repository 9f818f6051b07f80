// Package config loads CLI configuration from config file, environment
// variables and flags, in that order of increasing precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// newViper builds a viper instance bound to the CLMM_* environment and the
// given flag set, reading an optional config file.
func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("CLMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

// PoolConfig is the pool snapshot shared by the quote and position commands.
type PoolConfig struct {
	Token0       string
	Token1       string
	Fee          uint64
	SqrtPriceX96 string
	Liquidity    string
	Tick         int
}

func poolConfig(v *viper.Viper) PoolConfig {
	return PoolConfig{
		Token0:       v.GetString("token0"),
		Token1:       v.GetString("token1"),
		Fee:          v.GetUint64("fee"),
		SqrtPriceX96: v.GetString("sqrt-price"),
		Liquidity:    v.GetString("liquidity"),
		Tick:         v.GetInt("tick"),
	}
}
