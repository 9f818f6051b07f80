package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "clmm",
		Short:        "Concentrated-liquidity pricing engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Simulate a swap against a pool snapshot",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("token0", "token0", "token0 symbol or address")
	quoteCmd.Flags().String("token1", "token1", "token1 symbol or address")
	quoteCmd.Flags().Uint64("fee", 30, "fee tier in hundredths of a bip (1, 5, 30, 100)")
	quoteCmd.Flags().String("sqrt-price", "", "current sqrt price, Q64.96")
	quoteCmd.Flags().String("liquidity", "0", "current in-range liquidity")
	quoteCmd.Flags().Int("tick", 0, "current tick")
	quoteCmd.Flags().String("ticks", "", "initialized ticks JSONL path")
	quoteCmd.Flags().String("logs", "", "raw Mint/Burn logs JSONL path (folded into ticks)")
	quoteCmd.Flags().String("pg-dsn", "", "Postgres DSN for tick data")
	quoteCmd.Flags().String("pool-address", "", "pool address for Postgres tick data")
	quoteCmd.Flags().Bool("zero-for-one", true, "swap token0 in for token1 out")
	quoteCmd.Flags().String("amount", "", "amount specified; negative means exact output")
	quoteCmd.Flags().String("price-limit", "", "optional sqrt price limit, Q64.96")
	quoteCmd.Flags().Int("max-steps", 0, "override the swap step cap")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	positionCmd := &cobra.Command{
		Use:   "position",
		Short: "Compute position amounts and slippage bounds",
		RunE:  runPosition,
	}

	positionCmd.Flags().String("token0", "token0", "token0 symbol or address")
	positionCmd.Flags().String("token1", "token1", "token1 symbol or address")
	positionCmd.Flags().Uint64("fee", 30, "fee tier in hundredths of a bip (1, 5, 30, 100)")
	positionCmd.Flags().String("sqrt-price", "", "current sqrt price, Q64.96")
	positionCmd.Flags().String("liquidity", "0", "current in-range liquidity")
	positionCmd.Flags().Int("tick", 0, "current tick")
	positionCmd.Flags().Int("tick-lower", 0, "position lower tick")
	positionCmd.Flags().Int("tick-upper", 0, "position upper tick")
	positionCmd.Flags().String("position-liquidity", "", "position liquidity")
	positionCmd.Flags().Uint64("tolerance-num", 0, "slippage tolerance numerator")
	positionCmd.Flags().Uint64("tolerance-den", 10000, "slippage tolerance denominator")
	positionCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(positionCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
