package main

import (
	"context"
	"fmt"
	"math/big"
	"os/signal"
	"syscall"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clmmEngine/internal/config"
	"clmmEngine/internal/model"
	"clmmEngine/internal/pool"
	"clmmEngine/internal/quoter"
	"clmmEngine/internal/ticks"
	"clmmEngine/internal/ticksource"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	amount, err := model.ParseSigned(cfg.Amount)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	spacing, ok := pool.TickSpacings[pool.FeeAmount(cfg.Pool.Fee)]
	if !ok {
		return fmt.Errorf("unsupported fee tier: %d", cfg.Pool.Fee)
	}

	registry, err := loadTicks(ctx, cfg, spacing, logger)
	if err != nil {
		return err
	}

	p, err := buildPool(cfg.Pool, registry)
	if err != nil {
		return err
	}

	var priceLimit *uint256.Int
	if cfg.PriceLimit != "" {
		priceLimit, err = model.ParseUnsigned(cfg.PriceLimit)
		if err != nil {
			return err
		}
	}

	q := quoter.New(logger)
	if cfg.MaxSteps > 0 {
		q = q.WithMaxSteps(cfg.MaxSteps)
	}

	logger.Info("quote start",
		zap.String("token0", p.Token0),
		zap.String("token1", p.Token1),
		zap.Uint64("fee", uint64(p.Fee)),
		zap.Bool("zero_for_one", cfg.ZeroForOne),
		zap.String("amount", cfg.Amount),
		zap.Int("ticks", registry.Len()),
	)

	res, err := q.Quote(p, cfg.ZeroForOne, amount, priceLimit)
	if err != nil {
		return err
	}

	fmt.Printf("amount_in:      %s\n", res.AmountIn.Dec())
	fmt.Printf("amount_out:     %s\n", res.AmountOut.Dec())
	fmt.Printf("fee:            %s\n", res.FeeAmount.Dec())
	fmt.Printf("sqrt_price_x96: %s\n", res.SqrtPriceX96.Dec())
	fmt.Printf("price:          %s\n", formatPrice(res.SqrtPriceX96))
	fmt.Printf("tick:           %d\n", res.Tick)
	fmt.Printf("liquidity:      %s\n", res.Liquidity.Dec())
	fmt.Printf("steps:          %d\n", res.Steps)
	return nil
}

func loadTicks(ctx context.Context, cfg config.QuoteConfig, spacing int, logger *zap.Logger) (*ticks.Registry, error) {
	var records []model.TickRecord
	switch {
	case cfg.PGDSN != "":
		store, err := ticksource.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		records, err = store.LoadTicks(ctx, cfg.PoolAddress)
		if err != nil {
			return nil, fmt.Errorf("load ticks: %w", err)
		}
	case cfg.LogsFile != "":
		logs, err := ticksource.LoadLogsJSONL(cfg.LogsFile)
		if err != nil {
			return nil, err
		}
		folder, err := ticksource.NewEventFolder(logger)
		if err != nil {
			return nil, err
		}
		records, err = folder.Fold(cfg.PoolAddress, logs)
		if err != nil {
			return nil, err
		}
	case cfg.TicksFile != "":
		var err error
		records, err = ticksource.LoadTicksJSONL(cfg.TicksFile)
		if err != nil {
			return nil, err
		}
	}
	return ticksource.BuildRegistry(spacing, records)
}

func buildPool(cfg config.PoolConfig, registry *ticks.Registry) (*pool.Pool, error) {
	if cfg.SqrtPriceX96 == "" {
		return nil, fmt.Errorf("sqrt-price is required")
	}
	sqrtPrice, err := model.ParseUnsigned(cfg.SqrtPriceX96)
	if err != nil {
		return nil, err
	}
	liquidity, err := model.ParseUnsigned(cfg.Liquidity)
	if err != nil {
		return nil, err
	}
	return pool.New(cfg.Token0, cfg.Token1, pool.FeeAmount(cfg.Fee), sqrtPrice, liquidity, cfg.Tick, registry)
}

// formatPrice renders a Q64.96 sqrt price as a token1/token0 price.
func formatPrice(sqrtPriceX96 *uint256.Int) string {
	sqrt := decimal.NewFromBigInt(sqrtPriceX96.ToBig(), 0)
	q192 := decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 192), 0)
	return sqrt.Mul(sqrt).DivRound(q192, 18).String()
}
