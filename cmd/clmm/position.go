package main

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clmmEngine/internal/config"
	"clmmEngine/internal/model"
	"clmmEngine/internal/pool"
	"clmmEngine/internal/position"
	"clmmEngine/internal/ticks"
)

func runPosition(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPosition(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	spacing, ok := pool.TickSpacings[pool.FeeAmount(cfg.Pool.Fee)]
	if !ok {
		return fmt.Errorf("unsupported fee tier: %d", cfg.Pool.Fee)
	}
	registry, err := ticks.NewRegistry(spacing, nil)
	if err != nil {
		return err
	}

	p, err := buildPool(cfg.Pool, registry)
	if err != nil {
		return err
	}

	if cfg.Liquidity == "" {
		return fmt.Errorf("position-liquidity is required")
	}
	liq, err := model.ParseUnsigned(cfg.Liquidity)
	if err != nil {
		return err
	}

	pos, err := position.New(p, cfg.TickLower, cfg.TickUpper, liq)
	if err != nil {
		return err
	}

	logger.Info("position",
		zap.Int("tick_lower", cfg.TickLower),
		zap.Int("tick_upper", cfg.TickUpper),
		zap.String("liquidity", cfg.Liquidity),
		zap.String("price", formatPrice(p.SqrtPriceX96)),
	)

	mint, err := pos.MintAmounts()
	if err != nil {
		return err
	}
	burn, err := pos.BurnAmounts()
	if err != nil {
		return err
	}
	fmt.Printf("mint_amount0: %s\n", mint.Amount0.Dec())
	fmt.Printf("mint_amount1: %s\n", mint.Amount1.Dec())
	fmt.Printf("burn_amount0: %s\n", burn.Amount0.Dec())
	fmt.Printf("burn_amount1: %s\n", burn.Amount1.Dec())

	if cfg.ToleranceNum == 0 {
		return nil
	}
	tol := position.Tolerance{
		Numerator:   uint256.NewInt(cfg.ToleranceNum),
		Denominator: uint256.NewInt(cfg.ToleranceDen),
	}
	mintBound, err := pos.MintAmountsWithSlippage(tol)
	if err != nil {
		return err
	}
	burnBound, err := pos.BurnAmountsWithSlippage(tol)
	if err != nil {
		return err
	}
	fmt.Printf("mint_amount0_max: %s\n", mintBound.Amount0.Dec())
	fmt.Printf("mint_amount1_max: %s\n", mintBound.Amount1.Dec())
	fmt.Printf("burn_amount0_min: %s\n", burnBound.Amount0.Dec())
	fmt.Printf("burn_amount1_min: %s\n", burnBound.Amount1.Dec())
	return nil
}
