package ticksource

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clmmEngine/internal/model"
)

// Store provides Postgres persistence for tick data.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// LoadTicks returns all tick records for a pool, ordered by tick index.
func (s *Store) LoadTicks(ctx context.Context, poolAddress string) ([]model.TickRecord, error) {
	if poolAddress == "" {
		return nil, fmt.Errorf("pool address required")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT tick, liquidity_net, liquidity_gross
		FROM pool_ticks
		WHERE pool_address = $1
		ORDER BY tick
	`, poolAddress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.TickRecord
	for rows.Next() {
		rec := model.TickRecord{PoolAddress: poolAddress}
		if err := rows.Scan(&rec.Tick, &rec.LiquidityNet, &rec.LiquidityGross); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpsertTicks inserts or updates tick records for a pool.
func (s *Store) UpsertTicks(ctx context.Context, records []model.TickRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO pool_ticks (
				pool_address, tick, liquidity_net, liquidity_gross, created_at, updated_at
			) VALUES ($1, $2, $3, $4, now(), now())
			ON CONFLICT (pool_address, tick)
			DO UPDATE SET
				liquidity_net = EXCLUDED.liquidity_net,
				liquidity_gross = EXCLUDED.liquidity_gross,
				updated_at = now()
		`,
			rec.PoolAddress,
			rec.Tick,
			rec.LiquidityNet,
			rec.LiquidityGross,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadPool returns the snapshot record for a pool address.
func (s *Store) LoadPool(ctx context.Context, poolAddress string) (model.PoolRecord, error) {
	if poolAddress == "" {
		return model.PoolRecord{}, fmt.Errorf("pool address required")
	}
	var rec model.PoolRecord
	row := s.pool.QueryRow(ctx, `
		SELECT address, token0, token1, fee, tick_spacing, sqrt_price_x96, liquidity, tick
		FROM pools
		WHERE address = $1
	`, poolAddress)
	if err := row.Scan(&rec.Address, &rec.Token0, &rec.Token1, &rec.Fee,
		&rec.TickSpacing, &rec.SqrtPriceX96, &rec.Liquidity, &rec.Tick); err != nil {
		return model.PoolRecord{}, err
	}
	return rec, nil
}

// UpsertPool inserts or updates a pool snapshot.
func (s *Store) UpsertPool(ctx context.Context, rec model.PoolRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pools (
			address, token0, token1, fee, tick_spacing, sqrt_price_x96, liquidity, tick, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (address)
		DO UPDATE SET
			token0 = EXCLUDED.token0,
			token1 = EXCLUDED.token1,
			fee = EXCLUDED.fee,
			tick_spacing = EXCLUDED.tick_spacing,
			sqrt_price_x96 = EXCLUDED.sqrt_price_x96,
			liquidity = EXCLUDED.liquidity,
			tick = EXCLUDED.tick,
			updated_at = now()
	`,
		rec.Address,
		rec.Token0,
		rec.Token1,
		rec.Fee,
		rec.TickSpacing,
		rec.SqrtPriceX96,
		rec.Liquidity,
		rec.Tick,
	)
	return err
}
