// Package model holds the serializable records exchanged with tick data
// sources.
package model

// TickRecord is one initialized tick as carried by a tick data source.
// LiquidityNet is a signed decimal string; LiquidityGross is unsigned.
type TickRecord struct {
	PoolAddress    string `json:"pool_address,omitempty"`
	Tick           int    `json:"tick"`
	LiquidityNet   string `json:"liquidity_net"`
	LiquidityGross string `json:"liquidity_gross"`
}

// PoolRecord is a pool snapshot as carried by a tick data source.
type PoolRecord struct {
	Address      string `json:"address"`
	Token0       string `json:"token0"`
	Token1       string `json:"token1"`
	Fee          uint32 `json:"fee"`
	TickSpacing  int32  `json:"tick_spacing"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Liquidity    string `json:"liquidity"`
	Tick         int    `json:"tick"`
}

// LogRecord is a raw chain log as materialized by an external indexer. Only
// the fields needed to decode pool events offline are carried.
type LogRecord struct {
	BlockNumber uint64   `json:"block_number"`
	TxHash      string   `json:"tx_hash"`
	LogIndex    uint64   `json:"log_index"`
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	Removed     bool     `json:"removed"`
}
