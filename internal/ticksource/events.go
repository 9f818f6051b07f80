package ticksource

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"clmmEngine/internal/model"
)

// liquidityEvent is a decoded Mint or Burn.
type liquidityEvent struct {
	tickLower int
	tickUpper int
	amount    *big.Int
	burn      bool
}

// EventFolder reconstructs per-tick liquidity from materialized Mint/Burn
// log records. It performs no RPC; the records must already be decoded from
// chain storage by an external indexer.
type EventFolder struct {
	eventsABI   abi.ABI
	topicToName map[string]string
	log         *zap.Logger
}

// NewEventFolder builds a folder. A nil logger disables logging.
func NewEventFolder(log *zap.Logger) (*EventFolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	eventsABI, err := PoolEventsABI()
	if err != nil {
		return nil, err
	}
	return &EventFolder{
		eventsABI: eventsABI,
		topicToName: map[string]string{
			strings.ToLower(eventsABI.Events["Mint"].ID.Hex()): "Mint",
			strings.ToLower(eventsABI.Events["Burn"].ID.Hex()): "Burn",
		},
		log: log,
	}, nil
}

// Fold applies Mint and Burn records in order and returns the surviving
// initialized ticks, sorted by tick index. Records with unknown topics and
// removed (reorged) records are skipped.
func (f *EventFolder) Fold(poolAddress string, records []model.LogRecord) ([]model.TickRecord, error) {
	type entry struct {
		net   *big.Int
		gross *big.Int
	}
	state := make(map[int]*entry)
	touch := func(tick int) *entry {
		e, ok := state[tick]
		if !ok {
			e = &entry{net: new(big.Int), gross: new(big.Int)}
			state[tick] = e
		}
		return e
	}

	for _, rec := range records {
		if rec.Removed || len(rec.Topics) == 0 {
			continue
		}
		name, ok := f.topicToName[strings.ToLower(rec.Topics[0])]
		if !ok {
			f.log.Debug("skipping unknown topic", zap.String("topic0", rec.Topics[0]), zap.Uint64("block", rec.BlockNumber))
			continue
		}
		ev, err := f.decode(name, rec)
		if err != nil {
			return nil, fmt.Errorf("decode %s at block %d log %d: %w", name, rec.BlockNumber, rec.LogIndex, err)
		}

		lower, upper := touch(ev.tickLower), touch(ev.tickUpper)
		if ev.burn {
			lower.net.Sub(lower.net, ev.amount)
			upper.net.Add(upper.net, ev.amount)
			lower.gross.Sub(lower.gross, ev.amount)
			upper.gross.Sub(upper.gross, ev.amount)
		} else {
			lower.net.Add(lower.net, ev.amount)
			upper.net.Sub(upper.net, ev.amount)
			lower.gross.Add(lower.gross, ev.amount)
			upper.gross.Add(upper.gross, ev.amount)
		}
	}

	out := make([]model.TickRecord, 0, len(state))
	for tick, e := range state {
		if e.gross.Sign() < 0 {
			return nil, fmt.Errorf("negative gross liquidity at tick %d: burns exceed mints", tick)
		}
		if e.gross.Sign() == 0 {
			continue
		}
		out = append(out, model.TickRecord{
			PoolAddress:    poolAddress,
			Tick:           tick,
			LiquidityNet:   e.net.String(),
			LiquidityGross: e.gross.String(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tick < out[j].Tick })
	return out, nil
}

func (f *EventFolder) decode(name string, rec model.LogRecord) (liquidityEvent, error) {
	event := f.eventsABI.Events[name]

	indexed := indexedArguments(event.Inputs)
	if len(rec.Topics) != len(indexed)+1 {
		return liquidityEvent{}, fmt.Errorf("expected %d topics, got %d", len(indexed)+1, len(rec.Topics))
	}
	hashes := make([]common.Hash, 0, len(rec.Topics)-1)
	for _, topic := range rec.Topics[1:] {
		raw, err := hexutil.Decode(topic)
		if err != nil {
			return liquidityEvent{}, fmt.Errorf("invalid topic: %w", err)
		}
		hashes = append(hashes, common.BytesToHash(raw))
	}

	var bounds struct {
		Owner     common.Address
		TickLower *big.Int
		TickUpper *big.Int
	}
	if err := abi.ParseTopics(&bounds, indexed, hashes); err != nil {
		return liquidityEvent{}, fmt.Errorf("parse topics: %w", err)
	}
	tickLower, err := asInt24(bounds.TickLower)
	if err != nil {
		return liquidityEvent{}, err
	}
	tickUpper, err := asInt24(bounds.TickUpper)
	if err != nil {
		return liquidityEvent{}, err
	}

	data, err := hexutil.Decode(rec.Data)
	if err != nil {
		return liquidityEvent{}, fmt.Errorf("invalid data: %w", err)
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return liquidityEvent{}, fmt.Errorf("unpack %s: %w", name, err)
	}
	// Mint carries a leading non-indexed sender; amount is the first uint128
	// either way.
	amountIdx := 0
	if name == "Mint" {
		amountIdx = 1
	}
	if len(values) <= amountIdx {
		return liquidityEvent{}, fmt.Errorf("unexpected %s values: %d", name, len(values))
	}
	amount, ok := values[amountIdx].(*big.Int)
	if !ok {
		return liquidityEvent{}, fmt.Errorf("unexpected amount type %T", values[amountIdx])
	}

	return liquidityEvent{
		tickLower: tickLower,
		tickUpper: tickUpper,
		amount:    new(big.Int).Set(amount),
		burn:      name == "Burn",
	}, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func asInt24(value *big.Int) (int, error) {
	if value.Cmp(big.NewInt(-1<<23)) < 0 || value.Cmp(big.NewInt(1<<23-1)) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int(value.Int64()), nil
}
