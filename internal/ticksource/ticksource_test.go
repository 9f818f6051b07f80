package ticksource

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"clmmEngine/internal/model"
)

func TestJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "ticks.jsonl")
	records := []model.TickRecord{
		{Tick: -120, LiquidityNet: "500", LiquidityGross: "500"},
		{Tick: 0, LiquidityNet: "-200", LiquidityGross: "200"},
		{Tick: 120, LiquidityNet: "-300", LiquidityGross: "300"},
	}

	if err := WriteTicksJSONL(path, records); err != nil {
		t.Fatalf("WriteTicksJSONL: %v", err)
	}
	got, err := LoadTicksJSONL(path)
	if err != nil {
		t.Fatalf("LoadTicksJSONL: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("got %d records, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Fatalf("record %d = %+v, want %+v", i, got[i], records[i])
		}
	}
}

func TestLoadTicksJSONLSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.jsonl")
	content := `{"tick":-60,"liquidity_net":"10","liquidity_gross":"10"}

{"tick":60,"liquidity_net":"-10","liquidity_gross":"10"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := LoadTicksJSONL(path)
	if err != nil {
		t.Fatalf("LoadTicksJSONL: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
}

func TestBuildRegistry(t *testing.T) {
	records := []model.TickRecord{
		{Tick: 120, LiquidityNet: "-500", LiquidityGross: "500"},
		{Tick: -120, LiquidityNet: "500", LiquidityGross: "500"},
	}

	reg, err := BuildRegistry(60, records)
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("Len = %d, want 2", reg.Len())
	}

	tk, err := reg.GetTick(120)
	if err != nil {
		t.Fatalf("GetTick: %v", err)
	}
	if tk.LiquidityNet.Sign() >= 0 {
		t.Fatalf("net at 120 should be negative")
	}

	if _, err := BuildRegistry(60, []model.TickRecord{{Tick: 0, LiquidityNet: "x", LiquidityGross: "1"}}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func mintRecord(t *testing.T, eventsABI abi.ABI, owner common.Address, tickLower, tickUpper, amount int64) model.LogRecord {
	t.Helper()
	event := eventsABI.Events["Mint"]
	data, err := event.Inputs.NonIndexed().Pack(
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
		big.NewInt(amount),
		big.NewInt(0),
		big.NewInt(0),
	)
	if err != nil {
		t.Fatalf("pack mint: %v", err)
	}
	return logRecord(t, event, owner, tickLower, tickUpper, data)
}

func burnRecord(t *testing.T, eventsABI abi.ABI, owner common.Address, tickLower, tickUpper, amount int64) model.LogRecord {
	t.Helper()
	event := eventsABI.Events["Burn"]
	data, err := event.Inputs.NonIndexed().Pack(
		big.NewInt(amount),
		big.NewInt(0),
		big.NewInt(0),
	)
	if err != nil {
		t.Fatalf("pack burn: %v", err)
	}
	return logRecord(t, event, owner, tickLower, tickUpper, data)
}

func logRecord(t *testing.T, event abi.Event, owner common.Address, tickLower, tickUpper int64, data []byte) model.LogRecord {
	t.Helper()
	topics, err := abi.MakeTopics(
		[]interface{}{owner},
		[]interface{}{big.NewInt(tickLower)},
		[]interface{}{big.NewInt(tickUpper)},
	)
	if err != nil {
		t.Fatalf("make topics: %v", err)
	}
	return model.LogRecord{
		Address: "0x1111111111111111111111111111111111111111",
		Topics: []string{
			event.ID.Hex(),
			topics[0][0].Hex(),
			topics[1][0].Hex(),
			topics[2][0].Hex(),
		},
		Data: "0x" + common.Bytes2Hex(data),
	}
}

func TestEventFolder(t *testing.T) {
	eventsABI, err := PoolEventsABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	owner := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	folder, err := NewEventFolder(nil)
	if err != nil {
		t.Fatalf("NewEventFolder: %v", err)
	}

	records := []model.LogRecord{
		mintRecord(t, eventsABI, owner, -60, 60, 500),
		mintRecord(t, eventsABI, owner, 0, 60, 200),
		burnRecord(t, eventsABI, owner, -60, 60, 100),
	}

	got, err := folder.Fold("0x1111111111111111111111111111111111111111", records)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}

	want := []model.TickRecord{
		{PoolAddress: "0x1111111111111111111111111111111111111111", Tick: -60, LiquidityNet: "400", LiquidityGross: "400"},
		{PoolAddress: "0x1111111111111111111111111111111111111111", Tick: 0, LiquidityNet: "200", LiquidityGross: "200"},
		{PoolAddress: "0x1111111111111111111111111111111111111111", Tick: 60, LiquidityNet: "-600", LiquidityGross: "600"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d ticks, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tick %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEventFolderFullBurnRemovesTick(t *testing.T) {
	eventsABI, err := PoolEventsABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	owner := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	folder, err := NewEventFolder(nil)
	if err != nil {
		t.Fatalf("NewEventFolder: %v", err)
	}

	records := []model.LogRecord{
		mintRecord(t, eventsABI, owner, -60, 60, 500),
		burnRecord(t, eventsABI, owner, -60, 60, 500),
	}
	got, err := folder.Fold("", records)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no surviving ticks, got %+v", got)
	}

	// Burning more than was minted is inconsistent input.
	records = append(records, burnRecord(t, eventsABI, owner, -60, 60, 1))
	if _, err := folder.Fold("", records); err == nil {
		t.Fatalf("expected error for over-burn")
	}
}

func TestEventFolderSkipsRemovedAndUnknown(t *testing.T) {
	eventsABI, err := PoolEventsABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	owner := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	folder, err := NewEventFolder(nil)
	if err != nil {
		t.Fatalf("NewEventFolder: %v", err)
	}

	removed := mintRecord(t, eventsABI, owner, -60, 60, 500)
	removed.Removed = true
	unknown := model.LogRecord{Topics: []string{"0xdeadbeef00000000000000000000000000000000000000000000000000000000"}}

	got, err := folder.Fold("", []model.LogRecord{removed, unknown})
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no ticks, got %+v", got)
	}
}
