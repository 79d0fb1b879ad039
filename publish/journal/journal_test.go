package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

var (
	safeA = common.HexToAddress("0xf8eCa6D4c012D6513f8F2C7350775C177573AC74")
	safeB = common.HexToAddress("0x3A7217a523906657b38A0A74a0a7Cb04E77B72F3")
)

// newTestJournal opens a journal in a temporary directory.
func newTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(filepath.Join(t.TempDir(), "journal"))
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })

	return j
}

func TestRecordAndGet(t *testing.T) {
	j := newTestJournal(t)

	e := Entry{
		RunID:       NewRunID(),
		Safe:        safeA,
		Chain:       "polygon",
		ChainID:     137,
		TxHash:      common.HexToHash("0x01"),
		BlockNumber: 42,
		GasUsed:     260_000,
		ConfirmedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
	if err := j.Record(e); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := j.Get(safeA, "Polygon")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil")
	}
	if got.TxHash != e.TxHash || got.BlockNumber != 42 || got.ChainID != 137 || !got.ConfirmedAt.Equal(e.ConfirmedAt) {
		t.Errorf("Get = %+v, want %+v", got, e)
	}
}

func TestGetMissing(t *testing.T) {
	j := newTestJournal(t)

	got, err := j.Get(safeA, "base")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("Get = %+v, want nil", got)
	}
}

func TestListScopedToSafe(t *testing.T) {
	j := newTestJournal(t)

	for _, e := range []Entry{
		{Safe: safeA, Chain: "polygon", ChainID: 137},
		{Safe: safeB, Chain: "base", ChainID: 8453},
		{Safe: safeA, Chain: "base", ChainID: 8453},
	} {
		if err := j.Record(e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	got, err := j.List(safeA)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(got))
	}
	if got[0].Chain != "base" || got[1].Chain != "polygon" {
		t.Errorf("List order = %s, %s; want base, polygon", got[0].Chain, got[1].Chain)
	}
}

func TestRecordReplaces(t *testing.T) {
	j := newTestJournal(t)

	j.Record(Entry{Safe: safeA, Chain: "base", BlockNumber: 1})
	j.Record(Entry{Safe: safeA, Chain: "base", BlockNumber: 2})

	got, err := j.List(safeA)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].BlockNumber != 2 {
		t.Errorf("List = %+v, want single entry at block 2", got)
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == b {
		t.Error("run ids collide")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("run id %q is not a uuid: %v", a, err)
	}
}
