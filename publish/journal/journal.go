// Package journal persists confirmed per-chain Safe deployments so that a
// run interrupted half way still leaves a record of what reached the chain.
package journal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

const keyPrefix = "deployment/"

// Entry is one confirmed deployment on one chain.
type Entry struct {
	RunID       string         `json:"run_id"`
	Safe        common.Address `json:"safe"`
	Chain       string         `json:"chain"`
	ChainID     uint64         `json:"chain_id"`
	TxHash      common.Hash    `json:"tx_hash"`
	BlockNumber uint64         `json:"block_number"`
	GasUsed     uint64         `json:"gas_used"`
	ConfirmedAt time.Time      `json:"confirmed_at"`
}

// Journal is a pebble database keyed by Safe address and chain name.
type Journal struct {
	db *pebble.DB
}

// NewRunID returns a fresh identifier grouping the entries of one deploy
// invocation.
func NewRunID() string {
	return uuid.NewString()
}

func Open(path string) (*Journal, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record stores e, replacing any earlier entry for the same Safe and chain.
// Writes are synced: an entry stands for a transaction that already exists.
func (j *Journal) Record(e Entry) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := j.db.Set(entryKey(e.Safe, e.Chain), value, pebble.Sync); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return nil
}

// Get returns the entry for safe on chain, or nil if there is none.
func (j *Journal) Get(safe common.Address, chain string) (*Entry, error) {
	value, closer, err := j.db.Get(entryKey(safe, chain))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var e Entry
	if err := json.Unmarshal(value, &e); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	return &e, nil
}

// List returns every entry recorded for safe, ordered by chain name.
func (j *Journal) List(safe common.Address) ([]Entry, error) {
	prefix := safePrefix(safe)
	upper := append([]byte(nil), prefix...)
	upper[len(upper)-1]++

	iter, err := j.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		var e Entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			return nil, fmt.Errorf("decode entry %s: %w", iter.Key(), err)
		}
		out = append(out, e)
	}
	return out, iter.Error()
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func safePrefix(safe common.Address) []byte {
	return []byte(keyPrefix + strings.ToLower(safe.Hex()) + "/")
}

func entryKey(safe common.Address, chain string) []byte {
	return append(safePrefix(safe), strings.ToLower(chain)...)
}
