package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/chains"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/journal"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/safe"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/signer"
)

const (
	ownerA     = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1"
	ownerB     = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb2"
	goldenSafe = "0xf8eCa6D4c012D6513f8F2C7350775C177573AC74"
	testKey    = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	verbosity, chainsFile, rpcURLs = 3, "", nil
	t.Cleanup(func() { verbosity, chainsFile, rpcURLs = 3, "", nil })

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--verbosity", "0"}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestCalculateAddress(t *testing.T) {
	for _, args := range [][]string{
		{"calculate-address", "-o", ownerA + "," + ownerB, "-t", "1", "-n", "0"},
		{"calculate-address", "--owners", ownerA, "--owners", ownerB, "--threshold", "1", "--nonce", "0x0"},
	} {
		out, err := execute(t, args...)
		if err != nil {
			t.Fatalf("%v failed: %v", args, err)
		}
		if got := strings.TrimSpace(out); got != goldenSafe {
			t.Errorf("%v printed %q, want %s", args, got, goldenSafe)
		}
	}
}

func TestCalculateAddressInvalid(t *testing.T) {
	tests := [][]string{
		{"calculate-address", "-o", "0x1234", "-t", "1", "-n", "0"},
		{"calculate-address", "-o", ownerA, "-t", "2", "-n", "0"},
		{"calculate-address", "-o", ownerA, "-t", "1", "-n", "abc"},
		{"calculate-address", "-o", ownerA, "-t", "1"},
	}
	for _, args := range tests {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("%v succeeded, want error", args)
		}
	}
}

func TestChainsCommand(t *testing.T) {
	out, err := execute(t, "chains", "--rpc", "polygon=http://localhost:8545")
	if err != nil {
		t.Fatalf("chains failed: %v", err)
	}
	if !strings.Contains(out, "polygon") || !strings.Contains(out, "http://localhost:8545") {
		t.Errorf("chains output missing override:\n%s", out)
	}
}

func TestLoadRegistryOverrides(t *testing.T) {
	t.Setenv("RPC_URL_BASE", "http://env-base")
	rpcURLs = []string{"mainnet=http://flag-mainnet"}
	t.Cleanup(func() { rpcURLs = nil })

	reg, err := loadRegistry()
	if err != nil {
		t.Fatalf("loadRegistry failed: %v", err)
	}
	for name, want := range map[string]string{"base": "http://env-base", "ethereum": "http://flag-mainnet"} {
		c, err := reg.Resolve(name)
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", name, err)
		}
		if c.RPCURL != want {
			t.Errorf("%s rpc = %s, want %s", name, c.RPCURL, want)
		}
	}

	rpcURLs = []string{"mainnet"}
	if _, err := loadRegistry(); err == nil {
		t.Error("expected error for --rpc without url")
	}
	rpcURLs = []string{"nope=http://x"}
	if _, err := loadRegistry(); !errors.Is(err, chains.ErrUnknownChain) {
		t.Errorf("err = %v, want ErrUnknownChain", err)
	}
}

func TestRunDeployRejectsInputBeforeDialing(t *testing.T) {
	base := deployConfig{
		Chains:    []string{"polygon"},
		Owners:    []string{ownerA, ownerB},
		Threshold: 1,
		Nonce:     "0",
	}

	noSigner := base
	if err := runDeploy(context.Background(), &bytes.Buffer{}, noSigner); !errors.Is(err, signer.ErrNoSource) {
		t.Errorf("no signer: err = %v, want ErrNoSource", err)
	}

	both := base
	both.PrivateKey = testKey
	both.Mnemonic = "test test test test test test test test test test test junk"
	if err := runDeploy(context.Background(), &bytes.Buffer{}, both); !errors.Is(err, signer.ErrConflictingSources) {
		t.Errorf("both signers: err = %v, want ErrConflictingSources", err)
	}

	badSpec := base
	badSpec.PrivateKey = testKey
	badSpec.Threshold = 3
	if err := runDeploy(context.Background(), &bytes.Buffer{}, badSpec); !errors.Is(err, safe.ErrInvalidSpec) {
		t.Errorf("bad spec: err = %v, want ErrInvalidSpec", err)
	}

	unknown := base
	unknown.PrivateKey = testKey
	unknown.Chains = []string{"polygon", "nope"}
	if err := runDeploy(context.Background(), &bytes.Buffer{}, unknown); !errors.Is(err, chains.ErrUnknownChain) {
		t.Errorf("unknown chain: err = %v, want ErrUnknownChain", err)
	}
}

func TestStatus(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")
	j, err := journal.Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := j.Record(journal.Entry{Safe: common.HexToAddress(goldenSafe), Chain: "polygon", ChainID: 137}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	j.Close()

	for _, args := range [][]string{
		{"status", "--journal", dir, "-a", goldenSafe},
		{"status", "--journal", dir, "-o", ownerA + "," + ownerB, "-t", "1"},
	} {
		out, err := execute(t, args...)
		if err != nil {
			t.Fatalf("%v failed: %v", args, err)
		}
		var entries []journal.Entry
		if err := json.Unmarshal([]byte(out), &entries); err != nil {
			t.Fatalf("decode output: %v\n%s", err, out)
		}
		if len(entries) != 1 || entries[0].Chain != "polygon" {
			t.Errorf("%v: entries = %+v", args, entries)
		}
	}
}

func TestWriteReport(t *testing.T) {
	var out bytes.Buffer
	if err := writeReport(&out, &safe.Deployment{Address: common.HexToAddress(goldenSafe), RunID: "run"}); err != nil {
		t.Fatalf("writeReport failed: %v", err)
	}

	var r report
	if err := json.Unmarshal(out.Bytes(), &r); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if r.Address != goldenSafe || r.RunID != "run" || len(r.Chains) != 0 {
		t.Errorf("report = %+v", r)
	}
}

func TestPartialReport(t *testing.T) {
	tx := common.HexToHash("0x01")
	partial := &safe.PartialDeploymentError{
		RunID: "run",
		Completed: []safe.ChainReceipt{{
			Chain:   chains.Chain{Name: "polygon", ID: 137},
			Receipt: &types.Receipt{TxHash: common.HexToHash("0x02"), BlockNumber: big.NewInt(9), GasUsed: 21000},
		}},
		Pending:   []string{"base", "mainnet"},
		Submitted: tx,
		Err:       context.DeadlineExceeded,
	}

	var out bytes.Buffer
	if err := writeJSON(&out, partialReport(common.HexToAddress(goldenSafe), partial)); err != nil {
		t.Fatalf("writeJSON failed: %v", err)
	}

	var r report
	if err := json.Unmarshal(out.Bytes(), &r); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if r.RunID != "run" || len(r.Chains) != 1 || r.Chains[0].Chain != "polygon" || r.Chains[0].BlockNumber != 9 {
		t.Errorf("report = %+v", r)
	}
	if r.Unconfirmed == nil || r.Unconfirmed.Chain != "base" || r.Unconfirmed.TxHash != tx.Hex() {
		t.Errorf("unconfirmed = %+v, want base %s", r.Unconfirmed, tx.Hex())
	}

	partial.Submitted = common.Hash{}
	if r := partialReport(common.HexToAddress(goldenSafe), partial); r.Unconfirmed != nil {
		t.Errorf("unconfirmed = %+v for a chain with nothing in flight", r.Unconfirmed)
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a, ,b ,c")
	if strings.Join(got, "|") != "a|b|c" {
		t.Errorf("splitCSV = %v", got)
	}
	if splitCSV("  ") != nil {
		t.Error("splitCSV of blank input is not nil")
	}
}
