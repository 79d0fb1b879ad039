package main

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/chains"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/safe"
)

var (
	verbosity  int
	chainsFile string
	rpcURLs    []string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		exitErr(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "safe-deploy",
		Short:         "Calculate and deploy Gnosis Safe wallets at the same address across chains",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, log.FromLegacyLevel(verbosity), false)))
		},
	}

	root.PersistentFlags().IntVar(&verbosity, "verbosity", 3, "log level 0-5 (crit, error, warn, info, debug, trace)")
	root.PersistentFlags().StringVar(&chainsFile, "chains-file", envOr("CHAINS_FILE", ""), "YAML chain registry replacing the built-in one")
	root.PersistentFlags().StringArrayVar(&rpcURLs, "rpc", nil, "RPC override as chain=url (repeatable; env RPC_URL_<CHAIN>)")

	root.AddCommand(calculateAddressCmd(), deployCmd(), chainsCmd(), statusCmd())
	return root
}

// loadRegistry returns the chain registry with RPC overrides applied, env
// first and flags last.
func loadRegistry() (*chains.Registry, error) {
	reg := chains.Default()
	if chainsFile != "" {
		f, err := os.Open(chainsFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if reg, err = chains.Load(f); err != nil {
			return nil, fmt.Errorf("%s: %w", chainsFile, err)
		}
	}

	for _, c := range reg.All() {
		if url := envOr("RPC_URL_"+strings.ToUpper(c.Name), ""); url != "" {
			if err := reg.Override(c.Name, url); err != nil {
				return nil, err
			}
		}
	}
	for _, kv := range rpcURLs {
		name, url, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --rpc %q, want chain=url", kv)
		}
		if err := reg.Override(name, url); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func parseSpec(owners []string, threshold uint64, nonce string) (safe.WalletSpec, error) {
	addrs, err := parseAddressList(owners)
	if err != nil {
		return safe.WalletSpec{}, err
	}
	n, err := parseBigInt(nonce)
	if err != nil {
		return safe.WalletSpec{}, fmt.Errorf("nonce: %w", err)
	}
	return safe.NewWalletSpec(addrs, threshold, n)
}

func parseAddress(v string) (common.Address, error) {
	if !common.IsHexAddress(v) || !strings.HasPrefix(v, "0x") {
		return common.Address{}, fmt.Errorf("invalid address: %s", v)
	}
	return common.HexToAddress(v), nil
}

// parseAddressList accepts repeated flags as well as comma separated values.
func parseAddressList(values []string) ([]common.Address, error) {
	var out []common.Address
	for _, v := range values {
		for _, part := range splitCSV(v) {
			addr, err := parseAddress(part)
			if err != nil {
				return nil, fmt.Errorf("address[%d]: %w", len(out), err)
			}
			out = append(out, addr)
		}
	}
	return out, nil
}

func parseBigInt(v string) (*big.Int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, errors.New("empty integer")
	}
	n, ok := new(big.Int).SetString(v, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer: %s", v)
	}
	return n, nil
}

func splitCSV(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt64(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
