package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tinom9/gnosis-safe-multichain-wallet/publish"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/journal"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/safe"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/signer"
)

type deployConfig struct {
	Chains       []string
	Owners       []string
	Threshold    uint64
	Nonce        string
	Mnemonic     string
	PrivateKey   string
	Mnemonics    signer.MnemonicOptions
	JournalDir   string
	GasFeeCap    int64
	GasTipCap    int64
	Timeout      time.Duration
	PollInterval time.Duration
}

type (
	report struct {
		Address     string        `json:"address"`
		RunID       string        `json:"run_id,omitempty"`
		Chains      []chainReport `json:"chains,omitempty"`
		Unconfirmed *txReport     `json:"unconfirmed,omitempty"`
	}

	txReport struct {
		Chain  string `json:"chain"`
		TxHash string `json:"tx_hash"`
	}

	chainReport struct {
		Chain       string `json:"chain"`
		ChainID     uint64 `json:"chain_id"`
		TxHash      string `json:"tx_hash"`
		BlockNumber uint64 `json:"block_number"`
		GasUsed     uint64 `json:"gas_used"`
	}
)

func deployCmd() *cobra.Command {
	cfg := deployConfig{
		Mnemonic:     envOr("MNEMONIC", ""),
		PrivateKey:   envOr("PRIVATE_KEY", ""),
		JournalDir:   envOr("JOURNAL_DIR", ""),
		GasFeeCap:    envInt64("GAS_FEE_CAP", 0),
		GasTipCap:    envInt64("GAS_TIP_CAP", 0),
		PollInterval: publish.DefaultPollInterval,
	}

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a Gnosis Safe wallet with either mnemonic or private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&cfg.Chains, "chains", "c", nil, "list of chains (e.g. mainnet, polygon)")
	f.StringSliceVarP(&cfg.Owners, "owners", "o", nil, "list of owners (Ethereum addresses)")
	f.Uint64VarP(&cfg.Threshold, "threshold", "t", 0, "threshold")
	f.StringVarP(&cfg.Nonce, "nonce", "n", "", "salt nonce (uint256, decimal or 0x hex)")
	f.StringVarP(&cfg.Mnemonic, "mnemonic", "m", cfg.Mnemonic, "mnemonic for the account (env MNEMONIC)")
	f.StringVarP(&cfg.PrivateKey, "private-key", "k", cfg.PrivateKey, "private key for the account (env PRIVATE_KEY)")
	f.StringVar(&cfg.Mnemonics.Path, "derivation-path", "", "full derivation path, overrides the index flags")
	f.Uint32Var(&cfg.Mnemonics.AccountIndex, "account-index", 0, "BIP-44 account index")
	f.Uint32Var(&cfg.Mnemonics.ChangeIndex, "change-index", 0, "BIP-44 change index")
	f.Uint32Var(&cfg.Mnemonics.AddressIndex, "address-index", 0, "BIP-44 address index")
	f.StringVar(&cfg.Mnemonics.Passphrase, "passphrase", envOr("MNEMONIC_PASSPHRASE", ""), "BIP-39 passphrase")
	f.StringVar(&cfg.JournalDir, "journal", cfg.JournalDir, "directory recording confirmed deployments (env JOURNAL_DIR)")
	f.Int64Var(&cfg.GasFeeCap, "gas-fee-cap", cfg.GasFeeCap, "EIP-1559 fee cap in wei, 0 to ask the node")
	f.Int64Var(&cfg.GasTipCap, "gas-tip-cap", cfg.GasTipCap, "EIP-1559 tip cap in wei, 0 to ask the node")
	f.DurationVar(&cfg.Timeout, "timeout", 0, "overall deadline, 0 waits indefinitely")
	f.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "receipt polling interval")
	cmd.MarkFlagsMutuallyExclusive("mnemonic", "private-key")
	for _, name := range []string{"chains", "owners", "threshold", "nonce"} {
		cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runDeploy(ctx context.Context, out io.Writer, cfg deployConfig) error {
	spec, err := parseSpec(cfg.Owners, cfg.Threshold, cfg.Nonce)
	if err != nil {
		return err
	}
	s, err := signer.Parse(cfg.Mnemonic, cfg.PrivateKey, cfg.Mnemonics)
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	opts := []safe.Option{}
	if cfg.JournalDir != "" {
		j, err := journal.Open(cfg.JournalDir)
		if err != nil {
			return err
		}
		defer j.Close()
		opts = append(opts, safe.WithJournal(j))
	}

	dialer := safe.RPCDialer{Options: []publish.Option{
		publish.WithFeeCaps(positive(cfg.GasFeeCap), positive(cfg.GasTipCap)),
		publish.WithPollInterval(cfg.PollInterval),
	}}

	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	d, err := safe.NewOrchestrator(reg, dialer, opts...).Deploy(ctx, spec, cfg.Chains, s)
	if err != nil {
		var partial *safe.PartialDeploymentError
		if errors.As(err, &partial) && (len(partial.Completed) > 0 || partial.Unconfirmed()) {
			if werr := writeJSON(out, partialReport(safe.CalculateAddress(spec), partial)); werr != nil {
				return errors.Join(err, werr)
			}
		}
		return err
	}
	return writeReport(out, d)
}

func writeReport(out io.Writer, d *safe.Deployment) error {
	return writeJSON(out, newReport(d))
}

// partialReport lists the chains confirmed before a failure and the
// transaction still in flight, if any.
func partialReport(addr common.Address, partial *safe.PartialDeploymentError) report {
	r := newReport(&safe.Deployment{RunID: partial.RunID, Address: addr, Receipts: partial.Completed})
	if partial.Unconfirmed() {
		r.Unconfirmed = &txReport{Chain: partial.Failed(), TxHash: partial.Submitted.Hex()}
	}
	return r
}

func newReport(d *safe.Deployment) report {
	r := report{Address: d.Address.Hex(), RunID: d.RunID}
	for _, cr := range d.Receipts {
		c := chainReport{
			Chain:   cr.Chain.Name,
			ChainID: cr.Chain.ID,
			TxHash:  cr.Receipt.TxHash.Hex(),
			GasUsed: cr.Receipt.GasUsed,
		}
		if cr.Receipt.BlockNumber != nil {
			c.BlockNumber = cr.Receipt.BlockNumber.Uint64()
		}
		r.Chains = append(r.Chains, c)
	}
	return r
}

func writeJSON(out io.Writer, r report) error {
	blob, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(blob))
	return err
}

func positive(v int64) *big.Int {
	if v <= 0 {
		return nil
	}
	return big.NewInt(v)
}
