package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/journal"
	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/safe"
)

func statusCmd() *cobra.Command {
	var (
		journalDir string
		address    string
		owners     []string
		threshold  uint64
		nonce      string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the chains a Safe was deployed to, from the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if journalDir == "" {
				return errors.New("--journal is required")
			}

			var safeAddr common.Address
			switch {
			case address != "":
				addr, err := parseAddress(address)
				if err != nil {
					return err
				}
				safeAddr = addr
			case len(owners) > 0:
				spec, err := parseSpec(owners, threshold, nonce)
				if err != nil {
					return err
				}
				safeAddr = safe.CalculateAddress(spec)
			default:
				return errors.New("either --address or --owners/--threshold/--nonce is required")
			}

			j, err := journal.Open(journalDir)
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.List(safeAddr)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []journal.Entry{}
			}

			blob, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(blob))
			return nil
		},
	}

	cmd.Flags().StringVar(&journalDir, "journal", envOr("JOURNAL_DIR", ""), "journal directory (env JOURNAL_DIR)")
	cmd.Flags().StringVarP(&address, "address", "a", "", "Safe address")
	cmd.Flags().StringSliceVarP(&owners, "owners", "o", nil, "owners, to derive the address instead of --address")
	cmd.Flags().Uint64VarP(&threshold, "threshold", "t", 0, "threshold")
	cmd.Flags().StringVarP(&nonce, "nonce", "n", "0", "salt nonce")
	cmd.MarkFlagsMutuallyExclusive("address", "owners")
	return cmd
}
