package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinom9/gnosis-safe-multichain-wallet/publish/safe"
)

func calculateAddressCmd() *cobra.Command {
	var (
		owners    []string
		threshold uint64
		nonce     string
	)

	cmd := &cobra.Command{
		Use:   "calculate-address",
		Short: "Calculate a Gnosis Safe wallet address based on owners, threshold, and nonce",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := parseSpec(owners, threshold, nonce)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), safe.CalculateAddress(spec).Hex())
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&owners, "owners", "o", nil, "list of owners (Ethereum addresses)")
	cmd.Flags().Uint64VarP(&threshold, "threshold", "t", 0, "threshold")
	cmd.Flags().StringVarP(&nonce, "nonce", "n", "", "salt nonce (uint256, decimal or 0x hex)")
	for _, name := range []string{"owners", "threshold", "nonce"} {
		cmd.MarkFlagRequired(name)
	}
	return cmd
}
