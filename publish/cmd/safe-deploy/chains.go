package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func chainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List supported chains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tID\tNETWORK\tALIASES\tRPC")
			for _, c := range reg.All() {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", c.Name, c.ID, c, strings.Join(c.Aliases, ","), c.RPCURL)
			}
			return w.Flush()
		},
	}
}
