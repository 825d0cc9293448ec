package cli

import (
	"github.com/spf13/cobra"

	"github.com/veritick/veritick/internal/store"
)

// NewTraceCommand creates the trace command: print the committed cycle
// history from a provenance database.
func NewTraceCommand(root *RootOptions) *cobra.Command {
	var (
		fromCycle uint64
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "trace <db-path>",
		Short: "Print the committed cycle history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(args[0])
			if err != nil {
				return err
			}
			defer st.Close()

			rows, err := st.ReadChainRows(cmd.Context())
			if err != nil {
				return err
			}

			var filtered []store.ChainRow
			for _, r := range rows {
				if r.Cycle < fromCycle {
					continue
				}
				filtered = append(filtered, r)
				if limit > 0 && len(filtered) == limit {
					break
				}
			}

			return writeRows(cmd.OutOrStdout(), root.Format, filtered)
		},
	}

	cmd.Flags().Uint64Var(&fromCycle, "from", 0, "first cycle to print")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum entries to print (0 = all)")
	return cmd
}
