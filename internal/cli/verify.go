package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veritick/veritick/internal/lockchain"
	"github.com/veritick/veritick/internal/store"
)

// NewVerifyCommand creates the verify command: re-derive the hash chain
// from a provenance database and fail on any break.
func NewVerifyCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <db-path>",
		Short: "Verify the integrity of a receipt chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(args[0])
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.ReadChain(cmd.Context())
			if err != nil {
				return err
			}

			verifyErr := lockchain.Verify(entries)

			out := cmd.OutOrStdout()
			if root.Format == "json" {
				result := struct {
					Entries int    `json:"entries"`
					Valid   bool   `json:"valid"`
					Error   string `json:"error,omitempty"`
				}{Entries: len(entries), Valid: verifyErr == nil}
				if verifyErr != nil {
					result.Error = verifyErr.Error()
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else if verifyErr == nil {
				fmt.Fprintf(out, "chain valid: %d entries\n", len(entries))
			}

			return verifyErr
		},
	}
	return cmd
}
