package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veritick/veritick/internal/fiber"
	"github.com/veritick/veritick/internal/guard"
)

// NewValidateCommand creates the validate command: check a workload
// against the admission guard without executing anything.
func NewValidateCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <workload.cue>",
		Short: "Check a workload against admission rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workload, err := LoadWorkload(args[0])
			if err != nil {
				return err
			}

			gcfg := guard.DefaultConfig()
			type finding struct {
				Batch     int    `json:"batch"`
				Operation string `json:"operation"`
				Budget    bool   `json:"within_budget"`
				Violation string `json:"violation,omitempty"`
			}
			var findings []finding
			failed := 0

			for i, b := range workload.Batches {
				enc, err := b.Encode()
				if err != nil {
					return fmt.Errorf("batch %d: %w", i, err)
				}
				for _, run := range enc.Runs {
					f := finding{
						Batch:     i,
						Operation: b.Operation,
						Budget:    enc.Instr.Op.FitsBudget(fiber.DefaultTickBudget),
					}
					if err := gcfg.Validate(enc.Batch, run, enc.Instr.Op); err != nil {
						f.Violation = err.Error()
						failed++
					}
					findings = append(findings, f)
				}
			}

			out := cmd.OutOrStdout()
			if root.Format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(findings); err != nil {
					return err
				}
			} else {
				for _, f := range findings {
					status := "ok"
					if f.Violation != "" {
						status = f.Violation
					} else if !f.Budget {
						status = "ok (over budget, will escalate)"
					}
					fmt.Fprintf(out, "batch %d %s: %s\n", f.Batch, f.Operation, status)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d runs rejected", failed, len(findings))
			}
			return nil
		},
	}
	return cmd
}
