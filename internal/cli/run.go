package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veritick/veritick/internal/beat"
	"github.com/veritick/veritick/internal/cold"
	"github.com/veritick/veritick/internal/store"
	"github.com/veritick/veritick/internal/telemetry"
)

// NewRunCommand creates the run command: execute a workload against a
// fresh or resumed engine and report the committed chain.
func NewRunCommand(root *RootOptions) *cobra.Command {
	var (
		configPath string
		dbPath     string
		cycles     int
	)

	cmd := &cobra.Command{
		Use:   "run <workload.cue>",
		Short: "Execute a workload and commit its receipt chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}

			workload, err := LoadWorkload(args[0])
			if err != nil {
				return err
			}
			if cycles > 0 {
				workload.Cycles = cycles
			}

			opts := []beat.Option{
				beat.WithEmitter(telemetry.NewSlog(nil)),
			}

			var st *store.Store
			if cfg.DBPath != "" {
				st, err = store.Open(cfg.DBPath)
				if err != nil {
					return err
				}
				defer st.Close()
				opts = append(opts,
					beat.WithStore(st),
					beat.WithColdPath(cold.NewStoreSink(st)),
				)
			}

			cluster, err := beat.NewCluster(cfg.BeatConfig(), opts...)
			if err != nil {
				return err
			}

			submitted := 0
			for _, b := range workload.Batches {
				enc, err := b.Encode()
				if err != nil {
					return fmt.Errorf("batch %d: %w", submitted, err)
				}
				for _, run := range enc.Runs {
					instr := enc.Instr
					if instr.P == 0 {
						instr.P = run.Pred
					}
					if _, err := cluster.Submit(enc.Shard, enc.Batch, run, instr); err != nil {
						return fmt.Errorf("submit %s: %w", b.Operation, err)
					}
					submitted++
				}
			}

			if err := cluster.RunCycles(cmd.Context(), workload.Cycles); err != nil {
				return err
			}

			return writeRunReport(cmd.OutOrStdout(), root.Format, workload.Name, submitted, cluster)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "engine config file (YAML)")
	cmd.Flags().StringVar(&dbPath, "db", "", "provenance database path (overrides config)")
	cmd.Flags().IntVar(&cycles, "cycles", 0, "cycles to run (overrides workload)")
	return cmd
}
