package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/docfold/docfold/internal/dita"
	"github.com/docfold/docfold/internal/planner"
)

var (
	planOutMap  string
	planOutJSON string
	planChunk   string
	planNav     bool
	planScheme  string
	planJobDB   string
	planTempDir string
)

var planCmd = &cobra.Command{
	Use:   "plan [map]",
	Short: "Compute chunk operations for a map document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Flags beat the config file.
		if cmd.Flags().Changed("chunk") {
			cfg.RootChunk = planChunk
		}
		if cmd.Flags().Changed("nav") {
			cfg.Navigation = planNav
		}
		if cmd.Flags().Changed("scheme") {
			cfg.NameScheme = planScheme
		}
		if cmd.Flags().Changed("job-db") {
			cfg.JobDB = planJobDB
		}
		if cmd.Flags().Changed("temp-dir") {
			cfg.TempDir = planTempDir
		}

		start := time.Now()
		out, err := planner.Request{
			MapPath: args[0],
			Config:  cfg,
			Logger:  newLogger(),
		}.Run()
		if err != nil {
			return err
		}

		if planOutMap != "" {
			out.Result.Doc.Indent(2)
			if err := out.Result.Doc.WriteToFile(planOutMap); err != nil {
				return fmt.Errorf("write map %s: %w", planOutMap, err)
			}
		}

		data, err := oj.Marshal(out.Plan, 2)
		if err != nil {
			return fmt.Errorf("marshal plan: %w", err)
		}
		if planOutJSON != "" {
			if err := os.WriteFile(planOutJSON, data, 0o644); err != nil {
				return fmt.Errorf("write plan %s: %w", planOutJSON, err)
			}
		} else if planOutMap == "" {
			fmt.Println(string(data))
		}

		fmt.Fprintf(os.Stderr, "Planned %d operations, %d change entries, %d conflicts for %s in %v.\n",
			len(out.Plan.Operations), len(out.Plan.ChangeTable), len(out.Plan.ConflictTable),
			dita.BaseName(out.MapURI), time.Since(start))
		return nil
	},
}

func init() {
	planCmd.Flags().StringVarP(&planOutMap, "out", "o", "", "Write the rewritten map to this file")
	planCmd.Flags().StringVar(&planOutJSON, "plan", "", "Write the operation plan JSON to this file")
	planCmd.Flags().StringVar(&planChunk, "chunk", "", "Force this chunk token set onto the map root")
	planCmd.Flags().BoolVar(&planNav, "nav", false, "Enable to-navigation extraction")
	planCmd.Flags().StringVar(&planScheme, "scheme", "default", "Temp-file naming scheme (default, hash)")
	planCmd.Flags().StringVar(&planJobDB, "job-db", "", "Shared SQLite file registry (empty: in-memory)")
	planCmd.Flags().StringVar(&planTempDir, "temp-dir", "", "Directory for synthesized stub topics")
	rootCmd.AddCommand(planCmd)
}
