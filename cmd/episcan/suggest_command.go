package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cognicore/episcan/pkg/episcan/autotune"
	"github.com/cognicore/episcan/pkg/episcan/config"
	"github.com/cognicore/episcan/pkg/episcan/store/sqlite"
)

func newSuggestBrandsCommand(ctx *commandContext) *cobra.Command {
	var (
		dbPath        string
		minEpisodes   int64
		minConfidence float64
		writePath     string
	)

	cmd := &cobra.Command{
		Use:   "suggest-brands",
		Short: "Suggest dictionary brands from stored results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := ctx.loadComponents()
			if err != nil {
				return err
			}
			st, err := sqlite.OpenSQLite(cmd.Context(), dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			tuner := autotune.BrandTuner{
				Provider: st,
				Dict:     comp.Dict,
				Thresholds: autotune.Thresholds{
					MinEpisodes:   minEpisodes,
					MinConfidence: minConfidence,
				},
			}
			suggestions, err := tuner.Run(cmd.Context())
			if err != nil {
				return err
			}

			if len(suggestions) == 0 {
				_, err := io.WriteString(ctx.stdout, "No brand suggestions\n")
				return err
			}
			rows := make([][]string, len(suggestions))
			for i, s := range suggestions {
				rows[i] = []string{s.Brand, fmt.Sprintf("%d", s.Episodes), fmt.Sprintf("%.1f", s.AvgConfidence)}
			}
			table := renderTable(brandColumns, rows)
			if _, err := io.WriteString(ctx.stdout, table+"\n"); err != nil {
				return err
			}

			if writePath == "" {
				return nil
			}
			updated := autotune.Apply(comp.Dict.Tables(), suggestions)
			data, err := config.MarshalDictionaries(updated, filepath.Ext(writePath))
			if err != nil {
				return err
			}
			if err := os.WriteFile(writePath, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", writePath, err)
			}
			ctx.logger().Info("dictionary written", "path", writePath, "added", len(suggestions))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database written by run --db (required)")
	cmd.Flags().Int64Var(&minEpisodes, "min-episodes", 3, "Minimum episodes a brand must appear in")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 60, "Minimum average confidence")
	cmd.Flags().StringVar(&writePath, "write", "", "Write the dictionary with suggestions added to this file")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
