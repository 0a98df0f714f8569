package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cognicore/episcan/pkg/episcan/internalerr"
	"github.com/cognicore/episcan/pkg/episcan/store"
	"github.com/cognicore/episcan/pkg/episcan/store/sqlite"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var (
		dbPath string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "show [episode-id]",
		Short: "Show stored selection results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := sqlite.OpenSQLite(cmd.Context(), dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			var results []store.Result
			if len(args) == 1 {
				r, err := st.GetResult(cmd.Context(), args[0])
				if errors.Is(err, internalerr.ErrNotFound) {
					return fmt.Errorf("no stored result for episode %s", args[0])
				}
				if err != nil {
					return err
				}
				results = []store.Result{r}
			} else {
				results, err = st.ListResults(cmd.Context(), limit)
				if err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(ctx.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			if len(results) == 0 {
				_, err := io.WriteString(ctx.stdout, "No stored results\n")
				return err
			}
			_, err = io.WriteString(ctx.stdout, renderTable(resultColumns, resultRows(results))+"\n")
			return err
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database written by run --db (required)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of episodes to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
