package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/cognicore/episcan/internal/docsource"
	"github.com/cognicore/episcan/pkg/episcan"
	"github.com/cognicore/episcan/pkg/episcan/emit"
	"github.com/cognicore/episcan/pkg/episcan/store"
	"github.com/cognicore/episcan/pkg/episcan/store/sqlite"
)

type runOptions struct {
	input   string
	output  string
	dbPath  string
	workers int
	format  string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	opts := runOptions{workers: runtime.NumCPU(), format: "auto"}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the extraction pipeline over a JSONL file of episodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Input JSONL file, one episode per line (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write results to this file instead of stdout")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "Persist results to this SQLite database")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Episodes processed in parallel")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "Output format: auto, json, table")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runPipeline(ctx context.Context, cc *commandContext, opts runOptions) error {
	logger := cc.logger()

	comp, err := cc.loadComponents()
	if err != nil {
		return err
	}
	if comp.Dict.Empty() {
		logger.Warn("dictionaries are empty; results will be empty")
	}

	episodes, err := docsource.LoadFromJSONL(opts.input, logger)
	if err != nil {
		return err
	}
	logger.Info("loaded episodes", "count", len(episodes), "path", opts.input)

	engine := episcan.New(comp.EngineOptions())
	results, err := engine.RunBatch(ctx, episodes, opts.workers)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	emitter := emit.New()
	outputs := make([]emit.Output, len(results))
	tiers := make(map[string]int)
	for i, r := range results {
		outputs[i] = emitter.Emit(r)
		tiers[string(r.Tier)]++
		logger.Debug("episode selected", "episode", r.EpisodeID, "tier", r.Tier, "entities", len(r.Entities))
	}
	logger.Info("pipeline complete", "episodes", len(results),
		"primary", tiers["primary"], "fallback", tiers["fallback"], "none", tiers["none"])

	if opts.dbPath != "" {
		if err := persist(ctx, opts.dbPath, outputs); err != nil {
			return err
		}
		logger.Info("results stored", "db", opts.dbPath)
	}

	return writeOutputs(cc, opts, outputs)
}

// persist stores outputs while holding an exclusive lock next to the
// database, so two batch runs never interleave writes
func persist(ctx context.Context, dbPath string, outputs []emit.Output) error {
	lock := flock.New(dbPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", dbPath, err)
	}
	if !ok {
		return fmt.Errorf("database %s is in use by another run", dbPath)
	}
	defer func() { _ = lock.Unlock() }()

	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	for _, out := range outputs {
		if err := st.SaveResult(ctx, store.FromOutput(out)); err != nil {
			return fmt.Errorf("save %s: %w", out.EpisodeID, err)
		}
	}
	return nil
}

func writeOutputs(cc *commandContext, opts runOptions, outputs []emit.Output) (err error) {
	w := cc.stdout
	format := opts.format
	if opts.output != "" {
		f, ferr := os.Create(opts.output)
		if ferr != nil {
			return fmt.Errorf("create %s: %w", opts.output, ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
		if format == "auto" {
			format = "json"
		}
	}
	if format == "auto" {
		format = "json"
		if cc.interactive() {
			format = "table"
		}
	}

	switch format {
	case "json":
		return emit.WriteJSONL(w, outputs)
	case "table":
		results := make([]store.Result, len(outputs))
		for i, out := range outputs {
			results[i] = store.FromOutput(out)
		}
		_, err = io.WriteString(w, renderTable(resultColumns, resultRows(results))+"\n")
		return err
	}
	return errors.New("unknown format " + format + " (want auto, json or table)")
}
