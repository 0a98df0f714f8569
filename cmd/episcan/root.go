package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/cognicore/episcan/pkg/episcan/config"
)

// commandContext carries flags shared by every subcommand
type commandContext struct {
	dictPath   string
	tuningPath string
	verbose    bool

	stdout io.Writer
	stderr io.Writer
}

func (c *commandContext) logger() *slog.Logger {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))
}

func (c *commandContext) loadComponents() (*config.Components, error) {
	loader := config.Loader{
		DictPath:   c.dictPath,
		TuningPath: c.tuningPath,
	}
	return loader.Load()
}

// interactive reports whether stdout is a terminal
func (c *commandContext) interactive() bool {
	f, ok := c.stdout.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	ctx := &commandContext{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "episcan",
		Short:         "Extract and rank filming locations and items from episode text",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.dictPath, "dict", "", "Dictionary file (.yaml/.toml); built-in tables when empty")
	rootCmd.PersistentFlags().StringVar(&ctx.tuningPath, "tuning", "", "Tuning file (.yaml/.toml); built-in weights when empty")
	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newSuggestBrandsCommand(ctx))
	rootCmd.AddCommand(newDictCommand(ctx))

	return rootCmd
}
