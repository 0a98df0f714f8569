package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/episcan/pkg/episcan/config"
)

func newDictCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Print the effective dictionaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := ctx.loadComponents()
			if err != nil {
				return err
			}
			data, err := config.MarshalDictionaries(comp.Dict.Tables(), format)
			if err != nil {
				return err
			}
			_, err = ctx.stdout.Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml or toml")
	return cmd
}
