package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hassops/ha-guard/pkg/validator"
)

func newSchemasCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List the available schema names",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := validator.NewDefaultPipeline()
			if err != nil {
				return err
			}
			for _, name := range pipeline.Schemas().Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
