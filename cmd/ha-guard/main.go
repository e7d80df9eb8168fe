// ha-guard validates Home Assistant automation, script, scene and
// dashboard YAML before it is deployed. It is meant to sit between an
// LLM (or a human) proposing configuration and the deploy step.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hassops/ha-guard/pkg/console"
)

// Set via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ha-guard",
		Short: "Validate Home Assistant configuration YAML",
		Long: `ha-guard checks automation, script, scene and dashboard YAML for
structural problems, inconsistent fields, broken template expressions
and, optionally, references to entities, services and areas that do not
exist on a live Home Assistant instance.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newSchemasCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(2)
	}
}
