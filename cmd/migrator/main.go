package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var mappingPath string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrator",
		Short:         "Migrate tickets from Freshdesk to Zendesk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&mappingPath, "mapping", "", "path to the YAML mapping file (overrides MAPPING_FILE)")

	root.AddCommand(
		newMigrateCommand(),
		newMigrateOneCommand(),
		newServeCommand(),
		newTokenCommand(),
	)
	return root
}
