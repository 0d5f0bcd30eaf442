package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "relayctl",
		Short:         "Operator tooling for the push relay",
		Long:          "relayctl sends messages through the configured relay and manages its identity database.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(sendCmd())
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
