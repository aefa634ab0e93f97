package main

import (
	"github.com/spf13/cobra"

	"cookinghub/internal/wire"
)

// initializer is swapped in tests.
var initializer = wire.InitializeApplication

func newRootCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:           "hubctl",
		Short:         "Administer the cooking hub storage layer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")

	cmd.AddCommand(
		newSeedCmd(),
		newStatusCmd(&jsonOutput),
		newMigrateCmd(&jsonOutput),
		newServeCmd(),
	)

	return cmd
}

// withApp builds the application for one command and releases it after.
func withApp(fn func(app *wire.Application) error) error {
	app, cleanup, err := initializer()
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(app)
}
