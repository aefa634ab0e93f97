package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"cookinghub/internal/dbmongo"
	"cookinghub/internal/wire"
)

func newMigrateCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade legacy MongoDB documents and create indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *wire.Application) error {
				if app.Backend.Mongo == nil {
					return fmt.Errorf("migrate needs MongoDB, storage backend is %q", app.Config.Storage.Backend)
				}

				report, err := dbmongo.Migrate(cmd.Context(), app.Backend.Mongo.Database)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if *jsonOutput {
					return json.NewEncoder(out).Encode(report)
				}
				fmt.Fprintf(out, "users upgraded:    %d\n", report.UsersUpgraded)
				fmt.Fprintf(out, "likes removed:     %d\n", report.LikesRemoved)
				fmt.Fprintf(out, "comments upgraded: %d\n", report.CommentsUpgraded)
				fmt.Fprintf(out, "chats upgraded:    %d\n", report.ChatsUpgraded)
				return nil
			})
		},
	}
}
