package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cookinghub/internal/account"
	"cookinghub/internal/common"
	"cookinghub/internal/wire"
)

var sampleUsers = []string{"chef_john", "cooking_master", "food_lover"}

const samplePassword = "password123"

func newSeedCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the sample users if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *wire.Application) error {
				out := cmd.OutOrStdout()
				for _, username := range sampleUsers {
					_, err := app.Directory.GetUser(cmd.Context(), username)
					if err == nil {
						fmt.Fprintf(out, "skipped %s (exists)\n", username)
						continue
					} else if !errors.Is(err, account.ErrUserNotFound) {
						return err
					}

					credential, err := common.HashCredential(password)
					if err != nil {
						return err
					}
					if _, err := app.Directory.CreateUser(cmd.Context(), username, credential, nil); err != nil {
						return fmt.Errorf("create %s: %w", username, err)
					}
					fmt.Fprintf(out, "created %s\n", username)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", samplePassword, "password given to every sample user")
	return cmd
}
