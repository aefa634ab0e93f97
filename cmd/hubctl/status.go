package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"cookinghub/internal/common"
	"cookinghub/internal/wire"
)

type statusReport struct {
	Backend      string   `json:"backend"`
	Users        int      `json:"users"`
	Images       int      `json:"images"`
	Videos       int      `json:"videos"`
	Likes        int64    `json:"likes"`
	Comments     int64    `json:"comments"`
	ChatMessages int64    `json:"chat_messages"`
	Plaintext    int      `json:"plaintext_credentials"`
	Usernames    []string `json:"usernames"`
}

func newStatusCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print record counts and registered usernames",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *wire.Application) error {
				users, err := app.Directory.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				credentials, err := app.Directory.ListCredentials(cmd.Context())
				if err != nil {
					return err
				}
				counts, err := app.Ledger.Counts(cmd.Context())
				if err != nil {
					return err
				}

				report := statusReport{
					Backend:      app.Config.Storage.Backend,
					Users:        len(users),
					Likes:        counts.Likes,
					Comments:     counts.Comments,
					ChatMessages: counts.ChatMessages,
					Usernames:    make([]string, 0, len(users)),
				}
				for _, user := range users {
					report.Images += len(user.Images)
					report.Videos += len(user.Videos)
					report.Usernames = append(report.Usernames, user.Username)
				}
				for _, credential := range credentials {
					if !common.IsHashedCredential(credential) {
						report.Plaintext++
					}
				}

				out := cmd.OutOrStdout()
				if *jsonOutput {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(report)
				}

				fmt.Fprintf(out, "backend:       %s\n", report.Backend)
				fmt.Fprintf(out, "users:         %d\n", report.Users)
				fmt.Fprintf(out, "images:        %d\n", report.Images)
				fmt.Fprintf(out, "videos:        %d\n", report.Videos)
				fmt.Fprintf(out, "likes:         %d\n", report.Likes)
				fmt.Fprintf(out, "comments:      %d\n", report.Comments)
				fmt.Fprintf(out, "chat messages: %d\n", report.ChatMessages)
				if report.Plaintext > 0 {
					fmt.Fprintf(out, "plaintext credentials: %d\n", report.Plaintext)
				}
				for _, name := range report.Usernames {
					fmt.Fprintf(out, "  - %s\n", name)
				}
				return nil
			})
		},
	}
}
