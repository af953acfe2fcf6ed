package main

import (
	"fmt"

	"Tycoon/internal/shared/security"
	"Tycoon/internal/shared/serverconfig"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := serverconfig.Load(configPath); err != nil {
				return err
			}
			if userID == "" {
				userID = serverconfig.Conf.Sim.UserID
			}
			tok, err := security.Award(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id (default: sim.user_id)")
	return cmd
}
