package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	userName     string
	userPassword string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage admin accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an admin account or reset its password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.auth.SetPassword(cmd.Context(), userName, userPassword); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved user %s\n", userName)
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userName, "username", "", "Login name")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "Password (stored as a bcrypt hash)")
	_ = userAddCmd.MarkFlagRequired("username")
	_ = userAddCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}
