package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register [username]",
		Short: "Create an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var user string
			if len(args) == 1 {
				user = args[0]
			} else {
				line, err := a.readLine(cmd, "Username: ")
				if err != nil {
					return err
				}
				user = strings.TrimSpace(line)
			}

			password, err := a.readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			again, err := a.readPassword(cmd, "Repeat password: ")
			if err != nil {
				return err
			}
			if password != again {
				return errors.New("passwords do not match")
			}

			if err := a.auth.Register(cmd.Context(), user, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created: %s\n", user)
			return nil
		},
	}
}
