package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// EnvPassword lets scripts pass the account password without a prompt.
const EnvPassword = "AGENDA_PASSWORD"

func (a *app) readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo when stdin is a terminal.
func (a *app) readPassword(cmd *cobra.Command, prompt string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return a.readLine(cmd, prompt)
}

// credentials returns the username from --user or a prompt, and the password
// from $AGENDA_PASSWORD or a prompt.
func (a *app) credentials(cmd *cobra.Command, opts *rootOptions) (string, string, error) {
	user := strings.TrimSpace(opts.user)
	if user == "" {
		var err error
		if user, err = a.readLine(cmd, "Username: "); err != nil {
			return "", "", err
		}
		user = strings.TrimSpace(user)
	}
	if p, ok := os.LookupEnv(EnvPassword); ok {
		return user, p, nil
	}
	password, err := a.readPassword(cmd, "Password: ")
	if err != nil {
		return "", "", err
	}
	return user, password, nil
}

// login authenticates the command's account and returns its name.
func (a *app) login(cmd *cobra.Command, opts *rootOptions) (string, error) {
	user, password, err := a.credentials(cmd, opts)
	if err != nil {
		return "", err
	}
	if err := a.auth.Authenticate(cmd.Context(), user, password); err != nil {
		return "", err
	}
	a.logger.Debug("authenticated", "user", user)
	return user, nil
}
