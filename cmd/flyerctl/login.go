package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/flyerdeck/flyerctl/internal/config"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the dashboard and store the bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")

		reader := bufio.NewReader(os.Stdin)
		if username == "" {
			fmt.Fprint(os.Stderr, "Username: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("reading username: %w", err)
			}
			username = strings.TrimSpace(line)
		}

		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			if term.IsTerminal(int(os.Stdin.Fd())) {
				raw, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				password = string(raw)
			} else {
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimSpace(line)
			}
		}

		client, err := newAnonClient()
		if err != nil {
			return err
		}

		token, err := client.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}

		if err := config.SaveAPIToken(token); err != nil {
			return fmt.Errorf("storing API token: %w", err)
		}

		printSuccess("Logged in as %s", username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DeleteAPIToken(); err != nil {
			return fmt.Errorf("removing API token: %w", err)
		}
		printSuccess("Logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("username", "", "dashboard username (prompted if omitted)")
	loginCmd.Flags().String("password", "", "dashboard password (prompted if omitted)")
}
