package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	authadapter "github.com/bnema/robinhood-cli/internal/adapters/auth"
	"github.com/bnema/robinhood-cli/internal/domain"
)

func newLoginCmd(app *app) *cobra.Command {
	var (
		username  string
		password  string
		mfaCode   string
		expiresIn int
		scope     string
		byEmail   bool
		noStore   bool
		profile   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with username and password",
		Long:  "login authenticates the session, reusing a cached token when one is still accepted by the API. MFA codes and device challenges are collected interactively when the account requires them.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			challengeVia := domain.ChallengeSMS
			if byEmail {
				challengeVia = domain.ChallengeEmail
			}
			if profile == "" {
				profile = app.profile
			}

			creds, err := app.flow.Login(cmd.Context(), authadapter.LoginOptions{
				Username:     username,
				Password:     password,
				ExpiresIn:    expiresIn,
				Scope:        scope,
				ChallengeVia: challengeVia,
				StoreSession: !noStore,
				MFACode:      mfaCode,
				Profile:      profile,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), creds.Detail)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Account username (prompted when omitted)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	cmd.Flags().StringVar(&mfaCode, "mfa-code", "", "TOTP code for accounts with app-based MFA")
	cmd.Flags().IntVar(&expiresIn, "expires-in", 0, "Token lifetime in seconds (default 86400)")
	cmd.Flags().StringVar(&scope, "scope", "", "OAuth scope (default internal)")
	cmd.Flags().BoolVar(&byEmail, "by-email", false, "Receive device challenges by email instead of SMS")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Skip the credential cache for this login")
	cmd.Flags().StringVar(&profile, "profile", "", "Named credential cache profile")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the in-memory session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.flow.Logout(); err != nil {
				return err
			}
			app.service.Reset()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
