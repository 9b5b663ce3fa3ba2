package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	authadapter "github.com/bnema/robinhood-cli/internal/adapters/auth"
)

func newSessionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the sealed long-lived session",
		Long:  "session manages the encrypted token bundle used for non-interactive logins: setup seals the initial tokens, and login refreshes whichever token has aged out before arming the request headers.",
	}

	cmd.AddCommand(newSessionSetupCmd(app), newSessionLoginCmd(app))

	return cmd
}

func newSessionSetupCmd(app *app) *cobra.Command {
	var (
		profile      string
		passcode     string
		clientID     string
		accessToken  string
		refreshToken string
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Seal an initial token bundle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if profile == "" {
				profile = app.profile
			}

			err := app.refreshFlow.FirstTimeSetup(cmd.Context(), profile, passcode, clientID, accessToken, refreshToken)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Session sealed.")
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Named session profile")
	cmd.Flags().StringVar(&passcode, "passcode", "", "Passcode that seals the bundle")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client id")
	cmd.Flags().StringVar(&accessToken, "access-token", "", "Initial access token")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "Initial refresh token")
	_ = cmd.MarkFlagRequired("passcode")
	_ = cmd.MarkFlagRequired("client-id")
	_ = cmd.MarkFlagRequired("access-token")
	_ = cmd.MarkFlagRequired("refresh-token")

	return cmd
}

func newSessionLoginCmd(app *app) *cobra.Command {
	var (
		profile  string
		passcode string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in from the sealed bundle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if profile == "" {
				profile = app.profile
			}

			if passcode == "" {
				stored, err := app.secretStore.Get(cmd.Context(), authadapter.PasscodeKey(profile))
				if err != nil {
					return fmt.Errorf("load passcode: %w", err)
				}
				passcode = stored
			}

			if _, err := app.refreshFlow.Login(cmd.Context(), profile, passcode); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Session restored.")
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Named session profile")
	cmd.Flags().StringVar(&passcode, "passcode", "", "Passcode (defaults to the stored one)")

	return cmd
}
