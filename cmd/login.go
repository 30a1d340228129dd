// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sfquery/cli/internal/auth"
	"sfquery/cli/internal/config"
	"sfquery/cli/internal/keychain"
)

var saveCredentials bool

// loginCmd logs in with the configured or prompted credentials and caches the
// session for later commands.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Log in to the CRM and cache the session",
	Long: `The login command performs a SOAP login with the username and password from the
config file or SFQUERY_USERNAME / SFQUERY_PASSWORD, falling back to credentials
saved in the OS keychain and finally to an interactive prompt. Failed attempts
are retried up to login_retries times (default 3).

The raw login response is cached in the state directory so that later commands
reuse the session until the server expires it. With --save the credentials that
worked are stored in the OS keychain for automatic re-login, or in the config
file (mode 0600) when no keychain is available.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		a.ui.Start("Logging in")
		err = a.client.Refresh(cmd.Context())
		a.ui.Stop()
		if err != nil {
			return a.report(err, "logging in")
		}

		s := a.client.Session()
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Logged in")).
			Println(fmt.Sprintf("User:     %s\nUser ID:  %s\nInstance: %s", s.UserName, s.UserID, s.ServerURL))

		if saveCredentials {
			c := a.creds.last
			km, err := keychain.GetManager()
			if err == nil {
				err = km.SaveCredentials(keychain.SavedCredentials{Username: c.Username, Password: c.Password})
			}
			if err == nil {
				pterm.Success.Println("Credentials saved to the OS keychain")
				return nil
			}
			a.log.Debug().Err(err).Msg("keychain save failed")

			pterm.Warning.Printf("Secure storage is not available: %v\n", err)
			path, err := saveToConfig(a.cfg, c)
			if err != nil {
				return fmt.Errorf("save credentials: %w", err)
			}
			pterm.Success.Printf("Credentials saved to %s (readable only by you)\n", path)
		}
		return nil
	},
}

// saveToConfig stores credentials in the config file (--config or the
// default path) and returns the path written.
func saveToConfig(cfg config.Config, c auth.Credentials) (string, error) {
	cfg.Username, cfg.Password = c.Username, c.Password
	if configPath != "" {
		return configPath, config.SaveTo(configPath, cfg)
	}
	path, err := config.Path()
	if err != nil {
		return "", err
	}
	return path, config.Save(cfg)
}

func init() {
	loginCmd.Flags().BoolVar(&saveCredentials, "save", false, "Store the working credentials in the OS keychain")
	rootCmd.AddCommand(loginCmd)
}
