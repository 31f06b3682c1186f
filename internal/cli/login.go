package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/byflash/drive-cli/internal/api"
	"github.com/byflash/drive-cli/internal/config"
	"github.com/byflash/drive-cli/internal/http"
)

// newLoginCmd creates the 'login' command.
func newLoginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Long: `Authenticate against the Drive API and store the bearer token.

Examples:
  # First login, remembers the endpoint
  byflash login --url https://drive.example.com/api.php --email me@example.com

  # Later logins reuse the stored endpoint
  byflash login --email me@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if strings.TrimSpace(cfg.APIURL) == "" {
				return config.ErrMissingAPIURL
			}

			if email == "" {
				email, err = promptLine("Email")
				if err != nil || email == "" {
					return fmt.Errorf("email is required")
				}
			}

			fmt.Fprint(os.Stderr, "Password: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			client, err := api.NewClient(api.Options{
				BaseURL:    cfg.APIURL,
				HTTPClient: http.NewPooledClient(),
			})
			if err != nil {
				return err
			}

			session, err := client.Login(GetContext(), email, string(raw))
			if err != nil {
				return err
			}

			cfg.APIToken = session.Token
			cfg.Email = session.Email
			if err := config.Save(cfg, cfgFile); err != nil {
				return fmt.Errorf("logged in but failed to store session: %w", err)
			}

			fmt.Printf("Logged in as %s\n", session.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (prompted when omitted)")

	return cmd
}

// newLogoutCmd creates the 'logout' command.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !cfg.IsLoggedIn() {
				fmt.Println("Not logged in.")
				return nil
			}

			cfg.ClearSession()
			if err := config.Save(cfg, cfgFile); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}

			fmt.Println("Logged out.")
			return nil
		},
	}
}

// newWhoamiCmd creates the 'whoami' command.
func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !cfg.IsLoggedIn() {
				return config.ErrNotLoggedIn
			}
			fmt.Printf("%s (%s)\n", cfg.Email, cfg.APIURL)
			return nil
		},
	}
}
