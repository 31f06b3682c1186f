// Package cli provides the command-line interface for byflash.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/byflash/drive-cli/internal/api"
	"github.com/byflash/drive-cli/internal/config"
	"github.com/byflash/drive-cli/internal/http"
	"github.com/byflash/drive-cli/internal/logging"
	"github.com/byflash/drive-cli/internal/version"
)

var (
	// Global flags
	cfgFile string
	apiURL  string
	verbose bool

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "byflash",
		Short: "Byflash Drive - remote file storage client",
		Long: `Byflash Drive ` + version.Version + ` - Built: ` + version.BuildTime + `
Client for the Byflash Drive file storage service.

Log in once with 'byflash login'; the session token is stored in
~/.config/byflash/apiconfig and reused until logout or expiry.

Files live either at the root or inside folders. Folders may be
password-protected; protected entries prompt before listing or download.
Deleted items go to the trash and can be restored with 'byflash trash
restore'.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetVerbose(verbose)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiURL, "url", "", "API endpoint URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	return rootCmd
}

// Execute runs the CLI with signal-driven cancellation.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newFoldersCmd())
	rootCmd.AddCommand(newTrashCmd())
	rootCmd.AddCommand(newBrowseCmd())
}

// GetContext returns the global context cancelled on Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// loadConfig reads the config file honoring the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	return cfg, nil
}

// newAPIClient builds an authenticated API client from the config.
func newAPIClient(cfg *config.Config) (*api.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return api.NewClient(api.Options{
		BaseURL:    cfg.APIURL,
		Token:      cfg.APIToken,
		HTTPClient: http.NewPooledClient(),
	})
}

// handleSessionExpired clears stored credentials when the server rejected
// the token, so the next command prompts for login instead of failing again.
func handleSessionExpired(cfg *config.Config, err error) error {
	if !api.IsSessionExpired(err) {
		return err
	}
	cfg.ClearSession()
	if saveErr := config.Save(cfg, cfgFile); saveErr != nil {
		logging.Logger.Warn().Err(saveErr).Msg("failed to clear stored session")
	}
	return fmt.Errorf("session expired, run 'byflash login': %w", err)
}
