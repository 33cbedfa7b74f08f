package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/ytfetch-go/internal/app"
	"github.com/yourusername/ytfetch-go/internal/client"
	"github.com/yourusername/ytfetch-go/internal/domain"
	"github.com/yourusername/ytfetch-go/internal/infrastructure"
	"github.com/yourusername/ytfetch-go/pkg/logger"
)

var (
	serverURL   string
	configFile  string
	noAutoStart bool
	verbose     bool

	// Set up in PersistentPreRunE
	config   *domain.Config
	log      *zap.Logger
	backend  *client.Client
	notifier *infrastructure.NotificationService

	rootCmd = &cobra.Command{
		Use:   "ytfetch",
		Short: "ytfetch - list and download video formats through a yt-dlp backend",
		Long: `A command-line client for the ytfetch backend. Look up the formats a
video is available in, then download one of them to the current directory.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend URL (default from config, http://localhost:5000)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")

	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads configuration and builds the backend client shared by all commands
func setup(cmd *cobra.Command, args []string) error {
	var err error
	config, err = app.LoadConfig(configFile)
	if err != nil {
		return err
	}

	if serverURL == "" {
		serverURL = config.Client.BackendURL
	}
	config.Client.BackendURL = serverURL

	log = logger.NewCLI(verbose)
	backend = client.NewClient(&config.Client, log)
	serverURL = backend.BaseURL()
	notifier = infrastructure.NewNotificationService(&config.Notification, os.Stderr, log)
	return nil
}

// ensureServer starts a local backend if it is not answering. Remote
// backends and --no-auto-start are left alone.
func ensureServer() {
	if noAutoStart {
		return
	}
	server, err := newLocalServer(serverURL, config, configFile, log, os.Stderr)
	if err == nil && server != nil {
		err = server.ensure(context.Background())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// fail alerts the user about a failed outcome and exits non-zero
func fail(outcome domain.Outcome) {
	notifier.Alert(outcome)
	log.Sync()
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
