package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thomaskoefod/newsagg/internal/config"
	"github.com/thomaskoefod/newsagg/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "newsagg",
	Short: "News aggregator with a shared reading list",
	Long: `newsagg pulls headlines from a NewsAPI-compatible service and configured
RSS/Atom feeds, cleans their content and lets readers keep a reading list.

Run "newsagg serve" for the HTTP API or "newsagg tui" for the terminal reader.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The terminal reader owns the screen
		if cmd.Name() == "tui" && !verbose {
			logger = zap.NewNop()
			return nil
		}
		// init may be replacing a file Load cannot parse
		if cmd == configInitCmd {
			logger = zap.NewNop()
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Logging.JSON)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath(), "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	headlinesCmd.Flags().StringVar(&headlineCategory, "category", "", "Category (general, business, technology, ...)")
	headlinesCmd.Flags().StringVar(&headlineSource, "source", "", "Source id (bbc-news, cnn, ...)")
	headlinesCmd.Flags().StringVar(&headlineFeed, "feed", "", "Name of a configured feed")
	headlinesCmd.Flags().IntVar(&headlinePage, "page", 1, "Result page")
	searchCmd.Flags().IntVar(&headlinePage, "page", 1, "Result page")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(headlinesCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
