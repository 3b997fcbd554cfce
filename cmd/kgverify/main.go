package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albertus-andito/fake-news-detection/internal/config"
	"github.com/albertus-andito/fake-news-detection/internal/core"
	"github.com/albertus-andito/fake-news-detection/internal/logging"
	"github.com/albertus-andito/fake-news-detection/internal/service"
)

var version = "dev"

var (
	configPath string
	logLevel   string
	assumeYes  bool

	cfg      *config.Config
	logger   *log.Logger
	svc      *service.Services
	verifier *core.Verifier
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "kgverify",
	Short:        "Verify extracted triples against the knowledge graph",
	Long:         "kgverify classifies candidate triples against the knowledge graph and lets a verifier add, remove, or discard them.",
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		_ = godotenv.Load()

		path := configPath
		if path == "" {
			path = os.Getenv("CONFIG_PATH")
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		logger = logging.New(cfg.Logging.Level, os.Stderr)

		svc, err = service.NewServices(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("initializing services: %w", err)
		}
		verifier = core.NewVerifier(svc, core.Options{
			MatchMode:    cfg.MatchMode(),
			PollInterval: cfg.Updates.PollInterval.Duration,
			MaxPolls:     cfg.Updates.MaxPolls,
		}, logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if verifier != nil {
			verifier.Close()
		}
		if svc != nil {
			return svc.Close(context.Background())
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(equateCmd)
	rootCmd.AddCommand(entityCmd)
	rootCmd.AddCommand(articlesCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(updateCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "kgverify", version)
	},
}
