// Package main is the entry point for the Veridex application.
// Veridex is a credibility review service for tweets, webpages and claims.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/veridex/veridex/consts"
	"github.com/veridex/veridex/internal/check"
	"github.com/veridex/veridex/internal/client"
	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/database"
	"github.com/veridex/veridex/internal/indexer"
	"github.com/veridex/veridex/internal/pipeline"
	"github.com/veridex/veridex/internal/reviewer/aggqsent"
	"github.com/veridex/veridex/internal/reviewer/article"
	"github.com/veridex/veridex/internal/reviewer/claimreview"
	"github.com/veridex/veridex/internal/reviewer/dbsent"
	"github.com/veridex/veridex/internal/reviewer/polarsim"
	"github.com/veridex/veridex/internal/reviewer/qsent"
	"github.com/veridex/veridex/internal/reviewer/tweet"
	"github.com/veridex/veridex/internal/reviewer/website"
	"github.com/veridex/veridex/internal/reviewer/worthiness"
	"github.com/veridex/veridex/internal/server"
	"github.com/veridex/veridex/internal/store"
	"github.com/veridex/veridex/pkg/logger"
	"github.com/veridex/veridex/pkg/telemetry"
)

// defaultConfigPath is where the serve command looks for its configuration
// unless --config points elsewhere.
const defaultConfigPath = "config/config.yaml"

// Build information - set via ldflags during build
// These variables are linked to consts package for global access
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// init synchronizes build info to consts package for global access
func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

// configPath holds the path to the configuration file
var configPath string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "veridex",
	Short: "Veridex - Credibility Review Service",
	Long: `Veridex reviews the credibility of tweets, webpages and individual
claims by matching their sentences against a database of fact-checked
claims and aggregating the evidence into schema.org Review trees.`,
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Veridex server",
	Long: `Start the HTTP server that exposes the credibility review API.

On first run, use the check command to interactively set up your environment:
  veridex check

This will guide you through:
  - Creating configuration files from templates
  - Validating configuration formats

After initial setup, simply run:
  veridex serve`,
	Run: runServe,
}

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check and initialize the environment",
	Long: `Interactively check the environment: create missing configuration
files from templates and validate their formats.`,
	Run: func(cmd *cobra.Command, args []string) {
		checker := check.NewChecker()
		if err := checker.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Environment check failed: %v\n", err)
			os.Exit(1)
		}
	},
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Veridex %s\n", Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
	},
}

func init() {
	// Disable auto-generated completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: config/config.yaml)")

	// Add commands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	// Serve command flags
	serveCmd.Flags().String("host", "", "server host (overrides config)")
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	serveCmd.Flags().Bool("debug", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runServe starts the Veridex server
func runServe(cmd *cobra.Command, args []string) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Run the non-interactive environment check when using the default
	// layout; a custom --config path is validated by loading it below.
	if configPath == defaultConfigPath {
		checker := check.NewChecker()
		result := checker.RunNonInteractive()

		if !result.Success {
			check.PrintCheckResult(result)
			os.Exit(1)
		}

		// Print warnings if any (but don't block startup)
		if len(result.Warnings) > 0 {
			for _, warn := range result.Warnings {
				fmt.Fprintf(os.Stderr, "[WARNING] %s\n", warn)
			}
			fmt.Fprintln(os.Stderr)
		}
	}

	// Record server start time
	consts.SetStartedAt(time.Now())

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override config with command line flags
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Server.Debug = true
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Veridex",
		zap.String("version", Version),
	)

	// Initialize telemetry (OpenTelemetry traces and metrics)
	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			logger.Error("Failed to shutdown telemetry", zap.Error(err))
		}
	}()

	// Initialize the cache database
	if err := database.InitWithPath(cfg.Database.Path); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	dataStore := store.NewStore(database.Get())

	// Sweep expired cache entries on the configured schedule
	cacheCleanup := store.NewCacheCleanupService(dataStore, cfg.Cache.SweepSchedule)
	if err := cacheCleanup.Start(); err != nil {
		logger.Warn("Failed to start cache cleanup service", zap.Error(err))
	} else {
		defer cacheCleanup.Stop()
	}

	// Upstream service clients
	similarity := client.NewSimilarity(cfg.Upstream.ClaimSearch)
	siteCred := client.NewSiteCredibility(cfg.Upstream.SiteCredibility)
	analyzer := client.NewAnalyzer(cfg.Upstream.Analyzer)
	worthClient := client.NewWorthiness(cfg.Upstream.Worthiness)

	var tweetStore *client.TweetStoreClient
	if cfg.Upstream.TweetStore.Enabled() {
		tweetStore = client.NewTweetStore(cfg.Upstream.TweetStore)
	}

	// Assemble the reviewer graph bottom-up: sentence-level reviewers
	// feed the aggregators, which feed the document reviewers.
	websites := website.NewReviewer(siteCred, dataStore, cfg.Cache)
	normalizer := claimreview.NewNormalizer(cfg.Review)
	dbSentences := dbsent.NewReviewer(normalizer, websites, cfg.Review)
	polarity := polarsim.NewReviewer(cfg.Review)
	sentences := qsent.NewReviewer(dbSentences, polarity, cfg.Review)
	worth := worthiness.NewReviewer(worthClient, dataStore, cfg.Cache)
	aggregator := aggqsent.NewReviewer(similarity, worth, sentences, cfg.Review)
	articles := article.NewReviewer(analyzer, websites, aggregator, cfg.Review)
	tweets := tweet.NewReviewer(articles, aggregator, cfg.Review)

	p := pipeline.New(tweets, articles, aggregator, websites, tweetStore, cfg.Review)

	// Review emitter for the external search indexer
	emitter := indexer.New(cfg.Indexer)

	// Create and configure server
	srv := server.New(cfg, p, similarity, emitter)
	srv.SetupRoutes()

	// Start server
	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	logger.Info("Veridex server is running",
		zap.String("address", cfg.Server.Address()),
	)

	// Wait for shutdown
	srv.WaitForShutdown()

	logger.Info("Veridex stopped")
}
