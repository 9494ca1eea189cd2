// Package main provides the club crawler CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/dupr-insight/internal/config"
	"github.com/yourusername/dupr-insight/internal/database"
	"github.com/yourusername/dupr-insight/internal/dupr"
	"github.com/yourusername/dupr-insight/internal/export"
	"github.com/yourusername/dupr-insight/internal/health"
	"github.com/yourusername/dupr-insight/internal/logger"
	"github.com/yourusername/dupr-insight/internal/metrics"
	"github.com/yourusername/dupr-insight/internal/repository"
	"github.com/yourusername/dupr-insight/internal/scheduler"
	"github.com/yourusername/dupr-insight/internal/service"
)

var (
	configFile string
	clubID     string
	noExport   bool

	appLogger *logrus.Logger
	cfg       *config.Config
	db        *database.DB
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&clubID, "club", "", "Override the configured club ID")
	rootCmd.Flags().BoolVar(&noExport, "no-export", false, "Skip the workbook export")
	rootCmd.AddCommand(scheduleCmd)
}

var rootCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl a DUPR club and export its match history",
	Long:  `Fetches the member listing, player profiles, and per-player match history of a club, then writes the snapshot to a styled workbook.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return err
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer teardown()
		return runCrawl(cmd.Context())
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run recurring club crawls on the configured cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer teardown()
		return runSchedule()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if clubID != "" {
		cfg.Crawl.ClubID = clubID
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Crawl.ClubID == "" {
		return fmt.Errorf("a club ID is required: set crawl.club_id or pass --club")
	}

	appLogger = logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err = database.Initialize(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	return nil
}

func teardown() {
	if db != nil {
		db.Close()
	}
}

func buildCrawlService() *service.CrawlService {
	httpClient := dupr.NewRateLimitedHTTPClient(dupr.HTTPClientConfig{
		Timeout:           time.Duration(cfg.DUPR.TimeoutSeconds) * time.Second,
		MaxRetries:        cfg.DUPR.MaxRetries,
		RetryWaitMin:      500 * time.Millisecond,
		RetryWaitMax:      10 * time.Second,
		RateLimit:         cfg.DUPR.RateLimit,
		CircuitBreakerMax: 5,
	}, appLogger)

	client := dupr.NewClient(&cfg.DUPR, httpClient, appLogger)

	var crawlRepo repository.CrawlRepository
	if db != nil {
		crawlRepo = repository.NewPostgresCrawlRepository(db)
	}

	return service.NewCrawlService(client, &cfg.Crawl, crawlRepo, appLogger)
}

func runCrawl(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	crawlSvc := buildCrawlService()

	data, playerOrder, err := crawlSvc.CrawlClub(ctx)
	if err != nil {
		return err
	}

	if noExport {
		appLogger.Info("Export skipped")
		return nil
	}

	writer := export.NewWriter(&cfg.Export, appLogger)
	path, err := writer.WriteClubData(data, playerOrder)
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}

func runSchedule() error {
	if !cfg.Schedule.Enabled {
		return fmt.Errorf("schedule.enabled is false")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	crawlSvc := buildCrawlService()
	writer := export.NewWriter(&cfg.Export, appLogger)

	sched := scheduler.NewScheduler(crawlSvc, writer, appLogger)
	if err := sched.ScheduleClubSync(cfg.Schedule.ClubSyncCron); err != nil {
		return err
	}

	var pinger health.DatabasePinger
	if db != nil {
		pinger = db
	}
	healthSrv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Port:        cfg.Metrics.Port,
		MetricsPath: cfg.Metrics.Path,
		Logger:      appLogger,
		DB:          pinger,
	})
	if err := healthSrv.Start(ctx); err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}
	healthSrv.SetReady(true)

	<-ctx.Done()
	sched.Stop()
	return nil
}
