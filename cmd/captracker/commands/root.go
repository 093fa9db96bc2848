package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"captracker/lib/configutil"
	"captracker/lib/gsheets"
	"captracker/lib/restyutil"
	"captracker/lib/scrapers/spotrac"
	"captracker/lib/serviceutil"
	"captracker/lib/sqliteutil"
	"captracker/lib/telemetry"
	"captracker/services/captracker"
	"captracker/services/captracker/db"

	"github.com/spf13/cobra"
)

var (
	configPath string
	dbPath     string
	dryRun     bool
	httpDump   string
)

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "config.json5", "Path to the pipeline config.")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "Override the database file from the config.")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Fetch and transform only, do not load or publish.")
	rootCmd.Flags().StringVar(&httpDump, "http-dump", "", "Directory to dump every http exchange into.")
}

var rootCmd = &cobra.Command{
	Use:   "captracker [--config <path/to/config.json5>]",
	Short: "captracker scrapes team salary cap tables into a database and mirrors them to a sheet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return run(cmd.Context())
	},
}

func run(ctx context.Context) error {
	cfg, err := configutil.ReadConfig[captracker.Config](configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if dbPath != "" {
		cfg.Database.File = dbPath
	}

	tel, err := telemetry.SetupFromEnv(ctx, "captracker")
	if os.IsNotExist(err) {
		slog.Info("no telemetry.json5 found, running without telemetry")
	} else if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	} else {
		defer tel.Shutdown(context.Background())
	}

	database, err := sqliteutil.OpenDB(db.Schema, cfg.Database.File)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}
	defer database.Close()

	var output restyutil.InstrumentOutput
	if httpDump != "" {
		output = restyutil.NewFilesystemOutput(httpDump)
	}

	timeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = time.Second * 30
	}

	scraper := spotrac.NewClient(spotrac.ClientOptions{
		BaseUrl:          cfg.BaseUrl,
		Season:           cfg.Season,
		Timeout:          timeout,
		InstrumentOutput: output,
	})
	sheets := gsheets.NewClient(gsheets.ClientOptions{
		AccessToken:      cfg.Sheets.AccessToken,
		Timeout:          timeout,
		InstrumentOutput: output,
	})

	service := captracker.NewService(cfg, scraper, db.NewStore(database), sheets)

	t1 := time.Now()
	report, err := service.Run(ctx, captracker.RunOptions{DryRun: dryRun})
	t2 := time.Now()

	logReport(ctx, report)
	slog.InfoContext(ctx, "run time", "seconds", t2.Sub(t1).Seconds())

	if err != nil {
		return err
	}
	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d teams failed", len(failed), len(report.Teams))
	}
	return nil
}

func logReport(ctx context.Context, report captracker.RunReport) {
	for _, o := range report.Teams {
		if o.Err != nil {
			slog.ErrorContext(ctx, "team failed", "team", o.Team, "err", o.Err)
			continue
		}
		slog.InfoContext(ctx, "team ok", "team", o.Team, "records", o.Records)
	}
	slog.InfoContext(
		ctx, "run summary",
		"season", report.Season,
		"teams", len(report.Teams),
		"failed", len(report.Failed()),
		"loaded", report.Loaded,
		"published", report.Published,
	)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
