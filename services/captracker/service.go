package captracker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"captracker/lib/gsheets"
	"captracker/lib/scrapers/spotrac"
	"captracker/services/captracker/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/captracker")

type DatabaseConfig struct {
	File string `json:"file"`
}

type SheetsConfig struct {
	AccessToken   string `json:"access_token"`
	SpreadsheetId string `json:"spreadsheet_id"`
	Sheet         string `json:"sheet"`
}

type Config struct {
	Season  int    `json:"season"`
	BaseUrl string `json:"base_url"`
	// empty means discover the league's teams from the base page
	Teams               []string       `json:"teams"`
	FetchConcurrency    int            `json:"fetch_concurrency"`
	FetchTimeoutSeconds int            `json:"fetch_timeout_seconds"`
	Database            DatabaseConfig `json:"database"`
	Sheets              SheetsConfig   `json:"sheets"`
}

// Service wires the four pipeline stages together. All of its dependencies
// are passed in at construction, there is no ambient state.
type Service struct {
	cfg     Config
	scraper spotrac.Client
	store   db.Store
	sheets  gsheets.Client
}

func NewService(cfg Config, scraper spotrac.Client, store db.Store, sheets gsheets.Client) Service {
	return Service{
		cfg:     cfg,
		scraper: scraper,
		store:   store,
		sheets:  sheets,
	}
}

type RunOptions struct {
	// stop after the transform stage, touching neither the store
	// nor the sheet
	DryRun bool
}

// Run executes one pass of the pipeline: fetch every team's page, transform
// the rows into records, replace the season in the store, then mirror the
// stored snapshot to the sheet. A team whose fetch or parse fails is
// reported and skipped; transform, load and publish failures abort the run.
func (s Service) Run(ctx context.Context, opts RunOptions) (RunReport, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(attribute.Int("season", s.cfg.Season))

	report := RunReport{Season: s.cfg.Season}

	teams := s.cfg.Teams
	if len(teams) == 0 {
		var err error
		teams, err = s.scraper.FetchTeams(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
	}

	pages, outcomes := s.fetchAll(ctx, teams)
	report.Teams = outcomes
	if len(pages) == 0 {
		err := fmt.Errorf("every team fetch failed")
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}

	var records []CapRecord
	for _, page := range pages {
		teamRecords, err := Transform(page, s.cfg.Season)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
		records = append(records, teamRecords...)
	}

	if opts.DryRun {
		slog.InfoContext(ctx, "dry run, skipping load and publish", "records", len(records))
		return report, nil
	}

	stored := make([]db.Record, len(records))
	for i, r := range records {
		stored[i] = toStored(r)
	}
	err := s.store.ReplaceSeason(ctx, int64(s.cfg.Season), stored)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}
	report.Loaded = len(stored)
	slog.InfoContext(ctx, "loaded records", "count", len(stored), "season", s.cfg.Season)

	// publish what the store holds, not what this run transformed, so the
	// sheet always mirrors the persisted state
	rows, err := s.store.ReadSeason(ctx, int64(s.cfg.Season))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}
	snapshot := make(RunSnapshot, len(rows))
	for i, r := range rows {
		snapshot[i] = fromStored(r)
	}

	err = s.publish(ctx, snapshot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}
	report.Published = len(snapshot)
	slog.InfoContext(ctx, "published snapshot", "rows", len(snapshot), "sheet", s.cfg.Sheets.Sheet)

	return report, nil
}

func (s Service) fetchAll(ctx context.Context, teams []string) ([]spotrac.TeamPage, []TeamOutcome) {
	ctx, span := tracer.Start(ctx, "fetchAll")
	defer span.End()

	concurrency := s.cfg.FetchConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	sem := make(chan struct{}, concurrency)

	var pages []spotrac.TeamPage
	var outcomes []TeamOutcome
	mu := sync.Mutex{}
	wg := sync.WaitGroup{}

	for _, team := range teams {
		wg.Add(1)
		go func(team string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			page, err := s.scraper.FetchTeamPage(ctx, team)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.ErrorContext(ctx, "team extraction failed", "team", team, "err", err)
				outcomes = append(outcomes, TeamOutcome{Team: team, Err: err})
				return
			}
			pages = append(pages, page)
			outcomes = append(outcomes, TeamOutcome{Team: team, Records: len(page.Rows)})
		}(team)
	}
	wg.Wait()

	// fetches land in whatever order the goroutines finish
	sort.Slice(pages, func(i, j int) bool { return pages[i].Team < pages[j].Team })
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Team < outcomes[j].Team })

	return pages, outcomes
}

func (s Service) publish(ctx context.Context, snapshot RunSnapshot) error {
	ctx, span := tracer.Start(ctx, "publish")
	defer span.End()

	// clearing the whole sheet first makes the write an overwrite,
	// a shrinking snapshot must not leave stale rows behind
	err := s.sheets.Clear(ctx, s.cfg.Sheets.SpreadsheetId, s.cfg.Sheets.Sheet)
	if err != nil {
		return err
	}
	return s.sheets.Update(
		ctx,
		s.cfg.Sheets.SpreadsheetId,
		fmt.Sprintf("%s!A1", s.cfg.Sheets.Sheet),
		snapshot.Values(),
	)
}
