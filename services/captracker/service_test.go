package captracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"captracker/lib/gsheets"
	"captracker/lib/scrapers/spotrac"
	"captracker/lib/telemetry"
	"captracker/services/captracker/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func teamPageHTML(player string) string {
	return fmt.Sprintf(`<html><body>
<table class="datatable rtable">
<tbody>
<tr><td class="player"><a href="#">%s</a></td><td class="center">QB</td><td class="right result"><span title="Cap Hit">$1,000,000</span></td></tr>
</tbody>
<tfoot><tr><td class="right result xs-visible"><span title="Cap Hit">$1,000,000</span></td></tr></tfoot>
</table>
<h2>2023 Cap Totals</h2>
<table class="datatable rtable captotal">
<tbody>
<tr><td>Active</td><td class="right">$1,000,000</td></tr>
<tr><td>Total</td><td class="right">$1,000,000</td></tr>
</tbody>
</table>
</body></html>`, player)
}

func fakeSpotrac(t *testing.T, failing map[string]bool) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		team, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/cap/")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if failing[team] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, teamPageHTML("Player Of "+team))
	}))
	t.Cleanup(server.Close)
	return server
}

type sheetsCall struct {
	method string
	path   string
	values [][]string
}

func fakeSheets(t *testing.T, status int) (*httptest.Server, *[]sheetsCall) {
	var calls []sheetsCall
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		call := sheetsCall{method: r.Method, path: r.URL.Path}
		if len(body) > 0 {
			var parsed struct {
				Values [][]string `json:"values"`
			}
			if json.Unmarshal(body, &parsed) == nil {
				call.values = parsed.Values
			}
		}
		calls = append(calls, call)
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func testTeams(n int) []string {
	teams := make([]string, n)
	for i := range teams {
		teams[i] = fmt.Sprintf("team-%02d", i)
	}
	return teams
}

func setupService(t *testing.T, cfg Config, spotracUrl, sheetsUrl string) (Service, db.Store) {
	sqlite, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqlite.Close() })
	_, err = sqlite.Exec(db.Schema)
	if err != nil {
		t.Fatal(err)
	}
	store := db.NewStore(sqlite)

	scraper := spotrac.NewClient(spotrac.ClientOptions{
		BaseUrl: spotracUrl + "/",
		Season:  cfg.Season,
		Timeout: time.Second * 5,
	})
	sheets := gsheets.NewClient(gsheets.ClientOptions{
		BaseUrl:     sheetsUrl,
		AccessToken: "test-token",
	})

	return NewService(cfg, scraper, store, sheets), store
}

func TestRunEndToEnd(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:captracker")
	defer cleanup()

	source := fakeSpotrac(t, nil)
	sheetsServer, calls := fakeSheets(t, 0)

	cfg := Config{
		Season: 2023,
		Teams:  testTeams(32),
		Sheets: SheetsConfig{SpreadsheetId: "sheet-id", Sheet: "players_cap_hits"},
	}
	service, store := setupService(t, cfg, source.URL, sheetsServer.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	report, err := service.Run(ctx, RunOptions{})
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, report.Teams, 32)
	require.Empty(t, report.Failed())
	require.Equal(t, 32, report.Loaded)
	require.Equal(t, 32, report.Published)

	stored, err := store.ReadSeason(ctx, 2023)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, stored, 32)

	require.Len(t, *calls, 2)
	clear := (*calls)[0]
	require.Equal(t, "POST", clear.method)
	require.Equal(t, "/sheet-id/values/players_cap_hits:clear", clear.path)

	update := (*calls)[1]
	require.Equal(t, "PUT", update.method)
	require.Equal(t, "/sheet-id/values/players_cap_hits!A1", update.path)
	// header plus one row per record
	require.Len(t, update.values, 33)
	require.Equal(t, []string{"team", "player", "position", "roster_status", "cap_hit", "season"}, update.values[0])
	require.Equal(t, []string{"team-00", "Player Of team-00", "QB", "active", "1000000", "2023"}, update.values[1])
}

func TestRunToleratesSingleTeamFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:captracker")
	defer cleanup()

	source := fakeSpotrac(t, map[string]bool{"team-07": true})
	sheetsServer, _ := fakeSheets(t, 0)

	cfg := Config{
		Season: 2023,
		Teams:  testTeams(32),
		Sheets: SheetsConfig{SpreadsheetId: "sheet-id", Sheet: "players_cap_hits"},
	}
	service, store := setupService(t, cfg, source.URL, sheetsServer.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	report, err := service.Run(ctx, RunOptions{})
	if err != nil {
		t.Fatal(err)
	}

	failed := report.Failed()
	require.Len(t, failed, 1)
	require.Equal(t, "team-07", failed[0].Team)
	var fetchErr *spotrac.FetchError
	require.ErrorAs(t, failed[0].Err, &fetchErr)

	require.Equal(t, 31, report.Loaded)

	stored, err := store.ReadSeason(ctx, 2023)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, stored, 31)
}

func TestRunDryRun(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:captracker")
	defer cleanup()

	source := fakeSpotrac(t, nil)
	sheetsServer, calls := fakeSheets(t, 0)

	cfg := Config{
		Season: 2023,
		Teams:  testTeams(4),
		Sheets: SheetsConfig{SpreadsheetId: "sheet-id", Sheet: "players_cap_hits"},
	}
	service, store := setupService(t, cfg, source.URL, sheetsServer.URL)

	report, err := service.Run(context.Background(), RunOptions{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, report.Teams, 4)
	require.Equal(t, 0, report.Loaded)
	require.Equal(t, 0, report.Published)

	stored, err := store.ReadSeason(context.Background(), 2023)
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, stored)
	require.Empty(t, *calls)
}

func TestRunPublishFailureIsFatal(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:captracker")
	defer cleanup()

	source := fakeSpotrac(t, nil)
	sheetsServer, _ := fakeSheets(t, http.StatusForbidden)

	cfg := Config{
		Season: 2023,
		Teams:  testTeams(2),
		Sheets: SheetsConfig{SpreadsheetId: "sheet-id", Sheet: "players_cap_hits"},
	}
	service, _ := setupService(t, cfg, source.URL, sheetsServer.URL)

	_, err := service.Run(context.Background(), RunOptions{})
	var publishErr *gsheets.PublishError
	require.ErrorAs(t, err, &publishErr)
	require.Equal(t, http.StatusForbidden, publishErr.Status)
}

func TestRunAllTeamsFailing(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:captracker")
	defer cleanup()

	failing := map[string]bool{}
	for _, team := range testTeams(2) {
		failing[team] = true
	}
	source := fakeSpotrac(t, failing)
	sheetsServer, _ := fakeSheets(t, 0)

	cfg := Config{Season: 2023, Teams: testTeams(2)}
	service, _ := setupService(t, cfg, source.URL, sheetsServer.URL)

	report, err := service.Run(context.Background(), RunOptions{})
	require.Error(t, err)
	require.Len(t, report.Failed(), 2)
}
