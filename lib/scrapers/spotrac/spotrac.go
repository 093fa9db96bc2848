package spotrac

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"captracker/lib/htmlutil"
	"captracker/lib/restyutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("lib/scrapers/spotrac")

// RosterStatus tags which cap table a row came from.
type RosterStatus string

const (
	StatusActive            RosterStatus = "active"
	StatusReserveSuspended  RosterStatus = "reserve/suspended"
	StatusExempt            RosterStatus = "exempt"
	StatusInjuredReserve    RosterStatus = "ir"
	StatusPUP               RosterStatus = "pup"
	StatusNonFootballInjury RosterStatus = "non-football injury"
	StatusPracticeSquad     RosterStatus = "practice squad"
	StatusDeadCap           RosterStatus = "dead cap"
)

// RawRow is one table row as displayed on the page. CapHit stays a display
// string here, parsing money is the transformer's job.
type RawRow struct {
	Player       string
	Position     string
	CapHit       string
	RosterStatus RosterStatus
}

// TeamPage is the parsed form of one team's cap page. It only lives until
// the transformer turns it into records.
type TeamPage struct {
	Team string
	Rows []RawRow
	// per-table totals from each table's footer, in whole dollars
	TableTotals map[RosterStatus]int64
	// the Total row of the "Cap Totals" table, in whole dollars
	TeamTotal int64
}

type ClientOptions struct {
	// e.g. "https://www.spotrac.com/nfl/"
	BaseUrl string
	Season  int
	Timeout time.Duration
	// optional, dumps every http exchange when set
	InstrumentOutput restyutil.InstrumentOutput
}

type Client struct {
	http    *resty.Client
	baseUrl string
	season  int
}

func NewClient(opts ClientOptions) Client {
	httpClient := resty.New()
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	restyutil.InstrumentClient(httpClient, tracer, opts.InstrumentOutput)

	return Client{
		http:    httpClient,
		baseUrl: strings.TrimSuffix(opts.BaseUrl, "/") + "/",
		season:  opts.Season,
	}
}

func (c Client) get(ctx context.Context, link, team string) (*goquery.Document, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, &FetchError{Team: team, Err: err}
	}
	if res.StatusCode() != 200 {
		return nil, &FetchError{Team: team, Status: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, &ParseError{Team: team, Detail: err.Error()}
	}
	return doc, nil
}

// FetchTeamPage retrieves and parses one team's cap page.
func (c Client) FetchTeamPage(ctx context.Context, team string) (TeamPage, error) {
	ctx, span := tracer.Start(ctx, "FetchTeamPage")
	defer span.End()

	link := fmt.Sprintf("%s%s/cap/", c.baseUrl, team)
	slog.DebugContext(ctx, "fetching team cap page", "team", team, "url", link)

	doc, err := c.get(ctx, link, team)
	if err != nil {
		return TeamPage{}, err
	}
	return parseTeamPage(doc, team, c.season)
}

// FetchTeams discovers the league's team slugs from the base page nav,
// e.g. "new-england-patriots". The league has exactly 32 teams, anything
// else means the page layout changed under us.
func (c Client) FetchTeams(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "FetchTeams")
	defer span.End()

	doc, err := c.get(ctx, c.baseUrl, "")
	if err != nil {
		return nil, err
	}

	var teams []string
	doc.Find("li.cat-nfl div.subnav-posts a").Each(func(_ int, a *goquery.Selection) {
		name := strings.ToLower(htmlutil.CleanText(a.Text()))
		if name == "" {
			return
		}
		teams = append(teams, strings.ReplaceAll(name, " ", "-"))
	})

	if len(teams) != 32 {
		return nil, &ParseError{
			Detail: fmt.Sprintf("extracted %d instead of 32 teams from the league nav", len(teams)),
		}
	}
	return teams, nil
}
