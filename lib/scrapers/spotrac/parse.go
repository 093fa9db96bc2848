package spotrac

import (
	"fmt"

	"captracker/lib/htmlutil"
	"captracker/lib/moneyfmt"

	"github.com/PuerkitoBio/goquery"
)

type capTable struct {
	// the h2 text preceding the table; empty for the active table,
	// which is the first plain cap table on the page
	heading string
	status  RosterStatus
}

func capTables(season int) []capTable {
	return []capTable{
		{status: StatusActive},
		{heading: fmt.Sprintf("%d Reserve/Suspended Cap", season), status: StatusReserveSuspended},
		{heading: fmt.Sprintf("%d Exempt/Commissioner’s Permission List", season), status: StatusExempt},
		{heading: fmt.Sprintf("%d Injured Reserve Cap", season), status: StatusInjuredReserve},
		{heading: fmt.Sprintf("%d Reserve/PUP", season), status: StatusPUP},
		{heading: fmt.Sprintf("%d Non-Football Injury Cap", season), status: StatusNonFootballInjury},
		{heading: fmt.Sprintf("%d Practice Squad", season), status: StatusPracticeSquad},
		{heading: fmt.Sprintf("%d Dead Cap", season), status: StatusDeadCap},
	}
}

func parseTeamPage(doc *goquery.Document, team string, season int) (TeamPage, error) {
	page := TeamPage{
		Team:        team,
		TableTotals: map[RosterStatus]int64{},
	}

	for _, tbl := range capTables(season) {
		sel := findCapTable(doc, tbl.heading)
		if sel == nil {
			if tbl.status == StatusActive {
				return TeamPage{}, &ParseError{Team: team, Detail: "active cap table missing"}
			}
			// the other tables only show up when the team has
			// players in that roster state
			continue
		}

		rows, total, err := parseCapTable(sel, tbl.status, team)
		if err != nil {
			return TeamPage{}, err
		}
		page.Rows = append(page.Rows, rows...)
		page.TableTotals[tbl.status] = total
	}

	teamTotal, err := parseTeamTotal(doc, team, season)
	if err != nil {
		return TeamPage{}, err
	}
	page.TeamTotal = teamTotal

	return page, nil
}

func findCapTable(doc *goquery.Document, heading string) *goquery.Selection {
	if heading == "" {
		sel := doc.Find("table.datatable.rtable").Not(".captotal").First()
		if sel.Length() == 0 {
			return nil
		}
		return sel
	}

	header := doc.Find("h2").FilterFunction(func(_ int, h *goquery.Selection) bool {
		return htmlutil.CleanText(h.Text()) == heading
	}).First()
	if header.Length() == 0 {
		return nil
	}

	sel := header.NextAllFiltered("table.datatable.rtable").First()
	if sel.Length() == 0 {
		return nil
	}
	return sel
}

func parseCapTable(table *goquery.Selection, status RosterStatus, team string) ([]RawRow, int64, error) {
	body := table.Find("tbody")
	if body.Length() == 0 {
		return nil, 0, &ParseError{
			Team:   team,
			Detail: fmt.Sprintf("%s cap table has no tbody", status),
		}
	}

	var rows []RawRow
	body.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		rows = append(rows, RawRow{
			// an absent player cell is legitimate, some tables
			// carry team-level aggregate rows
			Player:       htmlutil.CleanText(tr.Find("td.player a").First().Text()),
			Position:     htmlutil.CleanText(tr.Find("td.center").First().Text()),
			CapHit:       htmlutil.CleanText(tr.Find("td[class^='right result'] span[title^='Cap Hit']").First().Text()),
			RosterStatus: status,
		})
	})

	totalCell := table.Find("tfoot span[title^='Cap Hit']").First()
	if totalCell.Length() == 0 {
		return nil, 0, &ParseError{
			Team:   team,
			Detail: fmt.Sprintf("%s cap table has no footer total", status),
		}
	}
	total, err := moneyfmt.ParseDollars(htmlutil.CleanText(totalCell.Text()))
	if err != nil {
		return nil, 0, &ParseError{
			Team:   team,
			Detail: fmt.Sprintf("%s cap table footer total: %s", status, err),
		}
	}

	return rows, total, nil
}

func parseTeamTotal(doc *goquery.Document, team string, season int) (int64, error) {
	heading := fmt.Sprintf("%d Cap Totals", season)
	header := doc.Find("h2").FilterFunction(func(_ int, h *goquery.Selection) bool {
		return htmlutil.CleanText(h.Text()) == heading
	}).First()
	if header.Length() == 0 {
		return 0, &ParseError{Team: team, Detail: "cap totals table missing"}
	}

	table := header.NextAllFiltered("table.datatable.rtable.captotal").First()
	if table.Length() == 0 {
		return 0, &ParseError{Team: team, Detail: "cap totals table missing"}
	}

	totalRow := table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return htmlutil.CleanText(tr.Find("td").First().Text()) == "Total"
	}).First()
	if totalRow.Length() == 0 {
		return 0, &ParseError{Team: team, Detail: "cap totals table has no Total row"}
	}

	totalText := htmlutil.CleanText(totalRow.Find("td").Last().Text())
	total, err := moneyfmt.ParseDollars(totalText)
	if err != nil {
		return 0, &ParseError{
			Team:   team,
			Detail: fmt.Sprintf("cap totals Total row: %s", err),
		}
	}
	return total, nil
}
