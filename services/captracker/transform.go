package captracker

import (
	"fmt"

	"captracker/lib/moneyfmt"
	"captracker/lib/scrapers/spotrac"
)

// Transform normalizes one team's parsed page into records. It is a pure
// function of its input: money display strings become whole dollars, every
// record gets the team and season attached, and the figures are verified
// against the totals the page itself reports.
func Transform(page spotrac.TeamPage, season int) ([]CapRecord, error) {
	records := make([]CapRecord, 0, len(page.Rows))
	statusSums := map[spotrac.RosterStatus]int64{}
	var total int64

	for _, row := range page.Rows {
		if row.RosterStatus == "" {
			return nil, &SchemaError{
				Team:   page.Team,
				Field:  "roster_status",
				Detail: fmt.Sprintf("row for %q has no roster status", row.Player),
			}
		}

		capHit, err := moneyfmt.ParseDollars(row.CapHit)
		if err != nil {
			return nil, &SchemaError{
				Team:   page.Team,
				Field:  "cap_hit",
				Detail: fmt.Sprintf("row for %q: %s", row.Player, err),
			}
		}

		records = append(records, CapRecord{
			Team:         page.Team,
			Player:       row.Player,
			Position:     row.Position,
			RosterStatus: row.RosterStatus,
			CapHit:       capHit,
			Season:       season,
		})
		statusSums[row.RosterStatus] += capHit
		total += capHit
	}

	for status, reported := range page.TableTotals {
		if statusSums[status] != reported {
			return nil, &SchemaError{
				Team:   page.Team,
				Field:  "cap_hit",
				Detail: fmt.Sprintf("%s rows sum to %d but the table reports %d", status, statusSums[status], reported),
			}
		}
	}
	if total != page.TeamTotal {
		return nil, &SchemaError{
			Team:   page.Team,
			Field:  "cap_hit",
			Detail: fmt.Sprintf("rows sum to %d but the page reports a team total of %d", total, page.TeamTotal),
		}
	}

	return records, nil
}
