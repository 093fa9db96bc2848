package captracker

import (
	"strconv"

	"captracker/lib/scrapers/spotrac"
	"captracker/services/captracker/db"
)

// CapRecord is one normalized cap line item: a player (or a team-level
// aggregate row, in which case Player is empty) with its cap charge for
// one season.
type CapRecord struct {
	Team         string
	Player       string
	Position     string
	RosterStatus spotrac.RosterStatus
	CapHit       int64
	Season       int
}

// RunSnapshot is the full set of records one run produced, as read back
// from the store before publishing.
type RunSnapshot []CapRecord

// Values renders the snapshot as sheet rows, header first.
func (s RunSnapshot) Values() [][]string {
	values := make([][]string, 0, len(s)+1)
	values = append(values, []string{"team", "player", "position", "roster_status", "cap_hit", "season"})
	for _, r := range s {
		values = append(values, []string{
			r.Team,
			r.Player,
			r.Position,
			string(r.RosterStatus),
			strconv.FormatInt(r.CapHit, 10),
			strconv.Itoa(r.Season),
		})
	}
	return values
}

func toStored(r CapRecord) db.Record {
	return db.Record{
		Team:         r.Team,
		Player:       r.Player,
		Position:     r.Position,
		RosterStatus: string(r.RosterStatus),
		CapHit:       r.CapHit,
		Season:       int64(r.Season),
	}
}

func fromStored(r db.Record) CapRecord {
	return CapRecord{
		Team:         r.Team,
		Player:       r.Player,
		Position:     r.Position,
		RosterStatus: spotrac.RosterStatus(r.RosterStatus),
		CapHit:       r.CapHit,
		Season:       int(r.Season),
	}
}

// TeamOutcome reports how one team's extraction went.
type TeamOutcome struct {
	Team    string
	Records int
	Err     error
}

// RunReport summarizes a full pipeline run for the operator.
type RunReport struct {
	Season    int
	Teams     []TeamOutcome
	Loaded    int
	Published int
}

// Failed returns the outcomes of teams whose extraction failed.
func (r RunReport) Failed() []TeamOutcome {
	var failed []TeamOutcome
	for _, o := range r.Teams {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
