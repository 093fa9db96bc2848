package captracker

import (
	"testing"

	"captracker/lib/scrapers/spotrac"
	"captracker/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func validPage() spotrac.TeamPage {
	return spotrac.TeamPage{
		Team: "test-team",
		Rows: []spotrac.RawRow{
			{Player: "Alpha Passer", Position: "QB", CapHit: "$5,000,000", RosterStatus: spotrac.StatusActive},
			{Player: "Bravo Blocker", Position: "OT", CapHit: "$3,000,000", RosterStatus: spotrac.StatusActive},
			{Player: "Charlie Cut", Position: "WR", CapHit: "$1,000,000", RosterStatus: spotrac.StatusDeadCap},
		},
		TableTotals: map[spotrac.RosterStatus]int64{
			spotrac.StatusActive:  8000000,
			spotrac.StatusDeadCap: 1000000,
		},
		TeamTotal: 9000000,
	}
}

func TestTransform(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:captracker")
	defer cleanup()

	records, err := Transform(validPage(), 2023)
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, records, 3)
	require.Equal(t, CapRecord{
		Team:         "test-team",
		Player:       "Alpha Passer",
		Position:     "QB",
		RosterStatus: spotrac.StatusActive,
		CapHit:       5000000,
		Season:       2023,
	}, records[0])
	for _, r := range records {
		require.Equal(t, "test-team", r.Team)
		require.Equal(t, 2023, r.Season)
	}
}

func TestTransformAggregateRowKeepsEmptyPlayer(t *testing.T) {
	page := validPage()
	page.Rows = append(page.Rows, spotrac.RawRow{
		Player: "", Position: "", CapHit: "$500,000", RosterStatus: spotrac.StatusDeadCap,
	})
	page.TableTotals[spotrac.StatusDeadCap] = 1500000
	page.TeamTotal = 9500000

	records, err := Transform(page, 2023)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, records, 4)
	require.Equal(t, "", records[3].Player)
	require.Equal(t, int64(500000), records[3].CapHit)
}

func TestTransformMalformedMoney(t *testing.T) {
	page := validPage()
	page.Rows[1].CapHit = ""

	_, err := Transform(page, 2023)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, "test-team", schemaErr.Team)
	require.Equal(t, "cap_hit", schemaErr.Field)
}

func TestTransformTableTotalMismatch(t *testing.T) {
	page := validPage()
	page.TableTotals[spotrac.StatusActive] = 7000000

	_, err := Transform(page, 2023)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Contains(t, schemaErr.Detail, "active")
}

func TestTransformTeamTotalMismatch(t *testing.T) {
	page := validPage()
	page.TeamTotal = 12000000

	_, err := Transform(page, 2023)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Contains(t, schemaErr.Detail, "team total")
}
