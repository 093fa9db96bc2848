package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Record is one stored cap line item. CapHit is whole dollars.
type Record struct {
	Team         string
	Player       string
	Position     string
	RosterStatus string
	CapHit       int64
	Season       int64
}

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// StorageError wraps connection and constraint failures from the store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store %s: %s", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ReplaceSeason deletes every stored row for (team, season) of each team
// present in the batch, then inserts the batch, all in one transaction.
// Running it twice with the same input leaves the same rows behind.
func (s Store) ReplaceSeason(ctx context.Context, season int64, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	teams := map[string]bool{}
	for _, r := range records {
		teams[r.Team] = true
	}
	for team := range teams {
		_, err := tx.ExecContext(
			ctx,
			`DELETE FROM cap_records WHERE team = ? AND season = ?`,
			team, season,
		)
		if err != nil {
			return &StorageError{Op: "delete", Err: err}
		}
	}

	for _, r := range records {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO cap_records (team, player, position, roster_status, cap_hit, season)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.Team, r.Player, r.Position, r.RosterStatus, r.CapHit, season,
		)
		if err != nil {
			return &StorageError{Op: "insert", Err: err}
		}
	}

	err = tx.Commit()
	if err != nil {
		return &StorageError{Op: "commit", Err: err}
	}
	return nil
}

// ReadSeason returns every stored row for a season, ordered so the
// published sheet is stable across runs.
func (s Store) ReadSeason(ctx context.Context, season int64) ([]Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT team, player, position, roster_status, cap_hit, season
		 FROM cap_records
		 WHERE season = ?
		 ORDER BY team, roster_status, player`,
		season,
	)
	if err != nil {
		return nil, &StorageError{Op: "select", Err: err}
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		err := rows.Scan(&r.Team, &r.Player, &r.Position, &r.RosterStatus, &r.CapHit, &r.Season)
		if err != nil {
			return nil, &StorageError{Op: "scan", Err: err}
		}
		records = append(records, r)
	}
	if rows.Err() != nil {
		return nil, &StorageError{Op: "select", Err: rows.Err()}
	}
	return records, nil
}
