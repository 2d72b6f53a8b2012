// Package store handles SQLite persistence of raw telemetry.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/gamepulse/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// tsLayout is fixed-width so stored timestamps sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for telemetry data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS telemetry (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL,
			ts TEXT NOT NULL,
			score REAL,
			words_found INTEGER,
			emotion TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_telemetry_username_ts ON telemetry(username, ts);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRecords stores a telemetry batch in one transaction and returns the number of rows written.
func (s *Store) InsertRecords(ctx context.Context, records []model.Record) (n int, err error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO telemetry (username, ts, score, words_found, emotion) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for _, r := range records {
		if _, err = stmt.ExecContext(ctx,
			r.PlayerID,
			r.Timestamp.UTC().Format(tsLayout),
			nullFloat(r.Score),
			nullInt(r.WordsFound),
			nullString(r.Emotion),
		); err != nil {
			return 0, err
		}
		n++
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// ListPlayers returns every player with stored telemetry, most recently active first.
func (s *Store) ListPlayers(ctx context.Context) ([]model.PlayerSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, COUNT(*), MAX(ts)
		FROM telemetry
		GROUP BY username
		ORDER BY MAX(ts) DESC, username ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var players []model.PlayerSummary
	for rows.Next() {
		var p model.PlayerSummary
		var last string
		if err := rows.Scan(&p.PlayerID, &p.Records, &last); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(tsLayout, last)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last activity for %s: %w", p.PlayerID, err)
		}
		p.LastActivity = parsed
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}

// ListRecords returns one player's full telemetry history in insertion order.
// Ordering by time and any date filtering are left to the pipeline, which
// works on whole sessions.
func (s *Store) ListRecords(ctx context.Context, player string) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, ts, score, words_found, emotion FROM telemetry WHERE username = ? ORDER BY id ASC`,
		player)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.Record
	for rows.Next() {
		var r model.Record
		var ts string
		var score sql.NullFloat64
		var words sql.NullInt64
		var emo sql.NullString
		if err := rows.Scan(&r.PlayerID, &ts, &score, &words, &emo); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(tsLayout, ts)
		if err != nil {
			return nil, err
		}
		r.Timestamp = parsed
		if score.Valid {
			v := score.Float64
			r.Score = &v
		}
		if words.Valid {
			v := int(words.Int64)
			r.WordsFound = &v
		}
		if emo.Valid {
			v := emo.String
			r.Emotion = &v
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
