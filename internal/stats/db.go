// Package stats provides SQLite-backed storage of match results and the
// event-log archive. It is a collaborator of the engine: it consumes the
// result payload the game exposes on finish, the core never persists.
package stats

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/broadside/internal/game"
)

// DB wraps a SQLite connection for match result storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		era TEXT NOT NULL,
		winner_alliance TEXT NOT NULL,
		turns INTEGER NOT NULL,
		finished_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS player_results (
		match_id TEXT NOT NULL,
		player_id TEXT NOT NULL,
		name TEXT NOT NULL,
		human INTEGER NOT NULL,
		alliance TEXT NOT NULL,
		shots INTEGER NOT NULL,
		hits INTEGER NOT NULL,
		misses INTEGER NOT NULL,
		ships_sunk INTEGER NOT NULL,
		ships_lost INTEGER NOT NULL,
		accuracy REAL NOT NULL,
		score INTEGER NOT NULL,
		won INTEGER NOT NULL,
		PRIMARY KEY (match_id, player_id)
	);

	CREATE TABLE IF NOT EXISTS match_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		message TEXT NOT NULL,
		at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_name ON player_results(name);
	CREATE INDEX IF NOT EXISTS idx_events_match ON match_events(match_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveMatch writes one finished match: summary row, per-player results, and
// the event-log archive, in a single transaction.
func (db *DB) SaveMatch(matchID, eraName, winner string, turns int, results []game.PlayerResult, events []game.EventEntry) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO matches (id, era, winner_alliance, turns, finished_at)
		VALUES (?, ?, ?, ?, ?)`,
		matchID, eraName, winner, turns, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO player_results
		(match_id, player_id, name, human, alliance, shots, hits, misses,
		 ships_sunk, ships_lost, accuracy, score, won)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range results {
		human, won := 0, 0
		if r.Human {
			human = 1
		}
		if r.Won {
			won = 1
		}
		_, err := stmt.Exec(matchID, r.PlayerID, r.Name, human, r.Alliance,
			r.Shots, r.Hits, r.Misses, r.ShipsSunk, r.ShipsLost,
			r.Accuracy, r.Score, won)
		if err != nil {
			return fmt.Errorf("insert result for %s: %w", r.Name, err)
		}
	}

	evStmt, err := tx.Preparex(`INSERT INTO match_events (match_id, turn, message, at)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer evStmt.Close()

	for _, ev := range events {
		if _, err := evStmt.Exec(matchID, ev.Turn, ev.Message, ev.At.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	return tx.Commit()
}

// LeaderboardRow aggregates one player name across recorded matches.
type LeaderboardRow struct {
	Name     string  `db:"name" json:"name"`
	Matches  int     `db:"matches" json:"matches"`
	Wins     int     `db:"wins" json:"wins"`
	Shots    int     `db:"shots" json:"shots"`
	Hits     int     `db:"hits" json:"hits"`
	Accuracy float64 `db:"accuracy" json:"accuracy"`
	Score    int     `db:"score" json:"score"`
}

// Leaderboard returns the top player names ordered by total score.
func (db *DB) Leaderboard(limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := db.conn.Select(&rows, `
		SELECT name,
		       COUNT(*) AS matches,
		       SUM(won) AS wins,
		       SUM(shots) AS shots,
		       SUM(hits) AS hits,
		       CASE WHEN SUM(shots) > 0
		            THEN CAST(SUM(hits) AS REAL) / SUM(shots)
		            ELSE 0 END AS accuracy,
		       SUM(score) AS score
		FROM player_results
		GROUP BY name
		ORDER BY score DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query: %w", err)
	}
	return rows, nil
}

// MatchEvents returns the archived event log of one match.
func (db *DB) MatchEvents(matchID string) ([]game.EventEntry, error) {
	rows, err := db.conn.Queryx(`SELECT turn, message, at FROM match_events
		WHERE match_id = ? ORDER BY id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("events query: %w", err)
	}
	defer rows.Close()

	var out []game.EventEntry
	for rows.Next() {
		var turn int
		var message, at string
		if err := rows.Scan(&turn, &message, &at); err != nil {
			return nil, err
		}
		ts, _ := time.Parse(time.RFC3339, at)
		out = append(out, game.EventEntry{Turn: turn, Message: message, At: ts})
	}
	return out, rows.Err()
}
