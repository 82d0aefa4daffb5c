package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/segyhp/ludoteca/internal/domain"
	"github.com/segyhp/ludoteca/pkg/logger"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS games (
	position      INTEGER PRIMARY KEY,
	id            TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	year          INTEGER NOT NULL,
	category      TEXT NOT NULL,
	min_players   INTEGER NOT NULL,
	max_players   INTEGER NOT NULL,
	registered_at DATETIME NOT NULL,
	available     BOOLEAN NOT NULL
);
CREATE TABLE IF NOT EXISTS members (
	position          INTEGER PRIMARY KEY,
	id                TEXT NOT NULL UNIQUE,
	name              TEXT NOT NULL,
	email             TEXT NOT NULL,
	phone             TEXT NOT NULL,
	membership_number TEXT NOT NULL,
	registered_at     DATETIME NOT NULL,
	active            BOOLEAN NOT NULL,
	pending_fine      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS loans (
	position    INTEGER PRIMARY KEY,
	id          TEXT NOT NULL UNIQUE,
	game_id     TEXT NOT NULL,
	member_id   TEXT NOT NULL,
	game_name   TEXT NOT NULL,
	member_name TEXT NOT NULL,
	loaned_at   DATETIME NOT NULL,
	due_at      DATETIME NOT NULL,
	returned_at DATETIME,
	active      BOOLEAN NOT NULL,
	fine        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

type sqliteStore struct {
	db  *sqlx.DB
	log logger.Logger
}

// NewSQLiteStore opens (or creates) the SQLite database at path and applies
// the schema.
func NewSQLiteStore(path string, log logger.Logger) (SnapshotStore, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &sqliteStore{db: db, log: log.With("store", "sqlite", "path", path)}, nil
}

func (s *sqliteStore) Load(ctx context.Context) (domain.Snapshot, error) {
	snapshot := domain.EmptySnapshot()

	if err := s.db.PingContext(ctx); err != nil {
		return snapshot, fmt.Errorf("ping sqlite: %w", err)
	}

	selectCategory(ctx, s, &snapshot, "games", `
		SELECT id, name, year, category, min_players, max_players, registered_at, available
		FROM games ORDER BY position`, &snapshot.Games)
	selectCategory(ctx, s, &snapshot, "members", `
		SELECT id, name, email, phone, membership_number, registered_at, active, pending_fine
		FROM members ORDER BY position`, &snapshot.Members)
	selectCategory(ctx, s, &snapshot, "loans", `
		SELECT id, game_id, member_id, game_name, member_name, loaned_at, due_at, returned_at, active, fine
		FROM loans ORDER BY position`, &snapshot.Loans)

	var lastUpdated string
	err := s.db.GetContext(ctx, &lastUpdated, `SELECT value FROM meta WHERE key = 'last_updated'`)
	switch {
	case err == nil:
		if t, parseErr := time.Parse(time.RFC3339Nano, lastUpdated); parseErr == nil {
			snapshot.LastUpdated = t
		}
	case !errors.Is(err, sql.ErrNoRows):
		s.log.InternalError("reading last_updated failed", err)
	}

	s.log.Info("snapshot loaded",
		"games", len(snapshot.Games),
		"members", len(snapshot.Members),
		"loans", len(snapshot.Loans),
	)
	return snapshot, nil
}

func selectCategory[T any](ctx context.Context, s *sqliteStore, snapshot *domain.Snapshot, name, query string, dst *[]T) {
	var items []T
	if err := s.db.SelectContext(ctx, &items, query); err != nil {
		s.log.InternalError("discarding unreadable category", err, "category", name)
		snapshot.Discarded = append(snapshot.Discarded, name)
		*dst = []T{}
		return
	}
	if items == nil {
		items = []T{}
	}
	*dst = items
}

// Save replaces every row in a single transaction.
func (s *sqliteStore) Save(ctx context.Context, snapshot domain.Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"games", "members", "loans"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, g := range snapshot.Games {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO games (position, id, name, year, category, min_players, max_players, registered_at, available)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, g.ID, g.Name, g.Year, g.Category, g.MinPlayers, g.MaxPlayers, g.RegisteredAt.UTC(), g.Available,
		)
		if err != nil {
			return fmt.Errorf("insert game %s: %w", g.ID, err)
		}
	}

	for i, m := range snapshot.Members {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO members (position, id, name, email, phone, membership_number, registered_at, active, pending_fine)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, m.ID, m.Name, m.Email, m.Phone, m.MembershipNumber, m.RegisteredAt.UTC(), m.Active, m.PendingFine,
		)
		if err != nil {
			return fmt.Errorf("insert member %s: %w", m.ID, err)
		}
	}

	for i, l := range snapshot.Loans {
		var returnedAt sql.NullTime
		if l.ReturnedAt != nil {
			returnedAt = sql.NullTime{Time: l.ReturnedAt.UTC(), Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO loans (position, id, game_id, member_id, game_name, member_name, loaned_at, due_at, returned_at, active, fine)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, l.ID, l.GameID, l.MemberID, l.GameName, l.MemberName, l.LoanedAt.UTC(), l.DueAt.UTC(), returnedAt, l.Active, l.Fine,
		)
		if err != nil {
			return fmt.Errorf("insert loan %s: %w", l.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES ('last_updated', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		snapshot.LastUpdated.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("stamp last_updated: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.log.Info("snapshot saved",
		"games", len(snapshot.Games),
		"members", len(snapshot.Members),
		"loans", len(snapshot.Loans),
	)
	return nil
}

func (s *sqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
