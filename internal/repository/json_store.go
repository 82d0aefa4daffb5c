package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/segyhp/ludoteca/internal/domain"
	"github.com/segyhp/ludoteca/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// storedSnapshot keeps every category raw so each one can fail to decode
// independently.
type storedSnapshot struct {
	Games       jsoniter.RawMessage `json:"games"`
	Members     jsoniter.RawMessage `json:"members"`
	Loans       jsoniter.RawMessage `json:"loans"`
	LastUpdated jsoniter.RawMessage `json:"last_updated"`
}

type jsonStore struct {
	path string
	log  logger.Logger
}

// NewJSONStore stores snapshots as an indented JSON document at path.
func NewJSONStore(path string, log logger.Logger) SnapshotStore {
	return &jsonStore{path: path, log: log.With("store", "json", "path", path)}
}

func (s *jsonStore) Load(ctx context.Context) (domain.Snapshot, error) {
	snapshot := domain.EmptySnapshot()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Info("data file not found, starting empty")
		return snapshot, nil
	}
	if err != nil {
		return snapshot, fmt.Errorf("read %s: %w", s.path, err)
	}

	var stored storedSnapshot
	if err := json.Unmarshal(data, &stored); err != nil {
		// The document as a whole is unreadable; nothing can be salvaged.
		s.log.InternalError("data file is not a JSON object", err)
		snapshot.Discarded = []string{"games", "members", "loans"}
		return snapshot, nil
	}

	for _, category := range []struct {
		name string
		ok   bool
	}{
		{"games", decodeCategory(s.log, "games", stored.Games, &snapshot.Games)},
		{"members", decodeCategory(s.log, "members", stored.Members, &snapshot.Members)},
		{"loans", decodeCategory(s.log, "loans", stored.Loans, &snapshot.Loans)},
	} {
		if !category.ok {
			snapshot.Discarded = append(snapshot.Discarded, category.name)
		}
	}
	if len(stored.LastUpdated) > 0 {
		var lastUpdated time.Time
		if err := json.Unmarshal(stored.LastUpdated, &lastUpdated); err == nil {
			snapshot.LastUpdated = lastUpdated
		}
	}

	s.log.Info("snapshot loaded",
		"games", len(snapshot.Games),
		"members", len(snapshot.Members),
		"loans", len(snapshot.Loans),
	)
	return snapshot, ctx.Err()
}

// decodeCategory reports false when raw held something other than a list
// of T. An absent category decodes as empty and counts as read.
func decodeCategory[T any](log logger.Logger, name string, raw jsoniter.RawMessage, dst *[]T) bool {
	if len(raw) == 0 || string(raw) == "null" {
		*dst = []T{}
		return true
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		log.InternalError("discarding malformed category", err, "category", name)
		*dst = []T{}
		return false
	}
	*dst = items
	return true
}

func (s *jsonStore) Save(ctx context.Context, snapshot domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if snapshot.Games == nil {
		snapshot.Games = []domain.Game{}
	}
	if snapshot.Members == nil {
		snapshot.Members = []domain.Member{}
	}
	if snapshot.Loans == nil {
		snapshot.Loans = []domain.Loan{}
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	// Write next to the target and rename so a crash never leaves a
	// half-written data file behind.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	s.log.Info("snapshot saved",
		"games", len(snapshot.Games),
		"members", len(snapshot.Members),
		"loans", len(snapshot.Loans),
	)
	return nil
}

func (s *jsonStore) Ping(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		// Save creates the directory on first write.
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return ctx.Err()
}

func (s *jsonStore) Close() error { return nil }
