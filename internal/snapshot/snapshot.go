// Package snapshot stores the raw portal records as JSON files so menus can be
// rendered without reaching the intranet.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
	"github.com/sammaes/SiouxBelgiumParser/internal/engine"
)

// Store reads and writes the snapshot files of one directory.
type Store struct {
	Dir string
}

// New returns a store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// EventsPath is the events snapshot file.
func (s *Store) EventsPath() string {
	return filepath.Join(s.Dir, config.EventsSnapshotFile)
}

// BirthdaysPath is the birthdays snapshot file.
func (s *Store) BirthdaysPath() string {
	return filepath.Join(s.Dir, config.BdaysSnapshotFile)
}

// Save overwrites both snapshot files.
func (s *Store) Save(events []engine.EventRecord, birthdays []engine.BirthdayRecord) error {
	if err := os.MkdirAll(s.Dir, config.DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}
	if events == nil {
		events = []engine.EventRecord{}
	}
	if birthdays == nil {
		birthdays = []engine.BirthdayRecord{}
	}
	if err := writeJSON(s.EventsPath(), events); err != nil {
		return err
	}
	if err := writeJSON(s.BirthdaysPath(), birthdays); err != nil {
		return err
	}

	slog.Info(config.MsgSnapshotSaved,
		config.LogKeyComponent, config.CompSnapshot,
		config.LogKeyFile, s.Dir,
		slog.Int(config.KindEvents, len(events)),
		slog.Int(config.KindBirthdays, len(birthdays)))
	return nil
}

// Load reads both snapshot files.
func (s *Store) Load() ([]engine.EventRecord, []engine.BirthdayRecord, error) {
	var events []engine.EventRecord
	if err := readJSON(s.EventsPath(), &events); err != nil {
		return nil, nil, err
	}
	var birthdays []engine.BirthdayRecord
	if err := readJSON(s.BirthdaysPath(), &birthdays); err != nil {
		return nil, nil, err
	}
	return events, birthdays, nil
}

// RawEvents implements engine.RawSource.
func (s *Store) RawEvents(_ context.Context) ([]engine.EventRecord, error) {
	var events []engine.EventRecord
	if err := readJSON(s.EventsPath(), &events); err != nil {
		return nil, err
	}
	return events, nil
}

// RawBirthdays implements engine.RawSource.
func (s *Store) RawBirthdays(_ context.Context) ([]engine.BirthdayRecord, error) {
	var birthdays []engine.BirthdayRecord
	if err := readJSON(s.BirthdaysPath(), &birthdays); err != nil {
		return nil, err
	}
	return birthdays, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", config.SnapshotIndent)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}
	if err := os.WriteFile(path, b, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotRead, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%s %s: %w", config.ErrSnapshotRead, path, err)
	}

	slog.Debug(config.MsgSnapshotLoaded,
		config.LogKeyComponent, config.CompSnapshot,
		config.LogKeyFile, path)
	return nil
}
