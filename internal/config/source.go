package config

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/zalando/go-keyring"
	"gopkg.in/ini.v1"
)

// ErrConfig is the root of every configuration failure (missing file, missing key,
// malformed value). It is fatal at startup.
var ErrConfig = errors.New("configuration error")

// Source provides raw configuration values addressed by section and key.
type Source interface {
	Get(section, key string) (string, error)
}

// missing builds the error returned when a key is absent from a Source.
func missing(section, key string) error {
	return fmt.Errorf("%w: %s [%s] %s", ErrConfig, ErrMissingKey, section, key)
}

// -----------------------------------------------------------------------------
// INI file
// -----------------------------------------------------------------------------

// IniSource reads config.ini. Section and key names are case-insensitive,
// so existing files written with any casing keep working.
type IniSource struct {
	file *ini.File
	path string
}

// OpenIniSource loads the INI file at path.
func OpenIniSource(path string) (*IniSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrConfig, ErrOpenConfig, path, err)
	}
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrConfig, ErrOpenConfig, path, err)
	}
	return &IniSource{file: f, path: path}, nil
}

// Get implements Source.
func (s *IniSource) Get(section, key string) (string, error) {
	sec, err := s.file.GetSection(section)
	if err != nil || !sec.HasKey(key) {
		return "", missing(section, key)
	}
	return sec.Key(key).String(), nil
}

// -----------------------------------------------------------------------------
// SQLite key/value store
// -----------------------------------------------------------------------------

// SQLiteSource keeps configuration in a single key/value table.
// "config import" fills it from an existing config.ini.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLiteSource opens (and creates if needed) the database at path.
func OpenSQLiteSource(path string) (*SQLiteSource, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, DirPermUserRWX); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfig, ErrOpenConfig, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfig, ErrOpenConfig, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConfig, ErrOpenConfig, err)
	}

	s := &SQLiteSource{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: migrate: %w", ErrConfig, err)
	}
	return s, nil
}

func (s *SQLiteSource) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		section TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (section, key)
	)`)
	return err
}

// Close releases the database handle.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Get implements Source.
func (s *SQLiteSource) Get(section, key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE section = ? AND key = ?`, section, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", missing(section, key)
	}
	if err != nil {
		return "", fmt.Errorf("%w: query [%s] %s: %w", ErrConfig, section, key, err)
	}
	return value, nil
}

// Set inserts or replaces a single value.
func (s *SQLiteSource) Set(section, key, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (section, key, value) VALUES (?, ?, ?)
		ON CONFLICT(section, key) DO UPDATE SET value = excluded.value`, section, key, value)
	if err != nil {
		return fmt.Errorf("set [%s] %s: %w", section, key, err)
	}
	return nil
}

// ImportFrom copies every schema key from src into the store inside one transaction.
// It returns the number of values written.
func (s *SQLiteSource) ImportFrom(src Source, schema map[string][]string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT INTO settings (section, key, value) VALUES (?, ?, ?)
		ON CONFLICT(section, key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	count := 0
	for _, section := range SchemaSections() {
		for _, key := range schema[section] {
			value, err := src.Get(section, key)
			if err != nil {
				return 0, err
			}
			if _, err := stmt.Exec(section, key, value); err != nil {
				return 0, fmt.Errorf("import [%s] %s: %w", section, key, err)
			}
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	slog.Info(MsgConfigImported,
		LogKeyComponent, CompConfig,
		LogKeyCount, count)
	return count, nil
}

// -----------------------------------------------------------------------------
// OS keyring
// -----------------------------------------------------------------------------

// KeyringSource stores values in the operating system keychain.
// The keyring service is "<Service>/<section>" and the user is the key,
// which keeps the password out of config.ini.
type KeyringSource struct {
	Service string
}

// NewKeyringSource returns a source scoped to the application keyring service.
func NewKeyringSource() *KeyringSource {
	return &KeyringSource{Service: KeyringService}
}

func (s *KeyringSource) service(section string) string {
	return s.Service + "/" + section
}

// Get implements Source.
func (s *KeyringSource) Get(section, key string) (string, error) {
	v, err := keyring.Get(s.service(section), key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", missing(section, key)
	}
	if err != nil {
		return "", fmt.Errorf("%w: keyring [%s] %s: %w", ErrConfig, section, key, err)
	}
	return v, nil
}

// Set stores a value in the keychain.
func (s *KeyringSource) Set(section, key, value string) error {
	if err := keyring.Set(s.service(section), key, value); err != nil {
		return fmt.Errorf("%s: %w", ErrStorePassword, err)
	}
	return nil
}
