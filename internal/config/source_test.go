package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

const testINI = "testdata/config.ini"

func TestIniSource_Get(t *testing.T) {
	src, err := config.OpenIniSource(testINI)
	require.NoError(t, err)

	v, err := src.Get(config.SectionURLs, config.KeyBase)
	require.NoError(t, err)
	assert.Equal(t, "https://intranet.example", v)

	// Section and key names are case-insensitive.
	v, err = src.Get("urls", "iis_domain")
	require.NoError(t, err)
	assert.Equal(t, "SIOUX", v)

	_, err = src.Get(config.SectionURLs, "NOPE")
	assert.ErrorIs(t, err, config.ErrConfig)
	_, err = src.Get("NOPE", config.KeyBase)
	assert.ErrorIs(t, err, config.ErrConfig)
}

func TestIniSource_MissingFile(t *testing.T) {
	_, err := config.OpenIniSource(filepath.Join(t.TempDir(), "absent.ini"))
	assert.ErrorIs(t, err, config.ErrConfig)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSQLiteSource_SetGet(t *testing.T) {
	db, err := config.OpenSQLiteSource(filepath.Join(t.TempDir(), "nested", config.ConfigDBName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Get(config.SectionAuth, config.KeyUsername)
	assert.ErrorIs(t, err, config.ErrConfig)

	require.NoError(t, db.Set(config.SectionAuth, config.KeyUsername, "jdoe"))
	require.NoError(t, db.Set(config.SectionAuth, config.KeyUsername, "jsmith"))

	v, err := db.Get(config.SectionAuth, config.KeyUsername)
	require.NoError(t, err)
	assert.Equal(t, "jsmith", v, "Set replaces existing values")
}

func TestSQLiteSource_ImportFrom(t *testing.T) {
	ini, err := config.OpenIniSource(testINI)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), config.ConfigDBName)
	db, err := config.OpenSQLiteSource(path)
	require.NoError(t, err)

	n, err := db.ImportFrom(ini, config.Schema)
	require.NoError(t, err)

	want := 0
	for _, keys := range config.Schema {
		want += len(keys)
	}
	assert.Equal(t, want, n)
	require.NoError(t, db.Close())

	// The store survives a reopen and yields the same settings as the INI file.
	db, err = config.OpenSQLiteSource(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	fromINI, err := config.LoadSettings(ini)
	require.NoError(t, err)
	fromDB, err := config.LoadSettings(db)
	require.NoError(t, err)
	assert.Equal(t, fromINI, fromDB)
}

func TestSQLiteSource_ImportFrom_MissingKeyRollsBack(t *testing.T) {
	db, err := config.OpenSQLiteSource(filepath.Join(t.TempDir(), config.ConfigDBName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	partial := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(partial, []byte("[GENERAL]\nLOCALE = nl_BE\n"), 0o600))
	ini, err := config.OpenIniSource(partial)
	require.NoError(t, err)

	_, err = db.ImportFrom(ini, config.Schema)
	require.ErrorIs(t, err, config.ErrConfig)

	_, err = db.Get(config.SectionGeneral, config.KeyLocale)
	assert.ErrorIs(t, err, config.ErrConfig, "nothing is committed on failure")
}

func TestKeyringSource(t *testing.T) {
	keyring.MockInit()
	src := config.NewKeyringSource()

	_, err := src.Get(config.SectionAuth, config.KeyPassword)
	assert.ErrorIs(t, err, config.ErrConfig)

	require.NoError(t, src.Set(config.SectionAuth, config.KeyPassword, "s3cret"))

	v, err := src.Get(config.SectionAuth, config.KeyPassword)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	// Values are scoped per section.
	_, err = src.Get(config.SectionURLs, config.KeyPassword)
	assert.ErrorIs(t, err, config.ErrConfig)
}
