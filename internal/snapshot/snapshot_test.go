package snapshot_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammaes/SiouxBelgiumParser/internal/engine"
	"github.com/sammaes/SiouxBelgiumParser/internal/snapshot"
)

func sample() ([]engine.EventRecord, []engine.BirthdayRecord) {
	events := []engine.EventRecord{
		{
			Dates:    &engine.DateRange{Start: engine.NewDate(2024, time.December, 31), End: engine.NewDate(2025, time.January, 2)},
			Title:    "New year",
			Location: "Eindhoven",
			Category: "Social partner",
			URL:      "https://intranet.example/Events/Event.aspx?id=1",
		},
		{Title: "Dateless", Category: "Training", URL: "https://intranet.example/Events/Event.aspx?id=2"},
	}
	bdays := []engine.BirthdayRecord{
		{Name: "Jan Peeters", Date: engine.NewDate(2024, time.February, 29), Role: engine.RoleColleague,
			RelativeTime: engine.RelPast, URL: "https://intranet.example/People/1", Age: engine.KnownAge(39)},
		{Name: "Lotte", Date: engine.NewDate(2024, time.May, 20), Role: engine.RoleChild,
			RelativeTime: engine.RelFuture, Age: engine.UnknownAge()},
		{Name: "An", Date: engine.NewDate(2024, time.May, 2), Role: engine.RolePartner, RelativeTime: engine.RelToday},
	}
	return events, bdays
}

func TestStore_RoundTrip(t *testing.T) {
	store := snapshot.New(t.TempDir())
	events, bdays := sample()

	require.NoError(t, store.Save(events, bdays))

	gotEvents, gotBdays, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, events, gotEvents)
	assert.Equal(t, bdays, gotBdays)
}

func TestStore_Format(t *testing.T) {
	store := snapshot.New(t.TempDir())
	events, bdays := sample()
	require.NoError(t, store.Save(events[:1], bdays[:2]))

	raw, err := os.ReadFile(store.EventsPath())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"start": "2024-12-31"`)
	assert.Contains(t, string(raw), "\n    {")

	raw, err = os.ReadFile(store.BirthdaysPath())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"date": "2024-02-29"`)
	assert.Contains(t, string(raw), `"age": 39`)
	assert.Contains(t, string(raw), `"age": "unknown"`)

	info, err := os.Stat(store.BirthdaysPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStore_RawSource(t *testing.T) {
	store := snapshot.New(t.TempDir())
	events, bdays := sample()
	require.NoError(t, store.Save(events, bdays))

	var src engine.RawSource = store
	gotEvents, err := src.RawEvents(context.Background())
	require.NoError(t, err)
	assert.Len(t, gotEvents, 2)

	gotBdays, err := src.RawBirthdays(context.Background())
	require.NoError(t, err)
	assert.Len(t, gotBdays, 3)
}

func TestStore_Errors(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir)

	_, _, err := store.Load()
	assert.Error(t, err, "missing files")

	require.NoError(t, os.WriteFile(store.EventsPath(), []byte(`[{"dates":{"start":"31/12/2024"}}]`), 0600))
	_, err = store.RawEvents(context.Background())
	assert.Error(t, err, "dates must be ISO-8601")

	require.NoError(t, store.Save(nil, nil))
	events, bdays, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Empty(t, bdays)
}
