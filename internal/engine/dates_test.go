package engine_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammaes/SiouxBelgiumParser/internal/engine"
)

func TestExtractDates(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      []engine.Date
		noneFound bool
		invalid   bool
	}{
		{
			name: "Range in running text",
			text: "Event on 14 jan '24 to 16 jan '24",
			want: []engine.Date{d(2024, time.January, 14), d(2024, time.January, 16)},
		},
		{
			name: "Single date with abbreviation dot",
			text: "02 sept. '23",
			want: []engine.Date{d(2023, time.September, 2)},
		},
		{
			name: "Case insensitive month",
			text: "05 MRT '25",
			want: []engine.Date{d(2025, time.March, 5)},
		},
		{name: "Unknown month", text: "01 foo '24 and 03 feb '24", invalid: true},
		{name: "Impossible day", text: "30 jan '24 - 31 feb '24", invalid: true},
		{name: "Longer number is not a day", text: "114 jan '24", noneFound: true},
		{name: "No date at all", text: "binnenkort", noneFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.ExtractDates(tt.text, engine.Dutch)
			if tt.noneFound {
				assert.ErrorIs(t, err, engine.ErrNoDateFound)
				assert.ErrorIs(t, err, engine.ErrExtraction)
				return
			}
			if tt.invalid {
				assert.ErrorIs(t, err, engine.ErrInvalidDate)
				assert.ErrorIs(t, err, engine.ErrExtraction)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewDateRange(t *testing.T) {
	_, err := engine.NewDateRange(nil)
	assert.ErrorIs(t, err, engine.ErrMissingDate)

	single, err := engine.NewDateRange([]engine.Date{d(2024, 5, 2)})
	require.NoError(t, err)
	assert.False(t, single.IsMultiDay())
	assert.Equal(t, "02/05/2024", single.Display())

	_, err = engine.NewDateRange([]engine.Date{d(2024, 1, 14), d(2024, 1, 16), d(2024, 2, 1)})
	assert.ErrorIs(t, err, engine.ErrExtraction)

	multi, err := engine.NewDateRange([]engine.Date{d(2024, 1, 14), d(2024, 1, 16)})
	require.NoError(t, err)
	assert.True(t, multi.IsMultiDay())
	assert.Equal(t, d(2024, 1, 16), multi.End)
	assert.Equal(t, "14/01/2024 - 16/01/2024", multi.Display())
	assert.True(t, multi.Contains(d(2024, 1, 14)))
	assert.True(t, multi.Contains(d(2024, 1, 16)))
	assert.False(t, multi.Contains(d(2024, 1, 17)))

	_, err = engine.NewDateRange([]engine.Date{d(2024, 1, 16), d(2024, 1, 14)})
	assert.ErrorIs(t, err, engine.ErrExtraction)
}

func TestParseBirthdayDate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		year    int
		want    engine.Date
		wantErr bool
	}{
		{name: "Day first (portal locale)", text: "Jan Peeters (14 mei)", year: 2024, want: d(2024, time.May, 14)},
		{name: "Swapped English", text: "Jan Peeters (May 14)", year: 2024, want: d(2024, time.May, 14)},
		{name: "Abbreviated month", text: "An (3 okt.)", year: 2025, want: d(2025, time.October, 3)},
		{name: "Leap day in a non-leap year", text: "Leo (29 feb)", year: 2023, want: d(2023, time.March, 1)},
		{name: "Leap day in a leap year", text: "Leo (29 feb)", year: 2024, want: d(2024, time.February, 29)},
		{name: "No group", text: "Jan Peeters", year: 2024, wantErr: true},
		{name: "Empty group", text: "Jan Peeters ()", year: 2024, wantErr: true},
		{name: "Dutch month in swapped order", text: "Jan (mei 14)", year: 2024, wantErr: true},
		{name: "Impossible day", text: "Jan (31 apr)", year: 2024, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.ParseBirthdayDate(tt.text, engine.Dutch, engine.English, tt.year)
			if tt.wantErr {
				assert.ErrorIs(t, err, engine.ErrNoDateFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLongDate(t *testing.T) {
	for _, text := range []string{"02/05/1985", "02-05-1985", "1985-05-02", "02 mei 1985", " 2 Mei 1985\n"} {
		got, err := engine.ParseLongDate(text, engine.Dutch)
		require.NoError(t, err, text)
		assert.Equal(t, d(1985, time.May, 2), got, text)
	}

	_, err := engine.ParseLongDate("Jan Peeters", engine.Dutch)
	assert.ErrorIs(t, err, engine.ErrNoDateFound)
}

func TestDate_JSON(t *testing.T) {
	r := engine.DateRange{Start: d(2024, 12, 31), End: d(2025, 1, 2)}

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2024-12-31","end":"2025-01-02"}`, string(b))

	var back engine.DateRange
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, r, back)

	assert.Error(t, json.Unmarshal([]byte(`{"start":"2024-13-01"}`), &back))
}

func TestDate_Arithmetic(t *testing.T) {
	assert.Equal(t, d(2024, 3, 1), d(2024, 2, 29).AddDays(1))
	assert.Equal(t, d(2025, 1, 1), d(2024, 12, 31).AddDays(1))
	assert.True(t, d(2024, 1, 1).Before(d(2024, 1, 2)))
	assert.True(t, d(2025, 1, 1).After(d(2024, 12, 31)))
	assert.Equal(t, 0, d(2024, 6, 1).Compare(d(2024, 6, 1)))
	assert.Equal(t, d(2024, 5, 2), engine.Today(clockAt(2024, 5, 2)))
}
