package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
	"github.com/sammaes/SiouxBelgiumParser/internal/engine"
)

func sampleEvents() []engine.EventRecord {
	return []engine.EventRecord{
		{Title: "Ski weekend", Category: "Social colleague", Dates: rng(d(2024, 5, 10), d(2024, 5, 12))},
		{Title: "Go in the cloud", Category: "Training", Dates: rng(d(2024, 5, 20), d(2024, 5, 20))},
		{Title: "Linux Kennisdelen", Category: "Exp group", Dates: nil},
		{Title: "Rust in the cloud", Category: "Training", Dates: rng(d(2024, 6, 1), d(2024, 6, 1))},
		{Title: "Old talk", Category: "Presentation", Dates: rng(d(2024, 1, 1), d(2024, 1, 1))},
	}
}

func TestEventPipeline_Run(t *testing.T) {
	p := engine.EventPipeline{Clock: clockAt(2024, time.May, 2)}
	upcoming := engine.DateFilterSpec{IncludeSingleDay: true, IncludeMultiDay: true, IncludeFuture: true, IncludeToday: true}

	only := allCategories(false)
	only["Training"] = true
	training, err := engine.NewCategoryFilter(knownCategories, only)
	require.NoError(t, err)

	t.Run("Title substring keeps document order", func(t *testing.T) {
		got, err := p.Run(sampleEvents(), training, upcoming, "in the cloud")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Go in the cloud", got[0].Title)
		assert.Equal(t, "Rust in the cloud", got[1].Title)
	})

	t.Run("Dateless record filtered out by category never fails", func(t *testing.T) {
		_, err := p.Run(sampleEvents(), training, upcoming, "")
		require.NoError(t, err)
	})

	t.Run("Dateless record reaching the date filter fails", func(t *testing.T) {
		all, err := engine.NewCategoryFilter(knownCategories, allCategories(true))
		require.NoError(t, err)

		_, err = p.Run(sampleEvents(), all, upcoming, "")
		assert.ErrorIs(t, err, engine.ErrMissingDate)

		got, err := p.Run(sampleEvents(), all, upcoming, "weekend")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "10/05/2024 - 12/05/2024", got[0].DisplayDate())
	})

	t.Run("Unknown category fails", func(t *testing.T) {
		records := []engine.EventRecord{{Title: "X", Category: "Hackathon", Dates: rng(d(2024, 6, 1), d(2024, 6, 1))}}
		_, err := p.Run(records, training, upcoming, "")
		assert.ErrorIs(t, err, engine.ErrFilter)
	})
}

func TestEventPipeline_Next(t *testing.T) {
	p := engine.EventPipeline{Clock: clockAt(2024, time.May, 2)}
	only := allCategories(false)
	only["Training"] = true
	training, err := engine.NewCategoryFilter(knownCategories, only)
	require.NoError(t, err)

	next, ok, err := p.Next(sampleEvents(), training, engine.AllDates(), "")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Go in the cloud", next.Title)

	next, ok, err = p.Next(sampleEvents(), training, engine.AllDates(), "Haskell")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, next)
}

func sampleBirthdays() []engine.BirthdayRecord {
	return []engine.BirthdayRecord{
		{Name: "Jan Peeters", Date: d(2024, 5, 2), Role: engine.RoleColleague, RelativeTime: engine.RelToday, URL: "u1"},
		{Name: "Lotte Peeters", Date: d(2024, 5, 20), Role: engine.RoleChild, RelativeTime: engine.RelFuture},
		{Name: "Els Wouters", Date: d(2024, 6, 3), Role: engine.RoleColleague, RelativeTime: engine.RelFuture, URL: "u2"},
		{Name: "An Claes", Date: d(2024, 4, 15), Role: engine.RolePartner, RelativeTime: engine.RelPast},
	}
}

func TestBirthdayPipeline_Run(t *testing.T) {
	today := d(2024, time.May, 2)

	ages := new(MockAgeLookup)
	ages.On("Age", mock.Anything, "Jan Peeters", today).Return(39, nil).Once()
	// Birthday still ahead this year: completed years are one less than the age reached.
	ages.On("Age", mock.Anything, "Els Wouters", today).Return(29, nil).Once()

	p := engine.BirthdayPipeline{Clock: clockAt(2024, time.May, 2), Ages: ages}
	got, err := p.Run(context.Background(), sampleBirthdays(),
		engine.NewRelativeTimeFilter(true, true, false), engine.AllRoles(), true)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "Jan Peeters", got[0].Name)
	assert.Equal(t, engine.KnownAge(39), got[0].Age)
	assert.Equal(t, "Lotte Peeters", got[1].Name)
	assert.Equal(t, engine.UnknownAge(), got[1].Age, "only colleagues get a number")
	assert.Equal(t, "Els Wouters", got[2].Name)
	assert.Equal(t, engine.KnownAge(30), got[2].Age)
	ages.AssertExpectations(t)
}

func TestBirthdayPipeline_Run_NoAges(t *testing.T) {
	ages := new(MockAgeLookup)
	p := engine.BirthdayPipeline{Clock: clockAt(2024, time.May, 2), Ages: ages}

	got, err := p.Run(context.Background(), sampleBirthdays(),
		engine.NewRelativeTimeFilter(true, true, true), engine.NewRoleFilter(true, false, false, false), false)
	require.NoError(t, err)

	require.Len(t, got, 2)
	for _, b := range got {
		assert.Equal(t, engine.RoleColleague, b.Role)
		assert.Nil(t, b.Age)
	}
	ages.AssertNotCalled(t, "Age", mock.Anything, mock.Anything, mock.Anything)
}

func TestBirthdayPipeline_Run_LookupErrors(t *testing.T) {
	today := d(2024, time.May, 2)
	ages := new(MockAgeLookup)
	ages.On("Age", mock.Anything, "Jan Peeters", today).Return(0, errors.New("boom"))

	p := engine.BirthdayPipeline{Clock: clockAt(2024, time.May, 2), Ages: ages}
	_, err := p.Run(context.Background(), sampleBirthdays(),
		engine.NewRelativeTimeFilter(true, false, false), engine.AllRoles(), true)
	assert.ErrorContains(t, err, "boom")

	p.Ages = nil
	_, err = p.Run(context.Background(), sampleBirthdays(),
		engine.NewRelativeTimeFilter(true, false, false), engine.AllRoles(), true)
	assert.ErrorIs(t, err, config.ErrConfig)
}
