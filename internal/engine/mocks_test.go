package engine_test

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sammaes/SiouxBelgiumParser/internal/engine"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer for unit tests using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements the engine.PageFetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	args := m.Called(ctx, url)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// MockAgeLookup answers age queries by name.
type MockAgeLookup struct {
	mock.Mock
}

func (m *MockAgeLookup) Age(ctx context.Context, rec engine.BirthdayRecord, today engine.Date) (int, error) {
	args := m.Called(ctx, rec.Name, today)
	return args.Int(0), args.Error(1)
}

// MockRawSource counts how often the portal pages are scraped.
type MockRawSource struct {
	mock.Mock
}

func (m *MockRawSource) RawEvents(ctx context.Context) ([]engine.EventRecord, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]engine.EventRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRawSource) RawBirthdays(ctx context.Context) ([]engine.BirthdayRecord, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]engine.BirthdayRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

// clockAt returns a clock frozen at noon on the given day.
func clockAt(year int, month time.Month, day int) MockClock {
	return MockClock{CurrentTime: time.Date(year, month, day, 12, 0, 0, 0, time.Local)}
}

func d(year int, month time.Month, day int) engine.Date {
	return engine.NewDate(year, month, day)
}
