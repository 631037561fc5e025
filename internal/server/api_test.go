package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifecal/internal/config"
	"github.com/tartampluch/go-lifecal/internal/engine"
	"github.com/tartampluch/go-lifecal/internal/lifecal"
	"github.com/tartampluch/go-lifecal/internal/locale"
)

// MockNavigator stubs the navigation API using `testify/mock`.
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) Goto(text string) (engine.Jump, error) {
	args := m.Called(text)
	return args.Get(0).(engine.Jump), args.Error(1)
}

func (m *MockNavigator) Week(yw lifecal.YearWeek) (engine.WeekInfo, error) {
	args := m.Called(yw)
	return args.Get(0).(engine.WeekInfo), args.Error(1)
}

func (m *MockNavigator) Status() (engine.GridStatus, error) {
	args := m.Called()
	return args.Get(0).(engine.GridStatus), args.Error(1)
}

func serve(srv *CalendarServer, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

// realNavigator is a navigator for a birthday of 2000-01-01 seen from 2024-06-15.
func realNavigator() *engine.Navigator {
	return engine.NewNavigator(
		time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		lifecal.FixedClock(time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)),
		locale.New("en"),
		time.UTC,
	)
}

func TestAPI_InitializingBeforeNavigator(t *testing.T) {
	srv := NewCalendarServer("0")

	for _, target := range []string{"/api/goto?q=today", "/api/week?year=1&week=1", "/api/grid"} {
		w := serve(srv, http.MethodGet, target)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, target)
		assert.Equal(t, config.RetryAfterSeconds, w.Header().Get(config.HeaderRetryAfter))
	}
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	srv := NewCalendarServer("0")
	srv.SetNavigator(realNavigator())

	for _, target := range []string{config.RouteAPIGoto, config.RouteAPIWeek, config.RouteAPIGrid} {
		w := serve(srv, http.MethodPost, target)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, target)
		assert.Equal(t, config.AllowedMethods, w.Header().Get(config.HeaderAllow))
	}
}

func TestAPI_Goto(t *testing.T) {
	srv := NewCalendarServer("0")
	srv.SetNavigator(realNavigator())

	t.Run("On grid", func(t *testing.T) {
		w := serve(srv, http.MethodGet, "/api/goto?q=2000-01-08")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, config.MimeJSON, w.Header().Get(config.HeaderContentType))

		var jump engine.Jump
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jump))
		assert.True(t, jump.OnGrid)
		assert.Equal(t, lifecal.YearWeek{Year: 0, Week: 2}, jump.YearWeek)
		assert.Equal(t, "Week 2 of year 0", jump.Message)
	})

	t.Run("Off grid", func(t *testing.T) {
		w := serve(srv, http.MethodGet, "/api/goto?q=1999-12-31")
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["on_grid"])
		assert.Contains(t, body["message"], "not on the calendar")
	})

	t.Run("Unparseable", func(t *testing.T) {
		w := serve(srv, http.MethodGet, "/api/goto?q=not+a+date")
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var jump engine.Jump
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jump))
		assert.Equal(t, "Unable to find date", jump.Message)
	})
}

func TestAPI_Week(t *testing.T) {
	srv := NewCalendarServer("0")
	srv.SetNavigator(realNavigator())

	w := serve(srv, http.MethodGet, "/api/week?year=24&week=24")
	require.Equal(t, http.StatusOK, w.Code)

	var info engine.WeekInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.True(t, info.Current)
	assert.False(t, info.Elapsed)
	assert.Equal(t, "Week 24 of year 24", info.Label)

	for _, target := range []string{"/api/week?year=x&week=1", "/api/week?year=1", "/api/week"} {
		w := serve(srv, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Contains(t, w.Body.String(), config.ErrInvalidYearWeek)
	}
}

func TestAPI_Grid(t *testing.T) {
	srv := NewCalendarServer("0")
	srv.SetNavigator(realNavigator())

	w := serve(srv, http.MethodGet, config.RouteAPIGrid)
	require.Equal(t, http.StatusOK, w.Code)

	var status engine.GridStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, lifecal.YearWeek{Year: 24, Week: 24}, status.Current)
	assert.Equal(t, 24*52+23, status.Elapsed)
	assert.Equal(t, lifecal.TotalWeeks, status.Total)
}

// TestAPI_NavigatorErrors maps navigator failures to status codes.
func TestAPI_NavigatorErrors(t *testing.T) {
	nav := new(MockNavigator)
	nav.On("Goto", "x").Return(engine.Jump{}, engine.ErrNoBirthday)
	nav.On("Week", lifecal.YearWeek{Year: 1, Week: 1}).Return(engine.WeekInfo{}, errors.New("boom"))
	nav.On("Status").Return(engine.GridStatus{}, engine.ErrNoBirthday)

	srv := NewCalendarServer("0")
	srv.SetNavigator(nav)

	assert.Equal(t, http.StatusServiceUnavailable, serve(srv, http.MethodGet, "/api/goto?q=x").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(srv, http.MethodGet, "/api/week?year=1&week=1").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(srv, http.MethodGet, "/api/grid").Code)
	nav.AssertExpectations(t)

	// Removing the navigator restores the initializing state.
	srv.SetNavigator(nil)
	assert.Equal(t, http.StatusServiceUnavailable, serve(srv, http.MethodGet, "/api/grid").Code)
}
