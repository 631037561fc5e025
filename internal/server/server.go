package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-lifecal/internal/config"
	"github.com/tartampluch/go-lifecal/internal/engine"
	"github.com/tartampluch/go-lifecal/internal/lifecal"
)

// Navigator answers the JSON navigation routes.
// *engine.Navigator satisfies it.
type Navigator interface {
	Goto(text string) (engine.Jump, error)
	Week(yw lifecal.YearWeek) (engine.WeekInfo, error)
	Status() (engine.GridStatus, error)
}

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// navItem boxes the interface so it can live behind an atomic.Pointer.
type navItem struct {
	nav Navigator
}

// errorBody is the JSON payload of API errors.
type errorBody struct {
	Error string `json:"error"`
}

// CalendarServer serves the life-calendar feed and the navigation API.
type CalendarServer struct {
	// Both caches are read on every request and replaced only on sync,
	// so readers never take a lock.
	cache atomic.Pointer[cacheItem]
	nav   atomic.Pointer[navItem]
	Port  string
}

// NewCalendarServer creates a new instance of the server.
func NewCalendarServer(port string) *CalendarServer {
	return &CalendarServer{
		Port: port,
	}
}

// Handler returns the routing table. Exposed for tests and embedding.
func (s *CalendarServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot+"{$}", s.handleCalendarRequest)
	mux.HandleFunc(config.RouteICS, s.handleCalendarRequest)
	mux.HandleFunc(config.RouteAPIGoto, s.handleGoto)
	mux.HandleFunc(config.RouteAPIWeek, s.handleWeek)
	mux.HandleFunc(config.RouteAPIGrid, s.handleGrid)
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if err := config.ValidatePort(s.Port); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served feed.
func (s *CalendarServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	item := &cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// SetNavigator installs the navigator behind the API routes. A nil navigator
// puts the API back into its initializing state.
func (s *CalendarServer) SetNavigator(nav Navigator) {
	if nav == nil {
		s.nav.Store(nil)
		return
	}
	s.nav.Store(&navItem{nav: nav})
	slog.Debug(config.MsgNavUpdated, config.LogKeyComponent, config.CompServer)
}

// allowRead rejects anything but GET and HEAD.
func allowRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set(config.HeaderAllow, config.AllowedMethods)
	http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
	return false
}

func unavailable(w http.ResponseWriter) {
	w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
	http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}

	item := s.cache.Load()
	if item == nil {
		unavailable(w)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// navigator loads the installed navigator or answers 503.
func (s *CalendarServer) navigator(w http.ResponseWriter) (Navigator, bool) {
	item := s.nav.Load()
	if item == nil {
		unavailable(w)
		return nil, false
	}
	return item.nav, true
}

// handleGoto resolves ?q= free text to a cell.
func (s *CalendarServer) handleGoto(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}
	nav, ok := s.navigator(w)
	if !ok {
		return
	}

	jump, err := nav.Goto(r.URL.Query().Get(config.QueryParamQ))
	switch {
	case errors.Is(err, engine.ErrUnparseableDate):
		writeJSON(w, http.StatusUnprocessableEntity, jump)
	case errors.Is(err, engine.ErrNoBirthday):
		unavailable(w)
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, jump)
	}
}

// handleWeek describes ?year=&week=.
func (s *CalendarServer) handleWeek(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}
	nav, ok := s.navigator(w)
	if !ok {
		return
	}

	q := r.URL.Query()
	year, errY := strconv.Atoi(q.Get(config.QueryParamYr))
	week, errW := strconv.Atoi(q.Get(config.QueryParamWk))
	if errY != nil || errW != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: config.ErrInvalidYearWeek})
		return
	}

	info, err := nav.Week(lifecal.YearWeek{Year: year, Week: week})
	if err != nil {
		s.writeNavError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleGrid reports the current cell and elapsed count.
func (s *CalendarServer) handleGrid(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}
	nav, ok := s.navigator(w)
	if !ok {
		return
	}

	status, err := nav.Status()
	if err != nil {
		s.writeNavError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *CalendarServer) writeNavError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrNoBirthday) {
		unavailable(w)
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlNoStore)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
