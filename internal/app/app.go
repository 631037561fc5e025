// Package app runs the headless life-calendar service: it keeps the feed and the
// navigation API fresh, reschedules on settings changes and rolls weeks over at midnight.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/tartampluch/go-lifecal/internal/config"
	"github.com/tartampluch/go-lifecal/internal/engine"
	"github.com/tartampluch/go-lifecal/internal/freeform"
	"github.com/tartampluch/go-lifecal/internal/lifecal"
	"github.com/tartampluch/go-lifecal/internal/locale"
	"github.com/tartampluch/go-lifecal/internal/server"
	"github.com/zalando/go-keyring"
)

// Controller owns the settings and drives synchronization.
type Controller struct {
	Server       *server.CalendarServer // Optional; nil for one-shot CLI use.
	Fetcher      engine.VCardFetcher
	Clock        lifecal.Clock   // Injected clock for testability
	Parser       freeform.Parser // Optional override of the navigator's free-text parser
	SettingsPath string          // Watched for changes while running; may be empty

	mu         sync.RWMutex
	settings   *config.Settings
	translator *locale.Translator
	scheduler  *cron.Cron

	syncMu   sync.Mutex
	last     atomic.Pointer[engine.Result]
	nav      atomic.Pointer[engine.Navigator]
	reloadCh chan struct{}
}

// NewController wires a controller around already-loaded settings.
func NewController(s *config.Settings, path string, srv *server.CalendarServer, fetcher engine.VCardFetcher) *Controller {
	s.Normalize()
	return &Controller{
		Server:       srv,
		Fetcher:      fetcher,
		Clock:        lifecal.RealClock{},
		SettingsPath: path,
		settings:     s,
		translator:   locale.New(s.Language),
		reloadCh:     make(chan struct{}, config.ChannelBufferSize),
	}
}

// Settings returns a copy of the active settings.
func (c *Controller) Settings() config.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *c.settings
}

// Translator returns the translator for the active language.
func (c *Controller) Translator() *locale.Translator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.translator
}

// LastResult returns the outcome of the most recent successful sync.
func (c *Controller) LastResult() (engine.Result, bool) {
	r := c.last.Load()
	if r == nil {
		return engine.Result{}, false
	}
	return *r, true
}

// Navigator returns the navigator built by the last successful sync, or nil.
func (c *Controller) Navigator() *engine.Navigator {
	return c.nav.Load()
}

// Run starts the server, performs an initial sync and keeps the calendar fresh
// until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	if err := c.reschedule(ctx); err != nil {
		return err
	}
	defer c.stopScheduler()

	var wg sync.WaitGroup
	serverErr := make(chan error, config.ChannelBufferSize)
	if c.Server != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Server.Start(ctx); err != nil {
				serverErr <- err
			}
		}()
	}

	if _, err := c.performSync(ctx); err != nil {
		log.Warn(config.MsgSyncFailed, config.LogKeyError, err)
	}

	var watcher *fsnotify.Watcher
	if c.SettingsPath != "" {
		w, err := c.watchSettings(&wg)
		if err != nil {
			slog.Warn(config.ErrWatcher,
				config.LogKeyComponent, config.CompWatcher,
				config.LogKeyFile, c.SettingsPath,
				config.LogKeyError, err)
		}
		watcher = w
	}

	log.Info(config.MsgWorkerStart, config.LogKeySchedule, c.Settings().Refresh)

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			break loop

		case err := <-serverErr:
			runErr = err
			break loop

		case <-c.reloadCh:
			c.reloadFromDisk(ctx)
		}
	}

	if watcher != nil {
		_ = watcher.Close()
	}
	wg.Wait()
	return runErr
}

// Sync performs one synchronization immediately.
func (c *Controller) Sync(ctx context.Context) (engine.Result, error) {
	return c.performSync(ctx)
}

// Reload validates s and makes it the active configuration.
// The scheduler is rebuilt when the refresh spec or timezone changes.
func (c *Controller) Reload(ctx context.Context, s *config.Settings) error {
	s.Normalize()
	if err := s.Validate(c.Clock.Now()); err != nil {
		return err
	}

	c.mu.Lock()
	old := c.settings
	c.settings = s
	if old.Language != s.Language {
		c.translator = locale.New(s.Language)
	}
	running := c.scheduler != nil
	c.mu.Unlock()

	if running && (old.Refresh != s.Refresh || old.Timezone != s.Timezone) {
		slog.Info(config.MsgUpdateSync,
			config.LogKeyComponent, config.CompWorker,
			config.LogKeyOld, old.Refresh,
			config.LogKeyNew, s.Refresh)
		if err := c.reschedule(ctx); err != nil {
			return err
		}
	}

	_, err := c.performSync(ctx)
	return err
}

// reloadFromDisk re-reads the settings file; invalid files are ignored.
func (c *Controller) reloadFromDisk(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWatcher, config.LogKeyFile, c.SettingsPath)
	log.Info(config.MsgSettingsReload)

	s, err := config.LoadSettings(c.SettingsPath)
	if err == nil {
		err = c.Reload(ctx, s)
	}
	if err != nil {
		log.Warn(config.MsgSettingsBad, config.LogKeyError, err)
	}
}

// reschedule replaces the cron scheduler with one built from the active settings.
// Besides the refresh spec, a daily job rebuilds the feed when the week rolls over.
func (c *Controller) reschedule(ctx context.Context) error {
	s := c.Settings()
	loc, err := s.Location()
	if err != nil {
		return err
	}

	job := func() {
		if _, err := c.performSync(ctx); err != nil {
			slog.Warn(config.MsgSyncFailed,
				config.LogKeyComponent, config.CompWorker,
				config.LogKeyError, err)
		}
	}

	sched := cron.New(cron.WithLocation(loc))
	for _, spec := range []string{s.Refresh, config.RolloverSchedule} {
		if _, err := sched.AddFunc(spec, job); err != nil {
			return fmt.Errorf("%s: %q: %w", config.ErrScheduler, spec, err)
		}
	}

	c.mu.Lock()
	old := c.scheduler
	c.scheduler = sched
	c.mu.Unlock()

	if old != nil {
		<-old.Stop().Done()
	}
	sched.Start()
	return nil
}

func (c *Controller) stopScheduler() {
	c.mu.Lock()
	sched := c.scheduler
	c.scheduler = nil
	c.mu.Unlock()

	if sched != nil {
		<-sched.Stop().Done()
	}
}

// watchSettings watches the settings directory, since editors and SaveSettings
// replace the file by rename rather than writing it in place.
func (c *Controller) watchSettings(wg *sync.WaitGroup) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	target := filepath.Clean(c.SettingsPath)
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return nil, err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				// Coalesce bursts of events into one pending reload.
				select {
				case c.reloadCh <- struct{}{}:
				default:
				}

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn(config.ErrWatcher,
					config.LogKeyComponent, config.CompWatcher,
					config.LogKeyError, err)
			}
		}
	}()
	return w, nil
}

// performSync executes the pipeline (Resolve -> Map -> Render) and publishes the result.
// A failed sync leaves the previously served feed and navigator in place.
func (c *Controller) performSync(ctx context.Context) (engine.Result, error) {
	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	s := c.Settings()
	tr := c.Translator()
	slog.Info(config.MsgSyncReq,
		config.LogKeyComponent, config.CompApp,
		config.LogKeyMode, s.Source.Mode)

	loc, err := s.Location()
	if err != nil {
		return engine.Result{}, err
	}

	gen := &engine.Generator{
		Clock:             c.Clock,
		Fetcher:           c.Fetcher,
		FormatWeek:        tr.WeekSummary,
		FormatAnniversary: tr.Anniversary,
		CalendarName:      tr.CalendarName(),
	}

	res, err := gen.RunSync(ctx, c.syncConfig(s, loc))
	if err != nil {
		slog.Error(config.MsgSyncFailed,
			config.LogKeyComponent, config.CompApp,
			config.LogKeyError, err)
		return engine.Result{}, err
	}

	nav := engine.NewNavigator(res.Person.Birthday, c.Clock, tr, loc)
	if c.Parser != nil {
		nav.Parser = c.Parser
	}

	c.last.Store(&res)
	c.nav.Store(nav)
	if c.Server != nil {
		c.Server.Update(res.ICS)
		c.Server.SetNavigator(nav)
	}
	return res, nil
}

// syncConfig assembles the engine configuration from settings and the keyring.
func (c *Controller) syncConfig(s config.Settings, loc *time.Location) engine.SyncConfig {
	cfg := engine.SyncConfig{
		Mode:        s.Source.Mode,
		Birthday:    s.Birthday,
		LocalPath:   s.Source.LocalPath,
		WebURL:      s.Source.WebURL,
		WebUser:     s.Source.WebUser,
		ContactName: s.Source.ContactName,
		Location:    loc,
	}

	if cfg.Mode == config.SourceModeWeb && cfg.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompApp)
		}
	}
	return cfg
}

// StorePassword saves the CardDAV password for user in the OS keyring.
func StorePassword(user, pass string) error {
	if user == "" {
		return errors.New(config.ErrUserEmpty)
	}
	if pass == "" {
		return errors.New(config.ErrPasswordEmpty)
	}
	if err := keyring.Set(config.KeyringService, user, pass); err != nil {
		return fmt.Errorf("%s: %w", config.ErrKeyringSet, err)
	}
	slog.Info(config.MsgPassStored,
		config.LogKeyComponent, config.CompApp,
		config.LogKeyUser, user)
	return nil
}
