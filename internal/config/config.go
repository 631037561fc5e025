package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Lifecal/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Lifecal"
	AppID             = "com.github.tartampluch.go-lifecal"
	KeyringService    = "com.github.tartampluch.go-lifecal"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	SettingsFileName  = "settings.yaml"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and the settings file.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagConfig       = "config"
	FlagFormat       = "format"
	FlagDescDebug    = "Enable debug logging to stderr"
	FlagDescConfig   = "Path to the settings file"
	FlagDescFormat   = "Output format (text|json)"
	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"

	FormatText = "text"
	FormatJSON = "json"

	GridCellElapsed   = "#"
	GridCellRemaining = "."
	GridCellCurrent   = "@"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWeekSummary     = "week_summary"      // Requires Year, Week
	TKeyWeekRange       = "week_range"        // Requires Start, End
	TKeyAnniversary     = "anniversary"       // Requires Ordinal
	TKeyBirth           = "birth"             // Anniversary 0
	TKeyNotOnCalendar   = "not_on_calendar"   // Requires Date
	TKeyUnableToFind    = "unable_to_find"    // No data
	TKeyElapsedStatus   = "elapsed_status"    // Requires Count, Total; plural on Count
	TKeyWeekElapsed     = "week_elapsed"      // No data
	TKeyWeekCurrent     = "week_current"      // No data
	TKeyWeekAhead       = "week_ahead"        // No data
	TKeyCalendarName    = "calendar_name"     // No data
	TKeyFormatDateShort = "format_date_short" // Go layout for dates
	TKeyFormatDateLong  = "format_date_long"  // Go layout for dates
)

// TranslationKeys lists every key a locale file must provide.
var TranslationKeys = []string{
	TKeyWeekSummary,
	TKeyWeekRange,
	TKeyAnniversary,
	TKeyBirth,
	TKeyNotOnCalendar,
	TKeyUnableToFind,
	TKeyElapsedStatus,
	TKeyWeekElapsed,
	TKeyWeekCurrent,
	TKeyWeekAhead,
	TKeyCalendarName,
	TKeyFormatDateShort,
	TKeyFormatDateLong,
}

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeManual = "manual"
	SourceModeWeb    = "web"
	SourceModeLocal  = "local"
	DefaultPort      = "18081"
	DefaultRefresh   = "@every 1h"
	RolloverSchedule = "@daily"
	DefaultLanguage  = "en"
	DefaultTimezone  = "Local"
	UIDSalt          = "go-lifecal-v1-" // Salt for deterministic UID generation
	BirthdayLayout   = "2006-01-02"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Lifecal//Engine//EN"
	ICalCalName = "Life Calendar"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "golifecal"
	ICalTransp  = "TRANSPARENT"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDescription = "DESCRIPTION"
	PropDTStart     = "DTSTART"
	PropDTEnd       = "DTEND"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropTransp      = "TRANSP"
	PropCategories  = "CATEGORIES"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	CategoryWeek        = "WEEK"
	CategoryAnniversary = "ANNIVERSARY"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%s@%s"
	FormatUIDWeek   = "y%dw%d"
	FormatUIDAnniv  = "anniv%d"

	// FormatWeekDesc describes a week event: start, end and length in days.
	FormatWeekDesc = "%s - %s (%d days)"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	RouteRoot     = "/"
	RouteICS      = "/calendar.ics"
	RouteAPIGoto  = "/api/goto"
	RouteAPIWeek  = "/api/week"
	RouteAPIGrid  = "/api/grid"
	QueryParamQ   = "q"
	QueryParamYr  = "year"
	QueryParamWk  = "week"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"
	CacheControlNoStore = "no-store"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrBirthdayMissing  = "configuration error: birthday is not set"
	ErrBirthdayInvalid  = "configuration error: birthday must be YYYY-MM-DD"
	ErrBirthdayFuture   = "configuration error: birthday is in the future"
	ErrLanguageInvalid  = "configuration error: unknown language tag"
	ErrTimezoneInvalid  = "configuration error: unknown timezone"
	ErrRefreshInvalid   = "configuration error: invalid refresh schedule"
	ErrSettingsPath     = "settings path is empty"
	ErrSettingsRead     = "failed to read settings file"
	ErrSettingsDecode   = "failed to decode settings file"
	ErrSettingsWrite    = "failed to write settings file"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrNoBirthdayCard   = "no vCard with a full birthday found"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrUnparseableDate  = "unable to find date"
	ErrNoBirthday       = "birthday is not known yet"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrConfigDir        = "could not determine user config dir"
	ErrCreateDir        = "could not create app directory"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrKeyringSet       = "failed to store password in keyring"
	ErrPasswordRead     = "failed to read password"
	ErrPasswordEmpty    = "password is empty"
	ErrUserEmpty        = "username is empty"
	ErrWatcher          = "failed to watch settings file"
	ErrScheduler        = "failed to schedule refresh"
	ErrInvalidYearWeek  = "year and week must be integers"
	ErrOffGridWeek      = "year must be 0-%d and week 1-%d"
	ErrInvalidFormat    = "invalid output format"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackWeekSummary = "Week %d of year %d"
	FallbackWeekRange   = "%s - %s"
	FallbackAnniversary = "%s birthday"
	FallbackBirth       = "Birth"
	FallbackNotOnCal    = "%s (not on the calendar!)"
	FallbackElapsed     = "%d of %d weeks lived"

	MsgSyncStarted    = "Synchronization started..."
	MsgSyncFailed     = "Synchronization failed. Check logs."
	MsgSyncReq        = "Sync requested"
	MsgWorkerStart    = "Background worker started"
	MsgWorkerStop     = "Worker stopping due to context cancellation"
	MsgUpdateSync     = "Updating sync schedule"
	MsgSettingsReload = "Settings file changed, reloading"
	MsgSettingsBad    = "Ignoring invalid settings"
	MsgSettingsNew    = "Created default settings file"
	MsgAppStop        = "Application stopped gracefully"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgBirthdayFound  = "Birthday resolved"
	MsgGenSuccess     = "Calendar generation successful"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgNavUpdated     = "Navigator updated"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgPassStored     = "Password stored in keyring"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgParseRejected  = "Free-text date rejected"
	MsgJump           = "Quick navigation resolved"
	MsgPasswordPrompt = "Password: "
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeySchedule  = "schedule"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyEvents    = "events"
	LogKeyCurrent   = "current"
	LogKeyElapsed   = "elapsed_weeks"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyName      = "name"
	LogKeyDuration  = "duration_ms"
	LogKeyOnGrid    = "on_grid"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompApp      = "app"
	CompEngine   = "engine"
	CompNav      = "navigator"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompWatcher  = "watcher"
	CompMain     = "main"
	CompCLI      = "cli"
	CompI18n     = "i18n"
	CompFreeform = "freeform"
)
