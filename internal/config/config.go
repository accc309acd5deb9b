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
var UserAgent = "LifeReel/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "LifeReel"
	AppID          = "com.github.tartampluch.lifereel"
	KeyringService = "com.github.tartampluch.lifereel"
	LogFileName    = "app.log"
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
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags, Commands & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagConfig       = "config"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescConfig   = "Path to a YAML configuration file"
	MsgVersionOutput = "%s version %s (%s/%s)\n"

	CmdServe = "serve"
	CmdGroup = "group"

	// Flags of the "group" command.
	FlagBirth        = "birth"
	FlagTracking     = "tracking"
	FlagMonths       = "months"
	FlagPhotos       = "photos"
	FlagLang         = "lang"
	FlagShowEmpty    = "show-empty"
	FlagStrict       = "strict"
	FlagSort         = "sort"
	FlagDescBirth    = "Birth date (YYYY-MM-DD)"
	FlagDescTracking = "Pregnancy tracking: none, trimesters or weeks (default: suggested from the birth date)"
	FlagDescMonths   = "Months shown before years: none, 12 or 24 (default: suggested from the birth date)"
	FlagDescPhotos   = "Path to a JSON photo manifest, '-' for stdin"
	FlagDescLang     = "Language of the stack labels"
	FlagDescShow     = "Include empty stacks"
	FlagDescStrict   = "Group by strict age buckets, ignoring the months display policy"
	FlagDescSort     = "Photo order inside a stack: oldestToLatest or latestToOldest"
	StdinPath        = "-"
	FormatStackLine  = "%s\t%d\n"
	FormatPhotoLine  = "\t%s\t%s\n"
	MsgUsage         = "usage: %s [flags] [serve|group] [command flags]\n"
)

// -----------------------------------------------------------------------------
// Configuration Sources
// -----------------------------------------------------------------------------

const (
	// EnvConfigPath names the env var holding the YAML configuration path.
	EnvConfigPath = "LIFEREEL_CONFIG"

	// DefaultConfigPath is read when present and EnvConfigPath is unset.
	DefaultConfigPath = "./lifereel.yaml"
)

// SupportedLanguages defines the list of available label languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyBucketPregnancy  = "bucket_pregnancy"
	TKeyBucketBirthMonth = "bucket_birth_month"
	TKeyBucketMonth      = "bucket_month" // Requires Count
	TKeyBucketYear       = "bucket_year"  // Requires Count
	TKeyTrimester        = "age_trimester"
	TKeyPregnancyWeek    = "age_pregnancy_week"
	TKeyAllPhotos        = "range_all_photos"
	TKeyEvtMilestone     = "event_milestone" // Requires Name, Label
	TKeyEvtBirth         = "event_birth"     // Requires Name
	TKeyCalName          = "calendar_name"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb      = "web"
	SourceModeLocal    = "local"
	DefaultPort        = 18080
	DefaultBindAddr    = "127.0.0.1"
	DefaultRefresh     = 60 * time.Minute
	DefaultLanguage    = "en"
	DefaultMemoSize    = 4096
	DefaultMaxWeeks    = 42
	UIDSalt            = "lifereel-v1-" // Salt for deterministic UID generation
	MaxRequestPhotos   = 100000
	MaxRequestBodySize = 32 * 1024 * 1024 // 32MB
)

// ISO8601 duration pattern accepted for reminders (e.g. "-P1D", "P2H", "-P30M").
const ReminderPattern = `^-?PT?\d+[DHM]$`

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//LifeReel//Milestones//EN"
	ICalCalName   = "Milestones"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "lifereel"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropCategories  = "CATEGORIES"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"

	// Per-contact tracking preferences stored as vCard extensions.
	VCardPregnancy = "X-LIFEREEL-PREGNANCY"
	VCardMonths    = "X-LIFEREEL-MONTHS"
	VCardEmpty     = "X-LIFEREEL-SHOW-EMPTY"
	VCardSort      = "X-LIFEREEL-SORT"
	VCardReminder  = "X-LIFEREEL-REMINDER"

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

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%s@%s"
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
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	RouteRoot     = "/"
	RouteCalendar = "/calendar.ics"
	RoutePeople   = "/people"
	RouteRanges   = "/people/{id}/ranges"
	RouteGroups   = "/people/{id}/groups"
	RouteMetrics  = "/metrics"
	URLParamID    = "id"
	QueryView     = "view"
	QueryLang     = "lang"
	ViewStrict    = "strict"
	ViewStacks    = "stacks"
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
	MimeJSON            = "application/json"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty  = "configuration error: local path is empty"
	ErrWebURLEmpty     = "configuration error: web URL is empty"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrModeUnsupport   = "configuration error: unsupported source mode"
	ErrPortRange       = "configuration error: server port must be between 1 and 65535"
	ErrIntervalInvalid = "configuration error: refresh interval must be positive"
	ErrReminderInvalid = "configuration error: reminder must be an ISO8601 duration such as -P1D"
	ErrLangUnsupported = "configuration error: unsupported language"
	ErrMemoSize        = "configuration error: memo size must be positive"
	ErrConfigRead      = "failed to read configuration"
	ErrConfigFile      = "configuration file not accessible"
	ErrConfigValidate  = "invalid configuration"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrVCardParse      = "failed to parse vCard stream"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrDateParse       = "unable to parse date"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrManifestRead    = "failed to read photo manifest"
	ErrManifestDecode  = "failed to decode photo manifest"
	ErrBirthRequired   = "birth date is required"
	ErrUnknownCommand  = "unknown command"
	ErrMemoInit        = "failed to initialize age memo"
	ErrSyncFailed      = "synchronization failed"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgBadID        = "invalid person id"
	HTTPMsgNotFound     = "person not found"
	HTTPMsgBadBody      = "invalid request body"
	HTTPMsgTooMany      = "too many photos"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackMilestone = "%s: %s"
	FallbackBirth     = "%s: Birth"
	FallbackTrimester = "Trimester %d"
	FallbackWeek      = "%d weeks before birth"
	FallbackAllPhotos = "All Photos"
	FallbackName      = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgSyncStarted   = "Synchronization started"
	MsgSyncFinished  = "Synchronization finished"
	MsgWorkerStart   = "Background worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgAppStop       = "Application stopped gracefully"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgGenSuccess    = "Milestone calendar generated"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Snapshot updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgMilestone     = "Milestone found today"
	MsgGrouped       = "Photos grouped"
	MsgConfigLoaded  = "Configuration loaded"
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
	LogKeyAddr      = "addr"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "people_found"
	LogKeyToday     = "milestones_today"
	LogKeyEvents    = "events"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyGroups    = "groups"
	LogKeyExcluded  = "excluded"
	LogKeyName      = "name"
	LogKeyPerson    = "person_id"
	LogKeyDuration  = "duration_ms"

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
	CompEngine  = "engine"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
	CompConfig  = "config"
	CompGroup   = "group"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricNamespace     = "lifereel"
	MetricSyncs         = "syncs_total"
	MetricSyncFailures  = "sync_failures_total"
	MetricPhotos        = "photos_classified_total"
	MetricExcluded      = "photos_excluded_total"
	MetricPeople        = "people_tracked"
	MetricSyncDuration  = "sync_duration_seconds"
	MetricLabelKind     = "kind"
	MetricHelpSyncs     = "Total number of roster synchronizations"
	MetricHelpSyncFails = "Total number of failed roster synchronizations"
	MetricHelpPhotos    = "Total number of photos placed into a stack"
	MetricHelpExcluded  = "Total number of pre-birth photos hidden because pregnancy tracking is off"
	MetricHelpPeople    = "Number of people in the current roster"

	MetricHelpSyncDuration = "Duration of roster synchronizations"
)
