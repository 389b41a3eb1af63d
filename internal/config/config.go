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
var UserAgent = "Sioux-Menu/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Sioux Menu"
	AppID             = "be.sioux.menu"
	KeyringService    = "be.sioux.menu"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	IconFile          = "Icon.png"
	// PrefLastRun records the version of the last tray start.
	PrefLastRun = "last_run_version"
	// LocaleFilePattern locates the embedded go-i18n message file of a language.
	LocaleFilePattern = "locales/active.%s.json"

	// ConfigFileName is the INI file read by IniSource.
	ConfigFileName = "config.ini"
	// ConfigDBName is the SQLite key/value store read by SQLiteSource.
	ConfigDBName = "config.db"
	// LayoutFileName is the optional YAML menu layout.
	LayoutFileName = "menu.yaml"
	// EnvPrefix prefixes environment overrides of the menu layout.
	EnvPrefix = "SIOUX_"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs and snapshots, which contain colleague names.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	CmdRoot     = "sioux-menu"
	CmdMenu     = "menu"
	CmdTray     = "tray"
	CmdServe    = "serve"
	CmdSnapshot = "snapshot"
	CmdWrite    = "write"
	CmdShow     = "show"
	CmdLogin    = "login"
	CmdConfig   = "config"
	CmdImport   = "import"

	FlagDebug       = "debug"
	FlagConfigDir   = "config-dir"
	FlagConfigStore = "config-store"
	FlagData        = "data"
	FlagLayout      = "layout"
	FlagSnapshotDir = "snapshot-dir"
	FlagPort        = "port"
	FlagVCard       = "vcard"

	FlagDescDebug       = "Enable debug logging"
	FlagDescConfigDir   = "Directory holding config.ini / config.db"
	FlagDescConfigStore = "Configuration store: ini or sqlite"
	FlagDescData        = "Data input: https (live portal) or json (snapshot)"
	FlagDescLayout      = "Path to the menu layout YAML file"
	FlagDescSnapshotDir = "Directory holding the JSON snapshot"
	FlagDescPort        = "Port of the local calendar feed server"
	FlagDescVCard       = "Optional vCard address book used for colleague ages"

	DescRoot     = "Sioux intranet events and birthdays for the menu bar"
	DescMenu     = "Print the menu in BitBar/xbar text format"
	DescTray     = "Run the system tray application"
	DescServe    = "Serve the calendar feed and the text menu on localhost"
	DescSnapshot = "Manage the offline JSON snapshot"
	DescWrite    = "Scrape the portal and write the snapshot"
	DescShow     = "List the records of the snapshot"
	DescLogin    = "Store the intranet password in the OS keyring"
	DescConfig   = "Manage the configuration store"
	DescImport   = "Copy config.ini into the SQLite store"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
	PromptPassword   = "Intranet password for %s: "
	OutImported      = "Imported %d values into %s\n"
	OutSnapshotHead  = "%d events, %d birthdays in %s\n"
	OutEventRow      = "event\t%s\t%s\t%s\t%s\n"
	OutBirthdayRow   = "birthday\t%s\t%s\t%s\t%s\n"
	OutNoDate        = "-"
)

// Configuration stores and data inputs selectable on the command line.
const (
	StoreINI    = "ini"
	StoreSQLite = "sqlite"
	DataHTTPS   = "https"
	DataJSON    = "json"
)

// -----------------------------------------------------------------------------
// Configuration Schema (section / key names of config.ini)
// -----------------------------------------------------------------------------

const (
	SectionGeneral   = "GENERAL"
	SectionURLs      = "URLS"
	SectionAuth      = "AUTH"
	SectionEvents    = "EVENTS"
	SectionParseEv   = "PARSE_EV"
	SectionParseBday = "PARSE_BDAY"
	SectionDetails   = "P_D"

	KeyLocale = "LOCALE"

	KeyDomain           = "IIS_DOMAIN"
	KeyBase             = "BASE"
	KeyEventsExt        = "EVENTS_EXT"
	KeyEventsOverviewEx = "EVENTS_OVERVIEW_EXT"
	KeyBdayExt          = "BDAY_EXT"

	KeyUsername = "USERNAME"
	KeyPassword = "PASSWORD"

	KeySocialPartner   = "SOCIAL_PARTNER"
	KeySocialColleague = "SOCIAL_COLLEAGUE"
	KeyPowwow          = "POWWOW"
	KeyTraining        = "TRAINING"
	KeyExpGroup        = "EXP_GROUP"
	KeyPresentation    = "PRESENTATION"

	KeyElement       = "ELEMENT"
	KeyArg           = "ARG"
	KeyValueDate     = "VALUE_DATE"
	KeyValueTitle    = "VALUE_TITLE"
	KeyValueLocation = "VALUE_LOCATION"
	KeyValueCategory = "VALUE_CATEGORY"

	KeyValueOverall   = "VALUE_OVERALL"
	KeyValueSeparate  = "VALUE_SEPARATE"
	KeyTitleToday     = "TITLE_TODAY"
	KeyTitleFuture    = "TITLE_FUTURE"
	KeyTitlePast      = "TITLE_PAST"
	KeyRoleColleague  = "ROLE_COLLEGUE"
	KeyRoleChild      = "ROLE_CHILD"
	KeyRolePartner    = "ROLE_PARTNER"

	KeyTab         = "TAB"
	KeyTabArg      = "TAB_ARG"
	KeyTabValue    = "TAB_VALUE"
	KeyRecElement  = "REC_ELEMENT"
	KeyRecArg      = "REC_ARG"
	KeyRecValue    = "REC_VALUE"
	KeyDateElement = "DATE_ELEMENT"
	KeyDateArg     = "DATE_ARG"
	KeyDateValue   = "DATE_VALUE"
)

// Schema lists every key a configuration Source must provide.
// The password is read from the secrets store, not from this schema.
var Schema = map[string][]string{
	SectionGeneral: {KeyLocale},
	SectionURLs:    {KeyDomain, KeyBase, KeyEventsExt, KeyEventsOverviewEx, KeyBdayExt},
	SectionAuth:    {KeyUsername},
	SectionEvents:  {KeySocialPartner, KeySocialColleague, KeyPowwow, KeyTraining, KeyExpGroup, KeyPresentation},
	SectionParseEv: {KeyElement, KeyArg, KeyValueDate, KeyValueTitle, KeyValueLocation, KeyValueCategory},
	SectionParseBday: {KeyElement, KeyArg, KeyValueOverall, KeyValueSeparate,
		KeyTitleToday, KeyTitleFuture, KeyTitlePast, KeyRoleColleague, KeyRoleChild, KeyRolePartner},
	SectionDetails: {KeyTab, KeyTabArg, KeyTabValue, KeyRecElement, KeyRecArg, KeyRecValue,
		KeyDateElement, KeyDateArg, KeyDateValue},
}

// SchemaSections returns the schema sections in a stable order.
func SchemaSections() []string {
	return []string{SectionGeneral, SectionURLs, SectionAuth, SectionEvents, SectionParseEv, SectionParseBday, SectionDetails}
}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyMenuRefresh    = "menu_refresh"
	TKeyMenuOverview   = "menu_overview"
	TKeyMenuIntranet   = "menu_intranet"
	TKeyMenuWebmail    = "menu_webmail"
	TKeyTrayLoading    = "tray_loading"
	TKeyTrayError      = "tray_error"
	TKeyTrayStatus     = "tray_status"      // Requires Count > 0
	TKeyTrayStatusZero = "tray_status_zero" // Explicit key for 0
	TKeyNotifError     = "notif_err_refresh"
	TKeyAgeUnknown     = "age_unknown"
	TKeyBdayLine       = "bday_line"     // Requires Name, Date
	TKeyBdayLineAge    = "bday_line_age" // Requires Name, Date, Age
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort        = "18081"
	DefaultLanguage    = "en"
	DefaultRefresh     = 60 * time.Minute
	// MinRefresh is the shortest interval the scheduler accepts.
	MinRefresh         = time.Second
	DefaultBdayLimit   = 2
	DefaultWebmailURL  = "http://webmail.sioux.eu"
	DefaultLeapYear    = 2000 // Leap year used to validate --02-29 style dates
	UIDSalt            = "sioux-menu-v1-"
	EventsSnapshotFile = "sioux_events.json"
	BdaysSnapshotFile  = "sioux_birthdays.json"
	SnapshotIndent     = "    "
	CronEveryPrefix    = "@every "
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "nl"}

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Sioux Menu//Feed//EN"
	ICalCalName = "Sioux"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "siouxmenu"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropLocation   = "LOCATION"
	PropCategories = "CATEGORIES"
	PropURL        = "URL"
	PropDTStart    = "DTSTART"
	PropDTEnd      = "DTEND"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"

	DefaultICalRefresh = 1 * time.Hour

	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & Patterns
// -----------------------------------------------------------------------------

const (
	DateFormatISO     = "2006-01-02"
	DateFormatDisplay = "02/01/2006"
	DateFormatDashed  = "02-01-2006"
	DateFormatBasic   = "20060102"
	DateRangeSep      = " - "

	// PatternEventDate matches `DD Mon 'YY`.
	PatternEventDate = `\b(\d{2})\s+(\p{L}+)\.?\s+'(\d{2})`
	// PatternBdayGroup captures the first parenthesised group of a birthday entry.
	PatternBdayGroup = `\(([^)]*)\)`
	// PatternDayMonth matches `DD Mon` (digit first).
	PatternDayMonth = `^(\d{1,2})\s+(\p{L}+)\.?$`
	// PatternMonthDay matches the swapped `Mon DD`.
	PatternMonthDay = `^(\p{L}+)\.?\s+(\d{1,2})$`
	// PatternLongDate matches `DD Month YYYY` as shown on personal detail pages.
	PatternLongDate = `(\d{1,2})\s+(\p{L}+)\.?\s+(\d{4})`
	// PatternBdayName captures the name in front of the date group.
	PatternBdayName = `(.+) \(`

	TwoDigitYearBase = 2000

	FormatBdaySummary    = "Birthday: %s"
	FormatBdaySummaryAge = "Birthday: %s (%d)"

	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s@%s"
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
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB, portal pages are small
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteCalendar       = "/sioux.ics"
	RouteMenu           = "/menu.txt"
	AddrSeparator       = ":"
	DomainUserSep       = `\`
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
	MimeTextPlain       = "text/plain; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInitializing = "Feed is initializing, please retry"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrMissingKey       = "missing configuration value"
	ErrOpenConfig       = "failed to open configuration"
	ErrInvalidLocator   = "invalid field locator"
	ErrInvalidBaseURL   = "base URL must be absolute http(s)"
	ErrUnknownStore     = "unknown configuration store"
	ErrUnknownData      = "unknown data input"
	ErrLayoutLoad       = "failed to load menu layout"
	ErrLayoutInvalid    = "invalid menu layout"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"
	ErrSnapshotRead     = "failed to read snapshot"
	ErrSnapshotWrite    = "failed to write snapshot"
	ErrReadPassword     = "failed to read password"
	ErrStorePassword    = "failed to store password"
	ErrCronSchedule     = "failed to schedule refresh"
)

// -----------------------------------------------------------------------------
// Fallbacks & Menu Text
// -----------------------------------------------------------------------------

const (
	FallbackTrayError   = "Sioux: refresh failed"
	FallbackTrayDefault = "Sioux (%d today)"
	FallbackAgeUnknown  = "unknown"
	TitleRefreshError   = "Refresh Error"

	MenuSeparator      = "---"
	MenuOverviewLabel  = "View all events"
	MenuIntranetLabel  = "Visit Intranet"
	MenuWebmailLabel   = "Visit Webmail"
	MenuRefreshFormat  = "Force refresh (current interval: %s)"
	MenuSectionStyle   = "font=HelveticaNeue size=10"
	MenuTitleStyle     = "color=black font=HelveticaNeue-Bold size=13 href=%s"
	MenuDetailStyle    = "trim=false font=HelveticaNeue-Italic"
	MenuBdayStyle      = "trim=false font=HelveticaNeue"
	MenuRefreshStyle   = "size=8 refresh=true"
	MenuHrefStyle      = "href=%s"
	MenuIconFormat     = "| templateImage=%s"
	MenuLineFormat     = "%s | %s\n"
	MenuDetailIndent   = "     "
	MenuBdayLineFormat = "%s - %s"
	MenuAgeFormat      = " (%s)"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStop        = "Application stopped gracefully"
	MsgAppStarting    = "Starting application"
	MsgCtxCancel      = "Context cancelled, shutting down UI"
	MsgFetchStart     = "Fetching portal page"
	MsgFetchDone      = "Portal page downloaded"
	MsgFetchStatus    = "Portal returned error status"
	MsgExtracted      = "Records extracted"
	MsgCacheHit       = "Serving raw records from process cache"
	MsgFiltered       = "Records filtered"
	MsgAgeLookup      = "Looking up colleague age"
	MsgConfigLoaded   = "Configuration loaded"
	MsgConfigImported = "Configuration imported"
	MsgLayoutLoaded   = "Menu layout loaded"
	MsgSnapshotSaved  = "Snapshot written"
	MsgSnapshotLoaded = "Snapshot loaded"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Feed cache updated"
	MsgRefreshReq     = "Refresh requested"
	MsgRefreshFailed  = "Refresh failed"
	MsgWorkerStart    = "Background refresh scheduled"
	MsgWorkerStop     = "Background refresh stopped"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassStored     = "Password stored in keyring"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgOpenURL        = "Opening URL"
	MsgCalendarBuilt  = "Calendar generated"
	MsgMenuBuilt      = "Menu assembled"
	MsgInputsWired    = "Inputs wired"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyLength    = "content_length"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyStore     = "store"
	LogKeyData      = "data"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyKind      = "kind"
	LogKeyCount     = "count"
	LogKeyKept      = "kept"
	LogKeyName      = "name"
	LogKeyManual    = "manual"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"
	LogKeySkipped   = "skipped"
	LogKeyCommand   = "command"

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

// Record kinds used in log lines.
const (
	KindEvents    = "events"
	KindBirthdays = "birthdays"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI       = "ui"
	CompEngine   = "engine"
	CompPortal   = "portal"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompMain     = "main"
	CompI18n     = "i18n"
	CompConfig   = "config"
	CompSnapshot = "snapshot"
	CompMenu     = "menu"
)
