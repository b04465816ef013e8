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

// UserAgent identifies the HTTP client used for vCard imports.
var UserAgent = "Go-Birthday-Reminders/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Birthday Reminders"
	AppID             = "com.github.tartampluch.go-birthday-reminders"
	KeyringService    = "com.github.tartampluch.go-birthday-reminders"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	DBFileName        = "birthdays.db"
	SQLiteDriver      = "sqlite3"
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
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1

	// QueueBufferSize is the capacity of the native timer queue output channel.
	QueueBufferSize = 16
)

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	CmdRoot        = "go-birthday"
	CmdRootShort   = "Birthday reminders with scheduled notifications"
	CmdRun         = "run"
	CmdRunShort    = "Start the tray application and deliver notifications"
	CmdList        = "list"
	CmdListShort   = "List upcoming birthdays"
	CmdAdd         = "add"
	CmdAddShort    = "Add a birthday, optionally with a reminder message"
	CmdDelete      = "delete [id]"
	CmdDeleteShort = "Delete a birthday and cancel its notifications"
	CmdPending     = "pending"
	CmdPendingShrt = "Show the next notifications that would fire"
	CmdImport      = "import"
	CmdImportShort = "Import birthdays from a vCard file or CardDAV URL"
	CmdCreds       = "credentials"
	CmdCredsShort  = "Manage CardDAV credentials in the OS keyring"
	CmdCredsSet    = "set"
	CmdCredsSetSh  = "Store the password for a CardDAV user (read from stdin)"
	CmdCats        = "categories"
	CmdCatsShort   = "List and edit birthday categories"
	CmdCatsAdd     = "add"
	CmdCatsAddSh   = "Create a custom category"
	CmdCatsRename  = "rename [id]"
	CmdCatsRenSh   = "Override the name, icon or color of a category"
	CmdCatsDelete  = "delete [id]"
	CmdCatsDelSh   = "Delete a category, reassigning or orphaning its birthdays"
	CmdCatsRestore = "restore [id]"
	CmdCatsResSh   = "Restore a deleted category"
	CmdCatsOrphans = "orphans"
	CmdCatsOrphSh  = "List birthdays whose category no longer exists"
	CmdReschedule  = "reschedule"
	CmdReschedSh   = "Cancel and rebuild every scheduled notification"

	FlagDB       = "db"
	FlagDebug    = "debug"
	FlagName     = "name"
	FlagDate     = "date"
	FlagCategory = "category"
	FlagNotes    = "notes"
	FlagTitle    = "title"
	FlagMessage  = "message"
	FlagAt       = "at"
	FlagFile     = "file"
	FlagURL      = "url"
	FlagUser     = "user"
	FlagIcon     = "icon"
	FlagColor    = "color"
	FlagReassign = "reassign"
	FlagOrphan   = "orphan"
	FlagLimit    = "limit"
	FlagLang     = "lang"

	FlagDescDB       = "Path to the birthday database"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescName     = "Display name"
	FlagDescDate     = "Birth date (YYYY-MM-DD)"
	FlagDescCategory = "Category id"
	FlagDescNotes    = "Free-form notes"
	FlagDescTitle    = "Notification title template"
	FlagDescMessage  = "Notification body template ({name}, {age}, {zodiac})"
	FlagDescAt       = "Time of day for the reminder (HH:MM)"
	FlagDescFile     = "Local .vcf file"
	FlagDescURL      = "CardDAV or WebDAV URL"
	FlagDescUser     = "CardDAV username (password read from keyring)"
	FlagDescIcon     = "Category icon"
	FlagDescColor    = "Category color (#rrggbb)"
	FlagDescReassign = "Move affected birthdays to this category id"
	FlagDescOrphan   = "Delete without touching affected birthdays"
	FlagDescLimit    = "Maximum number of rows (0 = all)"
	FlagDescLang     = "Output language (en, fr)"

	OutAdded            = "Added %s (%s)\n"
	OutDeleted          = "Deleted %s\n"
	OutRescheduled      = "%d notifications scheduled (%s mode)\n"
	OutCredsSaved       = "Password stored for %s\n"
	OutCategoryAdded    = "Category %s created\n"
	OutCategorySaved    = "Category %s updated\n"
	OutCategoryRestored = "Category %s restored\n"
	OutNoBirthdays      = "No birthdays yet. Use 'go-birthday add' to create one."
	OutNoOrphans        = "Every birthday has a category."
	OutNoPending        = "Nothing scheduled."
	OutPasswordPrompt   = "Password: "

	MsgVersionOutput = "{{.Name}} version {{.Version}}\n"
)

// -----------------------------------------------------------------------------
// Preferences (desktop shell)
// -----------------------------------------------------------------------------

const (
	PrefLanguage        = "language"
	PrefServerPort      = "server_port"
	PrefDeliveryMode    = "delivery_mode"
	PrefCalendarSync    = "calendar_sync"
	PrefNotifPermission = "notif_permission"
	PrefLastRun         = "last_run_version"
	PrefSourceMode      = "source_mode"
	PrefCardDAVURL      = "carddav_url"
	PrefUsername        = "username"
	PrefLocalPath       = "local_path"

	DeliveryModeAuto   = "auto"
	DeliveryModeNative = "native"
	DeliveryModePoll   = "poll"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyTrayStatus       = "tray_status"      // Requires Count > 0
	TKeyTrayStatusZero   = "tray_status_zero" // Explicit key for 0
	TKeyMenuCheckNow     = "menu_check_now"
	TKeyWinUpcoming      = "win_upcoming"
	TKeyMenuImport       = "menu_import"
	TKeyMenuSettings     = "menu_settings"
	TKeyWinSettings      = "win_settings"
	TKeyLblGeneral       = "lbl_general"
	TKeyLblLanguage      = "lbl_language"
	TKeyLblDelivery      = "lbl_delivery"
	TKeyHelpRestart      = "help_restart"
	TKeyDeliveryAuto     = "delivery_auto"
	TKeyDeliveryNative   = "delivery_native"
	TKeyDeliveryPoll     = "delivery_poll"
	TKeyLblPort          = "lbl_port"
	TKeyLblCalendar      = "lbl_calendar"
	TKeyLblNotifications = "lbl_notifications"
	TKeyLblSource        = "lbl_source"
	TKeyModeCardDAV      = "mode_carddav"
	TKeyModeLocal        = "mode_local"
	TKeyLblURL           = "lbl_url"
	TKeyHelpURL          = "help_url"
	TKeyLblUser          = "lbl_user"
	TKeyLblPass          = "lbl_pass"
	TKeyBtnBrowse        = "btn_browse"
	TKeyBtnSave          = "btn_save"
	TKeyBtnCancel        = "btn_cancel"
	TKeyLblFooter        = "lbl_footer" // Requires Version
	TKeyErrPortReq       = "err_port_required"
	TKeyErrPortNum       = "err_port_number"
	TKeyErrPortRange     = "err_port_range"
	TKeyNotifImportStart = "notif_import_start"
	TKeyNotifImportError = "notif_import_error"
	TKeyNotifImportAuth  = "notif_import_auth"
	TKeyUncategorized    = "uncategorized"
	TKeyEvtSummary       = "event_summary" // Requires Name
	TKeyColName          = "col_name"
	TKeyColDate          = "col_date"
	TKeyColDays          = "col_days"
	TKeyColAge           = "col_age"
	TKeyColCategory      = "col_category"
	TKeyColTitle         = "col_title"
	TKeyColFireAt        = "col_fire_at"
	TKeyColID            = "col_id"
	TKeyColCount         = "col_count"
	TKeyImportResult     = "import_result"    // Requires Imported, Duplicates, Skipped
	TKeyDeleteBlocked    = "delete_blocked"   // Requires Count
	TKeyDeleteCompleted  = "delete_completed" // Requires ID
)

// -----------------------------------------------------------------------------
// UI Layout
// -----------------------------------------------------------------------------

const (
	UpcomingWinWidth  = 560
	UpcomingWinHeight = 420

	// Upcoming table column indexes.
	ColIDName       = 0
	ColIDDate       = 1
	ColIDAge        = 2
	ColIDCategory   = 3
	UpcomingColumns = 4

	ColWidthName     = 200
	ColWidthDate     = 110
	ColWidthAge      = 80
	ColWidthCategory = 140

	SortIconAsc      = " ▲"
	SortIconDesc     = " ▼"
	TablePlaceholder = "Template"
	AgeBirth         = "(birth)"
	FormatAgeChange  = "%d → %d"

	SettingsWindowWidth = 480
	LayoutColumnsDouble = 2
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb     = "web"
	SourceModeLocal   = "local"
	DefaultPort       = "18080"
	DefaultLanguage   = "en"
	DefaultLeapYear   = 2000 // Leap year fallback for dates like --02-29
	DefaultCategoryID = "other"
	UncategorizedID   = "uncategorized"
	UIDSalt           = "go-birthday-reminders-v1-" // Salt for deterministic calendar UIDs

	// PollInterval is the cadence of the non-native delivery check.
	PollInterval = 60 * time.Second

	// CatchWindow tolerates the poll granularity: an instant that passed less
	// than this long ago still fires.
	CatchWindow = 120 * time.Second

	// StableIDMask keeps notification ids in the positive int32 range.
	StableIDMask = 0x7fffffff

	// Placeholders substituted by the message formatter.
	PlaceholderName   = "{name}"
	PlaceholderAge    = "{age}"
	PlaceholderZodiac = "{zodiac}"

	// Separators used for composite identifiers.
	PairSeparator = "-"
	SlugSeparator = "-"

	// SlugFallback names custom categories whose name has no ASCII letter or digit.
	SlugFallback = "category"
)

// ISO8601 Duration Components for calendar alarms
const (
	ISOTimePrefix = "PT"
	ISOHour       = "H"
	ISOMinute     = "M"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Birthday Reminders//Feed//EN"
	ICalCalName   = "Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gobirthday"
	ICalRRule     = "FREQ=YEARLY"
	ICalRelated   = "RELATED"
	ICalStart     = "START"

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
	PropRRule       = "RRULE"
	PropCategories  = "CATEGORIES"

	VCardBDAY  = "BDAY"
	VCardFN    = "FN"
	VCardN     = "N"
	VCardNote  = "NOTE"
	VCardPhoto = "PHOTO"

	VCardParamEncoding = "ENCODING"
	VCardParamType     = "TYPE"
	VCardEncodingB     = "b"
	VCardEncodingB64   = "base64"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// TimeOfDayLayout is the 24-hour HH:MM format of ScheduledMessage.ScheduledTime.
	TimeOfDayLayout = "15:04"

	// Display formats
	DateFormatDisplay  = "2006-01-02"
	InstantFormatShort = "2006-01-02 15:04"
	AgeUnknown         = "-"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s"
	FormatUID       = "%s@%s"

	// URL / data URI prefixes accepted for photos
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"

	PrefixHTTP       = "http://"
	PrefixHTTPS      = "https://"
	PrefixDataURI    = "data:"
	FormatDataURI    = "data:image/%s;base64,%s"
	DefaultImageType = "jpeg"
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
	RouteRoot           = "/"
	RouteFeed           = "/birthdays.ics"
	AddrSeparator       = ":"
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
	HeaderAccept          = "Accept"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeAcceptVCard     = "text/vcard, text/x-vcard;q=0.9, */*;q=0.5"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

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
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrConfigDir        = "could not determine user config dir"
	ErrCreateDir        = "could not create app directory"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"

	ErrEmptyName         = "birthday name is required"
	ErrMissingBirthDate  = "birthday date is required"
	ErrInvalidTimeOfDay  = "scheduled time must be HH:MM (24-hour)"
	ErrNotFound          = "storage: not found"
	ErrNilDB             = "storage: nil db"
	ErrOpenDB            = "open sqlite"
	ErrMigrate           = "apply migration"
	ErrEncodeMessages    = "encode scheduled messages"
	ErrDecodeMessages    = "decode scheduled messages"
	ErrEncodeState       = "encode category state"
	ErrDecodeState       = "decode category state"
	ErrMessageNotFound   = "scheduled message not found"
	ErrCategoryIDEmpty   = "category id is required"
	ErrCategoryNameEmpty = "category name is required"
	ErrCategoryExists    = "category already exists"
	ErrUnknownCategory   = "category is not visible"
	ErrSelfReassign      = "cannot reassign birthdays to the category being deleted"
	ErrDispositionNeeded = "category is referenced by birthdays: reassign or orphan them first"
	ErrEventNotFound     = "calendar event not found"
	ErrEventIDEmpty      = "calendar event requires a birthday id"
	ErrQueueStopped      = "timer queue stopped"
	ErrInvalidFireTime   = "invalid fire time"
	ErrPasswordRead      = "failed to read password"
	ErrKeyringSet        = "failed to store credentials in keyring"
	ErrDateFlag          = "invalid --date value"
	ErrDBClose           = "failed to close database"
	ErrLoadBirthdays     = "failed to load birthdays"
	ErrMarkSent          = "failed to persist last sent date"
	ErrSourceFlags       = "pass either --file or --url"
	ErrRequestBuild      = "failed to create request"
	ErrNetwork           = "network error during fetch"
	ErrHTTPStatus        = "server returned unexpected status"
	ErrUnauthorized      = "server rejected the credentials"
	ErrResponseTooLarge  = "response exceeds the maximum allowed size"
	ErrCredsHint         = "store the password with `credentials set --user`"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary       = "Birthday: %s"
	FallbackNotifTitle    = "Birthday: %s"
	FallbackTrayError     = "Go Birthday Reminders: Error"
	FallbackTrayLabel     = "Go Birthday Reminders"
	FallbackName          = "Unknown"
	FallbackUncategorized = "Uncategorized"

	// StubVCalendar is the minimal valid iCalendar object used when no events exist.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"
	TitleImportError  = "Import Error"

	MsgPortBusy         = "Port %s is busy or unavailable."
	MsgAppStop          = "Application stopped gracefully"
	MsgCtxCancel        = "Context cancelled, shutting down UI"
	MsgSkippedCard      = "Skipping malformed vCard"
	MsgSkippedDate      = "Skipping invalid date format"
	MsgSkippedNoYear    = "Skipping birthday without a birth year"
	MsgImportDone       = "vCard import finished"
	MsgAppStarting      = "Starting application"
	MsgServerListen     = "HTTP server listening"
	MsgServerStop       = "Shutting down HTTP server..."
	MsgCacheUpdated     = "Calendar feed updated"
	MsgLocaleSkip       = "Skipping non-locale file"
	MsgLocaleBadName    = "Skipping malformed locale filename"
	MsgLocaleLoaded     = "Locale loaded successfully"
	MsgTransMissing     = "Missing translation key"
	MsgPassFail         = "Password retrieval failed (might be empty)"
	MsgLogWarning       = "Warning: %s at %s: %v\n"
	MsgDownloadStart    = "Initiating vCard download"
	MsgDownloadStatus   = "Server returned error status"
	MsgDownloading      = "vCards downloading"
	MsgPermissionDenied = "Notification permission not granted"
	MsgPermissionFail   = "Notification permission request failed"
	MsgScheduleFail     = "Native schedule request failed"
	MsgScheduled        = "Notification scheduled"
	MsgCancelFail       = "Native cancel request failed"
	MsgListPendingFail  = "Listing pending notifications failed"
	MsgInvalidTime      = "Skipping message with invalid scheduled time"
	MsgShowFail         = "Displaying notification failed"
	MsgFired            = "Notification delivered"
	MsgMarkSentFail     = "Persisting lastSentDate failed"
	MsgLoadFail         = "Loading birthdays failed"
	MsgCheckFail        = "Poll check hit a storage failure"
	MsgPollStart        = "Notification poller started"
	MsgPollStop         = "Notification poller stopped"
	MsgRescheduled      = "Rescheduled all notifications"
	MsgQueueDropped     = "Timer queue dropped a due notification"
	MsgCalendarFail     = "Calendar sync failed"
	MsgBirthdayAdded    = "Birthday added"
	MsgBirthdayUpdated  = "Birthday updated"
	MsgBirthdayDeleted  = "Birthday deleted"
	MsgCategoryDeleted  = "Category deleted"
	MsgCategoryRestored = "Category restored"
	MsgCategoryAdded    = "Category added"
	MsgCategoryUpdated  = "Category updated"
	MsgReassigned       = "Birthdays reassigned to another category"
	MsgClearAll         = "All birthdays cleared"
	MsgImported         = "Birthdays imported"
	MsgEventIDSaveFail  = "Failed to record calendar event id"
	MsgModeSelected     = "Delivery mode selected"
	MsgTagCoalesced     = "Duplicate notification tag suppressed"
	MsgDeliverStale     = "Delivered notification no longer matches a stored message"
	MsgLanguageChanged  = "UI language changed"
	MsgOpenWin          = "Opening upcoming birthdays window"
	MsgSorted           = "Upcoming list sorted"
	MsgImportFailed     = "Contact import failed"
	MsgSettingsOpen     = "Opening settings window"
	MsgSettingsSaved    = "Saving preferences"

	PlaceholderURL = "https://..."
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent  = "component"
	LogKeyError      = "error"
	LogKeyURL        = "url"
	LogKeyStatus     = "status_code"
	LogKeyFile       = "file"
	LogKeyLang       = "lang"
	LogKeyKey        = "key"
	LogKeyPort       = "port"
	LogKeyMode       = "mode"
	LogKeyInterval   = "interval"
	LogKeyUser       = "user"
	LogKeyTotal      = "total_cards"
	LogKeyFound      = "birthdays_found"
	LogKeySizeBytes  = "size_bytes"
	LogKeyETag       = "etag"
	LogKeyValue      = "value"
	LogKeyCount      = "count"
	LogKeyName       = "name"
	LogKeyBirthdayID = "birthday_id"
	LogKeyMessageID  = "message_id"
	LogKeyNotifID    = "notification_id"
	LogKeyFireAt     = "fire_at"
	LogKeyTag        = "tag"
	LogKeyCategoryID = "category_id"
	LogKeyAffected   = "affected"
	LogKeyTarget     = "target"
	LogKeyAdded      = "added"
	LogKeyDuplicates = "duplicates"
	LogKeySkipped    = "skipped"
	LogKeyEventID    = "event_id"
	LogKeyPermission = "permission"
	LogKeySortCol    = "sort_col"
	LogKeySortAsc    = "sort_asc"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyCommit  = "commit"
	LogKeyBuilt   = "built"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI        = "ui"
	CompServer    = "server"
	CompFetcher   = "fetcher"
	CompImporter  = "importer"
	CompNotify    = "notify"
	CompPoller    = "poller"
	CompQueue     = "queue"
	CompCategory  = "category"
	CompCalendar  = "calendar"
	CompService   = "service"
	CompMain      = "main"
	CompI18n      = "i18n"
	CompLifecycle = "lifecycle"
)
