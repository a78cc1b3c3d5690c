package observe

import (
	"encoding/json"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"

	"forecastio/pkg/logger"
)

const (
	_sentryMaxErrorDepth        int           = 9
	_sentryFlushTimeout         time.Duration = 5 * time.Second
	_sentryServerRequestTimeout time.Duration = 5 * time.Second
	_zapTimeLayout                            = "2006-01-02T15-04-05.000"
)

// SentryHook is an io.Writer for the zap logger. Error-level records are
// forwarded to Sentry in the prod and dev zones; everything else is dropped.
type SentryHook struct {
	appZone string
	appName string
	hub     *sentry.Hub
	l       *logger.Logger
}

func NewSentryHook(
	appZone, appName string,
	isDebug bool,
	dsn string,
) *SentryHook {
	if dsn == "" {
		log.Println("Stacktracer init error: no DSN")
	}
	sentryTransport := sentry.NewHTTPTransport()
	sentryTransport.Timeout = _sentryServerRequestTimeout

	return newSentryHook(appZone, appName, sentry.ClientOptions{
		AttachStacktrace: true,
		Debug:            isDebug,
		Dsn:              dsn,
		Environment:      appZone,
		MaxErrorDepth:    _sentryMaxErrorDepth,
		ServerName:       appName,
		Transport:        sentryTransport,
	})
}

func newSentryHook(appZone, appName string, opts sentry.ClientOptions) *SentryHook {
	client, err := sentry.NewClient(opts)
	if err != nil {
		log.Println("Stacktracer init error: ", err.Error())
		return &SentryHook{appZone: appZone, appName: appName}
	}

	return &SentryHook{
		appZone: appZone,
		appName: appName,
		hub:     sentry.NewHub(client, sentry.NewScope()),
	}
}

func (*SentryHook) mapLevel(zl zapcore.Level) sentry.Level {
	switch zl {
	case zapcore.DebugLevel, zapcore.InvalidLevel:
		return sentry.LevelDebug
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.FatalLevel, zapcore.PanicLevel:
		return sentry.LevelFatal
	}

	return sentry.LevelDebug
}

type zapRecord struct {
	Level      string `json:"level"`
	AppName    string `json:"app_name"`
	AppZone    string `json:"app_zone"`
	CallerFile string `json:"caller_file"`
	CallerLine int    `json:"caller_line"`
	CallerFunc string `json:"caller_func"`
	Stack      string `json:"stack"`
	Message    string `json:"msg"`
	Error      string `json:"error"`
	Timestamp  string `json:"timestamp"`
}

func (h *SentryHook) Write(p []byte) (n int, err error) {
	if h.hub == nil || (h.appZone != "prod" && h.appZone != "dev") {
		return len(p), nil
	}

	var t zapRecord
	if err := json.Unmarshal(p, &t); err != nil {
		h.report(errors.Wrap(err, "[SentryHook] json.Unmarshal data"))
		return len(p), nil
	}

	level, err := zapcore.ParseLevel(t.Level)
	if err != nil {
		h.report(errors.Wrap(err, "[SentryHook] parse zap level"))
		return len(p), nil
	}
	if len(t.Message) == 0 || level < zapcore.ErrorLevel {
		return len(p), nil
	}

	h.hub.CaptureEvent(h.event(level, t))

	return len(p), nil
}

func (h *SentryHook) event(level zapcore.Level, t zapRecord) *sentry.Event {
	timestamp, _ := time.ParseInLocation(_zapTimeLayout, t.Timestamp, time.UTC)

	event := sentry.NewEvent()
	event.Extra["AppName"] = h.appName
	event.Environment = h.appZone
	event.Level = h.mapLevel(level)
	event.Timestamp = timestamp
	event.Message = t.Message
	event.Extra["Error"] = t.Error
	event.Extra["CallerFile"] = t.CallerFile
	event.Extra["CallerLine"] = t.CallerLine
	event.Extra["CallerFunc"] = t.CallerFunc
	event.Extra["Stack"] = t.Stack
	event.Extra["TimeStamp"] = t.Timestamp
	event.Exception = append(event.Exception, sentry.Exception{
		Type:       t.Message,
		Value:      t.Error,
		Stacktrace: sentry.NewStacktrace(),
	})

	return event
}

// report must not go back through a logger that writes to h, or an
// unparsable record would loop.
func (h *SentryHook) report(err error) {
	if h.l != nil {
		h.l.Warning(err.Error())
		return
	}
	log.Println(err.Error())
}

// SetLogger sets where the hook reports its own failures. The logger must
// not have h among its writers.
func (h *SentryHook) SetLogger(l *logger.Logger) {
	if l != nil {
		h.l = l
	}
}

func (h *SentryHook) Flush() bool {
	if h.hub == nil {
		return true
	}
	return h.hub.Flush(_sentryFlushTimeout)
}
