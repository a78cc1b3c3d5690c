package observe

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"forecastio/pkg/logger"
)

type capturedEvents struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (c *capturedEvents) beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturedEvents) all() []*sentry.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*sentry.Event(nil), c.events...)
}

func newTestHook(t *testing.T, zone string) (*SentryHook, *capturedEvents) {
	t.Helper()

	captured := &capturedEvents{}
	hook := newSentryHook(zone, "test-app", sentry.ClientOptions{
		BeforeSend: captured.beforeSend,
	})
	require.NotNil(t, hook.hub)

	return hook, captured
}

func TestSentryHook_ForwardsErrors(t *testing.T) {
	hook, captured := newTestHook(t, "prod")
	l := logger.NewZapLogger("test-app", "prod", hook)

	l.Info("not forwarded")
	l.Warning("not forwarded either")
	l.Error(errors.New("upstream returned 500"), map[string]any{"location": "45.44,12.33"})

	events := captured.all()
	require.Len(t, events, 1)
	assert.Equal(t, sentry.LevelError, events[0].Level)
	assert.Equal(t, "upstream returned 500", events[0].Message)
	assert.Equal(t, "prod", events[0].Environment)
	assert.Equal(t, "test-app", events[0].Extra["AppName"])
	assert.Equal(t, "upstream returned 500", events[0].Extra["Error"])
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestSentryHook_IgnoresOtherZones(t *testing.T) {
	hook, captured := newTestHook(t, "development")
	l := logger.NewZapLogger("test-app", "development", hook)

	l.Error(errors.New("boom"))

	assert.Empty(t, captured.all())
}

func TestSentryHook_ReportsGarbage(t *testing.T) {
	hook, captured := newTestHook(t, "dev")

	var buf bytes.Buffer
	hook.SetLogger(logger.NewZapLogger("test-app", "dev", &buf))

	n, err := hook.Write([]byte("not json"))
	require.NoError(t, err)
	assert.Equal(t, len("not json"), n)
	assert.Empty(t, captured.all())
	assert.Contains(t, buf.String(), "[SentryHook] json.Unmarshal data")
}

func TestSentryHook_MapLevel(t *testing.T) {
	hook := &SentryHook{}

	assert.Equal(t, sentry.LevelWarning, hook.mapLevel(zapcore.WarnLevel))
	assert.Equal(t, sentry.LevelFatal, hook.mapLevel(zapcore.PanicLevel))
	assert.True(t, hook.Flush())
}
