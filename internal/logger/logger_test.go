package logger

import (
	"bytes"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestEnvLoggerDebugRespectsEnv(t *testing.T) {
	buf := captureLog(t)

	t.Setenv(DebugEnvVar, "")
	l := NewEnvLogger("[test]")
	l.Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	t.Setenv(DebugEnvVar, "1")
	l.Debug("shown %d", 2)
	assert.Contains(t, buf.String(), "[test] shown 2")
}

func TestEnvLoggerLevels(t *testing.T) {
	buf := captureLog(t)
	l := NewEnvLogger("[poller]")

	l.Info("started")
	l.Warn("slow fetch %s", "3.2s")
	l.Error("fetch failed: %v", "boom")

	out := buf.String()
	assert.Contains(t, out, "[poller] started")
	assert.Contains(t, out, "[poller] WARN: slow fetch 3.2s")
	assert.Contains(t, out, "[poller] ERROR: fetch failed: boom")
}

func TestNoopDiscards(t *testing.T) {
	buf := captureLog(t)
	l := Noop()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	assert.Empty(t, buf.String())
}

func TestBufferLoggerConcurrentUse(t *testing.T) {
	l := NewBufferLogger()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Debug("message %d", i)
		}(i)
	}
	wg.Wait()

	msgs := l.Messages()
	require.Len(t, msgs, 20)
	assert.True(t, l.HasLevel("debug"))
	assert.False(t, l.HasLevel("error"))

	l.Error("bad %s", "thing")
	assert.Equal(t, LogMessage{Level: "error", Message: "bad thing"}, l.Messages()[20])
}
