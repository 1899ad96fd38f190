package logscope

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBase(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return slog.New(handler), &buf
}

func TestQuiet_SuppressesBelowFloorAtInfo(t *testing.T) {
	base, buf := newBase(slog.LevelInfo)
	quiet := Quiet(base, slog.LevelError)

	quiet.Debug("miss")
	quiet.Info("trying")
	quiet.Warn("odd")
	quiet.Error("broken")

	out := buf.String()
	assert.NotContains(t, out, "miss")
	assert.NotContains(t, out, "trying")
	assert.NotContains(t, out, "odd")
	assert.Contains(t, out, "broken")
}

func TestQuiet_PassesEverythingAtDebug(t *testing.T) {
	base, buf := newBase(slog.LevelDebug)
	quiet := Quiet(base, slog.LevelError)

	quiet.Debug("miss")
	quiet.Info("trying")
	quiet.Error("broken")

	out := buf.String()
	assert.Contains(t, out, "miss")
	assert.Contains(t, out, "trying")
	assert.Contains(t, out, "broken")
}

func TestQuiet_DoesNotMutateBaseLogger(t *testing.T) {
	base, buf := newBase(slog.LevelInfo)
	quiet := Quiet(base, slog.LevelError)

	quiet.Warn("inside")
	base.Warn("outside")

	out := buf.String()
	assert.NotContains(t, out, "inside")
	assert.Contains(t, out, "outside")
}

func TestQuiet_KeepsAttrsAndGroups(t *testing.T) {
	base, buf := newBase(slog.LevelInfo)
	quiet := Quiet(base, slog.LevelError).With("id", "2701").WithGroup("req")

	quiet.Error("failed", "status", 500)

	out := buf.String()
	assert.Contains(t, out, "id=2701")
	assert.Contains(t, out, "req.status=500")
}

func TestQuiet_NilUsesDefault(t *testing.T) {
	assert.NotNil(t, Quiet(nil, slog.LevelError))
}
