// internal/common/logger/logger_test.go
package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_LevelFallback(t *testing.T) {
	l := New("not-a-level", "console")
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l = New("debug", "json")
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestZapAdapter_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	ForArtifact(log, "art-1").
		WithFields(map[string]interface{}{"taskType": "bot-build.build-bot"}).
		Error("build failed", map[string]interface{}{"cause": errors.New("boom")})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "art-1", ctx["artifactId"])
		assert.Equal(t, "bot-build.build-bot", ctx["taskType"])
		assert.Equal(t, "boom", ctx["cause"])
	}
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.WithError(errors.New("x")).Warn("ignored", nil)
	})
}
