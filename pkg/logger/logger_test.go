package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewZapLogger(t *testing.T) {
	for _, cfg := range []*ZapLoggerConfig{
		{Encoding: "json", Level: "info"},
		{IsDevelopment: true, Encoding: "console", Level: "debug"},
		{Encoding: "json", Level: "not-a-level", DisableCaller: true, DisableStacktrace: true},
	} {
		l := NewZapLogger(cfg)
		assert.NotNil(t, l)
		l.Debug("debug")
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := Wrap(zap.New(core)).With(zap.String("merchant_id", "m-1"))

	l.Info("tree built", zap.Int("nodes", 3))
	l.Debug("dropped")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "m-1", fields["merchant_id"])
		assert.Equal(t, int64(3), fields["nodes"])
	}
}
