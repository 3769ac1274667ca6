package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerWriter_SplitsLines(t *testing.T) {
	assert := assert.New(t)

	core, logs := observer.New(zap.DebugLevel)
	w := NewLoggerWriter(zap.New(core), zap.InfoLevel)

	_, err := w.Write([]byte("updating vpc\ncreating subnet\n"))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal("updating vpc", entries[0].Message)
	assert.Equal("creating subnet", entries[1].Message)
	assert.Equal(zap.InfoLevel, entries[0].Level)
}

func TestLoggerWriter_BuffersPartialLines(t *testing.T) {
	assert := assert.New(t)

	core, logs := observer.New(zap.DebugLevel)
	w := NewLoggerWriter(zap.New(core), zap.InfoLevel)

	_, err := w.Write([]byte("crea"))
	require.NoError(t, err)
	assert.Zero(logs.Len())

	_, err = w.Write([]byte("ting bucket\ntrail"))
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal("creating bucket", logs.All()[0].Message)

	w.Flush()
	require.Equal(t, 2, logs.Len())
	assert.Equal("trail", logs.All()[1].Message)
}

func TestLoggerWriter_DropsBlankLines(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	w := NewLoggerWriter(zap.New(core), zap.InfoLevel)

	_, err := w.Write([]byte("\n   \r\nreal line\n"))
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "real line", logs.All()[0].Message)
}

func TestEntryLeveller(t *testing.T) {
	tests := []struct {
		name    string
		levels  map[string]zapcore.Level
		logger  string
		level   zapcore.Level
		written bool
	}{
		{"exact match below level", map[string]zapcore.Level{"pulumi.events": zap.WarnLevel}, "pulumi.events", zap.InfoLevel, false},
		{"exact match at level", map[string]zapcore.Level{"pulumi.events": zap.WarnLevel}, "pulumi.events", zap.WarnLevel, true},
		{"parent match applies to child", map[string]zapcore.Level{"pulumi": zap.ErrorLevel}, "pulumi.up", zap.InfoLevel, false},
		{"pulumi override quiets progress loggers", map[string]zapcore.Level{"pulumi": zap.WarnLevel}, "pulumi.destroy", zap.InfoLevel, false},
		{"fallback entry", map[string]zapcore.Level{"": zap.WarnLevel}, "infra", zap.InfoLevel, false},
		{"unconfigured logger passes through", map[string]zapcore.Level{"pulumi": zap.ErrorLevel}, "infra", zap.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			log := zap.New(NewEntryLeveller(core, tt.levels)).Named(tt.logger)

			log.Check(tt.level, "msg").Write()
			assert.Equal(t, tt.written, logs.Len() == 1)
		})
	}
}

func TestLoggerContext_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	core, logs := observer.New(zap.DebugLevel)
	attached := zap.New(core).With(zap.String("stack", "dev"))

	ctx := WithLogger(context.Background(), attached)
	GetLogger(ctx).Info("deploying")

	require.Equal(t, 1, logs.Len())
	assert.Equal("dev", logs.All()[0].ContextMap()["stack"])
}

func TestLoggerContext_FallsBackToGlobal(t *testing.T) {
	assert.Same(t, zap.L(), GetLogger(context.Background()))
}

func TestFileCore_AppendsEntries(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "logs", "provision.log")
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:  "msg",
		LevelKey:    "level",
		EncodeLevel: zapcore.CapitalLevelEncoder,
	})
	core, err := NewFileCore(enc, path)
	require.NoError(t, err)

	log := zap.New(core)
	log.Info("created vpc")
	log.Warn("bucket already exists")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(string(data), "created vpc")
	assert.Contains(string(data), "bucket already exists")
	assert.Contains(string(data), "WARN")
}
