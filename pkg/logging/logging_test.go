package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupLoggerVerbosityLevels(t *testing.T) {
	tests := []struct {
		verbosity int
		level     zerolog.Level
	}{
		{0, zerolog.WarnLevel},
		{1, zerolog.InfoLevel},
		{2, zerolog.DebugLevel},
		{3, zerolog.TraceLevel},
		{9, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		SetupLogger(tt.verbosity)
		assert.Equal(t, tt.level, zerolog.GlobalLevel(), "verbosity %d", tt.verbosity)
	}
}

func TestGetLogger(t *testing.T) {
	SetupLogger(1)
	logger := GetLogger("store")
	// Logger must be usable without panicking
	logger.Debug().Str("key", "value").Msg("test message")
}

func TestLogFilePath(t *testing.T) {
	path := getLogFilePath()
	assert.Contains(t, path, "configcore")
	assert.Contains(t, path, LogFileName)
}
