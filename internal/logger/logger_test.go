package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	cases := map[string]zerolog.Level{
		LOG_DEBUG: zerolog.DebugLevel,
		LOG_INFO:  zerolog.InfoLevel,
		LOG_WARN:  zerolog.WarnLevel,
		LOG_ERROR: zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for name, want := range cases {
		SetLevel(name)
		assert.Equal(t, want, zerolog.GlobalLevel(), name)
	}
}

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { SetSilentMode(true) })

	Configure(false, true)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	Configure(true, false)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
