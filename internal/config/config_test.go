package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "text", cfg.Format)
	assert.Empty(t, cfg.LogFile)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("FIGHTLOG_LOG_LEVEL", "debug")
	t.Setenv("FIGHTLOG_METRICS_FILE", "/tmp/fightlog.prom")
	t.Setenv("FIGHTLOG_PROFILE", "resto.cue")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/fightlog.prom", cfg.MetricsFile)
	assert.Equal(t, "resto.cue", cfg.Profile)
}

type badConfig struct {
	Port int `env:"FIGHTLOG_TEST_PORT"`
}

func TestParseEnv_Error(t *testing.T) {
	t.Setenv("FIGHTLOG_TEST_PORT", "not-an-int")

	var cfg badConfig
	assert.ErrorContains(t, ParseEnv(&cfg), "parse env:")
}
