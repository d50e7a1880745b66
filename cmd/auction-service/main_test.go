package main

import (
	"bytes"
	"testing"

	"cattle-auction-service/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, version+"\n", out.String())
}

func TestFlagsOverrideConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv(config.Port, "7000")

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--port", "9191", "--data-file", "lots.toml", "--store", "file", "--no-console"}))
	cmd.PreRun(cmd, nil)

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.Server.Port)
	assert.Equal(t, "lots.toml", cfg.Store.DataFile)
	assert.Equal(t, config.BackendFile, cfg.Store.Backend)
	assert.False(t, cfg.Admin.Console)
}
