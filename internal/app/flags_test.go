package app

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBind(t *testing.T) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("ca", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg.Bind(fs)

	require.NoError(t, fs.Parse([]string{
		"-sim", "elementary", "-param", "rule=90", "-param", "w = 64",
		"-stat", "correlation, topk,", "-hud", "0", "-topology", "jittered",
	}))
	assert.Equal(t, "elementary", cfg.Sim)
	assert.Equal(t, Params{"rule": "90", "w": "64"}, cfg.Params)
	assert.Equal(t, "rule=90,w=64", cfg.Params.String())
	assert.Equal(t, []string{"correlation", "topk"}, cfg.Statistics())
	assert.Equal(t, 0, cfg.HUDWidth)
	assert.Equal(t, "jittered", cfg.Topology)
	assert.Equal(t, 3, cfg.Scale, "unset flags keep defaults")

	assert.Error(t, fs.Parse([]string{"-param", "novalue"}))
	assert.Nil(t, NewConfig().Statistics())
}
