package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plotpipe/internal/testutils"
)

var allKeys = []string{
	KeyGnuplot, KeyPersist, KeyTimeout, KeyBinary, KeyDebug,
	KeyLogLevel, KeyLogFile, KeyOutput, KeyOutputOptions, KeyColor,
}

// clearEnv hides any PLOTPIPE_* variables of the surrounding environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(EnvPrefix+"_"+strings.ToUpper(k), "")
	}
}

func newTestLoader(t *testing.T, configEnv, localEnv string) *Loader {
	t.Helper()
	files := map[string]string{}
	if configEnv != "" {
		files["config/.env"] = configEnv
	}
	if localEnv != "" {
		files["work/.env"] = localEnv
	}
	files["work/.keep"] = ""
	root := testutils.CreateTempDir(t, files)

	l := NewLoader()
	l.ConfigDir = filepath.Join(root, "config")
	l.WorkDir = filepath.Join(root, "work")
	return l
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := newTestLoader(t, "", "").Load()
	require.NoError(t, err)

	assert.Equal(t, "gnuplot", cfg.Executable)
	assert.False(t, cfg.Persist)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
	assert.False(t, cfg.Binary)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Output)
	assert.Equal(t, "auto", cfg.Color)
}

func TestLoad_Layering(t *testing.T) {
	clearEnv(t)
	l := newTestLoader(t,
		"PLOTPIPE_GNUPLOT=/usr/local/bin/gnuplot\nPLOTPIPE_TIMEOUT=10\nPLOTPIPE_OUTPUT=fig.png\nOTHER_KEY=x\n",
		"PLOTPIPE_TIMEOUT=5s\nPLOTPIPE_BINARY=true\n",
	)
	t.Setenv("PLOTPIPE_OUTPUT", "env.svg")
	t.Setenv("PLOTPIPE_OUTPUT_OPTIONS", "size 800,600")

	cfg, err := l.Load()
	require.NoError(t, err)

	// config dir only
	assert.Equal(t, "/usr/local/bin/gnuplot", cfg.Executable)
	// local .env overrides config dir
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Binary)
	// environment overrides files
	assert.Equal(t, "env.svg", cfg.Output)
	assert.Equal(t, "size 800,600", cfg.OutputOptions)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("PLOTPIPE_TIMEOUT", "soon")

	_, err := newTestLoader(t, "", "").Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "PLOTPIPE_TIMEOUT")
}

func TestLoad_MalformedDotEnv(t *testing.T) {
	clearEnv(t)
	_, err := newTestLoader(t, "", "PLOTPIPE_GNUPLOT='unterminated\n").Load()
	assert.Error(t, err)
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"30", 30 * time.Second, false},
		{"2.5", 2500 * time.Millisecond, false},
		{"1m30s", 90 * time.Second, false},
		{" 250ms ", 250 * time.Millisecond, false},
		{"-1", 0, true},
		{"-5s", 0, true},
		{"later", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeout(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := UserConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/plotpipe", dir)
}
