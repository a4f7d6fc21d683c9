package gnuplot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plotpipe/internal/config"
	"plotpipe/pkg/plottypes"
)

func TestRegistry_SetAndReset(t *testing.T) {
	h := newHarness(t, "5.4.8", nil)
	SetDefault(h.session)
	t.Cleanup(func() { SetDefault(nil) })

	got, err := Default()
	require.NoError(t, err)
	assert.Same(t, h.session, got)

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, got, again)

	require.NoError(t, ResetDefault())
	assert.ErrorIs(t, h.session.Clear(), plottypes.ErrClosed)

	// resetting an empty registry is a no-op
	assert.NoError(t, ResetDefault())
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		Executable:    "/opt/gnuplot",
		Persist:       true,
		Timeout:       3 * time.Second,
		Binary:        true,
		Output:        "out.png",
		OutputOptions: "size 640,480",
	}

	s := defaultSettings()
	for _, opt := range FromConfig(cfg) {
		opt(s)
	}

	assert.Equal(t, "/opt/gnuplot", s.channel.Executable)
	assert.True(t, s.channel.Persist)
	assert.Equal(t, 3*time.Second, s.channel.Timeout)
	assert.True(t, s.binary)
	assert.Equal(t, "out.png", s.output)
	assert.Equal(t, "size 640,480", s.outputOptions)

	s = defaultSettings()
	for _, opt := range FromConfig(&config.Config{}) {
		opt(s)
	}
	assert.Equal(t, "gnuplot", s.channel.Executable)
	assert.Empty(t, s.output)
}
