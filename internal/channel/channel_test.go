package channel

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plotpipe/internal/testutils"
	"plotpipe/pkg/plottypes"
)

func newFake(t *testing.T, respond testutils.Responder, cfg Config) (*Channel, *testutils.FakeGnuplot) {
	t.Helper()
	fake := testutils.NewFakeGnuplot(respond)
	c := New(fake.Stdin(), fake.Stdout(), cfg)
	t.Cleanup(func() { _ = c.Close() })
	return c, fake
}

func TestSend_CollectsLinesUntilMarker(t *testing.T) {
	c, fake := newFake(t, testutils.Script(map[string][]string{
		"show version": {"G N U P L O T", "Version 5.4"},
	}), Config{})

	lines, err := c.Send(context.Background(), "show version", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"G N U P L O T", "Version 5.4"}, lines)

	lines, err = c.Send(context.Background(), "set grid", nil)
	require.NoError(t, err)
	assert.Empty(t, lines)

	assert.Equal(t, []string{"show version", "set grid"}, c.History())
	assert.Equal(t, []string{"show version", "set grid"}, fake.Commands())
}

func TestSend_WritesDataVerbatim(t *testing.T) {
	c, fake := newFake(t, nil, Config{})

	_, err := c.Send(context.Background(), "plot '-'", []byte("1 2\n3 4\ne\n"))
	require.NoError(t, err)

	want := fmt.Sprintf("plot '-'\n1 2\n3 4\ne\nprint %q\n", c.Marker())
	assert.Equal(t, want, fake.Received())
	// history keeps commands only
	assert.Equal(t, []string{"plot '-'"}, c.History())
}

func TestMarker_UniquePerChannel(t *testing.T) {
	a, _ := newFake(t, nil, Config{})
	b, _ := newFake(t, nil, Config{})

	assert.True(t, strings.HasPrefix(a.Marker(), markerPrefix))
	assert.NotEqual(t, a.Marker(), b.Marker())
}

func TestSend_TimeoutPoisonsChannel(t *testing.T) {
	c, fake := newFake(t, nil, Config{Timeout: 50 * time.Millisecond})
	fake.Hang()

	_, err := c.Send(context.Background(), "pause mouse", nil)
	require.ErrorIs(t, err, plottypes.ErrTimeout)
	var ioErr *plottypes.IOError
	require.ErrorAs(t, err, &ioErr)

	_, err = c.Send(context.Background(), "set grid", nil)
	assert.ErrorIs(t, err, plottypes.ErrTimeout)
	assert.Equal(t, err, c.Err())
}

func TestSend_ContextCancel(t *testing.T) {
	c, fake := newFake(t, nil, Config{})
	fake.Hang()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Send(ctx, "pause -1", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Error(t, c.Err())
}

func TestSend_EngineExit(t *testing.T) {
	c, fake := newFake(t, nil, Config{})
	fake.Exit()

	_, err := c.Send(context.Background(), "plot sin(x)", nil)
	assert.ErrorIs(t, err, plottypes.ErrEngineExited)
}

func TestClose(t *testing.T) {
	c, fake := newFake(t, nil, Config{})
	_, err := c.Send(context.Background(), "set grid", nil)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	fake.Wait()

	_, err = c.Send(context.Background(), "set grid", nil)
	assert.ErrorIs(t, err, plottypes.ErrClosed)

	// closing twice is harmless
	assert.NoError(t, c.Close())
}

func TestSend_ConcurrentCallsDoNotInterleave(t *testing.T) {
	c, _ := newFake(t, func(line string) []string {
		if n, ok := strings.CutPrefix(line, "echo "); ok {
			return []string{n}
		}
		return nil
	}, Config{})

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := fmt.Sprint(i)
			lines, err := c.Send(context.Background(), "echo "+want, nil)
			if err != nil {
				errs <- err
				return
			}
			if len(lines) != 1 || lines[0] != want {
				errs <- fmt.Errorf("call %d got %v", i, lines)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Len(t, c.History(), 20)
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
		err  bool
	}{
		{"default", Config{}, []string{"gnuplot"}, false},
		{"persist", Config{Persist: true}, []string{"gnuplot", "-persist"}, false},
		{"override with args", Config{Executable: "/opt/gp/bin/gnuplot -d"}, []string{"/opt/gp/bin/gnuplot", "-d"}, false},
		{"quoted path", Config{Executable: `"/Applications/Gnuplot App/gnuplot"`}, []string{"/Applications/Gnuplot App/gnuplot"}, false},
		{"unterminated quote", Config{Executable: `"gnuplot`}, nil, true},
		{"blank", Config{Executable: "   "}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := commandLine(tt.cfg)
			if tt.err {
				assert.ErrorIs(t, err, plottypes.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStart_MissingExecutable(t *testing.T) {
	_, err := Start(Config{Executable: "/nonexistent/plotpipe-no-such-gnuplot"})
	var ioErr *plottypes.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "start", ioErr.Op)
}
