package gnuplot

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plotpipe/internal/channel"
	"plotpipe/internal/testutils"
	"plotpipe/internal/version"
	"plotpipe/pkg/plottypes"
)

type harness struct {
	session     *Session
	fake        *testutils.FakeGnuplot
	diagnostics []string
}

// newHarness runs a session against a fake engine reporting engineVersion.
func newHarness(t *testing.T, engineVersion string, respond testutils.Responder, opts ...Option) *harness {
	t.Helper()
	fake := testutils.NewFakeGnuplot(func(line string) []string {
		if line == version.EngineQuery {
			return []string{engineVersion}
		}
		if respond != nil {
			return respond(line)
		}
		return nil
	})

	h := &harness{fake: fake}
	opts = append([]Option{
		WithEngine(channel.New(fake.Stdin(), fake.Stdout(), channel.Config{})),
		WithDiagnostics(func(text string) { h.diagnostics = append(h.diagnostics, text) }),
	}, opts...)

	s, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	h.session = s
	return h
}

func TestNew_QueriesEngineVersion(t *testing.T) {
	h := newHarness(t, "5.4.8", nil)

	v, err := h.session.Version()
	require.NoError(t, err)
	assert.Equal(t, "5.4.8", v.String())
	assert.Equal(t, []string{version.EngineQuery}, h.session.History())
}

func TestNew_UnparseableVersionIsNotFatal(t *testing.T) {
	h := newHarness(t, "", nil)

	_, err := h.session.Version()
	assert.Error(t, err)
	assert.NoError(t, h.session.Raw("set grid"))
}

func TestPlot_Expression(t *testing.T) {
	h := newHarness(t, "5.4.8", nil)

	err := h.session.Plot(plottypes.Span(-5, 10), "x*sin(x)", plottypes.Opts("with", "lines"))
	require.NoError(t, err)
	assert.Contains(t, h.fake.Commands(), "plot [-5:10] x*sin(x) with lines")
	assert.Empty(t, h.session.LastData())
}

func TestPlot_DataAndReplot(t *testing.T) {
	h := newHarness(t, "5.4.8", nil)

	err := h.session.Plot([]int{1, 2, 3}, []int{4, 5, 6}, plottypes.Opts("w", "lp"))
	require.NoError(t, err)
	assert.Equal(t, "1 4\n2 5\n3 6\ne\n", string(h.session.LastData()))

	require.NoError(t, h.session.Replot())
	assert.Contains(t, h.fake.Received(), "replot\n1 4\n2 5\n3 6\ne\nprint ")

	history := h.session.History()
	assert.Equal(t, []string{version.EngineQuery, "plot '-' w lp", "replot"}, history)
}

func TestPlot_TypedSlicesAreData(t *testing.T) {
	h := newHarness(t, "5.4.8", nil)

	require.NoError(t, h.session.Plot([]int16{1, 2, 3}, []uint16{4, 5, 6}))
	assert.Equal(t, "1 4\n2 5\n3 6\ne\n", string(h.session.LastData()))

	history := h.session.History()
	assert.Equal(t, "plot '-'", history[len(history)-1])
}

func TestPlot_RaggedRowsSendNothing(t *testing.T) {
	h := newHarness(t, "5.4.8", nil)

	err := h.session.Plot([][]int{{1, 2}, {3}})
	assert.ErrorIs(t, err, plottypes.ErrValidation)
	assert.Equal(t, []string{version.EngineQuery}, h.session.History())
}

func TestPlot_ValidationErrorSendsNothing(t *testing.T) {
	h := newHarness(t, "5.4.8", nil)
	before := h.fake.Received()

	tests := []struct {
		name string
		args []any
	}{
		{"range after items", []any{"sin(x)", plottypes.Span(0, 1)}},
		{"image needs 2D", []any{[]float64{1, 2, 3}, plottypes.Opts("with", "image")}},
		{"string with quote and space", []any{[]string{`a "b"`}, []int{1}}},
		{"options only", []any{plottypes.Opts("with", "lines")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.session.Plot(tt.args...)
			assert.ErrorIs(t, err, plottypes.ErrValidation)
		})
	}

	assert.Equal(t, before, h.fake.Received())
	assert.Len(t, h.session.History(), 1)
}

func TestPlot_ToleratedWarningGoesToDiagnostics(t *testing.T) {
	h := newHarness(t, "5.4.8", testutils.Script(map[string][]string{
		`plot "nofile" using 1:2`: {
			`         plot "nofile" using 1:2`,
			`              ^`,
			`         warning: Skipping data file with no valid points`,
		},
	}))

	err := h.session.Plot("nofile", plottypes.Opts("using", []int{1, 2}))
	require.NoError(t, err)
	require.Len(t, h.diagnostics, 1)
	assert.Contains(t, h.diagnostics[0], "Skipping data file")
}

func TestSend_ProtocolErrorIsBounded(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d of the error", i+1)
	}
	h := newHarness(t, "5.4.8", testutils.Script(map[string][]string{
		"plot sin(y)": lines,
	}))

	err := h.session.Plot("sin(y)")
	var perr *plottypes.ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "plot sin(y)", perr.Command)
	assert.Len(t, perr.Lines, 10)

	msg := strings.Split(perr.Message, "\n")
	assert.Len(t, msg, 7)
	assert.Equal(t, "...", msg[6])
	assert.NotContains(t, perr.Message, "line 7 of the error")

	// a protocol error leaves the session usable
	assert.NoError(t, h.session.Raw("set grid"))
	assert.Empty(t, h.session.LastData())
}

func TestSend_ReturnsToleratedLines(t *testing.T) {
	h := newHarness(t, "5.4.8", testutils.Script(map[string][]string{
		"load 'anim.gp'": {"End of animation sequence"},
	}))

	lines, err := h.session.Send(context.Background(), "load 'anim.gp'", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"End of animation sequence"}, lines)
	assert.Equal(t, []string{"End of animation sequence"}, h.diagnostics)
}

func TestSetUnset(t *testing.T) {
	h := newHarness(t, "5.4.8", nil)

	err := h.session.Set(
		plottypes.Opts("title", "Example", "grid", true, "key", false, "xrange", plottypes.Span(-5, 5)),
		"style data lines",
	)
	require.NoError(t, err)
	require.NoError(t, h.session.Unset("grid", plottypes.Opts("key", true)))

	assert.Equal(t, []string{
		version.EngineQuery,
		`set title "Example"`,
		"set grid",
		"set xrange [-5:5]",
		"set style data lines",
		"unset grid",
		"unset key",
	}, h.session.History())
}

func TestShowAndHelp(t *testing.T) {
	h := newHarness(t, "5.4.8", testutils.Script(map[string][]string{
		"show version": {"", "\tG N U P L O T", "\tVersion 5.4 patchlevel 8"},
	}))

	out, err := h.session.Show("version")
	require.NoError(t, err)
	assert.Equal(t, "\n\tG N U P L O T\n\tVersion 5.4 patchlevel 8", out)

	_, err = h.session.Help("plot")
	require.NoError(t, err)
	assert.Contains(t, h.fake.Received(), "help plot\n\nprint ")
}

func TestSimpleCommands(t *testing.T) {
	h := newHarness(t, "5.4.8", nil)

	require.NoError(t, h.session.Reset())
	require.NoError(t, h.session.Reset("bind"))
	require.NoError(t, h.session.Clear())
	require.NoError(t, h.session.Refresh())
	require.NoError(t, h.session.Pause(0.5))
	require.NoError(t, h.session.Pause("mouse", "close"))
	require.NoError(t, h.session.Run("set grid"))

	assert.Equal(t, []string{
		version.EngineQuery,
		"reset", "reset bind", "clear", "refresh",
		"pause 0.5", "pause mouse close", "set grid",
	}, h.session.History())

	err := h.session.Pause(-1)
	assert.ErrorIs(t, err, plottypes.ErrValidation)
}

func TestWithOutput(t *testing.T) {
	h := newHarness(t, "5.4.8", nil, WithOutput("figure.eps", "color"))

	assert.Equal(t, []string{
		version.EngineQuery,
		"set terminal postscript eps color",
		`set output "figure.eps"`,
	}, h.session.History())
}

func TestTerminalFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.png", "png"},
		{"a.SVG", "svg"},
		{"a.ps", "postscript"},
		{"a.eps", "postscript eps"},
		{"a.jpg", "jpeg"},
		{"a.txt", "dumb"},
		{"a.tex", "latex"},
		{"a.htm", "canvas"},
		{"dir.v2/a.html", "canvas"},
		{"a.pdf", "pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := TerminalFor(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := TerminalFor("plot")
	assert.ErrorIs(t, err, plottypes.ErrValidation)
}

func TestBinaryDowngradeOnOldEngine(t *testing.T) {
	h := newHarness(t, "4.4.4", nil, WithBinary(true))
	require.Len(t, h.diagnostics, 1)

	require.NoError(t, h.session.Plot([]float64{1, 2}, []float64{3, 4}))
	assert.Contains(t, h.session.History(), "plot '-'")
	assert.Equal(t, "1 3\n2 4\ne\n", string(h.session.LastData()))
}

func TestBinaryOnCurrentEngine(t *testing.T) {
	h := newHarness(t, "5.4.8", nil, WithBinary(true))

	require.NoError(t, h.session.Plot([]float64{1, 2}, []float64{3, 4}))
	assert.Contains(t, h.session.History(), "plot '-' binary record=2 format='%float64%float64'")
	assert.Len(t, h.session.LastData(), 32)
}

func TestClose(t *testing.T) {
	h := newHarness(t, "5.4.8", nil)
	require.NoError(t, h.session.Quit())

	err := h.session.Plot("sin(x)")
	assert.ErrorIs(t, err, plottypes.ErrClosed)
}

func TestEngineExit(t *testing.T) {
	h := newHarness(t, "5.4.8", nil)
	h.fake.Exit()

	err := h.session.Raw("set grid")
	var ioErr *plottypes.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.ErrorIs(t, err, plottypes.ErrEngineExited)

	// the session stays failed
	assert.ErrorIs(t, h.session.Clear(), plottypes.ErrEngineExited)
}
