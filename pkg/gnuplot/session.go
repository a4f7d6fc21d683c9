// Package gnuplot drives a gnuplot process.
//
// A Session turns loosely typed arguments into gnuplot commands and inline
// data, sends them one at a time and waits for each response:
//
//	s, err := gnuplot.New()
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	s.Set(plottypes.Opts("title", "Example", "grid", true))
//	s.Plot(plottypes.Span(-5, 10), "x*sin(x)", plottypes.Opts("with", "lines"))
//	s.Plot(xs, ys, plottypes.Opts("with", "points", "title", "samples"))
//
// Engine errors come back as *plottypes.ProtocolError and leave the
// session usable. Malformed arguments come back as
// *plottypes.ValidationError before anything is written. Pipe and process
// failures come back as *plottypes.IOError and end the session.
package gnuplot

import (
	"context"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"

	"plotpipe/internal/channel"
	"plotpipe/internal/encoder"
	"plotpipe/internal/options"
	"plotpipe/internal/parser"
	"plotpipe/internal/response"
	"plotpipe/internal/version"
	"plotpipe/pkg/plottypes"
)

// Session is one gnuplot engine and the state kept for it.
type Session struct {
	engine      Engine
	binary      bool
	diagnostics func(command, text string)

	mu       sync.Mutex
	lastData []byte
	version  *semver.Version
	verErr   error
}

// New starts an engine and prepares it: the engine version is queried and
// output redirection, when configured, is applied.
func New(opts ...Option) (*Session, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(cfg)
	}

	engine := cfg.engine
	if engine == nil {
		ch, err := channel.Start(cfg.channel)
		if err != nil {
			return nil, err
		}
		engine = ch
	}

	s := &Session{
		engine:      engine,
		binary:      cfg.binary,
		diagnostics: cfg.diagnostics,
	}

	if err := s.init(cfg); err != nil {
		_ = engine.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) init(cfg *settings) error {
	lines, err := s.engine.Send(context.Background(), version.EngineQuery, nil)
	if err != nil {
		return err
	}
	s.version, s.verErr = version.ParseEngineVersion(lines)

	if s.binary && !version.SupportsBinaryData(s.version) {
		s.diagnostics(version.EngineQuery, "gnuplot "+s.version.String()+" cannot read binary inline data; sending text")
		s.binary = false
	}

	if cfg.output == "" {
		return nil
	}
	cmds, err := outputCommands(cfg.output, cfg.outputOptions)
	if err != nil {
		return err
	}
	for _, cmd := range cmds {
		if err := s.Raw(cmd); err != nil {
			return err
		}
	}
	return nil
}

// Send writes a command with optional inline data and classifies the
// response. Tolerated warnings go to the diagnostics handler and the
// response lines are still returned.
func (s *Session) Send(ctx context.Context, command string, data []byte) ([]string, error) {
	lines, err := s.engine.Send(ctx, command, data)
	if err != nil {
		return nil, err
	}

	res := response.Classify(lines)
	switch res.Outcome {
	case response.Tolerated:
		s.diagnostics(command, res.Text)
	case response.Failure:
		return lines, &plottypes.ProtocolError{Command: command, Message: res.Text, Lines: res.Lines}
	}
	return lines, nil
}

// Raw sends one command line and expects no output other than warnings.
func (s *Session) Raw(command string) error {
	_, err := s.Send(context.Background(), command, nil)
	return err
}

// Run is an alias for Raw.
func (s *Session) Run(command string) error {
	return s.Raw(command)
}

// Plot draws a 2D plot. Arguments are ranges first, then plot items:
// expressions or file names as strings, data as slices or shaped arrays,
// and options maps that close each item.
func (s *Session) Plot(args ...any) error {
	return s.plot(parser.Plot, args)
}

// Splot draws a 3D plot. It takes the same arguments as Plot.
func (s *Session) Splot(args ...any) error {
	return s.plot(parser.Surface, args)
}

func (s *Session) plot(kind parser.Kind, args []any) error {
	req, err := parser.Parse(kind, plottypes.Args(args...)...)
	if err != nil {
		return err
	}
	payload, err := encoder.Encode(req, encoder.Config{Binary: s.binary})
	if err != nil {
		return err
	}

	if err := s.sendPlot(payload.Command, payload.Data); err != nil {
		return err
	}

	s.mu.Lock()
	s.lastData = payload.Data
	s.mu.Unlock()
	return nil
}

func (s *Session) sendPlot(command string, data []byte) error {
	_, err := s.Send(context.Background(), command, data)
	return err
}

// Replot repeats the last plot, resending its inline data.
func (s *Session) Replot() error {
	return s.sendPlot("replot", s.LastData())
}

// LastData returns the inline data of the last successful plot.
func (s *Session) LastData() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.lastData...)
}

// Set sends one "set" command per option. Strings are sent verbatim.
//
//	s.Set(plottypes.Opts("xrange", plottypes.Span(-5, 5), "key", "left top"))
//	s.Set("grid")
func (s *Session) Set(args ...any) error {
	return s.setUnset("set", args)
}

// Unset is the counterpart of Set.
func (s *Session) Unset(args ...any) error {
	return s.setUnset("unset", args)
}

func (s *Session) setUnset(cmd string, args []any) error {
	var commands []string
	for _, a := range plottypes.Args(args...) {
		switch v := a.(type) {
		case plottypes.Options:
			for _, o := range v {
				clause := options.KeyValue(o.Key, o.Value)
				if clause == "" {
					continue
				}
				commands = append(commands, cmd+" "+clause)
			}
		case plottypes.Text:
			commands = append(commands, cmd+" "+string(v))
		default:
			if clause := options.Serialize(a); clause != "" {
				commands = append(commands, cmd+" "+clause)
			}
		}
	}

	for _, c := range commands {
		if err := s.Raw(c); err != nil {
			return err
		}
	}
	return nil
}

// Show returns the engine's answer to "show <what>".
func (s *Session) Show(what string) (string, error) {
	return s.text("show " + what)
}

// Help returns the engine's help text for a topic. The trailing blank
// lines end any help prompt.
func (s *Session) Help(topic string) (string, error) {
	return s.text(strings.TrimSpace("help "+topic) + "\n\n")
}

// Query sends a command whose output is an answer rather than a
// diagnostic, such as show, print or help. The output is not classified.
func (s *Session) Query(ctx context.Context, command string) ([]string, error) {
	return s.engine.Send(ctx, command, nil)
}

func (s *Session) text(command string) (string, error) {
	lines, err := s.Query(context.Background(), command)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// Reset sends "reset", or "reset <arg>" for each argument.
func (s *Session) Reset(args ...string) error {
	if len(args) == 0 {
		return s.Raw("reset")
	}
	for _, a := range args {
		if err := s.Raw("reset " + a); err != nil {
			return err
		}
	}
	return nil
}

// Clear erases the current screen or output device.
func (s *Session) Clear() error {
	return s.Raw("clear")
}

// Refresh redraws the last plot from data the engine already holds.
func (s *Session) Refresh() error {
	return s.Raw("refresh")
}

// Pause sends "pause" with its arguments, for example Pause(2) or
// Pause("mouse", "close"). A negative time would make the engine read
// its command pipe and is rejected.
func (s *Session) Pause(args ...any) error {
	argv := plottypes.Args(args...)
	if len(argv) > 0 {
		if sc, ok := argv[0].(plottypes.Scalar); ok && sc.IsNumeric() && strings.HasPrefix(sc.String(), "-") {
			return plottypes.NewValidationError("pause", "negative pause waits for input on the command pipe")
		}
	}
	return s.Raw(strings.TrimSpace("pause " + options.Serialize(argv...)))
}

// History returns the commands sent so far, without their inline data.
func (s *Session) History() []string {
	return s.engine.History()
}

// Version returns the engine version read at startup.
func (s *Session) Version() (*semver.Version, error) {
	return s.version, s.verErr
}

// Close shuts the engine down. Later calls fail with plottypes.ErrClosed.
func (s *Session) Close() error {
	return s.engine.Close()
}

// Quit is an alias for Close.
func (s *Session) Quit() error {
	return s.Close()
}

// Exit is an alias for Close.
func (s *Session) Exit() error {
	return s.Close()
}

// String names the session in logs and shells.
func (s *Session) String() string {
	return "gnuplot"
}
