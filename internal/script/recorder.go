package script

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"plotpipe/internal/version"
	"plotpipe/pkg/gnuplot"
	"plotpipe/pkg/plottypes"
)

// RecordedVersion is the engine version the Recorder reports.
const RecordedVersion = "5.4.8"

type exchange struct {
	command string
	data    []byte
}

// Recorder is an engine that accepts every command with an empty
// response and keeps what it was sent.
type Recorder struct {
	mu        sync.Mutex
	exchanges []exchange
	closed    bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

var _ gnuplot.Engine = (*Recorder)(nil)

// Send records the command and its data.
func (r *Recorder) Send(_ context.Context, command string, data []byte) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, plottypes.NewIOError("send", plottypes.ErrClosed)
	}
	if command == version.EngineQuery {
		return []string{RecordedVersion}, nil
	}
	r.exchanges = append(r.exchanges, exchange{command: command, data: append([]byte(nil), data...)})
	return nil, nil
}

// History returns the recorded commands.
func (r *Recorder) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.exchanges))
	for i, e := range r.exchanges {
		out[i] = e.command
	}
	return out
}

// Close stops accepting commands.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Transcript renders the recorded stream as gnuplot input. Text data is
// kept inline; binary data is summarized as a comment.
func (r *Recorder) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	for _, e := range r.exchanges {
		b.WriteString(strings.TrimRight(e.command, "\n"))
		b.WriteByte('\n')
		if len(e.data) == 0 {
			continue
		}
		if isText(e.data) {
			b.Write(e.data)
			continue
		}
		fmt.Fprintf(&b, "# %d bytes of binary data\n", len(e.data))
	}
	return b.String()
}

func isText(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	for _, c := range data {
		if c < 0x20 && c != '\n' && c != '\t' && c != '\r' {
			return false
		}
	}
	return true
}

// Record runs a script against a Recorder and returns the transcript.
func Record(sc *Script, opts ...gnuplot.Option) (string, error) {
	rec := NewRecorder()
	s, err := gnuplot.New(append(opts, gnuplot.WithEngine(rec))...)
	if err != nil {
		return "", err
	}
	defer s.Close()

	if err := Run(s, sc); err != nil {
		return "", err
	}
	return rec.Transcript(), nil
}
