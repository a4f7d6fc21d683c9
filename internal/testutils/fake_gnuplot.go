// Package testutils provides an in-memory gnuplot stand-in and file helpers
// for plotpipe testing.
package testutils

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"sync"
)

// Responder returns the output lines the fake engine prints for one input line.
type Responder func(line string) []string

// FakeGnuplot speaks the engine side of the pipe protocol: it answers
// print "..." lines by echoing the string and passes every other input
// line to a Responder.
type FakeGnuplot struct {
	mu       sync.Mutex
	received bytes.Buffer
	lines    []string
	respond  Responder
	silent   bool

	inR  *io.PipeReader
	inW  *io.PipeWriter
	outR *io.PipeReader
	outW *io.PipeWriter
	done chan struct{}
}

// NewFakeGnuplot starts a fake engine. A nil responder prints nothing.
func NewFakeGnuplot(respond Responder) *FakeGnuplot {
	if respond == nil {
		respond = func(string) []string { return nil }
	}
	f := &FakeGnuplot{respond: respond, done: make(chan struct{})}
	f.inR, f.inW = io.Pipe()
	f.outR, f.outW = io.Pipe()
	go f.serve()
	return f
}

// Stdin is the engine's input.
func (f *FakeGnuplot) Stdin() io.WriteCloser { return f.inW }

// Stdout is the engine's merged output.
func (f *FakeGnuplot) Stdout() io.Reader { return f.outR }

func (f *FakeGnuplot) serve() {
	defer close(f.done)
	defer f.inR.Close()
	defer f.outW.Close()

	br := bufio.NewReader(f.inR)
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			f.mu.Lock()
			f.received.WriteString(raw)
			line := strings.TrimRight(raw, "\n")
			f.lines = append(f.lines, line)
			silent := f.silent
			f.mu.Unlock()

			var out []string
			if s, ok := printed(line); ok {
				if !silent {
					out = []string{s}
				}
			} else {
				out = f.respond(line)
			}
			for _, o := range out {
				if _, werr := io.WriteString(f.outW, o+"\n"); werr != nil {
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

func printed(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, `print "`)
	if !ok || !strings.HasSuffix(rest, `"`) {
		return "", false
	}
	return strings.TrimSuffix(rest, `"`), true
}

// Received returns every byte written to the engine.
func (f *FakeGnuplot) Received() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.received.String()
}

// Commands returns the input lines that were not marker prints.
func (f *FakeGnuplot) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, l := range f.lines {
		if _, ok := printed(l); !ok {
			out = append(out, l)
		}
	}
	return out
}

// Hang makes the engine stop answering marker prints.
func (f *FakeGnuplot) Hang() {
	f.mu.Lock()
	f.silent = true
	f.mu.Unlock()
}

// Exit simulates the engine dying: its output reaches end-of-stream.
func (f *FakeGnuplot) Exit() {
	_ = f.outW.Close()
}

// Wait blocks until the engine has stopped reading input.
func (f *FakeGnuplot) Wait() {
	<-f.done
}

// Script builds a Responder from exact command lines to their output.
func Script(responses map[string][]string) Responder {
	return func(line string) []string {
		return responses[line]
	}
}
