// Package channel owns the gnuplot subprocess and runs the synchronous
// command/response protocol over its pipes.
//
// Every command is followed by a print of a per-channel marker. The
// engine's output is read line by line until the marker comes back; the
// lines before it are the response. A channel that loses sync (timeout,
// cancellation, broken pipe, engine exit) is poisoned and fails every
// later call with the same error.
package channel

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"plotpipe/internal/logger"
	"plotpipe/pkg/plottypes"
)

// markerPrefix starts every end-of-command marker.
const markerPrefix = "plotpipe_eoc_"

// lineBuffer is how many engine lines may queue before the reader waits.
const lineBuffer = 256

// Config contains options for a channel.
type Config struct {
	Executable string        // Engine command line (default: "gnuplot")
	Persist    bool          // Keep plot windows after the engine exits
	Timeout    time.Duration // Per-command response timeout, 0 waits forever
	Debug      bool          // Log traffic at debug level
}

type readResult struct {
	line string
	err  error
}

// Channel is one engine connection. Send calls are serialized.
type Channel struct {
	mu      sync.Mutex
	stdin   io.WriteCloser
	lines   chan readResult
	quit    chan struct{}
	marker  string
	timeout time.Duration
	history []string
	broken  error

	proc      *process
	closeOnce sync.Once
	log       *log.Logger
}

// New runs the protocol over an existing pair of pipes: commands go to
// w, responses are read from r.
func New(w io.WriteCloser, r io.Reader, cfg Config) *Channel {
	c := &Channel{
		stdin:   w,
		lines:   make(chan readResult, lineBuffer),
		quit:    make(chan struct{}),
		marker:  markerPrefix + uuid.New().String(),
		timeout: cfg.Timeout,
		log:     logger.NewStyledLogger("channel"),
	}
	if cfg.Debug {
		c.log.SetLevel(log.DebugLevel)
	}
	go c.readLoop(r)
	return c
}

// Marker returns the end-of-command marker of this channel.
func (c *Channel) Marker() string {
	return c.marker
}

func (c *Channel) readLoop(r io.Reader) {
	defer close(c.lines)

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" && (err == nil || err == io.EOF) {
			res := readResult{line: strings.TrimRight(line, "\r\n")}
			select {
			case c.lines <- res:
			case <-c.quit:
				return
			}
		}
		if err != nil {
			select {
			case c.lines <- readResult{err: err}:
			case <-c.quit:
			}
			return
		}
	}
}

// Send writes command, its inline data and the marker request, then
// collects the response lines up to the marker.
func (c *Channel) Send(ctx context.Context, command string, data []byte) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken != nil {
		return nil, c.broken
	}
	c.history = append(c.history, command)

	var buf bytes.Buffer
	buf.WriteString(command)
	if !strings.HasSuffix(command, "\n") {
		buf.WriteByte('\n')
	}
	buf.Write(data)
	fmt.Fprintf(&buf, "print %q\n", c.marker)

	c.log.Debug("send", "command", command, "bytes", len(data))

	// Write concurrently with reading so a chatty engine cannot
	// deadlock against a full pipe.
	written := make(chan error, 1)
	go func() {
		_, err := c.stdin.Write(buf.Bytes())
		written <- err
	}()

	var timeout <-chan time.Time
	if c.timeout > 0 {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var response []string
	for {
		select {
		case err := <-written:
			if err != nil {
				return nil, c.fail(plottypes.NewIOError("write", err))
			}
			written = nil
		case <-ctx.Done():
			return nil, c.fail(plottypes.NewIOError("read", ctx.Err()))
		case <-timeout:
			return nil, c.fail(plottypes.NewIOError("read", fmt.Errorf("%w after %v", plottypes.ErrTimeout, c.timeout)))
		case r, ok := <-c.lines:
			if !ok || r.err != nil {
				return nil, c.fail(plottypes.NewIOError("read", exitError(r.err)))
			}
			if r.line == c.marker {
				return response, nil
			}
			c.log.Debug("recv", "line", r.line)
			response = append(response, r.line)
		}
	}
}

func exitError(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return plottypes.ErrEngineExited
	}
	return fmt.Errorf("%w: %v", plottypes.ErrEngineExited, err)
}

// fail poisons the channel. Callers hold c.mu.
func (c *Channel) fail(err error) error {
	if c.broken == nil {
		c.broken = err
		c.log.Debug("channel failed", "error", err)
	}
	return c.broken
}

// Err returns the error that poisoned the channel, or nil.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.broken
}

// History returns the commands sent so far, without their data.
func (c *Channel) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.history...)
}

// Close shuts the engine down. Later sends fail with ErrClosed.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.quit)
		err = c.stdin.Close()
		if c.proc != nil {
			if werr := c.proc.stop(); werr != nil && err == nil {
				err = werr
			}
		}
		c.mu.Lock()
		if c.broken == nil {
			c.broken = plottypes.NewIOError("send", plottypes.ErrClosed)
		}
		c.mu.Unlock()
	})
	return err
}
