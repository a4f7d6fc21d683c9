// Package shell provides the interactive gnuplot shell: every input line is
// forwarded to a session and the engine's answer is printed back.
package shell

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell/v2"

	"plotpipe/internal/logger"
	"plotpipe/internal/output"
	"plotpipe/pkg/gnuplot"
	"plotpipe/pkg/plottypes"
)

// ErrInlineData rejects commands that would read '-' data from the
// command pipe.
var ErrInlineData = errors.New("inline data ('-') is not supported in the shell; use the plotpipe library or a script")

// ErrWaitForInput rejects a negative pause, which waits for a line on the
// command pipe.
var ErrWaitForInput = errors.New("pause with a negative time waits for input on the command pipe; use a positive time")

// Handler forwards shell input to a session.
type Handler struct {
	session *gnuplot.Session
	out     *output.Printer
}

// NewHandler creates a handler for a session. A nil printer writes to
// standard output.
func NewHandler(session *gnuplot.Session, out *output.Printer) *Handler {
	if out == nil {
		out = output.NewPrinter()
	}
	return &Handler{session: session, out: out}
}

// ProcessInput handles one line read by ishell.
func (h *Handler) ProcessInput(c *ishell.Context) {
	if len(c.RawArgs) == 0 {
		return
	}

	rawInput := strings.TrimSpace(strings.Join(c.RawArgs, " "))
	answer, err := h.Execute(rawInput)
	h.out.Println(answer)
	if err != nil {
		logger.Debug("Command failed", "command", rawInput, "error", err)
		h.out.Error(err.Error())
		var ioErr *plottypes.IOError
		if errors.As(err, &ioErr) {
			h.out.Hint("gnuplot is gone; type 'exit' to leave")
		}
	}
}

// Execute sends one input line and returns the engine's output. Blank
// lines and comments are skipped.
func (h *Handler) Execute(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "#") {
		return "", nil
	}
	if readsInlineData(input) {
		return "", ErrInlineData
	}
	if waitsForInput(input) {
		return "", ErrWaitForInput
	}
	if topic, ok := helpTopic(input); ok {
		return h.session.Help(topic)
	}

	lines, err := h.session.Query(context.Background(), input)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// readsInlineData reports whether a plot command names the '-' file.
func readsInlineData(input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "plot", "p", "splot", "sp", "replot", "rep":
		return strings.Contains(input, "'-'") || strings.Contains(input, `"-"`)
	}
	return false
}

// helpTopic reports whether input is a help command and returns its
// topic. Help goes through Session.Help so subtopic prompts are answered.
func helpTopic(input string) (string, bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 || !(abbreviates(fields[0], "help", 1) || fields[0] == "?") {
		return "", false
	}
	return strings.Join(fields[1:], " "), true
}

// waitsForInput reports whether input is a pause with a negative time.
func waitsForInput(input string) bool {
	fields := strings.Fields(input)
	if len(fields) < 2 || !abbreviates(fields[0], "pause", 2) {
		return false
	}
	t, err := strconv.ParseFloat(fields[1], 64)
	return err == nil && t < 0
}

// abbreviates reports whether word is command shortened to at least
// minLen letters.
func abbreviates(word, command string, minLen int) bool {
	return len(word) >= minLen && strings.HasPrefix(command, word)
}
