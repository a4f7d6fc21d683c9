// Package response classifies the engine's answer to a command as
// success, tolerated diagnostic or failure.
package response

import (
	"regexp"
	"strings"
)

// Outcome is the classification of a response.
type Outcome int

const (
	// Success means the engine printed nothing.
	Success Outcome = iota
	// Tolerated means the engine printed only warnings or benign notices.
	Tolerated
	// Failure means the engine reported an error.
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Tolerated:
		return "tolerated"
	}
	return "failure"
}

// MaxMessageLines bounds error messages: longer responses are cut to
// MaxMessageLines-1 lines followed by Ellipsis.
const MaxMessageLines = 7

// Ellipsis marks a truncated error message.
const Ellipsis = "..."

var (
	warningPattern = regexp.MustCompile(`(?i)^\s*("[^"]*",?\s*)?(line \d+:\s*)?warning:`)
	caretPattern   = regexp.MustCompile(`^\s*\^\s*$`)
	benignPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*end of animation sequence`),
	}
)

// Result is a classified response.
type Result struct {
	Outcome Outcome
	// Text is the tolerated diagnostic or the bounded error message.
	Text  string
	Lines []string
}

// Classify inspects the lines printed before the end-of-command marker.
func Classify(lines []string) Result {
	if isBlank(lines) {
		return Result{Outcome: Success, Lines: lines}
	}
	if tolerated(lines) {
		return Result{Outcome: Tolerated, Text: strings.Join(trimAll(lines), "\n"), Lines: lines}
	}
	return Result{Outcome: Failure, Text: Message(lines), Lines: lines}
}

// Message builds the bounded error text.
func Message(lines []string) string {
	trimmed := trimAll(lines)
	if len(trimmed) < MaxMessageLines {
		return strings.Join(trimmed, "\n")
	}
	return strings.Join(trimmed[:MaxMessageLines-1], "\n") + "\n" + Ellipsis
}

// tolerated reports whether every line is a warning, a benign notice or
// context for one. The engine echoes the offending input followed by a
// caret line; both are context.
func tolerated(lines []string) bool {
	context := make([]bool, len(lines))
	for i, l := range lines {
		if caretPattern.MatchString(l) {
			context[i] = true
			if i > 0 {
				context[i-1] = true
			}
		}
	}

	seen := false
	for i, l := range lines {
		switch {
		case strings.TrimSpace(l) == "":
		case warningPattern.MatchString(l), isBenign(l):
			seen = true
		case context[i]:
		default:
			return false
		}
	}
	return seen
}

func isBenign(line string) bool {
	for _, p := range benignPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

func isBlank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

func trimAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimRight(l, "\r\n")
	}
	return out
}
