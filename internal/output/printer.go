// Package output prints user-facing text for the plotpipe CLI and shell.
// Styling follows the terminal: colors on a color terminal, plain text with
// semantic prefixes elsewhere, or one JSON object per message.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Mode selects how messages are rendered.
type Mode int

const (
	// ModeAuto styles output when the writer is a color terminal
	ModeAuto Mode = iota

	// ModeStyled always styles output
	ModeStyled

	// ModePlain never styles output
	ModePlain

	// ModeJSON writes one JSON object per message
	ModeJSON
)

// Semantic is the meaning of a message.
type Semantic string

const (
	// SemanticPlain is engine output and other unclassified text.
	SemanticPlain Semantic = "plain"
	// SemanticSuccess reports a completed check or run.
	SemanticSuccess Semantic = "success"
	// SemanticWarning is a tolerated engine warning.
	SemanticWarning Semantic = "warning"
	// SemanticError is a failed command.
	SemanticError Semantic = "error"
	// SemanticHint suggests what to do next.
	SemanticHint Semantic = "hint"
)

var plainPrefixes = map[Semantic]string{
	SemanticWarning: "Warning: ",
	SemanticError:   "Error: ",
}

// Printer writes messages to one writer. It is safe for concurrent use.
type Printer struct {
	writer   io.Writer
	mode     Mode
	renderer *lipgloss.Renderer

	mu sync.Mutex
}

// NewPrinter creates a Printer writing to os.Stdout in ModeAuto.
func NewPrinter(options ...Option) *Printer {
	p := &Printer{
		writer: os.Stdout,
		mode:   ModeAuto,
	}
	for _, opt := range options {
		opt(p)
	}
	p.renderer = lipgloss.NewRenderer(p.writer)
	if p.mode == ModeStyled && p.renderer.ColorProfile() == termenv.Ascii {
		p.renderer.SetColorProfile(termenv.ANSI256)
	}
	return p
}

// Println writes text as is.
func (p *Printer) Println(text string) {
	p.output(SemanticPlain, text)
}

// Success writes success text.
func (p *Printer) Success(text string) {
	p.output(SemanticSuccess, text)
}

// Warning writes warning text.
func (p *Printer) Warning(text string) {
	p.output(SemanticWarning, text)
}

// Error writes error text.
func (p *Printer) Error(text string) {
	p.output(SemanticError, text)
}

// Hint writes a dimmed hint.
func (p *Printer) Hint(text string) {
	p.output(SemanticHint, text)
}

// Styled reports whether messages are rendered with colors.
func (p *Printer) Styled() bool {
	switch p.mode {
	case ModeStyled:
		return true
	case ModeAuto:
		return p.renderer.ColorProfile() != termenv.Ascii
	}
	return false
}

func (p *Printer) output(semantic Semantic, text string) {
	if text == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var finalText string
	switch {
	case p.mode == ModeJSON:
		finalText = p.renderJSON(semantic, text)
	case p.Styled():
		finalText = p.style(semantic).Render(text)
	default:
		finalText = plainPrefixes[semantic] + text
	}

	if !strings.HasSuffix(finalText, "\n") {
		finalText += "\n"
	}

	_, _ = fmt.Fprint(p.writer, finalText)
}

func (p *Printer) style(semantic Semantic) lipgloss.Style {
	s := p.renderer.NewStyle()
	switch semantic {
	case SemanticSuccess:
		return s.Foreground(lipgloss.Color("42"))
	case SemanticWarning:
		return s.Foreground(lipgloss.Color("214"))
	case SemanticError:
		return s.Foreground(lipgloss.Color("196")).Bold(true)
	case SemanticHint:
		return s.Foreground(lipgloss.Color("240")).Italic(true)
	}
	return s
}

func (p *Printer) renderJSON(semantic Semantic, text string) string {
	jsonBytes, err := json.Marshal(map[string]string{
		"type":    string(semantic),
		"message": text,
	})
	if err != nil {
		return text
	}
	return string(jsonBytes)
}
