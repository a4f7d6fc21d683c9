package output

import "io"

// Option is a functional option for configuring Printer instances.
type Option func(*Printer)

// WithWriter configures the printer to write output to the specified writer.
// Default is os.Stdout if not specified.
func WithWriter(writer io.Writer) Option {
	return func(p *Printer) {
		if writer != nil {
			p.writer = writer
		}
	}
}

// WithMode configures the printer to operate in a specific output mode.
func WithMode(mode Mode) Option {
	return func(p *Printer) {
		p.mode = mode
	}
}

// ParseMode maps "auto", "styled", "plain" and "json" to a Mode. Anything
// else is ModeAuto.
func ParseMode(s string) Mode {
	switch s {
	case "styled":
		return ModeStyled
	case "plain":
		return ModePlain
	case "json":
		return ModeJSON
	}
	return ModeAuto
}
