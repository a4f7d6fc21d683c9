// Package options serializes keyword/value arguments into command-language
// clauses.
//
// Rendering follows the engine's own conventions: numeric sequences are
// comma separated, anything else is space separated, booleans become a
// bare keyword or disappear, and a closed set of keywords gets its string
// value quoted. Serialization is pure; the same input always yields the
// same bytes.
package options

import (
	"strings"

	"plotpipe/pkg/plottypes"
)

// Serialize renders a sequence of arguments. The separator is a comma
// when every element is numeric and a space otherwise.
func Serialize(args ...plottypes.Argument) string {
	sep := ","
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if !isNumeric(a) {
			sep = " "
		}
		if s := render(a); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func render(a plottypes.Argument) string {
	switch v := a.(type) {
	case nil:
		return ""
	case plottypes.Options:
		return serializeOptions(v)
	case plottypes.Range:
		return v.String()
	case plottypes.Text:
		return string(v)
	case plottypes.Scalar:
		return v.String()
	case plottypes.List:
		return Serialize(v...)
	case plottypes.Values:
		return Serialize(valuesToArgs(v)...)
	case plottypes.Grid:
		// arrays have no clause form
		return ""
	}
	return ""
}

func serializeOptions(opts plottypes.Options) string {
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		if s := KeyValue(o.Key, o.Value); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// KeyValue renders one keyword/value clause. It returns "" when the
// value is false or absent.
func KeyValue(key string, value plottypes.Argument) string {
	kw := keywordText(key)

	if s, ok := value.(plottypes.Scalar); ok {
		switch b := s.V.(type) {
		case nil:
			return ""
		case bool:
			if b {
				return kw
			}
			return ""
		}
	}
	if value == nil {
		return ""
	}

	seq, isSeq := sequence(value)

	switch {
	case isSeq && isColonJoined(key):
		return kw + " " + colonJoin(seq)
	case isLabel(key):
		return labelClause(kw, value, seq, isSeq)
	case NeedsQuote(key):
		if t, ok := value.(plottypes.Text); ok {
			return kw + " " + Quote(string(t))
		}
		if isSeq && len(seq) > 0 {
			return joinNonEmpty(kw, quoteHead(seq[0]), Serialize(seq[1:]...))
		}
	}

	if isSeq {
		return joinNonEmpty(kw, Serialize(seq...))
	}
	return joinNonEmpty(kw, Serialize(value))
}

// labelClause renders label [tag] ["text"] [options...].
func labelClause(kw string, value plottypes.Argument, seq []plottypes.Argument, isSeq bool) string {
	if !isSeq {
		if t, ok := value.(plottypes.Text); ok {
			return kw + " " + Quote(string(t))
		}
		return joinNonEmpty(kw, Serialize(value))
	}

	parts := []string{kw}
	i := 0
	if i < len(seq) && isInteger(seq[i]) {
		parts = append(parts, render(seq[i]))
		i++
	}
	if i < len(seq) {
		if t, ok := seq[i].(plottypes.Text); ok {
			parts = append(parts, Quote(string(t)))
			i++
		}
	}
	if rest := Serialize(seq[i:]...); rest != "" {
		parts = append(parts, rest)
	}
	return strings.Join(parts, " ")
}

func quoteHead(a plottypes.Argument) string {
	if t, ok := a.(plottypes.Text); ok {
		return Quote(string(t))
	}
	return render(a)
}

func colonJoin(seq []plottypes.Argument) string {
	parts := make([]string, 0, len(seq))
	for _, a := range seq {
		parts = append(parts, render(a))
	}
	return strings.Join(parts, ":")
}

// sequence unpacks List and Values so they can be splatted.
func sequence(a plottypes.Argument) ([]plottypes.Argument, bool) {
	switch v := a.(type) {
	case plottypes.List:
		return v, true
	case plottypes.Values:
		return valuesToArgs(v), true
	}
	return nil, false
}

func valuesToArgs(v plottypes.Values) []plottypes.Argument {
	out := make([]plottypes.Argument, len(v))
	for i, e := range v {
		if s, ok := e.(string); ok {
			out[i] = plottypes.Text(s)
		} else {
			out[i] = plottypes.Scalar{V: e}
		}
	}
	return out
}

func isNumeric(a plottypes.Argument) bool {
	s, ok := a.(plottypes.Scalar)
	return ok && s.IsNumeric()
}

func isInteger(a plottypes.Argument) bool {
	s, ok := a.(plottypes.Scalar)
	if !ok {
		return false
	}
	switch s.V.(type) {
	case int64, uint64:
		return true
	}
	return false
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
