package options

import (
	"strconv"
	"strings"
)

// quotedKeywords take a string value that must reach the engine quoted.
var quotedKeywords = []string{
	"background",
	"cblabel",
	"clabel",
	"dashtype",
	"decimalsign",
	"dt",
	"font",
	"fontpath",
	"format",
	"format_cb",
	"format_x",
	"format_x2",
	"format_xy",
	"format_y",
	"format_y2",
	"format_z",
	"loadpath",
	"locale",
	"logfile",
	"output",
	"rgb",
	"timefmt",
	"title",
	"x2label",
	"xlabel",
	"y2label",
	"ylabel",
	"zlabel",
}

// unquotedKeywords are never quoted even though they prefix a quoted
// keyword ("log" is logscale, "for" is an iteration, not format).
var unquotedKeywords = map[string]bool{
	"for":    true,
	"log":    true,
	"smooth": true,
}

type keyword struct {
	name   string
	minLen int
}

var (
	kwUsing = keyword{"using", 1}
	kwEvery = keyword{"every", 2}
	kwLabel = keyword{"label", 3}
	kwWith  = keyword{"with", 1}
)

func (k keyword) match(key string) bool {
	return len(key) >= k.minLen && strings.HasPrefix(k.name, key)
}

// NeedsQuote reports whether a string value for key must be quoted.
// key matches when it is a prefix of a quoted keyword.
func NeedsQuote(key string) bool {
	if key == "" || unquotedKeywords[key] {
		return false
	}
	for _, q := range quotedKeywords {
		if strings.HasPrefix(q, key) {
			return true
		}
	}
	return false
}

// IsUsing reports whether key abbreviates "using".
func IsUsing(key string) bool { return kwUsing.match(key) }

// IsWith reports whether key abbreviates "with".
func IsWith(key string) bool { return kwWith.match(key) }

func isColonJoined(key string) bool {
	return kwUsing.match(key) || kwEvery.match(key)
}

func isLabel(key string) bool { return kwLabel.match(key) }

// Quote wraps s in double quotes. A string already wrapped in matching
// single or double quotes is returned unchanged.
func Quote(s string) string {
	if IsQuoted(s) {
		return s
	}
	return strconv.Quote(s)
}

// IsQuoted reports whether s is wrapped in matching quotes.
func IsQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '"' || first == '\'') && first == last
}

// keywordText renders a keyword for the command language. Underscores
// separate words, so format_x becomes "format x".
func keywordText(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}
