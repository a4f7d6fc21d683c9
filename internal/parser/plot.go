// Package parser classifies plot and splot argument lists into range
// qualifiers and plot items.
package parser

import (
	"fmt"
	"strings"

	"plotpipe/internal/options"
	"plotpipe/pkg/plottypes"
)

// Kind selects the plotting command.
type Kind int

const (
	// Plot is a 2D plot.
	Plot Kind = iota
	// Surface is a 3D splot.
	Surface
)

// Command returns the command-language verb for the kind.
func (k Kind) Command() string {
	if k == Surface {
		return "splot"
	}
	return "plot"
}

func (k Kind) String() string {
	return k.Command()
}

// Request is a parsed plot or splot call.
type Request struct {
	Kind   Kind
	Ranges []plottypes.Range
	Items  []*Item
}

// Item is one curve or surface: either an expression (or filename)
// with options, or a data series with options.
type Item struct {
	args []plottypes.Argument

	resolved   bool
	expression string
	hasExpr    bool
	data       []plottypes.Argument
	opts       []plottypes.Argument
}

// NewItem builds an item from raw arguments.
func NewItem(args ...plottypes.Argument) *Item {
	return &Item{args: append([]plottypes.Argument(nil), args...)}
}

func (it *Item) add(a plottypes.Argument) {
	it.args = append(it.args, a)
	it.resolved = false
}

// Empty reports whether the item has no arguments.
func (it *Item) Empty() bool {
	return len(it.args) == 0
}

func (it *Item) resolve() {
	if it.resolved {
		return
	}
	it.resolved = true
	it.data, it.opts = nil, nil
	it.hasExpr = false
	if len(it.args) == 0 {
		return
	}
	if t, ok := it.args[0].(plottypes.Text); ok {
		it.expression = string(t)
		it.hasExpr = true
		it.opts = it.args[1:]
		return
	}
	for _, a := range it.args {
		if plottypes.IsData(a) {
			it.data = append(it.data, a)
		} else {
			it.opts = append(it.opts, a)
		}
	}
}

// IsExpression reports whether the item is verbatim text rather than data.
func (it *Item) IsExpression() bool {
	it.resolve()
	return it.hasExpr
}

// Expression returns the verbatim text of an expression item.
func (it *Item) Expression() string {
	it.resolve()
	return it.expression
}

// Data returns the data arguments of a series item.
func (it *Item) Data() []plottypes.Argument {
	it.resolve()
	return it.data
}

// Options returns the option arguments of the item.
func (it *Item) Options() []plottypes.Argument {
	it.resolve()
	return it.opts
}

// IsFile reports whether an expression item names a data file. That is
// the case when its options carry a using clause.
func (it *Item) IsFile() bool {
	if !it.IsExpression() {
		return false
	}
	found := false
	walkOptions(it.opts, func(key string, _ plottypes.Argument) {
		if options.IsUsing(key) {
			found = true
		}
	})
	return found
}

// Style returns the first word of the item's with clause, or "".
func (it *Item) Style() string {
	style := ""
	walkOptions(it.Options(), func(key string, v plottypes.Argument) {
		if style != "" || !options.IsWith(key) {
			return
		}
		style = firstWord(v)
	})
	return style
}

func walkOptions(args []plottypes.Argument, fn func(key string, v plottypes.Argument)) {
	for _, a := range args {
		switch v := a.(type) {
		case plottypes.Options:
			for _, o := range v {
				fn(o.Key, o.Value)
			}
		case plottypes.List:
			walkOptions(v, fn)
		}
	}
}

func firstWord(v plottypes.Argument) string {
	switch x := v.(type) {
	case plottypes.Text:
		fields := strings.Fields(string(x))
		if len(fields) > 0 {
			return fields[0]
		}
	case plottypes.List:
		if len(x) > 0 {
			return firstWord(x[0])
		}
	case plottypes.Values:
		if len(x) > 0 {
			if s, ok := x[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// Parse classifies args. A leading run of ranges becomes the range
// qualifiers; the remaining arguments are grouped into items. A Range
// after the first item is rejected rather than moved to the front.
func Parse(kind Kind, args ...plottypes.Argument) (*Request, error) {
	if err := gridError(args); err != nil {
		return nil, err
	}
	req := &Request{Kind: kind}

	i := 0
	for ; i < len(args); i++ {
		ranges, ok, err := asRanges(args[i])
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		req.Ranges = append(req.Ranges, ranges...)
	}

	cur := NewItem()
	closeItem := func() {
		if !cur.Empty() {
			req.Items = append(req.Items, cur)
		}
		cur = NewItem()
	}

	for _, a := range args[i:] {
		switch v := a.(type) {
		case plottypes.Range:
			return nil, plottypes.NewValidationError("range", fmt.Sprintf("range %s must precede the plot items", v))
		case plottypes.Text:
			closeItem()
			cur.add(v)
		case plottypes.Options:
			cur.add(v)
			req.Items = append(req.Items, cur)
			cur = NewItem()
		case plottypes.List:
			if n := countRanges(v); n == len(v) && n > 0 {
				return nil, plottypes.NewValidationError("range", "ranges must precede the plot items")
			} else if n > 0 {
				return nil, plottypes.NewValidationError("range", fmt.Sprintf("list mixes %d range(s) with %d other argument(s)", n, len(v)-n))
			}
			if plottypes.IsData(v) {
				cur.add(v)
				continue
			}
			closeItem()
			cur = NewItem(v...)
		default:
			cur.add(v)
		}
	}
	closeItem()

	for n, it := range req.Items {
		if !it.IsExpression() && len(it.Data()) == 0 {
			return nil, plottypes.NewValidationError("data", fmt.Sprintf("plot item %d has neither an expression nor data", n+1))
		}
	}
	return req, nil
}

// gridError returns the first array that failed to build.
func gridError(args []plottypes.Argument) error {
	for _, a := range args {
		switch v := a.(type) {
		case plottypes.Grid:
			if err := v.Err(); err != nil {
				return err
			}
		case plottypes.List:
			if err := gridError(v); err != nil {
				return err
			}
		}
	}
	return nil
}

// asRanges reports whether a is a range qualifier: a Range, a list made
// only of Ranges, or range-syntax text such as "[-5:10]".
func asRanges(a plottypes.Argument) ([]plottypes.Range, bool, error) {
	switch v := a.(type) {
	case plottypes.Range:
		return []plottypes.Range{v}, true, nil
	case plottypes.List:
		n := countRanges(v)
		if n == 0 {
			return nil, false, nil
		}
		if n != len(v) {
			return nil, false, plottypes.NewValidationError("range", fmt.Sprintf("list mixes %d range(s) with %d other argument(s)", n, len(v)-n))
		}
		out := make([]plottypes.Range, 0, n)
		for _, e := range v {
			out = append(out, e.(plottypes.Range))
		}
		return out, true, nil
	case plottypes.Text:
		r, ok := ParseRange(string(v))
		if !ok {
			return nil, false, nil
		}
		return []plottypes.Range{r}, true, nil
	}
	return nil, false, nil
}

func countRanges(l plottypes.List) int {
	n := 0
	for _, e := range l {
		if _, ok := e.(plottypes.Range); ok {
			n++
		}
	}
	return n
}

// ParseRange parses range syntax "[begin:end]". Colons inside quoted
// bounds do not split.
func ParseRange(s string) (plottypes.Range, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 3 || s[0] != '[' || s[len(s)-1] != ']' {
		return plottypes.Range{}, false
	}
	inner := s[1 : len(s)-1]
	if strings.ContainsAny(inner, "[]") {
		return plottypes.Range{}, false
	}

	inQuotes := false
	quoteChar := byte(0)
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case !inQuotes && (c == '"' || c == '\''):
			inQuotes = true
			quoteChar = c
		case inQuotes && c == quoteChar:
			inQuotes = false
			quoteChar = 0
		case !inQuotes && c == ':':
			return plottypes.Range{
				Begin: strings.TrimSpace(inner[:i]),
				End:   strings.TrimSpace(inner[i+1:]),
			}, true
		}
	}
	return plottypes.Range{}, false
}
