// Package encoder turns parsed plot requests into a command line plus an
// inline data payload.
//
// Series data travels either as text rows terminated by an "e" line or
// as a declared-length binary block of little-endian values. Every shape
// and type check runs here, before anything is written to the engine.
package encoder

import (
	"fmt"
	"strings"

	"plotpipe/internal/options"
	"plotpipe/internal/parser"
	"plotpipe/pkg/plottypes"
)

// Styles that select an image encoder.
const (
	StyleImage    = "image"
	StyleRGBImage = "rgbimage"
	StyleRGBAlpha = "rgbalpha"
)

const inlineSource = "'-'"

// Config controls encoding.
type Config struct {
	// Binary packs purely numeric columnar series as float64 records
	// instead of text rows.
	Binary bool
}

// Payload is a ready-to-send command and its inline data.
type Payload struct {
	Command string
	Data    []byte
}

// Encode renders a whole request: range qualifiers, comma-separated
// item clauses and the concatenated data of every series.
func Encode(req *parser.Request, cfg Config) (*Payload, error) {
	var cmd strings.Builder
	cmd.WriteString(req.Kind.Command())
	cmd.WriteByte(' ')
	for _, r := range req.Ranges {
		cmd.WriteString(r.String())
		cmd.WriteByte(' ')
	}

	var data []byte
	clauses := make([]string, 0, len(req.Items))
	for i, it := range req.Items {
		clause, block, err := EncodeItem(req.Kind, it, cfg)
		if err != nil {
			return nil, fmt.Errorf("plot item %d: %w", i+1, err)
		}
		clauses = append(clauses, clause)
		data = append(data, block...)
	}
	cmd.WriteString(strings.Join(clauses, ","))

	return &Payload{Command: strings.TrimRight(cmd.String(), " "), Data: data}, nil
}

// EncodeItem renders one item clause and its data block.
func EncodeItem(kind parser.Kind, it *parser.Item, cfg Config) (string, []byte, error) {
	opts := options.Serialize(it.Options()...)

	if it.IsExpression() {
		head := it.Expression()
		if it.IsFile() {
			head = options.Quote(head)
		}
		return joinClause(head, opts), nil, nil
	}

	data := it.Data()
	switch style := it.Style(); style {
	case StyleImage:
		return encodeImage(data, opts, 2, 0)
	case StyleRGBImage:
		return encodeImage(data, opts, 3, 3)
	case StyleRGBAlpha:
		return encodeImage(data, opts, 3, 4)
	}

	if kind == parser.Surface {
		if g, ok := singleGrid(data); ok && len(g.Shape()) == 2 {
			return encodeArray(g, opts)
		}
		if len(data) == 3 && anyGrid(data) {
			return encodeSurfaceRecord(data, opts)
		}
	} else if g, ok := singleGrid(data); ok && len(g.Shape()) == 2 {
		return encodeMatrixText(g, opts)
	}

	cols, err := columns(data)
	if err != nil {
		return "", nil, err
	}
	if cfg.Binary && allNumeric(cols) {
		return encodeColumnsBinary(cols, opts)
	}
	return encodeColumnsText(cols, opts)
}

func joinClause(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func singleGrid(data []plottypes.Argument) (plottypes.Grid, bool) {
	if len(data) != 1 {
		return plottypes.Grid{}, false
	}
	g, ok := data[0].(plottypes.Grid)
	return g, ok && g.Shaped != nil
}

func anyGrid(data []plottypes.Argument) bool {
	for _, a := range data {
		if _, ok := a.(plottypes.Grid); ok {
			return true
		}
	}
	return false
}

func columns(data []plottypes.Argument) ([]plottypes.Flattenable, error) {
	cols := make([]plottypes.Flattenable, 0, len(data))
	for i, a := range data {
		f, ok := plottypes.Flatten(a)
		if !ok {
			return nil, plottypes.NewValidationError("data", fmt.Sprintf("column %d is not a data array", i+1))
		}
		cols = append(cols, f)
	}
	return cols, nil
}

// rowCount is the shortest column length. Longer columns are truncated.
func rowCount(cols []plottypes.Flattenable) int {
	if len(cols) == 0 {
		return 0
	}
	n := cols[0].Len()
	for _, c := range cols[1:] {
		if c.Len() < n {
			n = c.Len()
		}
	}
	return n
}

func allNumeric(cols []plottypes.Flattenable) bool {
	for _, c := range cols {
		if g, ok := c.(plottypes.Shaped); ok && g.Kind() != plottypes.KindUnknown {
			continue
		}
		for i := 0; i < c.Len(); i++ {
			if _, ok := toFloat(c.At(i)); !ok {
				return false
			}
		}
	}
	return true
}
