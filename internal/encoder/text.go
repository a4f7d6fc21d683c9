package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"plotpipe/pkg/plottypes"
)

// significantDigits is the precision used for floats in text rows.
const significantDigits = 7

const endOfData = "e\n"

func encodeColumnsText(cols []plottypes.Flattenable, opts string) (string, []byte, error) {
	n := rowCount(cols)
	var b strings.Builder
	fields := make([]string, len(cols))
	for i := 0; i < n; i++ {
		for j, c := range cols {
			s, err := FormatValue(c.At(i))
			if err != nil {
				return "", nil, err
			}
			fields[j] = s
		}
		b.WriteString(strings.Join(fields, " "))
		b.WriteByte('\n')
	}
	b.WriteString(endOfData)
	return joinClause(inlineSource, opts), []byte(b.String()), nil
}

// encodeMatrixText writes a 2D grid as a text matrix, one row per line.
// Matrix blocks end with two "e" lines.
func encodeMatrixText(g plottypes.Grid, opts string) (string, []byte, error) {
	shape := g.Shape()
	rows, cols := shape[0], shape[1]
	var b strings.Builder
	fields := make([]string, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			s, err := FormatValue(g.At(r*cols + c))
			if err != nil {
				return "", nil, err
			}
			fields[c] = s
		}
		b.WriteString(strings.Join(fields, " "))
		b.WriteByte('\n')
	}
	b.WriteString(endOfData)
	b.WriteString(endOfData)
	return joinClause(inlineSource, "matrix", opts), []byte(b.String()), nil
}

// FormatValue renders one data value for a text row. Floats keep seven
// significant digits, integers are plain decimals and strings are
// double-quoted unless they already contain a double quote.
func FormatValue(v any) (string, error) {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', significantDigits, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', significantDigits, 32), nil
	case int8, int16, int32, int64, int, uint8, uint16, uint32, uint64, uint:
		return fmt.Sprint(x), nil
	case string:
		return formatString(x)
	case nil:
		return "NaN", nil
	}
	return formatString(fmt.Sprint(v))
}

func formatString(s string) (string, error) {
	if strings.ContainsAny(s, "\r\n") {
		return "", plottypes.NewValidationError("data", fmt.Sprintf("string %q contains a line break", s))
	}
	if strings.Contains(s, `"`) {
		if strings.ContainsAny(s, " \t") {
			return "", plottypes.NewValidationError("data", fmt.Sprintf("string %q mixes a double quote with whitespace", s))
		}
		return s, nil
	}
	return `"` + s + `"`, nil
}
