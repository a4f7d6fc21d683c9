package encoder

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"plotpipe/pkg/plottypes"
)

const float64Format = "%float64"

func encodeColumnsBinary(cols []plottypes.Flattenable, opts string) (string, []byte, error) {
	n := rowCount(cols)
	buf := make([]byte, 0, n*len(cols)*8)
	for i := 0; i < n; i++ {
		for _, c := range cols {
			f, _ := toFloat(c.At(i))
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
		}
	}
	header := fmt.Sprintf("binary record=%d format='%s'", n, strings.Repeat(float64Format, len(cols)))
	return joinClause(inlineSource, header, opts), buf, nil
}

// encodeSurfaceRecord interleaves x, y and z as one record per grid
// point. z fixes the grid: it must be exactly two-dimensional.
func encodeSurfaceRecord(data []plottypes.Argument, opts string) (string, []byte, error) {
	z, ok := data[2].(plottypes.Grid)
	if !ok || z.Shaped == nil {
		return "", nil, plottypes.NewValidationError("shape", "z must be a 2D array")
	}
	shape := z.Shape()
	if len(shape) != 2 {
		return "", nil, plottypes.NewValidationError("shape", fmt.Sprintf("z must be 2-dimensional, got %d dimensions", len(shape)))
	}
	rows, cols := shape[0], shape[1]
	need := rows * cols

	flat, err := columns(data)
	if err != nil {
		return "", nil, err
	}
	if n := rowCount(flat); n < need {
		return "", nil, plottypes.NewValidationError("shape", fmt.Sprintf("x, y and z hold %d points, grid %dx%d needs %d", n, rows, cols, need))
	}

	buf := make([]byte, 0, need*3*8)
	for i := 0; i < need; i++ {
		for j, c := range flat {
			f, ok := toFloat(c.At(i))
			if !ok {
				return "", nil, plottypes.NewValidationError("data", fmt.Sprintf("column %d element %d is not numeric", j+1, i))
			}
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
		}
	}
	header := fmt.Sprintf("binary record=(%d,%d) format='%s' using 1:2:3", cols, rows, strings.Repeat(float64Format, 3))
	return joinClause(inlineSource, header, opts), buf, nil
}

// encodeImage validates an image-style series: one array with dims
// dimensions whose trailing extent equals channels (0 means any).
func encodeImage(data []plottypes.Argument, opts string, dims, channels int) (string, []byte, error) {
	g, ok := singleGrid(data)
	if !ok {
		return "", nil, plottypes.NewValidationError("shape", fmt.Sprintf("image style needs exactly one %dD array", dims))
	}
	shape := g.Shape()
	if len(shape) != dims {
		return "", nil, plottypes.NewValidationError("shape", fmt.Sprintf("image style needs a %dD array, got %dD", dims, len(shape)))
	}
	if channels > 0 && shape[dims-1] != channels {
		return "", nil, plottypes.NewValidationError("shape", fmt.Sprintf("last dimension must be %d, got %d", channels, shape[dims-1]))
	}
	return encodeArray(g, opts)
}

// encodeArray writes a grid as a binary array block in its own element
// format. The declared extents are (cols,rows).
func encodeArray(g plottypes.Grid, opts string) (string, []byte, error) {
	shape := g.Shape()
	rows, cols := shape[0], shape[1]
	kind := g.Kind()

	buf := make([]byte, 0, g.Len()*kind.Size())
	for i := 0; i < g.Len(); i++ {
		var err error
		buf, err = appendAs(buf, kind, g.At(i))
		if err != nil {
			return "", nil, err
		}
	}
	header := fmt.Sprintf("binary array=(%d,%d) format='%s'", cols, rows, kind.Format())
	return joinClause(inlineSource, header, opts), buf, nil
}

// appendAs writes v little-endian in the width of kind.
func appendAs(buf []byte, kind plottypes.Kind, v any) ([]byte, error) {
	le := binary.LittleEndian
	switch kind {
	case plottypes.KindInt8, plottypes.KindUint8:
		i, ok := toInt(v)
		if !ok {
			return nil, notNumeric(v)
		}
		return append(buf, byte(i)), nil
	case plottypes.KindInt16, plottypes.KindUint16:
		i, ok := toInt(v)
		if !ok {
			return nil, notNumeric(v)
		}
		return le.AppendUint16(buf, uint16(i)), nil
	case plottypes.KindInt32, plottypes.KindUint32:
		i, ok := toInt(v)
		if !ok {
			return nil, notNumeric(v)
		}
		return le.AppendUint32(buf, uint32(i)), nil
	case plottypes.KindInt64:
		i, ok := toInt(v)
		if !ok {
			return nil, notNumeric(v)
		}
		return le.AppendUint64(buf, uint64(i)), nil
	case plottypes.KindUint64:
		if u, ok := v.(uint64); ok {
			return le.AppendUint64(buf, u), nil
		}
		i, ok := toInt(v)
		if !ok {
			return nil, notNumeric(v)
		}
		return le.AppendUint64(buf, uint64(i)), nil
	case plottypes.KindFloat32:
		f, ok := toFloat(v)
		if !ok {
			return nil, notNumeric(v)
		}
		return le.AppendUint32(buf, math.Float32bits(float32(f))), nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil, notNumeric(v)
	}
	return le.AppendUint64(buf, math.Float64bits(f)), nil
}

func notNumeric(v any) error {
	return plottypes.NewValidationError("data", fmt.Sprintf("%v (%T) is not numeric", v, v))
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	case float32:
		return int64(x), true
	case float64:
		return int64(x), true
	}
	return 0, false
}
