package encoder

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plotpipe/internal/parser"
	"plotpipe/pkg/plottypes"
)

func encode(t *testing.T, kind parser.Kind, cfg Config, args ...any) (*Payload, error) {
	t.Helper()
	req, err := parser.Parse(kind, plottypes.Args(args...)...)
	require.NoError(t, err)
	return Encode(req, cfg)
}

func TestEncode_ExpressionWithRange(t *testing.T) {
	p, err := encode(t, parser.Plot, Config{},
		plottypes.Span(-5, 10),
		"x*sin(x)", plottypes.Opts("with", "lines", "lt", plottypes.Opts("rgb", "blue", "lw", 3)),
	)
	require.NoError(t, err)
	assert.Equal(t, `plot [-5:10] x*sin(x) with lines lt rgb "blue" lw 3`, p.Command)
	assert.Empty(t, p.Data)
}

func TestEncode_FilenameIsQuoted(t *testing.T) {
	p, err := encode(t, parser.Plot, Config{},
		"tmp.dat", plottypes.Opts("using", []int{1, 2}, "w", "lines", "t", "sin(x)"),
	)
	require.NoError(t, err)
	assert.Equal(t, `plot "tmp.dat" using 1:2 w lines t "sin(x)"`, p.Command)
}

func TestEncode_UnequalColumnsTruncate(t *testing.T) {
	p, err := encode(t, parser.Plot, Config{}, []int{1, 2, 3}, []int{4, 5, 6, 7})
	require.NoError(t, err)
	assert.Equal(t, "plot '-'", p.Command)
	assert.Equal(t, "1 4\n2 5\n3 6\ne\n", string(p.Data))
}

func TestEncode_MultipleSeries(t *testing.T) {
	x := []float64{0.5, 1.25}
	p, err := encode(t, parser.Plot, Config{},
		x, []float64{1.0 / 3, 2}, plottypes.Opts("w", "points", "t", "a"),
		x, x, plottypes.Opts("w", "lines", "t", "b"),
	)
	require.NoError(t, err)
	assert.Equal(t, `plot '-' w points t "a",'-' w lines t "b"`, p.Command)
	assert.Equal(t, "0.5 0.3333333\n1.25 2\ne\n0.5 0.5\n1.25 1.25\ne\n", string(p.Data))
}

func TestEncode_StringColumn(t *testing.T) {
	p, err := encode(t, parser.Plot, Config{},
		[]string{"a", "b"}, []int{10, 20},
		plottypes.Opts("using", []any{2, "xtic(1)"}, "w", "boxes"),
	)
	require.NoError(t, err)
	assert.Equal(t, "plot '-' using 2:xtic(1) w boxes", p.Command)
	assert.Equal(t, "\"a\" 10\n\"b\" 20\ne\n", string(p.Data))
}

func TestEncode_QuoteWithWhitespaceRejected(t *testing.T) {
	_, err := encode(t, parser.Plot, Config{}, []string{`say "hi"`}, []int{1})
	assert.ErrorIs(t, err, plottypes.ErrValidation)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{0.5, "0.5"},
		{1.0 / 3, "0.3333333"},
		{1234567.8, "1234568"},
		{float32(2.5), "2.5"},
		{int64(-7), "-7"},
		{uint8(200), "200"},
		{"abc", `"abc"`},
		{`a"b`, `a"b`},
		{"", `""`},
		{nil, "NaN"},
	}

	for _, tt := range tests {
		got, err := FormatValue(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := FormatValue("two\nlines")
	assert.ErrorIs(t, err, plottypes.ErrValidation)
}

func TestEncode_BinaryRecord(t *testing.T) {
	p, err := encode(t, parser.Plot, Config{Binary: true}, []float64{1, 2, 3}, []int{4, 5})
	require.NoError(t, err)
	assert.Equal(t, "plot '-' binary record=2 format='%float64%float64'", p.Command)
	require.Len(t, p.Data, 2*2*8)
	assert.Equal(t, 1.0, readFloat(p.Data, 0))
	assert.Equal(t, 4.0, readFloat(p.Data, 1))
	assert.Equal(t, 2.0, readFloat(p.Data, 2))
	assert.Equal(t, 5.0, readFloat(p.Data, 3))
}

func TestEncode_BinaryFallsBackToTextForStrings(t *testing.T) {
	p, err := encode(t, parser.Plot, Config{Binary: true}, []string{"a"}, []int{1})
	require.NoError(t, err)
	assert.Equal(t, "plot '-'", p.Command)
	assert.Equal(t, "\"a\" 1\ne\n", string(p.Data))
}

func TestEncode_PlotMatrixText(t *testing.T) {
	g := plottypes.MustDense([]int{1, 2, 3, 4, 5, 6}, 2, 3)
	p, err := encode(t, parser.Plot, Config{}, g, plottypes.Opts("w", "image"))
	require.NoError(t, err)
	// image style wins over the matrix form
	assert.Equal(t, "plot '-' binary array=(3,2) format='%int64' w image", p.Command)

	p, err = encode(t, parser.Plot, Config{}, g)
	require.NoError(t, err)
	assert.Equal(t, "plot '-' matrix", p.Command)
	assert.Equal(t, "1 2 3\n4 5 6\ne\ne\n", string(p.Data))
}

func TestEncode_SurfaceArray(t *testing.T) {
	g := plottypes.MustDense([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	p, err := encode(t, parser.Surface, Config{}, g, plottypes.Opts("w", "pm3d"))
	require.NoError(t, err)
	assert.Equal(t, "splot '-' binary array=(3,2) format='%float64' w pm3d", p.Command)
	require.Len(t, p.Data, 6*8)
	assert.Equal(t, 6.0, readFloat(p.Data, 5))
}

func TestEncode_SurfaceRecord(t *testing.T) {
	x := plottypes.MustDense([]float64{0, 1, 0, 1}, 2, 2)
	y := plottypes.MustDense([]float64{0, 0, 1, 1}, 2, 2)
	z := plottypes.MustDense([]float64{5, 6, 7, 8}, 2, 2)
	p, err := encode(t, parser.Surface, Config{}, x, y, z, plottypes.Opts("w", "pm3d"))
	require.NoError(t, err)
	assert.Equal(t, "splot '-' binary record=(2,2) format='%float64%float64%float64' using 1:2:3 w pm3d", p.Command)
	require.Len(t, p.Data, 4*3*8)
	assert.Equal(t, 1.0, readFloat(p.Data, 3))
	assert.Equal(t, 6.0, readFloat(p.Data, 5))
}

func TestEncode_SurfaceRecordValidation(t *testing.T) {
	z := plottypes.MustDense([]float64{5, 6, 7, 8}, 2, 2)
	_, err := encode(t, parser.Surface, Config{}, []float64{0, 1}, []float64{0, 1, 2, 3}, z)
	var verr *plottypes.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "shape", verr.Field)

	z3 := plottypes.MustDense(make([]float64, 8), 2, 2, 2)
	_, err = encode(t, parser.Surface, Config{}, make([]float64, 8), make([]float64, 8), z3)
	assert.ErrorIs(t, err, plottypes.ErrValidation)
}

func TestEncode_ImageValidation(t *testing.T) {
	tests := []struct {
		name  string
		data  any
		style string
		ok    bool
	}{
		{"image 1D rejected", []float64{1, 2, 3}, "image", false},
		{"image 2D", plottypes.MustDense([]uint8{1, 2, 3, 4}, 2, 2), "image", true},
		{"rgbimage 3x", plottypes.MustDense(make([]uint8, 12), 2, 2, 3), "rgbimage", true},
		{"rgbimage wrong channels", plottypes.MustDense(make([]uint8, 16), 2, 2, 4), "rgbimage", false},
		{"rgbalpha 4", plottypes.MustDense(make([]uint8, 16), 2, 2, 4), "rgbalpha", true},
		{"rgbalpha 2D rejected", plottypes.MustDense(make([]uint8, 4), 2, 2), "rgbalpha", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := encode(t, parser.Plot, Config{}, tt.data, plottypes.Opts("with", tt.style))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, plottypes.ErrValidation)
			}
		})
	}
}

func TestEncode_ImageElementFormats(t *testing.T) {
	p, err := encode(t, parser.Plot, Config{},
		plottypes.MustDense([]int16{-1, 2, 3, 4, 5, 6}, 2, 3), plottypes.Opts("with", "image"))
	require.NoError(t, err)
	assert.Equal(t, "plot '-' binary array=(3,2) format='%int16' with image", p.Command)
	require.Len(t, p.Data, 12)
	assert.Equal(t, uint16(0xffff), binary.LittleEndian.Uint16(p.Data[0:2]))

	p, err = encode(t, parser.Plot, Config{},
		plottypes.MustDense(make([]uint8, 2*2*3), 2, 2, 3), plottypes.Opts("with", "rgbimage"))
	require.NoError(t, err)
	assert.Equal(t, "plot '-' binary array=(2,2) format='%uint8' with rgbimage", p.Command)
	assert.Len(t, p.Data, 12)
}

func readFloat(b []byte, i int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b[i*8 : i*8+8]))
}
