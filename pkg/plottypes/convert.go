package plottypes

import (
	"fmt"
	"reflect"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Arg converts a Go value into an Argument.
//
//	string                       -> Text
//	bool, numbers, nil           -> Scalar
//	[]float64, []int, []string…  -> Values
//	[]any                        -> List
//	map[string]any               -> Options, keys sorted
//	[][]float64, [][]int…        -> Grid (2D)
//	Shaped, mat.Matrix           -> Grid
//
// Slices and arrays of any number or string type, named element types
// included, become Values. Ragged 2D slices become a Grid whose Err
// reports the mismatch. Values of any other type are rendered with fmt
// and become Text.
func Arg(v any) Argument {
	switch x := v.(type) {
	case Argument:
		return x
	case nil:
		return Scalar{}
	case string:
		return Text(x)
	case bool:
		return Scalar{V: x}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return Scalar{V: normalizeNumber(x)}
	case []float64:
		return valuesOf(x)
	case []float32:
		return valuesOf(x)
	case []int:
		return valuesOf(x)
	case []int32:
		return valuesOf(x)
	case []int64:
		return valuesOf(x)
	case []uint8:
		return valuesOf(x)
	case []uint32:
		return valuesOf(x)
	case []uint64:
		return valuesOf(x)
	case []string:
		out := make(Values, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case []any:
		out := make(List, len(x))
		for i, e := range x {
			out[i] = Arg(e)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Options, 0, len(keys))
		for _, k := range keys {
			out = append(out, Option{Key: k, Value: Arg(x[k])})
		}
		return out
	case [][]float64:
		g, err := FromRows(x)
		if err != nil {
			return Grid{err: err}
		}
		return g
	case Shaped:
		return Grid{Shaped: x}
	case mat.Matrix:
		return FromMatrix(x)
	}
	if a, ok := sliceArg(reflect.ValueOf(v)); ok {
		return a
	}
	if s, ok := v.(fmt.Stringer); ok {
		return Text(s.String())
	}
	return Text(fmt.Sprint(v))
}

// sliceArg converts slices and arrays of any number or string type,
// named element types included, and 2D numeric slices.
func sliceArg(rv reflect.Value) (Argument, bool) {
	if !isSequence(rv.Kind()) {
		return nil, false
	}
	elem := rv.Type().Elem()
	switch {
	case isNumberKind(elem.Kind()), elem.Kind() == reflect.String:
		out := make(Values, rv.Len())
		for i := range out {
			out[i] = reflectScalar(rv.Index(i))
		}
		return out, true
	case isSequence(elem.Kind()) && isNumberKind(elem.Elem().Kind()):
		rows := make([][]float64, rv.Len())
		for i := range rows {
			row := rv.Index(i)
			rows[i] = make([]float64, row.Len())
			for j := range rows[i] {
				rows[i][j] = reflectFloat(row.Index(j))
			}
		}
		g, err := FromRows(rows)
		if err != nil {
			return Grid{err: err}, true
		}
		return g, true
	}
	return nil, false
}

func isSequence(k reflect.Kind) bool {
	return k == reflect.Slice || k == reflect.Array
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// reflectScalar widens a number to float64, int64 or uint64 the way
// normalizeNumber does. Strings stay strings.
func reflectScalar(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return v.String()
}

func reflectFloat(v reflect.Value) float64 {
	switch x := reflectScalar(v).(type) {
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float64:
		return x
	}
	return 0
}

// Args converts each value with Arg.
func Args(vs ...any) []Argument {
	out := make([]Argument, len(vs))
	for i, v := range vs {
		out[i] = Arg(v)
	}
	return out
}

// Opts builds ordered Options from alternating keys and values.
// A trailing key without a value is set to true.
func Opts(kv ...any) Options {
	out := make(Options, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		var val Argument = Scalar{V: true}
		if i+1 < len(kv) {
			val = Arg(kv[i+1])
		}
		out = append(out, Option{Key: key, Value: val})
	}
	return out
}

func valuesOf[T Number](xs []T) Values {
	out := make(Values, len(xs))
	for i, x := range xs {
		out[i] = normalizeNumber(x)
	}
	return out
}

// normalizeNumber widens any Go number to float64, int64 or uint64.
func normalizeNumber(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	case float32:
		return float64(x)
	case float64:
		return x
	}
	return v
}
