package plottypes

import (
	"strconv"
)

// Argument is one element of a plotting request.
// The set of implementations is closed to this package.
type Argument interface {
	argument()
}

// Range is an axis range qualifier. An empty bound is omitted when
// rendered, so Range{End: "10"} renders as [:10].
type Range struct {
	Begin string
	End   string
}

// Span returns a Range with both numeric bounds set.
func Span(begin, end float64) Range {
	return Range{Begin: FormatNumber(begin), End: FormatNumber(end)}
}

// From returns a Range with only the lower bound set.
func From(begin float64) Range {
	return Range{Begin: FormatNumber(begin)}
}

// To returns a Range with only the upper bound set.
func To(end float64) Range {
	return Range{End: FormatNumber(end)}
}

// String renders the range as [begin:end].
func (r Range) String() string {
	return "[" + r.Begin + ":" + r.End + "]"
}

// Values is a flat homogeneous sequence. Elements are float64, int64,
// uint64 or string.
type Values []any

// Len returns the number of elements.
func (v Values) Len() int { return len(v) }

// At returns the i-th element.
func (v Values) At(i int) any { return v[i] }

// List is a heterogeneous sequence of arguments.
type List []Argument

// Option is a single keyword/value pair. A nil Value means absent.
type Option struct {
	Key   string
	Value Argument
}

// Options is an ordered keyword/value set.
type Options []Option

// Get returns the value stored under key exactly as written.
func (o Options) Get(key string) (Argument, bool) {
	for _, opt := range o {
		if opt.Key == key {
			return opt.Value, true
		}
	}
	return nil, false
}

// Text is a verbatim string argument.
type Text string

// Scalar holds a single number, boolean or nil. Numbers are normalized
// to float64, int64 or uint64.
type Scalar struct {
	V any
}

// IsNumeric reports whether the scalar holds a number.
func (s Scalar) IsNumeric() bool {
	switch s.V.(type) {
	case float64, int64, uint64:
		return true
	}
	return false
}

// String renders the scalar in its natural textual form.
func (s Scalar) String() string {
	switch v := s.V.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return FormatNumber(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case string:
		return v
	}
	return ""
}

// Grid wraps a shaped array so it can travel as an Argument.
type Grid struct {
	Shaped

	err error
}

// Err returns why the array could not be built, such as ragged rows.
func (g Grid) Err() error {
	return g.err
}

func (Range) argument()   {}
func (Values) argument()  {}
func (List) argument()    {}
func (Options) argument() {}
func (Text) argument()    {}
func (Scalar) argument()  {}
func (Grid) argument()    {}

// FormatNumber renders a float in its shortest exact form.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// IsData reports whether a is plotted as data rather than options.
func IsData(a Argument) bool {
	switch v := a.(type) {
	case Grid:
		return v.Shaped != nil
	case Values:
		return true
	case List:
		return listIsData(v)
	}
	return false
}

// listIsData implements the widened-type check. Ints and floats count
// as one numeric kind; a trailing Options disqualifies the list.
func listIsData(l List) bool {
	if len(l) == 0 {
		return false
	}
	if _, ok := l[len(l)-1].(Options); ok {
		return false
	}
	switch first := l[0].(type) {
	case Scalar:
		if !first.IsNumeric() {
			return false
		}
		for _, e := range l[1:] {
			s, ok := e.(Scalar)
			if !ok || !s.IsNumeric() {
				return false
			}
		}
		return true
	case Text:
		for _, e := range l[1:] {
			if _, ok := e.(Text); !ok {
				return false
			}
		}
		return true
	}
	return false
}

// Flatten returns the data held by a data argument as a Flattenable.
// The second result is false when a is not data.
func Flatten(a Argument) (Flattenable, bool) {
	switch v := a.(type) {
	case Grid:
		if v.Shaped == nil {
			return nil, false
		}
		return v.Shaped, true
	case Values:
		return v, true
	case List:
		if !listIsData(v) {
			return nil, false
		}
		out := make(Values, len(v))
		for i, e := range v {
			switch x := e.(type) {
			case Scalar:
				out[i] = x.V
			case Text:
				out[i] = string(x)
			}
		}
		return out, true
	}
	return nil, false
}
