package plottypes

import (
	"fmt"
)

// Kind is the element type of a shaped array.
type Kind int

// Element kinds understood by the binary encoders.
const (
	KindUnknown Kind = iota
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
)

var kindFormats = map[Kind]string{
	KindInt8:    "%int8",
	KindUint8:   "%uint8",
	KindInt16:   "%int16",
	KindUint16:  "%uint16",
	KindInt32:   "%int32",
	KindUint32:  "%uint32",
	KindInt64:   "%int64",
	KindUint64:  "%uint64",
	KindFloat32: "%float32",
	KindFloat64: "%float64",
}

// Format returns the engine's binary format token for the kind.
// Unknown kinds use %float64.
func (k Kind) Format() string {
	if f, ok := kindFormats[k]; ok {
		return f
	}
	return "%float64"
}

// Size returns the element width in bytes.
func (k Kind) Size() int {
	switch k {
	case KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	}
	return 8
}

// Flattenable is a sequence with indexed access in row-major order.
type Flattenable interface {
	Len() int
	At(i int) any
}

// Shaped is a Flattenable with explicit extents, outermost first.
type Shaped interface {
	Flattenable
	Shape() []int
	Kind() Kind
}

// Number is the set of element types Dense accepts.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Dense is a row-major in-memory shaped array.
type Dense[T Number] struct {
	data  []T
	shape []int
}

// NewDense wraps data with the given extents. The product of the
// extents must equal len(data).
func NewDense[T Number](data []T, shape ...int) (*Dense[T], error) {
	if len(shape) == 0 {
		shape = []int{len(data)}
	}
	size := 1
	for _, n := range shape {
		if n < 0 {
			return nil, NewValidationError("shape", fmt.Sprintf("negative extent %d", n))
		}
		size *= n
	}
	if size != len(data) {
		return nil, NewValidationError("shape", fmt.Sprintf("shape %v needs %d elements, got %d", shape, size, len(data)))
	}
	return &Dense[T]{data: data, shape: append([]int(nil), shape...)}, nil
}

// MustDense is NewDense that panics on a shape mismatch.
func MustDense[T Number](data []T, shape ...int) *Dense[T] {
	d, err := NewDense(data, shape...)
	if err != nil {
		panic(err)
	}
	return d
}

// Shape returns a copy of the extents.
func (d *Dense[T]) Shape() []int {
	return append([]int(nil), d.shape...)
}

// Len returns the flattened length.
func (d *Dense[T]) Len() int {
	return len(d.data)
}

// At returns the i-th element in row-major order, converted to the
// fixed-width Go type matching Kind.
func (d *Dense[T]) At(i int) any {
	v := d.data[i]
	switch d.Kind() {
	case KindInt8:
		return int8(v)
	case KindUint8:
		return uint8(v)
	case KindInt16:
		return int16(v)
	case KindUint16:
		return uint16(v)
	case KindInt32:
		return int32(v)
	case KindUint32:
		return uint32(v)
	case KindInt64:
		return int64(v)
	case KindUint64:
		return uint64(v)
	case KindFloat32:
		return float32(v)
	}
	return float64(v)
}

// Kind reports the element kind of T.
func (d *Dense[T]) Kind() Kind {
	var zero T
	switch any(zero).(type) {
	case int8:
		return KindInt8
	case uint8:
		return KindUint8
	case int16:
		return KindInt16
	case uint16:
		return KindUint16
	case int32:
		return KindInt32
	case uint32:
		return KindUint32
	case int, int64:
		return KindInt64
	case uint, uint64:
		return KindUint64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	}
	return KindUnknown
}
