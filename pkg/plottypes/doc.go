// Package plottypes defines the argument model shared by the plotpipe
// packages.
//
// A plotting request is a loosely typed, order-significant list of
// arguments. Each argument is one variant of the closed Argument union:
//
//   - Range: an axis range qualifier rendered as [begin:end]
//   - Values: a flat, homogeneous sequence of numbers or strings
//   - List: a heterogeneous sequence of arguments (ranges, option seeds, nested lists)
//   - Options: an ordered keyword/value set
//   - Text: a verbatim string (expression, filename or command fragment)
//   - Grid: a shaped 2D or 3D array
//   - Scalar: a single number, boolean or nil
//
// # Data Classification
//
// Whether an argument is plotted as data is decided by IsData, a closed
// heuristic: Grid and Values are always data; a List is data only when
// every element is a numeric Scalar, or every element is Text, and the
// list does not end with Options. Lists mixing integers and floats widen
// to one numeric kind. Anything else is treated as plot options.
//
// # Array Capabilities
//
// Sample data from numeric libraries is consumed through two small
// interfaces: Flattenable (length plus indexed access in row-major
// order) and Shaped (Flattenable plus explicit extents and an element
// kind). Dense is a generic in-memory implementation; FromMatrix adapts
// gonum matrices.
//
// # Errors
//
// ValidationError, ProtocolError and IOError form the error taxonomy.
// All of them support errors.Is and errors.As.
package plottypes
