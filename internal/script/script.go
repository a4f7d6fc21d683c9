// Package script loads YAML plot scripts and runs them against a session.
//
// A script has an ordered list of settings followed by commands:
//
//	settings:
//	  - title: "Example"
//	  - grid: true
//	commands:
//	  - set: {xrange: "[-5:10]"}
//	  - plot: ["x*sin(x)", {with: lines}]
//	  - raw: replot
//
// Mapping keys keep their document order, so option clauses are emitted in
// the order they were written.
package script

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"plotpipe/pkg/plottypes"
)

// Operation names accepted in the commands list.
const (
	OpSet    = "set"
	OpUnset  = "unset"
	OpPlot   = "plot"
	OpSplot  = "splot"
	OpReplot = "replot"
	OpRaw    = "raw"
	OpReset  = "reset"
	OpClear  = "clear"
	OpPause  = "pause"
)

var knownOps = map[string]bool{
	OpSet: true, OpUnset: true, OpPlot: true, OpSplot: true, OpReplot: true,
	OpRaw: true, OpReset: true, OpClear: true, OpPause: true,
}

// Step is one session call.
type Step struct {
	Op   string
	Args []any
	Line int
}

// Script is a parsed plot script.
type Script struct {
	Name  string
	Steps []Step
}

type document struct {
	Settings []yaml.Node `yaml:"settings"`
	Commands []yaml.Node `yaml:"commands"`
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Name = path
	return s, nil
}

// Parse parses script source.
func Parse(data []byte) (*Script, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}

	s := &Script{}
	for i := range doc.Settings {
		n := &doc.Settings[i]
		if n.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: settings entries must be mappings", n.Line)
		}
		v, err := convert(n)
		if err != nil {
			return nil, err
		}
		s.Steps = append(s.Steps, Step{Op: OpSet, Args: []any{v}, Line: n.Line})
	}

	for i := range doc.Commands {
		step, err := parseCommand(&doc.Commands[i])
		if err != nil {
			return nil, err
		}
		s.Steps = append(s.Steps, step)
	}
	return s, nil
}

// parseCommand reads a single-key mapping such as {plot: [...]} or a bare
// operation name such as "clear".
func parseCommand(n *yaml.Node) (Step, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if !knownOps[n.Value] {
			return Step{}, unknownOp(n.Line, n.Value)
		}
		return Step{Op: n.Value, Line: n.Line}, nil
	case yaml.MappingNode:
	default:
		return Step{}, fmt.Errorf("line %d: command must be a mapping with one operation", n.Line)
	}

	if len(n.Content) != 2 {
		return Step{}, fmt.Errorf("line %d: command must have exactly one operation, got %d", n.Line, len(n.Content)/2)
	}
	key, value := n.Content[0], n.Content[1]
	if !knownOps[key.Value] {
		return Step{}, unknownOp(key.Line, key.Value)
	}

	step := Step{Op: key.Value, Line: key.Line}
	if value.Kind == yaml.SequenceNode {
		for _, item := range value.Content {
			v, err := convert(item)
			if err != nil {
				return Step{}, err
			}
			step.Args = append(step.Args, v)
		}
		return step, nil
	}

	v, err := convert(value)
	if err != nil {
		return Step{}, err
	}
	if v != nil {
		step.Args = []any{v}
	}
	return step, nil
}

func unknownOp(line int, op string) error {
	ops := make([]string, 0, len(knownOps))
	for k := range knownOps {
		ops = append(ops, k)
	}
	sort.Strings(ops)
	return fmt.Errorf("line %d: unknown operation %q (expected one of %s)", line, op, strings.Join(ops, ", "))
}

// convert turns a YAML node into a value plottypes.Arg understands.
// Mappings become ordered Options.
func convert(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return convert(n.Alias)
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return convert(n.Content[0])
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := convert(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.MappingNode:
		opts := make(plottypes.Options, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: option keys must be scalars", k.Line)
			}
			val, err := convert(v)
			if err != nil {
				return nil, err
			}
			opts = append(opts, plottypes.Option{Key: k.Value, Value: plottypes.Arg(val)})
		}
		return opts, nil
	case yaml.ScalarNode:
		return scalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func scalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return b, nil
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return i, nil
		}
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return f, nil
	}
	return n.Value, nil
}
