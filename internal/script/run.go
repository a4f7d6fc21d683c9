package script

import (
	"fmt"
	"strings"

	"plotpipe/internal/logger"
	"plotpipe/pkg/gnuplot"
)

// Run executes every step in order and stops at the first failure.
func Run(s *gnuplot.Session, sc *Script) error {
	log := logger.NewStyledLogger("script")
	for i, step := range sc.Steps {
		log.Debug("step", "index", i, "line", step.Line, "command", step.Op)
		if err := runStep(s, step); err != nil {
			return fmt.Errorf("line %d (%s): %w", step.Line, step.Op, err)
		}
	}
	return nil
}

func runStep(s *gnuplot.Session, step Step) error {
	switch step.Op {
	case OpSet:
		return s.Set(step.Args...)
	case OpUnset:
		return s.Unset(step.Args...)
	case OpPlot:
		return s.Plot(step.Args...)
	case OpSplot:
		return s.Splot(step.Args...)
	case OpReplot:
		return s.Replot()
	case OpClear:
		return s.Clear()
	case OpPause:
		return s.Pause(step.Args...)
	case OpReset:
		args, err := stringArgs(step.Args)
		if err != nil {
			return err
		}
		return s.Reset(args...)
	case OpRaw:
		args, err := stringArgs(step.Args)
		if err != nil {
			return err
		}
		for _, cmd := range args {
			if err := s.Raw(cmd); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown operation %q", step.Op)
}

// stringArgs requires every argument to be a string.
func stringArgs(args []any) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		s, ok := a.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %T", a)
		}
		out = append(out, strings.TrimRight(s, "\n"))
	}
	return out, nil
}
