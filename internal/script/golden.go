package script

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Comparison is the result of checking a transcript against a golden file.
type Comparison struct {
	Expected string
	Actual   string
	Diffs    []diffmatchpatch.Diff
}

// Equal reports whether the transcript matches.
func (c *Comparison) Equal() bool {
	return c.Expected == c.Actual
}

// Compare diffs two transcripts line by line. Trailing newlines are ignored.
func Compare(expected, actual string) *Comparison {
	expected = strings.TrimRight(expected, "\n")
	actual = strings.TrimRight(actual, "\n")

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(expected, actual)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	return &Comparison{Expected: expected, Actual: actual, Diffs: diffs}
}

// CompareFile compares a transcript with the golden file at path.
func CompareFile(path, actual string) (*Comparison, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden file %s: %w", path, err)
	}
	return Compare(string(data), actual), nil
}

// WriteGolden stores a transcript as the golden file at path.
func WriteGolden(path, transcript string) error {
	if err := os.WriteFile(path, []byte(transcript), 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// WriteDiff prints the changed lines, prefixed "-" for expected and "+"
// for actual, with the line number in the golden file.
func (c *Comparison) WriteDiff(w io.Writer, name string) {
	fmt.Fprintf(w, "=== Script: %s ===\n", name)

	if c.Equal() {
		fmt.Fprintln(w, "No differences found")
		return
	}

	line := 1
	for _, d := range c.Diffs {
		lines := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for i, l := range lines {
				fmt.Fprintf(w, "%4d - %s\n", line+i, l)
			}
			line += len(lines)
		case diffmatchpatch.DiffInsert:
			for _, l := range lines {
				fmt.Fprintf(w, "     + %s\n", l)
			}
		case diffmatchpatch.DiffEqual:
			line += len(lines)
		}
	}
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}
