package gnuplot

import (
	"path/filepath"
	"strings"

	"plotpipe/internal/options"
	"plotpipe/pkg/plottypes"
)

// terminalOverrides maps file extensions whose terminal name differs
// from the extension.
var terminalOverrides = map[string]string{
	"ps":   "postscript",
	"eps":  "postscript eps",
	"jpg":  "jpeg",
	"txt":  "dumb",
	"tex":  "latex",
	"htm":  "canvas",
	"html": "canvas",
}

// TerminalFor returns the terminal used to write a plot to path.
func TerminalFor(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return "", plottypes.NewValidationError("output", "cannot choose a terminal for "+path+": no file extension")
	}
	if term, ok := terminalOverrides[ext]; ok {
		return term, nil
	}
	return ext, nil
}

// outputCommands returns the commands that redirect plots to path.
func outputCommands(path, extraOptions string) ([]string, error) {
	term, err := TerminalFor(path)
	if err != nil {
		return nil, err
	}

	setTerm := "set terminal " + term
	if extra := strings.TrimSpace(extraOptions); extra != "" {
		setTerm += " " + extra
	}
	return []string{setTerm, "set output " + options.Quote(path)}, nil
}
