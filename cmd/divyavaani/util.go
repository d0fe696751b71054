package main

import (
	"fmt"
	"os"
	"path/filepath"

	// Packages
	term "golang.org/x/term"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// TableSummary returns a human-readable summary of the rows displayed.
// length is the number of rows shown, offset is the starting row index (0-based),
// and total is the total number of matching rows.
func TableSummary(length, offset, total int) string {
	if total == 0 {
		return "No results"
	}
	if offset == 0 && length >= total {
		return fmt.Sprintf("All %d rows displayed", total)
	}
	return fmt.Sprintf("Displaying rows %d-%d of %d", offset+1, offset+length, total)
}

// execName returns the name of the executable, used for the user agent
// and for telemetry.
func execName() string {
	name, err := os.Executable()
	if err != nil {
		panic(err)
	}
	return filepath.Base(name)
}

// isTerminal returns true when the file descriptor is an interactive
// terminal, rather than a pipe or a redirect.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
