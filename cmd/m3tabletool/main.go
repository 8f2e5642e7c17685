// Command m3tabletool unpacks offset tables into numbered files and packs
// them back.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const defaultName = "m3tabletool"

var errUsage = errors.New("usage")

type unknownCommandError string

func (e unknownCommandError) Error() string {
	return fmt.Sprintf("Unknown command %q", string(e))
}

// opError attributes a failure to the running operation.
type opError struct {
	op  string
	err error
}

func (e *opError) Error() string { return "while " + e.op + ": " + e.err.Error() }
func (e *opError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(programName(os.Args), os.Args[1:], os.Stdout, os.Stderr))
}

func run(prog string, args []string, stdout, stderr io.Writer) int {
	verbose, args := verboseArgs(args)

	root := newRootCmd(prog, verbose)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var (
		unknown unknownCommandError
		op      *opError
	)
	switch {
	case errors.Is(err, errUsage):
		printUsage(stdout, prog)
	case errors.As(err, &unknown):
		fmt.Fprintf(stderr, "error: %v\n", unknown)
	case errors.As(err, &op):
		fmt.Fprintf(stderr, "Error %v\n", op)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

func printUsage(w io.Writer, prog string) {
	fmt.Fprintln(w, defaultName)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "    %s unpack <extracted-table.bin> <output-directory>\n", prog)
	fmt.Fprintf(w, "    %s pack <input-directory> <out-table.bin>\n", prog)
	fmt.Fprintf(w, "    %s list <table.bin>\n", prog)
}

// verboseArgs consumes leading -v/--verbose switches. Everything after them
// is positional, so paths may start with a dash.
func verboseArgs(args []string) (bool, []string) {
	var verbose bool
	for len(args) != 0 && (args[0] == "-v" || args[0] == "--verbose") {
		verbose = true
		args = args[1:]
	}
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	return verbose, args
}

func programName(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return defaultName
	}
	return filepath.Base(args[0])
}
