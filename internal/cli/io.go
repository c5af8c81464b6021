package cli

import (
	"fmt"
	"io"
	"os"
)

// out writes formatted text, ignoring write errors (terminal output).
func out(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// outln writes a line, ignoring write errors (terminal output).
func outln(w io.Writer, args ...interface{}) {
	_, _ = fmt.Fprintln(w, args...)
}

// readDocument reads a document from the given path, or from stdin when the
// path is "-" or empty.
func readDocument(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	// #nosec G304 -- document path is from validated user input
	return os.ReadFile(path)
}

// writeDocument writes a document to the given path, or to stdout when the
// path is "-" or empty.
func writeDocument(path string, doc []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(doc)
		return err
	}
	return os.WriteFile(path, doc, 0o600)
}
