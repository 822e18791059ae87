package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/matsen/flatrec/internal/lines"
	"github.com/matsen/flatrec/internal/schema"
	"github.com/matsen/flatrec/internal/store"
)

// Constants for output formatting.
const (
	ListColumnMaxLen  = 30 // Column width cap for entity lists
	QueryColumnMaxLen = 40 // Column width cap for query tables
	FindLineMaxLen    = 80 // Line preview length in find output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputJSONCompact writes a value as compact JSON to stdout.
func outputJSONCompact(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitCodeFor maps an error to the exit code that describes it.
func exitCodeFor(err error) int {
	switch {
	case store.IsNotFound(err):
		return ExitNotFound
	case errors.Is(err, schema.ErrValidation),
		errors.Is(err, schema.ErrInvalidSchema),
		errors.Is(err, store.ErrDuplicateKey),
		errors.Is(err, lines.ErrMultiline),
		errors.Is(err, lines.ErrEmptyKeyword),
		errors.Is(err, lines.ErrLineOutOfRange):
		return ExitDataError
	case errors.Is(err, lines.ErrIO):
		return ExitIOError
	default:
		return ExitError
	}
}

// exitOnError exits with the code matching err, prefixing the message.
func exitOnError(err error, format string, args ...interface{}) {
	exitWithError(exitCodeFor(err), "%s: %v", fmt.Sprintf(format, args...), err)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EntityResponse is the JSON form of an entity.
type EntityResponse struct {
	Store  string            `json:"store"`
	Header string            `json:"header"`
	Fields map[string]string `json:"fields"`
}

func entityResponse(storeName string, e *schema.Entity) EntityResponse {
	return EntityResponse{Store: storeName, Header: e.Header(), Fields: e.Values()}
}

// printEntity writes one entity as "field: value" lines in schema order.
func printEntity(e *schema.Entity) {
	width := 0
	for _, f := range e.Fields() {
		if len(f.Name()) > width {
			width = len(f.Name())
		}
	}
	for _, f := range e.Fields() {
		fmt.Printf("%s  %s\n", padRight(f.Name()+":", width+1), f.Value())
	}
}

// recordColumns returns the column names of a query result in sorted order.
func recordColumns(records []store.Record) []string {
	if len(records) == 0 {
		return nil
	}
	cols := make([]string, 0, len(records[0]))
	for col := range records[0] {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// formatValue renders a query value, showing NULL as empty.
func formatValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// padRight pads a string with spaces on the right.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
