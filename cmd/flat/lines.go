package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matsen/flatrec/internal/lines"
)

var (
	linesIgnoreCase bool
	linesWholeLine  bool
	linesFrom       int
	linesTo         int
	linesAt         int
	linesLast       bool
	linesAll        bool
	linesOverwrite  bool
)

var linesCmd = &cobra.Command{
	Use:   "lines",
	Short: "Line-level reads and edits on any text file",
	Long: `Read, search and edit a text file line by line.

Lines are numbered from 1. A missing file reads as empty. Writes replace the
file atomically, so a crash never leaves it half written.`,
}

var linesReadCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Print lines of a file",
	Long: `Print every line, an inclusive range of lines, or a single line.

Examples:
  flat lines read notes.txt
  flat lines read notes.txt --from 3 --to 5
  flat lines read notes.txt --line 2`,
	Args: cobra.ExactArgs(1),
	RunE: runLinesRead,
}

var linesCountCmd = &cobra.Command{
	Use:   "count <file>",
	Short: "Count the lines of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinesCount,
}

var linesFindCmd = &cobra.Command{
	Use:   "find <file> <keyword>",
	Short: "Find the first (or last) line containing a keyword",
	Args:  cobra.ExactArgs(2),
	RunE:  runLinesFind,
}

var linesReplaceCmd = &cobra.Command{
	Use:   "replace <file> <old> <new>",
	Short: "Replace a keyword in the first matching line",
	Long: `Replace every occurrence of <old> in the first line that contains it.

With --whole-line the matching line is replaced entirely. With --all every
matching line is changed. A miss leaves the file untouched.

Examples:
  flat lines replace notes.txt draft final
  flat lines replace notes.txt TODO DONE --ignore-case --all
  flat lines replace notes.txt old new --line 4`,
	Args: cobra.ExactArgs(3),
	RunE: runLinesReplace,
}

var linesAppendCmd = &cobra.Command{
	Use:   "append <file> <value>",
	Short: "Append a line to a file",
	Args:  cobra.ExactArgs(2),
	RunE:  runLinesAppend,
}

var linesInsertCmd = &cobra.Command{
	Use:   "insert <file> <line> <value>",
	Short: "Insert (or overwrite) a line at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runLinesInsert,
}

var linesDeleteCmd = &cobra.Command{
	Use:   "delete <file> <line>",
	Short: "Delete a line",
	Args:  cobra.ExactArgs(2),
	RunE:  runLinesDelete,
}

var linesClearCmd = &cobra.Command{
	Use:   "clear <file>",
	Short: "Truncate a file to empty",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinesClear,
}

func init() {
	rootCmd.AddCommand(linesCmd)
	linesCmd.AddCommand(linesReadCmd, linesCountCmd, linesFindCmd, linesReplaceCmd,
		linesAppendCmd, linesInsertCmd, linesDeleteCmd, linesClearCmd)

	for _, c := range []*cobra.Command{linesFindCmd, linesReplaceCmd} {
		c.Flags().BoolVarP(&linesIgnoreCase, "ignore-case", "i", false, "Compare ignoring case")
		c.Flags().BoolVarP(&linesWholeLine, "whole-line", "w", false, "Match the whole line instead of a substring")
		c.Flags().IntVar(&linesFrom, "from", 1, "First line to consider")
	}
	linesFindCmd.Flags().BoolVar(&linesLast, "last", false, "Find the last matching line")
	linesReplaceCmd.Flags().BoolVar(&linesAll, "all", false, "Replace in every matching line")
	linesReplaceCmd.Flags().IntVar(&linesAt, "line", 0, "Only replace in this line")

	linesReadCmd.Flags().IntVar(&linesFrom, "from", 1, "First line to print")
	linesReadCmd.Flags().IntVar(&linesTo, "to", 0, "Last line to print (default: end of file)")
	linesReadCmd.Flags().IntVar(&linesAt, "line", 0, "Print only this line")

	linesInsertCmd.Flags().BoolVar(&linesOverwrite, "overwrite", false, "Replace the line instead of shifting it down")
}

// openLines opens a file for line access with the configured logger.
func openLines(path string) *lines.File {
	return lines.Open(path, lines.WithLogger(logger))
}

func match() lines.Match {
	return lines.Match{IgnoreCase: linesIgnoreCase, WholeLine: linesWholeLine}
}

// parseLineNumber parses a 1-based line number argument.
func parseLineNumber(arg string) int {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		exitWithError(ExitError, "invalid line number %q: want a positive integer", arg)
	}
	return n
}

// LinesReadResult is the response for lines read command.
type LinesReadResult struct {
	Path  string   `json:"path"`
	From  int      `json:"from"`
	Lines []string `json:"lines"`
}

func runLinesRead(cmd *cobra.Command, args []string) error {
	f := openLines(args[0])

	all, err := f.Lines()
	if err != nil {
		exitOnError(err, "reading %s", args[0])
	}

	from, to := linesFrom, linesTo
	if linesAt > 0 {
		from, to = linesAt, linesAt
	}
	if to == 0 || to > len(all) {
		to = len(all)
	}
	if from < 1 {
		from = 1
	}

	var selected []string
	if from <= to {
		selected = all[from-1 : to]
	}

	if humanOutput {
		for _, l := range selected {
			fmt.Println(l)
		}
		return nil
	}
	if selected == nil {
		selected = []string{}
	}
	outputJSON(LinesReadResult{Path: f.Path(), From: from, Lines: selected})
	return nil
}

func runLinesCount(cmd *cobra.Command, args []string) error {
	f := openLines(args[0])
	n, err := f.CountLines()
	if err != nil {
		exitOnError(err, "counting %s", args[0])
	}

	if humanOutput {
		fmt.Println(n)
	} else {
		outputJSON(map[string]any{"path": f.Path(), "lines": n})
	}
	return nil
}

// LinesFindResult is the response for lines find command.
type LinesFindResult struct {
	Path  string `json:"path"`
	Found bool   `json:"found"`
	Line  int    `json:"line,omitempty"`
	Text  string `json:"text,omitempty"`
}

func runLinesFind(cmd *cobra.Command, args []string) error {
	f := openLines(args[0])
	keyword := args[1]

	var n int
	var err error
	if linesLast {
		n, err = f.FindLast(keyword, match())
		if n != lines.NotFound && n < linesFrom {
			n = lines.NotFound
		}
	} else {
		n, err = f.FindLineFrom(keyword, match(), linesFrom)
	}
	if err != nil {
		exitOnError(err, "searching %s", args[0])
	}

	result := LinesFindResult{Path: f.Path(), Found: n != lines.NotFound}
	if result.Found {
		result.Line = n
		result.Text, _, _ = f.Line(n)
	}

	if humanOutput {
		if !result.Found {
			fmt.Printf("%q not found\n", keyword)
		} else {
			fmt.Printf("%d: %s\n", result.Line, truncate(result.Text, FindLineMaxLen))
		}
		return nil
	}
	outputJSON(result)
	return nil
}

// LinesReplaceResult is the response for lines replace command.
type LinesReplaceResult struct {
	Path     string `json:"path"`
	Replaced int    `json:"replaced"`
}

func runLinesReplace(cmd *cobra.Command, args []string) error {
	f := openLines(args[0])
	oldValue, newValue := args[1], args[2]

	var replaced int
	var err error
	switch {
	case linesAll:
		replaced, err = f.ReplaceAll(oldValue, newValue, match())
	case linesAt > 0:
		var ok bool
		ok, err = f.ReplaceAt(oldValue, newValue, match(), linesAt)
		if ok {
			replaced = 1
		}
	default:
		var ok bool
		ok, err = f.ReplaceFrom(oldValue, newValue, match(), linesFrom)
		if ok {
			replaced = 1
		}
	}
	if err != nil {
		exitOnError(err, "replacing in %s", args[0])
	}

	if humanOutput {
		fmt.Printf("Replaced in %d line(s)\n", replaced)
	} else {
		outputJSON(LinesReplaceResult{Path: f.Path(), Replaced: replaced})
	}
	return nil
}

func runLinesAppend(cmd *cobra.Command, args []string) error {
	f := openLines(args[0])
	if err := f.Append(args[1]); err != nil {
		exitOnError(err, "appending to %s", args[0])
	}
	return reportLineCount(f, "appended")
}

func runLinesInsert(cmd *cobra.Command, args []string) error {
	f := openLines(args[0])
	n := parseLineNumber(args[1])
	if err := f.WriteAt(args[2], n, linesOverwrite); err != nil {
		exitOnError(err, "writing %s", args[0])
	}
	if linesOverwrite {
		return reportLineCount(f, "overwritten")
	}
	return reportLineCount(f, "inserted")
}

func runLinesDelete(cmd *cobra.Command, args []string) error {
	f := openLines(args[0])
	n := parseLineNumber(args[1])
	ok, err := f.DeleteLine(n)
	if err != nil {
		exitOnError(err, "deleting from %s", args[0])
	}
	if !ok {
		exitWithError(ExitNotFound, "%s has no line %d", args[0], n)
	}
	return reportLineCount(f, "deleted")
}

func runLinesClear(cmd *cobra.Command, args []string) error {
	f := openLines(args[0])
	if err := f.Clear(); err != nil {
		exitOnError(err, "clearing %s", args[0])
	}
	return reportLineCount(f, "cleared")
}

// reportLineCount prints the status of an edit and the new line count.
func reportLineCount(f *lines.File, status string) error {
	n, err := f.CountLines()
	if err != nil {
		exitOnError(err, "counting %s", f.Path())
	}
	if humanOutput {
		fmt.Printf("%s %s (%d lines)\n", status, f.Path(), n)
	} else {
		outputJSON(map[string]any{"status": status, "path": f.Path(), "lines": n})
	}
	return nil
}
