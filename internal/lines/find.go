package lines

import (
	"regexp"
	"strings"
)

// Match controls how a keyword is compared with a line.
type Match struct {
	// IgnoreCase compares with Unicode case folding.
	IgnoreCase bool
	// WholeLine requires the line to equal the keyword instead of containing it.
	WholeLine bool
}

// Matches reports whether line matches keyword.
func (m Match) Matches(line, keyword string) bool {
	switch {
	case m.WholeLine && m.IgnoreCase:
		return strings.EqualFold(line, keyword)
	case m.WholeLine:
		return line == keyword
	case m.IgnoreCase:
		return strings.Contains(strings.ToLower(line), strings.ToLower(keyword))
	default:
		return strings.Contains(line, keyword)
	}
}

// substitute replaces every occurrence of oldValue in line with newValue.
func (m Match) substitute(line, oldValue, newValue string) string {
	switch {
	case m.WholeLine:
		return newValue
	case m.IgnoreCase:
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(oldValue))
		return re.ReplaceAllLiteralString(line, newValue)
	default:
		return strings.ReplaceAll(line, oldValue, newValue)
	}
}

// FindLineFunc returns the first line at or after start for which match
// returns true, or NotFound.
func (f *File) FindLineFunc(start int, match func(line string) bool) (int, error) {
	snap, err := f.load()
	if err != nil {
		return NotFound, err
	}
	return scan(snap.lines, start, match), nil
}

func scan(lines []string, start int, match func(string) bool) int {
	if start < 1 {
		start = 1
	}
	for i := start - 1; i < len(lines); i++ {
		if match(lines[i]) {
			return i + 1
		}
	}
	return NotFound
}

// Find reports whether any line matches keyword.
func (f *File) Find(keyword string, m Match) (bool, error) {
	return f.FindFrom(keyword, m, 1)
}

// FindFrom reports whether any line at or after start matches keyword.
func (f *File) FindFrom(keyword string, m Match, start int) (bool, error) {
	n, err := f.FindLineFrom(keyword, m, start)
	return n != NotFound, err
}

// FindLine returns the first line matching keyword, or NotFound.
func (f *File) FindLine(keyword string, m Match) (int, error) {
	return f.FindLineFrom(keyword, m, 1)
}

// FindLineFrom returns the first line at or after start matching keyword,
// or NotFound.
func (f *File) FindLineFrom(keyword string, m Match, start int) (int, error) {
	return f.FindLineFunc(start, func(line string) bool {
		return m.Matches(line, keyword)
	})
}

// FindLast returns the last line matching keyword, or NotFound.
func (f *File) FindLast(keyword string, m Match) (int, error) {
	snap, err := f.load()
	if err != nil {
		return NotFound, err
	}
	for i := len(snap.lines) - 1; i >= 0; i-- {
		if m.Matches(snap.lines[i], keyword) {
			return i + 1, nil
		}
	}
	return NotFound, nil
}

// Replace substitutes newValue for oldValue in the first matching line.
// It reports false and leaves the file untouched when nothing matches.
func (f *File) Replace(oldValue, newValue string, m Match) (bool, error) {
	return f.ReplaceFrom(oldValue, newValue, m, 1)
}

// ReplaceFrom is like Replace but only considers lines at or after start.
func (f *File) ReplaceFrom(oldValue, newValue string, m Match, start int) (bool, error) {
	return f.replace(oldValue, newValue, m, func(lines []string) int {
		return scan(lines, start, func(line string) bool { return m.Matches(line, oldValue) })
	})
}

// ReplaceAt substitutes newValue for oldValue in line, provided that line
// matches.
func (f *File) ReplaceAt(oldValue, newValue string, m Match, line int) (bool, error) {
	return f.replace(oldValue, newValue, m, func(lines []string) int {
		if line < 1 || line > len(lines) || !m.Matches(lines[line-1], oldValue) {
			return NotFound
		}
		return line
	})
}

func (f *File) replace(oldValue, newValue string, m Match, locate func([]string) int) (bool, error) {
	if oldValue == "" {
		return false, ErrEmptyKeyword
	}
	if err := checkValue(newValue); err != nil {
		return false, err
	}
	snap, err := f.load()
	if err != nil {
		return false, err
	}

	n := locate(snap.lines)
	if n == NotFound {
		f.logger.Info().Str("value", oldValue).Msg("value wasn't found")
		return false, nil
	}

	out := make([]string, len(snap.lines))
	copy(out, snap.lines)
	out[n-1] = m.substitute(out[n-1], oldValue, newValue)
	if err := f.store(out); err != nil {
		return false, err
	}
	return true, nil
}

// ReplaceAll substitutes newValue for oldValue in every matching line, each
// search resuming one line past the previous match. It returns the number of
// lines rewritten; the file is untouched when that is zero.
func (f *File) ReplaceAll(oldValue, newValue string, m Match) (int, error) {
	if oldValue == "" {
		return 0, ErrEmptyKeyword
	}
	if err := checkValue(newValue); err != nil {
		return 0, err
	}
	snap, err := f.load()
	if err != nil {
		return 0, err
	}

	out := make([]string, len(snap.lines))
	copy(out, snap.lines)

	replaced := 0
	match := func(line string) bool { return m.Matches(line, oldValue) }
	for n := scan(out, 1, match); n != NotFound; n = scan(out, n+1, match) {
		out[n-1] = m.substitute(out[n-1], oldValue, newValue)
		replaced++
	}

	if replaced == 0 {
		f.logger.Info().Str("value", oldValue).Msg("value wasn't found")
		return 0, nil
	}
	if err := f.store(out); err != nil {
		return 0, err
	}
	return replaced, nil
}
