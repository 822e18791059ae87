package lines

import (
	"fmt"
	"strings"
)

func checkValue(value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: %q", ErrMultiline, value)
	}
	return nil
}

// Append adds value as a new last line.
func (f *File) Append(value string) error {
	if err := checkValue(value); err != nil {
		return err
	}
	snap, err := f.load()
	if err != nil {
		return err
	}

	data := value + "\n"
	if !snap.terminated {
		data = "\n" + data
	}
	if err := f.backend.Append(f.path, []byte(data)); err != nil {
		if f.cache != nil {
			f.cache.invalidate()
		}
		return f.ioError("append", err)
	}
	f.logger.Debug().Int("line", len(snap.lines)+1).Msg("appended line")

	lines := make([]string, len(snap.lines), len(snap.lines)+1)
	copy(lines, snap.lines)
	f.refresh(snapshot{lines: append(lines, value), terminated: true})
	return nil
}

// WriteAt puts value at line. With overwrite the previous content of line is
// discarded; otherwise it and every following line shift down by one.
// line may be one past the last line, which appends.
func (f *File) WriteAt(value string, line int, overwrite bool) error {
	if err := checkValue(value); err != nil {
		return err
	}
	snap, err := f.load()
	if err != nil {
		return err
	}
	n := len(snap.lines)
	if line < 1 || line > n+1 {
		return fmt.Errorf("%w: line %d, file has %d lines", ErrLineOutOfRange, line, n)
	}

	rest := line - 1
	if overwrite && line <= n {
		rest = line
	}
	out := make([]string, 0, n+1)
	out = append(out, snap.lines[:line-1]...)
	out = append(out, value)
	out = append(out, snap.lines[rest:]...)
	return f.store(out)
}

// DeleteLine removes line, keeping every other line in order. It reports
// false and leaves the file untouched when the line does not exist.
func (f *File) DeleteLine(line int) (bool, error) {
	snap, err := f.load()
	if err != nil {
		return false, err
	}
	if line < 1 || line > len(snap.lines) {
		return false, nil
	}

	out := make([]string, 0, len(snap.lines)-1)
	out = append(out, snap.lines[:line-1]...)
	out = append(out, snap.lines[line:]...)
	if err := f.store(out); err != nil {
		return false, err
	}
	return true, nil
}

// Clear truncates the file to empty.
func (f *File) Clear() error {
	return f.store(nil)
}
