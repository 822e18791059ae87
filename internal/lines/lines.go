// Package lines reads, writes, searches and edits individual lines of a text
// file. Line numbers are 1-based and ranges are inclusive. A file that does
// not exist reads as empty.
//
// Every operation reads the whole file and every edit rewrites it. Edits are
// not serialized: callers sharing a path across goroutines must hold their own
// lock per path.
package lines

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/rs/zerolog"
)

// NotFound is the line number reported when no line matches.
const NotFound = -1

var (
	// ErrIO wraps failures of the underlying backend.
	ErrIO = errors.New("line engine I/O failure")

	// ErrLineOutOfRange is returned when writing past the end of the file.
	ErrLineOutOfRange = errors.New("line out of range")

	// ErrMultiline is returned when a value to write contains a line break.
	ErrMultiline = errors.New("value contains a line break")

	// ErrEmptyKeyword is returned when replacing an empty value.
	ErrEmptyKeyword = errors.New("empty keyword")
)

// File is the line engine bound to one path.
type File struct {
	path    string
	backend Backend
	logger  zerolog.Logger
	cache   *lineCache
}

// Option configures a File.
type Option func(*File)

// WithBackend sets the storage backend. The default is OSBackend.
func WithBackend(b Backend) Option {
	return func(f *File) { f.backend = b }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *File) { f.logger = logger }
}

// WithCache keeps the parsed lines between calls. The cache is revalidated
// against the backend version before every read.
func WithCache() Option {
	return func(f *File) { f.cache = &lineCache{} }
}

// Open binds the line engine to path. No I/O happens until the first call.
func Open(path string, opts ...Option) *File {
	f := &File{
		path:    path,
		backend: OSBackend{},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With().Str("path", path).Logger()
	return f
}

// Path returns the path the engine is bound to.
func (f *File) Path() string { return f.path }

// Cached reports whether the engine keeps a line cache.
func (f *File) Cached() bool { return f.cache != nil }

// snapshot is the parsed content of a file.
type snapshot struct {
	lines []string
	// terminated is true when the file is empty or ends with a newline.
	terminated bool
}

func parse(data []byte) snapshot {
	if len(data) == 0 {
		return snapshot{terminated: true}
	}
	terminated := data[len(data)-1] == '\n'
	text := string(data)
	if terminated {
		text = text[:len(text)-1]
	}
	return snapshot{lines: strings.Split(text, "\n"), terminated: terminated}
}

func render(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ioError logs a backend failure and wraps it in ErrIO.
func (f *File) ioError(op string, err error) error {
	f.logger.Error().Err(err).Str("op", op).Msg("line engine I/O failure")
	return fmt.Errorf("%s %s: %w: %w", op, f.path, ErrIO, err)
}

// load reads and parses the file, serving it from the cache when the backend
// version is unchanged.
func (f *File) load() (snapshot, error) {
	var version Version
	if f.cache != nil {
		v, err := f.backend.Version(f.path)
		if err != nil {
			return snapshot{}, f.ioError("stat", err)
		}
		if snap, ok := f.cache.get(v); ok {
			return snap, nil
		}
		version = v
	}

	data, err := f.backend.Read(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return snapshot{}, f.ioError("read", err)
	}
	snap := parse(data)

	if f.cache != nil {
		f.cache.put(version, snap)
	}
	return snap, nil
}

// store rewrites the whole file with lines.
func (f *File) store(lines []string) error {
	if err := f.backend.Write(f.path, render(lines)); err != nil {
		if f.cache != nil {
			f.cache.invalidate()
		}
		return f.ioError("write", err)
	}
	f.logger.Debug().Int("lines", len(lines)).Msg("rewrote file")
	f.refresh(snapshot{lines: lines, terminated: true})
	return nil
}

// refresh records snap as the current content after a successful write.
func (f *File) refresh(snap snapshot) {
	if f.cache == nil {
		return
	}
	v, err := f.backend.Version(f.path)
	if err != nil {
		f.cache.invalidate()
		return
	}
	f.cache.put(v, snap)
}

// Lines returns a copy of every line.
func (f *File) Lines() ([]string, error) {
	snap, err := f.load()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(snap.lines))
	copy(out, snap.lines)
	return out, nil
}

// ReadAll returns every line joined with "\n", without a trailing newline.
func (f *File) ReadAll() (string, error) {
	snap, err := f.load()
	if err != nil {
		return "", err
	}
	return strings.Join(snap.lines, "\n"), nil
}

// ReadRange returns lines start through end joined with "\n". The range is
// clamped to the file; an empty range returns "".
func (f *File) ReadRange(start, end int) (string, error) {
	snap, err := f.load()
	if err != nil {
		return "", err
	}
	return strings.Join(sliceRange(snap.lines, start, end), "\n"), nil
}

// ReadUpTo returns lines 1 through end.
func (f *File) ReadUpTo(end int) (string, error) {
	return f.ReadRange(1, end)
}

// ReadFrom returns lines start through the last line.
func (f *File) ReadFrom(start int) (string, error) {
	snap, err := f.load()
	if err != nil {
		return "", err
	}
	return strings.Join(sliceRange(snap.lines, start, len(snap.lines)), "\n"), nil
}

// Line returns line n and whether it exists.
func (f *File) Line(n int) (string, bool, error) {
	snap, err := f.load()
	if err != nil {
		return "", false, err
	}
	if n < 1 || n > len(snap.lines) {
		return "", false, nil
	}
	return snap.lines[n-1], true, nil
}

// CountLines returns the number of lines: the number of newlines, plus one
// when the file is non-empty and does not end with a newline.
func (f *File) CountLines() (int, error) {
	snap, err := f.load()
	if err != nil {
		return 0, err
	}
	return len(snap.lines), nil
}

// sliceRange returns the 1-based inclusive range [start, end] clamped to lines.
func sliceRange(lines []string, start, end int) []string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return nil
	}
	return lines[start-1 : end]
}
