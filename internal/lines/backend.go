package lines

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Version identifies one state of a backing file. Two reads that observe the
// same Version observed the same content.
type Version struct {
	Exists  bool
	ModTime int64 // unix nanoseconds
	Size    int64
	Gen     uint64
}

// Backend stores whole files. Read of a missing file returns fs.ErrNotExist.
type Backend interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
	Append(path string, data []byte) error
	Version(path string) (Version, error)
}

// OSBackend stores files on the local filesystem.
type OSBackend struct{}

// Read returns the content of path.
func (OSBackend) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Write replaces the content of path atomically.
// Uses temp file + rename so a failed write never truncates the original.
func (OSBackend) Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*.txt")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Chmod(0644); err != nil {
		tmpFile.Close()
		return fmt.Errorf("setting temp file mode: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// Append adds data to the end of path, creating it if needed.
func (OSBackend) Append(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening file for append: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("appending: %w", err)
	}
	return nil
}

// Version returns the modification time and size of path.
func (OSBackend) Version(path string) (Version, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Version{}, nil
		}
		return Version{}, err
	}
	return Version{Exists: true, ModTime: info.ModTime().UnixNano(), Size: info.Size()}, nil
}

// MemBackend keeps files in memory. It is safe for concurrent use.
type MemBackend struct {
	mu    sync.Mutex
	files map[string][]byte
	gens  map[string]uint64
}

// NewMemBackend returns an empty in-memory backend.
func NewMemBackend() *MemBackend {
	return &MemBackend{
		files: make(map[string][]byte),
		gens:  make(map[string]uint64),
	}
}

// Read returns a copy of the content of path.
func (m *MemBackend) Read(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write replaces the content of path.
func (m *MemBackend) Write(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[path] = buf
	m.gens[path]++
	return nil
}

// Append adds data to the end of path.
func (m *MemBackend) Append(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[path] = append(m.files[path], data...)
	m.gens[path]++
	return nil
}

// Version returns the generation of path, bumped on every write.
func (m *MemBackend) Version(path string) (Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.files[path]
	if !ok {
		return Version{}, nil
	}
	return Version{Exists: true, Size: int64(len(data)), Gen: m.gens[path]}, nil
}
