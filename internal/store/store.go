// Package store keeps schema-validated entities in a flat text file, one
// entity per line, with an optional SQLite mirror for ad-hoc queries.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"

	"github.com/matsen/flatrec/internal/config"
	"github.com/matsen/flatrec/internal/lines"
	"github.com/matsen/flatrec/internal/schema"
)

// Store represents a registered data store.
type Store struct {
	Name       string
	Schema     *schema.Schema
	Dir        string // Directory containing data and DB files
	SchemaPath string // Path to the schema file
	dataPath   string // Derived: Dir/<name>.txt
	dbPath     string // Derived: Dir/<name>.db
	file       *lines.File
	logger     zerolog.Logger
}

// StoreInfo contains detailed information about a store.
type StoreInfo struct {
	Name       string             `json:"name"`
	DataPath   string             `json:"data_path"`
	DBPath     string             `json:"db_path"`
	SchemaPath string             `json:"schema_path"`
	Entities   int                `json:"entities"`
	DataSize   int64              `json:"data_size"`
	DBSize     int64              `json:"db_size"`
	LastSync   time.Time          `json:"last_sync,omitempty"`
	InSync     bool               `json:"in_sync"`
	Cached     bool               `json:"cached"`
	Error      string             `json:"error,omitempty"`
	Schema     *schema.Definition `json:"schema,omitempty"`
}

// LineIssue describes a line of the data file that is not a valid entity.
type LineIssue struct {
	Line    int    `json:"line"`
	Header  string `json:"header,omitempty"`
	Message string `json:"message"`
}

type storeOptions struct {
	logger zerolog.Logger
	lines  []lines.Option
}

// Option configures a Store.
type Option func(*storeOptions)

// WithLogger sets the logger used by the store and its line engine.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *storeOptions) { o.logger = logger }
}

// WithCache keeps the parsed data file in memory between calls.
func WithCache() Option {
	return func(o *storeOptions) { o.lines = append(o.lines, lines.WithCache()) }
}

// WithBackend stores the data file in b instead of the filesystem.
func WithBackend(b lines.Backend) Option {
	return func(o *storeOptions) { o.lines = append(o.lines, lines.WithBackend(b)) }
}

// NewStore creates a new Store instance with derived paths.
func NewStore(name string, sch *schema.Schema, dir, schemaPath string, opts ...Option) *Store {
	o := storeOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger.With().Str("store", name).Logger()
	dataPath := filepath.Join(dir, name+".txt")
	lineOpts := append([]lines.Option{lines.WithLogger(logger)}, o.lines...)

	return &Store{
		Name:       name,
		Schema:     sch,
		Dir:        dir,
		SchemaPath: schemaPath,
		dataPath:   dataPath,
		dbPath:     filepath.Join(dir, name+".db"),
		file:       lines.Open(dataPath, lineOpts...),
		logger:     logger,
	}
}

// OpenStore opens an existing store by name.
func OpenStore(repoRoot, name string, opts ...Option) (*Store, error) {
	registry, err := LoadRegistry(repoRoot)
	if err != nil {
		return nil, err
	}

	cfg, ok := registry.Stores[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStoreNotFound, name)
	}

	schemaPath := cfg.SchemaPath
	if !filepath.IsAbs(schemaPath) {
		schemaPath = filepath.Join(repoRoot, schemaPath)
	}
	sch, err := schema.ParseFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	// The mirror table is named after the store, whatever the file says.
	if sch.Name() != name {
		if sch, err = sch.Rename(name); err != nil {
			return nil, fmt.Errorf("loading schema: %w", err)
		}
	}

	dir := config.RepoPath(repoRoot)
	if cfg.Dir != "" {
		if filepath.IsAbs(cfg.Dir) {
			dir = cfg.Dir
		} else {
			dir = filepath.Join(repoRoot, cfg.Dir)
		}
	}

	return NewStore(name, sch, dir, schemaPath, opts...), nil
}

// Init creates the data file and the SQLite mirror, then registers the store
// in the repository at repoRoot. An existing data file is kept.
func (s *Store) Init(repoRoot string) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	// Count loads the file; a missing file reads as empty and is created here.
	n, err := s.file.CountLines()
	if err != nil {
		return fmt.Errorf("reading data file: %w", err)
	}
	if n == 0 {
		if err := s.file.Clear(); err != nil {
			return fmt.Errorf("creating data file: %w", err)
		}
	}

	db, err := openStoreDB(s.dbPath)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()

	if err := createTables(db, s.Schema); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	if err := Register(repoRoot, s); err != nil {
		return fmt.Errorf("registering store: %w", err)
	}

	s.logger.Debug().Str("dir", s.Dir).Msg("store initialized")
	return nil
}

// DataPath returns the path to the data file.
func (s *Store) DataPath() string {
	return s.dataPath
}

// DBPath returns the path to the SQLite database.
func (s *Store) DBPath() string {
	return s.dbPath
}

// Lines returns the line engine backing the data file.
func (s *Store) Lines() *lines.File {
	return s.file
}

// locate returns the line number and text of the entity with the given
// header value, or lines.NotFound.
func (s *Store) locate(header string) (int, string, error) {
	if header == "" {
		return lines.NotFound, "", nil
	}
	n, err := s.file.FindLineFunc(1, func(line string) bool {
		return schema.HeaderOf(line) == header
	})
	if err != nil || n == lines.NotFound {
		return lines.NotFound, "", err
	}
	line, _, err := s.file.Line(n)
	if err != nil {
		return lines.NotFound, "", err
	}
	return n, line, nil
}

// decodeAt decodes the entity stored on line n.
func (s *Store) decodeAt(n int, line string) (*schema.Entity, error) {
	e, err := s.Schema.Decode(line)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", n, err)
	}
	return e, nil
}

// AddEntity validates values, fills in defaults for missing fields and
// appends the entity to the data file.
func (s *Store) AddEntity(values map[string]string) (*schema.Entity, error) {
	e, err := s.Schema.Bind(values)
	if err != nil {
		return nil, err
	}
	encoded, err := e.Encode()
	if err != nil {
		return nil, err
	}

	n, _, err := s.locate(e.Header())
	if err != nil {
		return nil, fmt.Errorf("checking duplicates: %w", err)
	}
	if n != lines.NotFound {
		return nil, fmt.Errorf("%w: %q already exists", ErrDuplicateKey, e.Header())
	}

	if err := s.file.Append(encoded); err != nil {
		return nil, fmt.Errorf("appending entity: %w", err)
	}

	s.logger.Debug().Str("header", e.Header()).Msg("entity added")
	return e, nil
}

// GetEntity returns the entity with the given header value.
func (s *Store) GetEntity(header string) (*schema.Entity, error) {
	n, line, err := s.locate(header)
	if err != nil {
		return nil, err
	}
	if n == lines.NotFound {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, header)
	}
	return s.decodeAt(n, line)
}

// HasEntity reports whether an entity with the given header value exists.
func (s *Store) HasEntity(header string) (bool, error) {
	n, _, err := s.locate(header)
	return n != lines.NotFound, err
}

// UpdateField sets one field of an existing entity and rewrites its line.
// The header field cannot be changed.
func (s *Store) UpdateField(header, field, value string) (*schema.Entity, error) {
	return s.rewrite(header, func(e *schema.Entity) error {
		return e.Set(field, value)
	})
}

// ResetField restores one field of an existing entity to its default value.
func (s *Store) ResetField(header, field string) (*schema.Entity, error) {
	return s.rewrite(header, func(e *schema.Entity) error {
		return e.Reset(field)
	})
}

func (s *Store) rewrite(header string, change func(*schema.Entity) error) (*schema.Entity, error) {
	n, line, err := s.locate(header)
	if err != nil {
		return nil, err
	}
	if n == lines.NotFound {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, header)
	}

	e, err := s.decodeAt(n, line)
	if err != nil {
		return nil, err
	}
	if err := change(e); err != nil {
		return nil, err
	}
	encoded, err := e.Encode()
	if err != nil {
		return nil, err
	}

	if err := s.file.WriteAt(encoded, n, true); err != nil {
		return nil, fmt.Errorf("writing entity: %w", err)
	}

	s.logger.Debug().Str("header", header).Int("line", n).Msg("entity updated")
	return e, nil
}

// RemoveEntity deletes the entity with the given header value.
func (s *Store) RemoveEntity(header string) error {
	n, _, err := s.locate(header)
	if err != nil {
		return err
	}
	if n == lines.NotFound {
		return fmt.Errorf("%w: %q", ErrNotFound, header)
	}

	if _, err := s.file.DeleteLine(n); err != nil {
		return fmt.Errorf("deleting entity: %w", err)
	}

	s.logger.Debug().Str("header", header).Int("line", n).Msg("entity removed")
	return nil
}

// Entities returns every entity in file order. A non-empty match is a glob
// pattern the header value must match.
func (s *Store) Entities(match string) ([]*schema.Entity, error) {
	var g glob.Glob
	if match != "" {
		var err error
		if g, err = glob.Compile(match); err != nil {
			return nil, fmt.Errorf("invalid match pattern %q: %w", match, err)
		}
	}

	all, err := s.file.Lines()
	if err != nil {
		return nil, err
	}

	var entities []*schema.Entity
	for i, line := range all {
		if g != nil && !g.Match(schema.HeaderOf(line)) {
			continue
		}
		e, err := s.decodeAt(i+1, line)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// Count returns the number of lines, and so entities, in the data file.
func (s *Store) Count() (int, error) {
	return s.file.CountLines()
}

// Check decodes every line of the data file and reports the lines that are
// not valid entities or repeat an earlier header value.
func (s *Store) Check() ([]LineIssue, error) {
	all, err := s.file.Lines()
	if err != nil {
		return nil, err
	}

	var issues []LineIssue
	seen := make(map[string]int)
	for i, line := range all {
		n := i + 1
		if _, err := s.Schema.Decode(line); err != nil {
			issues = append(issues, LineIssue{Line: n, Header: schema.HeaderOf(line), Message: err.Error()})
			continue
		}
		header := schema.HeaderOf(line)
		if first, ok := seen[header]; ok {
			issues = append(issues, LineIssue{
				Line:    n,
				Header:  header,
				Message: fmt.Sprintf("%v: first defined on line %d", ErrDuplicateKey, first),
			})
			continue
		}
		seen[header] = n
	}
	return issues, nil
}

// Watch calls onChange whenever the data file is changed by another process,
// until ctx is done.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	return s.file.Watch(ctx, onChange)
}

// Info returns detailed information about the store.
func (s *Store) Info() (*StoreInfo, error) {
	info := &StoreInfo{
		Name:       s.Name,
		DataPath:   s.dataPath,
		DBPath:     s.dbPath,
		SchemaPath: s.SchemaPath,
		Cached:     s.file.Cached(),
		Schema:     s.Schema.Definition(),
	}

	count, err := s.Count()
	if err != nil {
		return nil, fmt.Errorf("counting entities: %w", err)
	}
	info.Entities = count

	if stat, err := os.Stat(s.dataPath); err == nil {
		info.DataSize = stat.Size()
	}
	if stat, err := os.Stat(s.dbPath); err == nil {
		info.DBSize = stat.Size()
	}

	if needsSync, err := s.NeedsSync(); err == nil {
		info.InSync = !needsSync
	}

	if lastSync, err := s.getLastSyncTime(); err == nil && !lastSync.IsZero() {
		info.LastSync = lastSync
	}

	return info, nil
}

// IsNotFound reports whether err means a missing entity or store.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrStoreNotFound)
}
