package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matsen/flatrec/internal/schema"
)

// Record is one row returned by a query against the SQLite mirror.
type Record map[string]any

// openStoreDB opens a SQLite database for a store.
func openStoreDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	return db, nil
}

// quoteIdent quotes a table or column name for SQLite.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// GenerateDDL generates a CREATE TABLE statement from a schema. Every column
// is TEXT and the header field is the primary key.
func GenerateDDL(sch *schema.Schema) string {
	var cols []string
	for _, f := range sch.Fields() {
		col := quoteIdent(f.Name()) + " TEXT"
		if f.IsHeader() {
			col += " PRIMARY KEY"
		}
		cols = append(cols, col)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		quoteIdent(sch.Name()),
		strings.Join(cols, ",\n  "))
}

// GenerateMetaTableDDL generates the _meta table DDL.
func GenerateMetaTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS _meta (
  key TEXT PRIMARY KEY,
  value TEXT
)`
}

func createTables(db *sql.DB, sch *schema.Schema) error {
	if _, err := db.Exec(GenerateDDL(sch)); err != nil {
		return fmt.Errorf("creating main table: %w", err)
	}
	if _, err := db.Exec(GenerateMetaTableDDL()); err != nil {
		return fmt.Errorf("creating meta table: %w", err)
	}
	return nil
}

// ContentHash returns the hex SHA-256 of a data file's content.
func ContentHash(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

// GetStoredHash retrieves the data file hash from the _meta table.
func GetStoredHash(db *sql.DB) (string, error) {
	var hash sql.NullString
	err := db.QueryRow("SELECT value FROM _meta WHERE key = 'data_hash'").Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hash.String, nil
}

// SetStoredHash stores the data file hash in the _meta table.
func SetStoredHash(db execer, hash string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES ('data_hash', ?)`, hash)
	return err
}

// GetLastSyncTime retrieves the last sync time from the _meta table.
func GetLastSyncTime(db *sql.DB) (time.Time, error) {
	var timeStr sql.NullString
	err := db.QueryRow("SELECT value FROM _meta WHERE key = 'last_sync'").Scan(&timeStr)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	if !timeStr.Valid {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, timeStr.String)
}

// SetLastSyncTime stores the last sync time in the _meta table.
func SetLastSyncTime(db execer, t time.Time) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES ('last_sync', ?)`,
		t.Format(time.RFC3339))
	return err
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// NeedsSync returns true if the SQLite database needs to be rebuilt.
func (s *Store) NeedsSync() (bool, error) {
	content, err := s.file.ReadAll()
	if err != nil {
		return true, err
	}

	db, err := openStoreDB(s.dbPath)
	if err != nil {
		return true, err
	}
	defer db.Close()

	storedHash, err := GetStoredHash(db)
	if err != nil {
		return true, err
	}

	return ContentHash(content) != storedHash, nil
}

// Sync rebuilds the SQLite database from the data file. Every line must
// decode as a valid entity.
func (s *Store) Sync() (int, error) {
	all, err := s.file.Lines()
	if err != nil {
		return 0, fmt.Errorf("reading entities: %w", err)
	}
	entities := make([]*schema.Entity, 0, len(all))
	for i, line := range all {
		e, err := s.decodeAt(i+1, line)
		if err != nil {
			return 0, err
		}
		entities = append(entities, e)
	}

	db, err := openStoreDB(s.dbPath)
	if err != nil {
		return 0, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.rebuildTables(tx, entities); err != nil {
		return 0, fmt.Errorf("rebuilding tables: %w", err)
	}
	if err := SetStoredHash(tx, ContentHash(strings.Join(all, "\n"))); err != nil {
		return 0, fmt.Errorf("updating hash: %w", err)
	}
	if err := SetLastSyncTime(tx, time.Now()); err != nil {
		return 0, fmt.Errorf("updating sync time: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}

	s.logger.Debug().Int("entities", len(entities)).Msg("mirror synced")
	return len(entities), nil
}

// rebuildTables recreates the main table, so schema edits since the last
// sync take effect, and inserts every entity.
func (s *Store) rebuildTables(tx *sql.Tx, entities []*schema.Entity) error {
	table := quoteIdent(s.Schema.Name())
	if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
		return fmt.Errorf("dropping main table: %w", err)
	}
	if _, err := tx.Exec(GenerateDDL(s.Schema)); err != nil {
		return fmt.Errorf("creating main table: %w", err)
	}
	if _, err := tx.Exec(GenerateMetaTableDDL()); err != nil {
		return fmt.Errorf("creating meta table: %w", err)
	}

	fields := s.Schema.Fields()
	cols := make([]string, len(fields))
	placeholders := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = quoteIdent(f.Name())
		placeholders[i] = "?"
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", ")))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entities {
		values := make([]any, len(fields))
		for i, f := range fields {
			if v := e.Value(f.Name()); v != "" {
				values[i] = v
			}
		}
		if _, err := stmt.Exec(values...); err != nil {
			return fmt.Errorf("inserting %q: %w", e.Header(), err)
		}
	}
	return nil
}

// Query executes a SQL query against the store's database.
func (s *Store) Query(query string) ([]Record, error) {
	db, err := openStoreDB(s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// scanRecords converts SQL rows to records.
func scanRecords(rows *sql.Rows) ([]Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []Record
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(Record)
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
				continue
			}
			record[col] = values[i]
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// getLastSyncTime returns the last sync time from the database.
func (s *Store) getLastSyncTime() (time.Time, error) {
	db, err := openStoreDB(s.dbPath)
	if err != nil {
		return time.Time{}, err
	}
	defer db.Close()

	return GetLastSyncTime(db)
}

// AttachAllStores attaches all store databases to the given connection,
// each under its store name. Returns a cleanup function that detaches them.
func AttachAllStores(db *sql.DB, repoRoot string) (func(), error) {
	registry, err := LoadRegistry(repoRoot)
	if err != nil {
		return nil, err
	}

	var attached []string
	for _, name := range registry.Names() {
		s, err := OpenStore(repoRoot, name)
		if err != nil {
			continue // Skip stores that can't be opened
		}

		if _, err := db.Exec("ATTACH DATABASE ? AS "+quoteIdent(name), s.DBPath()); err != nil {
			continue
		}
		attached = append(attached, name)
	}

	cleanup := func() {
		for _, name := range attached {
			db.Exec("DETACH DATABASE " + quoteIdent(name))
		}
	}

	return cleanup, nil
}

// QueryCross executes a SQL query across every registered store. Tables are
// addressed as <store>.<schema>.
func QueryCross(repoRoot, query string) ([]Record, error) {
	db, err := openStoreDB(":memory:")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	cleanup, err := AttachAllStores(db, repoRoot)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}
