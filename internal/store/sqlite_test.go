package store

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateDDL(t *testing.T) {
	ddl := GenerateDDL(testSchema(t))

	checks := []string{
		`CREATE TABLE IF NOT EXISTS "people"`,
		`"name" TEXT PRIMARY KEY`,
		`"age" TEXT`,
		`"city" TEXT`,
	}
	for _, want := range checks {
		if !strings.Contains(ddl, want) {
			t.Errorf("DDL missing %q:\n%s", want, ddl)
		}
	}

	// Columns follow field positions.
	if strings.Index(ddl, `"name"`) > strings.Index(ddl, `"age"`) ||
		strings.Index(ddl, `"age"`) > strings.Index(ddl, `"city"`) {
		t.Errorf("columns out of position order:\n%s", ddl)
	}
}

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"people", `"people"`},
		{`we"ird`, `"we""ird"`},
	}
	for _, tt := range tests {
		if got := quoteIdent(tt.in); got != tt.want {
			t.Errorf("quoteIdent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContentHash(t *testing.T) {
	empty := ContentHash("")
	if empty != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("ContentHash(\"\") = %q", empty)
	}
	if ContentHash("a") == ContentHash("b") {
		t.Error("different content produced the same hash")
	}
}

func TestStoredHash(t *testing.T) {
	db, err := openStoreDB(":memory:")
	if err != nil {
		t.Fatalf("openStoreDB: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(GenerateMetaTableDDL()); err != nil {
		t.Fatalf("creating meta table: %v", err)
	}

	hash, err := GetStoredHash(db)
	if err != nil {
		t.Fatalf("GetStoredHash: %v", err)
	}
	if hash != "" {
		t.Errorf("initial hash = %q, want empty", hash)
	}

	if err := SetStoredHash(db, "abc123"); err != nil {
		t.Fatalf("SetStoredHash: %v", err)
	}
	if hash, _ = GetStoredHash(db); hash != "abc123" {
		t.Errorf("hash = %q, want %q", hash, "abc123")
	}

	if err := SetStoredHash(db, "def456"); err != nil {
		t.Fatalf("SetStoredHash: %v", err)
	}
	if hash, _ = GetStoredHash(db); hash != "def456" {
		t.Errorf("hash = %q, want %q", hash, "def456")
	}
}

func TestLastSyncTime(t *testing.T) {
	db, err := openStoreDB(":memory:")
	if err != nil {
		t.Fatalf("openStoreDB: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(GenerateMetaTableDDL()); err != nil {
		t.Fatalf("creating meta table: %v", err)
	}

	got, err := GetLastSyncTime(db)
	if err != nil {
		t.Fatalf("GetLastSyncTime: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("initial sync time = %v, want zero", got)
	}

	now := time.Now().Truncate(time.Second)
	if err := SetLastSyncTime(db, now); err != nil {
		t.Fatalf("SetLastSyncTime: %v", err)
	}
	got, err = GetLastSyncTime(db)
	if err != nil {
		t.Fatalf("GetLastSyncTime: %v", err)
	}
	if !got.Equal(now) {
		t.Errorf("sync time = %v, want %v", got, now)
	}
}

func TestStoreSyncAndQuery(t *testing.T) {
	s, _ := setupTestStore(t)

	rows := []map[string]string{
		{"name": "alice", "age": "42", "city": "paris"},
		{"name": "bob", "age": "7"},
		{"name": "carol"},
	}
	for _, r := range rows {
		if _, err := s.AddEntity(r); err != nil {
			t.Fatalf("AddEntity(%v): %v", r, err)
		}
	}

	needsSync, err := s.NeedsSync()
	if err != nil {
		t.Fatalf("NeedsSync: %v", err)
	}
	if !needsSync {
		t.Error("NeedsSync() = false before sync")
	}

	n, err := s.Sync()
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 3 {
		t.Errorf("Sync() = %d, want 3", n)
	}

	if needsSync, _ = s.NeedsSync(); needsSync {
		t.Error("NeedsSync() = true after sync")
	}

	records, err := s.Query(`SELECT name, age, city FROM people WHERE CAST(age AS INTEGER) > 5 ORDER BY name`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Query returned %d records, want 2", len(records))
	}
	if records[0]["name"] != "alice" || records[0]["city"] != "paris" {
		t.Errorf("records[0] = %v", records[0])
	}
	if records[1]["name"] != "bob" || records[1]["city"] != nil {
		t.Errorf("records[1] = %v, want NULL city", records[1])
	}

	// An edit makes the mirror stale until the next sync.
	if _, err := s.UpdateField("carol", "age", "9"); err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	if needsSync, _ = s.NeedsSync(); !needsSync {
		t.Error("NeedsSync() = false after edit")
	}
	if _, err := s.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	records, err = s.Query(`SELECT age FROM people WHERE name = 'carol'`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(records) != 1 || records[0]["age"] != "9" {
		t.Errorf("carol = %v, want age 9", records)
	}
}

func TestStoreSync_InvalidLine(t *testing.T) {
	s, _ := setupTestStore(t)
	if err := s.Lines().Append("not a valid line"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	_, err := s.Sync()
	if err == nil {
		t.Fatal("Sync() expected error for invalid line")
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("Sync() error = %v, want line number", err)
	}
}

func TestQueryCross(t *testing.T) {
	s, root := setupTestStore(t)
	if _, err := s.AddEntity(map[string]string{"name": "alice"}); err != nil {
		t.Fatalf("AddEntity: %v", err)
	}
	if _, err := s.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	records, err := QueryCross(root, `SELECT name FROM people.people`)
	if err != nil {
		t.Fatalf("QueryCross: %v", err)
	}
	if len(records) != 1 || records[0]["name"] != "alice" {
		t.Errorf("QueryCross = %v", records)
	}
}
