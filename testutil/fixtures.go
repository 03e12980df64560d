package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateFileFixture writes data to path, creating parent directories
func CreateFileFixture(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write fixture %s: %v", path, err)
	}
}

// SeedYAML is a small mailbox seed with two users and one thread between them
const SeedYAML = `accounts:
  - username: alice
    password: alice-pw
  - username: bob
    password: bob-pw
threads:
  - title: Lunch
    participants: [alice, bob]
    messages:
      - from: bob
        text: are we still on for noon?
        at: 2024-01-01T12:00:00Z
      - from: alice
        text: yes, see you there
        at: 2024-01-01T12:01:00Z
`

// CreateSeedFixture writes SeedYAML into dir and returns its path
func CreateSeedFixture(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "seed.yaml")
	CreateFileFixture(t, path, []byte(SeedYAML))
	return path
}

// CountRows opens the SQLite database at dbPath and counts rows in table
func CountRows(t *testing.T, dbPath, table string) int {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	var n int
	// table names come from test code only
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}
