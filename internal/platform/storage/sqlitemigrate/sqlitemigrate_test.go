package sqlitemigrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
	"testing/fstest"
)

func openTempDB(t *testing.T, migrations fstest.MapFS, root string) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), migrations, root)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), " ", fstest.MapFS{}, ""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestApplyRecordsMigrations(t *testing.T) {
	migrations := fstest.MapFS{
		"002_more.sql":   {Data: []byte("CREATE TABLE more(id INTEGER PRIMARY KEY);")},
		"001_create.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE items;")},
		"README.md":      {Data: []byte("not a migration")},
	}
	db := openTempDB(t, migrations, "")

	names, err := Applied(context.Background(), db)
	if err != nil {
		t.Fatalf("Applied error = %v", err)
	}
	if want := []string{"001_create.sql", "002_more.sql"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("applied = %v, want %v", names, want)
	}
	if !tableExists(t, db, "items") || !tableExists(t, db, "more") {
		t.Fatal("expected migrated tables to exist")
	}

	if err := Apply(context.Background(), db, migrations, ""); err != nil {
		t.Fatalf("re-apply error = %v", err)
	}
	names, err = Applied(context.Background(), db)
	if err != nil {
		t.Fatalf("Applied error = %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("applied after replay = %v, want 2 entries", names)
	}
}

func TestApplyDoesNotRecordFailedMigration(t *testing.T) {
	db := openTempDB(t, fstest.MapFS{}, "")

	bad := fstest.MapFS{"001_bad.sql": {Data: []byte("CREAT table things(id INT);")}}
	if err := Apply(context.Background(), db, bad, ""); err == nil {
		t.Fatal("expected bad migration to fail")
	}
	if names, _ := Applied(context.Background(), db); len(names) != 0 {
		t.Fatalf("applied = %v, want none", names)
	}

	good := fstest.MapFS{"001_bad.sql": {Data: []byte("CREATE TABLE things(id INTEGER PRIMARY KEY);")}}
	if err := Apply(context.Background(), db, good, ""); err != nil {
		t.Fatalf("apply fixed migration: %v", err)
	}
	if names, _ := Applied(context.Background(), db); len(names) != 1 {
		t.Fatalf("applied = %v, want one", names)
	}
}

func TestApplyRespectsRoot(t *testing.T) {
	migrations := fstest.MapFS{
		"catalog/001_cards.sql": {Data: []byte("CREATE TABLE card_rows(id INTEGER PRIMARY KEY);")},
	}
	db := openTempDB(t, migrations, "catalog")
	names, err := Applied(context.Background(), db)
	if err != nil {
		t.Fatalf("Applied error = %v", err)
	}
	if want := []string{"catalog/001_cards.sql"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("applied = %v, want %v", names, want)
	}
}

func TestExtractUpMigration(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{content: "CREATE TABLE a(x);", want: "CREATE TABLE a(x);"},
		{content: "-- +migrate Up\nCREATE TABLE a(x);", want: "\nCREATE TABLE a(x);"},
		{content: "-- +migrate Up\nUP;\n-- +migrate Down\nDOWN;", want: "\nUP;\n"},
	}
	for _, tt := range tests {
		if got := ExtractUpMigration(tt.content); got != tt.want {
			t.Fatalf("ExtractUpMigration(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var found string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", name).Scan(&found)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("check table exists: %v", err)
	}
	return found == name
}
