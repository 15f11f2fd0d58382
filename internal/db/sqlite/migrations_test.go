package sqlite

import (
	"context"
	"testing"
)

func newTestClient(t *testing.T) *sqliteClient {
	t.Helper()
	client, err := NewSQLiteClient(context.Background(), t.TempDir(), "test.db")
	if err != nil {
		t.Fatalf("new sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestModerationTablesExistAfterMigrations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	var tables []string
	if err := client.db.SelectContext(ctx, &tables, "SELECT name FROM sqlite_master WHERE type = 'table'"); err != nil {
		t.Fatalf("list tables: %v", err)
	}
	present := make(map[string]struct{}, len(tables))
	for _, name := range tables {
		present[name] = struct{}{}
	}
	for _, name := range []string{"group_settings", "infractions", "filters"} {
		if _, ok := present[name]; !ok {
			t.Fatalf("required table %q not found in %v", name, tables)
		}
	}
}

func TestFiltersIndexExistsAfterMigrations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	rows, err := client.db.QueryContext(ctx, "PRAGMA index_list('filters')")
	if err != nil {
		t.Fatalf("query index_list: %v", err)
	}
	defer rows.Close()

	indexes := make(map[string]struct{})
	for rows.Next() {
		var (
			seq     int
			name    string
			unique  int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			t.Fatalf("scan index row: %v", err)
		}
		indexes[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate index rows: %v", err)
	}
	if _, ok := indexes["idx_filters_chat"]; !ok {
		t.Fatalf("required index idx_filters_chat not found")
	}
}

func TestReopenDoesNotReapplyMigrations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	first, err := NewSQLiteClient(ctx, dir, "test.db")
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.PutFilter(ctx, 1, "hello", "hi"); err != nil {
		t.Fatalf("put filter: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := NewSQLiteClient(ctx, dir, "test.db")
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })

	entries, err := second.ListFilters(ctx, 1)
	if err != nil {
		t.Fatalf("list filters: %v", err)
	}
	if len(entries) != 1 || entries[0].Reply != "hi" {
		t.Fatalf("unexpected entries after reopen: %+v", entries)
	}
}
