package sqlite

import (
	"context"
	"reflect"
	"testing"
)

func TestFiltersPutNormalizesAndOverwrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	if err := client.PutFilter(ctx, 5, "  Hello ", "first"); err != nil {
		t.Fatalf("put filter: %v", err)
	}
	if err := client.PutFilter(ctx, 5, "hello", "second"); err != nil {
		t.Fatalf("put filter again: %v", err)
	}

	entries, err := client.ListFilters(ctx, 5)
	if err != nil {
		t.Fatalf("list filters: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].Key != "hello" || entries[0].Reply != "second" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestFiltersListIsLexicographic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	for _, key := range []string{"price", "about", "hello", "zoom"} {
		if err := client.PutFilter(ctx, 7, key, "r"); err != nil {
			t.Fatalf("put filter %q: %v", key, err)
		}
	}
	if err := client.PutFilter(ctx, 8, "other", "r"); err != nil {
		t.Fatalf("put filter in other chat: %v", err)
	}

	entries, err := client.ListFilters(ctx, 7)
	if err != nil {
		t.Fatalf("list filters: %v", err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	expected := []string{"about", "hello", "price", "zoom"}
	if !reflect.DeepEqual(keys, expected) {
		t.Fatalf("unexpected keys: got %v want %v", keys, expected)
	}
}

func TestFiltersRemoveReportsExistence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newTestClient(t)

	if err := client.PutFilter(ctx, 9, "rules", "read the rules"); err != nil {
		t.Fatalf("put filter: %v", err)
	}
	existed, err := client.RemoveFilter(ctx, 9, " RULES ")
	if err != nil {
		t.Fatalf("remove filter: %v", err)
	}
	if !existed {
		t.Fatalf("expected filter to exist")
	}
	existed, err = client.RemoveFilter(ctx, 9, "rules")
	if err != nil {
		t.Fatalf("remove filter again: %v", err)
	}
	if existed {
		t.Fatalf("expected filter to be gone")
	}
}

func TestFiltersRejectEmptyKey(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	if err := client.PutFilter(context.Background(), 1, "   ", "reply"); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
