package lookup_test

import (
	"testing"

	"github.com/warfbot/warfbot/internal/lookup"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	db, err := lookup.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if db.Len() == 0 {
		t.Fatal("Load() produced an empty database")
	}
	if len(db.Names()) != db.Len() {
		t.Errorf("Names() has %d entries, Len() = %d", len(db.Names()), db.Len())
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	db, err := lookup.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	testCases := []struct {
		name     string
		query    string
		wantName string
	}{
		{name: "exact name", query: "Rhino", wantName: "Rhino"},
		{name: "lowercase name", query: "rhino", wantName: "Rhino"},
		{name: "name with surrounding spaces", query: "  rhino  ", wantName: "Rhino"},
		{name: "alias", query: "excal", wantName: "Excalibur"},
		{name: "uppercase alias", query: "EXCAL", wantName: "Excalibur"},
		{name: "unknown", query: "stalker", wantName: ""},
		{name: "empty query", query: "", wantName: ""},
		{name: "whitespace only", query: "   ", wantName: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := db.Search(tc.query)
			if tc.wantName == "" {
				if got != nil {
					t.Errorf("Search(%q) = %q, want no match", tc.query, got.Name)
				}
				return
			}
			if got == nil {
				t.Fatalf("Search(%q) = nil, want %q", tc.query, tc.wantName)
			}
			if got.Name != tc.wantName {
				t.Errorf("Search(%q) = %q, want %q", tc.query, got.Name, tc.wantName)
			}
		})
	}
}

func TestEntriesAreComplete(t *testing.T) {
	t.Parallel()

	db, err := lookup.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, name := range db.Names() {
		wf := db.Search(name)
		if wf == nil {
			t.Fatalf("Search(%q) = nil for a listed name", name)
		}
		if len(wf.Abilities) == 0 {
			t.Errorf("%s has no abilities", name)
		}
		if len(wf.Acquisition) == 0 {
			t.Errorf("%s has no acquisition data", name)
		}
	}
}
