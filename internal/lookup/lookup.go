// Package lookup serves the static warframe reference data: names, aliases,
// abilities, and where to farm each part. The data is embedded at build time
// and loaded once at startup; it is immutable afterwards.
package lookup

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed warframes.json
var warframesJSON []byte

// Warframe is one entry of the reference database.
type Warframe struct {
	Name        string            `json:"name"`
	Aliases     []string          `json:"aliases"`
	Abilities   []string          `json:"abilities"`
	Acquisition map[string]string `json:"acquisition"`
}

// DB is the in-memory index over the embedded reference data.
type DB struct {
	byName  map[string]*Warframe // case-folded canonical name -> entry
	byAlias map[string]*Warframe // case-folded alias -> entry
	names   []string
}

// Load parses the embedded database and builds the search indexes.
func Load() (*DB, error) {
	var frames []Warframe
	if err := json.Unmarshal(warframesJSON, &frames); err != nil {
		return nil, fmt.Errorf("failed to parse embedded warframe database: %w", err)
	}

	db := &DB{
		byName:  make(map[string]*Warframe, len(frames)),
		byAlias: make(map[string]*Warframe),
	}
	for i := range frames {
		wf := &frames[i]
		key := foldKey(wf.Name)
		if _, dup := db.byName[key]; dup {
			return nil, fmt.Errorf("duplicate warframe entry %q", wf.Name)
		}
		db.byName[key] = wf
		db.names = append(db.names, wf.Name)
		for _, alias := range wf.Aliases {
			db.byAlias[foldKey(alias)] = wf
		}
	}
	sort.Strings(db.names)
	return db, nil
}

// Search resolves a user query to a warframe entry. Aliases are checked
// first, then exact names, both case-insensitively and ignoring spaces.
// Returns nil when nothing matches.
func (db *DB) Search(query string) *Warframe {
	key := foldKey(query)
	if key == "" {
		return nil
	}
	if wf, ok := db.byAlias[key]; ok {
		return wf
	}
	if wf, ok := db.byName[key]; ok {
		return wf
	}
	return nil
}

// Names returns every canonical warframe name, sorted.
func (db *DB) Names() []string {
	out := make([]string, len(db.names))
	copy(out, db.names)
	return out
}

// Len returns the number of entries.
func (db *DB) Len() int {
	return len(db.byName)
}

func foldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
