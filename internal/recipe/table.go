package recipe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/genesis/internal/element"
)

// Separator joins the two sorted names of a pair key. Names may not
// contain it.
const Separator = "+"

// PairKey returns the order-independent lookup key for two element names.
// It is shared by the recipe table and the resolver cache.
func PairKey(a, b string) string {
	x, y := element.NormalizeName(a), element.NormalizeName(b)
	if y < x {
		x, y = y, x
	}
	return x + Separator + y
}

// Table is the immutable recipe lookup built by Build.
// It is safe for concurrent reads.
type Table struct {
	byPair map[string]Entry
	keys   []string // sorted

	// Indexed by normalized result name, including the seed elements.
	defs map[string]element.Definition
}

// Build indexes entries by unordered pair. When two entries share a pair
// the later one wins.
func Build(entries []Entry) *Table {
	t := &Table{
		byPair: make(map[string]Entry, len(entries)),
		defs:   make(map[string]element.Definition, len(entries)+2),
	}

	for _, seed := range []element.Definition{element.Spark, element.Void} {
		t.defs[seed.Key()] = seed
	}

	for _, entry := range entries {
		key := PairKey(entry.Inputs[0], entry.Inputs[1])
		t.byPair[key] = entry
		t.defs[entry.Result.Key()] = entry.Result
	}

	t.keys = make([]string, 0, len(t.byPair))
	for key := range t.byPair {
		t.keys = append(t.keys, key)
	}
	sort.Strings(t.keys)

	return t
}

// BuildStrict is Build for callers that treat any pair collision as an
// authoring mistake.
func BuildStrict(entries []Entry) (*Table, error) {
	if cs := Collisions(entries); len(cs) > 0 {
		keys := make([]string, len(cs))
		for i, c := range cs {
			keys[i] = c.Key
		}
		return nil, fmt.Errorf("build recipe table: %d colliding pair(s): %s",
			len(cs), strings.Join(keys, ", "))
	}
	return Build(entries), nil
}

// Lookup returns the entry for the unordered pair (a, b).
func (t *Table) Lookup(a, b string) (Entry, bool) {
	entry, ok := t.byPair[PairKey(a, b)]
	return entry, ok
}

// LookupKey returns the entry for an already-normalized pair key.
func (t *Table) LookupKey(key string) (Entry, bool) {
	entry, ok := t.byPair[key]
	return entry, ok
}

// Len is the number of distinct pairs in the table.
func (t *Table) Len() int {
	return len(t.byPair)
}

// Keys returns every pair key in sorted order.
func (t *Table) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Entries returns the effective entries in pair key order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.keys))
	for _, key := range t.keys {
		out = append(out, t.byPair[key])
	}
	return out
}

// DefinitionByName returns the definition the table produces under name.
// Seed elements are included.
func (t *Table) DefinitionByName(name string) (element.Definition, bool) {
	def, ok := t.defs[element.NormalizeName(name)]
	return def, ok
}

// EraOf returns the era of a named element. Names the table has never
// heard of belong to Genesis. Used to hydrate saves written before
// definitions carried an era.
func (t *Table) EraOf(name string) element.Era {
	if def, ok := t.defs[element.NormalizeName(name)]; ok && def.Era.Valid() {
		return def.Era
	}
	return element.EraGenesis
}

// Reachable returns every result the static table can produce starting
// from the given names, in the order they become reachable. Each round
// scans pairs in key order, so the result is deterministic.
func (t *Table) Reachable(start ...string) []element.Definition {
	have := make(map[string]bool, len(start))
	for _, name := range start {
		have[element.NormalizeName(name)] = true
	}

	var out []element.Definition
	for changed := true; changed; {
		changed = false
		for _, key := range t.keys {
			entry := t.byPair[key]
			target := entry.Result.Key()
			if have[target] {
				continue
			}
			if have[element.NormalizeName(entry.Inputs[0])] && have[element.NormalizeName(entry.Inputs[1])] {
				have[target] = true
				out = append(out, entry.Result)
				changed = true
			}
		}
	}
	return out
}
