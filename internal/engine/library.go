package engine

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/roach88/genesis/internal/element"
)

// Library is the set of discovered definitions, in discovery order.
// Membership is keyed by normalized name; ids play no part in identity.
//
// A Library is not safe for concurrent use. The Engine guards its own
// copy and hands out clones.
type Library struct {
	records []element.Record
	byName  map[string]int
}

func newLibrary() *Library {
	return &Library{byName: make(map[string]int)}
}

// NewLibrary builds a library from records, dropping later records whose
// name is already present.
func NewLibrary(records []element.Record) *Library {
	l := newLibrary()
	for _, r := range records {
		l.insert(r)
	}
	return l
}

// Discover adds def unless a definition with the same name is already
// present. It returns the canonical record for the name and whether the
// library changed.
func (l *Library) Discover(def element.Definition, at time.Time) (element.Record, bool) {
	if existing, ok := l.Lookup(def.Name); ok {
		return existing, false
	}
	r := def.Discover(at)
	l.insert(r)
	return r, true
}

func (l *Library) insert(r element.Record) bool {
	key := r.Key()
	if key == "" {
		return false
	}
	if _, ok := l.byName[key]; ok {
		return false
	}
	l.byName[key] = len(l.records)
	l.records = append(l.records, r)
	return true
}

// Lookup returns the record whose name matches name after normalization.
func (l *Library) Lookup(name string) (element.Record, bool) {
	i, ok := l.byName[element.NormalizeName(name)]
	if !ok {
		return element.Record{}, false
	}
	return l.records[i], true
}

// Records returns the records in discovery order.
func (l *Library) Records() []element.Record {
	out := make([]element.Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of discovered definitions.
func (l *Library) Len() int {
	return len(l.records)
}

// HighestEra returns the latest era of any discovered definition.
func (l *Library) HighestEra() element.Era {
	highest := element.EraGenesis
	for _, r := range l.records {
		highest = element.Later(highest, r.Era)
	}
	return highest
}

// Clone returns an independent copy.
func (l *Library) Clone() *Library {
	return NewLibrary(l.records)
}

// EraGroup is one section of the grouped library listing.
type EraGroup struct {
	Era     element.Era      `json:"era"`
	Records []element.Record `json:"elements"`
}

// Group partitions the library by era in progression order, keeping
// discovery order inside each era. A non-empty query keeps only records
// whose name contains it, ignoring case. Empty eras are omitted.
// Records without an era land in the genesis group.
func (l *Library) Group(query string) []EraGroup {
	q := element.NormalizeName(query)
	byEra := make(map[element.Era][]element.Record)
	for _, r := range l.records {
		if q != "" && !strings.Contains(r.Key(), q) {
			continue
		}
		era := r.Era
		if !era.Valid() {
			era = element.EraGenesis
		}
		byEra[era] = append(byEra[era], r)
	}

	var groups []EraGroup
	for _, era := range element.Eras() {
		if recs := byEra[era]; len(recs) > 0 {
			groups = append(groups, EraGroup{Era: era, Records: recs})
		}
	}
	return groups
}

// maxSuggestions caps Suggest results.
const maxSuggestions = 5

// Suggest returns discovered names close to name, nearest first. It backs
// "did you mean" hints when a name is not in the library.
func (l *Library) Suggest(name string) []string {
	target := element.NormalizeName(name)
	if target == "" {
		return nil
	}

	type candidate struct {
		name string
		dist int
	}
	var cands []candidate
	for _, r := range l.records {
		key := r.Key()
		dist := levenshtein.ComputeDistance(target, key)
		if dist > levenshteinLimit(utf8.RuneCountInString(key)) {
			if !strings.Contains(key, target) && !strings.Contains(target, key) {
				continue
			}
		}
		cands = append(cands, candidate{name: r.Name, dist: dist})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].dist == cands[j].dist {
			return cands[i].name < cands[j].name
		}
		return cands[i].dist < cands[j].dist
	})

	out := make([]string, 0, maxSuggestions)
	for _, c := range cands {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, c.name)
	}
	return out
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
