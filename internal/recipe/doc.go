// Package recipe holds the static combination table.
//
// Rules are authored in CUE (schema.cue + recipes.cue, both embedded) and
// compiled once into a Table keyed by the unordered pair of input names.
// The key is the two normalized names sorted and joined with Separator,
// so Lookup(a, b) and Lookup(b, a) always agree.
//
// When two rules name the same unordered pair the later rule wins. The
// shipped table has one such pair on purpose; Collisions reports it and
// BuildStrict refuses it.
package recipe
