// Package element defines the data model shared by every layer of the
// crafting engine: element definitions, library records, board instances,
// and the fixed type and era enumerations.
//
// Identity of an element is its normalized name, never its id. A generative
// capability may mint a fresh id for an element that already exists, so
// anything that needs to answer "is this the same element?" must go through
// NormalizeName.
package element
