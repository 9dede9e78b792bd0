// Package normalisers provides implementations of the Transformer interface
// for reference data. Each normaliser maps one kind of source record into
// the persisted entity shape.
package normalisers
