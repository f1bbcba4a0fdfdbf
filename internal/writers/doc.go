// Package writers persists index entries.
//
// Design:
//   - Entries are published all-or-nothing: a file index appears at its
//     destination only after a successful pass.
//   - Writers know the TSV layout; the indexer only produces entries.
package writers
