// Package indexer builds a sparse segment index over position-sorted
// variant records in a single forward pass.
//
// Positions are bucketed into fixed-width segments [k*L, (k+1)*L). A segment
// is indexed only if it holds at least Threshold mutated records. Its entry
// pairs the segment start with the byte offset at which the following
// segment begins (or the end of input for the last one), so the decision for
// a segment is taken when the next segment opens.
//
// The package never opens files; callers supply a Source and an emit
// callback. Keep it free of CLI and writer imports.
package indexer
