// Package codec turns a resolved token IR into flyweight codec contracts
// and executes them directly over raw byte buffers.
//
// Resolution is a single-pass walk of each message's flat token span: the
// span walker splits it into fields, groups and variable-length tails, and
// the resolver derives per-construct layout (static offsets inside fixed
// blocks, dimension-header shapes for groups, length-field shapes for
// tails). Resolved codecs are pure functions of the IR: immutable, safe
// for concurrent use and independent of any buffer.
//
// Binding a resolved codec to a buffer produces a flyweight view. Views
// copy nothing beyond the bytes a caller requests. Fixed-block fields are
// addressed at baseOffset+fieldOffset; groups and var data share one
// forward-only cursor threaded from the enclosing message. A bound view
// is single-writer: the cursor is unsynchronized mutable state, so
// concurrent use requires external exclusion or separate views over
// disjoint buffer regions.
//
// Sibling variable-size regions are laid out contiguously in declaration
// order. Accessing a later sibling before an earlier variable-size sibling
// has been fully consumed silently corrupts the layout; honoring the order
// is the caller's responsibility, mirroring the wire format's contract.
package codec
