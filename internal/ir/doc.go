// Package ir provides the flat token intermediate representation for
// resolved binary message schemas.
//
// This package is the foundational layer: all other internal packages
// import ir; ir imports nothing internal. The IR is produced once by an
// upstream schema resolver and is read-only here.
//
// A schema is represented as a linear sequence of typed tokens. Nesting
// (composites, repeating groups, variable-length data) is reconstructed
// from the flat sequence using each token's component span count: the
// number of tokens, including itself, that the construct occupies. This
// keeps the IR trivially serializable while allowing O(children)
// traversal of an O(n) token list.
//
// Key design constraints:
//   - Tokens are immutable after load; codec resolution never mutates them
//   - Span counts are always >= 1 and are trusted only after Validate
//   - All JSON tags use camelCase to match the canonical IR document form
package ir
