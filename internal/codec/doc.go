// Package codec implements the fixed-layout binary primitives used to persist
// program summaries.
//
// The layout follows the bincode conventions the trace producer uses:
//   - Integers are little-endian and fixed width
//   - Sequences and byte strings carry a u64 length prefix
//   - Optional values carry a one-byte tag (0 absent, 1 present)
//   - Booleans are a single byte (0 or 1)
//   - Enum variants are a u32 index followed by the variant payload
//   - Fixed-size arrays have no prefix
//
// The layout is not self-describing. Readers must walk fields in the same
// order the writer emitted them.
package codec
