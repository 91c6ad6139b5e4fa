// Package trace provides the ProgramSummary record for a single RV32IM
// program execution and everything needed to analyze and persist it.
//
// A ProgramSummary is built once by the trace producer, read any number of
// times, and written to disk at most once.
//
// Key design constraints:
//   - TraceLen is the length of the memory trace, never of any other field
//   - Analyze orders opcodes by count descending, ties by opcode ascending
//   - The persisted form is a fixed field-order binary layout (see package
//     codec) prefixed by a u32 format version
//   - Encoding happens entirely in memory before the destination is touched
//   - This package never logs; failures are returned as *Error
package trace
