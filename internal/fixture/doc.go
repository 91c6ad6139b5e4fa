// Package fixture compiles CUE documents into program summaries.
//
// A fixture is a CUE file with a top-level summary struct:
//
//	summary: {
//		raw_trace: [
//			{address: 0x80000000, opcode: "ADDI", rs1: 0, rd: 5, imm: -4},
//			{address: 0x80000004, opcode: "SW", memory: write: {address: 0x7ff0, pre: 0, post: 3}},
//		]
//		bytecode_trace: [{address: 0}, {address: 1}]
//		instruction_trace: [{opcode: "ADD", x: 0, y: 3}, null]
//		memory_trace: [[{read: 2}], [{write: {address: 5, value: 3}}]]
//		circuit_flags: [true, false, false, true]
//	}
//
// Opcodes are mnemonics. Optional fields may be omitted. Memory groups
// shorter than seven operations are padded with reads of address 0.
//
// The compiled summary goes through trace.New, so inconsistent lengths are
// rejected here rather than at write time.
package fixture
