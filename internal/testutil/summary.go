// Package testutil provides deterministic helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tracesum/internal/trace"
)

// FlagsPerStep is the number of circuit flags Summary emits per step.
const FlagsPerStep = 2

// Summary builds a valid summary with one step per opcode.
//
// Each step gets a raw trace row, a bytecode entry, a bytecode trace row,
// an absent lookup, seven no-op memory reads, and FlagsPerStep flags that
// alternate false/true. The result is unconsumed.
func Summary(t testing.TB, ops ...trace.Opcode) *trace.ProgramSummary {
	t.Helper()

	n := len(ops)
	s := trace.ProgramSummary{
		RawTrace:         make([]trace.Row, n),
		Bytecode:         make([]trace.ELFInstruction, n),
		BytecodeTrace:    make([]trace.BytecodeRow, n),
		InstructionTrace: make([]*trace.Lookup, n),
		MemoryTrace:      make([]trace.MemoryOps, n),
		CircuitFlags:     make([]bool, n*FlagsPerStep),
	}
	for i, op := range ops {
		addr := 0x80000000 + 4*uint64(i)
		inst := trace.ELFInstruction{Address: addr, Opcode: op}
		s.RawTrace[i] = trace.Row{Instruction: inst}
		s.Bytecode[i] = inst
		s.BytecodeTrace[i] = trace.BytecodeRow{Address: uint64(i)}
		s.MemoryTrace[i] = trace.NoopReads()
	}
	for i := range s.CircuitFlags {
		s.CircuitFlags[i] = i%2 == 1
	}

	out, err := trace.New(s)
	require.NoError(t, err)
	return out
}

// WriteSummary writes a Summary of ops to path and returns the path.
func WriteSummary(t testing.TB, path string, ops ...trace.Opcode) string {
	t.Helper()
	require.NoError(t, Summary(t, ops...).WriteToFile(path))
	return path
}
