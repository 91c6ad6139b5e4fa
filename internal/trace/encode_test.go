package trace

import (
	"bytes"
	"encoding/binary"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tracesum/internal/codec"
)

func TestMarshalBinary_EmptySummaryLayout(t *testing.T) {
	data, err := (&ProgramSummary{}).MarshalBinary()
	require.NoError(t, err)

	// version(4) + seven u64 sequence prefixes (56) +
	// device: two byte-string prefixes (16) + panic(1) + layout(64)
	assert.Len(t, data, 141)
	assert.Equal(t, FormatVersion, binary.LittleEndian.Uint32(data[:4]))
}

func TestMarshalBinary_CircuitFlagsAreSingleBytes(t *testing.T) {
	s := &ProgramSummary{CircuitFlags: []bool{true, false, true}}

	data, err := s.MarshalBinary()
	require.NoError(t, err)

	tail := data[len(data)-11:]
	assert.Equal(t, []byte{3, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1}, tail)
}

func TestDecode_RoundTrip(t *testing.T) {
	s, err := New(sampleSummary())
	require.NoError(t, err)

	data, err := s.MarshalBinary()
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestDecode_RoundTripEmpty(t *testing.T) {
	data, err := (&ProgramSummary{}).MarshalBinary()
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, &ProgramSummary{}, got)
}

func TestDecode_RoundTripEmptyNonNilSlices(t *testing.T) {
	s, err := New(ProgramSummary{
		RawTrace:         []Row{},
		Bytecode:         []ELFInstruction{},
		MemoryInit:       []MemoryWord{},
		BytecodeTrace:    []BytecodeRow{},
		InstructionTrace: []*Lookup{},
		MemoryTrace:      []MemoryOps{},
		CircuitFlags:     []bool{},
	})
	require.NoError(t, err)
	data, err := s.MarshalBinary()
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)

	// Empty sequences come back nil. Lengths and bytes are preserved.
	assert.Nil(t, got.RawTrace)
	assert.Equal(t, s.TraceLen(), got.TraceLen())
	assert.Len(t, got.CircuitFlags, len(s.CircuitFlags))

	again, err := got.MarshalBinary()
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, again))
}

func TestMarshalBinary_MinimalElementSizes(t *testing.T) {
	base, err := (&ProgramSummary{}).MarshalBinary()
	require.NoError(t, err)

	tests := []struct {
		name    string
		summary ProgramSummary
		size    int
	}{
		{"raw trace row", ProgramSummary{RawTrace: rowsOf(ADD)}, minRowSize},
		{"bytecode instruction", ProgramSummary{Bytecode: []ELFInstruction{{}}}, minInstructionSize},
		{"memory word", ProgramSummary{MemoryInit: []MemoryWord{{}}}, minMemoryWordSize},
		{"bytecode row", ProgramSummary{BytecodeTrace: []BytecodeRow{{}}}, minBytecodeRowSize},
		{"absent lookup", ProgramSummary{InstructionTrace: []*Lookup{nil}}, minLookupSize},
		{"noop memory ops", ProgramSummary{MemoryTrace: []MemoryOps{NoopReads()}}, minMemoryOpsSize},
		{"circuit flag", ProgramSummary{CircuitFlags: []bool{false}}, minFlagSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.summary.MarshalBinary()
			require.NoError(t, err)
			assert.Equal(t, len(base)+tt.size, len(data))

			_, err = Decode(data)
			require.NoError(t, err)
		})
	}
}

func TestMarshalBinary_Deterministic(t *testing.T) {
	s, err := New(sampleSummary())
	require.NoError(t, err)

	a, err := s.MarshalBinary()
	require.NoError(t, err)
	b, err := s.Clone().MarshalBinary()
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestUnmarshalBinary(t *testing.T) {
	s, err := New(sampleSummary())
	require.NoError(t, err)
	data, err := s.MarshalBinary()
	require.NoError(t, err)

	var got ProgramSummary
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, s, &got)
}

func TestDecode_RejectsOtherVersion(t *testing.T) {
	data, err := (&ProgramSummary{}).MarshalBinary()
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(data[:4], FormatVersion+1)

	_, err = Decode(data)
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))
	assert.Contains(t, err.Error(), "unsupported format version 2")
}

func TestDecode_RejectsTrailingBytes(t *testing.T) {
	data, err := (&ProgramSummary{}).MarshalBinary()
	require.NoError(t, err)

	_, err = Decode(append(data, 0))
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))
	assert.ErrorIs(t, err, codec.ErrTrailingBytes)
}

func TestDecode_RejectsTruncatedInput(t *testing.T) {
	s, err := New(sampleSummary())
	require.NoError(t, err)
	data, err := s.MarshalBinary()
	require.NoError(t, err)

	for _, n := range []int{0, 3, 4, 20, len(data) / 2, len(data) - 1} {
		_, err := Decode(data[:n])
		require.Error(t, err, "prefix of %d bytes", n)
		assert.True(t, IsDecodeError(err))
		assert.ErrorIs(t, err, codec.ErrUnexpectedEOF)
	}
}

func TestDecode_OversizedLengthFailsBeforeAllocating(t *testing.T) {
	data, err := (&ProgramSummary{}).MarshalBinary()
	require.NoError(t, err)

	// The memory_trace prefix follows version(4), three sequence prefixes
	// (24), device(81), and two more sequence prefixes (16).
	const memoryTraceOffset = 125
	const claimed = 4 << 20
	binary.LittleEndian.PutUint64(data[memoryTraceOffset:], claimed)
	data = append(data, make([]byte, claimed)...)

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	_, err = Decode(data)
	runtime.ReadMemStats(&after)

	require.Error(t, err)
	assert.True(t, IsDecodeError(err))
	assert.ErrorIs(t, err, codec.ErrUnexpectedEOF)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
}

func TestDecode_RejectsUnknownOpcode(t *testing.T) {
	s := &ProgramSummary{RawTrace: rowsOf(ADD)}
	data, err := s.MarshalBinary()
	require.NoError(t, err)

	// version(4) + raw_trace prefix(8) + address(8) puts the opcode variant at 20.
	binary.LittleEndian.PutUint32(data[20:24], uint32(NumOpcodes))

	_, err = Decode(data)
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))
	assert.Contains(t, err.Error(), "variant index")
}

func TestMarshalBinary_EncodeFailures(t *testing.T) {
	tests := []struct {
		name    string
		summary ProgramSummary
		wantMsg string
	}{
		{
			name:    "raw trace opcode out of range",
			summary: ProgramSummary{RawTrace: rowsOf(ADD, Opcode(200))},
			wantMsg: "raw_trace[1]: instruction: invalid opcode 200",
		},
		{
			name:    "bytecode opcode out of range",
			summary: ProgramSummary{Bytecode: []ELFInstruction{{Opcode: numOpcodes}}},
			wantMsg: "bytecode[0]: invalid opcode",
		},
		{
			name:    "lookup opcode out of range",
			summary: ProgramSummary{InstructionTrace: []*Lookup{nil, {Opcode: Opcode(999)}}},
			wantMsg: "instruction_trace[1]: invalid opcode 999",
		},
		{
			name: "read carrying a value",
			summary: ProgramSummary{MemoryTrace: []MemoryOps{func() MemoryOps {
				ops := NoopReads()
				ops[4] = MemoryOp{Kind: MemoryRead, Address: 8, Value: 1}
				return ops
			}()}},
			wantMsg: "memory_trace[0][4]: read at 0x8 carries a value",
		},
		{
			name: "unknown memory op kind",
			summary: ProgramSummary{MemoryTrace: []MemoryOps{func() MemoryOps {
				ops := NoopReads()
				ops[0].Kind = MemoryOpKind(7)
				return ops
			}()}},
			wantMsg: "invalid memory operation kind 7",
		},
		{
			name: "read state with write values",
			summary: ProgramSummary{RawTrace: []Row{{
				Instruction: ELFInstruction{Opcode: LW},
				Memory:      &MemoryState{Kind: MemoryRead, Address: 0x10, PostValue: 3},
			}}},
			wantMsg: "read at 0x10 carries write values",
		},
		{
			name: "write state with read value",
			summary: ProgramSummary{RawTrace: []Row{{
				Instruction: ELFInstruction{Opcode: SW},
				Memory:      &MemoryState{Kind: MemoryWrite, Address: 0x10, Value: 3},
			}}},
			wantMsg: "write at 0x10 carries a read value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.summary.MarshalBinary()
			require.Error(t, err)
			assert.Nil(t, data)
			assert.True(t, IsEncodeError(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
