package trace

// rowOf returns a raw trace row executing op with no operands.
func rowOf(op Opcode) Row {
	return Row{Instruction: ELFInstruction{Address: 0x80000000, Opcode: op}}
}

// rowsOf returns one row per opcode, in order.
func rowsOf(ops ...Opcode) []Row {
	rows := make([]Row, len(ops))
	for i, op := range ops {
		rows[i] = rowOf(op)
	}
	return rows
}

// sampleSummary returns a three-step summary exercising every field,
// including optional values in both states and both memory access kinds.
func sampleSummary() ProgramSummary {
	writeOps := NoopReads()
	writeOps[0] = ReadOp(2)
	writeOps[1] = ReadOp(5)
	writeOps[3] = WriteOp(0x7ff0, 0xfc)

	readOps := NoopReads()
	readOps[0] = ReadOp(2)
	readOps[2] = WriteOp(6, 0xfffffffc)

	addiOps := NoopReads()
	addiOps[2] = WriteOp(5, 0xfffffffc)

	return ProgramSummary{
		RawTrace: []Row{
			{
				Instruction: ELFInstruction{Address: 0x80000000, Opcode: ADDI, Rs1: U64(0), Rd: U64(5), Imm: I64(-4)},
				Registers:   RegisterState{Rs1Val: U64(0), RdPostVal: U64(0xfffffffc)},
			},
			{
				Instruction: ELFInstruction{Address: 0x80000004, Opcode: SW, Rs1: U64(2), Rs2: U64(5), Imm: I64(8)},
				Registers:   RegisterState{Rs1Val: U64(0x7fe8), Rs2Val: U64(0xfffffffc)},
				Memory:      &MemoryState{Kind: MemoryWrite, Address: 0x7ff0, PreValue: 0, PostValue: 0xfffffffc},
			},
			{
				Instruction: ELFInstruction{Address: 0x80000008, Opcode: LW, Rs1: U64(2), Rd: U64(6), Imm: I64(8), VirtualSequenceRemaining: U64(0)},
				Registers:   RegisterState{Rs1Val: U64(0x7fe8), RdPostVal: U64(0xfffffffc)},
				Memory:      &MemoryState{Kind: MemoryRead, Address: 0x7ff0, Value: 0xfffffffc},
				Advice:      U64(3),
			},
		},
		Bytecode: []ELFInstruction{
			{Address: 0x80000000, Opcode: ADDI, Rs1: U64(0), Rd: U64(5), Imm: I64(-4)},
			{Address: 0x80000004, Opcode: SW, Rs1: U64(2), Rs2: U64(5), Imm: I64(8)},
			{Address: 0x80000008, Opcode: LW, Rs1: U64(2), Rd: U64(6), Imm: I64(8)},
		},
		MemoryInit: []MemoryWord{
			{Address: 0x80000000, Value: 0x13},
			{Address: 0x80000001, Value: 0x05},
			{Address: 0x80000000, Value: 0x13},
		},
		Device: Device{
			Inputs:  []byte{1, 2, 3},
			Outputs: []byte{9},
			Layout: MemoryLayout{
				MaxInputSize:  4096,
				MaxOutputSize: 4096,
				InputStart:    0x20000000,
				InputEnd:      0x20001000,
				OutputStart:   0x20001000,
				OutputEnd:     0x20002000,
				Panic:         0x20002000,
				Termination:   0x20002004,
			},
		},
		BytecodeTrace: []BytecodeRow{
			{Address: 0, Bitflags: 0x11, Rd: 5, Imm: 0xfffffffc},
			{Address: 1, Bitflags: 0x24, Rs1: 2, Rs2: 5, Imm: 8},
			{Address: 2, Bitflags: 0x42, Rd: 6, Rs1: 2, Imm: 8, VirtualSequenceRemaining: U64(0)},
		},
		InstructionTrace: []*Lookup{
			{Opcode: ADD, X: 0, Y: 0xfffffffc},
			nil,
			{Opcode: ADD, X: 0x7fe8, Y: 8},
		},
		MemoryTrace:  []MemoryOps{addiOps, writeOps, readOps},
		CircuitFlags: []bool{true, false, false, true, true, true},
	}
}
