package trace

import (
	"fmt"

	"github.com/roach88/tracesum/internal/codec"
)

// Approximate encoded sizes, used only to presize the buffer.
const (
	rowSizeHint         = 96
	memoryOpsSizeHint   = MemoryOpsPerInstruction * 16
	bytecodeRowSizeHint = 57
)

// Smallest encoded size of one element of each sequence. Decode checks a
// length prefix against these before allocating.
const (
	minInstructionSize = 8 + 4 + 5                      // address, opcode, five absent options
	minRowSize         = minInstructionSize + 3 + 1 + 1 // registers, memory, advice
	minMemoryWordSize  = 8 + 1
	minBytecodeRowSize = 6*8 + 1
	minLookupSize      = 1
	minMemoryOpSize    = 4 + 8
	minMemoryOpsSize   = MemoryOpsPerInstruction * minMemoryOpSize
	minFlagSize        = 1
)

// MarshalBinary encodes s as FormatVersion followed by every field in
// declaration order.
//
// Encoding fails if a value cannot be represented in the layout: an
// undefined opcode or memory operation kind, or a read that carries write
// values. Failures are returned as *Error with code ENCODE.
func (s *ProgramSummary) MarshalBinary() ([]byte, error) {
	enc := codec.NewEncoder(s.sizeHint())
	enc.U32(FormatVersion)

	enc.SeqLen(len(s.RawTrace))
	for i, row := range s.RawTrace {
		if err := encodeRow(enc, row); err != nil {
			return nil, encodeErr("raw_trace[%d]: %w", i, err)
		}
	}

	enc.SeqLen(len(s.Bytecode))
	for i, instr := range s.Bytecode {
		if err := encodeInstruction(enc, instr); err != nil {
			return nil, encodeErr("bytecode[%d]: %w", i, err)
		}
	}

	enc.SeqLen(len(s.MemoryInit))
	for _, w := range s.MemoryInit {
		enc.U64(w.Address)
		enc.U8(w.Value)
	}

	encodeDevice(enc, s.Device)

	enc.SeqLen(len(s.BytecodeTrace))
	for _, row := range s.BytecodeTrace {
		enc.U64(row.Address)
		enc.U64(row.Bitflags)
		enc.U64(row.Rd)
		enc.U64(row.Rs1)
		enc.U64(row.Rs2)
		enc.U64(row.Imm)
		enc.OptionU64(row.VirtualSequenceRemaining)
	}

	enc.SeqLen(len(s.InstructionTrace))
	for i, l := range s.InstructionTrace {
		if l == nil {
			enc.None()
			continue
		}
		if !l.Opcode.Valid() {
			return nil, encodeErr("instruction_trace[%d]: invalid opcode %d", i, uint32(l.Opcode))
		}
		enc.Some()
		enc.Variant(uint32(l.Opcode))
		enc.U64(l.X)
		enc.U64(l.Y)
	}

	enc.SeqLen(len(s.MemoryTrace))
	for i, group := range s.MemoryTrace {
		for j, op := range group {
			if err := encodeMemoryOp(enc, op); err != nil {
				return nil, encodeErr("memory_trace[%d][%d]: %w", i, j, err)
			}
		}
	}

	enc.SeqLen(len(s.CircuitFlags))
	for _, f := range s.CircuitFlags {
		enc.Bool(f)
	}

	return enc.Bytes(), nil
}

func (s *ProgramSummary) sizeHint() int {
	return 4 +
		len(s.RawTrace)*rowSizeHint +
		len(s.Bytecode)*rowSizeHint/2 +
		len(s.MemoryInit)*9 +
		len(s.Device.Inputs) + len(s.Device.Outputs) + 96 +
		len(s.BytecodeTrace)*bytecodeRowSizeHint +
		len(s.InstructionTrace)*21 +
		len(s.MemoryTrace)*memoryOpsSizeHint +
		len(s.CircuitFlags) +
		7*8
}

func encodeErr(format string, args ...any) error {
	return &Error{Code: ErrCodeEncode, Op: "encode", Err: fmt.Errorf(format, args...)}
}

func encodeInstruction(enc *codec.Encoder, instr ELFInstruction) error {
	if !instr.Opcode.Valid() {
		return fmt.Errorf("invalid opcode %d", uint32(instr.Opcode))
	}
	enc.U64(instr.Address)
	enc.Variant(uint32(instr.Opcode))
	enc.OptionU64(instr.Rs1)
	enc.OptionU64(instr.Rs2)
	enc.OptionU64(instr.Rd)
	enc.OptionI64(instr.Imm)
	enc.OptionU64(instr.VirtualSequenceRemaining)
	return nil
}

func encodeRow(enc *codec.Encoder, row Row) error {
	if err := encodeInstruction(enc, row.Instruction); err != nil {
		return fmt.Errorf("instruction: %w", err)
	}

	enc.OptionU64(row.Registers.Rs1Val)
	enc.OptionU64(row.Registers.Rs2Val)
	enc.OptionU64(row.Registers.RdPostVal)

	if row.Memory == nil {
		enc.None()
	} else {
		m := row.Memory
		enc.Some()
		switch m.Kind {
		case MemoryRead:
			if m.PreValue != 0 || m.PostValue != 0 {
				return fmt.Errorf("memory: read at 0x%x carries write values", m.Address)
			}
			enc.Variant(uint32(MemoryRead))
			enc.U64(m.Address)
			enc.U64(m.Value)
		case MemoryWrite:
			if m.Value != 0 {
				return fmt.Errorf("memory: write at 0x%x carries a read value", m.Address)
			}
			enc.Variant(uint32(MemoryWrite))
			enc.U64(m.Address)
			enc.U64(m.PreValue)
			enc.U64(m.PostValue)
		default:
			return fmt.Errorf("memory: invalid access kind %d", uint32(m.Kind))
		}
	}

	enc.OptionU64(row.Advice)
	return nil
}

func encodeDevice(enc *codec.Encoder, d Device) {
	enc.ByteString(d.Inputs)
	enc.ByteString(d.Outputs)
	enc.Bool(d.Panic)
	enc.U64(d.Layout.MaxInputSize)
	enc.U64(d.Layout.MaxOutputSize)
	enc.U64(d.Layout.InputStart)
	enc.U64(d.Layout.InputEnd)
	enc.U64(d.Layout.OutputStart)
	enc.U64(d.Layout.OutputEnd)
	enc.U64(d.Layout.Panic)
	enc.U64(d.Layout.Termination)
}

func encodeMemoryOp(enc *codec.Encoder, op MemoryOp) error {
	switch op.Kind {
	case MemoryRead:
		if op.Value != 0 {
			return fmt.Errorf("read at 0x%x carries a value", op.Address)
		}
		enc.Variant(uint32(MemoryRead))
		enc.U64(op.Address)
	case MemoryWrite:
		enc.Variant(uint32(MemoryWrite))
		enc.U64(op.Address)
		enc.U64(op.Value)
	default:
		return fmt.Errorf("invalid memory operation kind %d", uint32(op.Kind))
	}
	return nil
}

// Decode parses bytes produced by MarshalBinary.
//
// The format version must equal FormatVersion and the input must be consumed
// exactly. Failures are returned as *Error with code DECODE.
//
// Empty sequences decode as nil, so a summary built with empty non-nil
// slices round-trips to the same bytes and lengths but not to a
// reflect.DeepEqual value.
func Decode(data []byte) (*ProgramSummary, error) {
	dec := codec.NewDecoder(data)

	if v := dec.U32(); dec.Err() == nil && v != FormatVersion {
		return nil, decodeErr(fmt.Errorf("unsupported format version %d (want %d)", v, FormatVersion))
	}

	s := &ProgramSummary{}

	if n := dec.SeqLen(minRowSize); n > 0 {
		s.RawTrace = make([]Row, n)
		for i := range s.RawTrace {
			s.RawTrace[i] = decodeRow(dec)
		}
	}

	if n := dec.SeqLen(minInstructionSize); n > 0 {
		s.Bytecode = make([]ELFInstruction, n)
		for i := range s.Bytecode {
			s.Bytecode[i] = decodeInstruction(dec)
		}
	}

	if n := dec.SeqLen(minMemoryWordSize); n > 0 {
		s.MemoryInit = make([]MemoryWord, n)
		for i := range s.MemoryInit {
			s.MemoryInit[i] = MemoryWord{Address: dec.U64(), Value: dec.U8()}
		}
	}

	s.Device = decodeDevice(dec)

	if n := dec.SeqLen(minBytecodeRowSize); n > 0 {
		s.BytecodeTrace = make([]BytecodeRow, n)
		for i := range s.BytecodeTrace {
			s.BytecodeTrace[i] = BytecodeRow{
				Address:                  dec.U64(),
				Bitflags:                 dec.U64(),
				Rd:                       dec.U64(),
				Rs1:                      dec.U64(),
				Rs2:                      dec.U64(),
				Imm:                      dec.U64(),
				VirtualSequenceRemaining: dec.OptionU64(),
			}
		}
	}

	if n := dec.SeqLen(minLookupSize); n > 0 {
		s.InstructionTrace = make([]*Lookup, n)
		for i := range s.InstructionTrace {
			if !dec.Present() {
				continue
			}
			s.InstructionTrace[i] = &Lookup{
				Opcode: Opcode(dec.Variant(uint32(numOpcodes))),
				X:      dec.U64(),
				Y:      dec.U64(),
			}
		}
	}

	if n := dec.SeqLen(minMemoryOpsSize); n > 0 {
		s.MemoryTrace = make([]MemoryOps, n)
		for i := range s.MemoryTrace {
			for j := range s.MemoryTrace[i] {
				s.MemoryTrace[i][j] = decodeMemoryOp(dec)
			}
		}
	}

	if n := dec.SeqLen(minFlagSize); n > 0 {
		s.CircuitFlags = make([]bool, n)
		for i := range s.CircuitFlags {
			s.CircuitFlags[i] = dec.Bool()
		}
	}

	if err := dec.Finish(); err != nil {
		return nil, decodeErr(err)
	}
	return s, nil
}

// UnmarshalBinary replaces s with the summary decoded from data.
func (s *ProgramSummary) UnmarshalBinary(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*s = *decoded
	return nil
}

func decodeErr(err error) error {
	return &Error{Code: ErrCodeDecode, Op: "decode", Err: err}
}

func decodeInstruction(dec *codec.Decoder) ELFInstruction {
	return ELFInstruction{
		Address:                  dec.U64(),
		Opcode:                   Opcode(dec.Variant(uint32(numOpcodes))),
		Rs1:                      dec.OptionU64(),
		Rs2:                      dec.OptionU64(),
		Rd:                       dec.OptionU64(),
		Imm:                      dec.OptionI64(),
		VirtualSequenceRemaining: dec.OptionU64(),
	}
}

func decodeRow(dec *codec.Decoder) Row {
	row := Row{
		Instruction: decodeInstruction(dec),
		Registers: RegisterState{
			Rs1Val:    dec.OptionU64(),
			Rs2Val:    dec.OptionU64(),
			RdPostVal: dec.OptionU64(),
		},
	}

	if dec.Present() {
		m := &MemoryState{Kind: MemoryOpKind(dec.Variant(uint32(numMemoryOpKinds)))}
		m.Address = dec.U64()
		if m.Kind == MemoryRead {
			m.Value = dec.U64()
		} else {
			m.PreValue = dec.U64()
			m.PostValue = dec.U64()
		}
		row.Memory = m
	}

	row.Advice = dec.OptionU64()
	return row
}

func decodeDevice(dec *codec.Decoder) Device {
	return Device{
		Inputs:  dec.ByteString(),
		Outputs: dec.ByteString(),
		Panic:   dec.Bool(),
		Layout: MemoryLayout{
			MaxInputSize:  dec.U64(),
			MaxOutputSize: dec.U64(),
			InputStart:    dec.U64(),
			InputEnd:      dec.U64(),
			OutputStart:   dec.U64(),
			OutputEnd:     dec.U64(),
			Panic:         dec.U64(),
			Termination:   dec.U64(),
		},
	}
}

func decodeMemoryOp(dec *codec.Decoder) MemoryOp {
	op := MemoryOp{Kind: MemoryOpKind(dec.Variant(uint32(numMemoryOpKinds)))}
	op.Address = dec.U64()
	if op.Kind == MemoryWrite {
		op.Value = dec.U64()
	}
	return op
}
