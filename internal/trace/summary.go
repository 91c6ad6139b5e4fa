package trace

import (
	"cmp"
	"fmt"
	"slices"
)

// ProgramSummary aggregates one program execution: the raw trace, the static
// program image, and the per-step artifacts derived from it.
//
// Fields are exported for the producer. Nothing in this package mutates them.
// Field order is the persisted order; do not reorder.
type ProgramSummary struct {
	RawTrace         []Row            `json:"raw_trace"`
	Bytecode         []ELFInstruction `json:"bytecode"`
	MemoryInit       []MemoryWord     `json:"memory_init"`
	Device           Device           `json:"device"`
	BytecodeTrace    []BytecodeRow    `json:"bytecode_trace"`
	InstructionTrace []*Lookup        `json:"instruction_trace"`
	MemoryTrace      []MemoryOps      `json:"memory_trace"`
	CircuitFlags     []bool           `json:"circuit_flags"`

	consumed bool
}

// OpcodeCount is one entry of the opcode histogram.
type OpcodeCount struct {
	Opcode Opcode `json:"opcode"`
	Count  int    `json:"count"`
}

// New validates s and returns it as a fresh, unconsumed summary.
//
// The memory trace defines the step count. The bytecode trace and the
// instruction trace must have exactly one entry per step, and the circuit
// flags must be a whole number of flags per step.
func New(s ProgramSummary) (*ProgramSummary, error) {
	s.consumed = false
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the per-step fields agree on the step count.
// Summaries built as struct literals are never validated implicitly.
func (s *ProgramSummary) Validate() error {
	steps := len(s.MemoryTrace)

	if len(s.BytecodeTrace) != steps {
		return invalid(&LengthMismatchError{Field: "bytecode_trace", Got: len(s.BytecodeTrace), Want: steps})
	}
	if len(s.InstructionTrace) != steps {
		return invalid(&LengthMismatchError{Field: "instruction_trace", Got: len(s.InstructionTrace), Want: steps})
	}

	flags := len(s.CircuitFlags)
	if steps == 0 {
		if flags != 0 {
			return invalid(fmt.Errorf("circuit_flags has %d entries for an empty trace", flags))
		}
		return nil
	}
	if flags%steps != 0 {
		return invalid(fmt.Errorf("circuit_flags has %d entries, not a multiple of %d steps", flags, steps))
	}
	return nil
}

func invalid(err error) error {
	return &Error{Code: ErrCodeInvalid, Op: "validate", Err: err}
}

// TraceLen returns the step count, which is the number of memory operation
// groups. Other field lengths are not consulted.
func (s *ProgramSummary) TraceLen() int {
	return len(s.MemoryTrace)
}

// FlagsPerStep returns the number of circuit flags recorded per step, or 0
// for an empty trace.
func (s *ProgramSummary) FlagsPerStep() int {
	if len(s.MemoryTrace) == 0 {
		return 0
	}
	return len(s.CircuitFlags) / len(s.MemoryTrace)
}

// Analyze counts how often each opcode was executed in the raw trace.
//
// The result is ordered by count, most frequent first. Equal counts are
// ordered by opcode so the result is identical across runs. An empty raw
// trace yields an empty slice.
func (s *ProgramSummary) Analyze() []OpcodeCount {
	counts := make(map[Opcode]int)
	for _, row := range s.RawTrace {
		counts[row.Instruction.Opcode]++
	}

	result := make([]OpcodeCount, 0, len(counts))
	for op, n := range counts {
		result = append(result, OpcodeCount{Opcode: op, Count: n})
	}

	slices.SortFunc(result, func(a, b OpcodeCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Opcode, b.Opcode)
	})

	return result
}

// Consumed reports whether WriteToFile has been called on s.
func (s *ProgramSummary) Consumed() bool {
	return s.consumed
}

// Clone returns a deep copy of s that has not been consumed.
func (s *ProgramSummary) Clone() *ProgramSummary {
	c := &ProgramSummary{
		Device: Device{
			Inputs:  slices.Clone(s.Device.Inputs),
			Outputs: slices.Clone(s.Device.Outputs),
			Panic:   s.Device.Panic,
			Layout:  s.Device.Layout,
		},
		MemoryInit:   slices.Clone(s.MemoryInit),
		MemoryTrace:  slices.Clone(s.MemoryTrace),
		CircuitFlags: slices.Clone(s.CircuitFlags),
	}

	if s.RawTrace != nil {
		c.RawTrace = make([]Row, len(s.RawTrace))
		for i, row := range s.RawTrace {
			c.RawTrace[i] = row.clone()
		}
	}
	if s.Bytecode != nil {
		c.Bytecode = make([]ELFInstruction, len(s.Bytecode))
		for i, instr := range s.Bytecode {
			c.Bytecode[i] = instr.clone()
		}
	}
	if s.BytecodeTrace != nil {
		c.BytecodeTrace = make([]BytecodeRow, len(s.BytecodeTrace))
		for i, row := range s.BytecodeTrace {
			row.VirtualSequenceRemaining = cloneU64(row.VirtualSequenceRemaining)
			c.BytecodeTrace[i] = row
		}
	}
	if s.InstructionTrace != nil {
		c.InstructionTrace = make([]*Lookup, len(s.InstructionTrace))
		for i, l := range s.InstructionTrace {
			if l != nil {
				cp := *l
				c.InstructionTrace[i] = &cp
			}
		}
	}

	return c
}

func (r Row) clone() Row {
	out := Row{
		Instruction: r.Instruction.clone(),
		Registers: RegisterState{
			Rs1Val:    cloneU64(r.Registers.Rs1Val),
			Rs2Val:    cloneU64(r.Registers.Rs2Val),
			RdPostVal: cloneU64(r.Registers.RdPostVal),
		},
		Advice: cloneU64(r.Advice),
	}
	if r.Memory != nil {
		m := *r.Memory
		out.Memory = &m
	}
	return out
}

func (i ELFInstruction) clone() ELFInstruction {
	out := i
	out.Rs1 = cloneU64(i.Rs1)
	out.Rs2 = cloneU64(i.Rs2)
	out.Rd = cloneU64(i.Rd)
	out.VirtualSequenceRemaining = cloneU64(i.VirtualSequenceRemaining)
	if i.Imm != nil {
		v := *i.Imm
		out.Imm = &v
	}
	return out
}

func cloneU64(p *uint64) *uint64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
