package trace

// MemoryOpsPerInstruction is the fixed number of memory operations attributed
// to every executed step: three register accesses and four RAM byte lanes.
const MemoryOpsPerInstruction = 7

// ELFInstruction is one decoded instruction of the program image.
// Absent operands are nil.
type ELFInstruction struct {
	Address                  uint64  `json:"address"`
	Opcode                   Opcode  `json:"opcode"`
	Rs1                      *uint64 `json:"rs1,omitempty"`
	Rs2                      *uint64 `json:"rs2,omitempty"`
	Rd                       *uint64 `json:"rd,omitempty"`
	Imm                      *int64  `json:"imm,omitempty"`
	VirtualSequenceRemaining *uint64 `json:"virtual_sequence_remaining,omitempty"`
}

// RegisterState holds the register values observed by a step.
type RegisterState struct {
	Rs1Val    *uint64 `json:"rs1_val,omitempty"`
	Rs2Val    *uint64 `json:"rs2_val,omitempty"`
	RdPostVal *uint64 `json:"rd_post_val,omitempty"`
}

// MemoryOpKind distinguishes reads from writes.
// Values double as persisted enum variant indices.
type MemoryOpKind uint32

const (
	MemoryRead MemoryOpKind = iota
	MemoryWrite

	numMemoryOpKinds
)

func (k MemoryOpKind) String() string {
	switch k {
	case MemoryRead:
		return "read"
	case MemoryWrite:
		return "write"
	default:
		return "invalid"
	}
}

// MemoryState is the RAM access a step performed.
// Reads use Value; writes use PreValue and PostValue.
type MemoryState struct {
	Kind      MemoryOpKind `json:"kind"`
	Address   uint64       `json:"address"`
	Value     uint64       `json:"value,omitempty"`
	PreValue  uint64       `json:"pre_value,omitempty"`
	PostValue uint64       `json:"post_value,omitempty"`
}

// Row is one executed instruction step of the raw trace.
type Row struct {
	Instruction ELFInstruction `json:"instruction"`
	Registers   RegisterState  `json:"registers"`
	Memory      *MemoryState   `json:"memory,omitempty"`
	Advice      *uint64        `json:"advice,omitempty"`
}

// MemoryWord is one byte of initial memory.
type MemoryWord struct {
	Address uint64 `json:"address"`
	Value   uint8  `json:"value"`
}

// MemoryLayout describes where the device regions live in guest memory.
type MemoryLayout struct {
	MaxInputSize  uint64 `json:"max_input_size"`
	MaxOutputSize uint64 `json:"max_output_size"`
	InputStart    uint64 `json:"input_start"`
	InputEnd      uint64 `json:"input_end"`
	OutputStart   uint64 `json:"output_start"`
	OutputEnd     uint64 `json:"output_end"`
	Panic         uint64 `json:"panic"`
	Termination   uint64 `json:"termination"`
}

// Device is the program's I/O device state at the end of execution.
// The summary carries it through without interpreting it.
type Device struct {
	Inputs  []byte       `json:"inputs"`
	Outputs []byte       `json:"outputs"`
	Panic   bool         `json:"panic"`
	Layout  MemoryLayout `json:"layout"`
}

// BytecodeRow is the bytecode lookup performed by one step.
type BytecodeRow struct {
	Address                  uint64  `json:"address"`
	Bitflags                 uint64  `json:"bitflags"`
	Rd                       uint64  `json:"rd"`
	Rs1                      uint64  `json:"rs1"`
	Rs2                      uint64  `json:"rs2"`
	Imm                      uint64  `json:"imm"`
	VirtualSequenceRemaining *uint64 `json:"virtual_sequence_remaining,omitempty"`
}

// Lookup is the decoded instruction and operand pair a step feeds to the
// instruction lookup argument.
type Lookup struct {
	Opcode Opcode `json:"opcode"`
	X      uint64 `json:"x"`
	Y      uint64 `json:"y"`
}

// MemoryOp is a single memory operation within a step's group.
// Value is meaningful only for writes.
type MemoryOp struct {
	Kind    MemoryOpKind `json:"kind"`
	Address uint64       `json:"address"`
	Value   uint64       `json:"value,omitempty"`
}

// MemoryOps is the fixed-arity memory operation group of one step.
type MemoryOps [MemoryOpsPerInstruction]MemoryOp

// ReadOp returns a read of addr.
func ReadOp(addr uint64) MemoryOp {
	return MemoryOp{Kind: MemoryRead, Address: addr}
}

// WriteOp returns a write of value to addr.
func WriteOp(addr, value uint64) MemoryOp {
	return MemoryOp{Kind: MemoryWrite, Address: addr, Value: value}
}

// NoopReads returns a group of reads of address zero, used for padding steps.
func NoopReads() MemoryOps {
	var ops MemoryOps
	for i := range ops {
		ops[i] = ReadOp(0)
	}
	return ops
}

// U64 returns a pointer to v, for filling optional fields.
func U64(v uint64) *uint64 {
	return &v
}

// I64 returns a pointer to v, for filling optional fields.
func I64(v int64) *int64 {
	return &v
}
