package fixture

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/hashicorp/go-multierror"

	"github.com/roach88/tracesum/internal/trace"
)

// Document types mirror the CUE layout. Decoding goes through their json tags.

type instructionDoc struct {
	Address                  uint64  `json:"address"`
	Opcode                   string  `json:"opcode"`
	Rs1                      *uint64 `json:"rs1"`
	Rs2                      *uint64 `json:"rs2"`
	Rd                       *uint64 `json:"rd"`
	Imm                      *int64  `json:"imm"`
	VirtualSequenceRemaining *uint64 `json:"virtual_sequence_remaining"`
}

type memoryStateDoc struct {
	Read *struct {
		Address uint64 `json:"address"`
		Value   uint64 `json:"value"`
	} `json:"read"`
	Write *struct {
		Address uint64 `json:"address"`
		Pre     uint64 `json:"pre"`
		Post    uint64 `json:"post"`
	} `json:"write"`
}

// rowDoc flattens the instruction and register fields into the row.
type rowDoc struct {
	Address                  uint64          `json:"address"`
	Opcode                   string          `json:"opcode"`
	Rs1                      *uint64         `json:"rs1"`
	Rs2                      *uint64         `json:"rs2"`
	Rd                       *uint64         `json:"rd"`
	Imm                      *int64          `json:"imm"`
	VirtualSequenceRemaining *uint64         `json:"virtual_sequence_remaining"`
	Rs1Val                   *uint64         `json:"rs1_val"`
	Rs2Val                   *uint64         `json:"rs2_val"`
	RdPostVal                *uint64         `json:"rd_post_val"`
	Memory                   *memoryStateDoc `json:"memory"`
	Advice                   *uint64         `json:"advice"`
}

type deviceDoc struct {
	Inputs  []int              `json:"inputs"`
	Outputs []int              `json:"outputs"`
	Panic   bool               `json:"panic"`
	Layout  trace.MemoryLayout `json:"layout"`
}

type lookupDoc struct {
	Opcode string `json:"opcode"`
	X      uint64 `json:"x"`
	Y      uint64 `json:"y"`
}

type memoryOpDoc struct {
	Read  *uint64 `json:"read"`
	Write *struct {
		Address uint64 `json:"address"`
		Value   uint64 `json:"value"`
	} `json:"write"`
}

type summaryDoc struct {
	RawTrace         []rowDoc            `json:"raw_trace"`
	Bytecode         []instructionDoc    `json:"bytecode"`
	MemoryInit       []trace.MemoryWord  `json:"memory_init"`
	Device           deviceDoc           `json:"device"`
	BytecodeTrace    []trace.BytecodeRow `json:"bytecode_trace"`
	InstructionTrace []*lookupDoc        `json:"instruction_trace"`
	MemoryTrace      [][]memoryOpDoc     `json:"memory_trace"`
	CircuitFlags     []bool              `json:"circuit_flags"`
}

// LoadFile reads and compiles the fixture at path.
func LoadFile(path string) (*trace.ProgramSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return CompileBytes(data, path)
}

// CompileBytes compiles CUE source. filename is used in error positions.
func CompileBytes(src []byte, filename string) (*trace.ProgramSummary, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	return Compile(v)
}

// Compile builds a summary from a CUE document with a top-level summary
// struct.
//
// Every unknown mnemonic and malformed memory access is reported, not only
// the first one. The result is validated with trace.New.
func Compile(v cue.Value) (*trace.ProgramSummary, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	sv := v.LookupPath(cue.ParsePath("summary"))
	if !sv.Exists() {
		return nil, &CompileError{
			Field:   "summary",
			Message: "summary is required",
			Pos:     v.Pos(),
		}
	}
	if err := sv.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var doc summaryDoc
	if err := sv.Decode(&doc); err != nil {
		return nil, formatCUEError(err)
	}

	c := &compiler{root: sv}
	s := c.summary(&doc)
	if err := c.errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	out, err := trace.New(s)
	if err != nil {
		return nil, fmt.Errorf("compile fixture: %w", err)
	}
	return out, nil
}

// compiler converts a decoded document, collecting errors as it goes.
type compiler struct {
	root cue.Value
	errs *multierror.Error
}

func (c *compiler) fail(field string, pos cue.Value, format string, args ...any) {
	c.errs = multierror.Append(c.errs, &CompileError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos.Pos(),
	})
}

// at returns the value at the given selectors under summary, for positions.
func (c *compiler) at(sels ...cue.Selector) cue.Value {
	return c.root.LookupPath(cue.MakePath(sels...))
}

func (c *compiler) opcode(field, name string, sels ...cue.Selector) trace.Opcode {
	op, err := trace.ParseOpcode(name)
	if err != nil {
		c.fail(field, c.at(sels...), "%v", err)
	}
	return op
}

func (c *compiler) summary(doc *summaryDoc) trace.ProgramSummary {
	var s trace.ProgramSummary

	if doc.RawTrace != nil {
		s.RawTrace = make([]trace.Row, len(doc.RawTrace))
		for i := range doc.RawTrace {
			s.RawTrace[i] = c.row(i, &doc.RawTrace[i])
		}
	}

	if doc.Bytecode != nil {
		s.Bytecode = make([]trace.ELFInstruction, len(doc.Bytecode))
		for i := range doc.Bytecode {
			field := fmt.Sprintf("bytecode[%d].opcode", i)
			s.Bytecode[i] = c.instruction(field, &doc.Bytecode[i],
				cue.Str("bytecode"), cue.Index(i), cue.Str("opcode"))
		}
	}

	s.MemoryInit = doc.MemoryInit

	s.Device = trace.Device{
		Inputs:  c.bytes("device.inputs", doc.Device.Inputs, "inputs"),
		Outputs: c.bytes("device.outputs", doc.Device.Outputs, "outputs"),
		Panic:   doc.Device.Panic,
		Layout:  doc.Device.Layout,
	}

	s.BytecodeTrace = doc.BytecodeTrace

	if doc.InstructionTrace != nil {
		s.InstructionTrace = make([]*trace.Lookup, len(doc.InstructionTrace))
		for i, l := range doc.InstructionTrace {
			if l == nil {
				continue
			}
			field := fmt.Sprintf("instruction_trace[%d].opcode", i)
			s.InstructionTrace[i] = &trace.Lookup{
				Opcode: c.opcode(field, l.Opcode, cue.Str("instruction_trace"), cue.Index(i), cue.Str("opcode")),
				X:      l.X,
				Y:      l.Y,
			}
		}
	}

	if doc.MemoryTrace != nil {
		s.MemoryTrace = make([]trace.MemoryOps, len(doc.MemoryTrace))
		for i, group := range doc.MemoryTrace {
			s.MemoryTrace[i] = c.memoryOps(i, group)
		}
	}

	s.CircuitFlags = doc.CircuitFlags
	return s
}

func (c *compiler) instruction(field string, d *instructionDoc, sels ...cue.Selector) trace.ELFInstruction {
	return trace.ELFInstruction{
		Address:                  d.Address,
		Opcode:                   c.opcode(field, d.Opcode, sels...),
		Rs1:                      d.Rs1,
		Rs2:                      d.Rs2,
		Rd:                       d.Rd,
		Imm:                      d.Imm,
		VirtualSequenceRemaining: d.VirtualSequenceRemaining,
	}
}

func (c *compiler) row(i int, d *rowDoc) trace.Row {
	inst := instructionDoc{
		Address:                  d.Address,
		Opcode:                   d.Opcode,
		Rs1:                      d.Rs1,
		Rs2:                      d.Rs2,
		Rd:                       d.Rd,
		Imm:                      d.Imm,
		VirtualSequenceRemaining: d.VirtualSequenceRemaining,
	}
	r := trace.Row{
		Instruction: c.instruction(fmt.Sprintf("raw_trace[%d].opcode", i), &inst,
			cue.Str("raw_trace"), cue.Index(i), cue.Str("opcode")),
		Registers: trace.RegisterState{
			Rs1Val:    d.Rs1Val,
			Rs2Val:    d.Rs2Val,
			RdPostVal: d.RdPostVal,
		},
		Advice: d.Advice,
	}

	if m := d.Memory; m != nil {
		field := fmt.Sprintf("raw_trace[%d].memory", i)
		pos := c.at(cue.Str("raw_trace"), cue.Index(i), cue.Str("memory"))
		switch {
		case m.Read != nil && m.Write != nil:
			c.fail(field, pos, "memory access is both read and write")
		case m.Read != nil:
			r.Memory = &trace.MemoryState{Kind: trace.MemoryRead, Address: m.Read.Address, Value: m.Read.Value}
		case m.Write != nil:
			r.Memory = &trace.MemoryState{Kind: trace.MemoryWrite, Address: m.Write.Address, PreValue: m.Write.Pre, PostValue: m.Write.Post}
		default:
			c.fail(field, pos, "memory access needs read or write")
		}
	}
	return r
}

func (c *compiler) memoryOps(i int, group []memoryOpDoc) trace.MemoryOps {
	ops := trace.NoopReads()
	if len(group) > trace.MemoryOpsPerInstruction {
		c.fail(fmt.Sprintf("memory_trace[%d]", i), c.at(cue.Str("memory_trace"), cue.Index(i)),
			"%d memory operations, at most %d allowed", len(group), trace.MemoryOpsPerInstruction)
		return ops
	}

	for j, op := range group {
		switch {
		case op.Read != nil && op.Write == nil:
			ops[j] = trace.ReadOp(*op.Read)
		case op.Write != nil && op.Read == nil:
			ops[j] = trace.WriteOp(op.Write.Address, op.Write.Value)
		default:
			c.fail(fmt.Sprintf("memory_trace[%d][%d]", i, j),
				c.at(cue.Str("memory_trace"), cue.Index(i), cue.Index(j)),
				"memory operation needs exactly one of read or write")
		}
	}
	return ops
}

func (c *compiler) bytes(field string, vals []int, label string) []byte {
	if len(vals) == 0 {
		return nil
	}
	out := make([]byte, len(vals))
	for i, v := range vals {
		if v < 0 || v > 0xff {
			c.fail(fmt.Sprintf("%s[%d]", field, i),
				c.at(cue.Str("device"), cue.Str(label), cue.Index(i)),
				"byte value %d out of range", v)
			continue
		}
		out[i] = byte(v)
	}
	return out
}
