package trace

import "fmt"

// Opcode identifies an RV32IM instruction kind.
// Values are dense and double as the persisted enum variant index.
type Opcode uint32

const (
	ADD Opcode = iota
	SUB
	XOR
	OR
	AND
	SLL
	SRL
	SRA
	SLT
	SLTU
	ADDI
	XORI
	ORI
	ANDI
	SLLI
	SRLI
	SRAI
	SLTI
	SLTIU
	LB
	LH
	LW
	LBU
	LHU
	SB
	SH
	SW
	BEQ
	BNE
	BLT
	BGE
	BLTU
	BGEU
	JAL
	JALR
	LUI
	AUIPC
	ECALL
	EBREAK
	FENCE
	MUL
	MULH
	MULHSU
	MULHU
	DIV
	DIVU
	REM
	REMU
	UNIMPL

	numOpcodes
)

var opcodeNames = [numOpcodes]string{
	ADD: "ADD", SUB: "SUB", XOR: "XOR", OR: "OR", AND: "AND",
	SLL: "SLL", SRL: "SRL", SRA: "SRA", SLT: "SLT", SLTU: "SLTU",
	ADDI: "ADDI", XORI: "XORI", ORI: "ORI", ANDI: "ANDI",
	SLLI: "SLLI", SRLI: "SRLI", SRAI: "SRAI", SLTI: "SLTI", SLTIU: "SLTIU",
	LB: "LB", LH: "LH", LW: "LW", LBU: "LBU", LHU: "LHU",
	SB: "SB", SH: "SH", SW: "SW",
	BEQ: "BEQ", BNE: "BNE", BLT: "BLT", BGE: "BGE", BLTU: "BLTU", BGEU: "BGEU",
	JAL: "JAL", JALR: "JALR", LUI: "LUI", AUIPC: "AUIPC",
	ECALL: "ECALL", EBREAK: "EBREAK", FENCE: "FENCE",
	MUL: "MUL", MULH: "MULH", MULHSU: "MULHSU", MULHU: "MULHU",
	DIV: "DIV", DIVU: "DIVU", REM: "REM", REMU: "REMU",
	UNIMPL: "UNIMPL",
}

var opcodesByName = func() map[string]Opcode {
	m := make(map[string]Opcode, numOpcodes)
	for op, name := range opcodeNames {
		m[name] = Opcode(op)
	}
	return m
}()

// NumOpcodes is the number of defined opcodes.
const NumOpcodes = int(numOpcodes)

// Valid reports whether o is a defined opcode.
func (o Opcode) Valid() bool {
	return o < numOpcodes
}

func (o Opcode) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Opcode(%d)", uint32(o))
	}
	return opcodeNames[o]
}

// ParseOpcode returns the opcode for an upper-case mnemonic such as "ADDI".
func ParseOpcode(name string) (Opcode, error) {
	op, ok := opcodesByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown opcode %q", name)
	}
	return op, nil
}

// MarshalText renders the mnemonic so JSON output names opcodes.
func (o Opcode) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid opcode %d", uint32(o))
	}
	return []byte(opcodeNames[o]), nil
}

// UnmarshalText parses a mnemonic.
func (o *Opcode) UnmarshalText(text []byte) error {
	op, err := ParseOpcode(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}
