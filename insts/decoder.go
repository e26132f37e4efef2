package insts

import "fmt"

// Opcode is the primary 6-bit MIPS opcode field (bits [31:26]).
type Opcode uint8

// Opcodes with a named display form. Only OpcodeSpecial, OpcodeLW and OpcodeSW
// change register classification.
const (
	OpcodeSpecial Opcode = 0x00
	OpcodeBEQ     Opcode = 0x04
	OpcodeBNE     Opcode = 0x05
	OpcodeADDI    Opcode = 0x08
	OpcodeADDIU   Opcode = 0x09
	OpcodeSLTI    Opcode = 0x0a
	OpcodeANDI    Opcode = 0x0c
	OpcodeORI     Opcode = 0x0d
	OpcodeXORI    Opcode = 0x0e
	OpcodeLUI     Opcode = 0x0f
	OpcodeLW      Opcode = 0x23
	OpcodeSW      Opcode = 0x2b
)

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatR Format = iota // Register
	FormatI               // Immediate
)

func (f Format) String() string {
	if f == FormatR {
		return "R"
	}
	return "I"
}

// Instruction represents a decoded MIPS instruction.
type Instruction struct {
	Word   uint32 // Raw machine word
	Opcode Opcode // bits [31:26]
	Format Format // Encoding format

	Rs    uint8  // bits [25:21]
	Rt    uint8  // bits [20:16]
	Rd    uint8  // bits [15:11]
	Funct uint8  // bits [5:0], R-type only
	Imm   uint16 // bits [15:0], I-type only

	Sources RegSet // Registers read
	Dest    uint8  // Register written, valid only when Writes is set
	Writes  bool   // true if the instruction writes a register
}

// Decoder decodes MIPS machine words into instructions.
type Decoder struct{}

// NewDecoder creates a new MIPS instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit MIPS instruction word. Unrecognized opcodes fall
// through to the I-type rule; decoding never fails.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Word:   word,
		Opcode: Opcode((word >> 26) & 0x3F),
		Rs:     uint8((word >> 21) & 0x1F),
		Rt:     uint8((word >> 16) & 0x1F),
		Rd:     uint8((word >> 11) & 0x1F),
	}

	switch inst.Opcode {
	case OpcodeSpecial:
		d.decodeRType(word, inst)
	case OpcodeSW:
		d.decodeStore(word, inst)
	default:
		// lw and every other I-type: rt <- f(rs)
		d.decodeIType(word, inst)
	}

	return inst
}

// decodeRType decodes register-format instructions.
// Format: 000000 | rs | rt | rd | shamt | funct
func (d *Decoder) decodeRType(word uint32, inst *Instruction) {
	inst.Format = FormatR
	inst.Funct = uint8(word & 0x3F)
	inst.Sources = NewRegSet(inst.Rs, inst.Rt)
	inst.Dest = inst.Rd
	inst.Writes = true
}

// decodeStore decodes sw, which reads both the base and the data register.
// Format: 101011 | rs | rt | imm16
func (d *Decoder) decodeStore(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Imm = uint16(word & 0xFFFF)
	inst.Sources = NewRegSet(inst.Rs, inst.Rt)
}

// decodeIType decodes immediate-format instructions.
// Format: opcode | rs | rt | imm16
func (d *Decoder) decodeIType(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Imm = uint16(word & 0xFFFF)
	inst.Sources = NewRegSet(inst.Rs)
	inst.Dest = inst.Rt
	inst.Writes = true
}

// Reads reports whether the instruction reads register reg.
func (i *Instruction) Reads(reg uint8) bool {
	return i.Sources.Has(reg)
}

var rTypeNames = map[uint8]string{
	0x00: "sll",
	0x02: "srl",
	0x03: "sra",
	0x20: "add",
	0x21: "addu",
	0x22: "sub",
	0x23: "subu",
	0x24: "and",
	0x25: "or",
	0x26: "xor",
	0x27: "nor",
	0x2a: "slt",
	0x2b: "sltu",
}

var iTypeNames = map[Opcode]string{
	OpcodeBEQ:   "beq",
	OpcodeBNE:   "bne",
	OpcodeADDI:  "addi",
	OpcodeADDIU: "addiu",
	OpcodeSLTI:  "slti",
	OpcodeANDI:  "andi",
	OpcodeORI:   "ori",
	OpcodeXORI:  "xori",
	OpcodeLUI:   "lui",
	OpcodeLW:    "lw",
	OpcodeSW:    "sw",
}

// Mnemonic returns the assembler name of the instruction, or a generic
// placeholder when the opcode or funct is outside the display table.
func (i *Instruction) Mnemonic() string {
	if i.Format == FormatR {
		if name, ok := rTypeNames[i.Funct]; ok {
			return name
		}
		return fmt.Sprintf("special.0x%02x", i.Funct)
	}
	if name, ok := iTypeNames[i.Opcode]; ok {
		return name
	}
	return fmt.Sprintf("op.0x%02x", uint8(i.Opcode))
}

// String returns an assembler-like rendering of the instruction.
func (i *Instruction) String() string {
	m := i.Mnemonic()
	switch {
	case i.Format == FormatR:
		return fmt.Sprintf("%s $%d, $%d, $%d", m, i.Rd, i.Rs, i.Rt)
	case i.Opcode == OpcodeLW || i.Opcode == OpcodeSW:
		return fmt.Sprintf("%s $%d, %d($%d)", m, i.Rt, int16(i.Imm), i.Rs)
	case i.Opcode == OpcodeLUI:
		return fmt.Sprintf("%s $%d, 0x%x", m, i.Rt, i.Imm)
	default:
		return fmt.Sprintf("%s $%d, $%d, %d", m, i.Rt, i.Rs, int16(i.Imm))
	}
}
