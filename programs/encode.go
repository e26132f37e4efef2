package programs

import "github.com/sarchlab/pipeviz/insts"

// Function codes of the R-type instructions the encoders produce.
const (
	FunctADD uint8 = 0x20
	FunctSUB uint8 = 0x22
	FunctAND uint8 = 0x24
	FunctOR  uint8 = 0x25
	FunctSLT uint8 = 0x2a
)

// EncodeR encodes an R-type instruction: rd = rs <funct> rt.
func EncodeR(funct, rd, rs, rt uint8) uint32 {
	var inst uint32
	inst |= uint32(rs&0x1F) << 21
	inst |= uint32(rt&0x1F) << 16
	inst |= uint32(rd&0x1F) << 11
	inst |= uint32(funct & 0x3F)
	return inst
}

// EncodeI encodes an I-type instruction with the given opcode.
func EncodeI(op insts.Opcode, rt, rs uint8, imm uint16) uint32 {
	var inst uint32
	inst |= uint32(op&0x3F) << 26
	inst |= uint32(rs&0x1F) << 21
	inst |= uint32(rt&0x1F) << 16
	inst |= uint32(imm)
	return inst
}

// EncodeADD encodes add rd, rs, rt.
func EncodeADD(rd, rs, rt uint8) uint32 {
	return EncodeR(FunctADD, rd, rs, rt)
}

// EncodeSUB encodes sub rd, rs, rt.
func EncodeSUB(rd, rs, rt uint8) uint32 {
	return EncodeR(FunctSUB, rd, rs, rt)
}

// EncodeADDI encodes addi rt, rs, imm.
func EncodeADDI(rt, rs uint8, imm int16) uint32 {
	return EncodeI(insts.OpcodeADDI, rt, rs, uint16(imm))
}

// EncodeORI encodes ori rt, rs, imm.
func EncodeORI(rt, rs uint8, imm uint16) uint32 {
	return EncodeI(insts.OpcodeORI, rt, rs, imm)
}

// EncodeLW encodes lw rt, offset(base).
func EncodeLW(rt, base uint8, offset int16) uint32 {
	return EncodeI(insts.OpcodeLW, rt, base, uint16(offset))
}

// EncodeSW encodes sw rt, offset(base).
func EncodeSW(rt, base uint8, offset int16) uint32 {
	return EncodeI(insts.OpcodeSW, rt, base, uint16(offset))
}
