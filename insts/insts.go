// Package insts provides MIPS instruction definitions and decoding.
//
// This package decodes 32-bit MIPS machine words into just enough structure
// to classify which registers an instruction reads and writes. It supports:
//   - R-type words (opcode 0): reads rs and rt, writes rd
//   - Load word (opcode 0x23): reads rs, writes rt
//   - Store word (opcode 0x2b): reads rs and rt, writes nothing
//   - Any other opcode: treated as an I-type that reads rs and writes rt
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x8d280000) // lw $8, 0($9)
//	fmt.Printf("Dest: %d, Sources: %v\n", inst.Dest, inst.Sources)
package insts
