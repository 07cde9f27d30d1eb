package compiler

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Represents the definition of the `Bytecode`
// which will be created by the compiler and passed to
// the Virtual Machine (VM) to execute
//
// Fields:
//   - Instructions: An array of instructions defined by opcodes and
//     their operands
//   - ConstantsPool: An array containing all the constant values from the source code.
//   - NameConstants: The interned identifier table. GET_GLOBAL/SET_GLOBAL/
//     DEFINE_GLOBAL/CALL operands index into this table rather than the
//     constants pool, so that a global name and a string constant with the
//     same text never collide.
type Bytecode struct {
	Instructions  Instructions
	ConstantsPool []any
	NameConstants []string
}

type Opcode byte

type Instructions []byte

// opcodes
// iota generates a distinct byte for each bytecode
const (
	// represents a opcode constant with a single operand with a size of
	// 2 bytes, which represents a `uint16`.
	// `uint16` -> set of all unsigned 16-bit integers (0 to 65535)
	// this will restrict a Lyra program to have a total of 65536 constants.
	// NOTE: This is not a hard constraint, could be changed to uint32 if needed
	OP_CONSTANT Opcode = iota
	OP_END

	// arithmetic
	OP_ADD
	OP_SUBTRACT
	OP_MULTIPLY
	OP_DIVIDE
	OP_MOD
	OP_NEGATE

	// logic / comparison
	OP_NOT
	OP_AND
	OP_OR
	OP_EQUALITY
	OP_NOT_EQUAL
	OP_LARGER
	OP_LESS
	OP_LARGER_EQUAL
	OP_LESS_EQUAL

	// variables
	OP_DEFINE_GLOBAL
	OP_SET_GLOBAL
	OP_GET_GLOBAL
	OP_DEFINE_LOCAL
	OP_SET_LOCAL
	OP_GET_LOCAL

	// control flow
	OP_JUMP
	OP_JUMP_IF_FALSE
	OP_JUMP_IF_TRUE
	OP_POP
	OP_SCOPE_EXIT

	// functions
	OP_CALL
	OP_RETURN

	// I/O
	OP_PRINT
	OP_PRINTLN
	OP_INPUT

	// arrays / strings
	OP_MAKE_ARRAY
	OP_INDEX_GET
	OP_INDEX_SET
	OP_LENGTH

	OP_NOP
	OP_HALT

	// range and exception handling
	OP_RANGE
	OP_TRY_PUSH
	OP_TRY_POP

	// coerces the value on top of the stack to the Number 1.0/0.0 boolean
	// encoding via truthiness, used to settle &&/|| results.
	OP_BOOL_TO_NUMBER
)

// Operand widths and the fixed instruction-total-byte constants other
// packages (the compiler, the VM) key their pointer arithmetic on. Every
// operand-carrying opcode except OP_CALL takes exactly one uint16 operand,
// so these constants cover those instructions; OP_CALL takes two uint16
// operands (name index and argument count) and is 5 bytes long.
const (
	OPCODE_TOTAL_BYTES       = 1
	THREE_BYTE_INSTRUCTION_LENGTH = 3
	OP_CONSTANT_TOTAL_BYTES  = THREE_BYTE_INSTRUCTION_LENGTH
)

// Represents a definition of an opcode.
// Fields:
//   - Name: The human-readable name for the opcode e.g "OP_CONSTANT"
//   - OperandWidths: The number of bytes each operand takes up.
type OpCodeDefinition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*OpCodeDefinition{
	OP_CONSTANT: {Name: "OP_CONSTANT", OperandWidths: []int{2}},
	OP_END:      {Name: "OP_END", OperandWidths: []int{}},

	OP_ADD:      {Name: "OP_ADD", OperandWidths: []int{}},
	OP_SUBTRACT: {Name: "OP_SUBTRACT", OperandWidths: []int{}},
	OP_MULTIPLY: {Name: "OP_MULTIPLY", OperandWidths: []int{}},
	OP_DIVIDE:   {Name: "OP_DIVIDE", OperandWidths: []int{}},
	OP_MOD:      {Name: "OP_MOD", OperandWidths: []int{}},
	OP_NEGATE:   {Name: "OP_NEGATE", OperandWidths: []int{}},

	OP_NOT:          {Name: "OP_NOT", OperandWidths: []int{}},
	OP_AND:          {Name: "OP_AND", OperandWidths: []int{}},
	OP_OR:           {Name: "OP_OR", OperandWidths: []int{}},
	OP_EQUALITY:     {Name: "OP_EQUALITY", OperandWidths: []int{}},
	OP_NOT_EQUAL:    {Name: "OP_NOT_EQUAL", OperandWidths: []int{}},
	OP_LARGER:       {Name: "OP_LARGER", OperandWidths: []int{}},
	OP_LESS:         {Name: "OP_LESS", OperandWidths: []int{}},
	OP_LARGER_EQUAL: {Name: "OP_LARGER_EQUAL", OperandWidths: []int{}},
	OP_LESS_EQUAL:   {Name: "OP_LESS_EQUAL", OperandWidths: []int{}},

	OP_DEFINE_GLOBAL: {Name: "OP_DEFINE_GLOBAL", OperandWidths: []int{2}},
	OP_SET_GLOBAL:    {Name: "OP_SET_GLOBAL", OperandWidths: []int{2}},
	OP_GET_GLOBAL:    {Name: "OP_GET_GLOBAL", OperandWidths: []int{2}},
	OP_DEFINE_LOCAL:  {Name: "OP_DEFINE_LOCAL", OperandWidths: []int{2}},
	OP_SET_LOCAL:     {Name: "OP_SET_LOCAL", OperandWidths: []int{2}},
	OP_GET_LOCAL:     {Name: "OP_GET_LOCAL", OperandWidths: []int{2}},

	OP_JUMP:          {Name: "OP_JUMP", OperandWidths: []int{2}},
	OP_JUMP_IF_FALSE: {Name: "OP_JUMP_IF_FALSE", OperandWidths: []int{2}},
	OP_JUMP_IF_TRUE:  {Name: "OP_JUMP_IF_TRUE", OperandWidths: []int{2}},
	OP_POP:           {Name: "OP_POP", OperandWidths: []int{}},
	OP_SCOPE_EXIT:    {Name: "OP_SCOPE_EXIT", OperandWidths: []int{2}},

	OP_CALL:   {Name: "OP_CALL", OperandWidths: []int{2, 2}},
	OP_RETURN: {Name: "OP_RETURN", OperandWidths: []int{}},

	OP_PRINT:   {Name: "OP_PRINT", OperandWidths: []int{2}},
	OP_PRINTLN: {Name: "OP_PRINTLN", OperandWidths: []int{2}},
	OP_INPUT:   {Name: "OP_INPUT", OperandWidths: []int{}},

	OP_MAKE_ARRAY: {Name: "OP_MAKE_ARRAY", OperandWidths: []int{2}},
	OP_INDEX_GET:  {Name: "OP_INDEX_GET", OperandWidths: []int{}},
	OP_INDEX_SET:  {Name: "OP_INDEX_SET", OperandWidths: []int{}},
	OP_LENGTH:     {Name: "OP_LENGTH", OperandWidths: []int{}},

	OP_NOP:  {Name: "OP_NOP", OperandWidths: []int{}},
	OP_HALT: {Name: "OP_HALT", OperandWidths: []int{}},

	OP_RANGE:     {Name: "OP_RANGE", OperandWidths: []int{}},
	OP_TRY_PUSH:  {Name: "OP_TRY_PUSH", OperandWidths: []int{2}},
	OP_TRY_POP:   {Name: "OP_TRY_POP", OperandWidths: []int{}},

	OP_BOOL_TO_NUMBER: {Name: "OP_BOOL_TO_NUMBER", OperandWidths: []int{}},
}

func Get(op Opcode) (*OpCodeDefinition, error) {
	def, ok := definitions[op]
	if !ok {
		return nil, fmt.Errorf("opcode: '%c' undefined", op)
	}
	return def, nil
}

// Constructs a bytecode instruction from an opcode and its operands.
// The bytecode operands are encoded in BigEndian order
//
// The resulting byte slice always begins with the opcode, followed by each
// operand encoded according to its defined width in Big-Endian order. This
// means that each `uint16` operand will be encoded with the two bytes stored with the most significant
// byte first (the largest byte), followed by the least significant byte (the smallest byte).
// For example, the instruction for OP_CONSTANT could be defined as:
// [0,253,232] , if its operand is 65000. 65000 in Big Endian format is defined as
// 253 and 232.
//
// Parameters:
//   - op: The opcode representing the instruction to encode.
//   - operands: A variadic list of integers providing the operand values
//     corresponding to the opcode's expected operand widths.
//
// Returns:
//   - A byte slice containing the encoded instruction.
//   - An error if the opcode is not recognized.
func AssembleInstruction(op Opcode, operands ...int) ([]byte, error) {
	def, err := Get(op)
	if err != nil {
		return nil, err
	}

	byteOffset := 1
	instructionLength := byteOffset // starts at one for the opcode
	for _, i := range def.OperandWidths {
		instructionLength += i
	}

	instruction := make([]byte, instructionLength)

	// The first byte of the instruction will be the opcode
	instruction[0] = byte(op)

	for i, o := range operands {
		width := def.OperandWidths[i]
		switch width {
		case 2:
			binary.BigEndian.PutUint16(instruction[byteOffset:], uint16(o))
		}
		byteOffset += width
	}
	return instruction, nil
}

// MakeInstruction is retained for compatibility with callers that don't need
// to observe assembly errors (an unrecognized opcode yields an empty slice).
func MakeInstruction(op Opcode, operands ...int) []byte {
	instruction, err := AssembleInstruction(op, operands...)
	if err != nil {
		return []byte{}
	}
	return instruction
}

// DiassembleInstruction renders a single encoded instruction back into its
// human-readable form, e.g.
// "opcode: OP_CONSTANT, operand: 65000, operand widths: 2 bytes".
func DiassembleInstruction(instruction []byte) (string, error) {
	if len(instruction) == 0 {
		return "", fmt.Errorf("cannot diassemble an empty instruction")
	}

	op := Opcode(instruction[0])
	def, err := Get(op)
	if err != nil {
		return "", err
	}

	if len(def.OperandWidths) == 0 {
		return fmt.Sprintf("opcode: %s, operand: None, operand widths: 0 bytes", def.Name), nil
	}

	if len(def.OperandWidths) == 1 {
		width := def.OperandWidths[0]
		operand := binary.BigEndian.Uint16(instruction[1:3])
		return fmt.Sprintf("opcode: %s, operand: %d, operand widths: %d bytes", def.Name, operand, width), nil
	}

	offset := 1
	operands := make([]string, 0, len(def.OperandWidths))
	totalWidth := 0
	for _, width := range def.OperandWidths {
		operand := binary.BigEndian.Uint16(instruction[offset : offset+width])
		operands = append(operands, fmt.Sprintf("%d", operand))
		offset += width
		totalWidth += width
	}
	return fmt.Sprintf("opcode: %s, operand: %s, operand widths: %d bytes", def.Name, strings.Join(operands, ","), totalWidth), nil
}

// DiassembleInstructions walks a full instruction stream, rendering every
// instruction it contains, one per line.
func DiassembleInstructions(instructions Instructions) (string, error) {
	var out strings.Builder
	offset := 0
	for offset < len(instructions) {
		op := Opcode(instructions[offset])
		def, err := Get(op)
		if err != nil {
			return "", err
		}
		width := 0
		for _, w := range def.OperandWidths {
			width += w
		}
		end := offset + OPCODE_TOTAL_BYTES + width
		line, err := DiassembleInstruction(instructions[offset:end])
		if err != nil {
			return "", err
		}
		out.WriteString(fmt.Sprintf("%04d %s\n", offset, line))
		offset = end
	}
	return out.String(), nil
}
