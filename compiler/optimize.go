package compiler

// Optimize runs a conservative peephole pass over already-compiled bytecode.
// It folds constant arithmetic and elides dead constant pushes, but it never
// changes the total byte length of the instruction stream: OP_JUMP and its
// relatives store an absolute byte offset into Instructions (see vm.runFrame),
// so shrinking a replaced region would invalidate every jump target that
// lands past it. Collapsed instructions are padded out to their original
// width with OP_NOP instead.

// Optimize returns a new Bytecode whose Instructions are the same length as
// bc.Instructions, with recognized peephole patterns rewritten in place.
// ConstantsPool may grow (folded constants are appended), but existing
// indices are never reused or renumbered, so OP_CONSTANT operands elsewhere
// in the stream stay valid.
func Optimize(bc Bytecode) Bytecode {
	out := Bytecode{
		Instructions:  make(Instructions, len(bc.Instructions)),
		ConstantsPool: append([]any{}, bc.ConstantsPool...),
		NameConstants: bc.NameConstants,
	}
	copy(out.Instructions, bc.Instructions)

	offset := 0
	for offset < len(out.Instructions) {
		op := Opcode(out.Instructions[offset])
		def, err := Get(op)
		if err != nil {
			break
		}
		width := OPCODE_TOTAL_BYTES
		for _, w := range def.OperandWidths {
			width += w
		}

		if op == OP_CONSTANT && offset+width < len(out.Instructions) {
			if n := foldConstants(&out, offset); n > 0 {
				offset += n
				continue
			}
			if elidePushPop(&out, offset, width) {
				offset += width + OPCODE_TOTAL_BYTES
				continue
			}
		}

		offset += width
	}

	return out
}

// elidePushPop replaces "OP_CONSTANT <idx>; OP_POP" (a pushed value nothing
// reads) with NOPs of the same total width. Returns whether it fired.
func elidePushPop(bc *Bytecode, offset, constWidth int) bool {
	popOffset := offset + constWidth
	if popOffset >= len(bc.Instructions) || Opcode(bc.Instructions[popOffset]) != OP_POP {
		return false
	}
	fillNOP(bc.Instructions[offset : popOffset+OPCODE_TOTAL_BYTES])
	return true
}

// foldConstants replaces "OP_CONSTANT <a>; OP_CONSTANT <b>; OP_<arith>" with
// a single OP_CONSTANT holding the precomputed result, padded with OP_NOP to
// preserve the original three-instruction byte length. Division and modulo
// by a zero right-hand side are left unfolded, so the VM's existing runtime
// behavior for that case (rather than a compile-time guess at it) still
// applies. Returns the number of bytes consumed (0 if the pattern didn't
// match or couldn't be folded).
func foldConstants(bc *Bytecode, offset int) int {
	firstWidth := OP_CONSTANT_TOTAL_BYTES
	secondOffset := offset + firstWidth
	if secondOffset+firstWidth >= len(bc.Instructions) {
		return 0
	}
	if Opcode(bc.Instructions[secondOffset]) != OP_CONSTANT {
		return 0
	}
	opOffset := secondOffset + firstWidth
	op := Opcode(bc.Instructions[opOffset])

	var fold func(a, b float64) (float64, bool)
	switch op {
	case OP_ADD:
		fold = func(a, b float64) (float64, bool) { return a + b, true }
	case OP_SUBTRACT:
		fold = func(a, b float64) (float64, bool) { return a - b, true }
	case OP_MULTIPLY:
		fold = func(a, b float64) (float64, bool) { return a * b, true }
	case OP_DIVIDE:
		fold = func(a, b float64) (float64, bool) {
			if b == 0 {
				return 0, false
			}
			return a / b, true
		}
	case OP_MOD:
		fold = func(a, b float64) (float64, bool) {
			if b == 0 {
				return 0, false
			}
			return float64(int64(a) % int64(b)), true
		}
	default:
		return 0
	}

	aIdx := read2(bc.Instructions, offset+OPCODE_TOTAL_BYTES)
	bIdx := read2(bc.Instructions, secondOffset+OPCODE_TOTAL_BYTES)
	a, aok := bc.ConstantsPool[aIdx].(float64)
	b, bok := bc.ConstantsPool[bIdx].(float64)
	if !aok || !bok {
		return 0
	}

	result, ok := fold(a, b)
	if !ok {
		return 0
	}

	bc.ConstantsPool = append(bc.ConstantsPool, result)
	newIdx := len(bc.ConstantsPool) - 1

	totalWidth := firstWidth + firstWidth + OPCODE_TOTAL_BYTES
	region := bc.Instructions[offset : offset+totalWidth]
	fillNOP(region)
	region[0] = byte(OP_CONSTANT)
	putUint16(region[OPCODE_TOTAL_BYTES:], uint16(newIdx))

	return totalWidth
}

func fillNOP(region []byte) {
	for i := range region {
		region[i] = byte(OP_NOP)
	}
}

func read2(instructions []byte, pos int) int {
	return int(instructions[pos])<<8 | int(instructions[pos+1])
}

func putUint16(dst []byte, v uint16) {
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}
