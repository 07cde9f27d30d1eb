package vm

import (
	"lyra/compiler"
	"testing"
)

func TestExecuteBytecodeVMStack(t *testing.T) {

	tests := []struct {
		name          string
		bytecode      compiler.Bytecode
		expectedStack []any
	}{
		{
			name: "two constants pushed, nothing consumed",
			bytecode: compiler.Bytecode{
				Instructions: []byte{
					byte(compiler.OP_CONSTANT), 0, 0,
					byte(compiler.OP_CONSTANT), 0, 1,
					byte(compiler.OP_END),
				},
				ConstantsPool: []any{float64(5), float64(1)},
			},
			expectedStack: []any{float64(5), float64(1)},
		},
		{
			name: "addition leaves a single result",
			bytecode: compiler.Bytecode{
				Instructions: []byte{
					byte(compiler.OP_CONSTANT), 0, 0,
					byte(compiler.OP_CONSTANT), 0, 1,
					byte(compiler.OP_ADD),
					byte(compiler.OP_END),
				},
				ConstantsPool: []any{float64(5), float64(1)},
			},
			expectedStack: []any{float64(6)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := New()
			if err := vm.Run(tt.bytecode); err != nil {
				t.Fatalf("unexpected run error: %v", err)
			}
			if len(vm.stack) != len(tt.expectedStack) {
				t.Fatalf("stack length mismatch - got: %d, want: %d", len(vm.stack), len(tt.expectedStack))
			}
			for i := range vm.stack {
				if vm.stack[i] != tt.expectedStack[i] {
					t.Errorf("vm stack at index %d - got: %v, want: %v", i, vm.stack[i], tt.expectedStack[i])
				}
			}
		})
	}
}
