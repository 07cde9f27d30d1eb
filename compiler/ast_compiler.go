package compiler

// This file implements the ASTCompiler, which compiles the abstract syntax tree (AST) directly to bytecode.

import (
	"encoding/binary"
	"fmt"
	"lyra/ast"
	"lyra/token"
	"os"
)

// Local represents a local variable in the compiler.
// NOTE/TODO: The struct layout can probably be optimised by packing the fields differently.
// So the struct has better cache locality and takes up less memory.
type Local struct {

	// The variable's name
	name string
	// The variable's depth in the scope stack. Used to determine when variables go out of scope.
	depth uint16
	// Whether the variable has been initialized. Used to prevent accessing uninitialized variables.
	initialized bool
	// The slot index where the variable is stored. Used for local variable access in the VM.
	slot uint16
}

// ASTCompiler is a visitor that compiles AST nodes directly to bytecode.
// It implements both ast.ExpressionVisitor and ast.StmtVisitor interfaces
// to traverse and compile the abstract syntax tree to bytecode.
type ASTCompiler struct {

	// The resulting compiled bytecode.
	bytecode Bytecode
	// Tracks initialized global variables
	initialized map[string]bool
	// A stack of local variables in the current scope. Used for local variable management and access.
	// Locals are orderd by by their declaration order that appears in the code. The most recently declared variable
	// will always be at the top of the stack.
	// TODO: We can re-factor the `Stack` implementation in the VM package so it can be used here. We should move that implementation
	// to a new package.
	locals []Local
	// The current depth of nested scopes. Used to determine when local variables go out of scope.
	scopeDepth uint16

	// loopStack tracks the enclosing while/for/switch constructs so break
	// and continue can be compiled without the parser having resolved their
	// targets ahead of time. Each frame records where `continue` jumps to
	// and the positions of any pending `break` jumps still waiting to be
	// patched once the construct's end address is known.
	loopStack []*loopContext
}

// loopContext is pushed when compiling a while/for/switch construct and
// popped once its end address is known. continueJumps are placeholder jumps
// patched to the construct's continue target (known only once its
// increment/condition step has been emitted); breakJumps are patched to the
// construct's end address once popLoopContext runs. isSwitch lets continue
// skip past switch frames to find the nearest enclosing loop, matching how
// continue ignores an intervening switch.
type loopContext struct {
	continueJumps []int
	breakJumps    []int
	isSwitch      bool
}

// patchContinues resolves every continue recorded against ctx to target,
// the construct's increment (for) or condition re-check (while) address.
func (ac *ASTCompiler) patchContinues(ctx *loopContext, target int) {
	for _, pos := range ctx.continueJumps {
		ac.patchJump(pos, target)
	}
}

// NewASTCompiler creates a new AST-to-bytecode compiler.
func NewASTCompiler() *ASTCompiler {
	return &ASTCompiler{
		bytecode: Bytecode{
			Instructions:  Instructions{},
			ConstantsPool: []any{},
			NameConstants: []string{},
		},
		initialized: make(map[string]bool),
		locals:      []Local{},
		scopeDepth:  0,
		loopStack:   []*loopContext{},
	}
}

// DumpBytecode writes the compiled bytecode to a file with a `.nic` extension.
// The bytecode is encoded as hexadecimal so it can be viewed in a text editor.
func (ac *ASTCompiler) DumpBytecode(filePath string) error {
	if filePath == "" {
		filePath = "bytecode.nic"
	} else {
		filePath = filePath + ".nic"
	}
	fDescriptor, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("error creating lyra bytecode file: %s", err.Error())
	}

	encoded := fmt.Sprintf("%x", ac.bytecode.Instructions)
	fDescriptor.Write([]byte(encoded))
	defer fDescriptor.Close()
	return nil
}

// DiassembleBytecode disassembles the compiled bytecode to a human readable format
// and optionally saves it to disk. The output starts with a "Constants:" section
// (index and value) and a "Globals:" section (index and name), followed by an
// "Instructions:" section with one numbered instruction per line.
// It returns the disassembled bytecode as a string or an error if the file could not be created.
func (ac *ASTCompiler) DiassembleBytecode(saveToDisk bool, filePath string) (string, error) {
	diassembledBytecode, err := DiassembleInstructions(ac.bytecode.Instructions)
	if err != nil {
		return "", err
	}
	header := "Constants:\n"
	for i, c := range ac.bytecode.ConstantsPool {
		header += fmt.Sprintf("%04d %v\n", i, c)
	}
	header += "Globals:\n"
	for i, name := range ac.bytecode.NameConstants {
		header += fmt.Sprintf("%04d %s\n", i, name)
	}
	diassembledBytecode = header + "Instructions:\n" + diassembledBytecode
	if saveToDisk {
		if filePath == "" {
			filePath = "bytecode.dnic"
		} else {
			filePath = filePath + ".dnic"
		}
		fDescriptor, err := os.Create(filePath)
		if err != nil {
			return "", fmt.Errorf("error creating diassembled bytecode file: %s", err.Error())
		}
		fDescriptor.WriteString(diassembledBytecode)
		defer fDescriptor.Close()
	}
	return diassembledBytecode, nil
}

func (ac *ASTCompiler) CompileAST(statements []ast.Stmt) (b Bytecode, err error) {
	// Recover from any panic that may occur during compilation
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case SemanticError:
				err = v
			case DeveloperError:
				err = v
			}
		}
	}()

	// If previous compilation left an OP_END at the end, drop it
	if len(ac.bytecode.Instructions) > 0 {
		if ac.bytecode.Instructions[len(ac.bytecode.Instructions)-1] == byte(OP_END) {
			ac.bytecode.Instructions = ac.bytecode.Instructions[:len(ac.bytecode.Instructions)-1]
		}
	}

	for _, stmt := range statements {
		func() {
			//NOTE: Catch panics per statement to avoid aborting the whole loop
			defer func() {
				if r := recover(); r != nil {
					panic(r)
				}
			}()
			stmt.Accept(ac)
		}()
	}

	ac.emit(OP_END)
	return ac.bytecode, nil
}

// VisitBinary handles binary expressions (arithmetic operators: +, -, *, /)
func (ac *ASTCompiler) VisitBinary(binary ast.Binary) any {

	// NOTE: Left expression is compiled first to ensure correct evaluation order
	binary.Left.Accept(ac)
	binary.Right.Accept(ac)

	switch binary.Operator.TokenType {
	case token.ADD:
		ac.emit(OP_ADD)
	case token.SUB:
		ac.emit(OP_SUBTRACT)
	case token.MULT:
		ac.emit(OP_MULTIPLY)
	case token.DIV:
		ac.emit(OP_DIVIDE)
	case token.MOD:
		ac.emit(OP_MOD)

	case token.EQUAL_EQUAL:
		ac.emit(OP_EQUALITY)
	case token.LARGER:
		ac.emit(OP_LARGER)
	case token.LESS:
		ac.emit(OP_LESS)
	case token.LESS_EQUAL:
		ac.emit(OP_LESS_EQUAL)
	case token.LARGER_EQUAL:
		ac.emit(OP_LARGER_EQUAL)
	case token.NOT_EQUAL:
		ac.emit(OP_NOT_EQUAL)
	}

	return nil
}

// VisitUnary handles unary expressions (operators: -, !)
func (ac *ASTCompiler) VisitUnary(unary ast.Unary) any {

	unary.Right.Accept(ac)

	switch unary.Operator.TokenType {
	case token.SUB:
		ac.emit(OP_NEGATE)
	case token.BANG:
		ac.emit(OP_NOT)
	}
	return nil
}

// VisitLiteral handles literal values (numbers, strings, booleans, null)
// Adds the literal value to the constants pool.
func (ac *ASTCompiler) VisitLiteral(literal ast.Literal) any {
	ac.addConstant(normalizeNumber(literal.Value))
	return nil
}

// normalizeNumber widens integer-syntax literal values to float64 so that the
// Number value the VM reasons about is always the same Go type regardless of
// whether the source wrote "5" or "5.0" (mirrors interpreter.normalizeNumber).
func normalizeNumber(value any) any {
	switch v := value.(type) {
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	default:
		return value
	}
}

// VisitGrouping handles parenthesized expressions
func (ac *ASTCompiler) VisitGrouping(grouping ast.Grouping) any {
	// Recursively compile the inner expression
	grouping.Expression.Accept(ac)
	return nil
}

// VisitVariableExpression compiles variable access by emitting bytecode to load the variable's
// value onto the VM's stack.
//
// For local variabables, it emites an OP_GET_LOCAL instruction with the variable's slot index as the operand.
//
// For global variables, it emits an OP_GET_GLOBAL instruction with the variable's index in the NameConstants pool as the operand.
//
// For example, this compiles code such as `x` or `y` by emitting the appropriate instruction to get
// the variable's value from the VM's stack.
func (ac *ASTCompiler) VisitVariableExpression(variable ast.Variable) any {

	identifier := variable.Name.Lexeme

	slotIndex := ac.resolveLocal(identifier)
	if slotIndex != -1 {
		if !ac.locals[slotIndex].initialized {
			panic(SemanticError{
				Message: fmt.Sprintf("Cant access uninitialised variable '%s'", identifier),
			})
		}
		ac.emit(OP_GET_LOCAL, slotIndex)
		return nil
	}

	globalIndex := ac.resolveGlobal(identifier)
	if globalIndex == -1 {
		panic(SemanticError{
			Message: fmt.Sprintf("name '%s' is not defined", identifier),
		})
	}
	if !ac.initialized[identifier] {
		panic(SemanticError{
			Message: fmt.Sprintf("Cant access uninitialised variable '%s'", identifier),
		})
	}

	ac.emit(OP_GET_GLOBAL, globalIndex)
	return nil
}

// VisitAssignExpression compiles an assignment expression by first compiling the right-hand side expression,
// and then attempting to resolve the variable name as local or global.
//
// For local variables, it emits an OP_SET_LOCAL instruction with the variable's slot index as the operand.
//
// For global variables, it emits an OP_SET_GLOBAL instruction with the variable's index in the NameConstants pool as the operand.
//
// For exmaple, this compiles code such as `x = 5` or `y = x + 2` by first compiling the right hand side expression
// (`5` or `x + 2`), then emitting the appropriate instruction to store the value in the corresponding variable.
func (ac *ASTCompiler) VisitAssignExpression(assign ast.Assign) any {

	name := assign.Name.Lexeme

	// compile the right hand side expression first.
	// This ensures that the correct value is on top of the stack when the OP_SET_LOCAL
	// or OP_SET_GLOBAL instruction is emitted.
	assign.Value.Accept(ac)

	slotIndex := ac.resolveLocal(name)
	if slotIndex != -1 {
		ac.locals[slotIndex].initialized = true
		ac.emit(OP_SET_LOCAL, slotIndex)
		return nil
	}

	globalIndex := ac.resolveGlobal(name)
	if globalIndex == -1 {
		panic(SemanticError{
			Message: fmt.Sprintf("name '%s' is not defined", name),
		})
	}

	ac.initialized[name] = true
	ac.emit(OP_SET_GLOBAL, globalIndex)
	return nil
}

// VisitVarStmt handles variable declaration statements.
//
// For global variables, it adds the variable name to the NameConstants pool and
// emits an OP_SET_GLOBAL instruction.
//
// For local variables it declares the variable in the current scope and emits an OP_SET_LOCAL instruction.
//
// For example, this compiles code such as `var x = 5`,  `var y`, var z = 10+2` ... etc
func (ac *ASTCompiler) VisitVarStmt(varStmt ast.VarStmt) any {

	variableName := varStmt.Name.Lexeme
	if ac.scopeDepth == 0 {
		// Handles global variable declaration.
		index := ac.addNameConstant(variableName)
		if varStmt.Initializer != nil {
			varStmt.Initializer.Accept(ac)
			ac.emit(OP_SET_GLOBAL, index)
			// Globals live in the VM's globals map, not on the stack, so
			// (unlike a local's slot) this value has nowhere left to live.
			ac.emit(OP_POP)
		}
		ac.initialized[variableName] = varStmt.Initializer != nil
	} else {
		// Handles local variable declaration.
		ac.declareLocal(variableName)
		if varStmt.Initializer != nil {
			varStmt.Initializer.Accept(ac)
		} else {
			ac.addConstant(nil)
		}
		slot := ac.locals[len(ac.locals)-1].slot
		ac.emit(OP_SET_LOCAL, int(slot))
		ac.locals[len(ac.locals)-1].initialized = varStmt.Initializer != nil
	}

	return nil
}

// VisitLogicalExpression compiles logical expressions (and, or) by emitting
// bytecode that implements short-circuiting behaviour. Whichever operand the
// short-circuit settles on - Left without evaluating Right, or Right after
// Left didn't decide it - is coerced through OP_BOOL_TO_NUMBER so the final
// value is always a Number 1.0/0.0, matching the evaluator's VisitLogicalExpression
// and spec.md's boolean encoding rather than leaking the raw operand value.
func (ac *ASTCompiler) VisitLogicalExpression(logical ast.Logical) any {

	// left expression is compiled first to ensure correct evaluation order and short-circuiting behaviour.
	logical.Left.Accept(ac)

	switch logical.Operator.TokenType {
	case token.OR:
		// For an "or" expression, if the left operand is truthy, we want to short-circuit and skip
		// evaluating the right operand.

		jumpIfFalsePos := ac.emitPlaceholderJump(OP_JUMP_IF_FALSE)
		jumpEndPos := ac.emitPlaceholderJump(OP_JUMP)

		rightStart := len(ac.bytecode.Instructions)
		ac.patchJump(jumpIfFalsePos, rightStart)

		ac.emit(OP_POP)

		// The right expression is compiled after emitting the jump instruction. If the left operand is truthy,
		// the VM will jump over the right expression. This is achieved by the below patchJump call.
		logical.Right.Accept(ac)

		ac.patchJump(jumpEndPos, len(ac.bytecode.Instructions))
		ac.emit(OP_BOOL_TO_NUMBER)
	case token.AND:
		// For an "and" expression, if the left operand is falsy, we want to short-circuit and skip evaluating the right operand.
		jumpIfFalsePos := ac.emitPlaceholderJump(OP_JUMP_IF_FALSE)

		ac.emit(OP_POP)
		logical.Right.Accept(ac)

		ac.patchJump(jumpIfFalsePos, len(ac.bytecode.Instructions))
		ac.emit(OP_BOOL_TO_NUMBER)
	}
	return nil
}

// VisitExpressionStmt compiles a bare expression used as a statement (e.g. a
// call or assignment whose value is discarded). Every expression leaves its
// value on top of the stack, so the statement itself is responsible for
// popping it back off.
func (ac *ASTCompiler) VisitExpressionStmt(exprStmt ast.ExpressionStmt) any {
	exprStmt.Expression.Accept(ac)
	ac.emit(OP_POP)
	return nil
}

func (ac *ASTCompiler) VisitPrintStmt(printStmt ast.PrintStmt) any {
	for _, expr := range printStmt.Expressions {
		expr.Accept(ac)
	}
	if printStmt.Newline {
		ac.emit(OP_PRINTLN, len(printStmt.Expressions))
	} else {
		ac.emit(OP_PRINT, len(printStmt.Expressions))
	}
	return nil
}

// VisitBlockStmt compiles a block statement by sequentially compiling each statement
// in the block.
func (ac *ASTCompiler) VisitBlockStmt(blockStmt ast.BlockStmt) any {

	ac.beginScope()
	for _, stmt := range blockStmt.Statements {
		func() {
			//NOTE: Catch panics per statement to avoid aborting the whole loop
			defer func() {
				if r := recover(); r != nil {
					panic(r)
				}
			}()
			stmt.Accept(ac)
		}()
	}

	popped := ac.endScope()
	if popped > 0 {
		ac.emit(OP_SCOPE_EXIT, popped)
	}
	return nil
}

// VisitIfStmt compiles an if or if-else statement by emitting bytecode.
// It uses backpatching to resolve jump offsets for branching.
func (ac *ASTCompiler) VisitIfStmt(ifStmt ast.IfStmt) any {

	// compile the condition expression first
	ifStmt.Condition.Accept(ac)

	jumpIfFalsePatch := ac.emitPlaceholderJump(OP_JUMP_IF_FALSE)
	// For example, the intructions would now be something like: [..., OP_JUMP_IF_FALSE,  0x00, 0x00]
	// where `0x00, 0x0` are the placeholder operand bytes.

	// The condition's value must be off the stack before the guarded branch
	// runs, or any local declared inside it would be assigned a slot that
	// doesn't match its real runtime stack position.
	ac.emit(OP_POP)
	ifStmt.Then.Accept(ac)

	if ifStmt.Else != nil {
		// If there is an "else" branch, emit a jump instruction to skip over it after executing the "then" branch.
		jumpPatch := ac.emitPlaceholderJump(OP_JUMP)

		// Patch the operand of the OP_JUMP_IF_FALSE instruction defined at the beginning.
		// This allows the VM to correctly jump to the start of the "else" branch, if the "then"
		// branch condition evaluates false.
		elsePos := len(ac.bytecode.Instructions)
		ac.patchJump(jumpIfFalsePatch, elsePos)
		ac.emit(OP_POP)

		ifStmt.Else.Accept(ac)

		endPos := len(ac.bytecode.Instructions)
		// Patch the operand of `OP_JUMP` so the VM can jump to the end of the "else" branch.
		ac.patchJump(jumpPatch, endPos)
	} else {
		// If there is no "else" branch, patch the OP_JUMP_IF_FALSE so that
		// control jumps to the instruction after the "then" branch when
		// the condition is false.
		afterPos := len(ac.bytecode.Instructions)
		ac.patchJump(jumpIfFalsePatch, afterPos)
		ac.emit(OP_POP)
	}
	return nil
}

func (ac *ASTCompiler) VisitWhileStmt(whileStmt ast.WhileStmt) any {

	loopstartPos := len(ac.bytecode.Instructions)
	ctx := &loopContext{}
	ac.loopStack = append(ac.loopStack, ctx)

	// compile the condition expression first
	whileStmt.Condition.Accept(ac)

	jumpIfFalsePatch := ac.emitPlaceholderJump(OP_JUMP_IF_FALSE)

	// The condition's value must be off the stack before the body runs, or
	// any local the body declares would be assigned a slot that doesn't
	// match its real runtime stack position.
	ac.emit(OP_POP)

	// compile the loop body
	whileStmt.Body.Accept(ac)

	// `continue` re-checks the condition, same as falling off the end of the body.
	ac.patchContinues(ctx, loopstartPos)

	// After compiling the loop body, we need to emit a jump instruction
	// so the VM can jump back to the start of the loop condition.
	ac.emit(OP_JUMP, loopstartPos)

	// if the while condition is false, the VM needs to jump to the end of the loop body,
	// which is the current position in the instruction array.
	loopEndPos := len(ac.bytecode.Instructions)
	ac.patchJump(jumpIfFalsePatch, loopEndPos)
	ac.emit(OP_POP)

	ac.popLoopContext()

	return nil
}

// popLoopContext pops the innermost loop/switch context and patches every
// break recorded in it to jump to the current (end-of-construct) position.
func (ac *ASTCompiler) popLoopContext() {
	ctx := ac.loopStack[len(ac.loopStack)-1]
	ac.loopStack = ac.loopStack[:len(ac.loopStack)-1]
	endPos := len(ac.bytecode.Instructions)
	for _, pos := range ctx.breakJumps {
		ac.patchJump(pos, endPos)
	}
}

// patchjump overwrites a jump instruction's operand with the actual correct byte offset.
// When compiling if statements, its not possible to know the else branch (or the statement after
// the if) will be until the then-branch is compiled. Jump instructions are emmited with placeholder operands,
// then later call patchJump to fix those operands.

// The jumpPos is the byte index where the jump instruction's OPCODE is located.
//
//	This is the position BEFORE the jump was emitted
//
// The targetPos is the byte index where the jump instruction should jump to.
// Example:
// jumpPos = 10, targetPos = 20
// Before patching: [..., OP_JUMP_IF_FALSE, 0x00, 0x00, ...] (jump instruction starts at index 10)
// After patching: [..., OP_JUMP_IF_FALSE, 0x00, 0x0A, ...] (jump instruction now correctly jumps to index 20)
func (ac *ASTCompiler) patchJump(jumpPos int, targetPos int) {

	operandPos := jumpPos + OPCODE_TOTAL_BYTES

	instruction := make([]byte, 2)
	binary.BigEndian.PutUint16(instruction, uint16(targetPos))

	// override the 2-byte placeholder operand in the instruction array with
	// the correct operand bytes that will make the jump instruction jump to the target position.
	ac.bytecode.Instructions[operandPos] = instruction[0]
	ac.bytecode.Instructions[operandPos+1] = instruction[1]

}

// addConstant appends a value to the constant pool and emits an OP_CONSTANT instruction.
// The operand of the instruction will be its index in the constants pool.
func (ac *ASTCompiler) addConstant(value any) {
	ac.bytecode.ConstantsPool = append(ac.bytecode.ConstantsPool, value)
	index := len(ac.bytecode.ConstantsPool) - 1
	ac.emit(OP_CONSTANT, index)
}

// addNameConstant adds a variable name to the NameConstants pool
// and returns its index.
func (ac *ASTCompiler) addNameConstant(value string) int {

	for _, name := range ac.bytecode.NameConstants {
		if name == value {
			panic(SemanticError{
				Message: fmt.Sprintf("Redefinition of variable '%s'", value),
			})
		}
	}
	ac.bytecode.NameConstants = append(ac.bytecode.NameConstants, value)
	return len(ac.bytecode.NameConstants) - 1
}

// emit constructs a bytecode instruction and appends it to the instruction stream
func (ac *ASTCompiler) emit(opcode Opcode, operands ...int) {
	instruction, err := AssembleInstruction(opcode, operands...)
	if err != nil {
		// TODO: Improve error handling in compiler.
		// Although in this case its can be OK as the error returned is of type `DeveloperError`
		// which would only be raised during development.
		panic(err.Error())
	}
	ac.bytecode.Instructions = append(ac.bytecode.Instructions, instruction...)
}

// emitPlaceholderJump emits a jump instruction with the specified opcode and a placeholder operand (0).
// It returns the position in the bytecode where the jump instruction was emitted,
// which can later be passed to `patchJump` to update the operand with
// the correct jump target.
func (ac *ASTCompiler) emitPlaceholderJump(opcode Opcode) int {
	position := len(ac.bytecode.Instructions)
	ac.emit(opcode, 0)
	return position
}

// beginScope increments the scope depth, when compiling a block statement.
func (ac *ASTCompiler) beginScope() {
	ac.scopeDepth++
}

// endScope decrements the scope depth and removes any local variables that go out of scope.
// It returns the number of local variables that went out of scope,
// which is used by the VM to pop them from the stack.
func (ac *ASTCompiler) endScope() int {
	ac.scopeDepth--

	count := 0
	for len(ac.locals) > 0 && ac.locals[len(ac.locals)-1].depth > ac.scopeDepth {
		ac.locals = ac.locals[:len(ac.locals)-1]
		count++
	}

	return count
}

// declareLocal adds a local variable name, checking for same-scope duplicates
// and assigns it a slot index for the VM to access it.
// It panics if there is a duplicate variable declaration in the same scope.
func (ac *ASTCompiler) declareLocal(name string) {

	for i := len(ac.locals) - 1; i >= 0; i-- {

		// By virtue of iterating backwards through the local stack,
		// we can stop checking
		if ac.locals[i].depth < ac.scopeDepth {
			break
		}
		if ac.locals[i].name == name {
			panic(SemanticError{
				Message: fmt.Sprintf("Redefinition of variable '%s'", name),
			})
		}
	}

	slot := uint16(len(ac.locals))
	local := Local{
		name:        name,
		depth:       ac.scopeDepth,
		initialized: false,
		slot:        slot,
	}
	ac.locals = append(ac.locals, local)

}

// defineLocal marks the most recently declared local variable as initialized.
func (ac *ASTCompiler) defineLocal() {
	if len(ac.locals) > 0 {
		ac.locals[len(ac.locals)-1].initialized = true
	}
}

// resolveLocal checks if a variable name exists in the current local scope and returns its slot index.
// It returns -1 if the variable is not found in the local scope.
func (ac *ASTCompiler) resolveLocal(name string) int {
	for i := len(ac.locals) - 1; i >= 0; i-- {
		if ac.locals[i].name == name {
			return int(ac.locals[i].slot)
		}
	}
	return -1
}

// resolveGlobal checks if a variable name exists in the global scope and returns its index in the NameConstants pool.
// It returns -1 if the variable is not found in the global scope.
func (ac ASTCompiler) resolveGlobal(name string) int {
	for i, n := range ac.bytecode.NameConstants {
		if n == name {
			return i
		}
	}
	return -1
}

// VisitArrayLiteral compiles an array literal by pushing each element in
// order, then emitting OP_MAKE_ARRAY with the element count as its operand.
func (ac *ASTCompiler) VisitArrayLiteral(arr ast.ArrayLit) any {
	for _, el := range arr.Elements {
		el.Accept(ac)
	}
	ac.emit(OP_MAKE_ARRAY, len(arr.Elements))
	return nil
}

// VisitIndexExpression compiles "a[i]" by pushing the array then the index
// and emitting OP_INDEX_GET.
func (ac *ASTCompiler) VisitIndexExpression(idx ast.IndexExpr) any {
	idx.Array.Accept(ac)
	idx.Index.Accept(ac)
	ac.emit(OP_INDEX_GET)
	return nil
}

// VisitIndexAssignExpression compiles "a[i] = v" by pushing the array, the
// index and the value, then emitting OP_INDEX_SET.
func (ac *ASTCompiler) VisitIndexAssignExpression(assign ast.IndexAssign) any {
	assign.Array.Accept(ac)
	assign.Index.Accept(ac)
	assign.Value.Accept(ac)
	ac.emit(OP_INDEX_SET)
	return nil
}

// VisitMemberExpression compiles member access. Lyra only exposes ".length"
// on arrays and strings, so this is the only member the compiler accepts;
// anything else is a compile-time SemanticError rather than a runtime fault.
func (ac *ASTCompiler) VisitMemberExpression(member ast.Member) any {
	if member.Name.Lexeme != "length" {
		panic(SemanticError{
			Message: fmt.Sprintf("unknown member '.%s'", member.Name.Lexeme),
		})
	}
	member.Object.Accept(ac)
	ac.emit(OP_LENGTH)
	return nil
}

// VisitRangeExpression compiles "left..right" by pushing both bounds and
// emitting OP_RANGE, which the VM resolves into an Array at runtime.
func (ac *ASTCompiler) VisitRangeExpression(r ast.Range) any {
	r.Left.Accept(ac)
	r.Right.Accept(ac)
	ac.emit(OP_RANGE)
	return nil
}

// VisitCallExpression compiles a call to a named procedure/function. Lyra
// has no first-class function values at the bytecode-compiler boundary, so
// the callee must be a bare identifier resolved against the globals table;
// arguments are pushed in order and OP_CALL's operands are the callee's
// name-constant index and the argument count.
func (ac *ASTCompiler) VisitCallExpression(call ast.Call) any {
	callee, ok := call.Callee.(ast.Variable)
	if !ok {
		panic(SemanticError{Message: "only named procedures can be called"})
	}
	name := callee.Name.Lexeme

	if _, isBuiltin := builtinArity[name]; isBuiltin {
		for _, arg := range call.Arguments {
			arg.Accept(ac)
		}
		index := ac.internBuiltinName(name)
		ac.emit(OP_CALL, index, len(call.Arguments))
		return nil
	}

	globalIndex := ac.resolveGlobal(name)
	if globalIndex == -1 {
		panic(SemanticError{
			Message: fmt.Sprintf("name '%s' is not defined", name),
		})
	}
	for _, arg := range call.Arguments {
		arg.Accept(ac)
	}
	ac.emit(OP_CALL, globalIndex, len(call.Arguments))
	return nil
}

// builtinArity documents the built-in functions the VM recognizes directly
// by name (mirroring interpreter/builtins.go), so the compiler can resolve a
// call to one of them without requiring a prior declaration.
var builtinArity = map[string]int{
	"len": 1, "length": 1, "input": 0, "int": 1, "float": 1,
	"string": 1, "str": 1, "toString": 1, "substring": 2,
	"toUpperCase": 1, "toLowerCase": 1, "startsWith": 2, "endsWith": 2,
	"contains": 2, "indexOf": 2, "split": 2, "join": 2,
	"abs": 1, "floor": 1, "ceil": 1, "round": 1, "sqrt": 1,
	"pow": 2, "min": 2, "max": 2,
}

// internBuiltinName returns name's index in the NameConstants table,
// appending it if this is the first reference (built-ins are never
// "redefined" the way addNameConstant's declaration path enforces, so this
// bypasses that check deliberately).
func (ac *ASTCompiler) internBuiltinName(name string) int {
	for i, n := range ac.bytecode.NameConstants {
		if n == name {
			return i
		}
	}
	ac.bytecode.NameConstants = append(ac.bytecode.NameConstants, name)
	return len(ac.bytecode.NameConstants) - 1
}

// VisitFuncDef compiles a proc/fn declaration. The body is compiled into an
// isolated instruction buffer with its own local-slot numbering (starting
// with the parameters at slots 0..Arity-1), stored as a FunctionValue
// constant and bound to the declared name the same way a variable would be.
func (ac *ASTCompiler) VisitFuncDef(fn ast.FuncDef) any {
	name := fn.Name.Lexeme

	savedInstructions := ac.bytecode.Instructions
	savedLocals := ac.locals
	savedScopeDepth := ac.scopeDepth
	savedLoopStack := ac.loopStack

	ac.bytecode.Instructions = Instructions{}
	ac.locals = []Local{}
	ac.scopeDepth = 0
	ac.loopStack = []*loopContext{}

	ac.beginScope()
	for _, p := range fn.Params {
		ac.declareLocal(p.Name.Lexeme)
		ac.defineLocal()
	}
	for _, stmt := range fn.Body.Statements {
		stmt.Accept(ac)
	}
	// Implicit "return null" if control falls off the end of the body.
	ac.addConstant(nil)
	ac.emit(OP_RETURN)

	fnInstructions := ac.bytecode.Instructions

	ac.bytecode.Instructions = savedInstructions
	ac.locals = savedLocals
	ac.scopeDepth = savedScopeDepth
	ac.loopStack = savedLoopStack

	fnValue := FunctionValue{Name: name, Arity: len(fn.Params), Instructions: fnInstructions}
	ac.bytecode.ConstantsPool = append(ac.bytecode.ConstantsPool, fnValue)
	constIndex := len(ac.bytecode.ConstantsPool) - 1
	ac.emit(OP_CONSTANT, constIndex)

	if ac.scopeDepth == 0 {
		index := ac.addNameConstant(name)
		ac.emit(OP_DEFINE_GLOBAL, index)
		// The function value lives in the globals map now; it has no slot
		// to occupy on the stack the way a local declaration's does.
		ac.emit(OP_POP)
		ac.initialized[name] = true
	} else {
		ac.declareLocal(name)
		slot := ac.locals[len(ac.locals)-1].slot
		ac.emit(OP_DEFINE_LOCAL, int(slot))
		ac.locals[len(ac.locals)-1].initialized = true
	}
	return nil
}

// VisitReturnStmt compiles "return expr;" / bare "return;". The returned
// value (null for a bare return) is left as the only stack effect; OP_RETURN
// unwinds the VM's call frame back to the caller.
func (ac *ASTCompiler) VisitReturnStmt(ret ast.ReturnStmt) any {
	if ret.Value != nil {
		ret.Value.Accept(ac)
	} else {
		ac.addConstant(nil)
	}
	ac.emit(OP_RETURN)
	return nil
}

// VisitBreakStmt compiles "break;" as a placeholder jump recorded against
// the innermost enclosing loop/switch, patched once that construct's end
// address is known.
func (ac *ASTCompiler) VisitBreakStmt(b ast.BreakStmt) any {
	if len(ac.loopStack) == 0 {
		panic(SemanticError{Message: "'break' outside of a loop or switch"})
	}
	pos := ac.emitPlaceholderJump(OP_JUMP)
	top := ac.loopStack[len(ac.loopStack)-1]
	top.breakJumps = append(top.breakJumps, pos)
	return nil
}

// VisitContinueStmt compiles "continue;" as a placeholder jump recorded
// against the nearest enclosing loop (skipping past any intervening switch
// frame, since continue targets a loop, not a switch), patched once that
// loop's continue target is known.
func (ac *ASTCompiler) VisitContinueStmt(c ast.ContinueStmt) any {
	idx := -1
	for i := len(ac.loopStack) - 1; i >= 0; i-- {
		if !ac.loopStack[i].isSwitch {
			idx = i
			break
		}
	}
	if idx == -1 {
		panic(SemanticError{Message: "'continue' outside of a loop"})
	}
	pos := ac.emitPlaceholderJump(OP_JUMP)
	ac.loopStack[idx].continueJumps = append(ac.loopStack[idx].continueJumps, pos)
	return nil
}

// VisitForStmt compiles "for NAME in iterable { body }" against an Array or
// Range value (both produce an Array at runtime). It is a documented
// simplification relative to the tree-walking evaluator: the evaluator also
// accepts a bare Number n as sugar for "0..n-1", but the compiler only
// supports iterables that already evaluate to an Array.
func (ac *ASTCompiler) VisitForStmt(forStmt ast.ForStmt) any {
	ac.beginScope()

	forStmt.Iterable.Accept(ac)
	ac.declareLocal("@iterable")
	ac.defineLocal()
	iterSlot := ac.locals[len(ac.locals)-1].slot

	ac.addConstant(0.0)
	ac.declareLocal("@index")
	ac.defineLocal()
	indexSlot := ac.locals[len(ac.locals)-1].slot

	conditionPos := len(ac.bytecode.Instructions)
	ac.emit(OP_GET_LOCAL, int(indexSlot))
	ac.emit(OP_GET_LOCAL, int(iterSlot))
	ac.emit(OP_LENGTH)
	ac.emit(OP_LESS)
	jumpIfFalsePatch := ac.emitPlaceholderJump(OP_JUMP_IF_FALSE)
	ac.emit(OP_POP)

	ac.beginScope()
	ac.emit(OP_GET_LOCAL, int(iterSlot))
	ac.emit(OP_GET_LOCAL, int(indexSlot))
	ac.emit(OP_INDEX_GET)
	ac.declareLocal(forStmt.VarName.Lexeme)
	ac.defineLocal()
	loopVarSlot := ac.locals[len(ac.locals)-1].slot
	ac.emit(OP_SET_LOCAL, int(loopVarSlot))
	ac.emit(OP_POP)

	ctx := &loopContext{}
	ac.loopStack = append(ac.loopStack, ctx)

	forStmt.Body.Accept(ac)

	if popped := ac.endScope(); popped > 0 {
		ac.emit(OP_SCOPE_EXIT, popped)
	}

	// `continue` jumps straight to the increment step below, skipping
	// whatever remains of the loop body for this iteration.
	incrementPos := len(ac.bytecode.Instructions)
	ac.patchContinues(ctx, incrementPos)

	ac.emit(OP_GET_LOCAL, int(indexSlot))
	ac.addConstant(1.0)
	ac.emit(OP_ADD)
	ac.emit(OP_SET_LOCAL, int(indexSlot))
	ac.emit(OP_POP)
	ac.emit(OP_JUMP, conditionPos)

	loopEndPos := len(ac.bytecode.Instructions)
	ac.patchJump(jumpIfFalsePatch, loopEndPos)
	ac.emit(OP_POP)

	ac.popLoopContext()

	if popped := ac.endScope(); popped > 0 {
		ac.emit(OP_SCOPE_EXIT, popped)
	}

	return nil
}

// VisitTryStmt compiles "try { } catch (name) { }" using a VM-managed
// handler stack: OP_TRY_PUSH installs a handler whose operand is the catch
// block's address, OP_TRY_POP removes it once the try-block completes
// normally. On a runtime fault the VM itself truncates the value stack,
// pushes the fault's message and jumps to the handler's address, so the
// compiled catch block always begins with exactly one pending string value.
func (ac *ASTCompiler) VisitTryStmt(t ast.TryStmt) any {
	tryPushPos := ac.emitPlaceholderJump(OP_TRY_PUSH)

	t.TryBlock.Accept(ac)
	ac.emit(OP_TRY_POP)
	jumpOverCatch := ac.emitPlaceholderJump(OP_JUMP)

	catchStart := len(ac.bytecode.Instructions)
	ac.patchJump(tryPushPos, catchStart)

	ac.beginScope()
	if t.CatchVar.Lexeme != "" {
		ac.declareLocal(t.CatchVar.Lexeme)
		ac.defineLocal()
		slot := ac.locals[len(ac.locals)-1].slot
		ac.emit(OP_SET_LOCAL, int(slot))
		ac.emit(OP_POP)
	} else {
		ac.emit(OP_POP)
	}
	for _, stmt := range t.CatchBlock.Statements {
		stmt.Accept(ac)
	}
	if popped := ac.endScope(); popped > 0 {
		ac.emit(OP_SCOPE_EXIT, popped)
	}

	ac.patchJump(jumpOverCatch, len(ac.bytecode.Instructions))
	return nil
}

// VisitSwitchStmt compiles Lyra's fall-through switch. Case bodies are laid
// out back-to-back in source order; jumping into the matching case's body
// lets straight-line execution fall through into the following case exactly
// like the statement's semantics require, and only an explicit `break`
// (compiled via the loopStack machinery) exits early.
func (ac *ASTCompiler) VisitSwitchStmt(s ast.SwitchStmt) any {
	ac.loopStack = append(ac.loopStack, &loopContext{isSwitch: true})

	ac.beginScope()
	s.Subject.Accept(ac)
	ac.declareLocal("@subject")
	ac.defineLocal()
	subjectSlot := ac.locals[len(ac.locals)-1].slot

	entryPatches := make([]int, len(s.Cases))
	for i, c := range s.Cases {
		ac.emit(OP_GET_LOCAL, int(subjectSlot))
		c.Value.Accept(ac)
		ac.emit(OP_EQUALITY)
		entryPatches[i] = ac.emitPlaceholderJump(OP_JUMP_IF_TRUE)
		ac.emit(OP_POP)
	}

	defaultJump := ac.emitPlaceholderJump(OP_JUMP)

	for i, c := range s.Cases {
		ac.patchJump(entryPatches[i], len(ac.bytecode.Instructions))
		ac.emit(OP_POP)
		for _, stmt := range c.Statements {
			stmt.Accept(ac)
		}
	}

	ac.patchJump(defaultJump, len(ac.bytecode.Instructions))
	for _, stmt := range s.Default {
		stmt.Accept(ac)
	}

	if popped := ac.endScope(); popped > 0 {
		ac.emit(OP_SCOPE_EXIT, popped)
	}

	ac.popLoopContext()
	return nil
}
