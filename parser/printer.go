package parser

import (
	"encoding/json"
	"fmt"
	"lyra/ast"
	"os"

	"github.com/fatih/color"
)

var astBanner = color.New(color.FgYellow)

// astPrinter implements the Visitor interfaces and builds a
// JSON-friendly representation of the AST using maps and slices.
// Each Visit method returns an object that can be marshaled to JSON.
type astPrinter struct{}

func (p astPrinter) VisitExpressionStmt(exprStmt ast.ExpressionStmt) any {
	return map[string]any{
		"type":       "ExpressionStmt",
		"expression": exprStmt.Expression.Accept(p),
	}
}

func (p astPrinter) VisitPrintStmt(printStmt ast.PrintStmt) any {
	exprs := make([]any, 0, len(printStmt.Expressions))
	for _, expr := range printStmt.Expressions {
		exprs = append(exprs, expr.Accept(p))
	}
	return map[string]any{
		"type":        "PrintStmt",
		"newline":     printStmt.Newline,
		"expressions": exprs,
	}
}

func (p astPrinter) VisitVarStmt(varStmt ast.VarStmt) any {
	return map[string]any{
		"type":        "VarStmt",
		"name":        varStmt.Name.Lexeme,
		"initializer": nilOrAccept(varStmt.Initializer, p),
	}
}

func (p astPrinter) VisitBlockStmt(blockStmt ast.BlockStmt) any {
	stmts := make([]any, 0, len(blockStmt.Statements))
	for _, stmt := range blockStmt.Statements {
		stmts = append(stmts, stmt.Accept(p))
	}
	return map[string]any{
		"type":       "BlockStmt",
		"statements": stmts,
	}
}

func (p astPrinter) VisitWhileStmt(stmt ast.WhileStmt) any {
	return map[string]any{
		"type":      "WhileStmt",
		"condition": stmt.Condition.Accept(p),
		"body":      stmt.Body.Accept(p),
	}
}

func (p astPrinter) VisitIfStmt(stmt ast.IfStmt) any {
	var elseVal any
	if stmt.Else != nil {
		elseVal = stmt.Else.Accept(p)
	} else {
		elseVal = nil
	}
	return map[string]any{
		"type":      "IfStmt",
		"condition": stmt.Condition.Accept(p),
		"then":      stmt.Then.Accept(p),
		"else":      elseVal,
	}
}

func (p astPrinter) VisitLogicalExpression(expr ast.Logical) any {
	return map[string]any{
		"type":     "Logical",
		"operator": expr.Operator.Lexeme,
		"left":     expr.Left.Accept(p),
		"right":    expr.Right.Accept(p),
	}
}

func (p astPrinter) VisitAssignExpression(assign ast.Assign) any {
	return map[string]any{
		"type":  "Assign",
		"name":  assign.Name.Lexeme,
		"value": assign.Value.Accept(p),
	}
}

func (p astPrinter) VisitIndexAssignExpression(assign ast.IndexAssign) any {
	return map[string]any{
		"type":  "IndexAssign",
		"array": assign.Array.Accept(p),
		"index": assign.Index.Accept(p),
		"value": assign.Value.Accept(p),
	}
}

func (p astPrinter) VisitVariableExpression(variable ast.Variable) any {
	return map[string]any{
		"type": "Variable",
		"name": variable.Name.Lexeme,
	}
}

func (p astPrinter) VisitBinary(b ast.Binary) any {
	return map[string]any{
		"type":     "Binary",
		"operator": b.Operator.Lexeme,
		"left":     b.Left.Accept(p),
		"right":    b.Right.Accept(p),
	}
}

func (p astPrinter) VisitUnary(u ast.Unary) any {
	return map[string]any{
		"type":     "Unary",
		"operator": u.Operator.Lexeme,
		"right":    u.Right.Accept(p),
	}
}

func (p astPrinter) VisitLiteral(l ast.Literal) any {
	// literals are terminal values and can be used directly in JSON
	return l.Value
}

func (p astPrinter) VisitGrouping(g ast.Grouping) any {
	return map[string]any{
		"type":       "Grouping",
		"expression": g.Expression.Accept(p),
	}
}

func (p astPrinter) VisitCallExpression(call ast.Call) any {
	args := make([]any, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		args = append(args, arg.Accept(p))
	}
	return map[string]any{
		"type":      "Call",
		"callee":    call.Callee.Accept(p),
		"arguments": args,
	}
}

func (p astPrinter) VisitArrayLiteral(arr ast.ArrayLit) any {
	elements := make([]any, 0, len(arr.Elements))
	for _, el := range arr.Elements {
		elements = append(elements, el.Accept(p))
	}
	return map[string]any{
		"type":     "ArrayLit",
		"elements": elements,
	}
}

func (p astPrinter) VisitIndexExpression(idx ast.IndexExpr) any {
	return map[string]any{
		"type":  "IndexExpr",
		"array": idx.Array.Accept(p),
		"index": idx.Index.Accept(p),
	}
}

func (p astPrinter) VisitMemberExpression(member ast.Member) any {
	return map[string]any{
		"type":   "Member",
		"object": member.Object.Accept(p),
		"name":   member.Name.Lexeme,
	}
}

func (p astPrinter) VisitRangeExpression(r ast.Range) any {
	return map[string]any{
		"type":  "Range",
		"left":  r.Left.Accept(p),
		"right": r.Right.Accept(p),
	}
}

func (p astPrinter) VisitForStmt(stmt ast.ForStmt) any {
	return map[string]any{
		"type":     "ForStmt",
		"varName":  stmt.VarName.Lexeme,
		"iterable": stmt.Iterable.Accept(p),
		"body":     stmt.Body.Accept(p),
	}
}

func (p astPrinter) VisitFuncDef(stmt ast.FuncDef) any {
	params := make([]any, 0, len(stmt.Params))
	for _, param := range stmt.Params {
		params = append(params, param.Name.Lexeme)
	}
	return map[string]any{
		"type":   "FuncDef",
		"name":   stmt.Name.Lexeme,
		"params": params,
		"body":   stmt.Body.Accept(p),
	}
}

func (p astPrinter) VisitReturnStmt(stmt ast.ReturnStmt) any {
	return map[string]any{
		"type":  "ReturnStmt",
		"value": nilOrAccept(stmt.Value, p),
	}
}

func (p astPrinter) VisitBreakStmt(stmt ast.BreakStmt) any {
	return map[string]any{"type": "BreakStmt"}
}

func (p astPrinter) VisitContinueStmt(stmt ast.ContinueStmt) any {
	return map[string]any{"type": "ContinueStmt"}
}

func (p astPrinter) VisitTryStmt(stmt ast.TryStmt) any {
	return map[string]any{
		"type":     "TryStmt",
		"try":      stmt.TryBlock.Accept(p),
		"catchVar": stmt.CatchVar.Lexeme,
		"catch":    stmt.CatchBlock.Accept(p),
	}
}

func (p astPrinter) VisitSwitchStmt(stmt ast.SwitchStmt) any {
	cases := make([]any, 0, len(stmt.Cases))
	for _, c := range stmt.Cases {
		stmts := make([]any, 0, len(c.Statements))
		for _, s := range c.Statements {
			stmts = append(stmts, s.Accept(p))
		}
		cases = append(cases, map[string]any{
			"value":      c.Value.Accept(p),
			"statements": stmts,
		})
	}
	return map[string]any{
		"type":    "SwitchStmt",
		"subject": stmt.Subject.Accept(p),
		"cases":   cases,
	}
}

// nilOrAccept returns nil if expr is nil, otherwise it continues
// processintg the expression and returns the result.
func nilOrAccept(expr ast.Expression, p ast.ExpressionVisitor) any {
	if expr == nil {
		return nil
	}
	return expr.Accept(p)
}

// PrintASTJSON converts a slice of statements into a prettified JSON string.
func PrintASTJSON(statements []ast.Stmt) (string, error) {
	printer := astPrinter{}
	out := make([]any, 0, len(statements))
	for _, s := range statements {
		out = append(out, s.Accept(printer))
	}
	bytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}

	jsonStr := string(bytes)
	astBanner.Println("----- AST JSON -----")
	astBanner.Println(jsonStr)
	astBanner.Println("-----")
	fmt.Println("")
	return jsonStr, nil
}

// WriteASTJSONToFile writes the prettified AST JSON to the given file path.
func WriteASTJSONToFile(statements []ast.Stmt, path string) error {
	s, err := PrintASTJSON(statements)
	if err != nil {
		return err
	}
	fDescriptor, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating AST file: %s", err.Error())
	}

	_, error := fDescriptor.Write([]byte(s))
	if error != nil {
		return fmt.Errorf("error writing AST to file: %s", error.Error())
	}
	defer fDescriptor.Close()
	return nil
}
