package parser

import (
	"encoding/json"
	"lyra/ast"
	"lyra/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrintASTJSON_PrintLiteral(t *testing.T) {
	stmts := []ast.Stmt{
		ast.PrintStmt{Expressions: []ast.Expression{ast.Literal{Value: 42}}, Newline: true},
	}

	jsonString, err := PrintASTJSON(stmts)
	if err != nil {
		t.Fatalf("PrintASTJSON error: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal([]byte(jsonString), &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(out))
	}

	node := out[0]
	if typ, ok := node["type"].(string); !ok || typ != "PrintStmt" {
		t.Fatalf("expected type PrintStmt, got %v", node["type"])
	}

	exprs, ok := node["expressions"].([]any)
	if !ok || len(exprs) != 1 {
		t.Fatalf("expected 1 expression, got %v", node["expressions"])
	}
	if num, ok := exprs[0].(float64); !ok || num != 42 {
		t.Fatalf("expected expression 42, got %v", exprs[0])
	}
}

func TestPrintASTJSON_VarStmt_NilInitializer(t *testing.T) {
	name := token.CreateLiteralToken(token.IDENTIFIER, nil, "x", 0, 0)
	stmts := []ast.Stmt{
		ast.VarStmt{Name: name, Initializer: nil},
	}

	jsonStr, err := PrintASTJSON(stmts)
	if err != nil {
		t.Fatalf("PrintASTJSON error: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(out))
	}

	node := out[0]
	if typ, ok := node["type"].(string); !ok || typ != "VarStmt" {
		t.Fatalf("expected type VarStmt, got %v", node["type"])
	}

	if nameVal, ok := node["name"].(string); !ok || nameVal != "x" {
		t.Fatalf("expected name 'x', got %v", node["name"])
	}

	if initVal, exists := node["initializer"]; !exists || initVal != nil {
		t.Fatalf("expected initializer to be nil, got %v", initVal)
	}
}

func TestPrintASTJSON_BinaryExpression(t *testing.T) {
	stmts := []ast.Stmt{
		ast.ExpressionStmt{Expression: ast.Binary{
			Left:     ast.Literal{Value: float64(1)},
			Operator: token.CreateToken(token.ADD, 0, 0),
			Right:    ast.Literal{Value: float64(2)},
		}},
	}

	jsonStr, err := PrintASTJSON(stmts)
	if err != nil {
		t.Fatalf("PrintASTJSON error: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(out))
	}

	node := out[0]
	if typ, ok := node["type"].(string); !ok || typ != "ExpressionStmt" {
		t.Fatalf("expected type ExpressionStmt, got %v", node["type"])
	}

	expr, ok := node["expression"].(map[string]any)
	if !ok {
		t.Fatalf("expected expression object, got %v", node["expression"])
	}

	if typ, ok := expr["type"].(string); !ok || typ != "Binary" {
		t.Fatalf("expected Binary expression, got %v", expr["type"])
	}

	if op, ok := expr["operator"].(string); !ok || op != "+" {
		t.Fatalf("expected operator '+', got %v", expr["operator"])
	}

	if left, ok := expr["left"].(float64); !ok || left != 1 {
		t.Fatalf("expected left 1, got %v", expr["left"])
	}
	if right, ok := expr["right"].(float64); !ok || right != 2 {
		t.Fatalf("expected right 2, got %v", expr["right"])
	}
}

func TestWriteASTJSONToFile(t *testing.T) {
	stmts := []ast.Stmt{
		ast.PrintStmt{Expressions: []ast.Expression{ast.Literal{Value: "hello lyra!"}}, Newline: true},
	}

	filePath := filepath.Join(os.TempDir(), "lyra_ast_printer_test.json")
	defer os.Remove(filePath)

	if err := WriteASTJSONToFile(stmts, filePath); err != nil {
		t.Fatalf("WriteASTJSONToFile error: %v", err)
	}

	bytes, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal(bytes, &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(out))
	}

	node := out[0]
	if typ, ok := node["type"].(string); !ok || typ != "PrintStmt" {
		t.Fatalf("expected type PrintStmt, got %v", node["type"])
	}

	exprs, ok := node["expressions"].([]any)
	if !ok || len(exprs) != 1 {
		t.Fatalf("expected 1 expression, got %v", node["expressions"])
	}
	if expr, ok := exprs[0].(string); !ok || expr != "hello lyra!" {
		t.Fatalf("expected expression 'hello lyra!', got %v", exprs[0])
	}
}

// TestPrintASTJSON_StableAcrossCalls asserts that printing the same AST
// twice yields byte-identical decoded output, catching accidental map-order
// or pointer-identity leaks into the JSON form.
func TestPrintASTJSON_StableAcrossCalls(t *testing.T) {
	stmts := []ast.Stmt{
		ast.VarStmt{
			Name:        token.CreateLiteralToken(token.IDENTIFIER, nil, "total", 0, 0),
			Initializer: ast.Literal{Value: float64(7)},
		},
		ast.PrintStmt{Expressions: []ast.Expression{
			ast.Variable{Name: token.CreateLiteralToken(token.IDENTIFIER, nil, "total", 0, 0)},
		}, Newline: true},
	}

	first, err := PrintASTJSON(stmts)
	if err != nil {
		t.Fatalf("PrintASTJSON error: %v", err)
	}
	second, err := PrintASTJSON(stmts)
	if err != nil {
		t.Fatalf("PrintASTJSON error: %v", err)
	}

	var firstOut, secondOut []map[string]any
	if err := json.Unmarshal([]byte(first), &firstOut); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	if err := json.Unmarshal([]byte(second), &secondOut); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	if diff := cmp.Diff(firstOut, secondOut); diff != "" {
		t.Fatalf("PrintASTJSON is not stable across calls (-first +second):\n%s", diff)
	}
}
