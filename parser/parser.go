// Recursive descent parser
// https://en.wikipedia.org/wiki/Recursive_descent_parser

//	A Recursive descent parser is a top-down parser because it starts from the top
//
// grammar rule and works its way down in to the nested sub-experessions before reaching
// the leaves of the syntax tree (terminal rules)
package parser

import (
	"fmt"
	"lyra/ast"
	"lyra/token"
)

var comparisonTokenTypes = []token.TokenType{
	token.LARGER,
	token.LARGER_EQUAL,
	token.LESS,
	token.LESS_EQUAL,
}

var equalityTokenTypes = []token.TokenType{
	token.NOT_EQUAL,
	token.EQUAL_EQUAL,
}

var termTokenTypes = []token.TokenType{
	token.SUB,
	token.ADD,
}

var factorExpressionTypes = []token.TokenType{
	token.MULT,
	token.DIV,
	token.MOD,
}

var unaryExpressionTypes = []token.TokenType{
	token.BANG,
	token.SUB,

	// NOTE: not supported operands on unary expressions are included
	// So they can be parsed, but then the interpreter can throw a more detailed
	// runtime error message. This is known as "error productions"
	token.MULT,
	token.ADD,
	token.DIV,
}

var compoundAssignTokenTypes = []token.TokenType{
	token.PLUS_ASSIGN,
	token.MINUS_ASSIGN,
	token.STAR_ASSIGN,
	token.SLASH_ASSIGN,
}

// compoundAssignOperator maps a compound-assignment token to the binary
// operator it desugars to (e.g. "+=" -> "+").
var compoundAssignOperator = map[token.TokenType]token.TokenType{
	token.PLUS_ASSIGN:  token.ADD,
	token.MINUS_ASSIGN: token.SUB,
	token.STAR_ASSIGN:  token.MULT,
	token.SLASH_ASSIGN: token.DIV,
}

type Parser struct {
	tokens   []token.Token
	position int
}

// NOTE: The parsers position is always one unit ahead of the
// current token

// Initializes and returns a new Parser instance.
//
// Parameters:
//   - tokens: []token.Token
//     The tokens created by the lexer. The parser starts at position 0.
//
// Returns:
//   - *Parser: A pointer to a newly created Parser instance.
func Make(tokens []token.Token) *Parser {
	return &Parser{
		tokens:   tokens,
		position: 0,
	}
}

// Print prints the AST as prettified JSON to standard output.
func (parser *Parser) Print(statements []ast.Stmt) {
	_, err := PrintASTJSON(statements)
	if err != nil {
		fmt.Println("error producing AST JSON:", err)
	}
}

// PrintToFile writes the AST for the provided statements to a .json file at the given path.
func (parser *Parser) PrintToFile(statements []ast.Stmt, path string) error {
	return WriteASTJSONToFile(statements, path)
}

// Peeks the token at the parser's current position,
// without advancing the parser's position.
// Returns:
//   - token.Token: The token at the parser's current position
func (parser *Parser) peek() token.Token {
	return parser.tokens[parser.position]
}

// Retrieves the token at the parser's previous position
// (position -1)
//
// Returns:
//   - token.Token: The token at the previous position
func (parser *Parser) previous() token.Token {
	return parser.tokens[parser.position-1]
}

// Increments the parser's position by one unit and
// consumes the current token
//
// Returns:
//   - token.Token: The token at the previous position
func (parser *Parser) advance() token.Token {
	if !parser.isFinished() {
		parser.position++
	}
	return parser.previous()
}

// Determines of the parser has finished scanning all the tokens.
//
// Returns:
//   - bool: true if the parser has finished scanning, false otherwise
func (parser *Parser) isFinished() bool {
	tok := parser.peek()
	return tok.TokenType == token.EOF
}

// Determines if the provided tokenType matches the TokenType
// at the parser's current position
//
// Returns
//   - bool: true if the TokenType matches, false otherwise
func (parser *Parser) checkType(tokeType token.TokenType) bool {
	if parser.isFinished() {
		return false
	}
	tok := parser.peek()
	return tok.TokenType == tokeType
}

// checkTypeAt looks ahead `offset` tokens from the current position without
// consuming anything.
func (parser *Parser) checkTypeAt(offset int, tokenType token.TokenType) bool {
	idx := parser.position + offset
	if idx >= len(parser.tokens) {
		return false
	}
	return parser.tokens[idx].TokenType == tokenType
}

// Determines if the TokenType at the current
// position matches any of the provided tokenTypes. If a match is
// found the parser increments its position and consumes the
// current token
//
// Returns
//   - bool: true if a match was found, false otherwise
func (parser *Parser) isMatch(tokenTypes []token.TokenType) bool {
	for i := range tokenTypes {
		tokenType := tokenTypes[i]

		if parser.checkType(tokenType) {
			parser.advance()
			return true
		}
	}
	return false
}

// optionalSemicolon consumes a trailing ';' if present. Semicolons are
// never required to terminate a statement.
func (parser *Parser) optionalSemicolon() {
	parser.isMatch([]token.TokenType{token.SEMICOLON})
}

// Parse parses the entire token stream into a slice of Stmt (statement) nodes,
// continuing until the end of input. Errors during parsing are collected
// but parsing continues to find additional errors where possible.
//
// Returns:
//   - []Stmt: the successfully parsed statements.
//   - []error: all errors that occurred during parsing.
func (parser *Parser) Parse() ([]ast.Stmt, []error) {
	statements := []ast.Stmt{}
	errors := []error{}

	for {
		if parser.isFinished() {
			break
		}
		statement, err := parser.declaration()
		if err != nil {
			errors = append(errors, err)
			if !parser.isFinished() {
				parser.position++
			}
			continue
		}
		statements = append(statements, statement)
	}

	return statements, errors
}

// declaration parses a declaration statement: variable declarations
// ("var"/"let") and function/procedure declarations ("proc"/"fn"). Anything
// else falls through to a general statement.
func (parser *Parser) declaration() (ast.Stmt, error) {
	if parser.isMatch([]token.TokenType{token.VAR, token.LET}) {
		return parser.variableDeclaration()
	}
	if parser.isMatch([]token.TokenType{token.FUNC}) {
		return parser.funcDeclaration()
	}
	return parser.statement()
}

// typeAnnotation parses an optional ": TYPE" suffix, where TYPE is either an
// identifier or "[ TYPE? ]" (an array type). The declared type is recorded
// as a string but never enforced at runtime.
func (parser *Parser) typeAnnotation() (string, error) {
	if !parser.isMatch([]token.TokenType{token.COLON}) {
		return "", nil
	}
	return parser.typeName()
}

func (parser *Parser) typeName() (string, error) {
	if parser.isMatch([]token.TokenType{token.LBRACKET}) {
		inner := ""
		if !parser.checkType(token.RBRACKET) {
			var err error
			inner, err = parser.typeName()
			if err != nil {
				return "", err
			}
		}
		if _, err := parser.consume(token.RBRACKET, "Expected ']' after array type."); err != nil {
			return "", err
		}
		return "[" + inner + "]", nil
	}
	tok, err := parser.consume(token.IDENTIFIER, "Expected type name.")
	if err != nil {
		return "", err
	}
	return tok.Lexeme, nil
}

// variableDeclaration parses a variable declaration statement:
// "NAME (':' TYPE)? ('=' expr)? ';'?".
func (parser *Parser) variableDeclaration() (ast.Stmt, error) {
	tok, consumeError := parser.consume(token.IDENTIFIER, "Expected variable name")
	if consumeError != nil {
		return nil, consumeError
	}

	declaredType, err := parser.typeAnnotation()
	if err != nil {
		return nil, err
	}

	var initialiser ast.Expression
	if parser.isMatch([]token.TokenType{token.ASSIGN}) {
		var err error
		initialiser, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	parser.optionalSemicolon()

	return ast.VarStmt{
		Name:         tok,
		DeclaredType: declaredType,
		Initializer:  initialiser,
	}, nil
}

// funcDeclaration parses "NAME '(' params? ')' ('->' TYPE)? block".
func (parser *Parser) funcDeclaration() (ast.Stmt, error) {
	name, err := parser.consume(token.IDENTIFIER, "Expected function name.")
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LPA, "Expected '(' after function name."); err != nil {
		return nil, err
	}

	var params []ast.Param
	if !parser.checkType(token.RPA) {
		for {
			paramName, err := parser.consume(token.IDENTIFIER, "Expected parameter name.")
			if err != nil {
				return nil, err
			}
			paramType, err := parser.typeAnnotation()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: paramName, DeclaredType: paramType})
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
		}
	}
	if _, err := parser.consume(token.RPA, "Expected ')' after parameters."); err != nil {
		return nil, err
	}

	returnType := ""
	if parser.isMatch([]token.TokenType{token.ARROW}) {
		returnType, err = parser.typeName()
		if err != nil {
			return nil, err
		}
	}

	if _, err := parser.consume(token.LCUR, "Expected '{' before function body."); err != nil {
		return nil, err
	}
	body, err := parser.block()
	if err != nil {
		return nil, err
	}

	return ast.FuncDef{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       ast.BlockStmt{Statements: body},
	}, nil
}

// statement parses a single statement.
//
// Returns:
//   - Stmt: the parsed statement node.
//   - error: if parsing fails, otherwise nil.
func (parser *Parser) statement() (ast.Stmt, error) {

	if parser.isMatch([]token.TokenType{token.PRINT}) {
		return parser.printStatement(false)
	}
	if parser.isMatch([]token.TokenType{token.PRINTLN}) {
		return parser.printStatement(true)
	}

	if parser.isMatch([]token.TokenType{token.LCUR}) {
		statements, err := parser.block()
		if err != nil {
			return nil, err
		}
		return ast.BlockStmt{Statements: statements}, nil
	}

	if parser.isMatch([]token.TokenType{token.IF}) {
		return parser.ifStatement()
	}

	if parser.isMatch([]token.TokenType{token.WHILE}) {
		return parser.WhileStatement()
	}

	if parser.isMatch([]token.TokenType{token.FOR}) {
		return parser.forStatement()
	}

	if parser.isMatch([]token.TokenType{token.TRY}) {
		return parser.tryStatement()
	}

	if parser.isMatch([]token.TokenType{token.SWITCH}) {
		return parser.switchStatement()
	}

	if parser.isMatch([]token.TokenType{token.RETURN}) {
		return parser.returnStatement()
	}

	if parser.isMatch([]token.TokenType{token.BREAK}) {
		keyword := parser.previous()
		parser.optionalSemicolon()
		return ast.BreakStmt{Keyword: keyword}, nil
	}

	if parser.isMatch([]token.TokenType{token.CONTINUE}) {
		keyword := parser.previous()
		parser.optionalSemicolon()
		return ast.ContinueStmt{Keyword: keyword}, nil
	}

	expression, err := parser.expression()
	if err != nil {
		return nil, err
	}
	parser.optionalSemicolon()
	exprStmt := ast.ExpressionStmt{Expression: expression}

	return exprStmt, nil
}

// printStatement parses a print/println statement. The canonical form is
// "print(expr, expr, ...)"; the bare legacy form "print expr" (no
// parentheses, a single argument) is also accepted.
func (parser *Parser) printStatement(newline bool) (ast.Stmt, error) {
	var args []ast.Expression

	if parser.isMatch([]token.TokenType{token.LPA}) {
		if !parser.checkType(token.RPA) {
			for {
				expr, err := parser.expression()
				if err != nil {
					return nil, err
				}
				args = append(args, expr)
				if !parser.isMatch([]token.TokenType{token.COMMA}) {
					break
				}
			}
		}
		if _, err := parser.consume(token.RPA, "Expected ')' after print arguments."); err != nil {
			return nil, err
		}
	} else {
		expr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		args = append(args, expr)
	}
	parser.optionalSemicolon()

	return ast.PrintStmt{Expressions: args, Newline: newline}, nil
}

// WhileStatement parses a while loop statement from the token stream.
func (parser *Parser) WhileStatement() (ast.Stmt, error) {

	expr, err := parser.expression()
	if err != nil {
		return nil, err
	}

	stmt, error := parser.statement()
	if error != nil {
		return nil, error
	}

	return ast.WhileStmt{
		Condition: expr,
		Body:      stmt,
	}, nil

}

// forStatement parses "NAME 'in' expr block".
func (parser *Parser) forStatement() (ast.Stmt, error) {
	name, err := parser.consume(token.IDENTIFIER, "Expected loop variable name after 'for'.")
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.IN, "Expected 'in' after for-loop variable."); err != nil {
		return nil, err
	}
	iterable, err := parser.expression()
	if err != nil {
		return nil, err
	}
	body, err := parser.statement()
	if err != nil {
		return nil, err
	}
	return ast.ForStmt{VarName: name, Iterable: iterable, Body: body}, nil
}

// tryStatement parses "block 'catch' ('(' NAME ')')? block".
func (parser *Parser) tryStatement() (ast.Stmt, error) {
	if _, err := parser.consume(token.LCUR, "Expected '{' after 'try'."); err != nil {
		return nil, err
	}
	tryStmts, err := parser.block()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.CATCH, "Expected 'catch' after try block."); err != nil {
		return nil, err
	}
	var catchVar token.Token
	if parser.isMatch([]token.TokenType{token.LPA}) {
		catchVar, err = parser.consume(token.IDENTIFIER, "Expected identifier in catch clause.")
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.RPA, "Expected ')' after catch variable."); err != nil {
			return nil, err
		}
	}
	if _, err := parser.consume(token.LCUR, "Expected '{' after 'catch'."); err != nil {
		return nil, err
	}
	catchStmts, err := parser.block()
	if err != nil {
		return nil, err
	}
	return ast.TryStmt{
		TryBlock:   ast.BlockStmt{Statements: tryStmts},
		CatchVar:   catchVar,
		CatchBlock: ast.BlockStmt{Statements: catchStmts},
	}, nil
}

// switchStatement parses "expr '{' ('case' expr ':' stmt*)* ('default' ':' stmt*)? '}'".
func (parser *Parser) switchStatement() (ast.Stmt, error) {
	subject, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LCUR, "Expected '{' after switch subject."); err != nil {
		return nil, err
	}

	var cases []ast.SwitchCase
	var defaultStmts []ast.Stmt

	for !parser.checkType(token.RCUR) && !parser.isFinished() {
		if parser.isMatch([]token.TokenType{token.CASE}) {
			value, err := parser.expression()
			if err != nil {
				return nil, err
			}
			if _, err := parser.consume(token.COLON, "Expected ':' after case value."); err != nil {
				return nil, err
			}
			stmts, err := parser.caseBody()
			if err != nil {
				return nil, err
			}
			cases = append(cases, ast.SwitchCase{Value: value, Statements: stmts})
			continue
		}
		if parser.isMatch([]token.TokenType{token.DEFAULT}) {
			if _, err := parser.consume(token.COLON, "Expected ':' after 'default'."); err != nil {
				return nil, err
			}
			stmts, err := parser.caseBody()
			if err != nil {
				return nil, err
			}
			defaultStmts = stmts
			continue
		}
		currentToken := parser.peek()
		return nil, CreateSyntaxError(currentToken.Line, currentToken.Column, "Expected 'case' or 'default' inside switch body.")
	}

	if _, err := parser.consume(token.RCUR, "Expected '}' after switch body."); err != nil {
		return nil, err
	}

	return ast.SwitchStmt{Subject: subject, Cases: cases, Default: defaultStmts}, nil
}

// caseBody parses the statements belonging to one case/default clause, up to
// (but not consuming) the next "case", "default", or the closing '}'.
func (parser *Parser) caseBody() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !parser.checkType(token.CASE) && !parser.checkType(token.DEFAULT) && !parser.checkType(token.RCUR) && !parser.isFinished() {
		stmt, err := parser.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// returnStatement parses "'return' expr? ';'?".
func (parser *Parser) returnStatement() (ast.Stmt, error) {
	keyword := parser.previous()
	var value ast.Expression
	if !parser.checkType(token.SEMICOLON) && !parser.checkType(token.RCUR) && !parser.isFinished() {
		var err error
		value, err = parser.expression()
		if err != nil {
			return nil, err
		}
	}
	parser.optionalSemicolon()
	return ast.ReturnStmt{Keyword: keyword, Value: value}, nil
}

// ifStatement parses an if-statement from the token stream.
func (parser *Parser) ifStatement() (ast.Stmt, error) {

	conditionExpr, err := parser.expression()
	if err != nil {
		return nil, err
	}

	thenStmt, err := parser.statement()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Stmt = nil
	if parser.isMatch([]token.TokenType{token.ELSE}) {
		stmt, err := parser.statement()
		if err != nil {
			return nil, err
		}
		elseStmt = stmt
	} else if parser.isMatch([]token.TokenType{token.ELIF}) {
		stmt, err := parser.ifStatement()
		if err != nil {
			return nil, err
		}
		elseStmt = stmt
	}

	return ast.IfStmt{
		Condition: conditionExpr,
		Then:      thenStmt,
		Else:      elseStmt,
	}, nil
}

// block parser a block statement consisting of a list of
// statement AST nodes.
func (parser *Parser) block() ([]ast.Stmt, error) {
	statements := []ast.Stmt{}

	for !parser.isMatch([]token.TokenType{token.RCUR}) && !parser.isFinished() {
		stmt, err := parser.declaration()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)

	}

	previousToken := parser.previous()
	if previousToken.TokenType != token.RCUR {
		errMsg := fmt.Sprintf("Expected '%s' after block.", token.RCUR)
		err := CreateSyntaxError(previousToken.Line, previousToken.Column, errMsg)
		return nil, err
	}
	return statements, nil
}

// expression is the entry point for parsing expressions.
func (parser *Parser) expression() (ast.Expression, error) {
	return parser.assignment()
}

// assignment parses an assignment expression. The left-hand side may be a
// plain identifier or an indexing expression ("a[i] = v"); member targets
// (e.g. "a.length = v") are always rejected, since "length" is the only
// member and it is read-only. Compound assignment operators ("+=", "-=",
// "*=", "/=") desugar to "target = target OP value".
func (parser *Parser) assignment() (ast.Expression, error) {
	expression, err := parser.rangeExprEntry()
	if err != nil {
		return nil, err
	}

	assignTokens := append([]token.TokenType{token.ASSIGN}, compoundAssignTokenTypes...)
	if parser.isMatch(assignTokens) {
		opToken := parser.previous()
		value, err := parser.assignment()
		if err != nil {
			return nil, err
		}
		if binOp, isCompound := compoundAssignOperator[opToken.TokenType]; isCompound {
			value = ast.Binary{Left: expression, Operator: token.CreateToken(binOp, opToken.Line, opToken.Column), Right: value}
		}

		switch target := expression.(type) {
		case ast.Variable:
			return ast.Assign{Name: target.Name, Value: value}, nil
		case ast.IndexExpr:
			return ast.IndexAssign{Array: target.Array, Bracket: target.Bracket, Index: target.Index, Value: value}, nil
		default:
			msg := "Invalid assignment target"
			return nil, CreateSyntaxError(opToken.Line, opToken.Column, msg)
		}
	}

	return expression, nil
}

// rangeExprEntry sits above the logical-or level, matching the precedence
// chain: assignment -> or -> and -> equality -> comparison -> range -> term
// -> factor -> unary -> postfix -> primary.
func (parser *Parser) rangeExprEntry() (ast.Expression, error) {
	return parser.or()
}

func (parser *Parser) or() (ast.Expression, error) {
	expr, err := parser.and()
	if err != nil {
		return nil, err
	}

	for parser.isMatch([]token.TokenType{token.OR}) {
		op := parser.previous()
		rightExpr, err := parser.and()
		if err != nil {
			return nil, err
		}
		expr = ast.Logical{
			Left:     expr,
			Operator: op,
			Right:    rightExpr,
		}
	}

	return expr, nil
}

func (parser *Parser) and() (ast.Expression, error) {
	expr, err := parser.equality()
	if err != nil {
		return nil, err
	}

	for parser.isMatch([]token.TokenType{token.AND}) {
		op := parser.previous()
		rightExpr, err := parser.equality()
		if err != nil {
			return nil, err
		}

		expr = ast.Logical{
			Left:     expr,
			Operator: op,
			Right:    rightExpr,
		}
	}
	return expr, nil
}

func (parser *Parser) equality() (ast.Expression, error) {
	exp, err := parser.comparison()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(equalityTokenTypes) {
		operator := parser.previous()
		right, err := parser.comparison()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{
			Left:     exp,
			Operator: operator,
			Right:    right,
		}
	}
	return exp, nil
}

func (parser *Parser) comparison() (ast.Expression, error) {
	exp, err := parser.rangeExpr()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(comparisonTokenTypes) {
		operator := parser.previous()
		right, err := parser.rangeExpr()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{
			Left:     exp,
			Operator: operator,
			Right:    right,
		}
	}
	return exp, nil
}

// rangeExpr parses the ".." operator, sitting between comparison and term.
func (parser *Parser) rangeExpr() (ast.Expression, error) {
	exp, err := parser.term()
	if err != nil {
		return nil, err
	}
	if parser.isMatch([]token.TokenType{token.RANGE}) {
		right, err := parser.term()
		if err != nil {
			return nil, err
		}
		exp = ast.Range{Left: exp, Right: right}
	}
	return exp, nil
}

func (parser *Parser) term() (ast.Expression, error) {
	exp, err := parser.factor()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(termTokenTypes) {
		operator := parser.previous()
		right, err := parser.factor()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{
			Left:     exp,
			Operator: operator,
			Right:    right,
		}
	}
	return exp, nil
}

func (parser *Parser) factor() (ast.Expression, error) {
	exp, err := parser.unary()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(factorExpressionTypes) {
		operator := parser.previous()
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		exp = ast.Binary{
			Left:     exp,
			Operator: operator,
			Right:    right,
		}
	}
	return exp, nil
}

func (parser *Parser) unary() (ast.Expression, error) {
	if parser.isMatch(unaryExpressionTypes) {
		operator := parser.previous()
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{
			Operator: operator,
			Right:    right,
		}, nil
	}
	return parser.postfix()
}

// postfix parses zero or more trailing call ("(args)"), index ("[expr]"),
// or member (".name") suffixes applied to a primary expression.
func (parser *Parser) postfix() (ast.Expression, error) {
	expr, err := parser.primary()
	if err != nil {
		return nil, err
	}

	for {
		if parser.isMatch([]token.TokenType{token.LPA}) {
			expr, err = parser.finishCall(expr)
			if err != nil {
				return nil, err
			}
			continue
		}
		if parser.isMatch([]token.TokenType{token.LBRACKET}) {
			bracket := parser.previous()
			index, err := parser.expression()
			if err != nil {
				return nil, err
			}
			if _, err := parser.consume(token.RBRACKET, "Expected ']' after index expression."); err != nil {
				return nil, err
			}
			expr = ast.IndexExpr{Array: expr, Bracket: bracket, Index: index}
			continue
		}
		if parser.isMatch([]token.TokenType{token.DOT}) {
			name, err := parser.consume(token.IDENTIFIER, "Expected member name after '.'.")
			if err != nil {
				return nil, err
			}
			expr = ast.Member{Object: expr, Name: name}
			continue
		}
		break
	}

	return expr, nil
}

func (parser *Parser) finishCall(callee ast.Expression) (ast.Expression, error) {
	var args []ast.Expression
	if !parser.checkType(token.RPA) {
		for {
			arg, err := parser.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !parser.isMatch([]token.TokenType{token.COMMA}) {
				break
			}
		}
	}
	paren, err := parser.consume(token.RPA, "Expected ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return ast.Call{Callee: callee, Paren: paren, Arguments: args}, nil
}

// primary parses the most basic forms of expressions:
//   - Literals: true, false, null, strings, numbers
//   - Array literals: [ expr, ... ]
//   - Identifiers
//   - Grouping: (expression)
//   - The "input" builtin, parsed as a variable so it can be called
//     ("print"/"println" are statements, handled in statement)
func (parser *Parser) primary() (ast.Expression, error) {
	if parser.isMatch([]token.TokenType{token.FALSE}) {
		return ast.Literal{Value: false}, nil
	}
	if parser.isMatch([]token.TokenType{token.NULL}) {
		return ast.Literal{Value: nil}, nil
	}
	if parser.isMatch([]token.TokenType{token.TRUE}) {
		return ast.Literal{Value: true}, nil
	}

	if parser.isMatch([]token.TokenType{token.FLOAT, token.INT, token.STRING}) {
		return ast.Literal{Value: parser.previous().Literal}, nil
	}

	if parser.isMatch([]token.TokenType{token.INPUT}) {
		return ast.Variable{Name: parser.previous()}, nil
	}

	if parser.isMatch([]token.TokenType{token.IDENTIFIER}) {
		return ast.Variable{Name: parser.previous()}, nil
	}

	if parser.isMatch([]token.TokenType{token.LBRACKET}) {
		bracket := parser.previous()
		var elements []ast.Expression
		if !parser.checkType(token.RBRACKET) {
			for {
				el, err := parser.expression()
				if err != nil {
					return nil, err
				}
				elements = append(elements, el)
				if !parser.isMatch([]token.TokenType{token.COMMA}) {
					break
				}
			}
		}
		if _, err := parser.consume(token.RBRACKET, "Expected ']' after array literal."); err != nil {
			return nil, err
		}
		return ast.ArrayLit{Bracket: bracket, Elements: elements}, nil
	}

	if parser.isMatch([]token.TokenType{token.LPA}) {
		expr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		_, consumeErr := parser.consume(token.RPA, fmt.Sprintf("expression is missing '%s'", token.RPA))
		if consumeErr != nil {
			return nil, consumeErr
		}
		return ast.Grouping{Expression: expr}, nil
	}

	currentToken := parser.peek()
	return nil, CreateSyntaxError(currentToken.Line, currentToken.Column, "Unrecognised expression.")
}

// Consumes the current token by advancing the parsers current position by
// one unit if the `tokenType` matches the token type of the parsers current
// position.
//
//	Returns:
//	- A SyntaxError if the provided `tokenType` does not match the `TokenType`
//		at the parsers current position
func (parser *Parser) consume(tokenType token.TokenType, errorMessage string) (token.Token, error) {
	if parser.checkType(tokenType) {
		return parser.advance(), nil
	}
	currentToken := parser.peek()
	return token.CreateToken(token.EOF, 0, 0), CreateSyntaxError(currentToken.Line, currentToken.Column, errorMessage)
}
