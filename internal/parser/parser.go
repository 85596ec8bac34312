package parser

import (
	"fmt"
	"lexwalk/internal/ast"
	"lexwalk/internal/lexer"
	"lexwalk/internal/token"
	"strconv"
)

const (
	_        int = iota
	LOWEST       // statement level
	LOGICAL      // and, or, xor
	RELATION     // < > <= >= = /=
	SUM          // +
	PRODUCT      // *
	PREFIX       // -X, +X or not X
	ACCESS       // t.x, t[i], f(x)
)

var precedences = map[token.TokenType]int{
	token.AND:      LOGICAL,
	token.OR:       LOGICAL,
	token.XOR:      LOGICAL,
	token.LT:       RELATION,
	token.LT_EQ:    RELATION,
	token.GT:       RELATION,
	token.GT_EQ:    RELATION,
	token.EQ:       RELATION,
	token.NOT_EQ:   RELATION,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERIOD:   ACCESS,
	token.LBRACKET: ACCESS,
	token.LPAREN:   ACCESS,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l      lexer.Tokenizer
	errors []string

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l lexer.Tokenizer) *Parser {
	p := &Parser{
		l:      l,
		errors: []string{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseVariable)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.REAL, p.parseRealLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.EMPTY, p.parseEmpty)
	p.registerPrefix(token.READ_INT, p.parseReadInt)
	p.registerPrefix(token.READ_REAL, p.parseReadReal)
	p.registerPrefix(token.READ_STRING, p.parseReadString)
	p.registerPrefix(token.PLUS, p.parseUnaryExpression)
	p.registerPrefix(token.MINUS, p.parseUnaryExpression)
	p.registerPrefix(token.NOT, p.parseUnaryExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(token.LBRACE, p.parseTupleLiteral)
	p.registerPrefix(token.FUNC, p.parseFunctionLiteral)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for tokenType := range precedences {
		if _, ok := ast.LookupBinary(tokenType); ok {
			p.registerInfix(tokenType, p.parseBinaryExpression)
		}
	}
	p.registerInfix(token.PERIOD, p.parseDotTail)
	p.registerInfix(token.LBRACKET, p.parseBracketTail)
	p.registerInfix(token.LPAREN, p.parseCallTail)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) addErrorAt(tok token.Token, message string, args ...interface{}) {
	m := fmt.Sprintf(message, args...)
	msg := fmt.Sprintf("[%3d:%2d] %s", tok.Line, tok.Column, m)
	p.errors = append(p.errors, msg)
}

func (p *Parser) addError(message string, args ...interface{}) {
	p.addErrorAt(p.curToken, message, args...)
}

func (p *Parser) peekError(t token.TokenType) {
	// Line and column are taken from the peek token, where the mismatch is.
	p.addErrorAt(p.peekToken, "expected next token to be %s, got %s instead", t, describe(p.peekToken))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.addErrorAt(tok, "unexpected %s", describe(tok))
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	} else {
		p.peekError(t)
		return false
	}
}

// skipSemicolon consumes one optional statement separator.
func (p *Parser) skipSemicolon() {
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
}

func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.SEMICOLON:
		return nil
	case token.VAR:
		return p.parseDeclaration()
	case token.PRINT:
		return p.parsePrint()
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhileLoop()
	case token.FOR:
		return p.parseForLoop()
	default:
		return p.parseExpressionOrAssignment()
	}
}

func (p *Parser) parseDeclaration() ast.Statement {
	stmt := &ast.Declaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.curToken.Literal

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
		if stmt.Value == nil {
			return nil
		}
	}

	p.skipSemicolon()

	return stmt
}

func (p *Parser) parsePrint() ast.Statement {
	stmt := &ast.Print{Token: p.curToken}

	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	stmt.Values = append(stmt.Values, first)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		stmt.Values = append(stmt.Values, value)
	}

	p.skipSemicolon()

	return stmt
}

func (p *Parser) parseReturn() ast.Statement {
	stmt := &ast.Return{Token: p.curToken}

	if !p.endsStatement(p.peekToken) {
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
		if stmt.Value == nil {
			return nil
		}
	}

	p.skipSemicolon()

	return stmt
}

// endsStatement reports whether tok can only follow a complete statement.
func (p *Parser) endsStatement(tok token.Token) bool {
	switch tok.Type {
	case token.SEMICOLON, token.END, token.ELSE, token.EOF:
		return true
	}
	return false
}

func (p *Parser) parseIf() ast.Statement {
	stmt := &ast.If{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.THEN) {
		return nil
	}

	var ok bool
	if stmt.Then, ok = p.parseBody(stmt.Token, token.END, token.ELSE); !ok {
		return nil
	}

	if p.curTokenIs(token.ELSE) {
		if stmt.Else, ok = p.parseBody(stmt.Token, token.END); !ok {
			return nil
		}
	}

	p.skipSemicolon()

	return stmt
}

func (p *Parser) parseWhileLoop() ast.Statement {
	stmt := &ast.WhileLoop{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.LOOP) {
		return nil
	}

	var ok bool
	if stmt.Body, ok = p.parseBody(stmt.Token, token.END); !ok {
		return nil
	}

	p.skipSemicolon()

	return stmt
}

func (p *Parser) parseForLoop() ast.Statement {
	stmt := &ast.ForLoop{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Variable = p.curToken.Literal

	if !p.expectPeek(token.IN) {
		return nil
	}

	p.nextToken()
	iterable := p.parseExpression(LOWEST)
	if iterable == nil {
		return nil
	}

	if p.peekTokenIs(token.RANGE) {
		p.nextToken()
		rng := &ast.Range{Token: p.curToken, Low: iterable}
		p.nextToken()
		rng.High = p.parseExpression(LOWEST)
		if rng.High == nil {
			return nil
		}
		iterable = rng
	}
	stmt.Iterable = iterable

	if !p.expectPeek(token.LOOP) {
		return nil
	}

	var ok bool
	if stmt.Body, ok = p.parseBody(stmt.Token, token.END); !ok {
		return nil
	}

	p.skipSemicolon()

	return stmt
}

// parseBody parses statements after the current token until one of the
// terminators. It leaves the parser on the terminator that closed the body.
// opening is the construct reported when the input ends first.
func (p *Parser) parseBody(opening token.Token, terminators ...token.TokenType) ([]ast.Statement, bool) {
	body := []ast.Statement{}

	p.nextToken()

	for !p.curTokenIn(terminators) {
		if p.curTokenIs(token.EOF) {
			p.addErrorAt(opening, "missing %s for '%s'", terminators[0], opening.Literal)
			return nil, false
		}
		stmt := p.parseStatement()
		if stmt != nil {
			body = append(body, stmt)
		}
		p.nextToken()
	}

	return body, true
}

func (p *Parser) curTokenIn(types []token.TokenType) bool {
	for _, t := range types {
		if p.curTokenIs(t) {
			return true
		}
	}
	return false
}

// parseExpressionOrAssignment handles the statements that start with an
// expression: a bare expression such as f(1), x := e and t[i] := e.
func (p *Parser) parseExpressionOrAssignment() ast.Statement {
	first := p.curToken

	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	if !p.peekTokenIs(token.ASSIGN) {
		p.skipSemicolon()
		return &ast.ExpressionStatement{Token: first, Expression: expr}
	}

	p.nextToken()
	assign := p.curToken
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	p.skipSemicolon()

	switch target := expr.(type) {
	case *ast.Variable:
		return &ast.Assignment{Token: target.Token, Name: target.Name, Value: value}
	case *ast.Access:
		return &ast.ArrayElementAssignment{Token: assign, Target: target, Value: value}
	default:
		p.addErrorAt(assign, "cannot assign to %s", expr.String())
		return nil
	}
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) parseVariable() ast.Expression {
	return &ast.Variable{Token: p.curToken, Name: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError("could not parse %q as integer", p.curToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseRealLiteral() ast.Expression {
	lit := &ast.RealLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError("could not parse %q as real", p.curToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	literal := p.curToken.Literal
	// the lexer only produces quoted literals of at least two characters
	return &ast.StringLiteral{Token: p.curToken, Value: literal[1 : len(literal)-1]}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseEmpty() ast.Expression {
	return &ast.EmptyLiteral{Token: p.curToken}
}

func (p *Parser) parseReadInt() ast.Expression {
	return &ast.ReadInt{Token: p.curToken}
}

func (p *Parser) parseReadReal() ast.Expression {
	return &ast.ReadReal{Token: p.curToken}
}

func (p *Parser) parseReadString() ast.Expression {
	return &ast.ReadString{Token: p.curToken}
}

var unaryOperators = map[token.TokenType]ast.UnaryOperator{
	token.PLUS:  ast.Plus,
	token.MINUS: ast.Minus,
	token.NOT:   ast.Not,
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	expression := &ast.Unary{
		Token:    p.curToken,
		Operator: unaryOperators[p.curToken.Type],
	}

	p.nextToken()

	expression.Operand = p.parseExpression(PREFIX)
	if expression.Operand == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	op, _ := ast.LookupBinary(p.curToken.Type)
	expression := &ast.Binary{
		Token:    p.curToken,
		Operator: op,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{Token: p.curToken}

	array.Elements = p.parseExpressionList(token.RBRACKET)
	if array.Elements == nil {
		return nil
	}

	return array
}

func (p *Parser) parseTupleLiteral() ast.Expression {
	tuple := &ast.TupleLiteral{Token: p.curToken, Elements: []*ast.TupleElement{}}

	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()

		element := &ast.TupleElement{Token: p.curToken}
		if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.ASSIGN) {
			element.Name = p.curToken.Literal
			p.nextToken()
			p.nextToken()
		}

		element.Value = p.parseExpression(LOWEST)
		if element.Value == nil {
			return nil
		}
		tuple.Elements = append(tuple.Elements, element)

		if !p.peekTokenIs(token.RBRACE) && !p.expectPeek(token.COMMA) {
			return nil
		}
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}

	return tuple
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	lit := &ast.FunctionLiteral{Token: p.curToken, Parameters: []string{}}

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		params, ok := p.parseFunctionParameters()
		if !ok {
			return nil
		}
		lit.Parameters = params
	}

	switch {
	case p.peekTokenIs(token.ROCKET):
		p.nextToken()
		p.nextToken()
		lit.Expression = p.parseExpression(LOWEST)
		if lit.Expression == nil {
			return nil
		}
	case p.peekTokenIs(token.IS):
		p.nextToken()
		body, ok := p.parseBody(lit.Token, token.END)
		if !ok {
			return nil
		}
		lit.Body = body
	default:
		p.addErrorAt(p.peekToken, "expected 'is' or '=>' after function parameters, got %s instead", describe(p.peekToken))
		return nil
	}

	return lit
}

func (p *Parser) parseFunctionParameters() ([]string, bool) {
	params := []string{}
	seen := map[string]bool{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		name := p.curToken.Literal
		if seen[name] {
			p.addError("duplicate parameter '%s'", name)
			return nil, false
		}
		seen[name] = true
		params = append(params, name)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}

	return params, true
}

func (p *Parser) parseDotTail(target ast.Expression) ast.Expression {
	tail := &ast.DotTail{Token: p.curToken}

	switch {
	case p.peekTokenIs(token.IDENT):
		p.nextToken()
		tail.Name = p.curToken.Literal
	case p.peekTokenIs(token.INT):
		p.nextToken()
		index, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
		if err != nil {
			p.addError("could not parse %q as tuple position", p.curToken.Literal)
			return nil
		}
		tail.Index = index
	default:
		p.addErrorAt(p.peekToken, "expected a name or a position after '.', got %s instead", describe(p.peekToken))
		return nil
	}

	return &ast.Access{Token: target.Pos(), Target: target, Tail: tail}
}

func (p *Parser) parseBracketTail(target ast.Expression) ast.Expression {
	tail := &ast.BracketTail{Token: p.curToken}

	p.nextToken()
	tail.Index = p.parseExpression(LOWEST)
	if tail.Index == nil {
		return nil
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}

	return &ast.Access{Token: target.Pos(), Target: target, Tail: tail}
}

func (p *Parser) parseCallTail(target ast.Expression) ast.Expression {
	tail := &ast.CallTail{Token: p.curToken}

	tail.Arguments = p.parseExpressionList(token.RPAREN)
	if tail.Arguments == nil {
		return nil
	}

	return &ast.Access{Token: target.Pos(), Target: target, Tail: tail}
}

func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	list = append(list, first)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		next := p.parseExpression(LOWEST)
		if next == nil {
			return nil
		}
		list = append(list, next)
	}

	if !p.expectPeek(end) {
		return nil
	}

	return list
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", tok.Literal)
}
