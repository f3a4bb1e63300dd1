package parser

import (
	"fmt"
	"strconv"

	"github.com/curiousleo/mysorescript/vm"
)

// SyntaxError is returned by ParseProgram and ParseStatement in the format `line L, col C: syntax
// error`, the shape the REPL prints verbatim.
type SyntaxError struct {
	Line, Col int
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("line %d, col %d: syntax error", e.Line, e.Col)
}

// Parser is a hand-rolled recursive-descent parser over a flat token
// stream (cur/peek tokens, advancing one at a time) rather than a
// generated one, producing vm package AST nodes directly.
type Parser struct {
	lex  *Lexer
	cur  Token
	peek Token
}

// NewParser creates a parser over source.
func NewParser(source string) *Parser {
	p := &Parser{lex: NewLexer(source)}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) fail() {
	panic(SyntaxError{Line: p.cur.Pos.Line, Col: p.cur.Pos.Column})
}

func (p *Parser) expect(t TokenType) Token {
	if p.cur.Type != t {
		p.fail()
	}
	tok := p.cur
	p.nextToken()
	return tok
}

// ParseProgram parses a whole source file as a sequence of top-level
// statements, recovering any SyntaxError into an error return.
func ParseProgram(source string) (stmts *vm.Statements, err error) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(SyntaxError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()
	p := NewParser(source)
	var nodes []vm.Node
	for p.cur.Type != TokenEOF {
		nodes = append(nodes, p.parseStatement())
	}
	return &vm.Statements{Stmts: nodes}, nil
}

// ParseStatement parses exactly one top-level statement block from
// source — the REPL's unit of input, one statement block per line —
// recovering any SyntaxError into an error return.
func ParseStatement(source string) (stmt vm.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(SyntaxError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()
	p := NewParser(source)
	stmt = p.parseStatement()
	if p.cur.Type != TokenEOF {
		p.fail()
	}
	return stmt, nil
}

func (p *Parser) parseStatement() vm.Node {
	switch p.cur.Type {
	case TokenLBrace:
		return p.parseBlock()
	case TokenVar:
		return p.parseVarDecl()
	case TokenIf:
		return p.parseIf()
	case TokenWhile:
		return p.parseWhile()
	case TokenReturn:
		return p.parseReturn()
	case TokenClass:
		return p.parseClassDecl()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseBlock() *vm.Statements {
	p.expect(TokenLBrace)
	var nodes []vm.Node
	for p.cur.Type != TokenRBrace && p.cur.Type != TokenEOF {
		nodes = append(nodes, p.parseStatement())
	}
	p.expect(TokenRBrace)
	return &vm.Statements{Stmts: nodes}
}

func (p *Parser) parseVarDecl() vm.Node {
	p.expect(TokenVar)
	name := p.expect(TokenIdentifier).Literal
	var init vm.Expression
	if p.cur.Type == TokenAssign {
		p.nextToken()
		init = p.parseExpr()
	}
	p.expect(TokenSemicolon)
	return &vm.Decl{Name: name, Init: init}
}

func (p *Parser) parseIf() vm.Node {
	p.expect(TokenIf)
	p.expect(TokenLParen)
	cond := p.parseExpr()
	p.expect(TokenRParen)
	body := p.parseStatement()
	return &vm.IfStatement{Cond: cond, Body: body}
}

func (p *Parser) parseWhile() vm.Node {
	p.expect(TokenWhile)
	p.expect(TokenLParen)
	cond := p.parseExpr()
	p.expect(TokenRParen)
	body := p.parseStatement()
	return &vm.WhileLoop{Cond: cond, Body: body}
}

func (p *Parser) parseReturn() vm.Node {
	p.expect(TokenReturn)
	var value vm.Expression
	if p.cur.Type != TokenSemicolon {
		value = p.parseExpr()
	}
	p.expect(TokenSemicolon)
	return &vm.Return{Value: value}
}

// parseExprStatement handles both `name = expr;` (Assignment) and a bare
// expression statement, disambiguated by one token of lookahead: an
// identifier followed by `=` is an assignment.
func (p *Parser) parseExprStatement() vm.Node {
	if p.cur.Type == TokenIdentifier && p.peek.Type == TokenAssign {
		name := p.cur.Literal
		p.nextToken()
		p.nextToken()
		value := p.parseExpr()
		p.expect(TokenSemicolon)
		return &vm.Assignment{Name: name, Value: value}
	}
	expr := p.parseExpr()
	p.expect(TokenSemicolon)
	return expr
}

func (p *Parser) parseIdentList() []string {
	var names []string
	if p.cur.Type == TokenIdentifier {
		names = append(names, p.cur.Literal)
		p.nextToken()
		for p.cur.Type == TokenComma {
			p.nextToken()
			names = append(names, p.expect(TokenIdentifier).Literal)
		}
	}
	return names
}

func (p *Parser) parseClassDecl() vm.Node {
	p.expect(TokenClass)
	names := []string{p.expect(TokenIdentifier).Literal}
	if p.cur.Type == TokenColon {
		p.nextToken()
		names = append(names, p.expect(TokenIdentifier).Literal)
	}
	p.expect(TokenLBrace)
	decl := &vm.ClassDecl{Names: names}
	for p.cur.Type != TokenRBrace && p.cur.Type != TokenEOF {
		if p.peek.Type == TokenSemicolon {
			decl.IVarNames = append(decl.IVarNames, p.expect(TokenIdentifier).Literal)
			p.expect(TokenSemicolon)
			continue
		}
		selector := p.expect(TokenIdentifier).Literal
		p.expect(TokenLParen)
		params := p.parseIdentList()
		p.expect(TokenRParen)
		body := p.parseBlock()
		decl.Methods = append(decl.Methods, &vm.MethodDecl{Selector: selector, Params: params, Body: body})
	}
	p.expect(TokenRBrace)
	return decl
}

// Expression grammar, lowest to highest precedence: comparison,
// additive, multiplicative, call-suffixed primary.

func (p *Parser) parseExpr() vm.Expression {
	return p.parseComparison()
}

func (p *Parser) parseComparison() vm.Expression {
	left := p.parseAdditive()
	for {
		var op string
		switch p.cur.Type {
		case TokenEq:
			op = "eq"
		case TokenNe:
			op = "ne"
		case TokenLt:
			op = "lt"
		case TokenGt:
			op = "gt"
		case TokenLe:
			op = "le"
		case TokenGe:
			op = "ge"
		default:
			return left
		}
		p.nextToken()
		right := p.parseAdditive()
		left = &vm.BinOp{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseAdditive() vm.Expression {
	left := p.parseMultiplicative()
	for p.cur.Type == TokenPlus || p.cur.Type == TokenMinus {
		op := "add"
		if p.cur.Type == TokenMinus {
			op = "sub"
		}
		p.nextToken()
		right := p.parseMultiplicative()
		left = &vm.BinOp{Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() vm.Expression {
	left := p.parseCallExpr()
	for p.cur.Type == TokenStar || p.cur.Type == TokenSlash {
		op := "mul"
		if p.cur.Type == TokenSlash {
			op = "div"
		}
		p.nextToken()
		right := p.parseCallExpr()
		left = &vm.BinOp{Op: op, Left: left, Right: right}
	}
	return left
}

// parseCallExpr parses a primary followed by any number of call
// suffixes: `.selector(args)` for a method send, or `(args)` for a
// closure invocation.
func (p *Parser) parseCallExpr() vm.Expression {
	expr := p.parsePrimary()
	for {
		switch p.cur.Type {
		case TokenDot:
			p.nextToken()
			selector := p.expect(TokenIdentifier).Literal
			p.expect(TokenLParen)
			args := p.parseArgList()
			p.expect(TokenRParen)
			expr = &vm.Call{Callee: expr, Selector: selector, Args: args}
		case TokenLParen:
			p.nextToken()
			args := p.parseArgList()
			p.expect(TokenRParen)
			expr = &vm.Call{Callee: expr, Args: args}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgList() []vm.Expression {
	var args []vm.Expression
	if p.cur.Type == TokenRParen {
		return args
	}
	args = append(args, p.parseExpr())
	for p.cur.Type == TokenComma {
		p.nextToken()
		args = append(args, p.parseExpr())
	}
	return args
}

func (p *Parser) parsePrimary() vm.Expression {
	switch p.cur.Type {
	case TokenInteger:
		lit := p.cur.Literal
		p.nextToken()
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			p.fail()
		}
		return &vm.Number{Value: n}
	case TokenString:
		lit := p.cur.Literal
		p.nextToken()
		return &vm.StringLiteral{Value: lit}
	case TokenIdentifier:
		name := p.cur.Literal
		p.nextToken()
		return &vm.VarRef{Name: name}
	case TokenNew:
		p.nextToken()
		name := p.expect(TokenIdentifier).Literal
		return &vm.NewExpr{ClassName: name}
	case TokenLParen:
		p.nextToken()
		expr := p.parseExpr()
		p.expect(TokenRParen)
		return expr
	case TokenFun:
		return p.parseClosureExpr()
	default:
		p.fail()
		return nil
	}
}

func (p *Parser) parseClosureExpr() vm.Expression {
	p.expect(TokenFun)
	name := ""
	if p.cur.Type == TokenIdentifier {
		name = p.cur.Literal
		p.nextToken()
	}
	p.expect(TokenLParen)
	params := p.parseIdentList()
	p.expect(TokenRParen)
	body := p.parseBlock()
	return &vm.ClosureDecl{Name: name, Params: params, Body: body}
}
