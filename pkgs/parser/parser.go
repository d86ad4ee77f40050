// Package parser implements Yellow's recursive-descent grammar, built
// on a match/consume token-cursor idiom (Current/at/match/consume/expect).
package parser

import (
	"github.com/carcosa-lang/yellow/pkgs/ast"
	"github.com/carcosa-lang/yellow/pkgs/token"
)

// Parser consumes a token slice and builds a statement list. One
// token of lookahead suffices for the whole grammar.
type Parser struct {
	tokens []token.Token
	idx    int

	// sanity decays 0.15 per token consumed. It is reported in the
	// final transcript but never alters parse results - purely flavour
	// state, like the lexer's corruptionLevel.
	sanity float64
}

// New creates a Parser over an already-lexed token stream.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, sanity: 100}
}

// Parse lexes nothing itself (the caller supplies tokens) and returns
// the full statement list, or a single opaque ParseError.
func Parse(tokens []token.Token) ([]ast.Stmt, error) {
	p := New(tokens)
	return p.ParseProgram()
}

// Sanity reports the parser's decayed flavour-sanity, for transcript
// reporting only.
func (p *Parser) Sanity() float64 { return p.sanity }

func (p *Parser) Current() token.Token {
	return p.tokens[p.idx]
}

func (p *Parser) at(typ token.Type) bool {
	return p.Current().Type == typ
}

func (p *Parser) consume() token.Token {
	t := p.tokens[p.idx]
	if p.idx < len(p.tokens)-1 {
		p.idx++
	}
	p.sanity -= 0.15
	return t
}

// match consumes and returns the current token if it has typ, else
// returns (zero, false) without advancing.
func (p *Parser) match(typ token.Type) (token.Token, bool) {
	if p.at(typ) {
		return p.consume(), true
	}
	return token.Token{}, false
}

// expect consumes a token of typ or produces a ParseError.
func (p *Parser) expect(typ token.Type, what string) (token.Token, error) {
	if t, ok := p.match(typ); ok {
		return t, nil
	}
	return token.Token{}, newParseError(p.Current(), bandedMessage(p.sanity), "expected %s", what)
}

// ParseProgram parses every statement until end-of-input.
func (p *Parser) ParseProgram() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.at(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// parseBlock parses `{ statement* }`.
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.at(token.RBRACE) {
		if p.at(token.EOF) {
			return nil, newParseError(p.Current(), bandedMessage(p.sanity), "unterminated block")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.consume() // '}'
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	line := p.Current().Line
	switch p.Current().Type {
	case token.MASK:
		return p.parseMask(line)
	case token.ECHO:
		return p.parseEcho(line)
	case token.SCENE:
		return p.parseScene(line)
	case token.HASTUR:
		return p.parseHastur(line, false)
	case token.RIFT:
		return p.parseRiftLoopOrExprStmt(line)
	case token.CASSILDA:
		return p.parseCassilda(line)
	case token.CARCOSA:
		return p.parseCarcosa(line)
	case token.ACT:
		return p.parseAct(line)
	case token.REWRITE:
		return p.parseRewriteStmt(line)
	case token.REMEMBER:
		p.consume()
		name, err := p.expect(token.IDENT, "an identifier")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI, "';'"); err != nil {
			return nil, err
		}
		return ast.NewRemember(line, name.Value), nil
	case token.FORGET:
		p.consume()
		name, err := p.expect(token.IDENT, "an identifier")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI, "';'"); err != nil {
			return nil, err
		}
		return ast.NewForget(line, name.Value), nil
	case token.INFECT:
		p.consume()
		name, err := p.expect(token.IDENT, "an identifier")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI, "';'"); err != nil {
			return nil, err
		}
		return ast.NewInfect(line, name.Value), nil
	case token.WHISPER:
		return p.parseWhisper(line)
	case token.ANCHOR:
		p.consume()
		if _, err := p.expect(token.SEMI, "';'"); err != nil {
			return nil, err
		}
		return ast.NewAnchor(line), nil
	default:
		return p.parseExprStatement(line)
	}
}

func (p *Parser) parseMask(line int) (ast.Stmt, error) {
	p.consume() // mask
	name, err := p.expect(token.IDENT, "an identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.BECOMES, "'->'"); err != nil {
		return nil, err
	}
	value, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI, "';'"); err != nil {
		return nil, err
	}
	return ast.NewMask(line, name.Value, value), nil
}

func (p *Parser) parseEcho(line int) (ast.Stmt, error) {
	p.consume() // echo
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	value, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI, "';'"); err != nil {
		return nil, err
	}
	return ast.NewEchoStmt(line, value), nil
}

func (p *Parser) parseScene(line int) (ast.Stmt, error) {
	p.consume() // scene
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewScene(line, body), nil
}

func (p *Parser) parseHastur(line int, isRift bool) (ast.Stmt, error) {
	p.consume() // Hastur
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewHastur(line, cond, body, isRift), nil
}

// parseRiftLoopOrExprStmt disambiguates `rift` the loop header
// (`rift(cond) { body }`) from `rift` appearing as a bare expression
// statement (`rift(expr);`, the paradoxical-evaluation expression
// form). Both start identically: a '(' expression ')'; the
// distinguishing token is whether a '{' or a ';' follows.
func (p *Parser) parseRiftLoopOrExprStmt(line int) (ast.Stmt, error) {
	p.consume() // rift
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	if p.at(token.LBRACE) {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return ast.NewHastur(line, cond, body, true), nil
	}
	if _, err := p.expect(token.SEMI, "';'"); err != nil {
		return nil, err
	}
	return ast.NewExprStmt(line, ast.NewRift(line, cond)), nil
}

func (p *Parser) parseCassilda(line int) (ast.Stmt, error) {
	p.consume() // Cassilda
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	// No else branch is ever parsed: any `else` keyword here would
	// just be an unrecognised identifier and fail as a malformed
	// statement, which is the intended behavior.
	return ast.NewCassilda(line, cond, then), nil
}

func (p *Parser) parseCarcosa(line int) (ast.Stmt, error) {
	p.consume() // Carcosa
	if p.at(token.SEMI) {
		p.consume()
		return ast.NewCarcosa(line, nil), nil
	}
	value, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI, "';'"); err != nil {
		return nil, err
	}
	return ast.NewCarcosa(line, value), nil
}

func (p *Parser) parseAct(line int) (ast.Stmt, error) {
	p.consume() // act
	name, err := p.expect(token.IDENT, "a function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var params []string
	if !p.at(token.RPAREN) {
		for {
			param, err := p.expect(token.IDENT, "a parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, param.Value)
			if _, ok := p.match(token.COMMA); !ok {
				break
			}
		}
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewAct(line, name.Value, params, body), nil
}

func (p *Parser) parseRewriteStmt(line int) (ast.Stmt, error) {
	p.consume() // rewrite
	name, err := p.expect(token.IDENT, "an identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI, "';'"); err != nil {
		return nil, err
	}
	return ast.NewRewriteStmt(line, name.Value), nil
}

func (p *Parser) parseWhisper(line int) (ast.Stmt, error) {
	p.consume() // whisper
	src, err := p.expect(token.STRING, "a string literal")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI, "';'"); err != nil {
		return nil, err
	}
	return ast.NewWhisperStmt(line, src.Value), nil
}

func (p *Parser) parseExprStatement(line int) (ast.Stmt, error) {
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI, "';'"); err != nil {
		return nil, err
	}
	return ast.NewExprStmt(line, expr), nil
}

// ---- Expressions ----
//
// Precedence climbs comparison -> term -> factor -> primary. Every
// level is left associative.

// ParseExpression is the grammar's single entry point; comparison is
// the loosest-binding level (no assignment-expression form exists;
// assignment is only the `mask` statement).
func (p *Parser) ParseExpression() (ast.Expr, error) {
	return p.parseComparison()
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.matchOneOf(token.WHISPERS, token.SCREAMS, token.ASCENDING, token.DESCENDING)
		if !ok {
			return left, nil
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(left.Line(), left, op, right)
	}
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.matchOneOf(token.MERGED, token.TORN)
		if !ok {
			return left, nil
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(left.Line(), left, op, right)
	}
}

func (p *Parser) parseFactor() (ast.Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.matchOneOf(token.REFLECTED, token.SHATTERED)
		if !ok {
			return left, nil
		}
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(left.Line(), left, op, right)
	}
}

// matchOneOf consumes and returns the current token's type if it is
// one of the given types, without ever reporting an error - callers
// treat "none matched" as "this precedence level is exhausted."
func (p *Parser) matchOneOf(types ...token.Type) (token.Type, bool) {
	cur := p.Current().Type
	for _, t := range types {
		if cur == t {
			p.consume()
			return t, true
		}
	}
	return 0, false
}

// parseArgs parses `args := [ expression ( "," expression )* ]` up to
// (not including) the closing ')', accepting an optional trailing
// comma after the last argument.
func (p *Parser) parseArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	if p.at(token.RPAREN) {
		return args, nil
	}
	for {
		arg, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if _, ok := p.match(token.COMMA); !ok {
			break
		}
		if p.at(token.RPAREN) {
			break
		}
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.Current()
	line := tok.Line

	switch tok.Type {
	case token.NUMBER:
		p.consume()
		return ast.NewNumberLit(line, tok.Number), nil

	case token.STRING:
		p.consume()
		return ast.NewStringLit(line, tok.Value), nil

	case token.YELLOW:
		p.consume()
		return ast.NewBoolLit(line, true), nil

	case token.TATTERED:
		p.consume()
		return ast.NewBoolLit(line, false), nil

	case token.LPAREN:
		p.consume()
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return expr, nil

	case token.REWRITE:
		// Grammar: "rewrite" primary - not a parenthesized call form.
		// A literal `rewrite(x)` still parses fine since `(x)` is
		// itself a valid primary (the parenthesized-expression rule).
		p.consume()
		target, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return ast.NewRewrite(line, target), nil

	case token.SUPERPOSE:
		p.consume()
		if _, err := p.expect(token.LPAREN, "'('"); err != nil {
			return nil, err
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return ast.NewSuperpose(line, args), nil

	case token.COLLAPSE:
		p.consume()
		if _, err := p.expect(token.LPAREN, "'('"); err != nil {
			return nil, err
		}
		target, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return ast.NewCollapse(line, target), nil

	case token.MANIFEST:
		p.consume()
		if _, err := p.expect(token.LPAREN, "'('"); err != nil {
			return nil, err
		}
		name, err := p.expect(token.IDENT, "an identifier")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return ast.NewManifest(line, name.Value), nil

	case token.ENTANGLE:
		p.consume()
		if _, err := p.expect(token.LPAREN, "'('"); err != nil {
			return nil, err
		}
		a, err := p.expect(token.IDENT, "an identifier")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COMMA, "','"); err != nil {
			return nil, err
		}
		b, err := p.expect(token.IDENT, "an identifier")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return ast.NewEntangle(line, a.Value, b.Value), nil

	case token.RIFT:
		p.consume()
		if _, err := p.expect(token.LPAREN, "'('"); err != nil {
			return nil, err
		}
		target, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return ast.NewRift(line, target), nil

	case token.IDENT:
		p.consume()
		if _, ok := p.match(token.LPAREN); ok {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN, "')'"); err != nil {
				return nil, err
			}
			return ast.NewCall(line, tok.Value, args), nil
		}
		return ast.NewIdentifier(line, tok.Value), nil

	default:
		return nil, newParseError(tok, bandedMessage(p.sanity), "unexpected token %s", tok)
	}
}
