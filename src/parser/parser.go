// parser.go implements the recursive-descent, precedence-climbing parser
// of spec.md §4.2. Grounded on the shape of the teacher's frontend/tree.go
// driver (a Parse(src) entry point that reports into a shared diagnostic
// sink), but not on its goyacc grammar: spec.md requires a specific
// hand-written precedence table and an explicit panic-mode synchronization
// set that a generated grammar does not expose at the granularity this
// spec needs.

package parser

import (
	"strconv"

	"slc/src/ast"
	"slc/src/token"
	"slc/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// parser holds the token cursor and the shared diagnostic sink.
type parser struct {
	toks  []token.Token
	pos   int
	diags *util.Engine

	// noStructLit disables struct-literal parsing in parseIdentifierLed
	// while > 0. Needed the same way Rust's grammar does: in a condition
	// position ("if ID {", "while ID {") the opening brace belongs to the
	// statement's block, not to a trailing struct literal, so a bare
	// "ID {" must parse as just the identifier there.
	noStructLit int
}

// parseCondExpr parses an expression in "no struct literal" mode, for use
// in if/while condition position; see the noStructLit field doc.
func (p *parser) parseCondExpr() ast.Expr {
	p.noStructLit++
	e := p.parseExpr()
	p.noStructLit--
	return e
}

// parseNestedExpr parses an expression inside a delimiter pair that
// already disambiguates it from a block (parens, brackets, call args,
// struct-literal field values), so struct-literal parsing is always
// allowed there even while a surrounding if/while condition suppresses it.
func (p *parser) parseNestedExpr() ast.Expr {
	saved := p.noStructLit
	p.noStructLit = 0
	e := p.parseExpr()
	p.noStructLit = saved
	return e
}

// ---------------------
// ----- Constants -----
// ---------------------

// syncSet is the panic-mode synchronization set of spec.md §4.2: after an
// unexpected token the parser skips tokens until it sees one of these (or
// EOF), then resumes.
var syncSet = map[token.Kind]bool{
	token.LBRACE: true, token.SEMI: true, token.RBRACE: true,
	token.FUN: true, token.RECORD: true, token.STRUCT: true, token.ENUM: true,
	token.VAR: true, token.IF: true, token.WHILE: true, token.RETURN: true,
}

// ---------------------
// ----- functions -----
// ---------------------

// Parse lexes and parses src, returning the root of the untyped AST. On
// any ParseError the parser recovers (panic-mode) and keeps going, so a
// single run may report several diagnostics; Parse never aborts except at
// EOF, per spec.md §4.2.
func Parse(src string, diags *util.Engine) *ast.Root {
	toks := token.Lex(src, diags)
	p := &parser{toks: toks, diags: diags}
	return p.parseRoot()
}

// ----------------------
// ----- cursor ops -----
// ----------------------

func (p *parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF sentinel.
	}
	return p.toks[p.pos]
}

func (p *parser) at(k token.Kind) bool {
	return p.cur().Kind == k
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// expect consumes the current token if it has kind k, else reports a
// ParseError and returns a synthetic token of kind k, carrying the current
// token's span, so construction can continue (spec.md glossary: "synthetic
// token").
func (p *parser) expect(k token.Kind) token.Token {
	if p.at(k) {
		return p.advance()
	}
	p.diags.Error(util.ParseError, p.cur().Span, "expected %s, got %s", k, p.cur().Kind)
	return token.Token{Kind: k, Span: p.cur().Span}
}

// synchronize discards tokens until one of syncSet (or EOF) is seen.
func (p *parser) synchronize() {
	for !p.at(token.EOF) {
		if syncSet[p.cur().Kind] {
			return
		}
		p.advance()
	}
}

// ------------------------
// ----- top level ops -----
// ------------------------

func (p *parser) parseRoot() *ast.Root {
	start := p.cur().Span
	root := &ast.Root{}
	for !p.at(token.EOF) {
		before := p.pos
		if decl := p.parseTopLevel(); decl != nil {
			root.Children = append(root.Children, decl)
		}
		if p.pos == before {
			// Guard against an unconsumed, unrecognized token looping forever.
			p.advance()
		}
	}
	root.Sp = start.Join(p.cur().Span)
	return root
}

func (p *parser) parseTopLevel() ast.TopLevel {
	switch p.cur().Kind {
	case token.IMPORT:
		return p.parseImportDecl()
	case token.RECORD, token.STRUCT:
		return p.parseRecordDecl()
	case token.ENUM:
		return p.parseEnumDecl()
	case token.EXTERN, token.STATIC, token.PUB, token.FUN:
		return p.parseFunDecl()
	default:
		p.diags.Error(util.ParseError, p.cur().Span, "expected a top-level declaration, got %s", p.cur().Kind)
		p.synchronize()
		return nil
	}
}

func (p *parser) parseImportDecl() *ast.ImportDecl {
	start := p.advance().Span // 'import'
	path := ""
	if p.at(token.STRING) {
		path = p.advance().Lexeme
	} else if p.at(token.ID) {
		path = p.advance().Lexeme
	} else {
		p.diags.Error(util.ParseError, p.cur().Span, "expected import path, got %s", p.cur().Kind)
	}
	end := p.expect(token.SEMI).Span
	return &ast.ImportDecl{Path: path, Sp: start.Join(end)}
}

func (p *parser) parseRecordDecl() *ast.RecordDecl {
	start := p.advance().Span // 'record' or 'struct'
	name := p.expect(token.ID).Lexeme
	p.expect(token.LBRACE)
	var fields []*ast.Parameter
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		fields = append(fields, p.parseParameter())
		if !p.at(token.RBRACE) {
			p.expect(token.COMMA)
		}
	}
	end := p.expect(token.RBRACE).Span
	return &ast.RecordDecl{Name: name, Fields: fields, Sp: start.Join(end)}
}

func (p *parser) parseEnumDecl() *ast.EnumDecl {
	start := p.advance().Span // 'enum'
	name := p.expect(token.ID).Lexeme
	p.expect(token.LBRACE)
	var tags []string
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		tags = append(tags, p.expect(token.ID).Lexeme)
		if !p.at(token.RBRACE) {
			p.expect(token.COMMA)
		}
	}
	end := p.expect(token.RBRACE).Span
	return &ast.EnumDecl{Name: name, Tags: tags, Sp: start.Join(end)}
}

func (p *parser) parseModifiers() ast.Modifier {
	var m ast.Modifier
	for {
		switch p.cur().Kind {
		case token.EXTERN:
			m |= ast.ModExtern
			p.advance()
		case token.STATIC:
			m |= ast.ModStatic
			p.advance()
		case token.PUB:
			m |= ast.ModPub
			p.advance()
		default:
			return m
		}
	}
}

// parseFunDecl implements the state machine of spec.md §4.2:
//
//	start -modifier*-> saw-fun -ID-> have-name -(-> params -)-> maybe-return
//	                                                  '->' Type -> return-set
//	                                        '{' or ';' -> body-or-decl
func (p *parser) parseFunDecl() *ast.FunDecl {
	start := p.cur().Span
	mods := p.parseModifiers()
	p.expect(token.FUN)
	name := p.expect(token.ID).Lexeme
	p.expect(token.LPAREN)
	params, variadic := p.parseParams()
	p.expect(token.RPAREN)

	var ret ast.TypeExpr
	if p.at(token.ARROW) {
		p.advance()
		ret = p.parseType()
	}

	decl := &ast.FunDecl{Name: name, Params: params, Variadic: variadic, ReturnType: ret, Modifiers: mods}

	switch {
	case p.at(token.LBRACE):
		decl.Body = p.parseBlock()
		decl.Sp = start.Join(decl.Body.Sp)
	case p.at(token.ASSIGN):
		// An explicit lambda expression body: "fun f(...) -> T = expr;"
		p.advance()
		decl.Lambda = p.parseExpr()
		end := p.expect(token.SEMI).Span
		decl.Sp = start.Join(end)
	case p.at(token.SEMI):
		end := p.advance().Span
		decl.Sp = start.Join(end)
	default:
		p.diags.Error(util.ParseError, p.cur().Span, "expected function body or ';', got %s", p.cur().Kind)
		p.synchronize()
		decl.Sp = start.Join(p.cur().Span)
	}
	return decl
}

func (p *parser) parseParams() ([]*ast.Parameter, bool) {
	var params []*ast.Parameter
	variadic := false
	if p.at(token.RPAREN) {
		return params, variadic
	}
	for {
		if p.at(token.ELLIPSIS) {
			p.advance()
			variadic = true
			break
		}
		params = append(params, p.parseParameter())
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return params, variadic
}

func (p *parser) parseParameter() *ast.Parameter {
	start := p.cur().Span
	name := p.expect(token.ID).Lexeme
	p.expect(token.COLON)
	typ := p.parseType()
	return &ast.Parameter{Name: name, Type: typ, Sp: start.Join(typ.Span())}
}

func (p *parser) parseType() ast.TypeExpr {
	start := p.cur().Span
	switch p.cur().Kind {
	case token.STAR:
		p.advance()
		elem := p.parseType()
		return &ast.PointerTo{Elem: elem, Sp: start.Join(elem.Span())}
	case token.AMP:
		p.advance()
		elem := p.parseType()
		return &ast.ReferenceTo{Elem: elem, Sp: start.Join(elem.Span())}
	case token.LBRACKET:
		p.advance()
		size := p.parseExpr()
		p.expect(token.RBRACKET)
		elem := p.parseType()
		return &ast.ArrayOf{Size: size, Elem: elem, Sp: start.Join(elem.Span())}
	default:
		tok := p.expect(token.ID)
		return &ast.NamedType{Name: tok.Lexeme, Sp: tok.Span}
	}
}

// --------------------------
// ----- statements/block -----
// --------------------------

func (p *parser) parseBlock() *ast.Block {
	start := p.expect(token.LBRACE).Span
	b := &ast.Block{}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		before := p.pos
		if stmtOrResult(p, b) {
			// Block ended with a trailing result expression; nothing more to parse.
			break
		}
		if p.pos == before {
			p.advance()
		}
	}
	end := p.expect(token.RBRACE).Span
	b.Sp = start.Join(end)
	return b
}

// stmtOrResult parses one statement or, if the next construct is a bare
// expression not followed by ';', the block's trailing result expression
// (spec.md §4.2's statement-vs-expression policy). It returns true if it
// consumed the block's trailing result expression (the caller should stop).
func stmtOrResult(p *parser, b *ast.Block) bool {
	switch p.cur().Kind {
	case token.VAR:
		b.Stmts = append(b.Stmts, p.parseVarDecl())
	case token.RETURN:
		b.Stmts = append(b.Stmts, p.parseReturn())
	case token.IF:
		b.Stmts = append(b.Stmts, p.parseIfStmt())
	case token.WHILE:
		b.Stmts = append(b.Stmts, p.parseWhile())
	case token.BREAK:
		sp := p.advance().Span
		p.expect(token.SEMI)
		b.Stmts = append(b.Stmts, &ast.Break{Sp: sp})
	case token.CONTINUE:
		sp := p.advance().Span
		p.expect(token.SEMI)
		b.Stmts = append(b.Stmts, &ast.Continue{Sp: sp})
	case token.ID:
		// Either an assignment "ID = Expr ;" or an expression statement.
		if p.peekIsAssign() {
			b.Stmts = append(b.Stmts, p.parseAssign())
		} else {
			return p.parseExprStmtOrResult(b)
		}
	default:
		return p.parseExprStmtOrResult(b)
	}
	return false
}

// peekIsAssign reports whether the parser is looking at "ID =" (and not
// "ID == ..." or a call/field-access expression).
func (p *parser) peekIsAssign() bool {
	if p.pos+1 >= len(p.toks) {
		return false
	}
	return p.toks[p.pos+1].Kind == token.ASSIGN
}

func (p *parser) parseExprStmtOrResult(b *ast.Block) bool {
	start := p.cur().Span
	e := p.parseExpr()
	if p.at(token.SEMI) {
		end := p.advance().Span
		b.Stmts = append(b.Stmts, &ast.ExprStmt{X: e, Sp: start.Join(end)})
		return false
	}
	if p.at(token.RBRACE) {
		// Trailing expression with no ';': the block's result.
		b.Result = e
		return true
	}
	p.diags.Error(util.ParseError, p.cur().Span, "expected ';' after expression statement, got %s", p.cur().Kind)
	b.Stmts = append(b.Stmts, &ast.ExprStmt{X: e, Sp: start.Join(e.Span())})
	return false
}

func (p *parser) parseVarDecl() *ast.VarDecl {
	start := p.advance().Span // 'var'
	name := p.expect(token.ID).Lexeme
	p.expect(token.COLON)
	typ := p.parseType()
	var init ast.Expr
	if p.at(token.ASSIGN) {
		p.advance()
		init = p.parseExpr()
	}
	end := p.expect(token.SEMI).Span
	return &ast.VarDecl{Name: name, Type: typ, Init: init, Sp: start.Join(end)}
}

func (p *parser) parseAssign() *ast.Assign {
	start := p.cur().Span
	name := p.advance().Lexeme // ID
	p.expect(token.ASSIGN)
	val := p.parseExpr()
	end := p.expect(token.SEMI).Span
	return &ast.Assign{Target: name, Value: val, Sp: start.Join(end)}
}

func (p *parser) parseReturn() *ast.Return {
	start := p.advance().Span // 'return'
	var val ast.Expr
	if !p.at(token.SEMI) {
		val = p.parseExpr()
	}
	end := p.expect(token.SEMI).Span
	return &ast.Return{Value: val, Sp: start.Join(end)}
}

func (p *parser) parseIfStmt() *ast.If {
	start := p.advance().Span // 'if'
	cond := p.parseCondExpr()
	then := p.parseBlock()
	n := &ast.If{Cond: cond, Then: then, Sp: start.Join(then.Sp)}
	if p.at(token.ELSE) {
		p.advance()
		if p.at(token.IF) {
			// "else if": wrap the nested If as the sole statement of a
			// synthetic Else block.
			nested := p.parseIfStmt()
			n.Else = &ast.Block{Stmts: []ast.Stmt{nested}, Sp: nested.Sp}
		} else {
			n.Else = p.parseBlock()
		}
		n.Sp = start.Join(n.Else.Sp)
	}
	return n
}

func (p *parser) parseWhile() *ast.While {
	start := p.advance().Span // 'while'
	cond := p.parseCondExpr()
	body := p.parseBlock()
	return &ast.While{Cond: cond, Body: body, Sp: start.Join(body.Sp)}
}

// --------------------------
// ----- expressions -----
// --------------------------
//
// Precedence climbing per spec.md §4.2, low to high:
//   1. comparison: == != < <= > >=
//   2. additive:   + -
//   3. multiplicative: * / %
//   4. power:      ^ (right-associative)
//   5. unary prefix: - ! * &
//   6. primary

func (p *parser) parseExpr() ast.Expr {
	return p.parseComparison()
}

func (p *parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for isComparisonOp(p.cur().Kind) {
		op := p.advance()
		right := p.parseAdditive()
		left = &ast.BinOp{Op: int(op.Kind), Left: left, Right: right, Sp: left.Span().Join(right.Span())}
	}
	return left
}

func isComparisonOp(k token.Kind) bool {
	switch k {
	case token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE:
		return true
	}
	return false
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.at(token.PLUS) || p.at(token.MINUS) {
		op := p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinOp{Op: int(op.Kind), Left: left, Right: right, Sp: left.Span().Join(right.Span())}
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parsePower()
	for p.at(token.STAR) || p.at(token.SLASH) || p.at(token.PERCENT) {
		op := p.advance()
		right := p.parsePower()
		left = &ast.BinOp{Op: int(op.Kind), Left: left, Right: right, Sp: left.Span().Join(right.Span())}
	}
	return left
}

// parsePower is right-associative: a ^ b ^ c == a ^ (b ^ c).
func (p *parser) parsePower() ast.Expr {
	left := p.parseUnary()
	if p.at(token.CARET) {
		p.advance()
		right := p.parsePower()
		return &ast.BinOp{Op: int(token.CARET), Left: left, Right: right, Sp: left.Span().Join(right.Span())}
	}
	return left
}

func (p *parser) parseUnary() ast.Expr {
	switch p.cur().Kind {
	case token.MINUS, token.NOT, token.STAR, token.AMP:
		op := p.advance()
		x := p.parseUnary()
		return &ast.UnaryOp{Op: int(op.Kind), X: x, Sp: op.Span.Join(x.Span())}
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parsePrimary() ast.Expr {
	tok := p.cur()
	switch tok.Kind {
	case token.INTEGER:
		p.advance()
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.diags.Error(util.ParseError, tok.Span, "malformed integer literal %q", tok.Lexeme)
		}
		return &ast.IntLit{Value: v, Sp: tok.Span}
	case token.FLOAT:
		p.advance()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.diags.Error(util.ParseError, tok.Span, "malformed float literal %q", tok.Lexeme)
		}
		return &ast.FloatLit{Value: v, Sp: tok.Span}
	case token.STRING:
		p.advance()
		return &ast.StringLit{Value: tok.Lexeme, Sp: tok.Span}
	case token.BOOLEAN:
		p.advance()
		return &ast.BoolLit{Value: tok.Lexeme == "true", Sp: tok.Span}
	case token.LPAREN:
		p.advance()
		e := p.parseNestedExpr()
		p.expect(token.RPAREN)
		return e
	case token.LBRACKET:
		return p.parseArrayLit()
	case token.IF:
		return p.parseIfExpr()
	case token.ID:
		return p.parseIdentifierLed()
	default:
		p.diags.Error(util.ParseError, tok.Span, "expected an expression, got %s", tok.Kind)
		p.advance()
		return &ast.IntLit{Value: 0, Sp: tok.Span}
	}
}

func (p *parser) parseArrayLit() *ast.ArrayLit {
	start := p.advance().Span // '['
	var elems []ast.Expr
	for !p.at(token.RBRACKET) && !p.at(token.EOF) {
		elems = append(elems, p.parseNestedExpr())
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	end := p.expect(token.RBRACKET).Span
	return &ast.ArrayLit{Elems: elems, Sp: start.Join(end)}
}

func (p *parser) parseIfExpr() *ast.IfExpr {
	start := p.advance().Span // 'if'
	cond := p.parseCondExpr()
	then := p.parseBlock()
	n := &ast.IfExpr{Cond: cond, Then: then, Sp: start.Join(then.Sp)}
	if p.at(token.ELSE) {
		p.advance()
		n.Else = p.parseBlock()
		n.Sp = start.Join(n.Else.Sp)
	}
	return n
}

// parseIdentifierLed parses every construct that begins with an
// identifier: a bare IdRef, a Call, a FieldAccess chain, an EnumTagRef
// ("Name::Tag"), or a StructLit ("Name { field: expr, ... }").
func (p *parser) parseIdentifierLed() ast.Expr {
	tok := p.advance() // ID
	var base ast.Expr

	switch p.cur().Kind {
	case token.LPAREN:
		base = p.parseCallArgs(tok)
	case token.DCOLON:
		p.advance()
		tag := p.expect(token.ID)
		base = &ast.EnumTagRef{EnumName: tok.Lexeme, Tag: tag.Lexeme, Sp: tok.Span.Join(tag.Span)}
	case token.LBRACE:
		if p.noStructLit > 0 {
			base = &ast.IdRef{Name: tok.Lexeme, Sp: tok.Span}
			break
		}
		base = p.parseStructLit(tok)
	default:
		base = &ast.IdRef{Name: tok.Lexeme, Sp: tok.Span}
	}

	for p.at(token.DOT) {
		p.advance()
		field := p.expect(token.ID)
		base = &ast.FieldAccess{X: base, Field: field.Lexeme, Sp: base.Span().Join(field.Span)}
	}
	return base
}

func (p *parser) parseCallArgs(callee token.Token) *ast.Call {
	p.advance() // '('
	var args []ast.Arg
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		args = append(args, p.parseArg())
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	end := p.expect(token.RPAREN).Span
	return &ast.Call{Callee: callee.Lexeme, Args: args, Sp: callee.Span.Join(end)}
}

// parseArg accepts the optional named-argument form "ID '=' Expr"
// (SPEC_FULL.md §C.2); it backtracks to a positional Expr if the second
// token is not '='.
func (p *parser) parseArg() ast.Arg {
	if p.at(token.ID) && p.pos+1 < len(p.toks) && p.toks[p.pos+1].Kind == token.ASSIGN {
		name := p.advance().Lexeme
		p.advance() // '='
		return ast.Arg{Name: name, Value: p.parseNestedExpr()}
	}
	return ast.Arg{Value: p.parseNestedExpr()}
}

func (p *parser) parseStructLit(name token.Token) *ast.StructLit {
	p.advance() // '{'
	var fields []ast.StructLitField
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		fname := p.expect(token.ID).Lexeme
		p.expect(token.COLON)
		val := p.parseNestedExpr()
		fields = append(fields, ast.StructLitField{Name: fname, Value: val})
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	end := p.expect(token.RBRACE).Span
	return &ast.StructLit{TypeName: name.Lexeme, Fields: fields, Sp: name.Span.Join(end)}
}
