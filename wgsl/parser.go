package wgsl

import (
	"strings"
)

// Parser parses WGSL tokens into an AST. Parsing stops at the first error.
type Parser struct {
	source  string
	tokens  []Token
	current int
}

// NewParser creates a new parser for the tokens of source.
func NewParser(source string, tokens []Token) *Parser {
	return &Parser{
		source: source,
		tokens: tokens,
	}
}

// ParseModule tokenizes and parses source into a syntax tree.
func ParseModule(source string) (*Module, error) {
	module, err := NewParser(source, NewLexer(source).Tokenize()).Parse()
	if err != nil {
		return nil, err
	}
	return module, nil
}

// Parse parses the tokens and returns a Module AST.
func (p *Parser) Parse() (*Module, *ParseError) {
	module := &Module{}

	for !p.isAtEnd() {
		if p.match(TokenSemicolon) {
			continue
		}
		if p.check(TokenEnable) {
			enable, err := p.enableDirective()
			if err != nil {
				return nil, err
			}
			module.Enables = append(module.Enables, enable)
			continue
		}
		decl, err := p.declaration()
		if err != nil {
			return nil, err
		}
		module.Decls = append(module.Decls, decl)
	}

	return module, nil
}

func (p *Parser) enableDirective() (Enable, *ParseError) {
	start := p.advance()
	enable := Enable{}
	for {
		name, err := p.expectIdent()
		if err != nil {
			return enable, err
		}
		enable.Extensions = append(enable.Extensions, name)
		if !p.match(TokenComma) || p.check(TokenSemicolon) {
			break
		}
	}
	end, err := p.expect(TokenSemicolon)
	if err != nil {
		return enable, err
	}
	enable.Span = start.Span.Until(end.Span)
	return enable, nil
}

// declaration parses a top-level declaration.
func (p *Parser) declaration() (Decl, *ParseError) {
	attrs, err := p.attributes()
	if err != nil {
		return nil, err
	}

	switch p.peek().Kind {
	case TokenFn:
		return p.functionDecl(attrs)
	case TokenStruct:
		return p.structDecl(attrs)
	case TokenVar:
		return p.globalVarDecl(attrs)
	}

	if len(attrs) == 0 {
		switch p.peek().Kind {
		case TokenLet:
			return p.letDecl(true)
		case TokenType:
			return p.aliasDecl()
		}
	}
	return nil, errUnexpected(p.source, p.peek(), "global declaration")
}

// attributes parses a list of attributes (@location(0), @stage(vertex), etc.)
func (p *Parser) attributes() ([]Attribute, *ParseError) {
	var attrs []Attribute

	for p.check(TokenAt) {
		at := p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}

		attr := Attribute{Name: name, Span: at.Span.Until(name.Span)}
		if p.match(TokenLeftParen) {
			for !p.check(TokenRightParen) {
				arg, err := p.expression()
				if err != nil {
					return nil, err
				}
				attr.Args = append(attr.Args, arg)
				if !p.match(TokenComma) {
					break
				}
			}
			closing, err := p.expect(TokenRightParen)
			if err != nil {
				return nil, err
			}
			attr.Span = at.Span.Until(closing.Span)
		}
		attrs = append(attrs, attr)
	}

	return attrs, nil
}

// functionDecl parses a function declaration.
func (p *Parser) functionDecl(attrs []Attribute) (*FunctionDecl, *ParseError) {
	start := p.advance() // fn

	name, err := p.definitionName(true)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}

	fn := &FunctionDecl{Name: name, Attributes: attrs}
	for !p.check(TokenRightParen) {
		param, err := p.parameter()
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, param)
		if !p.match(TokenComma) {
			break
		}
	}
	if _, err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	if p.match(TokenArrow) {
		if fn.ReturnAttrs, err = p.attributes(); err != nil {
			return nil, err
		}
		if fn.ReturnType, err = p.typeDecl(); err != nil {
			return nil, err
		}
	}

	if fn.Body, err = p.block(); err != nil {
		return nil, err
	}
	fn.Span = start.Span.Until(fn.Body.Span)
	return fn, nil
}

func (p *Parser) parameter() (*Parameter, *ParseError) {
	attrs, err := p.attributes()
	if err != nil {
		return nil, err
	}
	name, err := p.definitionName(true)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	ty, err := p.typeDecl()
	if err != nil {
		return nil, err
	}
	return &Parameter{
		Name:       name,
		Type:       ty,
		Attributes: attrs,
		Span:       name.Span.Until(ty.Pos()),
	}, nil
}

// structDecl parses a struct declaration. Members may be separated by
// commas or semicolons.
func (p *Parser) structDecl(attrs []Attribute) (*StructDecl, *ParseError) {
	start := p.advance() // struct

	name, err := p.definitionName(true)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLeftBrace); err != nil {
		return nil, err
	}

	decl := &StructDecl{Name: name, Attributes: attrs}
	for !p.check(TokenRightBrace) {
		member, err := p.structMember()
		if err != nil {
			return nil, err
		}
		decl.Members = append(decl.Members, member)
		if !p.match(TokenComma) && !p.match(TokenSemicolon) {
			break
		}
	}
	end, err := p.expect(TokenRightBrace)
	if err != nil {
		return nil, err
	}
	decl.Span = start.Span.Until(end.Span)
	return decl, nil
}

func (p *Parser) structMember() (*StructMember, *ParseError) {
	attrs, err := p.attributes()
	if err != nil {
		return nil, err
	}
	name, err := p.definitionName(true)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	ty, err := p.typeDecl()
	if err != nil {
		return nil, err
	}
	return &StructMember{
		Name:       name,
		Type:       ty,
		Attributes: attrs,
		Span:       name.Span.Until(ty.Pos()),
	}, nil
}

// globalVarDecl parses a module-scope var. The reserved-keyword check is
// applied once the whole declaration is known, because it reports the
// declaration span.
func (p *Parser) globalVarDecl(attrs []Attribute) (*VarDecl, *ParseError) {
	decl, err := p.varDecl(false)
	if err != nil {
		return nil, err
	}
	decl.Attributes = attrs
	if isReserved(decl.Name.Name) {
		return nil, errReservedKeyword(p.source, decl.DeclSpan)
	}
	return decl, nil
}

// varDecl parses var[<space[, access]>] name[: type][= init];
func (p *Parser) varDecl(checkKeyword bool) (*VarDecl, *ParseError) {
	start := p.advance() // var
	decl := &VarDecl{}

	introEnd := start.Span.End
	if p.match(TokenLess) {
		space, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		decl.AddressSpace = &space
		if p.match(TokenComma) {
			access, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			decl.AccessMode = &access
		}
		closing, err := p.expectGreater()
		if err != nil {
			return nil, err
		}
		introEnd = closing.Span.End
	}

	name, err := p.definitionName(checkKeyword)
	if err != nil {
		return nil, err
	}
	decl.Name = name

	if p.match(TokenColon) {
		if decl.Type, err = p.typeDecl(); err != nil {
			return nil, err
		}
	}
	if p.match(TokenEqual) {
		if decl.Init, err = p.expression(); err != nil {
			return nil, err
		}
	}
	end, err := p.expect(TokenSemicolon)
	if err != nil {
		return nil, err
	}

	decl.DeclSpan = Span{Start: introEnd, End: end.Span.End}
	decl.Span = start.Span.Until(end.Span)
	return decl, nil
}

// letDecl parses let name[: type] = init; Module-scope lets may omit the
// initializer syntactically; lowering rejects that.
func (p *Parser) letDecl(moduleScope bool) (*LetDecl, *ParseError) {
	start := p.advance() // let

	name, err := p.definitionName(true)
	if err != nil {
		return nil, err
	}
	decl := &LetDecl{Name: name}

	if p.match(TokenColon) {
		if decl.Type, err = p.typeDecl(); err != nil {
			return nil, err
		}
	}
	if moduleScope {
		if p.match(TokenEqual) {
			if decl.Init, err = p.expression(); err != nil {
				return nil, err
			}
		}
	} else {
		if _, err := p.expect(TokenEqual); err != nil {
			return nil, err
		}
		if decl.Init, err = p.expression(); err != nil {
			return nil, err
		}
	}

	end, err := p.expect(TokenSemicolon)
	if err != nil {
		return nil, err
	}
	decl.Span = start.Span.Until(end.Span)
	return decl, nil
}

// aliasDecl parses type Name = T;
func (p *Parser) aliasDecl() (*AliasDecl, *ParseError) {
	start := p.advance() // type

	name, err := p.definitionName(true)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenEqual); err != nil {
		return nil, err
	}
	ty, err := p.typeDecl()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(TokenSemicolon)
	if err != nil {
		return nil, err
	}
	return &AliasDecl{Name: name, Type: ty, Span: start.Span.Until(end.Span)}, nil
}

// definitionName parses the name introduced by a declaration. Keyword
// tokens are accepted here so they can be reported as reserved names.
func (p *Parser) definitionName(checkKeyword bool) (Ident, *ParseError) {
	tok := p.peek()
	if tok.Kind != TokenIdent && !tok.Kind.IsKeyword() {
		return Ident{}, errUnexpected(p.source, tok, "identifier")
	}
	p.advance()

	if strings.HasPrefix(tok.Lexeme, reservedPrefix) {
		return Ident{}, errReservedPrefix(p.source, tok.Span)
	}
	if checkKeyword && isReserved(tok.Lexeme) {
		return Ident{}, errReservedKeyword(p.source, tok.Span)
	}
	return Ident{Name: tok.Lexeme, Span: tok.Span}, nil
}

// typeDecl parses a type specifier.
func (p *Parser) typeDecl() (Type, *ParseError) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	switch name.Name {
	case "array":
		return p.arrayType(name)
	case "ptr":
		return p.ptrType(name)
	}

	named := &NamedType{Name: name, Span: name.Span}
	if p.match(TokenLess) {
		for {
			param, err := p.typeDecl()
			if err != nil {
				return nil, err
			}
			named.TypeParams = append(named.TypeParams, param)
			if !p.match(TokenComma) {
				break
			}
		}
		closing, err := p.expectGreater()
		if err != nil {
			return nil, err
		}
		named.Span = name.Span.Until(closing.Span)
	}
	return named, nil
}

// arrayType parses array<T> and array<T, N> after the array keyword.
func (p *Parser) arrayType(name Ident) (Type, *ParseError) {
	if _, err := p.expect(TokenLess); err != nil {
		return nil, err
	}
	elem, err := p.typeDecl()
	if err != nil {
		return nil, err
	}

	arr := &ArrayType{Element: elem}
	if p.match(TokenComma) {
		// A full expression would consume the closing '>' as an operator.
		if arr.Size, err = p.unary(); err != nil {
			return nil, err
		}
	}
	closing, err := p.expectGreater()
	if err != nil {
		return nil, err
	}
	arr.Span = name.Span.Until(closing.Span)
	return arr, nil
}

// ptrType parses ptr<space, T[, access]> after the ptr keyword.
func (p *Parser) ptrType(name Ident) (Type, *ParseError) {
	if _, err := p.expect(TokenLess); err != nil {
		return nil, err
	}
	space, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenComma); err != nil {
		return nil, err
	}
	pointee, err := p.typeDecl()
	if err != nil {
		return nil, err
	}

	ptr := &PtrType{AddressSpace: space, PointeeType: pointee}
	if p.match(TokenComma) {
		access, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		ptr.AccessMode = &access
	}
	closing, err := p.expectGreater()
	if err != nil {
		return nil, err
	}
	ptr.Span = name.Span.Until(closing.Span)
	return ptr, nil
}

// block parses { statements }.
func (p *Parser) block() (*BlockStmt, *ParseError) {
	start, err := p.expect(TokenLeftBrace)
	if err != nil {
		return nil, err
	}

	block := &BlockStmt{}
	for !p.check(TokenRightBrace) {
		if p.isAtEnd() {
			return nil, errUnexpected(p.source, p.peek(), "'}'")
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	end := p.advance()
	block.Span = start.Span.Until(end.Span)
	return block, nil
}

// statement parses a statement. Empty statements yield nil.
func (p *Parser) statement() (Stmt, *ParseError) {
	switch p.peek().Kind {
	case TokenSemicolon:
		p.advance()
		return nil, nil
	case TokenLeftBrace:
		return p.block()
	case TokenReturn:
		return p.returnStmt()
	case TokenIf:
		return p.ifStmt()
	case TokenSwitch:
		return p.switchStmt()
	case TokenLoop:
		return p.loopStmt()
	case TokenFor:
		return p.forStmt()
	case TokenWhile:
		return p.whileStmt()
	case TokenBreak:
		tok := p.advance()
		end, err := p.expect(TokenSemicolon)
		if err != nil {
			return nil, err
		}
		return &BreakStmt{Span: tok.Span.Until(end.Span)}, nil
	case TokenContinue:
		tok := p.advance()
		end, err := p.expect(TokenSemicolon)
		if err != nil {
			return nil, err
		}
		return &ContinueStmt{Span: tok.Span.Until(end.Span)}, nil
	case TokenDiscard:
		tok := p.advance()
		end, err := p.expect(TokenSemicolon)
		if err != nil {
			return nil, err
		}
		return &DiscardStmt{Span: tok.Span.Until(end.Span)}, nil
	case TokenVar:
		return p.varDecl(true)
	case TokenLet:
		return p.letDecl(false)
	case TokenIdent, TokenStar, TokenLeftParen:
		stmt, err := p.simpleStatement()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenSemicolon); err != nil {
			return nil, err
		}
		return stmt, nil
	}
	return nil, errUnexpected(p.source, p.peek(), "statement")
}

// simpleStatement parses a call, assignment, or increment/decrement
// without the trailing semicolon.
func (p *Parser) simpleStatement() (Stmt, *ParseError) {
	if p.check(TokenIdent) && p.peekAt(1).Kind == TokenLeftParen {
		name := p.advance()
		call, err := p.callExpr(&Ident{Name: name.Lexeme, Span: name.Span})
		if err != nil {
			return nil, err
		}
		return &CallStmt{Call: call, Span: call.Span}, nil
	}

	left, err := p.unary()
	if err != nil {
		return nil, err
	}

	switch tok := p.peek(); {
	case tok.Kind == TokenPlusPlus || tok.Kind == TokenMinusMinus:
		p.advance()
		return &IncDecStmt{
			Target:    left,
			Decrement: tok.Kind == TokenMinusMinus,
			Span:      left.Pos().Until(tok.Span),
		}, nil
	case isAssignOp(tok.Kind):
		p.advance()
		right, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &AssignStmt{
			Left:  left,
			Op:    tok.Kind,
			Right: right,
			Span:  left.Pos().Until(right.Pos()),
		}, nil
	default:
		return nil, errUnexpected(p.source, tok, "assignment or increment")
	}
}

func (p *Parser) returnStmt() (*ReturnStmt, *ParseError) {
	start := p.advance()
	stmt := &ReturnStmt{}
	if !p.check(TokenSemicolon) {
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	end, err := p.expect(TokenSemicolon)
	if err != nil {
		return nil, err
	}
	stmt.Span = start.Span.Until(end.Span)
	return stmt, nil
}

func (p *Parser) ifStmt() (*IfStmt, *ParseError) {
	start := p.advance()
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}

	stmt := &IfStmt{Condition: cond, Body: body, Span: start.Span.Until(body.Span)}
	if p.match(TokenElse) {
		if p.check(TokenIf) {
			elseIf, err := p.ifStmt()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseIf
		} else {
			elseBlock, err := p.block()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseBlock
		}
		stmt.Span = start.Span.Until(stmt.Else.Pos())
	}
	return stmt, nil
}

func (p *Parser) switchStmt() (*SwitchStmt, *ParseError) {
	start := p.advance()
	selector, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLeftBrace); err != nil {
		return nil, err
	}

	stmt := &SwitchStmt{Selector: selector}
	for !p.check(TokenRightBrace) {
		clause, err := p.switchCaseClause()
		if err != nil {
			return nil, err
		}
		stmt.Cases = append(stmt.Cases, clause)
	}
	end := p.advance()
	stmt.Span = start.Span.Until(end.Span)
	return stmt, nil
}

func (p *Parser) switchCaseClause() (*SwitchCaseClause, *ParseError) {
	start := p.peek()
	clause := &SwitchCaseClause{}

	switch start.Kind {
	case TokenDefault:
		p.advance()
		clause.IsDefault = true
	case TokenCase:
		p.advance()
		for {
			sel, err := p.expression()
			if err != nil {
				return nil, err
			}
			clause.Selectors = append(clause.Selectors, sel)
			if !p.match(TokenComma) || p.check(TokenColon) || p.check(TokenLeftBrace) {
				break
			}
		}
	default:
		return nil, errUnexpected(p.source, start, "switch item ('case' or 'default')")
	}
	p.match(TokenColon)

	open, err := p.expect(TokenLeftBrace)
	if err != nil {
		return nil, err
	}
	body := &BlockStmt{}
	for !p.check(TokenRightBrace) {
		if p.match(TokenFallthrough) {
			if _, err := p.expect(TokenSemicolon); err != nil {
				return nil, err
			}
			clause.FallThrough = true
			break
		}
		if p.isAtEnd() {
			return nil, errUnexpected(p.source, p.peek(), "'}'")
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			body.Statements = append(body.Statements, stmt)
		}
	}
	end, err := p.expect(TokenRightBrace)
	if err != nil {
		return nil, err
	}
	body.Span = open.Span.Until(end.Span)
	clause.Body = body
	clause.Span = start.Span.Until(end.Span)
	return clause, nil
}

// loopStmt parses loop { ... continuing { ... break if cond; } }.
func (p *Parser) loopStmt() (*LoopStmt, *ParseError) {
	start := p.advance()
	open, err := p.expect(TokenLeftBrace)
	if err != nil {
		return nil, err
	}

	stmt := &LoopStmt{Body: &BlockStmt{}}
	for !p.check(TokenRightBrace) {
		if p.check(TokenContinuing) {
			if err := p.continuingBlock(stmt); err != nil {
				return nil, err
			}
			break
		}
		if p.isAtEnd() {
			return nil, errUnexpected(p.source, p.peek(), "'}'")
		}
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmt.Body.Statements = append(stmt.Body.Statements, s)
		}
	}
	end, err := p.expect(TokenRightBrace)
	if err != nil {
		return nil, err
	}
	stmt.Body.Span = open.Span.Until(end.Span)
	stmt.Span = start.Span.Until(end.Span)
	return stmt, nil
}

func (p *Parser) continuingBlock(loop *LoopStmt) *ParseError {
	p.advance() // continuing
	open, err := p.expect(TokenLeftBrace)
	if err != nil {
		return err
	}

	cont := &BlockStmt{}
	for !p.check(TokenRightBrace) {
		if p.check(TokenBreak) && p.peekAt(1).Kind == TokenIf {
			p.advance()
			p.advance()
			cond, err := p.expression()
			if err != nil {
				return err
			}
			if _, err := p.expect(TokenSemicolon); err != nil {
				return err
			}
			loop.BreakIf = cond
			break
		}
		if p.isAtEnd() {
			return errUnexpected(p.source, p.peek(), "'}'")
		}
		s, err := p.statement()
		if err != nil {
			return err
		}
		if s != nil {
			cont.Statements = append(cont.Statements, s)
		}
	}
	end, err := p.expect(TokenRightBrace)
	if err != nil {
		return err
	}
	cont.Span = open.Span.Until(end.Span)
	loop.Continuing = cont
	return nil
}

// forStmt parses for (init; cond; update) body. The initializer must be a
// variable declaration, an assignment or a call.
func (p *Parser) forStmt() (*ForStmt, *ParseError) {
	start := p.advance()
	if _, err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}

	stmt := &ForStmt{}
	switch p.peek().Kind {
	case TokenSemicolon:
		p.advance()
	case TokenVar, TokenLet:
		init, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmt.Init = init
	case TokenIdent, TokenStar, TokenLeftParen:
		init, err := p.simpleStatement()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenSemicolon); err != nil {
			return nil, err
		}
		stmt.Init = init
	default:
		bad, err := p.statement()
		if err != nil {
			return nil, err
		}
		span := p.peek().Span
		if bad != nil {
			span = bad.Pos()
		}
		return nil, newLabeledError(p.source, ErrBadForInitializer, span,
			"for(;;) initializer is not an assignment or a function call: '"+span.Text(p.source)+"'",
			"not an assignment or function call")
	}

	if !p.check(TokenSemicolon) {
		cond, err := p.expression()
		if err != nil {
			return nil, err
		}
		stmt.Condition = cond
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}

	if !p.check(TokenRightParen) {
		update, err := p.simpleStatement()
		if err != nil {
			return nil, err
		}
		stmt.Update = update
	}
	if _, err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	stmt.Span = start.Span.Until(body.Span)
	return stmt, nil
}

func (p *Parser) whileStmt() (*WhileStmt, *ParseError) {
	start := p.advance()
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Condition: cond, Body: body, Span: start.Span.Until(body.Span)}, nil
}

// Expressions, lowest precedence first.

func (p *Parser) expression() (Expr, *ParseError) {
	return p.logicalOr()
}

func (p *Parser) binaryLevel(next func() (Expr, *ParseError), ops ...TokenKind) (Expr, *ParseError) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.checkAny(ops...) {
		op := p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: op.Kind, Right: right, Span: left.Pos().Until(right.Pos())}
	}
	return left, nil
}

func (p *Parser) logicalOr() (Expr, *ParseError) {
	return p.binaryLevel(p.logicalAnd, TokenPipePipe)
}

func (p *Parser) logicalAnd() (Expr, *ParseError) {
	return p.binaryLevel(p.bitwiseOr, TokenAmpAmp)
}

func (p *Parser) bitwiseOr() (Expr, *ParseError) {
	return p.binaryLevel(p.bitwiseXor, TokenPipe)
}

func (p *Parser) bitwiseXor() (Expr, *ParseError) {
	return p.binaryLevel(p.bitwiseAnd, TokenCaret)
}

func (p *Parser) bitwiseAnd() (Expr, *ParseError) {
	return p.binaryLevel(p.equality, TokenAmpersand)
}

func (p *Parser) equality() (Expr, *ParseError) {
	return p.binaryLevel(p.comparison, TokenEqualEqual, TokenBangEqual)
}

func (p *Parser) comparison() (Expr, *ParseError) {
	return p.binaryLevel(p.shift, TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual)
}

func (p *Parser) shift() (Expr, *ParseError) {
	return p.binaryLevel(p.additive, TokenLessLess, TokenGreaterGreater)
}

func (p *Parser) additive() (Expr, *ParseError) {
	return p.binaryLevel(p.multiplicative, TokenPlus, TokenMinus)
}

func (p *Parser) multiplicative() (Expr, *ParseError) {
	return p.binaryLevel(p.unary, TokenStar, TokenSlash, TokenPercent)
}

func (p *Parser) unary() (Expr, *ParseError) {
	if p.checkAny(TokenMinus, TokenBang, TokenTilde, TokenStar, TokenAmpersand) {
		op := p.advance()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op.Kind, Operand: operand, Span: op.Span.Until(operand.Pos())}, nil
	}
	return p.postfix()
}

func (p *Parser) postfix() (Expr, *ParseError) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	if _, ok := expr.(*Literal); ok {
		return expr, nil
	}

	for {
		switch {
		case p.match(TokenLeftBracket):
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			end, err := p.expect(TokenRightBracket)
			if err != nil {
				return nil, err
			}
			expr = &IndexExpr{Expr: expr, Index: index, Span: expr.Pos().Until(end.Span)}
		case p.match(TokenDot):
			member, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			expr = &MemberExpr{Expr: expr, Member: member, Span: expr.Pos().Until(member.Span)}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) primary() (Expr, *ParseError) {
	tok := p.peek()

	switch tok.Kind {
	case TokenIntLiteral, TokenFloatLiteral, TokenTrue, TokenFalse:
		p.advance()
		return &Literal{Kind: tok.Kind, Value: tok.Lexeme, Span: tok.Span}, nil

	case TokenLeftParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return expr, nil

	case TokenBitcast:
		p.advance()
		if _, err := p.expect(TokenLess); err != nil {
			return nil, err
		}
		ty, err := p.typeDecl()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectGreater(); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenLeftParen); err != nil {
			return nil, err
		}
		operand, err := p.expression()
		if err != nil {
			return nil, err
		}
		end, err := p.expect(TokenRightParen)
		if err != nil {
			return nil, err
		}
		return &BitcastExpr{Type: ty, Expr: operand, Span: tok.Span.Until(end.Span)}, nil

	case TokenIdent:
		if takesTemplate(tok.Lexeme) && p.peekAt(1).Kind == TokenLess {
			ty, err := p.typeDecl()
			if err != nil {
				return nil, err
			}
			args, end, err := p.argumentList()
			if err != nil {
				return nil, err
			}
			return &ConstructExpr{
				Type: ty,
				Args: args,
				Span: tok.Span.Until(end.Span),
			}, nil
		}
		p.advance()
		ident := &Ident{Name: tok.Lexeme, Span: tok.Span}
		if p.check(TokenLeftParen) {
			return p.callExpr(ident)
		}
		return ident, nil
	}

	return nil, errUnexpected(p.source, tok, "expression")
}

func (p *Parser) callExpr(fn *Ident) (*CallExpr, *ParseError) {
	args, end, err := p.argumentList()
	if err != nil {
		return nil, err
	}
	return &CallExpr{
		Func: fn,
		Args: args,
		Span: fn.Span.Until(end.Span),
	}, nil
}

// argumentList parses (a, b, ...) and returns the closing parenthesis.
func (p *Parser) argumentList() ([]Expr, Token, *ParseError) {
	if _, err := p.expect(TokenLeftParen); err != nil {
		return nil, Token{}, err
	}
	var args []Expr
	for !p.check(TokenRightParen) {
		arg, err := p.expression()
		if err != nil {
			return nil, Token{}, err
		}
		args = append(args, arg)
		if !p.match(TokenComma) {
			break
		}
	}
	end, err := p.expect(TokenRightParen)
	if err != nil {
		return nil, Token{}, err
	}
	return args, end, nil
}

// Helper methods

func (p *Parser) advance() Token {
	tok := p.tokens[p.current]
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) peekAt(offset int) Token {
	if p.current+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+offset]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == TokenEOF
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) checkAny(kinds ...TokenKind) bool {
	for _, k := range kinds {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind TokenKind) (Token, *ParseError) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return Token{}, errUnexpected(p.source, p.peek(), "'"+kind.String()+"'")
}

func (p *Parser) expectIdent() (Ident, *ParseError) {
	tok := p.peek()
	if tok.Kind != TokenIdent {
		return Ident{}, errUnexpected(p.source, tok, "identifier")
	}
	p.advance()
	return Ident{Name: tok.Lexeme, Span: tok.Span}, nil
}

// expectGreater consumes a '>' closing a template list. Tokens that start
// with '>' are split so that nested templates like vec2<f32>> close
// correctly.
func (p *Parser) expectGreater() (Token, *ParseError) {
	tok := p.peek()
	var rest TokenKind
	switch tok.Kind {
	case TokenGreater:
		return p.advance(), nil
	case TokenGreaterGreater:
		rest = TokenGreater
	case TokenGreaterEqual:
		rest = TokenEqual
	case TokenGreaterGreaterEqual:
		rest = TokenGreaterEqual
	default:
		return Token{}, errUnexpected(p.source, tok, "'>'")
	}

	closing := Token{Kind: TokenGreater, Lexeme: ">", Span: Span{Start: tok.Span.Start, End: tok.Span.Start + 1}}
	p.tokens[p.current] = Token{Kind: rest, Lexeme: tok.Lexeme[1:], Span: Span{Start: tok.Span.Start + 1, End: tok.Span.End}}
	return closing, nil
}

func isAssignOp(kind TokenKind) bool {
	switch kind {
	case TokenEqual, TokenPlusEqual, TokenMinusEqual, TokenStarEqual,
		TokenSlashEqual, TokenPercentEqual, TokenAmpEqual, TokenPipeEqual,
		TokenCaretEqual, TokenLessLessEqual, TokenGreaterGreaterEqual:
		return true
	}
	return false
}
