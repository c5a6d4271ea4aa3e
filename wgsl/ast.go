package wgsl

import "github.com/gogpu/wgslfront/diag"

// Span is a byte range into the parsed source.
type Span = diag.Span

// Module represents a parsed WGSL module. Declarations keep source order.
type Module struct {
	Enables []Enable
	Decls   []Decl
}

// Enable is an `enable ext;` directive.
type Enable struct {
	Extensions []Ident
	Span       Span
}

// Node is anything with a source span.
type Node interface {
	Pos() Span
}

// Decl is a module-scope declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// Type is a type specifier.
type Type interface {
	Node
	typeNode()
}

// Ident is a name with its span.
type Ident struct {
	Name string
	Span Span
}

func (i *Ident) Pos() Span { return i.Span }
func (i *Ident) exprNode() {}

// Attribute is a generic @name(args...) attribute. Its meaning is resolved
// during lowering.
type Attribute struct {
	Name Ident
	Args []Expr
	Span Span // from '@' through the closing ')'
}

// StructDecl is `struct Name { members }`.
type StructDecl struct {
	Name       Ident
	Members    []*StructMember
	Attributes []Attribute
	Span       Span
}

func (s *StructDecl) Pos() Span { return s.Span }
func (s *StructDecl) declNode() {}

// StructMember is one field; Attributes carry @size, @align and I/O
// bindings.
type StructMember struct {
	Name       Ident
	Type       Type
	Attributes []Attribute
	Span       Span
}

// FunctionDecl is `fn`. Stage and workgroup attributes stay raw until
// lowering.
type FunctionDecl struct {
	Name        Ident
	Params      []*Parameter
	ReturnType  Type
	ReturnAttrs []Attribute
	Attributes  []Attribute
	Body        *BlockStmt
	Span        Span
}

func (f *FunctionDecl) Pos() Span { return f.Span }
func (f *FunctionDecl) declNode() {}

// Parameter is one `name: type` of a function signature.
type Parameter struct {
	Name       Ident
	Type       Type
	Attributes []Attribute
	Span       Span
}

// VarDecl is `var` at module or function scope.
type VarDecl struct {
	Name         Ident
	Type         Type // nil when inferred
	Init         Expr
	AddressSpace *Ident
	AccessMode   *Ident
	Attributes   []Attribute
	// DeclSpan runs from the end of the var introducer to the end of the
	// declaration. Module-scope diagnostics about the name point at it.
	DeclSpan Span
	Span     Span
}

func (v *VarDecl) Pos() Span { return v.Span }
func (v *VarDecl) declNode() {}
func (v *VarDecl) stmtNode() {}

// LetDecl represents a let binding: a module-scope constant or a local
// named value.
type LetDecl struct {
	Name Ident
	Type Type // nil when inferred
	Init Expr // nil only when omitted at module scope
	Span Span
}

func (c *LetDecl) Pos() Span { return c.Span }
func (c *LetDecl) declNode() {}
func (c *LetDecl) stmtNode() {}

// AliasDecl is `type Name = T;`.
type AliasDecl struct {
	Name Ident
	Type Type
	Span Span
}

func (a *AliasDecl) Pos() Span { return a.Span }
func (a *AliasDecl) declNode() {}

// NamedType is a type referenced by name with optional template
// parameters, such as f32, vec4<f32> or texture_storage_2d<rgba8unorm, write>.
// Template parameters that are not types (formats, access modes) are
// carried as NamedType with no parameters.
type NamedType struct {
	Name       Ident
	TypeParams []Type
	Span       Span
}

func (n *NamedType) Pos() Span { return n.Span }
func (n *NamedType) typeNode() {}

// ArrayType represents array<T> or array<T, N>.
type ArrayType struct {
	Element Type
	Size    Expr // nil for runtime-sized arrays
	Span    Span
}

func (a *ArrayType) Pos() Span { return a.Span }
func (a *ArrayType) typeNode() {}

// PtrType represents ptr<space, T> or ptr<space, T, access>.
type PtrType struct {
	AddressSpace Ident
	PointeeType  Type
	AccessMode   *Ident
	Span         Span
}

func (p *PtrType) Pos() Span { return p.Span }
func (p *PtrType) typeNode() {}

// BlockStmt is `{ ... }`.
type BlockStmt struct {
	Statements []Stmt
	Span       Span
}

func (b *BlockStmt) Pos() Span { return b.Span }
func (b *BlockStmt) stmtNode() {}

// ReturnStmt is `return` with an optional value.
type ReturnStmt struct {
	Value Expr
	Span  Span
}

func (r *ReturnStmt) Pos() Span { return r.Span }
func (r *ReturnStmt) stmtNode() {}

// IfStmt is `if`; an `else if` chain nests IfStmts in Else.
type IfStmt struct {
	Condition Expr
	Body      *BlockStmt
	Else      Stmt // *BlockStmt or *IfStmt
	Span      Span
}

func (i *IfStmt) Pos() Span { return i.Span }
func (i *IfStmt) stmtNode() {}

// ForStmt is `for (init; cond; update)`, each part optional.
type ForStmt struct {
	Init      Stmt
	Condition Expr
	Update    Stmt
	Body      *BlockStmt
	Span      Span
}

func (f *ForStmt) Pos() Span { return f.Span }
func (f *ForStmt) stmtNode() {}

// WhileStmt is `while cond { }`.
type WhileStmt struct {
	Condition Expr
	Body      *BlockStmt
	Span      Span
}

func (w *WhileStmt) Pos() Span { return w.Span }
func (w *WhileStmt) stmtNode() {}

// LoopStmt is `loop { }` with an optional continuing block.
type LoopStmt struct {
	Body       *BlockStmt
	Continuing *BlockStmt
	BreakIf    Expr // trailing "break if" of the continuing block
	Span       Span
}

func (l *LoopStmt) Pos() Span { return l.Span }
func (l *LoopStmt) stmtNode() {}

// BreakStmt is `break`.
type BreakStmt struct {
	Span Span
}

func (b *BreakStmt) Pos() Span { return b.Span }
func (b *BreakStmt) stmtNode() {}

// ContinueStmt is `continue`.
type ContinueStmt struct {
	Span Span
}

func (c *ContinueStmt) Pos() Span { return c.Span }
func (c *ContinueStmt) stmtNode() {}

// DiscardStmt is `discard`.
type DiscardStmt struct {
	Span Span
}

func (d *DiscardStmt) Pos() Span { return d.Span }
func (d *DiscardStmt) stmtNode() {}

// AssignStmt is `=` or a compound assignment. A Left of `_` discards
// the value.
type AssignStmt struct {
	Left  Expr
	Op    TokenKind // =, +=, -=, etc.
	Right Expr
	Span  Span
}

func (a *AssignStmt) Pos() Span { return a.Span }
func (a *AssignStmt) stmtNode() {}

// IncDecStmt is `x++` or `x--`.
type IncDecStmt struct {
	Target    Expr
	Decrement bool
	Span      Span
}

func (i *IncDecStmt) Pos() Span { return i.Span }
func (i *IncDecStmt) stmtNode() {}

// CallStmt is a call whose result, if any, is dropped.
type CallStmt struct {
	Call *CallExpr
	Span Span
}

func (c *CallStmt) Pos() Span { return c.Span }
func (c *CallStmt) stmtNode() {}

// SwitchStmt is `switch`.
type SwitchStmt struct {
	Selector Expr
	Cases    []*SwitchCaseClause
	Span     Span
}

func (s *SwitchStmt) Pos() Span { return s.Span }
func (s *SwitchStmt) stmtNode() {}

// SwitchCaseClause is one `case a, b:` or `default:` arm.
type SwitchCaseClause struct {
	Selectors   []Expr // empty for the default clause
	IsDefault   bool
	Body        *BlockStmt
	FallThrough bool // body ends with "fallthrough;"
	Span        Span
}

// Literal keeps the token text; lowering parses it and applies the
// suffix.
type Literal struct {
	Kind  TokenKind // TokenIntLiteral, TokenFloatLiteral, TokenTrue, TokenFalse
	Value string
	Span  Span
}

func (l *Literal) Pos() Span { return l.Span }
func (l *Literal) exprNode() {}

// BinaryExpr is an infix operator. The parser resolves precedence.
type BinaryExpr struct {
	Left  Expr
	Op    TokenKind
	Right Expr
	Span  Span
}

func (b *BinaryExpr) Pos() Span { return b.Span }
func (b *BinaryExpr) exprNode() {}

// UnaryExpr is a prefix `-`, `!`, `~`, `&` or `*`.
type UnaryExpr struct {
	Op      TokenKind
	Operand Expr
	Span    Span
}

func (u *UnaryExpr) Pos() Span { return u.Span }
func (u *UnaryExpr) exprNode() {}

// CallExpr calls a function, builtin or constructor named by a plain
// identifier.
type CallExpr struct {
	Func *Ident
	Args []Expr
	Span Span
}

func (c *CallExpr) Pos() Span { return c.Span }
func (c *CallExpr) exprNode() {}

// IndexExpr is `e[i]`.
type IndexExpr struct {
	Expr  Expr
	Index Expr
	Span  Span
}

func (i *IndexExpr) Pos() Span { return i.Span }
func (i *IndexExpr) exprNode() {}

// MemberExpr is `e.name`, a member access or a swizzle.
type MemberExpr struct {
	Expr   Expr
	Member Ident
	Span   Span
}

func (m *MemberExpr) Pos() Span { return m.Span }
func (m *MemberExpr) exprNode() {}

// ConstructExpr is a constructor spelled with template arguments, such
// as vec2<f32>(x, y) or array<f32, 3>(a, b, c).
type ConstructExpr struct {
	Type Type
	Args []Expr
	Span Span
}

func (c *ConstructExpr) Pos() Span { return c.Span }
func (c *ConstructExpr) exprNode() {}

// BitcastExpr is bitcast<T>(e).
type BitcastExpr struct {
	Type Type
	Expr Expr
	Span Span
}

func (b *BitcastExpr) Pos() Span { return b.Span }
func (b *BitcastExpr) exprNode() {}
