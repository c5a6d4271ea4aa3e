package wgsl

import (
	"testing"

	"github.com/nalgeon/be"
)

func parseSource(t *testing.T, source string) *Module {
	t.Helper()
	module, err := ParseModule(source)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return module
}

func TestParseFunction(t *testing.T) {
	source := `
@vertex
fn main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}`
	module := parseSource(t, source)
	be.Equal(t, len(module.Decls), 1)

	fn, ok := module.Decls[0].(*FunctionDecl)
	be.True(t, ok)
	be.Equal(t, fn.Name.Name, "main")
	be.Equal(t, len(fn.Attributes), 1)
	be.Equal(t, fn.Attributes[0].Name.Name, "vertex")
	be.Equal(t, len(fn.Params), 1)
	be.Equal(t, fn.Params[0].Name.Name, "idx")
	be.Equal(t, fn.Params[0].Attributes[0].Span.Text(source), "@builtin(vertex_index)")
	be.Equal(t, len(fn.ReturnAttrs), 1)

	ret, ok := fn.ReturnType.(*NamedType)
	be.True(t, ok)
	be.Equal(t, ret.Name.Name, "vec4")
	be.Equal(t, len(ret.TypeParams), 1)

	be.Equal(t, len(fn.Body.Statements), 1)
	stmt, ok := fn.Body.Statements[0].(*ReturnStmt)
	be.True(t, ok)
	construct, ok := stmt.Value.(*ConstructExpr)
	be.True(t, ok)
	be.Equal(t, len(construct.Args), 4)
	be.Equal(t, construct.Span.Text(source), "vec4<f32>(0.0, 0.0, 0.0, 1.0)")
}

func TestParseDeclarations(t *testing.T) {
	tests := []struct {
		name   string
		source string
		check  func(t *testing.T, decl Decl)
	}{
		{
			name:   "struct with semicolons",
			source: "struct Light { position: vec3<f32>; color: vec4<f32>; };",
			check: func(t *testing.T, decl Decl) {
				s := decl.(*StructDecl)
				be.Equal(t, s.Name.Name, "Light")
				be.Equal(t, len(s.Members), 2)
				be.Equal(t, s.Members[1].Name.Name, "color")
			},
		},
		{
			name:   "struct with commas",
			source: "struct S { @size(16) a: f32, @align(8) b: u32, }",
			check: func(t *testing.T, decl Decl) {
				s := decl.(*StructDecl)
				be.Equal(t, len(s.Members), 2)
				be.Equal(t, s.Members[0].Attributes[0].Name.Name, "size")
				be.Equal(t, s.Members[1].Attributes[0].Name.Name, "align")
			},
		},
		{
			name:   "storage var",
			source: "@group(0) @binding(1) var<storage, read_write> data: array<u32>;",
			check: func(t *testing.T, decl Decl) {
				v := decl.(*VarDecl)
				be.Equal(t, v.Name.Name, "data")
				be.Equal(t, v.AddressSpace.Name, "storage")
				be.Equal(t, v.AccessMode.Name, "read_write")
				be.Equal(t, len(v.Attributes), 2)
				arr := v.Type.(*ArrayType)
				be.True(t, arr.Size == nil)
			},
		},
		{
			name:   "module let",
			source: "let limit: i32 = 4;",
			check: func(t *testing.T, decl Decl) {
				l := decl.(*LetDecl)
				be.Equal(t, l.Name.Name, "limit")
				be.Equal(t, l.Init.(*Literal).Value, "4")
			},
		},
		{
			name:   "alias",
			source: "type Pair = array<f32, 2>;",
			check: func(t *testing.T, decl Decl) {
				a := decl.(*AliasDecl)
				be.Equal(t, a.Name.Name, "Pair")
				arr := a.Type.(*ArrayType)
				be.Equal(t, arr.Size.(*Literal).Value, "2")
			},
		},
		{
			name:   "old stage attribute",
			source: "@stage(compute) @workgroup_size(8, 8) fn main() {}",
			check: func(t *testing.T, decl Decl) {
				fn := decl.(*FunctionDecl)
				be.Equal(t, len(fn.Attributes), 2)
				be.Equal(t, fn.Attributes[0].Name.Name, "stage")
				be.Equal(t, len(fn.Attributes[1].Args), 2)
			},
		},
		{
			name:   "pointer parameter",
			source: "fn f(p: ptr<function, i32>) {}",
			check: func(t *testing.T, decl Decl) {
				ptr := decl.(*FunctionDecl).Params[0].Type.(*PtrType)
				be.Equal(t, ptr.AddressSpace.Name, "function")
				be.True(t, ptr.AccessMode == nil)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module := parseSource(t, tt.source)
			be.Equal(t, len(module.Decls), 1)
			tt.check(t, module.Decls[0])
		})
	}
}

func TestParseGlobalVarDeclSpan(t *testing.T) {
	source := "var<private> counter: u32 = 0u;"
	module := parseSource(t, source)
	v := module.Decls[0].(*VarDecl)
	be.Equal(t, v.DeclSpan.Text(source), " counter: u32 = 0u;")
	be.Equal(t, v.Span.Text(source), source)
}

func TestParseEnable(t *testing.T) {
	module := parseSource(t, "enable f16;\nfn f() {}")
	be.Equal(t, len(module.Enables), 1)
	be.Equal(t, module.Enables[0].Extensions[0].Name, "f16")
	be.Equal(t, len(module.Decls), 1)
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		source string
		op     TokenKind
		left   string
		right  string
	}{
		{"a + b * c", TokenPlus, "a", "b * c"},
		{"a * b + c", TokenPlus, "a * b", "c"},
		{"a || b && c", TokenPipePipe, "a", "b && c"},
		{"a == b < c", TokenEqualEqual, "a", "b < c"},
		{"a << b + c", TokenLessLess, "a", "b + c"},
		{"a & b | c", TokenPipe, "a & b", "c"},
		{"-a - b", TokenMinus, "-a", "b"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			source := "fn f() { let x = " + tt.source + "; }"
			module := parseSource(t, source)
			let := module.Decls[0].(*FunctionDecl).Body.Statements[0].(*LetDecl)
			bin, ok := let.Init.(*BinaryExpr)
			be.True(t, ok)
			be.Equal(t, bin.Op, tt.op)
			be.Equal(t, bin.Left.Pos().Text(source), tt.left)
			be.Equal(t, bin.Right.Pos().Text(source), tt.right)
		})
	}
}

func TestParsePostfix(t *testing.T) {
	source := "fn f() { let x = *p[3]; let y = s.m.xyz; let z = (a).b; }"
	module := parseSource(t, source)
	stmts := module.Decls[0].(*FunctionDecl).Body.Statements

	deref := stmts[0].(*LetDecl).Init.(*UnaryExpr)
	be.Equal(t, deref.Op, TokenStar)
	index := deref.Operand.(*IndexExpr)
	be.Equal(t, index.Expr.(*Ident).Name, "p")

	member := stmts[1].(*LetDecl).Init.(*MemberExpr)
	be.Equal(t, member.Member.Name, "xyz")
	be.Equal(t, member.Expr.(*MemberExpr).Member.Name, "m")

	paren := stmts[2].(*LetDecl).Init.(*MemberExpr)
	be.Equal(t, paren.Expr.(*Ident).Name, "a")
}

func TestParseStatements(t *testing.T) {
	source := `
fn f() {
    var i = 0;
    for (var j = 0; j < 4; j++) { i += j; }
    while i > 0 { i--; }
    loop {
        if i == 2 { break; } else if i == 3 { continue; } else { i = 1; }
        continuing { i = i + 1; break if i > 8; }
    }
    switch i {
        case 1, 2: { fallthrough; }
        case 3 { i = 0; }
        default { }
    }
    _ = i;
    g();
}`
	module := parseSource(t, source)
	stmts := module.Decls[0].(*FunctionDecl).Body.Statements
	be.Equal(t, len(stmts), 7)

	forStmt := stmts[1].(*ForStmt)
	be.Equal(t, forStmt.Init.(*VarDecl).Name.Name, "j")
	be.True(t, forStmt.Condition != nil)
	be.Equal(t, forStmt.Update.(*IncDecStmt).Decrement, false)
	be.Equal(t, forStmt.Body.Statements[0].(*AssignStmt).Op, TokenPlusEqual)

	while := stmts[2].(*WhileStmt)
	be.Equal(t, while.Body.Statements[0].(*IncDecStmt).Decrement, true)

	loop := stmts[3].(*LoopStmt)
	ifStmt := loop.Body.Statements[0].(*IfStmt)
	elseIf := ifStmt.Else.(*IfStmt)
	_, ok := elseIf.Else.(*BlockStmt)
	be.True(t, ok)
	be.Equal(t, len(loop.Continuing.Statements), 1)
	be.True(t, loop.BreakIf != nil)

	sw := stmts[4].(*SwitchStmt)
	be.Equal(t, len(sw.Cases), 3)
	be.Equal(t, len(sw.Cases[0].Selectors), 2)
	be.True(t, sw.Cases[0].FallThrough)
	be.True(t, sw.Cases[2].IsDefault)

	phony := stmts[5].(*AssignStmt)
	be.Equal(t, phony.Left.(*Ident).Name, "_")

	call := stmts[6].(*CallStmt)
	be.Equal(t, call.Call.Func.Name, "g")
}

func TestParseBitcast(t *testing.T) {
	source := "fn f() { let x = bitcast<u32>(1.0); }"
	module := parseSource(t, source)
	let := module.Decls[0].(*FunctionDecl).Body.Statements[0].(*LetDecl)
	cast := let.Init.(*BitcastExpr)
	be.Equal(t, cast.Type.(*NamedType).Name.Name, "u32")
	be.Equal(t, cast.Span.Text(source), "bitcast<u32>(1.0)")
}

func TestParseNestedTemplates(t *testing.T) {
	source := "var<private> m: array<vec4<f32>, 4>;"
	module := parseSource(t, source)
	arr := module.Decls[0].(*VarDecl).Type.(*ArrayType)
	elem := arr.Element.(*NamedType)
	be.Equal(t, elem.Name.Name, "vec4")
	be.Equal(t, elem.TypeParams[0].(*NamedType).Name.Name, "f32")
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
	}{
		{"missing semicolon", "let x = 1", "expected ';', found end of file"},
		{"missing brace", "fn f() { return;", "expected '}', found end of file"},
		{"bad declaration", "return 1;", "expected global declaration, found 'return'"},
		{"unknown character", "fn f() { let x = $; }", "expected expression, found '$'"},
		{"bad statement", "fn f() { 1; }", "expected statement, found '1'"},
		{"bad for initializer", "fn f() { for (return;;) {} }", "for(;;) initializer is not an assignment or a function call"},
		{"switch item", "fn f() { switch 1 { x } }", "expected switch item ('case' or 'default'), found 'x'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModule(tt.source)
			be.Err(t, err, tt.message)
		})
	}
}
