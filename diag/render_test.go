package diag

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestRenderSingleLabel(t *testing.T) {
	source := "var __bad;"
	d := New("Identifier starts with a reserved prefix: '__bad'", Span{Start: 4, End: 9}, "invalid identifier")

	want := "error: Identifier starts with a reserved prefix: '__bad'\n" +
		"  ┌─ wgsl:1:5\n" +
		"  │\n" +
		"1 │ var __bad;\n" +
		"  │     ^^^^^ invalid identifier\n" +
		"\n"
	be.Equal(t, d.Render("wgsl", source), want)
}

func TestRenderLabelsAndNotes(t *testing.T) {
	source := "fn f() {\n    let a = 1;\n\n\n    a = 2;\n}\n"
	start := 13 // "let a"
	d := New("invalid left-hand side of assignment", Span{Start: 30, End: 31}, "cannot assign to this expression").
		WithLabel(Span{Start: start + 4, End: start + 5}, "this is an immutable binding").
		WithNote("consider declaring 'a' with `var` instead of `let`")

	want := "error: invalid left-hand side of assignment\n" +
		"  ┌─ wgsl:5:5\n" +
		"  │\n" +
		"2 │     let a = 1;\n" +
		"  │         ^ this is an immutable binding\n" +
		"  ·\n" +
		"5 │     a = 2;\n" +
		"  │     ^ cannot assign to this expression\n" +
		"  │\n" +
		"  = note: consider declaring 'a' with `var` instead of `let`\n" +
		"\n"
	be.Equal(t, d.Render("wgsl", source), want)
}

func TestRenderShortGap(t *testing.T) {
	source := "a\nb\nc\n"
	d := New("m", Span{Start: 0, End: 1}, "first").WithLabel(Span{Start: 4, End: 5}, "")

	want := "error: m\n" +
		"  ┌─ wgsl:1:1\n" +
		"  │\n" +
		"1 │ a\n" +
		"  │ ^ first\n" +
		"2 │ b\n" +
		"3 │ c\n" +
		"  │ ^\n" +
		"\n"
	be.Equal(t, d.Render("wgsl", source), want)
}

func TestRenderWideCharacters(t *testing.T) {
	// Each CJK rune is three bytes and two cells wide.
	source := "let 名前 = 1;"
	d := New("bad", Span{Start: 4, End: 10}, "here").WithLabel(Span{Start: 13, End: 14}, "one")

	want := "error: bad\n" +
		"  ┌─ wgsl:1:5\n" +
		"  │\n" +
		"1 │ let 名前 = 1;\n" +
		"  │     ^^^^ here\n" +
		"  │            ^ one\n" +
		"\n"
	be.Equal(t, d.Render("wgsl", source), want)
}

func TestRenderMultiLineLabel(t *testing.T) {
	source := "fn f() -> i32 {\n    {\n        return 1;\n    }\n    return 2;\n}"
	d := New("function [0] 'f' is invalid", Span{Start: 50, End: 59}, "unreachable statement").
		WithLabel(Span{Start: 0, End: 61}, "in function 'f'").
		WithNote("code follows a return")

	want := "error: function [0] 'f' is invalid\n" +
		"  ┌─ wgsl:5:5\n" +
		"  │\n" +
		"1 │ ╭ fn f() -> i32 {\n" +
		"2 │ │     {\n" +
		"3 │ │         return 1;\n" +
		"4 │ │     }\n" +
		"5 │ │     return 2;\n" +
		"  │ │     ^^^^^^^^^ unreachable statement\n" +
		"6 │ │ }\n" +
		"  │ ╰─^ in function 'f'\n" +
		"  │\n" +
		"  = note: code follows a return\n" +
		"\n"
	be.Equal(t, d.Render("wgsl", source), want)
}

func TestRenderMultiLineLabelMidLine(t *testing.T) {
	source := "let a = foo(\n  1,\n  2);"
	d := New("bad call", Span{Start: 8, End: 22}, "call")

	want := "error: bad call\n" +
		"  ┌─ wgsl:1:9\n" +
		"  │\n" +
		"1 │   let a = foo(\n" +
		"  │ ╭─────────^\n" +
		"2 │ │   1,\n" +
		"3 │ │   2);\n" +
		"  │ ╰────^ call\n" +
		"\n"
	be.Equal(t, d.Render("wgsl", source), want)
}

func TestRenderWithoutLabels(t *testing.T) {
	d := Diagnostic{Message: "boom"}.WithNote("first").WithNote("second")
	be.Equal(t, d.Render("wgsl", ""), "error: boom\n  = note: first\n  = note: second\n\n")
	be.Equal(t, Diagnostic{Message: "boom"}.Render("wgsl", "x"), "error: boom\n\n")
}

func TestRenderEmptySpanAtEnd(t *testing.T) {
	source := "fn f() {"
	d := New("expected '}', found end of file", Span{Start: 8, End: 8}, "expected '}'")

	want := "error: expected '}', found end of file\n" +
		"  ┌─ wgsl:1:9\n" +
		"  │\n" +
		"1 │ fn f() {\n" +
		"  │         ^ expected '}'\n" +
		"\n"
	be.Equal(t, d.Render("wgsl", source), want)
}

func TestSpan(t *testing.T) {
	a := Span{Start: 4, End: 8}
	b := Span{Start: 10, End: 12}

	be.True(t, Span{}.IsUnknown())
	be.Equal(t, a.IsUnknown(), false)
	be.Equal(t, a.Len(), 4)
	be.Equal(t, Span{Start: 5, End: 2}.Len(), 0)
	be.Equal(t, a.Join(b), Span{Start: 4, End: 12})
	be.Equal(t, b.Join(a), Span{Start: 4, End: 12})
	be.Equal(t, Span{}.Join(b), b)
	be.Equal(t, a.Join(Span{}), a)
	be.Equal(t, a.Until(b), Span{Start: 4, End: 12})
}

func TestSpanText(t *testing.T) {
	source := "let x = 1;"
	be.Equal(t, Span{Start: 4, End: 5}.Text(source), "x")
	be.Equal(t, Span{Start: 8, End: 99}.Text(source), "1;")
	be.Equal(t, Span{Start: 6, End: 2}.Text(source), "")
}

func TestSpanLocation(t *testing.T) {
	source := "fn f() {\n  é = 1;\n}"
	tests := []struct {
		offset       int
		line, column int
	}{
		{0, 1, 1},
		{3, 1, 4},
		{9, 2, 1},
		{11, 2, 3},
		{13, 2, 4}, // after the two-byte 'é'
		{99, 3, 2},
	}
	for _, tc := range tests {
		line, column := Span{Start: tc.offset, End: tc.offset}.Location(source)
		be.Equal(t, line, tc.line)
		be.Equal(t, column, tc.column)
	}
}
