package wgsl

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

// TestErrorSnapshots parses every testdata/errors/*.wgsl file and compares
// the rendered diagnostic with the .txt file next to it, byte for byte.
func TestErrorSnapshots(t *testing.T) {
	inputs, err := filepath.Glob(filepath.Join("testdata", "errors", "*.wgsl"))
	be.Err(t, err, nil)
	be.True(t, len(inputs) > 0)

	for _, input := range inputs {
		name := strings.TrimSuffix(filepath.Base(input), ".wgsl")
		t.Run(name, func(t *testing.T) {
			source, err := os.ReadFile(input)
			be.Err(t, err, nil)
			want, err := os.ReadFile(strings.TrimSuffix(input, ".wgsl") + ".txt")
			be.Err(t, err, nil)

			_, err = Parse(string(source))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected a parse error, got %v", err)
			}
			got := perr.EmitToString(string(source))
			if got != string(want) {
				t.Errorf("diagnostic mismatch\n--- got\n%s--- want\n%s", got, want)
			}
		})
	}
}

func TestParseErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   ParseErrorKind
	}{
		{"unexpected token", "fn () {}", ErrUnexpected},
		{"reserved prefix", "var __bad;", ErrReservedIdentifierPrefix},
		{"reserved keyword", "fn loop() {}", ErrReservedKeyword},
		{"unknown ident", "fn f() { let a = b; }", ErrUnknownIdent},
		{"unknown type", "let a: Vec<f32>;", ErrUnknownType},
		{"unknown attribute", "@a fn x() {}", ErrUnknownAttribute},
		{"misplaced attribute", "@size(4) fn x() {}", ErrMisplacedAttribute},
		{"repeated attribute", "@vertex @vertex fn x() -> @builtin(position) vec4<f32> { return vec4<f32>(); }", ErrRepeatedAttribute},
		{"unknown extension", "enable nope;", ErrUnknownExtension},
		{"redefinition", "let a = 1; let a = 2;", ErrRedefinition},
		{"missing type", "fn f() { var x; }", ErrMissingType},
		{"zero align", "struct S { @align(0) a: f32 };", ErrZeroSizeOrAlign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected a parse error, got %v", err)
			}
			be.Equal(t, perr.Kind, tt.kind)
		})
	}
}
