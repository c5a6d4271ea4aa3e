// Package wgsl is the WGSL (WebGPU Shading Language) front end.
//
// # Components
//
//   - Lexer: tokenizes source into tokens with byte spans
//   - Parser: builds the syntax tree (ast.go) from the tokens
//   - Lowerer: resolves names, types and attributes and produces an
//     ir.Module
//
// Every stage stops at the first error and reports it as a *ParseError,
// which renders against the source as a diagnostic.
//
// # Usage
//
//	module, err := wgsl.Parse(source)
//	if err != nil {
//	    var perr *wgsl.ParseError
//	    if errors.As(err, &perr) {
//	        fmt.Print(perr.EmitToString(source))
//	    }
//	    return err
//	}
//
// ParseModule stops after parsing and returns the syntax tree; Lower
// turns a syntax tree into IR.
//
// # Accepted dialect
//
// Besides current WGSL the parser accepts older spellings still found in
// shaders: @stage(vertex) next to @vertex, ';' or ',' between struct
// members, module-scope let, and the @block struct attribute.
package wgsl
