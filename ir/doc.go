// Package ir defines the shader module representation produced by the
// WGSL front end, and the validator that checks it.
//
// # Structure
//
// A Module owns arenas of:
//   - Types: deduplicated type definitions, referred to by TypeHandle
//   - Constants: module-scope constant values
//   - GlobalVariables: module-scope variables (uniforms, storage, etc.)
//   - Functions: function definitions, each with its own expression arena
//   - EntryPoints: stage information for functions the pipeline calls
//
// Items only refer to items with smaller handles, so every arena can be
// processed in a single forward pass.
//
// # Pointers and loads
//
// Variable expressions evaluate to pointers. Reading a variable is an
// explicit ExprLoad, and writing one is a StmtStore through the pointer.
// Accessing a member or element of a pointer yields another pointer,
// spelled as PointerType or, for scalars and vectors, ValuePointerType.
// SameType treats both spellings as equal.
//
// # Validation
//
// Validator checks types, constants, global variables, functions and
// entry points in that order and stops at the first violation, returned
// as a *ValidationError that can be rendered against the source.
package ir
