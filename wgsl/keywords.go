package wgsl

import "strings"

// reservedPrefix starts identifiers reserved for the implementation.
const reservedPrefix = "__"

// reserved lists names that may not be used to define anything: language
// keywords, predeclared type names, and words reserved for future use.
var reserved = map[string]bool{
	// keywords
	"bitcast": true, "break": true, "case": true, "const": true, "continue": true,
	"continuing": true, "default": true, "discard": true, "else": true,
	"enable": true, "fallthrough": true, "false": true, "fn": true, "for": true,
	"if": true, "let": true, "loop": true, "override": true, "return": true,
	"struct": true, "switch": true, "true": true, "type": true, "var": true,
	"while": true,

	// address spaces
	"function": true, "private": true, "storage": true, "uniform": true,
	"workgroup": true,

	// types
	"array": true, "atomic": true, "bool": true, "f16": true, "f32": true,
	"f64": true, "i32": true, "u32": true,
	"vec2": true, "vec3": true, "vec4": true,
	"mat2x2": true, "mat2x3": true, "mat2x4": true,
	"mat3x2": true, "mat3x3": true, "mat3x4": true,
	"mat4x2": true, "mat4x3": true, "mat4x4": true,
	"sampler": true, "sampler_comparison": true,
	"texture_1d": true, "texture_2d": true, "texture_2d_array": true,
	"texture_3d": true, "texture_cube": true, "texture_cube_array": true,
	"texture_multisampled_2d": true,
	"texture_depth_2d": true, "texture_depth_2d_array": true,
	"texture_depth_cube": true, "texture_depth_cube_array": true,
	"texture_depth_multisampled_2d": true,
	"texture_storage_1d": true, "texture_storage_2d": true,
	"texture_storage_2d_array": true, "texture_storage_3d": true,

	// reserved for future use
	"asm": true, "do": true, "enum": true, "handle": true, "impl": true,
	"mut": true, "null": true, "self": true, "static": true, "super": true,
	"typedef": true, "union": true, "unless": true, "using": true, "where": true,
}

// isReserved reports whether name may not be defined.
func isReserved(name string) bool {
	return reserved[name]
}

// templateTypes are predeclared type generators written with <...>.
var templateTypes = map[string]bool{
	"array": true, "atomic": true, "ptr": true,
	"vec2": true, "vec3": true, "vec4": true,
	"mat2x2": true, "mat2x3": true, "mat2x4": true,
	"mat3x2": true, "mat3x3": true, "mat3x4": true,
	"mat4x2": true, "mat4x3": true, "mat4x4": true,
}

// takesTemplate reports whether a type name is followed by template
// parameters in expression position.
func takesTemplate(name string) bool {
	return templateTypes[name] || strings.HasPrefix(name, "texture_")
}
