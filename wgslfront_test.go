package wgslfront

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/wgslfront/ir"
	"github.com/gogpu/wgslfront/wgsl"
	"github.com/nalgeon/be"
)

// checkInvalid runs source through Check and returns the validation error.
func checkInvalid(t *testing.T, source string) *ir.ValidationError {
	t.Helper()
	_, _, err := Check(source, ir.ValidationFlagsAll, 0)
	if err == nil {
		t.Fatalf("expected a validation error for:\n%s", source)
	}
	var verr *ir.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got:\n%s", EmitToString(err, source))
	}
	return verr
}

func functionError(t *testing.T, verr *ir.ValidationError) *ir.FunctionError {
	t.Helper()
	be.Equal(t, verr.Kind, ir.ValidationErrorFunction)
	if verr.Function == nil {
		t.Fatalf("function error is missing: %v", verr)
	}
	return verr.Function
}

func expressionError(t *testing.T, verr *ir.ValidationError) *ir.ExpressionError {
	t.Helper()
	fe := functionError(t, verr)
	be.Equal(t, fe.Kind, ir.FunctionExpression)
	if fe.ExpressionError == nil {
		t.Fatalf("expression error is missing: %v", verr)
	}
	return fe.ExpressionError
}

func typeError(t *testing.T, verr *ir.ValidationError) *ir.TypeError {
	t.Helper()
	be.Equal(t, verr.Kind, ir.ValidationErrorType)
	if verr.Type == nil {
		t.Fatalf("type error is missing: %v", verr)
	}
	return verr.Type
}

func varyingError(t *testing.T, verr *ir.ValidationError) (*ir.EntryPointError, *ir.VaryingError) {
	t.Helper()
	be.Equal(t, verr.Kind, ir.ValidationErrorEntryPoint)
	if verr.EntryPoint == nil || verr.EntryPoint.Varying == nil {
		t.Fatalf("varying error is missing: %v", verr)
	}
	return verr.EntryPoint, verr.EntryPoint.Varying
}

func TestCheckValid(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"pointer type equivalence", `
			fn f(pv: ptr<function, vec2<f32>>, pf: ptr<function, f32>) { }

			fn g() {
			   var m: mat2x2<f32>;
			   let pv: ptr<function, vec2<f32>> = &m.x;
			   let pf: ptr<function, f32> = &m.x.x;

			   f(pv, pf);
			}
		`},
		{"vector by value", `
			fn vector_by_value(v: vec4<i32>, i: i32) -> i32 {
				return v[i];
			}
		`},
		{"matrix dynamic", `
			fn matrix_dynamic(m: mat4x4<f32>, i: i32, j: i32) -> f32 {
				var temp: mat4x4<f32> = m;
				return temp[i][j];
			}
		`},
		{"index through pointer", `
			fn main() {
				var v: vec4<f32> = vec4<f32>(1.0, 1.0, 1.0, 1.0);
				let pv = &v;
				let a = (*pv)[3];
			}
		`},
		{"fallthrough before the last case", `
			fn f(x: i32) {
				switch x {
					case 0: {
						fallthrough;
					}
					default: {}
				}
			}
		`},
		{"private and workgroup pointer arguments", `
			fn f(a: ptr<private, f32>, b: ptr<workgroup, u32>) -> f32 {
				return *a + f32(*b);
			}
		`},
		{"select scalars and vectors", `
			fn f(c: bool, m: vec2<bool>) -> f32 {
				let a = select(1.0, 2.0, c);
				let b = select(vec2<f32>(1.0), vec2<f32>(2.0), m);
				let d = select(vec3<i32>(1), vec3<i32>(2), c);
				return a + b.x + f32(d.y);
			}
		`},
		{"dead code after if", `
			fn dead_code_after_if(condition: bool) -> i32 {
				if (condition) {
					return 1;
				} else {
					return 2;
				}
				return 3;
			}
		`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Check(tc.source, ir.ValidationFlagsAll, 0)
			if err != nil {
				t.Fatalf("unexpected error:\n%s", EmitToString(err, tc.source))
			}
		})
	}
}

func TestCheckShaderInfo(t *testing.T) {
	t.Run("render pipeline", func(t *testing.T) {
		source := `
			struct VertexOutput {
				@builtin(position) position: vec4<f32>,
				@location(0) uv: vec2<f32>,
			}

			@group(0) @binding(0) var t: texture_2d<f32>;
			@group(0) @binding(1) var s: sampler;

			@vertex
			fn vs_main(@builtin(vertex_index) index: u32) -> VertexOutput {
				var out: VertexOutput;
				let x = f32(i32(index) - 1);
				out.position = vec4<f32>(x, 0.0, 0.0, 1.0);
				out.uv = vec2<f32>(x, 0.5);
				return out;
			}

			@fragment
			fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
				return textureSample(t, s, in.uv);
			}
		`
		module, info, err := Check(source, ir.ValidationFlagsAll, 0)
		if err != nil {
			t.Fatalf("unexpected error:\n%s", EmitToString(err, source))
		}
		be.Equal(t, len(module.EntryPoints), 2)
		be.Equal(t, len(info.Functions), 2)
		be.Equal(t, len(info.Layouts), len(module.Types))
		be.Equal(t, len(info.TypeFlags), len(module.Types))

		vs, fs := info.Functions[0], info.Functions[1]
		be.Equal(t, vs.GlobalUses[0], ir.GlobalUse(0))
		be.Equal(t, fs.GlobalUses[0], ir.GlobalUseRead)
		be.Equal(t, fs.GlobalUses[1], ir.GlobalUseRead)
		be.Equal(t, len(vs.ExpressionTypes), len(module.Functions[0].Expressions))
	})

	t.Run("compute", func(t *testing.T) {
		source := `
			@group(0) @binding(0) var<storage, read_write> data: array<u32>;

			@compute @workgroup_size(64)
			fn main(@builtin(global_invocation_id) id: vec3<u32>) {
				let i = id.x;
				if (i >= arrayLength(&data)) {
					return;
				}
				data[i] = data[i] * 2u;
			}
		`
		module, info, err := Check(source, ir.ValidationFlagsAll, 0)
		if err != nil {
			t.Fatalf("unexpected error:\n%s", EmitToString(err, source))
		}
		be.Equal(t, module.EntryPoints[0].Workgroup, [3]uint32{64, 1, 1})
		be.Equal(t, info.Functions[0].GlobalUses[0], ir.GlobalUseRead|ir.GlobalUseWrite)
	})
}

func TestCheckInvalidTypes(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		kind    ir.TypeErrorKind
	}{
		{
			name: "array base type",
			sources: []string{
				"type Bad = array<array<f32>, 4>;",
				"type Bad = array<sampler, 4>;",
				"type Bad = array<texture_2d<f32>, 4>;",
			},
			kind: ir.TypeInvalidArrayBaseType,
		},
		{
			name: "array size constant",
			sources: []string{
				"type Bad = array<f32, true>;",
				`
					let length: f32 = 2.718;
					type Bad = array<f32, length>;
				`,
			},
			kind: ir.TypeInvalidArraySizeConstant,
		},
		{
			name: "non-positive array length",
			sources: []string{
				"type Bad = array<f32, 0>;",
				"type Bad = array<f32, -1>;",
			},
			kind: ir.TypeNonPositiveArrayLength,
		},
		{
			name: "struct member data",
			sources: []string{
				"struct Bad { data: sampler; };",
				"struct Bad { data: texture_2d<f32>; };",
			},
			kind: ir.TypeInvalidData,
		},
		{
			name: "dynamic array not last",
			sources: []string{
				"struct Bad { data: array<f32>; other: f32; };",
			},
			kind: ir.TypeInvalidDynamicArray,
		},
	}
	for _, tc := range tests {
		for i, source := range tc.sources {
			t.Run(tc.name, func(t *testing.T) {
				te := typeError(t, checkInvalid(t, source))
				if te.Kind != tc.kind {
					t.Fatalf("source %d: got %v, want kind %d", i, te, tc.kind)
				}
			})
		}
	}
}

func TestCheckPointerToUnsized(t *testing.T) {
	sources := []string{
		"fn unacceptable_unsized(arg: ptr<workgroup, array<f32>>) { }",
		`
			struct Unsized { data: array<f32>; };
			fn unacceptable_unsized(arg: ptr<workgroup, Unsized>) { }
		`,
	}
	for _, source := range sources {
		t.Run("workgroup", func(t *testing.T) {
			te := typeError(t, checkInvalid(t, source))
			be.Equal(t, te.Kind, ir.TypeInvalidPointerToUnsized)
			be.Equal(t, te.Space, ir.SpaceWorkGroup)
		})
	}
}

func TestCheckRuntimeSizedStruct(t *testing.T) {
	verr := checkInvalid(t, `
		struct Unsized {
			arr: array<f32>;
		};

		struct Outer {
			legit: i32;
			unsized: Unsized;
		};

		@group(0) @binding(0) var<storage> outer: Outer;

		fn fetch(i: i32) -> f32 {
		   return outer.unsized.arr[i];
		}
	`)
	te := typeError(t, verr)
	be.Equal(t, verr.Name, "Outer")
	be.Equal(t, te.Kind, ir.TypeInvalidDynamicArray)
	be.Equal(t, te.Member, "unsized")
	be.Equal(t, len(verr.Labels), 1)
}

func TestCheckFunctionArguments(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   ir.FunctionErrorKind
		space  ir.AddressSpace
	}{
		{
			name:   "unsized array",
			source: "fn unacceptable_unsized(arg: array<f32>) { }",
			kind:   ir.FunctionInvalidArgumentType,
		},
		{
			name: "unsized struct",
			source: `
				struct Unsized { data: array<f32>; };
				fn unacceptable_unsized(arg: Unsized) { }
			`,
			kind: ir.FunctionInvalidArgumentType,
		},
		{
			name:   "storage pointer",
			source: "fn unacceptable_ptr_class(arg: ptr<storage, array<f32>>) { }",
			kind:   ir.FunctionInvalidArgumentPointerSpace,
			space:  ir.SpaceStorage,
		},
		{
			name:   "uniform pointer",
			source: "fn unacceptable_ptr_class(arg: ptr<uniform, f32>) { }",
			kind:   ir.FunctionInvalidArgumentPointerSpace,
			space:  ir.SpaceUniform,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			verr := checkInvalid(t, tc.source)
			fe := functionError(t, verr)
			be.Equal(t, fe.Kind, tc.kind)
			be.Equal(t, fe.Index, uint32(0))
			be.Equal(t, fe.Name, "arg")
			be.True(t, strings.HasPrefix(verr.Name, "unacceptable_"))
			if tc.kind == ir.FunctionInvalidArgumentPointerSpace {
				be.Equal(t, fe.Space, tc.space)
			}
		})
	}
}

func TestCheckEntryPointBindings(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		kind    ir.EntryPointErrorKind
		index   uint32
		varying ir.VaryingErrorKind
		member  uint32
	}{
		{
			name: "argument",
			source: `
				@stage(vertex)
				fn vertex(input: vec4<f32>) -> @location(0) vec4<f32> {
				   return input;
				}
			`,
			kind:    ir.EntryPointArgument,
			varying: ir.VaryingMissingBinding,
		},
		{
			name: "second argument",
			source: `
				@stage(vertex)
				fn vertex(@location(0) input: vec4<f32>, more_input: f32) -> @location(0) vec4<f32> {
				   return input + more_input;
				}
			`,
			kind:    ir.EntryPointArgument,
			index:   1,
			varying: ir.VaryingMissingBinding,
		},
		{
			name: "result",
			source: `
				@stage(vertex)
				fn vertex(@location(0) input: vec4<f32>) -> vec4<f32> {
				   return input;
				}
			`,
			kind:    ir.EntryPointResult,
			varying: ir.VaryingMissingBinding,
		},
		{
			name: "struct member",
			source: `
				struct VertexIn {
				  @location(0) pos: vec4<f32>;
				  uv: vec2<f32>;
				};

				@stage(vertex)
				fn vertex(input: VertexIn) -> @location(0) vec4<f32> {
				   return input.pos;
				}
			`,
			kind:    ir.EntryPointArgument,
			varying: ir.VaryingMemberMissingBinding,
			member:  1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			verr := checkInvalid(t, tc.source)
			be.Equal(t, verr.Stage, ir.StageVertex)
			ep, varying := varyingError(t, verr)
			be.Equal(t, ep.Kind, tc.kind)
			be.Equal(t, ep.Index, tc.index)
			be.Equal(t, varying.Kind, tc.varying)
			be.Equal(t, varying.Member, tc.member)
		})
	}
}

func TestCheckExpressions(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   ir.ExpressionErrorKind
	}{
		{
			name: "array by value",
			source: `
				fn array_by_value(a: array<i32, 5>, i: i32) -> i32 {
					return a[i];
				}
			`,
			kind: ir.ExprErrorIndexMustBeConstant,
		},
		{
			name: "matrix by value",
			source: `
				fn matrix_by_value(m: mat4x4<f32>, i: i32) -> vec4<f32> {
					return m[i];
				}
			`,
			kind: ir.ExprErrorIndexMustBeConstant,
		},
		{
			name: "index out of bounds",
			source: `
				fn main() -> f32 {
					let a = array<f32, 3>(0., 1., 2.);
					return a[3];
				}
			`,
			kind: ir.ExprErrorIndexOutOfBounds,
		},
		{
			name: "let index out of bounds",
			source: `
				fn main() -> f32 {
					let a = array<f32, 3>(0., 1., 2.);
					let i = 3;
					return a[i];
				}
			`,
			kind: ir.ExprErrorIndexOutOfBounds,
		},
		{
			name: "select pointers",
			source: `
				fn select_pointers(which: bool) -> i32 {
					var x: i32 = 1;
					var y: i32 = 2;
					let ptr = select(&x, &y, which);
					return *ptr;
				}
			`,
			kind: ir.ExprErrorInvalidSelectTypes,
		},
		{
			name: "select arrays",
			source: `
				fn select_arrays(which: bool) -> i32 {
					var x: array<i32, 4>;
					var y: array<i32, 4>;
					let s = select(x, y, which);
					return s[0];
				}
			`,
			kind: ir.ExprErrorInvalidSelectTypes,
		},
		{
			name: "select structs",
			source: `
				struct S { member: i32; };
				fn select_structs(which: bool) -> S {
					var x: S = S(1);
					var y: S = S(2);
					let s = select(x, y, which);
					return s;
				}
			`,
			kind: ir.ExprErrorInvalidSelectTypes,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ee := expressionError(t, checkInvalid(t, tc.source))
			be.Equal(t, ee.Kind, tc.kind)
		})
	}
}

func TestCheckStatements(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		function string
		kind     ir.FunctionErrorKind
	}{
		{
			name: "local pointer variable",
			source: `
				struct Unsized { data: array<f32>; };
				fn local_ptr_dynamic_array(okay: ptr<storage, Unsized>) {
					var not_okay: ptr<storage, array<f32>> = &(*okay).data;
				}
			`,
			function: "local_ptr_dynamic_array",
			kind:     ir.FunctionLocalVariable,
		},
		{
			name: "dead code after block",
			source: `
				fn dead_code_after_block() -> i32 {
					{
						return 1;
					}
					return 2;
				}
			`,
			function: "dead_code_after_block",
			kind:     ir.FunctionInstructionsAfterReturn,
		},
		{
			name:     "let after return",
			source:   "fn f(a: i32) { return; let z = a + 1; }",
			function: "f",
			kind:     ir.FunctionInstructionsAfterReturn,
		},
		{
			name:     "let after break",
			source:   "fn f() { loop { break; let x = 1; } }",
			function: "f",
			kind:     ir.FunctionInstructionsAfterReturn,
		},
		{
			name:     "uninitialized var after return",
			source:   "fn f() { return; var y: i32; }",
			function: "f",
			kind:     ir.FunctionInstructionsAfterReturn,
		},
		{
			name: "last case falls through",
			source: `
				fn test_falltrough() {
				  switch(0) {
					default: {}
					case 0: {
					  fallthrough;
					}
				  }
				}
			`,
			function: "test_falltrough",
			kind:     ir.FunctionLastCaseFallTrough,
		},
		{
			name: "missing default case",
			source: `
				fn test_missing_default_case() {
				  switch(0) {
					case 0: {}
				  }
				}
			`,
			function: "test_missing_default_case",
			kind:     ir.FunctionMissingDefaultCase,
		},
		{
			name: "store to read-only storage",
			source: `
				struct Globals {
					i: i32;
				};

				@group(0) @binding(0)
				var<storage> globals: Globals;

				fn store(v: i32) {
					globals.i = v;
				}
			`,
			function: "store",
			kind:     ir.FunctionInvalidStorePointer,
		},
		{
			name: "store to uniform",
			source: `
				struct Globals {
					i: i32;
				};

				@group(0) @binding(0)
				var<uniform> globals: Globals;

				fn store(v: i32) {
					globals.i = v;
				}
			`,
			function: "store",
			kind:     ir.FunctionInvalidStorePointer,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			verr := checkInvalid(t, tc.source)
			fe := functionError(t, verr)
			be.Equal(t, verr.Name, tc.function)
			be.Equal(t, fe.Kind, tc.kind)
		})
	}
}

func TestCheckLocalVariableError(t *testing.T) {
	verr := checkInvalid(t, `
		struct Unsized { data: array<f32>; };
		fn local_ptr_dynamic_array(okay: ptr<storage, Unsized>) {
			var not_okay: ptr<storage, array<f32>> = &(*okay).data;
		}
	`)
	fe := functionError(t, verr)
	be.Equal(t, fe.Name, "not_okay")
	if fe.LocalVariableError == nil {
		t.Fatal("local variable error is missing")
	}
	be.Equal(t, fe.LocalVariableError.Kind, ir.LocalInvalidType)
}

func TestCheckFlags(t *testing.T) {
	source := "type Bad = array<f32, 0>;"
	_, _, err := Check(source, ir.ValidationFlagsAll, 0)
	be.Err(t, err, "validate: ")

	// Type checks always run: they compute the flags every other check uses.
	_, _, err = Check(source, 0, 0)
	be.Err(t, err, "is not positive")

	source = `
		fn f() {
			{
				return;
			}
			return;
		}
	`
	_, _, err = Check(source, ir.ValidationFlagsAll&^ir.ValidateBlocks, 0)
	be.Err(t, err, nil)
}

func TestCheckParseError(t *testing.T) {
	source := "fn main() { let a = b; }"
	module, info, err := Check(source, ir.ValidationFlagsAll, 0)
	be.Equal(t, module, (*ir.Module)(nil))
	be.Equal(t, info, (*ir.ModuleInfo)(nil))
	be.Err(t, err, "parse: ")

	var perr *wgsl.ParseError
	be.True(t, errors.As(err, &perr))
	be.Equal(t, perr.Kind, wgsl.ErrUnknownIdent)
}

func TestEmitToString(t *testing.T) {
	t.Run("parse error", func(t *testing.T) {
		source := "fn main() {\n    let a = b;\n}\n"
		_, _, err := Check(source, ir.ValidationFlagsAll, 0)
		want := "error: no definition in scope for identifier: 'b'\n" +
			"  ┌─ wgsl:2:13\n" +
			"  │\n" +
			"2 │     let a = b;\n" +
			"  │             ^ unknown identifier\n" +
			"\n"
		be.Equal(t, EmitToString(err, source), want)
	})

	t.Run("validation error", func(t *testing.T) {
		source := "struct Bad { data: array<f32>; other: f32; };\n"
		_, _, err := Check(source, ir.ValidationFlagsAll, 0)
		got := EmitToString(err, source)
		be.True(t, strings.HasPrefix(got, "error: type [2] 'Bad' is invalid\n"))
		be.True(t, strings.Contains(got, "┌─ wgsl:1:14\n"))
		be.True(t, strings.Contains(got, " member 'data'\n"))
		be.True(t, strings.Contains(got, "= note: "))
	})

	t.Run("type error", func(t *testing.T) {
		source := "type Bad = array<f32, 0>;\n"
		_, _, err := Check(source, ir.ValidationFlagsAll, 0)
		got := EmitToString(err, source)
		be.True(t, strings.HasPrefix(got, "error: type [2] '' is invalid\n"))
		be.True(t, strings.Contains(got, "  ┌─ wgsl:1:12\n"))
		be.True(t, strings.Contains(got, "1 │ type Bad = array<f32, 0>;\n  │            ^^^^^^^^^^^^^ invalid type\n"))
		be.True(t, strings.Contains(got, "= note: array size constant [0] is not positive\n"))
	})

	t.Run("other error", func(t *testing.T) {
		be.Equal(t, EmitToString(errors.New("boom"), ""), "error: boom\n")
	})
}
