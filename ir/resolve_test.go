package ir

import (
	"testing"

	"github.com/nalgeon/be"
)

// resolveAll resolves every expression of fn in arena order.
func resolveAll(t *testing.T, module *Module, fn *Function) []TypeResolution {
	t.Helper()
	resolved := make([]TypeResolution, 0, len(fn.Expressions))
	for i := range fn.Expressions {
		r, err := ResolveExpressionType(module, fn, resolved, ExpressionHandle(i))
		if err != nil {
			t.Fatalf("expression [%d]: %v", i, err)
		}
		resolved = append(resolved, r)
	}
	return resolved
}

func exprs(kinds ...ExpressionKind) []Expression {
	out := make([]Expression, len(kinds))
	for i, k := range kinds {
		out[i] = Expression{Kind: k}
	}
	return out
}

func TestResolveLiterals(t *testing.T) {
	tests := []struct {
		value LiteralValue
		want  ScalarType
	}{
		{LiteralF32(1.5), f32Scalar},
		{LiteralF64(1.5), ScalarType{Kind: ScalarFloat, Width: 8}},
		{LiteralI32(-3), i32Scalar},
		{LiteralU32(3), u32Scalar},
		{LiteralBool(true), ScalarType{Kind: ScalarBool, Width: BoolWidth}},
	}
	for _, tc := range tests {
		got, err := resolveLiteralType(Literal{Value: tc.value})
		be.Err(t, err, nil)
		be.Equal(t, got.Value, TypeInner(tc.want))
		be.True(t, got.Handle == nil)
	}
}

func TestResolveAccess(t *testing.T) {
	four := ConstantHandle(0)
	module := &Module{
		Types: []Type{
			{Inner: f32Scalar},
			{Inner: VectorType{Size: Vec4, Scalar: f32Scalar}},
			{Inner: MatrixType{Columns: Vec4, Rows: Vec3, Scalar: f32Scalar}},
			{Inner: ArrayType{Base: 1, Size: ArraySize{Constant: &four}, Stride: 16}},
			{Name: "S", Inner: StructType{Members: []StructMember{{Name: "m", Type: 2}, {Name: "a", Type: 3}}, Size: 128}},
			{Inner: i32Scalar},
		},
		Constants: []Constant{{Type: 5, Value: ScalarValue{Bits: 4, Kind: ScalarSint}}},
		GlobalVariables: []GlobalVariable{
			{Name: "s", Space: SpaceStorage, Access: StorageLoad, Type: 4},
		},
	}
	fn := &Function{
		Expressions: exprs(
			ExprGlobalVariable{Variable: 0},    // 0: ptr<storage, S>
			ExprAccessIndex{Base: 0, Index: 0}, // 1: ptr<storage, mat4x3<f32>>
			ExprAccessIndex{Base: 1, Index: 2}, // 2: ptr<storage, vec3<f32>>
			ExprAccessIndex{Base: 2, Index: 1}, // 3: ptr<storage, f32>
			ExprAccessIndex{Base: 0, Index: 1}, // 4: ptr<storage, array<vec4<f32>, 4>>
			Literal{Value: LiteralI32(2)},      // 5
			ExprAccess{Base: 4, Index: 5},      // 6: ptr<storage, vec4<f32>>
			ExprLoad{Pointer: 6},               // 7: vec4<f32>
			ExprAccess{Base: 7, Index: 5},      // 8: f32
			ExprLoad{Pointer: 3},               // 9: f32
		),
	}
	got := resolveAll(t, module, fn)

	three := Vec3
	be.Equal(t, got[1].Value, TypeInner(PointerType{Base: 2, Space: SpaceStorage, Access: StorageLoad}))
	be.True(t, SameType(module, got[2], ValueResolution(ValuePointerType{Size: &three, Scalar: f32Scalar, Space: SpaceStorage, Access: StorageLoad})))
	be.Equal(t, got[3].Value, TypeInner(ValuePointerType{Scalar: f32Scalar, Space: SpaceStorage, Access: StorageLoad}))
	be.Equal(t, got[4].Value, TypeInner(PointerType{Base: 3, Space: SpaceStorage, Access: StorageLoad}))
	be.Equal(t, got[6].Value, TypeInner(PointerType{Base: 1, Space: SpaceStorage, Access: StorageLoad}))
	be.Equal(t, *got[7].Handle, TypeHandle(1))
	be.Equal(t, got[8].Value, TypeInner(f32Scalar))
	be.Equal(t, got[9].Value, TypeInner(f32Scalar))
}

func TestResolveOperators(t *testing.T) {
	module := &Module{
		Types: []Type{
			{Inner: f32Scalar},
			{Inner: VectorType{Size: Vec3, Scalar: f32Scalar}},
			{Inner: MatrixType{Columns: Vec4, Rows: Vec3, Scalar: f32Scalar}},
			{Inner: VectorType{Size: Vec4, Scalar: f32Scalar}},
		},
	}
	fn := &Function{
		Arguments: []FunctionArgument{
			{Name: "x", Type: 0},
			{Name: "v", Type: 1},
			{Name: "m", Type: 2},
			{Name: "w", Type: 3},
		},
		Expressions: exprs(
			ExprFunctionArgument{Index: 0},                                                       // 0: f32
			ExprFunctionArgument{Index: 1},                                                       // 1: vec3<f32>
			ExprFunctionArgument{Index: 2},                                                       // 2: mat4x3<f32>
			ExprFunctionArgument{Index: 3},                                                       // 3: vec4<f32>
			ExprBinary{Op: BinaryMultiply, Left: 0, Right: 1},                                    // 4: vec3<f32>
			ExprBinary{Op: BinaryMultiply, Left: 2, Right: 3},                                    // 5: vec3<f32>
			ExprBinary{Op: BinaryMultiply, Left: 1, Right: 2},                                    // 6: vec4<f32>
			ExprBinary{Op: BinaryLess, Left: 1, Right: 1},                                        // 7: vec3<bool>
			ExprRelational{Fun: RelationalAll, Argument: 7},                                      // 8: bool
			ExprSplat{Size: Vec2, Value: 0},                                                      // 9: vec2<f32>
			ExprSwizzle{Size: Vec2, Vector: 1, Pattern: [4]SwizzleComponent{SwizzleZ, SwizzleX}}, // 10
			ExprAs{Expr: 1, Kind: ScalarSint},                                                    // 11: vec3<i32>
			ExprMath{Fun: MathDot, Arg: 1},                                                       // 12: f32
			ExprMath{Fun: MathTranspose, Arg: 2},                                                 // 13: mat3x4<f32>
			ExprArrayLength{Array: 0},                                                            // 14: u32
		),
	}
	got := resolveAll(t, module, fn)

	vec3f := VectorType{Size: Vec3, Scalar: f32Scalar}
	boolean := ScalarType{Kind: ScalarBool, Width: BoolWidth}
	inner := func(i int) TypeInner { return got[i].Inner(module) }

	be.Equal(t, inner(4), TypeInner(vec3f))
	be.Equal(t, inner(5), TypeInner(vec3f))
	be.Equal(t, inner(6), TypeInner(VectorType{Size: Vec4, Scalar: f32Scalar}))
	be.Equal(t, inner(7), TypeInner(VectorType{Size: Vec3, Scalar: boolean}))
	be.Equal(t, inner(8), TypeInner(boolean))
	be.Equal(t, inner(9), TypeInner(VectorType{Size: Vec2, Scalar: f32Scalar}))
	be.Equal(t, inner(10), TypeInner(VectorType{Size: Vec2, Scalar: f32Scalar}))
	be.Equal(t, inner(11), TypeInner(VectorType{Size: Vec3, Scalar: i32Scalar}))
	be.Equal(t, inner(12), TypeInner(f32Scalar))
	be.Equal(t, inner(13), TypeInner(MatrixType{Columns: Vec3, Rows: Vec4, Scalar: f32Scalar}))
	be.Equal(t, inner(14), TypeInner(u32Scalar))
}

func TestResolveImages(t *testing.T) {
	module := &Module{
		Types: []Type{
			{Inner: ImageType{Dim: Dim2D, SampledKind: ScalarUint}},
			{Inner: ImageType{Dim: Dim2D, Class: ImageClassDepth}},
			{Inner: ImageType{Dim: Dim3D, Class: ImageClassStorage, StorageFormat: StorageFormatRgba8Sint}},
			{Inner: SamplerType{}},
		},
		GlobalVariables: []GlobalVariable{
			{Name: "color", Space: SpaceHandle, Type: 0},
			{Name: "depth", Space: SpaceHandle, Type: 1},
			{Name: "volume", Space: SpaceHandle, Type: 2},
			{Name: "samp", Space: SpaceHandle, Type: 3},
		},
	}
	fn := &Function{
		Expressions: exprs(
			ExprGlobalVariable{Variable: 0},
			ExprGlobalVariable{Variable: 1},
			ExprGlobalVariable{Variable: 2},
			ExprGlobalVariable{Variable: 3},
			Literal{Value: LiteralF32(0)},
			ExprImageSample{Image: 1, Sampler: 3, Coordinate: 4, Level: SampleLevelAuto{}},
			ExprImageLoad{Image: 0, Coordinate: 4},
			ExprImageLoad{Image: 2, Coordinate: 4},
			ExprImageQuery{Image: 2, Query: ImageQuerySize{}},
			ExprImageQuery{Image: 0, Query: ImageQueryNumLevels{}},
		),
	}
	got := resolveAll(t, module, fn)

	// Opaque globals resolve to their type, not a pointer.
	be.Equal(t, *got[0].Handle, TypeHandle(0))
	be.Equal(t, got[5].Value, TypeInner(f32Scalar))
	be.Equal(t, got[6].Value, TypeInner(VectorType{Size: Vec4, Scalar: u32Scalar}))
	be.Equal(t, got[7].Value, TypeInner(VectorType{Size: Vec4, Scalar: i32Scalar}))
	be.Equal(t, got[8].Value, TypeInner(VectorType{Size: Vec3, Scalar: u32Scalar}))
	be.Equal(t, got[9].Value, TypeInner(u32Scalar))
}

func TestResolveErrors(t *testing.T) {
	module := &Module{
		Types: []Type{
			{Name: "S", Inner: StructType{Members: []StructMember{{Name: "x", Type: 1}}, Size: 4}},
			{Inner: f32Scalar},
		},
		Functions: []Function{{Name: "nothing"}},
	}
	tests := []struct {
		name string
		kind ExpressionKind
		want string
	}{
		{"forward reference", ExprLoad{Pointer: 5}, "not yet resolved"},
		{"dynamic struct index", ExprAccess{Base: 0, Index: 0}, "dynamic index"},
		{"struct index bounds", ExprAccessIndex{Base: 0, Index: 3}, "out of bounds"},
		{"argument", ExprFunctionArgument{Index: 9}, "out of range"},
		{"call without result", ExprCallResult{Function: 0}, "has no return type"},
		{"constant", ExprConstant{Constant: 2}, "out of range"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fn := &Function{
				Arguments:   []FunctionArgument{{Name: "s", Type: 0}},
				Expressions: exprs(ExprFunctionArgument{Index: 0}, tc.kind),
			}
			resolved := []TypeResolution{HandleResolution(0)}
			_, err := ResolveExpressionType(module, fn, resolved, 1)
			be.Err(t, err, tc.want)
		})
	}

	_, err := ResolveExpressionType(module, &Function{}, nil, 0)
	be.Err(t, err, "out of range")
}
