package ir

import (
	"testing"

	"github.com/nalgeon/be"
)

func namedModule() *Module {
	four := ConstantHandle(0)
	return &Module{
		Types: []Type{
			{Inner: f32Scalar},
			{Inner: VectorType{Size: Vec3, Scalar: f32Scalar}},
			{Name: "Light", Inner: StructType{Members: []StructMember{{Name: "color", Type: 1}}, Size: 12}},
			{Inner: ArrayType{Base: 2, Size: ArraySize{Constant: &four}, Stride: 16}},
			{Inner: ArrayType{Base: 0, Stride: 4}},
			{Inner: i32Scalar},
			{Inner: PointerType{Base: 1, Space: SpaceFunction, Access: StorageReadWrite}},
			{Inner: PointerType{Base: 0, Space: SpaceStorage, Access: StorageLoad}},
		},
		Constants: []Constant{
			{Type: 5, Value: ScalarValue{Bits: 4, Kind: ScalarSint}},
			{Type: 5, Value: ScalarValue{Bits: 4, Kind: ScalarSint}},
		},
	}
}

func TestTypeName(t *testing.T) {
	module := namedModule()
	three := Vec3

	tests := []struct {
		inner TypeInner
		want  string
	}{
		{ScalarType{Kind: ScalarBool, Width: BoolWidth}, "bool"},
		{i32Scalar, "i32"},
		{u32Scalar, "u32"},
		{ScalarType{Kind: ScalarFloat, Width: 8}, "f64"},
		{VectorType{Size: Vec2, Scalar: u32Scalar}, "vec2<u32>"},
		{MatrixType{Columns: Vec4, Rows: Vec3, Scalar: f32Scalar}, "mat4x3<f32>"},
		{AtomicType{Scalar: i32Scalar}, "atomic<i32>"},
		{PointerType{Base: 2, Space: SpacePrivate}, "ptr<private, Light>"},
		{ValuePointerType{Scalar: f32Scalar, Space: SpaceFunction}, "ptr<function, f32>"},
		{ValuePointerType{Size: &three, Scalar: f32Scalar, Space: SpaceStorage}, "ptr<storage, vec3<f32>>"},
		{module.Types[3].Inner, "array<Light, 4>"},
		{module.Types[4].Inner, "array<f32>"},
		{SamplerType{Comparison: true}, "sampler_comparison"},
		{ImageType{Dim: Dim2D, SampledKind: ScalarFloat}, "texture_2d<f32>"},
		{ImageType{Dim: DimCube, Arrayed: true, SampledKind: ScalarSint}, "texture_cube_array<i32>"},
		{ImageType{Dim: Dim2D, Multisampled: true, SampledKind: ScalarUint}, "texture_multisampled_2d<u32>"},
		{ImageType{Dim: Dim2D, Class: ImageClassDepth}, "texture_depth_2d"},
		{ImageType{Dim: Dim3D, Class: ImageClassStorage}, "texture_storage_3d"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			be.Equal(t, TypeName(module, tc.inner), tc.want)
		})
	}
}

func TestHandleAndResolutionName(t *testing.T) {
	module := namedModule()
	be.Equal(t, HandleName(module, 2), "Light")
	be.Equal(t, HandleName(module, 1), "vec3<f32>")
	be.Equal(t, HandleName(module, 42), "unknown")
	be.Equal(t, ResolutionName(module, HandleResolution(2)), "Light")
	be.Equal(t, ResolutionName(module, ValueResolution(u32Scalar)), "u32")
}

func TestSameType(t *testing.T) {
	module := namedModule()
	three := Vec3
	other := ConstantHandle(1)

	tests := []struct {
		name string
		a, b TypeResolution
		want bool
	}{
		{"same handle", HandleResolution(0), HandleResolution(0), true},
		{"handle and value", HandleResolution(0), ValueResolution(f32Scalar), true},
		{"different scalars", HandleResolution(0), ValueResolution(i32Scalar), false},
		{"vector", HandleResolution(1), ValueResolution(VectorType{Size: Vec3, Scalar: f32Scalar}), true},
		{
			"pointer to vector and value pointer",
			HandleResolution(6),
			ValueResolution(ValuePointerType{Size: &three, Scalar: f32Scalar, Space: SpaceFunction, Access: StorageReadWrite}),
			true,
		},
		{
			"value pointer access",
			HandleResolution(6),
			ValueResolution(ValuePointerType{Size: &three, Scalar: f32Scalar, Space: SpaceFunction, Access: StorageLoad}),
			false,
		},
		{
			"pointer to scalar and value pointer",
			HandleResolution(7),
			ValueResolution(ValuePointerType{Scalar: f32Scalar, Space: SpaceStorage, Access: StorageLoad}),
			true,
		},
		{
			"value pointer vector and scalar",
			ValueResolution(ValuePointerType{Scalar: f32Scalar}),
			ValueResolution(ValuePointerType{Size: &three, Scalar: f32Scalar}),
			false,
		},
		{
			"arrays with equal length constants",
			HandleResolution(3),
			ValueResolution(ArrayType{Base: 2, Size: ArraySize{Constant: &other}, Stride: 16}),
			true,
		},
		{
			"sized and runtime arrays",
			HandleResolution(4),
			ValueResolution(ArrayType{Base: 0, Size: ArraySize{Constant: &other}, Stride: 4}),
			false,
		},
		{"struct against itself", HandleResolution(2), HandleResolution(2), true},
		{"struct by value", HandleResolution(2), ValueResolution(module.Types[2].Inner), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			be.Equal(t, SameType(module, tc.a, tc.b), tc.want)
			be.Equal(t, SameType(module, tc.b, tc.a), tc.want)
		})
	}
}
