package ir

import (
	"testing"

	"github.com/nalgeon/be"
)

var (
	f32Scalar = ScalarType{Kind: ScalarFloat, Width: 4}
	i32Scalar = ScalarType{Kind: ScalarSint, Width: 4}
	u32Scalar = ScalarType{Kind: ScalarUint, Width: 4}
)

func TestTypeRegistryDeduplication(t *testing.T) {
	c0, c1 := ConstantHandle(0), ConstantHandle(1)
	size := Vec3

	tests := []struct {
		name string
		a, b TypeInner
		same bool
	}{
		{"same scalar", f32Scalar, f32Scalar, true},
		{"scalar kind", f32Scalar, i32Scalar, false},
		{"scalar width", f32Scalar, ScalarType{Kind: ScalarFloat, Width: 2}, false},
		{"same vector", VectorType{Size: Vec4, Scalar: f32Scalar}, VectorType{Size: Vec4, Scalar: f32Scalar}, true},
		{"vector size", VectorType{Size: Vec4, Scalar: f32Scalar}, VectorType{Size: Vec3, Scalar: f32Scalar}, false},
		{"vector scalar", VectorType{Size: Vec4, Scalar: f32Scalar}, VectorType{Size: Vec4, Scalar: i32Scalar}, false},
		{"same matrix", MatrixType{Columns: Vec4, Rows: Vec4, Scalar: f32Scalar}, MatrixType{Columns: Vec4, Rows: Vec4, Scalar: f32Scalar}, true},
		{"matrix shape", MatrixType{Columns: Vec2, Rows: Vec3, Scalar: f32Scalar}, MatrixType{Columns: Vec3, Rows: Vec2, Scalar: f32Scalar}, false},
		{"same array", ArrayType{Base: 0, Size: ArraySize{Constant: &c0}, Stride: 4}, ArrayType{Base: 0, Size: ArraySize{Constant: &c0}, Stride: 4}, true},
		{"array size", ArrayType{Base: 0, Size: ArraySize{Constant: &c0}, Stride: 4}, ArrayType{Base: 0, Size: ArraySize{Constant: &c1}, Stride: 4}, false},
		{"runtime array", ArrayType{Base: 0, Stride: 4}, ArrayType{Base: 0, Size: ArraySize{Constant: &c0}, Stride: 4}, false},
		{"array stride", ArrayType{Base: 0, Stride: 4}, ArrayType{Base: 0, Stride: 16}, false},
		{"same pointer", PointerType{Base: 0, Space: SpaceFunction, Access: StorageReadWrite}, PointerType{Base: 0, Space: SpaceFunction, Access: StorageReadWrite}, true},
		{"pointer space", PointerType{Base: 0, Space: SpaceFunction}, PointerType{Base: 0, Space: SpacePrivate}, false},
		{"pointer access", PointerType{Base: 0, Space: SpaceStorage, Access: StorageLoad}, PointerType{Base: 0, Space: SpaceStorage, Access: StorageReadWrite}, false},
		{"value pointer size", ValuePointerType{Scalar: f32Scalar}, ValuePointerType{Size: &size, Scalar: f32Scalar}, false},
		{"same sampler", SamplerType{}, SamplerType{}, true},
		{"comparison sampler", SamplerType{}, SamplerType{Comparison: true}, false},
		{"same image", ImageType{Dim: Dim2D, SampledKind: ScalarFloat}, ImageType{Dim: Dim2D, SampledKind: ScalarFloat}, true},
		{"image arrayed", ImageType{Dim: Dim2D}, ImageType{Dim: Dim2D, Arrayed: true}, false},
		{"image class", ImageType{Dim: Dim2D}, ImageType{Dim: Dim2D, Class: ImageClassDepth}, false},
		{"image format", ImageType{Dim: Dim2D, Class: ImageClassStorage, StorageFormat: StorageFormatRgba8Unorm},
			ImageType{Dim: Dim2D, Class: ImageClassStorage, StorageFormat: StorageFormatRgba32Float}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewTypeRegistry()
			a := r.GetOrCreate("", tc.a)
			b := r.GetOrCreate("", tc.b)
			be.Equal(t, a == b, tc.same)
			if tc.same {
				be.Equal(t, r.Count(), 1)
			} else {
				be.Equal(t, r.Count(), 2)
			}
		})
	}
}

func TestTypeRegistryStructs(t *testing.T) {
	r := NewTypeRegistry()
	f32 := r.GetOrCreate("", f32Scalar)
	body := StructType{Members: []StructMember{{Name: "x", Type: f32}}, Size: 4}

	a := r.GetOrCreate("A", body)
	be.Equal(t, r.GetOrCreate("A", body), a)

	// Structs are nominal: the same shape under another name is a new type.
	b := r.GetOrCreate("B", body)
	be.True(t, a != b)

	// Other types ignore the name they are registered with.
	be.Equal(t, r.GetOrCreate("float", f32Scalar), f32)

	renamed := StructType{Members: []StructMember{{Name: "y", Type: f32}}, Size: 4}
	be.True(t, r.GetOrCreate("A", renamed) != a)
	be.Equal(t, r.Count(), 4)
}

func TestTypeRegistryLookup(t *testing.T) {
	r := NewTypeRegistry()
	h := r.GetOrCreate("", VectorType{Size: Vec2, Scalar: u32Scalar})

	ty, ok := r.Lookup(h)
	be.True(t, ok)
	be.Equal(t, ty.Inner, TypeInner(VectorType{Size: Vec2, Scalar: u32Scalar}))

	_, ok = r.Lookup(h + 1)
	be.Equal(t, ok, false)

	types := r.GetTypes()
	be.Equal(t, len(types), 1)
}

func TestTypeRegistryHandlesInOrder(t *testing.T) {
	r := NewTypeRegistry()
	f32 := r.GetOrCreate("", f32Scalar)
	vec := r.GetOrCreate("", VectorType{Size: Vec4, Scalar: f32Scalar})
	arr := r.GetOrCreate("", ArrayType{Base: vec, Stride: 16})
	ptr := r.GetOrCreate("", PointerType{Base: arr, Space: SpaceStorage, Access: StorageLoad})

	be.Equal(t, []TypeHandle{f32, vec, arr, ptr}, []TypeHandle{0, 1, 2, 3})
}
