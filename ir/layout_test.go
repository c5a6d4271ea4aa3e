package ir

import (
	"math"
	"testing"

	"github.com/nalgeon/be"
)

func TestRoundUp(t *testing.T) {
	tests := []struct {
		align, offset, want uint32
	}{
		{0, 7, 7},
		{1, 7, 7},
		{4, 0, 0},
		{4, 1, 4},
		{4, 4, 4},
		{16, 12, 16},
		{16, 17, 32},
	}
	for _, tc := range tests {
		be.Equal(t, RoundUp(tc.align, tc.offset), tc.want)
	}
}

func TestLayouter(t *testing.T) {
	three := ScalarValue{Bits: 3, Kind: ScalarSint}
	constants := []Constant{{Type: 1, Value: three}}
	c0 := ConstantHandle(0)

	types := []Type{
		{Inner: f32Scalar},
		{Inner: i32Scalar},
		{Inner: VectorType{Size: Vec2, Scalar: f32Scalar}},
		{Inner: VectorType{Size: Vec3, Scalar: f32Scalar}},
		{Inner: VectorType{Size: Vec4, Scalar: f32Scalar}},
		{Inner: MatrixType{Columns: Vec3, Rows: Vec3, Scalar: f32Scalar}},
		{Inner: MatrixType{Columns: Vec4, Rows: Vec2, Scalar: f32Scalar}},
		{Inner: ArrayType{Base: 3, Size: ArraySize{Constant: &c0}, Stride: 16}},
		{Inner: ArrayType{Base: 0, Stride: 4}},
		{Inner: StructType{Members: []StructMember{{Type: 0}, {Type: 3, Offset: 16}}, Size: 32}},
		{Inner: SamplerType{}},
		{Inner: AtomicType{Scalar: u32Scalar}},
		{Inner: ScalarType{Kind: ScalarBool, Width: BoolWidth}},
		{Inner: StructType{Members: []StructMember{{Type: 0}}, Size: 16, Alignment: 16}},
	}

	tests := []struct {
		handle TypeHandle
		want   TypeLayout
	}{
		{0, TypeLayout{Size: 4, Alignment: 4}},
		{2, TypeLayout{Size: 8, Alignment: 8}},
		{3, TypeLayout{Size: 12, Alignment: 16}},
		{4, TypeLayout{Size: 16, Alignment: 16}},
		{5, TypeLayout{Size: 48, Alignment: 16}},
		{6, TypeLayout{Size: 32, Alignment: 8}},
		{7, TypeLayout{Size: 48, Alignment: 16}},
		{8, TypeLayout{Size: 4, Alignment: 4}},
		{9, TypeLayout{Size: 32, Alignment: 16}},
		{10, TypeLayout{Alignment: 1}},
		{11, TypeLayout{Size: 4, Alignment: 4}},
		{12, TypeLayout{Size: 1, Alignment: 1}},
		{13, TypeLayout{Size: 16, Alignment: 16}},
		{99, TypeLayout{Alignment: 1}},
	}

	var l Layouter
	l.Update(types, constants)
	for _, tc := range tests {
		be.Equal(t, l.Layout(tc.handle), tc.want)
	}
}

func TestLayouterArrayOverflow(t *testing.T) {
	huge := ConstantHandle(0)
	types := []Type{
		{Inner: u32Scalar},
		{Inner: VectorType{Size: Vec4, Scalar: f32Scalar}},
		{Inner: ArrayType{Base: 1, Size: ArraySize{Constant: &huge}, Stride: 16}},
	}
	constants := []Constant{{Type: 0, Value: ScalarValue{Bits: 1_000_000_000, Kind: ScalarUint}}}

	var l Layouter
	l.Update(types, constants)
	be.Equal(t, l.Layout(2), TypeLayout{Size: math.MaxUint32, Alignment: 16})
}

func TestLayouterIncremental(t *testing.T) {
	types := []Type{{Inner: f32Scalar}}
	var l Layouter
	l.Update(types, nil)
	be.Equal(t, l.Layout(1), TypeLayout{Alignment: 1})

	types = append(types, Type{Inner: VectorType{Size: Vec4, Scalar: f32Scalar}})
	l.Update(types, nil)
	be.Equal(t, l.Layout(0), TypeLayout{Size: 4, Alignment: 4})
	be.Equal(t, l.Layout(1), TypeLayout{Size: 16, Alignment: 16})
}

func TestConstantLength(t *testing.T) {
	constants := []Constant{
		{Value: ScalarValue{Bits: 4, Kind: ScalarSint}},
		{Value: ScalarValue{Bits: 7, Kind: ScalarUint}},
		{Value: ScalarValue{Bits: 0, Kind: ScalarUint}},
		{Value: ScalarValue{Bits: uint64(^uint64(0)), Kind: ScalarSint}}, // -1
		{Value: ScalarValue{Bits: 1, Kind: ScalarBool}},
		{Value: CompositeValue{Components: []ConstantHandle{0, 1}}},
		{Value: ScalarValue{Bits: 1 << 33, Kind: ScalarUint}},
	}
	tests := []struct {
		name   string
		handle ConstantHandle
		want   uint32
		ok     bool
	}{
		{"sint", 0, 4, true},
		{"uint", 1, 7, true},
		{"zero", 2, 0, false},
		{"negative", 3, 0, false},
		{"bool", 4, 0, false},
		{"composite", 5, 0, false},
		{"too large", 6, 0, false},
		{"out of range", 7, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, ok := ConstantLength(constants, tc.handle)
			be.Equal(t, n, tc.want)
			be.Equal(t, ok, tc.ok)
		})
	}
}
