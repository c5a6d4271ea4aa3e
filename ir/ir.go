package ir

import "github.com/gogpu/wgslfront/diag"

// Span is a byte range into the source a module was lowered from.
type Span = diag.Span

// Module is a lowered WGSL translation unit. Every cross reference is a
// handle indexing one of its slices, and handles only point backwards.
type Module struct {
	// Types holds all type definitions, deduplicated structurally.
	Types []Type

	// Constants holds module-scope constants, both named and anonymous.
	Constants []Constant

	// GlobalVariables holds module-scope `var` declarations.
	GlobalVariables []GlobalVariable

	// Functions holds all function definitions, entry points included.
	Functions []Function

	// EntryPoints names the functions marked with a stage attribute.
	EntryPoints []EntryPoint
}

// EntryPoint marks a function as a pipeline stage. Name equals the
// function's name.
type EntryPoint struct {
	Name           string
	Stage          ShaderStage
	EarlyDepthTest *EarlyDepthTest
	Workgroup      [3]uint32 // zero outside compute
	Function       FunctionHandle
}

// ShaderStage is the pipeline stage of an entry point.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	}
	return "unknown"
}

// EarlyDepthTest requests depth testing before the fragment shader runs.
type EarlyDepthTest struct {
	Conservative *ConservativeDepth
}

// ConservativeDepth promises how a fragment shader changes depth.
type ConservativeDepth uint8

const (
	DepthGreaterEqual ConservativeDepth = iota
	DepthLessEqual
	DepthUnchanged
)

// Handles index the arenas of a Module or, for expressions, of a
// Function.
type (
	TypeHandle           uint32
	FunctionHandle       uint32
	GlobalVariableHandle uint32
	ConstantHandle       uint32
	ExpressionHandle     uint32
)

// Type is one entry of the type arena.
type Type struct {
	Name  string // empty for anonymous types
	Inner TypeInner
	Span  Span // first place the type is written; unknown for implied types
}

// TypeInner is the structure of a type. Its dynamic Go type is the
// variant.
type TypeInner interface {
	typeInner()
}

// ScalarType is bool, i32, u32, f32, or f64.
type ScalarType struct {
	Kind  ScalarKind
	Width uint8 // in bytes
}

func (ScalarType) typeInner() {}

// ScalarKind is the numeric class of a scalar.
type ScalarKind uint8

const (
	ScalarSint ScalarKind = iota
	ScalarUint
	ScalarFloat
	ScalarBool
)

// BoolWidth is the Width of every bool scalar.
const BoolWidth = 1

// VectorType is vecN<T>.
type VectorType struct {
	Size   VectorSize
	Scalar ScalarType
}

func (VectorType) typeInner() {}

// VectorSize is a component count, 2 to 4.
type VectorSize uint8

const (
	Vec2 VectorSize = 2
	Vec3 VectorSize = 3
	Vec4 VectorSize = 4
)

// MatrixType is matCxR<f32>, stored as Columns vectors of Rows floats.
type MatrixType struct {
	Columns VectorSize
	Rows    VectorSize
	Scalar  ScalarType
}

func (MatrixType) typeInner() {}

// AtomicType is atomic<i32> or atomic<u32>.
type AtomicType struct {
	Scalar ScalarType
}

func (AtomicType) typeInner() {}

// PointerType is ptr<space, T> for a T in the arena. References to
// variables resolve to pointers too.
type PointerType struct {
	Base   TypeHandle
	Space  AddressSpace
	Access StorageAccess
}

func (PointerType) typeInner() {}

// ValuePointerType is a pointer to a scalar or vector that has no entry
// of its own in the arena, as produced by accessing a matrix column or a
// vector component through a pointer. A nil Size points to a scalar.
type ValuePointerType struct {
	Size   *VectorSize
	Scalar ScalarType
	Space  AddressSpace
	Access StorageAccess
}

func (ValuePointerType) typeInner() {}

// ArrayType is array<T, N>, or array<T> when Size has no constant.
type ArrayType struct {
	Base   TypeHandle
	Size   ArraySize
	Stride uint32
}

func (ArrayType) typeInner() {}

// ArraySize holds the length constant. Lowering does not check it, so
// the validator can report non-integer and non-positive sizes.
type ArraySize struct {
	Constant *ConstantHandle // nil for runtime-sized arrays
}

// StructType is a struct with laid-out members. Structs are nominal:
// equal shapes under different names are different types.
type StructType struct {
	Members   []StructMember
	Size      uint32 // in bytes
	Alignment uint32 // largest member alignment after @align; 0 derives it from the members
}

func (StructType) typeInner() {}

// StructMember is one field with its byte offset.
type StructMember struct {
	Name    string
	Type    TypeHandle
	Binding Binding // I/O binding when the struct is an entry point interface
	Offset  uint32
	Span    Span
}

// AddressSpace is where a variable lives. Textures and samplers live
// in SpaceHandle.
type AddressSpace uint8

const (
	SpaceFunction AddressSpace = iota
	SpacePrivate
	SpaceWorkGroup
	SpaceUniform
	SpaceStorage
	SpacePushConstant
	SpaceHandle
)

func (s AddressSpace) String() string {
	switch s {
	case SpaceFunction:
		return "function"
	case SpacePrivate:
		return "private"
	case SpaceWorkGroup:
		return "workgroup"
	case SpaceUniform:
		return "uniform"
	case SpaceStorage:
		return "storage"
	case SpacePushConstant:
		return "push_constant"
	case SpaceHandle:
		return "handle"
	}
	return "unknown"
}

// StorageAccess is a set of permitted memory operations.
type StorageAccess uint8

const (
	StorageLoad  StorageAccess = 1 << 0
	StorageStore StorageAccess = 1 << 1

	StorageReadWrite = StorageLoad | StorageStore
)

func (a StorageAccess) String() string {
	switch a {
	case StorageLoad:
		return "read"
	case StorageStore:
		return "write"
	case StorageReadWrite:
		return "read_write"
	}
	return ""
}

// SamplerType is sampler or sampler_comparison.
type SamplerType struct {
	Comparison bool
}

func (SamplerType) typeInner() {}

// ImageType is any texture_* type.
type ImageType struct {
	Dim          ImageDimension
	Arrayed      bool
	Class        ImageClass
	Multisampled bool

	// SampledKind is the texel kind of sampled images.
	SampledKind ScalarKind

	// StorageFormat and StorageAccess describe storage images.
	StorageFormat StorageFormat
	StorageAccess StorageAccess
}

func (ImageType) typeInner() {}

// ImageDimension is the dimensionality of a texture.
type ImageDimension uint8

const (
	Dim1D ImageDimension = iota
	Dim2D
	Dim3D
	DimCube
)

// ImageClass separates sampled, depth, and storage textures.
type ImageClass uint8

const (
	ImageClassSampled ImageClass = iota
	ImageClassDepth
	ImageClassStorage
)

// StorageFormat is the texel format of a storage image.
type StorageFormat uint8

const (
	StorageFormatR8Unorm StorageFormat = iota
	StorageFormatR8Snorm
	StorageFormatR8Uint
	StorageFormatR8Sint
	StorageFormatR16Uint
	StorageFormatR16Sint
	StorageFormatR16Float
	StorageFormatRg8Unorm
	StorageFormatRg8Snorm
	StorageFormatRg8Uint
	StorageFormatRg8Sint
	StorageFormatR32Uint
	StorageFormatR32Sint
	StorageFormatR32Float
	StorageFormatRg16Uint
	StorageFormatRg16Sint
	StorageFormatRg16Float
	StorageFormatRgba8Unorm
	StorageFormatRgba8Snorm
	StorageFormatRgba8Uint
	StorageFormatRgba8Sint
	StorageFormatRgb10a2Unorm
	StorageFormatRg11b10Float
	StorageFormatRg32Uint
	StorageFormatRg32Sint
	StorageFormatRg32Float
	StorageFormatRgba16Uint
	StorageFormatRgba16Sint
	StorageFormatRgba16Float
	StorageFormatRgba32Uint
	StorageFormatRgba32Sint
	StorageFormatRgba32Float
)

// Constant is a module-scope value. Literal array sizes become
// anonymous constants.
type Constant struct {
	Name  string // empty for anonymous constants
	Type  TypeHandle
	Value ConstantValue
	Span  Span
}

// ConstantValue is ScalarValue or CompositeValue.
type ConstantValue interface {
	constantValue()
}

// ScalarValue stores a scalar as raw bits: two's complement for
// integers, IEEE for floats, 0 or 1 for bool.
type ScalarValue struct {
	Bits uint64
	Kind ScalarKind
}

func (ScalarValue) constantValue() {}

// CompositeValue builds a vector, matrix, array or struct from earlier
// constants.
type CompositeValue struct {
	Components []ConstantHandle
}

func (CompositeValue) constantValue() {}

// GlobalVariable is a module-scope `var`.
type GlobalVariable struct {
	Name    string
	Space   AddressSpace
	Access  StorageAccess // meaningful for SpaceStorage
	Binding *ResourceBinding
	Type    TypeHandle
	Init    *ConstantHandle
	Span    Span
}

// ResourceBinding is @group(G) @binding(B).
type ResourceBinding struct {
	Group   uint32
	Binding uint32
}

// Function is a lowered function body with its expression arena.
type Function struct {
	Name            string
	Arguments       []FunctionArgument
	Result          *FunctionResult
	LocalVars       []LocalVariable
	Expressions     []Expression
	ExpressionTypes []TypeResolution // filled by lowering, parallel to Expressions

	// NamedExpressions records let bindings by the expression they name.
	NamedExpressions map[ExpressionHandle]string

	Body Block
	Span Span
}

// FunctionArgument is one parameter. Binding is set on entry points.
type FunctionArgument struct {
	Name    string
	Type    TypeHandle
	Binding Binding
	Span    Span
}

// FunctionResult is the return type and, on entry points, its binding.
type FunctionResult struct {
	Type    TypeHandle
	Binding Binding
}

// LocalVariable represents a function-local variable. When Init is set,
// the body stores it into the variable where the declaration appeared.
type LocalVariable struct {
	Name string
	Type TypeHandle
	Init *ExpressionHandle
	Span Span
}

// Binding is an entry point I/O binding: BuiltinBinding or
// LocationBinding.
type Binding interface {
	binding()
}

// BuiltinBinding is @builtin(name).
type BuiltinBinding struct {
	Builtin BuiltinValue
}

func (BuiltinBinding) binding() {}

// BuiltinValue names a WGSL built-in input or output.
type BuiltinValue uint8

const (
	BuiltinPosition BuiltinValue = iota
	BuiltinVertexIndex
	BuiltinInstanceIndex
	BuiltinFrontFacing
	BuiltinFragDepth
	BuiltinPrimitiveIndex
	BuiltinSampleIndex
	BuiltinSampleMask
	BuiltinLocalInvocationID
	BuiltinLocalInvocationIndex
	BuiltinGlobalInvocationID
	BuiltinWorkGroupID
	BuiltinNumWorkGroups
)

// LocationBinding is @location(n) with optional @interpolate.
type LocationBinding struct {
	Location      uint32
	Interpolation *Interpolation
}

func (LocationBinding) binding() {}

// Interpolation is the argument list of @interpolate.
type Interpolation struct {
	Kind     InterpolationKind
	Sampling InterpolationSampling
}

// InterpolationKind is perspective, linear, or flat.
type InterpolationKind uint8

const (
	InterpolationPerspective InterpolationKind = iota
	InterpolationLinear
	InterpolationFlat
)

// InterpolationSampling is center, centroid, or sample.
type InterpolationSampling uint8

const (
	SamplingCenter InterpolationSampling = iota
	SamplingCentroid
	SamplingSample
)

// TypeResolution is the type of an expression: a handle into the type
// arena when one exists, otherwise an inline TypeInner such as a
// ValuePointerType.
type TypeResolution struct {
	Handle *TypeHandle
	Value  TypeInner // used when Handle is nil
}
