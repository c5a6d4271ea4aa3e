package ir

// Expression is one entry of a function's expression arena. Operands are
// handles to earlier entries, so the arena is already in evaluation
// order and type resolution is a single forward pass.
type Expression struct {
	Kind ExpressionKind
	Span Span
}

// ExpressionKind is implemented by Literal and the Expr* types.
type ExpressionKind interface {
	expressionKind()
}

// Values.

// Literal is a concretely typed literal: `1` is i32, `1u` u32, `1.0` f32.
type Literal struct {
	Value LiteralValue
}

// LiteralValue holds the value of a Literal. Its Go type picks the IR
// scalar type.
type LiteralValue interface {
	literalValue()
}

type (
	LiteralF64  float64
	LiteralF32  float32
	LiteralU32  uint32
	LiteralI32  int32
	LiteralBool bool
)

// ExprConstant reads a module-scope constant.
type ExprConstant struct {
	Constant ConstantHandle
}

// ExprZeroValue is the zero value of Type, written `T()` in source.
type ExprZeroValue struct {
	Type TypeHandle
}

// ExprCompose builds a vector, matrix, array or struct from one
// component per element, column or member.
type ExprCompose struct {
	Type       TypeHandle
	Components []ExpressionHandle
}

// ExprSplat fills every component of a vector with one scalar.
type ExprSplat struct {
	Size  VectorSize
	Value ExpressionHandle
}

// ExprSwizzle picks Size components of Vector in Pattern order.
type ExprSwizzle struct {
	Size    VectorSize
	Vector  ExpressionHandle
	Pattern [4]SwizzleComponent
}

// SwizzleComponent names a vector component; xyzw and rgba map to the
// same values.
type SwizzleComponent uint8

const (
	SwizzleX SwizzleComponent = iota
	SwizzleY
	SwizzleZ
	SwizzleW
)

// Access and variables.

// ExprAccess indexes an array, vector or matrix with a runtime index.
// Indexing a pointer yields a pointer to the element.
type ExprAccess struct {
	Base  ExpressionHandle
	Index ExpressionHandle
}

// ExprAccessIndex indexes with a constant, and is the only way to reach
// a struct member.
type ExprAccessIndex struct {
	Base  ExpressionHandle
	Index uint32
}

// ExprFunctionArgument is the value of the Index-th parameter.
type ExprFunctionArgument struct {
	Index uint32
}

// ExprGlobalVariable is a pointer to a global, except in the handle
// space, where textures and samplers are used by value.
type ExprGlobalVariable struct {
	Variable GlobalVariableHandle
}

// ExprLocalVariable is a function-space pointer to a local.
type ExprLocalVariable struct {
	Variable uint32 // index into Function.LocalVars
}

// ExprLoad reads through a pointer.
type ExprLoad struct {
	Pointer ExpressionHandle
}

// ExprArrayLength is arrayLength(): the element count of a runtime-sized
// array reached through a storage pointer.
type ExprArrayLength struct {
	Array ExpressionHandle
}

// ExprCallResult receives the value returned by the StmtCall naming it.
type ExprCallResult struct {
	Function FunctionHandle
}

// Textures.

// ExprImageSample is the textureSample family.
type ExprImageSample struct {
	Image      ExpressionHandle
	Sampler    ExpressionHandle
	Coordinate ExpressionHandle
	ArrayIndex *ExpressionHandle
	Offset     *ExpressionHandle
	Level      SampleLevel
	DepthRef   *ExpressionHandle // textureSampleCompare
}

// SampleLevel selects the mip level a sample reads.
type SampleLevel interface {
	sampleLevel()
}

// SampleLevelAuto is plain textureSample.
type SampleLevelAuto struct{}

// SampleLevelZero is textureSampleCompareLevel.
type SampleLevelZero struct{}

// SampleLevelExact is textureSampleLevel.
type SampleLevelExact struct {
	Level ExpressionHandle
}

// SampleLevelBias is textureSampleBias.
type SampleLevelBias struct {
	Bias ExpressionHandle
}

// SampleLevelGradient is textureSampleGrad.
type SampleLevelGradient struct {
	X ExpressionHandle
	Y ExpressionHandle
}

// ExprImageLoad is textureLoad.
type ExprImageLoad struct {
	Image      ExpressionHandle
	Coordinate ExpressionHandle
	ArrayIndex *ExpressionHandle
	Index      *ExpressionHandle // mip level, or sample for multisampled images
}

// ExprImageQuery is textureDimensions and the textureNum* functions.
type ExprImageQuery struct {
	Image ExpressionHandle
	Query ImageQuery
}

// ImageQuery selects what ExprImageQuery reports.
type ImageQuery interface {
	imageQuery()
}

// ImageQuerySize is textureDimensions; Level nil means level 0.
type ImageQuerySize struct {
	Level *ExpressionHandle
}

type (
	ImageQueryNumLevels  struct{}
	ImageQueryNumLayers  struct{}
	ImageQueryNumSamples struct{}
)

// Operators.

// ExprUnary is `-x`, `!x` or `~x`.
type ExprUnary struct {
	Op   UnaryOperator
	Expr ExpressionHandle
}

type UnaryOperator uint8

const (
	UnaryNegate UnaryOperator = iota
	UnaryLogicalNot
	UnaryBitwiseNot
)

// ExprBinary applies Op to two operands. Mixed scalar and vector
// operands are allowed for arithmetic, as is matrix multiplication.
type ExprBinary struct {
	Op    BinaryOperator
	Left  ExpressionHandle
	Right ExpressionHandle
}

type BinaryOperator uint8

const (
	BinaryAdd BinaryOperator = iota
	BinarySubtract
	BinaryMultiply
	BinaryDivide
	BinaryModulo

	BinaryEqual
	BinaryNotEqual
	BinaryLess
	BinaryLessEqual
	BinaryGreater
	BinaryGreaterEqual

	BinaryAnd
	BinaryExclusiveOr
	BinaryInclusiveOr

	BinaryLogicalAnd
	BinaryLogicalOr

	BinaryShiftLeft
	BinaryShiftRight
)

// IsComparison reports whether the operator yields booleans.
func (op BinaryOperator) IsComparison() bool {
	return op >= BinaryEqual && op <= BinaryGreaterEqual
}

// ExprSelect is select(reject, accept, condition). Note the WGSL
// argument order puts the false value first.
type ExprSelect struct {
	Condition ExpressionHandle
	Accept    ExpressionHandle
	Reject    ExpressionHandle
}

// ExprDerivative is dpdx, dpdy, fwidth and their coarse and fine forms.
type ExprDerivative struct {
	Axis    DerivativeAxis
	Control DerivativeControl
	Expr    ExpressionHandle
}

type DerivativeAxis uint8

const (
	DerivativeX DerivativeAxis = iota
	DerivativeY
	DerivativeWidth
)

type DerivativeControl uint8

const (
	DerivativeNone DerivativeControl = iota
	DerivativeCoarse
	DerivativeFine
)

// ExprRelational is all, any, isNan or isInf.
type ExprRelational struct {
	Fun      RelationalFunction
	Argument ExpressionHandle
}

type RelationalFunction uint8

const (
	RelationalAll RelationalFunction = iota
	RelationalAny
	RelationalIsNan
	RelationalIsInf
)

// ExprMath is a numeric builtin. Arg1 and Arg2 are set according to
// Fun.ArgumentCount.
type ExprMath struct {
	Fun  MathFunction
	Arg  ExpressionHandle
	Arg1 *ExpressionHandle
	Arg2 *ExpressionHandle
}

type MathFunction uint8

const (
	MathAbs MathFunction = iota
	MathMin
	MathMax
	MathClamp

	MathCos
	MathCosh
	MathSin
	MathSinh
	MathTan
	MathTanh
	MathAcos
	MathAsin
	MathAtan
	MathAtan2

	MathCeil
	MathFloor
	MathRound
	MathFract
	MathTrunc
	MathLdexp

	MathExp
	MathExp2
	MathLog
	MathLog2
	MathPow

	MathDot
	MathOuter
	MathCross
	MathDistance
	MathLength
	MathNormalize
	MathFaceForward
	MathReflect
	MathRefract

	MathSign
	MathFma
	MathMix
	MathStep
	MathSmoothStep
	MathSqrt
	MathInverseSqrt
	MathTranspose
	MathDeterminant

	MathCountOneBits
	MathReverseBits
)

// ArgumentCount returns how many operands the function takes.
func (f MathFunction) ArgumentCount() int {
	switch f {
	case MathMin, MathMax, MathAtan2, MathLdexp, MathPow, MathDot, MathOuter,
		MathCross, MathDistance, MathReflect, MathStep:
		return 2
	case MathClamp, MathFaceForward, MathRefract, MathFma, MathMix, MathSmoothStep:
		return 3
	}
	return 1
}

// ExprAs is a conversion `T(x)` when Convert holds the target width, or
// bitcast<T>(x) when Convert is nil.
type ExprAs struct {
	Expr    ExpressionHandle
	Kind    ScalarKind
	Convert *uint8
}

func (Literal) expressionKind() {}
func (ExprConstant) expressionKind() {}
func (ExprZeroValue) expressionKind() {}
func (ExprCompose) expressionKind() {}
func (ExprSplat) expressionKind() {}
func (ExprSwizzle) expressionKind() {}
func (ExprAccess) expressionKind() {}
func (ExprAccessIndex) expressionKind() {}
func (ExprFunctionArgument) expressionKind() {}
func (ExprGlobalVariable) expressionKind() {}
func (ExprLocalVariable) expressionKind() {}
func (ExprLoad) expressionKind() {}
func (ExprArrayLength) expressionKind() {}
func (ExprCallResult) expressionKind() {}
func (ExprImageSample) expressionKind() {}
func (ExprImageLoad) expressionKind() {}
func (ExprImageQuery) expressionKind() {}
func (ExprUnary) expressionKind() {}
func (ExprBinary) expressionKind() {}
func (ExprSelect) expressionKind() {}
func (ExprDerivative) expressionKind() {}
func (ExprRelational) expressionKind() {}
func (ExprMath) expressionKind() {}
func (ExprAs) expressionKind() {}

func (LiteralF64) literalValue() {}
func (LiteralF32) literalValue() {}
func (LiteralU32) literalValue() {}
func (LiteralI32) literalValue() {}
func (LiteralBool) literalValue() {}

func (SampleLevelAuto) sampleLevel() {}
func (SampleLevelZero) sampleLevel() {}
func (SampleLevelExact) sampleLevel() {}
func (SampleLevelBias) sampleLevel() {}
func (SampleLevelGradient) sampleLevel() {}

func (ImageQuerySize) imageQuery() {}
func (ImageQueryNumLevels) imageQuery() {}
func (ImageQueryNumLayers) imageQuery() {}
func (ImageQueryNumSamples) imageQuery() {}
