package ir

import (
	"fmt"

	"github.com/gogpu/wgslfront/diag"
)

// ValidationErrorKind tags which module item a ValidationError is about.
type ValidationErrorKind uint8

const (
	ValidationErrorLayouter ValidationErrorKind = iota
	ValidationErrorType
	ValidationErrorConstant
	ValidationErrorGlobalVariable
	ValidationErrorFunction
	ValidationErrorEntryPoint
)

// ValidationError is the first semantic violation found in a module.
// Exactly one of the nested error fields is set, matching Kind.
type ValidationError struct {
	Kind   ValidationErrorKind
	Handle uint32 // of the offending type, constant, global, function, or entry point
	Name   string
	Stage  ShaderStage // for entry points

	Type           *TypeError
	Constant       *ConstantError
	GlobalVariable *GlobalVariableError
	Function       *FunctionError
	EntryPoint     *EntryPointError

	// Labels point at the offending source, when spans are known.
	Labels []diag.Label
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if cause := e.Unwrap(); cause != nil {
		return e.headline() + ": " + cause.Error()
	}
	return e.headline()
}

func (e *ValidationError) headline() string {
	switch e.Kind {
	case ValidationErrorLayouter:
		return fmt.Sprintf("type [%d] could not be laid out", e.Handle)
	case ValidationErrorType:
		return fmt.Sprintf("type [%d] '%s' is invalid", e.Handle, e.Name)
	case ValidationErrorConstant:
		return fmt.Sprintf("constant [%d] '%s' is invalid", e.Handle, e.Name)
	case ValidationErrorGlobalVariable:
		return fmt.Sprintf("global variable [%d] '%s' is invalid", e.Handle, e.Name)
	case ValidationErrorFunction:
		return fmt.Sprintf("function [%d] '%s' is invalid", e.Handle, e.Name)
	case ValidationErrorEntryPoint:
		return fmt.Sprintf("entry point %s at %s is invalid", e.Name, e.Stage)
	}
	return "invalid module"
}

// Unwrap returns the nested category error.
func (e *ValidationError) Unwrap() error {
	switch {
	case e.Type != nil:
		return e.Type
	case e.Constant != nil:
		return e.Constant
	case e.GlobalVariable != nil:
		return e.GlobalVariable
	case e.Function != nil:
		return e.Function
	case e.EntryPoint != nil:
		return e.EntryPoint
	}
	return nil
}

// Diagnostic returns the error as a renderable diagnostic. The nested
// error chain becomes notes.
func (e *ValidationError) Diagnostic() diag.Diagnostic {
	d := diag.Diagnostic{Message: e.headline()}
	for _, l := range e.Labels {
		if !l.Span.IsUnknown() {
			d.Labels = append(d.Labels, l)
		}
	}
	for cause := e.Unwrap(); cause != nil; {
		d.Notes = append(d.Notes, causeMessage(cause))
		next, ok := cause.(interface{ Unwrap() error })
		if !ok {
			break
		}
		cause = next.Unwrap()
	}
	return d
}

// EmitToString renders the error against the source the module was
// parsed from.
func (e *ValidationError) EmitToString(source string) string {
	return e.Diagnostic().Render("wgsl", source)
}

// causeMessage returns the message of one level of the chain, without
// the messages of the errors it wraps.
func causeMessage(err error) string {
	if s, ok := err.(interface{ summary() string }); ok {
		return s.summary()
	}
	return err.Error()
}

// TypeErrorKind tags the variant of a TypeError.
type TypeErrorKind uint8

const (
	TypeInvalidWidth TypeErrorKind = iota
	TypeInvalidAtomicWidth
	TypeInvalidPointerBase
	TypeInvalidPointerToUnsized
	TypeInvalidData
	TypeInvalidArrayBaseType
	TypeInvalidArraySizeConstant
	TypeNonPositiveArrayLength
	TypeInvalidArrayStride
	TypeInvalidDynamicArray
	TypeMemberOverlap
	TypeMemberMisaligned
	TypeEmptyStruct
	TypeUnsupportedCapability
	TypeArraySizeOverflow
)

// TypeError describes an invalid type.
type TypeError struct {
	Kind TypeErrorKind

	Scalar   ScalarType     // TypeInvalidWidth, TypeInvalidAtomicWidth
	Base     TypeHandle     // pointer, array and data errors
	Space    AddressSpace   // TypeInvalidPointerToUnsized
	Constant ConstantHandle // array size errors
	Member   string         // TypeInvalidDynamicArray
	Index    uint32         // member index for layout errors
	Offset   uint32
	Expected uint32 // expected stride or alignment
}

func (e *TypeError) Error() string {
	switch e.Kind {
	case TypeInvalidWidth:
		return fmt.Sprintf("the %s scalar width %d is not supported", kindName(e.Scalar.Kind), e.Scalar.Width)
	case TypeInvalidAtomicWidth:
		return fmt.Sprintf("the %s scalar width %d is not supported for an atomic", kindName(e.Scalar.Kind), e.Scalar.Width)
	case TypeInvalidPointerBase:
		return fmt.Sprintf("the base handle [%d] can not be resolved", e.Base)
	case TypeInvalidPointerToUnsized:
		return fmt.Sprintf("unsized types like [%d] must be in the `storage` address space, not `%s`", e.Base, e.Space)
	case TypeInvalidData:
		return fmt.Sprintf("expected data type, found [%d]", e.Base)
	case TypeInvalidArrayBaseType:
		return fmt.Sprintf("base type [%d] for the array is invalid", e.Base)
	case TypeInvalidArraySizeConstant:
		return fmt.Sprintf("the constant [%d] can not be used for an array size", e.Constant)
	case TypeNonPositiveArrayLength:
		return fmt.Sprintf("array size constant [%d] is not positive", e.Constant)
	case TypeInvalidArrayStride:
		return fmt.Sprintf("array stride %d does not match the expected %d", e.Offset, e.Expected)
	case TypeInvalidDynamicArray:
		return fmt.Sprintf("field '%s' can't be dynamically-sized, has type [%d]", e.Member, e.Base)
	case TypeMemberOverlap:
		return fmt.Sprintf("structure member[%d] at %d overlaps the previous member", e.Index, e.Offset)
	case TypeMemberMisaligned:
		return fmt.Sprintf("structure member[%d] at %d is not aligned to %d", e.Index, e.Offset, e.Expected)
	case TypeEmptyStruct:
		return "the composite type contains no members"
	case TypeUnsupportedCapability:
		return fmt.Sprintf("the %s scalar width %d needs a capability that is not enabled", kindName(e.Scalar.Kind), e.Scalar.Width)
	case TypeArraySizeOverflow:
		return fmt.Sprintf("array of length [%d] with stride %d does not fit in 32 bits", e.Constant, e.Offset)
	}
	return "invalid type"
}

// ConstantErrorKind tags the variant of a ConstantError.
type ConstantErrorKind uint8

const (
	ConstantInvalidType ConstantErrorKind = iota
	ConstantComponentCount
	ConstantComponentType
)

// ConstantError describes an invalid module constant.
type ConstantError struct {
	Kind     ConstantErrorKind
	Index    uint32 // component index
	Expected uint32
	Seen     uint32
}

func (e *ConstantError) Error() string {
	switch e.Kind {
	case ConstantInvalidType:
		return "the type doesn't match the constant"
	case ConstantComponentCount:
		return fmt.Sprintf("composite constant has %d components, its type needs %d", e.Seen, e.Expected)
	case ConstantComponentType:
		return fmt.Sprintf("composite constant component %d has the wrong type", e.Index)
	}
	return "invalid constant"
}

// GlobalVariableErrorKind tags the variant of a GlobalVariableError.
type GlobalVariableErrorKind uint8

const (
	GlobalInvalidUsage GlobalVariableErrorKind = iota
	GlobalInvalidType
	GlobalMissingTypeFlags
	GlobalUnsupportedCapability
	GlobalMissingBinding
	GlobalUnexpectedBinding
	GlobalInitializerType
)

// GlobalVariableError describes an invalid global variable.
type GlobalVariableError struct {
	Kind     GlobalVariableErrorKind
	Space    AddressSpace
	Required TypeFlags
	Seen     TypeFlags
}

func (e *GlobalVariableError) Error() string {
	switch e.Kind {
	case GlobalInvalidUsage:
		return fmt.Sprintf("usage isn't compatible with the `%s` address space", e.Space)
	case GlobalInvalidType:
		return "type isn't compatible with the address space"
	case GlobalMissingTypeFlags:
		return fmt.Sprintf("type flags %s do not meet the required %s", e.Seen, e.Required)
	case GlobalUnsupportedCapability:
		return fmt.Sprintf("the `%s` address space needs a capability that is not enabled", e.Space)
	case GlobalMissingBinding:
		return "binding decoration is missing"
	case GlobalUnexpectedBinding:
		return "binding decoration is not expected in this address space"
	case GlobalInitializerType:
		return "initializer doesn't match the variable type"
	}
	return "invalid global variable"
}

// LocalVariableErrorKind tags the variant of a LocalVariableError.
type LocalVariableErrorKind uint8

const (
	LocalInvalidType LocalVariableErrorKind = iota
	LocalInitializerType
)

// LocalVariableError describes an invalid local variable.
type LocalVariableError struct {
	Kind LocalVariableErrorKind
	Type TypeHandle
}

func (e *LocalVariableError) Error() string {
	switch e.Kind {
	case LocalInvalidType:
		return fmt.Sprintf("local variable has a type [%d] that can't be stored in a local variable", e.Type)
	case LocalInitializerType:
		return "initializer doesn't match the variable type"
	}
	return "invalid local variable"
}

// FunctionErrorKind tags the variant of a FunctionError.
type FunctionErrorKind uint8

const (
	FunctionExpression FunctionErrorKind = iota
	FunctionLocalVariable
	FunctionInvalidArgumentType
	FunctionInvalidArgumentPointerSpace
	FunctionInstructionsAfterReturn
	FunctionBreakOutsideOfLoopOrSwitch
	FunctionContinueOutsideOfLoop
	FunctionInvalidReturnSpot
	FunctionInvalidReturnType
	FunctionInvalidIfType
	FunctionInvalidSwitchType
	FunctionConflictingSwitchCase
	FunctionMissingDefaultCase
	FunctionLastCaseFallTrough
	FunctionInvalidStorePointer
	FunctionInvalidStoreValue
	FunctionInvalidStoreTypes
	FunctionInvalidImageStore
	FunctionInvalidCall
	FunctionInvalidBreakIf
)

// FunctionError describes an invalid function. Expression, local
// variable and call errors nest a further error.
type FunctionError struct {
	Kind FunctionErrorKind

	Index      uint32           // argument or local variable index
	Name       string           // argument or local variable name
	Space      AddressSpace     // FunctionInvalidArgumentPointerSpace
	Expression ExpressionHandle // offending expression, when there is one
	Value      int64            // FunctionConflictingSwitchCase
	Callee     FunctionHandle   // FunctionInvalidCall

	ExpressionError    *ExpressionError
	LocalVariableError *LocalVariableError
	CallError          *CallError
}

func (e *FunctionError) summary() string {
	switch e.Kind {
	case FunctionExpression:
		return fmt.Sprintf("expression [%d] is invalid", e.Expression)
	case FunctionLocalVariable:
		return fmt.Sprintf("local variable [%d] '%s' is invalid", e.Index, e.Name)
	case FunctionInvalidArgumentType:
		return fmt.Sprintf("argument '%s' at index %d has a type that can't be passed into functions", e.Name, e.Index)
	case FunctionInvalidArgumentPointerSpace:
		return fmt.Sprintf("argument '%s' at index %d is a pointer of address space `%s`, which can't be passed into functions", e.Name, e.Index, e.Space)
	case FunctionInstructionsAfterReturn:
		return "there are instructions after `return`/`break`/`continue`"
	case FunctionBreakOutsideOfLoopOrSwitch:
		return "the `break` is used outside of a `loop` or `switch` context"
	case FunctionContinueOutsideOfLoop:
		return "the `continue` is used outside of a `loop` context"
	case FunctionInvalidReturnSpot:
		return "the `return` is called within a `continuing` block"
	case FunctionInvalidReturnType:
		return fmt.Sprintf("the `return` value [%d] does not match the function return value", e.Expression)
	case FunctionInvalidIfType:
		return fmt.Sprintf("the `if` condition [%d] is not a boolean scalar", e.Expression)
	case FunctionInvalidSwitchType:
		return fmt.Sprintf("the `switch` value [%d] is not an integer scalar", e.Expression)
	case FunctionConflictingSwitchCase:
		return fmt.Sprintf("multiple `switch` cases for %d are present", e.Value)
	case FunctionMissingDefaultCase:
		return "the `switch` is missing a `default` case"
	case FunctionLastCaseFallTrough:
		return "the last `switch` case contains a `fallthrough`"
	case FunctionInvalidStorePointer:
		return fmt.Sprintf("the pointer [%d] doesn't relate to a valid destination for a store", e.Expression)
	case FunctionInvalidStoreValue:
		return fmt.Sprintf("the value [%d] can not be stored", e.Expression)
	case FunctionInvalidStoreTypes:
		return fmt.Sprintf("the type of [%d] doesn't match the type stored in the pointer", e.Expression)
	case FunctionInvalidImageStore:
		return fmt.Sprintf("image store parameters are invalid (image [%d])", e.Expression)
	case FunctionInvalidCall:
		return fmt.Sprintf("call to [%d] is invalid", e.Callee)
	case FunctionInvalidBreakIf:
		return fmt.Sprintf("the `break if` condition [%d] is not a boolean scalar", e.Expression)
	}
	return "invalid function"
}

func (e *FunctionError) Error() string {
	if cause := e.Unwrap(); cause != nil {
		return e.summary() + ": " + cause.Error()
	}
	return e.summary()
}

// Unwrap returns the nested expression, local variable, or call error.
func (e *FunctionError) Unwrap() error {
	switch {
	case e.ExpressionError != nil:
		return e.ExpressionError
	case e.LocalVariableError != nil:
		return e.LocalVariableError
	case e.CallError != nil:
		return e.CallError
	}
	return nil
}

// ExpressionErrorKind tags the variant of an ExpressionError.
type ExpressionErrorKind uint8

const (
	ExprErrorDoesntExist ExpressionErrorKind = iota
	ExprErrorNotInScope
	ExprErrorInvalidBaseType
	ExprErrorInvalidIndexType
	ExprErrorIndexMustBeConstant
	ExprErrorIndexOutOfBounds
	ExprErrorFunctionArgumentDoesntExist
	ExprErrorInvalidPointerType
	ExprErrorInvalidArrayType
	ExprErrorInvalidSplatType
	ExprErrorInvalidVectorType
	ExprErrorInvalidSwizzleComponent
	ExprErrorComposeType
	ExprErrorComposeCount
	ExprErrorInvalidUnaryOperandType
	ExprErrorInvalidBinaryOperandTypes
	ExprErrorInvalidSelectTypes
	ExprErrorInvalidBooleanVector
	ExprErrorInvalidFloatArgument
	ExprErrorInvalidImageClass
	ExprErrorExpectedImageType
	ExprErrorExpectedSamplerType
	ExprErrorInvalidCastArgument
	ExprErrorWrongArgumentCount
	ExprErrorInvalidArgumentType
	ExprErrorCallToEntryPoint
	ExprErrorType
)

// ExpressionError describes an invalid expression.
type ExpressionError struct {
	Kind ExpressionErrorKind

	Base  ExpressionHandle // indexed, accessed, or operand expression
	Index uint32           // constant index or argument position
	Bound uint32           // ExprErrorIndexOutOfBounds
	Op    BinaryOperator   // ExprErrorInvalidBinaryOperandTypes
	Math  MathFunction     // argument errors of math functions

	// Cause is the type resolution failure for ExprErrorType.
	Cause error
}

func (e *ExpressionError) Error() string {
	switch e.Kind {
	case ExprErrorDoesntExist:
		return "doesn't exist"
	case ExprErrorNotInScope:
		return "used by a statement before it was introduced into the scope by any of the dominating blocks"
	case ExprErrorInvalidBaseType:
		return fmt.Sprintf("type of [%d] can't be indexed", e.Base)
	case ExprErrorInvalidIndexType:
		return fmt.Sprintf("accessing with index [%d] can't be done", e.Base)
	case ExprErrorIndexMustBeConstant:
		return fmt.Sprintf("accessing [%d] via a non-constant index, which is only allowed through a pointer", e.Base)
	case ExprErrorIndexOutOfBounds:
		return fmt.Sprintf("accessing index %d is out of [%d] bounds (length %d)", e.Index, e.Base, e.Bound)
	case ExprErrorFunctionArgumentDoesntExist:
		return fmt.Sprintf("function argument %d doesn't exist", e.Index)
	case ExprErrorInvalidPointerType:
		return fmt.Sprintf("loading of [%d] can't be done", e.Base)
	case ExprErrorInvalidArrayType:
		return fmt.Sprintf("array length of [%d] can't be done", e.Base)
	case ExprErrorInvalidSplatType:
		return fmt.Sprintf("splatting [%d] can't be done", e.Base)
	case ExprErrorInvalidVectorType:
		return fmt.Sprintf("swizzling [%d] can't be done", e.Base)
	case ExprErrorInvalidSwizzleComponent:
		return fmt.Sprintf("swizzle component %d is outside of vector [%d]", e.Index, e.Base)
	case ExprErrorComposeType:
		return fmt.Sprintf("composing component %d has the wrong type", e.Index)
	case ExprErrorComposeCount:
		return fmt.Sprintf("composing %d components, the type needs %d", e.Index, e.Bound)
	case ExprErrorInvalidUnaryOperandType:
		return fmt.Sprintf("operation can't work with [%d]", e.Base)
	case ExprErrorInvalidBinaryOperandTypes:
		return fmt.Sprintf("operation %d can't work with [%d] and its other operand", e.Op, e.Base)
	case ExprErrorInvalidSelectTypes:
		return "selecting is not possible"
	case ExprErrorInvalidBooleanVector:
		return fmt.Sprintf("relational argument [%d] is not a boolean vector", e.Base)
	case ExprErrorInvalidFloatArgument:
		return fmt.Sprintf("relational argument [%d] is not a float", e.Base)
	case ExprErrorInvalidImageClass:
		return fmt.Sprintf("image [%d] has the wrong class for this operation", e.Base)
	case ExprErrorExpectedImageType:
		return fmt.Sprintf("expected an image, found [%d]", e.Base)
	case ExprErrorExpectedSamplerType:
		return fmt.Sprintf("expected a sampler, found [%d]", e.Base)
	case ExprErrorInvalidCastArgument:
		return fmt.Sprintf("unable to cast [%d]", e.Base)
	case ExprErrorWrongArgumentCount:
		return fmt.Sprintf("wrong number of arguments for math function %d", e.Math)
	case ExprErrorInvalidArgumentType:
		return fmt.Sprintf("argument [%d] to math function %d at position %d has an invalid type", e.Base, e.Math, e.Index)
	case ExprErrorCallToEntryPoint:
		return "calling an entry point is not allowed"
	case ExprErrorType:
		return fmt.Sprintf("type resolution failed: %v", e.Cause)
	}
	return "invalid expression"
}

// CallErrorKind tags the variant of a CallError.
type CallErrorKind uint8

const (
	CallArgumentCount CallErrorKind = iota
	CallArgumentType
	CallResultValue
	CallResultMissing
)

// CallError describes an invalid function call.
type CallError struct {
	Kind     CallErrorKind
	Required int
	Seen     int
	Index    int
	Argument ExpressionHandle
}

func (e *CallError) Error() string {
	switch e.Kind {
	case CallArgumentCount:
		return fmt.Sprintf("requires %d arguments, but %d are provided", e.Required, e.Seen)
	case CallArgumentType:
		return fmt.Sprintf("argument %d value [%d] doesn't match the type", e.Index, e.Argument)
	case CallResultValue:
		return fmt.Sprintf("the result value [%d] is invalid", e.Argument)
	case CallResultMissing:
		return "the function returns a value, but the call has no result expression"
	}
	return "invalid call"
}

// EntryPointErrorKind tags the variant of an EntryPointError.
type EntryPointErrorKind uint8

const (
	EntryPointArgument EntryPointErrorKind = iota
	EntryPointResult
	EntryPointUnexpectedEarlyDepthTest
	EntryPointUnexpectedWorkgroupSize
	EntryPointOutOfRangeWorkgroupSize
	EntryPointMissingVertexOutputPosition
	EntryPointDuplicate
	EntryPointMissingFunction
)

// EntryPointError describes an invalid entry point. Argument and result
// errors nest a VaryingError.
type EntryPointError struct {
	Kind    EntryPointErrorKind
	Index   uint32 // argument index
	Varying *VaryingError
}

func (e *EntryPointError) summary() string {
	switch e.Kind {
	case EntryPointArgument:
		return fmt.Sprintf("argument %d varying error", e.Index)
	case EntryPointResult:
		return "result varying error"
	case EntryPointUnexpectedEarlyDepthTest:
		return "early depth test is not applicable"
	case EntryPointUnexpectedWorkgroupSize:
		return "workgroup size is not applicable"
	case EntryPointOutOfRangeWorkgroupSize:
		return "workgroup size is out of range"
	case EntryPointMissingVertexOutputPosition:
		return "the vertex shader does not output a position"
	case EntryPointDuplicate:
		return "multiple entry points have the same name and stage"
	case EntryPointMissingFunction:
		return "the entry point function does not exist"
	}
	return "invalid entry point"
}

func (e *EntryPointError) Error() string {
	if e.Varying != nil {
		return e.summary() + ": " + e.Varying.Error()
	}
	return e.summary()
}

// Unwrap returns the nested varying error.
func (e *EntryPointError) Unwrap() error {
	if e.Varying == nil {
		return nil
	}
	return e.Varying
}

// VaryingErrorKind tags the variant of a VaryingError.
type VaryingErrorKind uint8

const (
	VaryingInvalidType VaryingErrorKind = iota
	VaryingMissingBinding
	VaryingMemberMissingBinding
	VaryingInvalidBuiltInType
	VaryingInvalidBuiltInStage
	VaryingUnsupportedCapability
	VaryingBindingCollision
	VaryingDuplicateBuiltIn
	VaryingNotIOShareableType
)

// VaryingError describes an invalid entry point input or output.
type VaryingError struct {
	Kind     VaryingErrorKind
	Member   uint32 // VaryingMemberMissingBinding
	Type     TypeHandle
	Builtin  BuiltinValue
	Location uint32
}

func (e *VaryingError) Error() string {
	switch e.Kind {
	case VaryingInvalidType:
		return fmt.Sprintf("the type [%d] does not match the varying", e.Type)
	case VaryingMissingBinding:
		return "the varying has no binding"
	case VaryingMemberMissingBinding:
		return fmt.Sprintf("struct member %d is missing a binding", e.Member)
	case VaryingInvalidBuiltInType:
		return fmt.Sprintf("built-in %s has an incorrect type", builtinName(e.Builtin))
	case VaryingInvalidBuiltInStage:
		return fmt.Sprintf("built-in %s is not available at this stage", builtinName(e.Builtin))
	case VaryingUnsupportedCapability:
		return fmt.Sprintf("built-in %s needs a capability that is not enabled", builtinName(e.Builtin))
	case VaryingBindingCollision:
		return fmt.Sprintf("location %d is already used", e.Location)
	case VaryingDuplicateBuiltIn:
		return fmt.Sprintf("built-in %s is present more than once", builtinName(e.Builtin))
	case VaryingNotIOShareableType:
		return fmt.Sprintf("the type [%d] cannot be used for user-defined entry point inputs or outputs", e.Type)
	}
	return "invalid varying"
}

func kindName(k ScalarKind) string {
	switch k {
	case ScalarSint:
		return "sint"
	case ScalarUint:
		return "uint"
	case ScalarFloat:
		return "float"
	case ScalarBool:
		return "bool"
	}
	return "unknown"
}

func builtinName(b BuiltinValue) string {
	for name, v := range BuiltinNames {
		if v == b {
			return name
		}
	}
	return "unknown"
}

// BuiltinNames maps WGSL built-in value names to their IR values.
var BuiltinNames = map[string]BuiltinValue{
	"position":               BuiltinPosition,
	"vertex_index":           BuiltinVertexIndex,
	"instance_index":         BuiltinInstanceIndex,
	"front_facing":           BuiltinFrontFacing,
	"frag_depth":             BuiltinFragDepth,
	"primitive_index":        BuiltinPrimitiveIndex,
	"sample_index":           BuiltinSampleIndex,
	"sample_mask":            BuiltinSampleMask,
	"local_invocation_id":    BuiltinLocalInvocationID,
	"local_invocation_index": BuiltinLocalInvocationIndex,
	"global_invocation_id":   BuiltinGlobalInvocationID,
	"workgroup_id":           BuiltinWorkGroupID,
	"num_workgroups":         BuiltinNumWorkGroups,
}
