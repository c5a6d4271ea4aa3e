package ir

// validateExpression checks the operands of one expression. Operand
// types were resolved before, since expressions only refer to earlier
// handles.
//
//nolint:gocyclo,cyclop,funlen // one case per expression variant
func (v *Validator) validateExpression(h ExpressionHandle) *ExpressionError {
	fn := v.context.function

	switch e := fn.Expressions[h].Kind.(type) {
	case Literal:
		if _, ok := e.Value.(LiteralF64); ok && v.capabilities&CapabilityFloat64 == 0 {
			return &ExpressionError{Kind: ExprErrorInvalidFloatArgument, Base: h}
		}

	case ExprConstant:
		if !v.isValidConstantHandle(e.Constant) {
			return &ExpressionError{Kind: ExprErrorDoesntExist}
		}

	case ExprZeroValue:
		if !v.isValidTypeHandle(e.Type) || !v.types[e.Type].Contains(TypeFlagData|TypeFlagSized) {
			return &ExpressionError{Kind: ExprErrorDoesntExist}
		}

	case ExprCompose:
		return v.validateCompose(e)

	case ExprAccess:
		return v.validateAccess(e)

	case ExprAccessIndex:
		return v.validateAccessIndex(e)

	case ExprSplat:
		if _, ok := v.resolved(e.Value).(ScalarType); !ok {
			return &ExpressionError{Kind: ExprErrorInvalidSplatType, Base: e.Value}
		}

	case ExprSwizzle:
		vec, ok := v.resolved(e.Vector).(VectorType)
		if !ok {
			return &ExpressionError{Kind: ExprErrorInvalidVectorType, Base: e.Vector}
		}
		for i := 0; i < int(e.Size); i++ {
			if uint8(e.Pattern[i]) >= uint8(vec.Size) {
				return &ExpressionError{Kind: ExprErrorInvalidSwizzleComponent, Base: e.Vector, Index: uint32(e.Pattern[i])}
			}
		}

	case ExprFunctionArgument:
		if int(e.Index) >= len(fn.Arguments) {
			return &ExpressionError{Kind: ExprErrorFunctionArgumentDoesntExist, Index: e.Index}
		}

	case ExprGlobalVariable:
		if int(e.Variable) >= len(v.module.GlobalVariables) {
			return &ExpressionError{Kind: ExprErrorDoesntExist}
		}

	case ExprLocalVariable:
		if int(e.Variable) >= len(fn.LocalVars) {
			return &ExpressionError{Kind: ExprErrorDoesntExist}
		}

	case ExprLoad:
		switch v.resolved(e.Pointer).(type) {
		case PointerType, ValuePointerType:
		default:
			return &ExpressionError{Kind: ExprErrorInvalidPointerType, Base: e.Pointer}
		}

	case ExprImageSample:
		return v.validateImageSample(e)

	case ExprImageLoad:
		img, ok := v.resolved(e.Image).(ImageType)
		if !ok {
			return &ExpressionError{Kind: ExprErrorExpectedImageType, Base: e.Image}
		}
		if img.Class == ImageClassStorage && img.StorageAccess&StorageLoad == 0 {
			return &ExpressionError{Kind: ExprErrorInvalidImageClass, Base: e.Image}
		}
		if !isIntegerShaped(v.resolved(e.Coordinate)) {
			return &ExpressionError{Kind: ExprErrorInvalidIndexType, Base: e.Coordinate}
		}

	case ExprImageQuery:
		img, ok := v.resolved(e.Image).(ImageType)
		if !ok {
			return &ExpressionError{Kind: ExprErrorExpectedImageType, Base: e.Image}
		}
		switch e.Query.(type) {
		case ImageQueryNumSamples:
			if !img.Multisampled {
				return &ExpressionError{Kind: ExprErrorInvalidImageClass, Base: e.Image}
			}
		case ImageQueryNumLayers:
			if !img.Arrayed {
				return &ExpressionError{Kind: ExprErrorInvalidImageClass, Base: e.Image}
			}
		}

	case ExprUnary:
		if !v.validUnary(e.Op, v.resolved(e.Expr)) {
			return &ExpressionError{Kind: ExprErrorInvalidUnaryOperandType, Base: e.Expr}
		}

	case ExprBinary:
		if !v.validBinary(e.Op, v.resolved(e.Left), v.resolved(e.Right)) {
			return &ExpressionError{Kind: ExprErrorInvalidBinaryOperandTypes, Base: e.Left, Op: e.Op}
		}

	case ExprSelect:
		return v.validateSelect(e)

	case ExprDerivative:
		if kind, ok := numericKind(v.resolved(e.Expr)); !ok || kind != ScalarFloat {
			return &ExpressionError{Kind: ExprErrorInvalidFloatArgument, Base: e.Expr}
		}

	case ExprRelational:
		arg := v.resolved(e.Argument)
		switch e.Fun {
		case RelationalAll, RelationalAny:
			vec, ok := arg.(VectorType)
			if !ok || vec.Scalar.Kind != ScalarBool {
				return &ExpressionError{Kind: ExprErrorInvalidBooleanVector, Base: e.Argument}
			}
		default:
			if kind, ok := numericKind(arg); !ok || kind != ScalarFloat {
				return &ExpressionError{Kind: ExprErrorInvalidFloatArgument, Base: e.Argument}
			}
		}

	case ExprMath:
		return v.validateMath(e)

	case ExprAs:
		switch v.resolved(e.Expr).(type) {
		case ScalarType, VectorType:
		case MatrixType:
			if e.Kind != ScalarFloat || e.Convert == nil {
				return &ExpressionError{Kind: ExprErrorInvalidCastArgument, Base: e.Expr}
			}
		default:
			return &ExpressionError{Kind: ExprErrorInvalidCastArgument, Base: e.Expr}
		}

	case ExprCallResult:
		if int(e.Function) >= len(v.module.Functions) {
			return &ExpressionError{Kind: ExprErrorDoesntExist}
		}

	case ExprArrayLength:
		if !v.isRuntimeArrayPointer(v.resolved(e.Array)) {
			return &ExpressionError{Kind: ExprErrorInvalidArrayType, Base: e.Array}
		}
	}
	return nil
}

func (v *Validator) validateCompose(e ExprCompose) *ExpressionError {
	if !v.isValidTypeHandle(e.Type) {
		return &ExpressionError{Kind: ExprErrorDoesntExist}
	}
	inner := v.module.Types[e.Type].Inner

	if vec, ok := inner.(VectorType); ok {
		// Vectors may be composed of scalars and smaller vectors.
		total := 0
		for i, c := range e.Components {
			switch t := v.resolved(c).(type) {
			case ScalarType:
				if t != vec.Scalar {
					return &ExpressionError{Kind: ExprErrorComposeType, Index: uint32(i)}
				}
				total++
			case VectorType:
				if t.Scalar != vec.Scalar {
					return &ExpressionError{Kind: ExprErrorComposeType, Index: uint32(i)}
				}
				total += int(t.Size)
			default:
				return &ExpressionError{Kind: ExprErrorComposeType, Index: uint32(i)}
			}
		}
		if total != int(vec.Size) {
			return &ExpressionError{Kind: ExprErrorComposeCount, Index: uint32(total), Bound: uint32(vec.Size)}
		}
		return nil
	}

	expected := v.componentTypes(inner)
	if expected == nil {
		return &ExpressionError{Kind: ExprErrorComposeType}
	}
	if len(expected) != len(e.Components) {
		return &ExpressionError{Kind: ExprErrorComposeCount, Index: uint32(len(e.Components)), Bound: uint32(len(expected))}
	}
	for i, c := range e.Components {
		if int(c) >= len(v.context.info.ExpressionTypes) ||
			!SameType(v.module, v.context.info.ExpressionTypes[c], expected[i]) {
			return &ExpressionError{Kind: ExprErrorComposeType, Index: uint32(i)}
		}
	}
	return nil
}

func (v *Validator) validateAccess(e ExprAccess) *ExpressionError {
	dynamicByValue := false
	switch t := v.resolved(e.Base).(type) {
	case VectorType:
	case ArrayType, MatrixType:
		dynamicByValue = true
	case ValuePointerType:
		if t.Size == nil {
			return &ExpressionError{Kind: ExprErrorInvalidBaseType, Base: e.Base}
		}
	case PointerType:
		switch innerAt(v.module, t.Base).(type) {
		case ArrayType, VectorType, MatrixType:
		default:
			return &ExpressionError{Kind: ExprErrorInvalidBaseType, Base: e.Base}
		}
	default:
		return &ExpressionError{Kind: ExprErrorInvalidBaseType, Base: e.Base}
	}

	index, ok := v.resolved(e.Index).(ScalarType)
	if !ok || (index.Kind != ScalarSint && index.Kind != ScalarUint) {
		return &ExpressionError{Kind: ExprErrorInvalidIndexType, Base: e.Index}
	}
	if dynamicByValue {
		return &ExpressionError{Kind: ExprErrorIndexMustBeConstant, Base: e.Base}
	}
	return nil
}

func (v *Validator) validateAccessIndex(e ExprAccessIndex) *ExpressionError {
	bound := func(inner TypeInner) (uint32, bool) {
		switch t := inner.(type) {
		case VectorType:
			return uint32(t.Size), true
		case MatrixType:
			return uint32(t.Columns), true
		case ArrayType:
			if t.Size.Constant == nil {
				return ^uint32(0), true
			}
			n, ok := ConstantLength(v.module.Constants, *t.Size.Constant)
			if !ok {
				return ^uint32(0), true
			}
			return n, true
		case StructType:
			return uint32(len(t.Members)), true
		}
		return 0, false
	}

	var limit uint32
	var ok bool
	switch t := v.resolved(e.Base).(type) {
	case PointerType:
		limit, ok = bound(innerAt(v.module, t.Base))
	case ValuePointerType:
		if t.Size != nil {
			limit, ok = uint32(*t.Size), true
		}
	default:
		limit, ok = bound(t)
	}
	if !ok {
		return &ExpressionError{Kind: ExprErrorInvalidBaseType, Base: e.Base}
	}
	if e.Index >= limit {
		return &ExpressionError{Kind: ExprErrorIndexOutOfBounds, Base: e.Base, Index: e.Index, Bound: limit}
	}
	return nil
}

func (v *Validator) validateImageSample(e ExprImageSample) *ExpressionError {
	img, ok := v.resolved(e.Image).(ImageType)
	if !ok {
		return &ExpressionError{Kind: ExprErrorExpectedImageType, Base: e.Image}
	}
	sampler, ok := v.resolved(e.Sampler).(SamplerType)
	if !ok {
		return &ExpressionError{Kind: ExprErrorExpectedSamplerType, Base: e.Sampler}
	}
	if img.Multisampled || img.Class == ImageClassStorage {
		return &ExpressionError{Kind: ExprErrorInvalidImageClass, Base: e.Image}
	}
	if img.Class == ImageClassSampled && img.SampledKind != ScalarFloat && !isLevelZeroOrExact(e.Level) {
		return &ExpressionError{Kind: ExprErrorInvalidImageClass, Base: e.Image}
	}
	if e.DepthRef != nil {
		if img.Class != ImageClassDepth || !sampler.Comparison {
			return &ExpressionError{Kind: ExprErrorInvalidImageClass, Base: e.Image}
		}
	}
	if kind, ok := numericKind(v.resolved(e.Coordinate)); !ok || kind != ScalarFloat {
		return &ExpressionError{Kind: ExprErrorInvalidIndexType, Base: e.Coordinate}
	}
	if e.ArrayIndex != nil && !img.Arrayed {
		return &ExpressionError{Kind: ExprErrorInvalidImageClass, Base: e.Image}
	}
	return nil
}

func isLevelZeroOrExact(level SampleLevel) bool {
	switch level.(type) {
	case SampleLevelZero, SampleLevelExact:
		return true
	}
	return false
}

func (v *Validator) validateSelect(e ExprSelect) *ExpressionError {
	accept := v.context.info.ExpressionTypes[e.Accept]
	reject := v.context.info.ExpressionTypes[e.Reject]

	switch accept.Inner(v.module).(type) {
	case ScalarType, VectorType:
	default:
		return &ExpressionError{Kind: ExprErrorInvalidSelectTypes}
	}
	if !SameType(v.module, accept, reject) {
		return &ExpressionError{Kind: ExprErrorInvalidSelectTypes}
	}

	switch c := v.resolved(e.Condition).(type) {
	case ScalarType:
		if c.Kind != ScalarBool {
			return &ExpressionError{Kind: ExprErrorInvalidSelectTypes}
		}
	case VectorType:
		vec, ok := accept.Inner(v.module).(VectorType)
		if c.Scalar.Kind != ScalarBool || !ok || vec.Size != c.Size {
			return &ExpressionError{Kind: ExprErrorInvalidSelectTypes}
		}
	default:
		return &ExpressionError{Kind: ExprErrorInvalidSelectTypes}
	}
	return nil
}

func (v *Validator) validUnary(op UnaryOperator, operand TypeInner) bool {
	kind, ok := numericKind(operand)
	if !ok {
		return false
	}
	switch op {
	case UnaryNegate:
		return kind == ScalarFloat || kind == ScalarSint
	case UnaryLogicalNot:
		return kind == ScalarBool
	case UnaryBitwiseNot:
		return kind == ScalarSint || kind == ScalarUint
	}
	return false
}

//nolint:gocyclo,cyclop // operator classes have distinct operand rules
func (v *Validator) validBinary(op BinaryOperator, left, right TypeInner) bool {
	switch op {
	case BinaryAdd, BinarySubtract, BinaryMultiply, BinaryDivide, BinaryModulo:
		lm, lIsMat := left.(MatrixType)
		rm, rIsMat := right.(MatrixType)
		switch {
		case lIsMat && rIsMat:
			if op == BinaryMultiply {
				return lm.Columns == rm.Rows && lm.Scalar == rm.Scalar
			}
			return (op == BinaryAdd || op == BinarySubtract) && lm == rm
		case lIsMat || rIsMat:
			if op != BinaryMultiply {
				return false
			}
			mat, other := lm, right
			if rIsMat {
				mat, other = rm, left
			}
			switch o := other.(type) {
			case ScalarType:
				return o == mat.Scalar
			case VectorType:
				if lIsMat {
					return o.Size == mat.Columns && o.Scalar == mat.Scalar
				}
				return o.Size == mat.Rows && o.Scalar == mat.Scalar
			}
			return false
		}
		lk, ok1 := numericKind(left)
		rk, ok2 := numericKind(right)
		if !ok1 || !ok2 || lk != rk || lk == ScalarBool {
			return false
		}
		return compatibleShapes(left, right, true)

	case BinaryEqual, BinaryNotEqual:
		lk, ok1 := numericKind(left)
		rk, ok2 := numericKind(right)
		return ok1 && ok2 && lk == rk && compatibleShapes(left, right, false)

	case BinaryLess, BinaryLessEqual, BinaryGreater, BinaryGreaterEqual:
		lk, ok1 := numericKind(left)
		rk, ok2 := numericKind(right)
		return ok1 && ok2 && lk == rk && lk != ScalarBool && compatibleShapes(left, right, false)

	case BinaryLogicalAnd, BinaryLogicalOr:
		return isBoolScalar(left) && isBoolScalar(right)

	case BinaryAnd, BinaryExclusiveOr, BinaryInclusiveOr:
		lk, ok1 := numericKind(left)
		rk, ok2 := numericKind(right)
		return ok1 && ok2 && lk == rk && lk != ScalarFloat && compatibleShapes(left, right, false)

	case BinaryShiftLeft, BinaryShiftRight:
		lk, ok1 := numericKind(left)
		rk, ok2 := numericKind(right)
		if !ok1 || !ok2 || (lk != ScalarSint && lk != ScalarUint) || rk != ScalarUint {
			return false
		}
		return compatibleShapes(left, right, false)
	}
	return false
}

// compatibleShapes reports whether two scalar or vector operands have
// the same shape. With mixed set, a scalar may pair with a vector.
func compatibleShapes(left, right TypeInner, mixed bool) bool {
	lv, lIsVec := left.(VectorType)
	rv, rIsVec := right.(VectorType)
	switch {
	case lIsVec && rIsVec:
		return lv.Size == rv.Size
	case lIsVec || rIsVec:
		return mixed
	}
	return true
}

// numericKind returns the scalar kind of a scalar or vector type.
func numericKind(inner TypeInner) (ScalarKind, bool) {
	switch t := inner.(type) {
	case ScalarType:
		return t.Kind, true
	case VectorType:
		return t.Scalar.Kind, true
	}
	return 0, false
}

func isIntegerShaped(inner TypeInner) bool {
	kind, ok := numericKind(inner)
	return ok && (kind == ScalarSint || kind == ScalarUint)
}

func (v *Validator) validateMath(e ExprMath) *ExpressionError {
	args := []ExpressionHandle{e.Arg}
	if e.Arg1 != nil {
		args = append(args, *e.Arg1)
	}
	if e.Arg2 != nil {
		if e.Arg1 == nil {
			return &ExpressionError{Kind: ExprErrorWrongArgumentCount, Math: e.Fun}
		}
		args = append(args, *e.Arg2)
	}
	if len(args) != e.Fun.ArgumentCount() {
		return &ExpressionError{Kind: ExprErrorWrongArgumentCount, Math: e.Fun}
	}

	first := v.context.info.ExpressionTypes[e.Arg]
	firstInner := first.Inner(v.module)
	switch e.Fun {
	case MathTranspose, MathDeterminant:
		if _, ok := firstInner.(MatrixType); !ok {
			return &ExpressionError{Kind: ExprErrorInvalidArgumentType, Math: e.Fun, Base: e.Arg}
		}
		return nil
	case MathCountOneBits, MathReverseBits:
		if !isIntegerShaped(firstInner) {
			return &ExpressionError{Kind: ExprErrorInvalidArgumentType, Math: e.Fun, Base: e.Arg}
		}
		return nil
	case MathAbs, MathMin, MathMax, MathClamp, MathSign:
		if kind, ok := numericKind(firstInner); !ok || kind == ScalarBool {
			return &ExpressionError{Kind: ExprErrorInvalidArgumentType, Math: e.Fun, Base: e.Arg}
		}
	case MathDot, MathOuter, MathCross, MathDistance, MathLength, MathNormalize,
		MathFaceForward, MathReflect, MathRefract:
		vec, ok := firstInner.(VectorType)
		if e.Fun == MathLength || e.Fun == MathDistance {
			if kind, isNum := numericKind(firstInner); isNum && kind == ScalarFloat {
				ok = true
			}
		} else if !ok || (e.Fun != MathDot && vec.Scalar.Kind != ScalarFloat) {
			ok = false
		}
		if !ok {
			return &ExpressionError{Kind: ExprErrorInvalidArgumentType, Math: e.Fun, Base: e.Arg}
		}
	default:
		if kind, ok := numericKind(firstInner); !ok || kind != ScalarFloat {
			return &ExpressionError{Kind: ExprErrorInvalidArgumentType, Math: e.Fun, Base: e.Arg}
		}
	}

	for i, arg := range args[1:] {
		got := v.context.info.ExpressionTypes[arg]
		index := uint32(i + 1)
		switch {
		case e.Fun == MathLdexp:
			if !isIntegerShaped(got.Inner(v.module)) {
				return &ExpressionError{Kind: ExprErrorInvalidArgumentType, Math: e.Fun, Base: arg, Index: index}
			}
		case e.Fun == MathOuter:
			if _, ok := got.Inner(v.module).(VectorType); !ok {
				return &ExpressionError{Kind: ExprErrorInvalidArgumentType, Math: e.Fun, Base: arg, Index: index}
			}
		case e.Fun == MathRefract && index == 2, e.Fun == MathMix && index == 2:
			// The interpolation factor may be a scalar.
			if _, ok := got.Inner(v.module).(ScalarType); ok {
				continue
			}
			if !SameType(v.module, got, first) {
				return &ExpressionError{Kind: ExprErrorInvalidArgumentType, Math: e.Fun, Base: arg, Index: index}
			}
		default:
			if !SameType(v.module, got, first) {
				return &ExpressionError{Kind: ExprErrorInvalidArgumentType, Math: e.Fun, Base: arg, Index: index}
			}
		}
	}
	return nil
}

func (v *Validator) isRuntimeArrayPointer(inner TypeInner) bool {
	ptr, ok := inner.(PointerType)
	if !ok {
		return false
	}
	arr, ok := innerAt(v.module, ptr.Base).(ArrayType)
	return ok && arr.Size.Constant == nil
}
