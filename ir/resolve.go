package ir

import "fmt"

// ResolveExpressionType resolves the type of fn.Expressions[handle].
// Operand types are read from resolved, which must already hold the
// types of every expression below handle; expressions only refer to
// earlier expressions, so callers fill it in arena order.
//
//nolint:gocyclo,cyclop,funlen // Type resolution requires handling all expression kinds
func ResolveExpressionType(module *Module, fn *Function, resolved []TypeResolution, handle ExpressionHandle) (TypeResolution, error) {
	if int(handle) >= len(fn.Expressions) {
		return TypeResolution{}, fmt.Errorf("expression handle %d out of range (max %d)", handle, len(fn.Expressions))
	}

	operand := func(h ExpressionHandle) (TypeResolution, error) {
		if h >= handle || int(h) >= len(resolved) {
			return TypeResolution{}, fmt.Errorf("expression [%d] refers to [%d], which is not yet resolved", handle, h)
		}
		return resolved[h], nil
	}
	inner := func(h ExpressionHandle) (TypeInner, error) {
		r, err := operand(h)
		if err != nil {
			return nil, err
		}
		return r.Inner(module), nil
	}

	switch kind := fn.Expressions[handle].Kind.(type) {
	case Literal:
		return resolveLiteralType(kind)
	case ExprConstant:
		if int(kind.Constant) >= len(module.Constants) {
			return TypeResolution{}, fmt.Errorf("constant %d out of range", kind.Constant)
		}
		return HandleResolution(module.Constants[kind.Constant].Type), nil
	case ExprZeroValue:
		return HandleResolution(kind.Type), nil
	case ExprCompose:
		return HandleResolution(kind.Type), nil
	case ExprAccess:
		base, err := operand(kind.Base)
		if err != nil {
			return TypeResolution{}, err
		}
		return resolveElementType(module, base, nil)
	case ExprAccessIndex:
		base, err := operand(kind.Base)
		if err != nil {
			return TypeResolution{}, err
		}
		index := kind.Index
		return resolveElementType(module, base, &index)
	case ExprSplat:
		value, err := inner(kind.Value)
		if err != nil {
			return TypeResolution{}, err
		}
		scalar, ok := value.(ScalarType)
		if !ok {
			return TypeResolution{}, fmt.Errorf("cannot splat a %s", TypeName(module, value))
		}
		return ValueResolution(VectorType{Size: kind.Size, Scalar: scalar}), nil
	case ExprSwizzle:
		vector, err := inner(kind.Vector)
		if err != nil {
			return TypeResolution{}, err
		}
		vec, ok := vector.(VectorType)
		if !ok {
			return TypeResolution{}, fmt.Errorf("cannot swizzle a %s", TypeName(module, vector))
		}
		if kind.Size == 1 {
			return ValueResolution(vec.Scalar), nil
		}
		return ValueResolution(VectorType{Size: kind.Size, Scalar: vec.Scalar}), nil
	case ExprFunctionArgument:
		if int(kind.Index) >= len(fn.Arguments) {
			return TypeResolution{}, fmt.Errorf("function argument index %d out of range", kind.Index)
		}
		return HandleResolution(fn.Arguments[kind.Index].Type), nil
	case ExprGlobalVariable:
		if int(kind.Variable) >= len(module.GlobalVariables) {
			return TypeResolution{}, fmt.Errorf("global variable %d out of range", kind.Variable)
		}
		gv := module.GlobalVariables[kind.Variable]
		if gv.Space == SpaceHandle {
			return HandleResolution(gv.Type), nil
		}
		return ValueResolution(PointerType{Base: gv.Type, Space: gv.Space, Access: gv.Access}), nil
	case ExprLocalVariable:
		if int(kind.Variable) >= len(fn.LocalVars) {
			return TypeResolution{}, fmt.Errorf("local variable %d out of range", kind.Variable)
		}
		return ValueResolution(PointerType{
			Base:   fn.LocalVars[kind.Variable].Type,
			Space:  SpaceFunction,
			Access: StorageReadWrite,
		}), nil
	case ExprLoad:
		ptr, err := inner(kind.Pointer)
		if err != nil {
			return TypeResolution{}, err
		}
		switch p := ptr.(type) {
		case PointerType:
			if atomic, ok := innerAt(module, p.Base).(AtomicType); ok {
				return ValueResolution(atomic.Scalar), nil
			}
			return HandleResolution(p.Base), nil
		case ValuePointerType:
			if p.Size != nil {
				return ValueResolution(VectorType{Size: *p.Size, Scalar: p.Scalar}), nil
			}
			return ValueResolution(p.Scalar), nil
		}
		return TypeResolution{}, fmt.Errorf("cannot load through a %s", TypeName(module, ptr))
	case ExprImageSample:
		image, err := inner(kind.Image)
		if err != nil {
			return TypeResolution{}, err
		}
		img, ok := image.(ImageType)
		if !ok {
			return TypeResolution{}, fmt.Errorf("cannot sample a %s", TypeName(module, image))
		}
		if img.Class == ImageClassDepth {
			return ValueResolution(ScalarType{Kind: ScalarFloat, Width: 4}), nil
		}
		return ValueResolution(VectorType{Size: Vec4, Scalar: ScalarType{Kind: img.SampledKind, Width: 4}}), nil
	case ExprImageLoad:
		image, err := inner(kind.Image)
		if err != nil {
			return TypeResolution{}, err
		}
		img, ok := image.(ImageType)
		if !ok {
			return TypeResolution{}, fmt.Errorf("cannot load from a %s", TypeName(module, image))
		}
		switch img.Class {
		case ImageClassDepth:
			return ValueResolution(ScalarType{Kind: ScalarFloat, Width: 4}), nil
		case ImageClassStorage:
			return ValueResolution(VectorType{Size: Vec4, Scalar: ScalarType{Kind: img.StorageFormat.Kind(), Width: 4}}), nil
		}
		return ValueResolution(VectorType{Size: Vec4, Scalar: ScalarType{Kind: img.SampledKind, Width: 4}}), nil
	case ExprImageQuery:
		u32 := ScalarType{Kind: ScalarUint, Width: 4}
		if _, ok := kind.Query.(ImageQuerySize); !ok {
			return ValueResolution(u32), nil
		}
		image, err := inner(kind.Image)
		if err != nil {
			return TypeResolution{}, err
		}
		img, ok := image.(ImageType)
		if !ok {
			return TypeResolution{}, fmt.Errorf("cannot query a %s", TypeName(module, image))
		}
		switch img.Dim {
		case Dim1D:
			return ValueResolution(u32), nil
		case Dim3D:
			return ValueResolution(VectorType{Size: Vec3, Scalar: u32}), nil
		}
		return ValueResolution(VectorType{Size: Vec2, Scalar: u32}), nil
	case ExprUnary:
		return operand(kind.Expr)
	case ExprBinary:
		left, err := operand(kind.Left)
		if err != nil {
			return TypeResolution{}, err
		}
		right, err := operand(kind.Right)
		if err != nil {
			return TypeResolution{}, err
		}
		return resolveBinaryType(module, kind.Op, left, right), nil
	case ExprSelect:
		return operand(kind.Accept)
	case ExprDerivative:
		return operand(kind.Expr)
	case ExprRelational:
		arg, err := inner(kind.Argument)
		if err != nil {
			return TypeResolution{}, err
		}
		boolean := ScalarType{Kind: ScalarBool, Width: BoolWidth}
		if kind.Fun == RelationalAll || kind.Fun == RelationalAny {
			return ValueResolution(boolean), nil
		}
		if vec, ok := arg.(VectorType); ok {
			return ValueResolution(VectorType{Size: vec.Size, Scalar: boolean}), nil
		}
		return ValueResolution(boolean), nil
	case ExprMath:
		return resolveMathType(module, kind, operand, inner)
	case ExprAs:
		arg, err := inner(kind.Expr)
		if err != nil {
			return TypeResolution{}, err
		}
		return resolveAsType(module, kind, arg)
	case ExprCallResult:
		if int(kind.Function) >= len(module.Functions) {
			return TypeResolution{}, fmt.Errorf("function %d out of range", kind.Function)
		}
		result := module.Functions[kind.Function].Result
		if result == nil {
			return TypeResolution{}, fmt.Errorf("function %q has no return type", module.Functions[kind.Function].Name)
		}
		return HandleResolution(result.Type), nil
	case ExprArrayLength:
		return ValueResolution(ScalarType{Kind: ScalarUint, Width: 4}), nil
	default:
		return TypeResolution{}, fmt.Errorf("unsupported expression kind: %T", kind)
	}
}

func resolveLiteralType(lit Literal) (TypeResolution, error) {
	switch v := lit.Value.(type) {
	case LiteralF64:
		return ValueResolution(ScalarType{Kind: ScalarFloat, Width: 8}), nil
	case LiteralF32:
		return ValueResolution(ScalarType{Kind: ScalarFloat, Width: 4}), nil
	case LiteralU32:
		return ValueResolution(ScalarType{Kind: ScalarUint, Width: 4}), nil
	case LiteralI32:
		return ValueResolution(ScalarType{Kind: ScalarSint, Width: 4}), nil
	case LiteralBool:
		return ValueResolution(ScalarType{Kind: ScalarBool, Width: BoolWidth}), nil
	default:
		return TypeResolution{}, fmt.Errorf("unknown literal type: %T", v)
	}
}

// resolveElementType resolves indexing into base. A nil index is a
// dynamic index, which cannot select a struct member.
func resolveElementType(module *Module, base TypeResolution, index *uint32) (TypeResolution, error) {
	switch t := base.Inner(module).(type) {
	case ArrayType:
		return HandleResolution(t.Base), nil
	case VectorType:
		return ValueResolution(t.Scalar), nil
	case MatrixType:
		return ValueResolution(VectorType{Size: t.Rows, Scalar: t.Scalar}), nil
	case StructType:
		if index == nil {
			return TypeResolution{}, fmt.Errorf("struct members cannot be selected with a dynamic index")
		}
		if int(*index) >= len(t.Members) {
			return TypeResolution{}, fmt.Errorf("struct has %d members, index %d is out of bounds", len(t.Members), *index)
		}
		return HandleResolution(t.Members[*index].Type), nil
	case ValuePointerType:
		if t.Size == nil {
			return TypeResolution{}, fmt.Errorf("cannot index a pointer to a scalar")
		}
		return ValueResolution(ValuePointerType{Scalar: t.Scalar, Space: t.Space, Access: t.Access}), nil
	case PointerType:
		switch pointee := innerAt(module, t.Base).(type) {
		case ArrayType:
			return ValueResolution(PointerType{Base: pointee.Base, Space: t.Space, Access: t.Access}), nil
		case VectorType:
			return ValueResolution(ValuePointerType{Scalar: pointee.Scalar, Space: t.Space, Access: t.Access}), nil
		case MatrixType:
			rows := pointee.Rows
			return ValueResolution(ValuePointerType{Size: &rows, Scalar: pointee.Scalar, Space: t.Space, Access: t.Access}), nil
		case StructType:
			if index == nil {
				return TypeResolution{}, fmt.Errorf("struct members cannot be selected with a dynamic index")
			}
			if int(*index) >= len(pointee.Members) {
				return TypeResolution{}, fmt.Errorf("struct has %d members, index %d is out of bounds", len(pointee.Members), *index)
			}
			return ValueResolution(PointerType{Base: pointee.Members[*index].Type, Space: t.Space, Access: t.Access}), nil
		}
	}
	return TypeResolution{}, fmt.Errorf("type %s cannot be indexed", ResolutionName(module, base))
}

func resolveBinaryType(module *Module, op BinaryOperator, left, right TypeResolution) TypeResolution {
	l, r := left.Inner(module), right.Inner(module)

	if op.IsComparison() {
		boolean := ScalarType{Kind: ScalarBool, Width: BoolWidth}
		if vec, ok := l.(VectorType); ok {
			return ValueResolution(VectorType{Size: vec.Size, Scalar: boolean})
		}
		return ValueResolution(boolean)
	}

	if op == BinaryMultiply {
		switch lt := l.(type) {
		case MatrixType:
			switch rt := r.(type) {
			case VectorType:
				// mat * vec yields a vector of the matrix's rows.
				return ValueResolution(VectorType{Size: lt.Rows, Scalar: rt.Scalar})
			case MatrixType:
				return ValueResolution(MatrixType{Columns: rt.Columns, Rows: lt.Rows, Scalar: lt.Scalar})
			}
		case VectorType:
			if rt, ok := r.(MatrixType); ok {
				return ValueResolution(VectorType{Size: rt.Columns, Scalar: lt.Scalar})
			}
		case ScalarType:
			if _, ok := r.(ScalarType); !ok {
				return right
			}
		}
	}

	// scalar op vector yields the vector.
	if _, ok := l.(ScalarType); ok {
		if _, ok := r.(VectorType); ok {
			return right
		}
	}
	return left
}

func resolveMathType(
	module *Module,
	expr ExprMath,
	operand func(ExpressionHandle) (TypeResolution, error),
	inner func(ExpressionHandle) (TypeInner, error),
) (TypeResolution, error) {
	arg, err := operand(expr.Arg)
	if err != nil {
		return TypeResolution{}, err
	}
	argInner := arg.Inner(module)

	switch expr.Fun {
	case MathDot, MathLength, MathDistance:
		switch t := argInner.(type) {
		case VectorType:
			return ValueResolution(t.Scalar), nil
		case ScalarType:
			return ValueResolution(t), nil
		}
		return TypeResolution{}, fmt.Errorf("%s is not a vector", TypeName(module, argInner))
	case MathDeterminant:
		mat, ok := argInner.(MatrixType)
		if !ok {
			return TypeResolution{}, fmt.Errorf("%s is not a matrix", TypeName(module, argInner))
		}
		return ValueResolution(mat.Scalar), nil
	case MathTranspose:
		mat, ok := argInner.(MatrixType)
		if !ok {
			return TypeResolution{}, fmt.Errorf("%s is not a matrix", TypeName(module, argInner))
		}
		return ValueResolution(MatrixType{Columns: mat.Rows, Rows: mat.Columns, Scalar: mat.Scalar}), nil
	case MathOuter:
		left, ok := argInner.(VectorType)
		if !ok || expr.Arg1 == nil {
			return TypeResolution{}, fmt.Errorf("outer product needs two vectors")
		}
		other, err := inner(*expr.Arg1)
		if err != nil {
			return TypeResolution{}, err
		}
		right, ok := other.(VectorType)
		if !ok {
			return TypeResolution{}, fmt.Errorf("outer product needs two vectors")
		}
		return ValueResolution(MatrixType{Columns: right.Size, Rows: left.Size, Scalar: left.Scalar}), nil
	}
	return arg, nil
}

func resolveAsType(module *Module, expr ExprAs, arg TypeInner) (TypeResolution, error) {
	width := func(old uint8) uint8 {
		if expr.Convert != nil {
			return *expr.Convert
		}
		return old
	}
	switch t := arg.(type) {
	case ScalarType:
		return ValueResolution(ScalarType{Kind: expr.Kind, Width: width(t.Width)}), nil
	case VectorType:
		return ValueResolution(VectorType{Size: t.Size, Scalar: ScalarType{Kind: expr.Kind, Width: width(t.Scalar.Width)}}), nil
	case MatrixType:
		return ValueResolution(MatrixType{Columns: t.Columns, Rows: t.Rows, Scalar: ScalarType{Kind: expr.Kind, Width: width(t.Scalar.Width)}}), nil
	}
	return TypeResolution{}, fmt.Errorf("cannot convert a %s", TypeName(module, arg))
}

// Kind returns the scalar kind of texels in the format.
func (f StorageFormat) Kind() ScalarKind {
	switch f {
	case StorageFormatR8Uint, StorageFormatR16Uint, StorageFormatRg8Uint, StorageFormatR32Uint,
		StorageFormatRg16Uint, StorageFormatRgba8Uint, StorageFormatRg32Uint,
		StorageFormatRgba16Uint, StorageFormatRgba32Uint:
		return ScalarUint
	case StorageFormatR8Sint, StorageFormatR16Sint, StorageFormatRg8Sint, StorageFormatR32Sint,
		StorageFormatRg16Sint, StorageFormatRgba8Sint, StorageFormatRg32Sint,
		StorageFormatRgba16Sint, StorageFormatRgba32Sint:
		return ScalarSint
	}
	return ScalarFloat
}

// innerAt returns the inner type of an arena handle, or nil if the handle
// is out of range.
func innerAt(module *Module, h TypeHandle) TypeInner {
	if int(h) >= len(module.Types) {
		return nil
	}
	return module.Types[h].Inner
}
