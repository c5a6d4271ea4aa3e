package wgsl

import (
	"fmt"
	"strconv"

	"github.com/gogpu/wgslfront/ir"
)

var mathFunctions = map[string]ir.MathFunction{
	"abs":          ir.MathAbs,
	"min":          ir.MathMin,
	"max":          ir.MathMax,
	"clamp":        ir.MathClamp,
	"cos":          ir.MathCos,
	"cosh":         ir.MathCosh,
	"sin":          ir.MathSin,
	"sinh":         ir.MathSinh,
	"tan":          ir.MathTan,
	"tanh":         ir.MathTanh,
	"acos":         ir.MathAcos,
	"asin":         ir.MathAsin,
	"atan":         ir.MathAtan,
	"atan2":        ir.MathAtan2,
	"ceil":         ir.MathCeil,
	"floor":        ir.MathFloor,
	"round":        ir.MathRound,
	"fract":        ir.MathFract,
	"trunc":        ir.MathTrunc,
	"ldexp":        ir.MathLdexp,
	"exp":          ir.MathExp,
	"exp2":         ir.MathExp2,
	"log":          ir.MathLog,
	"log2":         ir.MathLog2,
	"pow":          ir.MathPow,
	"dot":          ir.MathDot,
	"outerProduct": ir.MathOuter,
	"cross":        ir.MathCross,
	"distance":     ir.MathDistance,
	"length":       ir.MathLength,
	"normalize":    ir.MathNormalize,
	"faceForward":  ir.MathFaceForward,
	"reflect":      ir.MathReflect,
	"refract":      ir.MathRefract,
	"sign":         ir.MathSign,
	"fma":          ir.MathFma,
	"mix":          ir.MathMix,
	"step":         ir.MathStep,
	"smoothStep":   ir.MathSmoothStep,
	"smoothstep":   ir.MathSmoothStep,
	"sqrt":         ir.MathSqrt,
	"inverseSqrt":  ir.MathInverseSqrt,
	"transpose":    ir.MathTranspose,
	"determinant":  ir.MathDeterminant,
	"countOneBits": ir.MathCountOneBits,
	"reverseBits":  ir.MathReverseBits,
}

var relationalFunctions = map[string]ir.RelationalFunction{
	"all":   ir.RelationalAll,
	"any":   ir.RelationalAny,
	"isNan": ir.RelationalIsNan,
	"isInf": ir.RelationalIsInf,
}

var derivativeFunctions = map[string]ir.ExprDerivative{
	"dpdx":         {Axis: ir.DerivativeX, Control: ir.DerivativeNone},
	"dpdxCoarse":   {Axis: ir.DerivativeX, Control: ir.DerivativeCoarse},
	"dpdxFine":     {Axis: ir.DerivativeX, Control: ir.DerivativeFine},
	"dpdy":         {Axis: ir.DerivativeY, Control: ir.DerivativeNone},
	"dpdyCoarse":   {Axis: ir.DerivativeY, Control: ir.DerivativeCoarse},
	"dpdyFine":     {Axis: ir.DerivativeY, Control: ir.DerivativeFine},
	"fwidth":       {Axis: ir.DerivativeWidth, Control: ir.DerivativeNone},
	"fwidthCoarse": {Axis: ir.DerivativeWidth, Control: ir.DerivativeCoarse},
	"fwidthFine":   {Axis: ir.DerivativeWidth, Control: ir.DerivativeFine},
}

// sampleExtras is the number of arguments each sampling function takes
// after the coordinate and array index, not counting the offset.
var sampleExtras = map[string]int{
	"textureSample":             0,
	"textureSampleBias":         1,
	"textureSampleLevel":        1,
	"textureSampleGrad":         2,
	"textureSampleCompare":      1,
	"textureSampleCompareLevel": 1,
}

var imageQueries = map[string]ir.ImageQuery{
	"textureNumLevels":  ir.ImageQueryNumLevels{},
	"textureNumLayers":  ir.ImageQueryNumLayers{},
	"textureNumSamples": ir.ImageQueryNumSamples{},
}

var barriers = map[string]ir.BarrierFlags{
	"workgroupBarrier": ir.BarrierWorkGroup,
	"storageBarrier":   ir.BarrierStorage,
}

// emit appends a statement to target.
func emit(target *ir.Block, kind ir.StatementKind, span Span) {
	*target = append(*target, ir.Statement{Kind: kind, Span: span})
}

// lowerCall lowers a call of a constructor, builtin or user function. The
// result is nil for calls that produce no value, which is only allowed
// when the call is a statement.
func (l *Lowerer) lowerCall(call *CallExpr, target *ir.Block, statement bool) (*ir.ExpressionHandle, error) {
	castSpan := Span{Start: call.Func.Span.End, End: call.Span.End}

	ty, ok, err := l.constructorType(call.Func)
	if err != nil {
		return nil, err
	}
	if ok {
		return handleResult(l.lowerConstructor(ty, call.Args, call.Span, castSpan, target))
	}
	if isInferredConstructor(call.Func.Name) {
		return handleResult(l.lowerInferredConstructor(call, castSpan, target))
	}

	if h, ok, err := l.lowerBuiltin(call, target, statement); ok || err != nil {
		return h, err
	}

	decl, ok := l.names[call.Func.Name]
	if !ok || decl.kind != nameFunction {
		return nil, errUnknownLocalFunction(l.source, call.Func.Span)
	}
	handle := ir.FunctionHandle(decl.handle)
	callee := &l.module.Functions[handle]
	if len(call.Args) != len(callee.Arguments) {
		return nil, errArgumentCount(l.source, call.Span, strconv.Itoa(len(callee.Arguments)), len(call.Args))
	}
	args, err := l.lowerExpressions(call.Args, target)
	if err != nil {
		return nil, err
	}

	if callee.Result == nil {
		if !statement {
			return nil, errVoidValue(l.source, call.Span)
		}
		emit(target, ir.StmtCall{Function: handle, Arguments: args}, call.Span)
		return nil, nil
	}
	result, err := l.addExpression(ir.ExprCallResult{Function: handle}, call.Span)
	if err != nil {
		return nil, err
	}
	emit(target, ir.StmtCall{Function: handle, Arguments: args, Result: &result}, call.Span)
	return &result, nil
}

func handleResult(h ir.ExpressionHandle, err error) (*ir.ExpressionHandle, error) {
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// constructorType reports whether a call names a type that can be used
// as a constructor without template parameters.
func (l *Lowerer) constructorType(id *Ident) (ir.TypeHandle, bool, error) {
	if scalar, ok := scalarTypes[id.Name]; ok {
		return l.registerType("", scalar), true, nil
	}
	if decl, ok := l.names[id.Name]; ok && decl.kind == nameType {
		return ir.TypeHandle(decl.handle), true, nil
	}
	return 0, false, nil
}

func isInferredConstructor(name string) bool {
	_, vector := vectorSizes[name]
	_, matrix := matrixShapes[name]
	return vector || matrix || name == "array"
}

func (l *Lowerer) lowerConstruct(e *ConstructExpr, target *ir.Block) (ir.ExpressionHandle, error) {
	ty, err := l.resolveType(e.Type)
	if err != nil {
		return 0, err
	}
	castSpan := Span{Start: e.Type.Pos().End, End: e.Span.End}
	return l.lowerConstructor(ty, e.Args, e.Span, castSpan, target)
}

func (l *Lowerer) lowerConstructor(ty ir.TypeHandle, args []Expr, span, castSpan Span, target *ir.Block) (ir.ExpressionHandle, error) {
	if len(args) == 0 {
		return l.addExpression(ir.ExprZeroValue{Type: ty}, span)
	}
	values, err := l.lowerExpressions(args, target)
	if err != nil {
		return 0, err
	}
	return l.construct(ty, values, span, castSpan)
}

// lowerInferredConstructor lowers vecN(...), matCxR(...) and array(...),
// taking the missing template parameters from the arguments.
func (l *Lowerer) lowerInferredConstructor(call *CallExpr, castSpan Span, target *ir.Block) (ir.ExpressionHandle, error) {
	name := call.Func.Name
	if len(call.Args) == 0 {
		return 0, errArgumentCount(l.source, call.Span, "at least 1", 0)
	}
	values, err := l.lowerExpressions(call.Args, target)
	if err != nil {
		return 0, err
	}

	first := l.innerOfExpr(values[0])
	var scalar ir.ScalarType
	switch t := first.(type) {
	case ir.ScalarType:
		scalar = t
	case ir.VectorType:
		scalar = t.Scalar
	case ir.MatrixType:
		scalar = t.Scalar
	}

	var ty ir.TypeHandle
	switch {
	case name == "array":
		base := l.typeHandle(l.typeOf(values[0]))
		size := l.arraySizeConstant(len(values), call.Span)
		ty = l.registerType("", ir.ArrayType{
			Base:   base,
			Size:   ir.ArraySize{Constant: &size},
			Stride: l.stride(base),
		})
	case scalar == ir.ScalarType{}:
		return 0, errBadTypeCast(l.source, castSpan, ir.ResolutionName(l.module, l.typeOf(values[0])), name)
	default:
		if size, ok := vectorSizes[name]; ok {
			ty = l.registerType("", ir.VectorType{Size: size, Scalar: scalar})
		} else {
			shape := matrixShapes[name]
			ty = l.registerType("", ir.MatrixType{Columns: shape[0], Rows: shape[1], Scalar: scalar})
		}
	}
	return l.construct(ty, values, call.Span, castSpan)
}

//nolint:gocyclo,cyclop // One case per constructible type
func (l *Lowerer) construct(ty ir.TypeHandle, values []ir.ExpressionHandle, span, castSpan Span) (ir.ExpressionHandle, error) {
	castError := func() error {
		return errBadTypeCast(l.source, castSpan,
			ir.ResolutionName(l.module, l.typeOf(values[0])), ir.HandleName(l.module, ty))
	}

	switch t := l.innerOf(ty).(type) {
	case ir.ScalarType:
		if len(values) != 1 {
			return 0, errArgumentCount(l.source, span, "1", len(values))
		}
		if _, ok := l.innerOfExpr(values[0]).(ir.ScalarType); !ok {
			return 0, castError()
		}
		return l.convert(values[0], t, span)

	case ir.VectorType:
		if len(values) != 1 {
			break
		}
		switch arg := l.innerOfExpr(values[0]).(type) {
		case ir.ScalarType:
			value := values[0]
			if arg != t.Scalar {
				var err error
				if value, err = l.convert(value, t.Scalar, span); err != nil {
					return 0, err
				}
			}
			return l.addExpression(ir.ExprSplat{Size: t.Size, Value: value}, span)
		case ir.VectorType:
			if arg.Size == t.Size {
				if arg.Scalar == t.Scalar {
					return values[0], nil
				}
				return l.convert(values[0], t.Scalar, span)
			}
		}
		return 0, castError()

	case ir.MatrixType:
		if len(values) == 1 {
			arg, ok := l.innerOfExpr(values[0]).(ir.MatrixType)
			if !ok || arg.Columns != t.Columns || arg.Rows != t.Rows {
				return 0, castError()
			}
			if arg.Scalar == t.Scalar {
				return values[0], nil
			}
			return l.convert(values[0], t.Scalar, span)
		}
		if len(values) == int(t.Columns)*int(t.Rows) {
			column := l.registerType("", ir.VectorType{Size: t.Rows, Scalar: t.Scalar})
			rows := int(t.Rows)
			columns := make([]ir.ExpressionHandle, t.Columns)
			for c := range columns {
				h, err := l.addExpression(ir.ExprCompose{Type: column, Components: values[c*rows : (c+1)*rows]}, span)
				if err != nil {
					return 0, err
				}
				columns[c] = h
			}
			values = columns
		}

	case ir.ArrayType, ir.StructType:

	default:
		return 0, newLabeledError(l.source, ErrBadTypeCast, castSpan,
			fmt.Sprintf("type `%s` cannot be constructed", ir.HandleName(l.module, ty)),
			"cannot be constructed")
	}
	return l.addExpression(ir.ExprCompose{Type: ty, Components: values}, span)
}

// convert changes the scalar kind and width of a scalar, vector or
// matrix value.
func (l *Lowerer) convert(value ir.ExpressionHandle, to ir.ScalarType, span Span) (ir.ExpressionHandle, error) {
	width := to.Width
	return l.addExpression(ir.ExprAs{Expr: value, Kind: to.Kind, Convert: &width}, span)
}

// lowerBuiltin lowers a call of a builtin function. It reports false if
// the call does not name one.
//
//nolint:gocyclo,cyclop,funlen // Builtin dispatch
func (l *Lowerer) lowerBuiltin(call *CallExpr, target *ir.Block, statement bool) (*ir.ExpressionHandle, bool, error) {
	name := call.Func.Name
	expect := func(n int) error {
		if len(call.Args) != n {
			return errArgumentCount(l.source, call.Span, strconv.Itoa(n), len(call.Args))
		}
		return nil
	}
	done := func(h ir.ExpressionHandle, err error) (*ir.ExpressionHandle, bool, error) {
		if err != nil {
			return nil, true, err
		}
		return &h, true, nil
	}

	if fun, ok := mathFunctions[name]; ok {
		if err := expect(fun.ArgumentCount()); err != nil {
			return nil, true, err
		}
		args, err := l.lowerExpressions(call.Args, target)
		if err != nil {
			return nil, true, err
		}
		m := ir.ExprMath{Fun: fun, Arg: args[0]}
		if len(args) > 1 {
			m.Arg1 = &args[1]
		}
		if len(args) > 2 {
			m.Arg2 = &args[2]
		}
		return done(l.addExpression(m, call.Span))
	}

	if fun, ok := relationalFunctions[name]; ok {
		if err := expect(1); err != nil {
			return nil, true, err
		}
		arg, err := l.lowerExpression(call.Args[0], target)
		if err != nil {
			return nil, true, err
		}
		return done(l.addExpression(ir.ExprRelational{Fun: fun, Argument: arg}, call.Span))
	}

	if deriv, ok := derivativeFunctions[name]; ok {
		if err := expect(1); err != nil {
			return nil, true, err
		}
		arg, err := l.lowerExpression(call.Args[0], target)
		if err != nil {
			return nil, true, err
		}
		deriv.Expr = arg
		return done(l.addExpression(deriv, call.Span))
	}

	if _, ok := sampleExtras[name]; ok {
		return done(l.lowerTextureSample(call, target))
	}

	if flags, ok := barriers[name]; ok {
		if err := expect(0); err != nil {
			return nil, true, err
		}
		if !statement {
			return nil, true, errVoidValue(l.source, call.Span)
		}
		emit(target, ir.StmtBarrier{Flags: flags}, call.Span)
		return nil, true, nil
	}

	if query, ok := imageQueries[name]; ok {
		if err := expect(1); err != nil {
			return nil, true, err
		}
		image, _, err := l.lowerImage(call.Args[0], target)
		if err != nil {
			return nil, true, err
		}
		return done(l.addExpression(ir.ExprImageQuery{Image: image, Query: query}, call.Span))
	}

	switch name {
	case "select":
		if err := expect(3); err != nil {
			return nil, true, err
		}
		args, err := l.lowerExpressions(call.Args, target)
		if err != nil {
			return nil, true, err
		}
		return done(l.addExpression(ir.ExprSelect{Condition: args[2], Accept: args[1], Reject: args[0]}, call.Span))

	case "arrayLength":
		if err := expect(1); err != nil {
			return nil, true, err
		}
		op, err := l.lowerOperand(call.Args[0], target)
		if err != nil {
			return nil, true, err
		}
		return done(l.addExpression(ir.ExprArrayLength{Array: op.handle}, call.Span))

	case "textureDimensions":
		if len(call.Args) < 1 || len(call.Args) > 2 {
			return nil, true, errArgumentCount(l.source, call.Span, "1 or 2", len(call.Args))
		}
		image, _, err := l.lowerImage(call.Args[0], target)
		if err != nil {
			return nil, true, err
		}
		query := ir.ImageQuerySize{}
		if len(call.Args) == 2 {
			level, err := l.lowerExpression(call.Args[1], target)
			if err != nil {
				return nil, true, err
			}
			query.Level = &level
		}
		return done(l.addExpression(ir.ExprImageQuery{Image: image, Query: query}, call.Span))

	case "textureLoad":
		return done(l.lowerTextureLoad(call, target))

	case "textureStore":
		if !statement {
			return nil, true, errVoidValue(l.source, call.Span)
		}
		return nil, true, l.lowerTextureStore(call, target)
	}
	return nil, false, nil
}

// lowerImage lowers an argument that must be an image.
func (l *Lowerer) lowerImage(expr Expr, target *ir.Block) (ir.ExpressionHandle, ir.ImageType, error) {
	h, err := l.lowerExpression(expr, target)
	if err != nil {
		return 0, ir.ImageType{}, err
	}
	img, ok := l.innerOfExpr(h).(ir.ImageType)
	if !ok {
		return 0, ir.ImageType{}, errNotImage(l.source, expr.Pos())
	}
	return h, img, nil
}

func (l *Lowerer) lowerTextureSample(call *CallExpr, target *ir.Block) (ir.ExpressionHandle, error) {
	args := call.Args
	if len(args) < 3 {
		return 0, errArgumentCount(l.source, call.Span, "at least 3", len(args))
	}
	image, img, err := l.lowerImage(args[0], target)
	if err != nil {
		return 0, err
	}

	extras := sampleExtras[call.Func.Name]
	need := 3 + extras
	if img.Arrayed {
		need++
	}
	if len(args) != need && len(args) != need+1 {
		return 0, errArgumentCount(l.source, call.Span, fmt.Sprintf("%d or %d", need, need+1), len(args))
	}

	values, err := l.lowerExpressions(args[1:], target)
	if err != nil {
		return 0, err
	}
	sample := ir.ExprImageSample{
		Image:      image,
		Sampler:    values[0],
		Coordinate: values[1],
		Level:      ir.SampleLevelAuto{},
	}
	values = values[2:]
	if img.Arrayed {
		sample.ArrayIndex = &values[0]
		values = values[1:]
	}

	switch call.Func.Name {
	case "textureSampleBias":
		sample.Level = ir.SampleLevelBias{Bias: values[0]}
	case "textureSampleLevel":
		sample.Level = ir.SampleLevelExact{Level: values[0]}
	case "textureSampleGrad":
		sample.Level = ir.SampleLevelGradient{X: values[0], Y: values[1]}
	case "textureSampleCompare":
		sample.DepthRef = &values[0]
	case "textureSampleCompareLevel":
		sample.DepthRef = &values[0]
		sample.Level = ir.SampleLevelZero{}
	}
	values = values[extras:]
	if len(values) == 1 {
		sample.Offset = &values[0]
	}
	return l.addExpression(sample, call.Span)
}

func (l *Lowerer) lowerTextureLoad(call *CallExpr, target *ir.Block) (ir.ExpressionHandle, error) {
	if len(call.Args) < 2 {
		return 0, errArgumentCount(l.source, call.Span, "at least 2", len(call.Args))
	}
	image, img, err := l.lowerImage(call.Args[0], target)
	if err != nil {
		return 0, err
	}
	need := 2
	if img.Arrayed {
		need++
	}
	if img.Class != ir.ImageClassStorage {
		need++
	}
	if len(call.Args) != need {
		return 0, errArgumentCount(l.source, call.Span, strconv.Itoa(need), len(call.Args))
	}

	values, err := l.lowerExpressions(call.Args[1:], target)
	if err != nil {
		return 0, err
	}
	load := ir.ExprImageLoad{Image: image, Coordinate: values[0]}
	values = values[1:]
	if img.Arrayed {
		load.ArrayIndex = &values[0]
		values = values[1:]
	}
	if len(values) == 1 {
		load.Index = &values[0]
	}
	return l.addExpression(load, call.Span)
}

func (l *Lowerer) lowerTextureStore(call *CallExpr, target *ir.Block) error {
	if len(call.Args) < 3 {
		return errArgumentCount(l.source, call.Span, "at least 3", len(call.Args))
	}
	image, img, err := l.lowerImage(call.Args[0], target)
	if err != nil {
		return err
	}
	need := 3
	if img.Arrayed {
		need++
	}
	if len(call.Args) != need {
		return errArgumentCount(l.source, call.Span, strconv.Itoa(need), len(call.Args))
	}

	values, err := l.lowerExpressions(call.Args[1:], target)
	if err != nil {
		return err
	}
	store := ir.StmtImageStore{Image: image, Coordinate: values[0], Value: values[len(values)-1]}
	if img.Arrayed {
		store.ArrayIndex = &values[1]
	}
	emit(target, store, call.Span)
	return nil
}
