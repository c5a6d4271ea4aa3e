package wgsl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/wgslfront/ir"
)

// functionContext is the state of the function being lowered.
type functionContext struct {
	fn      *ir.Function
	scopes  []map[string]operand
	globals map[ir.GlobalVariableHandle]ir.ExpressionHandle
}

func newFunctionContext(fn *ir.Function) *functionContext {
	return &functionContext{
		fn:      fn,
		scopes:  []map[string]operand{{}},
		globals: make(map[ir.GlobalVariableHandle]ir.ExpressionHandle),
	}
}

func (c *functionContext) pushScope() {
	c.scopes = append(c.scopes, map[string]operand{})
}

func (c *functionContext) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *functionContext) bind(name string, op operand) {
	c.scopes[len(c.scopes)-1][name] = op
}

func (c *functionContext) lookup(name string) (operand, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if op, ok := c.scopes[i][name]; ok {
			return op, true
		}
	}
	return operand{}, false
}

// operand is a lowered expression. A reference is a pointer expression
// standing for the memory it points to: variables and accesses into
// them. Using a reference as a value loads it.
type operand struct {
	handle    ir.ExpressionHandle
	reference bool
}

var binaryOps = map[TokenKind]ir.BinaryOperator{
	TokenPlus:           ir.BinaryAdd,
	TokenMinus:          ir.BinarySubtract,
	TokenStar:           ir.BinaryMultiply,
	TokenSlash:          ir.BinaryDivide,
	TokenPercent:        ir.BinaryModulo,
	TokenEqualEqual:     ir.BinaryEqual,
	TokenBangEqual:      ir.BinaryNotEqual,
	TokenLess:           ir.BinaryLess,
	TokenLessEqual:      ir.BinaryLessEqual,
	TokenGreater:        ir.BinaryGreater,
	TokenGreaterEqual:   ir.BinaryGreaterEqual,
	TokenAmpersand:      ir.BinaryAnd,
	TokenCaret:          ir.BinaryExclusiveOr,
	TokenPipe:           ir.BinaryInclusiveOr,
	TokenAmpAmp:         ir.BinaryLogicalAnd,
	TokenPipePipe:       ir.BinaryLogicalOr,
	TokenLessLess:       ir.BinaryShiftLeft,
	TokenGreaterGreater: ir.BinaryShiftRight,
}

var unaryOps = map[TokenKind]ir.UnaryOperator{
	TokenMinus: ir.UnaryNegate,
	TokenBang:  ir.UnaryLogicalNot,
	TokenTilde: ir.UnaryBitwiseNot,
}

// addExpression appends an expression to the current function and
// resolves its type.
func (l *Lowerer) addExpression(kind ir.ExpressionKind, span Span) (ir.ExpressionHandle, error) {
	fn := l.fn.fn
	handle := ir.ExpressionHandle(len(fn.Expressions))
	fn.Expressions = append(fn.Expressions, ir.Expression{Kind: kind, Span: span})
	res, err := ir.ResolveExpressionType(l.module, fn, fn.ExpressionTypes, handle)
	if err != nil {
		fn.Expressions = fn.Expressions[:handle]
		return 0, errInvalidOperand(l.source, span, err.Error())
	}
	fn.ExpressionTypes = append(fn.ExpressionTypes, res)
	return handle, nil
}

func (l *Lowerer) typeOf(handle ir.ExpressionHandle) ir.TypeResolution {
	return l.fn.fn.ExpressionTypes[handle]
}

func (l *Lowerer) innerOfExpr(handle ir.ExpressionHandle) ir.TypeInner {
	return l.typeOf(handle).Inner(l.module)
}

func (l *Lowerer) isPointer(handle ir.ExpressionHandle) bool {
	switch l.innerOfExpr(handle).(type) {
	case ir.PointerType, ir.ValuePointerType:
		return true
	}
	return false
}

// pointee returns the type an operand denotes: the type pointed to for
// references, and the value's type otherwise.
func (l *Lowerer) pointee(op operand) ir.TypeInner {
	inner := l.innerOfExpr(op.handle)
	if !op.reference {
		return inner
	}
	switch p := inner.(type) {
	case ir.PointerType:
		return l.innerOf(p.Base)
	case ir.ValuePointerType:
		if p.Size != nil {
			return ir.VectorType{Size: *p.Size, Scalar: p.Scalar}
		}
		return p.Scalar
	}
	return inner
}

// load turns an operand into a value.
func (l *Lowerer) load(op operand, span Span) (ir.ExpressionHandle, error) {
	if !op.reference {
		return op.handle, nil
	}
	return l.addExpression(ir.ExprLoad{Pointer: op.handle}, span)
}

// lowerExpression lowers expr as a value. Calls to user functions append
// their call statements to target.
func (l *Lowerer) lowerExpression(expr Expr, target *ir.Block) (ir.ExpressionHandle, error) {
	op, err := l.lowerOperand(expr, target)
	if err != nil {
		return 0, err
	}
	return l.load(op, expr.Pos())
}

func (l *Lowerer) lowerExpressions(exprs []Expr, target *ir.Block) ([]ir.ExpressionHandle, error) {
	out := make([]ir.ExpressionHandle, len(exprs))
	for i, e := range exprs {
		h, err := l.lowerExpression(e, target)
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

func (l *Lowerer) lowerOperand(expr Expr, target *ir.Block) (operand, error) {
	switch e := expr.(type) {
	case *Literal:
		value, err := l.literal(e)
		if err != nil {
			return operand{}, err
		}
		h, err := l.addExpression(ir.Literal{Value: value}, e.Span)
		return operand{handle: h}, err
	case *Ident:
		return l.lowerIdent(e)
	case *UnaryExpr:
		return l.lowerUnary(e, target)
	case *BinaryExpr:
		h, err := l.lowerBinary(e, target)
		return operand{handle: h}, err
	case *IndexExpr:
		return l.lowerIndex(e, target)
	case *MemberExpr:
		return l.lowerMember(e, target)
	case *CallExpr:
		h, err := l.lowerCall(e, target, false)
		if err != nil {
			return operand{}, err
		}
		return operand{handle: *h}, nil
	case *ConstructExpr:
		h, err := l.lowerConstruct(e, target)
		return operand{handle: h}, err
	case *BitcastExpr:
		h, err := l.lowerBitcast(e, target)
		return operand{handle: h}, err
	}
	return operand{}, newError(l.source, ErrUnexpected, expr.Pos(), "unsupported expression")
}

func (l *Lowerer) lowerIdent(id *Ident) (operand, error) {
	if op, ok := l.fn.lookup(id.Name); ok {
		return op, nil
	}
	if decl, ok := l.names[id.Name]; ok {
		switch decl.kind {
		case nameConstant:
			h, err := l.addExpression(ir.ExprConstant{Constant: ir.ConstantHandle(decl.handle)}, id.Span)
			return operand{handle: h}, err
		case nameGlobal:
			return l.lowerGlobal(ir.GlobalVariableHandle(decl.handle), id.Span)
		}
	}
	return operand{}, errUnknownIdent(l.source, id.Span)
}

// lowerGlobal returns the expression for a global variable, creating it
// on first use in the function.
func (l *Lowerer) lowerGlobal(handle ir.GlobalVariableHandle, span Span) (operand, error) {
	reference := l.module.GlobalVariables[handle].Space != ir.SpaceHandle
	if h, ok := l.fn.globals[handle]; ok {
		return operand{handle: h, reference: reference}, nil
	}
	h, err := l.addExpression(ir.ExprGlobalVariable{Variable: handle}, span)
	if err != nil {
		return operand{}, err
	}
	l.fn.globals[handle] = h
	return operand{handle: h, reference: reference}, nil
}

func (l *Lowerer) lowerUnary(e *UnaryExpr, target *ir.Block) (operand, error) {
	switch e.Op {
	case TokenAmpersand:
		op, err := l.lowerOperand(e.Operand, target)
		if err != nil {
			return operand{}, err
		}
		if !op.reference {
			return operand{}, newLabeledError(l.source, ErrNotReference, e.Operand.Pos(),
				"the operand of the `&` operator must be a reference", "expression is not a reference")
		}
		return operand{handle: op.handle}, nil

	case TokenStar:
		h, err := l.lowerExpression(e.Operand, target)
		if err != nil {
			return operand{}, err
		}
		if !l.isPointer(h) {
			return operand{}, newLabeledError(l.source, ErrNotPointer, e.Operand.Pos(),
				"the operand of the `*` operator must be a pointer", "expression is not a pointer")
		}
		return operand{handle: h, reference: true}, nil
	}

	op, ok := unaryOps[e.Op]
	if !ok {
		return operand{}, newError(l.source, ErrUnexpected, e.Span, "unsupported unary operator")
	}
	value, err := l.lowerExpression(e.Operand, target)
	if err != nil {
		return operand{}, err
	}
	h, err := l.addExpression(ir.ExprUnary{Op: op, Expr: value}, e.Span)
	return operand{handle: h}, err
}

func (l *Lowerer) lowerBinary(e *BinaryExpr, target *ir.Block) (ir.ExpressionHandle, error) {
	op, ok := binaryOps[e.Op]
	if !ok {
		return 0, newError(l.source, ErrUnexpected, e.Span, "unsupported binary operator")
	}
	left, err := l.lowerExpression(e.Left, target)
	if err != nil {
		return 0, err
	}
	right, err := l.lowerExpression(e.Right, target)
	if err != nil {
		return 0, err
	}
	return l.addExpression(ir.ExprBinary{Op: op, Left: left, Right: right}, e.Span)
}

func (l *Lowerer) lowerIndex(e *IndexExpr, target *ir.Block) (operand, error) {
	base, err := l.lowerOperand(e.Expr, target)
	if err != nil {
		return operand{}, err
	}
	if !base.reference && l.isPointer(base.handle) {
		return operand{}, newLabeledError(l.source, ErrPointerNotIndexable, e.Expr.Pos(),
			"the value indexed by a `[]` subscripting expression must not be a pointer",
			"expression is a pointer")
	}

	if v, ok, err := l.constInt(e.Index); err != nil {
		return operand{}, err
	} else if ok {
		if v < 0 || v > math.MaxUint32 {
			return operand{}, errBadU32Constant(l.source, e.Index.Pos())
		}
		h, err := l.addExpression(ir.ExprAccessIndex{Base: base.handle, Index: uint32(v)}, e.Span)
		return operand{handle: h, reference: base.reference}, err
	}

	if v, ok := l.namedInt(e.Index); ok && v >= 0 && v <= math.MaxUint32 {
		h, err := l.addExpression(ir.ExprAccessIndex{Base: base.handle, Index: uint32(v)}, e.Span)
		return operand{handle: h, reference: base.reference}, err
	}

	index, err := l.lowerExpression(e.Index, target)
	if err != nil {
		return operand{}, err
	}
	h, err := l.addExpression(ir.ExprAccess{Base: base.handle, Index: index}, e.Span)
	return operand{handle: h, reference: base.reference}, err
}

func (l *Lowerer) lowerMember(e *MemberExpr, target *ir.Block) (operand, error) {
	base, err := l.lowerOperand(e.Expr, target)
	if err != nil {
		return operand{}, err
	}
	if !base.reference && l.isPointer(base.handle) {
		return operand{}, newLabeledError(l.source, ErrPointerNoMembers, e.Expr.Pos(),
			"the value accessed by a `.member` expression must not be a pointer",
			"expression is a pointer")
	}

	name := e.Member.Name
	switch t := l.pointee(base).(type) {
	case ir.StructType:
		for i, m := range t.Members {
			if m.Name == name {
				h, err := l.addExpression(ir.ExprAccessIndex{Base: base.handle, Index: uint32(i)}, e.Span)
				return operand{handle: h, reference: base.reference}, err
			}
		}

	case ir.VectorType:
		size, pattern, ok := swizzlePattern(name, t.Size)
		if !ok {
			return operand{}, newLabeledError(l.source, ErrBadSwizzle, e.Member.Span,
				fmt.Sprintf("invalid swizzle `%s`", name), "invalid swizzle")
		}
		if size == 1 {
			h, err := l.addExpression(ir.ExprAccessIndex{Base: base.handle, Index: uint32(pattern[0])}, e.Span)
			return operand{handle: h, reference: base.reference}, err
		}
		vector, err := l.load(base, e.Expr.Pos())
		if err != nil {
			return operand{}, err
		}
		h, err := l.addExpression(ir.ExprSwizzle{Size: ir.VectorSize(size), Vector: vector, Pattern: pattern}, e.Span)
		return operand{handle: h}, err

	case ir.MatrixType:
		size, pattern, ok := swizzlePattern(name, t.Columns)
		if ok && size == 1 {
			h, err := l.addExpression(ir.ExprAccessIndex{Base: base.handle, Index: uint32(pattern[0])}, e.Span)
			return operand{handle: h, reference: base.reference}, err
		}
	}
	return operand{}, errUnknown(l.source, ErrUnknownMember, e.Member.Span, "member")
}

// swizzlePattern decodes a swizzle of a vector with size components.
// Letters come from one of the sets xyzw or rgba.
func swizzlePattern(name string, size ir.VectorSize) (int, [4]ir.SwizzleComponent, bool) {
	var pattern [4]ir.SwizzleComponent
	if len(name) == 0 || len(name) > 4 {
		return 0, pattern, false
	}
	set := "xyzw"
	if !strings.ContainsRune(set, rune(name[0])) {
		set = "rgba"
	}
	for i := 0; i < len(name); i++ {
		c := strings.IndexByte(set, name[i])
		if c < 0 || c >= int(size) {
			return 0, pattern, false
		}
		pattern[i] = ir.SwizzleComponent(c)
	}
	return len(name), pattern, true
}

func (l *Lowerer) lowerBitcast(e *BitcastExpr, target *ir.Block) (ir.ExpressionHandle, error) {
	ty, err := l.resolveType(e.Type)
	if err != nil {
		return 0, err
	}
	value, err := l.lowerExpression(e.Expr, target)
	if err != nil {
		return 0, err
	}
	kind, ok := scalarKindOf(l.innerOf(ty))
	if !ok {
		return 0, errBadTypeCast(l.source, e.Span,
			ir.ResolutionName(l.module, l.typeOf(value)), ir.HandleName(l.module, ty))
	}
	return l.addExpression(ir.ExprAs{Expr: value, Kind: kind}, e.Span)
}

// scalarKindOf returns the scalar kind of a scalar or vector type.
func scalarKindOf(inner ir.TypeInner) (ir.ScalarKind, bool) {
	switch t := inner.(type) {
	case ir.ScalarType:
		return t.Kind, true
	case ir.VectorType:
		return t.Scalar.Kind, true
	}
	return 0, false
}

// literal decodes a literal token.
func (l *Lowerer) literal(lit *Literal) (ir.LiteralValue, error) {
	switch lit.Kind {
	case TokenTrue:
		return ir.LiteralBool(true), nil
	case TokenFalse:
		return ir.LiteralBool(false), nil
	case TokenIntLiteral:
		return l.intLiteral(lit)
	case TokenFloatLiteral:
		return l.floatLiteral(lit)
	}
	return nil, errBadNumber(l.source, lit.Span, "not a literal")
}

func (l *Lowerer) intLiteral(lit *Literal) (ir.LiteralValue, error) {
	text, unsigned := lit.Value, false
	switch {
	case strings.HasSuffix(text, "u32"):
		text, unsigned = strings.TrimSuffix(text, "u32"), true
	case strings.HasSuffix(text, "i32"):
		text = strings.TrimSuffix(text, "i32")
	case strings.HasSuffix(text, "u"):
		text, unsigned = strings.TrimSuffix(text, "u"), true
	case strings.HasSuffix(text, "i"):
		text = strings.TrimSuffix(text, "i")
	}

	base := 10
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		text, base = text[2:], 16
	}

	if unsigned {
		v, err := strconv.ParseUint(text, base, 32)
		if err != nil {
			return nil, errBadNumber(l.source, lit.Span, "out of range for u32")
		}
		return ir.LiteralU32(v), nil
	}
	v, err := strconv.ParseInt(text, base, 32)
	if err != nil {
		return nil, errBadNumber(l.source, lit.Span, "out of range for i32")
	}
	return ir.LiteralI32(v), nil
}

func (l *Lowerer) floatLiteral(lit *Literal) (ir.LiteralValue, error) {
	text := lit.Value
	if strings.HasSuffix(text, "h") || strings.HasSuffix(text, "f16") {
		return nil, errBadNumber(l.source, lit.Span, "half precision literals are not supported")
	}
	text = strings.TrimSuffix(text, "f32")
	text = strings.TrimSuffix(text, "f")

	v, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return nil, errBadNumber(l.source, lit.Span, "out of range for f32")
	}
	return ir.LiteralF32(v), nil
}

// literalScalar returns the type and bit pattern of a literal, as stored
// in a scalar constant.
func literalScalar(value ir.LiteralValue) (ir.ScalarType, uint64) {
	switch v := value.(type) {
	case ir.LiteralI32:
		return scalarTypes["i32"], uint64(int64(v))
	case ir.LiteralU32:
		return scalarTypes["u32"], uint64(v)
	case ir.LiteralF32:
		return scalarTypes["f32"], uint64(math.Float32bits(float32(v)))
	case ir.LiteralBool:
		if v {
			return scalarTypes["bool"], 1
		}
		return scalarTypes["bool"], 0
	}
	return ir.ScalarType{}, 0
}

// constInt evaluates an integer literal, optionally negated. It reports
// false for any other expression.
func (l *Lowerer) constInt(expr Expr) (int64, bool, error) {
	switch e := expr.(type) {
	case *Literal:
		if e.Kind != TokenIntLiteral {
			return 0, false, nil
		}
		value, err := l.literal(e)
		if err != nil {
			return 0, false, err
		}
		switch v := value.(type) {
		case ir.LiteralI32:
			return int64(v), true, nil
		case ir.LiteralU32:
			return int64(v), true, nil
		}
	case *UnaryExpr:
		if e.Op == TokenMinus {
			v, ok, err := l.constInt(e.Operand)
			return -v, ok, err
		}
	}
	return 0, false, nil
}

// namedInt returns the value of an identifier bound to an integer
// literal or constant, as by `let i = 2;`.
func (l *Lowerer) namedInt(expr Expr) (int64, bool) {
	id, ok := expr.(*Ident)
	if !ok {
		return 0, false
	}
	if l.fn != nil {
		if op, found := l.fn.lookup(id.Name); found {
			if op.reference {
				return 0, false
			}
			switch k := l.fn.fn.Expressions[op.handle].Kind.(type) {
			case ir.Literal:
				switch v := k.Value.(type) {
				case ir.LiteralI32:
					return int64(v), true
				case ir.LiteralU32:
					return int64(v), true
				}
			case ir.ExprConstant:
				return l.constantInt(k.Constant)
			}
			return 0, false
		}
	}
	if decl, found := l.names[id.Name]; found && decl.kind == nameConstant {
		return l.constantInt(ir.ConstantHandle(decl.handle))
	}
	return 0, false
}

func (l *Lowerer) constantInt(handle ir.ConstantHandle) (int64, bool) {
	if int(handle) >= len(l.module.Constants) {
		return 0, false
	}
	v, ok := l.module.Constants[handle].Value.(ir.ScalarValue)
	if !ok {
		return 0, false
	}
	switch v.Kind {
	case ir.ScalarSint:
		return int64(v.Bits), true
	case ir.ScalarUint:
		return int64(v.Bits), true
	}
	return 0, false
}

// constant evaluates a constant expression into the constant arena.
func (l *Lowerer) constant(expr Expr) (ir.ConstantHandle, error) {
	if id, ok := expr.(*Ident); ok {
		if decl, ok := l.names[id.Name]; ok && decl.kind == nameConstant {
			return ir.ConstantHandle(decl.handle), nil
		}
	}
	ty, value, err := l.evalConstant(expr)
	if err != nil {
		return 0, err
	}
	if scalar, ok := value.(ir.ScalarValue); ok {
		return l.scalarConstant(ty, scalar, expr.Pos()), nil
	}
	handle := ir.ConstantHandle(len(l.module.Constants))
	l.module.Constants = append(l.module.Constants, ir.Constant{Type: ty, Value: value, Span: expr.Pos()})
	return handle, nil
}

// scalarConstant returns an anonymous scalar constant, reusing an
// existing one with the same type and value.
func (l *Lowerer) scalarConstant(ty ir.TypeHandle, value ir.ScalarValue, span Span) ir.ConstantHandle {
	key := constantKey{ty: ty, bits: value.Bits}
	if h, ok := l.constants[key]; ok {
		return h
	}
	h := ir.ConstantHandle(len(l.module.Constants))
	l.module.Constants = append(l.module.Constants, ir.Constant{Type: ty, Value: value, Span: span})
	l.constants[key] = h
	return h
}

// evalConstant evaluates a constant expression: literals, negation,
// named constants and constructors of constants.
func (l *Lowerer) evalConstant(expr Expr) (ir.TypeHandle, ir.ConstantValue, error) {
	switch e := expr.(type) {
	case *Literal:
		value, err := l.literal(e)
		if err != nil {
			return 0, nil, err
		}
		scalar, bits := literalScalar(value)
		return l.registerType("", scalar), ir.ScalarValue{Bits: bits, Kind: scalar.Kind}, nil

	case *UnaryExpr:
		if e.Op != TokenMinus {
			break
		}
		ty, value, err := l.evalConstant(e.Operand)
		if err != nil {
			return 0, nil, err
		}
		if sv, ok := value.(ir.ScalarValue); ok {
			switch sv.Kind {
			case ir.ScalarSint:
				return ty, ir.ScalarValue{Bits: uint64(-int64(sv.Bits)), Kind: sv.Kind}, nil
			case ir.ScalarFloat:
				f := -math.Float32frombits(uint32(sv.Bits))
				return ty, ir.ScalarValue{Bits: uint64(math.Float32bits(f)), Kind: sv.Kind}, nil
			}
		}

	case *Ident:
		if decl, ok := l.names[e.Name]; ok && decl.kind == nameConstant {
			c := l.module.Constants[decl.handle]
			return c.Type, c.Value, nil
		}
		if _, ok := l.names[e.Name]; !ok {
			return 0, nil, errUnknownIdent(l.source, e.Span)
		}

	case *ConstructExpr:
		ty, err := l.resolveType(e.Type)
		if err != nil {
			return 0, nil, err
		}
		return l.evalComposite(ty, e.Args, e.Span)

	case *CallExpr:
		ty, ok, err := l.constructorType(e.Func)
		if err != nil {
			return 0, nil, err
		}
		if ok {
			return l.evalComposite(ty, e.Args, e.Span)
		}
	}
	return 0, nil, errNotConstant(l.source, expr.Pos())
}

func (l *Lowerer) evalComposite(ty ir.TypeHandle, args []Expr, span Span) (ir.TypeHandle, ir.ConstantValue, error) {
	components := make([]ir.ConstantHandle, 0, len(args))
	for _, arg := range args {
		c, err := l.constant(arg)
		if err != nil {
			return 0, nil, err
		}
		components = append(components, c)
	}

	switch t := l.innerOf(ty).(type) {
	case ir.ScalarType:
		if len(components) == 1 {
			c := l.module.Constants[components[0]]
			if ir.SameType(l.module, ir.HandleResolution(c.Type), ir.HandleResolution(ty)) {
				return ty, c.Value, nil
			}
		}
		return 0, nil, errNotConstant(l.source, span)
	case ir.VectorType:
		if len(components) == 1 {
			for len(components) < int(t.Size) {
				components = append(components, components[0])
			}
		}
	}
	return ty, ir.CompositeValue{Components: components}, nil
}
