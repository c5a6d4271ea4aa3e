package wgsl

import (
	"github.com/gogpu/wgslfront/ir"
)

var assignOps = map[TokenKind]ir.BinaryOperator{
	TokenPlusEqual:           ir.BinaryAdd,
	TokenMinusEqual:          ir.BinarySubtract,
	TokenStarEqual:           ir.BinaryMultiply,
	TokenSlashEqual:          ir.BinaryDivide,
	TokenPercentEqual:        ir.BinaryModulo,
	TokenAmpEqual:            ir.BinaryAnd,
	TokenPipeEqual:           ir.BinaryInclusiveOr,
	TokenCaretEqual:          ir.BinaryExclusiveOr,
	TokenLessLessEqual:       ir.BinaryShiftLeft,
	TokenGreaterGreaterEqual: ir.BinaryShiftRight,
}

// lowerStatements lowers statements into target in the current scope.
func (l *Lowerer) lowerStatements(stmts []Stmt, target *ir.Block) error {
	for _, stmt := range stmts {
		if err := l.lowerStatement(stmt, target); err != nil {
			return err
		}
	}
	return nil
}

// lowerBlock lowers statements in a new scope.
func (l *Lowerer) lowerBlock(block *BlockStmt) (ir.Block, error) {
	l.fn.pushScope()
	defer l.fn.popScope()

	var out ir.Block
	if err := l.lowerStatements(block.Statements, &out); err != nil {
		return nil, err
	}
	return out, nil
}

//nolint:gocyclo,cyclop // Statement dispatch
func (l *Lowerer) lowerStatement(stmt Stmt, target *ir.Block) error {
	switch s := stmt.(type) {
	case *BlockStmt:
		block, err := l.lowerBlock(s)
		if err != nil {
			return err
		}
		emit(target, ir.StmtBlock{Block: block}, s.Span)
	case *ReturnStmt:
		return l.lowerReturn(s, target)
	case *IfStmt:
		return l.lowerIf(s, target)
	case *SwitchStmt:
		return l.lowerSwitch(s, target)
	case *LoopStmt:
		return l.lowerLoop(s, target)
	case *ForStmt:
		return l.lowerFor(s, target)
	case *WhileStmt:
		return l.lowerWhile(s, target)
	case *BreakStmt:
		emit(target, ir.StmtBreak{}, s.Span)
	case *ContinueStmt:
		emit(target, ir.StmtContinue{}, s.Span)
	case *DiscardStmt:
		emit(target, ir.StmtKill{}, s.Span)
	case *AssignStmt:
		return l.lowerAssign(s, target)
	case *IncDecStmt:
		return l.lowerIncDec(s, target)
	case *CallStmt:
		_, err := l.lowerCall(s.Call, target, true)
		return err
	case *VarDecl:
		return l.lowerLocalVar(s, target)
	case *LetDecl:
		return l.lowerLocalLet(s, target)
	default:
		return newError(l.source, ErrUnexpected, stmt.Pos(), "unsupported statement")
	}
	return nil
}

func (l *Lowerer) lowerReturn(s *ReturnStmt, target *ir.Block) error {
	if s.Value == nil {
		emit(target, ir.StmtReturn{}, s.Span)
		return nil
	}
	value, err := l.lowerExpression(s.Value, target)
	if err != nil {
		return err
	}
	emit(target, ir.StmtReturn{Value: &value}, s.Span)
	return nil
}

func (l *Lowerer) lowerIf(s *IfStmt, target *ir.Block) error {
	cond, err := l.lowerExpression(s.Condition, target)
	if err != nil {
		return err
	}
	accept, err := l.lowerBlock(s.Body)
	if err != nil {
		return err
	}

	var reject ir.Block
	switch e := s.Else.(type) {
	case *BlockStmt:
		if reject, err = l.lowerBlock(e); err != nil {
			return err
		}
	case *IfStmt:
		if err := l.lowerIf(e, &reject); err != nil {
			return err
		}
	}
	emit(target, ir.StmtIf{Condition: cond, Accept: accept, Reject: reject}, s.Span)
	return nil
}

func (l *Lowerer) lowerSwitch(s *SwitchStmt, target *ir.Block) error {
	selector, err := l.lowerExpression(s.Selector, target)
	if err != nil {
		return err
	}

	var cases []ir.SwitchCase
	for _, clause := range s.Cases {
		values := make([]ir.SwitchValue, 0, len(clause.Selectors))
		for _, sel := range clause.Selectors {
			v, err := l.switchValue(sel)
			if err != nil {
				return err
			}
			values = append(values, v)
		}
		if clause.IsDefault {
			values = append(values, ir.SwitchValueDefault{})
		}

		body, err := l.lowerBlock(clause.Body)
		if err != nil {
			return err
		}
		// A clause with several selectors becomes empty cases falling
		// through to the last one, which holds the body.
		for i, v := range values {
			c := ir.SwitchCase{Value: v, FallThrough: true}
			if i == len(values)-1 {
				c.Body = body
				c.FallThrough = clause.FallThrough
			}
			cases = append(cases, c)
		}
	}
	emit(target, ir.StmtSwitch{Selector: selector, Cases: cases}, s.Span)
	return nil
}

func (l *Lowerer) switchValue(expr Expr) (ir.SwitchValue, error) {
	_, value, err := l.evalConstant(expr)
	if err != nil {
		return nil, err
	}
	if sv, ok := value.(ir.ScalarValue); ok {
		switch sv.Kind {
		case ir.ScalarSint:
			return ir.SwitchValueI32(int32(int64(sv.Bits))), nil
		case ir.ScalarUint:
			return ir.SwitchValueU32(uint32(sv.Bits)), nil
		}
	}
	return nil, newLabeledError(l.source, ErrNotConstant, expr.Pos(),
		"switch case selector must be an integer constant", "not an integer constant")
}

func (l *Lowerer) lowerLoop(s *LoopStmt, target *ir.Block) error {
	l.fn.pushScope()
	defer l.fn.popScope()

	var body, continuing ir.Block
	if err := l.lowerStatements(s.Body.Statements, &body); err != nil {
		return err
	}

	var breakIf *ir.ExpressionHandle
	if s.Continuing != nil {
		l.fn.pushScope()
		defer l.fn.popScope()
		if err := l.lowerStatements(s.Continuing.Statements, &continuing); err != nil {
			return err
		}
		if s.BreakIf != nil {
			cond, err := l.lowerExpression(s.BreakIf, &continuing)
			if err != nil {
				return err
			}
			breakIf = &cond
		}
	}
	emit(target, ir.StmtLoop{Body: body, Continuing: continuing, BreakIf: breakIf}, s.Span)
	return nil
}

// lowerFor lowers a for loop to a block holding the initializer and a
// loop that breaks when the condition fails.
func (l *Lowerer) lowerFor(s *ForStmt, target *ir.Block) error {
	l.fn.pushScope()
	defer l.fn.popScope()

	var block ir.Block
	if s.Init != nil {
		if err := l.lowerStatement(s.Init, &block); err != nil {
			return err
		}
	}

	var body, continuing ir.Block
	if s.Condition != nil {
		if err := l.breakUnless(s.Condition, &body); err != nil {
			return err
		}
	}
	inner, err := l.lowerBlock(s.Body)
	if err != nil {
		return err
	}
	body = append(body, inner...)
	if s.Update != nil {
		if err := l.lowerStatement(s.Update, &continuing); err != nil {
			return err
		}
	}

	emit(&block, ir.StmtLoop{Body: body, Continuing: continuing}, s.Span)
	emit(target, ir.StmtBlock{Block: block}, s.Span)
	return nil
}

func (l *Lowerer) lowerWhile(s *WhileStmt, target *ir.Block) error {
	var body ir.Block
	if err := l.breakUnless(s.Condition, &body); err != nil {
		return err
	}
	inner, err := l.lowerBlock(s.Body)
	if err != nil {
		return err
	}
	body = append(body, inner...)
	emit(target, ir.StmtLoop{Body: body}, s.Span)
	return nil
}

// breakUnless emits `if cond {} else { break; }`.
func (l *Lowerer) breakUnless(cond Expr, target *ir.Block) error {
	h, err := l.lowerExpression(cond, target)
	if err != nil {
		return err
	}
	reject := ir.Block{{Kind: ir.StmtBreak{}, Span: cond.Pos()}}
	emit(target, ir.StmtIf{Condition: h, Reject: reject}, cond.Pos())
	return nil
}

func (l *Lowerer) lowerAssign(s *AssignStmt, target *ir.Block) error {
	if id, ok := s.Left.(*Ident); ok && id.Name == "_" && s.Op == TokenEqual {
		_, err := l.lowerExpression(s.Right, target)
		return err
	}

	dst, err := l.assignable(s.Left, target)
	if err != nil {
		return err
	}

	var value ir.ExpressionHandle
	if s.Op == TokenEqual {
		if value, err = l.lowerExpression(s.Right, target); err != nil {
			return err
		}
	} else {
		op, ok := assignOps[s.Op]
		if !ok {
			return newError(l.source, ErrUnexpected, s.Span, "unsupported assignment operator")
		}
		current, err := l.load(dst, s.Left.Pos())
		if err != nil {
			return err
		}
		right, err := l.lowerExpression(s.Right, target)
		if err != nil {
			return err
		}
		if value, err = l.addExpression(ir.ExprBinary{Op: op, Left: current, Right: right}, s.Span); err != nil {
			return err
		}
	}
	emit(target, ir.StmtStore{Pointer: dst.handle, Value: value}, s.Span)
	return nil
}

func (l *Lowerer) lowerIncDec(s *IncDecStmt, target *ir.Block) error {
	dst, err := l.assignable(s.Target, target)
	if err != nil {
		return err
	}

	var one ir.LiteralValue
	switch t := l.pointee(dst).(type) {
	case ir.ScalarType:
		switch t.Kind {
		case ir.ScalarSint:
			one = ir.LiteralI32(1)
		case ir.ScalarUint:
			one = ir.LiteralU32(1)
		case ir.ScalarFloat:
			one = ir.LiteralF32(1)
		}
	}
	if one == nil {
		return errInvalidOperand(l.source, s.Target.Pos(), "increment and decrement need a numeric scalar")
	}

	current, err := l.load(dst, s.Target.Pos())
	if err != nil {
		return err
	}
	step, err := l.addExpression(ir.Literal{Value: one}, s.Span)
	if err != nil {
		return err
	}
	op := ir.BinaryAdd
	if s.Decrement {
		op = ir.BinarySubtract
	}
	value, err := l.addExpression(ir.ExprBinary{Op: op, Left: current, Right: step}, s.Span)
	if err != nil {
		return err
	}
	emit(target, ir.StmtStore{Pointer: dst.handle, Value: value}, s.Span)
	return nil
}

// assignable lowers the left-hand side of an assignment, which must be a
// reference.
func (l *Lowerer) assignable(expr Expr, target *ir.Block) (operand, error) {
	dst, err := l.lowerOperand(expr, target)
	if err != nil {
		return operand{}, err
	}
	if !dst.reference {
		return operand{}, newLabeledError(l.source, ErrNotAssignable, expr.Pos(),
			"invalid left-hand side of assignment", "cannot assign to this expression")
	}
	return dst, nil
}

func (l *Lowerer) lowerLocalVar(decl *VarDecl, target *ir.Block) error {
	start := ir.ExpressionHandle(len(l.fn.fn.Expressions))
	if decl.AddressSpace != nil {
		space, err := l.addressSpace(decl.AddressSpace)
		if err != nil {
			return err
		}
		if space != ir.SpaceFunction {
			return newLabeledError(l.source, ErrInvalidAddressSpace, decl.AddressSpace.Span,
				"local variables must be in the function storage class", "invalid storage class")
		}
	}

	var declared *ir.TypeHandle
	if decl.Type != nil {
		ty, err := l.resolveType(decl.Type)
		if err != nil {
			return err
		}
		declared = &ty
	}
	var init *ir.ExpressionHandle
	if decl.Init != nil {
		h, err := l.lowerExpression(decl.Init, target)
		if err != nil {
			return err
		}
		init = &h
	}

	var ty ir.TypeHandle
	switch {
	case declared == nil && init == nil:
		return errMissingType(l.source, decl.Name.Span)
	case declared == nil:
		ty = l.typeHandle(l.typeOf(*init))
	default:
		ty = *declared
		if init != nil && !ir.SameType(l.module, l.typeOf(*init), ir.HandleResolution(ty)) {
			return errTypeMismatch(l.source, decl.Name.Span, ir.ResolutionName(l.module, l.typeOf(*init)))
		}
	}

	fn := l.fn.fn
	index := uint32(len(fn.LocalVars))
	fn.LocalVars = append(fn.LocalVars, ir.LocalVariable{
		Name: decl.Name.Name,
		Type: ty,
		Init: init,
		Span: decl.Span,
	})
	ptr, err := l.addExpression(ir.ExprLocalVariable{Variable: index}, decl.Name.Span)
	if err != nil {
		return err
	}
	if init != nil {
		emit(target, ir.StmtStore{Pointer: ptr, Value: *init}, decl.Span)
	} else {
		l.emitRange(target, start, decl.Span)
	}
	l.fn.bind(decl.Name.Name, operand{handle: ptr, reference: true})
	return nil
}

func (l *Lowerer) lowerLocalLet(decl *LetDecl, target *ir.Block) error {
	start := ir.ExpressionHandle(len(l.fn.fn.Expressions))
	var declared *ir.TypeHandle
	if decl.Type != nil {
		ty, err := l.resolveType(decl.Type)
		if err != nil {
			return err
		}
		declared = &ty
	}
	if decl.Init == nil {
		return errMissingInitializer(l.source, decl.Name.Span)
	}
	value, err := l.lowerExpression(decl.Init, target)
	if err != nil {
		return err
	}
	if declared != nil && !ir.SameType(l.module, l.typeOf(value), ir.HandleResolution(*declared)) {
		return errTypeMismatch(l.source, decl.Name.Span, ir.ResolutionName(l.module, l.typeOf(value)))
	}

	if _, named := l.fn.fn.NamedExpressions[value]; !named {
		l.fn.fn.NamedExpressions[value] = decl.Name.Name
	}
	l.fn.bind(decl.Name.Name, operand{handle: value})
	l.emitRange(target, start, decl.Span)
	return nil
}

// emitRange records a declaration that stores nothing, covering the
// expressions added since start.
func (l *Lowerer) emitRange(target *ir.Block, start ir.ExpressionHandle, span Span) {
	end := ir.ExpressionHandle(len(l.fn.fn.Expressions))
	emit(target, ir.StmtEmit{Range: ir.Range{Start: start, End: end}}, span)
}
