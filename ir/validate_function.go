package ir

import "github.com/gogpu/wgslfront/diag"

// validateFunction checks one function: local variables, then arguments,
// then every expression in arena order, then the body.
func (v *Validator) validateFunction(handle FunctionHandle) (FunctionInfo, error) {
	fn := &v.module.Functions[handle]
	info := FunctionInfo{
		ExpressionTypes: make([]TypeResolution, 0, len(fn.Expressions)),
		GlobalUses:      make([]GlobalUse, len(v.module.GlobalVariables)),
	}
	v.context = validationContext{handle: handle, function: fn, info: &info}

	for i, local := range fn.LocalVars {
		if !v.isValidTypeHandle(local.Type) || !v.types[local.Type].Contains(TypeFlagData|TypeFlagSized) {
			return info, v.functionError(&FunctionError{
				Kind:               FunctionLocalVariable,
				Index:              uint32(i),
				Name:               local.Name,
				LocalVariableError: &LocalVariableError{Kind: LocalInvalidType, Type: local.Type},
			}, local.Span, "local variable '"+local.Name+"'")
		}
	}

	for i, arg := range fn.Arguments {
		if !v.isValidTypeHandle(arg.Type) || !v.types[arg.Type].Contains(TypeFlagArgument) {
			return info, v.functionError(&FunctionError{
				Kind:  FunctionInvalidArgumentType,
				Index: uint32(i),
				Name:  arg.Name,
			}, arg.Span, "argument '"+arg.Name+"'")
		}
		if ptr, ok := v.module.Types[arg.Type].Inner.(PointerType); ok {
			switch ptr.Space {
			case SpaceFunction, SpacePrivate, SpaceWorkGroup, SpaceHandle:
			default:
				return info, v.functionError(&FunctionError{
					Kind:  FunctionInvalidArgumentPointerSpace,
					Index: uint32(i),
					Name:  arg.Name,
					Space: ptr.Space,
				}, arg.Span, "argument '"+arg.Name+"'")
			}
		}
	}

	for i := range fn.Expressions {
		h := ExpressionHandle(i)
		resolved, err := ResolveExpressionType(v.module, fn, info.ExpressionTypes, h)
		if err != nil {
			return info, v.expressionError(h, &ExpressionError{Kind: ExprErrorType, Cause: err})
		}
		info.ExpressionTypes = append(info.ExpressionTypes, resolved)
		if v.enabled(ValidateExpressions) {
			if exprErr := v.validateExpression(h); exprErr != nil {
				return info, v.expressionError(h, exprErr)
			}
		}
		if gv, ok := fn.Expressions[i].Kind.(ExprGlobalVariable); ok && int(gv.Variable) < len(info.GlobalUses) {
			info.GlobalUses[gv.Variable] |= GlobalUseRead
		}
	}

	for i, local := range fn.LocalVars {
		if local.Init == nil {
			continue
		}
		if int(*local.Init) >= len(info.ExpressionTypes) ||
			!SameType(v.module, info.ExpressionTypes[*local.Init], HandleResolution(local.Type)) {
			return info, v.functionError(&FunctionError{
				Kind:               FunctionLocalVariable,
				Index:              uint32(i),
				Name:               local.Name,
				LocalVariableError: &LocalVariableError{Kind: LocalInitializerType, Type: local.Type},
			}, local.Span, "local variable '"+local.Name+"'")
		}
	}

	if v.enabled(ValidateBlocks) {
		if _, err := v.validateBlock(fn.Body); err != nil {
			return info, err
		}
	}
	return info, nil
}

// functionError wraps err for the function being validated.
func (v *Validator) functionError(err *FunctionError, span Span, label string) *ValidationError {
	fn := v.context.function
	labels := []diag.Label{{Span: span, Message: label}}
	if span != fn.Span {
		labels = append(labels, diag.Label{Span: fn.Span, Message: "in function '" + fn.Name + "'"})
	}
	return &ValidationError{
		Kind:     ValidationErrorFunction,
		Handle:   uint32(v.context.handle),
		Name:     fn.Name,
		Function: err,
		Labels:   labels,
	}
}

func (v *Validator) expressionError(h ExpressionHandle, err *ExpressionError) *ValidationError {
	return v.functionError(&FunctionError{
		Kind:            FunctionExpression,
		Expression:      h,
		ExpressionError: err,
	}, v.context.function.Expressions[h].Span, "invalid expression")
}

func (v *Validator) statementError(kind FunctionErrorKind, h ExpressionHandle, span Span) *ValidationError {
	err := &FunctionError{Kind: kind, Expression: h}
	return v.functionError(err, span, err.summary())
}

// resolved returns the type of an expression checked earlier.
func (v *Validator) resolved(h ExpressionHandle) TypeInner {
	if int(h) >= len(v.context.info.ExpressionTypes) {
		return nil
	}
	return v.context.info.ExpressionTypes[h].Inner(v.module)
}

// validateBlock checks a block of statements and reports whether it
// ends control flow unconditionally. Only nested blocks propagate
// termination; an if whose branches both return does not.
//
//nolint:gocyclo,cyclop,funlen // one case per statement variant
func (v *Validator) validateBlock(block Block) (bool, error) {
	terminated := false
	for _, stmt := range block {
		if terminated {
			return true, v.functionError(&FunctionError{Kind: FunctionInstructionsAfterReturn}, stmt.Span, "unreachable statement")
		}

		switch s := stmt.Kind.(type) {
		case StmtBlock:
			done, err := v.validateBlock(s.Block)
			if err != nil {
				return false, err
			}
			terminated = done

		case StmtIf:
			if !isBoolScalar(v.resolved(s.Condition)) {
				return false, v.statementError(FunctionInvalidIfType, s.Condition, stmt.Span)
			}
			if _, err := v.validateBlock(s.Accept); err != nil {
				return false, err
			}
			if _, err := v.validateBlock(s.Reject); err != nil {
				return false, err
			}

		case StmtSwitch:
			if err := v.validateSwitch(s, stmt.Span); err != nil {
				return false, err
			}

		case StmtLoop:
			saved := v.context
			v.context.loopDepth++
			v.context.switchDepth = 0
			if _, err := v.validateBlock(s.Body); err != nil {
				return false, err
			}
			v.context.inContinuing = true
			if _, err := v.validateBlock(s.Continuing); err != nil {
				return false, err
			}
			if s.BreakIf != nil && !isBoolScalar(v.resolved(*s.BreakIf)) {
				return false, v.statementError(FunctionInvalidBreakIf, *s.BreakIf, stmt.Span)
			}
			v.context.loopDepth = saved.loopDepth
			v.context.switchDepth = saved.switchDepth
			v.context.inContinuing = saved.inContinuing

		case StmtBreak:
			if v.context.loopDepth == 0 && v.context.switchDepth == 0 {
				return false, v.functionError(&FunctionError{Kind: FunctionBreakOutsideOfLoopOrSwitch}, stmt.Span, "`break` here")
			}
			terminated = true

		case StmtContinue:
			if v.context.loopDepth == 0 {
				return false, v.functionError(&FunctionError{Kind: FunctionContinueOutsideOfLoop}, stmt.Span, "`continue` here")
			}
			terminated = true

		case StmtReturn:
			if err := v.validateReturn(s, stmt.Span); err != nil {
				return false, err
			}
			terminated = true

		case StmtKill:
			terminated = true

		case StmtBarrier, StmtEmit:

		case StmtStore:
			if err := v.validateStore(s, stmt.Span); err != nil {
				return false, err
			}

		case StmtImageStore:
			img, ok := v.resolved(s.Image).(ImageType)
			if !ok || img.Class != ImageClassStorage || img.StorageAccess&StorageStore == 0 {
				return false, v.statementError(FunctionInvalidImageStore, s.Image, stmt.Span)
			}

		case StmtCall:
			if err := v.validateCall(s, stmt.Span); err != nil {
				return false, err
			}
		}
	}
	return terminated, nil
}

func (v *Validator) validateSwitch(s StmtSwitch, span Span) error {
	var selector ScalarKind
	switch t := v.resolved(s.Selector).(type) {
	case ScalarType:
		if t.Kind != ScalarSint && t.Kind != ScalarUint {
			return v.statementError(FunctionInvalidSwitchType, s.Selector, span)
		}
		selector = t.Kind
	default:
		return v.statementError(FunctionInvalidSwitchType, s.Selector, span)
	}

	seen := make(map[int64]bool, len(s.Cases))
	hasDefault := false
	for _, c := range s.Cases {
		var value int64
		switch cv := c.Value.(type) {
		case SwitchValueI32:
			if selector != ScalarSint {
				return v.statementError(FunctionInvalidSwitchType, s.Selector, span)
			}
			value = int64(cv)
		case SwitchValueU32:
			if selector != ScalarUint {
				return v.statementError(FunctionInvalidSwitchType, s.Selector, span)
			}
			value = int64(cv)
		case SwitchValueDefault:
			if hasDefault {
				return v.functionError(&FunctionError{Kind: FunctionConflictingSwitchCase, Value: -1}, span, "multiple `default` cases")
			}
			hasDefault = true
			continue
		}
		if seen[value] {
			return v.functionError(&FunctionError{Kind: FunctionConflictingSwitchCase, Value: value}, span, "conflicting case")
		}
		seen[value] = true
	}
	if !hasDefault {
		return v.functionError(&FunctionError{Kind: FunctionMissingDefaultCase}, span, "`switch` without a `default` case")
	}
	if n := len(s.Cases); n > 0 && s.Cases[n-1].FallThrough {
		return v.functionError(&FunctionError{Kind: FunctionLastCaseFallTrough}, span, "last case falls through")
	}

	saved := v.context.switchDepth
	v.context.switchDepth++
	defer func() { v.context.switchDepth = saved }()
	for _, c := range s.Cases {
		if _, err := v.validateBlock(c.Body); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateReturn(s StmtReturn, span Span) error {
	if v.context.inContinuing {
		return v.functionError(&FunctionError{Kind: FunctionInvalidReturnSpot}, span, "`return` in `continuing`")
	}
	result := v.context.function.Result
	switch {
	case result == nil && s.Value == nil:
		return nil
	case result == nil || s.Value == nil:
		var h ExpressionHandle
		if s.Value != nil {
			h = *s.Value
		}
		return v.statementError(FunctionInvalidReturnType, h, span)
	}
	if int(*s.Value) >= len(v.context.info.ExpressionTypes) ||
		!SameType(v.module, v.context.info.ExpressionTypes[*s.Value], HandleResolution(result.Type)) {
		return v.statementError(FunctionInvalidReturnType, *s.Value, span)
	}
	return nil
}

func (v *Validator) validateStore(s StmtStore, span Span) error {
	var pointee TypeResolution
	var space AddressSpace
	var access StorageAccess
	switch p := v.resolved(s.Pointer).(type) {
	case PointerType:
		pointee, space, access = HandleResolution(p.Base), p.Space, p.Access
		if atomic, ok := innerAt(v.module, p.Base).(AtomicType); ok {
			pointee = ValueResolution(atomic.Scalar)
		}
	case ValuePointerType:
		space, access = p.Space, p.Access
		if p.Size != nil {
			pointee = ValueResolution(VectorType{Size: *p.Size, Scalar: p.Scalar})
		} else {
			pointee = ValueResolution(p.Scalar)
		}
	default:
		return v.statementError(FunctionInvalidStorePointer, s.Pointer, span)
	}

	switch space {
	case SpaceFunction, SpacePrivate, SpaceWorkGroup:
	case SpaceStorage:
		if access&StorageStore == 0 {
			return v.statementError(FunctionInvalidStorePointer, s.Pointer, span)
		}
	default:
		return v.statementError(FunctionInvalidStorePointer, s.Pointer, span)
	}

	if int(s.Value) >= len(v.context.info.ExpressionTypes) {
		return v.statementError(FunctionInvalidStoreValue, s.Value, span)
	}
	value := v.context.info.ExpressionTypes[s.Value]
	switch value.Inner(v.module).(type) {
	case PointerType, ValuePointerType:
		return v.statementError(FunctionInvalidStoreValue, s.Value, span)
	}
	if !SameType(v.module, value, pointee) {
		return v.statementError(FunctionInvalidStoreTypes, s.Pointer, span)
	}

	if root, ok := v.pointerRoot(s.Pointer); ok {
		v.context.info.GlobalUses[root] |= GlobalUseWrite
	}
	return nil
}

// pointerRoot follows access chains back to the global variable a
// pointer is derived from.
func (v *Validator) pointerRoot(h ExpressionHandle) (GlobalVariableHandle, bool) {
	exprs := v.context.function.Expressions
	for int(h) < len(exprs) {
		switch e := exprs[h].Kind.(type) {
		case ExprAccess:
			h = e.Base
		case ExprAccessIndex:
			h = e.Base
		case ExprGlobalVariable:
			return e.Variable, int(e.Variable) < len(v.context.info.GlobalUses)
		default:
			return 0, false
		}
	}
	return 0, false
}

func (v *Validator) validateCall(s StmtCall, span Span) error {
	callErr := func(err *CallError) error {
		return v.functionError(&FunctionError{Kind: FunctionInvalidCall, Callee: s.Function, CallError: err}, span, "invalid call")
	}
	if int(s.Function) >= len(v.module.Functions) {
		return callErr(&CallError{Kind: CallArgumentCount})
	}
	for _, ep := range v.module.EntryPoints {
		if ep.Function == s.Function {
			return v.functionError(&FunctionError{
				Kind:            FunctionExpression,
				ExpressionError: &ExpressionError{Kind: ExprErrorCallToEntryPoint},
			}, span, "call to an entry point")
		}
	}

	callee := &v.module.Functions[s.Function]
	if len(s.Arguments) != len(callee.Arguments) {
		return callErr(&CallError{Kind: CallArgumentCount, Required: len(callee.Arguments), Seen: len(s.Arguments)})
	}
	for i, arg := range s.Arguments {
		if int(arg) >= len(v.context.info.ExpressionTypes) ||
			!SameType(v.module, v.context.info.ExpressionTypes[arg], HandleResolution(callee.Arguments[i].Type)) {
			return callErr(&CallError{Kind: CallArgumentType, Index: i, Argument: arg})
		}
	}

	if s.Result != nil {
		if callee.Result == nil {
			return callErr(&CallError{Kind: CallResultValue, Argument: *s.Result})
		}
		exprs := v.context.function.Expressions
		if int(*s.Result) >= len(exprs) {
			return callErr(&CallError{Kind: CallResultValue, Argument: *s.Result})
		}
		if cr, ok := exprs[*s.Result].Kind.(ExprCallResult); !ok || cr.Function != s.Function {
			return callErr(&CallError{Kind: CallResultValue, Argument: *s.Result})
		}
	}
	return nil
}

func isBoolScalar(inner TypeInner) bool {
	s, ok := inner.(ScalarType)
	return ok && s.Kind == ScalarBool
}
