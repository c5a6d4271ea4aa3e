package wgsl

import (
	"github.com/gogpu/wgslfront/ir"
)

// Lowerer converts a WGSL syntax tree into an IR module.
//
// Declarations are lowered in source order, so a declaration can only
// refer to declarations before it. Lowering stops at the first error.
type Lowerer struct {
	module *ir.Module
	source string

	// Type resolution
	registry *ir.TypeRegistry // Deduplicates types
	layouter ir.Layouter      // Sizes struct members and array elements

	// Module scope. Constants, global variables, functions, structs and
	// aliases share one namespace.
	names     map[string]moduleName
	constants map[constantKey]ir.ConstantHandle // Anonymous scalar constants

	// Current function context, nil at module scope
	fn *functionContext
}

type nameKind uint8

const (
	nameConstant nameKind = iota
	nameGlobal
	nameFunction
	nameType
)

// moduleName is a module-scope binding. handle indexes the arena the kind
// names; span is where the name was defined.
type moduleName struct {
	kind   nameKind
	handle uint32
	span   Span
}

// constantKey identifies an anonymous scalar constant.
type constantKey struct {
	ty   ir.TypeHandle
	bits uint64
}

// Parse parses WGSL source and lowers it to an IR module. The returned
// error is a *ParseError.
func Parse(source string) (*ir.Module, error) {
	ast, err := ParseModule(source)
	if err != nil {
		return nil, err
	}
	return Lower(ast, source)
}

// Lower converts a parsed module to IR. source must be the text the
// module was parsed from; diagnostics quote it.
func Lower(ast *Module, source string) (*ir.Module, error) {
	l := &Lowerer{
		module:    &ir.Module{},
		source:    source,
		registry:  ir.NewTypeRegistry(),
		names:     make(map[string]moduleName, len(ast.Decls)),
		constants: make(map[constantKey]ir.ConstantHandle, 16),
	}

	for _, enable := range ast.Enables {
		for _, ext := range enable.Extensions {
			if ext.Name != "f16" {
				return nil, errUnknown(source, ErrUnknownExtension, ext.Span, "extension")
			}
		}
	}

	for _, decl := range ast.Decls {
		if err := l.lowerDecl(decl); err != nil {
			return nil, err
		}
	}

	l.module.Types = l.registry.GetTypes()
	return l.module, nil
}

func (l *Lowerer) lowerDecl(decl Decl) error {
	switch d := decl.(type) {
	case *StructDecl:
		return l.lowerStruct(d)
	case *AliasDecl:
		return l.lowerAlias(d)
	case *VarDecl:
		return l.lowerGlobalVar(d)
	case *LetDecl:
		return l.lowerModuleLet(d)
	case *FunctionDecl:
		return l.lowerFunction(d)
	}
	return newError(l.source, ErrUnexpected, decl.Pos(), "unsupported declaration")
}

// define binds a module-scope name, rejecting redefinitions.
func (l *Lowerer) define(name Ident, span Span, kind nameKind, handle uint32) error {
	if prev, ok := l.names[name.Name]; ok {
		return errRedefinition(l.source, prev.span, span)
	}
	l.names[name.Name] = moduleName{kind: kind, handle: handle, span: span}
	return nil
}

// registerType adds a type to the registry and keeps the module's type
// arena in sync, so expression types can be resolved while lowering.
func (l *Lowerer) registerType(name string, inner ir.TypeInner) ir.TypeHandle {
	handle := l.registry.GetOrCreate(name, inner)
	l.module.Types = l.registry.GetTypes()
	return handle
}

// layout returns the size and alignment of a registered type.
func (l *Lowerer) layout(handle ir.TypeHandle) ir.TypeLayout {
	l.layouter.Update(l.module.Types, l.module.Constants)
	return l.layouter.Layout(handle)
}

func (l *Lowerer) innerOf(handle ir.TypeHandle) ir.TypeInner {
	if int(handle) >= len(l.module.Types) {
		return nil
	}
	return l.module.Types[handle].Inner
}

func (l *Lowerer) lowerStruct(decl *StructDecl) error {
	if _, err := l.attributes(decl.Attributes, placeStruct); err != nil {
		return err
	}

	members := make([]ir.StructMember, 0, len(decl.Members))
	var offset, maxAlign uint32 = 0, 1
	for _, m := range decl.Members {
		attrs, err := l.attributes(m.Attributes, placeMember)
		if err != nil {
			return err
		}
		ty, err := l.resolveType(m.Type)
		if err != nil {
			return err
		}

		layout := l.layout(ty)
		align, size := layout.Alignment, layout.Size
		if attrs.align != nil {
			align = *attrs.align
		}
		if attrs.size != nil {
			size = *attrs.size
		}
		offset = ir.RoundUp(align, offset)
		members = append(members, ir.StructMember{
			Name:    m.Name.Name,
			Type:    ty,
			Binding: attrs.ioBinding(),
			Offset:  offset,
			Span:    m.Span,
		})
		offset += size
		if align > maxAlign {
			maxAlign = align
		}
	}

	if prev, ok := l.names[decl.Name.Name]; ok {
		return errRedefinition(l.source, prev.span, decl.Name.Span)
	}
	handle := l.registerType(decl.Name.Name, ir.StructType{
		Members:   members,
		Size:      ir.RoundUp(maxAlign, offset),
		Alignment: maxAlign,
	})
	l.registry.SetSpan(handle, decl.Name.Span)
	return l.define(decl.Name, decl.Name.Span, nameType, uint32(handle))
}

func (l *Lowerer) lowerAlias(decl *AliasDecl) error {
	ty, err := l.resolveType(decl.Type)
	if err != nil {
		return err
	}
	return l.define(decl.Name, decl.Name.Span, nameType, uint32(ty))
}

func (l *Lowerer) lowerGlobalVar(decl *VarDecl) error {
	attrs, err := l.attributes(decl.Attributes, placeGlobal)
	if err != nil {
		return err
	}

	var space *ir.AddressSpace
	if decl.AddressSpace != nil {
		s, err := l.addressSpace(decl.AddressSpace)
		if err != nil {
			return err
		}
		space = &s
	}
	var access *ir.StorageAccess
	if decl.AccessMode != nil {
		a, err := l.storageAccess(decl.AccessMode)
		if err != nil {
			return err
		}
		access = &a
	}

	if decl.Type == nil {
		return errMissingType(l.source, decl.Name.Span)
	}
	ty, err := l.resolveType(decl.Type)
	if err != nil {
		return err
	}

	gv := ir.GlobalVariable{
		Name: decl.Name.Name,
		Type: ty,
		Span: decl.Span,
	}
	switch {
	case space != nil:
		gv.Space = *space
	case isOpaque(l.innerOf(ty)):
		gv.Space = ir.SpaceHandle
	default:
		gv.Space = ir.SpacePrivate
	}
	if access != nil {
		gv.Access = *access
	} else {
		gv.Access = defaultAccess(gv.Space)
	}

	switch {
	case attrs.group != nil && attrs.binding != nil:
		gv.Binding = &ir.ResourceBinding{Group: *attrs.group, Binding: *attrs.binding}
	case attrs.group != nil || attrs.binding != nil:
		return newLabeledError(l.source, ErrBadAttributeArgument, decl.Name.Span,
			"`@group` and `@binding` must be used together", "incomplete resource binding")
	}

	if decl.Init != nil {
		init, err := l.constant(decl.Init)
		if err != nil {
			return err
		}
		gv.Init = &init
	}

	handle := uint32(len(l.module.GlobalVariables))
	if err := l.define(decl.Name, decl.DeclSpan, nameGlobal, handle); err != nil {
		return err
	}
	l.module.GlobalVariables = append(l.module.GlobalVariables, gv)
	return nil
}

func (l *Lowerer) lowerModuleLet(decl *LetDecl) error {
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

	ty, value, err := l.evalConstant(decl.Init)
	if err != nil {
		return err
	}
	if declared != nil && !ir.SameType(l.module, ir.HandleResolution(ty), ir.HandleResolution(*declared)) {
		return errTypeMismatch(l.source, decl.Name.Span, ir.HandleName(l.module, ty))
	}

	handle := uint32(len(l.module.Constants))
	if err := l.define(decl.Name, decl.Name.Span, nameConstant, handle); err != nil {
		return err
	}
	l.module.Constants = append(l.module.Constants, ir.Constant{
		Name:  decl.Name.Name,
		Type:  ty,
		Value: value,
		Span:  decl.Span,
	})
	return nil
}

func (l *Lowerer) lowerFunction(decl *FunctionDecl) error {
	attrs, err := l.attributes(decl.Attributes, placeFunction)
	if err != nil {
		return err
	}

	fn := &ir.Function{
		Name:             decl.Name.Name,
		NamedExpressions: make(map[ir.ExpressionHandle]string),
		Span:             decl.Span,
	}
	l.fn = newFunctionContext(fn)
	defer func() { l.fn = nil }()

	for i, p := range decl.Params {
		pattrs, err := l.attributes(p.Attributes, placeIO)
		if err != nil {
			return err
		}
		ty, err := l.resolveType(p.Type)
		if err != nil {
			return err
		}
		fn.Arguments = append(fn.Arguments, ir.FunctionArgument{
			Name:    p.Name.Name,
			Type:    ty,
			Binding: pattrs.ioBinding(),
			Span:    p.Span,
		})
		arg, err := l.addExpression(ir.ExprFunctionArgument{Index: uint32(i)}, p.Name.Span)
		if err != nil {
			return err
		}
		l.fn.bind(p.Name.Name, operand{handle: arg})
	}

	if decl.ReturnType != nil {
		rattrs, err := l.attributes(decl.ReturnAttrs, placeIO)
		if err != nil {
			return err
		}
		ty, err := l.resolveType(decl.ReturnType)
		if err != nil {
			return err
		}
		fn.Result = &ir.FunctionResult{Type: ty, Binding: rattrs.ioBinding()}
	}

	var body ir.Block
	if err := l.lowerStatements(decl.Body.Statements, &body); err != nil {
		return err
	}
	fn.Body = body

	handle := uint32(len(l.module.Functions))
	if err := l.define(decl.Name, decl.Name.Span, nameFunction, handle); err != nil {
		return err
	}
	l.module.Functions = append(l.module.Functions, *fn)

	if attrs.stage != nil {
		ep := ir.EntryPoint{
			Name:           decl.Name.Name,
			Stage:          *attrs.stage,
			EarlyDepthTest: attrs.earlyDepthTest,
			Function:       ir.FunctionHandle(handle),
		}
		if attrs.workgroup != nil {
			ep.Workgroup = *attrs.workgroup
		} else if ep.Stage == ir.StageCompute {
			ep.Workgroup = [3]uint32{1, 1, 1}
		}
		l.module.EntryPoints = append(l.module.EntryPoints, ep)
	}
	return nil
}

// isOpaque reports whether values of the type live in the handle space.
func isOpaque(inner ir.TypeInner) bool {
	switch inner.(type) {
	case ir.ImageType, ir.SamplerType:
		return true
	}
	return false
}

// defaultAccess is the access mode of a variable declared without one.
func defaultAccess(space ir.AddressSpace) ir.StorageAccess {
	switch space {
	case ir.SpaceStorage, ir.SpaceUniform:
		return ir.StorageLoad
	}
	return ir.StorageReadWrite
}
