package ir

import "github.com/gogpu/wgslfront/diag"

// builtinRule describes where a built-in may appear and with which type.
type builtinRule struct {
	ty     TypeInner
	input  []ShaderStage
	output []ShaderStage
	needs  Capabilities
}

var (
	u32Type      = ScalarType{Kind: ScalarUint, Width: 4}
	f32Type      = ScalarType{Kind: ScalarFloat, Width: 4}
	boolType     = ScalarType{Kind: ScalarBool, Width: BoolWidth}
	vec3u32      = VectorType{Size: Vec3, Scalar: u32Type}
	vec4f32      = VectorType{Size: Vec4, Scalar: f32Type}
	fragmentOnly = []ShaderStage{StageFragment}
	vertexOnly   = []ShaderStage{StageVertex}
	computeOnly  = []ShaderStage{StageCompute}
	noStages     = []ShaderStage(nil)
	builtinOf    = map[BuiltinValue]builtinRule{
		BuiltinPosition:             {ty: vec4f32, input: fragmentOnly, output: vertexOnly},
		BuiltinVertexIndex:          {ty: u32Type, input: vertexOnly, output: noStages},
		BuiltinInstanceIndex:        {ty: u32Type, input: vertexOnly, output: noStages},
		BuiltinFrontFacing:          {ty: boolType, input: fragmentOnly, output: noStages},
		BuiltinFragDepth:            {ty: f32Type, input: noStages, output: fragmentOnly},
		BuiltinPrimitiveIndex:       {ty: u32Type, input: fragmentOnly, output: noStages, needs: CapabilityPrimitiveIndex},
		BuiltinSampleIndex:          {ty: u32Type, input: fragmentOnly, output: noStages, needs: CapabilitySampleRateShading},
		BuiltinSampleMask:           {ty: u32Type, input: fragmentOnly, output: fragmentOnly},
		BuiltinLocalInvocationID:    {ty: vec3u32, input: computeOnly, output: noStages},
		BuiltinLocalInvocationIndex: {ty: u32Type, input: computeOnly, output: noStages},
		BuiltinGlobalInvocationID:   {ty: vec3u32, input: computeOnly, output: noStages},
		BuiltinWorkGroupID:          {ty: vec3u32, input: computeOnly, output: noStages},
		BuiltinNumWorkGroups:        {ty: vec3u32, input: computeOnly, output: noStages},
	}
)

// varyingContext tracks the bindings already used on one side of an
// entry point.
type varyingContext struct {
	stage     ShaderStage
	output    bool
	locations map[uint32]bool
	builtins  map[BuiltinValue]bool
}

func (v *Validator) validateEntryPoints() error {
	type key struct {
		name  string
		stage ShaderStage
	}
	seen := make(map[key]bool, len(v.module.EntryPoints))

	for i, ep := range v.module.EntryPoints {
		fail := func(err *EntryPointError, span Span, label string) error {
			return &ValidationError{
				Kind:       ValidationErrorEntryPoint,
				Handle:     uint32(i),
				Name:       ep.Name,
				Stage:      ep.Stage,
				EntryPoint: err,
				Labels:     []diag.Label{{Span: span, Message: label}},
			}
		}
		if int(ep.Function) >= len(v.module.Functions) {
			return fail(&EntryPointError{Kind: EntryPointMissingFunction}, Span{}, "")
		}
		fn := &v.module.Functions[ep.Function]

		k := key{ep.Name, ep.Stage}
		if seen[k] {
			return fail(&EntryPointError{Kind: EntryPointDuplicate}, fn.Span, "entry point")
		}
		seen[k] = true

		if ep.Stage == StageCompute {
			for _, size := range ep.Workgroup {
				if size == 0 {
					return fail(&EntryPointError{Kind: EntryPointOutOfRangeWorkgroupSize}, fn.Span, "workgroup size")
				}
			}
		} else if ep.Workgroup != [3]uint32{} {
			return fail(&EntryPointError{Kind: EntryPointUnexpectedWorkgroupSize}, fn.Span, "workgroup size")
		}
		if ep.EarlyDepthTest != nil && ep.Stage != StageFragment {
			return fail(&EntryPointError{Kind: EntryPointUnexpectedEarlyDepthTest}, fn.Span, "early depth test")
		}

		if !v.enabled(ValidateBindings) {
			continue
		}

		inputs := varyingContext{stage: ep.Stage, locations: map[uint32]bool{}, builtins: map[BuiltinValue]bool{}}
		for j, arg := range fn.Arguments {
			if err := v.validateVarying(&inputs, arg.Type, arg.Binding); err != nil {
				return fail(&EntryPointError{Kind: EntryPointArgument, Index: uint32(j), Varying: err},
					arg.Span, "argument '"+arg.Name+"'")
			}
		}

		outputs := varyingContext{stage: ep.Stage, output: true, locations: map[uint32]bool{}, builtins: map[BuiltinValue]bool{}}
		if fn.Result != nil {
			if err := v.validateVarying(&outputs, fn.Result.Type, fn.Result.Binding); err != nil {
				return fail(&EntryPointError{Kind: EntryPointResult, Varying: err}, fn.Span, "result")
			}
		}
		if ep.Stage == StageVertex && !outputs.builtins[BuiltinPosition] {
			return fail(&EntryPointError{Kind: EntryPointMissingVertexOutputPosition}, fn.Span, "vertex entry point")
		}
	}
	return nil
}

// validateVarying checks one argument or result of an entry point. A
// struct without a binding of its own needs a binding on every member.
func (v *Validator) validateVarying(ctx *varyingContext, ty TypeHandle, binding Binding) *VaryingError {
	if !v.isValidTypeHandle(ty) {
		return &VaryingError{Kind: VaryingInvalidType, Type: ty}
	}
	if binding == nil {
		st, ok := v.module.Types[ty].Inner.(StructType)
		if !ok {
			return &VaryingError{Kind: VaryingMissingBinding, Type: ty}
		}
		for i, m := range st.Members {
			if m.Binding == nil {
				return &VaryingError{Kind: VaryingMemberMissingBinding, Member: uint32(i), Type: ty}
			}
			if err := v.validateBinding(ctx, m.Type, m.Binding); err != nil {
				return err
			}
		}
		return nil
	}
	return v.validateBinding(ctx, ty, binding)
}

func (v *Validator) validateBinding(ctx *varyingContext, ty TypeHandle, binding Binding) *VaryingError {
	switch b := binding.(type) {
	case BuiltinBinding:
		rule, ok := builtinOf[b.Builtin]
		if !ok {
			return &VaryingError{Kind: VaryingInvalidBuiltInStage, Builtin: b.Builtin}
		}
		stages := rule.input
		if ctx.output {
			stages = rule.output
		}
		allowed := false
		for _, s := range stages {
			allowed = allowed || s == ctx.stage
		}
		if !allowed {
			return &VaryingError{Kind: VaryingInvalidBuiltInStage, Builtin: b.Builtin}
		}
		if rule.needs != 0 && v.capabilities&rule.needs == 0 {
			return &VaryingError{Kind: VaryingUnsupportedCapability, Builtin: b.Builtin}
		}
		if !SameType(v.module, HandleResolution(ty), ValueResolution(rule.ty)) {
			return &VaryingError{Kind: VaryingInvalidBuiltInType, Builtin: b.Builtin, Type: ty}
		}
		if ctx.builtins[b.Builtin] {
			return &VaryingError{Kind: VaryingDuplicateBuiltIn, Builtin: b.Builtin}
		}
		ctx.builtins[b.Builtin] = true

	case LocationBinding:
		if ctx.stage == StageCompute || !v.types[ty].Contains(TypeFlagInterface) {
			return &VaryingError{Kind: VaryingNotIOShareableType, Type: ty}
		}
		if _, isStruct := v.module.Types[ty].Inner.(StructType); isStruct {
			return &VaryingError{Kind: VaryingNotIOShareableType, Type: ty}
		}
		if b.Interpolation != nil && b.Interpolation.Kind != InterpolationFlat {
			if kind, ok := numericKind(v.module.Types[ty].Inner); ok && kind != ScalarFloat {
				return &VaryingError{Kind: VaryingInvalidType, Type: ty}
			}
		}
		if ctx.locations[b.Location] {
			return &VaryingError{Kind: VaryingBindingCollision, Location: b.Location}
		}
		ctx.locations[b.Location] = true

	default:
		return &VaryingError{Kind: VaryingMissingBinding, Type: ty}
	}
	return nil
}
