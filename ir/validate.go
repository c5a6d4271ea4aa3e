package ir

import (
	"fmt"
	"strings"

	"github.com/gogpu/wgslfront/diag"
)

// ValidationFlags selects which groups of checks the validator runs.
// Type resolution always runs, since every other check depends on it.
type ValidationFlags uint8

const (
	// ValidateExpressions checks operand types of every expression.
	ValidateExpressions ValidationFlags = 1 << iota
	// ValidateBlocks checks statements and control flow.
	ValidateBlocks
	// ValidateStructLayouts checks member offsets and array strides.
	ValidateStructLayouts
	// ValidateConstants checks constant values against their types.
	ValidateConstants
	// ValidateBindings checks resource bindings and entry point varyings.
	ValidateBindings

	ValidationFlagsAll = ValidateExpressions | ValidateBlocks | ValidateStructLayouts |
		ValidateConstants | ValidateBindings
)

// Capabilities are optional features a module may use.
type Capabilities uint8

const (
	CapabilityPushConstant Capabilities = 1 << iota
	CapabilityFloat64
	CapabilityPrimitiveIndex
	CapabilitySampleRateShading
)

// TypeFlags describe where values of a type may appear.
type TypeFlags uint8

const (
	// TypeFlagData marks types that can be stored in variables.
	TypeFlagData TypeFlags = 1 << iota
	// TypeFlagSized marks types with a size known at shader creation.
	TypeFlagSized
	// TypeFlagCopy marks types that can be loaded and stored as a whole.
	TypeFlagCopy
	// TypeFlagInterface marks types usable for user-defined varyings.
	TypeFlagInterface
	// TypeFlagHostShareable marks types that can live in uniform or
	// storage buffers.
	TypeFlagHostShareable
	// TypeFlagArgument marks types that can be passed to functions.
	TypeFlagArgument
)

var typeFlagNames = [...]string{"DATA", "SIZED", "COPY", "INTERFACE", "HOST_SHAREABLE", "ARGUMENT"}

func (f TypeFlags) String() string {
	if f == 0 {
		return "(empty)"
	}
	var sb strings.Builder
	for i, name := range typeFlagNames {
		if f&(1<<i) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(name)
	}
	return sb.String()
}

// Contains reports whether all flags in other are set.
func (f TypeFlags) Contains(other TypeFlags) bool {
	return f&other == other
}

// GlobalUse records how a function touches a global variable.
type GlobalUse uint8

const (
	GlobalUseRead GlobalUse = 1 << iota
	GlobalUseWrite
	GlobalUseQuery
)

// FunctionInfo is what validation learned about one function.
type FunctionInfo struct {
	// ExpressionTypes holds the resolved type of every expression.
	ExpressionTypes []TypeResolution
	// GlobalUses is indexed by global variable handle.
	GlobalUses []GlobalUse
}

// ModuleInfo is the result of validating a module.
type ModuleInfo struct {
	// TypeFlags is indexed by type handle.
	TypeFlags []TypeFlags
	// Functions is indexed by function handle.
	Functions []FunctionInfo
	// Layouts is indexed by type handle.
	Layouts []TypeLayout
}

// Validator checks IR modules for semantic correctness. A Validator can
// be reused for several modules, but not concurrently.
type Validator struct {
	flags        ValidationFlags
	capabilities Capabilities

	module   *Module
	layouter Layouter
	types    []TypeFlags
	context  validationContext
}

// validationContext holds the state of the function being validated.
type validationContext struct {
	handle       FunctionHandle
	function     *Function
	info         *FunctionInfo
	loopDepth    int
	switchDepth  int
	inContinuing bool
}

// NewValidator creates a validator running the given checks and
// accepting the given capabilities.
func NewValidator(flags ValidationFlags, capabilities Capabilities) *Validator {
	return &Validator{flags: flags, capabilities: capabilities}
}

// Validate checks the module. It stops at the first violation, which is
// returned as a *ValidationError. Items are checked in the order types,
// constants, global variables, functions, entry points.
func (v *Validator) Validate(module *Module) (*ModuleInfo, error) {
	if module == nil {
		return nil, fmt.Errorf("module is nil")
	}

	v.module = module
	v.layouter = Layouter{}
	v.layouter.Update(module.Types, module.Constants)
	v.types = make([]TypeFlags, len(module.Types))
	v.context = validationContext{}

	info := &ModuleInfo{
		TypeFlags: v.types,
		Functions: make([]FunctionInfo, len(module.Functions)),
	}

	if err := v.validateTypes(); err != nil {
		return nil, err
	}
	if err := v.validateConstants(); err != nil {
		return nil, err
	}
	if err := v.validateGlobalVariables(); err != nil {
		return nil, err
	}
	for i := range module.Functions {
		fi, err := v.validateFunction(FunctionHandle(i))
		if err != nil {
			return nil, err
		}
		info.Functions[i] = fi
	}
	if err := v.validateEntryPoints(); err != nil {
		return nil, err
	}

	info.Layouts = make([]TypeLayout, len(module.Types))
	for i := range module.Types {
		info.Layouts[i] = v.layouter.Layout(TypeHandle(i))
	}
	return info, nil
}

func (v *Validator) enabled(flag ValidationFlags) bool {
	return v.flags&flag != 0
}

func (v *Validator) isValidTypeHandle(handle TypeHandle) bool {
	return int(handle) < len(v.module.Types)
}

func (v *Validator) isValidConstantHandle(handle ConstantHandle) bool {
	return int(handle) < len(v.module.Constants)
}

// validateConstants checks that each constant's value matches its type.
func (v *Validator) validateConstants() error {
	for i := range v.module.Constants {
		c := &v.module.Constants[i]
		if err := v.validateConstant(ConstantHandle(i), c); err != nil {
			return &ValidationError{
				Kind:     ValidationErrorConstant,
				Handle:   uint32(i),
				Name:     c.Name,
				Constant: err,
				Labels:   []diag.Label{{Span: c.Span, Message: "constant"}},
			}
		}
	}
	return nil
}

func (v *Validator) validateConstant(handle ConstantHandle, c *Constant) *ConstantError {
	if !v.isValidTypeHandle(c.Type) {
		return &ConstantError{Kind: ConstantInvalidType}
	}
	if !v.enabled(ValidateConstants) {
		return nil
	}
	inner := v.module.Types[c.Type].Inner

	switch value := c.Value.(type) {
	case ScalarValue:
		scalar, ok := inner.(ScalarType)
		if !ok || scalar.Kind != value.Kind {
			return &ConstantError{Kind: ConstantInvalidType}
		}
	case CompositeValue:
		expected := v.componentTypes(inner)
		if expected == nil {
			return &ConstantError{Kind: ConstantInvalidType}
		}
		if len(expected) != len(value.Components) {
			return &ConstantError{Kind: ConstantComponentCount, Expected: uint32(len(expected)), Seen: uint32(len(value.Components))}
		}
		for j, comp := range value.Components {
			if comp >= handle {
				return &ConstantError{Kind: ConstantComponentType, Index: uint32(j)}
			}
			got := HandleResolution(v.module.Constants[comp].Type)
			if !SameType(v.module, got, expected[j]) {
				return &ConstantError{Kind: ConstantComponentType, Index: uint32(j)}
			}
		}
	default:
		return &ConstantError{Kind: ConstantInvalidType}
	}
	return nil
}

// componentTypes lists the component types of a composite, or returns
// nil if the type is not a composite of known length.
func (v *Validator) componentTypes(inner TypeInner) []TypeResolution {
	var out []TypeResolution
	switch t := inner.(type) {
	case VectorType:
		for i := 0; i < int(t.Size); i++ {
			out = append(out, ValueResolution(t.Scalar))
		}
	case MatrixType:
		for i := 0; i < int(t.Columns); i++ {
			out = append(out, ValueResolution(VectorType{Size: t.Rows, Scalar: t.Scalar}))
		}
	case ArrayType:
		if t.Size.Constant == nil {
			return nil
		}
		n, ok := ConstantLength(v.module.Constants, *t.Size.Constant)
		if !ok {
			return nil
		}
		for i := uint32(0); i < n; i++ {
			out = append(out, HandleResolution(t.Base))
		}
	case StructType:
		for _, m := range t.Members {
			out = append(out, HandleResolution(m.Type))
		}
	default:
		return nil
	}
	return out
}

// validateGlobalVariables checks address spaces, types and bindings of
// module-scope variables.
func (v *Validator) validateGlobalVariables() error {
	for i := range v.module.GlobalVariables {
		gv := &v.module.GlobalVariables[i]
		if err := v.validateGlobalVariable(gv); err != nil {
			return &ValidationError{
				Kind:           ValidationErrorGlobalVariable,
				Handle:         uint32(i),
				Name:           gv.Name,
				GlobalVariable: err,
				Labels:         []diag.Label{{Span: gv.Span, Message: "global variable"}},
			}
		}
	}
	return nil
}

func (v *Validator) validateGlobalVariable(gv *GlobalVariable) *GlobalVariableError {
	if !v.isValidTypeHandle(gv.Type) {
		return &GlobalVariableError{Kind: GlobalInvalidType, Space: gv.Space}
	}
	flags := v.types[gv.Type]

	var required TypeFlags
	needsBinding := false
	switch gv.Space {
	case SpaceFunction:
		return &GlobalVariableError{Kind: GlobalInvalidUsage, Space: gv.Space}
	case SpaceStorage:
		required = TypeFlagData | TypeFlagHostShareable
		needsBinding = true
	case SpaceUniform:
		required = TypeFlagData | TypeFlagSized | TypeFlagHostShareable
		needsBinding = true
	case SpaceHandle:
		switch v.module.Types[gv.Type].Inner.(type) {
		case ImageType, SamplerType:
		default:
			return &GlobalVariableError{Kind: GlobalInvalidType, Space: gv.Space}
		}
		needsBinding = true
	case SpacePushConstant:
		if v.capabilities&CapabilityPushConstant == 0 {
			return &GlobalVariableError{Kind: GlobalUnsupportedCapability, Space: gv.Space}
		}
		required = TypeFlagData | TypeFlagSized | TypeFlagHostShareable
	case SpacePrivate, SpaceWorkGroup:
		required = TypeFlagData | TypeFlagSized
	}

	if !flags.Contains(required) {
		return &GlobalVariableError{Kind: GlobalMissingTypeFlags, Space: gv.Space, Required: required, Seen: flags}
	}

	if v.enabled(ValidateBindings) {
		if needsBinding && gv.Binding == nil {
			return &GlobalVariableError{Kind: GlobalMissingBinding, Space: gv.Space}
		}
		if !needsBinding && gv.Binding != nil {
			return &GlobalVariableError{Kind: GlobalUnexpectedBinding, Space: gv.Space}
		}
	}

	if gv.Init != nil {
		if gv.Space != SpacePrivate {
			return &GlobalVariableError{Kind: GlobalInvalidUsage, Space: gv.Space}
		}
		if !v.isValidConstantHandle(*gv.Init) {
			return &GlobalVariableError{Kind: GlobalInitializerType, Space: gv.Space}
		}
		init := HandleResolution(v.module.Constants[*gv.Init].Type)
		if !SameType(v.module, init, HandleResolution(gv.Type)) {
			return &GlobalVariableError{Kind: GlobalInitializerType, Space: gv.Space}
		}
	}
	return nil
}
