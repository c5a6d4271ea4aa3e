package ir

import (
	"math"

	"github.com/gogpu/wgslfront/diag"
)

// validateTypes computes the flags of every type in arena order. Types
// only refer to earlier handles, so the flags of operands are known.
func (v *Validator) validateTypes() error {
	for i := range v.module.Types {
		ty := &v.module.Types[i]
		flags, err := v.validateType(TypeHandle(i), ty.Inner)
		if err != nil {
			verr := &ValidationError{
				Kind:   ValidationErrorType,
				Handle: uint32(i),
				Name:   ty.Name,
				Type:   err,
			}
			if st, ok := ty.Inner.(StructType); ok && isMemberError(err.Kind) && int(err.Index) < len(st.Members) {
				member := st.Members[err.Index]
				verr.Labels = []diag.Label{{Span: member.Span, Message: "member '" + member.Name + "'"}}
			} else if !ty.Span.IsUnknown() {
				verr.Labels = []diag.Label{{Span: ty.Span, Message: "invalid type"}}
			}
			return verr
		}
		v.types[i] = flags
	}
	return nil
}

// isMemberError reports whether TypeError.Index names a struct member.
func isMemberError(kind TypeErrorKind) bool {
	switch kind {
	case TypeInvalidData, TypeInvalidDynamicArray, TypeMemberOverlap, TypeMemberMisaligned:
		return true
	}
	return false
}

//nolint:gocyclo,cyclop,funlen // one case per type variant
func (v *Validator) validateType(handle TypeHandle, inner TypeInner) (TypeFlags, *TypeError) {
	const scalarFlags = TypeFlagData | TypeFlagSized | TypeFlagCopy | TypeFlagInterface |
		TypeFlagHostShareable | TypeFlagArgument

	switch t := inner.(type) {
	case ScalarType:
		if err := v.checkWidth(t); err != nil {
			return 0, err
		}
		if t.Kind == ScalarBool {
			return scalarFlags &^ (TypeFlagInterface | TypeFlagHostShareable), nil
		}
		return scalarFlags, nil

	case VectorType:
		if t.Size < Vec2 || t.Size > Vec4 {
			return 0, &TypeError{Kind: TypeInvalidWidth, Scalar: t.Scalar}
		}
		if err := v.checkWidth(t.Scalar); err != nil {
			return 0, err
		}
		if t.Scalar.Kind == ScalarBool {
			return scalarFlags &^ (TypeFlagInterface | TypeFlagHostShareable), nil
		}
		return scalarFlags, nil

	case MatrixType:
		if t.Scalar.Kind != ScalarFloat {
			return 0, &TypeError{Kind: TypeInvalidWidth, Scalar: t.Scalar}
		}
		if err := v.checkWidth(t.Scalar); err != nil {
			return 0, err
		}
		return scalarFlags &^ TypeFlagInterface, nil

	case AtomicType:
		if (t.Scalar.Kind != ScalarSint && t.Scalar.Kind != ScalarUint) || t.Scalar.Width != 4 {
			return 0, &TypeError{Kind: TypeInvalidAtomicWidth, Scalar: t.Scalar}
		}
		return TypeFlagData | TypeFlagSized | TypeFlagHostShareable, nil

	case PointerType:
		if !v.isValidTypeHandle(t.Base) || t.Base >= handle {
			return 0, &TypeError{Kind: TypeInvalidPointerBase, Base: t.Base}
		}
		if !v.types[t.Base].Contains(TypeFlagSized) && t.Space != SpaceStorage {
			return 0, &TypeError{Kind: TypeInvalidPointerToUnsized, Base: t.Base, Space: t.Space}
		}
		return TypeFlagSized | TypeFlagCopy | TypeFlagArgument, nil

	case ValuePointerType:
		if err := v.checkWidth(t.Scalar); err != nil {
			return 0, err
		}
		return TypeFlagSized | TypeFlagCopy | TypeFlagArgument, nil

	case ArrayType:
		return v.validateArrayType(handle, t)

	case StructType:
		return v.validateStructType(handle, t)

	case SamplerType, ImageType:
		return TypeFlagArgument, nil
	}
	return 0, &TypeError{Kind: TypeInvalidData, Base: handle}
}

func (v *Validator) checkWidth(s ScalarType) *TypeError {
	switch s.Kind {
	case ScalarBool:
		if s.Width == BoolWidth {
			return nil
		}
	case ScalarFloat:
		if s.Width == 4 {
			return nil
		}
		if s.Width == 8 {
			if v.capabilities&CapabilityFloat64 == 0 {
				return &TypeError{Kind: TypeUnsupportedCapability, Scalar: s}
			}
			return nil
		}
	case ScalarSint, ScalarUint:
		if s.Width == 4 {
			return nil
		}
	}
	return &TypeError{Kind: TypeInvalidWidth, Scalar: s}
}

func (v *Validator) validateArrayType(handle TypeHandle, t ArrayType) (TypeFlags, *TypeError) {
	if !v.isValidTypeHandle(t.Base) || t.Base >= handle {
		return 0, &TypeError{Kind: TypeInvalidArrayBaseType, Base: t.Base}
	}
	base := v.types[t.Base]
	if !base.Contains(TypeFlagData | TypeFlagSized) {
		return 0, &TypeError{Kind: TypeInvalidArrayBaseType, Base: t.Base}
	}

	if v.enabled(ValidateStructLayouts) {
		elem := v.layouter.Layout(t.Base)
		if t.Stride < elem.Size || t.Stride%elem.Alignment != 0 {
			return 0, &TypeError{Kind: TypeInvalidArrayStride, Offset: t.Stride, Expected: RoundUp(elem.Alignment, elem.Size)}
		}
	}

	flags := base&(TypeFlagData|TypeFlagCopy|TypeFlagHostShareable) | TypeFlagSized | TypeFlagArgument
	if t.Size.Constant == nil {
		return base & (TypeFlagData | TypeFlagHostShareable), nil
	}

	c := *t.Size.Constant
	if !v.isValidConstantHandle(c) {
		return 0, &TypeError{Kind: TypeInvalidArraySizeConstant, Constant: c}
	}
	value, ok := v.module.Constants[c].Value.(ScalarValue)
	if !ok {
		return 0, &TypeError{Kind: TypeInvalidArraySizeConstant, Constant: c}
	}
	switch value.Kind {
	case ScalarSint:
		if int64(value.Bits) <= 0 {
			return 0, &TypeError{Kind: TypeNonPositiveArrayLength, Constant: c}
		}
	case ScalarUint:
		if value.Bits == 0 {
			return 0, &TypeError{Kind: TypeNonPositiveArrayLength, Constant: c}
		}
	default:
		return 0, &TypeError{Kind: TypeInvalidArraySizeConstant, Constant: c}
	}
	if n, ok := ConstantLength(v.module.Constants, c); ok && uint64(n)*uint64(t.Stride) > math.MaxUint32 {
		return 0, &TypeError{Kind: TypeArraySizeOverflow, Constant: c, Offset: t.Stride}
	}
	return flags, nil
}

func (v *Validator) validateStructType(handle TypeHandle, t StructType) (TypeFlags, *TypeError) {
	if len(t.Members) == 0 {
		return 0, &TypeError{Kind: TypeEmptyStruct}
	}

	flags := TypeFlagData | TypeFlagSized | TypeFlagCopy | TypeFlagInterface |
		TypeFlagHostShareable | TypeFlagArgument
	var prevEnd uint32
	for i, m := range t.Members {
		if !v.isValidTypeHandle(m.Type) || m.Type >= handle {
			return 0, &TypeError{Kind: TypeInvalidData, Base: m.Type, Index: uint32(i)}
		}
		member := v.types[m.Type]
		if !member.Contains(TypeFlagData) {
			return 0, &TypeError{Kind: TypeInvalidData, Base: m.Type, Index: uint32(i)}
		}
		if !member.Contains(TypeFlagSized) {
			_, isArray := v.module.Types[m.Type].Inner.(ArrayType)
			if i != len(t.Members)-1 || !isArray {
				return 0, &TypeError{Kind: TypeInvalidDynamicArray, Member: m.Name, Base: m.Type, Index: uint32(i)}
			}
			flags &^= TypeFlagSized | TypeFlagCopy | TypeFlagArgument | TypeFlagInterface
		}
		flags &= member | TypeFlagSized | TypeFlagArgument

		if v.enabled(ValidateStructLayouts) {
			layout := v.layouter.Layout(m.Type)
			if m.Offset < prevEnd {
				return 0, &TypeError{Kind: TypeMemberOverlap, Index: uint32(i), Offset: m.Offset}
			}
			if member.Contains(TypeFlagHostShareable) && m.Offset%layout.Alignment != 0 {
				return 0, &TypeError{Kind: TypeMemberMisaligned, Index: uint32(i), Offset: m.Offset, Expected: layout.Alignment}
			}
			prevEnd = m.Offset + layout.Size
		}
	}
	return flags, nil
}
