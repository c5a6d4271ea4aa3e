package ir

import "fmt"

// Inner returns the type a resolution refers to.
func (r TypeResolution) Inner(module *Module) TypeInner {
	if r.Handle != nil {
		if int(*r.Handle) < len(module.Types) {
			return module.Types[*r.Handle].Inner
		}
		return nil
	}
	return r.Value
}

// HandleResolution wraps a type handle.
func HandleResolution(h TypeHandle) TypeResolution {
	return TypeResolution{Handle: &h}
}

// ValueResolution wraps an inline type.
func ValueResolution(inner TypeInner) TypeResolution {
	return TypeResolution{Value: inner}
}

// TypeName formats a type the way WGSL source spells it.
func TypeName(module *Module, inner TypeInner) string {
	switch t := inner.(type) {
	case ScalarType:
		return scalarName(t)
	case VectorType:
		return fmt.Sprintf("vec%d<%s>", t.Size, scalarName(t.Scalar))
	case MatrixType:
		return fmt.Sprintf("mat%dx%d<%s>", t.Columns, t.Rows, scalarName(t.Scalar))
	case AtomicType:
		return fmt.Sprintf("atomic<%s>", scalarName(t.Scalar))
	case PointerType:
		return fmt.Sprintf("ptr<%s, %s>", t.Space, HandleName(module, t.Base))
	case ValuePointerType:
		pointee := scalarName(t.Scalar)
		if t.Size != nil {
			pointee = fmt.Sprintf("vec%d<%s>", *t.Size, pointee)
		}
		return fmt.Sprintf("ptr<%s, %s>", t.Space, pointee)
	case ArrayType:
		if t.Size.Constant != nil {
			if n, ok := ConstantLength(module.Constants, *t.Size.Constant); ok {
				return fmt.Sprintf("array<%s, %d>", HandleName(module, t.Base), n)
			}
		}
		return fmt.Sprintf("array<%s>", HandleName(module, t.Base))
	case StructType:
		return "struct"
	case SamplerType:
		if t.Comparison {
			return "sampler_comparison"
		}
		return "sampler"
	case ImageType:
		return imageName(t)
	}
	return "unknown"
}

// HandleName formats an arena type, preferring its declared name.
func HandleName(module *Module, handle TypeHandle) string {
	if int(handle) >= len(module.Types) {
		return "unknown"
	}
	ty := module.Types[handle]
	if ty.Name != "" {
		return ty.Name
	}
	return TypeName(module, ty.Inner)
}

// ResolutionName formats a resolved expression type.
func ResolutionName(module *Module, r TypeResolution) string {
	if r.Handle != nil {
		return HandleName(module, *r.Handle)
	}
	return TypeName(module, r.Value)
}

func scalarName(s ScalarType) string {
	switch s.Kind {
	case ScalarBool:
		return "bool"
	case ScalarSint:
		return fmt.Sprintf("i%d", s.Width*8)
	case ScalarUint:
		return fmt.Sprintf("u%d", s.Width*8)
	case ScalarFloat:
		return fmt.Sprintf("f%d", s.Width*8)
	}
	return "unknown"
}

func imageName(t ImageType) string {
	dim := [...]string{"1d", "2d", "3d", "cube"}[t.Dim]
	if t.Arrayed {
		dim += "_array"
	}
	switch t.Class {
	case ImageClassDepth:
		if t.Multisampled {
			return "texture_depth_multisampled_" + dim
		}
		return "texture_depth_" + dim
	case ImageClassStorage:
		return "texture_storage_" + dim
	}
	prefix := "texture_"
	if t.Multisampled {
		prefix += "multisampled_"
	}
	return prefix + dim + "<" + scalarName(ScalarType{Kind: t.SampledKind, Width: 4}) + ">"
}

// SameType reports whether two resolutions denote the same type. Pointers
// to scalars and vectors compare equal whether they are spelled as a
// pointer to an arena type or as a value pointer.
func SameType(module *Module, a, b TypeResolution) bool {
	if a.Handle != nil && b.Handle != nil && *a.Handle == *b.Handle {
		return true
	}
	return sameInner(module, canonical(module, a.Inner(module)), canonical(module, b.Inner(module)))
}

func canonical(module *Module, inner TypeInner) TypeInner {
	ptr, ok := inner.(PointerType)
	if !ok || int(ptr.Base) >= len(module.Types) {
		return inner
	}
	switch base := module.Types[ptr.Base].Inner.(type) {
	case ScalarType:
		return ValuePointerType{Scalar: base, Space: ptr.Space, Access: ptr.Access}
	case VectorType:
		size := base.Size
		return ValuePointerType{Size: &size, Scalar: base.Scalar, Space: ptr.Space, Access: ptr.Access}
	}
	return inner
}

func sameInner(module *Module, a, b TypeInner) bool {
	switch x := a.(type) {
	case ScalarType:
		y, ok := b.(ScalarType)
		return ok && x == y
	case VectorType:
		y, ok := b.(VectorType)
		return ok && x == y
	case MatrixType:
		y, ok := b.(MatrixType)
		return ok && x == y
	case AtomicType:
		y, ok := b.(AtomicType)
		return ok && x == y
	case SamplerType:
		y, ok := b.(SamplerType)
		return ok && x == y
	case ImageType:
		y, ok := b.(ImageType)
		return ok && x == y
	case PointerType:
		y, ok := b.(PointerType)
		return ok && x == y
	case ValuePointerType:
		y, ok := b.(ValuePointerType)
		if !ok || x.Scalar != y.Scalar || x.Space != y.Space || x.Access != y.Access {
			return false
		}
		if x.Size == nil || y.Size == nil {
			return x.Size == nil && y.Size == nil
		}
		return *x.Size == *y.Size
	case ArrayType:
		y, ok := b.(ArrayType)
		if !ok || x.Base != y.Base || x.Stride != y.Stride {
			return false
		}
		return sameArraySize(module, x.Size, y.Size)
	case StructType:
		// Structs are nominal and live only in the arena, so two distinct
		// handles never denote the same struct.
		return false
	}
	return false
}

func sameArraySize(module *Module, a, b ArraySize) bool {
	if a.Constant == nil || b.Constant == nil {
		return a.Constant == nil && b.Constant == nil
	}
	if *a.Constant == *b.Constant {
		return true
	}
	n, ok1 := ConstantLength(module.Constants, *a.Constant)
	m, ok2 := ConstantLength(module.Constants, *b.Constant)
	return ok1 && ok2 && n == m
}
