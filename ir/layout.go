package ir

import "math"

// TypeLayout is the size and alignment of a type in host-shareable memory.
type TypeLayout struct {
	Size      uint32
	Alignment uint32
}

// Layouter computes layouts for the types of a module. Layouts are
// computed incrementally as types are appended to the arena.
type Layouter struct {
	layouts []TypeLayout
}

// Update computes layouts for every type not seen yet. Types only refer
// to earlier handles, so one forward pass is enough.
func (l *Layouter) Update(types []Type, constants []Constant) {
	for h := len(l.layouts); h < len(types); h++ {
		l.layouts = append(l.layouts, l.compute(types[h].Inner, constants))
	}
}

// Layout returns the layout of a type passed to Update.
func (l *Layouter) Layout(handle TypeHandle) TypeLayout {
	if int(handle) >= len(l.layouts) {
		return TypeLayout{Alignment: 1}
	}
	return l.layouts[handle]
}

func (l *Layouter) compute(inner TypeInner, constants []Constant) TypeLayout {
	switch t := inner.(type) {
	case ScalarType:
		return TypeLayout{Size: uint32(t.Width), Alignment: uint32(t.Width)}
	case AtomicType:
		return TypeLayout{Size: uint32(t.Scalar.Width), Alignment: uint32(t.Scalar.Width)}
	case VectorType:
		return vectorLayout(t.Size, t.Scalar.Width)
	case MatrixType:
		column := vectorLayout(t.Rows, t.Scalar.Width)
		return TypeLayout{
			Size:      uint32(t.Columns) * RoundUp(column.Alignment, column.Size),
			Alignment: column.Alignment,
		}
	case PointerType, ValuePointerType:
		return TypeLayout{Size: 4, Alignment: 4}
	case ArrayType:
		elem := l.Layout(t.Base)
		count := uint32(1)
		if t.Size.Constant != nil {
			if n, ok := ConstantLength(constants, *t.Size.Constant); ok {
				count = n
			}
		}
		// Sizes past 4 GiB saturate; the validator rejects such arrays.
		size := min(uint64(count)*uint64(t.Stride), math.MaxUint32)
		return TypeLayout{Size: uint32(size), Alignment: elem.Alignment}
	case StructType:
		align := max(t.Alignment, 1)
		for _, m := range t.Members {
			if a := l.Layout(m.Type).Alignment; a > align {
				align = a
			}
		}
		return TypeLayout{Size: t.Size, Alignment: align}
	}
	// Opaque handles occupy no host-shareable memory.
	return TypeLayout{Alignment: 1}
}

func vectorLayout(size VectorSize, width uint8) TypeLayout {
	w := uint32(width)
	align := uint32(size)
	if size == Vec3 {
		align = 4
	}
	return TypeLayout{Size: uint32(size) * w, Alignment: align * w}
}

// RoundUp rounds offset up to a multiple of align.
func RoundUp(align, offset uint32) uint32 {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) / align * align
}

// ConstantLength returns the value of an integer constant usable as an
// array length. It reports false for non-integer or non-positive values.
func ConstantLength(constants []Constant, handle ConstantHandle) (uint32, bool) {
	if int(handle) >= len(constants) {
		return 0, false
	}
	v, ok := constants[handle].Value.(ScalarValue)
	if !ok {
		return 0, false
	}
	switch v.Kind {
	case ScalarSint:
		n := int64(v.Bits)
		if n <= 0 || n > 1<<32-1 {
			return 0, false
		}
		return uint32(n), true
	case ScalarUint:
		if v.Bits == 0 || v.Bits > 1<<32-1 {
			return 0, false
		}
		return uint32(v.Bits), true
	}
	return 0, false
}
