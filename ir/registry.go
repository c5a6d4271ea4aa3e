package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeRegistry is the type table: it hands out one handle per distinct
// type so that type comparisons downstream are handle comparisons.
type TypeRegistry struct {
	types   []Type
	typeMap map[string]TypeHandle
	keyBuf  []byte // reusable buffer for building type keys
}

// NewTypeRegistry returns an empty type table.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		types:   make([]Type, 0, 16),
		typeMap: make(map[string]TypeHandle, 16),
		keyBuf:  make([]byte, 0, 64),
	}
}

// GetOrCreate returns the handle of inner, appending it on first use.
// Structs are keyed by name as well as shape; other types keep the name
// they were first registered with.
func (r *TypeRegistry) GetOrCreate(name string, inner TypeInner) TypeHandle {
	key := r.normalizeType(inner)
	if _, ok := inner.(StructType); ok {
		key = name + "=" + key
	}

	if handle, exists := r.typeMap[key]; exists {
		return handle
	}

	handle := TypeHandle(len(r.types))
	r.types = append(r.types, Type{
		Name:  name,
		Inner: inner,
	})
	r.typeMap[key] = handle

	return handle
}

// GetTypes returns the arena in handle order. It is the Types slice of
// the lowered module.
func (r *TypeRegistry) GetTypes() []Type {
	return r.types
}

// normalizeType returns the dedup key of inner. Operand types appear
// by handle, so keys are shallow.
func (r *TypeRegistry) normalizeType(inner TypeInner) string {
	b := r.keyBuf[:0]

	switch t := inner.(type) {
	case ScalarType:
		b = appendScalarKey(append(b, "scalar:"...), t)
		r.keyBuf = b
		return string(b)

	case VectorType:
		b = append(b, "vec:"...)
		b = strconv.AppendUint(b, uint64(t.Size), 10)
		b = appendScalarKey(append(b, ':'), t.Scalar)
		r.keyBuf = b
		return string(b)

	case MatrixType:
		b = append(b, "mat:"...)
		b = strconv.AppendUint(b, uint64(t.Columns), 10)
		b = append(b, 'x')
		b = strconv.AppendUint(b, uint64(t.Rows), 10)
		b = appendScalarKey(append(b, ':'), t.Scalar)
		r.keyBuf = b
		return string(b)

	case AtomicType:
		b = appendScalarKey(append(b, "atomic:"...), t.Scalar)
		r.keyBuf = b
		return string(b)

	case ArrayType:
		sizeKey := "runtime"
		if t.Size.Constant != nil {
			sizeKey = "const" + strconv.FormatUint(uint64(*t.Size.Constant), 10)
		}
		return "array:" + strconv.FormatUint(uint64(t.Base), 10) + ":" + sizeKey + ":" + strconv.FormatUint(uint64(t.Stride), 10)

	case StructType:
		var sb strings.Builder
		fmt.Fprintf(&sb, "struct:%d:%d:%d", len(t.Members), t.Size, t.Alignment)
		for _, member := range t.Members {
			fmt.Fprintf(&sb, ":m(%s,%d,%d,%v)", member.Name, member.Type, member.Offset, member.Binding)
		}
		return sb.String()

	case PointerType:
		return "ptr:" + strconv.FormatUint(uint64(t.Base), 10) + ":" + t.Space.String() + ":" + t.Access.String()

	case ValuePointerType:
		size := "scalar"
		if t.Size != nil {
			size = strconv.FormatUint(uint64(*t.Size), 10)
		}
		return "vptr:" + size + ":" + string(appendScalarKey(nil, t.Scalar)) + ":" + t.Space.String() + ":" + t.Access.String()

	case SamplerType:
		if t.Comparison {
			return "sampler:true"
		}
		return "sampler:false"

	case ImageType:
		return fmt.Sprintf("image:%d:%v:%d:%v:%d:%d:%d",
			t.Dim, t.Arrayed, t.Class, t.Multisampled, t.SampledKind, t.StorageFormat, t.StorageAccess)

	default:
		return fmt.Sprintf("unknown:%T", inner)
	}
}

func appendScalarKey(b []byte, s ScalarType) []byte {
	b = strconv.AppendInt(b, int64(s.Kind), 10)
	b = append(b, ':')
	return strconv.AppendUint(b, uint64(s.Width), 10)
}

// SetSpan records where a type is first written. Later spans are ignored.
func (r *TypeRegistry) SetSpan(handle TypeHandle, span Span) {
	if int(handle) < len(r.types) && r.types[handle].Span.IsUnknown() {
		r.types[handle].Span = span
	}
}

// Lookup returns the type behind handle.
func (r *TypeRegistry) Lookup(handle TypeHandle) (Type, bool) {
	if int(handle) >= len(r.types) {
		return Type{}, false
	}
	return r.types[handle], true
}

// Count returns the arena length.
func (r *TypeRegistry) Count() int {
	return len(r.types)
}
