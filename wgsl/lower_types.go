package wgsl

import (
	"fmt"

	"github.com/gogpu/wgslfront/ir"
)

var scalarTypes = map[string]ir.ScalarType{
	"bool": {Kind: ir.ScalarBool, Width: ir.BoolWidth},
	"f16":  {Kind: ir.ScalarFloat, Width: 2},
	"f32":  {Kind: ir.ScalarFloat, Width: 4},
	"f64":  {Kind: ir.ScalarFloat, Width: 8},
	"i8":   {Kind: ir.ScalarSint, Width: 1},
	"i16":  {Kind: ir.ScalarSint, Width: 2},
	"i32":  {Kind: ir.ScalarSint, Width: 4},
	"i64":  {Kind: ir.ScalarSint, Width: 8},
	"u8":   {Kind: ir.ScalarUint, Width: 1},
	"u16":  {Kind: ir.ScalarUint, Width: 2},
	"u32":  {Kind: ir.ScalarUint, Width: 4},
	"u64":  {Kind: ir.ScalarUint, Width: 8},
}

var vectorSizes = map[string]ir.VectorSize{
	"vec2": ir.Vec2,
	"vec3": ir.Vec3,
	"vec4": ir.Vec4,
}

// matrixShapes maps matCxR to its column and row counts.
var matrixShapes = map[string][2]ir.VectorSize{
	"mat2x2": {ir.Vec2, ir.Vec2}, "mat2x3": {ir.Vec2, ir.Vec3}, "mat2x4": {ir.Vec2, ir.Vec4},
	"mat3x2": {ir.Vec3, ir.Vec2}, "mat3x3": {ir.Vec3, ir.Vec3}, "mat3x4": {ir.Vec3, ir.Vec4},
	"mat4x2": {ir.Vec4, ir.Vec2}, "mat4x3": {ir.Vec4, ir.Vec3}, "mat4x4": {ir.Vec4, ir.Vec4},
}

type textureShape struct {
	dim          ir.ImageDimension
	arrayed      bool
	multisampled bool
}

var sampledTextures = map[string]textureShape{
	"texture_1d":              {dim: ir.Dim1D},
	"texture_2d":              {dim: ir.Dim2D},
	"texture_2d_array":        {dim: ir.Dim2D, arrayed: true},
	"texture_3d":              {dim: ir.Dim3D},
	"texture_cube":            {dim: ir.DimCube},
	"texture_cube_array":      {dim: ir.DimCube, arrayed: true},
	"texture_multisampled_2d": {dim: ir.Dim2D, multisampled: true},
}

var depthTextures = map[string]textureShape{
	"texture_depth_2d":              {dim: ir.Dim2D},
	"texture_depth_2d_array":        {dim: ir.Dim2D, arrayed: true},
	"texture_depth_cube":            {dim: ir.DimCube},
	"texture_depth_cube_array":      {dim: ir.DimCube, arrayed: true},
	"texture_depth_multisampled_2d": {dim: ir.Dim2D, multisampled: true},
}

var storageTextures = map[string]textureShape{
	"texture_storage_1d":       {dim: ir.Dim1D},
	"texture_storage_2d":       {dim: ir.Dim2D},
	"texture_storage_2d_array": {dim: ir.Dim2D, arrayed: true},
	"texture_storage_3d":       {dim: ir.Dim3D},
}

var storageFormats = map[string]ir.StorageFormat{
	"r8unorm":      ir.StorageFormatR8Unorm,
	"r8snorm":      ir.StorageFormatR8Snorm,
	"r8uint":       ir.StorageFormatR8Uint,
	"r8sint":       ir.StorageFormatR8Sint,
	"r16uint":      ir.StorageFormatR16Uint,
	"r16sint":      ir.StorageFormatR16Sint,
	"r16float":     ir.StorageFormatR16Float,
	"rg8unorm":     ir.StorageFormatRg8Unorm,
	"rg8snorm":     ir.StorageFormatRg8Snorm,
	"rg8uint":      ir.StorageFormatRg8Uint,
	"rg8sint":      ir.StorageFormatRg8Sint,
	"r32uint":      ir.StorageFormatR32Uint,
	"r32sint":      ir.StorageFormatR32Sint,
	"r32float":     ir.StorageFormatR32Float,
	"rg16uint":     ir.StorageFormatRg16Uint,
	"rg16sint":     ir.StorageFormatRg16Sint,
	"rg16float":    ir.StorageFormatRg16Float,
	"rgba8unorm":   ir.StorageFormatRgba8Unorm,
	"rgba8snorm":   ir.StorageFormatRgba8Snorm,
	"rgba8uint":    ir.StorageFormatRgba8Uint,
	"rgba8sint":    ir.StorageFormatRgba8Sint,
	"rgb10a2unorm": ir.StorageFormatRgb10a2Unorm,
	"rg11b10float": ir.StorageFormatRg11b10Float,
	"rg32uint":     ir.StorageFormatRg32Uint,
	"rg32sint":     ir.StorageFormatRg32Sint,
	"rg32float":    ir.StorageFormatRg32Float,
	"rgba16uint":   ir.StorageFormatRgba16Uint,
	"rgba16sint":   ir.StorageFormatRgba16Sint,
	"rgba16float":  ir.StorageFormatRgba16Float,
	"rgba32uint":   ir.StorageFormatRgba32Uint,
	"rgba32sint":   ir.StorageFormatRgba32Sint,
	"rgba32float":  ir.StorageFormatRgba32Float,
}

var addressSpaces = map[string]ir.AddressSpace{
	"function":      ir.SpaceFunction,
	"private":       ir.SpacePrivate,
	"workgroup":     ir.SpaceWorkGroup,
	"uniform":       ir.SpaceUniform,
	"storage":       ir.SpaceStorage,
	"push_constant": ir.SpacePushConstant,
}

var accessModes = map[string]ir.StorageAccess{
	"read":       ir.StorageLoad,
	"write":      ir.StorageStore,
	"read_write": ir.StorageReadWrite,
}

func (l *Lowerer) addressSpace(id *Ident) (ir.AddressSpace, error) {
	space, ok := addressSpaces[id.Name]
	if !ok {
		return 0, errUnknown(l.source, ErrUnknownStorageClass, id.Span, "storage class")
	}
	return space, nil
}

func (l *Lowerer) storageAccess(id *Ident) (ir.StorageAccess, error) {
	access, ok := accessModes[id.Name]
	if !ok {
		return 0, errUnknown(l.source, ErrUnknownAccess, id.Span, "access")
	}
	return access, nil
}

// resolveType converts a type specifier to a registered type.
func (l *Lowerer) resolveType(typ Type) (ir.TypeHandle, error) {
	var (
		handle ir.TypeHandle
		err    error
	)
	switch t := typ.(type) {
	case *NamedType:
		handle, err = l.resolveNamedType(t)
	case *ArrayType:
		handle, err = l.resolveArrayType(t)
	case *PtrType:
		handle, err = l.resolvePointerType(t)
	default:
		return 0, newError(l.source, ErrUnknownType, typ.Pos(), "unsupported type specifier")
	}
	if err != nil {
		return 0, err
	}
	l.registry.SetSpan(handle, typ.Pos())
	return handle, nil
}

//nolint:gocyclo,cyclop // One case per family of predeclared types
func (l *Lowerer) resolveNamedType(t *NamedType) (ir.TypeHandle, error) {
	name := t.Name.Name

	if decl, ok := l.names[name]; ok && decl.kind == nameType {
		if err := l.templateCount(t, 0); err != nil {
			return 0, err
		}
		return ir.TypeHandle(decl.handle), nil
	}

	if scalar, ok := scalarTypes[name]; ok {
		if err := l.templateCount(t, 0); err != nil {
			return 0, err
		}
		return l.registerType("", scalar), nil
	}

	if size, ok := vectorSizes[name]; ok {
		if err := l.templateCount(t, 1); err != nil {
			return 0, err
		}
		scalar, err := l.scalarParam(t.TypeParams[0])
		if err != nil {
			return 0, err
		}
		return l.registerType("", ir.VectorType{Size: size, Scalar: scalar}), nil
	}

	if shape, ok := matrixShapes[name]; ok {
		if err := l.templateCount(t, 1); err != nil {
			return 0, err
		}
		scalar, err := l.scalarParam(t.TypeParams[0])
		if err != nil {
			return 0, err
		}
		return l.registerType("", ir.MatrixType{Columns: shape[0], Rows: shape[1], Scalar: scalar}), nil
	}

	switch name {
	case "atomic":
		if err := l.templateCount(t, 1); err != nil {
			return 0, err
		}
		scalar, err := l.scalarParam(t.TypeParams[0])
		if err != nil {
			return 0, err
		}
		return l.registerType("", ir.AtomicType{Scalar: scalar}), nil
	case "sampler", "sampler_comparison":
		if err := l.templateCount(t, 0); err != nil {
			return 0, err
		}
		return l.registerType("", ir.SamplerType{Comparison: name == "sampler_comparison"}), nil
	}

	if shape, ok := sampledTextures[name]; ok {
		if err := l.templateCount(t, 1); err != nil {
			return 0, err
		}
		scalar, err := l.scalarParam(t.TypeParams[0])
		if err != nil {
			return 0, err
		}
		if scalar.Width != 4 || scalar.Kind == ir.ScalarBool {
			return 0, errInvalidSampleType(l.source, t.TypeParams[0].Pos())
		}
		return l.registerType("", ir.ImageType{
			Dim:          shape.dim,
			Arrayed:      shape.arrayed,
			Multisampled: shape.multisampled,
			Class:        ir.ImageClassSampled,
			SampledKind:  scalar.Kind,
		}), nil
	}

	if shape, ok := depthTextures[name]; ok {
		if err := l.templateCount(t, 0); err != nil {
			return 0, err
		}
		return l.registerType("", ir.ImageType{
			Dim:          shape.dim,
			Arrayed:      shape.arrayed,
			Multisampled: shape.multisampled,
			Class:        ir.ImageClassDepth,
		}), nil
	}

	if shape, ok := storageTextures[name]; ok {
		return l.resolveStorageTexture(t, shape)
	}

	return 0, errUnknown(l.source, ErrUnknownType, t.Name.Span, "type")
}

func (l *Lowerer) resolveStorageTexture(t *NamedType, shape textureShape) (ir.TypeHandle, error) {
	if len(t.TypeParams) < 1 || len(t.TypeParams) > 2 {
		return 0, errArgumentCount(l.source, t.Span, "1 to 2", len(t.TypeParams))
	}
	formatSpan := t.TypeParams[0].Pos()
	formatType, _ := t.TypeParams[0].(*NamedType)
	if formatType == nil {
		return 0, errUnknown(l.source, ErrUnknownStorageFormat, formatSpan, "storage format")
	}
	format, ok := storageFormats[formatType.Name.Name]
	if !ok {
		return 0, errUnknown(l.source, ErrUnknownStorageFormat, formatSpan, "storage format")
	}

	access := ir.StorageStore
	if len(t.TypeParams) == 2 {
		accessType, _ := t.TypeParams[1].(*NamedType)
		if accessType == nil {
			return 0, errUnknown(l.source, ErrUnknownAccess, t.TypeParams[1].Pos(), "access")
		}
		a, err := l.storageAccess(&accessType.Name)
		if err != nil {
			return 0, err
		}
		access = a
	}

	return l.registerType("", ir.ImageType{
		Dim:           shape.dim,
		Arrayed:       shape.arrayed,
		Class:         ir.ImageClassStorage,
		StorageFormat: format,
		StorageAccess: access,
	}), nil
}

// scalarParam resolves a template parameter that must name a scalar.
func (l *Lowerer) scalarParam(param Type) (ir.ScalarType, error) {
	named, ok := param.(*NamedType)
	if !ok || len(named.TypeParams) != 0 {
		return ir.ScalarType{}, errUnknownScalarType(l.source, param.Pos())
	}
	scalar, ok := scalarTypes[named.Name.Name]
	if !ok {
		return ir.ScalarType{}, errUnknownScalarType(l.source, named.Span)
	}
	return scalar, nil
}

func (l *Lowerer) templateCount(t *NamedType, want int) error {
	if got := len(t.TypeParams); got != want {
		return newLabeledError(l.source, ErrArgumentCount, t.Span,
			fmt.Sprintf("type `%s` takes %d template parameters, found %d", t.Name.Name, want, got),
			"wrong number of template parameters")
	}
	return nil
}

func (l *Lowerer) resolveArrayType(t *ArrayType) (ir.TypeHandle, error) {
	base, err := l.resolveType(t.Element)
	if err != nil {
		return 0, err
	}
	var size ir.ArraySize
	if t.Size != nil {
		c, err := l.constant(t.Size)
		if err != nil {
			return 0, err
		}
		size.Constant = &c
	}
	return l.registerType("", ir.ArrayType{Base: base, Size: size, Stride: l.stride(base)}), nil
}

// stride is the distance between consecutive array elements.
func (l *Lowerer) stride(base ir.TypeHandle) uint32 {
	layout := l.layout(base)
	return ir.RoundUp(layout.Alignment, layout.Size)
}

func (l *Lowerer) resolvePointerType(t *PtrType) (ir.TypeHandle, error) {
	space, err := l.addressSpace(&t.AddressSpace)
	if err != nil {
		return 0, err
	}
	base, err := l.resolveType(t.PointeeType)
	if err != nil {
		return 0, err
	}
	access := defaultAccess(space)
	if t.AccessMode != nil {
		if access, err = l.storageAccess(t.AccessMode); err != nil {
			return 0, err
		}
	}
	return l.registerType("", ir.PointerType{Base: base, Space: space, Access: access}), nil
}

// typeHandle registers the type a resolution describes.
func (l *Lowerer) typeHandle(res ir.TypeResolution) ir.TypeHandle {
	if res.Handle != nil {
		return *res.Handle
	}
	return l.registerType("", res.Value)
}

// arraySizeConstant creates the i32 constant used as the length of an
// array whose size is inferred from a constructor.
func (l *Lowerer) arraySizeConstant(n int, span Span) ir.ConstantHandle {
	i32 := l.registerType("", scalarTypes["i32"])
	return l.scalarConstant(i32, ir.ScalarValue{Bits: uint64(int64(n)), Kind: ir.ScalarSint}, span)
}
