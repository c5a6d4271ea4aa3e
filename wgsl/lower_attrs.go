package wgsl

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/gogpu/wgslfront/ir"
)

// attributePlace says which declaration an attribute list belongs to.
type attributePlace uint8

const (
	placeGlobal attributePlace = iota
	placeFunction
	placeIO // function parameters and results
	placeMember
	placeStruct
)

var attributePlaces = map[string][]attributePlace{
	"group":            {placeGlobal},
	"binding":          {placeGlobal},
	"builtin":          {placeIO, placeMember},
	"location":         {placeIO, placeMember},
	"interpolate":      {placeIO, placeMember},
	"invariant":        {placeIO, placeMember},
	"stage":            {placeFunction},
	"vertex":           {placeFunction},
	"fragment":         {placeFunction},
	"compute":          {placeFunction},
	"workgroup_size":   {placeFunction},
	"early_depth_test": {placeFunction},
	"size":             {placeMember},
	"align":            {placeMember},
	"block":            {placeStruct},
}

var shaderStages = map[string]ir.ShaderStage{
	"vertex":   ir.StageVertex,
	"fragment": ir.StageFragment,
	"compute":  ir.StageCompute,
}

var conservativeDepths = map[string]ir.ConservativeDepth{
	"greater_equal": ir.DepthGreaterEqual,
	"less_equal":    ir.DepthLessEqual,
	"unchanged":     ir.DepthUnchanged,
}

var interpolationKinds = map[string]ir.InterpolationKind{
	"perspective": ir.InterpolationPerspective,
	"linear":      ir.InterpolationLinear,
	"flat":        ir.InterpolationFlat,
}

var interpolationSamplings = map[string]ir.InterpolationSampling{
	"center":   ir.SamplingCenter,
	"centroid": ir.SamplingCentroid,
	"sample":   ir.SamplingSample,
}

// attributeSet is the decoded form of an attribute list.
type attributeSet struct {
	group   *uint32
	binding *uint32

	builtin       *ir.BuiltinValue
	location      *uint32
	interpolation *ir.Interpolation
	invariant     bool
	ioSpan        Span // covers every I/O binding attribute

	stage          *ir.ShaderStage
	workgroup      *[3]uint32
	earlyDepthTest *ir.EarlyDepthTest

	size  *uint32
	align *uint32
}

// ioBinding returns the shader I/O binding, or nil if there is none.
func (s *attributeSet) ioBinding() ir.Binding {
	switch {
	case s.builtin != nil:
		return ir.BuiltinBinding{Builtin: *s.builtin}
	case s.location != nil:
		return ir.LocationBinding{Location: *s.location, Interpolation: s.interpolation}
	}
	return nil
}

// attributes decodes an attribute list found at place.
func (l *Lowerer) attributes(attrs []Attribute, place attributePlace) (*attributeSet, error) {
	set := &attributeSet{}
	seen := make(map[string]bool, len(attrs))
	for i := range attrs {
		attr := &attrs[i]
		name := attr.Name.Name
		places, known := attributePlaces[name]
		if !known {
			return nil, errUnknown(l.source, ErrUnknownAttribute, attr.Name.Span, "attribute")
		}
		if !slices.Contains(places, place) {
			return nil, newLabeledError(l.source, ErrMisplacedAttribute, attr.Span,
				fmt.Sprintf("attribute '@%s' is not allowed here", name), "misplaced attribute")
		}
		if seen[name] {
			return nil, newLabeledError(l.source, ErrRepeatedAttribute, attr.Span,
				fmt.Sprintf("repeated attribute: '%s'", name), "repeated attribute")
		}
		seen[name] = true

		if err := l.attribute(set, attr); err != nil {
			return nil, err
		}
	}

	inconsistent := (set.builtin != nil && set.location != nil) ||
		(set.interpolation != nil && set.location == nil) ||
		(set.invariant && set.builtin == nil)
	if inconsistent {
		return nil, newError(l.source, ErrInconsistentBinding, set.ioSpan, "input/output binding is not consistent")
	}
	return set, nil
}

//nolint:gocyclo,cyclop,funlen // One case per attribute
func (l *Lowerer) attribute(set *attributeSet, attr *Attribute) error {
	switch attr.Name.Name {
	case "group", "binding":
		if err := l.attributeArgs(attr, 1, 1); err != nil {
			return err
		}
		n, err := l.u32Arg(attr.Args[0])
		if err != nil {
			return err
		}
		if attr.Name.Name == "group" {
			set.group = &n
		} else {
			set.binding = &n
		}

	case "builtin":
		if err := l.attributeArgs(attr, 1, 1); err != nil {
			return err
		}
		id, err := l.identArg(attr.Args[0])
		if err != nil {
			return err
		}
		builtin, ok := ir.BuiltinNames[id.Name]
		if !ok {
			return errUnknown(l.source, ErrUnknownBuiltin, id.Span, "builtin")
		}
		set.builtin = &builtin
		set.ioSpan = set.ioSpan.Join(attr.Span)

	case "location":
		if err := l.attributeArgs(attr, 1, 1); err != nil {
			return err
		}
		n, err := l.u32Arg(attr.Args[0])
		if err != nil {
			return err
		}
		set.location = &n
		set.ioSpan = set.ioSpan.Join(attr.Span)

	case "interpolate":
		if err := l.attributeArgs(attr, 1, 2); err != nil {
			return err
		}
		id, err := l.identArg(attr.Args[0])
		if err != nil {
			return err
		}
		kind, ok := interpolationKinds[id.Name]
		if !ok {
			return errUnknown(l.source, ErrUnknownInterpolation, id.Span, "interpolation")
		}
		interp := &ir.Interpolation{Kind: kind}
		if len(attr.Args) == 2 {
			id, err := l.identArg(attr.Args[1])
			if err != nil {
				return err
			}
			if interp.Sampling, ok = interpolationSamplings[id.Name]; !ok {
				return errUnknown(l.source, ErrUnknownInterpolation, id.Span, "sampling")
			}
		}
		set.interpolation = interp
		set.ioSpan = set.ioSpan.Join(attr.Span)

	case "invariant":
		if err := l.attributeArgs(attr, 0, 0); err != nil {
			return err
		}
		set.invariant = true
		set.ioSpan = set.ioSpan.Join(attr.Span)

	case "stage":
		if err := l.attributeArgs(attr, 1, 1); err != nil {
			return err
		}
		id, err := l.identArg(attr.Args[0])
		if err != nil {
			return err
		}
		stage, ok := shaderStages[id.Name]
		if !ok {
			return errUnknown(l.source, ErrUnknownShaderStage, id.Span, "shader stage")
		}
		return l.setStage(set, attr, stage)

	case "vertex", "fragment", "compute":
		if err := l.attributeArgs(attr, 0, 0); err != nil {
			return err
		}
		return l.setStage(set, attr, shaderStages[attr.Name.Name])

	case "workgroup_size":
		if err := l.attributeArgs(attr, 1, 3); err != nil {
			return err
		}
		size := [3]uint32{1, 1, 1}
		for i, arg := range attr.Args {
			n, err := l.u32Arg(arg)
			if err != nil {
				return err
			}
			size[i] = n
		}
		set.workgroup = &size

	case "early_depth_test":
		if err := l.attributeArgs(attr, 0, 1); err != nil {
			return err
		}
		test := &ir.EarlyDepthTest{}
		if len(attr.Args) == 1 {
			id, err := l.identArg(attr.Args[0])
			if err != nil {
				return err
			}
			depth, ok := conservativeDepths[id.Name]
			if !ok {
				return errUnknown(l.source, ErrUnknownConservativeDepth, id.Span, "conservative depth")
			}
			test.Conservative = &depth
		}
		set.earlyDepthTest = test

	case "size", "align":
		if err := l.attributeArgs(attr, 1, 1); err != nil {
			return err
		}
		n, err := l.u32Arg(attr.Args[0])
		if err != nil {
			return err
		}
		if n == 0 {
			return newError(l.source, ErrZeroSizeOrAlign, attr.Args[0].Pos(),
				"struct member size or alignment must not be 0")
		}
		if attr.Name.Name == "size" {
			set.size = &n
		} else {
			set.align = &n
		}

	case "block":
		// Accepted for compatibility with older shaders; it has no effect.
	}
	return nil
}

func (l *Lowerer) setStage(set *attributeSet, attr *Attribute, stage ir.ShaderStage) error {
	if set.stage != nil {
		return newLabeledError(l.source, ErrRepeatedAttribute, attr.Span,
			"a function can only have one shader stage", "repeated attribute")
	}
	set.stage = &stage
	return nil
}

func (l *Lowerer) attributeArgs(attr *Attribute, minArgs, maxArgs int) error {
	n := len(attr.Args)
	if n >= minArgs && n <= maxArgs {
		return nil
	}
	want := strconv.Itoa(minArgs)
	if maxArgs != minArgs {
		want = fmt.Sprintf("%d to %d", minArgs, maxArgs)
	}
	return newLabeledError(l.source, ErrBadAttributeArgument, attr.Span,
		fmt.Sprintf("attribute '@%s' takes %s arguments, found %d", attr.Name.Name, want, n),
		"wrong number of arguments")
}

func (l *Lowerer) identArg(expr Expr) (*Ident, error) {
	id, ok := expr.(*Ident)
	if !ok {
		return nil, newLabeledError(l.source, ErrBadAttributeArgument, expr.Pos(),
			fmt.Sprintf("expected identifier, found `%s`", expr.Pos().Text(l.source)),
			"expected identifier")
	}
	return id, nil
}

// u32Arg evaluates an attribute argument that must be a non-negative
// integer literal.
func (l *Lowerer) u32Arg(expr Expr) (uint32, error) {
	v, ok, err := l.constInt(expr)
	if err != nil {
		return 0, err
	}
	if !ok || v < 0 || v > math.MaxUint32 {
		return 0, errBadU32Constant(l.source, expr.Pos())
	}
	return uint32(v), nil
}
