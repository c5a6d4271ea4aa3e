package wgsl

import (
	"fmt"

	"github.com/gogpu/wgslfront/diag"
)

// ParseErrorKind tags the variant of a ParseError.
type ParseErrorKind uint8

const (
	ErrUnexpected ParseErrorKind = iota
	ErrBadNumber
	ErrReservedIdentifierPrefix
	ErrReservedKeyword
	ErrRedefinition
	ErrUnknownIdent
	ErrUnknownType
	ErrUnknownScalarType
	ErrUnknownAttribute
	ErrUnknownBuiltin
	ErrUnknownStorageClass
	ErrUnknownAccess
	ErrUnknownShaderStage
	ErrUnknownStorageFormat
	ErrUnknownConservativeDepth
	ErrUnknownInterpolation
	ErrUnknownLocalFunction
	ErrUnknownMember
	ErrZeroSizeOrAlign
	ErrInconsistentBinding
	ErrInvalidTextureSampleType
	ErrBadU32Constant
	ErrNotImage
	ErrBadTypeCast
	ErrBadForInitializer
	ErrInitializationTypeMismatch
	ErrMissingType
	ErrMissingInitializer
	ErrPointerNotIndexable
	ErrPointerNoMembers
	ErrNotPointer
	ErrNotReference
	ErrNotAssignable
	ErrArgumentCount
	ErrBadAttributeArgument
	ErrBadSwizzle
	ErrInvalidOperand
	ErrNotConstant
	ErrVoidValue
	ErrMisplacedAttribute
	ErrRepeatedAttribute
	ErrUnknownExtension
	ErrInvalidAddressSpace
)

// ParseError is the error produced by Parse for any lexical, syntactic, or
// name/type resolution failure. Only the first failure is reported.
type ParseError struct {
	Kind    ParseErrorKind
	Message string
	Labels  []diag.Label
	Notes   []string
	Line    int
	Column  int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Diagnostic returns the error as a renderable diagnostic.
func (e *ParseError) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{Message: e.Message, Labels: e.Labels, Notes: e.Notes}
}

// EmitToString renders the error against the source it was produced from.
func (e *ParseError) EmitToString(source string) string {
	return e.Diagnostic().Render("wgsl", source)
}

// Span returns the span of the first label.
func (e *ParseError) Span() Span {
	if len(e.Labels) == 0 {
		return Span{}
	}
	return e.Labels[0].Span
}

// newError creates a ParseError whose label repeats the message.
func newError(source string, kind ParseErrorKind, span Span, message string) *ParseError {
	return newLabeledError(source, kind, span, message, message)
}

// newLabeledError creates a ParseError with one labeled span.
func newLabeledError(source string, kind ParseErrorKind, span Span, message, label string) *ParseError {
	line, col := span.Location(source)
	return &ParseError{
		Kind:    kind,
		Message: message,
		Labels:  []diag.Label{{Span: span, Message: label}},
		Line:    line,
		Column:  col,
	}
}

func errUnexpected(source string, found Token, expected string) *ParseError {
	return newLabeledError(source, ErrUnexpected, found.Span,
		fmt.Sprintf("expected %s, found %s", expected, found.describe()),
		"expected "+expected)
}

func errReservedPrefix(source string, span Span) *ParseError {
	return newLabeledError(source, ErrReservedIdentifierPrefix, span,
		fmt.Sprintf("Identifier starts with a reserved prefix: '%s'", span.Text(source)),
		"invalid identifier")
}

func errReservedKeyword(source string, span Span) *ParseError {
	name := span.Text(source)
	return newLabeledError(source, ErrReservedKeyword, span,
		fmt.Sprintf("name `%s` is a reserved keyword", name),
		fmt.Sprintf("definition of `%s`", name))
}

func errRedefinition(source string, previous, current Span) *ParseError {
	err := newLabeledError(source, ErrRedefinition, previous,
		fmt.Sprintf("redefinition of `%s`", current.Text(source)),
		fmt.Sprintf("previous definition of `%s`", previous.Text(source)))
	err.Labels = append(err.Labels, diag.Label{
		Span:    current,
		Message: fmt.Sprintf("redefinition of `%s`", current.Text(source)),
	})
	return err
}

// errUnknown creates the "unknown <what>: 'name'" family of errors.
func errUnknown(source string, kind ParseErrorKind, span Span, what string) *ParseError {
	return newLabeledError(source, kind, span,
		fmt.Sprintf("unknown %s: '%s'", what, span.Text(source)),
		"unknown "+what)
}

func errUnknownIdent(source string, span Span) *ParseError {
	return newLabeledError(source, ErrUnknownIdent, span,
		fmt.Sprintf("no definition in scope for identifier: '%s'", span.Text(source)),
		"unknown identifier")
}

func errUnknownScalarType(source string, span Span) *ParseError {
	err := errUnknown(source, ErrUnknownScalarType, span, "scalar type")
	err.Notes = append(err.Notes,
		"Valid scalar types are f16, f32, f64, i8, i16, i32, i64, u8, u16, u32, u64, bool")
	return err
}

func errUnknownLocalFunction(source string, span Span) *ParseError {
	return newLabeledError(source, ErrUnknownLocalFunction, span,
		fmt.Sprintf("unknown local function `%s`", span.Text(source)),
		"unknown local function")
}

func errInvalidSampleType(source string, span Span) *ParseError {
	return newLabeledError(source, ErrInvalidTextureSampleType, span,
		fmt.Sprintf("texture sample type must be one of f32, i32 or u32, but found %s", span.Text(source)),
		"must be one of f32, i32 or u32")
}

func errTypeMismatch(source string, name Span, found string) *ParseError {
	return newLabeledError(source, ErrInitializationTypeMismatch, name,
		fmt.Sprintf("the type of `%s` is expected to be `%s`", name.Text(source), found),
		fmt.Sprintf("definition of `%s`", name.Text(source)))
}

func errMissingType(source string, name Span) *ParseError {
	return newLabeledError(source, ErrMissingType, name,
		fmt.Sprintf("variable `%s` needs a type", name.Text(source)),
		fmt.Sprintf("definition of `%s`", name.Text(source)))
}

func errMissingInitializer(source string, name Span) *ParseError {
	return newLabeledError(source, ErrMissingInitializer, name,
		fmt.Sprintf("constant `%s` needs an initializer", name.Text(source)),
		fmt.Sprintf("definition of `%s`", name.Text(source)))
}

func errBadU32Constant(source string, span Span) *ParseError {
	return newLabeledError(source, ErrBadU32Constant, span,
		fmt.Sprintf("expected unsigned integer constant expression, found `%s`", span.Text(source)),
		"expected unsigned integer")
}

func errNotImage(source string, span Span) *ParseError {
	return newLabeledError(source, ErrNotImage, span,
		fmt.Sprintf("expected an image, but found '%s' which is not an image", span.Text(source)),
		"not an image")
}

func errBadTypeCast(source string, span Span, from, to string) *ParseError {
	return newError(source, ErrBadTypeCast, span, fmt.Sprintf("cannot cast a %s to a %s", from, to))
}

func errNotConstant(source string, span Span) *ParseError {
	return newLabeledError(source, ErrNotConstant, span,
		fmt.Sprintf("expected a constant expression, found `%s`", span.Text(source)),
		"not a constant expression")
}

func errArgumentCount(source string, span Span, expected string, found int) *ParseError {
	return newLabeledError(source, ErrArgumentCount, span,
		fmt.Sprintf("wrong number of arguments: expected %s, found %d", expected, found),
		"wrong number of arguments")
}

func errVoidValue(source string, span Span) *ParseError {
	return newLabeledError(source, ErrVoidValue, span,
		fmt.Sprintf("`%s` does not produce a value", span.Text(source)),
		"used as a value")
}

func errBadNumber(source string, span Span, reason string) *ParseError {
	return newLabeledError(source, ErrBadNumber, span,
		fmt.Sprintf("invalid numeric literal `%s`: %s", span.Text(source), reason),
		"invalid numeric literal")
}

func errInvalidOperand(source string, span Span, message string) *ParseError {
	return newLabeledError(source, ErrInvalidOperand, span, message, "invalid operand")
}
