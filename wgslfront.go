// Package wgslfront is a WGSL shader front end.
//
// It parses WGSL source into an IR module and validates the module. The
// first problem found is returned as an error that renders against the
// source as a diagnostic:
//
//	module, info, err := wgslfront.Check(source, ir.ValidationFlagsAll, 0)
//	if err != nil {
//	    fmt.Print(wgslfront.EmitToString(err, source))
//	    return
//	}
//
// Parse and Validate expose the two stages separately.
package wgslfront

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgslfront/ir"
	"github.com/gogpu/wgslfront/wgsl"
)

// Parse parses and lowers WGSL source. The error, if any, is a
// *wgsl.ParseError.
func Parse(source string) (*ir.Module, error) {
	return wgsl.Parse(source)
}

// Validate runs the selected checks over a module, accepting the given
// capabilities. The error, if any, is an *ir.ValidationError.
func Validate(module *ir.Module, flags ir.ValidationFlags, capabilities ir.Capabilities) (*ir.ModuleInfo, error) {
	return ir.NewValidator(flags, capabilities).Validate(module)
}

// Check parses and validates source.
func Check(source string, flags ir.ValidationFlags, capabilities ir.Capabilities) (*ir.Module, *ir.ModuleInfo, error) {
	module, err := Parse(source)
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}
	info, err := Validate(module, flags, capabilities)
	if err != nil {
		return module, nil, fmt.Errorf("validate: %w", err)
	}
	return module, info, nil
}

// EmitToString renders an error returned by this package against the
// source it came from. Other errors render as their message.
func EmitToString(err error, source string) string {
	var parseErr *wgsl.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.EmitToString(source)
	}
	var validationErr *ir.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.EmitToString(source)
	}
	return "error: " + err.Error() + "\n"
}
