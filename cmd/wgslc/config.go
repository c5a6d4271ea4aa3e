package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/gogpu/wgslfront/ir"
)

const defaultConfigPath = "wgslc.toml"

// config is the contents of a wgslc.toml file.
//
//	validate = ["expressions", "blocks"]
//	capabilities = ["float64"]
type config struct {
	// Validate names the checks to run. Empty means all of them.
	Validate     []string `toml:"validate"`
	Capabilities []string `toml:"capabilities"`
}

var validationFlagNames = map[string]ir.ValidationFlags{
	"all":            ir.ValidationFlagsAll,
	"none":           0,
	"expressions":    ir.ValidateExpressions,
	"blocks":         ir.ValidateBlocks,
	"struct_layouts": ir.ValidateStructLayouts,
	"constants":      ir.ValidateConstants,
	"bindings":       ir.ValidateBindings,
}

var capabilityNames = map[string]ir.Capabilities{
	"push_constant":       ir.CapabilityPushConstant,
	"float64":             ir.CapabilityFloat64,
	"primitive_index":     ir.CapabilityPrimitiveIndex,
	"sample_rate_shading": ir.CapabilitySampleRateShading,
}

// loadConfig reads the config file at path. A missing file is an error only
// when required is set.
func loadConfig(path string, required bool) (*config, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return &config{}, nil
		}
		return nil, err
	}
	return parseConfig(buff)
}

func parseConfig(buff []byte) (*config, error) {
	cfg := &config{}
	if err := toml.Unmarshal(buff, cfg); err != nil {
		return nil, fmt.Errorf("malformed config file: %w", err)
	}
	return cfg, nil
}

// resolve converts the configured names into validator settings.
func (c *config) resolve() (ir.ValidationFlags, ir.Capabilities, error) {
	flags := ir.ValidationFlagsAll
	if len(c.Validate) > 0 {
		flags = 0
		for _, name := range c.Validate {
			flag, ok := validationFlagNames[name]
			if !ok {
				return 0, 0, fmt.Errorf("unknown validation check %q", name)
			}
			flags |= flag
		}
	}

	var capabilities ir.Capabilities
	for _, name := range c.Capabilities {
		capability, ok := capabilityNames[name]
		if !ok {
			return 0, 0, fmt.Errorf("unknown capability %q", name)
		}
		capabilities |= capability
	}
	return flags, capabilities, nil
}

func splitList(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
