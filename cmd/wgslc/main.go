// Command wgslc checks WGSL shaders.
//
// Usage:
//
//	wgslc check <file> [--config path] [--flags list] [--caps list]
//	wgslc dump <file>
//	wgslc version
//
// Examples:
//
//	wgslc check shader.wgsl                  # Parse and validate
//	wgslc check shader.wgsl -f blocks,bindings
//	wgslc check shader.wgsl -C float64       # Accept f64 types
//	wgslc dump shader.wgsl                   # Print the lowered IR
package main

import (
	"fmt"
	"os"

	"github.com/ComedicChimera/olive"
	"github.com/kr/pretty"

	"github.com/gogpu/wgslfront"
)

const wgslcVersion = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	cli := olive.NewCLI("wgslc", "wgslc parses and validates WGSL shaders", true)

	checkCmd := cli.AddSubcommand("check", "parse and validate a shader", true)
	checkCmd.AddPrimaryArg("file", "the WGSL source file", true)
	checkCmd.AddStringArg("config", "c", "the configuration file (default: "+defaultConfigPath+")", false)
	checkCmd.AddStringArg("flags", "f", "comma-separated validation checks to run", false)
	checkCmd.AddStringArg("caps", "C", "comma-separated capabilities to accept", false)

	dumpCmd := cli.AddSubcommand("dump", "parse a shader and print its IR", true)
	dumpCmd.AddPrimaryArg("file", "the WGSL source file", true)

	cli.AddSubcommand("version", "print the wgslc version", false)

	result, err := olive.ParseArgs(cli, args)
	if err != nil {
		printErrorMessage("Usage Error", err)
		return 2
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "check":
		return execCheckCommand(subResult)
	case "dump":
		return execDumpCommand(subResult)
	case "version":
		printInfoMessage("wgslc Version", wgslcVersion)
	}
	return 0
}

func execCheckCommand(result *olive.ArgParseResult) int {
	path, _ := result.PrimaryArg()

	configPath, explicit := stringArg(result, "config")
	if !explicit {
		configPath = defaultConfigPath
	}
	cfg, err := loadConfig(configPath, explicit)
	if err != nil {
		printErrorMessage("Config Error", err)
		return 2
	}
	if list, ok := stringArg(result, "flags"); ok {
		cfg.Validate = splitList(list)
	}
	if list, ok := stringArg(result, "caps"); ok {
		cfg.Capabilities = splitList(list)
	}
	flags, capabilities, err := cfg.resolve()
	if err != nil {
		printErrorMessage("Config Error", err)
		return 2
	}

	source, err := os.ReadFile(path)
	if err != nil {
		printErrorMessage("File Error", err)
		return 2
	}

	if _, _, err := wgslfront.Check(string(source), flags, capabilities); err != nil {
		printDiagnostic(err, string(source))
		return 1
	}
	printSuccessMessage("OK", path)
	return 0
}

func execDumpCommand(result *olive.ArgParseResult) int {
	path, _ := result.PrimaryArg()
	source, err := os.ReadFile(path)
	if err != nil {
		printErrorMessage("File Error", err)
		return 2
	}

	module, err := wgslfront.Parse(string(source))
	if err != nil {
		printDiagnostic(err, string(source))
		return 1
	}
	fmt.Printf("%# v\n", pretty.Formatter(module))
	return 0
}

func stringArg(result *olive.ArgParseResult, name string) (string, bool) {
	v, ok := result.Arguments[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
