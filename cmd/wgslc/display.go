package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"github.com/gogpu/wgslfront"
)

var (
	successColorFG = pterm.FgLightGreen
	successStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	errorColorFG   = pterm.FgRed
	errorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	infoColorFG    = pterm.FgLightCyan
	infoStyleBG    = pterm.NewStyle(pterm.BgLightCyan, pterm.FgBlack)
)

func printErrorMessage(tag string, err error) {
	errorStyleBG.Print(tag)
	errorColorFG.Println(" " + err.Error())
}

func printInfoMessage(tag, msg string) {
	infoStyleBG.Print(tag)
	infoColorFG.Println(" " + msg)
}

func printSuccessMessage(tag, msg string) {
	successStyleBG.Print(tag)
	successColorFG.Println(" " + msg)
}

// printDiagnostic prints the rendered diagnostic uncolored on stderr so it
// can be piped and compared.
func printDiagnostic(err error, source string) {
	errorStyleBG.Print("Shader Error")
	fmt.Println()
	fmt.Fprint(os.Stderr, wgslfront.EmitToString(err, source))
}
