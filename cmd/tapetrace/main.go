// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"

	"tapeir/grammar"
	"tapeir/internal/diag"
	"tapeir/internal/reftracer"
	"tapeir/internal/tape"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: tapetrace <file.tr> <function> [args...]")
		os.Exit(1)
	}

	path := os.Args[1]
	fnName := os.Args[2]
	rawArgs := os.Args[3:]

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("Failed to read file: %s", err)
		os.Exit(1)
	}

	ast, err := grammar.ParseSource(path, string(source))
	if err != nil {
		os.Exit(1) // ParseSource already reported the caret-style error.
	}

	args := make([]any, len(rawArgs))
	for i, raw := range rawArgs {
		args[i] = parseArg(raw)
	}

	prog := reftracer.NewProgram(ast)
	t, err := prog.TraceCall(fnName, args)
	if err != nil {
		color.Red("Trace failed: %s", err)
		os.Exit(1)
	}

	fmt.Println("Traced tape:")
	fmt.Print(t.String())

	if err := tape.Primitivize(t, prog.IsPrimitive, prog.Trace, tape.DefaultOptions()); err != nil {
		color.Red("Primitivize failed: %s", err)
		os.Exit(1)
	}

	fmt.Println("\nPrimitivized tape:")
	fmt.Print(t.String())

	if diags := diag.Verify(t); len(diags) > 0 {
		for _, d := range diags {
			fmt.Print(d.Format())
		}
		os.Exit(1)
	}

	result, err := tape.PlayWith(t, tape.DefaultOptions(), args...)
	if err != nil {
		color.Red("Play failed: %s", err)
		os.Exit(1)
	}

	color.Green("\n✅ %s(%v) = %v", fnName, rawArgs, result)
}

// parseArg converts a command-line argument into the demo language's two
// scalar kinds: a float64 if it parses as a number, a bool for "true"/
// "false", a plain string otherwise.
func parseArg(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
