// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"tapeir/grammar"
	"tapeir/internal/reftracer"
	"tapeir/internal/tape"
)

const PROMPT = ">> "

// Start runs an interactive loop: blank-line-terminated blocks of source are
// parsed as function declarations, and "call <fn> <args...>" traces,
// primitivizes and plays the named function against the given arguments.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	prog := reftracer.NewProgram(&grammar.AST{})

	var pending strings.Builder
	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()

		if strings.HasPrefix(strings.TrimSpace(line), "call ") {
			runCall(out, prog, strings.TrimSpace(line)[len("call "):])
			continue
		}

		if strings.TrimSpace(line) == "" {
			if pending.Len() == 0 {
				continue
			}
			ast, err := grammar.ParseSource("<repl>", pending.String())
			pending.Reset()
			if err != nil {
				continue // ParseSource already reported the error.
			}
			prog = reftracer.NewProgram(ast)
			fmt.Fprintln(out, ast.String())
			continue
		}

		pending.WriteString(line)
		pending.WriteByte('\n')
	}
}

func runCall(out io.Writer, prog *reftracer.Program, rest string) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		color.Red("usage: call <function> [args...]")
		return
	}
	name := fields[0]
	args := make([]any, len(fields)-1)
	for i, raw := range fields[1:] {
		args[i] = parseArg(raw)
	}

	t, err := prog.TraceCall(name, args)
	if err != nil {
		color.Red("trace failed: %s", err)
		return
	}
	if err := tape.Primitivize(t, prog.IsPrimitive, prog.Trace, tape.DefaultOptions()); err != nil {
		color.Red("primitivize failed: %s", err)
		return
	}

	result, err := tape.PlayWith(t, tape.DefaultOptions(), args...)
	if err != nil {
		color.Red("play failed: %s", err)
		return
	}
	color.Green("%s(%v) = %v", name, fields[1:], result)
	fmt.Fprint(out, t.String())
}

func parseArg(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
