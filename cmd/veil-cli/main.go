// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"

	"veil/grammar"
	"veil/internal/config"
	"veil/internal/errors"
	"veil/internal/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: veil <file.veil>")
		os.Exit(1)
	}
	path := os.Args[1]

	commonlog.Configure(0, nil)
	color.NoColor = color.NoColor || !isatty.IsTerminal(os.Stdout.Fd())

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	program, err := grammar.ParseSource(path, string(source))
	if err != nil {
		reportParseError(string(source), err)
		os.Exit(1)
	}

	options, err := config.Load(path)
	if err != nil {
		color.Red("bad %s: %s", config.FileName, err)
		os.Exit(1)
	}

	handler := errors.NewHandler()
	compiled, artifacts, err := pipeline.New(handler, options).Run(program)
	writeArtifacts(path, artifacts)

	reporter := errors.NewReporter(path, string(source))
	if warnings := handler.Warnings(); len(warnings) > 0 {
		fmt.Print(reporter.FormatAll(warnings))
	}
	if err != nil {
		color.Red("internal compiler error: %s", err)
		os.Exit(2)
	}
	if compiled == nil {
		fmt.Print(reporter.FormatAll(handler.Errors()))
		os.Exit(1)
	}

	fmt.Println(compiled.String())
	color.Green("✅ Successfully compiled %s", path)
}

// writeArtifacts saves requested intermediate forms next to the source file.
func writeArtifacts(path string, artifacts *pipeline.Artifacts) {
	if artifacts == nil {
		return
	}
	save := func(suffix, content string) {
		if content == "" {
			return
		}
		out := strings.TrimSuffix(path, ".veil") + suffix
		if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
			color.Yellow("could not write %s: %s", out, err)
		}
	}
	save(".initial.ast", artifacts.Initial)
	save(".unrolled.ast", artifacts.Unrolled)
	save(".ssa.ast", artifacts.SSA)
}

// reportParseError prints a friendly caret-style parse error message.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("Unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("Syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("❌ Syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("→ %s\n", pe.Message())
}
