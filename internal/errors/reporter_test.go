package errors

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"veil/internal/ast"
)

func TestFormatPointsAtTheOffendingLine(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	source := "function f(a: u8) -> u8 {\n    let x: u8 = true;\n    return x;\n}"
	reporter := NewReporter("main.veil", source)

	err := NewTypeShouldBe("bool", "u8", ast.Position{Line: 2, Column: 17})
	formatted := reporter.Format(err)

	assert.Contains(t, formatted, "error[E0102]")
	assert.Contains(t, formatted, "main.veil:2:17")
	assert.Contains(t, formatted, "let x: u8 = true;")
	assert.Contains(t, formatted, "^")
}

func TestFormatIncludesSuggestionsAndNotes(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	reporter := NewReporter("main.veil", "record R { gates: u64 }")
	err := NewRequiredRecordVariable("owner", "address", ast.Position{Line: 1, Column: 1})
	formatted := reporter.Format(err)

	assert.Contains(t, formatted, "help:")
	assert.Contains(t, formatted, "owner: address")
}

func TestFormatAllPreservesOrder(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	reporter := NewReporter("main.veil", "x")
	out := reporter.FormatAll([]CompilerError{
		NewUnknownSymbol("a", ast.Position{Line: 1, Column: 1}),
		NewUnknownSymbol("b", ast.Position{Line: 1, Column: 1}),
	})
	assert.Less(t, strings.Index(out, "'a'"), strings.Index(out, "'b'"))
}
