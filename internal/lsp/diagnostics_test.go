package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"veil/internal/ast"
	"veil/internal/errors"
)

func TestConvertCompilerErrors(t *testing.T) {
	diagnostics := convertCompilerErrors([]errors.CompilerError{
		errors.NewUnknownSymbol("missing", ast.Position{Line: 3, Column: 12}),
		errors.NewUnusedVariableWarning("x", ast.Position{Line: 1, Column: 9}),
	})
	require.Len(t, diagnostics, 2)

	assert.Equal(t, uint32(2), diagnostics[0].Range.Start.Line)
	assert.Equal(t, uint32(11), diagnostics[0].Range.Start.Character)
	assert.Equal(t, protocol.DiagnosticSeverityError, *diagnostics[0].Severity)
	assert.Equal(t, "E0202", diagnostics[0].Code.Value)

	assert.Equal(t, protocol.DiagnosticSeverityWarning, *diagnostics[1].Severity)
}

func TestConvertErrorsClampMissingPositions(t *testing.T) {
	diagnostics := convertCompilerErrors([]errors.CompilerError{
		errors.NewTupleNotAllowed(ast.Position{}),
	})
	require.Len(t, diagnostics, 1)
	assert.Equal(t, uint32(0), diagnostics[0].Range.Start.Line)
	assert.Equal(t, uint32(0), diagnostics[0].Range.Start.Character)
}
