package lsp

import (
	"github.com/alecthomas/participle/v2"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"veil/internal/errors"
)

// convertCompilerErrors maps pipeline diagnostics to LSP diagnostics.
func convertCompilerErrors(errs []errors.CompilerError) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(errs))
	for _, err := range errs {
		severity := protocol.DiagnosticSeverityError
		if err.Level == errors.Warning {
			severity = protocol.DiagnosticSeverityWarning
		}

		line := uint32(0)
		if err.Position.Line > 0 {
			line = uint32(err.Position.Line - 1)
		}
		column := uint32(0)
		if err.Position.Column > 0 {
			column = uint32(err.Position.Column - 1)
		}
		length := uint32(1)
		if err.Length > 0 {
			length = uint32(err.Length)
		}

		code := string(err.Code)
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: column},
				End:   protocol.Position{Line: line, Character: column + length},
			},
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: code},
			Message:  err.Message,
		})
	}
	return diagnostics
}

// convertParseError maps a grammar error to a single LSP diagnostic.
func convertParseError(err error) []protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	diagnostic := protocol.Diagnostic{
		Severity: &severity,
		Message:  err.Error(),
	}
	if pe, ok := err.(participle.Error); ok {
		pos := pe.Position()
		line := uint32(0)
		if pos.Line > 0 {
			line = uint32(pos.Line - 1)
		}
		column := uint32(0)
		if pos.Column > 0 {
			column = uint32(pos.Column - 1)
		}
		diagnostic.Range = protocol.Range{
			Start: protocol.Position{Line: line, Character: column},
			End:   protocol.Position{Line: line, Character: column + 1},
		}
		diagnostic.Message = pe.Message()
	}
	return []protocol.Diagnostic{diagnostic}
}
