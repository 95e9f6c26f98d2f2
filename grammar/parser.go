package grammar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle/v2"

	"veil/internal/ast"
)

// Unbounded lookahead lets the parser back out of a circuit-literal parse
// when an `if c {` condition turns out to be a bare identifier.
var parser = participle.MustBuild[SourceFile](
	participle.Lexer(VeilLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(participle.MaxLookahead),
)

// ParseSource parses Veil source text into the mid-end AST. The program
// takes its name from the file name.
func ParseSource(filename, source string) (*ast.Program, error) {
	file, err := parser.ParseString(filename, source)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(filename), ".veil")
	return convertFile(name, file)
}

// ParseFile reads and parses a .veil file.
func ParseFile(path string) (*ast.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseSource(path, string(source))
}
