package unroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/grammar"
	"veil/internal/ast"
)

func unrolled(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := grammar.ParseSource("test.veil", source)
	require.NoError(t, err)
	program, err = New().Run(program)
	require.NoError(t, err)
	return program
}

func countIterations(block *ast.Block) int {
	count := 0
	for _, stmt := range block.Statements {
		switch stmt := stmt.(type) {
		case *ast.IterationStmt:
			count++
		case *ast.Block:
			count += countIterations(stmt)
		case *ast.ConditionalStmt:
			count += countIterations(stmt.Block)
			if next, ok := stmt.Next.(*ast.Block); ok {
				count += countIterations(next)
			}
		}
	}
	return count
}

func TestUnrollsThreeRounds(t *testing.T) {
	program := unrolled(t, `function f(a: u8) -> u8 {
    let x: u8 = 0u8;
    for i: u32 in 0u32..3u32 {
        x += a;
    }
    return x;
}`)

	body := program.Functions[0].Block.Statements
	// let, three unrolled round blocks, return.
	require.Len(t, body, 5)

	for round := 0; round < 3; round++ {
		block, ok := body[1+round].(*ast.Block)
		require.True(t, ok)
		def, ok := block.Statements[0].(*ast.DefinitionStmt)
		require.True(t, ok)
		assert.Equal(t, "i", def.Name.Name)
		literal := def.Value.(*ast.LiteralExpr)
		assert.Equal(t, []string{"0", "1", "2"}[round], literal.Raw)
		assert.Equal(t, ast.TypeU32, literal.Kind)
	}
	assert.Zero(t, countIterations(program.Functions[0].Block))
}

func TestEmptyRangeUnrollsToNothing(t *testing.T) {
	program := unrolled(t, `function f(a: u8) -> u8 {
    let x: u8 = 0u8;
    for i: u32 in 2u32..2u32 {
        x += a;
    }
    return x;
}`)

	body := program.Functions[0].Block.Statements
	assert.Len(t, body, 2)
}

func TestNestedIterationsUnrollCompletely(t *testing.T) {
	program := unrolled(t, `function f(a: u8) -> u8 {
    let x: u8 = 0u8;
    for i: u32 in 0u32..2u32 {
        for j: u32 in 0u32..2u32 {
            x += a;
        }
    }
    return x;
}`)

	assert.Zero(t, countIterations(program.Functions[0].Block))
}

func TestNonLiteralBoundIsInternalError(t *testing.T) {
	program, err := grammar.ParseSource("test.veil", `function f(a: u32) -> u32 {
    let x: u32 = 0u32;
    for i: u32 in 0u32..a {
        x += i;
    }
    return x;
}`)
	require.NoError(t, err)

	// The type checker rejects this upstream; reaching the unroller with a
	// non-literal bound is a compiler defect, not a user diagnostic.
	_, err = New().Run(program)
	require.Error(t, err)
}
