package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/grammar"
	"veil/internal/ast"
	"veil/internal/ssa"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := grammar.ParseSource("test.veil", source)
	require.NoError(t, err)
	return program
}

func hasConditional(block *ast.Block) bool {
	for _, stmt := range block.Statements {
		switch stmt := stmt.(type) {
		case *ast.ConditionalStmt:
			return true
		case *ast.Block:
			if hasConditional(stmt) {
				return true
			}
		}
	}
	return false
}

func TestEarlyDropsEmptyElseArm(t *testing.T) {
	program := parse(t, `function f(c: bool, a: u8) -> u8 {
    let x: u8 = 0u8;
    if c {
        x = a;
    } else {
    }
    return x;
}`)
	program = Early(program)

	conditional := program.Functions[0].Block.Statements[1].(*ast.ConditionalStmt)
	assert.Nil(t, conditional.Next)
}

func TestEarlyKeepsConditionalsAsMarkers(t *testing.T) {
	program := parse(t, `function f(c: bool, a: u8) -> u8 {
    let x: u8 = 0u8;
    if c {
        x = a;
    }
    return x;
}`)
	program = Early(program)
	assert.True(t, hasConditional(program.Functions[0].Block),
		"the SSA pass still needs conditionals for φ placement")
}

func TestFinalErasesAllConditionals(t *testing.T) {
	program := parse(t, `function f(c: bool, d: bool, a: u8, b: u8) -> u8 {
    let x: u8 = 0u8;
    if c {
        if d {
            x = a;
        } else {
            x = b;
        }
    } else {
        x = b;
    }
    return x;
}`)
	program = Early(program)
	program, err := ssa.New().Run(program)
	require.NoError(t, err)
	program = Final(program)

	block := program.Functions[0].Block
	assert.False(t, hasConditional(block))
	for _, stmt := range block.Statements {
		_, isBlock := stmt.(*ast.Block)
		assert.False(t, isBlock, "final flattening fully linearises the body")
	}
}

func TestFlatteningIsIdempotent(t *testing.T) {
	program := parse(t, `function f(c: bool, a: u8, b: u8) -> u8 {
    let x: u8 = 0u8;
    if c {
        x = a;
    } else {
        x = b;
    }
    return x;
}`)
	program = Early(program)
	program, err := ssa.New().Run(program)
	require.NoError(t, err)

	once := Final(program)
	printed := once.String()
	twice := Final(once)
	assert.Equal(t, printed, twice.String())
}
