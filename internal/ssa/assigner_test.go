package ssa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/grammar"
	"veil/internal/ast"
	"veil/internal/flatten"
)

func convert(t *testing.T, source string) *ast.Program {
	t.Helper()
	program, err := grammar.ParseSource("test.veil", source)
	require.NoError(t, err)
	program = flatten.Early(program)
	program, err = New().Run(program)
	require.NoError(t, err)
	return program
}

func bodyStrings(fn *ast.Function) []string {
	var out []string
	var walk func(b *ast.Block)
	walk = func(b *ast.Block) {
		for _, stmt := range b.Statements {
			if inner, ok := stmt.(*ast.Block); ok {
				walk(inner)
				continue
			}
			out = append(out, stmt.String())
		}
	}
	walk(fn.Block)
	return out
}

func TestCompoundAssignLowering(t *testing.T) {
	program := convert(t, `function f(a: u8, b: u8) -> u8 {
    let x: u8 = a;
    x += b;
    return x;
}`)

	assert.Equal(t, []string{
		"x$0 = a;",
		"x$1 = x$0 + b;",
		"return x$1;",
	}, bodyStrings(program.Functions[0]))
}

func TestConditionalProducesPhi(t *testing.T) {
	program := convert(t, `function f(c: bool, a: u8, b: u8) -> u8 {
    let x: u8 = 0u8;
    if c {
        x = a;
    } else {
        x = b;
    }
    return x;
}`)

	program = flatten.Final(program)
	assert.Equal(t, []string{
		"x$0 = 0u8;",
		"x$1 = a;",
		"x$2 = b;",
		"x$3 = c ? x$1 : x$2;",
		"return x$3;",
	}, bodyStrings(program.Functions[0]))
}

func TestOneSidedWriteInheritsPreValue(t *testing.T) {
	program := convert(t, `function f(c: bool, a: u8) -> u8 {
    let x: u8 = 0u8;
    if c {
        x = a;
    }
    return x;
}`)

	program = flatten.Final(program)
	assert.Equal(t, []string{
		"x$0 = 0u8;",
		"x$1 = a;",
		"x$2 = c ? x$1 : x$0;",
		"return x$2;",
	}, bodyStrings(program.Functions[0]))
}

func TestNonTrivialConditionIsHoisted(t *testing.T) {
	program := convert(t, `function f(a: u8, b: u8) -> u8 {
    let x: u8 = 0u8;
    if a > b {
        x = a;
    } else {
        x = b;
    }
    return x;
}`)

	program = flatten.Final(program)
	statements := bodyStrings(program.Functions[0])
	require.Len(t, statements, 6)
	assert.Equal(t, "x$0 = 0u8;", statements[0])
	assert.Equal(t, "cond$1 = a > b;", statements[1])
	assert.Equal(t, "x$2 = a;", statements[2])
	assert.Equal(t, "x$3 = b;", statements[3])
	assert.Equal(t, "x$4 = cond$1 ? x$2 : x$3;", statements[4])
	assert.Equal(t, "return x$4;", statements[5])
}

func TestTrivialConditionIsNotHoisted(t *testing.T) {
	program := convert(t, `function f(c: bool, a: u8) -> u8 {
    let x: u8 = 0u8;
    if c {
        x = a;
    }
    return x;
}`)

	for _, stmt := range bodyStrings(program.Functions[0]) {
		assert.NotContains(t, stmt, "cond$")
	}
}

func TestDefinitionsAreGone(t *testing.T) {
	program := convert(t, `function f(a: u8) -> u8 {
    let x: u8 = a;
    let y: u8 = x;
    return y;
}`)

	for _, stmt := range program.Functions[0].Block.Statements {
		_, isDefinition := stmt.(*ast.DefinitionStmt)
		assert.False(t, isDefinition)
	}
}

func TestEachPlaceAssignedOnce(t *testing.T) {
	program := convert(t, `function f(c: bool, a: u8, b: u8) -> u8 {
    let x: u8 = a;
    x += b;
    x *= a;
    if c {
        x = b;
    }
    return x;
}`)
	program = flatten.Final(program)

	seen := make(map[string]bool)
	for _, stmt := range program.Functions[0].Block.Statements {
		assign, ok := stmt.(*ast.AssignStmt)
		if !ok {
			continue
		}
		place := assign.Place.(*ast.IdentExpr).Ident.Name
		assert.False(t, seen[place], "place %s assigned twice", place)
		seen[place] = true
		assert.Equal(t, ast.AssignSimple, assign.Op)
	}
}

func TestConversionIsIdempotentOnSSAForm(t *testing.T) {
	program := convert(t, `function f(c: bool, a: u8, b: u8) -> u8 {
    let x: u8 = 0u8;
    if c {
        x = a;
    } else {
        x = b;
    }
    return x;
}`)
	program = flatten.Final(program)
	printed := program.String()

	again, err := New().Run(program)
	require.NoError(t, err)
	assert.Equal(t, printed, again.String())
}
