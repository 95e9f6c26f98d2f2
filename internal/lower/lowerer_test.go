package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/grammar"
	"veil/internal/ast"
	"veil/internal/errors"
	"veil/internal/flatten"
	"veil/internal/ssa"
	"veil/internal/symtab"
	"veil/internal/typecheck"
)

func lowered(t *testing.T, source string) (*ast.Program, *symtab.SymbolTable) {
	t.Helper()
	program, err := grammar.ParseSource("test.veil", source)
	require.NoError(t, err)

	handler := errors.NewHandler()
	table := typecheck.Check(program, handler)
	require.NoError(t, handler.Err())

	program = flatten.Early(program)
	program, err = ssa.New().Run(program)
	require.NoError(t, err)
	program = flatten.Final(program)

	program, err = New(table).Run(program)
	require.NoError(t, err)
	return program, table
}

func countCompositeTernaries(t *testing.T, program *ast.Program, table *symtab.SymbolTable) int {
	t.Helper()
	count := 0
	var walkExpr func(structs map[string]string, e ast.Expression)
	walkExpr = func(structs map[string]string, e ast.Expression) {
		switch e := e.(type) {
		case *ast.TernaryExpr:
			for _, arm := range []ast.Expression{e.IfTrue, e.IfFalse} {
				switch arm := arm.(type) {
				case *ast.TupleExpr, *ast.CircuitInit:
					count++
				case *ast.IdentExpr:
					if _, ok := structs[arm.Ident.Name]; ok {
						count++
					}
				}
			}
			walkExpr(structs, e.Condition)
			walkExpr(structs, e.IfTrue)
			walkExpr(structs, e.IfFalse)
		case *ast.BinaryExpr:
			walkExpr(structs, e.Left)
			walkExpr(structs, e.Right)
		case *ast.UnaryExpr:
			walkExpr(structs, e.Inner)
		}
	}
	for _, fn := range program.Functions {
		structs := make(map[string]string)
		for _, input := range fn.Inputs {
			if input.Type.Kind == ast.TypeNamed {
				structs[input.Identifier.Name] = input.Type.Name.Name
			}
		}
		for _, stmt := range fn.Block.Statements {
			if assign, ok := stmt.(*ast.AssignStmt); ok {
				if init, ok := assign.Value.(*ast.CircuitInit); ok {
					structs[assign.Place.(*ast.IdentExpr).Ident.Name] = init.Name.Name
				}
				walkExpr(structs, assign.Value)
			}
			if ret, ok := stmt.(*ast.ReturnStmt); ok {
				walkExpr(structs, ret.Value)
			}
		}
	}
	return count
}

func TestCircuitTernarySplitsPerMember(t *testing.T) {
	program, table := lowered(t, `circuit Pt { x: u8, y: u8 }

function f(c: bool, p: Pt, q: Pt) -> Pt {
    return c ? p : q;
}`)

	body := program.Functions[0].Block.Statements
	// Two primitive member ternaries, one constructor, one return.
	require.Len(t, body, 4)

	first := body[0].(*ast.AssignStmt)
	assert.Equal(t, "var$0 = c ? p.x : q.x;", first.String())
	second := body[1].(*ast.AssignStmt)
	assert.Equal(t, "var$1 = c ? p.y : q.y;", second.String())

	constructor := body[2].(*ast.AssignStmt)
	init, ok := constructor.Value.(*ast.CircuitInit)
	require.True(t, ok)
	assert.Equal(t, "Pt", init.Name.Name)

	ret := body[3].(*ast.ReturnStmt)
	result, ok := ret.Value.(*ast.IdentExpr)
	require.True(t, ok)
	assert.Equal(t, constructor.Place.(*ast.IdentExpr).Ident.Name, result.Ident.Name)

	assert.Zero(t, countCompositeTernaries(t, program, table))
}

func TestTupleTernarySplitsPerElement(t *testing.T) {
	program, table := lowered(t, `function f(c: bool, a: u8, b: u8) -> (u8, u8) {
    return c ? (a, b) : (b, a);
}`)

	body := program.Functions[0].Block.Statements
	// One hoisted ternary per element, then the tuple return.
	require.Len(t, body, 3)
	assert.Equal(t, "var$0 = c ? a : b;", body[0].String())
	assert.Equal(t, "var$1 = c ? b : a;", body[1].String())
	assert.Equal(t, "return (var$0, var$1);", body[2].String())

	assert.Zero(t, countCompositeTernaries(t, program, table))
}

func TestNestedAggregateMembersRecurse(t *testing.T) {
	program, table := lowered(t, `circuit Inner { v: u8 }

circuit Outer { inner: Inner, w: u8 }

function f(c: bool, p: Outer, q: Outer) -> Outer {
    return c ? p : q;
}`)

	assert.Zero(t, countCompositeTernaries(t, program, table))

	// The inner aggregate gets its own constructor.
	constructors := 0
	for _, stmt := range program.Functions[0].Block.Statements {
		if assign, ok := stmt.(*ast.AssignStmt); ok {
			if _, ok := assign.Value.(*ast.CircuitInit); ok {
				constructors++
			}
		}
	}
	assert.Equal(t, 2, constructors)
}

func TestPrimitiveTernaryAssignStaysInPlace(t *testing.T) {
	program, _ := lowered(t, `function f(c: bool, a: u8, b: u8) -> u8 {
    let x: u8 = 0u8;
    if c {
        x = a;
    } else {
        x = b;
    }
    return x;
}`)

	// The φ-assignment keeps its ternary; no var$ temporary appears.
	for _, stmt := range program.Functions[0].Block.Statements {
		assert.NotContains(t, stmt.String(), "var$")
	}
}

func TestPhiOverCircuitsIsLowered(t *testing.T) {
	program, table := lowered(t, `circuit Pt { x: u8, y: u8 }

function f(c: bool, p: Pt, q: Pt) -> Pt {
    let r: Pt = p;
    if c {
        r = q;
    }
    return r;
}`)

	assert.Zero(t, countCompositeTernaries(t, program, table))
}
