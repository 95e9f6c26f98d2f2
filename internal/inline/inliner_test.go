package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/grammar"
	"veil/internal/ast"
	"veil/internal/errors"
	"veil/internal/typecheck"
)

func expand(t *testing.T, source string) (*ast.Program, error) {
	t.Helper()
	program, err := grammar.ParseSource("test.veil", source)
	require.NoError(t, err)

	handler := errors.NewHandler()
	table := typecheck.Check(program, handler)
	require.NoError(t, handler.Err())

	return New(table).Run(program)
}

func callsTo(block *ast.Block, name string) int {
	count := 0
	var walkExpr func(e ast.Expression)
	walkExpr = func(e ast.Expression) {
		switch e := e.(type) {
		case *ast.CallExpr:
			if e.On == nil && e.Callee.Name == name {
				count++
			}
			for _, arg := range e.Args {
				walkExpr(arg)
			}
		case *ast.BinaryExpr:
			walkExpr(e.Left)
			walkExpr(e.Right)
		case *ast.UnaryExpr:
			walkExpr(e.Inner)
		case *ast.TernaryExpr:
			walkExpr(e.Condition)
			walkExpr(e.IfTrue)
			walkExpr(e.IfFalse)
		}
	}
	var walk func(b *ast.Block)
	walk = func(b *ast.Block) {
		for _, stmt := range b.Statements {
			switch stmt := stmt.(type) {
			case *ast.ReturnStmt:
				walkExpr(stmt.Value)
			case *ast.DefinitionStmt:
				walkExpr(stmt.Value)
			case *ast.AssignStmt:
				walkExpr(stmt.Value)
			case *ast.ConditionalStmt:
				walkExpr(stmt.Condition)
				walk(stmt.Block)
			case *ast.Block:
				walk(stmt)
			}
		}
	}
	walk(block)
	return count
}

func TestInlineCallDisappears(t *testing.T) {
	program, err := expand(t, `@inline
function double(v: u8) -> u8 {
    return v + v;
}

@program
function main(a: u8) -> u8 {
    return double(a);
}`)
	require.NoError(t, err)

	main, ok := program.Function("main")
	require.True(t, ok)
	assert.Zero(t, callsTo(main.Block, "double"))

	// The argument binds through a hoisted definition before the return.
	require.GreaterOrEqual(t, len(main.Block.Statements), 2)
	def, ok := main.Block.Statements[0].(*ast.DefinitionStmt)
	require.True(t, ok)
	assert.Contains(t, def.Name.Name, "$inl")
}

func TestInlineBodyLocalsAreFreshened(t *testing.T) {
	program, err := expand(t, `@inline
function helper(v: u8) -> u8 {
    let tmp: u8 = v + 1u8;
    return tmp;
}

@program
function main(a: u8) -> u8 {
    let tmp: u8 = a;
    return helper(tmp);
}`)
	require.NoError(t, err)

	main, _ := program.Function("main")
	names := make(map[string]int)
	for _, stmt := range main.Block.Statements {
		if def, ok := stmt.(*ast.DefinitionStmt); ok {
			names[def.Name.Name]++
		}
	}
	// The caller's tmp and the helper's tmp must not collide.
	assert.Equal(t, 1, names["tmp"])
	for name, n := range names {
		assert.Equal(t, 1, n, "name %s defined more than once", name)
	}
}

func TestTransitiveInlining(t *testing.T) {
	program, err := expand(t, `@inline
function inc(v: u8) -> u8 {
    return v + 1u8;
}

@inline
function inc2(v: u8) -> u8 {
    return inc(inc(v));
}

@program
function main(a: u8) -> u8 {
    return inc2(a);
}`)
	require.NoError(t, err)

	main, _ := program.Function("main")
	assert.Zero(t, callsTo(main.Block, "inc"))
	assert.Zero(t, callsTo(main.Block, "inc2"))
}

func TestHelperCallsAreLeftAlone(t *testing.T) {
	program, err := expand(t, `function helper(v: u8) -> u8 {
    return v + 1u8;
}

@program
function main(a: u8) -> u8 {
    return helper(a);
}`)
	require.NoError(t, err)

	main, _ := program.Function("main")
	assert.Equal(t, 1, callsTo(main.Block, "helper"))
}
