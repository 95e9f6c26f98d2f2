package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/grammar"
	"veil/internal/ast"
	"veil/internal/errors"
)

func run(t *testing.T, source string, options Options) (*ast.Program, *Artifacts, *errors.Handler) {
	t.Helper()
	program, err := grammar.ParseSource("test.veil", source)
	require.NoError(t, err)

	handler := errors.NewHandler()
	compiled, artifacts, err := New(handler, options).Run(program)
	require.NoError(t, err, "no internal compiler errors expected")
	return compiled, artifacts, handler
}

func bodyStrings(fn *ast.Function) []string {
	var out []string
	for _, stmt := range fn.Block.Statements {
		out = append(out, stmt.String())
	}
	return out
}

func TestCompoundOperatorEndToEnd(t *testing.T) {
	compiled, _, handler := run(t, `function f(a: u8, b: u8) -> u8 {
    let x: u8 = a;
    x += b;
    return x;
}`, Options{})
	require.NoError(t, handler.Err())
	require.NotNil(t, compiled)

	assert.Equal(t, []string{
		"x$0 = a;",
		"x$1 = x$0 + b;",
		"return x$1;",
	}, bodyStrings(compiled.Functions[0]))
}

func TestDeadIntermediateEndToEnd(t *testing.T) {
	compiled, _, handler := run(t, `function f(a: u8) -> u8 {
    let x: u8 = a + 1u8;
    let y: u8 = x + 2u8;
    return a;
}`, Options{})
	require.NoError(t, handler.Err())

	assert.Equal(t, []string{"return a;"}, bodyStrings(compiled.Functions[0]))
}

func TestConditionalPhiEndToEnd(t *testing.T) {
	compiled, _, handler := run(t, `function f(c: bool, a: u8, b: u8) -> u8 {
    let x: u8 = 0u8;
    if c {
        x = a;
    } else {
        x = b;
    }
    return x;
}`, Options{})
	require.NoError(t, handler.Err())

	assert.Equal(t, []string{
		"x$1 = a;",
		"x$2 = b;",
		"x$3 = c ? x$1 : x$2;",
		"return x$3;",
	}, bodyStrings(compiled.Functions[0]))
}

func TestAggregateTernaryEndToEnd(t *testing.T) {
	compiled, _, handler := run(t, `circuit Pt { x: u8, y: u8 }

function f(c: bool, p: Pt, q: Pt) -> Pt {
    return c ? p : q;
}`, Options{})
	require.NoError(t, handler.Err())

	body := bodyStrings(compiled.Functions[0])
	require.Len(t, body, 4)
	assert.Equal(t, "var$0 = c ? p.x : q.x;", body[0])
	assert.Equal(t, "var$1 = c ? p.y : q.y;", body[1])
	assert.Equal(t, "var$2 = Pt { x: var$0, y: var$1 };", body[2])
	assert.Equal(t, "return var$2;", body[3])
}

func TestRecordValidationEndToEnd(t *testing.T) {
	compiled, _, handler := run(t, `record R { owner: address, gates: u64, extra: u8 }

function f(a: u8) -> u8 {
    return a;
}`, Options{})
	require.NoError(t, handler.Err())
	require.NotNil(t, compiled)

	compiled, _, handler = run(t, `record R { owner: u8, gates: u64 }

function f(a: u8) -> u8 {
    return a;
}`, Options{})
	assert.Nil(t, compiled, "compilation stops at the type-check checkpoint")
	assert.True(t, handler.HasCode(errors.RecordVariableWrongType))
}

func TestMutualRecursionEndToEnd(t *testing.T) {
	compiled, _, handler := run(t, `@program
function ping(a: u8) -> u8 {
    return pong(a);
}

@program
function pong(a: u8) -> u8 {
    return ping(a);
}`, Options{})
	assert.Nil(t, compiled)
	assert.True(t, handler.HasCode(errors.RecursiveCall))
}

func TestUnrollInlinePipeline(t *testing.T) {
	compiled, _, handler := run(t, `@inline
function double(v: u8) -> u8 {
    return v + v;
}

@program
function main(a: u8) -> u8 {
    let x: u8 = 0u8;
    for i: u32 in 0u32..2u32 {
        x += double(a);
    }
    return x;
}`, Options{})
	require.NoError(t, handler.Err())
	require.NotNil(t, compiled)

	main, ok := compiled.Function("main")
	require.True(t, ok)
	for _, line := range bodyStrings(main) {
		assert.NotContains(t, line, "double(")
		assert.NotContains(t, line, "for ")
	}
}

func TestArtifactsFollowOptions(t *testing.T) {
	source := `function f(a: u8) -> u8 {
    let x: u8 = a;
    return x;
}`

	_, artifacts, handler := run(t, source, Options{})
	require.NoError(t, handler.Err())
	assert.Empty(t, artifacts.Initial)
	assert.Empty(t, artifacts.SSA)

	_, artifacts, handler = run(t, source, Options{EmitInitialAST: true, EmitSSAAST: true})
	require.NoError(t, handler.Err())
	assert.Contains(t, artifacts.Initial, "let x: u8 = a;")
	assert.Contains(t, artifacts.SSA, "x$0 = a;")
}

func TestPipelineIsClosedUnderItself(t *testing.T) {
	sources := []string{
		`function f(c: bool, a: u8, b: u8) -> u8 {
    let x: u8 = 0u8;
    if c {
        x = a;
    } else {
        x = b;
    }
    return x;
}`,
		`circuit Pt { x: u8, y: u8 }

function f(c: bool, p: Pt, q: Pt) -> Pt {
    return c ? p : q;
}`,
	}

	for _, source := range sources {
		first, _, handler := run(t, source, Options{})
		require.NoError(t, handler.Err())
		require.NotNil(t, first)
		printed := first.String()

		reparsed, err := grammar.ParseSource("test.veil", printed)
		require.NoError(t, err, "emitted output must re-parse")

		secondHandler := errors.NewHandler()
		second, _, err := New(secondHandler, Options{}).Run(reparsed)
		require.NoError(t, err)
		require.NoError(t, secondHandler.Err())
		require.NotNil(t, second)

		assert.True(t, ast.EqProgram(first, second),
			"pipeline applied twice must be structurally stable")
	}
}
