package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/internal/ast"
	"veil/internal/errors"
)

func u8Entry() *VariableSymbol {
	return &VariableSymbol{Type: ast.Type{Kind: ast.TypeU8}, Declaration: DeclMut}
}

func TestInsertAndLookupWalksOutward(t *testing.T) {
	table := New()
	require.NoError(t, table.InsertVariable(ast.NewIdent("x"), u8Entry()))

	table.EnterScope()
	entry, err := table.LookupVariable(ast.NewIdent("x"))
	require.NoError(t, err)
	assert.Equal(t, ast.TypeU8, entry.Type.Kind)
	table.ExitScope()
}

func TestDuplicateInsertionShadows(t *testing.T) {
	table := New()
	require.NoError(t, table.InsertVariable(ast.NewIdent("x"), u8Entry()))

	err := table.InsertVariable(ast.NewIdent("x"), u8Entry())
	require.Error(t, err)
	assert.Equal(t, errors.ShadowedVariable, err.(errors.CompilerError).Code)

	// The same name in a child scope is a fresh binding, not a collision.
	table.EnterScope()
	assert.NoError(t, table.InsertVariable(ast.NewIdent("x"), u8Entry()))
	table.ExitScope()
}

func TestUnknownSymbol(t *testing.T) {
	table := New()
	_, err := table.LookupVariable(ast.NewIdent("missing"))
	require.Error(t, err)
	assert.Equal(t, errors.UnknownSymbol, err.(errors.CompilerError).Code)
}

func TestWithScopeRestoresOnExit(t *testing.T) {
	table := New()
	table.WithScope(func() {
		require.NoError(t, table.InsertVariable(ast.NewIdent("inner"), u8Entry()))
	})
	_, err := table.LookupVariable(ast.NewIdent("inner"))
	assert.Error(t, err, "inner binding must not escape its scope")
}

func TestFunctionScopesAreStable(t *testing.T) {
	table := New()
	fn := &ast.Function{Name: ast.NewIdent("f"), Output: ast.Type{Kind: ast.TypeU8}}
	require.NoError(t, table.InsertFunction(fn.Name, fn))

	table.WithFunctionScope("f", func() {
		require.NoError(t, table.InsertVariable(ast.NewIdent("a"), u8Entry()))
	})

	// Re-entering the same function scope sees its earlier bindings.
	table.WithFunctionScope("f", func() {
		_, err := table.LookupVariable(ast.NewIdent("a"))
		assert.NoError(t, err)
	})

	_, ok := table.LookupFnScope("f")
	assert.True(t, ok)
	_, err := table.LookupVariable(ast.NewIdent("a"))
	assert.Error(t, err, "function-scope bindings must not leak into the global scope")
}

func TestCircuitRegistry(t *testing.T) {
	table := New()
	circuit := &ast.Circuit{Name: ast.NewIdent("Pt")}
	require.NoError(t, table.InsertCircuit(circuit.Name, circuit))

	found, err := table.LookupCircuit(ast.NewIdent("Pt"))
	require.NoError(t, err)
	assert.Same(t, circuit, found)

	err = table.InsertCircuit(circuit.Name, circuit)
	require.Error(t, err)
	assert.Equal(t, errors.ShadowedVariable, err.(errors.CompilerError).Code)
}
