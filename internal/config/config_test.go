package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/internal/pipeline"
)

func TestParse(t *testing.T) {
	options, err := Parse([]byte(`output:
  emit_initial_ast: true
  emit_ssa_ast: true
`))
	require.NoError(t, err)
	assert.Equal(t, pipeline.Options{EmitInitialAST: true, EmitSSAAST: true}, options)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("output: ["))
	assert.Error(t, err)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	options, err := Load(filepath.Join(t.TempDir(), "main.veil"))
	require.NoError(t, err)
	assert.Equal(t, pipeline.Options{}, options)
}

func TestLoadReadsFileNextToSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`output:
  emit_unrolled_ast: true
  spans_enabled: true
`), 0o644))

	options, err := Load(filepath.Join(dir, "main.veil"))
	require.NoError(t, err)
	assert.True(t, options.EmitUnrolledAST)
	assert.True(t, options.SpansEnabled)
	assert.False(t, options.EmitInitialAST)
}
