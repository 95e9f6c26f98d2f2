// Package pipeline sequences the mid-end passes. Each pass consumes a whole
// program, produces a whole program, and reports through the shared
// diagnostic handler; a checkpoint between passes stops compilation as soon
// as an error has been emitted.
package pipeline

import (
	"github.com/tliron/commonlog"

	"veil/internal/ast"
	"veil/internal/dce"
	"veil/internal/errors"
	"veil/internal/flatten"
	"veil/internal/inline"
	"veil/internal/lower"
	"veil/internal/ssa"
	"veil/internal/symtab"
	"veil/internal/typecheck"
	"veil/internal/unroll"
)

var log = commonlog.GetLogger("veil.pipeline")

// Options opt into side-channel output. No pass behavior depends on them.
type Options struct {
	EmitInitialAST  bool `yaml:"emit_initial_ast"`
	EmitUnrolledAST bool `yaml:"emit_unrolled_ast"`
	EmitSSAAST      bool `yaml:"emit_ssa_ast"`
	SpansEnabled    bool `yaml:"spans_enabled"`
}

// Artifacts holds the intermediate forms requested through Options.
type Artifacts struct {
	Initial  string
	Unrolled string
	SSA      string
}

// Pipeline owns the diagnostic handler and the symbol table for one
// compilation.
type Pipeline struct {
	handler *errors.Handler
	options Options
	table   *symtab.SymbolTable
}

func New(handler *errors.Handler, options Options) *Pipeline {
	return &Pipeline{handler: handler, options: options}
}

// Table exposes the symbol table built by type checking, for tooling that
// inspects the program after a run.
func (p *Pipeline) Table() *symtab.SymbolTable {
	return p.table
}

// Run drives the program through every pass. The returned program is in
// post-DCE form; a nil program means compilation stopped at a checkpoint
// (consult the handler) or on the returned internal error.
func (p *Pipeline) Run(program *ast.Program) (*ast.Program, *Artifacts, error) {
	artifacts := &Artifacts{}
	if p.options.EmitInitialAST {
		artifacts.Initial = program.String()
	}

	log.Debugf("type checking %s", program.Name)
	p.table = typecheck.Check(program, p.handler)
	if err := p.handler.Err(); err != nil {
		return nil, artifacts, nil
	}

	log.Debug("unrolling iteration statements")
	program, err := unroll.New().Run(program)
	if err != nil {
		return nil, artifacts, err
	}
	if err := p.handler.Err(); err != nil {
		return nil, artifacts, nil
	}
	if p.options.EmitUnrolledAST {
		artifacts.Unrolled = program.String()
	}

	log.Debug("inlining @inline functions")
	program, err = inline.New(p.table).Run(program)
	if err != nil {
		if ce, ok := err.(errors.CompilerError); ok && !errors.IsBug(err) {
			p.handler.Emit(ce)
			return nil, artifacts, nil
		}
		return nil, artifacts, err
	}

	log.Debug("flattening conditionals (early)")
	program = flatten.Early(program)

	log.Debug("converting to static single assignment form")
	program, err = ssa.New().Run(program)
	if err != nil {
		return nil, artifacts, err
	}
	if p.options.EmitSSAAST {
		artifacts.SSA = program.String()
	}

	log.Debug("flattening conditionals (final)")
	program = flatten.Final(program)

	log.Debug("lowering composite ternaries")
	program, err = lower.New(p.table).Run(program)
	if err != nil {
		return nil, artifacts, err
	}

	log.Debug("eliminating dead code")
	program, err = dce.New().Run(program)
	if err != nil {
		return nil, artifacts, err
	}

	return program, artifacts, nil
}
