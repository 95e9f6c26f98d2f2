// Package unroll eliminates bounded integer iteration by replicating loop
// bodies. Every iteration statement disappears before the inliner and the
// static single assignment pass run.
package unroll

import (
	"fmt"
	"strconv"

	"veil/internal/ast"
	"veil/internal/errors"
)

// Unroller rewrites iteration statements into repeated blocks.
type Unroller struct{}

func New() *Unroller {
	return &Unroller{}
}

// Run unrolls every function body in place of the input program. The type
// checker has already enforced literal integer bounds, so a non-literal
// bound here is an internal invariant violation.
func (u *Unroller) Run(program *ast.Program) (*ast.Program, error) {
	for _, fn := range program.Functions {
		block, err := u.unrollBlock(fn.Block)
		if err != nil {
			return nil, err
		}
		fn.Block = block
	}
	return program, nil
}

func (u *Unroller) unrollBlock(block *ast.Block) (*ast.Block, error) {
	statements := make([]ast.Statement, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		unrolled, err := u.unrollStatement(stmt)
		if err != nil {
			return nil, err
		}
		statements = append(statements, unrolled...)
	}
	return &ast.Block{Statements: statements, Pos: block.Pos}, nil
}

func (u *Unroller) unrollStatement(stmt ast.Statement) ([]ast.Statement, error) {
	switch stmt := stmt.(type) {
	case *ast.IterationStmt:
		return u.unrollIteration(stmt)
	case *ast.ConditionalStmt:
		block, err := u.unrollBlock(stmt.Block)
		if err != nil {
			return nil, err
		}
		next := stmt.Next
		if next != nil {
			rewritten, err := u.unrollStatement(next)
			if err != nil {
				return nil, err
			}
			// An else arm is a single conditional or block statement, so
			// unrolling it never changes its statement count.
			next = rewritten[0]
		}
		return []ast.Statement{&ast.ConditionalStmt{
			Condition: stmt.Condition,
			Block:     block,
			Next:      next,
			Pos:       stmt.Pos,
		}}, nil
	case *ast.Block:
		block, err := u.unrollBlock(stmt)
		if err != nil {
			return nil, err
		}
		return []ast.Statement{block}, nil
	default:
		return []ast.Statement{stmt}, nil
	}
}

// unrollIteration replicates the body once per value in [start, stop). Each
// copy opens with a definition binding the iteration variable to the literal
// value of that round; nested iterations inside the cloned body unroll on
// the recursive visit.
func (u *Unroller) unrollIteration(stmt *ast.IterationStmt) ([]ast.Statement, error) {
	start, err := literalBound(stmt.Start)
	if err != nil {
		return nil, err
	}
	stop, err := literalBound(stmt.Stop)
	if err != nil {
		return nil, err
	}

	var statements []ast.Statement
	for value := start; value < stop; value++ {
		body := ast.CloneBlock(stmt.Block)
		round := make([]ast.Statement, 0, len(body.Statements)+1)
		round = append(round, &ast.DefinitionStmt{
			Name: stmt.Variable,
			Type: stmt.Type,
			Value: &ast.LiteralExpr{
				Raw:  strconv.FormatInt(value, 10),
				Kind: stmt.Type.Kind,
			},
			Pos: stmt.Pos,
		})
		round = append(round, body.Statements...)

		unrolled, err := u.unrollBlock(&ast.Block{Statements: round, Pos: stmt.Pos})
		if err != nil {
			return nil, err
		}
		statements = append(statements, unrolled)
	}
	return statements, nil
}

func literalBound(expr ast.Expression) (int64, error) {
	literal, ok := expr.(*ast.LiteralExpr)
	if !ok {
		return 0, errors.Bug(
			fmt.Sprintf("iteration bound %s survived type checking without being a literal", expr.String()),
			expr.NodePos())
	}
	value, err := strconv.ParseInt(literal.Raw, 0, 64)
	if err != nil {
		return 0, errors.Bug(fmt.Sprintf("iteration bound %s is not an integer", literal.Raw), literal.Pos)
	}
	return value, nil
}
