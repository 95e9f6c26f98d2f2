// Package dce removes assignments whose targets never reach an observable:
// a return value, a console argument, or another live assignment. Because
// the input is in static single assignment form and blocks are walked in
// reverse, a single mark/sweep over each function suffices.
package dce

import (
	"fmt"

	"veil/internal/ast"
	"veil/internal/errors"
)

// Eliminator carries the mark state for one function body.
type Eliminator struct {
	marked     map[string]bool
	isCritical bool
}

func New() *Eliminator {
	return &Eliminator{}
}

// Run eliminates dead assignments in every function of the program.
func (e *Eliminator) Run(program *ast.Program) (*ast.Program, error) {
	for _, fn := range program.Functions {
		e.marked = make(map[string]bool)
		e.isCritical = false
		block, err := e.reconstructBlock(fn.Block)
		if err != nil {
			return nil, err
		}
		fn.Block = block
	}
	return program, nil
}

func (e *Eliminator) isMarked(name string) bool {
	return e.marked[name]
}

// reconstructBlock walks the statements in reverse: liveness of a target is
// known before its defining assignment is reached.
func (e *Eliminator) reconstructBlock(block *ast.Block) (*ast.Block, error) {
	var statements []ast.Statement
	for i := len(block.Statements) - 1; i >= 0; i-- {
		switch stmt := block.Statements[i].(type) {
		case *ast.ReturnStmt:
			// Every symbol a return reads is critical.
			e.isCritical = true
			e.walkExpression(stmt.Value)
			e.isCritical = false
			statements = append(statements, stmt)

		case *ast.ConsoleStmt:
			e.isCritical = true
			for _, arg := range stmt.Args {
				e.walkExpression(arg)
			}
			e.isCritical = false
			statements = append(statements, stmt)

		case *ast.AssignStmt:
			place, ok := stmt.Place.(*ast.IdentExpr)
			if !ok {
				return nil, errors.Bug("assignment place is not an identifier", stmt.Pos)
			}
			// A marked target makes its right-hand side critical; an
			// unmarked one is dead and drops with its whole statement.
			if !e.isMarked(place.Ident.Name) {
				continue
			}
			e.isCritical = true
			e.walkExpression(stmt.Value)
			e.isCritical = false
			statements = append(statements, stmt)

		case *ast.Block:
			inner, err := e.reconstructBlock(stmt)
			if err != nil {
				return nil, err
			}
			statements = append(statements, inner)

		default:
			return nil, errors.Bug(
				fmt.Sprintf("%T in static single assignment form", stmt), stmt.NodePos())
		}
	}

	// Undo the reverse walk.
	for i, j := 0, len(statements)-1; i < j; i, j = i+1, j-1 {
		statements[i], statements[j] = statements[j], statements[i]
	}
	return &ast.Block{Statements: statements, Pos: block.Pos}, nil
}

// walkExpression marks every identifier seen while the critical flag holds.
func (e *Eliminator) walkExpression(expr ast.Expression) {
	switch expr := expr.(type) {
	case *ast.IdentExpr:
		if e.isCritical {
			e.marked[expr.Ident.Name] = true
		}
	case *ast.BinaryExpr:
		e.walkExpression(expr.Left)
		e.walkExpression(expr.Right)
	case *ast.UnaryExpr:
		e.walkExpression(expr.Inner)
	case *ast.TernaryExpr:
		e.walkExpression(expr.Condition)
		e.walkExpression(expr.IfTrue)
		e.walkExpression(expr.IfFalse)
	case *ast.CallExpr:
		for _, arg := range expr.Args {
			e.walkExpression(arg)
		}
	case *ast.MemberAccess:
		e.walkExpression(expr.Inner)
	case *ast.TupleExpr:
		for _, element := range expr.Elements {
			e.walkExpression(element)
		}
	case *ast.CircuitInit:
		for _, member := range expr.Members {
			e.walkExpression(member.Value)
		}
	}
}
