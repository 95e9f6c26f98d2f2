// Package flatten eliminates conditional statements from blocks. Two
// variants exist: Early runs before static single assignment and only tidies
// trivially empty arms, keeping conditionals in place as φ-insertion
// markers; Final runs after static single assignment and erases the
// conditional wrappers entirely, leaving the selected-name φ-assignments
// as the only trace of branching.
package flatten

import "veil/internal/ast"

// Early removes empty else arms and normalises else-if chains into nested
// conditionals, without linearising anything.
func Early(program *ast.Program) *ast.Program {
	for _, fn := range program.Functions {
		fn.Block = earlyBlock(fn.Block)
	}
	return program
}

func earlyBlock(block *ast.Block) *ast.Block {
	statements := make([]ast.Statement, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		statements = append(statements, earlyStatement(stmt))
	}
	return &ast.Block{Statements: statements, Pos: block.Pos}
}

func earlyStatement(stmt ast.Statement) ast.Statement {
	switch stmt := stmt.(type) {
	case *ast.ConditionalStmt:
		next := stmt.Next
		if next != nil {
			next = earlyStatement(next)
			// A trivially dead else arm contributes nothing downstream.
			if block, ok := next.(*ast.Block); ok && len(block.Statements) == 0 {
				next = nil
			}
		}
		return &ast.ConditionalStmt{
			Condition: stmt.Condition,
			Block:     earlyBlock(stmt.Block),
			Next:      next,
			Pos:       stmt.Pos,
		}
	case *ast.Block:
		return earlyBlock(stmt)
	default:
		return stmt
	}
}

// Final replaces every conditional statement by the concatenation of its
// then-arm statements followed by its else arm, repeating per block until no
// conditional remains. After static single assignment the arms contain only
// straight-line assignments, so concatenation preserves semantics: the
// φ-assignments following each conditional select the surviving names.
func Final(program *ast.Program) *ast.Program {
	for _, fn := range program.Functions {
		fn.Block = finalBlock(fn.Block)
	}
	return program
}

func finalBlock(block *ast.Block) *ast.Block {
	statements := block.Statements
	for needsFlattening(statements) {
		flattened := make([]ast.Statement, 0, len(statements))
		for _, stmt := range statements {
			switch stmt := stmt.(type) {
			case *ast.ConditionalStmt:
				flattened = append(flattened, stmt.Block.Statements...)
				if stmt.Next != nil {
					flattened = append(flattened, stmt.Next)
				}
			case *ast.Block:
				flattened = append(flattened, stmt.Statements...)
			default:
				flattened = append(flattened, stmt)
			}
		}
		statements = flattened
	}
	return &ast.Block{Statements: statements, Pos: block.Pos}
}

func needsFlattening(statements []ast.Statement) bool {
	for _, stmt := range statements {
		switch stmt.(type) {
		case *ast.ConditionalStmt, *ast.Block:
			return true
		}
	}
	return false
}
