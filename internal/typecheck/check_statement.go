package typecheck

import (
	"veil/internal/ast"
	"veil/internal/errors"
	"veil/internal/symtab"
)

func (c *Checker) checkStatement(stmt ast.Statement) {
	switch stmt := stmt.(type) {
	case *ast.ReturnStmt:
		c.checkReturn(stmt)
	case *ast.DefinitionStmt:
		c.checkDefinition(stmt)
	case *ast.AssignStmt:
		c.checkAssign(stmt)
	case *ast.ConditionalStmt:
		c.checkConditional(stmt)
	case *ast.IterationStmt:
		c.checkIteration(stmt)
	case *ast.ConsoleStmt:
		c.checkConsole(stmt)
	case *ast.Block:
		c.checkBlock(stmt)
	}
}

func (c *Checker) checkBlock(block *ast.Block) {
	c.table.WithScope(func() {
		for _, stmt := range block.Statements {
			c.checkStatement(stmt)
		}
	})
}

func (c *Checker) checkReturn(stmt *ast.ReturnStmt) {
	c.hasReturn = true
	fn, ok := c.table.Function(c.parent)
	if !ok {
		return
	}
	output := fn.Output
	c.checkExpression(stmt.Value, &output)
}

func (c *Checker) checkDefinition(stmt *ast.DefinitionStmt) {
	c.assertNotTuple(stmt.Type, stmt.Pos)
	c.resolveType(stmt.Type, stmt.Pos)

	declared := stmt.Type
	c.checkExpression(stmt.Value, &declared)

	c.declared = append(c.declared, declaredVariable{name: stmt.Name.Name, pos: stmt.Name.Pos})

	if err := c.table.InsertVariable(stmt.Name, &symtab.VariableSymbol{
		Type:        stmt.Type,
		Declaration: symtab.DeclMut,
		Pos:         stmt.Name.Pos,
	}); err != nil {
		c.emit(err.(errors.CompilerError))
	}
}

func (c *Checker) checkAssign(stmt *ast.AssignStmt) {
	place, ok := stmt.Place.(*ast.IdentExpr)
	if !ok {
		c.emit(errors.NewExpectedOneTypeOf(stmt.Place.String(), "an identifier", stmt.Place.NodePos()))
		return
	}

	entry, err := c.table.LookupVariable(place.Ident)
	if err != nil {
		// First write to an undeclared name declares it with the value's
		// type. Mid-end output has no definition statements, so accepting
		// define-on-first-assign keeps the pipeline closed under itself.
		if stmt.Op != ast.AssignSimple {
			c.emit(err.(errors.CompilerError))
			return
		}
		inferred := c.checkExpression(stmt.Value, nil)
		if inferred == nil {
			return
		}
		if insertErr := c.table.InsertVariable(place.Ident, &symtab.VariableSymbol{
			Type:        *inferred,
			Declaration: symtab.DeclMut,
			Pos:         place.Ident.Pos,
		}); insertErr != nil {
			c.emit(insertErr.(errors.CompilerError))
		}
		return
	}

	// A compound assignment checks like the binary operation it lowers to.
	if binop, compound := ast.BinaryOfAssign(stmt.Op); compound {
		c.checkBinary(&ast.BinaryExpr{
			Op:    binop,
			Left:  place,
			Right: stmt.Value,
			Pos:   stmt.Pos,
		}, &entry.Type)
		return
	}

	declared := entry.Type
	c.checkExpression(stmt.Value, &declared)
}

func (c *Checker) checkConditional(stmt *ast.ConditionalStmt) {
	cond := c.checkExpression(stmt.Condition, nil)
	c.assertBool(cond, stmt.Condition.NodePos())

	c.checkBlock(stmt.Block)
	if stmt.Next != nil {
		c.checkStatement(stmt.Next)
	}
}

func (c *Checker) checkIteration(stmt *ast.IterationStmt) {
	c.assertOneOfKinds(&stmt.Type, intKinds, stmt.Pos)

	bound := stmt.Type
	c.checkExpression(stmt.Start, &bound)
	c.checkExpression(stmt.Stop, &bound)

	// The unroller substitutes literal bounds; anything else cannot be
	// unrolled and is rejected here rather than deep in the pipeline.
	if _, ok := stmt.Start.(*ast.LiteralExpr); !ok {
		c.emit(errors.NewExpectedOneTypeOf(stmt.Start.String(), "an integer literal bound", stmt.Start.NodePos()))
	}
	if _, ok := stmt.Stop.(*ast.LiteralExpr); !ok {
		c.emit(errors.NewExpectedOneTypeOf(stmt.Stop.String(), "an integer literal bound", stmt.Stop.NodePos()))
	}

	c.table.WithScope(func() {
		if err := c.table.InsertVariable(stmt.Variable, &symtab.VariableSymbol{
			Type:        stmt.Type,
			Declaration: symtab.DeclConst,
			Pos:         stmt.Variable.Pos,
		}); err != nil {
			c.emit(err.(errors.CompilerError))
		}
		for _, inner := range stmt.Block.Statements {
			c.checkStatement(inner)
		}
	})
}

func (c *Checker) checkConsole(stmt *ast.ConsoleStmt) {
	switch stmt.Kind {
	case ast.ConsoleAssert:
		if len(stmt.Args) != 1 {
			c.emit(errors.NewTypeShouldBe(plural(len(stmt.Args), "argument"), "1 argument", stmt.Pos))
			return
		}
		cond := c.checkExpression(stmt.Args[0], nil)
		c.assertBool(cond, stmt.Args[0].NodePos())
	default:
		for _, arg := range stmt.Args {
			c.checkExpression(arg, nil)
		}
	}
}
