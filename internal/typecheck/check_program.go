package typecheck

import (
	"strings"

	"veil/internal/ast"
	"veil/internal/errors"
	"veil/internal/symtab"
)

func (c *Checker) checkProgram(program *ast.Program) {
	// First pass: register every circuit and function so bodies can refer
	// to definitions that appear later in the file.
	for _, circuit := range program.Circuits {
		if err := c.table.InsertCircuit(circuit.Name, circuit); err != nil {
			c.emit(err.(errors.CompilerError))
		}
	}
	for _, fn := range program.Functions {
		if err := c.table.InsertFunction(fn.Name, fn); err != nil {
			c.emit(err.(errors.CompilerError))
		}
		if fn.Variant() == ast.VariantProgram {
			c.callGraph.AddNode(fn.Name.Name)
		}
	}

	for _, circuit := range program.Circuits {
		c.checkCircuit(circuit)
	}
	for _, fn := range program.Functions {
		c.checkFunction(fn)
	}

	c.checkCallGraph(program)
	c.checkTypeGraph()
}

var validAnnotations = map[string]bool{
	"program": true,
	"inline":  true,
}

func (c *Checker) checkFunction(fn *ast.Function) {
	for _, annotation := range fn.Annotations {
		switch annotation.Name.Name {
		case "program":
			c.isProgramFunction = true
		case "inline":
			c.isInlined = true
		default:
			c.emit(errors.NewUnknownAnnotation(annotation.Name.Name, annotation.Pos))
		}
	}
	if c.isProgramFunction && c.isInlined {
		c.emit(errors.NewProgramAndInlineAnnotation(fn.Name.Name, fn.Pos))
	}

	c.hasReturn = false
	c.parent = fn.Name.Name
	c.declared = nil
	c.read = make(map[string]bool)

	c.table.WithFunctionScope(fn.Name.Name, func() {
		for _, input := range fn.Inputs {
			c.assertNotTuple(input.Type, input.Pos)
			c.resolveType(input.Type, input.Pos)

			// Input modes are the program-function surface for declaring
			// visibility; helpers have no callers outside the program.
			if !c.isProgramFunction && input.Mode != ast.ModeNone {
				c.emit(errors.NewHelperHasInputMode(input.Identifier.Name, input.Pos))
			}

			if err := c.table.InsertVariable(input.Identifier, &symtab.VariableSymbol{
				Type:        input.Type,
				Declaration: symtab.DeclInput,
				Mode:        input.Mode,
				Pos:         input.Identifier.Pos,
			}); err != nil {
				c.emit(err.(errors.CompilerError))
			}
		}

		for _, stmt := range fn.Block.Statements {
			c.checkStatement(stmt)
		}
	})

	if !c.hasReturn {
		c.emit(errors.NewFunctionHasNoReturn(fn.Name.Name, fn.Pos))
	}

	for _, declared := range c.declared {
		if !c.read[declared.name] {
			c.handler.EmitWarning(errors.NewUnusedVariableWarning(declared.name, declared.pos))
		}
	}

	// The output may be a tuple, but its elements may not be; resolveType
	// rejects the nesting.
	c.resolveType(fn.Output, fn.Pos)

	c.isProgramFunction = false
	c.isInlined = false
}

func (c *Checker) checkCircuit(circuit *ast.Circuit) {
	used := make(map[string]bool, len(circuit.Members))
	for _, member := range circuit.Members {
		if used[member.Name.Name] {
			if circuit.IsRecord {
				c.emit(errors.NewDuplicateRecordVariable(circuit.Name.Name, circuit.Pos))
			} else {
				c.emit(errors.NewDuplicateAggregateMember(circuit.Name.Name, circuit.Pos))
			}
		}
		used[member.Name.Name] = true
	}

	if circuit.IsRecord {
		c.checkRequiredMember(circuit, "owner", ast.Type{Kind: ast.TypeAddress})
		c.checkRequiredMember(circuit, "gates", ast.Type{Kind: ast.TypeU64})
	}

	for _, member := range circuit.Members {
		c.assertNotTuple(member.Type, member.Pos)
		c.resolveType(member.Type, member.Pos)

		// A member of aggregate type makes this circuit depend on the
		// member's circuit; the dependency graph must stay acyclic.
		if member.Type.Kind == ast.TypeNamed {
			c.typeGraph.AddEdge(member.Type.Name.Name, circuit.Name.Name)
		}
	}
}

func (c *Checker) checkRequiredMember(circuit *ast.Circuit, name string, expected ast.Type) {
	member, ok := circuit.Member(name)
	if !ok {
		c.emit(errors.NewRequiredRecordVariable(name, expected.String(), circuit.Pos))
		return
	}
	if !member.Type.EqFlat(expected) {
		c.emit(errors.NewRecordVariableWrongType(name, expected.String(), member.Pos))
	}
}

// checkCallGraph rejects any call cycle that passes through a program
// function; mutual recursion between entry points cannot be unrolled.
func (c *Checker) checkCallGraph(program *ast.Program) {
	cycle := c.callGraph.FindCycle()
	if cycle == nil {
		return
	}
	for _, name := range cycle {
		if fn, ok := program.Function(name); ok && fn.Variant() == ast.VariantProgram {
			c.emit(errors.NewRecursiveCall(strings.Join(cycle, " -> "), fn.Pos))
			return
		}
	}
	// A cycle among helpers alone still cannot be inlined or unrolled.
	if fn, ok := program.Function(cycle[0]); ok {
		c.emit(errors.NewRecursiveCall(strings.Join(cycle, " -> "), fn.Pos))
	}
}

func (c *Checker) checkTypeGraph() {
	if cycle := c.typeGraph.FindCycle(); cycle != nil {
		pos := ast.Position{}
		if circuit, ok := c.table.Circuit(cycle[0]); ok {
			pos = circuit.Pos
		}
		c.emit(errors.NewCyclicAggregate(strings.Join(cycle, " -> "), pos))
	}
}
