// Package lower flattens ternary selection over composite values. The flat
// instruction set downstream only selects between primitives, so a ternary
// whose arms are tuples or circuits is split into per-member primitive
// ternaries plus a rebuilt composite.
//
// The pass runs on static single assignment form with conditionals already
// erased, and relies on the fresh names and the circuit definitions the
// earlier passes established.
package lower

import (
	"fmt"

	"veil/internal/ast"
	"veil/internal/errors"
	"veil/internal/symtab"
)

// Lowerer rewrites expressions bottom-up, accumulating hoisted assignments.
type Lowerer struct {
	table   *symtab.SymbolTable
	counter int
	// structs maps a renamed identifier to the circuit it holds, so the
	// pass can tell an aggregate ternary from a primitive one.
	structs map[string]string
}

func New(table *symtab.SymbolTable) *Lowerer {
	return &Lowerer{table: table, structs: make(map[string]string)}
}

// Run lowers every function of the program.
func (l *Lowerer) Run(program *ast.Program) (*ast.Program, error) {
	for _, fn := range program.Functions {
		l.structs = make(map[string]string)
		for _, input := range fn.Inputs {
			if input.Type.Kind == ast.TypeNamed {
				l.structs[input.Identifier.Name] = input.Type.Name.Name
			}
		}
		block, err := l.lowerBlock(fn.Block)
		if err != nil {
			return nil, err
		}
		fn.Block = block
	}
	return program, nil
}

// uniqueAssign hoists `var$k = value` and returns the fresh identifier.
func (l *Lowerer) uniqueAssign(value ast.Expression, hoisted *[]ast.Statement) ast.Ident {
	name := ast.NewIdent(fmt.Sprintf("var$%d", l.counter))
	l.counter++
	*hoisted = append(*hoisted, ast.SimpleAssign(name, value))
	return name
}

func (l *Lowerer) lowerBlock(block *ast.Block) (*ast.Block, error) {
	statements := make([]ast.Statement, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		rewritten, hoisted, err := l.lowerStatement(stmt)
		if err != nil {
			return nil, err
		}
		statements = append(statements, hoisted...)
		statements = append(statements, rewritten)
	}
	return &ast.Block{Statements: statements, Pos: block.Pos}, nil
}

func (l *Lowerer) lowerStatement(stmt ast.Statement) (ast.Statement, []ast.Statement, error) {
	switch stmt := stmt.(type) {
	case *ast.AssignStmt:
		place, ok := stmt.Place.(*ast.IdentExpr)
		if !ok {
			return nil, nil, errors.Bug("assignment place is not an identifier", stmt.Pos)
		}
		var hoisted []ast.Statement
		var value ast.Expression
		var err error
		if ternary, isTernary := stmt.Value.(*ast.TernaryExpr); isTernary {
			// A primitive ternary that is already the whole right-hand side
			// stays in place; composites still split.
			value, hoisted, err = l.lowerTernary(ternary, true)
		} else {
			value, hoisted, err = l.lowerExpression(stmt.Value)
		}
		if err != nil {
			return nil, nil, err
		}
		l.trackStruct(place.Ident.Name, value)
		return ast.SimpleAssign(place.Ident, value), hoisted, nil

	case *ast.ReturnStmt:
		value, hoisted, err := l.lowerExpression(stmt.Value)
		if err != nil {
			return nil, nil, err
		}
		return &ast.ReturnStmt{Value: value, Pos: stmt.Pos}, hoisted, nil

	case *ast.ConsoleStmt:
		var hoisted []ast.Statement
		args := make([]ast.Expression, len(stmt.Args))
		for i, arg := range stmt.Args {
			lowered, argHoisted, err := l.lowerExpression(arg)
			if err != nil {
				return nil, nil, err
			}
			hoisted = append(hoisted, argHoisted...)
			args[i] = lowered
		}
		return &ast.ConsoleStmt{Kind: stmt.Kind, Format: stmt.Format, Args: args, Pos: stmt.Pos}, hoisted, nil

	case *ast.Block:
		block, err := l.lowerBlock(stmt)
		return block, nil, err

	default:
		return nil, nil, errors.Bug(
			fmt.Sprintf("%T survived conditional flattening", stmt), stmt.NodePos())
	}
}

// trackStruct records that name now holds a circuit value, when it does.
func (l *Lowerer) trackStruct(name string, value ast.Expression) {
	if circuit, ok := l.structOf(value); ok {
		l.structs[name] = circuit
	}
}

// structOf resolves the circuit a composite-typed expression evaluates to.
func (l *Lowerer) structOf(expr ast.Expression) (string, bool) {
	switch expr := expr.(type) {
	case *ast.IdentExpr:
		circuit, ok := l.structs[expr.Ident.Name]
		return circuit, ok
	case *ast.CircuitInit:
		return expr.Name.Name, true
	case *ast.MemberAccess:
		inner, ok := l.structOf(expr.Inner)
		if !ok {
			return "", false
		}
		circuit, ok := l.table.Circuit(inner)
		if !ok {
			return "", false
		}
		member, ok := circuit.Member(expr.Member.Name)
		if !ok || member.Type.Kind != ast.TypeNamed {
			return "", false
		}
		return member.Type.Name.Name, true
	default:
		return "", false
	}
}

func (l *Lowerer) lowerExpression(expr ast.Expression) (ast.Expression, []ast.Statement, error) {
	switch expr := expr.(type) {
	case *ast.TernaryExpr:
		return l.lowerTernary(expr, false)
	case *ast.BinaryExpr:
		left, leftHoisted, err := l.lowerExpression(expr.Left)
		if err != nil {
			return nil, nil, err
		}
		right, rightHoisted, err := l.lowerExpression(expr.Right)
		if err != nil {
			return nil, nil, err
		}
		return &ast.BinaryExpr{Op: expr.Op, Left: left, Right: right, Pos: expr.Pos},
			append(leftHoisted, rightHoisted...), nil
	case *ast.UnaryExpr:
		inner, hoisted, err := l.lowerExpression(expr.Inner)
		if err != nil {
			return nil, nil, err
		}
		return &ast.UnaryExpr{Op: expr.Op, Inner: inner, Pos: expr.Pos}, hoisted, nil
	case *ast.CallExpr:
		var hoisted []ast.Statement
		args := make([]ast.Expression, len(expr.Args))
		for i, arg := range expr.Args {
			lowered, argHoisted, err := l.lowerExpression(arg)
			if err != nil {
				return nil, nil, err
			}
			hoisted = append(hoisted, argHoisted...)
			args[i] = lowered
		}
		return &ast.CallExpr{On: expr.On, Callee: expr.Callee, Args: args, Pos: expr.Pos}, hoisted, nil
	case *ast.MemberAccess:
		inner, hoisted, err := l.lowerExpression(expr.Inner)
		if err != nil {
			return nil, nil, err
		}
		return &ast.MemberAccess{Inner: inner, Member: expr.Member, Pos: expr.Pos}, hoisted, nil
	case *ast.TupleExpr:
		var hoisted []ast.Statement
		elements := make([]ast.Expression, len(expr.Elements))
		for i, element := range expr.Elements {
			lowered, elementHoisted, err := l.lowerExpression(element)
			if err != nil {
				return nil, nil, err
			}
			hoisted = append(hoisted, elementHoisted...)
			elements[i] = lowered
		}
		return &ast.TupleExpr{Elements: elements, Pos: expr.Pos}, hoisted, nil
	case *ast.CircuitInit:
		var hoisted []ast.Statement
		members := make([]ast.CircuitVariableInitializer, len(expr.Members))
		for i, member := range expr.Members {
			lowered, memberHoisted, err := l.lowerExpression(member.Value)
			if err != nil {
				return nil, nil, err
			}
			hoisted = append(hoisted, memberHoisted...)
			members[i] = ast.CircuitVariableInitializer{Name: member.Name, Value: lowered}
		}
		return &ast.CircuitInit{Name: expr.Name, Members: members, Pos: expr.Pos}, hoisted, nil
	default:
		return expr, nil, nil
	}
}

// lowerTernary splits composite ternaries. When inPlace holds and the arms
// are primitive, the (lowered) ternary is returned as-is instead of being
// hoisted behind a fresh name; statement-level callers use this to avoid a
// pointless temporary for `x = c ? a : b`.
func (l *Lowerer) lowerTernary(expr *ast.TernaryExpr, inPlace bool) (ast.Expression, []ast.Statement, error) {
	ifTuple, okTrue := expr.IfTrue.(*ast.TupleExpr)
	elseTuple, okFalse := expr.IfFalse.(*ast.TupleExpr)
	if okTrue && okFalse {
		return l.lowerTupleTernary(expr, ifTuple, elseTuple)
	}

	ifStruct, okTrue := l.structOf(expr.IfTrue)
	elseStruct, okFalse := l.structOf(expr.IfFalse)
	if okTrue && okFalse {
		// Type checking guarantees both arms share a type; disagreement
		// here is a compiler defect, not a user error.
		if ifStruct != elseStruct {
			return nil, nil, errors.Bug(
				fmt.Sprintf("ternary arms hold different circuits %s and %s", ifStruct, elseStruct),
				expr.Pos)
		}
		return l.lowerCircuitTernary(expr, ifStruct)
	}

	var hoisted []ast.Statement
	ifTrue, trueHoisted, err := l.lowerExpression(expr.IfTrue)
	if err != nil {
		return nil, nil, err
	}
	hoisted = append(hoisted, trueHoisted...)
	ifFalse, falseHoisted, err := l.lowerExpression(expr.IfFalse)
	if err != nil {
		return nil, nil, err
	}
	hoisted = append(hoisted, falseHoisted...)

	ternary := &ast.TernaryExpr{Condition: expr.Condition, IfTrue: ifTrue, IfFalse: ifFalse, Pos: expr.Pos}
	if inPlace {
		return ternary, hoisted, nil
	}
	name := l.uniqueAssign(ternary, &hoisted)
	return &ast.IdentExpr{Ident: name}, hoisted, nil
}

// lowerTupleTernary folds `cond ? (a, b) : (c, d)` into per-element
// ternaries and a tuple of their results.
func (l *Lowerer) lowerTupleTernary(expr *ast.TernaryExpr, ifTuple, elseTuple *ast.TupleExpr) (ast.Expression, []ast.Statement, error) {
	if len(ifTuple.Elements) != len(elseTuple.Elements) {
		return nil, nil, errors.Bug("ternary arms are tuples of different arity", expr.Pos)
	}

	var hoisted []ast.Statement
	elements := make([]ast.Expression, len(ifTuple.Elements))
	for i := range ifTuple.Elements {
		element, elementHoisted, err := l.lowerTernary(&ast.TernaryExpr{
			Condition: ast.CloneExpression(expr.Condition),
			IfTrue:    ifTuple.Elements[i],
			IfFalse:   elseTuple.Elements[i],
			Pos:       expr.Pos,
		}, false)
		if err != nil {
			return nil, nil, err
		}
		hoisted = append(hoisted, elementHoisted...)
		elements[i] = element
	}
	return &ast.TupleExpr{Elements: elements, Pos: expr.Pos}, hoisted, nil
}

// lowerCircuitTernary splits `cond ? a : b` over circuit values into one
// ternary per member and reassembles the circuit from the results.
func (l *Lowerer) lowerCircuitTernary(expr *ast.TernaryExpr, circuitName string) (ast.Expression, []ast.Statement, error) {
	circuit, ok := l.table.Circuit(circuitName)
	if !ok {
		return nil, nil, errors.Bug(fmt.Sprintf("circuit %s is not defined", circuitName), expr.Pos)
	}

	var hoisted []ast.Statement
	members := make([]ast.CircuitVariableInitializer, len(circuit.Members))
	for i, member := range circuit.Members {
		selected, memberHoisted, err := l.lowerTernary(&ast.TernaryExpr{
			Condition: ast.CloneExpression(expr.Condition),
			IfTrue:    &ast.MemberAccess{Inner: ast.CloneExpression(expr.IfTrue), Member: member.Name},
			IfFalse:   &ast.MemberAccess{Inner: ast.CloneExpression(expr.IfFalse), Member: member.Name},
			Pos:       expr.Pos,
		}, false)
		if err != nil {
			return nil, nil, err
		}
		hoisted = append(hoisted, memberHoisted...)

		// Members selected by primitive ternaries come back as hoisted
		// identifiers; aggregate members recurse and come back the same way.
		members[i] = ast.CircuitVariableInitializer{Name: member.Name, Value: selected}
	}

	result := l.uniqueAssign(&ast.CircuitInit{Name: circuit.Name, Members: members, Pos: expr.Pos}, &hoisted)
	l.structs[result.Name] = circuitName
	return &ast.IdentExpr{Ident: result}, hoisted, nil
}
