// Package inline eliminates calls to @inline helper functions by splicing
// the helper body into the caller. The pass runs after unrolling and before
// static single assignment, so inlined bodies are renamed together with the
// rest of the caller.
package inline

import (
	"fmt"
	"strings"

	"veil/internal/ast"
	"veil/internal/errors"
	"veil/internal/symtab"
)

// Inliner rewrites call sites of @inline functions.
type Inliner struct {
	table   *symtab.SymbolTable
	counter int
	// inlining tracks the helpers on the current expansion path so a cycle
	// among @inline functions is caught instead of recursing forever.
	inlining []string
}

func New(table *symtab.SymbolTable) *Inliner {
	return &Inliner{table: table}
}

// Run expands every @inline call site in every function that is not itself
// @inline. @inline function definitions are retained unchanged, so calls
// inside their own bodies are not expanded there; dead ones are the code
// generator's concern, not this pass's.
func (i *Inliner) Run(program *ast.Program) (*ast.Program, error) {
	for _, fn := range program.Functions {
		if fn.Variant() == ast.VariantInlined {
			continue
		}
		block, err := i.expandBlock(fn.Block)
		if err != nil {
			return nil, err
		}
		fn.Block = block
	}
	return program, nil
}

func (i *Inliner) fresh(name string) ast.Ident {
	ident := ast.NewIdent(fmt.Sprintf("%s$inl%d", name, i.counter))
	i.counter++
	return ident
}

func (i *Inliner) expandBlock(block *ast.Block) (*ast.Block, error) {
	statements := make([]ast.Statement, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		rewritten, hoisted, err := i.expandStatement(stmt)
		if err != nil {
			return nil, err
		}
		statements = append(statements, hoisted...)
		statements = append(statements, rewritten)
	}
	return &ast.Block{Statements: statements, Pos: block.Pos}, nil
}

func (i *Inliner) expandStatement(stmt ast.Statement) (ast.Statement, []ast.Statement, error) {
	switch stmt := stmt.(type) {
	case *ast.ReturnStmt:
		value, hoisted, err := i.expandExpression(stmt.Value)
		if err != nil {
			return nil, nil, err
		}
		return &ast.ReturnStmt{Value: value, Pos: stmt.Pos}, hoisted, nil
	case *ast.DefinitionStmt:
		value, hoisted, err := i.expandExpression(stmt.Value)
		if err != nil {
			return nil, nil, err
		}
		return &ast.DefinitionStmt{Name: stmt.Name, Type: stmt.Type, Value: value, Pos: stmt.Pos}, hoisted, nil
	case *ast.AssignStmt:
		value, hoisted, err := i.expandExpression(stmt.Value)
		if err != nil {
			return nil, nil, err
		}
		return &ast.AssignStmt{Op: stmt.Op, Place: stmt.Place, Value: value, Pos: stmt.Pos}, hoisted, nil
	case *ast.ConditionalStmt:
		condition, hoisted, err := i.expandExpression(stmt.Condition)
		if err != nil {
			return nil, nil, err
		}
		block, err := i.expandBlock(stmt.Block)
		if err != nil {
			return nil, nil, err
		}
		next := stmt.Next
		if next != nil {
			rewritten, nextHoisted, err := i.expandStatement(next)
			if err != nil {
				return nil, nil, err
			}
			hoisted = append(hoisted, nextHoisted...)
			next = rewritten
		}
		return &ast.ConditionalStmt{Condition: condition, Block: block, Next: next, Pos: stmt.Pos}, hoisted, nil
	case *ast.ConsoleStmt:
		args := make([]ast.Expression, len(stmt.Args))
		var hoisted []ast.Statement
		for idx, arg := range stmt.Args {
			expanded, argHoisted, err := i.expandExpression(arg)
			if err != nil {
				return nil, nil, err
			}
			hoisted = append(hoisted, argHoisted...)
			args[idx] = expanded
		}
		return &ast.ConsoleStmt{Kind: stmt.Kind, Format: stmt.Format, Args: args, Pos: stmt.Pos}, hoisted, nil
	case *ast.Block:
		block, err := i.expandBlock(stmt)
		return block, nil, err
	default:
		return stmt, nil, nil
	}
}

func (i *Inliner) expandExpression(expr ast.Expression) (ast.Expression, []ast.Statement, error) {
	switch expr := expr.(type) {
	case *ast.BinaryExpr:
		left, leftHoisted, err := i.expandExpression(expr.Left)
		if err != nil {
			return nil, nil, err
		}
		right, rightHoisted, err := i.expandExpression(expr.Right)
		if err != nil {
			return nil, nil, err
		}
		return &ast.BinaryExpr{Op: expr.Op, Left: left, Right: right, Pos: expr.Pos},
			append(leftHoisted, rightHoisted...), nil
	case *ast.UnaryExpr:
		inner, hoisted, err := i.expandExpression(expr.Inner)
		if err != nil {
			return nil, nil, err
		}
		return &ast.UnaryExpr{Op: expr.Op, Inner: inner, Pos: expr.Pos}, hoisted, nil
	case *ast.TernaryExpr:
		condition, hoisted, err := i.expandExpression(expr.Condition)
		if err != nil {
			return nil, nil, err
		}
		ifTrue, trueHoisted, err := i.expandExpression(expr.IfTrue)
		if err != nil {
			return nil, nil, err
		}
		ifFalse, falseHoisted, err := i.expandExpression(expr.IfFalse)
		if err != nil {
			return nil, nil, err
		}
		hoisted = append(hoisted, trueHoisted...)
		hoisted = append(hoisted, falseHoisted...)
		return &ast.TernaryExpr{Condition: condition, IfTrue: ifTrue, IfFalse: ifFalse, Pos: expr.Pos}, hoisted, nil
	case *ast.CallExpr:
		return i.expandCall(expr)
	case *ast.MemberAccess:
		inner, hoisted, err := i.expandExpression(expr.Inner)
		if err != nil {
			return nil, nil, err
		}
		return &ast.MemberAccess{Inner: inner, Member: expr.Member, Pos: expr.Pos}, hoisted, nil
	case *ast.TupleExpr:
		elements := make([]ast.Expression, len(expr.Elements))
		var hoisted []ast.Statement
		for idx, element := range expr.Elements {
			expanded, elementHoisted, err := i.expandExpression(element)
			if err != nil {
				return nil, nil, err
			}
			hoisted = append(hoisted, elementHoisted...)
			elements[idx] = expanded
		}
		return &ast.TupleExpr{Elements: elements, Pos: expr.Pos}, hoisted, nil
	case *ast.CircuitInit:
		members := make([]ast.CircuitVariableInitializer, len(expr.Members))
		var hoisted []ast.Statement
		for idx, member := range expr.Members {
			expanded, memberHoisted, err := i.expandExpression(member.Value)
			if err != nil {
				return nil, nil, err
			}
			hoisted = append(hoisted, memberHoisted...)
			members[idx] = ast.CircuitVariableInitializer{Name: member.Name, Value: expanded}
		}
		return &ast.CircuitInit{Name: expr.Name, Members: members, Pos: expr.Pos}, hoisted, nil
	default:
		return expr, nil, nil
	}
}

// expandCall splices the body of an @inline callee. Arguments bind through
// hoisted definitions carrying fresh names, helper-local definitions are
// freshened, and the value of the trailing return replaces the call.
func (i *Inliner) expandCall(expr *ast.CallExpr) (ast.Expression, []ast.Statement, error) {
	if expr.On != nil {
		// Core calls never inline; expand their arguments only.
		return i.expandCallArgs(expr)
	}
	fn, err := i.table.LookupFunction(expr.Callee)
	if err != nil || fn.Variant() != ast.VariantInlined {
		return i.expandCallArgs(expr)
	}

	for _, active := range i.inlining {
		if active == fn.Name.Name {
			cycle := append(append([]string{}, i.inlining...), fn.Name.Name)
			return nil, nil, errors.NewRecursiveCall(strings.Join(cycle, " -> "), expr.Pos)
		}
	}
	var hoisted []ast.Statement

	// Bind each argument to a fresh name standing in for the parameter.
	renames := make(map[string]ast.Ident, len(fn.Inputs))
	for idx, input := range fn.Inputs {
		if idx >= len(expr.Args) {
			break
		}
		arg, argHoisted, err := i.expandExpression(expr.Args[idx])
		if err != nil {
			return nil, nil, err
		}
		hoisted = append(hoisted, argHoisted...)

		bound := i.fresh(input.Identifier.Name)
		renames[input.Identifier.Name] = bound
		hoisted = append(hoisted, &ast.DefinitionStmt{
			Name:  bound,
			Type:  input.Type,
			Value: arg,
			Pos:   expr.Pos,
		})
	}

	i.inlining = append(i.inlining, fn.Name.Name)
	defer func() { i.inlining = i.inlining[:len(i.inlining)-1] }()

	body := ast.CloneBlock(fn.Block)
	result, bodyStatements, err := i.spliceBody(body, renames, expr)
	if err != nil {
		return nil, nil, err
	}

	// The spliced body may itself call @inline helpers.
	expandedBody, err := i.expandBlock(&ast.Block{Statements: bodyStatements})
	if err != nil {
		return nil, nil, err
	}
	hoisted = append(hoisted, expandedBody.Statements...)

	result, resultHoisted, err := i.expandExpression(result)
	if err != nil {
		return nil, nil, err
	}
	hoisted = append(hoisted, resultHoisted...)
	return result, hoisted, nil
}

func (i *Inliner) expandCallArgs(expr *ast.CallExpr) (ast.Expression, []ast.Statement, error) {
	args := make([]ast.Expression, len(expr.Args))
	var hoisted []ast.Statement
	for idx, arg := range expr.Args {
		expanded, argHoisted, err := i.expandExpression(arg)
		if err != nil {
			return nil, nil, err
		}
		hoisted = append(hoisted, argHoisted...)
		args[idx] = expanded
	}
	return &ast.CallExpr{On: expr.On, Callee: expr.Callee, Args: args, Pos: expr.Pos}, hoisted, nil
}

// spliceBody freshens helper-local names, substitutes parameter bindings,
// and splits off the trailing return. Inlinable helpers are straight-line:
// exactly one return, in tail position.
func (i *Inliner) spliceBody(body *ast.Block, renames map[string]ast.Ident, call *ast.CallExpr) (ast.Expression, []ast.Statement, error) {
	n := len(body.Statements)
	if n == 0 {
		return nil, nil, errors.Bug("inlined function has an empty body", call.Pos)
	}
	trailing, ok := body.Statements[n-1].(*ast.ReturnStmt)
	if !ok {
		return nil, nil, errors.Bug(
			fmt.Sprintf("inlined function %s does not end in a return", call.Callee.Name), call.Pos)
	}

	statements := make([]ast.Statement, 0, n-1)
	for _, stmt := range body.Statements[:n-1] {
		switch stmt := stmt.(type) {
		case *ast.DefinitionStmt:
			value := substitute(stmt.Value, renames)
			bound := i.fresh(stmt.Name.Name)
			renames[stmt.Name.Name] = bound
			statements = append(statements, &ast.DefinitionStmt{Name: bound, Type: stmt.Type, Value: value, Pos: stmt.Pos})
		case *ast.AssignStmt:
			place := substitute(stmt.Place, renames)
			value := substitute(stmt.Value, renames)
			statements = append(statements, &ast.AssignStmt{Op: stmt.Op, Place: place, Value: value, Pos: stmt.Pos})
		case *ast.ConsoleStmt:
			args := make([]ast.Expression, len(stmt.Args))
			for idx, arg := range stmt.Args {
				args[idx] = substitute(arg, renames)
			}
			statements = append(statements, &ast.ConsoleStmt{Kind: stmt.Kind, Format: stmt.Format, Args: args, Pos: stmt.Pos})
		default:
			return nil, nil, errors.Bug(
				fmt.Sprintf("inlined function %s has a non-straight-line body", call.Callee.Name), call.Pos)
		}
	}

	return substitute(trailing.Value, renames), statements, nil
}

// substitute rewrites identifiers per the rename map, leaving everything
// else untouched.
func substitute(expr ast.Expression, renames map[string]ast.Ident) ast.Expression {
	switch expr := expr.(type) {
	case *ast.IdentExpr:
		if bound, ok := renames[expr.Ident.Name]; ok {
			return &ast.IdentExpr{Ident: bound}
		}
		return expr
	case *ast.BinaryExpr:
		return &ast.BinaryExpr{
			Op:    expr.Op,
			Left:  substitute(expr.Left, renames),
			Right: substitute(expr.Right, renames),
			Pos:   expr.Pos,
		}
	case *ast.UnaryExpr:
		return &ast.UnaryExpr{Op: expr.Op, Inner: substitute(expr.Inner, renames), Pos: expr.Pos}
	case *ast.TernaryExpr:
		return &ast.TernaryExpr{
			Condition: substitute(expr.Condition, renames),
			IfTrue:    substitute(expr.IfTrue, renames),
			IfFalse:   substitute(expr.IfFalse, renames),
			Pos:       expr.Pos,
		}
	case *ast.CallExpr:
		args := make([]ast.Expression, len(expr.Args))
		for idx, arg := range expr.Args {
			args[idx] = substitute(arg, renames)
		}
		return &ast.CallExpr{On: expr.On, Callee: expr.Callee, Args: args, Pos: expr.Pos}
	case *ast.MemberAccess:
		return &ast.MemberAccess{Inner: substitute(expr.Inner, renames), Member: expr.Member, Pos: expr.Pos}
	case *ast.TupleExpr:
		elements := make([]ast.Expression, len(expr.Elements))
		for idx, element := range expr.Elements {
			elements[idx] = substitute(element, renames)
		}
		return &ast.TupleExpr{Elements: elements, Pos: expr.Pos}
	case *ast.CircuitInit:
		members := make([]ast.CircuitVariableInitializer, len(expr.Members))
		for idx, member := range expr.Members {
			members[idx] = ast.CircuitVariableInitializer{Name: member.Name, Value: substitute(member.Value, renames)}
		}
		return &ast.CircuitInit{Name: expr.Name, Members: members, Pos: expr.Pos}
	default:
		return expr
	}
}
