// Package ssa converts function bodies into static single assignment form:
// definitions become assignments, every assignment target gets a fresh name,
// compound assignment operators are lowered, and conditional writes are
// reconciled by explicit ternary φ-assignments at the join point.
//
// Conditional statements survive this pass as markers; the final conditional
// flattener erases them once the φ-assignments are in place.
package ssa

import (
	"fmt"
	"strings"

	"veil/internal/ast"
	"veil/internal/errors"
)

// Assigner is the single reconstructing visitor of the pass. The counter is
// monotonic across the whole program so fresh names are globally unique.
type Assigner struct {
	rename  *RenameTable
	counter int
	phis    []ast.Statement
}

func New() *Assigner {
	return &Assigner{rename: NewRenameTable(nil)}
}

// Run converts every function of the program.
func (a *Assigner) Run(program *ast.Program) (*ast.Program, error) {
	for _, fn := range program.Functions {
		if err := a.reconstructFunction(fn); err != nil {
			return nil, err
		}
	}
	return program, nil
}

func (a *Assigner) uniqueID() int {
	id := a.counter
	a.counter++
	return id
}

func (a *Assigner) push() {
	a.rename = NewRenameTable(a.rename)
}

func (a *Assigner) pop() *RenameTable {
	popped := a.rename
	a.rename = popped.parent
	return popped
}

func (a *Assigner) drainPhis() []ast.Statement {
	phis := a.phis
	a.phis = nil
	return phis
}

// freshLHS renames an assignment target. Names carrying the '$' separator
// were produced by an earlier run of this pass and are kept as-is, which
// makes the conversion idempotent on well-formed SSA input. The lexer admits
// '$' after an identifier's first character, so a hand-written name
// containing '$' is kept as-is too.
func (a *Assigner) freshLHS(name ast.Ident) ast.Ident {
	if strings.ContainsRune(name.Name, '$') {
		a.rename.Update(name.Name, name.Name)
		return name
	}
	fresh := ast.NewIdent(fmt.Sprintf("%s$%d", name.Name, a.uniqueID()))
	a.rename.Update(name.Name, fresh.Name)
	return fresh
}

func (a *Assigner) reconstructFunction(fn *ast.Function) error {
	a.push()
	defer a.pop()

	// Parameters keep their original names; seed identity bindings so body
	// reads resolve.
	for _, input := range fn.Inputs {
		a.rename.Update(input.Identifier.Name, input.Identifier.Name)
	}

	block, err := a.reconstructBlock(fn.Block)
	if err != nil {
		return err
	}
	fn.Block = block
	return nil
}

func (a *Assigner) reconstructBlock(block *ast.Block) (*ast.Block, error) {
	statements := make([]ast.Statement, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		reconstructed, err := a.reconstructStatement(stmt)
		if err != nil {
			return nil, err
		}
		statements = append(statements, reconstructed...)
		// φ-assignments land immediately after the conditional that
		// produced them.
		if _, ok := stmt.(*ast.ConditionalStmt); ok {
			statements = append(statements, a.drainPhis()...)
		}
	}
	return &ast.Block{Statements: statements, Pos: block.Pos}, nil
}

// reconstructStatement returns the replacement statements: condition hoists
// (if any) followed by the rewritten statement.
func (a *Assigner) reconstructStatement(stmt ast.Statement) ([]ast.Statement, error) {
	switch stmt := stmt.(type) {
	case *ast.ReturnStmt:
		value, err := a.reconstructExpression(stmt.Value)
		if err != nil {
			return nil, err
		}
		return []ast.Statement{&ast.ReturnStmt{Value: value, Pos: stmt.Pos}}, nil

	case *ast.DefinitionStmt:
		// `let x: T = e` has the same naming effect as `x = e`.
		value, err := a.reconstructExpression(stmt.Value)
		if err != nil {
			return nil, err
		}
		return []ast.Statement{ast.SimpleAssign(a.freshLHS(stmt.Name), value)}, nil

	case *ast.AssignStmt:
		return a.reconstructAssign(stmt)

	case *ast.ConditionalStmt:
		return a.reconstructConditional(stmt)

	case *ast.ConsoleStmt:
		args := make([]ast.Expression, len(stmt.Args))
		for i, arg := range stmt.Args {
			reconstructed, err := a.reconstructExpression(arg)
			if err != nil {
				return nil, err
			}
			args[i] = reconstructed
		}
		return []ast.Statement{&ast.ConsoleStmt{Kind: stmt.Kind, Format: stmt.Format, Args: args, Pos: stmt.Pos}}, nil

	case *ast.Block:
		block, err := a.reconstructBlock(stmt)
		if err != nil {
			return nil, err
		}
		return []ast.Statement{block}, nil

	case *ast.IterationStmt:
		return nil, errors.Bug("iteration statement survived loop unrolling", stmt.Pos)

	default:
		return []ast.Statement{stmt}, nil
	}
}

// reconstructAssign lowers compound operators and renames the target. The
// right-hand side of a compound assignment refers to the pre-assignment name
// of the target, so the value is reconstructed before the place is renamed.
func (a *Assigner) reconstructAssign(stmt *ast.AssignStmt) ([]ast.Statement, error) {
	place, ok := stmt.Place.(*ast.IdentExpr)
	if !ok {
		return nil, errors.Bug("assignment place is not an identifier", stmt.Pos)
	}

	value, err := a.reconstructExpression(stmt.Value)
	if err != nil {
		return nil, err
	}

	if binop, compound := ast.BinaryOfAssign(stmt.Op); compound {
		previous, err := a.reconstructExpression(&ast.IdentExpr{Ident: place.Ident})
		if err != nil {
			return nil, err
		}
		value = &ast.BinaryExpr{Op: binop, Left: previous, Right: value, Pos: stmt.Pos}
	}

	return []ast.Statement{ast.SimpleAssign(a.freshLHS(place.Ident), value)}, nil
}

func (a *Assigner) reconstructConditional(stmt *ast.ConditionalStmt) ([]ast.Statement, error) {
	condition, err := a.reconstructExpression(stmt.Condition)
	if err != nil {
		return nil, err
	}

	// Hoist non-trivial conditions into a fresh assignment so the condition
	// is evaluated once, no matter how many φ-assignments select on it.
	var hoists []ast.Statement
	switch condition.(type) {
	case *ast.IdentExpr, *ast.LiteralExpr:
	case *ast.CallExpr:
		return nil, errors.Bug("call expression in a conditional condition at this stage", stmt.Pos)
	case *ast.ErrExpr:
		return nil, errors.Bug("error expression in a conditional condition at this stage", stmt.Pos)
	default:
		name := ast.NewIdent(fmt.Sprintf("cond$%d", a.uniqueID()))
		hoists = append(hoists, ast.SimpleAssign(name, condition))
		condition = &ast.IdentExpr{Ident: name}
	}

	a.push()
	block, err := a.reconstructBlock(stmt.Block)
	if err != nil {
		a.pop()
		return nil, err
	}
	ifTable := a.pop()

	a.push()
	var next ast.Statement
	if stmt.Next != nil {
		reconstructed, err := a.reconstructStatement(stmt.Next)
		if err != nil {
			a.pop()
			return nil, err
		}
		if len(reconstructed) == 1 {
			next = reconstructed[0]
		} else {
			// A nested else-if produced condition hoists of its own; they
			// belong inside the else arm.
			next = &ast.Block{Statements: reconstructed}
		}
	}
	elseTable := a.pop()

	a.createPhis(condition, ifTable, elseTable)

	return append(hoists, &ast.ConditionalStmt{
		Condition: condition,
		Block:     block,
		Next:      next,
		Pos:       stmt.Pos,
	}), nil
}

// createPhis reconciles the writes of the two arms. For each symbol written
// on either side, the missing side falls back to the pre-conditional
// binding; a symbol local to one arm (no binding anywhere else) needs no
// reconciliation and is skipped.
func (a *Assigner) createPhis(condition ast.Expression, ifTable, elseTable *RenameTable) {
	writeSet := ifTable.LocalNames()
	for _, symbol := range elseTable.LocalNames() {
		if _, written := ifTable.mapping[symbol]; !written {
			writeSet = append(writeSet, symbol)
		}
	}

	for _, symbol := range writeSet {
		ifName, okIf := ifTable.Lookup(symbol)
		elseName, okElse := elseTable.Lookup(symbol)
		if !okIf || !okElse {
			continue
		}

		fresh := ast.NewIdent(fmt.Sprintf("%s$%d", baseSymbol(symbol), a.uniqueID()))
		a.rename.Update(symbol, fresh.Name)

		a.phis = append(a.phis, ast.SimpleAssign(fresh, &ast.TernaryExpr{
			Condition: ast.CloneExpression(condition),
			IfTrue:    ast.NewIdentExpr(ifName),
			IfFalse:   ast.NewIdentExpr(elseName),
		}))
	}
}

// baseSymbol strips an earlier rename suffix so repeated conversions do not
// stack suffixes on φ names.
func baseSymbol(symbol string) string {
	if i := strings.IndexByte(symbol, '$'); i >= 0 {
		return symbol[:i]
	}
	return symbol
}

func (a *Assigner) reconstructExpression(expr ast.Expression) (ast.Expression, error) {
	switch expr := expr.(type) {
	case *ast.IdentExpr:
		name, ok := a.rename.Lookup(expr.Ident.Name)
		if !ok {
			return nil, errors.Bug(
				fmt.Sprintf("no unique name bound for variable %s", expr.Ident.Name), expr.Ident.Pos)
		}
		return ast.NewIdentExpr(name), nil
	case *ast.LiteralExpr:
		return expr, nil
	case *ast.BinaryExpr:
		left, err := a.reconstructExpression(expr.Left)
		if err != nil {
			return nil, err
		}
		right, err := a.reconstructExpression(expr.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: expr.Op, Left: left, Right: right, Pos: expr.Pos}, nil
	case *ast.UnaryExpr:
		inner, err := a.reconstructExpression(expr.Inner)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: expr.Op, Inner: inner, Pos: expr.Pos}, nil
	case *ast.TernaryExpr:
		condition, err := a.reconstructExpression(expr.Condition)
		if err != nil {
			return nil, err
		}
		ifTrue, err := a.reconstructExpression(expr.IfTrue)
		if err != nil {
			return nil, err
		}
		ifFalse, err := a.reconstructExpression(expr.IfFalse)
		if err != nil {
			return nil, err
		}
		return &ast.TernaryExpr{Condition: condition, IfTrue: ifTrue, IfFalse: ifFalse, Pos: expr.Pos}, nil
	case *ast.CallExpr:
		args := make([]ast.Expression, len(expr.Args))
		for i, arg := range expr.Args {
			reconstructed, err := a.reconstructExpression(arg)
			if err != nil {
				return nil, err
			}
			args[i] = reconstructed
		}
		return &ast.CallExpr{On: expr.On, Callee: expr.Callee, Args: args, Pos: expr.Pos}, nil
	case *ast.MemberAccess:
		inner, err := a.reconstructExpression(expr.Inner)
		if err != nil {
			return nil, err
		}
		return &ast.MemberAccess{Inner: inner, Member: expr.Member, Pos: expr.Pos}, nil
	case *ast.TupleExpr:
		elements := make([]ast.Expression, len(expr.Elements))
		for i, element := range expr.Elements {
			reconstructed, err := a.reconstructExpression(element)
			if err != nil {
				return nil, err
			}
			elements[i] = reconstructed
		}
		return &ast.TupleExpr{Elements: elements, Pos: expr.Pos}, nil
	case *ast.CircuitInit:
		members := make([]ast.CircuitVariableInitializer, len(expr.Members))
		for i, member := range expr.Members {
			value, err := a.reconstructExpression(member.Value)
			if err != nil {
				return nil, err
			}
			members[i] = ast.CircuitVariableInitializer{Name: member.Name, Value: value}
		}
		return &ast.CircuitInit{Name: expr.Name, Members: members, Pos: expr.Pos}, nil
	default:
		return expr, nil
	}
}
