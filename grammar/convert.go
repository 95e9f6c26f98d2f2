package grammar

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"

	"veil/internal/ast"
	"veil/internal/errors"
)

// The converter turns the concrete-syntax tree into the mid-end AST. The
// only non-mechanical part is binary operator precedence, which the grammar
// leaves flat.

func position(pos lexer.Position) ast.Position {
	return ast.Position{
		Filename: pos.Filename,
		Offset:   pos.Offset,
		Line:     pos.Line,
		Column:   pos.Column,
	}
}

func convertFile(name string, file *SourceFile) (*ast.Program, error) {
	program := &ast.Program{Name: name, Network: "testnet3"}
	for _, item := range file.Items {
		switch {
		case item.Circuit != nil:
			circuit, err := convertCircuit(item.Circuit)
			if err != nil {
				return nil, err
			}
			program.Circuits = append(program.Circuits, circuit)
		case item.Function != nil:
			fn, err := convertFunction(item.Function)
			if err != nil {
				return nil, err
			}
			program.Functions = append(program.Functions, fn)
		}
	}
	return program, nil
}

func convertCircuit(decl *CircuitDecl) (*ast.Circuit, error) {
	circuit := &ast.Circuit{
		Name:     ast.Ident{Name: decl.Name, Pos: position(decl.Pos)},
		IsRecord: decl.Keyword == "record",
		Pos:      position(decl.Pos),
	}
	for _, member := range decl.Members {
		type_, err := convertType(member.Type)
		if err != nil {
			return nil, err
		}
		circuit.Members = append(circuit.Members, ast.CircuitMember{
			Name: ast.Ident{Name: member.Name, Pos: position(member.Pos)},
			Type: type_,
			Pos:  position(member.Pos),
		})
	}
	return circuit, nil
}

func convertFunction(decl *FunctionDecl) (*ast.Function, error) {
	fn := &ast.Function{
		Name: ast.Ident{Name: decl.Name, Pos: position(decl.Pos)},
		Pos:  position(decl.Pos),
	}
	for _, annotation := range decl.Annotations {
		fn.Annotations = append(fn.Annotations, ast.Annotation{
			Name: ast.NewIdent(annotation),
			Pos:  position(decl.Pos),
		})
	}
	for _, param := range decl.Params {
		type_, err := convertType(param.Type)
		if err != nil {
			return nil, err
		}
		fn.Inputs = append(fn.Inputs, ast.FunctionInput{
			Identifier: ast.Ident{Name: param.Name, Pos: position(param.Pos)},
			Mode:       convertMode(param.Mode),
			Type:       type_,
			Pos:        position(param.Pos),
		})
	}
	if decl.Output != nil {
		output, err := convertType(decl.Output)
		if err != nil {
			return nil, err
		}
		fn.Output = output
	} else {
		fn.Output = ast.Type{Kind: ast.TypeNone}
	}
	block, err := convertBlock(decl.Body)
	if err != nil {
		return nil, err
	}
	fn.Block = block
	return fn, nil
}

func convertMode(mode string) ast.ParamMode {
	switch mode {
	case "public":
		return ast.ModePublic
	case "private":
		return ast.ModePrivate
	case "constant":
		return ast.ModeConstant
	default:
		return ast.ModeNone
	}
}

func convertType(ref *TypeRef) (ast.Type, error) {
	if len(ref.Tuple) > 0 {
		elements := make([]ast.Type, len(ref.Tuple))
		for i, element := range ref.Tuple {
			converted, err := convertType(element)
			if err != nil {
				return ast.Type{}, err
			}
			elements[i] = converted
		}
		return ast.Tuple(elements), nil
	}
	if primitive, ok := ast.TypeFromName(ref.Name); ok {
		return primitive, nil
	}
	return ast.Named(ast.Ident{Name: ref.Name, Pos: position(ref.Pos)}), nil
}

func convertBlock(block *BlockStmt) (*ast.Block, error) {
	result := &ast.Block{Pos: position(block.Pos)}
	for _, stmt := range block.Statements {
		converted, err := convertStatement(stmt)
		if err != nil {
			return nil, err
		}
		result.Statements = append(result.Statements, converted)
	}
	return result, nil
}

func convertStatement(stmt *Stmt) (ast.Statement, error) {
	switch {
	case stmt.Let != nil:
		type_, err := convertType(stmt.Let.Type)
		if err != nil {
			return nil, err
		}
		value, err := convertExpr(stmt.Let.Value)
		if err != nil {
			return nil, err
		}
		return &ast.DefinitionStmt{
			Name:  ast.Ident{Name: stmt.Let.Name, Pos: position(stmt.Let.Pos)},
			Type:  type_,
			Value: value,
			Pos:   position(stmt.Let.Pos),
		}, nil
	case stmt.Return != nil:
		value, err := convertExpr(stmt.Return.Value)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Value: value, Pos: position(stmt.Return.Pos)}, nil
	case stmt.If != nil:
		return convertIf(stmt.If)
	case stmt.For != nil:
		return convertFor(stmt.For)
	case stmt.Console != nil:
		return convertConsole(stmt.Console)
	case stmt.Assign != nil:
		value, err := convertExpr(stmt.Assign.Value)
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{
			Op:    ast.AssignOp(stmt.Assign.Op),
			Place: &ast.IdentExpr{Ident: ast.Ident{Name: stmt.Assign.Target, Pos: position(stmt.Assign.Pos)}},
			Value: value,
			Pos:   position(stmt.Assign.Pos),
		}, nil
	default:
		return nil, fmt.Errorf("empty statement")
	}
}

func convertIf(stmt *IfStmt) (ast.Statement, error) {
	cond, err := convertExpr(stmt.Cond)
	if err != nil {
		return nil, err
	}
	then, err := convertBlock(stmt.Then)
	if err != nil {
		return nil, err
	}
	conditional := &ast.ConditionalStmt{Condition: cond, Block: then, Pos: position(stmt.Pos)}
	switch {
	case stmt.ElseIf != nil:
		next, err := convertIf(stmt.ElseIf)
		if err != nil {
			return nil, err
		}
		conditional.Next = next
	case stmt.Else != nil:
		next, err := convertBlock(stmt.Else)
		if err != nil {
			return nil, err
		}
		conditional.Next = next
	}
	return conditional, nil
}

func convertFor(stmt *ForStmt) (ast.Statement, error) {
	type_, err := convertType(stmt.Type)
	if err != nil {
		return nil, err
	}
	start, err := convertExpr(stmt.Start)
	if err != nil {
		return nil, err
	}
	stop, err := convertExpr(stmt.Stop)
	if err != nil {
		return nil, err
	}
	body, err := convertBlock(stmt.Body)
	if err != nil {
		return nil, err
	}
	return &ast.IterationStmt{
		Variable: ast.Ident{Name: stmt.Var, Pos: position(stmt.Pos)},
		Type:     type_,
		Start:    start,
		Stop:     stop,
		Block:    body,
		Pos:      position(stmt.Pos),
	}, nil
}

func convertConsole(stmt *ConsoleStmt) (ast.Statement, error) {
	console := &ast.ConsoleStmt{Pos: position(stmt.Pos)}
	switch stmt.Kind {
	case "assert":
		console.Kind = ast.ConsoleAssert
		// Assertions take a bare condition; only error and log format.
		if stmt.Format != nil {
			return nil, errors.NewImpossibleConsoleAssertCall(position(stmt.Pos))
		}
	case "error":
		console.Kind = ast.ConsoleError
	case "log":
		console.Kind = ast.ConsoleLog
	}
	if stmt.Format != nil {
		format, err := strconv.Unquote(*stmt.Format)
		if err != nil {
			return nil, fmt.Errorf("bad format string at %s: %w", stmt.Pos, err)
		}
		console.Format = format
	}
	for _, arg := range stmt.Args {
		converted, err := convertExpr(arg)
		if err != nil {
			return nil, err
		}
		console.Args = append(console.Args, converted)
	}
	return console, nil
}

func convertExpr(expr *Expr) (ast.Expression, error) {
	cond, err := convertBin(expr.Cond)
	if err != nil {
		return nil, err
	}
	if expr.IfTrue == nil {
		return cond, nil
	}
	ifTrue, err := convertExpr(expr.IfTrue)
	if err != nil {
		return nil, err
	}
	ifFalse, err := convertExpr(expr.IfFalse)
	if err != nil {
		return nil, err
	}
	return &ast.TernaryExpr{
		Condition: cond,
		IfTrue:    ifTrue,
		IfFalse:   ifFalse,
		Pos:       position(expr.Pos),
	}, nil
}

// precedence orders the binary operators; higher binds tighter.
var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"|": 5,
	"^": 6,
	"&": 7,
	"<<": 8, ">>": 8, ">>>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10,
	"**": 11,
}

// convertBin applies precedence climbing to the flat operand/operator list.
// Every operator is left-associative except `**`, which associates right.
func convertBin(expr *BinExpr) (ast.Expression, error) {
	left, err := convertUnary(expr.Left)
	if err != nil {
		return nil, err
	}
	operands := []ast.Expression{left}
	var ops []string
	for _, op := range expr.Ops {
		right, err := convertUnary(op.Right)
		if err != nil {
			return nil, err
		}
		operands = append(operands, right)
		ops = append(ops, op.Op)
	}
	result, _ := climb(operands, ops, 0, 1)
	return result, nil
}

func climb(operands []ast.Expression, ops []string, index, minPrec int) (ast.Expression, int) {
	left := operands[index]
	for index < len(ops) {
		prec := precedence[ops[index]]
		if prec < minPrec {
			break
		}
		op := ops[index]
		next := prec + 1
		if op == "**" {
			next = prec // right-associative
		}
		right, consumed := climb(operands, ops, index+1, next)
		left = &ast.BinaryExpr{Op: ast.BinaryOp(op), Left: left, Right: right, Pos: left.NodePos()}
		index = consumed
	}
	return left, index
}

func convertUnary(expr *UnExpr) (ast.Expression, error) {
	inner, err := convertPostfix(expr.Postfix)
	if err != nil {
		return nil, err
	}
	if expr.Op == nil {
		return inner, nil
	}
	op := ast.OpNegate
	if *expr.Op == "!" {
		op = ast.OpNot
	}
	return &ast.UnaryExpr{Op: op, Inner: inner, Pos: position(expr.Pos)}, nil
}

func convertPostfix(expr *PostfixExpr) (ast.Expression, error) {
	result, err := convertPrimary(expr.Primary)
	if err != nil {
		return nil, err
	}
	for _, member := range expr.Members {
		result = &ast.MemberAccess{
			Inner:  result,
			Member: ast.NewIdent(member),
			Pos:    position(expr.Pos),
		}
	}
	return result, nil
}

func convertPrimary(expr *PrimaryExpr) (ast.Expression, error) {
	pos := position(expr.Pos)
	switch {
	case expr.CoreCall != nil:
		args, err := convertArgs(expr.CoreCall.Args)
		if err != nil {
			return nil, err
		}
		on := ast.Ident{Name: expr.CoreCall.On, Pos: position(expr.CoreCall.Pos)}
		return &ast.CallExpr{
			On:     &on,
			Callee: ast.NewIdent(expr.CoreCall.Method),
			Args:   args,
			Pos:    position(expr.CoreCall.Pos),
		}, nil
	case expr.Call != nil:
		args, err := convertArgs(expr.Call.Args)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{
			Callee: ast.Ident{Name: expr.Call.Callee, Pos: position(expr.Call.Pos)},
			Args:   args,
			Pos:    position(expr.Call.Pos),
		}, nil
	case expr.Init != nil:
		init := &ast.CircuitInit{
			Name: ast.Ident{Name: expr.Init.Name, Pos: position(expr.Init.Pos)},
			Pos:  position(expr.Init.Pos),
		}
		for _, member := range expr.Init.Members {
			value, err := convertExpr(member.Value)
			if err != nil {
				return nil, err
			}
			init.Members = append(init.Members, ast.CircuitVariableInitializer{
				Name:  ast.Ident{Name: member.Name, Pos: position(member.Pos)},
				Value: value,
			})
		}
		return init, nil
	case expr.Literal != nil:
		return convertIntegerLiteral(*expr.Literal, pos)
	case expr.Address != nil:
		return &ast.LiteralExpr{Raw: *expr.Address, Kind: ast.TypeAddress, Pos: pos}, nil
	case expr.Bool != nil:
		return &ast.LiteralExpr{Raw: *expr.Bool, Kind: ast.TypeBoolean, Pos: pos}, nil
	case expr.Ident != nil:
		return &ast.IdentExpr{Ident: ast.Ident{Name: *expr.Ident, Pos: pos}}, nil
	case expr.Paren != nil:
		if len(expr.Paren.Elements) == 1 {
			return convertExpr(expr.Paren.Elements[0])
		}
		tuple := &ast.TupleExpr{Pos: position(expr.Paren.Pos)}
		for _, element := range expr.Paren.Elements {
			converted, err := convertExpr(element)
			if err != nil {
				return nil, err
			}
			tuple.Elements = append(tuple.Elements, converted)
		}
		return tuple, nil
	default:
		return nil, fmt.Errorf("empty expression at %s", expr.Pos)
	}
}

func convertArgs(args []*Expr) ([]ast.Expression, error) {
	converted := make([]ast.Expression, 0, len(args))
	for _, arg := range args {
		expr, err := convertExpr(arg)
		if err != nil {
			return nil, err
		}
		converted = append(converted, expr)
	}
	return converted, nil
}

// convertIntegerLiteral splits the mandatory type suffix off the digits.
func convertIntegerLiteral(raw string, pos ast.Position) (ast.Expression, error) {
	digits := raw
	suffix := ""
	for i, r := range raw {
		if r != '-' && (r < '0' || r > '9') {
			digits, suffix = raw[:i], raw[i:]
			break
		}
	}
	if suffix == "" {
		return nil, fmt.Errorf("integer literal %s at %d:%d requires a type suffix", raw, pos.Line, pos.Column)
	}
	kind, ok := ast.TypeFromName(suffix)
	if !ok {
		return nil, fmt.Errorf("unknown literal suffix %s", suffix)
	}
	return &ast.LiteralExpr{Raw: digits, Kind: kind.Kind, Pos: pos}, nil
}
