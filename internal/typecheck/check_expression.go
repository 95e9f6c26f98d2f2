package typecheck

import (
	"strconv"

	"veil/internal/ast"
	"veil/internal/errors"
)

// checkExpression types an expression against an optional expected type and
// returns the actual type, or nil if typing failed (a diagnostic has been
// emitted in that case).
func (c *Checker) checkExpression(expr ast.Expression, expected *ast.Type) *ast.Type {
	switch expr := expr.(type) {
	case *ast.IdentExpr:
		return c.checkIdent(expr, expected)
	case *ast.LiteralExpr:
		return c.ret(ast.Type{Kind: expr.Kind}, expected, expr.Pos)
	case *ast.BinaryExpr:
		return c.checkBinary(expr, expected)
	case *ast.UnaryExpr:
		return c.checkUnary(expr, expected)
	case *ast.TernaryExpr:
		return c.checkTernary(expr, expected)
	case *ast.CallExpr:
		return c.checkCall(expr, expected)
	case *ast.MemberAccess:
		return c.checkMemberAccess(expr, expected)
	case *ast.TupleExpr:
		return c.checkTuple(expr, expected)
	case *ast.CircuitInit:
		return c.checkCircuitInit(expr, expected)
	default:
		return nil
	}
}

// ret asserts the actual type against the expected one and hands it back,
// mirroring the checker's single exit point for leaf expressions.
func (c *Checker) ret(actual ast.Type, expected *ast.Type, pos ast.Position) *ast.Type {
	if expected != nil && !actual.EqFlat(*expected) {
		c.emit(errors.NewTypeShouldBe(actual.String(), expected.String(), pos))
	}
	return &actual
}

func (c *Checker) checkIdent(expr *ast.IdentExpr, expected *ast.Type) *ast.Type {
	entry, err := c.table.LookupVariable(expr.Ident)
	if err != nil {
		c.emit(err.(errors.CompilerError))
		return nil
	}
	if c.read != nil {
		c.read[expr.Ident.Name] = true
	}
	return c.ret(entry.Type, expected, expr.Ident.Pos)
}

func (c *Checker) checkBinary(expr *ast.BinaryExpr, expected *ast.Type) *ast.Type {
	switch expr.Op {
	case ast.OpAdd, ast.OpSub:
		left := c.checkExpression(expr.Left, nil)
		right := c.checkExpression(expr.Right, nil)
		c.assertOneOfKinds(left, fieldGroupInts, expr.Left.NodePos())
		c.assertEqTypes(left, right, expr.Pos)
		if left == nil {
			return right
		}
		return c.ret(*left, expected, expr.Pos)
	case ast.OpMul:
		left := c.checkExpression(expr.Left, nil)
		right := c.checkExpression(expr.Right, nil)
		// Scalars participate in arithmetic only through multiplication
		// with a field operand.
		if isScalar(left) || isScalar(right) {
			if isScalar(left) {
				c.assertOneOfKinds(right, typeSet{ast.TypeField}, expr.Right.NodePos())
			} else {
				c.assertOneOfKinds(left, typeSet{ast.TypeField}, expr.Left.NodePos())
			}
			return c.ret(ast.Type{Kind: ast.TypeField}, expected, expr.Pos)
		}
		c.assertOneOfKinds(left, fieldInts, expr.Left.NodePos())
		c.assertEqTypes(left, right, expr.Pos)
		if left == nil {
			return right
		}
		return c.ret(*left, expected, expr.Pos)
	case ast.OpDiv, ast.OpPow:
		left := c.checkExpression(expr.Left, nil)
		right := c.checkExpression(expr.Right, nil)
		c.assertOneOfKinds(left, fieldInts, expr.Left.NodePos())
		c.assertEqTypes(left, right, expr.Pos)
		if left == nil {
			return right
		}
		return c.ret(*left, expected, expr.Pos)
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor:
		left := c.checkExpression(expr.Left, nil)
		right := c.checkExpression(expr.Right, nil)
		c.assertInt(left, expr.Left.NodePos())
		c.assertEqTypes(left, right, expr.Pos)
		if left == nil {
			return right
		}
		return c.ret(*left, expected, expr.Pos)
	case ast.OpShl, ast.OpShr, ast.OpShrSigned:
		left := c.checkExpression(expr.Left, nil)
		right := c.checkExpression(expr.Right, nil)
		c.assertInt(left, expr.Left.NodePos())
		c.assertMagnitude(right, expr.Right.NodePos())
		if left == nil {
			return nil
		}
		return c.ret(*left, expected, expr.Pos)
	case ast.OpAnd, ast.OpOr:
		left := c.checkExpression(expr.Left, nil)
		right := c.checkExpression(expr.Right, nil)
		c.assertBool(left, expr.Left.NodePos())
		c.assertBool(right, expr.Right.NodePos())
		return c.ret(ast.Type{Kind: ast.TypeBoolean}, expected, expr.Pos)
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		left := c.checkExpression(expr.Left, nil)
		right := c.checkExpression(expr.Right, nil)
		c.assertOneOfKinds(left, fieldScalarInts, expr.Left.NodePos())
		c.assertEqTypes(left, right, expr.Pos)
		return c.ret(ast.Type{Kind: ast.TypeBoolean}, expected, expr.Pos)
	case ast.OpEq, ast.OpNeq:
		left := c.checkExpression(expr.Left, nil)
		right := c.checkExpression(expr.Right, nil)
		if left != nil && !left.IsPrimitive() {
			c.emit(errors.NewExpectedOneTypeOf(left.String(), "a primitive type", expr.Left.NodePos()))
		}
		c.assertEqTypes(left, right, expr.Pos)
		return c.ret(ast.Type{Kind: ast.TypeBoolean}, expected, expr.Pos)
	default:
		return nil
	}
}

func isScalar(t *ast.Type) bool {
	return t != nil && t.Kind == ast.TypeScalar
}

func (c *Checker) checkUnary(expr *ast.UnaryExpr, expected *ast.Type) *ast.Type {
	switch expr.Op {
	case ast.OpNot:
		inner := c.checkExpression(expr.Inner, nil)
		c.assertBool(inner, expr.Inner.NodePos())
		return c.ret(ast.Type{Kind: ast.TypeBoolean}, expected, expr.Pos)
	default: // negation
		inner := c.checkExpression(expr.Inner, nil)
		c.assertOneOfKinds(inner, negatableKinds, expr.Inner.NodePos())
		if inner == nil {
			return nil
		}
		return c.ret(*inner, expected, expr.Pos)
	}
}

func (c *Checker) checkTernary(expr *ast.TernaryExpr, expected *ast.Type) *ast.Type {
	cond := c.checkExpression(expr.Condition, nil)
	c.assertBool(cond, expr.Condition.NodePos())

	ifTrue := c.checkExpression(expr.IfTrue, expected)
	ifFalse := c.checkExpression(expr.IfFalse, expected)
	c.assertEqTypes(ifTrue, ifFalse, expr.Pos)
	if ifTrue != nil {
		return ifTrue
	}
	return ifFalse
}

func (c *Checker) checkCall(expr *ast.CallExpr, expected *ast.Type) *ast.Type {
	if expr.On != nil {
		return c.checkCoreCall(expr, expected)
	}

	fn, err := c.table.LookupFunction(expr.Callee)
	if err != nil {
		c.emit(err.(errors.CompilerError))
		return nil
	}

	if len(expr.Args) != len(fn.Inputs) {
		c.emit(errors.NewTypeShouldBe(
			plural(len(expr.Args), "argument"), plural(len(fn.Inputs), "argument"), expr.Pos))
	}
	for i, arg := range expr.Args {
		if i < len(fn.Inputs) {
			declared := fn.Inputs[i].Type
			c.checkExpression(arg, &declared)
		}
	}

	// Record the call edge; cycles through program functions are rejected
	// once the whole program has been visited.
	c.callGraph.AddEdge(c.parent, fn.Name.Name)

	return c.ret(fn.Output, expected, expr.Pos)
}

func (c *Checker) checkCoreCall(expr *ast.CallExpr, expected *ast.Type) *ast.Type {
	core, ok := CoreFromSymbols(expr.On.Name, expr.Callee.Name)
	if !ok {
		c.emit(errors.NewInvalidCoreInstruction(expr.On.Name, expr.Callee.Name, expr.Pos))
		return nil
	}

	if len(expr.Args) != core.Arity {
		c.emit(errors.NewTypeShouldBe(
			plural(len(expr.Args), "argument"), plural(core.Arity, "argument"), expr.Pos))
	}
	for i, arg := range expr.Args {
		argType := c.checkExpression(arg, nil)
		switch i {
		case 0:
			if argType != nil && !argType.IsPrimitive() {
				c.emit(errors.NewExpectedOneTypeOf(argType.String(), "a primitive type", arg.NodePos()))
			}
		case 1:
			c.assertOneOfKinds(argType, typeSet{ast.TypeScalar}, arg.NodePos())
		}
	}

	return c.ret(core.Output, expected, expr.Pos)
}

func (c *Checker) checkMemberAccess(expr *ast.MemberAccess, expected *ast.Type) *ast.Type {
	inner := c.checkExpression(expr.Inner, nil)
	if inner == nil {
		return nil
	}
	if inner.Kind != ast.TypeNamed {
		c.emit(errors.NewExpectedOneTypeOf(inner.String(), "a circuit or record", expr.Inner.NodePos()))
		return nil
	}
	circuit, err := c.table.LookupCircuit(inner.Name)
	if err != nil {
		c.emit(err.(errors.CompilerError))
		return nil
	}
	member, ok := circuit.Member(expr.Member.Name)
	if !ok {
		c.emit(errors.NewUnknownSymbol(expr.Member.Name, expr.Member.Pos))
		return nil
	}
	return c.ret(member.Type, expected, expr.Pos)
}

func (c *Checker) checkTuple(expr *ast.TupleExpr, expected *ast.Type) *ast.Type {
	var expectedElements []ast.Type
	if expected != nil && expected.Kind == ast.TypeTuple && len(expected.Elements) == len(expr.Elements) {
		expectedElements = expected.Elements
	}

	elements := make([]ast.Type, 0, len(expr.Elements))
	for i, element := range expr.Elements {
		var want *ast.Type
		if expectedElements != nil {
			want = &expectedElements[i]
		}
		actual := c.checkExpression(element, want)
		if actual == nil {
			return nil
		}
		c.assertNotTuple(*actual, element.NodePos())
		elements = append(elements, *actual)
	}
	return c.ret(ast.Tuple(elements), expected, expr.Pos)
}

func (c *Checker) checkCircuitInit(expr *ast.CircuitInit, expected *ast.Type) *ast.Type {
	circuit, err := c.table.LookupCircuit(expr.Name)
	if err != nil {
		c.emit(err.(errors.CompilerError))
		return nil
	}

	seen := make(map[string]bool, len(expr.Members))
	for _, member := range expr.Members {
		if seen[member.Name.Name] {
			c.emit(errors.NewDuplicateAggregateMember(circuit.Name.Name, member.Name.Pos))
			continue
		}
		seen[member.Name.Name] = true

		declared, ok := circuit.Member(member.Name.Name)
		if !ok {
			c.emit(errors.NewUnknownSymbol(member.Name.Name, member.Name.Pos))
			continue
		}
		declaredType := declared.Type
		c.checkExpression(member.Value, &declaredType)
	}
	for _, declared := range circuit.Members {
		if !seen[declared.Name.Name] {
			c.emit(errors.NewUnknownSymbol(declared.Name.Name, expr.Pos))
		}
	}

	return c.ret(ast.Named(circuit.Name), expected, expr.Pos)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
