package ast

// EqExpression reports span-insensitive structural equality of expressions.
func EqExpression(a, b Expression) bool {
	switch a := a.(type) {
	case *IdentExpr:
		o, ok := b.(*IdentExpr)
		return ok && a.Ident.Matches(o.Ident)
	case *LiteralExpr:
		o, ok := b.(*LiteralExpr)
		return ok && a.Raw == o.Raw && a.Kind == o.Kind
	case *BinaryExpr:
		o, ok := b.(*BinaryExpr)
		return ok && a.Op == o.Op && EqExpression(a.Left, o.Left) && EqExpression(a.Right, o.Right)
	case *UnaryExpr:
		o, ok := b.(*UnaryExpr)
		return ok && a.Op == o.Op && EqExpression(a.Inner, o.Inner)
	case *TernaryExpr:
		o, ok := b.(*TernaryExpr)
		return ok && EqExpression(a.Condition, o.Condition) &&
			EqExpression(a.IfTrue, o.IfTrue) && EqExpression(a.IfFalse, o.IfFalse)
	case *CallExpr:
		o, ok := b.(*CallExpr)
		if !ok || !a.Callee.Matches(o.Callee) || len(a.Args) != len(o.Args) {
			return false
		}
		if (a.On == nil) != (o.On == nil) {
			return false
		}
		if a.On != nil && !a.On.Matches(*o.On) {
			return false
		}
		for i := range a.Args {
			if !EqExpression(a.Args[i], o.Args[i]) {
				return false
			}
		}
		return true
	case *MemberAccess:
		o, ok := b.(*MemberAccess)
		return ok && a.Member.Matches(o.Member) && EqExpression(a.Inner, o.Inner)
	case *TupleExpr:
		o, ok := b.(*TupleExpr)
		if !ok || len(a.Elements) != len(o.Elements) {
			return false
		}
		for i := range a.Elements {
			if !EqExpression(a.Elements[i], o.Elements[i]) {
				return false
			}
		}
		return true
	case *CircuitInit:
		o, ok := b.(*CircuitInit)
		if !ok || !a.Name.Matches(o.Name) || len(a.Members) != len(o.Members) {
			return false
		}
		for i := range a.Members {
			if !a.Members[i].Name.Matches(o.Members[i].Name) ||
				!EqExpression(a.Members[i].Value, o.Members[i].Value) {
				return false
			}
		}
		return true
	case *ErrExpr:
		_, ok := b.(*ErrExpr)
		return ok
	default:
		return false
	}
}

// EqStatement reports span-insensitive structural equality of statements.
func EqStatement(a, b Statement) bool {
	switch a := a.(type) {
	case *ReturnStmt:
		o, ok := b.(*ReturnStmt)
		return ok && EqExpression(a.Value, o.Value)
	case *DefinitionStmt:
		o, ok := b.(*DefinitionStmt)
		return ok && a.Name.Matches(o.Name) && a.Type.EqFlat(o.Type) && EqExpression(a.Value, o.Value)
	case *AssignStmt:
		o, ok := b.(*AssignStmt)
		return ok && a.Op == o.Op && EqExpression(a.Place, o.Place) && EqExpression(a.Value, o.Value)
	case *ConditionalStmt:
		o, ok := b.(*ConditionalStmt)
		if !ok || !EqExpression(a.Condition, o.Condition) || !EqBlock(a.Block, o.Block) {
			return false
		}
		if (a.Next == nil) != (o.Next == nil) {
			return false
		}
		return a.Next == nil || EqStatement(a.Next, o.Next)
	case *IterationStmt:
		o, ok := b.(*IterationStmt)
		return ok && a.Variable.Matches(o.Variable) && a.Type.EqFlat(o.Type) &&
			EqExpression(a.Start, o.Start) && EqExpression(a.Stop, o.Stop) && EqBlock(a.Block, o.Block)
	case *ConsoleStmt:
		o, ok := b.(*ConsoleStmt)
		if !ok || a.Kind != o.Kind || a.Format != o.Format || len(a.Args) != len(o.Args) {
			return false
		}
		for i := range a.Args {
			if !EqExpression(a.Args[i], o.Args[i]) {
				return false
			}
		}
		return true
	case *Block:
		o, ok := b.(*Block)
		return ok && EqBlock(a, o)
	default:
		return false
	}
}

// EqBlock reports span-insensitive structural equality of blocks.
func EqBlock(a, b *Block) bool {
	if len(a.Statements) != len(b.Statements) {
		return false
	}
	for i := range a.Statements {
		if !EqStatement(a.Statements[i], b.Statements[i]) {
			return false
		}
	}
	return true
}

// EqProgram reports span-insensitive structural equality of whole programs.
func EqProgram(a, b *Program) bool {
	if len(a.Functions) != len(b.Functions) || len(a.Circuits) != len(b.Circuits) {
		return false
	}
	for i := range a.Circuits {
		x, y := a.Circuits[i], b.Circuits[i]
		if !x.Name.Matches(y.Name) || x.IsRecord != y.IsRecord || len(x.Members) != len(y.Members) {
			return false
		}
		for j := range x.Members {
			if !x.Members[j].Name.Matches(y.Members[j].Name) || !x.Members[j].Type.EqFlat(y.Members[j].Type) {
				return false
			}
		}
	}
	for i := range a.Functions {
		x, y := a.Functions[i], b.Functions[i]
		if !x.Name.Matches(y.Name) || x.Variant() != y.Variant() ||
			!x.Output.EqFlat(y.Output) || len(x.Inputs) != len(y.Inputs) {
			return false
		}
		for j := range x.Inputs {
			if !x.Inputs[j].Identifier.Matches(y.Inputs[j].Identifier) ||
				x.Inputs[j].Mode != y.Inputs[j].Mode ||
				!x.Inputs[j].Type.EqFlat(y.Inputs[j].Type) {
				return false
			}
		}
		if !EqBlock(x.Block, y.Block) {
			return false
		}
	}
	return true
}
