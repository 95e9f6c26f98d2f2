package ast

// CloneExpression deep-copies an expression. The unroller and inliner clone
// bodies before substituting into them so repeated copies never share nodes.
func CloneExpression(e Expression) Expression {
	switch e := e.(type) {
	case *IdentExpr:
		return &IdentExpr{Ident: e.Ident}
	case *LiteralExpr:
		c := *e
		return &c
	case *BinaryExpr:
		return &BinaryExpr{Op: e.Op, Left: CloneExpression(e.Left), Right: CloneExpression(e.Right), Pos: e.Pos}
	case *UnaryExpr:
		return &UnaryExpr{Op: e.Op, Inner: CloneExpression(e.Inner), Pos: e.Pos}
	case *TernaryExpr:
		return &TernaryExpr{
			Condition: CloneExpression(e.Condition),
			IfTrue:    CloneExpression(e.IfTrue),
			IfFalse:   CloneExpression(e.IfFalse),
			Pos:       e.Pos,
		}
	case *CallExpr:
		args := make([]Expression, len(e.Args))
		for i, a := range e.Args {
			args[i] = CloneExpression(a)
		}
		var on *Ident
		if e.On != nil {
			o := *e.On
			on = &o
		}
		return &CallExpr{On: on, Callee: e.Callee, Args: args, Pos: e.Pos}
	case *MemberAccess:
		return &MemberAccess{Inner: CloneExpression(e.Inner), Member: e.Member, Pos: e.Pos}
	case *TupleExpr:
		elements := make([]Expression, len(e.Elements))
		for i, el := range e.Elements {
			elements[i] = CloneExpression(el)
		}
		return &TupleExpr{Elements: elements, Pos: e.Pos}
	case *CircuitInit:
		members := make([]CircuitVariableInitializer, len(e.Members))
		for i, m := range e.Members {
			members[i] = CircuitVariableInitializer{Name: m.Name, Value: CloneExpression(m.Value)}
		}
		return &CircuitInit{Name: e.Name, Members: members, Pos: e.Pos}
	case *ErrExpr:
		return &ErrExpr{Pos: e.Pos}
	default:
		return e
	}
}

// CloneStatement deep-copies a statement.
func CloneStatement(s Statement) Statement {
	switch s := s.(type) {
	case *ReturnStmt:
		return &ReturnStmt{Value: CloneExpression(s.Value), Pos: s.Pos}
	case *DefinitionStmt:
		return &DefinitionStmt{Name: s.Name, Type: s.Type, Value: CloneExpression(s.Value), Pos: s.Pos}
	case *AssignStmt:
		return &AssignStmt{Op: s.Op, Place: CloneExpression(s.Place), Value: CloneExpression(s.Value), Pos: s.Pos}
	case *ConditionalStmt:
		c := &ConditionalStmt{Condition: CloneExpression(s.Condition), Block: CloneBlock(s.Block), Pos: s.Pos}
		if s.Next != nil {
			c.Next = CloneStatement(s.Next)
		}
		return c
	case *IterationStmt:
		return &IterationStmt{
			Variable: s.Variable,
			Type:     s.Type,
			Start:    CloneExpression(s.Start),
			Stop:     CloneExpression(s.Stop),
			Block:    CloneBlock(s.Block),
			Pos:      s.Pos,
		}
	case *ConsoleStmt:
		args := make([]Expression, len(s.Args))
		for i, a := range s.Args {
			args[i] = CloneExpression(a)
		}
		return &ConsoleStmt{Kind: s.Kind, Format: s.Format, Args: args, Pos: s.Pos}
	case *Block:
		return CloneBlock(s)
	default:
		return s
	}
}

// CloneBlock deep-copies a block.
func CloneBlock(b *Block) *Block {
	statements := make([]Statement, len(b.Statements))
	for i, s := range b.Statements {
		statements[i] = CloneStatement(s)
	}
	return &Block{Statements: statements, Pos: b.Pos}
}
