package ast

import (
	"fmt"
	"strings"
)

// The printers render a canonical, re-parseable surface form. Pass tests
// compare printed bodies instead of walking node structures by hand.

func (e *IdentExpr) String() string { return e.Ident.Name }

func (e *LiteralExpr) String() string {
	switch e.Kind {
	case TypeBoolean, TypeAddress:
		return e.Raw
	default:
		return e.Raw + typeNames[e.Kind]
	}
}

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("%s %s %s", parenthesize(e.Left), e.Op, parenthesize(e.Right))
}

func (e *UnaryExpr) String() string {
	return fmt.Sprintf("%s%s", e.Op, parenthesize(e.Inner))
}

func (e *TernaryExpr) String() string {
	return fmt.Sprintf("%s ? %s : %s", parenthesize(e.Condition), e.IfTrue.String(), e.IfFalse.String())
}

func (e *CallExpr) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	callee := e.Callee.Name
	if e.On != nil {
		callee = e.On.Name + "::" + callee
	}
	return fmt.Sprintf("%s(%s)", callee, strings.Join(args, ", "))
}

func (e *MemberAccess) String() string {
	return fmt.Sprintf("%s.%s", parenthesize(e.Inner), e.Member.Name)
}

func (e *TupleExpr) String() string {
	parts := make([]string, len(e.Elements))
	for i, el := range e.Elements {
		parts[i] = el.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (e *CircuitInit) String() string {
	parts := make([]string, len(e.Members))
	for i, m := range e.Members {
		parts[i] = fmt.Sprintf("%s: %s", m.Name.Name, m.Value.String())
	}
	return fmt.Sprintf("%s { %s }", e.Name.Name, strings.Join(parts, ", "))
}

func (e *ErrExpr) String() string { return "<err>" }

// parenthesize wraps compound subexpressions so the printed form re-parses
// with the same shape.
func parenthesize(e Expression) string {
	switch e.(type) {
	case *BinaryExpr, *TernaryExpr:
		return "(" + e.String() + ")"
	default:
		return e.String()
	}
}

func (s *ReturnStmt) String() string {
	return fmt.Sprintf("return %s;", s.Value.String())
}

func (s *DefinitionStmt) String() string {
	return fmt.Sprintf("let %s: %s = %s;", s.Name.Name, s.Type.String(), s.Value.String())
}

func (s *AssignStmt) String() string {
	return fmt.Sprintf("%s %s %s;", s.Place.String(), s.Op, s.Value.String())
}

func (s *ConditionalStmt) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "if %s %s", s.Condition.String(), s.Block.String())
	if s.Next != nil {
		b.WriteString(" else ")
		b.WriteString(s.Next.String())
	}
	return b.String()
}

func (s *IterationStmt) String() string {
	return fmt.Sprintf("for %s: %s in %s..%s %s",
		s.Variable.Name, s.Type.String(), s.Start.String(), s.Stop.String(), s.Block.String())
}

func (s *ConsoleStmt) String() string {
	args := make([]string, 0, len(s.Args)+1)
	if s.Kind != ConsoleAssert {
		args = append(args, fmt.Sprintf("%q", s.Format))
	}
	for _, a := range s.Args {
		args = append(args, a.String())
	}
	return fmt.Sprintf("console.%s(%s);", s.Kind, strings.Join(args, ", "))
}

func (s *Block) String() string {
	if len(s.Statements) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{\n")
	for _, stmt := range s.Statements {
		b.WriteString("    " + strings.ReplaceAll(stmt.String(), "\n", "\n    ") + "\n")
	}
	b.WriteString("}")
	return b.String()
}

func (f *Function) String() string {
	var b strings.Builder
	for _, a := range f.Annotations {
		b.WriteString(a.String())
		b.WriteByte('\n')
	}
	params := make([]string, len(f.Inputs))
	for i, in := range f.Inputs {
		if in.Mode == ModeNone {
			params[i] = fmt.Sprintf("%s: %s", in.Identifier.Name, in.Type.String())
		} else {
			params[i] = fmt.Sprintf("%s %s: %s", in.Mode, in.Identifier.Name, in.Type.String())
		}
	}
	fmt.Fprintf(&b, "function %s(%s)", f.Name.Name, strings.Join(params, ", "))
	if f.Output.Kind != TypeNone {
		fmt.Fprintf(&b, " -> %s", f.Output.String())
	}
	b.WriteByte(' ')
	b.WriteString(f.Block.String())
	return b.String()
}

func (c *Circuit) String() string {
	keyword := "circuit"
	if c.IsRecord {
		keyword = "record"
	}
	parts := make([]string, len(c.Members))
	for i, m := range c.Members {
		parts[i] = fmt.Sprintf("%s: %s", m.Name.Name, m.Type.String())
	}
	return fmt.Sprintf("%s %s { %s }", keyword, c.Name.Name, strings.Join(parts, ", "))
}

func (p *Program) String() string {
	var b strings.Builder
	for _, c := range p.Circuits {
		b.WriteString(c.String())
		b.WriteString("\n\n")
	}
	for _, f := range p.Functions {
		b.WriteString(f.String())
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
