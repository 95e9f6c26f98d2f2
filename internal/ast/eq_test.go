package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualityIgnoresSpans(t *testing.T) {
	a := &IdentExpr{Ident: Ident{Name: "x", Pos: Position{Line: 1, Column: 4}}}
	b := &IdentExpr{Ident: Ident{Name: "x", Pos: Position{Line: 9, Column: 1}}}
	assert.True(t, EqExpression(a, b))

	ta := Type{Kind: TypeNamed, Name: Ident{Name: "Pt", Pos: Position{Line: 2}}}
	tb := Type{Kind: TypeNamed, Name: Ident{Name: "Pt", Pos: Position{Line: 7}}}
	assert.True(t, ta.EqFlat(tb))
}

func TestEqualityIsStructural(t *testing.T) {
	left := &BinaryExpr{Op: OpAdd, Left: NewIdentExpr("a"), Right: NewIdentExpr("b")}
	same := &BinaryExpr{Op: OpAdd, Left: NewIdentExpr("a"), Right: NewIdentExpr("b")}
	different := &BinaryExpr{Op: OpSub, Left: NewIdentExpr("a"), Right: NewIdentExpr("b")}

	assert.True(t, EqExpression(left, same))
	assert.False(t, EqExpression(left, different))
	assert.False(t, EqExpression(left, NewIdentExpr("a")))
}

func TestTupleTypesDoNotNest(t *testing.T) {
	flat := Tuple([]Type{{Kind: TypeU8}, {Kind: TypeU8}})
	nested := Tuple([]Type{flat, {Kind: TypeU8}})
	assert.False(t, flat.EqFlat(nested))
	assert.False(t, nested.Elements[0].IsPrimitive())
}

func TestCloneIsDeep(t *testing.T) {
	original := &Block{Statements: []Statement{
		SimpleAssign(NewIdent("x"), &BinaryExpr{Op: OpAdd, Left: NewIdentExpr("a"), Right: NewIdentExpr("b")}),
	}}
	clone := CloneBlock(original)
	assert.True(t, EqBlock(original, clone))

	// Mutating the clone must not reach the original.
	clone.Statements[0].(*AssignStmt).Value.(*BinaryExpr).Left = NewIdentExpr("z")
	assert.False(t, EqBlock(original, clone))
}
