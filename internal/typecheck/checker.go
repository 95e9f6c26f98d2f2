// Package typecheck validates a parsed program and annotates the symbol
// table the later passes consume. The checker is error-continuing: it
// records diagnostics through the handler and keeps going, maximising the
// number of errors reported per invocation.
package typecheck

import (
	"strings"

	"veil/internal/ast"
	"veil/internal/errors"
	"veil/internal/symtab"
)

type typeSet []ast.TypeKind

var (
	intKinds = typeSet{
		ast.TypeI8, ast.TypeI16, ast.TypeI32, ast.TypeI64, ast.TypeI128,
		ast.TypeU8, ast.TypeU16, ast.TypeU32, ast.TypeU64, ast.TypeU128,
	}
	signedIntKinds  = typeSet{ast.TypeI8, ast.TypeI16, ast.TypeI32, ast.TypeI64, ast.TypeI128}
	magnitudeKinds  = typeSet{ast.TypeU8, ast.TypeU16, ast.TypeU32}
	fieldGroupInts  = append(typeSet{ast.TypeField, ast.TypeGroup}, intKinds...)
	fieldInts       = append(typeSet{ast.TypeField}, intKinds...)
	fieldScalarInts = append(typeSet{ast.TypeField, ast.TypeScalar}, intKinds...)
	negatableKinds  = append(typeSet{ast.TypeField, ast.TypeGroup}, signedIntKinds...)
)

func (s typeSet) contains(kind ast.TypeKind) bool {
	for _, k := range s {
		if k == kind {
			return true
		}
	}
	return false
}

func (s typeSet) String() string {
	parts := make([]string, len(s))
	for i, k := range s {
		parts[i] = ast.Type{Kind: k}.String()
	}
	return strings.Join(parts, ", ")
}

type declaredVariable struct {
	name string
	pos  ast.Position
}

// Checker walks the program once, validating and annotating as it goes.
type Checker struct {
	table   *symtab.SymbolTable
	handler *errors.Handler

	parent    string // name of the function being checked
	hasReturn bool

	isProgramFunction bool
	isInlined         bool

	// declared and read track `let` declarations for the unused-variable
	// warning; both reset per function.
	declared []declaredVariable
	read     map[string]bool

	// callGraph has an edge a -> b for every call of b in the body of a.
	callGraph *DiGraph
	// typeGraph has an edge a -> b for every member of circuit b typed as
	// circuit a.
	typeGraph *DiGraph
}

// Check validates the program and returns the populated symbol table. The
// caller decides whether to continue by consulting the handler.
func Check(program *ast.Program, handler *errors.Handler) *symtab.SymbolTable {
	table := symtab.New()
	checker := &Checker{
		table:     table,
		handler:   handler,
		callGraph: NewDiGraph(nil),
		typeGraph: NewDiGraph(nil),
	}
	checker.checkProgram(program)
	return table
}

func (c *Checker) emit(err errors.CompilerError) {
	c.handler.Emit(err)
}

// assertType emits TypeShouldBe unless actual equals expected. A nil actual
// means an earlier error already fired for the subexpression.
func (c *Checker) assertType(actual *ast.Type, expected ast.Type, pos ast.Position) {
	if actual != nil && !actual.EqFlat(expected) {
		c.emit(errors.NewTypeShouldBe(actual.String(), expected.String(), pos))
	}
}

// assertEqTypes emits TypeShouldBe unless the two types are equal.
func (c *Checker) assertEqTypes(t1, t2 *ast.Type, pos ast.Position) {
	if t1 != nil && t2 != nil && !t1.EqFlat(*t2) {
		c.emit(errors.NewTypeShouldBe(t1.String(), t2.String(), pos))
	}
}

// assertOneOfKinds emits ExpectedOneTypeOf unless the type's kind is in the
// permitted set. Tuples and named aggregates are never in a permitted set.
func (c *Checker) assertOneOfKinds(actual *ast.Type, permitted typeSet, pos ast.Position) {
	if actual == nil {
		return
	}
	if !actual.IsPrimitive() || !permitted.contains(actual.Kind) {
		c.emit(errors.NewExpectedOneTypeOf(actual.String(), permitted.String(), pos))
	}
}

func (c *Checker) assertBool(actual *ast.Type, pos ast.Position) {
	c.assertOneOfKinds(actual, typeSet{ast.TypeBoolean}, pos)
}

func (c *Checker) assertInt(actual *ast.Type, pos ast.Position) {
	c.assertOneOfKinds(actual, intKinds, pos)
}

func (c *Checker) assertMagnitude(actual *ast.Type, pos ast.Position) {
	c.assertOneOfKinds(actual, magnitudeKinds, pos)
}

// assertNotTuple emits TupleNotAllowed if the type is a tuple.
func (c *Checker) assertNotTuple(type_ ast.Type, pos ast.Position) {
	if type_.Kind == ast.TypeTuple {
		c.emit(errors.NewTupleNotAllowed(pos))
	}
}

// resolveType checks that a named type refers to a declared circuit and that
// tuples do not nest.
func (c *Checker) resolveType(type_ ast.Type, pos ast.Position) {
	switch type_.Kind {
	case ast.TypeNamed:
		if _, err := c.table.LookupCircuit(type_.Name); err != nil {
			c.emit(err.(errors.CompilerError))
		}
	case ast.TypeTuple:
		for _, element := range type_.Elements {
			c.assertNotTuple(element, pos)
			c.resolveType(element, pos)
		}
	}
}
