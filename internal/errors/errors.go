package errors

import (
	"fmt"

	"veil/internal/ast"
)

// Level represents the severity of a diagnostic.
type Level string

const (
	Error   Level = "error"
	Warning Level = "warning"
)

// CompilerError is a structured diagnostic with optional suggestions.
type CompilerError struct {
	Level       Level
	Code        Code
	Message     string
	Position    ast.Position
	Length      int
	Suggestions []string
	Notes       []string
}

// Error satisfies the error interface so internal invariant violations can
// travel through ordinary Go error returns.
func (e CompilerError) Error() string {
	return fmt.Sprintf("%s[%s]: %s", e.Level, e.Code, e.Message)
}

func newError(code Code, message string, pos ast.Position) CompilerError {
	return CompilerError{Level: Error, Code: code, Message: message, Position: pos, Length: 1}
}

// Bug constructs an internal compiler error. Bugs abort the pipeline
// unconditionally and are never rendered as user diagnostics.
func Bug(message string, pos ast.Position) CompilerError {
	return newError(InternalInvariantBroken, message, pos)
}

// IsBug reports whether err is an internal compiler error.
func IsBug(err error) bool {
	ce, ok := err.(CompilerError)
	return ok && IsInternal(ce.Code)
}

// NewUnknownAnnotation diagnoses an annotation the compiler does not know.
func NewUnknownAnnotation(name string, pos ast.Position) CompilerError {
	e := newError(UnknownAnnotation, fmt.Sprintf("unknown annotation @%s", name), pos)
	e.Length = len(name) + 1
	e.Suggestions = append(e.Suggestions, "valid annotations are @program and @inline")
	return e
}

// NewProgramAndInlineAnnotation diagnoses the conflicting annotation pair.
func NewProgramAndInlineAnnotation(fn string, pos ast.Position) CompilerError {
	e := newError(ProgramAndInlineAnnotation,
		fmt.Sprintf("function '%s' is annotated both @program and @inline", fn), pos)
	e.Notes = append(e.Notes, "a program function is an entry point and can never be inlined")
	return e
}

// NewHelperHasInputMode diagnoses a mode on a helper parameter.
func NewHelperHasInputMode(param string, pos ast.Position) CompilerError {
	e := newError(HelperHasInputMode,
		fmt.Sprintf("helper function parameter '%s' cannot have an input mode", param), pos)
	e.Suggestions = append(e.Suggestions, "input modes are only meaningful on @program functions")
	return e
}

// NewFunctionHasNoReturn diagnoses a function body with a missing return.
func NewFunctionHasNoReturn(fn string, pos ast.Position) CompilerError {
	e := newError(FunctionHasNoReturn, fmt.Sprintf("function '%s' has no return statement", fn), pos)
	e.Suggestions = append(e.Suggestions, "add a return statement on every terminating path")
	return e
}

// NewTupleNotAllowed diagnoses a tuple in a forbidden position.
func NewTupleNotAllowed(pos ast.Position) CompilerError {
	e := newError(TupleNotAllowed, "tuple type is not allowed here", pos)
	e.Notes = append(e.Notes, "tuples may not nest and may not appear as aggregate members")
	return e
}

// NewTypeShouldBe diagnoses a single-type mismatch.
func NewTypeShouldBe(actual, expected string, pos ast.Position) CompilerError {
	return newError(TypeShouldBe,
		fmt.Sprintf("expected type %s, found type %s", expected, actual), pos)
}

// NewExpectedOneTypeOf diagnoses a type outside a permitted set.
func NewExpectedOneTypeOf(actual, expected string, pos ast.Position) CompilerError {
	return newError(ExpectedOneTypeOf,
		fmt.Sprintf("expected one type of %s, found type %s", expected, actual), pos)
}

// NewInvalidCoreInstruction diagnoses an unknown (aggregate, method) pair.
func NewInvalidCoreInstruction(aggregate, method string, pos ast.Position) CompilerError {
	return newError(InvalidCoreInstruction,
		fmt.Sprintf("%s::%s is not a core instruction", aggregate, method), pos)
}

// NewShadowedVariable diagnoses a duplicate insertion into one scope.
func NewShadowedVariable(name string, pos ast.Position) CompilerError {
	e := newError(ShadowedVariable, fmt.Sprintf("'%s' is already declared in this scope", name), pos)
	e.Length = len(name)
	return e
}

// NewUnknownSymbol diagnoses a lookup miss.
func NewUnknownSymbol(name string, pos ast.Position) CompilerError {
	e := newError(UnknownSymbol, fmt.Sprintf("unknown symbol '%s'", name), pos)
	e.Length = len(name)
	e.Suggestions = append(e.Suggestions, "declare the variable with 'let' before use")
	return e
}

// NewDuplicateRecordVariable diagnoses a repeated record member name.
func NewDuplicateRecordVariable(record string, pos ast.Position) CompilerError {
	return newError(DuplicateRecordVariable,
		fmt.Sprintf("record '%s' declares a member name more than once", record), pos)
}

// NewDuplicateAggregateMember diagnoses a repeated circuit member name.
func NewDuplicateAggregateMember(circuit string, pos ast.Position) CompilerError {
	return newError(DuplicateAggregateMember,
		fmt.Sprintf("circuit '%s' declares a member name more than once", circuit), pos)
}

// NewRequiredRecordVariable diagnoses a record missing owner or gates.
func NewRequiredRecordVariable(member, type_ string, pos ast.Position) CompilerError {
	e := newError(RequiredRecordVariable,
		fmt.Sprintf("record is missing required member '%s: %s'", member, type_), pos)
	e.Suggestions = append(e.Suggestions, fmt.Sprintf("add the member: %s: %s", member, type_))
	return e
}

// NewRecordVariableWrongType diagnoses a required record member with the
// wrong type.
func NewRecordVariableWrongType(member, expected string, pos ast.Position) CompilerError {
	return newError(RecordVariableWrongType,
		fmt.Sprintf("record member '%s' must have type %s", member, expected), pos)
}

// NewRecursiveCall diagnoses a cycle in the call graph, whether it passes
// through a program function, among helpers, or among @inline helpers.
func NewRecursiveCall(cycle string, pos ast.Position) CompilerError {
	e := newError(RecursiveCall, fmt.Sprintf("cycle in call graph: %s", cycle), pos)
	e.Notes = append(e.Notes, "program functions cannot call each other recursively")
	return e
}

// NewCyclicAggregate diagnoses circuits whose member types form a cycle.
func NewCyclicAggregate(cycle string, pos ast.Position) CompilerError {
	return newError(CyclicAggregateDependency,
		fmt.Sprintf("cycle in aggregate dependencies: %s", cycle), pos)
}

// NewIncompatibleAnnotations diagnoses an annotation pair that cannot be
// combined, other than the dedicated @program/@inline case.
func NewIncompatibleAnnotations(first, second string, pos ast.Position) CompilerError {
	return newError(IncompatibleAnnotations,
		fmt.Sprintf("annotations @%s and @%s cannot be combined", first, second), pos)
}

// NewImpossibleConsoleAssertCall reports the console.assert code path that
// formatting-only handling must never reach.
func NewImpossibleConsoleAssertCall(pos ast.Position) CompilerError {
	return newError(ImpossibleConsoleAssertCall, "console.assert has no format arguments", pos)
}

// NewUnusedVariableWarning warns about a variable that is never read.
func NewUnusedVariableWarning(name string, pos ast.Position) CompilerError {
	return CompilerError{
		Level:    Warning,
		Code:     "W0001",
		Message:  fmt.Sprintf("variable '%s' is assigned but never used", name),
		Position: pos,
		Length:   len(name),
	}
}
