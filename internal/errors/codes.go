package errors

// Code identifies a diagnostic kind. The taxonomy is closed: surface tooling
// matches on these identifiers, so adding a kind is a breaking change.
//
// Code ranges:
// E0001-E0099: annotation and function-shape errors
// E0100-E0199: type errors
// E0200-E0299: symbol resolution errors
// E0300-E0399: aggregate and record errors
// E0900-E0999: internal compiler errors
// W0001-W0099: warnings
type Code string

const (
	// E0001: an annotation the compiler does not recognize
	UnknownAnnotation Code = "E0001"

	// E0002: a pair of annotations that cannot be combined
	IncompatibleAnnotations Code = "E0002"

	// E0003: both @program and @inline on one function
	ProgramAndInlineAnnotation Code = "E0003"

	// E0004: a helper function parameter carrying an input mode
	HelperHasInputMode Code = "E0004"

	// E0005: a function with no return on some terminating path
	FunctionHasNoReturn Code = "E0005"

	// E0006: a cycle in the call graph
	RecursiveCall Code = "E0006"

	// E0101: a tuple where tuples are forbidden (nested tuple, aggregate member)
	TupleNotAllowed Code = "E0101"

	// E0102: an expression whose type differs from the single expected type
	TypeShouldBe Code = "E0102"

	// E0103: an expression whose type is outside the set of permitted types
	ExpectedOneTypeOf Code = "E0103"

	// E0104: an unknown (aggregate, method) pair in an associated call
	InvalidCoreInstruction Code = "E0104"

	// E0201: a declaration that collides with an existing name in its scope
	ShadowedVariable Code = "E0201"

	// E0202: a name with no binding in any enclosing scope
	UnknownSymbol Code = "E0202"

	// E0301: two record members sharing a name
	DuplicateRecordVariable Code = "E0301"

	// E0302: two circuit members sharing a name
	DuplicateAggregateMember Code = "E0302"

	// E0303: a record missing owner or gates
	RequiredRecordVariable Code = "E0303"

	// E0304: owner or gates declared with the wrong type
	RecordVariableWrongType Code = "E0304"

	// E0305: a cycle in the aggregate-dependency graph
	CyclicAggregateDependency Code = "E0305"

	// E0901: console.assert reached a code path reserved for error/log
	ImpossibleConsoleAssertCall Code = "E0901"

	// E0902: an internal pass invariant observed broken
	InternalInvariantBroken Code = "E0902"
)

// GetErrorDescription returns a human-readable description of the code.
func GetErrorDescription(code Code) string {
	switch code {
	case UnknownAnnotation:
		return "Function annotation is not recognized"
	case IncompatibleAnnotations:
		return "Function annotations cannot be combined"
	case ProgramAndInlineAnnotation:
		return "A function cannot be both @program and @inline"
	case HelperHasInputMode:
		return "Helper function parameters cannot carry input modes"
	case FunctionHasNoReturn:
		return "Function does not return on all paths"
	case RecursiveCall:
		return "Call graph contains a cycle"
	case TupleNotAllowed:
		return "Tuple type is not permitted in this position"
	case TypeShouldBe:
		return "Expression type does not match the expected type"
	case ExpectedOneTypeOf:
		return "Expression type is outside the permitted set"
	case InvalidCoreInstruction:
		return "Unknown core instruction"
	case ShadowedVariable:
		return "Declaration shadows an existing name in the same scope"
	case UnknownSymbol:
		return "Name is not bound in any enclosing scope"
	case DuplicateRecordVariable:
		return "Record declares a member name twice"
	case DuplicateAggregateMember:
		return "Circuit declares a member name twice"
	case RequiredRecordVariable:
		return "Record is missing a required member"
	case RecordVariableWrongType:
		return "Required record member has the wrong type"
	case CyclicAggregateDependency:
		return "Aggregate definitions depend on each other cyclically"
	case ImpossibleConsoleAssertCall:
		return "console.assert cannot reach this code path"
	case InternalInvariantBroken:
		return "Internal compiler invariant broken"
	default:
		return "Unknown error code"
	}
}

// IsInternal reports whether the code denotes an internal compiler error
// rather than a user diagnostic.
func IsInternal(code Code) bool {
	return code >= "E0900" && code < "E1000"
}
