package ast

import "strings"

// TypeKind discriminates the members of the Type variant.
type TypeKind int

const (
	TypeBoolean TypeKind = iota
	TypeField
	TypeGroup
	TypeScalar
	TypeAddress
	TypeI8
	TypeI16
	TypeI32
	TypeI64
	TypeI128
	TypeU8
	TypeU16
	TypeU32
	TypeU64
	TypeU128
	TypeTuple
	TypeNamed
	// TypeNone marks an absent type, e.g. the output of a function that
	// returns nothing. It never appears inside a tuple.
	TypeNone
)

// Type describes the type of an expression or declaration.
// Tuple elements may not themselves be tuples; the type checker enforces this.
type Type struct {
	Kind     TypeKind
	Elements []Type // populated for TypeTuple
	Name     Ident  // populated for TypeNamed
}

func Named(name Ident) Type {
	return Type{Kind: TypeNamed, Name: name}
}

func Tuple(elements []Type) Type {
	return Type{Kind: TypeTuple, Elements: elements}
}

// EqFlat reports structural equality ignoring source spans.
// It is the only equality used by the passes; spans are diagnostic metadata.
func (t Type) EqFlat(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TypeTuple:
		if len(t.Elements) != len(other.Elements) {
			return false
		}
		for i := range t.Elements {
			if !t.Elements[i].EqFlat(other.Elements[i]) {
				return false
			}
		}
		return true
	case TypeNamed:
		return t.Name.Name == other.Name.Name
	default:
		return true
	}
}

// IsInteger reports whether the type is one of the ten sized integer types.
func (t Type) IsInteger() bool {
	return t.Kind >= TypeI8 && t.Kind <= TypeU128
}

// IsSignedInteger reports whether the type is a signed integer type.
func (t Type) IsSignedInteger() bool {
	return t.Kind >= TypeI8 && t.Kind <= TypeI128
}

// IsUnsignedInteger reports whether the type is an unsigned integer type.
func (t Type) IsUnsignedInteger() bool {
	return t.Kind >= TypeU8 && t.Kind <= TypeU128
}

// IsMagnitude reports whether the type is a legal shift amount (u8, u16, u32).
func (t Type) IsMagnitude() bool {
	return t.Kind == TypeU8 || t.Kind == TypeU16 || t.Kind == TypeU32
}

// IsPrimitive reports whether the type is neither a tuple nor a named aggregate.
func (t Type) IsPrimitive() bool {
	return t.Kind != TypeTuple && t.Kind != TypeNamed
}

var typeNames = map[TypeKind]string{
	TypeBoolean: "bool",
	TypeField:   "field",
	TypeGroup:   "group",
	TypeScalar:  "scalar",
	TypeAddress: "address",
	TypeI8:      "i8",
	TypeI16:     "i16",
	TypeI32:     "i32",
	TypeI64:     "i64",
	TypeI128:    "i128",
	TypeU8:      "u8",
	TypeU16:     "u16",
	TypeU32:     "u32",
	TypeU64:     "u64",
	TypeU128:    "u128",
	TypeNone:    "()",
}

func (t Type) String() string {
	switch t.Kind {
	case TypeTuple:
		parts := make([]string, len(t.Elements))
		for i, e := range t.Elements {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case TypeNamed:
		return t.Name.Name
	default:
		return typeNames[t.Kind]
	}
}

// TypeFromName resolves a primitive type keyword. The second result is false
// for anything that is not a primitive keyword, in which case the caller
// should treat the name as a user-defined aggregate.
func TypeFromName(name string) (Type, bool) {
	for kind, n := range typeNames {
		if n == name && kind != TypeNone {
			return Type{Kind: kind}, true
		}
	}
	return Type{}, false
}
