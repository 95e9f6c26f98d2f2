package typecheck

import "veil/internal/ast"

// CoreInstruction describes one typed primitive reachable through an
// associated call of the form `Aggregate::method(args)`.
type CoreInstruction struct {
	Aggregate string
	Method    string
	// Arity is the number of arguments the instruction accepts. The first
	// argument may be any primitive type; a second argument, when present,
	// must be a scalar (the commitment randomizer).
	Arity  int
	Output ast.Type
}

var fieldType = ast.Type{Kind: ast.TypeField}
var groupType = ast.Type{Kind: ast.TypeGroup}

// coreInstructions is the closed routing table from (aggregate, method)
// pairs to core operations. Pairs outside the table fail with
// InvalidCoreInstruction.
var coreInstructions = map[[2]string]CoreInstruction{
	{"BHP256", "hash"}:      {"BHP256", "hash", 1, fieldType},
	{"BHP512", "hash"}:      {"BHP512", "hash", 1, fieldType},
	{"BHP768", "hash"}:      {"BHP768", "hash", 1, fieldType},
	{"BHP1024", "hash"}:     {"BHP1024", "hash", 1, fieldType},
	{"BHP256", "commit"}:    {"BHP256", "commit", 2, fieldType},
	{"BHP512", "commit"}:    {"BHP512", "commit", 2, fieldType},
	{"BHP768", "commit"}:    {"BHP768", "commit", 2, fieldType},
	{"BHP1024", "commit"}:   {"BHP1024", "commit", 2, fieldType},
	{"Pedersen64", "hash"}:  {"Pedersen64", "hash", 1, fieldType},
	{"Pedersen128", "hash"}: {"Pedersen128", "hash", 1, fieldType},
	{"Pedersen64", "commit"}:  {"Pedersen64", "commit", 2, groupType},
	{"Pedersen128", "commit"}: {"Pedersen128", "commit", 2, groupType},
	{"Poseidon2", "hash"}:   {"Poseidon2", "hash", 1, fieldType},
	{"Poseidon4", "hash"}:   {"Poseidon4", "hash", 1, fieldType},
	{"Poseidon8", "hash"}:   {"Poseidon8", "hash", 1, fieldType},
}

// CoreFromSymbols routes an (aggregate, method) pair to its core instruction.
func CoreFromSymbols(aggregate, method string) (CoreInstruction, bool) {
	core, ok := coreInstructions[[2]string{aggregate, method}]
	return core, ok
}
