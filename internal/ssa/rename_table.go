package ssa

// RenameTable maps source symbols to the names most recently assigned to
// them by static single assignment. Parent links follow the control-flow
// graph rather than lexical scope: the table for a conditional arm points at
// the table that was current when the conditional was entered. Because the
// only control structure reaching this pass is the conditional statement,
// the control-flow graph is a tree and a single parent suffices.
type RenameTable struct {
	parent  *RenameTable
	mapping map[string]string
	// order records first-write order so φ-assignments come out
	// deterministically.
	order []string
}

func NewRenameTable(parent *RenameTable) *RenameTable {
	return &RenameTable{parent: parent, mapping: make(map[string]string)}
}

// Update binds symbol to name in this table, replacing any previous local
// binding.
func (t *RenameTable) Update(symbol, name string) {
	if _, exists := t.mapping[symbol]; !exists {
		t.order = append(t.order, symbol)
	}
	t.mapping[symbol] = name
}

// Lookup returns the name most recently bound to symbol at this point of the
// control-flow graph, searching ancestor tables on a local miss.
func (t *RenameTable) Lookup(symbol string) (string, bool) {
	for table := t; table != nil; table = table.parent {
		if name, ok := table.mapping[symbol]; ok {
			return name, true
		}
	}
	return "", false
}

// LocalNames returns the symbols written in this table, in first-write order.
func (t *RenameTable) LocalNames() []string {
	return t.order
}
