package symbol

// Location pins a symbol's declaration to a document and a line range.
// Columns aren't tracked here: the parse-tree façade (internal/phptree)
// carries byte-accurate ranges; Location is the coarser, store-facing
// copy.
type Location struct {
	URI       string
	StartLine int
	EndLine   int
}

// Symbol is the one record shape used for every declared PHP construct,
// from namespaces down to parameters.
type Symbol struct {
	Kind        Kind
	Name        string // simple for members, FQN for top-level
	Modifiers   Modifiers
	Type        TypeString
	Description string
	Scope       string // owning declaration's name; empty for top-level
	Location    Location

	// Associated holds, for class-like symbols, the FQNs of the extends
	// target, implemented interfaces, and used traits, in that order of
	// first appearance.
	Associated []string

	// Children holds owned symbols in declaration order: members for
	// class-like symbols, parameters for functions/methods.
	Children []*Symbol
}

// New constructs a Symbol with the given kind and name; all other fields
// take zero values for the caller to fill in.
func New(kind Kind, name string) *Symbol {
	return &Symbol{Kind: kind, Name: name}
}

// AddChild appends child to s.Children and sets child.Scope to s.Name.
func (s *Symbol) AddChild(child *Symbol) {
	child.Scope = s.Name
	s.Children = append(s.Children, child)
}

// FindChild returns the first direct child with the given name, or nil.
// Name comparison follows each child's own kind: it folds case for kinds
// whose CaseInsensitive is true (methods among class members) and is exact
// for the rest (properties, class constants); callers needing other
// semantics should filter Children directly.
func (s *Symbol) FindChild(name string) *Symbol {
	for _, c := range s.Children {
		if c.Kind.CaseInsensitive() {
			if equalFold(c.Name, name) {
				return c
			}
		} else if c.Name == name {
			return c
		}
	}
	return nil
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
