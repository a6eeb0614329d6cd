// Package resolve implements purely lexical name resolution: turning a
// name as written in source into a fully-qualified name, given only a
// document's current namespace and import table. It never consults the
// symbol store.
package resolve

import (
	"strings"

	"github.com/oxhq/phpls/internal/symbol"
)

// Relativity is how a written name relates to the current namespace.
type Relativity int

const (
	// Unqualified has no leading separator: "Foo" or "Foo\Bar".
	Unqualified Relativity = iota
	// Relative is prefixed with the "namespace" keyword: "namespace\Foo".
	Relative
	// FullyQualified has a leading separator: "\Foo\Bar".
	FullyQualified
)

const relativePrefix = "namespace\\"

// DetermineRelativity classifies a written name as unqualified, relative
// to the current namespace, or already fully qualified.
func DetermineRelativity(written string) Relativity {
	switch {
	case strings.HasPrefix(written, "\\"):
		return FullyQualified
	case strings.HasPrefix(strings.ToLower(written), relativePrefix):
		return Relative
	default:
		return Unqualified
	}
}

// Resolver holds the lexical context (current namespace and import table)
// needed to resolve a written name at one position in a document.
type Resolver struct {
	Namespace string // "" at global scope, no leading/trailing separator
	Imports   *symbol.ImportTable
}

// New builds a Resolver for the given namespace and import table.
func New(namespace string, imports *symbol.ImportTable) *Resolver {
	if imports == nil {
		imports = symbol.NewImportTable()
	}
	return &Resolver{Namespace: namespace, Imports: imports}
}

// Resolve turns a written name into an FQN. kind picks which import-table
// lane (and case rule) applies; it never affects a fully-qualified or
// relative input beyond stripping its prefix.
func (r *Resolver) Resolve(written string, kind symbol.ImportKind) string {
	switch DetermineRelativity(written) {
	case FullyQualified:
		return strings.TrimPrefix(written, "\\")
	case Relative:
		rest := written[len(relativePrefix):]
		return joinNamespace(r.Namespace, rest)
	default:
		return r.resolveUnqualified(written, kind)
	}
}

func (r *Resolver) resolveUnqualified(written string, kind symbol.ImportKind) string {
	parts := strings.SplitN(written, "\\", 2)
	head := parts[0]
	var tail string
	if len(parts) == 2 {
		tail = parts[1]
	}

	// Step 2: class names consult the import table even when qualified
	// (head\tail), replacing just the head segment with its alias target.
	if kind == symbol.ImportClass {
		if rule, ok := r.Imports.Lookup(head, symbol.ImportClass); ok {
			if tail == "" {
				return rule.Target
			}
			return rule.Target + "\\" + tail
		}
	}

	// Step 3: unqualified function/constant names (no inner separator)
	// consult the import table; anything with an inner separator falls
	// through to step 4 like an unresolved class name would.
	if (kind == symbol.ImportFunction || kind == symbol.ImportConstant) && tail == "" {
		if rule, ok := r.Imports.Lookup(head, kind); ok {
			return rule.Target
		}
	}

	// Fall back to the active namespace, or the bare name at global
	// scope. Unresolved function/constant names are not re-probed against
	// the global namespace the way PHP's own runtime resolver does; see
	// DESIGN.md for the tradeoff.
	return joinNamespace(r.Namespace, written)
}

func joinNamespace(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "\\" + name
}
