package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/phpls/internal/symbol"
)

func TestResolveFullyQualifiedStripsLeadingSeparator(t *testing.T) {
	r := New("A\\B", symbol.NewImportTable())
	assert.Equal(t, "C\\D", r.Resolve("\\C\\D", symbol.ImportClass))
}

func TestResolveRelativePrependsCurrentNamespace(t *testing.T) {
	r := New("A\\B", symbol.NewImportTable())
	assert.Equal(t, "A\\B\\Foo", r.Resolve("namespace\\Foo", symbol.ImportClass))
}

func TestResolveUnqualifiedFallsBackToNamespace(t *testing.T) {
	r := New("A\\B", symbol.NewImportTable())
	assert.Equal(t, "A\\B\\Foo", r.Resolve("Foo", symbol.ImportClass))
}

func TestResolveUnqualifiedAtGlobalScope(t *testing.T) {
	r := New("", symbol.NewImportTable())
	assert.Equal(t, "Foo", r.Resolve("Foo", symbol.ImportClass))
}

func TestResolveClassUsesImportAliasForHeadSegment(t *testing.T) {
	imports := symbol.NewImportTable()
	imports.Add(symbol.ImportRule{Alias: "E", Target: "C\\D", Kind: symbol.ImportClass})
	r := New("A\\B", imports)

	// `use C\D as E; class F extends E\G {}` resolves E\G to C\D\G.
	assert.Equal(t, "C\\D\\G", r.Resolve("E\\G", symbol.ImportClass))
}

func TestResolveFunctionConstantOnlyConsultImportsWhenUnqualified(t *testing.T) {
	imports := symbol.NewImportTable()
	imports.Add(symbol.ImportRule{Alias: "foo", Target: "Lib\\foo", Kind: symbol.ImportFunction})
	r := New("A\\B", imports)

	assert.Equal(t, "Lib\\foo", r.Resolve("foo", symbol.ImportFunction))
	// Qualified function name never consults the import table (step 3
	// only applies when tail is empty).
	assert.Equal(t, "A\\B\\NS\\foo", r.Resolve("NS\\foo", symbol.ImportFunction))
}

func TestResolveIsIdempotentOnFullyQualifiedForm(t *testing.T) {
	imports := symbol.NewImportTable()
	imports.Add(symbol.ImportRule{Alias: "E", Target: "C\\D", Kind: symbol.ImportClass})
	r := New("A\\B", imports)

	for _, written := range []string{"Foo", "namespace\\Foo", "\\Foo\\Bar", "E\\G"} {
		fqn := r.Resolve(written, symbol.ImportClass)
		again := r.Resolve("\\"+fqn, symbol.ImportClass)
		require.Equal(t, fqn, again, "resolve(%q) not idempotent on its own FQN form", written)
	}
}

func TestDetermineRelativity(t *testing.T) {
	assert.Equal(t, FullyQualified, DetermineRelativity("\\Foo"))
	assert.Equal(t, Relative, DetermineRelativity("namespace\\Foo"))
	assert.Equal(t, Unqualified, DetermineRelativity("Foo"))
	assert.Equal(t, Unqualified, DetermineRelativity("Foo\\Bar"))
}
