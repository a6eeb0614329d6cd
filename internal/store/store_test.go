package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/phpls/internal/enginerr"
	"github.com/oxhq/phpls/internal/symbol"
)

func treeWithClass(uri, fqn string) *symbol.Tree {
	tree := symbol.NewTree(uri)
	cls := symbol.New(symbol.KindClass, fqn)
	tree.Root.AddChild(cls)
	return tree
}

func TestAddThenFindRoundTrip(t *testing.T) {
	s := New()
	tree := treeWithClass("file:///a.php", "X\\Y")

	require.NoError(t, s.Add(tree))
	found := s.Find("X\\Y", nil)
	require.Len(t, found, 1)
	assert.Equal(t, "X\\Y", found[0].Name)

	s.Remove(tree.URI)
	assert.Empty(t, s.Find("X\\Y", nil))
}

func TestAddDuplicateURIFails(t *testing.T) {
	s := New()
	tree := treeWithClass("file:///a.php", "X\\Y")
	require.NoError(t, s.Add(tree))

	err := s.Add(tree)
	assert.ErrorIs(t, err, enginerr.ErrDuplicateDocument)
}

func TestFindIsCaseInsensitiveForClasses(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(treeWithClass("file:///a.php", "X\\Y")))

	found := s.Find("x\\y", nil)
	assert.Len(t, found, 1)
}

func TestFindIsCaseSensitiveForConstants(t *testing.T) {
	s := New()
	tree := symbol.NewTree("file:///a.php")
	tree.Root.AddChild(symbol.New(symbol.KindConstant, "App\\FOO"))
	require.NoError(t, s.Add(tree))

	assert.Len(t, s.Find("App\\FOO", nil), 1)
	assert.Empty(t, s.Find("App\\foo", nil))
}

func TestTwoDocumentsDeclaringSameFQNBothFound(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(treeWithClass("file:///a.php", "X\\Y")))
	require.NoError(t, s.Add(treeWithClass("file:///b.php", "X\\Y")))

	found := s.Find("X\\Y", nil)
	require.Len(t, found, 2)

	s.Remove("file:///a.php")
	found = s.Find("X\\Y", nil)
	require.Len(t, found, 1)
}

func TestOnDocumentChangeReplacesAtomically(t *testing.T) {
	s := New()
	first := treeWithClass("file:///a.php", "X\\Y")
	require.NoError(t, s.Add(first))

	second := treeWithClass("file:///a.php", "X\\Z")
	require.NoError(t, s.OnDocumentChange("file:///a.php", second))

	assert.Empty(t, s.Find("X\\Y", nil))
	assert.Len(t, s.Find("X\\Z", nil), 1)
}

func TestMatchPrefixSortedStably(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(treeWithClass("file:///a.php", "App\\Zeta")))
	require.NoError(t, s.Add(treeWithClass("file:///b.php", "App\\Alpha")))

	matches := s.Match("App\\", nil)
	require.Len(t, matches, 2)
	assert.Equal(t, "App\\Alpha", matches[0].Name)
	assert.Equal(t, "App\\Zeta", matches[1].Name)
}

func TestMatchPredicateFiltersByKind(t *testing.T) {
	s := New()
	tree := symbol.NewTree("file:///a.php")
	tree.Root.AddChild(symbol.New(symbol.KindClass, "App\\Foo"))
	tree.Root.AddChild(symbol.New(symbol.KindFunction, "App\\bar"))
	require.NoError(t, s.Add(tree))

	classes := s.Match("App\\", func(sym *symbol.Symbol) bool { return sym.Kind == symbol.KindClass })
	require.Len(t, classes, 1)
	assert.Equal(t, "App\\Foo", classes[0].Name)
}

func TestReferencesRoundTripPerURI(t *testing.T) {
	s := New()
	s.SetReferences("file:///a.php", map[string][]symbol.Location{
		"App\\Foo": {{URI: "file:///a.php", StartLine: 3, EndLine: 3}},
	})
	assert.Len(t, s.References("App\\Foo"), 1)

	s.Remove("file:///a.php")
	assert.Empty(t, s.References("App\\Foo"))
}
