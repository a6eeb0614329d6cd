package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/phpls/internal/enginerr"
	"github.com/oxhq/phpls/internal/store"
	"github.com/oxhq/phpls/internal/symbol"
)

func addClass(t *testing.T, st *store.Store, uri, fqn string, build func(*symbol.Symbol)) *symbol.Symbol {
	t.Helper()
	tree := symbol.NewTree(uri)
	cls := symbol.New(symbol.KindClass, fqn)
	if build != nil {
		build(cls)
	}
	tree.Root.AddChild(cls)
	require.NoError(t, st.Add(tree))
	return cls
}

func TestBuildRejectsNonClassLike(t *testing.T) {
	fn := symbol.New(symbol.KindFunction, "foo")
	_, err := Build(fn, store.New())
	assert.ErrorIs(t, err, enginerr.ErrInvalidArgument)
}

func TestNoAncestorsMembersOverrideEqualsChildren(t *testing.T) {
	st := store.New()
	method := symbol.New(symbol.KindMethod, "m")
	cls := addClass(t, st, "file:///a.php", "App\\C", func(c *symbol.Symbol) {
		c.AddChild(method)
	})

	agg, err := Build(cls, st)
	require.NoError(t, err)
	members := agg.Members(MergeOverride)
	require.Len(t, members, 1)
	assert.Same(t, method, members[0])
}

func TestOverrideKeepsSubclassMethod(t *testing.T) {
	st := store.New()
	baseMethod := symbol.New(symbol.KindMethod, "m")
	baseMethod.Type = symbol.NewTypeString("int")
	addClass(t, st, "file:///base.php", "App\\Base", func(c *symbol.Symbol) {
		c.AddChild(baseMethod)
	})

	subMethod := symbol.New(symbol.KindMethod, "m")
	subMethod.Type = symbol.NewTypeString("string")
	sub := addClass(t, st, "file:///sub.php", "App\\Sub", func(c *symbol.Symbol) {
		c.Associated = []string{"App\\Base"}
		c.AddChild(subMethod)
	})

	agg, err := Build(sub, st)
	require.NoError(t, err)
	members := agg.Members(MergeOverride)
	require.Len(t, members, 1)
	assert.Equal(t, "string", members[0].Type.String())
}

func TestBaseStrategyPrefersAncestorDeclaration(t *testing.T) {
	st := store.New()
	baseMethod := symbol.New(symbol.KindMethod, "m")
	baseMethod.Type = symbol.NewTypeString("int")
	addClass(t, st, "file:///base.php", "App\\Base", func(c *symbol.Symbol) {
		c.AddChild(baseMethod)
	})

	subMethod := symbol.New(symbol.KindMethod, "m")
	subMethod.Type = symbol.NewTypeString("string")
	sub := addClass(t, st, "file:///sub.php", "App\\Sub", func(c *symbol.Symbol) {
		c.Associated = []string{"App\\Base"}
		c.AddChild(subMethod)
	})

	agg, err := Build(sub, st)
	require.NoError(t, err)
	members := agg.Members(MergeBase)
	require.Len(t, members, 1)
	assert.Equal(t, "int", members[0].Type.String())
}

func TestNonMagicBeatsMagicRegardlessOfStrategy(t *testing.T) {
	st := store.New()
	magic := symbol.New(symbol.KindProperty, "x")
	magic.Modifiers = symbol.ModMagic | symbol.ModPublic
	cls := addClass(t, st, "file:///a.php", "App\\C", func(c *symbol.Symbol) {
		c.AddChild(magic)
	})

	real := symbol.New(symbol.KindProperty, "x")
	real.Modifiers = symbol.ModPublic
	sub := addClass(t, st, "file:///b.php", "App\\Sub", func(c *symbol.Symbol) {
		c.Associated = []string{"App\\C"}
		c.AddChild(real)
	})

	agg, err := Build(sub, st)
	require.NoError(t, err)
	for _, strat := range []MergeStrategy{MergeOverride, MergeDocumented, MergeBase} {
		members := agg.Members(strat)
		m := FindMember(members, "x")
		require.NotNil(t, m)
		assert.False(t, m.Modifiers.Has(symbol.ModMagic), "strategy %v kept magic member over real one", strat)
	}
}

func TestCycleIsBrokenByVisitedSet(t *testing.T) {
	st := store.New()
	addClass(t, st, "file:///a.php", "App\\A", func(c *symbol.Symbol) {
		c.Associated = []string{"App\\B"}
	})
	b := addClass(t, st, "file:///b.php", "App\\B", func(c *symbol.Symbol) {
		c.Associated = []string{"App\\A"}
	})

	agg, err := Build(b, st)
	require.NoError(t, err)
	assert.Len(t, agg.Associated, 1, "cycle must not loop forever")
}

func TestPrivateAncestorMembersAreExcluded(t *testing.T) {
	st := store.New()
	priv := symbol.New(symbol.KindMethod, "secret")
	priv.Modifiers = symbol.ModPrivate
	addClass(t, st, "file:///base.php", "App\\Base", func(c *symbol.Symbol) {
		c.AddChild(priv)
	})

	sub := addClass(t, st, "file:///sub.php", "App\\Sub", func(c *symbol.Symbol) {
		c.Associated = []string{"App\\Base"}
	})

	agg, err := Build(sub, st)
	require.NoError(t, err)
	assert.Nil(t, FindMember(agg.Members(MergeOverride), "secret"))
}

func TestTraitMembersAppendedAfterChain(t *testing.T) {
	st := store.New()
	traitMethod := symbol.New(symbol.KindMethod, "helper")
	trait := symbol.New(symbol.KindTrait, "App\\T")
	trait.AddChild(traitMethod)
	tree := symbol.NewTree("file:///t.php")
	tree.Root.AddChild(trait)
	require.NoError(t, st.Add(tree))

	cls := addClass(t, st, "file:///c.php", "App\\C", func(c *symbol.Symbol) {
		c.Associated = []string{"App\\T"}
	})

	agg, err := Build(cls, st)
	require.NoError(t, err)
	assert.NotNil(t, FindMember(agg.Members(MergeOverride), "helper"))
}

func TestInterfaceRootConcatenatesWithoutMerge(t *testing.T) {
	st := store.New()
	baseMethod := symbol.New(symbol.KindMethod, "m")
	tree := symbol.NewTree("file:///base.php")
	baseIface := symbol.New(symbol.KindInterface, "App\\IBase")
	baseIface.AddChild(baseMethod)
	tree.Root.AddChild(baseIface)
	require.NoError(t, st.Add(tree))

	subMethod := symbol.New(symbol.KindMethod, "m")
	sub := symbol.New(symbol.KindInterface, "App\\ISub")
	sub.Associated = []string{"App\\IBase"}
	sub.AddChild(subMethod)
	subTree := symbol.NewTree("file:///sub.php")
	subTree.Root.AddChild(sub)
	require.NoError(t, st.Add(subTree))

	agg, err := Build(sub, st)
	require.NoError(t, err)
	members := agg.Members(MergeOverride)
	assert.Len(t, members, 2, "interface roots concatenate, never merge")
}
