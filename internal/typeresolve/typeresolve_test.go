package typeresolve

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oxhq/phpls/internal/phptree"
	"github.com/oxhq/phpls/internal/reader"
	"github.com/oxhq/phpls/internal/store"
)

// parseAndIndex parses src, reads its symbol tree, and adds it to st,
// returning the parse-tree root the caller needs for
// ResolveAt/SignatureAt.
func parseAndIndex(t *testing.T, st *store.Store, uri, src string) *phptree.Node {
	t.Helper()
	ctx := context.Background()
	tree, err := phptree.Parse(ctx, []byte(src))
	require.NoError(t, err)

	symTree := reader.New(uri, []byte(src)).Read(tree.Root())
	require.NoError(t, st.Add(symTree))
	return tree.Root()
}

func offsetOfLast(t *testing.T, src, marker string) uint32 {
	t.Helper()
	idx := bytes.LastIndex([]byte(src), []byte(marker))
	require.GreaterOrEqual(t, idx, 0, "marker %q not found", marker)
	return uint32(idx)
}

func TestResolveAtAssignmentThenMemberAccess(t *testing.T) {
	src := `<?php
class Bar {
    public $value;
}
class Foo {
    public function makeBar(): Bar {
        return new Bar();
    }
}
$f = new Foo();
$y = $f->makeBar();
$y;
`
	st := store.New()
	root := parseAndIndex(t, st, "file:///a.php", src)

	r := New(st)
	target := offsetOfLast(t, src, "$y;")
	got := r.ResolveAt(context.Background(), root, nil, target, nil)

	require.False(t, got.IsEmpty())
	require.Equal(t, "Bar", got.String())
}

func TestResolveAtInstanceofBranchMerge(t *testing.T) {
	src := `<?php
class Base {}
class Other {}
function f($x) {
    if ($x instanceof Base) {
        $y = $x;
    } else {
        $y = new Other();
    }
    $y;
}
`
	st := store.New()
	root := parseAndIndex(t, st, "file:///b.php", src)

	r := New(st)
	target := offsetOfLast(t, src, "$y;")
	got := r.ResolveAt(context.Background(), root, nil, target, nil)

	require.False(t, got.IsEmpty())
	atoms := got.Atoms()
	require.Contains(t, atoms, "Base")
	require.Contains(t, atoms, "Other")
}

func TestResolveAtMissingVariableIsEmpty(t *testing.T) {
	src := `<?php
function f() {
    $unbound;
}
`
	st := store.New()
	root := parseAndIndex(t, st, "file:///c.php", src)

	r := New(st)
	target := offsetOfLast(t, src, "$unbound;")
	got := r.ResolveAt(context.Background(), root, nil, target, nil)
	require.True(t, got.IsEmpty())
}

func TestResolveAtCancelledReturnsEmpty(t *testing.T) {
	src := `<?php
$x = 1;
$x;
`
	st := store.New()
	root := parseAndIndex(t, st, "file:///d.php", src)

	r := New(st)
	target := offsetOfLast(t, src, "$x;")
	alwaysCancelled := func() bool { return true }
	got := r.ResolveAt(context.Background(), root, nil, target, alwaysCancelled)
	require.True(t, got.IsEmpty())
}

func TestResolveAtForeachElementType(t *testing.T) {
	src := `<?php
class Item {}
function f() {
    $items = [];
    foreach ($items as $k => $v) {
        $v;
    }
}
`
	st := store.New()
	root := parseAndIndex(t, st, "file:///e.php", src)

	r := New(st)
	target := offsetOfLast(t, src, "$v;")
	got := r.ResolveAt(context.Background(), root, nil, target, nil)
	require.Equal(t, "mixed", got.String())
}

func TestSignatureAtFunctionCall(t *testing.T) {
	src := `<?php
function greet(string $name, int $times) {
}
greet("a", 2);
`
	st := store.New()
	root := parseAndIndex(t, st, "file:///f.php", src)

	r := New(st)
	target := offsetOfLast(t, src, `2);`)
	sig := r.SignatureAt(context.Background(), root, nil, target, nil)
	require.NotNil(t, sig)
	require.Equal(t, "greet", sig.CalleeName)
	require.Len(t, sig.Parameters, 2)
	require.Equal(t, 1, sig.ActiveParameter)
}

func TestSignatureAtMemberCall(t *testing.T) {
	src := `<?php
class Greeter {
    public function greet(string $name) {
    }
}
$g = new Greeter();
$g->greet("world");
`
	st := store.New()
	root := parseAndIndex(t, st, "file:///g.php", src)

	r := New(st)
	target := offsetOfLast(t, src, `"world");`)
	sig := r.SignatureAt(context.Background(), root, nil, target, nil)
	require.NotNil(t, sig)
	require.Equal(t, "greet", sig.CalleeName)
	require.Len(t, sig.Parameters, 1)
	require.Equal(t, "name", sig.Parameters[0].Name)
}
