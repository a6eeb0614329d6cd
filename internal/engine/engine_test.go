package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/phpls/internal/aggregate"
	"github.com/oxhq/phpls/internal/config"
)

func offsetOfLast(t *testing.T, src, marker string) uint32 {
	t.Helper()
	idx := bytes.LastIndex([]byte(src), []byte(marker))
	require.GreaterOrEqual(t, idx, 0, "marker %q not found", marker)
	return uint32(idx)
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(&config.Config{DebounceMS: 0})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestOpenDocumentIndexesSymbolsSynchronously(t *testing.T) {
	e := newTestEngine(t)
	src := []byte("<?php\nclass Foo {\n    public $bar;\n}\n")

	count, err := e.OpenDocument(context.Background(), "file:///a.php", src)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	syms := e.DocumentSymbols("file:///a.php")
	require.Len(t, syms, 1)
	assert.Equal(t, "Foo", syms[0].Name)
}

func TestResolveTypeAfterAssignment(t *testing.T) {
	e := newTestEngine(t)
	src := `<?php
class Foo {
    public function bar(): Foo {
        return $this;
    }
}
$f = new Foo();
$f;
`
	_, err := e.OpenDocument(context.Background(), "file:///b.php", []byte(src))
	require.NoError(t, err)

	target := offsetOfLast(t, src, "$f;")
	got, err := e.ResolveType(context.Background(), "file:///b.php", target)
	require.NoError(t, err)
	assert.Equal(t, "Foo", got.String())
}

func TestAggregateMergesInheritedMembers(t *testing.T) {
	e := newTestEngine(t)
	src := `<?php
class Base {
    public function m(): int {}
}
class Sub extends Base {}
`
	_, err := e.OpenDocument(context.Background(), "file:///c.php", []byte(src))
	require.NoError(t, err)

	agg, err := e.Aggregate("Sub")
	require.NoError(t, err)
	members := agg.Members(aggregate.MergeOverride)
	require.Len(t, members, 1)
	assert.Equal(t, "m", members[0].Name)
}

func TestProvideSignatureHelpForFunctionCall(t *testing.T) {
	e := newTestEngine(t)
	src := `<?php
function greet(string $name, int $times) {
}
greet("a", 2);
`
	_, err := e.OpenDocument(context.Background(), "file:///d.php", []byte(src))
	require.NoError(t, err)

	target := offsetOfLast(t, src, "2);")
	sig, err := e.ProvideSignatureHelp(context.Background(), "file:///d.php", target)
	require.NoError(t, err)
	require.NotNil(t, sig)
	assert.Equal(t, "greet", sig.CalleeName)
	assert.Equal(t, 1, sig.ActiveParameter)
}

func TestProvideCompletionsFallsBackToWorkspaceMatchWithoutObjectExpr(t *testing.T) {
	e := newTestEngine(t)
	src := "<?php\nclass FooBar {}\n"
	_, err := e.OpenDocument(context.Background(), "file:///e.php", []byte(src))
	require.NoError(t, err)

	found, err := e.ProvideCompletions(context.Background(), "file:///e.php", 0, "FooB")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "FooBar", found[0].Name)
}

func TestCloseDocumentRemovesFromStore(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.OpenDocument(context.Background(), "file:///f.php", []byte("<?php\nclass Z {}\n"))
	require.NoError(t, err)

	require.NoError(t, e.CloseDocument("file:///f.php"))
	assert.Empty(t, e.DocumentSymbols("file:///f.php"))
}

func TestDiscoverOpensEveryPHPFile(t *testing.T) {
	e := newTestEngine(t)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "A.php"), []byte("<?php\nclass A {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "B.php"), []byte("<?php\nclass B {}\n"), 0o644))

	total, err := e.Discover(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	assert.NotEmpty(t, e.WorkspaceSymbols("A"))
	assert.NotEmpty(t, e.WorkspaceSymbols("B"))
}

func TestForgetReportsPriorSymbolCount(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.OpenDocument(context.Background(), "file:///g.php", []byte("<?php\nclass Q {}\nclass R {}\n"))
	require.NoError(t, err)

	count := e.Forget("file:///g.php")
	assert.Equal(t, 2, count)
	assert.Empty(t, e.DocumentSymbols("file:///g.php"))
}
