package refcache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/phpls/internal/symbol"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutDocumentAndLookupRoundTrip(t *testing.T) {
	c := openTestCache(t)

	foo := symbol.New(symbol.KindClass, "App\\Foo")
	foo.Associated = []string{"App\\Base"}
	foo.Location = symbol.Location{URI: "file:///a.php", StartLine: 1, EndLine: 10}

	require.NoError(t, c.PutDocument("file:///a.php", []*symbol.Symbol{foo}))

	found, err := c.Lookup("App\\Foo")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "file:///a.php", found[0].URI)
	assert.Equal(t, []string{"App\\Base"}, found[0].AssociatedFQNs())
}

func TestPutDocumentReplacesPriorRecords(t *testing.T) {
	c := openTestCache(t)

	first := symbol.New(symbol.KindClass, "App\\Foo")
	require.NoError(t, c.PutDocument("file:///a.php", []*symbol.Symbol{first}))

	second := symbol.New(symbol.KindClass, "App\\Bar")
	require.NoError(t, c.PutDocument("file:///a.php", []*symbol.Symbol{second}))

	all, err := c.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "App\\Bar", all[0].FQN)
}

func TestRemoveDocumentDropsItsRecords(t *testing.T) {
	c := openTestCache(t)

	sym := symbol.New(symbol.KindFunction, "App\\helper")
	require.NoError(t, c.PutDocument("file:///a.php", []*symbol.Symbol{sym}))
	require.NoError(t, c.RemoveDocument("file:///a.php"))

	all, err := c.All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
