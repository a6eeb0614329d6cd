package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoverFindsPHPFilesAndSkipsVendor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "Foo.php"), "<?php\n")
	writeFile(t, filepath.Join(root, "src", "view.phtml"), "<h1></h1>\n")
	writeFile(t, filepath.Join(root, "src", "readme.md"), "# hi\n")
	writeFile(t, filepath.Join(root, "vendor", "lib", "Bar.php"), "<?php\n")

	var calls [][2]int
	progress := func(done, total int) { calls = append(calls, [2]int{done, total}) }

	files, err := Discover(context.Background(), root, Options{}, progress)
	require.NoError(t, err)

	var bases []string
	for _, f := range files {
		bases = append(bases, filepath.Base(f))
	}
	assert.ElementsMatch(t, []string{"Foo.php", "view.phtml"}, bases)
	assert.Len(t, calls, 2)
	assert.Equal(t, 2, calls[len(calls)-1][1])
}

func TestDiscoverRespectsMaxFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"A.php", "B.php", "C.php"} {
		writeFile(t, filepath.Join(root, name), "<?php\n")
	}

	files, err := Discover(context.Background(), root, Options{MaxFiles: 2}, nil)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestDiscoverCancelledContextStopsEarly(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"A.php", "B.php", "C.php"} {
		writeFile(t, filepath.Join(root, name), "<?php\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Discover(ctx, root, Options{}, nil)
	assert.Error(t, err)
}

func TestUnifiedDiffEmptyWhenIdentical(t *testing.T) {
	out, err := UnifiedDiff("file:///a.php", "same\n", "same\n")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUnifiedDiffReportsChange(t *testing.T) {
	out, err := UnifiedDiff("file:///a.php", "class Foo {}\n", "class Bar {}\n")
	require.NoError(t, err)
	assert.Contains(t, out, "-class Foo {}")
	assert.Contains(t, out, "+class Bar {}")
}
