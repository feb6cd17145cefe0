package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/condense/internal/reduce"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestReduceDir(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.py":         "# a\nx = 1\n",
		"sub/b.py":     "# b\ny = 2\n",
		"sub/c.txt":    "not python",
		"d.reduced.py": "already = 'reduced'\n",
	})

	eng := New(nil, reduce.DefaultOptions())
	results, err := eng.ReduceDir(context.Background(), root, 4)
	require.NoError(t, err)

	// Only the two .py sources; .txt and .reduced.py are skipped.
	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(root, "a.py"), results[0].Path)
	assert.Equal(t, filepath.Join(root, "sub", "b.py"), results[1].Path)

	for _, r := range results {
		require.NoError(t, r.Err)
		_, err := os.Stat(r.Report.OutPath)
		assert.NoError(t, err)
		_, err = os.Stat(r.Report.MapPath)
		assert.NoError(t, err)
	}
}

func TestReduceDirCollectsFailures(t *testing.T) {
	root := writeTree(t, map[string]string{
		"good.py": "x = 1\n",
		"bad.py":  "x = 'unterminated\n",
	})

	eng := New(nil, reduce.DefaultOptions())
	results, err := eng.ReduceDir(context.Background(), root, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Sorted by path: bad.py first.
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
}

func TestReduceDirCancellation(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 50; i++ {
		files[filepath.Join("pkg", "m"+string(rune('a'+i%26))+".py")] = "x = 1\n"
	}
	root := writeTree(t, files)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := New(nil, reduce.DefaultOptions())
	_, err := eng.ReduceDir(ctx, root, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReduceDirEmptyRoot(t *testing.T) {
	eng := New(nil, reduce.DefaultOptions())
	results, err := eng.ReduceDir(context.Background(), t.TempDir(), 1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReduceDirWorkerFloor(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": "x = 1\n"})
	eng := New(nil, reduce.DefaultOptions())

	results, err := eng.ReduceDir(context.Background(), root, 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
