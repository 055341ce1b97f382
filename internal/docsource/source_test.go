package docsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSourceUnknownName(t *testing.T) {
	_, err := NewSource("gopher-drive", nil)
	require.Error(t, err)
}

func TestLocalSourceFetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("# beta"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	src, err := NewSource("local", map[string]interface{}{"dir": dir})
	require.NoError(t, err)
	require.Equal(t, "local", src.Name())

	files, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	byName := map[string]string{}
	for _, f := range files {
		byName[f.Name] = string(f.Data)
	}
	require.Equal(t, "alpha", byName["a.txt"])
	require.Equal(t, "# beta", byName["b.md"])
}

func TestLocalSourceNeedsDir(t *testing.T) {
	_, err := NewSource("local", map[string]interface{}{})
	require.Error(t, err)
}
