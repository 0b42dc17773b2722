package testutil

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/arthur-debert/lumina-project/pkg/types"
	"github.com/stretchr/testify/require"
)

// WriteTree creates files under root. Keys are slash-separated relative paths;
// a key ending in "/" creates an empty directory.
func WriteTree(t testing.TB, fsys types.FS, root string, files map[string]string) {
	t.Helper()

	require.NoError(t, fsys.MkdirAll(root, 0755))
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, fsys.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
	}
}

// ReadTree returns every entry under root keyed by slash-separated relative
// path. Directories map to "" and carry a trailing "/".
func ReadTree(t testing.TB, fsys types.FS, root string) map[string]string {
	t.Helper()

	out := make(map[string]string)
	var walk func(dir, rel string)
	walk = func(dir, rel string) {
		entries, err := fsys.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			childRel := e.Name()
			if rel != "" {
				childRel = rel + "/" + e.Name()
			}
			child := filepath.Join(dir, e.Name())
			if e.IsDir() {
				out[childRel+"/"] = ""
				walk(child, childRel)
				continue
			}
			data, err := fsys.ReadFile(child)
			require.NoError(t, err)
			out[childRel] = string(data)
		}
	}
	walk(root, "")
	return out
}

// SortedKeys returns the keys of m in order.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
