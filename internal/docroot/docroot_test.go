package docroot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConcatenates(t *testing.T) {
	r := New("/srv/www/")
	assert.Equal(t, filepath.FromSlash("/srv/www/index.html"), r.Resolve("/index.html"))
	assert.Equal(t, filepath.FromSlash("/srv/www/404.html"), r.Resolve("404.html"))
	// No cleaning happens; ".." stays in the path.
	assert.Equal(t, filepath.FromSlash("/srv/www/../etc/passwd"), r.Resolve("/../etc/passwd"))
}

func TestOpenAndRead(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	r := New(dir)

	f, info, err := r.Open("/a.txt")
	require.NoError(t, err)
	defer f.Close()
	assert.EqualValues(t, 5, info.Size())

	data, err := r.ReadFile("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, _, err = r.Open("/missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = r.Open("/sub")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.ReadFile("missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequire(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "404.html"), []byte("nf"), 0o644))
	r := New(dir)

	assert.NoError(t, r.Require("404.html"))

	err := r.Require("404.html", "not_supported.html", "index.html")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "not_supported.html")
	assert.Contains(t, err.Error(), "index.html")
}
