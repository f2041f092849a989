package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

// Test Plan for CLI helpers:
// - formatNumber inserts thousand separators only above 999
// - resolvePath anchors relative paths at the root and leaves absolute paths alone
// - resolveRoot rejects missing paths and files, defaults to the working directory

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234", formatNumber(1234))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("/project", ".codescout", "code_index.db"),
		resolvePath("/project", ".codescout/code_index.db"))
	assert.Equal(t, "/elsewhere/index.db", resolvePath("/project", "/elsewhere/index.db"))
}

func TestResolveRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	root, err := resolveRoot([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, root)

	_, err = resolveRoot([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, writeTestFile(file, "content"))
	_, err = resolveRoot([]string{file})
	assert.ErrorContains(t, err, "not a directory")
}
