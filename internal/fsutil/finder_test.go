package fsutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dyninputs/internal/testutil"
)

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteFiles(t, map[string]string{
		"b.hcl":             "",
		"a/c.hcl":           "",
		"a/notes.txt":       "",
		".hidden/skip.hcl":  "",
		"a/.cache/skip.hcl": "",
	})

	files, err := FindFilesByExtension(dir, ".hcl")

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a", "c.hcl"),
		filepath.Join(dir, "b.hcl"),
	}, files)
}

func TestFindFilesByExtension_Errors(t *testing.T) {
	t.Parallel()

	_, err := FindFilesByExtension(t.TempDir(), "")
	require.Error(t, err)

	_, err = FindFilesByExtension(filepath.Join(t.TempDir(), "missing"), ".hcl")
	require.Error(t, err)
}
