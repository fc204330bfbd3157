package fileutils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/cashflow/internal/fileutils"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func TestFileAndDirectoryExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.csv")
	touch(t, file)

	assert.True(t, fileutils.FileExists(file))
	assert.False(t, fileutils.FileExists(dir))
	assert.False(t, fileutils.FileExists(filepath.Join(dir, "missing.csv")))

	assert.True(t, fileutils.DirectoryExists(dir))
	assert.False(t, fileutils.DirectoryExists(file))
}

func TestCreateFileMakesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "export.csv")

	f, err := fileutils.CreateFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.True(t, fileutils.FileExists(path))
}

func TestListFilesWithExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.csv"))
	touch(t, filepath.Join(dir, "A.CSV"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "2025", "fatura.csv"))
	touch(t, filepath.Join(dir, ".hidden", "skip.csv"))
	touch(t, filepath.Join(dir, ".skip.csv"))

	files, err := fileutils.ListFilesWithExtension(dir, ".csv")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "2025", "fatura.csv"),
		filepath.Join(dir, "A.CSV"),
		filepath.Join(dir, "b.csv"),
	}, files)

	_, err = fileutils.ListFilesWithExtension(filepath.Join(dir, "missing"), ".csv")
	assert.Error(t, err)
}
