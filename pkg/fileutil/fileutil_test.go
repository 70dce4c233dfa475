package fileutil_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rohmanhakim/legaldata/pkg/failure"
	"github.com/rohmanhakim/legaldata/pkg/fileutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{name: "cache root only", parts: nil},
		{name: "single component", parts: []string{"cache"}},
		{name: "nested output", parts: []string{"output", "austlii", "acts"}},
		{name: "empty component is ignored", parts: []string{"", "output"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()

			err := fileutil.EnsureDir(root, tt.parts...)
			require.Nil(t, err)

			info, statErr := os.Stat(filepath.Join(append([]string{root}, tt.parts...)...))
			require.NoError(t, statErr)
			assert.True(t, info.IsDir())
		})
	}
}

func TestEnsureDir_Idempotent(t *testing.T) {
	root := t.TempDir()

	require.Nil(t, fileutil.EnsureDir(root, "cache"))
	require.Nil(t, fileutil.EnsureDir(root, "cache"))
}

func TestEnsureDir_ReadOnlyParentIsFatal(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	parent := filepath.Join(t.TempDir(), "locked")
	require.NoError(t, os.Mkdir(parent, 0555))

	err := fileutil.EnsureDir(parent, "cache")
	require.NotNil(t, err)

	var fileErr *fileutil.FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, fileutil.ErrCausePathError, fileErr.Cause)
	assert.Equal(t, filepath.Join(parent, "cache"), fileErr.Path)
	assert.Equal(t, failure.SeverityFatal, fileErr.Severity())
}

func TestIsRegularFile(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "page.html")
	require.NoError(t, os.WriteFile(file, []byte("<html></html>"), 0644))

	assert.True(t, fileutil.IsRegularFile(file))
	assert.False(t, fileutil.IsRegularFile(tmpDir))
	assert.False(t, fileutil.IsRegularFile(filepath.Join(tmpDir, "missing.html")))
}

func TestWriteFileAtomic(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "legal-doc.pdf")

	err := fileutil.WriteFileAtomic(target, []byte("first"))
	require.Nil(t, err)
	err = fileutil.WriteFileAtomic(target, []byte("second"))
	require.Nil(t, err)

	data, readErr := os.ReadFile(target)
	require.NoError(t, readErr)
	assert.Equal(t, "second", string(data))

	entries, readErr := os.ReadDir(tmpDir)
	require.NoError(t, readErr)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "missing", "file.txt")

	err := fileutil.WriteFileAtomic(target, []byte("data"))
	require.NotNil(t, err)

	var fileErr *fileutil.FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, fileutil.ErrCausePathError, fileErr.Cause)
	assert.Equal(t, target, fileErr.Path)
}
