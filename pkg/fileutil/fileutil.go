package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/rohmanhakim/legaldata/pkg/failure"
)

// EnsureDir creates dir joined with path, including any missing parents.
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := []string{dir}
	targetPath = append(targetPath, path...)

	fullDir := filepath.Join(targetPath...)
	if err := os.MkdirAll(fullDir, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      fullDir,
		}
	}
	return nil
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// WriteFileAtomic writes data next to path and renames it into place so that
// readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte) failure.ClassifiedError {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &FileError{
			Message: err.Error(),
			Cause:   ErrCausePathError,
			Path:    path,
		}
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr == nil {
		writeErr = os.Rename(tmpName, path)
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return classifyWriteError(writeErr, path)
	}
	return nil
}

func classifyWriteError(err error, path string) *FileError {
	if errors.Is(err, syscall.ENOSPC) {
		return &FileError{
			Message: err.Error(),
			Cause:   ErrCauseDiskFull,
			Path:    path,
		}
	}
	return &FileError{
		Message: err.Error(),
		Cause:   ErrCauseWriteFailure,
		Path:    path,
	}
}
