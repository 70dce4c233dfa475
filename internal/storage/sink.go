package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/legaldata/internal/metadata"
	"github.com/rohmanhakim/legaldata/internal/record"
	"github.com/rohmanhakim/legaldata/pkg/failure"
	"github.com/rohmanhakim/legaldata/pkg/fileutil"
	"github.com/rohmanhakim/legaldata/pkg/hashutil"
)

/*
Responsibilities
- Place named copies of cached resources into the output directory
- Write one .meta.json sidecar per document
- Detect (and report) two links resolving to the same destination

Output Characteristics
- Flat directory layout
- Atomic writes (temp file + rename)
- Overwrite-safe reruns
*/

const sidecarExtension = ".meta.json"

type Sink interface {
	PlaceResource(
		outputDir string,
		filename string,
		data []byte,
		link string,
	) (PlaceResult, failure.ClassifiedError)

	WriteRecord(
		outputDir string,
		base string,
		rec record.Record,
	) (string, failure.ClassifiedError)

	RemoveArtifact(path string) failure.ClassifiedError
}

type LocalSink struct {
	metadataSink metadata.MetadataSink
	hashAlgo     hashutil.HashAlgo
	// destination path -> link that produced it, for this run only
	written map[string]string
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
	hashAlgo hashutil.HashAlgo,
) *LocalSink {
	return &LocalSink{
		metadataSink: metadataSink,
		hashAlgo:     hashAlgo,
		written:      make(map[string]string),
	}
}

// PlaceResource writes data as <outputDir>/<filename> and returns its content
// hash. A destination already written by a different link in this run is
// overwritten and reported as a collision.
func (s *LocalSink) PlaceResource(
	outputDir string,
	filename string,
	data []byte,
	link string,
) (PlaceResult, failure.ClassifiedError) {
	fullPath := filepath.Join(outputDir, filename)

	collided := false
	if previous, ok := s.written[fullPath]; ok && previous != link {
		collided = true
		s.metadataSink.RecordWarning(
			time.Now(),
			"storage",
			"LocalSink.PlaceResource",
			"output filename collision, overwriting previous resource",
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, fullPath),
				metadata.NewAttr(metadata.AttrURL, link),
				metadata.NewAttr(metadata.AttrMessage, "previous: "+previous),
			},
		)
	}

	if err := s.writeFile(outputDir, fullPath, data); err != nil {
		s.recordError("LocalSink.PlaceResource", err, link)
		return PlaceResult{}, err
	}
	s.written[fullPath] = link

	contentHash, hashErr := hashutil.HashBytes(data, s.hashAlgo)
	if hashErr != nil {
		storageErr := &StorageError{
			Message:   hashErr.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
			Path:      fullPath,
		}
		s.recordError("LocalSink.PlaceResource", storageErr, link)
		return PlaceResult{}, storageErr
	}

	s.metadataSink.RecordArtifact(
		metadata.ArtifactResource,
		fullPath,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, fullPath),
			metadata.NewAttr(metadata.AttrURL, link),
			metadata.NewAttr(metadata.AttrHash, contentHash),
		},
	)
	return NewPlaceResult(filename, fullPath, contentHash, collided), nil
}

// WriteRecord serializes rec as indented JSON to <outputDir>/<base>.meta.json.
func (s *LocalSink) WriteRecord(
	outputDir string,
	base string,
	rec record.Record,
) (string, failure.ClassifiedError) {
	fullPath := filepath.Join(outputDir, base+sidecarExtension)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		storageErr := &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
			Path:      fullPath,
		}
		s.recordError("LocalSink.WriteRecord", storageErr, rec.PageURL)
		return "", storageErr
	}

	if writeErr := s.writeFile(outputDir, fullPath, data); writeErr != nil {
		s.recordError("LocalSink.WriteRecord", writeErr, rec.PageURL)
		return "", writeErr
	}

	s.metadataSink.RecordArtifact(
		metadata.ArtifactSidecar,
		fullPath,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, fullPath),
			metadata.NewAttr(metadata.AttrURL, rec.PageURL),
			metadata.NewAttr(metadata.AttrCode, rec.Code),
		},
	)
	return fullPath, nil
}

// RemoveArtifact deletes a previously placed file. A missing file is not an error.
func (s *LocalSink) RemoveArtifact(path string) failure.ClassifiedError {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		storageErr := &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
			Path:      path,
		}
		s.recordError("LocalSink.RemoveArtifact", storageErr, "")
		return storageErr
	}
	delete(s.written, path)
	return nil
}

func (s *LocalSink) writeFile(outputDir string, fullPath string, data []byte) *StorageError {
	if err := fileutil.EnsureDir(outputDir); err != nil {
		return &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      outputDir,
		}
	}
	if err := fileutil.WriteFileAtomic(fullPath, data); err != nil {
		cause := ErrCauseWriteFailure
		var fileErr *fileutil.FileError
		if errors.As(err, &fileErr) && fileErr.Cause == fileutil.ErrCauseDiskFull {
			cause = ErrCauseDiskFull
		}
		return &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     cause,
			Path:      fullPath,
		}
	}
	return nil
}

func (s *LocalSink) recordError(action string, err *StorageError, link string) {
	s.metadataSink.RecordError(
		time.Now(),
		"storage",
		action,
		mapStorageErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, link),
			metadata.NewAttr(metadata.AttrWritePath, err.Path),
		},
	)
}
