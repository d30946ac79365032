package ports

import (
	"io"
	"time"
)

// ArtifactStore is the filesystem seen by the pipeline. Paths are the ones
// returned by the path helpers; callers never build them by hand.
type ArtifactStore interface {
	EnsureDirs() error

	ImagePath(filename string) string
	ThumbnailPath(filename string) string
	DocumentPath(filename string) string
	LabelPath(filename string) string

	// WriteTemp writes data to a fresh temporary file next to finalPath whose
	// name can never equal finalPath.
	WriteTemp(finalPath string, data []byte) (string, error)
	ReadFile(path string) ([]byte, error)
	// WriteAtomic streams encode into a temporary file and renames it over path,
	// so readers never observe a partially written file.
	WriteAtomic(path string, encode func(w io.Writer) error) (int64, error)
	Rename(oldPath, newPath string) error
	// Remove deletes path. A missing file is reported as removed=false, err=nil.
	Remove(path string) (removed bool, err error)
	Exists(path string) (bool, error)
	Size(path string) (int64, error)
	Open(path string) (ReadSeekCloser, time.Time, error)
}

type ReadSeekCloser interface {
	io.ReadSeeker
	io.Closer
}
