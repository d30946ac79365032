package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"inventory-media-service/internal/core/domain"
	ports "inventory-media-service/internal/core/ports/output"
)

const thumbnailDirName = "thumbnails"

// Layout holds the storage roots. It is built once from configuration and
// handed to every component that touches the disk.
type Layout struct {
	UploadDir   string
	DocumentDir string
	QRDir       string
}

// ThumbnailDir lives inside the upload root.
func (l Layout) ThumbnailDir() string {
	return filepath.Join(l.UploadDir, thumbnailDirName)
}

func (l Layout) dirs() []string {
	return []string{l.UploadDir, l.ThumbnailDir(), l.DocumentDir, l.QRDir}
}

type store struct {
	fs     afero.Fs
	layout Layout
}

func NewStore(fs afero.Fs, layout Layout) ports.ArtifactStore {
	return &store{fs: fs, layout: layout}
}

func (s *store) EnsureDirs() error {
	for _, dir := range s.layout.dirs() {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return domain.NewStorageError("mkdir", dir, err)
		}
	}
	return nil
}

func (s *store) ImagePath(filename string) string {
	return filepath.Join(s.layout.UploadDir, filepath.Base(filename))
}

func (s *store) ThumbnailPath(filename string) string {
	return filepath.Join(s.layout.ThumbnailDir(), domain.ThumbnailFilename(filepath.Base(filename)))
}

func (s *store) DocumentPath(filename string) string {
	return filepath.Join(s.layout.DocumentDir, filepath.Base(filename))
}

func (s *store) LabelPath(filename string) string {
	return filepath.Join(s.layout.QRDir, filepath.Base(filename))
}

func (s *store) WriteTemp(finalPath string, data []byte) (string, error) {
	f, err := s.tempFile(finalPath)
	if err != nil {
		return "", err
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(name)
		return "", domain.NewStorageError("write", name, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(name)
		return "", domain.NewStorageError("close", name, err)
	}
	return name, nil
}

func (s *store) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, domain.NewStorageError("read", path, err)
	}
	return data, nil
}

func (s *store) WriteAtomic(path string, encode func(w io.Writer) error) (int64, error) {
	f, err := s.tempFile(path)
	if err != nil {
		return 0, err
	}
	tmp := f.Name()
	counter := &countingWriter{w: f}

	if err := encode(counter); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return 0, fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return 0, domain.NewStorageError("close", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return 0, domain.NewStorageError("rename", path, err)
	}
	return counter.n, nil
}

func (s *store) Rename(oldPath, newPath string) error {
	return domain.NewStorageError("rename", newPath, s.fs.Rename(oldPath, newPath))
}

func (s *store) Remove(path string) (bool, error) {
	err := s.fs.Remove(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, domain.NewStorageError("remove", path, err)
	}
}

func (s *store) Exists(path string) (bool, error) {
	ok, err := afero.Exists(s.fs, path)
	if err != nil {
		return false, domain.NewStorageError("stat", path, err)
	}
	return ok, nil
}

func (s *store) Size(path string) (int64, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		return 0, domain.NewStorageError("stat", path, err)
	}
	return info.Size(), nil
}

func (s *store) Open(path string) (ports.ReadSeekCloser, time.Time, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, time.Time{}, err
		}
		return nil, time.Time{}, domain.NewStorageError("open", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, time.Time{}, domain.NewStorageError("stat", path, err)
	}
	return f, info.ModTime(), nil
}

// tempFile is created in the destination directory so the final rename never
// crosses filesystems. The leading dot and random suffix keep it distinct from
// any generated artifact name.
func (s *store) tempFile(finalPath string) (afero.File, error) {
	dir := filepath.Dir(finalPath)
	pattern := "." + filepath.Base(finalPath) + ".*.tmp"
	f, err := afero.TempFile(s.fs, dir, pattern)
	if err != nil {
		return nil, domain.NewStorageError("create", finalPath, err)
	}
	return f, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
