// Package storage provides the attachment blob store.  Reservations only
// hold the storage-assigned names; the files themselves live here.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Upload is an incoming attachment as received by the intake endpoint.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// BlobStore stores uploads under opaque unique names and deletes them
// again when record creation fails (compensating cleanup).
type BlobStore interface {
	Store(up Upload) (string, error)
	Delete(name string) error
}

// DiskStore keeps blobs as flat files under a base directory.  Stored
// names are derived from the upload time plus a random suffix so two
// uploads with the same client filename never collide.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the base directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Store writes the upload to disk and returns the assigned name.
func (s *DiskStore) Store(up Upload) (string, error) {
	name := storageName(up.Filename)
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, up.Content); err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", err
	}
	return name, nil
}

// Delete removes a stored blob.  Missing files are not an error; cleanup
// must be idempotent.
func (s *DiskStore) Delete(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Dir returns the base directory, used to serve /uploads statically.
func (s *DiskStore) Dir() string { return s.dir }

func storageName(original string) string {
	ext := filepath.Ext(original)
	// Keep only a sane extension; anything odd is dropped.
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		ext = ""
	}
	return fmt.Sprintf("archivo-%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}
