// Package staging manages the directory holding transient uploads and
// generated files. Names handed out by the area are flat file names
// relative to its root.
package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

type Area struct {
	fs afero.Fs
}

// New wraps an existing filesystem; tests pass afero.NewMemMapFs()
func New(fs afero.Fs) *Area {
	return &Area{fs: fs}
}

// NewOnDisk creates dir if needed and roots the area there
func NewOnDisk(dir string) (*Area, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("staging dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// Fs exposes the underlying filesystem
func (a *Area) Fs() afero.Fs {
	return a.fs
}

// Save writes r under name, replacing any existing file
func (a *Area) Save(name string, r io.Reader) error {
	f, err := a.fs.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = a.fs.Remove(name)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

// Create opens a new file for writing
func (a *Area) Create(name string) (afero.File, error) {
	return a.fs.Create(name)
}

// Open opens a staged file for reading
func (a *Area) Open(name string) (afero.File, error) {
	return a.fs.Open(name)
}

// Exists reports whether name is present
func (a *Area) Exists(name string) bool {
	ok, err := afero.Exists(a.fs, name)
	return err == nil && ok
}

// RealPath resolves name to a path on the host filesystem. It reports
// false when the area is not disk-backed.
func (a *Area) RealPath(name string) (string, bool) {
	switch fs := a.fs.(type) {
	case *afero.BasePathFs:
		p, err := fs.RealPath(name)
		return p, err == nil
	case *afero.OsFs:
		return name, true
	}
	return "", false
}

// Remove deletes every named file, continuing past failures.
// Missing files are not an error.
func (a *Area) Remove(names ...string) error {
	var errs []error
	for _, name := range names {
		if err := a.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PhotoName returns a collision-resistant name for a photo upload
func PhotoName() string {
	return uuid.NewString() + ".jpg"
}

// DocumentName derives a staging name from the uploader, the upload's
// unique id and its original file name. Telegram unique ids are shared by
// every user who forwards the same file, so the user id keeps copies apart.
func DocumentName(userID int64, uniqueID, original string) string {
	prefix := fmt.Sprintf("%d_%s", userID, uniqueID)
	base := SafeBase(original)
	if base == "" {
		return prefix
	}
	return prefix + "_" + base
}

// TempName returns a fresh name with the given extension for generated files
func TempName(prefix, ext string) string {
	return prefix + "_" + uuid.NewString() + ext
}

// SafeBase strips directories and characters that are unsafe in a flat
// file name
func SafeBase(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return -1
		case strings.ContainsRune(`<>:"/\|?*`, r):
			return '_'
		}
		return r
	}, name)
}
