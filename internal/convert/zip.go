package convert

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

var ErrNoFiles = errors.New("no files to archive")

// FilesToZip writes every named file into a deflated archive under its
// base name
func FilesToZip(fs afero.Fs, names []string, w io.Writer) error {
	if len(names) == 0 {
		return ErrNoFiles
	}

	zw := zip.NewWriter(w)
	for _, name := range names {
		if err := addFile(zw, fs, name); err != nil {
			_ = zw.Close()
			return err
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, fs afero.Fs, name string) error {
	f, err := fs.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}

	header := &zip.FileHeader{
		Name:     filepath.Base(name),
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	}
	entry, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
