// Package convert turns staged files into deliverable documents.
package convert

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/spf13/afero"
)

var ErrNoImages = errors.New("no images to convert")

// pdfImageTypes maps image.DecodeConfig formats to fpdf image types
var pdfImageTypes = map[string]string{
	"jpeg": "JPG",
	"png":  "PNG",
	"gif":  "GIF",
}

// ImagesToPDF writes a PDF with one page per image, in the given order.
// Every page is sized to its image at one point per pixel.
func ImagesToPDF(fs afero.Fs, names []string, w io.Writer) error {
	if len(names) == 0 {
		return ErrNoImages
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{OrientationStr: "P", UnitStr: "pt", SizeStr: "A4"})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for i, name := range names {
		data, err := afero.ReadFile(fs, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		imageType, ok := pdfImageTypes[format]
		if !ok {
			return fmt.Errorf("decode %s: unsupported image format %q", name, format)
		}
		if cfg.Width == 0 || cfg.Height == 0 {
			return fmt.Errorf("decode %s: empty image", name)
		}

		width, height := float64(cfg.Width), float64(cfg.Height)
		opts := fpdf.ImageOptions{ImageType: imageType}
		imageName := fmt.Sprintf("img%d", i)

		pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(data))
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: width, Ht: height})
		pdf.ImageOptions(imageName, 0, 0, width, height, false, opts, 0, "")

		if err := pdf.Error(); err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
	}

	return pdf.Output(w)
}
