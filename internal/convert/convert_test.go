package convert

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJPEG(t *testing.T, fs afero.Fs, name string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	require.NoError(t, afero.WriteFile(fs, name, buf.Bytes(), 0o644))
}

func writePNG(t *testing.T, fs afero.Fs, name string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, afero.WriteFile(fs, name, buf.Bytes(), 0o644))
}

// pageCount counts page objects in an uncompressed PDF object table
func pageCount(pdf string) int {
	return strings.Count(pdf, "/Type /Page") - strings.Count(pdf, "/Type /Pages")
}

func TestImagesToPDF(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeJPEG(t, fs, "a.jpg", 40, 30)
	writeJPEG(t, fs, "b.jpg", 20, 50)
	writePNG(t, fs, "c.png", 16, 16)

	var out bytes.Buffer
	require.NoError(t, ImagesToPDF(fs, []string{"a.jpg", "b.jpg", "c.png"}, &out))

	pdf := out.String()
	assert.True(t, strings.HasPrefix(pdf, "%PDF-"))
	assert.Equal(t, 3, pageCount(pdf))
}

func TestImagesToPDF_NoImages(t *testing.T) {
	var out bytes.Buffer
	err := ImagesToPDF(afero.NewMemMapFs(), nil, &out)
	assert.ErrorIs(t, err, ErrNoImages)
	assert.Zero(t, out.Len())
}

func TestImagesToPDF_NotAnImage(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "notes.txt", []byte("plain text"), 0o644))

	var out bytes.Buffer
	err := ImagesToPDF(fs, []string{"notes.txt"}, &out)
	assert.Error(t, err)
}

func TestImagesToPDF_MissingFile(t *testing.T) {
	var out bytes.Buffer
	err := ImagesToPDF(afero.NewMemMapFs(), []string{"gone.jpg"}, &out)
	assert.Error(t, err)
}

func TestFilesToZip(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeJPEG(t, fs, "one.jpg", 8, 8)
	writeJPEG(t, fs, "two.jpg", 8, 8)
	writeJPEG(t, fs, "three.jpg", 8, 8)

	var out bytes.Buffer
	require.NoError(t, FilesToZip(fs, []string{"one.jpg", "two.jpg", "three.jpg"}, &out))

	zr, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"one.jpg", "two.jpg", "three.jpg"}, names)
}

func TestFilesToZip_ContentRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "AgAD_report.txt", []byte("quarterly numbers"), 0o644))

	var out bytes.Buffer
	require.NoError(t, FilesToZip(fs, []string{"AgAD_report.txt"}, &out))

	zr, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()

	var body bytes.Buffer
	_, err = body.ReadFrom(rc)
	require.NoError(t, err)
	assert.Equal(t, "quarterly numbers", body.String())
}

func TestFilesToZip_NoFiles(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorIs(t, FilesToZip(afero.NewMemMapFs(), nil, &out), ErrNoFiles)
}
