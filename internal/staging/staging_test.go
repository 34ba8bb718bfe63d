package staging

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArea_SaveOpenRemove(t *testing.T) {
	area := New(afero.NewMemMapFs())

	require.NoError(t, area.Save("a.txt", strings.NewReader("hello")))
	assert.True(t, area.Exists("a.txt"))

	f, err := area.Open("a.txt")
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "hello", string(body))

	// Saving again overwrites
	require.NoError(t, area.Save("a.txt", strings.NewReader("bye")))
	content, err := afero.ReadFile(area.Fs(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "bye", string(content))

	require.NoError(t, area.Remove("a.txt", "missing.txt"))
	assert.False(t, area.Exists("a.txt"))
}

func TestNewOnDisk(t *testing.T) {
	dir := t.TempDir() + "/staging"
	area, err := NewOnDisk(dir)
	require.NoError(t, err)

	require.NoError(t, area.Save("x.bin", strings.NewReader("data")))
	assert.FileExists(t, dir+"/x.bin")

	_, err = NewOnDisk("  ")
	assert.Error(t, err)
}

func TestPhotoNameUnique(t *testing.T) {
	a, b := PhotoName(), PhotoName()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".jpg"))
}

func TestDocumentName(t *testing.T) {
	tests := []struct {
		userID   int64
		uniqueID string
		original string
		want     string
	}{
		{42, "AgAD", "report.pdf", "42_AgAD_report.pdf"},
		{42, "AgAD", "../../etc/passwd", "42_AgAD_passwd"},
		{42, "AgAD", `C:\docs\a:b.txt`, "42_AgAD_a_b.txt"},
		{42, "AgAD", "", "42_AgAD"},
	}

	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			assert.Equal(t, tt.want, DocumentName(tt.userID, tt.uniqueID, tt.original))
		})
	}

	t.Run("same file from two users", func(t *testing.T) {
		assert.NotEqual(t, DocumentName(42, "AgAD", "a.txt"), DocumentName(77, "AgAD", "a.txt"))
	})
}

func TestArea_RealPath(t *testing.T) {
	dir := t.TempDir()
	area, err := NewOnDisk(dir)
	require.NoError(t, err)

	p, ok := area.RealPath("x.db")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "x.db"), p)

	_, ok = New(afero.NewMemMapFs()).RealPath("x.db")
	assert.False(t, ok)
}
