package screenshot

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	return img
}

func TestSave_FormatByExtension(t *testing.T) {
	dir := t.TempDir()
	decoders := map[string]func(f *os.File) (image.Image, error){
		"shot.png":  func(f *os.File) (image.Image, error) { return png.Decode(f) },
		"shot.BMP":  func(f *os.File) (image.Image, error) { return bmp.Decode(f) },
		"shot.tiff": func(f *os.File) (image.Image, error) { return tiff.Decode(f) },
		"shot.raw":  func(f *os.File) (image.Image, error) { return png.Decode(f) },
	}
	for name, decode := range decoders {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, testImage()), name)

		f, err := os.Open(path)
		require.NoError(t, err)
		img, err := decode(f)
		f.Close()
		require.NoError(t, err, name)
		assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds(), name)

		r, _, _, _ := img.At(1, 1).RGBA()
		assert.Equal(t, uint32(200), r>>8, name)
	}
}

func TestSave_Errors(t *testing.T) {
	assert.ErrorIs(t, Save("", testImage()), ErrNoPath)
	assert.Error(t, Save(filepath.Join(t.TempDir(), "missing", "a.png"), testImage()))
}
