// Package screenshot writes captured frames to disk.
package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrNoPath is returned when no output path was given.
var ErrNoPath = errors.New("screenshot: empty path")

// Encoder writes an image in one file format.
type Encoder func(w io.Writer, img image.Image) error

var encoders = map[string]Encoder{
	".png":  png.Encode,
	".bmp":  bmp.Encode,
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// EncoderFor picks an encoder from the file extension. Unknown extensions
// get PNG.
func EncoderFor(path string) Encoder {
	if enc, ok := encoders[strings.ToLower(filepath.Ext(path))]; ok {
		return enc
	}
	return png.Encode
}

// Save encodes img to path, replacing any existing file.
func Save(path string, img image.Image) error {
	if path == "" {
		return ErrNoPath
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	if err := EncoderFor(path)(f, img); err != nil {
		f.Close()
		return fmt.Errorf("screenshot: encode %s: %w", path, err)
	}
	return f.Close()
}
