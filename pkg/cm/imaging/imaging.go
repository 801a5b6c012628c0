package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	// Decoders for the raster formats accepted as input.
	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// defaultJPEGQuality is used when Settings.JPEGQuality is unset.
const defaultJPEGQuality = 90

// Settings configures per-batch image processing.
type Settings struct {
	// CropToContent removes the uniform background border before encoding.
	CropToContent bool

	// JPEGQuality is the re-encode quality for JPEG sources (1-100).
	// Zero means the default of 90.
	JPEGQuality int
}

// Processed is the result of decoding, optionally cropping, and
// re-encoding a single image.
type Processed struct {
	// Data is the encoded output.
	Data []byte

	// OriginalWidth and OriginalHeight are the decoded dimensions.
	OriginalWidth  int
	OriginalHeight int

	// OutputWidth and OutputHeight are the dimensions after cropping.
	OutputWidth  int
	OutputHeight int

	// WasCropped is true iff the output dimensions differ from the
	// original dimensions.
	WasCropped bool

	// EstimatedSize is the byte length of the encoded output.
	EstimatedSize int64
}

// Process loads the image at path, crops it to content when requested,
// and re-encodes it. JPEG sources stay JPEG; every other format is
// written as PNG (lossless).
func Process(path string, s Settings) (*Processed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", path, err)
	}

	originalWidth := img.Bounds().Dx()
	originalHeight := img.Bounds().Dy()

	out := img
	cropped := false
	if s.CropToContent {
		out, cropped = CropToContent(img)
	}

	data, err := encode(out, path, s.JPEGQuality)
	if err != nil {
		return nil, err
	}

	return &Processed{
		Data:           data,
		OriginalWidth:  originalWidth,
		OriginalHeight: originalHeight,
		OutputWidth:    out.Bounds().Dx(),
		OutputHeight:   out.Bounds().Dy(),
		WasCropped:     cropped,
		EstimatedSize:  int64(len(data)),
	}, nil
}

// encode serializes the image. The output format follows the source
// file's extension: .jpg/.jpeg re-encode as JPEG, everything else as PNG.
func encode(img image.Image, sourcePath string, jpegQuality int) ([]byte, error) {
	var buf bytes.Buffer

	if isJPEG(sourcePath) {
		quality := jpegQuality
		if quality <= 0 {
			quality = defaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encoding JPEG: %w", err)
		}
		return buf.Bytes(), nil
	}

	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isJPEG reports whether the path has a JPEG extension.
func isJPEG(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}
