// Package imaging provides content-aware cropping and image transcoding
// for the cm output pipeline.
package imaging

import (
	"image"
	"image/draw"
	"runtime"
	"sync"
)

// Background thresholds. A pixel is background when it is near-fully
// transparent, or when all three color channels sit at or above the
// near-white threshold. The white tolerance is generous to absorb JPEG
// compression and anti-aliasing artifacts.
const (
	alphaFloor     = 10
	whiteThreshold = 240
)

// isBackground reports whether an 8-bit RGBA pixel counts as background.
func isBackground(r, g, b, a uint8) bool {
	if a < alphaFloor {
		return true
	}
	return r >= whiteThreshold && g >= whiteThreshold && b >= whiteThreshold
}

// CropToContent returns the image cropped to the minimal axis-aligned
// rectangle enclosing all non-background pixels, and whether a crop was
// applied. An image that is entirely background is returned unchanged so
// a blank input never produces a zero-area result.
func CropToContent(img image.Image) (image.Image, bool) {
	rgba := toRGBA(img)

	rect, found := ContentBounds(rgba)
	if !found {
		return img, false
	}
	if rect == rgba.Bounds() {
		return img, false
	}

	return rgba.SubImage(rect), true
}

// ContentBounds scans every pixel and returns the bounding rectangle of
// non-background content. Rows are scanned in parallel, one band per
// worker; found is false when the image has no content at all.
func ContentBounds(rgba *image.RGBA) (rect image.Rectangle, found bool) {
	width := rgba.Bounds().Dx()
	height := rgba.Bounds().Dy()
	if width == 0 || height == 0 {
		return image.Rectangle{}, false
	}

	workers := runtime.NumCPU()
	if workers > height {
		workers = height
	}

	type bandResult struct {
		minX, minY, maxX, maxY int
		found                  bool
	}

	results := make([]bandResult, workers)
	rowsPerBand := (height + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		y0 := w * rowsPerBand
		y1 := y0 + rowsPerBand
		if y1 > height {
			y1 = height
		}

		wg.Add(1)
		go func(w, y0, y1 int) {
			defer wg.Done()
			res := bandResult{minX: width, minY: height, maxX: -1, maxY: -1}
			for y := y0; y < y1; y++ {
				row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+width*4]
				for x := 0; x < width; x++ {
					i := x * 4
					if isBackground(row[i], row[i+1], row[i+2], row[i+3]) {
						continue
					}
					res.found = true
					if x < res.minX {
						res.minX = x
					}
					if x > res.maxX {
						res.maxX = x
					}
					if y < res.minY {
						res.minY = y
					}
					if y > res.maxY {
						res.maxY = y
					}
				}
			}
			results[w] = res
		}(w, y0, y1)
	}
	wg.Wait()

	minX, minY, maxX, maxY := width, height, -1, -1
	for _, res := range results {
		if !res.found {
			continue
		}
		found = true
		if res.minX < minX {
			minX = res.minX
		}
		if res.maxX > maxX {
			maxX = res.maxX
		}
		if res.minY < minY {
			minY = res.minY
		}
		if res.maxY > maxY {
			maxY = res.maxY
		}
	}

	if !found {
		return image.Rectangle{}, false
	}

	// Inclusive bounds: the crop covers [minX,maxX] x [minY,maxY].
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// toRGBA converts an image to 8-bit RGBA with a zero-origin rectangle.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		if rgba.Bounds().Min.X == 0 && rgba.Bounds().Min.Y == 0 {
			return rgba
		}
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
