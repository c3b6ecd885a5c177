package recognize

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// EnhanceImageForOCR loads a page image and applies a fixed enhancement
// chain (grayscale, contrast, sharpen, brightness, gamma) that improves
// word segmentation on low-quality scans. Returns the result PNG-encoded.
func EnhanceImageForOCR(path string) ([]byte, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}

	img = imaging.Grayscale(img)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)
	img = imaging.AdjustBrightness(img, 10)
	img = imaging.AdjustGamma(img, 1.2)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode enhanced image: %w", err)
	}
	return buf.Bytes(), nil
}
