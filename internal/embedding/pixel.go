package embedding

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const (
	// pixelEdge is the side length the image is resized to before flattening.
	pixelEdge = 64
	// PixelDim is the fixed embedding dimension of the pixel backend (64x64 intensities).
	PixelDim = pixelEdge * pixelEdge

	normEpsilon = 1e-6
)

// PixelExtractor is the deterministic fallback backend: it resizes the image
// to 64x64, converts it to a single intensity channel, flattens it and
// L2-normalizes the result. It performs no face detection whatsoever.
//
// This backend is NOT secure. Any two photos with similar global brightness
// patterns will score high. It exists so the pipeline stays exercisable when
// the neural embedding server is unavailable; it must never be swapped in
// silently for users enrolled with the neural backend (the dimensions differ
// on purpose so such a mix-up fails loudly as a dimension mismatch).
type PixelExtractor struct{}

// NewPixelExtractor creates the fallback pixel backend.
func NewPixelExtractor() *PixelExtractor {
	return &PixelExtractor{}
}

func (e *PixelExtractor) Name() string { return "pixel-fallback" }

func (e *PixelExtractor) Dim() int { return PixelDim }

// Extract decodes the image and produces its normalized intensity vector.
func (e *PixelExtractor) Extract(ctx context.Context, data []byte) ([]float32, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	resized := image.NewRGBA(image.Rect(0, 0, pixelEdge, pixelEdge))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Over, nil)

	vec := make([]float32, 0, PixelDim)
	var norm float64
	for y := 0; y < pixelEdge; y++ {
		for x := 0; x < pixelEdge; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			// ITU-R BT.601 luma formula.
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			vec = append(vec, float32(luma))
			norm += luma * luma
		}
	}

	inv := 1 / (math.Sqrt(norm) + normEpsilon)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}

	return vec, nil
}
