package embedding

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// testPNG encodes a small gradient image so tests have real decodable bytes.
// The seed shifts the gradient so different seeds produce different pictures.
func testPNG(t *testing.T, seed uint8) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x*8) + seed,
				G: uint8(y*8) + seed,
				B: uint8((x+y)*4) + seed,
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}
