package formats

import (
	"errors"
	"image/color"
	"testing"
)

// buildTGA returns a 2x2 TGA header with the given type and bit depth.
func buildTGA(imageType, bpp byte, topToBottom bool) []byte {
	header := make([]byte, tgaHeaderSize)
	header[2] = imageType
	header[12] = 2
	header[14] = 2
	header[16] = bpp
	if topToBottom {
		header[17] = 0x20
	}
	return header
}

func TestDecodeTGA_Uncompressed(t *testing.T) {
	data := buildTGA(TGATypeUncompressed, 32, true)
	// BGRA: red, green, blue, white (half alpha)
	data = append(data,
		0, 0, 255, 255,
		0, 255, 0, 255,
		255, 0, 0, 255,
		255, 255, 255, 128,
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.At(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel (0,0) = %v", got)
	}
	if got := img.At(1, 1); got != (color.RGBA{R: 255, G: 255, B: 255, A: 128}) {
		t.Errorf("pixel (1,1) = %v", got)
	}
}

func TestDecodeTGA_BottomUp(t *testing.T) {
	data := buildTGA(TGATypeUncompressed, 24, false)
	data = append(data,
		0, 0, 255, 0, 0, 255,
		255, 0, 0, 255, 0, 0,
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// First stored row is the bottom row.
	if got := img.At(0, 1); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel (0,1) = %v", got)
	}
	if got := img.At(0, 0); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("pixel (0,0) = %v", got)
	}
}

func TestDecodeTGA_RLE(t *testing.T) {
	data := buildTGA(TGATypeRLE, 24, true)
	// Run of 3 green pixels, then one raw blue pixel.
	data = append(data, 0x82, 0, 255, 0, 0x00, 255, 0, 0)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.At(0, 1); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("pixel (0,1) = %v", got)
	}
	if got := img.At(1, 1); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("pixel (1,1) = %v", got)
	}
}

func TestDecodeTGA_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", make([]byte, 4), ErrTruncatedTGAData},
		{"color mapped", func() []byte { d := buildTGA(TGATypeUncompressed, 24, true); d[1] = 1; return d }(), ErrUnsupportedTGA},
		{"grayscale", buildTGA(3, 8, true), ErrUnsupportedTGA},
		{"16 bit", buildTGA(TGATypeUncompressed, 16, true), ErrUnsupportedTGA},
		{"missing pixels", buildTGA(TGATypeUncompressed, 24, true), ErrTruncatedTGAData},
		{"rle truncated", append(buildTGA(TGATypeRLE, 24, true), 0x83, 1), ErrTruncatedTGAData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
