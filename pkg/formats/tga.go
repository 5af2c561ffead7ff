package formats

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA format errors.
var (
	ErrTruncatedTGAData = errors.New("truncated TGA data")
	ErrUnsupportedTGA   = errors.New("unsupported TGA")
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const tgaHeaderSize = 18

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color TGA
// images with 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, ErrTruncatedTGAData
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped", ErrUnsupportedTGA)
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("%w: type %d", ErrUnsupportedTGA, imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: bit depth %d", ErrUnsupportedTGA, bpp)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, ErrTruncatedTGAData
	}

	d := tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		pixels:      data[offset:],
		width:       width,
		height:      height,
		bpp:         bpp / 8,
		topToBottom: descriptor&0x20 != 0,
	}

	if imageType == TGATypeUncompressed {
		if len(d.pixels) < width*height*d.bpp {
			return nil, ErrTruncatedTGAData
		}
		for i := 0; i < width*height; i++ {
			d.set(i, d.read())
		}
		return d.img, nil
	}

	if err := d.decodeRLE(); err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img         *image.RGBA
	pixels      []byte
	pos         int
	width       int
	height      int
	bpp         int
	topToBottom bool
}

// read consumes one BGR(A) pixel.
func (d *tgaDecoder) read() color.RGBA {
	p := d.pixels[d.pos:]
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.bpp == 4 {
		c.A = p[3]
	}
	d.pos += d.bpp
	return c
}

// set stores the pixel with linear index i, flipping rows for bottom-up
// images.
func (d *tgaDecoder) set(i int, c color.RGBA) {
	x, y := i%d.width, i/d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.img.SetRGBA(x, y, c)
}

func (d *tgaDecoder) decodeRLE() error {
	total := d.width * d.height
	i := 0
	for i < total {
		if d.pos >= len(d.pixels) {
			return ErrTruncatedTGAData
		}
		packet := d.pixels[d.pos]
		d.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if d.pos+d.bpp > len(d.pixels) {
				return ErrTruncatedTGAData
			}
			c := d.read()
			for n := 0; n < count && i < total; n++ {
				d.set(i, c)
				i++
			}
			continue
		}

		for n := 0; n < count && i < total; n++ {
			if d.pos+d.bpp > len(d.pixels) {
				return ErrTruncatedTGAData
			}
			d.set(i, d.read())
			i++
		}
	}
	return nil
}
