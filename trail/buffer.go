// Package trail accumulates particle splats into a fading RGB buffer and
// maps particles to palette colours.
package trail

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/blas/blas32"
)

// ErrEmptyBuffer is returned for a buffer without a positive size.
var ErrEmptyBuffer = errors.New("trail buffer must have positive width and height")

// Buffer is a linear float RGB image, three channels per pixel, row-major.
// Channel values are unbounded above; they are clamped only when presented.
type Buffer struct {
	W, H int
	Pix  []float32
}

// NewBuffer allocates a cleared w x h buffer.
func NewBuffer(w, h int) (*Buffer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("new trail buffer (%dx%d): %w", w, h, ErrEmptyBuffer)
	}
	return &Buffer{W: w, H: h, Pix: make([]float32, w*h*3)}, nil
}

// Resize reallocates the buffer for w x h and clears it.
func (b *Buffer) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("resize trail buffer (%dx%d): %w", w, h, ErrEmptyBuffer)
	}
	b.W, b.H = w, h
	b.Pix = make([]float32, w*h*3)
	return nil
}

// Clear sets every channel to zero.
func (b *Buffer) Clear() {
	clear(b.Pix)
}

// Fade darkens the whole buffer as if a black rectangle of alpha amount were
// drawn over it: c <- c*(1-amount).
func (b *Buffer) Fade(amount float32) {
	if amount <= 0 {
		return
	}
	if amount >= 1 {
		b.Clear()
		return
	}
	blas32.Scal(1-amount, blas32.Vector{N: len(b.Pix), Inc: 1, Data: b.Pix})
}

// Splat adds a disc of colour (r, g, b) centred at (x, y). Each pixel
// receives opacity*(1-d/size)^2 of the colour, d being its distance from the
// centre. Sizes under one pixel deposit into the nearest pixel only.
func (b *Buffer) Splat(x, y, size, r, g, bl, opacity float32) {
	if size < 1 {
		px, py := int(x), int(y)
		if px < 0 || py < 0 || px >= b.W || py >= b.H {
			return
		}
		i := (py*b.W + px) * 3
		b.Pix[i] += r * opacity
		b.Pix[i+1] += g * opacity
		b.Pix[i+2] += bl * opacity
		return
	}

	x0 := max(int(math.Floor(float64(x-size))), 0)
	y0 := max(int(math.Floor(float64(y-size))), 0)
	x1 := min(int(math.Ceil(float64(x+size))), b.W-1)
	y1 := min(int(math.Ceil(float64(y+size))), b.H-1)
	inv := 1 / size

	for py := y0; py <= y1; py++ {
		dy := float32(py) + 0.5 - y
		row := py * b.W
		for px := x0; px <= x1; px++ {
			dx := float32(px) + 0.5 - x
			d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
			if d >= size {
				continue
			}
			w := 1 - d*inv
			w *= w * opacity
			i := (row + px) * 3
			b.Pix[i] += r * w
			b.Pix[i+1] += g * w
			b.Pix[i+2] += bl * w
		}
	}
}

// At returns the raw channels of pixel (x, y).
func (b *Buffer) At(x, y int) (r, g, bl float32) {
	i := (y*b.W + x) * 3
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// Luminance returns the Rec. 709 luma of pixel (x, y), clamped to [0, 1].
func (b *Buffer) Luminance(x, y int) float32 {
	r, g, bl := b.At(x, y)
	return luma(r, g, bl)
}

// MeanLuminance returns the average clamped luma over the buffer.
func (b *Buffer) MeanLuminance() float64 {
	var sum float64
	for i := 0; i < len(b.Pix); i += 3 {
		sum += float64(luma(b.Pix[i], b.Pix[i+1], b.Pix[i+2]))
	}
	return sum / float64(b.W*b.H)
}

func luma(r, g, b float32) float32 {
	return min(0.2126*clamp01(r)+0.7152*clamp01(g)+0.0722*clamp01(b), 1)
}

// Blit writes the buffer into img, which must be at least W x H.
func (b *Buffer) Blit(img *image.RGBA) {
	for y := 0; y < b.H; y++ {
		src := b.Pix[y*b.W*3 : (y+1)*b.W*3]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < b.W; x++ {
			dst[x*4] = to8(src[x*3])
			dst[x*4+1] = to8(src[x*3+1])
			dst[x*4+2] = to8(src[x*3+2])
			dst[x*4+3] = 0xff
		}
	}
}

// BlitRGBA writes the buffer into a W*H slice of opaque colours.
func (b *Buffer) BlitRGBA(dst []color.RGBA) {
	for i := range b.W * b.H {
		dst[i] = color.RGBA{
			R: to8(b.Pix[i*3]),
			G: to8(b.Pix[i*3+1]),
			B: to8(b.Pix[i*3+2]),
			A: 0xff,
		}
	}
}

// Image returns a new RGBA image of the buffer.
func (b *Buffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.W, b.H))
	b.Blit(img)
	return img
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func to8(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
