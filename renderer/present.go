// Package renderer draws the trail buffer and debug overlays with raylib.
package renderer

import (
	"errors"
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flowfield/trail"
)

// ErrNoWindow is returned when a GPU resource is requested before the window
// exists.
var ErrNoWindow = errors.New("raylib window is not initialized")

// Presenter uploads the trail buffer into a texture and draws it full screen.
type Presenter struct {
	texture rl.Texture2D
	pixels  []color.RGBA
	w, h    int
	loaded  bool
}

// NewPresenter creates a presenter sized to the buffer. The window must be open.
func NewPresenter(w, h int) (*Presenter, error) {
	p := &Presenter{}
	if err := p.Resize(w, h); err != nil {
		return nil, err
	}
	return p, nil
}

// Resize reallocates the texture for a w x h surface.
func (p *Presenter) Resize(w, h int) error {
	if !rl.IsWindowReady() {
		return ErrNoWindow
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("presenter resize %dx%d: %w", w, h, trail.ErrEmptyBuffer)
	}
	if p.loaded && p.w == w && p.h == h {
		return nil
	}
	p.Unload()

	img := rl.GenImageColor(w, h, rl.Black)
	p.texture = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	p.pixels = make([]color.RGBA, w*h)
	p.w, p.h = w, h
	p.loaded = true
	return nil
}

// Draw uploads buf and draws it at the origin.
func (p *Presenter) Draw(buf *trail.Buffer) {
	if !p.loaded || buf.W != p.w || buf.H != p.h {
		return
	}
	buf.BlitRGBA(p.pixels)
	rl.UpdateTexture(p.texture, p.pixels)
	rl.DrawTexture(p.texture, 0, 0, rl.White)
}

// Unload frees the texture.
func (p *Presenter) Unload() {
	if p.loaded {
		rl.UnloadTexture(p.texture)
		p.loaded = false
	}
}
