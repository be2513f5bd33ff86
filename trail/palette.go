package trail

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/colorgrad"

	"github.com/pthm-cable/flowfield/systems"
)

// Source selects the particle quantity a scheme maps to colour.
type Source uint8

const (
	SourceIndex  Source = iota // Particle index over the population
	SourceSpeed                // Speed relative to the nominal flow speed
	SourceAngle                // Heading angle
	SourceCharge               // Fixed ±1 charge
)

const lutSize = 256

// Scheme is a named palette with a precomputed lookup table.
type Scheme struct {
	Name   string
	Source Source
	lut    [lutSize][3]float32
}

// Color returns the palette colour at t in [0, 1]; t is clamped.
func (s *Scheme) Color(t float32) (r, g, b float32) {
	i := int(clamp01(t)*(lutSize-1) + 0.5)
	c := &s.lut[i]
	return c[0], c[1], c[2]
}

func newScheme(name string, src Source, at func(t float64) colorful.Color) Scheme {
	s := Scheme{Name: name, Source: src}
	for i := range s.lut {
		c := at(float64(i) / (lutSize - 1)).Clamped()
		s.lut[i] = [3]float32{float32(c.R), float32(c.G), float32(c.B)}
	}
	return s
}

func gradScheme(name string, src Source, g colorgrad.Gradient) Scheme {
	return newScheme(name, src, g.At)
}

func htmlScheme(name string, src Source, colors ...string) Scheme {
	g, err := colorgrad.NewGradient().HtmlColors(colors...).Build()
	if err != nil {
		// Only reachable with a malformed literal below
		panic("trail: bad palette " + name + ": " + err.Error())
	}
	return gradScheme(name, src, g)
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("trail: bad colour " + s)
	}
	return c
}

var schemes = buildSchemes()

func buildSchemes() []Scheme {
	aurora0, aurora1 := mustHex("#00ffa3"), mustHex("#7b2cff")

	return []Scheme{
		gradScheme("viridis", SourceSpeed, colorgrad.Viridis()),
		gradScheme("magma", SourceSpeed, colorgrad.Magma()),
		gradScheme("inferno", SourceAngle, colorgrad.Inferno()),
		gradScheme("plasma", SourceIndex, colorgrad.Plasma()),
		gradScheme("turbo", SourceAngle, colorgrad.Turbo()),
		gradScheme("rainbow", SourceIndex, colorgrad.Rainbow()),
		gradScheme("sinebow", SourceAngle, colorgrad.Sinebow()),
		gradScheme("cool", SourceSpeed, colorgrad.Cool()),
		gradScheme("warm", SourceIndex, colorgrad.Warm()),
		gradScheme("spectral", SourceSpeed, colorgrad.Spectral()),
		gradScheme("rdylbu", SourceCharge, colorgrad.RdYlBu()),
		gradScheme("cividis", SourceIndex, colorgrad.Cividis()),
		gradScheme("cubehelix", SourceSpeed, colorgrad.CubehelixDefault()),
		htmlScheme("ember", SourceSpeed, "#1a0000", "#ff4500", "#ffd700", "#fffbe6"),
		htmlScheme("ocean", SourceAngle, "#001f3f", "#0074d9", "#7fdbff", "#e0ffff"),
		newScheme("neon", SourceAngle, func(t float64) colorful.Color {
			return colorful.Hsv(t*360, 0.9, 1)
		}),
		newScheme("aurora", SourceIndex, func(t float64) colorful.Color {
			return aurora0.BlendLab(aurora1, t)
		}),
	}
}

// Schemes returns every palette in cycling order.
func Schemes() []Scheme {
	return schemes
}

// NumSchemes returns the number of palettes.
func NumSchemes() int {
	return len(schemes)
}

// SchemeAt returns palette i modulo the palette count.
func SchemeAt(i int) *Scheme {
	n := len(schemes)
	return &schemes[((i%n)+n)%n]
}

// Style controls how Composite draws particles.
type Style struct {
	Opacity    float32
	Size       float32
	SpeedScale float32 // Speed mapped to the top of the palette
	Seed       uint64  // Charge hash seed
}

// Composite splats every particle of the store's current buffer with the
// colour its scheme source selects.
func (b *Buffer) Composite(store *systems.ParticleStore, scheme *Scheme, style Style) {
	buf := store.Front()
	n := store.N
	invN := float32(1)
	if n > 1 {
		invN = 1 / float32(n-1)
	}
	speedScale := style.SpeedScale
	if speedScale <= 0 {
		speedScale = 1
	}

	for i := 0; i < n; i++ {
		var t float32
		switch scheme.Source {
		case SourceIndex:
			t = float32(i) * invN
		case SourceSpeed:
			vx, vy := buf.VX[i], buf.VY[i]
			t = float32(math.Sqrt(float64(vx*vx+vy*vy))) / speedScale
		case SourceAngle:
			a := math.Atan2(float64(buf.VY[i]), float64(buf.VX[i]))
			t = float32((a + math.Pi) / (2 * math.Pi))
		case SourceCharge:
			t = (systems.ChargeSign(style.Seed, i) + 1) / 2
		}
		r, g, bl := scheme.Color(t)
		b.Splat(buf.X[i], buf.Y[i], style.Size, r, g, bl, style.Opacity)
	}
}
