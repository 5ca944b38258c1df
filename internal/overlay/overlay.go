// Package overlay renders curated markers over a static map image for
// visual review.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/HugoSmits86/nativewebp"
	xdraw "golang.org/x/image/draw"

	"raid-mapper/internal/marker"
	"raid-mapper/pkg/colorutil"
	"raid-mapper/pkg/geometry"
)

// Palette maps marker categories to dot colors. Callers own the
// palette; the package keeps no mutable state.
type Palette struct {
	Colors    map[marker.Category]color.RGBA
	Default   color.RGBA
	Highlight color.RGBA
	Player    color.RGBA
}

// DefaultPalette returns the standard category coloring.
func DefaultPalette() Palette {
	return Palette{
		Colors: map[marker.Category]color.RGBA{
			marker.CategoryQuests:      {R: 255, G: 200, B: 40, A: 255},
			marker.CategoryExtractions: colorutil.Darken(colorutil.Green, 0.15),
			marker.CategorySpawns:      {R: 230, G: 80, B: 80, A: 255},
			marker.CategoryKeys:        {R: 120, G: 160, B: 255, A: 255},
			marker.CategoryLoot:        {R: 200, G: 120, B: 230, A: 255},
		},
		Default:   colorutil.Gray,
		Highlight: colorutil.Red,
		Player:    colorutil.Cyan,
	}
}

func (p Palette) colorFor(c marker.Category) color.RGBA {
	if col, ok := p.Colors[c]; ok {
		return col
	}
	return p.Default
}

// Options controls one render pass.
type Options struct {
	// Scale resizes the base image before stamping; <= 0 means 1.
	Scale float64
	// MarkerRadius in output pixels; <= 0 picks a size from the
	// output width.
	MarkerRadius int
	// Player, when set, is drawn as a cross at this world position.
	Player *geometry.Point2D
	// HighlightUnverified rings markers that have not passed
	// verification.
	HighlightUnverified bool
}

// Render scales the base map image and stamps each marker at its world
// position. The world rectangle gives the map-space extent of the base
// image; markers outside it are skipped.
func Render(base image.Image, markers []marker.Marker, world geometry.Rect, palette Palette, opts Options) (*image.RGBA, error) {
	if world.Width <= 0 || world.Height <= 0 {
		return nil, fmt.Errorf("overlay: empty world bounds %+v", world)
	}

	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	srcBounds := base.Bounds()
	w := int(math.Round(float64(srcBounds.Dx()) * scale))
	h := int(math.Round(float64(srcBounds.Dy()) * scale))
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("overlay: scale %v collapses a %dx%d image", scale, srcBounds.Dx(), srcBounds.Dy())
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), base, srcBounds, xdraw.Src, nil)

	radius := opts.MarkerRadius
	if radius <= 0 {
		radius = max(3, w/256)
	}

	toPixel := func(p geometry.Point2D) (int, int, bool) {
		if !world.Contains(p) {
			return 0, 0, false
		}
		px := (p.X - world.X) / world.Width * float64(w)
		py := (p.Y - world.Y) / world.Height * float64(h)
		return int(math.Round(px)), int(math.Round(py)), true
	}

	for _, m := range markers {
		x, y, ok := toPixel(m.Position)
		if !ok {
			continue
		}
		fillCircle(dst, x, y, radius, palette.colorFor(m.Category))
		if opts.HighlightUnverified && !m.Verified {
			strokeCircle(dst, x, y, radius+3, palette.Highlight)
		}
	}

	if opts.Player != nil {
		if x, y, ok := toPixel(*opts.Player); ok {
			drawCross(dst, x, y, radius*2, palette.Player)
		}
	}
	return dst, nil
}

// EncodePNG writes the overlay as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("overlay: encode png: %w", err)
	}
	return nil
}

// EncodeWebP writes the overlay as lossless WebP.
func EncodeWebP(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("overlay: encode webp: %w", err)
	}
	return nil
}

func fillCircle(img *image.RGBA, cx, cy, r int, col color.RGBA) {
	r2 := r * r
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r2 {
				setClipped(img, cx+dx, cy+dy, col)
			}
		}
	}
}

func strokeCircle(img *image.RGBA, cx, cy, r int, col color.RGBA) {
	inner := (r - 1) * (r - 1)
	outer := (r + 1) * (r + 1)
	for dy := -r - 1; dy <= r+1; dy++ {
		for dx := -r - 1; dx <= r+1; dx++ {
			d2 := dx*dx + dy*dy
			if d2 >= inner && d2 <= outer {
				setClipped(img, cx+dx, cy+dy, col)
			}
		}
	}
}

func drawCross(img *image.RGBA, cx, cy, arm int, col color.RGBA) {
	for d := -arm; d <= arm; d++ {
		setClipped(img, cx+d, cy, col)
		setClipped(img, cx, cy+d, col)
	}
}

func setClipped(img *image.RGBA, x, y int, col color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, col)
	}
}
