//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Overlay marks the cells the top-k statistic highlights and the cells the
// user pinned. T toggles it.
type Overlay struct {
	show      bool
	pixel     *ebiten.Image
	highlight []int
	pinned    map[int]bool
}

// NewOverlay constructs a visible overlay.
func NewOverlay() *Overlay {
	o := &Overlay{show: true, pinned: map[int]bool{}}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update handles the toggle key.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		o.show = !o.show
	}
}

// Visible reports whether the overlay is drawn.
func (o *Overlay) Visible() bool { return o.show }

// SetCells replaces the marked cells. Pinned cells are drawn in their own
// colour even when they are also highlighted.
func (o *Overlay) SetCells(highlight, pinned []int) {
	o.highlight = append(o.highlight[:0], highlight...)
	clear(o.pinned)
	for _, i := range pinned {
		o.pinned[i] = true
	}
}

// Draw paints the marks using l to place them.
func (o *Overlay) Draw(screen *ebiten.Image, l Layout) {
	if !o.show {
		return
	}
	s := l.scale()
	for _, idx := range o.highlight {
		col := colorHighlight
		if o.pinned[idx] {
			col = colorPinned
		}
		x, y := l.Origin(idx)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(s), float64(s))
		op.GeoM.Translate(float64(x), float64(y))
		op.ColorScale.ScaleWithColor(col)
		screen.DrawImage(o.pixel, op)
	}
}

var (
	colorHighlight = color.RGBA{R: 200, G: 40, B: 40, A: 160}
	colorPinned    = color.RGBA{R: 40, G: 120, B: 220, A: 200}
)
