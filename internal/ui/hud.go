//go:build ebiten

package ui

import (
	"image"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"ca-fractal/internal/core"
)

// HUD renders the analysis panel to the right of the simulation view: the
// tunables of the running statistics followed by their latest results.
type HUD struct {
	src   Source
	width int
	panel *ebiten.Image
	pixel *ebiten.Image

	controls     []hudControlState
	panelOffsetX int
	info         []string
	lines        []string
}

type hudControlState struct {
	control  core.ParameterControl
	value    float64
	hasValue bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

// NewHUD constructs a HUD for src with the given panel width.
func NewHUD(src Source, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{src: src, width: width}
	if width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	for _, ctrl := range src.ParameterControls() {
		h.controls = append(h.controls, hudControlState{control: ctrl})
	}
	h.layoutControls()
	return h
}

// Update refreshes values and results and handles clicks on the panel.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	h.info = h.info[:0]
	for _, g := range h.src.ParameterSnapshot().Groups {
		for _, p := range g.Params {
			if p.Key == "session" {
				continue
			}
			h.info = append(h.info, p.Label+": "+p.Value)
		}
	}
	for i := range h.controls {
		st := &h.controls[i]
		st.value, st.hasValue = h.src.ParameterValue(st.control.Key)
	}
	h.lines = ResultLines(h.src.Results(), h.src.Stopped())
	h.handleInput()
}

// Draw paints the panel at offsetX with the given height.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dy() != height {
		h.panel = ebiten.NewImage(h.width, height)
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})

	face := basicfont.Face7x13
	text.Draw(h.panel, "Analysis", face, panelPadding, panelPadding+headerBaseline, colorTitle)
	for i := range h.controls {
		h.drawControl(&h.controls[i])
	}
	y := h.resultsTop()
	for _, line := range h.info {
		text.Draw(h.panel, line, face, panelPadding, y, colorDim)
		y += textLine
	}
	y += textLine / 2
	for _, line := range h.lines {
		col := colorText
		if strings.HasSuffix(line, " LOW") {
			col = colorWarn
		}
		text.Draw(h.panel, line, face, panelPadding, y, col)
		y += textLine
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) resultsTop() int {
	return controlsTop + len(h.controls)*lineHeight + textLine
}

func (h *HUD) handleInput() {
	if len(h.controls) == 0 || !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return
	}
	px := mx - h.panelOffsetX
	for i := range h.controls {
		st := &h.controls[i]
		if !st.hasValue {
			continue
		}
		dir := 0
		switch {
		case pointInRect(px, my, st.minusRect):
			dir = -1
		case pointInRect(px, my, st.plusRect):
			dir = 1
		default:
			continue
		}
		if target, ok := adjust(st.control, st.value, dir); ok && apply(h.src, st.control, target) {
			st.value = target
		}
		return
	}
}

func (h *HUD) drawControl(st *hudControlState) {
	face := basicfont.Face7x13
	y := st.top + labelBaseline
	text.Draw(h.panel, st.control.Label, face, panelPadding, y, colorText)
	value, col := "--", colorDim
	if st.hasValue {
		value, col = formatValue(st.control, st.value), colorText
	}
	w := text.BoundString(face, value).Dx()
	text.Draw(h.panel, value, face, st.minusRect.Min.X-buttonGap-w, y, col)

	_, canDown := adjust(st.control, st.value, -1)
	_, canUp := adjust(st.control, st.value, 1)
	h.drawButton(st.minusRect, "-", st.hasValue && canDown)
	h.drawButton(st.plusRect, "+", st.hasValue && canUp)
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	if h.pixel == nil {
		return
	}
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	b := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-b.Dx())/2
	y := rect.Min.Y + (rect.Dy()-b.Dy())/2 + b.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) layoutControls() {
	if h.width <= 0 {
		return
	}
	for i := range h.controls {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plus := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minus := image.Rect(plus.Min.X-buttonGap-buttonSize, buttonY, plus.Min.X-buttonGap, buttonY+buttonSize)
		h.controls[i].top = top
		h.controls[i].minusRect = minus
		h.controls[i].plusRect = plus
	}
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return image.Pt(x, y).In(rect)
}

var (
	colorTitle = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	colorText  = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	colorDim   = color.RGBA{R: 160, G: 160, B: 170, A: 255}
	colorWarn  = color.RGBA{R: 240, G: 170, B: 60, A: 255}
)

const (
	panelPadding   = 12
	lineHeight     = 36
	textLine       = 16
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	controlsTop    = panelPadding + headerBaseline + 14
)
