//go:build ebiten

package app

import (
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"ca-fractal/internal/core"
	"ca-fractal/internal/render"
	"ca-fractal/internal/ui"
)

// Game adapts a controlled simulation to the ebiten.Game interface.
type Game struct {
	ctrl    *Controller
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay
	pace    *core.FixedStep
	logger  *slog.Logger

	scale    int
	hudWidth int
	paused   bool
	tickOnce bool
	paint    uint8
}

// New constructs a Game around ctrl. tps sets how often the sim steps; the
// window itself refreshes at ebiten's rate.
func New(ctrl *Controller, scale, tps, hudWidth int, logger *slog.Logger) *Game {
	sim := ctrl.Grid().Sim()
	palette := render.Binary
	if m, ok := sim.(core.MultiState); ok {
		palette = render.PaletteFor(m.States())
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Game{
		ctrl:     ctrl,
		painter:  render.NewGridPainter(sim.Size().W, sim.Size().H, palette),
		hud:      ui.NewHUD(ctrl.Session(), hudWidth),
		overlay:  ui.NewOverlay(),
		pace:     core.NewFixedStep(tps),
		logger:   logger,
		scale:    scale,
		hudWidth: hudWidth,
		paint:    1,
	}
}

// Update handles per-frame input and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.ctrl.Reset(g.ctrl.Seed())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.ctrl.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		on := g.ctrl.ToggleAnalysis()
		g.logger.Info("analysis toggled", "on", on)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.ctrl.ClearPins()
	}
	for _, k := range []ebiten.Key{ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2} {
		if inpututil.IsKeyJustPressed(k) {
			g.paint = uint8(k - ebiten.KeyDigit0)
		}
	}
	g.overlay.Update()

	edited := g.handleMouse()

	switch {
	case g.tickOnce:
		g.ctrl.Step()
		g.tickOnce = false
	case !g.paused && g.pace.ShouldStep():
		g.ctrl.Step()
	case edited:
		g.ctrl.Refresh()
	}
	if err := g.ctrl.Err(); err != nil {
		g.logger.Debug("analysis incomplete", "generation", g.ctrl.Grid().Generation(), "err", err)
	}

	g.hud.Update(g.viewWidth())
	g.overlay.SetCells(g.ctrl.Session().Highlight(), g.ctrl.Pinned())
	return nil
}

// handleMouse paints on left drag and toggles pins on right click. It
// reports whether anything was queued for the session.
func (g *Game) handleMouse() bool {
	x, y := ebiten.CursorPosition()
	l := g.ctrl.Layout(g.scale)
	gen, idx, ok := l.CellAt(x, y)
	if !ok {
		return false
	}
	edited := false
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if err := g.ctrl.Paint(gen, idx, g.paint); err != nil {
			g.logger.Debug("paint rejected", "generation", gen, "index", idx, "err", err)
		} else {
			edited = true
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		pinned, err := g.ctrl.TogglePin(idx)
		if err != nil {
			g.logger.Debug("pin ignored", "index", idx, "err", err)
		} else {
			g.logger.Info("pin toggled", "index", idx, "pinned", pinned)
			edited = true
		}
	}
	return edited
}

// Draw renders the grid, the highlight overlay and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.ctrl.Grid().Snapshot(), g.scale)
	g.overlay.Draw(screen, g.ctrl.Layout(g.scale))
	g.hud.Draw(screen, g.viewWidth(), g.ctrl.Layout(g.scale).Height())
}

func (g *Game) viewWidth() int { return g.ctrl.Layout(g.scale).Width() }

// Layout returns the logical screen size.
func (g *Game) Layout(_, _ int) (int, int) {
	l := g.ctrl.Layout(g.scale)
	return l.Width() + g.hudWidth, l.Height()
}
