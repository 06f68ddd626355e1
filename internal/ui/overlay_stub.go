//go:build !ebiten

package ui

// Overlay is a no-op placeholder used when the ebiten build tag is absent.
type Overlay struct{}

// NewOverlay constructs a stub overlay.
func NewOverlay() *Overlay { return &Overlay{} }

// Update is a no-op in headless builds.
func (o *Overlay) Update() {}

// Visible always reports false in headless builds.
func (o *Overlay) Visible() bool { return false }

// SetCells is a no-op in headless builds.
func (o *Overlay) SetCells(_, _ []int) {}

// Draw is a no-op placeholder.
func (o *Overlay) Draw(any, Layout) {}
