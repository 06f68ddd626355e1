// Package render turns sim cell buffers into RGBA pixels.
package render

import "image/color"

// Palette maps cell values to colours. Values past the end use the last
// entry.
type Palette []color.RGBA

// Binary is the two-colour palette for on/off sims.
var Binary = Palette{
	{R: 0, G: 0, B: 0, A: 255},
	{R: 255, G: 255, B: 255, A: 255},
}

// PaletteFor returns a palette with at least states entries: black for
// empty, white for the first live state, then fading greys.
func PaletteFor(states int) Palette {
	if states <= 2 {
		return Binary
	}
	p := make(Palette, states)
	p[0] = Binary[0]
	for i := 1; i < states; i++ {
		v := uint8(255 - (i-1)*160/(states-1))
		p[i] = color.RGBA{R: v, G: v, B: v, A: 255}
	}
	return p
}

// Fill writes one RGBA pixel per cell into buf, which must hold
// 4*len(cells) bytes. An empty palette clears buf to transparent black.
func (p Palette) Fill(buf []byte, cells []uint8) {
	if len(p) == 0 {
		clear(buf[:4*len(cells)])
		return
	}
	last := len(p) - 1
	for i, c := range cells {
		col := p[min(int(c), last)]
		base := i * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
