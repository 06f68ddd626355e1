package life

import "testing"

func assertAlive(t *testing.T, l *Life, expects map[[2]int]bool, stage string) {
	t.Helper()
	w, h := l.Size().W, l.Size().H
	cells := l.Cells()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			alive := cells[y*w+x] == 1
			if expects[[2]int{x, y}] != alive {
				t.Fatalf("%s: cell (%d,%d) alive=%v, expected %v", stage, x, y, alive, !alive)
			}
		}
	}
}

func TestBlinkerOscillation(t *testing.T) {
	life := New(5, 5)
	w := life.Size().W
	set := func(x, y int) { life.SetCell(y*w+x, 1) }
	set(2, 1)
	set(2, 2)
	set(2, 3)

	life.Step()
	assertAlive(t, life, map[[2]int]bool{{1, 2}: true, {2, 2}: true, {3, 2}: true}, "first step")

	life.Step()
	assertAlive(t, life, map[[2]int]bool{{2, 1}: true, {2, 2}: true, {2, 3}: true}, "second step")
}

func TestSetCellClampsAndBounds(t *testing.T) {
	life := New(3, 3)
	if !life.SetCell(4, 7) {
		t.Fatal("SetCell in range should succeed")
	}
	if life.Cells()[4] != 1 {
		t.Fatalf("SetCell should clamp to 1, got %d", life.Cells()[4])
	}
	if life.SetCell(9, 1) {
		t.Fatal("SetCell out of range should fail")
	}
}

func TestResetDensityExtremes(t *testing.T) {
	life := NewWithConfig(Config{Width: 6, Height: 4, Density: 0})
	life.Reset(3)
	for i, c := range life.Cells() {
		if c != 0 {
			t.Fatalf("density 0 left cell %d occupied", i)
		}
	}
	life = NewWithConfig(Config{Width: 6, Height: 4, Density: 1})
	life.Reset(3)
	for i, c := range life.Cells() {
		if c != 1 {
			t.Fatalf("density 1 left cell %d empty", i)
		}
	}
}

func TestFromMap(t *testing.T) {
	c := FromMap(map[string]string{"w": "20", "h": "bad", "density": "0.25"})
	if c.Width != 20 || c.Height != DefaultConfig().Height || c.Density != 0.25 {
		t.Fatalf("unexpected config %+v", c)
	}
}
