package gmath

// Resize resamples the grid to w x h with bilinear interpolation,
// sampling at pixel centers. Shrinking a grid this way point-samples
// rather than averaging, which is fine for the smooth maps we feed
// through it.
func (g1 *FloatGrid)Resize(w, h int) FloatGrid {
	if w == g1.Dx() && h == g1.Dy() {
		return g1.Copy()
	}

	g2 := NewFloatGrid(w, h)
	scaleX := float64(g1.Dx()) / float64(w)
	scaleY := float64(g1.Dy()) / float64(h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Source position of this output pixel's center
			sx := (float64(x)+0.5)*scaleX - 0.5
			sy := (float64(y)+0.5)*scaleY - 0.5

			x0 := int(sx)
			y0 := int(sy)
			if sx < 0 { x0 = -1 }
			if sy < 0 { y0 = -1 }
			fx := sx - float64(x0)
			fy := sy - float64(y0)

			x0c := clampInt(x0, 0, g1.Dx()-1)
			x1c := clampInt(x0+1, 0, g1.Dx()-1)
			y0c := clampInt(y0, 0, g1.Dy()-1)
			y1c := clampInt(y0+1, 0, g1.Dy()-1)

			v := (1-fy)*((1-fx)*g1.Get(x0c, y0c) + fx*g1.Get(x1c, y0c)) +
				fy*((1-fx)*g1.Get(x0c, y1c) + fx*g1.Get(x1c, y1c))
			g2.Set(x, y, v)
		}
	}

	return g2
}
