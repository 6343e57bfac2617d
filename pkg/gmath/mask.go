package gmath

// A BoolGrid is a 2D grid of booleans, same layout as FloatGrid.
type BoolGrid struct {
	stride int
	values []bool
}

func NewBoolGrid(w, h int) BoolGrid {
	return BoolGrid{
		stride: w,
		values: make([]bool, w*h),
	}
}

func (bg *BoolGrid)Set(x, y int, v bool) { bg.values[bg.stride*y + x] = v }
func (bg *BoolGrid)Get(x, y int) bool    { return bg.values[bg.stride*y + x] }
func (bg *BoolGrid)Dx() int              { return bg.stride }
func (bg *BoolGrid)Dy() int              { return len(bg.values) / bg.stride }
func (bg *BoolGrid)Values() []bool       { return bg.values }

func (bg *BoolGrid)CountTrue() int {
	n := 0
	for _, v := range bg.values {
		if v {
			n++
		}
	}
	return n
}

// Erode performs binary erosion with a kw x kh all-ones structuring
// element: an output pixel is true only if every pixel under the
// window is true. Outside the grid counts as false, so true regions
// touching the border are eaten back like everything else.
func (g1 *BoolGrid)Erode(kw, kh int) BoolGrid {
	w, h := g1.Dx(), g1.Dy()
	g2 := NewBoolGrid(w, h)

	loX, hiX := -(kw / 2), kw-kw/2-1
	loY, hiY := -(kh / 2), kh-kh/2-1

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			all := true
			for dy := loY; all && dy <= hiY; dy++ {
				for dx := loX; dx <= hiX; dx++ {
					xx, yy := x+dx, y+dy
					if xx < 0 || xx >= w || yy < 0 || yy >= h || !g1.Get(xx, yy) {
						all = false
						break
					}
				}
			}
			g2.Set(x, y, all)
		}
	}

	return g2
}
