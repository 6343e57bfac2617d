package gmath

import(
	"math"
)

// Sliding-window filters over a FloatGrid. Both are separable, so
// they run as an X pass into a scratch grid followed by a Y pass,
// like the blur in the gradient-domain code this grid type came from.
// Out-of-range taps are extended from the nearest edge sample.
//
// Window offsets for a width-k window run from -(k/2) to k - k/2 - 1,
// so an even k reaches one sample further back than forward.

func clampInt(v, lo, hi int) int {
	if v < lo { return lo }
	if v > hi { return hi }
	return v
}

// MinFilter returns the windowed minimum of the grid, window size
// kw x kh samples.
func (g1 *FloatGrid)MinFilter(kw, kh int) FloatGrid {
	w, h := g1.Dx(), g1.Dy()
	T := g1.NewFromThis()
	g2 := g1.NewFromThis()

	loX, hiX := -(kw / 2), kw-kw/2-1
	loY, hiY := -(kh / 2), kh-kh/2-1

	//--- X min, build up in T
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			min := math.MaxFloat64
			for dx := loX; dx <= hiX; dx++ {
				if v := g1.Get(clampInt(x+dx, 0, w-1), y); v < min {
					min = v
				}
			}
			T.Set(x, y, min)
		}
	}

	//--- Y min, read from T and generate output
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			min := math.MaxFloat64
			for dy := loY; dy <= hiY; dy++ {
				if v := T.Get(x, clampInt(y+dy, 0, h-1)); v < min {
					min = v
				}
			}
			g2.Set(x, y, min)
		}
	}

	return g2
}

// BoxFilter returns the windowed mean of the grid, window size
// kw x kh samples. Every window is a full kw*kh samples - near the
// boundary the edge samples just get counted more than once.
func (g1 *FloatGrid)BoxFilter(kw, kh int) FloatGrid {
	w, h := g1.Dx(), g1.Dy()
	T := g1.NewFromThis()
	g2 := g1.NewFromThis()

	loX, hiX := -(kw / 2), kw-kw/2-1
	loY, hiY := -(kh / 2), kh-kh/2-1

	//--- X mean, build up in T
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0.0
			for dx := loX; dx <= hiX; dx++ {
				sum += g1.Get(clampInt(x+dx, 0, w-1), y)
			}
			T.Set(x, y, sum/float64(kw))
		}
	}

	//--- Y mean, read from T and generate output
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			sum := 0.0
			for dy := loY; dy <= hiY; dy++ {
				sum += T.Get(x, clampInt(y+dy, 0, h-1))
			}
			g2.Set(x, y, sum/float64(kh))
		}
	}

	return g2
}
