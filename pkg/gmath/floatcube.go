package gmath

// A FloatCube is a 2D grid of multi-channel floats - an image with a
// channel axis. Samples are stored row-major with channels
// interleaved, so pixel (x,y) channel c lives at index
// y*stride + x*channels + c.
type FloatCube struct {
	stride   int // row stride, in samples (width * channels)
	channels int
	values   []float64
}

func NewFloatCube(w, h, c int) FloatCube {
	return FloatCube{
		stride:   w * c,
		channels: c,
		values:   make([]float64, w*h*c),
	}
}

func (fc *FloatCube)Set(x, y, c int, v float64) { fc.values[fc.stride*y + x*fc.channels + c] = v }
func (fc *FloatCube)Get(x, y, c int) float64    { return fc.values[fc.stride*y + x*fc.channels + c] }
func (fc *FloatCube)Dx() int                    { return fc.stride / fc.channels }
func (fc *FloatCube)Dy() int                    { return len(fc.values) / fc.stride }
func (fc *FloatCube)Channels() int              { return fc.channels }
func (fc *FloatCube)Values() []float64          { return fc.values }

func (c1 *FloatCube)NewFromThis() FloatCube { return NewFloatCube(c1.Dx(), c1.Dy(), c1.channels) }

func (c1 *FloatCube)Copy() FloatCube {
	c2 := FloatCube{stride: c1.stride, channels: c1.channels, values: make([]float64, len(c1.values))}
	copy(c2.values, c1.values)
	return c2
}

// MinChannel reduces the channel axis by minimum. For a single
// channel cube this is just a copy into grid form.
func (fc *FloatCube)MinChannel() FloatGrid {
	g := NewFloatGrid(fc.Dx(), fc.Dy())

	for y := 0; y < fc.Dy(); y++ {
		for x := 0; x < fc.Dx(); x++ {
			min := fc.Get(x, y, 0)
			for c := 1; c < fc.channels; c++ {
				if v := fc.Get(x, y, c); v < min {
					min = v
				}
			}
			g.Set(x, y, min)
		}
	}
	return g
}

// Luma reduces an RGB cube to grayscale with the usual Rec.601
// weights. A single channel cube passes through unchanged.
func (fc *FloatCube)Luma() FloatGrid {
	g := NewFloatGrid(fc.Dx(), fc.Dy())

	for y := 0; y < fc.Dy(); y++ {
		for x := 0; x < fc.Dx(); x++ {
			if fc.channels == 1 {
				g.Set(x, y, fc.Get(x, y, 0))
			} else {
				v := 0.2989*fc.Get(x, y, 0) + 0.5870*fc.Get(x, y, 1) + 0.1140*fc.Get(x, y, 2)
				g.Set(x, y, v)
			}
		}
	}
	return g
}
