package dcp

import(
	"sort"

	"dehaze/pkg/gmath"
)

// SelectionMask marks the max(1, floor(H*W*topRatio)) pixels with the
// largest dark-channel values. Ties at the cutoff fall to the sort's
// whim; only the count matters.
func SelectionMask(dc *gmath.FloatGrid, topRatio float64) gmath.BoolGrid {
	w, h := dc.Dx(), dc.Dy()
	numpix := int(float64(w*h) * topRatio)
	if numpix < 1 {
		numpix = 1
	}

	vals := dc.Values()
	inds := make([]int, len(vals))
	for i := range inds {
		inds[i] = i
	}
	sort.Slice(inds, func(a, b int) bool { return vals[inds[a]] > vals[inds[b]] })

	mask := gmath.NewBoolGrid(w, h)
	mv := mask.Values()
	for _, idx := range inds[:numpix] {
		mv[idx] = true
	}
	return mask
}

// AtmosphericLight estimates the ambient light color as the mean
// image color over the masked pixels. The divisor is the masked pixel
// count, so each channel is a true per-channel mean. A single masked
// pixel is fine - then A is just that pixel's color.
func AtmosphericLight(img *gmath.FloatCube, mask *gmath.BoolGrid) []float64 {
	a := make([]float64, img.Channels())
	n := 0

	for y := 0; y < img.Dy(); y++ {
		for x := 0; x < img.Dx(); x++ {
			if !mask.Get(x, y) {
				continue
			}
			n++
			for c := range a {
				a[c] += img.Get(x, y, c)
			}
		}
	}

	for c := range a {
		a[c] /= float64(n)
	}
	return a
}
