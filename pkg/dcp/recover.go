package dcp

import(
	"math"

	"dehaze/pkg/gmath"
)

// Recover inverts the scattering model I = J*t + A*(1-t) for the
// scene radiance: J = (I - A)/t + A. The transmission is floored at
// t0 first - in near-opaque regions (sky, thick haze) t approaches
// zero and the division would amplify noise into garbage. With clip,
// the result is clamped back into the valid [0,1] intensity range.
func Recover(img *gmath.FloatCube, a []float64, t *gmath.FloatGrid, t0 float64, clip bool) gmath.FloatCube {
	tc := t.Clip(t0, 1)
	out := img.NewFromThis()

	for y := 0; y < img.Dy(); y++ {
		for x := 0; x < img.Dx(); x++ {
			tv := tc.Get(x, y)
			for c := 0; c < img.Channels(); c++ {
				v := (img.Get(x, y, c)-a[c])/tv + a[c]
				if clip {
					if v < 0 { v = 0 }
					if v > 1 { v = 1 }
				}
				out.Set(x, y, c, v)
			}
		}
	}
	return out
}

// Depth converts transmission to relative depth via Beer-Lambert:
// d = -ln(t) / beta. The caller must ensure t > 0 everywhere; the
// pipeline feeds the [t0,1]-clamped map, which keeps every depth
// finite and non-negative.
func Depth(t *gmath.FloatGrid, beta float64) gmath.FloatGrid {
	d := t.NewFromThis()
	dv := d.Values()
	for i, v := range t.Values() {
		dv[i] = -math.Log(v) / beta
	}
	return d
}
