package dcp

import(
	"dehaze/pkg/gmath"
)

// An atmospheric light component below this gets floored before the
// normalization divide. A only gets near zero for pathological
// all-black selections, but a zero would poison the whole map.
const minAtmosLight = 1e-6

// RawTransmission inverts the scattering model for a first
// transmission estimate: t~ = 1 - omega * darkchannel(I/A). Omega < 1
// deliberately keeps a little haze so distant objects still read as
// distant. The estimate can stray outside (0,1]; refinement and the
// recovery clamp deal with that.
func RawTransmission(img *gmath.FloatCube, a []float64, omega float64, patchW, patchH int) (gmath.FloatGrid, error) {
	norm := img.NewFromThis()
	for c := 0; c < img.Channels(); c++ {
		ac := a[c]
		if ac < minAtmosLight {
			ac = minAtmosLight
		}
		for y := 0; y < img.Dy(); y++ {
			for x := 0; x < img.Dx(); x++ {
				norm.Set(x, y, c, img.Get(x, y, c)/ac)
			}
		}
	}

	dc, err := DarkChannel(&norm, patchW, patchH)
	if err != nil {
		return gmath.FloatGrid{}, err
	}

	t := dc // dc is ours to reuse
	vals := t.Values()
	for i, v := range vals {
		vals[i] = 1 - omega*v
	}
	return t, nil
}
