package dcp

import(
	"dehaze/pkg/gmath"
)

// The guided filter refiners: a local linear regression of the raw
// transmission against a grayscale guide, computed entirely from box
// filtered statistics. Much faster than soft matting, similar
// edge-preserving behavior.

// GuidedFilter refines the raw transmission p with a kernel-sized
// local linear model against the image's luma: a = cov(I,p) /
// (var(I) + eps), b = mean(p) - a*mean(I), then a and b are
// themselves box-averaged before applying - averaging the model
// rather than the output is what makes this a guided filter instead
// of a plain local regression.
func GuidedFilter(cfg Config, img *gmath.FloatCube, p *gmath.FloatGrid) (gmath.FloatGrid, error) {
	guide := img.Luma()
	a, b := guidedCoeffs(&guide, p, cfg.KernelW, cfg.KernelH, cfg.GuidedEps)
	return applyLinearModel(&a, &b, &guide), nil
}

// FastGuidedFilter is GuidedFilter computed at 1/s resolution: guide
// and p are shrunk, the kernel radius is rescaled to match, and the
// averaged coefficients are upsampled and applied against the
// original-resolution guide. Trades a resampling approximation for
// roughly s^2 fewer box filter taps.
func FastGuidedFilter(cfg Config, img *gmath.FloatCube, p *gmath.FloatGrid) (gmath.FloatGrid, error) {
	guide := img.Luma()

	s := cfg.Subsample
	if s < 1 {
		s = 1
	}
	lw := guide.Dx() / s
	lh := guide.Dy() / s
	if lw < 1 { lw = 1 }
	if lh < 1 { lh = 1 }

	smallI := guide.Resize(lw, lh)
	smallP := p.Resize(lw, lh)

	// Rescale the window by its radius, so a 41-tap kernel at s=4
	// becomes 2*(20/4)+1 = 11 taps. A radius under s rounds to a
	// single-pixel window.
	rw := (cfg.KernelW - 1) / 2
	rh := (cfg.KernelH - 1) / 2
	kw := 2*(rw/s) + 1
	kh := 2*(rh/s) + 1

	a, b := guidedCoeffs(&smallI, &smallP, kw, kh, cfg.GuidedEps)

	aUp := a.Resize(guide.Dx(), guide.Dy())
	bUp := b.Resize(guide.Dx(), guide.Dy())
	return applyLinearModel(&aUp, &bUp, &guide), nil
}

// guidedCoeffs returns the box-averaged local linear coefficients of
// p against I. With eps = 0 this degrades to plain local least
// squares and divides by zero on flat patches; keep eps > 0.
func guidedCoeffs(I, p *gmath.FloatGrid, kw, kh int, eps float64) (gmath.FloatGrid, gmath.FloatGrid) {
	meanI := I.BoxFilter(kw, kh)
	meanP := p.BoxFilter(kw, kh)

	Ip := mulGrids(I, p)
	II := mulGrids(I, I)
	corrIp := Ip.BoxFilter(kw, kh)
	corrII := II.BoxFilter(kw, kh)

	a := I.NewFromThis()
	b := I.NewFromThis()
	av, bv := a.Values(), b.Values()
	mi, mp := meanI.Values(), meanP.Values()
	ci, cip := corrII.Values(), corrIp.Values()

	for i := range av {
		varI := ci[i] - mi[i]*mi[i]
		covIp := cip[i] - mi[i]*mp[i]
		av[i] = covIp / (varI + eps)
		bv[i] = mp[i] - av[i]*mi[i]
	}

	return a.BoxFilter(kw, kh), b.BoxFilter(kw, kh)
}

func applyLinearModel(a, b, I *gmath.FloatGrid) gmath.FloatGrid {
	out := I.NewFromThis()
	ov, av, bv, iv := out.Values(), a.Values(), b.Values(), I.Values()
	for i := range ov {
		ov[i] = av[i]*iv[i] + bv[i]
	}
	return out
}

func mulGrids(g1, g2 *gmath.FloatGrid) gmath.FloatGrid {
	out := g1.NewFromThis()
	ov, v1, v2 := out.Values(), g1.Values(), g2.Values()
	for i := range ov {
		ov[i] = v1[i] * v2[i]
	}
	return out
}
