package dcp

import(
	"fmt"
	"log"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"dehaze/pkg/gmath"
)

// SoftMatting refines the raw transmission by solving the regularized
// matting system (L + lambda*I) t = lambda * p, where L is the
// matting Laplacian of the image and p the raw estimate flattened in
// row-major pixel order. Lambda trades fidelity to p against
// smoothness along low-variance color structure: large lambda tracks
// p, lambda -> 0 hands the result to the Laplacian's null space.
func SoftMatting(cfg Config, img *gmath.FloatCube, p *gmath.FloatGrid) (gmath.FloatGrid, error) {
	L, err := MattingLaplacian(img, cfg.Consts, cfg.MattingEps, cfg.WinSize)
	if err != nil {
		return gmath.FloatGrid{}, err
	}

	n := p.Dx() * p.Dy()
	b := make([]float64, n)
	for i, v := range p.Values() {
		b[i] = cfg.Lambda * v
	}

	maxIter := cfg.CGMaxIter
	if maxIter <= 0 {
		maxIter = 10 * n
	}
	tol := cfg.CGTol
	if tol <= 0 {
		tol = 1e-5
	}

	t := solveCG(L, cfg.Lambda, b, maxIter, tol)

	g := p.NewFromThis()
	copy(g.Values(), t)
	return g, nil
}

// MattingLaplacian assembles the sparse matting Laplacian: for every
// full window of (2*winSize+1)^2 pixels, a dense block of pairwise
// affinities derived from the window's color mean and covariance,
// accumulated over all the windows each pixel pair shares, then
// L = D - W with D the diagonal of row sums.
//
// The covariance is regularized with exactly eps/nebSize * I before
// inversion. The /nebSize scaling is part of the conditioning story
// as the window grows; don't "simplify" it to a bare epsilon.
//
// If consts is non-nil it marks pixels whose value is externally
// constrained; it gets eroded by the window footprint first, so only
// windows entirely inside the constrained region are skipped.
func MattingLaplacian(img *gmath.FloatCube, consts *gmath.BoolGrid, eps float64, winSize int) (*sparse.CSR, error) {
	w, h, c := img.Dx(), img.Dy(), img.Channels()
	n := w * h
	side := 2*winSize + 1
	nebSize := side * side

	if consts != nil {
		eroded := consts.Erode(side, side)
		consts = &eroded
	}

	affinity := sparse.NewDOK(n, n)
	rowSum := make([]float64, n)

	winInds := make([]int, nebSize)
	winI := mat.NewDense(nebSize, c, nil)
	mu := make([]float64, c)
	cov := mat.NewDense(c, c, nil)

	for j := winSize; j < w-winSize; j++ {
		for i := winSize; i < h-winSize; i++ {
			if consts != nil && consts.Get(j, i) {
				continue
			}

			// Gather the window's colors and mean, row-major
			for ch := range mu {
				mu[ch] = 0
			}
			k := 0
			for wy := i - winSize; wy <= i+winSize; wy++ {
				for wx := j - winSize; wx <= j+winSize; wx++ {
					winInds[k] = wy*w + wx
					for ch := 0; ch < c; ch++ {
						v := img.Get(wx, wy, ch)
						winI.Set(k, ch, v)
						mu[ch] += v
					}
					k++
				}
			}
			for ch := range mu {
				mu[ch] /= float64(nebSize)
			}

			// cov = winI'*winI/nebSize - mu*mu' + eps/nebSize * I
			cov.Mul(winI.T(), winI)
			for r := 0; r < c; r++ {
				for s := 0; s < c; s++ {
					v := cov.At(r, s)/float64(nebSize) - mu[r]*mu[s]
					if r == s {
						v += eps / float64(nebSize)
					}
					cov.Set(r, s, v)
				}
			}

			var covInv mat.Dense
			if err := covInv.Inverse(cov); err != nil {
				return nil, fmt.Errorf("matting laplacian: singular window covariance at (%d,%d): %v", j, i, err)
			}

			// Center the window colors, then the affinity block is
			// (1 + (winI-mu) * covInv * (winI-mu)') / nebSize
			for k := 0; k < nebSize; k++ {
				for ch := 0; ch < c; ch++ {
					winI.Set(k, ch, winI.At(k, ch)-mu[ch])
				}
			}

			var tmp, block mat.Dense
			tmp.Mul(winI, &covInv)
			block.Mul(&tmp, winI.T())

			for r := 0; r < nebSize; r++ {
				ri := winInds[r]
				for s := 0; s < nebSize; s++ {
					ci := winInds[s]
					v := (1 + block.At(r, s)) / float64(nebSize)
					// Overlapping windows must sum, not overwrite
					affinity.Set(ri, ci, affinity.At(ri, ci)-v)
					rowSum[ri] += v
				}
			}
		}
	}

	// L = D - W; the DOK currently holds -W, so fold in the row sums
	for i := 0; i < n; i++ {
		if rowSum[i] != 0 {
			affinity.Set(i, i, affinity.At(i, i)+rowSum[i])
		}
	}

	return affinity.ToCSR(), nil
}

// mulLaplacian computes y = (L + lambda*I) x.
func mulLaplacian(L *sparse.CSR, lambda float64, x, y []float64) {
	for i := range y {
		y[i] = lambda * x[i]
	}
	L.DoNonZero(func(i, j int, v float64) {
		y[i] += v * x[j]
	})
}

// solveCG runs conjugate gradients on (L + lambda*I) x = b. L is
// symmetric positive-semidefinite, so adding lambda*I makes the
// system positive-definite and CG converges to the unique solution.
// Non-convergence earns a warning, not an error - the last iterate is
// still a usable transmission map.
func solveCG(L *sparse.CSR, lambda float64, b []float64, maxIter int, tol float64) []float64 {
	n := len(b)
	x := make([]float64, n)
	r := make([]float64, n)
	d := make([]float64, n)
	ad := make([]float64, n)

	bnorm := math.Sqrt(floats.Dot(b, b))
	if bnorm == 0 {
		return x
	}

	copy(r, b) // x0 = 0, so r0 = b
	copy(d, r)
	rs := floats.Dot(r, r)

	for iter := 0; iter < maxIter; iter++ {
		if math.Sqrt(rs) <= tol*bnorm {
			return x
		}

		mulLaplacian(L, lambda, d, ad)
		denom := floats.Dot(d, ad)
		if denom <= 0 {
			break // the system has gone numerically indefinite
		}
		alpha := rs / denom

		floats.AddScaled(x, alpha, d)
		floats.AddScaled(r, -alpha, ad)

		rsNext := floats.Dot(r, r)
		beta := rsNext / rs
		rs = rsNext
		for i := range d {
			d[i] = r[i] + beta*d[i]
		}
	}

	if math.Sqrt(rs) > tol*bnorm {
		log.Printf("soft matting: CG stopped at relative residual %.2e (tol %.0e, %d iterations max); using last iterate",
			math.Sqrt(rs)/bnorm, tol, maxIter)
	}
	return x
}
