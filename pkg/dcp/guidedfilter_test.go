package dcp

import(
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dehaze/pkg/gmath"
)

func TestGuidedFilterConstantTransmission(t *testing.T) {
	// cov(I, p) = 0 for constant p, so a = 0 and b = p: the filter is
	// the identity on constants, whatever the guide looks like
	img := rampCube(16, 16)
	p := gmath.NewFloatGrid(16, 16)
	p.Fill(0.3)

	cfg := NewConfig()
	cfg.KernelW, cfg.KernelH = 5, 5

	out, err := GuidedFilter(cfg, &img, &p)
	require.NoError(t, err)
	for _, v := range out.Values() {
		assert.InDelta(t, 0.3, v, 1e-9)
	}
}

func TestGuidedFilterFlatGuideSmooths(t *testing.T) {
	// A flat guide has no structure to preserve, so the filter
	// reduces to double box smoothing of p
	img := uniformCube(16, 16, 3, 0.5)
	p := gmath.NewFloatGrid(16, 16)
	for i := range p.Values() {
		p.Values()[i] = 0.2
		if i%2 == 0 {
			p.Values()[i] = 0.8
		}
	}

	cfg := NewConfig()
	cfg.KernelW, cfg.KernelH = 5, 5

	out, err := GuidedFilter(cfg, &img, &p)
	require.NoError(t, err)

	lo, hi := 1.0, 0.0
	for _, v := range out.Values() {
		if v < lo { lo = v }
		if v > hi { hi = v }
	}
	// Way tighter than the 0.2..0.8 input spread
	assert.Greater(t, lo, 0.3)
	assert.Less(t, hi, 0.7)
}

func TestGuidedFilterStaysInValueEnvelope(t *testing.T) {
	img := rampCube(20, 20)
	p := gmath.NewFloatGrid(20, 20)
	for i := range p.Values() {
		p.Values()[i] = 0.1 + 0.8*float64(i)/400.0
	}

	cfg := NewConfig()
	cfg.KernelW, cfg.KernelH = 7, 7

	out, err := GuidedFilter(cfg, &img, &p)
	require.NoError(t, err)
	for _, v := range out.Values() {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		assert.Greater(t, v, -0.5)
		assert.Less(t, v, 1.5)
	}
}

func TestFastGuidedFilterApproximatesGuided(t *testing.T) {
	// On a smooth radial gradient the subsampled path should land
	// close to the full-resolution filter
	img := cubeFromFunc(40, 40, func(x, y int) (float64, float64, float64) {
		dx, dy := float64(x-20)/20.0, float64(y-20)/20.0
		r := math.Sqrt(dx*dx + dy*dy)
		return 0.3 + 0.4*r, 0.3 + 0.4*r, 0.3 + 0.4*r
	})
	p := gmath.NewFloatGrid(40, 40)
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			dx, dy := float64(x-20)/20.0, float64(y-20)/20.0
			p.Set(x, y, 0.9-0.5*math.Sqrt(dx*dx+dy*dy))
		}
	}

	cfg := NewConfig()
	cfg.KernelW, cfg.KernelH = 9, 9
	cfg.Subsample = 2

	full, err := GuidedFilter(cfg, &img, &p)
	require.NoError(t, err)
	fast, err := FastGuidedFilter(cfg, &img, &p)
	require.NoError(t, err)

	maxDiff := 0.0
	for i := range full.Values() {
		d := math.Abs(full.Values()[i] - fast.Values()[i])
		if d > maxDiff {
			maxDiff = d
		}
	}
	assert.Less(t, maxDiff, 0.1)
}

func TestFastGuidedFilterTinyImage(t *testing.T) {
	// Shrink factor bigger than the image must not underflow to a
	// zero-sized grid
	img := rampCube(3, 3)
	p := gmath.NewFloatGrid(3, 3)
	p.Fill(0.5)

	cfg := NewConfig()
	cfg.Subsample = 8

	out, err := FastGuidedFilter(cfg, &img, &p)
	require.NoError(t, err)
	require.Equal(t, 3, out.Dx())
	require.Equal(t, 3, out.Dy())
}
