package dcp

import(
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDehazeRejectsUnknownMethod(t *testing.T) {
	img := uniformCube(4, 4, 3, 0.5)
	cfg := NewConfig()
	cfg.Method = "magic"

	_, err := Dehaze(&img, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic")
}

func TestDehazeEmptyMethodMeansSoftMatting(t *testing.T) {
	cfg := NewConfig()
	cfg.Method = ""
	_, err := cfg.GetRefiner()
	require.NoError(t, err)
}

func TestDehazeUniformGrayScenario(t *testing.T) {
	// The fully worked scenario: uniform 0.5 gray 10x10. Dark channel
	// is 0.5, one pixel selected, A = (0.5,0.5,0.5), raw t = 0.05
	// everywhere, soft matting tracks it, recovery lands back on 0.5
	// since A == I
	img := uniformCube(10, 10, 3, 0.5)
	cfg := NewConfig()

	out, err := Dehaze(&img, cfg)
	require.NoError(t, err)

	for _, v := range out.DarkChannel.Values() {
		assert.InDelta(t, 0.5, v, 1e-12)
	}

	assert.Equal(t, 1, out.Mask.CountTrue())
	require.Len(t, out.AtmosLight, 3)
	for _, a := range out.AtmosLight {
		assert.InDelta(t, 0.5, a, 1e-12)
	}

	for _, v := range out.RawTransmission.Values() {
		assert.InDelta(t, 0.05, v, 1e-12)
	}

	// Refined tracks raw on a flat image, then gets floored at t0
	for _, v := range out.Transmission.Values() {
		assert.InDelta(t, 0.1, v, 1e-3)
	}

	for _, v := range out.Recovered.Values() {
		assert.InDelta(t, 0.5, v, 1e-6)
	}

	wantDepth := -math.Log(0.1) / cfg.Beta
	for _, v := range out.Depth.Values() {
		assert.InDelta(t, wantDepth, v, 0.05)
	}
}

func TestDehazeGuidedMethods(t *testing.T) {
	img := rampCube(20, 20)

	for _, method := range []string{MethodGuided, MethodFast} {
		t.Run(method, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Method = method
			cfg.KernelW, cfg.KernelH = 7, 7

			out, err := Dehaze(&img, cfg)
			require.NoError(t, err)

			require.Equal(t, 20, out.Transmission.Dx())
			require.Equal(t, 20, out.Recovered.Dx())

			for _, v := range out.Transmission.Values() {
				assert.GreaterOrEqual(t, v, cfg.T0)
				assert.LessOrEqual(t, v, 1.0)
			}
			for _, v := range out.Recovered.Values() {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
			for _, v := range out.Depth.Values() {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
				assert.GreaterOrEqual(t, v, 0.0)
			}
		})
	}
}

func TestDehazeDoesNotMutateInput(t *testing.T) {
	img := rampCube(12, 12)
	before := img.Copy()

	cfg := NewConfig()
	cfg.Method = MethodGuided
	_, err := Dehaze(&img, cfg)
	require.NoError(t, err)

	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			for c := 0; c < 3; c++ {
				assert.Equal(t, before.Get(x, y, c), img.Get(x, y, c))
			}
		}
	}
}

func TestDehazeBundleShapes(t *testing.T) {
	img := rampCube(14, 9)
	cfg := NewConfig()
	cfg.Method = MethodFast

	out, err := Dehaze(&img, cfg)
	require.NoError(t, err)

	assert.Equal(t, 14, out.Image.Dx())
	assert.Equal(t, 9, out.Image.Dy())
	assert.Equal(t, 14, out.DarkChannel.Dx())
	assert.Equal(t, 14, out.Mask.Dx())
	assert.Equal(t, 14, out.RawTransmission.Dx())
	assert.Equal(t, 14, out.Transmission.Dx())
	assert.Equal(t, 14, out.Recovered.Dx())
	assert.Equal(t, 14, out.Depth.Dx())
	assert.Equal(t, 9, out.Depth.Dy())
}
