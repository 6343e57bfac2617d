package dcp

import(
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawTransmissionUniformGray(t *testing.T) {
	// On a uniform image I/A = 1 everywhere, so t~ = 1 - omega
	img := uniformCube(10, 10, 3, 0.5)
	a := []float64{0.5, 0.5, 0.5}

	tr, err := RawTransmission(&img, a, 0.95, 15, 15)
	require.NoError(t, err)

	for _, v := range tr.Values() {
		assert.InDelta(t, 0.05, v, 1e-12)
	}
}

func TestRawTransmissionOmegaScales(t *testing.T) {
	img := uniformCube(6, 6, 3, 0.4)
	a := []float64{0.4, 0.4, 0.4}

	tr, err := RawTransmission(&img, a, 0.8, 3, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, tr.Get(3, 3), 1e-12)
}

func TestRawTransmissionGuardsZeroAtmosLight(t *testing.T) {
	img := uniformCube(5, 5, 3, 0.5)
	a := []float64{0.0, 0.5, 0.5} // pathological channel

	tr, err := RawTransmission(&img, a, 0.95, 3, 3)
	require.NoError(t, err)
	for _, v := range tr.Values() {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestRawTransmissionDoesNotMutateInput(t *testing.T) {
	img := rampCube(6, 6)
	before := img.Copy()
	a := []float64{0.5, 0.5, 0.5}

	_, err := RawTransmission(&img, a, 0.95, 3, 3)
	require.NoError(t, err)

	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			for c := 0; c < 3; c++ {
				assert.Equal(t, before.Get(x, y, c), img.Get(x, y, c))
			}
		}
	}
}
