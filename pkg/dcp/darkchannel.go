package dcp

import(
	"fmt"

	"dehaze/pkg/gmath"
)

// DarkChannel computes the dark channel of an image: the minimum
// intensity across color channels and across a patchW x patchH
// neighborhood around each pixel. In haze-free non-sky regions this
// tends to be near zero, which is the prior the whole pipeline
// leans on.
func DarkChannel(img *gmath.FloatCube, patchW, patchH int) (gmath.FloatGrid, error) {
	if c := img.Channels(); c != 1 && c != 3 {
		return gmath.FloatGrid{}, fmt.Errorf("dark channel: want a 1 or 3 channel image, got %d channels", c)
	}

	chanMin := img.MinChannel()
	return chanMin.MinFilter(patchW, patchH), nil
}
