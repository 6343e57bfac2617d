package dcp

import(
	"fmt"
	"log"

	"dehaze/pkg/gmath"
)

// Output bundles everything one pipeline run produces. It is built
// once by Dehaze and never mutated after.
type Output struct {
	Image           gmath.FloatCube // the hazy input
	DarkChannel     gmath.FloatGrid
	Mask            gmath.BoolGrid  // pixels whose colors were averaged into AtmosLight
	AtmosLight      []float64       // one entry per channel
	RawTransmission gmath.FloatGrid
	Transmission    gmath.FloatGrid // refined and clamped into [T0, 1]
	Recovered       gmath.FloatCube
	Depth           gmath.FloatGrid
}

// Dehaze runs the whole estimation pipeline in fixed order: dark
// channel, atmospheric light, raw transmission, the configured
// refiner, scene recovery, depth. The input cube is not mutated;
// every stage allocates its own output.
func Dehaze(img *gmath.FloatCube, cfg Config) (*Output, error) {
	refiner, err := cfg.GetRefiner()
	if err != nil {
		return nil, err
	}

	if cfg.Verbosity > 0 {
		log.Printf("dehazing %dx%d image (%d channels), method %q", img.Dx(), img.Dy(), img.Channels(), cfg.Method)
	}

	dc, err := DarkChannel(img, cfg.PatchW, cfg.PatchH)
	if err != nil {
		return nil, err
	}

	mask := SelectionMask(&dc, cfg.TopRatio)
	a := AtmosphericLight(img, &mask)
	if cfg.Verbosity > 0 {
		log.Printf("atmospheric light %v, estimated over %d pixels", a, mask.CountTrue())
	}

	rawT, err := RawTransmission(img, a, cfg.Omega, cfg.PatchW, cfg.PatchH)
	if err != nil {
		return nil, err
	}

	refined, err := refiner(cfg, img, &rawT)
	if err != nil {
		return nil, fmt.Errorf("refining transmission: %v", err)
	}

	// One clamp shared by recovery and depth, so the depth map can't
	// see a non-positive transmission
	t := refined.Clip(cfg.T0, 1)

	j := Recover(img, a, &t, cfg.T0, cfg.Clip)
	d := Depth(&t, cfg.Beta)

	return &Output{
		Image:           img.Copy(),
		DarkChannel:     dc,
		Mask:            mask,
		AtmosLight:      a,
		RawTransmission: rawT,
		Transmission:    t,
		Recovered:       j,
		Depth:           d,
	}, nil
}
