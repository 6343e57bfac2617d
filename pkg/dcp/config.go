package dcp

import(
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"dehaze/pkg/gmath"
)

// The transmission refinement methods. The empty string selects soft
// matting, which is the reference (and slowest) refiner.
const(
	MethodSoft   = "soft"
	MethodGuided = "guided"
	MethodFast   = "fast"
)

var Methods = []string{MethodSoft, MethodGuided, MethodFast}

func ListMethods() string {
	return fmt.Sprintf("%v", Methods)
}

type Config struct {
	Verbosity   int

	// Dark channel / atmospheric light. The patch should be odd in
	// both dimensions - even sizes bias the window off-center.
	PatchW      int
	PatchH      int
	TopRatio    float64 // fraction of brightest dark-channel pixels averaged into the atmospheric light
	Omega       float64 // haze retention factor in the raw transmission estimate

	Method      string  // transmission refiner: "soft" (or ""), "guided", "fast"

	// Soft matting
	Lambda      float64 // how hard the solve is pulled toward the raw estimate
	MattingEps  float64 // window covariance regularization, applied as eps/nebSize * I
	WinSize     int     // matting window radius; windows are (2*WinSize+1)^2 pixels
	CGMaxIter   int     // 0 means a size-based default
	CGTol       float64 // 0 means the default relative tolerance
	Consts      *gmath.BoolGrid `yaml:"-"` // optional hard-constraint mask, excluded from the solve

	// Guided / fast guided filter
	KernelW     int
	KernelH     int
	GuidedEps   float64 // variance regularization in the local linear fit
	Subsample   int     // fast guided filter shrink factor

	// Recovery + depth
	T0          float64 // transmission floor for scene recovery
	Clip        bool    // clamp recovered radiance into [0,1]
	Beta        float64 // Beer-Lambert scattering coefficient for the depth map
}

func NewConfig() Config {
	return Config{
		PatchW:     15,
		PatchH:     15,
		TopRatio:   1e-3,
		Omega:      0.95,
		Method:     MethodSoft,
		Lambda:     1e-4,
		MattingEps: 1e-7,
		WinSize:    1,
		KernelW:    41,
		KernelH:    41,
		GuidedEps:  1e-3,
		Subsample:  4,
		T0:         0.1,
		Clip:       true,
		Beta:       0.388,
	}
}

// LoadConfig layers a yaml file over the default configuration.
func LoadConfig(filename string) (Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %v", filename, err)
	}
	return newConfigFromYaml(b)
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("<unmarshalable config: %v>", err)
	}
	return string(b)
}

// A Refiner turns the raw transmission estimate into the final
// transmission map, guided by the original image.
type Refiner func(Config, *gmath.FloatCube, *gmath.FloatGrid) (gmath.FloatGrid, error)

// GetRefiner resolves the method name before any pixels get touched,
// so a bad name fails up front.
func (c Config)GetRefiner() (Refiner, error) {
	switch c.Method {
	case "", MethodSoft: return SoftMatting, nil
	case MethodGuided:   return GuidedFilter, nil
	case MethodFast:     return FastGuidedFilter, nil
	default:
		return nil, fmt.Errorf("no transmission refiner named %q, wanted one of %s", c.Method, ListMethods())
	}
}
