package main

import(
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"dehaze/pkg/dcp"
)

var(
	fVerbosity int
	fConfig string
	fMethod string
	fMaxDim int

	fPatch int
	fTopRatio float64
	fOmega float64

	fLambda float64
	fMattingEps float64
	fWinSize int

	fKernel int
	fGuidedEps float64
	fSubsample int

	fT0 float64
	fClip bool
	fBeta float64
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fConfig, "cfg", "", "yaml config file (flags given explicitly override it)")
	flag.StringVar(&fMethod, "method", "soft", "transmission refiner: "+dcp.ListMethods())
	flag.IntVar(&fMaxDim, "maxdim", 0, "shrink input so neither side exceeds this (0 = never; soft matting wants <=300 or so)")

	flag.IntVar(&fPatch, "patch", 15, "dark channel patch size (odd)")
	flag.Float64Var(&fTopRatio, "topratio", 1e-3, "fraction of brightest dark-channel pixels averaged into the atmospheric light")
	flag.Float64Var(&fOmega, "omega", 0.95, "haze retention factor for the raw transmission")

	flag.Float64Var(&fLambda, "lam", 1e-4, "soft matting: pull toward the raw estimate")
	flag.Float64Var(&fMattingEps, "mattingeps", 1e-7, "soft matting: window covariance regularization")
	flag.IntVar(&fWinSize, "winsize", 1, "soft matting: window radius")

	flag.IntVar(&fKernel, "ks", 41, "guided filter: box kernel size")
	flag.Float64Var(&fGuidedEps, "eps", 1e-3, "guided filter: variance regularization")
	flag.IntVar(&fSubsample, "s", 4, "fast guided filter: shrink factor")

	flag.Float64Var(&fT0, "t0", 0.1, "transmission floor for scene recovery")
	flag.BoolVar(&fClip, "clip", true, "clamp recovered radiance into [0,1]")
	flag.Float64Var(&fBeta, "beta", 0.388, "scattering coefficient for the depth map")

	flag.Parse()

	log.Printf("dehaze starting\n")
}

func main() {
	cfg := dcp.NewConfig()

	if fConfig != "" {
		var err error
		if cfg, err = dcp.LoadConfig(fConfig); err != nil {
			log.Fatal(err)
		}
	}

	// Only flags the user actually passed override the yaml config
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":          cfg.Verbosity = fVerbosity
		case "method":     cfg.Method = fMethod
		case "patch":      cfg.PatchW, cfg.PatchH = fPatch, fPatch
		case "topratio":   cfg.TopRatio = fTopRatio
		case "omega":      cfg.Omega = fOmega
		case "lam":        cfg.Lambda = fLambda
		case "mattingeps": cfg.MattingEps = fMattingEps
		case "winsize":    cfg.WinSize = fWinSize
		case "ks":         cfg.KernelW, cfg.KernelH = fKernel, fKernel
		case "eps":        cfg.GuidedEps = fGuidedEps
		case "s":          cfg.Subsample = fSubsample
		case "t0":         cfg.T0 = fT0
		case "clip":       cfg.Clip = fClip
		case "beta":       cfg.Beta = fBeta
		}
	})

	if cfg.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", cfg.AsYaml())
	}

	files, err := gatherFiles(flag.Args()...)
	if err != nil {
		log.Fatal(err)
	}
	if len(files) == 0 {
		log.Fatal("no input images given")
	}

	for _, filename := range files {
		if err := dehazeFile(filename, cfg); err != nil {
			log.Fatal(err)
		}
	}
}

func dehazeFile(filename string, cfg dcp.Config) error {
	img, err := dcp.LoadImage(filename, fMaxDim)
	if err != nil {
		return err
	}

	out, err := dcp.Dehaze(&img, cfg)
	if err != nil {
		return fmt.Errorf("dehaze %s: %v", filename, err)
	}

	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	if err := dcp.WritePNG(dcp.CubeToImage(&out.Recovered), stem+"-recovered.png"); err != nil {
		return err
	}
	if err := dcp.DepthToImg(&out.Depth, stem+"-depth.png"); err != nil {
		return err
	}

	if cfg.Verbosity > 0 {
		dcp.GridToImg(&out.DarkChannel, "dark channel", stem+"-dark.png")
		dcp.GridToImg(&out.RawTransmission, "raw transmission", stem+"-rawt.png")
		dcp.GridToImg(&out.Transmission, "refined transmission", stem+"-t.png")
		log.Printf("%s: dark channel %s, transmission %s", filename, out.DarkChannel.Stats(), out.Transmission.Stats())
	}

	log.Printf("%s done", filename)
	return nil
}

// gatherFiles expands file and directory arguments into a flat list
// of image files, recursing into directories.
func gatherFiles(args ...string) ([]string, error) {
	files := []string{}

	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return nil, fmt.Errorf("stat %s: %v", arg, err)

		case item.IsDir():
			contents, err := os.ReadDir(arg)
			if err != nil {
				return nil, fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				sub, err := gatherFiles(filepath.Join(arg, content.Name()))
				if err != nil {
					return nil, err
				}
				files = append(files, sub...)
			}

		default:
			switch strings.ToLower(filepath.Ext(arg)) {
			case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
				files = append(files, arg)
			}
		}
	}

	return files, nil
}
