package dcp

import(
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"dehaze/pkg/gmath"
)

// LoadImage decodes a PNG/JPEG/TIFF file into a [0,1] float cube,
// honoring any EXIF orientation tag. If maxDim > 0 and the image is
// larger, it gets scaled down so neither side exceeds maxDim - the
// matting Laplacian has (H*W)^2-shaped cost, so this matters a lot
// for the soft matting path.
func LoadImage(filename string, maxDim int) (gmath.FloatCube, error) {
	f, err := os.Open(filename)
	if err != nil {
		return gmath.FloatCube{}, fmt.Errorf("open %s: %v", filename, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return gmath.FloatCube{}, fmt.Errorf("decode %s: %v", filename, err)
	}

	if orient := readOrientation(filename); orient > 1 {
		img = applyOrientation(img, orient)
	}

	if maxDim > 0 {
		img = shrinkToFit(img, maxDim)
	}

	return CubeFromImage(img), nil
}

// CubeFromImage converts any image.Image into an RGB float cube with
// samples scaled into [0,1].
func CubeFromImage(img image.Image) gmath.FloatCube {
	bounds := img.Bounds()
	fc := gmath.NewFloatCube(bounds.Dx(), bounds.Dy(), 3)

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			fc.Set(x, y, 0, float64(r)/65535.0)
			fc.Set(x, y, 1, float64(g)/65535.0)
			fc.Set(x, y, 2, float64(b)/65535.0)
		}
	}
	return fc
}

// readOrientation returns the EXIF orientation (1-8), or 1 if the
// file has no usable EXIF block (PNGs, most TIFFs).
func readOrientation(filename string) int {
	f, err := os.Open(filename)
	if err != nil {
		return 1
	}
	defer f.Close()

	ex, err := exif.Decode(f)
	if err != nil {
		return 1
	}
	tag, err := ex.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orient, err := tag.Int(0)
	if err != nil || orient < 1 || orient > 8 {
		return 1
	}
	return orient
}

// applyOrientation bakes an EXIF orientation into the pixels, so the
// pipeline always sees the image the way the photographer did.
func applyOrientation(img image.Image, orient int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	dw, dh := w, h
	if orient >= 5 { // the transposing orientations swap the axes
		dw, dh = h, w
	}

	out := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			var sx, sy int
			switch orient {
			case 2: sx, sy = w-1-x, y
			case 3: sx, sy = w-1-x, h-1-y
			case 4: sx, sy = x, h-1-y
			case 5: sx, sy = y, x
			case 6: sx, sy = y, h-1-x
			case 7: sx, sy = w-1-y, h-1-x
			case 8: sx, sy = w-1-y, x
			default:
				sx, sy = x, y
			}
			out.Set(x, y, img.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return out
}

func shrinkToFit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)

	out := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, b, xdraw.Src, nil)
	return out
}
