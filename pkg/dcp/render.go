package dcp

import(
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"dehaze/pkg/gmath"
)

// Rendering of pipeline artifacts to files, for eyeballing and for
// downstream consumers that want plain images.

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}

// CubeToImage converts a [0,1] float cube back into a 16-bit image.
// Values are written as-is (the pipeline never linearized them), just
// clamped so float fuzz doesn't wrap around.
func CubeToImage(fc *gmath.FloatCube) image.Image {
	img := image.NewRGBA64(image.Rect(0, 0, fc.Dx(), fc.Dy()))

	sample := func(x, y, c int) uint16 {
		ch := c
		if fc.Channels() == 1 {
			ch = 0
		}
		v := fc.Get(x, y, ch)
		if v < 0 { v = 0 }
		if v > 1 { v = 1 }
		return uint16(v * 65535.0)
	}

	for y := 0; y < fc.Dy(); y++ {
		for x := 0; x < fc.Dx(); x++ {
			img.SetRGBA64(x, y, color.RGBA64{
				R: sample(x, y, 0),
				G: sample(x, y, 1),
				B: sample(x, y, 2),
				A: 0xFFFF,
			})
		}
	}
	return img
}

// GridToImg saves a grid as a captioned grayscale PNG, normalized
// over the grid's value range and gamma scaled to look normal for
// human vision.
func GridToImg(fg *gmath.FloatGrid, title, filename string) error {
	min, max := fg.MinMax()
	span := max - min
	if span == 0 {
		span = 1
	}

	img := image.NewRGBA64(image.Rect(0, 0, fg.Dx(), fg.Dy()))
	for y := 0; y < fg.Dy(); y++ {
		for x := 0; x < fg.Dx(); x++ {
			gray := gmath.GammaExpand_F64((fg.Get(x, y) - min) / span)
			g16 := uint16(gray * 65535.0)
			img.SetRGBA64(x, y, color.RGBA64{R: g16, G: g16, B: g16, A: 0xFFFF})
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(title, 10, 20)
	return dc.SavePNG(filename)
}

// DepthToImg saves a false-color depth map: a Lab-space ramp from a
// deep blue (near) to a hazy yellow (far), normalized over the map's
// range.
func DepthToImg(d *gmath.FloatGrid, filename string) error {
	near := colorful.Color{R: 0.10, G: 0.12, B: 0.45}
	far := colorful.Color{R: 0.98, G: 0.92, B: 0.55}

	min, max := d.MinMax()
	span := max - min
	if span == 0 {
		span = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, d.Dx(), d.Dy()))
	for y := 0; y < d.Dy(); y++ {
		for x := 0; x < d.Dx(); x++ {
			c := near.BlendLab(far, (d.Get(x, y)-min)/span).Clamped()
			img.Set(x, y, color.RGBA{
				R: uint8(c.R * 255.0),
				G: uint8(c.G * 255.0),
				B: uint8(c.B * 255.0),
				A: 0xFF,
			})
		}
	}

	return WritePNG(img, filename)
}
