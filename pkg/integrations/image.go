package integrations

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ImageSettings controls how page images are rewritten for an export.
// A zero MaxWidth or MaxHeight leaves that dimension unbounded.
type ImageSettings struct {
	MaxWidth  int
	MaxHeight int
	Quality   int     // JPEG quality (1-100)
	Grayscale bool    // Convert to grayscale
	Contrast  float64 // 1.0 = no change
	Gamma     float64 // 1.0 = no change
}

// DefaultImageSettings re-encodes without resizing or recolouring.
func DefaultImageSettings() ImageSettings {
	return ImageSettings{Quality: 90, Contrast: 1.0, Gamma: 1.0}
}

// ImageProcessor decodes a page (JPEG, PNG, GIF or WebP), fits it inside the
// configured bounds and re-encodes it as JPEG.
type ImageProcessor struct {
	settings ImageSettings
}

func NewImageProcessor(settings ImageSettings) *ImageProcessor {
	if settings.Quality <= 0 || settings.Quality > 100 {
		settings.Quality = 90
	}
	if settings.Contrast <= 0 {
		settings.Contrast = 1.0
	}
	if settings.Gamma <= 0 {
		settings.Gamma = 1.0
	}
	return &ImageProcessor{settings: settings}
}

func (p *ImageProcessor) Settings() ImageSettings {
	return p.settings
}

// Process implements Processor.
func (p *ImageProcessor) Process(in ImageData) (ImageData, error) {
	img, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return ImageData{}, fmt.Errorf("failed to decode page %d: %w", in.Index, err)
	}

	bounds := img.Bounds()
	w, h := p.fit(bounds.Dx(), bounds.Dy())
	if w != bounds.Dx() || h != bounds.Dy() {
		img = resize(img, w, h)
	}
	if p.settings.Grayscale {
		img = toGrayscale(img)
	}
	if p.settings.Contrast != 1.0 || p.settings.Gamma != 1.0 {
		img = applyCurve(img, p.curve())
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.settings.Quality}); err != nil {
		return ImageData{}, fmt.Errorf("failed to encode page %d: %w", in.Index, err)
	}
	return ImageData{Content: buf.Bytes(), ContentType: "image/jpeg", Index: in.Index}, nil
}

// fit scales width and height down to the bounds, keeping the aspect ratio.
func (p *ImageProcessor) fit(width, height int) (int, int) {
	scale := 1.0
	if p.settings.MaxWidth > 0 && width > p.settings.MaxWidth {
		scale = float64(p.settings.MaxWidth) / float64(width)
	}
	if p.settings.MaxHeight > 0 && height > p.settings.MaxHeight {
		if s := float64(p.settings.MaxHeight) / float64(height); s < scale {
			scale = s
		}
	}
	if scale == 1.0 {
		return width, height
	}
	return max(1, int(float64(width)*scale)), max(1, int(float64(height)*scale))
}

// curve is a 256-entry lookup table combining contrast and gamma.
func (p *ImageProcessor) curve() [256]uint8 {
	var table [256]uint8
	for i := range table {
		v := (float64(i)-128)*p.settings.Contrast + 128
		v = math.Max(0, math.Min(255, v))
		v = 255 * math.Pow(v/255, 1/p.settings.Gamma)
		table[i] = uint8(math.Round(math.Max(0, math.Min(255, v))))
	}
	return table
}

func resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

func toGrayscale(img image.Image) image.Image {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

func applyCurve(img image.Image, table [256]uint8) image.Image {
	bounds := img.Bounds()
	if g, ok := img.(*image.Gray); ok && g.Stride == bounds.Dx() {
		out := image.NewGray(bounds)
		for i, v := range g.Pix[:len(out.Pix)] {
			out.Pix[i] = table[v]
		}
		return out
	}

	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			out.SetRGBA(x, y, color.RGBA{
				R: table[uint8(r>>8)],
				G: table[uint8(g>>8)],
				B: table[uint8(b>>8)],
				A: uint8(a >> 8),
			})
		}
	}
	return out
}
