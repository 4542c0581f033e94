package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register jpeg
	"image/png"

	"golang.org/x/image/draw"
)

// minWidth is the width small photos are upscaled to before binarizing;
// Tesseract loses accuracy on glyphs only a few pixels tall.
const minWidth = 1000

const (
	// maxPixels bounds the decoded image; a few hundred compressed bytes can
	// declare a huge canvas.
	maxPixels = 40_000_000
	// maxUpscale bounds the enlargement factor so narrow strips stay small.
	maxUpscale = 4
	// maxUpscaledPixels bounds the output of Upscale.
	maxUpscaledPixels = 16_000_000
)

// ErrImageTooLarge is returned by Decode for images above maxPixels.
var ErrImageTooLarge = errors.New("image too large")

// Decode reads a JPEG or PNG image. The header is checked first so oversized
// canvases are rejected before any pixel buffer is allocated.
func Decode(data []byte) (image.Image, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Grayscale converts img to a single-channel luma image whose bounds start at
// the origin.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// Upscale enlarges g towards width pixels wide, keeping the aspect ratio. The
// factor never exceeds maxUpscale, and images already wide enough or whose
// enlargement would exceed maxUpscaledPixels are returned unchanged.
func Upscale(g *image.Gray, width int) *image.Gray {
	b := g.Bounds()
	if b.Dx() == 0 || b.Dx() >= width {
		return g
	}
	w := min(width, b.Dx()*maxUpscale)
	h := b.Dy() * w / b.Dx()
	if int64(w)*int64(h) > maxUpscaledPixels {
		return g
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), g, b, draw.Src, nil)
	return dst
}

// OtsuThreshold returns the global threshold that maximizes the
// between-class variance of g's intensity histogram, which is equivalent to
// minimizing the intra-class variance.
func OtsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, y):g.PixOffset(b.Max.X, y)]
		for _, v := range row {
			hist[v]++
		}
	}

	total := b.Dx() * b.Dy()
	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var (
		sumB      float64
		wB        int
		best      float64
		threshold int
	)
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = t
		}
	}
	return uint8(threshold)
}

// Binarize maps every pixel above t to white and the rest to black.
func Binarize(g *image.Gray, t uint8) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		src := g.Pix[g.PixOffset(b.Min.X, y):g.PixOffset(b.Max.X, y)]
		dst := out.Pix[out.PixOffset(b.Min.X, y):out.PixOffset(b.Max.X, y)]
		for i, v := range src {
			if v > t {
				dst[i] = 0xff
			}
		}
	}
	return out
}

// Preprocess decodes data and returns a PNG of the binarized document,
// ready for recognition.
func Preprocess(data []byte) ([]byte, error) {
	img, _, err := Decode(data)
	if err != nil {
		return nil, err
	}
	gray := Upscale(Grayscale(img), minWidth)
	bin := Binarize(gray, OtsuThreshold(gray))

	var buf bytes.Buffer
	if err := png.Encode(&buf, bin); err != nil {
		return nil, fmt.Errorf("encode binarized image: %w", err)
	}
	return buf.Bytes(), nil
}
