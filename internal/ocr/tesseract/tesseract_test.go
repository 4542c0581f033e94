package tesseract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os/exec"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/albapepper/scoracle-fans/internal/ocr"
)

// ensureTesseractAvailable checks that the tesseract binary is reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func renderText(t *testing.T, text string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 240, 60))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 35),
	}
	d.DrawString(text)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	img, err := ocr.Preprocess(renderText(t, "JANE DOE"))
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	res, err := New().Recognize(context.Background(), ocr.Input{
		Image:     img,
		Format:    ocr.ImageFormatPNG,
		Languages: []string{"eng"},
	})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if got := strings.ToLower(res.PlainText); !strings.Contains(got, "jane") {
		t.Fatalf("unexpected OCR output: %q", res.PlainText)
	}
}

func TestEngineRecognizeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Recognize(ctx, ocr.Input{}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
