package ocr

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeEngine struct {
	text  string
	err   error
	panic bool
	calls int
	last  Input
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	f.calls++
	f.last = in
	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return Result{}, f.err
	}
	return Result{PlainText: f.text, Confidence: 0.9}, nil
}

type recordingObserver struct {
	outcomes []string
}

func (r *recordingObserver) ObserveOCR(engine, outcome string, elapsed time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

// bimodal returns an image whose left half is dark and right half is light.
func bimodal(w, h int, dark, light uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := dark
			if x >= w/2 {
				v = light
			}
			g.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return g
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// withDeclaredSize rewrites the IHDR dimensions of a PNG, leaving a tiny
// payload that claims a large canvas.
func withDeclaredSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	require.Equal(t, "IHDR", string(data[12:16]))
	out := bytes.Clone(data)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestOtsuThresholdSeparatesBimodalImage(t *testing.T) {
	g := bimodal(40, 10, 30, 210)
	th := OtsuThreshold(g)
	assert.GreaterOrEqual(t, th, uint8(30))
	assert.Less(t, th, uint8(210))

	bin := Binarize(g, th)
	assert.Equal(t, uint8(0), bin.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), bin.GrayAt(39, 9).Y)
}

func TestOtsuThresholdUniformImage(t *testing.T) {
	g := bimodal(8, 8, 128, 128)
	th := OtsuThreshold(g)
	bin := Binarize(g, th)
	first := bin.GrayAt(0, 0).Y
	for x := 0; x < 8; x++ {
		assert.Equal(t, first, bin.GrayAt(x, 7).Y)
	}
}

func TestGrayscaleUsesLuma(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 7, 6))
	img.Set(5, 5, color.RGBA{R: 255, A: 255})
	img.Set(6, 5, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	g := Grayscale(img)
	assert.Equal(t, image.Rect(0, 0, 2, 1), g.Bounds())
	assert.InDelta(t, 76, int(g.GrayAt(0, 0).Y), 1) // 0.299 * 255
	assert.Equal(t, uint8(255), g.GrayAt(1, 0).Y)
}

func TestUpscale(t *testing.T) {
	mid := bimodal(400, 20, 0, 255)
	big := Upscale(mid, 1000)
	assert.Equal(t, 1000, big.Bounds().Dx())
	assert.Equal(t, 50, big.Bounds().Dy())

	// factor capped at maxUpscale
	small := bimodal(100, 20, 0, 255)
	big = Upscale(small, 1000)
	assert.Equal(t, 400, big.Bounds().Dx())
	assert.Equal(t, 80, big.Bounds().Dy())

	wide := bimodal(1200, 10, 0, 255)
	assert.Same(t, wide, Upscale(wide, 1000))
}

func TestUpscaleNarrowStripStaysBounded(t *testing.T) {
	strip := bimodal(1, 400, 0, 255)
	out := Upscale(strip, minWidth)
	assert.Equal(t, maxUpscale, out.Bounds().Dx())
	assert.Equal(t, 400*maxUpscale, out.Bounds().Dy())

	tall := image.NewGray(image.Rect(0, 0, 10, 500_000))
	assert.Same(t, tall, Upscale(tall, minWidth))
}

func TestPreprocessNarrowPNGIsBounded(t *testing.T) {
	out, err := Preprocess(encodePNG(t, bimodal(1, 4000, 0, 255)))
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.LessOrEqual(t, int64(cfg.Width)*int64(cfg.Height), int64(maxUpscaledPixels))
	assert.Equal(t, maxUpscale, cfg.Width)
}

func TestDecodeRejectsOversizedCanvas(t *testing.T) {
	data := withDeclaredSize(t, encodePNG(t, bimodal(1, 1, 0, 0)), 1, maxPixels+1)
	_, _, err := Decode(data)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	eng := &fakeEngine{text: "x"}
	obs := &recordingObserver{}
	x := NewExtractor(eng, discard, WithObserver(obs))
	assert.Equal(t, "", x.Extract(context.Background(), data))
	assert.Equal(t, 0, eng.calls)
	assert.Equal(t, []string{OutcomeDecodeError}, obs.outcomes)
}

func TestPreprocessAcceptsJPEGAndPNG(t *testing.T) {
	img := bimodal(64, 16, 20, 230)

	out, err := Preprocess(encodePNG(t, img))
	require.NoError(t, err)
	decoded, format, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 64*maxUpscale, decoded.Bounds().Dx())

	var jb bytes.Buffer
	require.NoError(t, jpeg.Encode(&jb, img, &jpeg.Options{Quality: 95}))
	_, err = Preprocess(jb.Bytes())
	require.NoError(t, err)
}

func TestExtractReturnsEngineText(t *testing.T) {
	eng := &fakeEngine{text: "  JANE DOE\n123.456.789-01\n"}
	obs := &recordingObserver{}
	x := NewExtractor(eng, discard, WithObserver(obs))

	text := x.Extract(context.Background(), encodePNG(t, bimodal(64, 16, 0, 255)))
	assert.Equal(t, "JANE DOE\n123.456.789-01", text)
	assert.Equal(t, []string{"por", "eng"}, eng.last.Languages)
	assert.Equal(t, ImageFormatPNG, eng.last.Format)
	assert.Equal(t, []string{OutcomeText}, obs.outcomes)
}

func TestExtractFailsSoft(t *testing.T) {
	tests := []struct {
		name    string
		engine  *fakeEngine
		data    []byte
		outcome string
		calls   int
	}{
		{name: "undecodable bytes", engine: &fakeEngine{text: "x"}, data: []byte("not an image"), outcome: OutcomeDecodeError, calls: 0},
		{name: "empty upload", engine: &fakeEngine{text: "x"}, data: nil, outcome: OutcomeDecodeError, calls: 0},
		{name: "engine error", engine: &fakeEngine{err: errors.New("tessdata missing")}, outcome: OutcomeEngineError, calls: 1},
		{name: "engine panic", engine: &fakeEngine{panic: true}, outcome: OutcomeEngineError, calls: 1},
		{name: "blank text", engine: &fakeEngine{text: " \n "}, outcome: OutcomeEmpty, calls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.data
			if data == nil && tt.calls > 0 {
				data = encodePNG(t, bimodal(32, 8, 0, 255))
			}
			obs := &recordingObserver{}
			x := NewExtractor(tt.engine, discard, WithObserver(obs))

			assert.Equal(t, "", x.Extract(context.Background(), data))
			assert.Equal(t, tt.calls, tt.engine.calls)
			assert.Equal(t, []string{tt.outcome}, obs.outcomes)
		})
	}
}

func TestExtractBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	eng := &fakeEngine{err: errors.New("engine down")}
	x := NewExtractor(eng, discard, WithBreaker("ocr-test"))
	img := encodePNG(t, bimodal(32, 8, 0, 255))

	for i := 0; i < 5; i++ {
		assert.Equal(t, "", x.Extract(context.Background(), img))
	}
	assert.Equal(t, 3, eng.calls, "breaker should stop calling the engine once open")
}

func TestWithLanguages(t *testing.T) {
	x := NewExtractor(&fakeEngine{}, discard, WithLanguages("eng"))
	assert.Equal(t, []string{"eng"}, x.Languages())

	x = NewExtractor(&fakeEngine{}, discard, WithLanguages())
	assert.Equal(t, DefaultLanguages, x.Languages())
}
