package ocr

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Observer receives the outcome of each extraction. Metrics implement it.
type Observer interface {
	ObserveOCR(engine string, outcome string, elapsed time.Duration)
}

// Extraction outcomes reported to the Observer.
const (
	OutcomeText        = "text"
	OutcomeEmpty       = "empty"
	OutcomeDecodeError = "decode_error"
	OutcomeEngineError = "engine_error"
)

// Extractor runs the preprocessing pipeline and an Engine, swallowing every
// failure into an empty result.
type Extractor struct {
	engine    Engine
	languages []string
	breaker   *gobreaker.CircuitBreaker
	observer  Observer
	logger    *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLanguages overrides DefaultLanguages.
func WithLanguages(langs ...string) Option {
	return func(e *Extractor) {
		if len(langs) > 0 {
			e.languages = append([]string(nil), langs...)
		}
	}
}

// WithBreaker trips after consecutive engine failures so a broken Tesseract
// install fails fast instead of on every upload.
func WithBreaker(name string) Option {
	return func(e *Extractor) {
		e.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     name,
			Interval: 60 * time.Second,
			Timeout:  30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		})
	}
}

// WithObserver reports every extraction outcome to o.
func WithObserver(o Observer) Option {
	return func(e *Extractor) { e.observer = o }
}

// NewExtractor creates an Extractor around engine.
func NewExtractor(engine Engine, logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		engine:    engine,
		languages: DefaultLanguages,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Languages returns the configured recognition languages.
func (e *Extractor) Languages() []string {
	return append([]string(nil), e.languages...)
}

// Extract returns the text recognized in data, or "" when the image cannot be
// decoded or the engine fails.
func (e *Extractor) Extract(ctx context.Context, data []byte) string {
	start := time.Now()

	img, err := Preprocess(data)
	if err != nil {
		e.logger.Warn("OCR preprocessing failed", "error", err, "bytes", len(data))
		e.observe(OutcomeDecodeError, start)
		return ""
	}

	res, err := e.recognize(ctx, Input{
		Image:     img,
		Format:    ImageFormatPNG,
		Languages: e.languages,
	})
	if err != nil {
		e.logger.Warn("OCR engine failed", "engine", e.engine.Name(), "error", err)
		e.observe(OutcomeEngineError, start)
		return ""
	}

	text := strings.TrimSpace(res.PlainText)
	outcome := OutcomeText
	if text == "" {
		outcome = OutcomeEmpty
	}
	e.logger.Debug("OCR finished",
		"engine", e.engine.Name(),
		"chars", len(text),
		"confidence", res.Confidence,
		"duration", time.Since(start).Round(time.Millisecond))
	e.observe(outcome, start)
	return text
}

func (e *Extractor) recognize(ctx context.Context, in Input) (Result, error) {
	if e.breaker == nil {
		return e.safeRecognize(ctx, in)
	}
	out, err := e.breaker.Execute(func() (interface{}, error) {
		return e.safeRecognize(ctx, in)
	})
	if err != nil {
		return Result{}, err
	}
	return out.(Result), nil
}

// safeRecognize converts an engine panic into an error; native OCR bindings
// are not trusted to stay inside the error contract.
func (e *Extractor) safeRecognize(ctx context.Context, in Input) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("engine panic")
			e.logger.Error("OCR engine panicked", "engine", e.engine.Name(), "panic", r)
		}
	}()
	return e.engine.Recognize(ctx, in)
}

func (e *Extractor) observe(outcome string, start time.Time) {
	if e.observer != nil {
		e.observer.ObserveOCR(e.engine.Name(), outcome, time.Since(start))
	}
}
