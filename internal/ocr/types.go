// Package ocr turns an uploaded document image into plain text.
//
// Recognition itself is delegated to an Engine (Tesseract in production, see
// the tesseract subpackage). This package owns the preprocessing in front of
// the engine and the fail-soft contract: extraction never returns an error,
// an unreadable image simply yields empty text.
package ocr

import "context"

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
)

// DefaultLanguages are the trained models used for Brazilian documents.
var DefaultLanguages = []string{"por", "eng"}

// Input is a single preprocessed image submitted to an engine.
type Input struct {
	// Image is the encoded payload in Format.
	Image  []byte
	Format ImageFormat
	// Languages lists the trained-data names to load, e.g. "por", "eng".
	Languages []string
	// DPI hints the effective resolution; zero means unknown.
	DPI int
	// Metadata passes engine-specific variables through untouched.
	Metadata map[string]string
}

// Result is the engine output for one input.
type Result struct {
	PlainText string
	// Confidence is the mean word confidence in [0,1], zero when unknown.
	Confidence float64
}

// Engine recognizes text in a single image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}
