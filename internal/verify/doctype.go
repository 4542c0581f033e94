package verify

import (
	"regexp"
	"strings"
)

// DocumentType is a best-effort guess of which Brazilian document was uploaded.
type DocumentType string

const (
	DocumentRG       DocumentType = "National ID Card (RG)"
	DocumentCNH      DocumentType = "Driver's License (CNH)"
	DocumentPassport DocumentType = "Passport"
	DocumentCPF      DocumentType = "CPF Card"
	DocumentUnknown  DocumentType = "Unknown"
)

// Abbreviations are matched as whole words; "rg" alone would hit names such
// as "Jorge".
var (
	rgWord  = regexp.MustCompile(`\brg\b`)
	cnhWord = regexp.MustCompile(`\bcnh\b`)
	cpfWord = regexp.MustCompile(`\bcpf\b`)
)

// DetectDocumentType guesses the document type from keywords in the OCR text.
// Checks run in priority order: RG, CNH, passport, CPF card.
func DetectDocumentType(text string) DocumentType {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "carteira de identidade"),
		strings.Contains(t, "registro geral"),
		rgWord.MatchString(t):
		return DocumentRG
	case strings.Contains(t, "carteira nacional de habilitação"),
		strings.Contains(t, "carteira nacional de habilitacao"),
		cnhWord.MatchString(t):
		return DocumentCNH
	case strings.Contains(t, "passaporte"), strings.Contains(t, "passport"):
		return DocumentPassport
	case cpfWord.MatchString(t):
		return DocumentCPF
	default:
		return DocumentUnknown
	}
}
