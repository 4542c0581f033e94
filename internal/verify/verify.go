// Package verify cross-checks text read from an identity document against
// the identity the fan declared.
package verify

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/albapepper/scoracle-fans/internal/profile"
)

// Verdict messages.
const (
	MsgNoText           = "Could not extract text from the document. Please upload a clearer image."
	MsgInsufficientInfo = "Insufficient personal information to validate document."
	MsgNameMismatch     = "Name in the document doesn't match your profile."
	MsgCPFNotFound      = "Document partially validated. Name matches but could not verify CPF."
	MsgNameAndCPFMatch  = "Document validated successfully. Name and CPF match your profile."
	MsgCPFMismatch      = "Name found but CPF in the document doesn't match your profile."
	MsgNameOnly         = "Document partially validated based on name match."
)

// minNameLength is the shortest declared name (in runes) worth searching for.
const minNameLength = 4

// cpfPattern matches a CPF as printed on documents: 3-3-3-2 digit groups with
// optional dots between the triplets and an optional dash before the check digits.
var cpfPattern = regexp.MustCompile(`\d{3}\.?\d{3}\.?\d{3}-?\d{2}`)

var nonDigit = regexp.MustCompile(`\D`)

// Verdict is the outcome of matching a document against a profile.
type Verdict struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}

// Validate checks that the declared name appears in text and, when a CPF was
// declared, that one of the CPF-shaped numbers in text equals it. The name is
// always checked first; a name mismatch is final.
func Validate(text string, personal profile.Personal) Verdict {
	if text == "" {
		return Verdict{IsValid: false, Message: MsgNoText}
	}

	name := strings.ToLower(strings.TrimSpace(profile.Value(personal.Name, "")))
	if utf8.RuneCountInString(name) < minNameLength {
		return Verdict{IsValid: false, Message: MsgInsufficientInfo}
	}
	if !strings.Contains(strings.ToLower(text), name) {
		return Verdict{IsValid: false, Message: MsgNameMismatch}
	}

	cpf := strings.TrimSpace(profile.Value(personal.CPF, ""))
	if cpf == "" {
		return Verdict{IsValid: true, Message: MsgNameOnly}
	}

	found := FindCPFs(text)
	if len(found) == 0 {
		return Verdict{IsValid: true, Message: MsgCPFNotFound}
	}
	want := DigitsOnly(cpf)
	for _, c := range found {
		if c == want {
			return Verdict{IsValid: true, Message: MsgNameAndCPFMatch}
		}
	}
	return Verdict{IsValid: false, Message: MsgCPFMismatch}
}

// FindCPFs returns every CPF-shaped number in text, reduced to its digits,
// in order of appearance.
func FindCPFs(text string) []string {
	matches := cpfPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, DigitsOnly(m))
	}
	return out
}

// DigitsOnly strips every non-digit character from s.
func DigitsOnly(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}
