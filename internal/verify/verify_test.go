package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/albapepper/scoracle-fans/internal/profile"
)

func personal(name, cpf string) profile.Personal {
	p := profile.Personal{Name: profile.Ptr(name)}
	if cpf != "" {
		p.CPF = profile.Ptr(cpf)
	}
	return p
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		personal profile.Personal
		want     Verdict
	}{
		{
			name:     "empty text",
			text:     "",
			personal: personal("Jane Doe", "123.456.789-01"),
			want:     Verdict{IsValid: false, Message: MsgNoText},
		},
		{
			name:     "empty text without profile",
			text:     "",
			personal: profile.Personal{},
			want:     Verdict{IsValid: false, Message: MsgNoText},
		},
		{
			name:     "name absent",
			text:     "REPUBLICA FEDERATIVA DO BRASIL",
			personal: profile.Personal{},
			want:     Verdict{IsValid: false, Message: MsgInsufficientInfo},
		},
		{
			name:     "name too short",
			text:     "ANA SILVA",
			personal: personal(" Ana ", ""),
			want:     Verdict{IsValid: false, Message: MsgInsufficientInfo},
		},
		{
			name:     "name mismatch is fatal even with matching cpf",
			text:     "NOME JOHN ROE CPF 123.456.789-01",
			personal: personal("Jane Doe", "123.456.789-01"),
			want:     Verdict{IsValid: false, Message: MsgNameMismatch},
		},
		{
			name:     "name and punctuated cpf match",
			text:     "NOME\nJANE DOE\nCPF 123.456.789-01",
			personal: personal("Jane Doe", "12345678901"),
			want:     Verdict{IsValid: true, Message: MsgNameAndCPFMatch},
		},
		{
			name:     "name and bare cpf match",
			text:     "jane doe 12345678901",
			personal: personal("  JANE DOE ", "123.456.789-01"),
			want:     Verdict{IsValid: true, Message: MsgNameAndCPFMatch},
		},
		{
			name:     "cpf among several numbers",
			text:     "JANE DOE 999.999.999-99 registro 123.456.789-01",
			personal: personal("Jane Doe", "123.456.789-01"),
			want:     Verdict{IsValid: true, Message: MsgNameAndCPFMatch},
		},
		{
			name:     "cpf mismatch",
			text:     "... JANE DOE ... CPF 999.999.999-99 ...",
			personal: personal("Jane Doe", "123.456.789-01"),
			want:     Verdict{IsValid: false, Message: MsgCPFMismatch},
		},
		{
			name:     "no cpf in document",
			text:     "JANE DOE nascida em 01/02/1990",
			personal: personal("Jane Doe", "123.456.789-01"),
			want:     Verdict{IsValid: true, Message: MsgCPFNotFound},
		},
		{
			name:     "no cpf declared",
			text:     "JANE DOE 999.999.999-99",
			personal: personal("Jane Doe", ""),
			want:     Verdict{IsValid: true, Message: MsgNameOnly},
		},
		{
			name:     "blank cpf counts as not declared",
			text:     "JANE DOE",
			personal: profile.Personal{Name: profile.Ptr("Jane Doe"), CPF: profile.Ptr("   ")},
			want:     Verdict{IsValid: true, Message: MsgNameOnly},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.text, tt.personal))
		})
	}
}

func TestFindCPFs(t *testing.T) {
	text := "a 123.456.789-01 b 98765432100 c 111.222.33344 d 12.345.678-90"
	assert.Equal(t, []string{"12345678901", "98765432100", "11122233344"}, FindCPFs(text))
	assert.Empty(t, FindCPFs("no numbers here"))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "12345678901", DigitsOnly("123.456.789-01"))
	assert.Equal(t, "", DigitsOnly("abc"))
}

func TestDetectDocumentType(t *testing.T) {
	tests := []struct {
		text string
		want DocumentType
	}{
		{"REPÚBLICA FEDERATIVA DO BRASIL\nCARTEIRA DE IDENTIDADE", DocumentRG},
		{"REGISTRO GERAL 12.345.678-9", DocumentRG},
		{"RG: 12.345.678-9", DocumentRG},
		{"CARTEIRA NACIONAL DE HABILITAÇÃO", DocumentCNH},
		{"CNH categoria B", DocumentCNH},
		{"PASSAPORTE / PASSPORT", DocumentPassport},
		{"CPF 123.456.789-01", DocumentCPF},
		{"JORGE AMADO", DocumentUnknown},
		{"", DocumentUnknown},
	}
	for _, tt := range tests {
		t.Run(string(tt.want)+"/"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDocumentType(tt.text))
		})
	}
}
