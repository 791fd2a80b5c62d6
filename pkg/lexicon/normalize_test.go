package lexicon

import "testing"

func TestNormalizePlain(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"  NUNG  ", "nung"},
		{"侬", "侬"},
		{"Ā-La", "ā-la"},
		{"", ""},
		{"\t\n", ""},
	}
	for _, tt := range tests {
		got := NormalizePlain(tt.input)
		if got != tt.want {
			t.Errorf("NormalizePlain(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeRomanization(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"nung2", "nung2"},
		{"Nùng²", "nung2"},
		{"nung-2", "nung2"},
		{"a la", "ala"},
		{"a_la'", "ala"},
		{"ŋuŋ’⁵³", "ŋuŋ53"},
		{"  Ńg ", "ng"},
		{"mā¹ ma³", "ma1ma3"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		got := NormalizeRomanization(tt.input)
		if got != tt.want {
			t.Errorf("NormalizeRomanization(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeRomanization_Idempotent(t *testing.T) {
	inputs := []string{
		"Nùng²", "a-la la", "ŋuŋ’⁵³", "İstanbul", "侬", "ǹg", "café au lait", "",
	}
	for _, in := range inputs {
		once := NormalizeRomanization(in)
		twice := NormalizeRomanization(once)
		if once != twice {
			t.Errorf("NormalizeRomanization not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeIPA(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"[ˈnuŋ˧˧]", "nuŋ˧˧"},
		{"/aː la/", "ala"},
		{"(ˌnɔŋ)", "nɔŋ"},
		{"NUŊ", "nuŋ"},
		{"", ""},
	}
	for _, tt := range tests {
		got := NormalizeIPA(tt.input)
		if got != tt.want {
			t.Errorf("NormalizeIPA(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
