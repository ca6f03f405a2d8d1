package reading

import (
	"testing"
)

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}
	return a
}

func TestAnalyze(t *testing.T) {
	a := newAnalyzer(t)
	tokens := a.Analyze("猫が走った。")
	if len(tokens) == 0 {
		t.Fatal("No tokens found")
	}

	var found bool
	for _, tok := range tokens {
		if tok.Surface == "走っ" {
			found = true
			if tok.BaseForm != "走る" {
				t.Errorf("expected base form 走る, got %q", tok.BaseForm)
			}
			if tok.Reading != "ハシッ" {
				t.Errorf("expected reading ハシッ, got %q", tok.Reading)
			}
		}
		if len(tok.PartsOfSpeech) > 0 && tok.PrimaryPOS != tok.PartsOfSpeech[0] {
			t.Errorf("PrimaryPOS %q does not match %q", tok.PrimaryPOS, tok.PartsOfSpeech[0])
		}
	}
	if !found {
		t.Error("Expected to find token '走っ'")
	}
}

func TestReading(t *testing.T) {
	a := newAnalyzer(t)
	tests := []struct{ in, want string }{
		{"猫", "ねこ"},
		{"日本語", "にほんご"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := a.Reading(tt.in); got != tt.want {
			t.Errorf("Reading(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsJapanese(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"猫", true},
		{"ねこ", true},
		{"ネコ", true},
		{"run", false},
		{"跑", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsJapanese(tt.in); got != tt.want {
			t.Errorf("IsJapanese(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}
