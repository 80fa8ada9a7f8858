package tokenizer

import "testing"

func TestSimpleTokenizerCounts(t *testing.T) {
	tok := NewSimpleTokenizer()
	tests := []struct {
		text string
		want int
	}{
		{text: "邻里纠纷", want: 4},
		{text: "neighbor noise dispute", want: 3},
		{text: "第3步：沟通", want: 6},
		{text: "", want: 0},
	}
	for _, tt := range tests {
		if got := tok.CountTokens(tt.text); got != tt.want {
			t.Errorf("CountTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestSimpleTokenizerRoundTrip(t *testing.T) {
	tok := NewSimpleTokenizer()
	ids := tok.Encode("垃圾分类 policy")
	if len(ids) != 5 {
		t.Fatalf("expected 5 ids, got %d", len(ids))
	}
	if got := tok.DecodeIds(ids); got != "垃圾分类policy" {
		t.Errorf("DecodeIds() = %q", got)
	}
	again := tok.Encode("垃圾")
	if again[0] != ids[0] || again[1] != ids[1] {
		t.Errorf("vocabulary ids should be stable")
	}
}

func TestFitLines(t *testing.T) {
	tok := NewSimpleTokenizer()
	text := "案例一\n案例二\n案例三"

	got, cut := FitLines(tok, text, 6)
	if !cut || got != "案例一\n案例二" {
		t.Errorf("FitLines() = (%q, %v)", got, cut)
	}

	got, cut = FitLines(tok, text, 100)
	if cut || got != text {
		t.Errorf("expected untouched text, got (%q, %v)", got, cut)
	}
}
