package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestTrim(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short text untouched", in: "邻里纠纷", limit: 10, want: "邻里纠纷"},
		{name: "cut on runes", in: "小区垃圾分类执行不到位", limit: 4, want: "小区垃圾..."},
		{name: "no limit", in: "  padded  ", limit: 0, want: "padded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Trim(tt.in, tt.limit); got != tt.want {
				t.Errorf("Trim(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

func TestWithComponentUsesOverride(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	WithComponent("case_ranker").Info("hello")

	if !strings.Contains(buf.String(), `"component":"case_ranker"`) {
		t.Fatalf("component field missing: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("DEBUG") != slog.LevelDebug {
		t.Errorf("expected debug level")
	}
	if parseLevel("bogus") != slog.LevelInfo {
		t.Errorf("expected info fallback")
	}
}
