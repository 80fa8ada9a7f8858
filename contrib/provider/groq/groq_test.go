package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGenerateSendsPrompt(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"1. 摸底调查"}}]}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig("key")
	cfg.Endpoint = srv.URL
	cfg.System = "你是社区治理专家"

	out, err := New(cfg).Generate(context.Background(), "制定方案")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out != "1. 摸底调查" {
		t.Errorf("Generate() = %q", out)
	}
	want := []chatMessage{{Role: "system", Content: "你是社区治理专家"}, {Role: "user", Content: "制定方案"}}
	if diff := cmp.Diff(want, got.Messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	if got.Model != cfg.Model || got.MaxTokens != cfg.MaxTokens {
		t.Errorf("request = %+v", got)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "status", status: http.StatusTooManyRequests, body: "rate limited", wantErr: "status 429"},
		{name: "api error", status: http.StatusOK, body: `{"error":{"message":"bad model"}}`, wantErr: "bad model"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: "no choices"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			cfg := DefaultConfig("key")
			cfg.Endpoint = srv.URL
			_, err := New(cfg).Generate(context.Background(), "p")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Generate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateRequiresKey(t *testing.T) {
	if _, err := New(nil).Generate(context.Background(), "p"); err == nil {
		t.Error("expected missing key error")
	}
}
