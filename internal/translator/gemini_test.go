package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/valpere/triglot/internal/language"
)

func geminiServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Gemini) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewGemini(GeminiConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	svc.client = server.Client()
	return server, svc
}

func geminiReply(text string) []byte {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
	data, _ := json.Marshal(resp)
	return data
}

func TestGemini_Translate_Combined(t *testing.T) {
	var gotPrompt string
	_, svc := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		gotPrompt = req.Contents[0].Parts[0].Text
		w.Write(geminiReply("1. Bonjour le monde.\n2. Witaj świecie.\n"))
	})

	result, err := svc.Translate(context.Background(), Request{
		Text:    "Hello world.",
		Source:  language.English,
		Targets: []language.Language{language.French, language.Polish},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(result.Lines))
	}
	if result.Lines[0] != "Bonjour le monde." {
		t.Errorf("line 0: got %q", result.Lines[0])
	}
	if result.Lines[1] != "Witaj świecie." {
		t.Errorf("line 1: got %q", result.Lines[1])
	}
	if !strings.Contains(gotPrompt, "from English into French and Polish") {
		t.Errorf("prompt does not fix target order: %q", gotPrompt)
	}
}

func TestGemini_Translate_SingleTarget(t *testing.T) {
	_, svc := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(geminiReply(`"Bonjour."`))
	})

	result, err := svc.Translate(context.Background(), Request{
		Text:    "Hello.",
		Source:  language.English,
		Targets: []language.Language{language.French},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Lines) != 1 || result.Lines[0] != "Bonjour." {
		t.Errorf("got %v", result.Lines)
	}
}

func TestGemini_Translate_InsufficientLines(t *testing.T) {
	_, svc := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(geminiReply("1. Bonjour.\n"))
	})

	_, err := svc.Translate(context.Background(), Request{
		Text:    "Hello.",
		Source:  language.English,
		Targets: []language.Language{language.French, language.Polish},
	})
	if err == nil {
		t.Fatal("expected error for combined response with one line")
	}
	if !strings.Contains(err.Error(), "insufficient translations") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGemini_Translate_APIError(t *testing.T) {
	_, svc := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("overloaded"))
	})

	_, err := svc.Translate(context.Background(), Request{
		Text:    "Hello.",
		Source:  language.English,
		Targets: []language.Language{language.French, language.Polish},
	})
	if err == nil {
		t.Fatal("expected error for non-OK status")
	}
}

func TestGemini_Translate_EmptyBody(t *testing.T) {
	_, svc := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := svc.Translate(context.Background(), Request{
		Text:    "Hello.",
		Source:  language.English,
		Targets: []language.Language{language.French, language.Polish},
	})
	if err == nil {
		t.Fatal("expected error for empty candidate list")
	}
}

func TestGemini_Name(t *testing.T) {
	svc := NewGemini(GeminiConfig{})
	if svc.Name() != "gemini" {
		t.Errorf("expected 'gemini', got %q", svc.Name())
	}
}
