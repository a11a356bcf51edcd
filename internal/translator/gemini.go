package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valpere/triglot/internal/postprocess"
)

const (
	DefaultGeminiModel   = "gemini-2.5-flash"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiTimeout = 30 * time.Second
)

// GeminiConfig configures the Generative Language API client.
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Gemini translates through the Generative Language API generateContent
// endpoint. A combined request asks for both target translations in one
// call, one per line in fixed numbered order.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGemini(cfg GeminiConfig) *Gemini {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGeminiTimeout
	}
	return &Gemini{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *Gemini) Name() string {
	return "gemini"
}

func (s *Gemini) Translate(ctx context.Context, req Request) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if len(req.Targets) == 0 {
		return result, fmt.Errorf("no target languages requested")
	}

	text, err := s.generate(ctx, buildPrompt(req))
	if err != nil {
		return result, err
	}

	if len(req.Targets) == 1 {
		line := postprocess.Clean(text)
		if line == "" {
			return result, fmt.Errorf("empty translation in response")
		}
		result.Lines = []string{line}
		return result, nil
	}

	lines := postprocess.Lines(text)
	if len(lines) < len(req.Targets) {
		return result, fmt.Errorf("insufficient translations in combined response: got %d, want %d", len(lines), len(req.Targets))
	}
	result.Lines = lines[:len(req.Targets)]
	return result, nil
}

// buildPrompt renders the combined or single-target prompt. The combined
// prompt pins the response to one translation per line in target order so
// the parse can map lines to languages positionally.
func buildPrompt(req Request) string {
	src := req.Source.DisplayName()

	if len(req.Targets) == 1 {
		tgt := req.Targets[0].DisplayName()
		return fmt.Sprintf(`You are a professional translator. Translate this text from %s into %s.

IMPORTANT: You must translate the text into %s. Do not keep it in %s.

Source language: %s
Target language: %s
Text to translate: "%s"

Translation in %s:`, src, tgt, tgt, src, src, tgt, req.Text, tgt)
	}

	first := req.Targets[0].DisplayName()
	second := req.Targets[1].DisplayName()
	return fmt.Sprintf(`You are a professional translator. Translate the following text from %s into %s and %s.

IMPORTANT: Provide ONLY the translations, one per line, in this exact order:
1. %s translation
2. %s translation

Do not include any explanations, labels, or additional text.

Text to translate: "%s"

Translations:`, src, first, second, first, second, req.Text)
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate calls generateContent and returns the first candidate's text.
func (s *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", s.baseURL, s.model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, snippet)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini API")
	}
	text := decoded.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini API")
	}
	return text, nil
}
