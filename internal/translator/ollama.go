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
	DefaultOllamaModel   = "llama3.2"
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaTimeout = 120 * time.Second
)

// OllamaConfig configures the local Ollama backend.
type OllamaConfig struct {
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Ollama translates through a local Ollama server. Like Gemini it supports
// the combined prompt, asking for both target translations in one generation.
type Ollama struct {
	model   string
	baseURL string
	client  *http.Client
}

func NewOllama(cfg OllamaConfig) *Ollama {
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOllamaBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultOllamaTimeout
	}
	return &Ollama{
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *Ollama) Name() string {
	return "ollama"
}

func (s *Ollama) Translate(ctx context.Context, req Request) (*Result, error) {
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

// generate calls /api/generate without streaming and returns the raw
// model output.
func (s *Ollama) generate(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model":  s.model,
		"prompt": prompt,
		"stream": false,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", s.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, snippet)
	}

	var decoded struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if decoded.Response == "" {
		return "", fmt.Errorf("empty response from Ollama")
	}
	return decoded.Response, nil
}

// IsAvailable checks that the Ollama server answers on /api/tags.
func (s *Ollama) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/api/tags", s.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama not available: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}
	return nil
}
