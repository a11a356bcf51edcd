package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultMyMemoryBaseURL = "https://api.mymemory.translated.net"

// MyMemoryService translates through the keyless MyMemory API. The API only
// handles one language pair per call, so a two-target request costs one call
// per target, like the Google backend.
type MyMemoryService struct {
	email   string
	baseURL string
	client  *http.Client
}

// NewMyMemoryService creates the backend. The optional email raises the
// anonymous daily quota.
func NewMyMemoryService(email string) *MyMemoryService {
	return &MyMemoryService{
		email:   email,
		baseURL: defaultMyMemoryBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *MyMemoryService) Name() string {
	return "mymemory"
}

func (s *MyMemoryService) Translate(ctx context.Context, req Request) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if len(req.Targets) == 0 {
		return result, fmt.Errorf("no target languages requested")
	}

	lines := make([]string, 0, len(req.Targets))
	for _, target := range req.Targets {
		translated, err := s.translatePair(ctx, req.Text, languageTags[req.Source].String(), languageTags[target].String())
		if err != nil {
			return result, fmt.Errorf("translation to %s failed: %w", target, err)
		}
		lines = append(lines, translated)
	}

	result.Lines = lines
	return result, nil
}

func (s *MyMemoryService) translatePair(ctx context.Context, text, sourceCode, targetCode string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", fmt.Sprintf("%s|%s", sourceCode, targetCode))
	if s.email != "" {
		q.Set("de", s.email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/get?%s", s.baseURL, q.Encode()), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
		ResponseStatus  int    `json:"responseStatus"`
		ResponseDetails string `json:"responseDetails"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if decoded.ResponseStatus != 200 {
		return "", fmt.Errorf("API error: %s (%d)", decoded.ResponseDetails, decoded.ResponseStatus)
	}
	if decoded.ResponseData.TranslatedText == "" {
		return "", fmt.Errorf("empty translation in response")
	}
	return decoded.ResponseData.TranslatedText, nil
}
