package translator

import (
	"context"
	"fmt"
	"time"

	translate "cloud.google.com/go/translate"
	xlanguage "golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/valpere/triglot/internal/language"
)

// languageTags maps the application's closed language set onto BCP 47 tags.
var languageTags = [language.Count]xlanguage.Tag{
	language.French:  xlanguage.French,
	language.English: xlanguage.English,
	language.Polish:  xlanguage.Polish,
}

// GoogleService translates through the Google Cloud Translation API. It has
// no combined-call form, so a two-target request is served with one API call
// per target; lines still come back in request target order.
type GoogleService struct {
	credentials string
}

func NewGoogleService(credentials string) *GoogleService {
	return &GoogleService{credentials: credentials}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, req Request) (*Result, error) {
	result := &Result{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if len(req.Targets) == 0 {
		return result, fmt.Errorf("no target languages requested")
	}

	opts := []option.ClientOption{}
	if s.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(s.credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return result, fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	sourceTag := languageTags[req.Source]

	lines := make([]string, 0, len(req.Targets))
	for _, target := range req.Targets {
		translations, err := client.Translate(ctx, []string{req.Text}, languageTags[target], &translate.Options{
			Source: sourceTag,
		})
		if err != nil {
			return result, fmt.Errorf("translation to %s failed: %w", target, err)
		}
		if len(translations) == 0 {
			return result, fmt.Errorf("no translation returned for %s", target)
		}
		lines = append(lines, translations[0].Text)
	}

	result.Lines = lines
	return result, nil
}
