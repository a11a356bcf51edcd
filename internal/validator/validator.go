// Package validator checks that a translation result is in the expected target language.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/triglot/internal/detector"
	"github.com/valpere/triglot/internal/language"
)

// minValidationLength is the minimum rune count required to attempt language
// detection. Shorter texts produce unreliable results and are accepted
// without validation.
const minValidationLength = 20

// Validator checks that a translation result is written in the expected
// target language. The underlying language detector is expensive to build;
// reuse the instance.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator backed by the lingua-go language detector.
func New() *Validator {
	return &Validator{det: detector.New()}
}

// Verify returns nil when translatedText appears to be written in target.
//
// Short texts (fewer than minValidationLength runes) and texts whose
// language cannot be determined pass without error. When the detected
// language differs from target the returned error names both languages.
func (v *Validator) Verify(translatedText string, target language.Language) error {
	text := strings.TrimSpace(translatedText)
	if text == "" {
		return fmt.Errorf("translation is empty")
	}

	// Detector is unreliable for very short texts; skip validation.
	if len([]rune(text)) < minValidationLength {
		return nil
	}

	detected, ok := v.det.Detect(text)
	if !ok {
		// Ambiguous language, cannot validate.
		return nil
	}

	if detected != target {
		return fmt.Errorf("expected %s but detected %s", target, detected)
	}
	return nil
}
