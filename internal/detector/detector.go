// Package detector identifies which of the three session languages a text
// is written in.
package detector

import (
	lingua "github.com/pemistahl/lingua-go"

	"github.com/valpere/triglot/internal/language"
)

// Detector classifies text as French, English, or Polish. Building the
// underlying models is expensive; reuse the instance.
type Detector struct {
	detector lingua.LanguageDetector
}

// New creates a Detector restricted to the three session languages.
func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.French, lingua.English, lingua.Polish).
		Build()

	return &Detector{detector: detector}
}

// Detect returns the detected session language. The second return value is
// false when the text is empty or the detector cannot decide.
func (d *Detector) Detect(text string) (language.Language, bool) {
	if text == "" {
		return 0, false
	}
	detected, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return 0, false
	}
	switch detected {
	case lingua.French:
		return language.French, true
	case lingua.English:
		return language.English, true
	case lingua.Polish:
		return language.Polish, true
	}
	return 0, false
}
