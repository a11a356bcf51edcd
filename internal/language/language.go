// Package language defines the closed three-language set the whole
// application operates on. The set is fixed at compile time; every
// translation maps one source language onto the other two.
package language

import (
	"encoding/json"
	"fmt"
)

// Language identifies one of the three supported languages.
type Language int

const (
	French Language = iota
	English
	Polish
)

// Count is the number of supported languages.
const Count = 3

var names = [Count]string{"french", "english", "polish"}

var displayNames = [Count]string{"French", "English", "Polish"}

// All returns the three languages in declaration order. This order is the
// stable enumeration order used for target mapping and prompt building.
func All() [Count]Language {
	return [Count]Language{French, English, Polish}
}

// Parse converts a lowercase language name ("french", "english", "polish")
// into a Language. Unrecognized names are rejected; the language set is
// closed and must never silently accept an unknown key.
func Parse(s string) (Language, error) {
	for i, n := range names {
		if s == n {
			return Language(i), nil
		}
	}
	return 0, fmt.Errorf("unknown language %q", s)
}

// Valid reports whether l is one of the three supported languages.
func (l Language) Valid() bool {
	return l >= 0 && l < Count
}

// String returns the lowercase wire name of the language.
func (l Language) String() string {
	if !l.Valid() {
		return fmt.Sprintf("language(%d)", int(l))
	}
	return names[l]
}

// DisplayName returns the capitalized English name used in prompts sent to
// the translation service.
func (l Language) DisplayName() string {
	if !l.Valid() {
		return l.String()
	}
	return displayNames[l]
}

// Targets returns the other two languages in declaration order. The order is
// deterministic and identical between combined-call parsing and fallback
// dispatch, so retried units always map results to the same language.
func (l Language) Targets() [2]Language {
	var out [2]Language
	i := 0
	for _, other := range All() {
		if other != l {
			out[i] = other
			i++
		}
	}
	return out
}

// MarshalJSON encodes the language as its lowercase name.
func (l Language) MarshalJSON() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid language %d", int(l))
	}
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a lowercase language name.
func (l *Language) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Texts holds one string per language. It is a fixed-size record rather than
// a map so a text slot always exists (possibly empty) and no unrecognized
// key can slip in.
type Texts [Count]string

// Get returns the text for lang, or "" for an invalid language.
func (t Texts) Get(lang Language) string {
	if !lang.Valid() {
		return ""
	}
	return t[lang]
}

// Set stores text in the slot for lang. Invalid languages are ignored.
func (t *Texts) Set(lang Language, text string) {
	if lang.Valid() {
		t[lang] = text
	}
}

// MarshalJSON encodes the record as an object keyed by language name, e.g.
// {"french":"...","english":"...","polish":"..."}. Every key is always
// present.
func (t Texts) MarshalJSON() ([]byte, error) {
	obj := make(map[string]string, Count)
	for _, lang := range All() {
		obj[lang.String()] = t[lang]
	}
	return json.Marshal(obj)
}

// UnmarshalJSON decodes an object keyed by language name. Unknown keys are
// rejected; missing keys leave the slot empty.
func (t *Texts) UnmarshalJSON(data []byte) error {
	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	var out Texts
	for k, v := range obj {
		lang, err := Parse(k)
		if err != nil {
			return err
		}
		out[lang] = v
	}
	*t = out
	return nil
}
