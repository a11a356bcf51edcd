/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/valpere/triglot/internal/store"
	"github.com/valpere/triglot/internal/translator"
)

func init() {
	viper.SetEnvPrefix("TRIGLOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// The translator's key is conventionally set through GEMINI_API_KEY.
	_ = viper.BindEnv("gemini.api_key", "TRIGLOT_GEMINI_API_KEY", "GEMINI_API_KEY")
}

// buildService constructs the remote translation backend selected by
// configuration: "gemini" (default), "google", "ollama", or "mymemory".
func buildService() (translator.Service, error) {
	backend := viper.GetString("backend")
	if backend == "" {
		backend = "gemini"
	}

	switch backend {
	case "gemini":
		return translator.NewGemini(translator.GeminiConfig{
			APIKey:  viper.GetString("gemini.api_key"),
			Model:   viper.GetString("gemini.model"),
			BaseURL: viper.GetString("gemini.base_url"),
			Timeout: viper.GetDuration("gemini.timeout"),
		}), nil
	case "google":
		return translator.NewGoogleService(viper.GetString("google.credentials")), nil
	case "ollama":
		return translator.NewOllama(translator.OllamaConfig{
			Model:   viper.GetString("ollama.model"),
			BaseURL: viper.GetString("ollama.base_url"),
			Timeout: viper.GetDuration("ollama.timeout"),
		}), nil
	case "mymemory":
		return translator.NewMyMemoryService(viper.GetString("mymemory.email")), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want gemini, google, ollama, or mymemory)", backend)
	}
}

// openMemory opens the SQLite translation memory, or returns nil when
// caching is disabled.
func openMemory() (*store.Store, error) {
	if viper.GetBool("no_cache") {
		return nil, nil
	}
	dbPath := viper.GetString("db")
	if dbPath == "" {
		return nil, nil
	}
	return store.New(dbPath)
}

// serviceTimeout is a guard for one-shot CLI translations.
const serviceTimeout = 2 * time.Minute
