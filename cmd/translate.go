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
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/valpere/triglot/internal/detector"
	"github.com/valpere/triglot/internal/language"
	"github.com/valpere/triglot/internal/orchestrator"
)

var (
	translateSource string
	translateInput  string
)

var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate a passage into the other two languages",
	Long: `Translate a passage from one of the three languages into the other two
and print all three versions.

The passage is taken from the argument, from --input, or from stdin. The
other two languages are translated with a single combined model call per
unit, falling back to parallel per-language calls when needed.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: bindTranslateFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readPassage(args)
		if err != nil {
			return err
		}

		source, err := resolveSource(translateSource, text)
		if err != nil {
			return err
		}

		svc, err := buildService()
		if err != nil {
			return err
		}

		memory, err := openMemory()
		if err != nil {
			return fmt.Errorf("failed to open translation memory: %w", err)
		}
		if memory != nil {
			defer memory.Close()
		}

		cfg := orchestrator.Config{
			UnitConcurrency: viper.GetInt("unit_concurrency"),
			Logger:          zap.NewNop(),
		}
		if memory != nil {
			cfg.Memory = memory
		}
		orch := orchestrator.New(svc, cfg)

		ctx, cancel := context.WithTimeout(context.Background(), serviceTimeout)
		defer cancel()

		texts := orch.Translate(ctx, text, source)

		for _, lang := range language.All() {
			fmt.Printf("--- %s ---\n%s\n", lang, texts.Get(lang))
		}
		return nil
	},
}

// resolveSource parses the --source flag, detecting the language from the
// passage itself when the flag is "auto".
func resolveSource(flag, text string) (language.Language, error) {
	if flag != "auto" {
		return language.Parse(flag)
	}
	detected, ok := detector.New().Detect(text)
	if !ok {
		return 0, fmt.Errorf("could not detect the source language; pass --source")
	}
	fmt.Fprintf(os.Stderr, "detected source language: %s\n", detected)
	return detected, nil
}

// readPassage takes the text from the positional argument, the --input
// file, or stdin, in that order of preference.
func readPassage(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if translateInput != "" {
		data, err := os.ReadFile(translateInput)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func init() {
	translateCmd.Flags().StringVarP(&translateSource, "source", "s", "english", "Source language (french, english, polish, or auto to detect)")
	translateCmd.Flags().StringVarP(&translateInput, "input", "i", "", "Input file (defaults to stdin)")
	translateCmd.Flags().String("backend", "gemini", "Translation backend (gemini, google, ollama, mymemory)")
	translateCmd.Flags().String("db", "", "Translation memory database path")
	translateCmd.Flags().Bool("no-cache", false, "Disable the translation memory")

	rootCmd.AddCommand(translateCmd)
}

func bindTranslateFlags(cmd *cobra.Command, args []string) error {
	bindings := map[string]string{
		"backend":  "backend",
		"db":       "db",
		"no_cache": "no-cache",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}
