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
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/valpere/triglot/internal/orchestrator"
	"github.com/valpere/triglot/internal/server"
	"github.com/valpere/triglot/internal/session"
	"github.com/valpere/triglot/internal/validator"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the shared translation session server",
	Long: `Run the HTTP server hosting shared translation sessions.

Devices join a session by id, edit in any of the three languages, and
receive the authoritative state over a websocket push channel or by
polling with their last seen revision.

Configuration is read from flags or TRIGLOT_* environment variables
(e.g. TRIGLOT_ADDR, TRIGLOT_GEMINI_API_KEY).`,
	PreRunE: bindServeFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := buildLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

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
			Logger:          log.Named("orchestrator"),
		}
		if memory != nil {
			cfg.Memory = memory
		}
		if viper.GetBool("verify") {
			cfg.Verifier = validator.New()
		}
		orch := orchestrator.New(svc, cfg)

		sync := session.NewSynchronizer(session.NewStore(), log.Named("session"))
		srv := server.New(orch, sync, log.Named("server"))

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log.Info("starting server",
			zap.String("backend", svc.Name()),
			zap.Bool("cache", memory != nil))

		return srv.ListenAndServe(ctx, viper.GetString("addr"))
	},
}

func buildLogger() (*zap.Logger, error) {
	if viper.GetBool("debug") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func init() {
	serveCmd.Flags().String("addr", ":5000", "Listen address")
	serveCmd.Flags().String("backend", "gemini", "Translation backend (gemini, google, ollama, mymemory)")
	serveCmd.Flags().String("gemini-api-key", "", "Gemini API key")
	serveCmd.Flags().String("gemini-model", "", "Gemini model override")
	serveCmd.Flags().String("gemini-url", "", "Gemini base URL override")
	serveCmd.Flags().Duration("gemini-timeout", 0, "Per-call Gemini timeout")
	serveCmd.Flags().String("google-credentials", "", "Google Cloud credentials file")
	serveCmd.Flags().String("ollama-model", "", "Ollama model override")
	serveCmd.Flags().String("ollama-url", "", "Ollama base URL override")
	serveCmd.Flags().Duration("ollama-timeout", 0, "Per-call Ollama timeout")
	serveCmd.Flags().String("mymemory-email", "", "Contact email for the MyMemory quota")
	serveCmd.Flags().Bool("verify", false, "Check combined-call output language before accepting it")
	serveCmd.Flags().String("db", "triglot.db", "Translation memory database path")
	serveCmd.Flags().Bool("no-cache", false, "Disable the translation memory")
	serveCmd.Flags().Int("unit-concurrency", orchestrator.DefaultUnitConcurrency, "Concurrent unit translations per passage")
	serveCmd.Flags().Bool("debug", false, "Verbose development logging")

	rootCmd.AddCommand(serveCmd)
}

// bindServeFlags binds this command's flags to viper at run time, so the
// translate command's identically named flags cannot shadow them.
func bindServeFlags(cmd *cobra.Command, args []string) error {
	bindings := map[string]string{
		"addr":               "addr",
		"backend":            "backend",
		"gemini.api_key":     "gemini-api-key",
		"gemini.model":       "gemini-model",
		"gemini.base_url":    "gemini-url",
		"gemini.timeout":     "gemini-timeout",
		"google.credentials": "google-credentials",
		"ollama.model":       "ollama-model",
		"ollama.base_url":    "ollama-url",
		"ollama.timeout":     "ollama-timeout",
		"mymemory.email":     "mymemory-email",
		"verify":             "verify",
		"db":                 "db",
		"no_cache":           "no-cache",
		"unit_concurrency":   "unit-concurrency",
		"debug":              "debug",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}
