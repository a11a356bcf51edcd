// Package translator talks to the external translation-capable model. The
// remote service is modeled as an injected capability with a single
// translate operation so callers can fake it deterministically in tests.
package translator

import (
	"context"
	"time"

	"github.com/valpere/triglot/internal/language"
)

// Request is one remote translation operation: text in the source language,
// translated into one or two targets. With two targets the service is asked
// for a combined response carrying both translations in target order.
type Request struct {
	Text    string
	Source  language.Language
	Targets []language.Language
}

// Result carries the ordered translations of a request: one line per
// requested target, in the same order as Request.Targets.
type Result struct {
	ServiceName string
	Lines       []string
	Latency     time.Duration
}

// Service is the remote translation capability. Implementations must treat
// timeouts, transport errors, empty bodies and unparsable bodies as errors;
// recovery (fallback, per-unit isolation) is the caller's concern.
type Service interface {
	Name() string
	Translate(ctx context.Context, req Request) (*Result, error)
}
