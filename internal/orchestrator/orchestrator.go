// Package orchestrator turns one edited passage into translations for the
// two other languages. Passages are segmented into units translated
// independently; each unit prefers a single combined remote call and falls
// back to two parallel single-target calls, degrading to the source text
// when both paths fail. The orchestrator never returns an error: failures
// surface as degraded unit text, so one bad unit cannot abort a passage.
package orchestrator

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/valpere/triglot/internal/language"
	"github.com/valpere/triglot/internal/segmenter"
	"github.com/valpere/triglot/internal/translator"
)

// DefaultUnitConcurrency bounds how many units of one passage are in flight
// at the remote service at the same time.
const DefaultUnitConcurrency = 4

// Memory is the optional unit-level translation cache consulted before the
// remote service is called. *store.Store satisfies it; nil disables caching.
type Memory interface {
	Get(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error)
	Save(ctx context.Context, sourceText, sourceLang, targetLang, translatedText, serviceUsed string) error
}

// Verifier is an optional check that a combined-call line really is written
// in its target language. *validator.Validator satisfies it; nil disables
// the check.
type Verifier interface {
	Verify(translatedText string, target language.Language) error
}

type Config struct {
	UnitConcurrency int
	Memory          Memory
	Verifier        Verifier
	Logger          *zap.Logger
}

type Orchestrator struct {
	svc    translator.Service
	memory Memory
	verify Verifier
	log    *zap.Logger
	sem    chan struct{}
}

func New(svc translator.Service, cfg Config) *Orchestrator {
	if cfg.UnitConcurrency <= 0 {
		cfg.UnitConcurrency = DefaultUnitConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Orchestrator{
		svc:    svc,
		memory: cfg.Memory,
		verify: cfg.Verifier,
		log:    cfg.Logger,
		sem:    make(chan struct{}, cfg.UnitConcurrency),
	}
}

// Translate produces the full three-language record for one passage. The
// source slot always echoes text unchanged; empty (whitespace-only) input
// returns without contacting the remote service.
func (o *Orchestrator) Translate(ctx context.Context, text string, source language.Language) language.Texts {
	var texts language.Texts
	texts.Set(source, text)

	if strings.TrimSpace(text) == "" {
		return texts
	}

	targets := source.Targets()
	units := segmenter.Segment(text)

	results := make([][2]string, len(units))

	var wg sync.WaitGroup
	for i, unit := range units {
		wg.Add(1)
		o.sem <- struct{}{}
		go func(i int, unitText string) {
			defer wg.Done()
			defer func() { <-o.sem }()
			results[i] = o.translateUnit(ctx, unitText, source, targets)
		}(i, unit.Text)
	}
	wg.Wait()

	multiline := segmenter.Multiline(text)
	for ti, target := range targets {
		parts := make([]string, len(units))
		for ui := range units {
			parts[ui] = results[ui][ti]
		}
		texts.Set(target, segmenter.Join(parts, multiline))
	}

	return texts
}

// translateUnit obtains both target translations for one unit. Results merge
// only from the path whose outcome is used: the fallback starts strictly
// after the combined attempt has been given up, so an abandoned combined
// call can never overwrite fallback output.
func (o *Orchestrator) translateUnit(ctx context.Context, unit string, source language.Language, targets [2]language.Language) [2]string {
	if out, ok := o.cachedUnit(ctx, unit, source, targets); ok {
		return out
	}

	res, err := o.svc.Translate(ctx, translator.Request{
		Text:    unit,
		Source:  source,
		Targets: targets[:],
	})
	if err == nil && len(res.Lines) >= len(targets) {
		verr := o.verifyLines(res.Lines, targets)
		if verr == nil {
			var out [2]string
			for i := range targets {
				out[i] = res.Lines[i]
				o.remember(ctx, unit, source, targets[i], res.Lines[i], res.ServiceName)
			}
			return out
		}
		o.log.Warn("combined translation failed language check, falling back to per-target calls",
			zap.String("source", source.String()),
			zap.Error(verr))
	} else if err != nil {
		o.log.Warn("combined translation failed, falling back to per-target calls",
			zap.String("source", source.String()),
			zap.Error(err))
	} else {
		o.log.Warn("combined translation malformed, falling back to per-target calls",
			zap.String("source", source.String()),
			zap.Int("lines", len(res.Lines)))
	}

	return o.translateUnitFallback(ctx, unit, source, targets)
}

// verifyLines checks each combined-call line against its target language.
func (o *Orchestrator) verifyLines(lines []string, targets [2]language.Language) error {
	if o.verify == nil {
		return nil
	}
	for i, target := range targets {
		if err := o.verify.Verify(lines[i], target); err != nil {
			return err
		}
	}
	return nil
}

// translateUnitFallback issues one single-target call per language,
// concurrently. A failure in one target is isolated: that target degrades
// to the source unit text while the other keeps its translation.
func (o *Orchestrator) translateUnitFallback(ctx context.Context, unit string, source language.Language, targets [2]language.Language) [2]string {
	type unitResult struct {
		idx  int
		text string
		err  error
	}

	ch := make(chan unitResult, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(idx int, target language.Language) {
			defer wg.Done()

			res, err := o.svc.Translate(ctx, translator.Request{
				Text:    unit,
				Source:  source,
				Targets: []language.Language{target},
			})
			if err != nil {
				ch <- unitResult{idx: idx, err: err}
				return
			}
			if len(res.Lines) == 0 {
				ch <- unitResult{idx: idx, err: errEmptyResult}
				return
			}
			ch <- unitResult{idx: idx, text: res.Lines[0]}
		}(i, target)
	}

	wg.Wait()
	close(ch)

	var out [2]string
	for rc := range ch {
		if rc.err != nil {
			// Keep the source text so reassembled output stays coherent.
			out[rc.idx] = unit
			o.log.Warn("single-target translation failed",
				zap.String("target", targets[rc.idx].String()),
				zap.Error(rc.err))
			continue
		}
		out[rc.idx] = rc.text
		o.remember(ctx, unit, source, targets[rc.idx], rc.text, o.svc.Name())
	}

	return out
}

type emptyResultError struct{}

func (emptyResultError) Error() string { return "no translation lines in result" }

var errEmptyResult = emptyResultError{}

// cachedUnit returns both target translations from memory, hitting only when
// every target is present so a partial hit still takes the combined call.
func (o *Orchestrator) cachedUnit(ctx context.Context, unit string, source language.Language, targets [2]language.Language) ([2]string, bool) {
	if o.memory == nil {
		return [2]string{}, false
	}

	var out [2]string
	for i, target := range targets {
		text, found, err := o.memory.Get(ctx, unit, source.String(), target.String())
		if err != nil || !found {
			return [2]string{}, false
		}
		out[i] = text
	}
	return out, true
}

func (o *Orchestrator) remember(ctx context.Context, unit string, source, target language.Language, translated, service string) {
	if o.memory == nil {
		return
	}
	if err := o.memory.Save(ctx, unit, source.String(), target.String(), translated, service); err != nil {
		o.log.Debug("failed to save translation to memory", zap.Error(err))
	}
}
