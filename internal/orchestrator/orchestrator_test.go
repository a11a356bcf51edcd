package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/valpere/triglot/internal/language"
	"github.com/valpere/triglot/internal/translator"
)

type mockService struct {
	nameVal       string
	translateFunc func(ctx context.Context, req translator.Request) (*translator.Result, error)
	callCount     atomic.Int32

	mu       sync.Mutex
	requests []translator.Request
}

func (m *mockService) Name() string {
	if m.nameVal == "" {
		return "mock"
	}
	return m.nameVal
}

func (m *mockService) Translate(ctx context.Context, req translator.Request) (*translator.Result, error) {
	m.callCount.Add(1)
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.translateFunc != nil {
		return m.translateFunc(ctx, req)
	}
	// Identity-tagged translation: "<target>:<text>" per requested target.
	lines := make([]string, len(req.Targets))
	for i, tgt := range req.Targets {
		lines[i] = tgt.String() + ":" + req.Text
	}
	return &translator.Result{ServiceName: m.Name(), Lines: lines}, nil
}

func TestTranslate_EmptyText_NoRemoteCalls(t *testing.T) {
	svc := &mockService{}
	o := New(svc, Config{})

	texts := o.Translate(context.Background(), "", language.English)

	for _, lang := range language.All() {
		if texts.Get(lang) != "" {
			t.Errorf("expected empty %s text, got %q", lang, texts.Get(lang))
		}
	}
	if n := svc.callCount.Load(); n != 0 {
		t.Errorf("expected 0 remote calls, got %d", n)
	}

	if texts := o.Translate(context.Background(), "   \n\t", language.English); texts.Get(language.French) != "" {
		t.Errorf("whitespace-only input must not be translated, got %q", texts.Get(language.French))
	}
	if n := svc.callCount.Load(); n != 0 {
		t.Errorf("expected 0 remote calls for whitespace input, got %d", n)
	}
}

func TestTranslate_CombinedCall(t *testing.T) {
	svc := &mockService{
		translateFunc: func(ctx context.Context, req translator.Request) (*translator.Result, error) {
			if len(req.Targets) != 2 {
				t.Errorf("expected combined request, got targets %v", req.Targets)
			}
			return &translator.Result{ServiceName: "mock", Lines: []string{"Bonjour.", "Witaj."}}, nil
		},
	}
	o := New(svc, Config{})

	texts := o.Translate(context.Background(), "Hello.", language.English)

	if got := texts.Get(language.English); got != "Hello." {
		t.Errorf("source slot must echo input, got %q", got)
	}
	if got := texts.Get(language.French); got != "Bonjour." {
		t.Errorf("french: got %q", got)
	}
	if got := texts.Get(language.Polish); got != "Witaj." {
		t.Errorf("polish: got %q", got)
	}
	if n := svc.callCount.Load(); n != 1 {
		t.Errorf("expected 1 combined call, got %d", n)
	}
}

func TestTranslate_CombinedMalformed_FallsBack(t *testing.T) {
	// Combined response delivers only one parseable line; the orchestrator
	// must issue two single-target calls and still produce a complete result.
	svc := &mockService{
		translateFunc: func(ctx context.Context, req translator.Request) (*translator.Result, error) {
			if len(req.Targets) == 2 {
				return nil, errors.New("insufficient translations in combined response: got 1, want 2")
			}
			return &translator.Result{Lines: []string{req.Targets[0].String() + ":ok"}}, nil
		},
	}
	o := New(svc, Config{})

	texts := o.Translate(context.Background(), "Hello.", language.English)

	if got := texts.Get(language.French); got != "french:ok" {
		t.Errorf("french: got %q", got)
	}
	if got := texts.Get(language.Polish); got != "polish:ok" {
		t.Errorf("polish: got %q", got)
	}
	if n := svc.callCount.Load(); n != 3 {
		t.Errorf("expected 1 combined + 2 fallback calls, got %d", n)
	}
}

func TestTranslate_FallbackFailureIsolatedPerTarget(t *testing.T) {
	svc := &mockService{
		translateFunc: func(ctx context.Context, req translator.Request) (*translator.Result, error) {
			if len(req.Targets) == 2 {
				return nil, errors.New("combined unavailable")
			}
			if req.Targets[0] == language.Polish {
				return nil, errors.New("polish endpoint down")
			}
			return &translator.Result{Lines: []string{"Bonjour."}}, nil
		},
	}
	o := New(svc, Config{})

	texts := o.Translate(context.Background(), "Hello.", language.English)

	if got := texts.Get(language.French); got != "Bonjour." {
		t.Errorf("french must survive the polish failure, got %q", got)
	}
	// Failed target degrades to the source unit text, never empty.
	if got := texts.Get(language.Polish); got != "Hello." {
		t.Errorf("polish must degrade to source text, got %q", got)
	}
}

func TestTranslate_TotalFailure_DegradesToSource(t *testing.T) {
	svc := &mockService{
		translateFunc: func(ctx context.Context, req translator.Request) (*translator.Result, error) {
			return nil, errors.New("service unreachable")
		},
	}
	o := New(svc, Config{})

	texts := o.Translate(context.Background(), "First line.\nSecond line.", language.English)

	want := "First line.\n\nSecond line."
	if got := texts.Get(language.French); got != want {
		t.Errorf("french: got %q, want degraded %q", got, want)
	}
	if got := texts.Get(language.Polish); got != want {
		t.Errorf("polish: got %q, want degraded %q", got, want)
	}
}

func TestTranslate_UnitOrderPreserved(t *testing.T) {
	// Unit translations run concurrently; reassembly must keep original order
	// regardless of completion order.
	svc := &mockService{}
	o := New(svc, Config{UnitConcurrency: 8})

	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf("Line number %d.", i))
	}
	text := strings.Join(lines, "\n")

	texts := o.Translate(context.Background(), text, language.English)

	got := strings.Split(texts.Get(language.French), "\n\n")
	if len(got) != len(lines) {
		t.Fatalf("expected %d parts, got %d", len(lines), len(got))
	}
	for i, part := range got {
		want := "french:" + lines[i]
		if part != want {
			t.Errorf("part %d: got %q, want %q", i, part, want)
		}
	}
}

func TestTranslate_SingleLineJoinPolicy(t *testing.T) {
	long := strings.Repeat("padding words here ", 6) + "first sentence ends. Second sentence is also quite long and detailed."
	svc := &mockService{}
	o := New(svc, Config{})

	texts := o.Translate(context.Background(), long, language.English)

	// No newline in the input: units are joined with a single space.
	if strings.Contains(texts.Get(language.French), "\n") {
		t.Errorf("single-line input must reassemble without line breaks: %q", texts.Get(language.French))
	}
	if svc.callCount.Load() < 2 {
		t.Errorf("expected the long line to be split into multiple units, got %d calls", svc.callCount.Load())
	}
}

type mapMemory struct {
	mu    sync.Mutex
	data  map[string]string
	saves int
}

func newMapMemory() *mapMemory {
	return &mapMemory{data: make(map[string]string)}
}

func (m *mapMemory) key(text, src, tgt string) string { return src + "|" + tgt + "|" + text }

func (m *mapMemory) Get(ctx context.Context, text, src, tgt string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[m.key(text, src, tgt)]
	return v, ok, nil
}

func (m *mapMemory) Save(ctx context.Context, text, src, tgt, translated, service string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[m.key(text, src, tgt)] = translated
	m.saves++
	return nil
}

type rejectVerifier struct {
	reject string
}

func (v rejectVerifier) Verify(text string, target language.Language) error {
	if strings.Contains(text, v.reject) {
		return fmt.Errorf("expected %s but detected something else", target)
	}
	return nil
}

func TestTranslate_VerifierRejection_FallsBack(t *testing.T) {
	// The combined call answers in the wrong language; the verifier rejects it
	// and the per-target fallback produces the final result.
	svc := &mockService{
		translateFunc: func(ctx context.Context, req translator.Request) (*translator.Result, error) {
			if len(req.Targets) == 2 {
				return &translator.Result{Lines: []string{"still english", "still english"}}, nil
			}
			return &translator.Result{Lines: []string{req.Targets[0].String() + ":ok"}}, nil
		},
	}
	o := New(svc, Config{Verifier: rejectVerifier{reject: "english"}})

	texts := o.Translate(context.Background(), "Hello.", language.English)

	if got := texts.Get(language.French); got != "french:ok" {
		t.Errorf("french: got %q", got)
	}
	if got := texts.Get(language.Polish); got != "polish:ok" {
		t.Errorf("polish: got %q", got)
	}
	if n := svc.callCount.Load(); n != 3 {
		t.Errorf("expected 1 rejected combined + 2 fallback calls, got %d", n)
	}
}

func TestTranslate_MemoryAvoidsRemoteCalls(t *testing.T) {
	svc := &mockService{}
	mem := newMapMemory()
	o := New(svc, Config{Memory: mem})

	first := o.Translate(context.Background(), "Hello.", language.English)
	if n := svc.callCount.Load(); n != 1 {
		t.Fatalf("expected 1 remote call on cold cache, got %d", n)
	}
	if mem.saves != 2 {
		t.Errorf("expected 2 saved target translations, got %d", mem.saves)
	}

	second := o.Translate(context.Background(), "Hello.", language.English)
	if n := svc.callCount.Load(); n != 1 {
		t.Errorf("expected warm cache to avoid remote calls, got %d total", n)
	}
	if first != second {
		t.Errorf("cached result differs: %v vs %v", first, second)
	}
}
