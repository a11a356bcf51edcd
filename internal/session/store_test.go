package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/valpere/triglot/internal/language"
)

func TestStore_GetAbsent(t *testing.T) {
	s := NewStore()

	state, ok := s.Get("missing")
	if ok {
		t.Error("expected absent session")
	}
	if state.ID != "missing" || state.Revision != 0 {
		t.Errorf("unexpected zero state: %+v", state)
	}
}

func TestStore_EnsureCreatesLazily(t *testing.T) {
	s := NewStore()

	state := s.Ensure("s1")
	if state.Revision != 0 {
		t.Errorf("fresh session revision: got %d, want 0", state.Revision)
	}

	if _, ok := s.Get("s1"); !ok {
		t.Error("Ensure must materialize the session")
	}
}

func TestStore_UpsertAtomicPerSession(t *testing.T) {
	s := NewStore()
	const writers = 50

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tag := fmt.Sprintf("edit-%d", i)
			snapshot := s.Upsert("shared", func(st *State) {
				// Write all three slots from one edit; a concurrent mutator
				// interleaving here would mix tags across slots.
				for _, lang := range language.All() {
					st.Texts.Set(lang, tag)
				}
				st.Revision++
			})

			first := snapshot.Texts.Get(language.French)
			for _, lang := range language.All() {
				if snapshot.Texts.Get(lang) != first {
					t.Errorf("interleaved write observed: %+v", snapshot.Texts)
				}
			}
		}(i)
	}
	wg.Wait()

	state, ok := s.Get("shared")
	if !ok {
		t.Fatal("expected session to exist")
	}
	if state.Revision != writers {
		t.Errorf("revision: got %d, want %d (one per accepted edit)", state.Revision, writers)
	}
}

func TestStore_SessionsIndependent(t *testing.T) {
	s := NewStore()

	release := make(chan struct{})
	started := make(chan struct{})
	go s.Upsert("slow", func(st *State) {
		close(started)
		<-release
	})
	<-started

	// A different session must not wait for the slow mutator.
	done := make(chan struct{})
	go func() {
		s.Upsert("fast", func(st *State) { st.Revision++ })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("edit on a different session was blocked")
	}
	close(release)
}

func TestStore_RevisionMonotonic(t *testing.T) {
	s := NewStore()

	var last int64
	for i := 0; i < 10; i++ {
		state := s.Upsert("s1", func(st *State) { st.Revision++ })
		if state.Revision <= last {
			t.Fatalf("revision went backwards: %d after %d", state.Revision, last)
		}
		last = state.Revision
	}
}
