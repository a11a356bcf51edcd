package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/triglot/internal/language"
)

// Subscription is one device's attachment to a session's update stream.
// Snapshots arrive on Updates; a subscriber that falls behind skips straight
// to the newest snapshot rather than delaying the broadcast.
type Subscription struct {
	sessionID string
	ch        chan State
}

// Updates delivers state snapshots, newest available first. The channel is
// closed by Unsubscribe.
func (s *Subscription) Updates() <-chan State {
	return s.ch
}

// Synchronizer applies edits to the session store and propagates the
// resulting state to subscribers (push) and pollers (pull). Conflicting
// concurrent edits resolve last-writer-wins in store arrival order; an edit
// from a slower device can be superseded without notice.
type Synchronizer struct {
	store *Store
	log   *zap.Logger

	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func NewSynchronizer(store *Store, log *zap.Logger) *Synchronizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synchronizer{
		store: store,
		log:   log,
		subs:  make(map[string]map[*Subscription]struct{}),
	}
}

// ApplyEdit writes one edit (the edited language's text plus the matching
// translations for the other two) as a single atomic update, then notifies
// every subscriber of the session. An empty edit is a normal edit writing
// empty strings to all three languages, not a deletion.
func (y *Synchronizer) ApplyEdit(sessionID string, lang language.Language, text string, translations language.Texts) State {
	state := y.store.Upsert(sessionID, func(st *State) {
		for _, l := range language.All() {
			if l == lang {
				st.Texts.Set(l, text)
			} else {
				st.Texts.Set(l, translations.Get(l))
			}
		}
		st.Active = lang
		st.Revision++
		st.UpdatedAt = time.Now()
	})

	y.broadcast(state)

	y.log.Debug("edit applied",
		zap.String("session", sessionID),
		zap.String("language", lang.String()),
		zap.Int64("revision", state.Revision))

	return state
}

// Poll returns the current state only if it is newer than the revision the
// reader last observed; otherwise it reports no change with an empty
// payload.
func (y *Synchronizer) Poll(sessionID string, sinceRevision int64) (State, bool) {
	state := y.store.Ensure(sessionID)
	if state.Revision <= sinceRevision {
		return State{}, false
	}
	return state, true
}

// Subscribe attaches a device to a session's push stream and returns the
// current state for the initial sync. The session is created lazily if this
// is its first reference.
func (y *Synchronizer) Subscribe(sessionID string) (*Subscription, State) {
	sub := &Subscription{
		sessionID: sessionID,
		ch:        make(chan State, 1),
	}

	y.mu.Lock()
	set, ok := y.subs[sessionID]
	if !ok {
		set = make(map[*Subscription]struct{})
		y.subs[sessionID] = set
	}
	set[sub] = struct{}{}
	y.mu.Unlock()

	return sub, y.store.Ensure(sessionID)
}

// Unsubscribe detaches the device and closes its update channel. Dropping
// one subscription never affects the others.
func (y *Synchronizer) Unsubscribe(sub *Subscription) {
	y.mu.Lock()
	set, ok := y.subs[sub.sessionID]
	if ok {
		if _, present := set[sub]; present {
			delete(set, sub)
			close(sub.ch)
		}
		if len(set) == 0 {
			delete(y.subs, sub.sessionID)
		}
	}
	y.mu.Unlock()
}

// broadcast fans the snapshot out to every subscriber of the session without
// blocking: a full channel is drained of its stale snapshot first so the
// subscriber observes the latest state.
func (y *Synchronizer) broadcast(state State) {
	y.mu.Lock()
	defer y.mu.Unlock()

	for sub := range y.subs[state.ID] {
		select {
		case sub.ch <- state:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- state:
			default:
			}
		}
	}
}
