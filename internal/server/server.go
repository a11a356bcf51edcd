// Package server is the HTTP boundary of the shared translation service:
// JSON endpoints for translating and editing, a staleness-checked poll
// endpoint, and a websocket push channel per session.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/valpere/triglot/internal/language"
	"github.com/valpere/triglot/internal/session"
)

// Translator is the orchestration capability the server depends on. It is
// an interface so handler tests can substitute a deterministic fake.
type Translator interface {
	Translate(ctx context.Context, text string, source language.Language) language.Texts
}

type Server struct {
	translator Translator
	sync       *session.Synchronizer
	log        *zap.Logger
}

func New(translator Translator, sync *session.Synchronizer, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{translator: translator, sync: sync, log: log}
}

// Router builds the HTTP routing table with request logging.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/translate", s.handleTranslate).Methods("POST")
	r.HandleFunc("/sessions/{id}/edit", s.handleEdit).Methods("POST")
	r.HandleFunc("/sessions/{id}", s.handlePoll).Methods("GET")
	r.HandleFunc("/sessions/{id}/ws", s.handleSocket).Methods("GET")

	return handlers.CombinedLoggingHandler(os.Stdout, r)
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeClientError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"success": false,
		"error":   msg,
	})
}

type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeClientError(w, fmt.Sprintf("could not decode request (%v)", err))
		return
	}

	source, err := language.Parse(req.SourceLanguage)
	if err != nil {
		writeClientError(w, err.Error())
		return
	}

	texts := s.translator.Translate(r.Context(), req.Text, source)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"translations": texts,
	})
}

type editRequest struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if sessionID == "" {
		writeClientError(w, "missing session id")
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeClientError(w, fmt.Sprintf("could not decode request (%v)", err))
		return
	}

	state, err := s.applyEdit(r.Context(), sessionID, req)
	if err != nil {
		writeClientError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"revision": state.Revision,
		"state":    state,
	})
}

// applyEdit translates the edited text and applies it to the session. The
// per-session lock is taken only inside ApplyEdit, after the remote
// translation has completed; the store is never held across network I/O.
func (s *Server) applyEdit(ctx context.Context, sessionID string, req editRequest) (session.State, error) {
	if req.Language == "" {
		return session.State{}, errors.New("missing language")
	}
	lang, err := language.Parse(req.Language)
	if err != nil {
		return session.State{}, err
	}

	texts := s.translator.Translate(ctx, req.Text, lang)
	return s.sync.ApplyEdit(sessionID, lang, req.Text, texts), nil
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	// since defaults to -1 so a first poll receives the state even of an
	// untouched session.
	since := int64(-1)
	if v := r.URL.Query().Get("since"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeClientError(w, "invalid since revision")
			return
		}
		since = parsed
	}

	state, changed := s.sync.Poll(sessionID, since)
	if !changed {
		writeJSON(w, http.StatusOK, map[string]any{"changed": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"changed": true,
		"state":   state,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		// A fresh visit gets its own session to share.
		http.Redirect(w, r, "/?session="+uuid.NewString(), http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, indexData{SessionID: sessionID}); err != nil {
		s.log.Error("failed to render index", zap.Error(err))
	}
}
