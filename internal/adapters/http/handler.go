// Package httpadapter exposes the session manager and history service to the
// web client over REST and WebSocket.
package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/MahaveerPandey8290/health-app/internal/app/history"
	"github.com/MahaveerPandey8290/health-app/internal/app/session"
	"github.com/MahaveerPandey8290/health-app/internal/domain"
)

type Server struct {
	sessions *session.Manager
	history  *history.Service
}

func NewServer(sessions *session.Manager, historySvc *history.Service) http.Handler {
	s := &Server{sessions: sessions, history: historySvc}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	r.HandleFunc("/sessions", s.handleStartSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}", s.handleDiscardSession).Methods(http.MethodDelete)
	r.HandleFunc("/sessions/{id}/messages", s.handleSendMessage).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/mode", s.handleSwitchMode).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/mode/resolve", s.handleResolveSwitch).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/save", s.handleSaveSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/resume", s.handleResumeSession).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}/history", s.handleListHistory).Methods(http.MethodGet)
	r.HandleFunc("/ws/sessions/{id}", s.handleChatSocket).Methods(http.MethodGet)

	return chainMiddlewares(r, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type startSessionRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	Mode        string `json:"mode"`
}

type sessionResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	Mode        string    `json:"mode"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type startSessionResponse struct {
	Session  sessionResponse `json:"session"`
	Greeting messageResponse `json:"greeting"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	UserMessage      messageResponse `json:"user_message"`
	AssistantMessage messageResponse `json:"assistant_message"`
	MirrorWarning    string          `json:"mirror_warning,omitempty"`
}

type switchModeRequest struct {
	Mode string `json:"mode"`
}

type switchModeResponse struct {
	RequiresConfirmation bool            `json:"requires_confirmation"`
	Session              sessionResponse `json:"session"`
}

type resolveSwitchRequest struct {
	Decision string `json:"decision"` // "save", "discard" or "cancel"
}

type resolveSwitchResponse struct {
	Session sessionResponse `json:"session"`
	Saved   bool            `json:"saved"`
}

type saveSessionResponse struct {
	Saved bool             `json:"saved"`
	Entry *historyEntryRef `json:"entry,omitempty"`
}

type historyEntryRef struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	SavedAt   time.Time `json:"saved_at"`
}

type resumeSessionRequest struct {
	UserID string `json:"user_id"`
}

type historyEntryResponse struct {
	SessionID    string    `json:"session_id"`
	Mode         string    `json:"mode"`
	Title        string    `json:"title"`
	SavedAt      time.Time `json:"saved_at"`
	MessageCount int       `json:"message_count"`
}

type listHistoryResponse struct {
	Entries []historyEntryResponse `json:"entries"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := s.sessions.Start(r.Context(), session.StartInput{
		UserID:      domain.UserID(req.UserID),
		DisplayName: req.DisplayName,
		Mode:        mode,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, startSessionResponse{
		Session:  toSessionResponse(out.Session),
		Greeting: toMessageResponse(out.Session.Messages[0]),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(mux.Vars(r)["id"])

	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, getSessionResponse{
		Session:  toSessionResponse(sess),
		Messages: toMessagesResponse(sess.Messages),
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(mux.Vars(r)["id"])

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	out, err := s.sessions.Send(r.Context(), session.SendInput{SessionID: id, Text: req.Text})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := sendMessageResponse{
		UserMessage:      toMessageResponse(out.UserMessage),
		AssistantMessage: toMessageResponse(out.AssistantMessage),
	}
	if out.MirrorWarning != nil {
		resp.MirrorWarning = out.MirrorWarning.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSwitchMode(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(mux.Vars(r)["id"])

	var req switchModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := s.sessions.SwitchMode(r.Context(), session.SwitchInput{SessionID: id, NewMode: mode})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, switchModeResponse{
		RequiresConfirmation: out.RequiresConfirmation,
		Session:              toSessionResponse(out.Session),
	})
}

func (s *Server) handleResolveSwitch(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(mux.Vars(r)["id"])

	var req resolveSwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	var decision session.Decision
	switch req.Decision {
	case "save":
		decision = session.DecisionSave
	case "discard":
		decision = session.DecisionDiscard
	case "cancel":
		decision = session.DecisionCancel
	default:
		badRequest(w, "decision must be save, discard or cancel")
		return
	}

	out, err := s.sessions.ResolveSwitch(r.Context(), session.ResolveInput{SessionID: id, Decision: decision})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveSwitchResponse{
		Session: toSessionResponse(out.Session),
		Saved:   out.Saved,
	})
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(mux.Vars(r)["id"])

	out, err := s.sessions.Save(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := saveSessionResponse{Saved: out.Saved}
	if out.Saved {
		resp.Entry = &historyEntryRef{
			SessionID: string(out.Entry.SessionID),
			Title:     out.Entry.Title,
			SavedAt:   out.Entry.SavedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(mux.Vars(r)["id"])

	if err := s.sessions.Discard(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(mux.Vars(r)["id"])

	var req resumeSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}

	out, err := s.sessions.Resume(r.Context(), session.ResumeInput{
		UserID:    domain.UserID(req.UserID),
		SessionID: id,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, getSessionResponse{
		Session:  toSessionResponse(out.Session),
		Messages: toMessagesResponse(out.Session.Messages),
	})
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(mux.Vars(r)["id"])

	entries, err := s.history.ListForUser(r.Context(), userID, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := listHistoryResponse{Entries: make([]historyEntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, historyEntryResponse{
			SessionID:    string(e.SessionID),
			Mode:         string(e.Mode),
			Title:        e.Title,
			SavedAt:      e.SavedAt,
			MessageCount: len(e.Messages),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ─────────────────────────────────────────────
// Mapping helpers
// ─────────────────────────────────────────────

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:          string(s.ID),
		UserID:      string(s.UserID),
		DisplayName: s.DisplayName,
		Mode:        string(s.Mode),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:        string(m.ID),
		SessionID: string(m.SessionID),
		Sender:    string(m.Sender),
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}

func toMessagesResponse(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

// ─────────────────────────────────────────────
// HTTP helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		invalidMode *domain.InvalidModeError
		genErr      *domain.GenerationError
		persistErr  *domain.PersistenceError
		discardErr  *domain.DiscardError
	)

	switch {
	case errors.As(err, &invalidMode):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrScratchNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrSwitchPending), errors.Is(err, domain.ErrNoSwitchPending),
		errors.Is(err, domain.ErrSessionSuperseded):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &genErr):
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "the companion could not respond, please retry",
			"code":  "generation_failed",
		})
	case errors.As(err, &persistErr):
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "saving to history failed",
			"code":  "persistence_failed",
		})
	case errors.As(err, &discardErr):
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "the session ended but its backup could not be removed",
			"code":  "discard_failed",
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
