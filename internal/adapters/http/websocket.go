package httpadapter

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/MahaveerPandey8290/health-app/internal/app/session"
	"github.com/MahaveerPandey8290/health-app/internal/domain"
	"github.com/MahaveerPandey8290/health-app/internal/observability"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The REST surface is already open CORS; the socket matches it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type socketInbound struct {
	Text string `json:"text"`
}

type socketEvent struct {
	Type    string           `json:"type"` // "message", "warning" or "error"
	Message *messageResponse `json:"message,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// handleChatSocket runs a live chat loop over one session: each inbound text
// goes through the same send path as the REST endpoint, and both sides of the
// exchange stream back as events.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(mux.Vars(r)["id"])
	log := observability.LoggerFromContext(r.Context()).With("session_id", id)

	if _, err := s.sessions.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	log.Info("chat socket opened")

	for {
		var in socketInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("chat socket read failed", "error", err)
			}
			return
		}
		if in.Text == "" {
			s.writeSocketEvent(conn, socketEvent{Type: "error", Error: "text is required"})
			continue
		}

		out, err := s.sessions.Send(r.Context(), session.SendInput{SessionID: id, Text: in.Text})
		if err != nil {
			s.writeSocketEvent(conn, socketEvent{Type: "error", Error: err.Error()})
			continue
		}

		userMsg := toMessageResponse(out.UserMessage)
		reply := toMessageResponse(out.AssistantMessage)
		s.writeSocketEvent(conn, socketEvent{Type: "message", Message: &userMsg})
		s.writeSocketEvent(conn, socketEvent{Type: "message", Message: &reply})
		if out.MirrorWarning != nil {
			s.writeSocketEvent(conn, socketEvent{Type: "warning", Error: out.MirrorWarning.Error()})
		}
	}
}

func (s *Server) writeSocketEvent(conn *websocket.Conn, ev socketEvent) {
	if err := conn.WriteJSON(ev); err != nil {
		observability.Logger().Warn("chat socket write failed", "error", err)
	}
}
