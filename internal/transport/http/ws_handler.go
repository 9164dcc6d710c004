package http

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	zlog "github.com/rs/zerolog/log"
	"quiz-stats-service/internal/app"
	"quiz-stats-service/internal/domain"
)

// WSHandler lets a quiz client stream its events over one websocket instead of
// one POST per event. Every inbound event is answered with an ack or an error.
type WSHandler struct {
	ingest   *app.IngestService
	upgrader websocket.Upgrader
}

func NewWSHandler(ingest *app.IngestService) *WSHandler {
	return &WSHandler{
		ingest: ingest,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type ackPayload struct {
	EventType domain.EventType `json:"eventType"`
	DateKey   string           `json:"dateKey"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request; ?sessionId= sets the session for events that omit it.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zlog.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		reply := h.handle(r, sessionID, data)
		if err := writeMessage(conn, reply); err != nil {
			zlog.Warn().Err(err).Msg("ws write error")
			return
		}
	}
}

func (h *WSHandler) handle(r *http.Request, sessionID string, data []byte) outboundMessage {
	var inbound inboundMessage
	if err := json.Unmarshal(data, &inbound); err != nil {
		return errorMessage("invalid message")
	}
	switch inbound.Type {
	case "event":
		var candidate domain.CandidateEvent
		if err := json.Unmarshal(inbound.Payload, &candidate); err != nil {
			return errorMessage("invalid event payload")
		}
		if candidate.SessionID == "" {
			candidate.SessionID = sessionID
		}
		event, err := h.ingest.Ingest(r.Context(), candidate)
		if err != nil {
			return errorMessage(messageFor(err))
		}
		return outboundMessage{Type: "ack", Payload: ackPayload{EventType: event.Type, DateKey: event.DateKey}}
	default:
		return errorMessage("unsupported message type")
	}
}

func errorMessage(msg string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: msg}}
}

func writeMessage(conn *websocket.Conn, msg outboundMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}
