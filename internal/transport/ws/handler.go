package ws

import (
	"absurdlyvisual/internal/cache"
	"absurdlyvisual/internal/model"
	"absurdlyvisual/internal/service"
	"absurdlyvisual/internal/transport/rest/middleware"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	authSvc  *service.AuthService
	match    *service.MatchService
	sessions cache.SessionCache
}

// NewHandler creates a new WebSocket handler. sessions may be nil.
func NewHandler(hub *Hub, authSvc *service.AuthService, match *service.MatchService, sessions cache.SessionCache) *Handler {
	return &Handler{
		hub:      hub,
		authSvc:  authSvc,
		match:    match,
		sessions: sessions,
	}
}

// PlayerWS handles GET /v1/ws/games/{id}?token=
func (h *Handler) PlayerWS(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	token := middleware.RequestToken(r)

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidatePlayerToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if claims.GameID != gameID {
		http.Error(w, "token not valid for this game", http.StatusForbidden)
		return
	}
	if _, err := h.match.View(r.Context(), gameID, claims.PlayerID); err != nil {
		http.Error(w, "not seated in this game", http.StatusForbidden)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		SessionID: uuid.New().String(),
		RoomID:    gameID,
		PlayerID:  claims.PlayerID,
		Send:      make(chan []byte, 256),
		Hub:       h.hub,
	}
	h.hub.Register(conn)
	h.hub.JoinRoom(conn.SessionID, gameID)

	if h.sessions != nil {
		err := h.sessions.Set(r.Context(), &model.Session{
			ID:          conn.SessionID,
			GameID:      gameID,
			PlayerID:    claims.PlayerID,
			ConnectedAt: time.Now(),
		})
		if err != nil {
			log.Printf("failed to store session session_id=%s error=%v", conn.SessionID, err)
		}
	}

	log.Printf("player connected game_id=%s player_id=%s session_id=%s sessions=%d", gameID, claims.PlayerID, conn.SessionID, h.liveSessions(r.Context(), gameID))

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)

	if err := h.match.Connect(context.Background(), gameID, claims.PlayerID); err != nil {
		log.Printf("failed to mark player connected game_id=%s error=%v", gameID, err)
	}
}

// liveSessions counts the game's sockets across server instances, falling
// back to this hub's view without a session cache
func (h *Handler) liveSessions(ctx context.Context, gameID string) int64 {
	if h.sessions == nil {
		return int64(h.hub.RoomSize(gameID))
	}
	n, err := h.sessions.Count(ctx, gameID)
	if err != nil {
		return int64(h.hub.RoomSize(gameID))
	}
	return n
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	gameID := conn.RoomID
	defer func() {
		live := h.hub.Unregister(conn)
		wsConn.Close()
		ctx := context.Background()
		if h.sessions != nil {
			h.sessions.Delete(ctx, gameID, conn.SessionID)
			if h.hub.RoomSize(gameID) == 0 {
				h.sessions.DeleteGame(ctx, gameID)
			}
		}
		if live {
			err := h.match.Disconnect(ctx, gameID, conn.PlayerID)
			if err != nil && !errors.Is(err, service.ErrGameNotFound) && !errors.Is(err, service.ErrRejected) {
				log.Printf("failed to mark player disconnected game_id=%s error=%v", gameID, err)
			}
		}
		log.Printf("player disconnected game_id=%s player_id=%s", gameID, conn.PlayerID)
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(conn, "", "malformed message")
			continue
		}
		if err := h.dispatch(gameID, conn.PlayerID, &msg); err != nil {
			h.sendError(conn, msg.Type, errorMessage(err))
		}
	}
}

// dispatch routes an inbound action to the match service
func (h *Handler) dispatch(gameID, playerID string, msg *Message) error {
	ctx := context.Background()
	switch msg.Type {
	case MsgStartGame:
		return h.match.Start(ctx, gameID, playerID)

	case MsgSubmitCards:
		var p struct {
			CardIDs []string `json:"cardIds"`
		}
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		return h.match.Submit(ctx, gameID, "", playerID, p.CardIDs)

	case MsgSelectWinner:
		var p struct {
			Index *int `json:"index"`
		}
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		if p.Index == nil {
			return errBadPayload
		}
		return h.match.SelectWinner(ctx, gameID, "", playerID, *p.Index)

	case MsgRequestAIJoin:
		var p struct {
			Personality string `json:"personality"`
		}
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		_, err := h.match.AddBot(ctx, gameID, playerID, p.Personality)
		return err

	case MsgChatMessage:
		var p struct {
			Text string `json:"text"`
		}
		if err := decodePayload(msg, &p); err != nil {
			return err
		}
		return h.match.Chat(ctx, gameID, playerID, p.Text)

	default:
		return errUnknownType
	}
}

var (
	errBadPayload  = errors.New("malformed payload")
	errUnknownType = errors.New("unknown message type")
)

func decodePayload(msg *Message, v interface{}) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return errBadPayload
	}
	return nil
}

func errorMessage(err error) string {
	if reason := service.RejectionReason(err); reason != "" {
		return reason
	}
	switch {
	case errors.Is(err, errBadPayload), errors.Is(err, errUnknownType):
		return err.Error()
	case errors.Is(err, service.ErrGameNotFound):
		return "game not found"
	case errors.Is(err, service.ErrCatalogTooSmall):
		return "not enough cards for this game"
	}
	log.Printf("action failed error=%v", err)
	return "action failed"
}

// sendError reports a failed action to the acting player only
func (h *Handler) sendError(conn *Connection, action, message string) {
	h.hub.PublishTo(conn.RoomID, conn.PlayerID, MsgError, map[string]string{
		"action":  action,
		"message": message,
	})
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
