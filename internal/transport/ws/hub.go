package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Inbound message types sent by players
const (
	MsgStartGame     = "start_game"
	MsgSubmitCards   = "submit_cards"
	MsgSelectWinner  = "select_winner"
	MsgRequestAIJoin = "request_ai_join"
	MsgChatMessage   = "chat_message"
	MsgError         = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans events out to the sockets of a game room
type Hub struct {
	// Session -> connection
	sessions map[string]*Connection
	// Room -> playerID -> connection
	rooms map[string]map[string]*Connection

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *unregisterRequest
	join       chan *joinRequest
	closeRoom  chan string
	broadcast  chan *BroadcastMessage
}

// Connection represents a player's WebSocket session
type Connection struct {
	SessionID string
	RoomID    string
	PlayerID  string
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	RoomID   string
	ToPlayer string // Empty means everyone in the room
	Data     []byte
}

type joinRequest struct {
	sessionID string
	roomID    string
}

type unregisterRequest struct {
	conn *Connection
	// done reports whether conn was the player's live connection
	done chan bool
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		sessions:   make(map[string]*Connection),
		rooms:      make(map[string]map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *unregisterRequest),
		join:       make(chan *joinRequest),
		closeRoom:  make(chan string),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.sessions[conn.SessionID] = conn
			h.mu.Unlock()

		case req := <-h.join:
			h.mu.Lock()
			h.joinLocked(req.sessionID, req.roomID)
			h.mu.Unlock()

		case req := <-h.unregister:
			h.mu.Lock()
			req.done <- h.removeLocked(req.conn)
			h.mu.Unlock()

		case roomID := <-h.closeRoom:
			h.mu.Lock()
			for _, conn := range h.rooms[roomID] {
				delete(h.sessions, conn.SessionID)
				close(conn.Send)
			}
			delete(h.rooms, roomID)
			h.mu.Unlock()
			log.Printf("room closed room_id=%s", roomID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			players := h.rooms[msg.RoomID]
			if msg.ToPlayer != "" {
				if conn, ok := players[msg.ToPlayer]; ok {
					select {
					case conn.Send <- msg.Data:
					default:
						// Drop message if buffer full
					}
				}
			} else {
				for _, conn := range players {
					select {
					case conn.Send <- msg.Data:
					default:
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// joinLocked moves a session into a room. A newer session for the same
// player replaces the old one.
func (h *Hub) joinLocked(sessionID, roomID string) {
	conn, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	if conn.RoomID != roomID {
		if players := h.rooms[conn.RoomID]; players[conn.PlayerID] == conn {
			delete(players, conn.PlayerID)
		}
		conn.RoomID = roomID
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*Connection)
	}
	if old, ok := h.rooms[roomID][conn.PlayerID]; ok && old != conn {
		delete(h.sessions, old.SessionID)
		close(old.Send)
		log.Printf("session replaced room_id=%s player_id=%s", roomID, conn.PlayerID)
	}
	h.rooms[roomID][conn.PlayerID] = conn
}

func (h *Hub) removeLocked(conn *Connection) bool {
	if existing, ok := h.sessions[conn.SessionID]; !ok || existing != conn {
		return false
	}
	delete(h.sessions, conn.SessionID)
	close(conn.Send)

	live := false
	if players, ok := h.rooms[conn.RoomID]; ok {
		if players[conn.PlayerID] == conn {
			delete(players, conn.PlayerID)
			live = true
		}
		if len(players) == 0 {
			delete(h.rooms, conn.RoomID)
		}
	}
	return live
}

// Register adds a session
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// JoinRoom subscribes a registered session to a room's events
func (h *Hub) JoinRoom(sessionID, roomID string) {
	h.join <- &joinRequest{sessionID: sessionID, roomID: roomID}
}

// Unregister removes a session. It reports whether the session was still
// the player's live connection, false if it had been replaced or closed.
func (h *Hub) Unregister(conn *Connection) bool {
	req := &unregisterRequest{conn: conn, done: make(chan bool, 1)}
	h.unregister <- req
	return <-req.done
}

// CloseRoom disconnects every session in the room (implements service.Broadcaster)
func (h *Hub) CloseRoom(roomID string) {
	h.closeRoom <- roomID
}

// Publish sends an event to everyone in a room (implements service.Broadcaster)
func (h *Hub) Publish(roomID, event string, payload interface{}) {
	h.send(roomID, "", event, payload)
}

// PublishTo sends an event to one player in a room (implements service.Broadcaster)
func (h *Hub) PublishTo(roomID, playerID, event string, payload interface{}) {
	h.send(roomID, playerID, event, payload)
}

func (h *Hub) send(roomID, playerID, event string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to encode event=%s error=%v", event, err)
		return
	}
	data, _ := json.Marshal(&Message{Type: event, Payload: body})
	h.broadcast <- &BroadcastMessage{RoomID: roomID, ToPlayer: playerID, Data: data}
}

// RoomSize returns the number of live sessions in a room
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
