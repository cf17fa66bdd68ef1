package videocall

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

// PresenceEvent is broadcast to everyone in a room when a participant
// joins or leaves.
type PresenceEvent struct {
	Type      string `json:"type"` // "joined", "left", "roster", "error"
	RoomID    string `json:"roomId,omitempty"`
	UserID    string `json:"userId,omitempty"`
	Role      string `json:"role,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Roster    []struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	} `json:"roster,omitempty"`
}

type presenceConn struct {
	conn   *websocket.Conn
	userID string
	role   string
}

// Presence tracks who is connected to each consultation room over
// WebSocket and stamps joinedAt/leftAt on the stored room.
type Presence struct {
	store  RoomStore
	logger *logging.Logger

	mu    sync.RWMutex
	rooms map[string][]*presenceConn
}

func NewPresence(store RoomStore, logger *logging.Logger) *Presence {
	if logger == nil {
		logger = logging.Default()
	}
	return &Presence{store: store, logger: logger, rooms: make(map[string][]*presenceConn)}
}

// HandleWebSocket upgrades /video-calls/ws?roomId=...&userId=... and keeps
// the connection registered until the peer disconnects.
func (p *Presence) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		p.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (p *Presence) serveWS(conn *websocket.Conn, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	userID := r.URL.Query().Get("userId")
	if roomID == "" || userID == "" {
		_ = websocket.JSON.Send(conn, PresenceEvent{Type: "error"})
		return
	}

	ctx := context.Background()
	room, err := p.store.GetByRoomID(ctx, roomID)
	if err != nil {
		_ = websocket.JSON.Send(conn, PresenceEvent{Type: "error"})
		return
	}
	if room.Expired(time.Now()) {
		_ = websocket.JSON.Send(conn, PresenceEvent{Type: "error"})
		return
	}

	role := roleFor(room, userID)
	pc := &presenceConn{conn: conn, userID: userID, role: role}

	p.register(roomID, pc)
	p.stampJoin(ctx, room, userID)
	p.broadcast(roomID, PresenceEvent{
		Type:      "joined",
		RoomID:    roomID,
		UserID:    userID,
		Role:      role,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	p.sendRoster(roomID, pc)

	// Block until the client goes away; presence has no inbound protocol
	// beyond the connection itself.
	var discard string
	for {
		if err := websocket.Message.Receive(conn, &discard); err != nil {
			break
		}
	}

	p.unregister(roomID, pc)
	p.stampLeave(ctx, roomID, userID)
	p.broadcast(roomID, PresenceEvent{
		Type:      "left",
		RoomID:    roomID,
		UserID:    userID,
		Role:      role,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func roleFor(room *Room, userID string) string {
	for _, part := range room.Participants {
		if part.ID == userID {
			return part.Role
		}
	}
	return "patient"
}

func (p *Presence) register(roomID string, pc *presenceConn) {
	p.mu.Lock()
	p.rooms[roomID] = append(p.rooms[roomID], pc)
	p.mu.Unlock()
}

func (p *Presence) unregister(roomID string, pc *presenceConn) {
	p.mu.Lock()
	conns := p.rooms[roomID]
	for i, c := range conns {
		if c == pc {
			p.rooms[roomID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(p.rooms[roomID]) == 0 {
		delete(p.rooms, roomID)
	}
	p.mu.Unlock()
}

func (p *Presence) broadcast(roomID string, event PresenceEvent) {
	p.mu.RLock()
	conns := append([]*presenceConn(nil), p.rooms[roomID]...)
	p.mu.RUnlock()

	for _, c := range conns {
		if err := websocket.JSON.Send(c.conn, event); err != nil {
			p.logger.Debug("presence send failed", "room", roomID, "user", c.userID, "error", err)
		}
	}
}

func (p *Presence) sendRoster(roomID string, pc *presenceConn) {
	p.mu.RLock()
	event := PresenceEvent{Type: "roster", RoomID: roomID}
	for _, c := range p.rooms[roomID] {
		event.Roster = append(event.Roster, struct {
			UserID string `json:"userId"`
			Role   string `json:"role"`
		}{UserID: c.userID, Role: c.role})
	}
	p.mu.RUnlock()
	_ = websocket.JSON.Send(pc.conn, event)
}

func (p *Presence) stampJoin(ctx context.Context, room *Room, userID string) {
	now := time.Now().UTC().Format(time.RFC3339)
	changed := false
	for i := range room.Participants {
		if room.Participants[i].ID == userID {
			room.Participants[i].JoinedAt = now
			room.Participants[i].LeftAt = ""
			changed = true
		}
	}
	if room.Status == RoomCreated {
		room.Status = RoomActive
		changed = true
	}
	if changed {
		if err := p.store.Save(ctx, room); err != nil {
			p.logger.Error("failed to stamp join", "room", room.RoomID, "error", err)
		}
	}
}

func (p *Presence) stampLeave(ctx context.Context, roomID, userID string) {
	room, err := p.store.GetByRoomID(ctx, roomID)
	if err != nil {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for i := range room.Participants {
		if room.Participants[i].ID == userID {
			room.Participants[i].LeftAt = now
		}
	}
	if err := p.store.Save(ctx, room); err != nil {
		p.logger.Error("failed to stamp leave", "room", roomID, "error", err)
	}
}
