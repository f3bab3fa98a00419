package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/impostor-backend/internal/entity"
)

// Conn is the outbound side of a client connection. *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type client struct {
	conn          Conn
	writeWait     time.Duration
	writeMu       sync.Mutex
	rosterVersion int
}

func newClient(conn Conn) *client {
	return &client{conn: conn, writeWait: writeWait}
}

// write serialises writes, a websocket connection supports one writer at a time.
// A peer that does not drain its socket within writeWait fails the write.
func (that *client) write(msg Message) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.conn.SetWriteDeadline(time.Now().Add(that.writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	return that.conn.WriteJSON(msg)
}

// Hub routes events to the connections of players by id.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "hub"),
		clients: make(map[string]*client),
	}
}

func (that *Hub) Register(playerID string, target *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	target.rosterVersion = 0
	that.clients[playerID] = target
}

// Unregister drops the player only while it is still bound to target.
func (that *Hub) Unregister(playerID string, target *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if current, ok := that.clients[playerID]; ok && current == target {
		delete(that.clients, playerID)
	}
}

func (that *Hub) Connected(playerID string) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	_, ok := that.clients[playerID]

	return ok
}

func (that *Hub) client(playerID string) *client {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.clients[playerID]
}

// Send delivers one event to one player. Players without a connection are skipped.
// A failed write closes the connection, its read loop then treats the player as gone.
func (that *Hub) Send(playerID, action string, payload any) {
	log := that.logger.With("method", "Send")

	target := that.client(playerID)
	if target == nil {
		return
	}

	msg, err := newMessage(action, payload)
	if err != nil {
		log.Error("failed to build message", "action", action, "error", err)
		return
	}

	if err = target.write(msg); err != nil {
		log.Warn("failed to write message", "player", playerID, "action", action, "error", err)

		that.Unregister(playerID, target)
		if closeErr := target.conn.Close(); closeErr != nil {
			log.Debug("failed to close connection", "player", playerID, "error", closeErr)
		}
	}
}

// Broadcast delivers the same event to every player in the room.
func (that *Hub) Broadcast(room *entity.Room, action string, payload any) {
	for _, player := range room.Players {
		that.Send(player.ID, action, payload)
	}
}

// BroadcastRoster sends the roster snapshot to every player that has not seen this version yet.
func (that *Hub) BroadcastRoster(room *entity.Room) {
	payload := newRosterResponse(room)

	for _, player := range room.Players {
		target := that.client(player.ID)
		if target == nil || !that.markRoster(target, room.RosterVersion) {
			continue
		}

		that.Send(player.ID, eventRosterUpdated, payload)
	}
}

// MarkRoster records that the player has seen the given roster version, e.g. in a join response.
func (that *Hub) MarkRoster(playerID string, version int) {
	if target := that.client(playerID); target != nil {
		that.markRoster(target, version)
	}
}

func (that *Hub) markRoster(target *client, version int) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if target.rosterVersion >= version {
		return false
	}

	target.rosterVersion = version

	return true
}

func newMessage(action string, payload any) (Message, error) {
	msg := Message{Action: action}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Message{}, fmt.Errorf("failed to marshal payload: %w", err)
		}

		msg.Payload = raw
	}

	return msg, nil
}
