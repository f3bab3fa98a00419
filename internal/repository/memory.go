package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/impostor-backend/internal/apperror"
	"github.com/rocketscienceinc/impostor-backend/internal/entity"
)

// memoryStore keeps JSON snapshots so callers never share pointers with the store,
// the same way they never do with Redis.
type memoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (that *memoryStore) set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.data[key] = raw

	return nil
}

func (that *memoryStore) get(key string, out any) (bool, error) {
	that.mu.RLock()
	raw, ok := that.data[key]
	that.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return true, nil
}

func (that *memoryStore) del(key string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.data, key)
}

type memoryRoom struct {
	store *memoryStore
}

// NewMemoryRoomRepository keeps rooms in process memory. Rooms never expire.
func NewMemoryRoomRepository() RoomRepository {
	return &memoryRoom{store: newMemoryStore()}
}

func (that *memoryRoom) CreateOrUpdate(_ context.Context, room *entity.Room) error {
	return that.store.set(roomKey(room.Code), room)
}

func (that *memoryRoom) GetByCode(_ context.Context, code string) (*entity.Room, error) {
	var room entity.Room

	found, err := that.store.get(roomKey(code), &room)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, apperror.ErrRoomNotFound
	}

	return &room, nil
}

func (that *memoryRoom) DeleteByCode(_ context.Context, code string) error {
	that.store.del(roomKey(code))
	return nil
}

func (that *memoryRoom) Exists(_ context.Context, code string) (bool, error) {
	that.store.mu.RLock()
	defer that.store.mu.RUnlock()

	_, ok := that.store.data[roomKey(code)]

	return ok, nil
}

type memoryPlayer struct {
	store *memoryStore
}

func NewMemoryPlayerRepository() PlayerRepository {
	return &memoryPlayer{store: newMemoryStore()}
}

func (that *memoryPlayer) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	return that.store.set(playerKey(player.ID), player)
}

func (that *memoryPlayer) GetByID(_ context.Context, id string) (*entity.Player, error) {
	var player entity.Player

	found, err := that.store.get(playerKey(id), &player)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, apperror.ErrPlayerNotFound
	}

	return &player, nil
}

func (that *memoryPlayer) DeleteByID(_ context.Context, id string) error {
	that.store.del(playerKey(id))
	return nil
}
