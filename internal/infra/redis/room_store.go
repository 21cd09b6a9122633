package redis

import (
	"context"
	"sync"
	"time"

	"quiz-room-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// RoomStore is a Redis-aware implementation of app.RoomRepository.
// Notes:
//   - It still keeps a local in-memory map of rooms to reuse the
//     in-process state machine and broadcast logic.
//   - Redis is used to mark room liveness (and could be extended to
//     share rosters or route cross-instance pub/sub).
//   - For true distribution you'd pair this with a pub/sub projector
//     that fans out room events.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	rooms  map[string]*app.Room
}

func NewRoomStore(client *redis.Client, ttl time.Duration) *RoomStore {
	return &RoomStore{
		client: client,
		ttl:    ttl,
		rooms:  make(map[string]*app.Room),
	}
}

func (s *RoomStore) GetOrCreate(name string) *app.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[name]; ok {
		return room
	}
	room := app.NewRoom(name)
	s.rooms[name] = room
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(name), "1", s.ttl).Err()
	return room
}

func (s *RoomStore) Get(name string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[name]
	return room, ok
}

func (s *RoomStore) DeleteIfEmpty(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[name]
	if !ok {
		return
	}
	if room.IsEmpty() {
		delete(s.rooms, name)
		_ = s.client.Del(context.Background(), s.key(name)).Err()
	}
}

func (s *RoomStore) key(name string) string {
	return "quiz:room:" + name
}
