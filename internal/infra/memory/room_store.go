package memory

import (
	"sync"

	"quiz-room-service/internal/app"
)

// RoomStore is an in-memory implementation of app.RoomRepository.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*app.Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*app.Room),
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
	}
}
