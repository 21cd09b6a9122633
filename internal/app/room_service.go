package app

import (
	"context"

	"quiz-room-service/internal/domain"
)

// RoomRepository abstracts how the room registry is stored (in-memory,
// Redis-marked, etc).
type RoomRepository interface {
	GetOrCreate(name string) *Room
	Get(name string) (*Room, bool)
	DeleteIfEmpty(name string)
}

// ThemeRepository loads the ordered question sequence for a theme
// (from cache/backing store).
type ThemeRepository interface {
	GetTheme(ctx context.Context, name string) ([]domain.Question, error)
}

// Subscription is a live feed of one room's broadcasts. Cancel must be
// called when the connection leaves the room or drops.
type Subscription struct {
	Events <-chan domain.Event
	cancel func()
}

// Cancel detaches the subscription from the room.
func (s *Subscription) Cancel() {
	s.cancel()
}

// RoomService contains the room coordination use cases. Methods follow
// run-to-completion semantics per room: every mutation and the
// broadcasts it triggers finish before the next event for that room.
type RoomService struct {
	rooms  RoomRepository
	themes ThemeRepository
}

func NewRoomService(rooms RoomRepository, themes ThemeRepository) *RoomService {
	return &RoomService{rooms: rooms, themes: themes}
}

// Create makes identity the sole participant and host of the named room,
// replacing any previous room state under that name. The returned
// subscription already covers the creation roster broadcast.
func (s *RoomService) Create(_ context.Context, name string, identity domain.Identity) *Subscription {
	room := s.rooms.GetOrCreate(name)
	events, cancel := room.subscribe()
	room.reset(identity)
	return &Subscription{Events: events, cancel: cancel}
}

// Join adds identity to the named room, creating a hostless lobby when
// the room does not exist yet. Re-joining only refreshes the
// subscription.
func (s *RoomService) Join(_ context.Context, name string, identity domain.Identity) *Subscription {
	room := s.rooms.GetOrCreate(name)
	events, cancel := room.subscribe()
	room.join(identity)
	return &Subscription{Events: events, cancel: cancel}
}

// Leave removes identity from the room and deletes the room the moment
// it has no participants left. Unknown rooms are ignored.
func (s *RoomService) Leave(_ context.Context, name string, identity domain.Identity) {
	room, ok := s.rooms.Get(name)
	if !ok {
		return
	}
	if room.leave(identity) {
		s.rooms.DeleteIfEmpty(name)
	}
}

// StartGame moves the room into play. Only the host may start; a theme
// miss aborts the transition with the room left untouched. The question
// source is awaited before the transition begins so no suspension occurs
// mid-mutation.
func (s *RoomService) StartGame(ctx context.Context, name string, requester domain.Identity, theme string, pointsToWin, timePerQuestion int) error {
	room, ok := s.rooms.Get(name)
	if !ok {
		return domain.ErrRoomNotFound
	}
	if err := room.authorizeStart(requester); err != nil {
		return err
	}

	questions, err := s.themes.GetTheme(ctx, theme)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		// An empty pack would start a game with nothing to play.
		return domain.ErrThemeNotFound
	}
	return room.launch(requester, questions, pointsToWin, timePerQuestion)
}

// SubmitAnswer records identity's answer for the question index. Unknown
// rooms, stale indexes and unknown participants are silently ignored.
func (s *RoomService) SubmitAnswer(_ context.Context, name string, identity domain.Identity, questionIndex int, value string) {
	room, ok := s.rooms.Get(name)
	if !ok {
		return
	}
	room.submitAnswer(identity, questionIndex, value)
}

// Timeout closes the round for the question index on the client's
// expiry signal. Unknown rooms and stale indexes are silently ignored.
func (s *RoomService) Timeout(_ context.Context, name string, questionIndex int) {
	room, ok := s.rooms.Get(name)
	if !ok {
		return
	}
	room.timeout(questionIndex)
}
