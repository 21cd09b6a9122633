package app

import (
	"sync"

	"quiz-room-service/internal/domain"
)

// Room is the per-room state machine. Every mutation and the broadcasts
// it produces run under the room's own mutex, so each room processes one
// event to completion at a time while distinct rooms proceed in parallel.
type Room struct {
	name string

	mu              sync.Mutex
	state           domain.RoomState
	host            domain.Identity
	participants    []*domain.Participant
	questions       []domain.Question
	index           int
	pointsToWin     int
	timePerQuestion int
	round           *answerBarrier
	subscribers     map[chan domain.Event]struct{}
}

// NewRoom is exported for infrastructure layers that need to seed rooms.
func NewRoom(name string) *Room {
	return &Room{
		name:        name,
		state:       domain.RoomLobby,
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

// Name returns the room's unique key.
func (r *Room) Name() string {
	return r.name
}

// State returns the current lifecycle state.
func (r *Room) State() domain.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Host returns the current host identity, empty for a hostless room.
func (r *Room) Host() domain.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.host
}

// Roster returns the ordered participant snapshot.
func (r *Room) Roster() []domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked()
}

// IsEmpty reports whether the room has no participants.
func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants) == 0
}

// reset reinstates the room as a fresh lobby owned by creator. Existing
// subscriber channels survive so connections already in the room keep
// receiving broadcasts, matching the overwrite semantics of createRoom.
func (r *Room) reset(creator domain.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = domain.RoomLobby
	r.host = creator
	r.participants = []*domain.Participant{{Name: creator}}
	r.questions = nil
	r.index = 0
	r.pointsToWin = 0
	r.timePerQuestion = 0
	r.round = nil
	r.broadcastLocked(domain.UpdatePlayers(r.rosterLocked()))
}

// join adds identity unless already present. Re-join is a no-op beyond
// the roster broadcast. A lazily created room stays hostless here: only
// createRoom and host reassignment set the host.
func (r *Room) join(identity domain.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findLocked(identity) == nil {
		r.participants = append(r.participants, &domain.Participant{Name: identity})
	}
	r.broadcastLocked(domain.UpdatePlayers(r.rosterLocked()))
}

// leave removes identity and reports whether the room is now empty.
// Host departure promotes the earliest-joined remaining participant.
// During a game the departure can satisfy the open round barrier.
func (r *Room) leave(identity domain.Identity) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.participants[:0]
	removed := false
	for _, p := range r.participants {
		if p.Name == identity {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return len(r.participants) == 0
	}
	r.participants = kept

	if len(r.participants) == 0 {
		return true
	}

	r.broadcastLocked(domain.UpdatePlayers(r.rosterLocked()))
	if r.host == identity {
		r.host = r.participants[0].Name
		r.broadcastLocked(domain.Event{
			Type:    domain.EventHostChanged,
			Payload: domain.HostChangedPayload{Host: r.host},
		})
	}

	if r.state == domain.RoomInProgress && r.round != nil && r.round.satisfied(r.participants) {
		r.closeRoundLocked("")
	}
	return false
}

// authorizeStart validates a start request without mutating anything, so
// the question source can be awaited before the transition begins.
func (r *Room) authorizeStart(requester domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if requester != r.host {
		return domain.ErrNotHost
	}
	return nil
}

// launch applies the start transition: questions stored, index reset,
// scoring config recorded, launch and question broadcasts emitted. The
// host is re-checked under the lock since it may have changed while the
// question source was loading.
func (r *Room) launch(requester domain.Identity, questions []domain.Question, pointsToWin, timePerQuestion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if requester != r.host {
		return domain.ErrNotHost
	}

	r.questions = questions
	r.index = 0
	r.pointsToWin = pointsToWin
	r.timePerQuestion = timePerQuestion
	r.round = nil
	r.state = domain.RoomInProgress

	r.broadcastLocked(domain.Event{
		Type: domain.EventLaunchGame,
		Payload: domain.LaunchGamePayload{
			Room:            r.name,
			PointsToWin:     pointsToWin,
			TimePerQuestion: timePerQuestion,
			TotalQuestions:  len(questions),
		},
	})
	r.broadcastLocked(domain.Event{
		Type:    domain.EventStartQuestions,
		Payload: domain.StartQuestionsPayload{Questions: questions},
	})
	return nil
}

// submitAnswer records identity's answer for questionIndex. Stale
// indexes, unknown identities and non-playing states are ignored with no
// broadcast. The round closes once every active participant answered.
func (r *Room) submitAnswer(identity domain.Identity, questionIndex int, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != domain.RoomInProgress || questionIndex != r.index {
		return
	}
	if r.findLocked(identity) == nil {
		return
	}

	if r.round == nil {
		r.round = newAnswerBarrier(r.index)
	}
	if err := r.round.submit(identity, value); err != nil {
		return
	}
	if r.round.satisfied(r.participants) {
		r.closeRoundLocked(identity)
	}
}

// timeout closes the round for questionIndex immediately. Stale indexes
// and non-playing states are ignored; a second timeout for the same
// index is stale by then, so closure stays single-shot.
func (r *Room) timeout(questionIndex int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != domain.RoomInProgress || questionIndex != r.index {
		return
	}
	if r.round == nil {
		r.round = newAnswerBarrier(r.index)
	}
	r.closeRoundLocked("")
}

// closeRoundLocked reveals the answer, scores every recorded submission,
// broadcasts the scoreboard and advances the sequence. Participants who
// never submitted score zero for the round.
func (r *Room) closeRoundLocked(by domain.Identity) {
	question := r.questions[r.index]

	var recorded map[domain.Identity]string
	if r.round != nil {
		r.round.close()
		recorded = r.round.answers()
	}

	r.broadcastLocked(domain.Event{
		Type: domain.EventShowAnswer,
		Payload: domain.ShowAnswerPayload{
			QuestionIndex: r.index,
			CorrectAnswer: question.Answer.Canonical(),
			By:            by,
		},
	})

	for _, p := range r.participants {
		value, ok := recorded[p.Name]
		if !ok {
			continue
		}
		if correct, points := scoreAnswer(question, value); correct {
			p.Score += points
		}
	}
	r.broadcastLocked(domain.ScoreUpdate(r.rosterLocked()))

	r.round = nil
	r.index++
	if r.index >= len(r.questions) || r.winnerLocked() {
		r.state = domain.RoomFinished
	}
}

func (r *Room) winnerLocked() bool {
	if r.pointsToWin <= 0 {
		return false
	}
	for _, p := range r.participants {
		if p.Score >= r.pointsToWin {
			return true
		}
	}
	return false
}

func (r *Room) findLocked(identity domain.Identity) *domain.Participant {
	for _, p := range r.participants {
		if p.Name == identity {
			return p
		}
	}
	return nil
}

func (r *Room) rosterLocked() []domain.Participant {
	roster := make([]domain.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		roster = append(roster, *p)
	}
	return roster
}

// subscribe registers a buffered event channel. The caller must invoke
// the returned cancel function to avoid leaks.
func (r *Room) subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 16)

	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

func (r *Room) broadcastLocked(event domain.Event) {
	for ch := range r.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest buffered event so a slow client cannot
			// block the room.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}
