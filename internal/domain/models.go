package domain

import (
	"encoding/json"
	"strings"
)

// Identity is the authenticated name of a connection, opaque to the core.
type Identity string

// Participant is one identity attached to a room with an accumulated score.
type Participant struct {
	Name  Identity `json:"username"`
	Score int      `json:"score"`
}

// AnswerSpec is the set of accepted answers for a question. Its JSON form
// is either a bare string (one accepted answer) or an array of strings,
// matching the theme files shipped with the frontend.
type AnswerSpec struct {
	accepted []string
}

// Exact builds a spec accepting a single answer.
func Exact(answer string) AnswerSpec {
	return AnswerSpec{accepted: []string{answer}}
}

// OneOf builds a spec accepting any of the given answers.
func OneOf(answers ...string) AnswerSpec {
	return AnswerSpec{accepted: append([]string(nil), answers...)}
}

// Matches reports whether the submission equals an accepted answer after
// normalization: surrounding whitespace trimmed, lowercased, both sides.
func (a AnswerSpec) Matches(submission string) bool {
	normalized := normalize(submission)
	for _, candidate := range a.accepted {
		if normalize(candidate) == normalized {
			return true
		}
	}
	return false
}

// Canonical returns the display form of the accepted answer: the single
// answer for an exact spec, or the first candidate of a set.
func (a AnswerSpec) Canonical() string {
	if len(a.accepted) == 0 {
		return ""
	}
	return a.accepted[0]
}

// IsZero reports whether the spec accepts nothing.
func (a AnswerSpec) IsZero() bool {
	return len(a.accepted) == 0
}

func (a *AnswerSpec) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		a.accepted = []string{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	a.accepted = many
	return nil
}

func (a AnswerSpec) MarshalJSON() ([]byte, error) {
	if len(a.accepted) == 1 {
		return json.Marshal(a.accepted[0])
	}
	return json.Marshal(a.accepted)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DefaultPoints is awarded for a correct answer when the question does
// not carry its own point value.
const DefaultPoints = 10

// Question is one quiz question. The prompt is relayed to clients as-is;
// only Answer and Points matter to the scorer.
type Question struct {
	Prompt string     `json:"question"`
	Answer AnswerSpec `json:"answer"`
	Points int        `json:"points,omitempty"`
}

// PointValue returns the points awarded for a correct answer, defaulting
// when the question does not set one.
func (q Question) PointValue() int {
	if q.Points > 0 {
		return q.Points
	}
	return DefaultPoints
}

// RoomState tracks the lifecycle of a room.
type RoomState int

const (
	// RoomLobby is the initial state: participants gather, the host may start.
	RoomLobby RoomState = iota
	// RoomInProgress means the question sequence is being played.
	RoomInProgress
	// RoomFinished is terminal; answer and timeout events are ignored.
	RoomFinished
)

func (s RoomState) String() string {
	switch s {
	case RoomLobby:
		return "lobby"
	case RoomInProgress:
		return "inProgress"
	case RoomFinished:
		return "finished"
	default:
		return "unknown"
	}
}
