package domain

// Event is one outbound broadcast unit. Events for a room are delivered
// to every subscriber in the exact order the room produced them.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Outbound event types.
const (
	EventUpdatePlayers  = "updatePlayers"
	EventCreated        = "created"
	EventLaunchGame     = "launchGame"
	EventStartQuestions = "startQuestions"
	EventScoreUpdate    = "scoreUpdate"
	EventShowAnswer     = "showAnswer"
	EventHostChanged    = "hostChanged"
	EventError          = "errorMsg"
)

// CreatedPayload acknowledges room creation to the creator.
type CreatedPayload struct {
	Room string `json:"room"`
}

// LaunchGamePayload announces that the game has started.
type LaunchGamePayload struct {
	Room            string `json:"room"`
	PointsToWin     int    `json:"pointsToWin"`
	TimePerQuestion int    `json:"timePerQuestion"`
	TotalQuestions  int    `json:"totalQuestions"`
}

// StartQuestionsPayload carries the full question sequence; clients
// handle pagination themselves.
type StartQuestionsPayload struct {
	Questions []Question `json:"questions"`
}

// ShowAnswerPayload reveals the accepted answer once a round closes. By
// names the participant whose submission closed the round, empty when
// the round closed on a timeout or departure.
type ShowAnswerPayload struct {
	QuestionIndex int      `json:"questionIndex"`
	CorrectAnswer string   `json:"correctAnswer"`
	By            Identity `json:"by,omitempty"`
}

// HostChangedPayload announces host reassignment after the host left.
type HostChangedPayload struct {
	Host Identity `json:"host"`
}

// UpdatePlayers builds a roster event from an ordered participant list.
func UpdatePlayers(participants []Participant) Event {
	names := make([]Identity, 0, len(participants))
	for _, p := range participants {
		names = append(names, p.Name)
	}
	return Event{Type: EventUpdatePlayers, Payload: names}
}

// ScoreUpdate builds a scoreboard event from an ordered participant list.
func ScoreUpdate(participants []Participant) Event {
	snapshot := make([]Participant, len(participants))
	copy(snapshot, participants)
	return Event{Type: EventScoreUpdate, Payload: snapshot}
}
