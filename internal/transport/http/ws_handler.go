package http

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"quiz-room-service/internal/app"
	"quiz-room-service/internal/auth"
	"quiz-room-service/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.RoomService
	verifier auth.IdentityVerifier
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RoomService, verifier auth.IdentityVerifier) *WSHandler {
	return &WSHandler{
		service:  service,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type roomPayload struct {
	Room string `json:"room"`
}

type startGamePayload struct {
	Room            string `json:"room"`
	Theme           string `json:"theme"`
	PointsToWin     int    `json:"pointsToWin"`
	TimePerQuestion int    `json:"timePerQuestion"`
}

type answerPayload struct {
	Room          string `json:"room"`
	QuestionIndex int    `json:"questionIndex"`
	Answer        string `json:"answer"`
}

type timeoutPayload struct {
	Room          string `json:"room"`
	QuestionIndex int    `json:"questionIndex"`
}

// session is the per-connection record: who the connection is and which
// room it is currently subscribed to. It is threaded through the event
// loop instead of being hung off the socket.
type session struct {
	identity domain.Identity
	room     string
	sub      *app.Subscription
}

// Start-game defaults applied when the client omits fields.
const (
	defaultTheme           = "minecraft"
	defaultPointsToWin     = 100
	defaultTimePerQuestion = 30
)

// ServeWS authenticates the connection, upgrades it and routes inbound
// room events. Verification failure refuses the connection before any
// room interaction is possible.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity, err := h.verifier.Verify(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid or missing token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	sess := &session{identity: identity}

	send := make(chan domain.Event, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	var forwarders sync.WaitGroup

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	// forward pumps one subscription's broadcasts into the send channel.
	// The goroutine exits when the subscription is canceled (its channel
	// closes) or the connection shuts down.
	forward := func(sub *app.Subscription) {
		forwarders.Add(1)
		go func() {
			defer forwarders.Done()
			for {
				select {
				case event, ok := <-sub.Events:
					if !ok {
						return
					}
					select {
					case send <- event:
					case <-closeSignals:
						return
					}
				case <-closeSignals:
					return
				}
			}
		}()
	}

	// enter moves the session into a room: the previous room is left and
	// its subscription canceled first, so a connection is in at most one
	// room at a time.
	enter := func(room string, sub *app.Subscription) {
		if sess.sub != nil {
			sess.sub.Cancel()
			if sess.room != "" && sess.room != room {
				h.service.Leave(ctx, sess.room, sess.identity)
			}
		}
		sess.room = room
		sess.sub = sub
		forward(sub)
	}

	fail := func(message string) {
		select {
		case send <- domain.Event{Type: domain.EventError, Payload: message}:
		case <-closeSignals:
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "createRoom":
			var payload roomPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Room == "" {
				fail("invalid room")
				continue
			}
			sub := h.service.Create(ctx, payload.Room, sess.identity)
			enter(payload.Room, sub)
			send <- domain.Event{Type: domain.EventCreated, Payload: domain.CreatedPayload{Room: payload.Room}}
			log.Printf("%s created room %s", sess.identity, payload.Room)
		case "joinRoom":
			var payload roomPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Room == "" {
				fail("invalid room")
				continue
			}
			sub := h.service.Join(ctx, payload.Room, sess.identity)
			enter(payload.Room, sub)
			log.Printf("%s joined room %s", sess.identity, payload.Room)
		case "startGame":
			payload := startGamePayload{
				Theme:           defaultTheme,
				PointsToWin:     defaultPointsToWin,
				TimePerQuestion: defaultTimePerQuestion,
			}
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail("invalid startGame payload")
				continue
			}
			if err := h.service.StartGame(ctx, payload.Room, sess.identity, payload.Theme, payload.PointsToWin, payload.TimePerQuestion); err != nil {
				fail(err.Error())
				continue
			}
			log.Printf("game launched in room %s (theme=%s)", payload.Room, payload.Theme)
		case "submitAnswer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail("invalid answer payload")
				continue
			}
			h.service.SubmitAnswer(ctx, payload.Room, sess.identity, payload.QuestionIndex, payload.Answer)
		case "timeout":
			var payload timeoutPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail("invalid timeout payload")
				continue
			}
			h.service.Timeout(ctx, payload.Room, payload.QuestionIndex)
		default:
			fail("unsupported message type")
		}
	}

	if sess.sub != nil {
		sess.sub.Cancel()
	}
	if sess.room != "" {
		h.service.Leave(ctx, sess.room, sess.identity)
		log.Printf("%s disconnected from %s", sess.identity, sess.room)
	}

	close(closeSignals)
	forwarders.Wait()
	close(send)
	<-writerDone
}
