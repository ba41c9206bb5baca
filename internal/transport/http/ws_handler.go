package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler runs live quiz play: join, answer, and leaderboard pushes.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
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

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type joinedPayload struct {
	Quiz        quizView           `json:"quiz"`
	Leaderboard domain.Leaderboard `json:"leaderboard"`
}

type errorPayload struct {
	Message string `json:"message"`
}

const wsWriteWait = 10 * time.Second

// playerConn is one player's socket. conn allows a single writer, so every
// outbound message goes through out.
type playerConn struct {
	conn   *websocket.Conn
	quizID string
	userID string
	out    chan outboundMessage[any]
	done   chan struct{}
	// writerDone closes when writeLoop exits, so senders never wait on a dead writer.
	writerDone chan struct{}
}

func (c *playerConn) send(typ string, payload any) {
	select {
	case c.out <- outboundMessage[any]{Type: typ, Payload: payload}:
	case <-c.done:
	case <-c.writerDone:
	}
}

func (c *playerConn) fail(err error) {
	c.send("error", errorPayload{Message: err.Error()})
}

// writeLoop drains out. A write that misses its deadline closes the socket,
// which also ends the read loop.
func (c *playerConn) writeLoop() {
	defer close(c.writerDone)
	for msg := range c.out {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			log.Printf("ws write error quiz=%s user=%s: %v", c.quizID, c.userID, err)
			_ = c.conn.Close()
			return
		}
	}
}

func (c *playerConn) forward(updates <-chan domain.Leaderboard, finished chan<- struct{}) {
	defer close(finished)
	for {
		select {
		case lb, ok := <-updates:
			if !ok {
				return
			}
			c.send("leaderboard", lb)
		case <-c.done:
			return
		case <-c.writerDone:
			return
		}
	}
}

// ServeWS upgrades the request and plays one participant until the socket closes.
// Clients join with ?quizId=&userId=&name= after starting a quiz over REST.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	quizID, userID, displayName := q.Get("quizId"), q.Get("userId"), q.Get("name")
	if quizID == "" || userID == "" || displayName == "" {
		http.Error(w, "missing quizId, userId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	quiz, err := h.service.Quiz(ctx, quizID)
	if err != nil {
		writeWSError(conn, err)
		return
	}
	joined, err := h.service.Join(ctx, quizID, userID, displayName)
	if err != nil {
		writeWSError(conn, err)
		return
	}
	defer h.service.Leave(ctx, quizID, userID)

	updates, cancel, err := h.service.Subscribe(ctx, quizID)
	if err != nil {
		writeWSError(conn, err)
		return
	}
	defer cancel()

	c := &playerConn{
		conn:   conn,
		quizID: quizID,
		userID: userID,
		out:    make(chan outboundMessage[any], 16),
		done:   make(chan struct{}),

		writerDone: make(chan struct{}),
	}
	forwardDone := make(chan struct{})
	go c.writeLoop()
	go c.forward(updates, forwardDone)

	c.send("joined", joinedPayload{Quiz: newQuizView(quiz), Leaderboard: joined})
	h.readLoop(ctx, c)

	close(c.done)
	<-forwardDone
	close(c.out)
	<-c.writerDone
}

func (h *WSHandler) readLoop(ctx context.Context, c *playerConn) {
	for {
		var in inboundMessage
		if err := c.conn.ReadJSON(&in); err != nil {
			return
		}
		if in.Type != "answer" {
			c.send("error", errorPayload{Message: "unsupported message type"})
			continue
		}

		var payload answerPayload
		if err := json.Unmarshal(in.Payload, &payload); err != nil {
			c.send("error", errorPayload{Message: "invalid answer payload"})
			continue
		}
		lb, result, err := h.service.SubmitAnswer(ctx, c.quizID, c.userID, domain.AnswerSubmission{
			QuestionID: payload.QuestionID,
			Answer:     payload.Answer,
		})
		if err != nil {
			c.fail(err)
			continue
		}
		c.send("answerResult", result)
		c.send("leaderboard", lb)
	}
}

// writeWSError is for failures before the write loop starts.
func writeWSError(conn *websocket.Conn, err error) {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
}
