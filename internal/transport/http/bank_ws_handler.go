package http

import (
	"log"
	"net/http"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// BankWSHandler pushes every global bank change to connected clients.
type BankWSHandler struct {
	service  *app.BankService
	upgrader websocket.Upgrader
}

func NewBankWSHandler(service *app.BankService) *BankWSHandler {
	return &BankWSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS sends the current bank on connect, then one "bank" message per change.
// A cleared bank arrives with no questions.
func (h *BankWSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("bank ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.service.Subscribe(r.Context())
	if err != nil {
		writeWSError(conn, err)
		return
	}
	defer cancel()

	// The client never sends; reading only notices the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case bank, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(outboundMessage[domain.QuestionBank]{Type: "bank", Payload: bank}); err != nil {
				log.Printf("bank ws write error: %v", err)
				return
			}
		case <-closed:
			return
		}
	}
}
