package memory

import (
	"context"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// BankNotifier broadcasts bank changes to subscribers in this process.
type BankNotifier struct {
	mu          sync.Mutex
	subscribers map[chan domain.QuestionBank]struct{}
}

func NewBankNotifier() *BankNotifier {
	return &BankNotifier{subscribers: make(map[chan domain.QuestionBank]struct{})}
}

func (n *BankNotifier) Publish(_ context.Context, bank domain.QuestionBank) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subscribers {
		select {
		case ch <- bank:
		default:
			// only the newest bank matters to a slow subscriber
			select {
			case <-ch:
			default:
			}
			ch <- bank
		}
	}
	return nil
}

func (n *BankNotifier) Subscribe(_ context.Context) (<-chan domain.QuestionBank, func(), error) {
	ch := make(chan domain.QuestionBank, 1)

	n.mu.Lock()
	n.subscribers[ch] = struct{}{}
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		if _, ok := n.subscribers[ch]; ok {
			delete(n.subscribers, ch)
			close(ch)
		}
		n.mu.Unlock()
	}
	return ch, cancel, nil
}
