package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"trivia-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const bankChannel = "quiz:bank:updates"

var errEmptyPayload = errors.New("empty bank payload")

// BankNotifier fans bank changes out across instances with Redis pub/sub.
type BankNotifier struct {
	client *redis.Client
}

func NewBankNotifier(client *redis.Client) *BankNotifier {
	return &BankNotifier{client: client}
}

func (n *BankNotifier) Publish(ctx context.Context, bank domain.QuestionBank) error {
	data, err := json.Marshal(bank)
	if err != nil {
		return fmt.Errorf("marshal bank: %w", err)
	}
	return n.client.Publish(ctx, bankChannel, data).Err()
}

// Subscribe opens a dedicated Redis subscription. The returned cancel closes it.
func (n *BankNotifier) Subscribe(ctx context.Context) (<-chan domain.QuestionBank, func(), error) {
	pubsub := n.client.Subscribe(ctx, bankChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe bank updates: %w", err)
	}

	out := make(chan domain.QuestionBank, 1)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			bank, err := decodeBank(msg.Payload)
			if err != nil {
				log.Printf("dropping bank update: %v", err)
				continue
			}
			select {
			case out <- bank:
			default:
				// only the newest bank matters to a slow subscriber
				select {
				case <-out:
				default:
				}
				out <- bank
			}
		}
	}()

	cancel := func() {
		_ = pubsub.Close()
	}
	return out, cancel, nil
}

func decodeBank(payload string) (domain.QuestionBank, error) {
	if payload == "" {
		return domain.QuestionBank{}, errEmptyPayload
	}
	var bank domain.QuestionBank
	if err := json.Unmarshal([]byte(payload), &bank); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("unmarshal bank: %w", err)
	}
	return bank, nil
}
