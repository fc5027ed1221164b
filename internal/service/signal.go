package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/daypaste/dayclip/internal/domain"
)

const eventChannel = "dayclip:events"

// SignalService fans domain events out to every connected realtime client via
// redis pub/sub. Delivery is best-effort: nothing is persisted or replayed.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event domain.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, eventChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime forwards published events to output in publish order until the
// context is cancelled. Each websocket connection runs its own subscription.
func (s *SignalService) Realtime(ctx context.Context, output chan<- domain.Event) {

	pubsub := s.rdb.Subscribe(ctx, eventChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(
					ctx, "failed to decode published event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}

			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
