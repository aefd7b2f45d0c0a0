package service

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RecalculationChannel carries worker wakeups. The payload is irrelevant;
// the worker drains flagged passports from the database on any message.
const RecalculationChannel = "scorer:recalculate"

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) WakeScorer(ctx context.Context) error {
	return s.rdb.Publish(ctx, RecalculationChannel, "1").Err()
}

// Subscribe returns the pub/sub handle for the wakeup channel. The caller
// owns its lifecycle.
func (s *SignalService) Subscribe(ctx context.Context) *redis.PubSub {
	return s.rdb.Subscribe(ctx, RecalculationChannel)
}
