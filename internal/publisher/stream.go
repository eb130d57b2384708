package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

// StreamPublisher publishes commentary records to a Redis stream
type StreamPublisher struct {
	redis     *redis.Client
	streamKey string
	maxLen    int64
}

// NewStreamPublisher creates a new stream publisher.
// maxLen <= 0 leaves the stream untrimmed.
func NewStreamPublisher(redisClient *redis.Client, streamKey string, maxLen int64) *StreamPublisher {
	return &StreamPublisher{
		redis:     redisClient,
		streamKey: streamKey,
		maxLen:    maxLen,
	}
}

// StreamKey returns the destination stream (e.g., pbp.commentary.basketball_nba)
func (p *StreamPublisher) StreamKey() string {
	return p.streamKey
}

// Publish publishes one record to the stream under the "data" field
func (p *StreamPublisher) Publish(ctx context.Context, record *models.CommentaryRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("error marshaling commentary record: %w", err)
	}

	_, err = p.redis.XAdd(ctx, p.xaddArgs(data)).Result()
	if err != nil {
		return fmt.Errorf("error publishing to stream %s: %w", p.streamKey, err)
	}

	return nil
}

// PublishBatch publishes multiple records in a single pipeline
func (p *StreamPublisher) PublishBatch(ctx context.Context, records []*models.CommentaryRecord) error {
	if len(records) == 0 {
		return nil
	}

	pipe := p.redis.Pipeline()

	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("error marshaling commentary record: %w", err)
		}
		pipe.XAdd(ctx, p.xaddArgs(data))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error executing publish pipeline: %w", err)
	}

	return nil
}

// Close is a no-op; the Redis client is owned by the caller
func (p *StreamPublisher) Close() error {
	return nil
}

func (p *StreamPublisher) xaddArgs(data []byte) *redis.XAddArgs {
	args := &redis.XAddArgs{
		Stream: p.streamKey,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return args
}
