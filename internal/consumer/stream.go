package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

// LiveAction is one play from the live feed as published on the raw stream
type LiveAction struct {
	GameID       string `json:"gameId"`
	ActionNumber int    `json:"actionNumber,omitempty"`
	Clock        string `json:"clock"`
	Period       int    `json:"period"`
	Description  string `json:"description"`
	TeamTricode  string `json:"teamTricode"`
}

// RawRow converts the action into a live-schema row
func (a LiveAction) RawRow() models.RawRow {
	return models.RawRow{
		GameID: a.GameID,
		Schema: models.SchemaLive,
		Index:  a.ActionNumber,
		Fields: map[string]string{
			"clock":       a.Clock,
			"period":      strconv.Itoa(a.Period),
			"description": a.Description,
			"teamTricode": a.TeamTricode,
		},
	}
}

// StreamConsumer reads raw live-feed actions from Redis Streams
type StreamConsumer struct {
	redis      *redis.Client
	consumerID string
	groupName  string
	batchSize  int64
	blockTime  time.Duration
	logger     *zap.Logger
}

// NewStreamConsumer creates a new stream consumer
func NewStreamConsumer(redisClient *redis.Client, consumerID, groupName string, logger *zap.Logger) *StreamConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamConsumer{
		redis:      redisClient,
		consumerID: consumerID,
		groupName:  groupName,
		batchSize:  100,
		blockTime:  5 * time.Second,
		logger:     logger,
	}
}

// WithBatch overrides the read batch size and block time
func (c *StreamConsumer) WithBatch(batchSize int64, blockTime time.Duration) *StreamConsumer {
	if batchSize > 0 {
		c.batchSize = batchSize
	}
	if blockTime > 0 {
		c.blockTime = blockTime
	}
	return c
}

// ConsumeStream reads messages from a Redis stream
// Returns a channel of live actions
func (c *StreamConsumer) ConsumeStream(ctx context.Context, streamKey string) (<-chan Message, <-chan error) {
	messageCh := make(chan Message, c.batchSize)
	errorCh := make(chan error, 1)

	go func() {
		defer close(messageCh)
		defer close(errorCh)

		// Create consumer group if it doesn't exist
		err := c.createConsumerGroup(ctx, streamKey)
		if err != nil {
			errorCh <- fmt.Errorf("failed to create consumer group: %w", err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			default:
				messages, err := c.readMessages(ctx, streamKey)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					select {
					case errorCh <- fmt.Errorf("error reading messages: %w", err):
					default:
					}
					continue
				}

				for _, msg := range messages {
					select {
					case messageCh <- msg:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return messageCh, errorCh
}

// readMessages reads a batch of messages from the stream
func (c *StreamConsumer) readMessages(ctx context.Context, streamKey string) ([]Message, error) {
	streams, err := c.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.groupName,
		Consumer: c.consumerID,
		Streams:  []string{streamKey, ">"},
		Count:    c.batchSize,
		Block:    c.blockTime,
	}).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			// No new messages, not an error
			return nil, nil
		}
		return nil, err
	}

	var messages []Message

	for _, stream := range streams {
		for _, xmsg := range stream.Messages {
			action, err := decodeAction(xmsg.Values)
			if err != nil {
				c.logger.Warn("dropping undecodable message",
					zap.String("stream", streamKey),
					zap.String("id", xmsg.ID),
					zap.Error(err),
				)
				// ACK the message anyway to prevent reprocessing
				if ackErr := c.ackMessage(ctx, streamKey, xmsg.ID); ackErr != nil {
					c.logger.Warn("ack failed", zap.String("id", xmsg.ID), zap.Error(ackErr))
				}
				continue
			}

			messages = append(messages, Message{
				ID:        xmsg.ID,
				Action:    action,
				StreamKey: streamKey,
			})
		}
	}

	return messages, nil
}

func decodeAction(values map[string]interface{}) (LiveAction, error) {
	data, ok := values["data"].(string)
	if !ok {
		return LiveAction{}, fmt.Errorf("message has no data field")
	}

	var action LiveAction
	if err := json.Unmarshal([]byte(data), &action); err != nil {
		return LiveAction{}, fmt.Errorf("error unmarshaling live action: %w", err)
	}
	return action, nil
}

// AckMessage acknowledges a message has been processed
func (c *StreamConsumer) AckMessage(ctx context.Context, streamKey, messageID string) error {
	return c.ackMessage(ctx, streamKey, messageID)
}

func (c *StreamConsumer) ackMessage(ctx context.Context, streamKey, messageID string) error {
	return c.redis.XAck(ctx, streamKey, c.groupName, messageID).Err()
}

// createConsumerGroup creates the consumer group if it doesn't exist
func (c *StreamConsumer) createConsumerGroup(ctx context.Context, streamKey string) error {
	err := c.redis.XGroupCreateMkStream(ctx, streamKey, c.groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Message represents a consumed stream message
type Message struct {
	ID        string
	Action    LiveAction
	StreamKey string
}
