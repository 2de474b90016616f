// Package events carries the kafka topics and payloads exchanged between the
// post and media services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicPostEvents = "post_events"

	TypePostCreated = "post.created"
	TypePostDeleted = "post.deleted"
)

// PostEvent is the envelope published for every post mutation. MediaIDs is
// populated on deletion so the media service can clean up orphans.
type PostEvent struct {
	Type     string    `json:"type"`
	PostID   string    `json:"post_id"`
	UserID   string    `json:"user_id"`
	MediaIDs []string  `json:"media_ids,omitempty"`
	At       time.Time `json:"at"`
}

type Producer struct {
	w *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, key string, event PostEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", event.Type, err)
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: payload}); err != nil {
		return fmt.Errorf("events: publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.w.Close()
}

type Consumer struct {
	r *kafka.Reader
}

func NewConsumer(brokers []string, topic, group string) *Consumer {
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  group,
			MinBytes: 1,
			MaxBytes: 1 << 20,
			MaxWait:  500 * time.Millisecond,
		}),
	}
}

// Run consumes until ctx is cancelled. A failing handler fails only that
// message: the error is logged and consumption continues.
func (c *Consumer) Run(ctx context.Context, l *slog.Logger, handle func(context.Context, PostEvent) error) error {
	for {
		msg, err := c.r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("events: read: %w", err)
		}

		var event PostEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			l.Error("event decode failed", "offset", msg.Offset, "error", err)
			continue
		}
		if err := handle(ctx, event); err != nil {
			l.Error("event handler failed", "type", event.Type, "post_id", event.PostID, "error", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.r.Close()
}
