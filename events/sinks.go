package events

import (
	"context"
	"fmt"
	"time"

	"github.com/mezonai/cryptocurrency/jsonx"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// encodeEvent returns the partition key and JSON body of an event.
func encodeEvent(event LedgerEvent) ([]byte, []byte, error) {
	body, err := jsonx.Marshal(event)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return []byte(event.OpHash()), body, nil
}

// RedisStreamSink appends events to a Redis stream with XADD.
type RedisStreamSink struct {
	client *redis.Client
	stream string
}

func NewRedisStreamSink(addr, stream string) (*RedisStreamSink, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStreamSinkFromClient(client, stream), nil
}

func NewRedisStreamSinkFromClient(client *redis.Client, stream string) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream}
}

func (s *RedisStreamSink) Name() string {
	return "redis:" + s.stream
}

func (s *RedisStreamSink) Send(ctx context.Context, event LedgerEvent) error {
	_, body, err := encodeEvent(event)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"type":    string(event.Type()),
			"op_hash": event.OpHash(),
			"event":   body,
		},
	}
	if _, err := s.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (s *RedisStreamSink) Close() error {
	return s.client.Close()
}

// KafkaSink writes events to a Kafka topic keyed by operation hash.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (s *KafkaSink) Name() string {
	return "kafka:" + s.writer.Topic
}

func (s *KafkaSink) Send(ctx context.Context, event LedgerEvent) error {
	key, body, err := encodeEvent(event)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type())},
		},
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
