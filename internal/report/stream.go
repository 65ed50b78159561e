package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/jwaldner/strikescan/internal/config"
	"github.com/jwaldner/strikescan/internal/logger"
	"github.com/jwaldner/strikescan/internal/models"
)

// kvSetter is the part of a redis client the snapshot cache uses
type kvSetter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisSink caches the latest snapshot of each ticker
type RedisSink struct {
	client kvSetter
	closer func() error
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisSink connects to the redis URL in cfg
func NewRedisSink(cfg config.RedisConfig) (*RedisSink, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	logger.Info.Printf("🗄️  Redis snapshot sink on %s (ttl %v)", opts.Addr, ttl)
	return newRedisSink(client, client.Close, cfg.KeyPrefix, ttl), nil
}

func newRedisSink(client kvSetter, closer func() error, prefix string, ttl time.Duration) *RedisSink {
	if prefix == "" {
		prefix = "strikescan"
	}
	return &RedisSink{client: client, closer: closer, prefix: prefix, ttl: ttl, now: time.Now}
}

func (s *RedisSink) Name() string { return "redis" }

// Key returns the cache key of a ticker snapshot in a run
func (s *RedisSink) Key(runID, ticker string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, runID, ticker)
}

func (s *RedisSink) Write(ctx context.Context, runID string, o models.Outcome) error {
	data, err := json.Marshal(NewPayload(runID, o, s.now()))
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return s.client.Set(ctx, s.Key(runID, o.Ticker), data, s.ttl).Err()
}

func (s *RedisSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// messageWriter is the part of a kafka writer the snapshot stream uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes every outcome keyed by ticker
type KafkaSink struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaSink creates a producer for cfg.Topic
func NewKafkaSink(cfg config.KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, fmt.Errorf("kafka sink needs brokers and a topic")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Gzip,
	}
	logger.Info.Printf("📤 Kafka snapshot sink on %v topic %s", cfg.Brokers, cfg.Topic)
	return newKafkaSink(writer), nil
}

func newKafkaSink(w messageWriter) *KafkaSink {
	return &KafkaSink{writer: w, now: time.Now}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Write(ctx context.Context, runID string, o models.Outcome) error {
	data, err := json.Marshal(NewPayload(runID, o, s.now()))
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(o.Ticker),
		Value: data,
		Headers: []kafka.Header{
			{Key: "run_id", Value: []byte(runID)},
		},
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
