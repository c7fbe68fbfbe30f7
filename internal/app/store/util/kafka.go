package util

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"hazelmart/pkg/metrics"
)

const serviceName = "hazelmart"

// KafkaProducer - обертка над Kafka writer для отправки событий отзывов
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaProducer создает новый Kafka producer
// brokers - список брокеров в формате ["host:port"], topic - топик событий
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
		// Небольшой батч: события отзывов редкие, важна задержка
		BatchSize:    10,
		BatchTimeout: time.Second,
	}

	return &KafkaProducer{writer: writer, topic: topic}
}

// PublishMessage отправляет сообщение в Kafka
// key используется для партиционирования (ReviewID сохраняет порядок
// событий одного отзыва)
func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	message := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		metrics.RecordKafkaError(serviceName, p.topic, "produce")
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	metrics.RecordKafkaMessageProduced(serviceName, p.topic)
	return nil
}

// Close закрывает Kafka writer и освобождает ресурсы
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
