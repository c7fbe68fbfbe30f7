package metrics

import (
	"time"
)

// MongoTimer измеряет длительность операции MongoDB
type MongoTimer struct {
	service    string
	operation  string
	collection string
	start      time.Time
}

func NewMongoTimer(service, operation, collection string) *MongoTimer {
	return &MongoTimer{
		service:    service,
		operation:  operation,
		collection: collection,
		start:      time.Now(),
	}
}

func (mt *MongoTimer) ObserveDuration() {
	duration := time.Since(mt.start).Seconds()
	MongoOperationDuration.WithLabelValues(mt.service, mt.operation, mt.collection).Observe(duration)
}

func RecordMongoError(service, operation string) {
	MongoErrors.WithLabelValues(service, operation).Inc()
}

func RecordCacheHit(service, keyPrefix string) {
	RedisCacheHits.WithLabelValues(service, keyPrefix).Inc()
}

func RecordCacheMiss(service, keyPrefix string) {
	RedisCacheMisses.WithLabelValues(service, keyPrefix).Inc()
}

func RecordRedisError(service, operation string) {
	RedisErrors.WithLabelValues(service, operation).Inc()
}

func RecordKafkaMessageProduced(service, topic string) {
	KafkaMessagesProduced.WithLabelValues(service, topic).Inc()
}

func RecordKafkaError(service, topic, operation string) {
	KafkaErrors.WithLabelValues(service, topic, operation).Inc()
}

func RecordRatingRecompute(success bool) {
	if success {
		RatingRecomputes.WithLabelValues("success").Inc()
	} else {
		RatingRecomputes.WithLabelValues("failed").Inc()
	}
}
