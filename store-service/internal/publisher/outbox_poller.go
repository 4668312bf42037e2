package publisher

import (
	"context"
	"time"

	r "github.com/Takamichi23/Nike-microservice/store-service/internal/repository"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTopic = "order-events"
	batchSize    = 100
)

// messageWriter is the part of *kafka.Writer the poller uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OutboxPoller relays order events committed to the outbox table to Kafka.
// Delivery is at-least-once: an event is marked processed only after the
// broker accepted it.
type OutboxPoller struct {
	timeout   time.Duration
	eventTick time.Duration
	repo      r.OutboxRepository
	writer    messageWriter
	log       logrus.FieldLogger
}

func NewOutboxPoller(repo r.OutboxRepository, log logrus.FieldLogger, topic string, brokers ...string) *OutboxPoller {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{
		timeout:   time.Second * 5,
		eventTick: time.Second,
		repo:      repo,
		writer:    w,
		log:       log,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	defer eventTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) Close() error {
	return p.writer.Close()
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, batchSize)
	if err != nil {
		p.log.WithError(err).Error("failed to fetch outbox events")
		return
	}

	for _, event := range events {
		if err := p.publishToKafka(ctx, event); err != nil {
			p.log.WithError(err).WithField("event_id", event.ID).Warn("failed to publish event")
			// keep ordering per order: retry this one on the next tick
			return
		}

		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.log.WithError(err).WithField("event_id", event.ID).Error("failed to mark event as processed")
			continue
		}
		p.log.WithFields(logrus.Fields{
			"event_id":   event.ID,
			"event_type": event.EventType,
			"order_id":   event.AggregateID,
		}).Debug("event published")
	}
}

func (p *OutboxPoller) publishToKafka(ctx context.Context, event *r.OutboxEvent) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id keeps per-order ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}
