package service

import (
	"context"
	"fmt"
	"time"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/kafka"
	"github.com/google/uuid"
)

// EventPublisher defines the interface for publishing account events
type EventPublisher interface {
	// PublishPlanChanged publishes a plan.changed event
	PublishPlanChanged(ctx context.Context, userID string, quota *domain.QuotaState, source domain.PlanChangeSource) error

	// PublishAIUsage publishes an ai.usage event
	PublishAIUsage(ctx context.Context, userID string, decision *domain.Decision) error

	// Close closes the event publisher
	Close() error
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "account-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "learning-api"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "learning-api-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishPlanChanged publishes a plan.changed event
func (p *KafkaEventPublisher) PublishPlanChanged(ctx context.Context, userID string, quota *domain.QuotaState, source domain.PlanChangeSource) error {
	return p.publishEvent(ctx, domain.EventPlanChanged, userID, &domain.PlanChangedData{
		Plan:       quota.Plan,
		TokensLeft: quota.TokensLeft,
		Source:     source,
	})
}

// PublishAIUsage publishes an ai.usage event
func (p *KafkaEventPublisher) PublishAIUsage(ctx context.Context, userID string, decision *domain.Decision) error {
	return p.publishEvent(ctx, domain.EventAIUsage, userID, &domain.AIUsageData{
		Plan:       decision.Plan,
		TokensLeft: decision.TokensLeft,
	})
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// publishEvent publishes an account event to Kafka
func (p *KafkaEventPublisher) publishEvent(ctx context.Context, eventType domain.EventType, userID string, data interface{}) error {
	event := &domain.AccountEvent{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		UserID:     userID,
		OccurredAt: time.Now(),
		Data:       data,
	}

	headers := map[string]string{
		"event_type":   string(eventType),
		"event_id":     event.EventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	if err := p.producer.ProduceJSON(ctx, p.topic, event.Key(), event, headers); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	return nil
}

// NoOpEventPublisher is used when Kafka is disabled
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a publisher that drops every event
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

func (p *NoOpEventPublisher) PublishPlanChanged(ctx context.Context, userID string, quota *domain.QuotaState, source domain.PlanChangeSource) error {
	return nil
}

func (p *NoOpEventPublisher) PublishAIUsage(ctx context.Context, userID string, decision *domain.Decision) error {
	return nil
}

func (p *NoOpEventPublisher) Close() error {
	return nil
}
