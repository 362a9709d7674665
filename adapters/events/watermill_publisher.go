package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/layer-3/venmo/ports"
	"github.com/layer-3/venmo/service"
)

const (
	// AnalyticsTopic carries driver analytics events
	AnalyticsTopic = "venmo.analytics"

	// LifecycleTopic carries app switch lifecycle notifications
	LifecycleTopic = "venmo.lifecycle"
)

// Lifecycle stages published on LifecycleTopic
const (
	StageWillPerformAppSwitch       = "will_perform_app_switch"
	StageDidPerformAppSwitch        = "did_perform_app_switch"
	StageWillProcessAppSwitchReturn = "will_process_app_switch_return"
)

// AnalyticsEvent represents a tracked analytics event
type AnalyticsEvent struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// LifecycleEvent represents an observer notification
type LifecycleEvent struct {
	Stage     string    `json:"stage"`
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// WatermillPublisher publishes analytics and lifecycle events using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	logger    watermill.LoggerAdapter
}

var (
	_ ports.Analytics                            = (*WatermillPublisher)(nil)
	_ service.WillPerformAppSwitchObserver       = (*WatermillPublisher)(nil)
	_ service.DidPerformAppSwitchObserver        = (*WatermillPublisher)(nil)
	_ service.WillProcessAppSwitchReturnObserver = (*WatermillPublisher)(nil)
)

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher, logger watermill.LoggerAdapter) *WatermillPublisher {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &WatermillPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

// Track publishes an analytics event
func (p *WatermillPublisher) Track(ctx context.Context, event string) error {
	return p.publish(ctx, AnalyticsTopic, AnalyticsEvent{
		Name:      event,
		Timestamp: time.Now().UTC(),
	})
}

func (p *WatermillPublisher) WillPerformAppSwitch(d *service.Driver) {
	p.publishStage(d, StageWillPerformAppSwitch)
}

func (p *WatermillPublisher) DidPerformAppSwitch(d *service.Driver) {
	p.publishStage(d, StageDidPerformAppSwitch)
}

func (p *WatermillPublisher) WillProcessAppSwitchReturn(d *service.Driver) {
	p.publishStage(d, StageWillProcessAppSwitchReturn)
}

func (p *WatermillPublisher) publishStage(d *service.Driver, stage string) {
	event := LifecycleEvent{
		Stage:     stage,
		State:     d.State().String(),
		Timestamp: time.Now().UTC(),
	}
	if err := p.publish(context.Background(), LifecycleTopic, event); err != nil {
		// Observers cannot fail the flow
		p.logger.Error("failed to publish lifecycle event", err, watermill.LogFields{"stage": stage})
	}
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
