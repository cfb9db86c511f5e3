package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/messaging"
)

// ErrPublishFailed is returned by FailingPublisher.
var ErrPublishFailed = errors.New("broker unavailable")

// FailingPublisher rejects every event, for testing that publish errors
// never fail the domain operation.
type FailingPublisher struct{}

func (FailingPublisher) Publish(ctx context.Context, routingKey string, event interface{}) error {
	return ErrPublishFailed
}

func (FailingPublisher) Close() error { return nil }

var (
	_ messaging.PublisherInterface = FailingPublisher{}
	_ messaging.PublisherInterface = (*MockPublisher)(nil)
)

// PublishedEvent represents an event that was published to RabbitMQ
type PublishedEvent struct {
	RoutingKey string
	EventData  interface{}
	Timestamp  time.Time
	RawJSON    []byte
}

// MockPublisher records every event in memory and keeps its JSON so tests
// can decode what a subscriber would receive.
type MockPublisher struct {
	mu     sync.RWMutex
	events []PublishedEvent
}

// NewMockPublisher creates a new mock RabbitMQ publisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		events: make([]PublishedEvent, 0),
	}
}

// Publish stores an event in memory (no real RabbitMQ call)
func (m *MockPublisher) Publish(ctx context.Context, routingKey string, eventData interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return err
	}

	event := PublishedEvent{
		RoutingKey: routingKey,
		EventData:  eventData,
		Timestamp:  time.Now(),
		RawJSON:    jsonData,
	}

	m.events = append(m.events, event)
	return nil
}

// Close is a no-op for mock publisher
func (m *MockPublisher) Close() error {
	return nil
}

// GetAllEvents returns all published events
func (m *MockPublisher) GetAllEvents() []PublishedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy
	eventsCopy := make([]PublishedEvent, len(m.events))
	copy(eventsCopy, m.events)
	return eventsCopy
}

// GetEventCount returns the total number of events published
func (m *MockPublisher) GetEventCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.events)
}

func (m *MockPublisher) countByKey(routingKey string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, event := range m.events {
		if event.RoutingKey == routingKey {
			count++
		}
	}
	return count
}

// AssertEventPublished asserts that at least one event with the given routing key was published
func (m *MockPublisher) AssertEventPublished(t *testing.T, routingKey string) {
	t.Helper()

	count := m.countByKey(routingKey)
	if count == 0 {
		t.Errorf("Expected event with routing key '%s' to be published, but found none", routingKey)
	}
}

// AssertEventNotPublished asserts that no events with the given routing key were published
func (m *MockPublisher) AssertEventNotPublished(t *testing.T, routingKey string) {
	t.Helper()

	count := m.countByKey(routingKey)
	if count > 0 {
		t.Errorf("Expected no events with routing key '%s', but found %d", routingKey, count)
	}
}

// AssertEventCount asserts the exact number of events with the given routing key
func (m *MockPublisher) AssertEventCount(t *testing.T, routingKey string, expected int) {
	t.Helper()

	count := m.countByKey(routingKey)
	if count != expected {
		t.Errorf("Expected %d events with routing key '%s', got %d", expected, routingKey, count)
	}
}

// DecodeLastEvent unmarshals the JSON of the latest event published under
// routingKey into target. It fails the test when there is none.
func (m *MockPublisher) DecodeLastEvent(t *testing.T, routingKey string, target interface{}) {
	t.Helper()

	event := m.lastByKey(routingKey)
	if event == nil {
		t.Fatalf("Expected event with routing key '%s', found none", routingKey)
	}
	if err := json.Unmarshal(event.RawJSON, target); err != nil {
		t.Fatalf("Failed to decode event '%s': %v", routingKey, err)
	}
}

func (m *MockPublisher) lastByKey(routingKey string) *PublishedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].RoutingKey == routingKey {
			event := m.events[i]
			return &event
		}
	}
	return nil
}
