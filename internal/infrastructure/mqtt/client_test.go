package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

// mockLogger records Error/Warn calls for assertion.
type mockLogger struct {
	mu       sync.Mutex
	errors   []string
	warnings []string
}

func (m *mockLogger) Error(msg string, _ ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) Warn(msg string, _ ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnings = append(m.warnings, msg)
}

// mockMessage implements pahomqtt.Message for handler tests.
type mockMessage struct {
	topic   string
	payload []byte
}

func (m *mockMessage) Duplicate() bool   { return false }
func (m *mockMessage) Qos() byte         { return 1 }
func (m *mockMessage) Retained() bool    { return false }
func (m *mockMessage) Topic() string     { return m.topic }
func (m *mockMessage) MessageID() uint16 { return 1 }
func (m *mockMessage) Payload() []byte   { return m.payload }
func (m *mockMessage) Ack()              {}

func TestPublish_Validation(t *testing.T) {
	c := &Client{}

	tests := []struct {
		name    string
		topic   string
		qos     byte
		payload []byte
		wantErr error
	}{
		{
			name:    "empty topic",
			topic:   "",
			qos:     1,
			wantErr: ErrInvalidTopic,
		},
		{
			name:    "invalid QoS",
			topic:   Topics{}.SectionCompiled("show", "intro"),
			qos:     3,
			wantErr: ErrInvalidQoS,
		},
		{
			name:    "oversized payload",
			topic:   Topics{}.SectionCompiled("show", "intro"),
			qos:     1,
			payload: make([]byte, maxPayloadSize+1),
			wantErr: ErrPublishFailed,
		},
		{
			name:    "wildcard in publication topic",
			topic:   "lumenweave/show/+/section/intro/compiled",
			qos:     1,
			wantErr: ErrInvalidTopic,
		},
		{
			name:    "not connected",
			topic:   Topics{}.SectionCompiled("show", "intro"),
			qos:     1,
			wantErr: ErrNotConnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribe_Validation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}
	noop := func(string, []byte) error { return nil }

	if err := c.Subscribe("", 1, noop); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe(empty topic) error = %v, want ErrInvalidTopic", err)
	}

	if err := c.Subscribe("lumenweave/#", 3, noop); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Subscribe(qos 3) error = %v, want ErrInvalidQoS", err)
	}

	if err := c.Subscribe("lumenweave/#", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe(nil handler) error = %v, want ErrSubscribeFailed", err)
	}

	if err := c.Subscribe("lumenweave/#", 1, noop); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() on disconnected client error = %v, want ErrNotConnected", err)
	}

	if c.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after failed subscribes, want 0", c.SubscriptionCount())
	}
}

func TestValidateFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		wantOK bool
	}{
		{"multi-level tail", "lumenweave/#", true},
		{"single-level wildcards", "lumenweave/show/+/section/+/compiled", true},
		{"concrete topic", Topics{}.SectionCompiled("show", "intro"), true},
		{"bare wildcard", "#", true},
		{"empty", "", false},
		{"levels after hash", "lumenweave/#/compiled", false},
		{"hash glued to level", "lumenweave/show#", false},
		{"plus glued to level", "lumenweave/show+/compiled", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFilter(tt.filter)
			if tt.wantOK && err != nil {
				t.Errorf("validateFilter(%q) = %v, want nil", tt.filter, err)
			}
			if !tt.wantOK && !errors.Is(err, ErrInvalidTopic) {
				t.Errorf("validateFilter(%q) = %v, want ErrInvalidTopic", tt.filter, err)
			}
		})
	}
}

func TestUnsubscribe_Validation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe(empty topic) error = %v, want ErrInvalidTopic", err)
	}

	if err := c.Unsubscribe("lumenweave/#"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Unsubscribe() on disconnected client error = %v, want ErrNotConnected", err)
	}
}

func TestHasSubscription(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}
	topic := Topics{}.AllSectionsCompiled("summer-tour")

	if c.HasSubscription(topic) {
		t.Error("HasSubscription() = true for untracked topic")
	}

	c.subscriptions[topic] = subscription{topic: topic, qos: 1}

	if !c.HasSubscription(topic) {
		t.Error("HasSubscription() = false for tracked topic")
	}
	if c.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", c.SubscriptionCount())
	}
}

func TestWrapHandler_PanicRecovery(t *testing.T) {
	logger := &mockLogger{}
	c := &Client{}
	c.SetLogger(logger)

	handler := c.wrapHandler(func(string, []byte) error {
		panic("handler exploded")
	})

	// Must not propagate the panic.
	handler(nil, &mockMessage{topic: "lumenweave/system/status"})

	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.errors) != 1 {
		t.Fatalf("logged errors = %d, want 1", len(logger.errors))
	}
}

func TestWrapHandler_ErrorLogged(t *testing.T) {
	logger := &mockLogger{}
	c := &Client{}
	c.SetLogger(logger)

	handler := c.wrapHandler(func(string, []byte) error {
		return errors.New("decode failed")
	})

	handler(nil, &mockMessage{topic: "lumenweave/core/template/slow-sweep/updated"})

	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.warnings) != 1 {
		t.Fatalf("logged warnings = %d, want 1", len(logger.warnings))
	}
}

func TestWrapHandler_NilLogger(t *testing.T) {
	c := &Client{}

	handler := c.wrapHandler(func(string, []byte) error {
		panic("no logger set")
	})

	// Panic recovery must not require a logger.
	handler(nil, &mockMessage{topic: "lumenweave/system/status"})
}

func TestHealthCheck_Disconnected(t *testing.T) {
	c := &Client{}

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheck_CancelledContext(t *testing.T) {
	c := &Client{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck() error = %v, want context.Canceled", err)
	}
}

func TestClose_NeverConnected(t *testing.T) {
	c := &Client{}

	if err := c.Close(); err != nil {
		t.Errorf("Close() on never-connected client error = %v, want nil", err)
	}
}

func TestStatusPayloads(t *testing.T) {
	type status struct {
		Status    string `json:"status"`
		ClientID  string `json:"client_id"`
		Reason    string `json:"reason"`
		Timestamp string `json:"timestamp"`
	}

	var online status
	if err := json.Unmarshal([]byte(buildOnlinePayload("lumenweave-core")), &online); err != nil {
		t.Fatalf("online payload is not valid JSON: %v", err)
	}
	if online.Status != "online" || online.ClientID != "lumenweave-core" {
		t.Errorf("online payload = %+v", online)
	}
	if _, err := time.Parse(time.RFC3339, online.Timestamp); err != nil {
		t.Errorf("online timestamp %q is not RFC3339: %v", online.Timestamp, err)
	}

	var offline status
	if err := json.Unmarshal([]byte(buildOfflinePayload("lumenweave-core")), &offline); err != nil {
		t.Fatalf("offline payload is not valid JSON: %v", err)
	}
	if offline.Status != "offline" || offline.Reason != "graceful_shutdown" {
		t.Errorf("offline payload = %+v", offline)
	}
}
