// Package progress implements ProgressBus (§4.7): delivery of (room, event,
// payload) publications to subscribers of room, where room = jobId.
// Publication rides NATS core subjects, adapted from the teacher's
// messaging/nats Queue wrapper — no JetStream, so there is no persistence
// and late subscribers miss past events, matching §4.7 exactly.
package progress

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// EventType names the three publications §6 defines.
type EventType string

const (
	EventOperationComplete EventType = "operation-complete"
	EventOperationError    EventType = "operation-error"
	EventJobComplete       EventType = "job-complete"
)

// Envelope is the wire shape published to a room's subject.
type Envelope struct {
	Event   EventType       `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// OperationCompletePayload backs EventOperationComplete.
type OperationCompletePayload struct {
	LeadID    string         `json:"leadId"`
	Operation string         `json:"operation"`
	Data      map[string]any `json:"data"`
	Progress  ProgressCount  `json:"progress"`
}

// ProgressCount is the {completed, total} pair carried on every completion.
type ProgressCount struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// OperationErrorPayload backs EventOperationError.
type OperationErrorPayload struct {
	LeadID    string `json:"leadId"`
	Operation string `json:"operation"`
	Error     string `json:"error"`
}

// JobCompletePayload backs EventJobComplete.
type JobCompletePayload struct {
	JobID          string `json:"jobId"`
	Type           string `json:"type"`
	TotalProcessed int    `json:"totalProcessed"`
}

func subject(room string) string {
	return "progress." + room
}

// Bus publishes to and subscribes on NATS core subjects scoped to a room.
type Bus struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewBus(url string, logger *zap.Logger) (*Bus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("progress: connect nats: %w", err)
	}
	return &Bus{conn: conn, logger: logger}, nil
}

func (b *Bus) publish(room string, event EventType, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("progress: marshal payload: %w", err)
	}
	envelope, err := json.Marshal(Envelope{Event: event, Payload: raw})
	if err != nil {
		return fmt.Errorf("progress: marshal envelope: %w", err)
	}
	return b.conn.Publish(subject(room), envelope)
}

// PublishOperationComplete emits an operation-complete event into room.
func (b *Bus) PublishOperationComplete(room string, payload OperationCompletePayload) error {
	return b.publish(room, EventOperationComplete, payload)
}

// PublishOperationError emits an operation-error event into room.
func (b *Bus) PublishOperationError(room string, payload OperationErrorPayload) error {
	return b.publish(room, EventOperationError, payload)
}

// PublishJobComplete emits the terminal job-complete event into room.
func (b *Bus) PublishJobComplete(room string, payload JobCompletePayload) error {
	return b.publish(room, EventJobComplete, payload)
}

// Subscription is a live subscriber handle for one room. Close unsubscribes.
type Subscription struct {
	sub *nats.Subscription
	ch  chan Envelope

	mu     sync.Mutex
	closed bool
}

// Subscribe joins room; only events published after Subscribe returns are
// delivered — there is no replay of past events (§4.7).
func (b *Bus) Subscribe(room string) (*Subscription, error) {
	ch := make(chan Envelope, 64)

	sub, err := b.conn.Subscribe(subject(room), func(msg *nats.Msg) {
		var env Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			b.logger.Warn("progress: dropping malformed event", zap.Error(err), zap.String("room", room))
			return
		}
		select {
		case ch <- env:
		default:
			b.logger.Warn("progress: subscriber channel full, dropping event", zap.String("room", room))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("progress: subscribe: %w", err)
	}

	return &Subscription{sub: sub, ch: ch}, nil
}

// Events returns the channel events are delivered on.
func (s *Subscription) Events() <-chan Envelope {
	return s.ch
}

// Close unsubscribes. The events channel is not closed — NATS dispatches
// the unsubscribe callback asynchronously, so closing here could race a
// still in-flight delivery; callers stop reading once Close returns.
func (s *Subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.sub.Unsubscribe()
}

// Close releases the underlying NATS connection.
func (b *Bus) Close() {
	b.conn.Close()
}
