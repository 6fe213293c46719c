package mqtt

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sweeney/netpowerswitch/internal/logic"
)

const (
	publishTimeout = 5 * time.Second
	outboxSize     = 64
)

// RealPublisher publishes to an actual MQTT broker.
// Messages published while disconnected are queued and replayed on reconnect.
type RealPublisher struct {
	client paho.Client

	mu        sync.Mutex
	pending   *outbox
	connected bool // at least one successful connect so far
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is established in the background and retried until Close.
func NewRealPublisher(broker string) *RealPublisher {
	p := &RealPublisher{pending: newOutbox(outboxSize)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("netpowerswitch-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(willPayload()), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	reconnect := p.connected
	p.connected = true
	queued := p.pending.drain()
	p.mu.Unlock()

	if reconnect {
		log.Printf("mqtt: reconnected")
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		c.Publish(TopicSystem, 1, false, payload)
	} else {
		log.Printf("mqtt: connected")
	}
	replay(c, queued)
}

func replay(c paho.Client, msgs []bufferedMsg) {
	for _, m := range msgs {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
	if len(msgs) > 0 {
		log.Printf("mqtt: replayed %d queued messages", len(msgs))
	}
}

// publish sends payload, or queues it and returns ErrQueued while the
// connection is down.
func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.pending.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()

		// paho marks the connection open before running onConnect, so a
		// connect that landed after the check above may already have drained
		// the outbox without this message.
		if !p.client.IsConnectionOpen() {
			return ErrQueued
		}
		p.mu.Lock()
		queued := p.pending.drain()
		p.mu.Unlock()
		replay(p.client, queued)
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Publish sends a toggle event to the MQTT broker.
// QoS 0 (at-most-once), not retained.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.publish(Topic, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	err = p.publish(TopicSystem, 1, event.Retained, payload)
	if err != nil && !errors.Is(err, ErrQueued) {
		return fmt.Errorf("system %s: %w", event.Event, err)
	}
	return err
}

// IsConnected reports whether the broker connection is currently open.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
// Messages still queued are discarded.
func (p *RealPublisher) Close() error {
	p.mu.Lock()
	if n := p.pending.len(); n > 0 {
		log.Printf("mqtt: discarding %d unsent messages", n)
	}
	p.mu.Unlock()

	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
