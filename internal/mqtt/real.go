package mqtt

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/nuc-led/internal/led"
)

// DefaultBufferSize is how many messages are kept while disconnected.
const DefaultBufferSize = 100

// Options configures a RealPublisher.
type Options struct {
	Broker     string
	ClientID   string
	Topics     Topics
	BufferSize int
	Logger     *slog.Logger

	// OnConnect, if set, is called after every (re)connection once
	// subscriptions are in place and the buffer has been replayed.
	OnConnect func()
}

// RealPublisher publishes to an actual MQTT broker. Messages published
// while the connection is down are buffered and replayed on reconnect.
type RealPublisher struct {
	client    paho.Client
	topics    Topics
	logger    *slog.Logger
	onConnect func()

	mu      sync.Mutex
	buf     *ringBuffer
	handler MessageHandler
}

// NewRealPublisher connects to the broker. The broker is told to publish
// a retained OFFLINE system event if the connection drops.
func NewRealPublisher(opts Options) (*RealPublisher, error) {
	if opts.ClientID == "" {
		opts.ClientID = "nuc-led"
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	p := &RealPublisher{
		topics:    opts.Topics,
		logger:    opts.Logger,
		onConnect: opts.OnConnect,
		buf:       newRingBuffer(opts.BufferSize, opts.Logger),
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "OFFLINE",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	co := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(opts.Topics.System(), will, 1, true).
		SetOnConnectHandler(p.connected).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.logger.Warn("connection lost", "error", err)
		})

	p.client = paho.NewClient(co)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

// connected subscribes and replays buffered messages. paho calls it on
// every successful connect, including reconnects.
func (p *RealPublisher) connected(c paho.Client) {
	p.logger.Info("connected to broker")

	p.mu.Lock()
	handler := p.handler
	p.mu.Unlock()
	if handler != nil {
		p.subscribe(c, handler)
	}

	p.mu.Lock()
	msgs := p.buf.drainAll()
	p.mu.Unlock()
	if len(msgs) > 0 {
		p.logger.Info("replaying buffered messages", "count", len(msgs))
	}
	for _, m := range msgs {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}

	if p.onConnect != nil {
		p.onConnect()
	}
}

func (p *RealPublisher) subscribe(c paho.Client, handler MessageHandler) {
	filter := p.topics.SetFilter()
	token := c.Subscribe(filter, 1, func(_ paho.Client, m paho.Message) {
		handler(m.Topic(), m.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		p.logger.Warn("subscribe timeout", "topic", filter)
		return
	}
	if err := token.Error(); err != nil {
		p.logger.Warn("subscribe failed", "topic", filter, "error", err)
	}
}

// OnCommand subscribes handler to every LED's set topic. The
// subscription is renewed after each reconnect.
func (p *RealPublisher) OnCommand(handler MessageHandler) {
	p.mu.Lock()
	p.handler = handler
	p.mu.Unlock()
	if p.client.IsConnectionOpen() {
		p.subscribe(p.client, handler)
	}
}

// publish sends a message, or buffers it while the connection is down.
func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.buf.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// PublishState sends the retained state of one LED (QoS 0).
func (p *RealPublisher) PublishState(s led.State) error {
	payload, err := FormatStatePayload(s, time.Now())
	if err != nil {
		return fmt.Errorf("format state payload: %w", err)
	}
	return p.publish(p.topics.State(s.ID), 0, true, payload)
}

// PublishSystem sends a system lifecycle event (QoS 1).
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(p.topics.System(), 1, event.Retained, payload)
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
