// Package telemetry streams fleet snapshots and command records to an MQTT
// broker for external dashboards.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/signalsfoundry/mission-control/internal/logging"
	"github.com/signalsfoundry/mission-control/model"
)

const (
	// DefaultTopicPrefix roots every published topic.
	DefaultTopicPrefix = "mission-control"

	fleetTopic    = "fleet"
	commandsTopic = "commands"

	defaultPublishTimeout = 5 * time.Second
	disconnectQuiesceMs   = 250
)

// ErrPublishTimeout is returned when the broker does not acknowledge a
// publish in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// FleetSnapshot is the payload published on <prefix>/fleet.
type FleetSnapshot struct {
	SimTime    time.Time         `json:"simTime"`
	Satellites []model.Satellite `json:"satellites"`
	Missions   []model.Mission   `json:"missions"`
}

// Publisher ships telemetry to an external sink.
type Publisher interface {
	PublishFleet(ctx context.Context, snap FleetSnapshot) error
	PublishCommand(ctx context.Context, rec model.CommandRecord) error
	Close() error
}

// NoopPublisher drops everything. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishFleet(context.Context, FleetSnapshot) error         { return nil }
func (NoopPublisher) PublishCommand(context.Context, model.CommandRecord) error { return nil }
func (NoopPublisher) Close() error                                              { return nil }

// Config selects the broker and topic layout.
type Config struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	Timeout     time.Duration
}

// MQTTPublisher publishes JSON payloads at QoS 0 without retain.
type MQTTPublisher struct {
	client  mqtt.Client
	prefix  string
	timeout time.Duration
	log     logging.Logger
}

// Dial connects to cfg.Broker and returns a ready publisher.
func Dial(ctx context.Context, cfg Config, log logging.Logger) (*MQTTPublisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt: broker address is required")
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("mission-control-%d", time.Now().UnixNano())
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeoutOr(cfg.Timeout))

	client := mqtt.NewClient(opts)
	if err := wait(ctx, client.Connect(), timeoutOr(cfg.Timeout)); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, err)
	}
	p := NewMQTTPublisher(client, cfg.TopicPrefix, log)
	p.timeout = timeoutOr(cfg.Timeout)
	p.log.Info(ctx, "connected to MQTT broker",
		logging.String("broker", cfg.Broker),
		logging.String("client_id", clientID),
	)
	return p, nil
}

// NewMQTTPublisher wraps an already configured client.
func NewMQTTPublisher(client mqtt.Client, prefix string, log logging.Logger) *MQTTPublisher {
	if log == nil {
		log = logging.Noop()
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &MQTTPublisher{
		client:  client,
		prefix:  prefix,
		timeout: defaultPublishTimeout,
		log:     log,
	}
}

// Topic returns the full topic for a suffix.
func (p *MQTTPublisher) Topic(suffix string) string {
	return p.prefix + "/" + suffix
}

// PublishFleet sends a fleet snapshot to <prefix>/fleet.
func (p *MQTTPublisher) PublishFleet(ctx context.Context, snap FleetSnapshot) error {
	return p.publish(ctx, fleetTopic, snap)
}

// PublishCommand sends a command record to <prefix>/commands.
func (p *MQTTPublisher) PublishCommand(ctx context.Context, rec model.CommandRecord) error {
	return p.publish(ctx, commandsTopic, rec)
}

func (p *MQTTPublisher) publish(ctx context.Context, suffix string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", suffix, err)
	}
	topic := p.Topic(suffix)
	if err := wait(ctx, p.client.Publish(topic, 0, false, data), p.timeout); err != nil {
		logging.FromContext(ctx, p.log).Warn(ctx, "mqtt publish failed",
			logging.String("topic", topic),
			logging.Err(err),
		)
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() error {
	if p.client.IsConnected() {
		p.client.Disconnect(disconnectQuiesceMs)
	}
	return nil
}

func wait(ctx context.Context, tok mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrPublishTimeout
	}
}

func timeoutOr(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultPublishTimeout
	}
	return d
}
