package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/signalsfoundry/mission-control/internal/logging"
	"github.com/signalsfoundry/mission-control/model"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient records publishes; methods not overridden panic via the nil
// embedded interface.
type fakeClient struct {
	mqtt.Client

	mu           sync.Mutex
	messages     []published
	publishErr   error
	pending      bool
	connected    bool
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, published{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	if c.pending {
		return &fakeToken{done: make(chan struct{})}
	}
	return completedToken(c.publishErr)
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestMQTTPublisherTopicsAndPayloads(t *testing.T) {
	client := &fakeClient{connected: true}
	pub := NewMQTTPublisher(client, "ops/", logging.Noop())

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := FleetSnapshot{
		SimTime:    now,
		Satellites: []model.Satellite{{ID: "ISS", Name: "International Space Station"}},
	}
	if err := pub.PublishFleet(context.Background(), snap); err != nil {
		t.Fatalf("PublishFleet: %v", err)
	}
	rec := model.CommandRecord{ID: 7, Command: "status", Status: model.CommandSuccess, Timestamp: now}
	if err := pub.PublishCommand(context.Background(), rec); err != nil {
		t.Fatalf("PublishCommand: %v", err)
	}

	if len(client.messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(client.messages))
	}
	if got := client.messages[0].topic; got != "ops/fleet" {
		t.Fatalf("fleet topic = %q", got)
	}
	if got := client.messages[1].topic; got != "ops/commands" {
		t.Fatalf("commands topic = %q", got)
	}
	for _, m := range client.messages {
		if m.qos != 0 || m.retained {
			t.Fatalf("message %q qos=%d retained=%v, want 0/false", m.topic, m.qos, m.retained)
		}
	}

	var decoded model.CommandRecord
	if err := json.Unmarshal(client.messages[1].payload, &decoded); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if decoded.ID != 7 || decoded.Command != "status" {
		t.Fatalf("decoded record = %+v", decoded)
	}
}

func TestMQTTPublisherDefaultPrefix(t *testing.T) {
	pub := NewMQTTPublisher(&fakeClient{}, "", nil)
	if got := pub.Topic("fleet"); got != "mission-control/fleet" {
		t.Fatalf("topic = %q", got)
	}
}

func TestMQTTPublisherErrors(t *testing.T) {
	boom := errors.New("broker down")
	pub := NewMQTTPublisher(&fakeClient{publishErr: boom}, "x", nil)
	if err := pub.PublishCommand(context.Background(), model.CommandRecord{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want broker error", err)
	}

	pending := NewMQTTPublisher(&fakeClient{pending: true}, "x", nil)
	pending.timeout = 10 * time.Millisecond
	if err := pending.PublishCommand(context.Background(), model.CommandRecord{}); !errors.Is(err, ErrPublishTimeout) {
		t.Fatalf("err = %v, want ErrPublishTimeout", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pending.timeout = time.Minute
	if err := pending.PublishCommand(ctx, model.CommandRecord{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestMQTTPublisherClose(t *testing.T) {
	client := &fakeClient{connected: true}
	if err := NewMQTTPublisher(client, "", nil).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !client.disconnected {
		t.Fatalf("expected Disconnect")
	}
}

func TestDialRequiresBroker(t *testing.T) {
	if _, err := Dial(context.Background(), Config{}, nil); err == nil {
		t.Fatalf("expected error without broker")
	}
}

type capturingPublisher struct {
	snaps   []FleetSnapshot
	records []model.CommandRecord
	err     error
}

func (p *capturingPublisher) PublishFleet(_ context.Context, s FleetSnapshot) error {
	p.snaps = append(p.snaps, s)
	return p.err
}

func (p *capturingPublisher) PublishCommand(_ context.Context, r model.CommandRecord) error {
	p.records = append(p.records, r)
	return p.err
}

func (p *capturingPublisher) Close() error { return nil }

type staticFleet struct {
	sats     []model.Satellite
	missions []model.Mission
}

func (f staticFleet) Satellites() []model.Satellite { return f.sats }
func (f staticFleet) Missions() []model.Mission     { return f.missions }

func TestRelayForwardsTicksAndRecords(t *testing.T) {
	pub := &capturingPublisher{err: errors.New("ignored")}
	src := staticFleet{
		sats:     []model.Satellite{{ID: "A"}, {ID: "B"}},
		missions: []model.Mission{{ID: "M1"}},
	}
	relay := NewRelay(pub, src, nil)

	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	relay.Tick(context.Background(), at)
	relay.Record(context.Background(), model.CommandRecord{ID: 3})

	if len(pub.snaps) != 1 || len(pub.snaps[0].Satellites) != 2 || !pub.snaps[0].SimTime.Equal(at) {
		t.Fatalf("snapshots = %+v", pub.snaps)
	}
	if len(pub.records) != 1 || pub.records[0].ID != 3 {
		t.Fatalf("records = %+v", pub.records)
	}
}

func TestRelayDefaultsToNoop(t *testing.T) {
	relay := NewRelay(nil, staticFleet{}, nil)
	relay.Tick(context.Background(), time.Time{})
	relay.Record(context.Background(), model.CommandRecord{})
}
