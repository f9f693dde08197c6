package services

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fire-alert-service/internal/domain/models"
	"fire-alert-service/internal/infrastructure/broadcast"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t doneToken) Error() error { return t.err }

type publishedMQTT struct {
	topic   string
	payload []byte
}

// fakeClient records subscriptions and publishes instead of talking to a broker
type fakeClient struct {
	mqtt.Client

	mu         sync.Mutex
	connected  bool
	subscribed map[string]mqtt.MessageHandler
	published  []publishedMQTT
}

func newFakeClient() *fakeClient {
	return &fakeClient{subscribed: make(map[string]mqtt.MessageHandler)}
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) Connect() mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = true
	return doneToken{}
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
}

func (c *fakeClient) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribed[topic] = handler
	return doneToken{}
}

func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, publishedMQTT{topic: topic, payload: payload.([]byte)})
	return doneToken{}
}

func (c *fakeClient) publishes() []publishedMQTT {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]publishedMQTT(nil), c.published...)
}

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

func TestParseSensorPayload(t *testing.T) {
	tests := []struct {
		payload string
		want    string
	}{
		{`{"status":"FIRE"}`, "FIRE"},
		{`{"status":"safe"}`, "safe"},
		{`FIRE`, "FIRE"},
		{`  "SAFE" `, "SAFE"},
		{`{broken`, "{broken"},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSensorPayload([]byte(tt.payload)))
		})
	}
}

func TestMQTTSensorMessageUpdatesStatus(t *testing.T) {
	f := newSensorFixture(t, nil)
	hub := broadcast.NewHub()
	service := newMQTTService(testConfig(), f.service, hub)
	client := newFakeClient()
	service.Client = client

	require.NoError(t, service.SubscribeToTopics())
	handler, ok := client.subscribed["fire/sensor/status"]
	require.True(t, ok)

	handler(client, fakeMessage{topic: "fire/sensor/status", payload: []byte(`{"status":"fire"}`)})
	assert.Equal(t, models.StatusFire, f.service.CurrentStatus().Status)
	assert.Equal(t, int64(1), f.countEvents(t, models.StatusFire))

	handler(client, fakeMessage{topic: "fire/sensor/status", payload: []byte(`smoke`)})
	assert.Equal(t, models.StatusFire, f.service.CurrentStatus().Status)

	handler(client, fakeMessage{topic: "fire/sensor/status", payload: []byte(`SAFE`)})
	assert.Equal(t, models.StatusSafe, f.service.CurrentStatus().Status)
}

func TestMQTTForwardsHubEvents(t *testing.T) {
	hub := broadcast.NewHub()
	hub.Start()
	t.Cleanup(hub.Stop)

	service := newMQTTService(testConfig(), nil, hub)
	client := newFakeClient()
	service.Client = client

	require.NoError(t, service.Start())
	require.Eventually(t, service.IsConnected, 2*time.Second, 10*time.Millisecond)

	eventID := uint(7)
	hub.Publish(broadcast.EventFireAlert, models.FireAlert{Status: models.StatusFire, EventID: &eventID})
	hub.Publish(broadcast.EventFireLocation, models.FireLocation{ID: 7, Latitude: -6.2, Longitude: 106.8, Username: "alice"})
	hub.Publish("unrelated", "ignored")

	require.Eventually(t, func() bool { return len(client.publishes()) == 2 }, 2*time.Second, 10*time.Millisecond)

	got := client.publishes()
	assert.Equal(t, "fire/alert", got[0].topic)
	assert.Equal(t, "fire/location", got[1].topic)

	var alert models.FireAlert
	require.NoError(t, json.Unmarshal(got[0].payload, &alert))
	assert.Equal(t, models.StatusFire, alert.Status)
	assert.Equal(t, uint(7), *alert.EventID)

	service.Stop()
	assert.False(t, service.IsConnected())
	assert.Equal(t, 0, hub.SubscriberCount())
	service.Stop()
}

func TestMQTTPublishRequiresConnection(t *testing.T) {
	service := newMQTTService(testConfig(), nil, broadcast.NewHub())
	service.Client = newFakeClient()

	err := service.publishMessage("fire/alert", map[string]string{"status": "FIRE"})
	assert.Error(t, err)
}

func TestMQTTStartWithoutClient(t *testing.T) {
	service := newMQTTService(testConfig(), nil, broadcast.NewHub())
	assert.Error(t, service.Start())
}

func TestMQTTConnectGivesUp(t *testing.T) {
	service := newMQTTService(testConfig(), nil, broadcast.NewHub())
	service.backoff = time.Millisecond
	service.Client = &refusingClient{fakeClient: newFakeClient()}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- service.Connect() }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-ctx.Done():
		t.Fatal("connect did not give up")
	}
}

func TestMQTTStopInterruptsConnectBackoff(t *testing.T) {
	service := newMQTTService(testConfig(), nil, broadcast.NewHub())
	service.backoff = time.Hour
	client := &refusingClient{fakeClient: newFakeClient()}
	service.Client = client

	done := make(chan error, 1)
	go func() { done <- service.Connect() }()

	require.Eventually(t, func() bool { return client.attempts.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	service.Stop()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errMQTTStopped)
	case <-time.After(2 * time.Second):
		t.Fatal("connect kept waiting after stop")
	}
	assert.Equal(t, int32(1), client.attempts.Load())
}

func TestMQTTStartKeepsDialingUntilStopped(t *testing.T) {
	service := newMQTTService(testConfig(), nil, broadcast.NewHub())
	service.backoff = time.Millisecond
	client := &refusingClient{fakeClient: newFakeClient()}
	service.Client = client

	require.NoError(t, service.Start())
	require.Eventually(t, func() bool { return client.attempts.Load() >= mqttConnectRetries }, 2*time.Second, 5*time.Millisecond)

	service.Stop()
	// the pause between rounds is interrupted, so no further rounds start
	attempts := client.attempts.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, attempts, client.attempts.Load())
	assert.False(t, service.IsConnected())
}

type refusingClient struct {
	*fakeClient
	attempts atomic.Int32
}

func (c *refusingClient) Connect() mqtt.Token {
	c.attempts.Add(1)
	return doneToken{err: assert.AnError}
}
