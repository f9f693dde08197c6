package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fire-alert-service/internal/infrastructure/broadcast"
	"fire-alert-service/internal/infrastructure/config"
	"fire-alert-service/pkg/logger"
)

const (
	mqttConnectRetries = 5
	mqttPublishTimeout = 3 * time.Second
	mqttHandlerTimeout = 10 * time.Second
	mqttRetryPause     = 30 * time.Second
)

var errMQTTStopped = errors.New("mqtt service stopped")

// InterfaceMQTTService bridges sensors and field devices over MQTT
type InterfaceMQTTService interface {
	Start() error
	Stop()
	IsConnected() bool
}

// SubscriptionSource is the part of the broadcast hub the bridge listens on
type SubscriptionSource interface {
	Subscribe() *broadcast.Subscription
	Unsubscribe(sub *broadcast.Subscription)
}

// SensorStatusMessage is the JSON payload sensors publish. A bare FIRE or
// SAFE payload is accepted too.
type SensorStatusMessage struct {
	Status string `json:"status"`
}

// MQTTService feeds sensor status messages into the sensor service and
// republishes hub events to alert and location topics
type MQTTService struct {
	Config        *config.Config
	Client        mqtt.Client
	Sensor        InterfaceSensorService
	Hub           SubscriptionSource
	TopicHandlers map[string]mqtt.MessageHandler

	connected atomic.Bool
	sub       *broadcast.Subscription
	stopOnce  sync.Once
	stopCh    chan struct{}
	wg        sync.WaitGroup
	backoff   time.Duration
	log       zerolog.Logger
}

// NewMQTTService creates the bridge with a paho client built from cfg
func NewMQTTService(cfg *config.Config, sensor InterfaceSensorService, hub SubscriptionSource) InterfaceMQTTService {
	s := newMQTTService(cfg, sensor, hub)
	s.setupMQTTClient()
	return s
}

func newMQTTService(cfg *config.Config, sensor InterfaceSensorService, hub SubscriptionSource) *MQTTService {
	s := &MQTTService{
		Config:  cfg,
		Sensor:  sensor,
		Hub:     hub,
		backoff: time.Second,
		stopCh:  make(chan struct{}),
		log:     logger.WithComponent("mqtt"),
	}
	s.setupTopicHandlers()
	return s
}

func (s *MQTTService) setupMQTTClient() {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.Config.MQTTBrokerURL)
	// unique id so several instances can share a broker
	opts.SetClientID(fmt.Sprintf("%s-%s", s.Config.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)
	opts.SetOrderMatters(true)

	if s.Config.MQTTUsername != "" {
		opts.SetUsername(s.Config.MQTTUsername)
		opts.SetPassword(s.Config.MQTTPassword)
	}

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		s.connected.Store(false)
		s.log.Warn().Err(err).Msg("connection lost")
	})

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		s.connected.Store(true)
		s.log.Info().Str("broker", s.Config.MQTTBrokerURL).Msg("connected")
		if err := s.SubscribeToTopics(); err != nil {
			s.log.Error().Err(err).Msg("subscribe failed")
		}
	})

	opts.SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
		s.log.Info().Msg("reconnecting")
	})

	s.Client = mqtt.NewClient(opts)
}

func (s *MQTTService) setupTopicHandlers() {
	s.TopicHandlers = map[string]mqtt.MessageHandler{
		s.Config.MQTTSensorTopic: s.handleSensorStatus,
	}
}

// 1 Start connects in the background and begins forwarding hub events
func (s *MQTTService) Start() error {
	if s.Client == nil {
		return errors.New("mqtt client not configured")
	}

	s.sub = s.Hub.Subscribe()
	s.wg.Add(1)
	go s.forward(s.sub)

	go s.connectLoop()
	return nil
}

// connectLoop dials until the first connection succeeds or Stop is called.
// paho reconnects on its own only after one successful connect.
func (s *MQTTService) connectLoop() {
	for {
		err := s.Connect()
		if err == nil || errors.Is(err, errMQTTStopped) {
			return
		}
		s.log.Error().Err(err).Dur("retry_in", mqttRetryPause).Msg("initial connection failed")

		select {
		case <-time.After(mqttRetryPause):
		case <-s.stopCh:
			return
		}
	}
}

// 2 Stop detaches from the hub and disconnects
func (s *MQTTService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.sub != nil {
			s.Hub.Unsubscribe(s.sub)
		}
		s.wg.Wait()
		if s.Client != nil && s.Client.IsConnected() {
			s.Client.Disconnect(250)
		}
		s.connected.Store(false)
	})
}

// 3 IsConnected reports the broker connection state
func (s *MQTTService) IsConnected() bool {
	return s.connected.Load() && s.Client != nil && s.Client.IsConnected()
}

// Connect dials the broker with exponential backoff. It returns early once
// Stop has been called.
func (s *MQTTService) Connect() error {
	if s.IsConnected() {
		return nil
	}

	var err error
	for i := 0; i < mqttConnectRetries; i++ {
		token := s.Client.Connect()
		if token.WaitTimeout(5*time.Second) && token.Error() == nil {
			select {
			case <-s.stopCh:
				s.Client.Disconnect(250)
				return errMQTTStopped
			default:
			}
			s.connected.Store(true)
			return nil
		}

		err = token.Error()
		if err == nil {
			err = errors.New("connect timed out")
		}
		if i == mqttConnectRetries-1 {
			break
		}
		wait := s.backoff * time.Duration(1<<uint(i))
		s.log.Warn().Err(err).Int("attempt", i+1).Dur("retry_in", wait).Msg("connect failed")

		select {
		case <-time.After(wait):
		case <-s.stopCh:
			return errMQTTStopped
		}
	}

	return fmt.Errorf("mqtt connect failed after %d attempts: %w", mqttConnectRetries, err)
}

// SubscribeToTopics subscribes every registered topic handler
func (s *MQTTService) SubscribeToTopics() error {
	qos := byte(s.Config.MQTTQoS)

	for topic, handler := range s.TopicHandlers {
		if token := s.Client.Subscribe(topic, qos, handler); token.Wait() && token.Error() != nil {
			return fmt.Errorf("subscribe [%s]: %w", topic, token.Error())
		}
		s.log.Info().Str("topic", topic).Msg("subscribed")
	}
	return nil
}

func (s *MQTTService) handleSensorStatus(_ mqtt.Client, msg mqtt.Message) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("sensor handler panic")
		}
	}()

	raw := parseSensorPayload(msg.Payload())

	ctx, cancel := context.WithTimeout(context.Background(), mqttHandlerTimeout)
	defer cancel()

	if _, err := s.Sensor.UpdateStatus(ctx, raw, SourceMQTT); err != nil {
		s.log.Warn().Err(err).Str("topic", msg.Topic()).Str("payload", raw).Msg("sensor message rejected")
	}
}

func parseSensorPayload(payload []byte) string {
	trimmed := strings.TrimSpace(string(payload))
	if strings.HasPrefix(trimmed, "{") {
		var m SensorStatusMessage
		if err := json.Unmarshal([]byte(trimmed), &m); err == nil {
			return m.Status
		}
	}
	return strings.Trim(trimmed, `"`)
}

func (s *MQTTService) forward(sub *broadcast.Subscription) {
	defer s.wg.Done()

	for msg := range sub.C {
		topic := s.topicFor(msg.Event)
		if topic == "" {
			continue
		}
		if err := s.publishMessage(topic, msg.Data); err != nil {
			s.log.Warn().Err(err).Str("topic", topic).Msg("forward failed")
		}
	}
}

func (s *MQTTService) topicFor(event string) string {
	switch event {
	case broadcast.EventFireAlert:
		return s.Config.MQTTAlertTopic
	case broadcast.EventFireLocation:
		return s.Config.MQTTLocationTopic
	}
	return ""
}

func (s *MQTTService) publishMessage(topic string, payload interface{}) error {
	if !s.IsConnected() {
		return errors.New("mqtt client not connected")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	token := s.Client.Publish(topic, byte(s.Config.MQTTQoS), s.Config.MQTTRetained, data)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return errors.New("publish timed out")
	}
	if token.Error() != nil {
		return fmt.Errorf("publish: %w", token.Error())
	}

	s.log.Debug().Str("topic", topic).Msg("published")
	return nil
}
