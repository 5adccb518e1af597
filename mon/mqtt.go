package mon

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/thinkgos/mercury236"
)

// Publisher defaults
const (
	DefaultTopic          = "mercury236/snapshot"
	DefaultConnectTimeout = 10 * time.Second
	DefaultPublishTimeout = 5 * time.Second
)

// ErrPublishTimeout the broker did not acknowledge in time.
var ErrPublishTimeout = errors.New("mon: mqtt publish timeout")

// PublisherConfig holds MQTT publisher configuration.
type PublisherConfig struct {
	Broker         string // e.g. tcp://localhost:1883
	ClientID       string // random when empty
	Username       string
	Password       string
	Topic          string
	QOS            byte
	Retained       bool
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

// Snapshot is the JSON payload published after every poll.
type Snapshot struct {
	Time  time.Time           `json:"time"`
	Loop  uint64              `json:"loop"`
	Code  mercury.ResultCode  `json:"code"`
	Error string              `json:"error,omitempty"`
	Block mercury.OutputBlock `json:"block"`
}

// Publisher publishes every poll result to an MQTT topic.
type Publisher struct {
	client   mqtt.Client
	topic    string
	qos      byte
	retained bool
	timeout  time.Duration
	logger   Logger
}

var _ Handler = (*Publisher)(nil)

// NewPublisher creates an unconnected publisher.
func NewPublisher(cfg PublisherConfig, logger Logger) *Publisher {
	if cfg.ClientID == "" {
		cfg.ClientID = "mercury236-" + uuid.NewString()
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		if logger != nil {
			logger.Errorf("mqtt connection lost: %v", err)
		}
	})
	return newPublisher(mqtt.NewClient(opts), cfg, logger)
}

func newPublisher(client mqtt.Client, cfg PublisherConfig, logger Logger) *Publisher {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = DefaultPublishTimeout
	}
	if logger == nil {
		logger = newStdLogger()
	}
	return &Publisher{
		client:   client,
		topic:    cfg.Topic,
		qos:      cfg.QOS,
		retained: cfg.Retained,
		timeout:  cfg.PublishTimeout,
		logger:   logger,
	}
}

// Connect connects to the broker.
func (sf *Publisher) Connect() error {
	token := sf.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mon: mqtt connect: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (sf *Publisher) Close() {
	sf.client.Disconnect(250)
}

// Publish publishes one snapshot and waits for the broker.
func (sf *Publisher) Publish(s *Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	token := sf.client.Publish(sf.topic, sf.qos, sf.retained, payload)
	if !token.WaitTimeout(sf.timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// ProcResult implement interface Handler
func (sf *Publisher) ProcResult(err error, result *Result) {
	s := &Snapshot{
		Time:  result.Time,
		Loop:  result.Loop,
		Code:  result.Code,
		Block: result.Block,
	}
	if err != nil {
		s.Error = err.Error()
	}
	if err = sf.Publish(s); err != nil {
		sf.logger.Errorf("mqtt publish %s: %v", sf.topic, err)
	}
}
