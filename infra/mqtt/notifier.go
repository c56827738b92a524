// Package mqtt pushes assignments to technician mobile clients over MQTT.
// Delivery is best effort: the coordinator logs a failed notification but
// the assignment stands either way.
package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
	"github.com/Cooliber/Fulmark20CRM-sub003/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT notifier.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	// TopicPrefix prefixes per-technician job topics, e.g.
	// fieldservice/technicians/<id>/jobs.
	TopicPrefix string `json:"topic_prefix"`
	// AckTopic carries technician acknowledgments.
	AckTopic          string `json:"ack_topic"`
	QoS               byte   `json:"qos"`
	AckTimeoutSeconds int    `json:"ack_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "dispatch-engine"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "fieldservice/technicians"
	}
	if c.AckTopic == "" {
		c.AckTopic = "fieldservice/ack"
	}
	if c.AckTimeoutSeconds == 0 {
		c.AckTimeoutSeconds = 5
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt: broker is required")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoNotifier publishes job offers on per-technician topics and tracks
// acknowledgments on a shared ack topic.
type PahoNotifier struct {
	cli         pahoClient
	topicPrefix string
	qos         byte
	ackTimeout  time.Duration

	mu       sync.Mutex
	ackChans map[string]chan struct{}
	log      logger.Logger
}

// NewPahoNotifier connects to the broker and subscribes to the ack topic.
func NewPahoNotifier(cfg Config) (*PahoNotifier, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New("mqtt_notifier")
	n := &PahoNotifier{
		topicPrefix: cfg.TopicPrefix,
		qos:         cfg.QoS,
		ackTimeout:  time.Duration(cfg.AckTimeoutSeconds) * time.Second,
		ackChans:    make(map[string]chan struct{}),
		log:         log,
	}

	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(cfg.AckTopic, cfg.QoS, n.onAck); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	n.cli = c
	return n, nil
}

func (n *PahoNotifier) onAck(_ paho.Client, msg paho.Message) {
	var m struct {
		CommandID string `json:"command_id"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		n.log.Errorf("failed to decode ack: %v", err)
		return
	}
	n.mu.Lock()
	if ch, ok := n.ackChans[m.CommandID]; ok {
		select {
		case ch <- struct{}{}:
		default:
		}
		n.log.Infof("received ack %s", m.CommandID)
	}
	n.mu.Unlock()
}

// NotifyAssignment publishes the job offer to the technician's topic and
// waits for an acknowledgment. It returns the command identifier.
func (n *PahoNotifier) NotifyAssignment(technicianID string, job model.ScheduledJob) (string, error) {
	cmdID := uuid.NewString()
	offer := struct {
		CommandID string            `json:"command_id"`
		JobID     string            `json:"job_id"`
		TicketID  string            `json:"ticket_id"`
		Start     time.Time         `json:"start"`
		End       time.Time         `json:"end"`
		Location  model.Coordinates `json:"location"`
		Timestamp int64             `json:"timestamp"`
	}{
		CommandID: cmdID,
		JobID:     job.ID,
		TicketID:  job.TicketID,
		Start:     job.Start,
		End:       job.End,
		Location:  job.Location,
		Timestamp: time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(offer)
	if err != nil {
		return "", err
	}

	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.ackChans[cmdID] = ch
	n.mu.Unlock()
	defer func() {
		n.mu.Lock()
		delete(n.ackChans, cmdID)
		n.mu.Unlock()
	}()

	topic := fmt.Sprintf("%s/%s/jobs", n.topicPrefix, technicianID)
	token := n.cli.Publish(topic, n.qos, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return "", fmt.Errorf("mqtt: publish job offer: %w", err)
	}
	n.log.Infof("sent job offer %s to %s", cmdID, topic)

	select {
	case <-ch:
		return cmdID, nil
	case <-time.After(n.ackTimeout):
		return cmdID, fmt.Errorf("mqtt: no ack for %s within %s", cmdID, n.ackTimeout)
	}
}

// Close disconnects from the broker.
func (n *PahoNotifier) Close() {
	if n.cli != nil && n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
}
