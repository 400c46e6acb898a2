package sim

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"wsnsim/internal/telemetry"
)

// DefaultTopicPrefix is the default MQTT topic prefix for simulation rows.
const DefaultTopicPrefix = "wsnsim"

const mqttPublishTimeout = 10 * time.Second

// MQTTConfig holds the connection settings of an MQTTWriter.
type MQTTConfig struct {
	// Broker is the MQTT broker URL (e.g., "tcp://broker.example.com:1883").
	Broker   string
	Username string
	Password string
	UseTLS   bool
	// ClientID is the MQTT client identifier. If empty, a random one is generated.
	ClientID string
	// TopicPrefix defaults to DefaultTopicPrefix.
	TopicPrefix string
	Logger      *slog.Logger
}

// mqttClient is the subset of paho.Client used by the writer.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// MQTTWriter publishes round and result rows as JSON. Round rows go to
// "{prefix}/{run_id}/{protocol}/rounds" at QoS 0; result rows go to
// "{prefix}/{run_id}/{protocol}/result" at QoS 1 and are retained.
type MQTTWriter struct {
	client mqttClient
	prefix string
	log    *slog.Logger
}

// NewMQTTWriter connects to the broker and returns a writer publishing to it.
func NewMQTTWriter(cfg MQTTConfig) (*MQTTWriter, error) {
	if cfg.Broker == "" {
		return nil, errors.New("broker URL is required")
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = DefaultTopicPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "wsnsim-" + uuid.New().String()[:8]
	}
	log := cfg.Logger.WithGroup("mqtt")

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetCleanSession(true).
		SetOrderMatters(false).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Error("MQTT connection lost", "error", err)
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(30 * time.Second) {
		return nil, errors.New("connection timeout")
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("connecting to broker: %w", token.Error())
	}
	log.Info("connected to MQTT broker", "broker", cfg.Broker)
	return &MQTTWriter{client: client, prefix: cfg.TopicPrefix, log: log}, nil
}

func (w *MQTTWriter) topic(runID, protocol, kind string) string {
	return w.prefix + "/" + runID + "/" + protocol + "/" + kind
}

func (w *MQTTWriter) publish(topic string, qos byte, retained bool, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	token := w.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return errors.New("timeout publishing to MQTT")
	}
	if err := token.Error(); err != nil {
		w.log.Error("MQTT publish failed", "topic", topic, "error", err)
		return err
	}
	return nil
}

// WriteRound publishes a round row.
func (w *MQTTWriter) WriteRound(row telemetry.RoundRow) error {
	return w.publish(w.topic(row.RunID, row.Protocol, "rounds"), 0, false, row)
}

// WriteResult publishes a result row as a retained message.
func (w *MQTTWriter) WriteResult(row telemetry.ResultRow) error {
	return w.publish(w.topic(row.RunID, row.Protocol, "result"), 1, true, row)
}

// Close disconnects from the broker.
func (w *MQTTWriter) Close() error {
	w.client.Disconnect(250)
	return nil
}
