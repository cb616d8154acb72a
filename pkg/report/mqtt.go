package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"

	"github.com/herlein/activescan/pkg/logging"
	"github.com/herlein/activescan/pkg/scan"
)

// MQTTConfig configures the broker sink
type MQTTConfig struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Username string
	Password string
	Topic    string // root topic; events go to <Topic>/<kind>
	QoS      byte
}

// publisher is the part of MQTT.Client the sink uses
type publisher interface {
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) MQTT.Token
	Disconnect(quiesce uint)
}

// MQTTSink publishes every event as JSON. Beacons are additionally retained
// per network under <Topic>/networks/<pan>/<source>.
type MQTTSink struct {
	client  publisher
	topic   string
	qos     byte
	dropped atomic.Uint64
}

// NewMQTTSink configures a paho client and starts connecting in the
// background; events reported before the connection is up are dropped.
func NewMQTTSink(config MQTTConfig) (*MQTTSink, error) {
	if config.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is empty")
	}
	if config.ClientID == "" {
		config.ClientID = fmt.Sprintf("activescan-%d", time.Now().UnixNano()%100000)
	}
	if config.Topic == "" {
		config.Topic = "activescan"
	}

	opts := MQTT.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(1 * time.Minute)
	if config.Username != "" {
		opts.SetUsername(config.Username)
	}
	if config.Password != "" {
		opts.SetPassword(config.Password)
	}
	opts.SetOnConnectHandler(func(MQTT.Client) {
		logging.Infof("MQTT: connected to %s", config.Broker)
	})
	opts.SetConnectionLostHandler(func(_ MQTT.Client, err error) {
		logging.Warnf("MQTT: connection lost: %v", err)
	})

	client := MQTT.NewClient(opts)
	go func() {
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			logging.Warnf("MQTT: initial connection attempt failed: %v (retrying)", token.Error())
		}
	}()

	return newMQTTSink(client, config), nil
}

func newMQTTSink(client publisher, config MQTTConfig) *MQTTSink {
	return &MQTTSink{
		client: client,
		topic:  strings.TrimSuffix(config.Topic, "/"),
		qos:    config.QoS,
	}
}

func (s *MQTTSink) Report(ev scan.Event) {
	if !s.client.IsConnectionOpen() {
		s.dropped.Add(1)
		return
	}

	rec := NewRecord(ev)
	payload, err := json.Marshal(rec)
	if err != nil {
		s.dropped.Add(1)
		return
	}

	// Publish is asynchronous; the token is not awaited on the scan loop
	s.client.Publish(s.topic+"/"+rec.Kind, s.qos, false, payload)

	if ev.Kind == scan.EventBeacon && ev.Observation != nil {
		topic := fmt.Sprintf("%s/networks/%s/%s", s.topic, rec.PAN, networkTopicID(ev.Observation))
		s.client.Publish(topic, s.qos, true, payload)
	}
}

// networkTopicID is the source address without the PAN prefix
func networkTopicID(obs *scan.Observation) string {
	_, addr, _ := strings.Cut(obs.Source.String(), ":")
	return addr
}

// Dropped returns the number of events not published
func (s *MQTTSink) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
