// Package mqtt publishes fix snapshots and fix-quality status to an MQTT
// broker for external consumers.
package mqtt

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"gpsnmead/internal/gps"
)

type Config struct {
	// Broker is the MQTT URL, e.g. "tcp://localhost:1883".
	Broker      string
	ClientID    string
	FixTopic    string
	StatusTopic string
}

func (c Config) withDefaults() Config {
	if c.ClientID == "" {
		c.ClientID = "gpsnmead"
	}
	if c.FixTopic == "" {
		c.FixTopic = "gps/fix"
	}
	if c.StatusTopic == "" {
		c.StatusTopic = "gps/status"
	}
	return c
}

type statusPayload struct {
	Fix  string `json:"fix"`
	Busy bool   `json:"busy"`
}

// Publisher implements gps.Publisher over an MQTT connection. Messages are
// retained so late subscribers see the latest fix immediately.
type Publisher struct {
	cfg    Config
	client mqtt.Client
}

func New(cfg Config) (*Publisher, error) {
	cfg = cfg.withDefaults()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	log.Printf("mqtt connected broker=%s client_id=%s", cfg.Broker, cfg.ClientID)
	return &Publisher{cfg: cfg, client: client}, nil
}

func (p *Publisher) PublishFix(snap gps.Snapshot) {
	p.publish(p.cfg.FixTopic, snap)
}

func (p *Publisher) PublishStatus(label string, busy bool) {
	p.publish(p.cfg.StatusTopic, statusPayload{Fix: label, Busy: busy})
}

func (p *Publisher) publish(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("mqtt marshal for %s failed: %v", topic, err)
		return
	}
	token := p.client.Publish(topic, 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		log.Printf("mqtt publish %s failed: %v", topic, token.Error())
	}
}

func (p *Publisher) Close() {
	if p == nil || p.client == nil {
		return
	}
	p.client.Disconnect(250)
}
