package mqtt

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/ericogr/staticfire/pkg/analysis"
	"github.com/ericogr/staticfire/pkg/config"
	"github.com/ericogr/staticfire/pkg/output"
)

const (
	// defaults
	DefaultServer      = "tcp://localhost:1883"
	DefaultClientID    = "staticfire-client"
	DefaultLiveTopic   = "staticfire/live"
	DefaultReportTopic = "staticfire/report"
)

// MQTTOutput publishes live samples during acquisition and the final report
// once the run is over. The report is published retained so a dashboard that
// connects after burnout still sees it.
type MQTTOutput struct {
	client      mqtt.Client
	liveTopic   string
	reportTopic string
}

func NewMQTT(cfg config.MQTTConfig) (output.Output, error) {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.LiveTopic == "" {
		cfg.LiveTopic = DefaultLiveTopic
	}
	if cfg.ReportTopic == "" {
		cfg.ReportTopic = DefaultReportTopic
	}
	opts := mqtt.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &MQTTOutput{client: client, liveTopic: cfg.LiveTopic, reportTopic: cfg.ReportTopic}, nil
}

func (m *MQTTOutput) PublishLive(l output.Live) error {
	payload := map[string]interface{}{
		"state":    l.State.String(),
		"t":        l.T,
		"thrust":   l.Thrust,
		"pressure": l.Pressure,
		"temp":     l.Temp,
	}
	return m.publishJSON(m.liveTopic, false, payload)
}

func (m *MQTTOutput) PublishReport(rep analysis.Report) error {
	return m.publishJSON(m.reportTopic, true, rep)
}

func (m *MQTTOutput) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}

func (m *MQTTOutput) publishJSON(topic string, retained bool, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := m.client.Publish(topic, 0, retained, b)
	token.Wait()
	return token.Error()
}
