package listener

import (
	"context"
	"fmt"
	"log"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jinjor/toysynth/src/config"
	"github.com/jinjor/toysynth/src/synth"
)

const (
	mqttQos      = 0
	mqttQuiesce  = 250 // ms
	payloadLimit = 4096
)

// topicHandler maps the command topic to its payload lines and the exit topic to an exit command.
type topicHandler struct {
	topics config.Topics
	sink   Sink
	logger *log.Logger
}

func (h *topicHandler) handle(_ mqtt.Client, msg mqtt.Message) {
	switch msg.Topic() {
	case h.topics.Exit:
		h.sink.Send(synth.Command{Kind: synth.CmdExit}.String())
	case h.topics.Command:
		payload := msg.Payload()
		if len(payload) > payloadLimit {
			h.logger.Printf("payload on %s too large: %d bytes\n", msg.Topic(), len(payload))
			return
		}
		for _, line := range strings.Split(string(payload), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				h.sink.Send(line)
			}
		}
	default:
		h.logger.Printf("message on unexpected topic %s\n", msg.Topic())
	}
}

// ListenToMQTT subscribes the command and exit topics until ctx is done.
// Subscriptions are renewed on every reconnect.
func ListenToMQTT(ctx context.Context, logger *log.Logger, settings config.MQTT, sink Sink) error {
	if logger == nil {
		logger = log.Default()
	}
	h := &topicHandler{topics: settings.Topics, sink: sink, logger: logger}
	filters := map[string]byte{
		settings.Topics.Command: mqttQos,
		settings.Topics.Exit:    mqttQos,
	}
	opts := mqtt.NewClientOptions().
		AddBroker(settings.Broker()).
		SetClientID(settings.ClientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Printf("connected to %s\n", settings.Broker())
			if token := c.SubscribeMultiple(filters, h.handle); token.Wait() && token.Error() != nil {
				logger.Printf("failed to subscribe: %v\n", token.Error())
			}
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Printf("connection lost: %v\n", err)
		})
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect %s: %w", settings.Broker(), token.Error())
	}
	defer func() {
		logger.Println("disconnecting MQTT...")
		client.Disconnect(mqttQuiesce)
	}()
	<-ctx.Done()
	return nil
}
