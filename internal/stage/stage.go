// Package stage pushes the active item/slide to stage-monitor devices over
// MQTT. Delivery is best effort: publish failures are logged and the next
// state change supersedes them.
package stage

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/versecast/versecast/internal/model"
)

const stateTopic = "stage/state"

type Notifier struct {
	client mqtt.Client
}

// Connect dials the broker. An empty broker URL returns a disabled notifier
// so deployments without stage displays need no configuration.
func Connect(brokerURL, clientID string) (*Notifier, error) {
	if brokerURL == "" {
		return &Notifier{}, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", brokerURL).Msg("[stage] connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("[stage] MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker: %w", token.Error())
	}
	return &Notifier{client: client}, nil
}

// Publish pushes the active pointer and visibility to the stage topic as a
// retained message, so a display that powers on later sees the current state.
func (n *Notifier) Publish(active model.ActiveItemSlide, visible bool) {
	if n.client == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"active":  active,
		"visible": visible,
	})
	if err != nil {
		log.Error().Err(err).Msg("[stage] state marshal failed")
		return
	}
	token := n.client.Publish(stateTopic, 1, true, payload)
	token.Wait()
	if token.Error() != nil {
		log.Warn().Err(token.Error()).Msg("[stage] publish failed")
	}
}

// Close disconnects from the broker.
func (n *Notifier) Close() {
	if n.client != nil {
		n.client.Disconnect(250)
	}
}
