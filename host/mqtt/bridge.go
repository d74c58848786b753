// Package mqtt publishes a Mirror's state to an MQTT broker at a fixed
// interval, for dashboards and historians that would rather subscribe
// to a topic than poll the CAN bus themselves. Ported in idiom from
// donor host/mcu's connection-lifecycle shape (Connect/Close, a single
// owning struct), applied to github.com/eclipse/paho.mqtt.golang since
// original_source has no telemetry bridge of its own to port from.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"sm4/host/canbus"
)

// Bridge owns one paho client publishing a Mirror's state on a timer.
type Bridge struct {
	client paho.Client
	topic  string
	ticker *time.Ticker
	stop   chan struct{}
}

// telemetry is the JSON payload published to Topic every tick.
type telemetry struct {
	NMTState    string  `json:"nmt_state"`
	Voltage     float32 `json:"battery_voltage"`
	Temperature float32 `json:"temperature"`
	Axis1       axisTelemetry `json:"axis1"`
	Axis2       axisTelemetry `json:"axis2"`
}

type axisTelemetry struct {
	Enabled        bool    `json:"enabled"`
	Mode           string  `json:"mode"`
	ActualVelocity float32 `json:"actual_velocity"`
	TargetVelocity float32 `json:"target_velocity"`
	Revolutions    int32   `json:"revolutions"`
	Angle          uint32  `json:"angle"`
}

// Connect dials brokerURL and returns a Bridge ready to Start
// publishing; clientID should be unique per board (e.g. "sm4-5" for
// node 5).
func Connect(brokerURL, clientID string) (*Bridge, error) {
	opts := paho.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", brokerURL, token.Error())
	}

	return &Bridge{client: client, topic: fmt.Sprintf("sm4/%s/telemetry", clientID), stop: make(chan struct{})}, nil
}

// Start begins publishing m's state to the broker every period until
// Close is called.
func (b *Bridge) Start(m *canbus.Mirror, period time.Duration) {
	b.ticker = time.NewTicker(period)
	go func() {
		for {
			select {
			case <-b.stop:
				return
			case <-b.ticker.C:
				b.publish(m.State())
			}
		}
	}()
}

func (b *Bridge) publish(s canbus.State) {
	payload, err := json.Marshal(telemetry{
		NMTState:    s.NMTState.String(),
		Voltage:     s.Voltage,
		Temperature: s.Temperature,
		Axis1:       axisSnapshot(s.Axis1),
		Axis2:       axisSnapshot(s.Axis2),
	})
	if err != nil {
		return
	}
	b.client.Publish(b.topic, 0, false, payload)
}

func axisSnapshot(a canbus.AxisState) axisTelemetry {
	return axisTelemetry{
		Enabled:        a.Enabled,
		Mode:           a.Mode.String(),
		ActualVelocity: a.ActualVelocity,
		TargetVelocity: a.TargetVelocity,
		Revolutions:    a.ActualPosition.GetRevolutions(),
		Angle:          a.ActualPosition.GetAngle(),
	}
}

// Close stops publishing and disconnects from the broker.
func (b *Bridge) Close() {
	if b.ticker != nil {
		b.ticker.Stop()
	}
	close(b.stop)
	b.client.Disconnect(250)
}
