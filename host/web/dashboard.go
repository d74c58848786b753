// Package web serves a small websocket dashboard over a Mirror: every
// connected client receives a JSON state snapshot at a fixed interval,
// and may push back simple velocity/enable commands. Ported
// in idiom from donor host/mcu's connection-owning-struct shape,
// applied to github.com/gorilla/websocket since original_source has no
// browser-facing dashboard of its own (the closest analogue,
// `sm4-controller`'s egui desktop app, is native and does not port).
package web

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"sm4/host/canbus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Dashboard broadcasts a Mirror's state to every connected websocket
// client at a fixed interval and applies simple commands clients send
// back.
type Dashboard struct {
	mirror *canbus.Mirror
	period time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// command is the JSON shape a client may send to mutate the mirror.
type command struct {
	Axis           int      `json:"axis"` // 1 or 2
	TargetVelocity *float32 `json:"target_velocity,omitempty"`
	Enabled        *bool    `json:"enabled,omitempty"`
}

// NewDashboard builds a Dashboard broadcasting mirror's state every
// period.
func NewDashboard(mirror *canbus.Mirror, period time.Duration) *Dashboard {
	d := &Dashboard{mirror: mirror, period: period, clients: map[*websocket.Conn]struct{}{}}
	go d.broadcastLoop()
	return d
}

// ServeHTTP upgrades the connection and streams state until the client
// disconnects.
func (d *Dashboard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: upgrade failed: %v", err)
		return
	}
	d.addClient(conn)
	defer d.removeClient(conn)

	for {
		var cmd command
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		d.applyCommand(cmd)
	}
}

func (d *Dashboard) addClient(c *websocket.Conn) {
	d.mu.Lock()
	d.clients[c] = struct{}{}
	d.mu.Unlock()
}

func (d *Dashboard) removeClient(c *websocket.Conn) {
	d.mu.Lock()
	delete(d.clients, c)
	d.mu.Unlock()
	c.Close()
}

func (d *Dashboard) applyCommand(cmd command) {
	switch cmd.Axis {
	case 1:
		if cmd.TargetVelocity != nil {
			d.mirror.SetAxis1TargetVelocity(*cmd.TargetVelocity)
		}
		if cmd.Enabled != nil {
			d.mirror.SetAxis1Enabled(*cmd.Enabled)
		}
	case 2:
		if cmd.TargetVelocity != nil {
			d.mirror.SetAxis2TargetVelocity(*cmd.TargetVelocity)
		}
		if cmd.Enabled != nil {
			d.mirror.SetAxis2Enabled(*cmd.Enabled)
		}
	}
}

func (d *Dashboard) broadcastLoop() {
	ticker := time.NewTicker(d.period)
	defer ticker.Stop()
	for range ticker.C {
		payload, err := json.Marshal(d.mirror.State())
		if err != nil {
			continue
		}
		d.broadcast(payload)
	}
}

func (d *Dashboard) broadcast(payload []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for c := range d.clients {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			c.Close()
			delete(d.clients, c)
		}
	}
}
