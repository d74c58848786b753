// Package backend supervises the host-side workers that together form
// the CANopen backend (original_source's CANOpenBackend ran as a
// single background thread; here the mirror, an optional MQTT
// publisher, and an optional websocket dashboard are three concurrent
// workers, so they are started and torn down together through a
// golang.org/x/sync/errgroup.Group rather than three independently
// managed goroutines).
package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"sm4/host/canbus"
	"sm4/host/mqtt"
	"sm4/host/web"
)

// Options configures which optional workers Backend starts alongside
// the mandatory CAN mirror.
type Options struct {
	// MQTTBrokerURL, if non-empty, starts a telemetry publisher.
	MQTTBrokerURL string
	MQTTClientID  string
	MQTTPeriod    time.Duration

	// DashboardAddr, if non-empty, starts a websocket dashboard server
	// listening on this address (e.g. ":8080").
	DashboardAddr   string
	DashboardPeriod time.Duration
}

// Backend owns one board's Mirror plus whichever optional workers
// Options enables, all supervised by a single errgroup.Group so a
// failure in any of them tears down the rest.
type Backend struct {
	Mirror *canbus.Mirror

	group  *errgroup.Group
	cancel context.CancelFunc
	server *http.Server
	bridge *mqtt.Bridge
}

// Start builds a Mirror over bus and launches it alongside the workers
// Options enables. Call Wait to block until a worker fails or the
// returned Backend is shut down.
func Start(ctx context.Context, nodeID uint16, resolution uint32, bus canbus.Bus, opts Options) (*Backend, error) {
	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)

	mirror := canbus.NewMirror(nodeID, resolution, bus)
	b := &Backend{Mirror: mirror, group: group, cancel: cancel}

	group.Go(func() error {
		<-ctx.Done()
		mirror.Close()
		return nil
	})

	if opts.MQTTBrokerURL != "" {
		bridge, err := mqtt.Connect(opts.MQTTBrokerURL, opts.MQTTClientID)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("backend: mqtt: %w", err)
		}
		period := opts.MQTTPeriod
		if period <= 0 {
			period = time.Second
		}
		bridge.Start(mirror, period)
		b.bridge = bridge

		group.Go(func() error {
			<-ctx.Done()
			bridge.Close()
			return nil
		})
	}

	if opts.DashboardAddr != "" {
		period := opts.DashboardPeriod
		if period <= 0 {
			period = 200 * time.Millisecond
		}
		dash := web.NewDashboard(mirror, period)
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", dash.ServeHTTP)
		server := &http.Server{Addr: opts.DashboardAddr, Handler: mux}
		b.server = server

		group.Go(func() error {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("backend: dashboard: %w", err)
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			return server.Shutdown(context.Background())
		})
	}

	return b, nil
}

// Wait blocks until every supervised worker has returned, propagating
// the first non-nil error.
func (b *Backend) Wait() error {
	return b.group.Wait()
}

// Shutdown cancels every supervised worker and waits for them to stop.
func (b *Backend) Shutdown() error {
	b.cancel()
	return b.Wait()
}
