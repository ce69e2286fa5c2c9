// Package ping keeps the connection observably alive: it emits PING
// frames on a fixed interval while the socket is connected and logs the
// PONGs. It detects nothing (missed pongs do not disconnect) and its
// only teardown obligation is to drop its timer and its subscription
// together.
package ping

import (
	"log/slog"
	"sync"
	"time"

	"letstalk/internal/models"
	"letstalk/internal/ws"
)

type transport interface {
	Send(env models.Envelope) error
	Bus() *ws.Bus
	IsConnected() bool
}

// DefaultInterval is how often the prober emits a PING unless the
// caller picks its own cadence.
const DefaultInterval = 5 * time.Second

// Prober emits interval PINGs until stopped.
type Prober struct {
	conn     transport
	interval time.Duration

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	subID    int
}

// Start launches the prober with the caller-supplied interval.
func Start(conn transport, interval time.Duration) *Prober {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Prober{
		conn:     conn,
		interval: interval,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	p.subID = conn.Bus().Subscribe(models.KindPong, func(models.Frame) {
		slog.Debug("PONG received", "at", time.Now().Format(time.TimeOnly))
	})

	go p.loop()
	return p
}

func (p *Prober) loop() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !p.conn.IsConnected() {
				continue
			}
			if err := p.conn.Send(models.NewEnvelope(models.KindPing)); err != nil {
				slog.Warn("ping failed", "err", err)
			}
		case <-p.quit:
			return
		}
	}
}

// Stop tears the prober down: the ticker stops and the PONG
// subscription is removed. Idempotent; returns after the loop exited.
func (p *Prober) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
		p.conn.Bus().Unsubscribe(p.subID)
	})
	<-p.done
}
