// Package broker publishes the core's state-change events on NATS. The
// events are fire-and-forget: delivery failures are logged, never
// propagated into settlement paths.
package broker

import (
	"encoding/json"

	"github.com/fannyleague/fanny-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

type Broker struct {
	Conn *nats.Conn
}

func NewBroker(nc *nats.Conn) *Broker {
	return &Broker{Conn: nc}
}

// Publish implements service.Publisher.
func (b *Broker) Publish(eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("Error marshalling %s event: %s", eventType, err)
		return
	}
	ev, err := json.Marshal(comm.Event{Type: eventType, Data: data})
	if err != nil {
		log.Errorf("Error marshalling event envelope: %s", err)
		return
	}
	if err := b.Conn.Publish(comm.CoreEventsTopic, ev); err != nil {
		log.Errorf("Error publishing %s to topic %s: %s", eventType, comm.CoreEventsTopic, err)
	}
}

// Noop discards events; used by tests and local tooling.
type Noop struct{}

func (Noop) Publish(eventType string, payload any) {}
