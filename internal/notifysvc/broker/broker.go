package broker

import (
	"encoding/json"

	"github.com/fannyleague/fanny-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Broker subscribes to the core's event topic and relays each event to
// websocket clients: duel notices go to the challenged user's sockets,
// round events are broadcast.
type Broker struct {
	Conn        *nats.Conn
	UserSockets func(string) []string
	Send        func(string, []byte)
	Broadcast   func([]byte)
}

func NewBroker(conn *nats.Conn, userSockets func(string) []string,
	send func(string, []byte), broadcast func([]byte)) *Broker {
	return &Broker{
		Conn:        conn,
		UserSockets: userSockets,
		Send:        send,
		Broadcast:   broadcast,
	}
}

func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (b *Broker) handleMessage(msgNats *nats.Msg) {
	ev := &comm.Event{}
	if err := json.Unmarshal(msgNats.Data, ev); err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	out, err := json.Marshal(comm.WSMessage{Type: ev.Type, Data: ev.Data})
	if err != nil {
		log.Errorf("Error marshalling relay message %s", err)
		return
	}

	switch ev.Type {
	case "duel.received":
		var notice comm.DuelNotice
		if err := json.Unmarshal(ev.Data, &notice); err != nil {
			log.Errorf("Error decoding duel notice: %s", err)
			return
		}
		for _, socketId := range b.UserSockets(notice.OpponentID) {
			b.Send(socketId, out)
		}
	case "round.opened", "round.results", "round.archived":
		b.Broadcast(out)
	default:
		log.Warnf("unknown core event type: %s", ev.Type)
	}
}
