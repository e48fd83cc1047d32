package broker

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/lexiduel/vocab-services/internal/comm"
	"github.com/lexiduel/vocab-services/internal/hubsvc/ws"
)

// Broker feeds loopback messages from the job runner into the hub. The
// runner may live in a different process, NATS is the only channel between
// the two.
type Broker struct {
	Conn *nats.Conn
	Hub  *ws.Hub
}

func NewBroker(conn *nats.Conn, hub *ws.Hub) *Broker {
	return &Broker{Conn: conn, Hub: hub}
}

func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// handleMessages receives loopback actions from the job runner
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.LoopbackMessage{}
	if err := json.Unmarshal(msgNats.Data, &message); err != nil {
		log.Errorf("Error decoding loopback message: %s", err)
		return
	}

	b.Hub.HandleLoopback(message)
}
