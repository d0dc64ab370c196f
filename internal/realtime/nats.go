package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSBridge subscribes to NATS subjects and pushes messages into the Hub.
type NATSBridge struct {
	conn     *nats.Conn
	hub      *Hub
	tenantID string
	logger   zerolog.Logger
}

func NewNATSBridge(natsURL, tenantID string, hub *Hub, logger zerolog.Logger) (*NATSBridge, error) {
	nc, err := nats.Connect(natsURL, nats.Name("flowcore-realtime"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSBridge{conn: nc, hub: hub, tenantID: tenantID, logger: logger}, nil
}

// Subscribe listens for saved flows on tenant.<tenantID>.endpoint.*.flow
func (b *NATSBridge) Subscribe() error {
	subject := flowWildcard(b.tenantID)
	_, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		b.forward(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %q: %w", subject, err)
	}

	b.logger.Info().Str("subject", subject).Msg("NATS bridge subscribed")
	return nil
}

func (b *NATSBridge) forward(subject string, data []byte) {
	endpointID, err := parseEndpointIDFromSubject(subject)
	if err != nil {
		b.logger.Warn().Err(err).Str("subject", subject).Msg("nats: bad subject")
		return
	}
	payload, err := envelope(endpointID, data)
	if err != nil {
		b.logger.Error().Err(err).Msg("nats: marshal envelope")
		return
	}
	b.hub.broadcast <- broadcastMsg{endpointID: endpointID, payload: payload}
}

// envelope wraps the raw event in the outgoing message.
func envelope(endpointID uint, data []byte) ([]byte, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("payload is not JSON")
	}
	return json.Marshal(outgoingMsg{
		Type:       "flow.saved",
		EndpointID: endpointID,
		Payload:    json.RawMessage(data),
	})
}

// Close drains the NATS connection.
func (b *NATSBridge) Close() {
	if err := b.conn.Drain(); err != nil {
		b.logger.Error().Err(err).Msg("nats drain")
	}
}
