package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"flowcore/internal/api/models"
	"flowcore/internal/editor"

	"github.com/nats-io/nats.go"
)

// FlowSavedEvent is the NATS payload sent after a flow reached the database.
type FlowSavedEvent struct {
	EndpointID  uint          `json:"endpointId"`
	SavedAt     time.Time     `json:"savedAt"`
	Nodes       int           `json:"nodes"`
	Connections int           `json:"connections"`
	Report      editor.Report `json:"report"`
	Flow        models.Flow   `json:"flow"`
}

// FlowPublisher announces saved flows on tenant.<tid>.endpoint.<id>.flow.
type FlowPublisher struct {
	conn     *nats.Conn
	tenantID string
	now      func() time.Time
}

func NewFlowPublisher(conn *nats.Conn, tenantID string) *FlowPublisher {
	return &FlowPublisher{conn: conn, tenantID: tenantID, now: time.Now}
}

func (p *FlowPublisher) event(endpointID uint, flow models.Flow, report editor.Report) FlowSavedEvent {
	return FlowSavedEvent{
		EndpointID:  endpointID,
		SavedAt:     p.now().UTC(),
		Nodes:       len(flow.Nodes),
		Connections: len(flow.Connections),
		Report:      report,
		Flow:        flow,
	}
}

func (p *FlowPublisher) PublishFlowSaved(endpointID uint, flow models.Flow, report editor.Report) error {
	data, err := json.Marshal(p.event(endpointID, flow, report))
	if err != nil {
		return fmt.Errorf("marshal flow event: %w", err)
	}
	subject := flowSubject(p.tenantID, endpointID)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %q: %w", subject, err)
	}
	return nil
}
