package editor

import (
	"fmt"

	"flowcore/internal/api/models"
)

// RejectReason identifies why a candidate connection was refused.
type RejectReason string

const (
	ReasonPinNotFound       RejectReason = "pin_not_found"
	ReasonSelfLoop          RejectReason = "self_loop"
	ReasonSourceNotOutput   RejectReason = "source_not_output"
	ReasonTargetNotInput    RejectReason = "target_not_input"
	ReasonTargetOccupied    RejectReason = "target_occupied"
	ReasonIncompatibleTypes RejectReason = "incompatible_types"
)

// Verdict is the outcome of a connection check. Message is meant for the user.
type Verdict struct {
	OK      bool         `json:"ok"`
	Reason  RejectReason `json:"reason,omitempty"`
	Message string       `json:"message,omitempty"`
}

func accept() Verdict { return Verdict{OK: true} }

func reject(reason RejectReason, format string, args ...any) Verdict {
	return Verdict{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// RejectionError carries a refused verdict through APIs that speak error.
type RejectionError struct {
	Verdict Verdict
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("connection rejected (%s): %s", e.Verdict.Reason, e.Verdict.Message)
}

// Err returns nil for an accepted verdict.
func (v Verdict) Err() error {
	if v.OK {
		return nil
	}
	return &RejectionError{Verdict: v}
}

// CanConnect decides whether from → to may be added. Checks run in a fixed order
// and the first failure wins.
func CanConnect(g *Graph, from, to models.PinRef) Verdict {
	return check(g, from, to, true)
}

// CanReplace is CanConnect without the fan-in rule, for drops that are meant to
// rewire an input pin that already has a source.
func CanReplace(g *Graph, from, to models.PinRef) Verdict {
	return check(g, from, to, false)
}

func check(g *Graph, from, to models.PinRef, enforceFanIn bool) Verdict {
	fromPin, _, fromOK := g.FindPin(from)
	toPin, _, toOK := g.FindPin(to)
	if !fromOK || !toOK {
		return reject(ReasonPinNotFound, "pin not found")
	}
	if from.NodeID == to.NodeID {
		return reject(ReasonSelfLoop, "cannot connect a node to itself")
	}
	if fromPin.Direction != models.PinOutput {
		return reject(ReasonSourceNotOutput, "connections must start from an output pin")
	}
	if toPin.Direction != models.PinInput {
		return reject(ReasonTargetNotInput, "connections must end on an input pin")
	}
	if enforceFanIn {
		if _, occupied := g.IncomingTo(to); occupied {
			return reject(ReasonTargetOccupied, "input pin %q already has an incoming connection", toPin.Label)
		}
	}
	if !fromPin.Compatible(*toPin) {
		return reject(ReasonIncompatibleTypes, "%s → %s is incompatible", fromPin.DataType, toPin.DataType)
	}
	return accept()
}
