package response

import (
	"time"

	"flowcore/internal/api/models"
	"flowcore/internal/editor"
)

type EndpointResponseDTO struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Method          string    `json:"method"`
	Path            string    `json:"path"`
	NodeCount       int       `json:"nodeCount"`
	ConnectionCount int       `json:"connectionCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type EndpointDetailDTO struct {
	EndpointResponseDTO
	Flow   models.Flow   `json:"flow"`
	Report editor.Report `json:"report"`
}

type FlowResponseDTO struct {
	EndpointID uint          `json:"endpointId"`
	Flow       models.Flow   `json:"flow"`
	Report     editor.Report `json:"report"`
	// Draft is true when the flow holds edits that are not persisted yet.
	Draft bool `json:"draft"`
}
