package request

import "flowcore/internal/api/models"

type CreateEndpointDTO struct {
	Name   string `json:"name" validate:"required,max=120"`
	Method string `json:"method" validate:"required,oneof=GET POST PUT DELETE PATCH"`
	Path   string `json:"path" validate:"required,startswith=/"`
	// Flow is optional; an empty document is seeded with a request and a response node.
	Flow *models.Flow `json:"flow"`
}

type UpdateEndpointDTO struct {
	Name   *string `json:"name" validate:"omitempty,max=120"`
	Method *string `json:"method" validate:"omitempty,oneof=GET POST PUT DELETE PATCH"`
	Path   *string `json:"path" validate:"omitempty,startswith=/"`
}

type SaveFlowDTO struct {
	Flow models.Flow `json:"flow"`
}
