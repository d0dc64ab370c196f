package mapper

import (
	"strings"

	"flowcore/internal/api/handler/request"
	"flowcore/internal/api/handler/response"
	"flowcore/internal/api/models"
	"flowcore/internal/editor"
)

type EndpointMapper struct{}

func (EndpointMapper) CreateDtoToEntity(dto request.CreateEndpointDTO) models.Endpoint {
	endpoint := models.Endpoint{
		Name:   strings.TrimSpace(dto.Name),
		Method: models.HTTPMethod(dto.Method),
		Path:   dto.Path,
	}
	if dto.Flow != nil {
		endpoint.Flow = dto.Flow.Clone()
	}
	return endpoint
}

// UpdateDtoToPatch lists the columns to change; nil fields are left alone.
func (EndpointMapper) UpdateDtoToPatch(dto request.UpdateEndpointDTO) map[string]any {
	patch := make(map[string]any)
	if dto.Name != nil {
		patch["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Method != nil {
		patch["method"] = *dto.Method
	}
	if dto.Path != nil {
		patch["path"] = *dto.Path
	}
	return patch
}

func (EndpointMapper) EntityToResponse(endpoint models.Endpoint) response.EndpointResponseDTO {
	return response.EndpointResponseDTO{
		ID:              endpoint.ID,
		Name:            endpoint.Name,
		Method:          string(endpoint.Method),
		Path:            endpoint.Path,
		NodeCount:       len(endpoint.Flow.Nodes),
		ConnectionCount: len(endpoint.Flow.Connections),
		CreatedAt:       endpoint.CreatedAt,
		UpdatedAt:       endpoint.UpdatedAt,
	}
}

func (m EndpointMapper) EntitiesToResponse(endpoints []models.Endpoint) []response.EndpointResponseDTO {
	out := make([]response.EndpointResponseDTO, 0, len(endpoints))
	for _, e := range endpoints {
		out = append(out, m.EntityToResponse(e))
	}
	return out
}

func (m EndpointMapper) EntityToDetail(endpoint models.Endpoint) response.EndpointDetailDTO {
	return response.EndpointDetailDTO{
		EndpointResponseDTO: m.EntityToResponse(endpoint),
		Flow:                endpoint.Flow,
		Report:              editor.Audit(endpoint.Flow),
	}
}
