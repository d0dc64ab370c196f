package service

import (
	"errors"
	"fmt"

	"flowcore"
	"flowcore/internal/api/handler/mapper"
	"flowcore/internal/api/handler/request"
	"flowcore/internal/api/models"
	"flowcore/internal/api/repo"
	"flowcore/internal/editor"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrEndpointNotFound = errors.New("endpoint not found")
	ErrRouteTaken       = errors.New("an endpoint already serves this method and path")
)

type endpointStore interface {
	FindAll() ([]models.Endpoint, error)
	FindByID(id uint) (models.Endpoint, error)
	FindByRoute(method models.HTTPMethod, path string) (models.Endpoint, error)
	Create(endpoint *models.Endpoint) error
	Patch(id uint, patch map[string]any) error
	SaveFlow(id uint, flow models.Flow) error
	Delete(id uint) error
}

// FlowStore is where editor sessions read and persist documents.
type FlowStore interface {
	LoadFlow(endpointID uint) (models.Flow, error)
	SaveFlow(endpointID uint, flow models.Flow) (editor.Report, error)
}

type EndpointService struct {
	endpointRepo endpointStore
	logger       zerolog.Logger
	mapper       mapper.EndpointMapper
	newID        func() string
}

func NewEndpointService() *EndpointService {
	return &EndpointService{
		endpointRepo: repo.NewEndpointRepository(),
		logger:       flowcore.Logger,
		newID:        uuid.NewString,
	}
}

func (slf *EndpointService) FindAll() ([]models.Endpoint, error) {
	endpoints, err := slf.endpointRepo.FindAll()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error listing endpoints")
		return nil, err
	}
	return endpoints, nil
}

func (slf *EndpointService) FindByID(id uint) (*models.Endpoint, error) {
	endpoint, err := slf.endpointRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEndpointNotFound
		}
		slf.logger.Error().Err(err).Uint("endpointId", id).Msg("Error getting endpoint")
		return nil, err
	}
	return &endpoint, nil
}

// Create stores a new endpoint. A missing or empty flow is seeded with a request
// node wired to a response node.
func (slf *EndpointService) Create(dto request.CreateEndpointDTO, creatorID uint) (*models.Endpoint, error) {
	endpoint := slf.mapper.CreateDtoToEntity(dto)
	endpoint.CreatorID = creatorID
	if len(endpoint.Flow.Nodes) == 0 {
		endpoint.Flow = editor.NewFlow(slf.newID)
	}

	if err := slf.ensureRouteFree(endpoint.Method, endpoint.Path, 0); err != nil {
		return nil, err
	}
	slf.logReport(0, editor.Audit(endpoint.Flow))

	if err := slf.endpointRepo.Create(&endpoint); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRouteTaken
		}
		slf.logger.Error().Err(err).Str("path", endpoint.Path).Msg("Error creating endpoint")
		return nil, fmt.Errorf("create endpoint: %w", err)
	}
	slf.logger.Info().Uint("endpointId", endpoint.ID).Str("method", string(endpoint.Method)).Str("path", endpoint.Path).Msg("Endpoint created")
	return &endpoint, nil
}

// Update patches the fields present in dto; the flow is saved through SaveFlow.
func (slf *EndpointService) Update(id uint, dto request.UpdateEndpointDTO) (*models.Endpoint, error) {
	current, err := slf.FindByID(id)
	if err != nil {
		return nil, err
	}

	patch := slf.mapper.UpdateDtoToPatch(dto)
	if len(patch) == 0 {
		return current, nil
	}

	method, path := current.Method, current.Path
	if dto.Method != nil {
		method = models.HTTPMethod(*dto.Method)
	}
	if dto.Path != nil {
		path = *dto.Path
	}
	if method != current.Method || path != current.Path {
		if err := slf.ensureRouteFree(method, path, id); err != nil {
			return nil, err
		}
	}

	if err := slf.endpointRepo.Patch(id, patch); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEndpointNotFound
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRouteTaken
		}
		slf.logger.Error().Err(err).Uint("endpointId", id).Msg("Error updating endpoint")
		return nil, fmt.Errorf("update endpoint %d: %w", id, err)
	}
	return slf.FindByID(id)
}

func (slf *EndpointService) Delete(id uint) error {
	if err := slf.endpointRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEndpointNotFound
		}
		slf.logger.Error().Err(err).Uint("endpointId", id).Msg("Error deleting endpoint")
		return fmt.Errorf("delete endpoint %d: %w", id, err)
	}
	slf.logger.Info().Uint("endpointId", id).Msg("Endpoint deleted")
	return nil
}

func (slf *EndpointService) LoadFlow(endpointID uint) (models.Flow, error) {
	endpoint, err := slf.FindByID(endpointID)
	if err != nil {
		return models.Flow{}, err
	}
	return endpoint.Flow, nil
}

// SaveFlow persists flow whatever its audit says. The report is returned so the
// caller can show the warnings.
func (slf *EndpointService) SaveFlow(endpointID uint, flow models.Flow) (editor.Report, error) {
	if flow.Nodes == nil {
		flow.Nodes = []models.Node{}
	}
	if flow.Connections == nil {
		flow.Connections = []models.Connection{}
	}
	report := editor.Audit(flow)
	slf.logReport(endpointID, report)

	if err := slf.endpointRepo.SaveFlow(endpointID, flow); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return report, ErrEndpointNotFound
		}
		slf.logger.Error().Err(err).Uint("endpointId", endpointID).Msg("Error saving flow")
		return report, fmt.Errorf("save flow of endpoint %d: %w", endpointID, err)
	}
	slf.logger.Debug().Uint("endpointId", endpointID).Int("nodes", len(flow.Nodes)).Int("connections", len(flow.Connections)).Msg("Flow saved")
	return report, nil
}

func (slf *EndpointService) ensureRouteFree(method models.HTTPMethod, path string, selfID uint) error {
	existing, err := slf.endpointRepo.FindByRoute(method, path)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		slf.logger.Error().Err(err).Str("path", path).Msg("Error checking route")
		return err
	}
	if existing.ID != selfID {
		return ErrRouteTaken
	}
	return nil
}

func (slf *EndpointService) logReport(endpointID uint, report editor.Report) {
	for _, issue := range report.Issues {
		slf.logger.Warn().
			Uint("endpointId", endpointID).
			Str("kind", string(issue.Kind)).
			Str("nodeId", issue.NodeID).
			Str("connectionId", issue.ConnectionID).
			Msg(issue.Message)
	}
}
