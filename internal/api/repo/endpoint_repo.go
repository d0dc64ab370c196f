package repo

import (
	"flowcore"
	"flowcore/internal/api/models"

	"gorm.io/gorm"
)

type EndpointRepository struct {
	Db *gorm.DB
}

func NewEndpointRepository() *EndpointRepository {
	return &EndpointRepository{Db: flowcore.DB}
}

func (slf *EndpointRepository) FindAll() ([]models.Endpoint, error) {
	var endpoints []models.Endpoint
	err := slf.Db.Order("path ASC, method ASC").Find(&endpoints).Error
	return endpoints, err
}

func (slf *EndpointRepository) FindByID(id uint) (models.Endpoint, error) {
	var endpoint models.Endpoint
	err := slf.Db.First(&endpoint, id).Error
	return endpoint, err
}

func (slf *EndpointRepository) FindByRoute(method models.HTTPMethod, path string) (models.Endpoint, error) {
	var endpoint models.Endpoint
	err := slf.Db.Where("method = ? AND path = ?", method, path).First(&endpoint).Error
	return endpoint, err
}

func (slf *EndpointRepository) Create(endpoint *models.Endpoint) error {
	return slf.Db.Create(endpoint).Error
}

// Patch updates the given columns only.
func (slf *EndpointRepository) Patch(id uint, patch map[string]any) error {
	res := slf.Db.Model(&models.Endpoint{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (slf *EndpointRepository) SaveFlow(id uint, flow models.Flow) error {
	res := slf.Db.Model(&models.Endpoint{}).Where("id = ?", id).Update("flow_definition", flow)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (slf *EndpointRepository) Delete(id uint) error {
	res := slf.Db.Delete(&models.Endpoint{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
