package models

import (
	"time"

	"gorm.io/gorm"
)

type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
	MethodPatch  HTTPMethod = "PATCH"
)

// Endpoint is an HTTP route whose behaviour is described by a Flow.
type Endpoint struct {
	ID     uint       `gorm:"primaryKey" json:"id"`
	Name   string     `gorm:"not null" json:"name"`
	Method HTTPMethod `gorm:"type:varchar(10);not null;uniqueIndex:idx_endpoint_route" json:"method"`
	Path   string     `gorm:"not null;uniqueIndex:idx_endpoint_route" json:"path"`
	Flow   Flow       `gorm:"type:jsonb;column:flow_definition" json:"flow"`
	// CreatorID is 0 for endpoints created by the anonymous dev user.
	CreatorID uint           `gorm:"index;column:creator_id" json:"creatorId"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Endpoint) TableName() string {
	return "meta_endpoints"
}
