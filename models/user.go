package models

import (
	"gorm.io/gorm"
)

// User represents a workspace account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Profile information
	Name     *string `json:"name,omitempty"`
	Company  *string `json:"company,omitempty"`
	Timezone string  `gorm:"default:'America/Sao_Paulo'" json:"timezone"`
	Language string  `gorm:"default:'pt-BR'" json:"language"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`
	IsAdmin  bool `gorm:"default:false" json:"is_admin"`

	// Relations
	Pipelines []Pipeline         `gorm:"foreignKey:UserID" json:"pipelines,omitempty"`
	Instances []WhatsAppInstance `gorm:"foreignKey:UserID" json:"instances,omitempty"`
}
