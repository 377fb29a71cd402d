package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Station is one filling station tracked by the system.
type Station struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string     `gorm:"size:200;not null" json:"name"`
	Code      string     `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Address   string     `gorm:"size:500" json:"address,omitempty"`
	Latitude  float64    `gorm:"not null" json:"latitude"`
	Longitude float64    `gorm:"not null" json:"longitude"`
	ManagerID *uuid.UUID `gorm:"type:uuid;index" json:"managerId,omitempty"`
	IsActive  bool       `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	Manager *User `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
}

func (Station) TableName() string {
	return "stations"
}

func (s *Station) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
