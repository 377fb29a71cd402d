// models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string     `gorm:"size:100;not null" json:"name"`
	Email             string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone             string     `gorm:"size:15;uniqueIndex;not null" json:"phone"`
	PasswordHash      string     `gorm:"size:255;not null" json:"-"`
	Role              string     `gorm:"size:30;not null;default:'public'" json:"role"`
	AssignedStationID *uuid.UUID `gorm:"type:uuid;index" json:"assignedStationId,omitempty"`
	IsActive          bool       `gorm:"default:true" json:"isActive"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`

	AssignedStation *Station `gorm:"foreignKey:AssignedStationID" json:"assignedStation,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// NormalizedRole returns the user's stored role as a closed Role value.
// Unknown stored values fall back to public.
func (u *User) NormalizedRole() Role {
	if role, ok := ParseRole(u.Role); ok {
		return role
	}
	return RolePublic
}

// UserDTO is the API shape of a user, without credentials.
type UserDTO struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Phone             string     `json:"phone"`
	Role              Role       `json:"role"`
	AssignedStationID *uuid.UUID `json:"assignedStationId,omitempty"`
	IsActive          bool       `json:"isActive"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Phone:             u.Phone,
		Role:              u.NormalizedRole(),
		AssignedStationID: u.AssignedStationID,
		IsActive:          u.IsActive,
		CreatedAt:         u.CreatedAt,
	}
}
