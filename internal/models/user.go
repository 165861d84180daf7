package models

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer Role = "usuario"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a stored role into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User represents a registered account.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"nombre" gorm:"type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Phone        string    `json:"telefono" gorm:"type:varchar(20)"`
	Role         Role      `json:"rol" gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time `json:"fecha_registro"`
}
