package models

import "time"

// Warehouse represents a physical storage site. Locations nest under it.
type Warehouse struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code" binding:"required"`
	Name      string    `json:"name" db:"name" binding:"required"`
	Address   *string   `json:"address,omitempty" db:"address"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Employee is a roster-assignable person. Identity/auth is handled upstream;
// this registry only validates assignment references.
type Employee struct {
	ID         int64     `json:"id" db:"id"`
	Code       string    `json:"code" db:"code" binding:"required"`
	FullName   string    `json:"full_name" db:"full_name" binding:"required"`
	Department *string   `json:"department,omitempty" db:"department"`
	Active     bool      `json:"active" db:"active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Provider is an external calibration lab or maintenance workshop.
type Provider struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name" binding:"required"`
	ContactEmail *string   `json:"contact_email,omitempty" db:"contact_email"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
