package domain

import "time"

// DefaultCurrency is assigned to users who never picked one
const DefaultCurrency = "USD"

// User Model
type User struct {
	ID              uint      `gorm:"primaryKey"`                    // Primary key
	FirstName       string    `gorm:"size:255;not null"`             // Given name
	LastName        string    `gorm:"size:255;not null"`             // Family name
	Avatar          string    `gorm:"type:text"`                     // Public avatar URL, empty if none
	DefaultCurrency string    `gorm:"size:10;not null;default:USD"`  // ISO code used when no display currency is asked for
	MailID          string    `gorm:"size:120;not null;uniqueIndex"` // Login identifier
	Password        string    `gorm:"size:80;not null" json:"-"`     // bcrypt hash
	CreatedAt       time.Time `gorm:"autoCreateTime"`                // Registration time
}

// FullName joins first and last name the way counterparties are displayed
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
