package models

import "time"

// User represents a user record in the database
type User struct {
	ID        int       `json:"id" db:"id" gorm:"primaryKey"`                             // Primary key
	Username  string    `json:"username" db:"username" gorm:"not null"`                   // Unique username
	Email     string    `json:"email" db:"email" gorm:"not null"`                         // Unique email
	Password  string    `json:"-" db:"password" gorm:"not null"`                          // Hashed password
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"not null;autoCreateTime"` // Creation timestamp
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" gorm:"not null;autoUpdateTime"` // Last update timestamp
}
