package domain

import "time"

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                        // Primary key
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"` // Unique username, 3-50 chars
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`   // Unique email address
	PasswordHash string    `gorm:"not null" json:"-"`                            // Bcrypt hash, never serialized
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`             // Timestamp of registration
}
