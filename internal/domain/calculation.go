package domain

import "time"

// Calculation Model
type Calculation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`             // Primary key
	A         float64   `json:"a"`                                // First operand
	B         float64   `json:"b"`                                // Second operand
	Type      string    `gorm:"size:20;not null" json:"type"`     // Operation type: Add, Sub, Multiply, Divide, Power
	Result    float64   `json:"result"`                           // Derived: always operation(type)(a, b)
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"` // Timestamp of creation, unchanged on update
}
