package entities

import "time"

// PaymentMethod represents a way an appointment can be paid for
type PaymentMethod struct {
	ID          string    `json:"id" db:"id"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
