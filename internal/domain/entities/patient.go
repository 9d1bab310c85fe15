package entities

import "time"

// Patient represents a clinic patient
type Patient struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	DocumentID  string    `json:"document_id" db:"document_id"`
	DateOfBirth time.Time `json:"date_of_birth" db:"date_of_birth"`
	Phone       string    `json:"phone" db:"phone"`
	Email       string    `json:"email" db:"email"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
