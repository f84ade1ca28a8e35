package models

import (
	"time"

	"github.com/google/uuid"
)

// Student is a student record kept in the local database.
type Student struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	RollNumber    string    `json:"rollNumber"`
	Grade         string    `json:"grade"`
	ParentContact *string   `json:"parentContact,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewStudent creates a student with a generated ID.
func NewStudent(name, rollNumber, grade string) Student {
	return Student{
		ID:         uuid.New().String(),
		Name:       name,
		RollNumber: rollNumber,
		Grade:      grade,
		CreatedAt:  time.Now().UTC(),
	}
}
