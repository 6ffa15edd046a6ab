package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant roles.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Participant is a connected user in the session, either teacher or student.
// HasAnswered only carries meaning for students and is reset on every new poll.
type Participant struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	HasAnswered bool      `json:"has_answered"`
	JoinedAt    time.Time `json:"joined_at"`
}
