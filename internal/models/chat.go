package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one entry in the shared session chat.
type ChatMessage struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	Sender     string    `json:"sender"`
	SenderRole string    `json:"sender_role"`
	Timestamp  time.Time `json:"timestamp"`
}
