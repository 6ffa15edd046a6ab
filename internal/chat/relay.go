// Package chat is the shared session chat: an append-only message log relayed
// to every participant, independent of poll state.
package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/models"
	"github.com/classpulse/backend/internal/session"
)

// SenderResolver maps a connection id to a display name and role.
// The session registry implements it.
type SenderResolver interface {
	Resolve(id uuid.UUID) (name, role string, ok bool)
}

// Relay appends and fans out chat messages. It holds its own lock and never
// takes the poll lock, so chat keeps flowing through poll transitions.
type Relay struct {
	mu       sync.RWMutex
	messages []models.ChatMessage

	resolver SenderResolver
	emitter  session.Emitter
	logger   *zap.Logger
	maxLen   int
}

const defaultMaxMessageLen = 500

// NewRelay creates an empty chat relay. maxMessageLen <= 0 uses the default.
func NewRelay(resolver SenderResolver, emitter session.Emitter, logger *zap.Logger, maxMessageLen int) *Relay {
	if maxMessageLen <= 0 {
		maxMessageLen = defaultMaxMessageLen
	}
	return &Relay{
		resolver: resolver,
		emitter:  emitter,
		logger:   logger,
		maxLen:   maxMessageLen,
	}
}

// Post appends a message from the given connection and broadcasts it.
// Unknown senders and empty messages are dropped.
func (r *Relay) Post(senderID uuid.UUID, text string) {
	name, role, ok := r.resolver.Resolve(senderID)
	if !ok {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if len(text) > r.maxLen {
		text = text[:r.maxLen]
	}

	msg := models.ChatMessage{
		ID:         uuid.New(),
		Text:       text,
		Sender:     name,
		SenderRole: role,
		Timestamp:  time.Now(),
	}

	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()

	r.emitter.Emit(session.ToAll(session.EventNewMessage, msg))
	r.logger.Debug("chat message", zap.String("sender", name), zap.String("role", role))
}

// History sends the full message log to the calling connection.
func (r *Relay) History(callerID uuid.UUID) {
	r.emitter.Emit(session.ToClient(callerID, session.EventChatHistory, r.Messages()))
}

// Messages returns the log in post order. The returned slice is a copy.
func (r *Relay) Messages() []models.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ChatMessage, len(r.messages))
	copy(out, r.messages)
	return out
}
