// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/iliyamo/care-assistant-api/internal/assistant"
)

// AssistRepliedEvent is published after POST /ai/assist produced a reply.
// It records which canned category answered, never the message text, so
// the audit trail carries no patient data.
type AssistRepliedEvent struct {
	Category     string `json:"category"`
	MessageChars int    `json:"message_chars"`
	HasContext   bool   `json:"has_context"`
	RepliedAt    string `json:"replied_at"`
}

// NewAssistRepliedEvent stamps an event for category c at t.
func NewAssistRepliedEvent(c assistant.Category, message string, hasContext bool, t time.Time) AssistRepliedEvent {
	return AssistRepliedEvent{
		Category:     c.String(),
		MessageChars: len([]rune(message)),
		HasContext:   hasContext,
		RepliedAt:    t.UTC().Format(time.RFC3339),
	}
}
