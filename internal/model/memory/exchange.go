package memory

import "time"

// Exchange is one committed, validated turn kept as context for later sessions.
type Exchange struct {
	ID             string    `json:"id"`
	UserMessage    string    `json:"userMessage"`
	AssistantReply string    `json:"assistantReply"`
	CreatedAt      time.Time `json:"createdAt"`
}
