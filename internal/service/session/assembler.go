package session

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/z-memo/backend/internal/model/memory"
	"github.com/zhouzirui/z-memo/backend/internal/model/policy"
)

// HistoryReader is the read side of the memory store needed for assembly.
type HistoryReader interface {
	Windowed(userID string, w int) []memory.Exchange
}

// Request is the ephemeral input for one completion call.
type Request struct {
	UserID      string
	Policy      string
	History     []memory.Exchange
	Message     string
	CurrentTurn string
}

// 消息顺序固定：系统策略 -> 历史（由旧到新）-> 当前输入。
var template = prompt.FromMessages(
	schema.FString,
	schema.SystemMessage("{system}"),
	schema.MessagesPlaceholder("history", true),
	schema.UserMessage("{query}"),
)

// Build snapshots the policy, the last windowSize exchanges and the current turn.
func Build(p policy.Policy, userID, message string, history HistoryReader, windowSize int) Request {
	return Request{
		UserID:      userID,
		Policy:      p.System,
		History:     history.Windowed(userID, windowSize),
		Message:     message,
		CurrentTurn: p.WrapTurn(userID, message),
	}
}

// Messages renders the request into the ordered message list sent to the model.
func (r Request) Messages(ctx context.Context) ([]*schema.Message, error) {
	messages, err := template.Format(ctx, map[string]any{
		"system":  r.Policy,
		"history": historyMessages(r.History),
		"query":   r.CurrentTurn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render session messages: %w", err)
	}
	return messages, nil
}

func historyMessages(exchanges []memory.Exchange) []*schema.Message {
	history := make([]*schema.Message, 0, len(exchanges)*2)
	for _, ex := range exchanges {
		history = append(history,
			schema.UserMessage(ex.UserMessage),
			schema.AssistantMessage(ex.AssistantReply, nil),
		)
	}
	return history
}
