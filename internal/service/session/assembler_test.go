package session_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"

	model "github.com/zhouzirui/z-memo/backend/internal/model/memory"
	"github.com/zhouzirui/z-memo/backend/internal/model/policy"
	"github.com/zhouzirui/z-memo/backend/internal/service/memory"
	"github.com/zhouzirui/z-memo/backend/internal/service/session"
)

func defaultPolicy(t *testing.T) policy.Policy {
	t.Helper()
	p, ok := policy.NewMemoryStore(policy.Seed()).FindByID(policy.DefaultID)
	if !ok {
		t.Fatal("default policy missing")
	}
	return p
}

func TestMessagesForUnseenUser(t *testing.T) {
	store := memory.NewStore(0)
	p := defaultPolicy(t)

	req := session.Build(p, "alice", "tell me about tides", store, 2)
	messages, err := req.Messages(context.Background())
	if err != nil {
		t.Fatalf("Messages err: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("expected policy + current turn, got %d messages", len(messages))
	}
	if messages[0].Role != schema.System || messages[0].Content != p.System {
		t.Fatalf("first message must be the policy, got %s: %q", messages[0].Role, messages[0].Content)
	}
	if messages[1].Role != schema.User || messages[1].Content != p.WrapTurn("alice", "tell me about tides") {
		t.Fatalf("last message must be the current turn, got %s: %q", messages[1].Role, messages[1].Content)
	}
}

func TestMessagesUseLastWindowOldestFirst(t *testing.T) {
	store := memory.NewStore(0)
	for i := 0; i < 5; i++ {
		store.Append("alice", model.Exchange{
			UserMessage:    fmt.Sprintf("q%d", i),
			AssistantReply: fmt.Sprintf("a%d", i),
		})
	}

	req := session.Build(defaultPolicy(t), "alice", "and the moon?", store, 2)
	messages, err := req.Messages(context.Background())
	if err != nil {
		t.Fatalf("Messages err: %v", err)
	}

	want := []struct {
		role    schema.RoleType
		content string
	}{
		{schema.User, "q3"},
		{schema.Assistant, "a3"},
		{schema.User, "q4"},
		{schema.Assistant, "a4"},
	}
	if len(messages) != len(want)+2 {
		t.Fatalf("expected %d messages, got %d", len(want)+2, len(messages))
	}
	for i, w := range want {
		got := messages[i+1]
		if got.Role != w.role || got.Content != w.content {
			t.Fatalf("history[%d] = %s %q, want %s %q", i, got.Role, got.Content, w.role, w.content)
		}
	}
	if messages[len(messages)-1].Role != schema.User {
		t.Fatal("current turn must come last")
	}
}

func TestBuildDoesNotMutateStore(t *testing.T) {
	store := memory.NewStore(0)
	store.Append("alice", model.Exchange{UserMessage: "q", AssistantReply: "a"})

	_ = session.Build(defaultPolicy(t), "alice", "next", store, 2)

	if store.Len("alice") != 1 {
		t.Fatalf("Build must not change memory, len=%d", store.Len("alice"))
	}
}

func TestMessagesKeepBracesVerbatim(t *testing.T) {
	store := memory.NewStore(0)
	store.Append("alice", model.Exchange{UserMessage: "q", AssistantReply: `{"topic":"x"}`})

	req := session.Build(defaultPolicy(t), "alice", "what is {this}?", store, 2)
	messages, err := req.Messages(context.Background())
	if err != nil {
		t.Fatalf("Messages err: %v", err)
	}
	if messages[2].Content != `{"topic":"x"}` {
		t.Fatalf("assistant history altered: %q", messages[2].Content)
	}
}
