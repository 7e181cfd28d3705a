package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/z-memo/backend/internal/config"
)

// Service adapts the configured chat model to a plain text completion call.
type Service struct {
	chatModel model.ChatModel
	opts      []model.Option
}

// NewService creates the completion gateway backed by the Ark chat model.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(chatModel, cfg), nil
}

// NewServiceWithModel wraps an existing chat model. Model name and temperature from cfg
// are sent with every call.
func NewServiceWithModel(chatModel model.ChatModel, cfg config.AIConfig) *Service {
	opts := make([]model.Option, 0, 2)
	if cfg.Model != "" {
		opts = append(opts, model.WithModel(cfg.Model))
	}
	if temperature := cfg.Temperature32(); temperature != nil {
		opts = append(opts, model.WithTemperature(*temperature))
	}

	return &Service{
		chatModel: chatModel,
		opts:      opts,
	}
}

// Complete sends the ordered messages and returns the raw text of the reply.
func (s *Service) Complete(ctx context.Context, messages []*schema.Message) (string, error) {
	response, err := s.chatModel.Generate(ctx, messages, s.opts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	if response == nil {
		return "", fmt.Errorf("chat model returned no message")
	}

	log.Printf("[ai] completion finished, messages=%d, length=%d", len(messages), len(response.Content))
	return response.Content, nil
}

// GetChatModel 返回底层的聊天模型
func (s *Service) GetChatModel() model.ChatModel {
	return s.chatModel
}
