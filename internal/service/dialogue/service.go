package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/zhouzirui/z-memo/backend/internal/model/memory"
	"github.com/zhouzirui/z-memo/backend/internal/model/policy"
	"github.com/zhouzirui/z-memo/backend/internal/observability"
	"github.com/zhouzirui/z-memo/backend/internal/service/session"
	"github.com/zhouzirui/z-memo/backend/internal/service/validation"
)

const (
	modeStructured = "structured"
	modeStateless  = "stateless"
	maxRetries     = 2
)

// Completer is the remote completion capability.
type Completer interface {
	Complete(ctx context.Context, messages []*schema.Message) (string, error)
}

// Memory is the short-term store the service reads from and commits to.
type Memory interface {
	session.HistoryReader
	Append(userID string, exchange memory.Exchange)
	Users() int
}

// Config 控制单轮对话流程。
type Config struct {
	WindowSize    int
	TurnTimeout   time.Duration
	FormatRetries int
}

// Service orchestrates one turn: assemble, dispatch, parse, validate, commit.
type Service struct {
	gateway Completer
	memory  Memory
	policy  policy.Policy
	cfg     Config
	metrics *observability.Metrics
	locks   *keyLock
}

// NewService wires the dialogue pipeline. metrics may be nil.
func NewService(gateway Completer, mem Memory, p policy.Policy, cfg Config, metrics *observability.Metrics) *Service {
	if cfg.WindowSize < 0 {
		cfg.WindowSize = 0
	}
	if cfg.FormatRetries < 0 {
		cfg.FormatRetries = 0
	}
	if cfg.FormatRetries > maxRetries {
		cfg.FormatRetries = maxRetries
	}

	return &Service{
		gateway: gateway,
		memory:  mem,
		policy:  p,
		cfg:     cfg,
		metrics: metrics,
		locks:   newKeyLock(),
	}
}

// HandleTurn answers message for userID with a validated reply and records the exchange.
// Memory changes only when the whole pipeline succeeds.
func (s *Service) HandleTurn(ctx context.Context, userID, message string) (reply memory.StructuredReply, err error) {
	defer func() { s.metrics.ObserveTurn(modeStructured, outcome(err)) }()

	if strings.TrimSpace(userID) == "" || strings.TrimSpace(message) == "" {
		return memory.StructuredReply{}, ErrBadRequest
	}

	turnID := uuid.NewString()

	// 同一用户的读取、请求与写回必须串行，避免提交顺序错乱。
	unlock, err := s.locks.Lock(ctx, userID)
	if err != nil {
		return memory.StructuredReply{}, classifyUpstream(ctx, err)
	}
	defer unlock()

	req := session.Build(s.policy, userID, message, s.memory, s.cfg.WindowSize)
	messages, err := req.Messages(ctx)
	if err != nil {
		return memory.StructuredReply{}, err
	}

	for attempt := 0; ; attempt++ {
		raw, err := s.dispatch(ctx, messages)
		if err != nil {
			log.Printf("[dialogue] turn=%s user=%s dispatch failed: %v", turnID, userID, err)
			return memory.StructuredReply{}, err
		}

		reply, err = parseReply(raw)
		if err == nil {
			s.memory.Append(userID, memory.Exchange{
				ID:             uuid.NewString(),
				UserMessage:    message,
				AssistantReply: raw,
				CreatedAt:      time.Now().UTC(),
			})
			s.metrics.SetMemoryUsers(s.memory.Users())
			log.Printf("[dialogue] turn=%s user=%s committed, history=%d, attempts=%d", turnID, userID, len(req.History), attempt+1)
			return reply, nil
		}

		log.Printf("[dialogue] turn=%s user=%s attempt=%d rejected upstream output: %v raw=%q", turnID, userID, attempt+1, err, raw)
		if attempt >= s.cfg.FormatRetries {
			return memory.StructuredReply{}, fmt.Errorf("%w: %w", ErrUpstreamFormat, err)
		}

		s.metrics.IncFormatRetry()
		messages = append(messages,
			schema.AssistantMessage(raw, nil),
			schema.UserMessage(correctionPrompt(err)),
		)
	}
}

// Reply is the stateless variant: one user message in, raw model text out.
func (s *Service) Reply(ctx context.Context, message string) (text string, err error) {
	defer func() { s.metrics.ObserveTurn(modeStateless, outcome(err)) }()

	if strings.TrimSpace(message) == "" {
		return "", ErrBadRequest
	}

	raw, err := s.dispatch(ctx, []*schema.Message{schema.UserMessage(message)})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstreamFormat)
	}
	return raw, nil
}

func (s *Service) dispatch(ctx context.Context, messages []*schema.Message) (string, error) {
	callCtx := ctx
	if s.cfg.TurnTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.TurnTimeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := s.gateway.Complete(callCtx, messages)
	s.metrics.ObserveUpstreamLatency(time.Since(start))
	if err != nil {
		return "", classifyUpstream(callCtx, err)
	}
	return raw, nil
}

// classifyUpstream maps a gateway failure onto the error taxonomy.
func classifyUpstream(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}

func parseReply(raw string) (memory.StructuredReply, error) {
	var value any
	if err := sonic.UnmarshalString(strings.TrimSpace(raw), &value); err != nil {
		return memory.StructuredReply{}, fmt.Errorf("reply is not valid JSON: %w", err)
	}
	return validation.Validate(value)
}

func correctionPrompt(cause error) string {
	var verr *validation.ValidationError
	if errors.As(cause, &verr) && verr.Field != "" {
		return fmt.Sprintf("Your previous reply was rejected (%s %q). Respond again with only a JSON object containing the string fields \"topic\", \"summary\" and \"fun_fact\".", verr.Kind, verr.Field)
	}
	return "Your previous reply was not a valid JSON object. Respond again with only a JSON object containing the string fields \"topic\", \"summary\" and \"fun_fact\"."
}
