package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk/internal/api/metrics"
	"github.com/taskdesk/taskdesk/internal/core/domain"
	"github.com/taskdesk/taskdesk/internal/core/ports"
)

type ChatService struct {
	messages  ports.MessageRepository
	generator ports.TextGenerator
	logger    zerolog.Logger
}

func NewChatService(messages ports.MessageRepository, generator ports.TextGenerator, logger zerolog.Logger) *ChatService {
	return &ChatService{messages: messages, generator: generator, logger: logger}
}

// Send stores the user's message, asks the generator for a reply and stores
// that too. A generator failure is not returned: the fallback reply is
// stored instead and the exchange is marked Failed.
func (s *ChatService) Send(ctx context.Context, userID, text string) (*ports.ChatExchange, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("message", "Message is required.")
	}

	question := &domain.Message{UserID: userID, Role: domain.RoleUser, Content: text}
	if err := s.messages.Append(ctx, question); err != nil {
		return nil, fmt.Errorf("store user message: %w", err)
	}
	metrics.MessagesStoredTotal.WithLabelValues(string(domain.RoleUser)).Inc()

	exchange := &ports.ChatExchange{Question: question}

	start := time.Now()
	reply, err := s.generator.Generate(ctx, text)
	metrics.GenerationDuration.WithLabelValues("chat").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues("chat", "error").Inc()
		s.logger.Error().Err(err).Str("user_id", userID).Msg("chat generation failed")
		reply = domain.ChatFallbackReply
		exchange.Failed = true
	} else {
		metrics.GenerationRequestsTotal.WithLabelValues("chat", "ok").Inc()
	}

	answer := &domain.Message{UserID: userID, Role: domain.RoleAssistant, Content: reply}
	if err := s.messages.Append(ctx, answer); err != nil {
		return nil, fmt.Errorf("store assistant message: %w", err)
	}
	metrics.MessagesStoredTotal.WithLabelValues(string(domain.RoleAssistant)).Inc()

	exchange.Answer = answer
	return exchange, nil
}

func (s *ChatService) History(ctx context.Context, userID string) ([]*domain.Message, error) {
	return s.messages.ListByUser(ctx, userID)
}

func (s *ChatService) DeleteMessage(ctx context.Context, userID, id string) error {
	if err := s.messages.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Debug().Str("user_id", userID).Str("message_id", id).Msg("message deleted")
	return nil
}
