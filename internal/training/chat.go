package training

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/coach"
	"github.com/myrjola/calicoach/internal/contexthelpers"
)

// Coach replies to chat messages.
type Coach interface {
	Reply(ctx context.Context, profile *assessment.Profile, history []coach.Message, question string) (string, error)
}

const (
	maxMessageRunes = 2000
	// transcriptLength is both the page size of CoachTranscript and the history sent along with a question.
	transcriptLength = 50
)

// SendCoachMessage asks the coach and stores the question and the reply. The reply is grounded in the active
// profile so that the coach knows which movements to stay away from.
func (s *Service) SendCoachMessage(ctx context.Context, content string) (ChatMessage, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if userID == 0 {
		return ChatMessage{}, ErrAccountRequired
	}
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxMessageRunes {
		return ChatMessage{}, fmt.Errorf("%w: message must be between 1 and %d characters", ErrInvalidMessage,
			maxMessageRunes)
	}
	if s.coach == nil {
		return ChatMessage{}, coach.ErrCoachOffline
	}
	if err := s.checkAllowance(ctx, userID, UsageChat); err != nil {
		return ChatMessage{}, err
	}

	var profile *assessment.Profile
	active, err := s.repo.profiles.Active(ctx, userID)
	switch {
	case err == nil:
		profile = &active.Profile
	case !errors.Is(err, ErrNotFound):
		return ChatMessage{}, fmt.Errorf("get active profile: %w", err)
	}

	transcript, err := s.repo.chat.Recent(ctx, userID, transcriptLength)
	if err != nil {
		return ChatMessage{}, fmt.Errorf("get transcript: %w", err)
	}
	history := make([]coach.Message, len(transcript))
	for i, m := range transcript {
		history[i] = coach.Message{Role: m.Role, Content: m.Content}
	}

	reply, err := s.coach.Reply(ctx, profile, history, content)
	if err != nil {
		return ChatMessage{}, fmt.Errorf("coach reply: %w", err)
	}

	now := s.now()
	answer := ChatMessage{ID: 0, Role: coach.RoleAssistant, Content: reply, Created: now}
	if err = s.repo.chat.Append(ctx, userID, now,
		ChatMessage{ID: 0, Role: coach.RoleUser, Content: content, Created: now},
		answer,
	); err != nil {
		return ChatMessage{}, fmt.Errorf("store chat messages: %w", err)
	}
	s.recordUsage(ctx, userID, UsageChat)
	return answer, nil
}

// CoachTranscript returns the latest messages of the current account, oldest first.
func (s *Service) CoachTranscript(ctx context.Context) ([]ChatMessage, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if userID == 0 {
		return nil, nil
	}
	messages, err := s.repo.chat.Recent(ctx, userID, transcriptLength)
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return messages, nil
}
