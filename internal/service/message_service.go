package service

import (
	"context"
	"strings"

	"kindler/internal/models"
	"kindler/internal/observability"
	"kindler/internal/repository"
)

const maxMessageLength = 2000

// FriendshipChecker reports whether two users are friends. MatchService
// satisfies it.
type FriendshipChecker interface {
	IsFriend(ctx context.Context, userID, otherUserID uint) (bool, error)
}

// MessageService provides direct messaging between matched users.
type MessageService struct {
	messageRepo repository.MessageRepository
	friends     FriendshipChecker
}

// NewMessageService returns a new MessageService.
func NewMessageService(messageRepo repository.MessageRepository, friends FriendshipChecker) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		friends:     friends,
	}
}

// Send delivers a message from senderID to recipientID. Only friends
// (mutual likes) may message each other.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Message content is required")
	}
	if len(content) > maxMessageLength {
		return nil, models.NewValidationError("Message too long (max 2000 characters)")
	}

	areFriends, err := s.friends.IsFriend(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if !areFriends {
		return nil, models.NewInvalidOperationError("You can only message your matches")
	}

	message := &models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	observability.MessagesSent.Inc()
	return message, nil
}

// History returns a page of the conversation between userID and otherUserID,
// newest first. The friendship gate applies to reading as well.
func (s *MessageService) History(ctx context.Context, userID, otherUserID uint, limit, offset int) ([]models.Message, error) {
	areFriends, err := s.friends.IsFriend(ctx, userID, otherUserID)
	if err != nil {
		return nil, err
	}
	if !areFriends {
		return nil, models.NewInvalidOperationError("You can only view conversations with your matches")
	}

	return s.messageRepo.ListBetween(ctx, userID, otherUserID, limit, offset)
}
