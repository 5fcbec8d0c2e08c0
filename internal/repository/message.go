package repository

import (
	"context"
	"errors"

	"kindler/internal/models"
	"kindler/internal/observability"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	LatestBetween(ctx context.Context, userID1, userID2 uint) (*models.Message, error)
	ListBetween(ctx context.Context, userID1, userID2 uint, limit, offset int) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	defer observability.TrackQuery("create", "messages")()

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewStorageError(err)
	}
	return nil
}

// LatestBetween returns the newest message exchanged between the two users in
// either direction, or nil, nil when they have never messaged.
func (r *messageRepository) LatestBetween(ctx context.Context, userID1, userID2 uint) (*models.Message, error) {
	defer observability.TrackQuery("latest_between", "messages")()

	var message models.Message
	if err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID1, userID2, userID2, userID1).
		Order("created_at DESC, id DESC").
		Take(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewStorageError(err)
	}
	return &message, nil
}

func (r *messageRepository) ListBetween(ctx context.Context, userID1, userID2 uint, limit, offset int) ([]models.Message, error) {
	defer observability.TrackQuery("list_between", "messages")()

	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID1, userID2, userID2, userID1).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	return messages, nil
}
