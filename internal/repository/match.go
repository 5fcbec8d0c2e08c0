package repository

import (
	"context"
	"errors"

	"kindler/internal/models"
	"kindler/internal/observability"

	"gorm.io/gorm"
)

// ErrDuplicatePair is returned by Create when a row for the same unordered
// pair already exists. Callers should re-read the pair and retry.
var ErrDuplicatePair = errors.New("match already exists for pair")

// MatchRepository defines persistence operations for match pairs.
type MatchRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Match, error)
	GetByPair(ctx context.Context, userID1, userID2 uint) (*models.Match, error)
	Create(ctx context.Context, match *models.Match) error
	SetDirection(ctx context.Context, matchID uint, direction models.MatchDirection, status models.SwipeStatus) error
	MutualLikes(ctx context.Context, userID uint) ([]models.Match, error)
}

type matchRepository struct {
	db *gorm.DB
}

// NewMatchRepository returns a new MatchRepository implementation.
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) GetByID(ctx context.Context, id uint) (*models.Match, error) {
	var match models.Match
	if err := r.db.WithContext(ctx).First(&match, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Match", id)
		}
		return nil, models.NewStorageError(err)
	}
	return &match, nil
}

// GetByPair finds the row for an unordered pair. Slot assignment is fixed at
// creation, so both orderings are checked. Returns nil, nil when no row
// exists yet.
func (r *matchRepository) GetByPair(ctx context.Context, userID1, userID2 uint) (*models.Match, error) {
	defer observability.TrackQuery("get_by_pair", "matches")()

	var match models.Match
	if err := r.db.WithContext(ctx).
		Where("(user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?)",
			userID1, userID2, userID2, userID1).
		First(&match).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewStorageError(err)
	}
	return &match, nil
}

func (r *matchRepository) Create(ctx context.Context, match *models.Match) error {
	defer observability.TrackQuery("create", "matches")()

	if err := r.db.WithContext(ctx).Create(match).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicatePair
		}
		return models.NewStorageError(err)
	}
	return nil
}

// SetDirection updates one directional slot of a match row. Each party writes
// only its own column, so concurrent swipes from both sides cannot overwrite
// each other.
func (r *matchRepository) SetDirection(ctx context.Context, matchID uint, direction models.MatchDirection, status models.SwipeStatus) error {
	defer observability.TrackQuery("set_direction", "matches")()

	column := "a_to_b_status"
	if direction == models.DirectionBToA {
		column = "b_to_a_status"
	}

	res := r.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ?", matchID).
		Update(column, status)
	if res.Error != nil {
		return models.NewStorageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Match", matchID)
	}
	return nil
}

// MutualLikes returns every match involving userID where both sides liked,
// oldest first so friend lists keep a stable order.
func (r *matchRepository) MutualLikes(ctx context.Context, userID uint) ([]models.Match, error) {
	defer observability.TrackQuery("mutual_likes", "matches")()

	var matches []models.Match
	if err := r.db.WithContext(ctx).
		Where("(user_a_id = ? OR user_b_id = ?) AND a_to_b_status = ? AND b_to_a_status = ?",
			userID, userID, models.SwipeStatusLike, models.SwipeStatusLike).
		Order("created_at ASC, id ASC").
		Find(&matches).Error; err != nil {
		return nil, models.NewStorageError(err)
	}
	return matches, nil
}
