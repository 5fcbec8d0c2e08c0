// Package service implements the business logic layer of the application.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"kindler/internal/middleware"
	"kindler/internal/models"
	"kindler/internal/observability"
	"kindler/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// PictureLoader loads a user's encoded profile picture and its MIME type.
type PictureLoader interface {
	LoadEncoded(ctx context.Context, userID uint) ([]byte, string, error)
}

// CandidateCard is the profile shown to a user for a swipe decision. The
// zero value (UserID 0) means the candidate pool is exhausted.
type CandidateCard struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
}

// FriendEntry is one row of the friend list, enriched with the counterpart's
// nickname, the latest message exchanged, and the profile picture. Field
// names follow the wire contract consumed by existing clients.
type FriendEntry struct {
	FriendID            uint   `json:"friendId"`
	FriendNickname      string `json:"friendNickname"`
	FriendLatestMessage string `json:"friendLatestMessage,omitempty"`
	FriendPicture       []byte `json:"friendProfilePicture,omitempty"`
	MimeType            string `json:"mimeType,omitempty"`
}

// MatchService implements swipe decisions, candidate selection and
// friendship derivation on top of the match pair store.
type MatchService struct {
	matchRepo   repository.MatchRepository
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	pictures    PictureLoader
}

// NewMatchService returns a new MatchService. pictures may be nil, in which
// case friend entries carry no picture.
func NewMatchService(matchRepo repository.MatchRepository, userRepo repository.UserRepository, messageRepo repository.MessageRepository, pictures PictureLoader) *MatchService {
	return &MatchService{
		matchRepo:   matchRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		pictures:    pictures,
	}
}

// UpdateStatus records fromUserID's swipe decision toward toUserID. When no
// pair row exists the caller becomes slot A and the other direction starts
// pending; otherwise only the caller's directional slot is written. Returns
// the resulting pair state.
func (s *MatchService) UpdateStatus(ctx context.Context, fromUserID, toUserID uint, status models.SwipeStatus) (*models.Match, error) {
	ctx, span := observability.StartSpan(ctx, "MatchService.UpdateStatus",
		attribute.String("swipe.status", string(status)))
	defer span.End()

	if !models.ValidSwipeInput(status) {
		return nil, models.NewValidationError("Status must be 'like' or 'pass'")
	}
	if fromUserID == toUserID {
		return nil, models.NewInvalidOperationError("Cannot swipe on yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, fromUserID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, toUserID); err != nil {
		return nil, err
	}

	// Two attempts: a concurrent first swipe from the other side can win the
	// insert, in which case the pair is re-read and the slot updated instead.
	for attempt := 0; attempt < 2; attempt++ {
		match, err := s.matchRepo.GetByPair(ctx, fromUserID, toUserID)
		if err != nil {
			return nil, err
		}

		if match == nil {
			match = &models.Match{
				UserAID:    fromUserID,
				UserBID:    toUserID,
				AToBStatus: status,
				BToAStatus: models.SwipeStatusPending,
			}
			err := s.matchRepo.Create(ctx, match)
			if errors.Is(err, repository.ErrDuplicatePair) {
				continue
			}
			if err != nil {
				return nil, err
			}
			observability.SwipesTotal.WithLabelValues(string(status)).Inc()
			return match, nil
		}

		direction, ok := match.DirectionFrom(fromUserID)
		if !ok {
			return nil, models.NewStorageError(errors.New("pair row does not involve swiping user"))
		}

		wasMutual := match.IsMutualLike()
		if err := s.matchRepo.SetDirection(ctx, match.ID, direction, status); err != nil {
			return nil, err
		}
		if direction == models.DirectionAToB {
			match.AToBStatus = status
		} else {
			match.BToAStatus = status
		}

		observability.SwipesTotal.WithLabelValues(string(status)).Inc()
		if !wasMutual && match.IsMutualLike() {
			observability.MatchesFormed.Inc()
			middleware.Logger.InfoContext(ctx, "match formed",
				slog.Any("user_a", match.UserAID),
				slog.Any("user_b", match.UserBID),
			)
		}
		return match, nil
	}

	return nil, models.NewStorageError(errors.New("could not settle pair row for swipe"))
}

// NextCandidate picks a random user the caller has not yet decided on.
// Sampling prefers the caller's location and falls back to the whole pool;
// a candidate qualifies when no pair row exists or the caller's outgoing
// slot is still pending. The zero-value card is returned on exhaustion.
func (s *MatchService) NextCandidate(ctx context.Context, userID uint) (CandidateCard, error) {
	ctx, span := observability.StartSpan(ctx, "MatchService.NextCandidate")
	defer span.End()

	viewer, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return CandidateCard{}, err
	}

	exclude := []uint{userID}
	location := viewer.Location

	for {
		candidate, err := s.userRepo.SampleRandomExcluding(ctx, exclude, location)
		if err != nil {
			return CandidateCard{}, err
		}
		if candidate == nil {
			if location != "" {
				// Nearby pool is spent, widen to everyone
				location = ""
				observability.CandidateFallbacks.Inc()
				continue
			}
			observability.CandidateExhaustion.Inc()
			return CandidateCard{}, nil
		}

		exclude = append(exclude, candidate.ID)

		match, err := s.matchRepo.GetByPair(ctx, userID, candidate.ID)
		if err != nil {
			return CandidateCard{}, err
		}
		if match == nil {
			return cardFor(candidate), nil
		}
		if outgoing, ok := match.OutgoingStatus(userID); ok && outgoing == models.SwipeStatusPending {
			return cardFor(candidate), nil
		}
	}
}

func cardFor(user *models.User) CandidateCard {
	return CandidateCard{
		UserID:   user.ID,
		Username: user.Username,
		Nickname: user.Nickname,
		Age:      user.Age(time.Now()),
		Gender:   user.Gender,
		Bio:      user.Bio,
		Location: user.Location,
	}
}

// IsFriend reports whether the two users have mutually liked each other.
func (s *MatchService) IsFriend(ctx context.Context, userID, otherUserID uint) (bool, error) {
	if userID == otherUserID {
		return false, models.NewInvalidOperationError("Cannot check friendship with yourself")
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return false, err
	}
	if _, err := s.userRepo.GetByID(ctx, otherUserID); err != nil {
		return false, err
	}

	match, err := s.matchRepo.GetByPair(ctx, userID, otherUserID)
	if err != nil {
		return false, err
	}
	if match == nil {
		return false, nil
	}
	return match.IsMutualLike(), nil
}

// Friends assembles the enriched friend list for userID. A friend whose user
// row has vanished is skipped; a failed picture load degrades that entry to
// text only. Repository failures other than those abort the listing.
func (s *MatchService) Friends(ctx context.Context, userID uint) ([]FriendEntry, error) {
	ctx, span := observability.StartSpan(ctx, "MatchService.Friends")
	defer span.End()

	matches, err := s.matchRepo.MutualLikes(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]FriendEntry, 0, len(matches))
	for i := range matches {
		friendID := matches[i].CounterpartOf(userID)

		friend, err := s.userRepo.GetByID(ctx, friendID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				middleware.Logger.WarnContext(ctx, "skipping friend entry, user row missing",
					slog.Any("friend_id", friendID))
				continue
			}
			return nil, err
		}

		entry := FriendEntry{
			FriendID:       friendID,
			FriendNickname: friend.Nickname,
		}

		latest, err := s.messageRepo.LatestBetween(ctx, userID, friendID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			entry.FriendLatestMessage = latest.Content
		}

		if s.pictures != nil && friend.PicturePath != "" {
			data, mime, err := s.pictures.LoadEncoded(ctx, friendID)
			if err != nil {
				middleware.Logger.WarnContext(ctx, "friend picture unavailable",
					slog.Any("friend_id", friendID),
					slog.String("error", err.Error()))
			} else {
				entry.FriendPicture = data
				entry.MimeType = mime
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
