package seed

import (
	"fmt"
	"log"

	"kindler/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	ShouldClean bool
	// SwipeRate is the probability that a given unordered pair of users has
	// a pair row at all.
	SwipeRate float64
	// LikeRate is the probability that a recorded swipe is a like rather
	// than a pass.
	LikeRate float64
}

// DefaultOptions returns seeding parameters that produce a lively pool with
// a healthy share of mutual likes.
func DefaultOptions() Options {
	return Options{
		NumUsers:    50,
		ShouldClean: true,
		SwipeRate:   0.4,
		LikeRate:    0.6,
	}
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts SeedOptions) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db, opts),
	}
}

// ClearAll removes seeded rows. Order matters: messages and matches first,
// users last.
func (s *Seeder) ClearAll() error {
	session := s.db.Session(&gorm.Session{AllowGlobalUpdate: true})

	if err := session.Delete(&models.Message{}).Error; err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}
	if err := session.Delete(&models.Match{}).Error; err != nil {
		return fmt.Errorf("clearing matches: %w", err)
	}
	if err := session.Unscoped().Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("clearing users: %w", err)
	}

	log.Println("✓ database cleared")
	return nil
}

// SeedSwipePool creates the users and a mesh of swipe decisions between
// them. Returns the created users.
func (s *Seeder) SeedSwipePool(opts Options) ([]*models.User, error) {
	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("creating user %d: %w", i, err)
		}
		users = append(users, user)
	}
	log.Printf("✓ %d users created", len(users))

	rng := s.factory.rng
	swipe := func() models.SwipeStatus {
		if rng.Float64() < opts.LikeRate {
			return models.SwipeStatusLike
		}
		return models.SwipeStatusPass
	}

	var pairs, mutual int
	for i := 0; i < len(users); i++ {
		for j := i + 1; j < len(users); j++ {
			if rng.Float64() >= opts.SwipeRate {
				continue
			}

			aToB := swipe()
			// Roughly half the pairs have only one decided side
			bToA := models.SwipeStatusPending
			if rng.Float64() < 0.5 {
				bToA = swipe()
			}

			match, err := s.factory.CreateMatch(users[i], users[j], aToB, bToA)
			if err != nil {
				return nil, fmt.Errorf("creating pair row: %w", err)
			}
			pairs++
			if match.IsMutualLike() {
				mutual++
			}
		}
	}
	log.Printf("✓ %d pair rows created (%d mutual)", pairs, mutual)

	return users, nil
}

// SeedConversations writes a short message history for every mutual-like
// pair among the given users.
func (s *Seeder) SeedConversations(users []*models.User) (int, error) {
	byID := make(map[uint]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	var matches []models.Match
	if err := s.db.
		Where("a_to_b_status = ? AND b_to_a_status = ?", models.SwipeStatusLike, models.SwipeStatusLike).
		Find(&matches).Error; err != nil {
		return 0, fmt.Errorf("listing mutual pairs: %w", err)
	}

	rng := s.factory.rng
	var sent int
	for i := range matches {
		a, b := byID[matches[i].UserAID], byID[matches[i].UserBID]
		if a == nil || b == nil {
			continue
		}

		// Conversations alternate and vary in length
		count := 2 + rng.Intn(7)
		for m := 0; m < count; m++ {
			sender, recipient := a, b
			if m%2 == 1 {
				sender, recipient = b, a
			}
			if _, err := s.factory.CreateMessage(sender, recipient, 30); err != nil {
				return sent, fmt.Errorf("creating message: %w", err)
			}
			sent++
		}
	}

	log.Printf("✓ %d messages created across %d conversations", sent, len(matches))
	return sent, nil
}

// Seed runs the full pipeline: optional clean, users, swipe mesh, and
// conversations between the resulting friends.
func (s *Seeder) Seed(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.SeedSwipePool(opts)
	if err != nil {
		return err
	}

	_, err = s.SeedConversations(users)
	return err
}
