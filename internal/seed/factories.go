// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"kindler/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the login password shared by every seeded account.
const DefaultPassword = "SeededPass12!@"

var (
	locations = []string{
		"london", "manchester", "bristol", "leeds", "glasgow",
		"edinburgh", "liverpool", "birmingham", "cardiff", "york",
	}

	genders = []string{"female", "male", "nonbinary"}
)

// SeedOptions tunes factory behaviour.
type SeedOptions struct {
	// SkipBcrypt stores the plaintext password instead of hashing it.
	// Much faster for large seeds; never use outside local development.
	SkipBcrypt bool
	// DryRun builds entities without writing to the database.
	DryRun bool
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	rng  *rand.Rand
	// shared hash so the seeder does not pay for bcrypt per user
	passwordHash string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	gofakeit.Seed(time.Now().UnixNano())

	f := &Factory{
		db:     db,
		opts:   opts,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID: 1000,
	}
	if opts.SkipBcrypt {
		f.passwordHash = DefaultPassword
	} else {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		f.passwordHash = string(hashed)
	}
	return f
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	// Ages between 18 and 45
	age := 18 + f.rng.Intn(28)
	birthDate := time.Now().AddDate(-age, 0, -f.rng.Intn(364))

	user := &models.User{
		Username:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Password:  f.passwordHash,
		Nickname:  gofakeit.FirstName(),
		BirthDate: birthDate,
		Gender:    genders[f.rng.Intn(len(genders))],
		Bio:       gofakeit.Sentence(10),
		Location:  locations[f.rng.Intn(len(locations))],
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s (%s, %s)", user.Username, user.Gender, user.Location)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateMatch persists a pair row between two users with the given
// directional statuses. userA must differ from userB and a row for the pair
// must not already exist.
func (f *Factory) CreateMatch(userA, userB *models.User, aToB, bToA models.SwipeStatus) (*models.Match, error) {
	match := &models.Match{
		UserAID:    userA.ID,
		UserBID:    userB.ID,
		AToBStatus: aToB,
		BToAStatus: bToA,
	}

	if f.opts.DryRun {
		f.nextID++
		match.ID = f.nextID
		log.Printf("[dry-run] CreateMatch: %d->%s %d->%s", userA.ID, aToB, userB.ID, bToA)
		return match, nil
	}

	if err := f.db.Create(match).Error; err != nil {
		return nil, err
	}
	return match, nil
}

// CreateMessage persists a message between two users with a generated body
// and a created_at spread over the past maxDays days.
func (f *Factory) CreateMessage(sender, recipient *models.User, maxDays int, overrides ...func(*models.Message)) (*models.Message, error) {
	if maxDays <= 0 {
		maxDays = 30
	}
	message := &models.Message{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Content:     gofakeit.Sentence(4 + f.rng.Intn(10)),
		CreatedAt: time.Now().
			Add(-time.Duration(f.rng.Intn(maxDays*24)) * time.Hour).
			Add(-time.Duration(f.rng.Intn(60)) * time.Minute),
	}

	for _, override := range overrides {
		override(message)
	}

	if f.opts.DryRun {
		f.nextID++
		message.ID = f.nextID
		log.Printf("[dry-run] CreateMessage: %d -> %d %q", sender.ID, recipient.ID, message.Content)
		return message, nil
	}

	if err := f.db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}
