// Command main runs the database seeder for Kindler.
package main

import (
	"flag"
	"log"

	"kindler/internal/config"
	"kindler/internal/database"
	"kindler/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	swipeRate := flag.Float64("swipe-rate", 0.4, "Probability a pair of users has swiped")
	likeRate := flag.Float64("like-rate", 0.6, "Probability a swipe is a like")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plaintext passwords (fast, dev only)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, swipe=%.2f like=%.2f clean=%v\n",
		*numUsers, *swipeRate, *likeRate, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db, seed.SeedOptions{SkipBcrypt: *skipBcrypt})
	if err := s.Seed(seed.Options{
		NumUsers:    *numUsers,
		ShouldClean: *shouldClean,
		SwipeRate:   *swipeRate,
		LikeRate:    *likeRate,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("🔑 All test users have the password: %s", seed.DefaultPassword)
}
