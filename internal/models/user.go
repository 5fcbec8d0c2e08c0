// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered Kindler user together with the profile
// shown on swipe cards.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"unique;not null" json:"username"`
	Password    string         `gorm:"not null" json:"-"`
	Nickname    string         `gorm:"not null" json:"nickname"`
	BirthDate   time.Time      `json:"birth_date"`
	Gender      string         `gorm:"type:varchar(16);not null" json:"gender"`
	Bio         string         `json:"bio"`
	Location    string         `gorm:"index" json:"location"`
	PicturePath string         `json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Age returns the user's age in whole years at the given instant.
func (u *User) Age(now time.Time) int {
	if u.BirthDate.IsZero() {
		return 0
	}
	years := now.Year() - u.BirthDate.Year()
	if now.YearDay() < u.BirthDate.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
