package models

import "time"

// SwipeStatus is one user's decision toward another within a match pair.
type SwipeStatus string

const (
	// SwipeStatusPending indicates the user has not yet decided.
	SwipeStatusPending SwipeStatus = "pending"
	// SwipeStatusLike indicates the user liked the other party.
	SwipeStatusLike SwipeStatus = "like"
	// SwipeStatusPass indicates the user passed on the other party.
	SwipeStatusPass SwipeStatus = "pass"
)

// ValidSwipeInput reports whether s is a status a caller may submit.
// Pending is the initial state only; it cannot be swiped back to.
func ValidSwipeInput(s SwipeStatus) bool {
	return s == SwipeStatusLike || s == SwipeStatusPass
}

// MatchDirection names one of the two directional slots on a Match row.
type MatchDirection string

const (
	// DirectionAToB is the slot holding user A's decision toward user B.
	DirectionAToB MatchDirection = "a_to_b"
	// DirectionBToA is the slot holding user B's decision toward user A.
	DirectionBToA MatchDirection = "b_to_a"
)

// Match holds the bidirectional swipe state for one unordered pair of users.
// Exactly one row exists per pair; slot A belongs to whichever user created
// the row first and the assignment never flips afterwards. Lookups must
// therefore check both (A,B) and (B,A) orderings.
type Match struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	UserAID    uint        `gorm:"not null;index" json:"user_a_id"`
	UserBID    uint        `gorm:"not null;index" json:"user_b_id"`
	AToBStatus SwipeStatus `gorm:"type:varchar(10);not null;default:'pending'" json:"a_to_b_status"`
	BToAStatus SwipeStatus `gorm:"type:varchar(10);not null;default:'pending'" json:"b_to_a_status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Match) TableName() string {
	return "matches"
}

// Involves reports whether userID occupies either slot of the pair.
func (m *Match) Involves(userID uint) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// DirectionFrom returns the slot holding userID's outgoing decision.
// ok is false when userID is not part of the pair.
func (m *Match) DirectionFrom(userID uint) (MatchDirection, bool) {
	switch userID {
	case m.UserAID:
		return DirectionAToB, true
	case m.UserBID:
		return DirectionBToA, true
	}
	return "", false
}

// OutgoingStatus returns userID's decision toward the counterpart.
func (m *Match) OutgoingStatus(userID uint) (SwipeStatus, bool) {
	switch userID {
	case m.UserAID:
		return m.AToBStatus, true
	case m.UserBID:
		return m.BToAStatus, true
	}
	return "", false
}

// CounterpartOf returns the other user in the pair, or 0 when userID is
// not part of it.
func (m *Match) CounterpartOf(userID uint) uint {
	switch userID {
	case m.UserAID:
		return m.UserBID
	case m.UserBID:
		return m.UserAID
	}
	return 0
}

// IsMutualLike reports whether both directional statuses are like, which is
// the definition of friendship.
func (m *Match) IsMutualLike() bool {
	return m.AToBStatus == SwipeStatusLike && m.BToAStatus == SwipeStatusLike
}
