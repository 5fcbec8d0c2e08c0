package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserAge(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		birthDate time.Time
		expected  int
	}{
		{"Birthday Already Passed", time.Date(2000, 3, 1, 0, 0, 0, 0, time.UTC), 26},
		{"Birthday Not Yet Reached", time.Date(2000, 9, 1, 0, 0, 0, 0, time.UTC), 25},
		{"Birthday Today", time.Date(2001, 6, 15, 0, 0, 0, 0, time.UTC), 25},
		{"Zero Birth Date", time.Time{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{BirthDate: tt.birthDate}
			assert.Equal(t, tt.expected, u.Age(now))
		})
	}
}

func TestMatchDirectionHelpers(t *testing.T) {
	m := Match{ID: 1, UserAID: 10, UserBID: 20, AToBStatus: SwipeStatusLike, BToAStatus: SwipeStatusPending}

	dir, ok := m.DirectionFrom(10)
	assert.True(t, ok)
	assert.Equal(t, DirectionAToB, dir)

	dir, ok = m.DirectionFrom(20)
	assert.True(t, ok)
	assert.Equal(t, DirectionBToA, dir)

	_, ok = m.DirectionFrom(30)
	assert.False(t, ok)

	assert.Equal(t, uint(20), m.CounterpartOf(10))
	assert.Equal(t, uint(10), m.CounterpartOf(20))
	assert.Equal(t, uint(0), m.CounterpartOf(30))

	outgoing, ok := m.OutgoingStatus(20)
	assert.True(t, ok)
	assert.Equal(t, SwipeStatusPending, outgoing)

	assert.False(t, m.IsMutualLike())
	m.BToAStatus = SwipeStatusLike
	assert.True(t, m.IsMutualLike())
}

func TestValidSwipeInput(t *testing.T) {
	assert.True(t, ValidSwipeInput(SwipeStatusLike))
	assert.True(t, ValidSwipeInput(SwipeStatusPass))
	assert.False(t, ValidSwipeInput(SwipeStatusPending))
	assert.False(t, ValidSwipeInput(SwipeStatus("superlike")))
}
