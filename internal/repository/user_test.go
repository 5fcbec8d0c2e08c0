package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"kindler/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name          string
		userID        uint
		mockBehavior  func()
		expectedUser  *models.User
		expectedError bool
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "nickname"}).
					AddRow(1, "ada", "Ada")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
			expectedUser: &models.User{ID: 1, Username: "ada", Nickname: "Ada"},
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedError {
				assert.True(t, models.IsCode(err, models.CodeNotFound))
			} else if assert.NotNil(t, user) {
				assert.Equal(t, tt.expectedUser.Username, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "username"}).AddRow(1, "ada")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)).
			WithArgs("ada", 1).
			WillReturnRows(rows)

		user, err := repo.GetByUsername(ctx, "ada")
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "ada", user.Username)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found Returns Nil", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
			WithArgs("ghost", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		user, err := repo.GetByUsername(ctx, "ghost")
		assert.NoError(t, err)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := repo.Create(ctx, &models.User{Username: "ada", Nickname: "Ada"})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Username", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
			WillReturnError(errors.New(`duplicate key value violates unique constraint "uni_users_username" (SQLSTATE 23505)`))
		mock.ExpectRollback()

		err := repo.Create(ctx, &models.User{Username: "ada"})
		assert.True(t, models.IsCode(err, models.CodeValidation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_SampleRandomExcluding(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Filtered By Location", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "username", "location"}).
			AddRow(4, "sam", "london")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id NOT IN ($1,$2) AND location = $3 AND "users"."deleted_at" IS NULL ORDER BY random() LIMIT $4`)).
			WithArgs(1, 2, "london", 1).
			WillReturnRows(rows)

		user, err := repo.SampleRandomExcluding(ctx, []uint{1, 2}, "london")
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, uint(4), user.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unfiltered", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "username"}).AddRow(7, "kim")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id NOT IN ($1) AND "users"."deleted_at" IS NULL ORDER BY random() LIMIT $2`)).
			WithArgs(1, 1).
			WillReturnRows(rows)

		user, err := repo.SampleRandomExcluding(ctx, []uint{1}, "")
		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Pool Exhausted Returns Nil", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id NOT IN ($1)`)).
			WithArgs(1, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		user, err := repo.SampleRandomExcluding(ctx, []uint{1}, "")
		assert.NoError(t, err)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
