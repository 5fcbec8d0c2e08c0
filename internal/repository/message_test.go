package repository

import (
	"context"
	"regexp"
	"testing"

	"kindler/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMessageRepository_LatestBetween(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`SELECT * FROM "messages" WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $3 AND recipient_id = $4) ORDER BY created_at DESC, id DESC LIMIT $5`)

	t.Run("Newest In Either Direction", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "sender_id", "recipient_id", "content"}).
			AddRow(30, 2, 1, "hey!")
		mock.ExpectQuery(query).
			WithArgs(1, 2, 2, 1, 1).
			WillReturnRows(rows)

		msg, err := repo.LatestBetween(ctx, 1, 2)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, "hey!", msg.Content)
		assert.Equal(t, uint(2), msg.SenderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No History Returns Nil", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(1, 3, 3, 1, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		msg, err := repo.LatestBetween(ctx, 1, 3)
		assert.NoError(t, err)
		assert.Nil(t, msg)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMessageRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "messages"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Create(ctx, &models.Message{SenderID: 1, RecipientID: 2, Content: "hello"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_ListBetween(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "sender_id", "recipient_id", "content"}).
		AddRow(31, 1, 2, "second").
		AddRow(30, 2, 1, "first")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "messages" WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $3 AND recipient_id = $4) ORDER BY created_at DESC, id DESC LIMIT $5`)).
		WithArgs(1, 2, 2, 1, 20).
		WillReturnRows(rows)

	messages, err := repo.ListBetween(ctx, 1, 2, 20, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "second", messages[0].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}
