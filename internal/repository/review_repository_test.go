package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewList_PagesWithOffset(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReviewRepo(db)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reviews WHERE lawyer_id=?")).WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(23))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")).WithArgs(20, 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "meeting_id", "lawyer_id", "client_id", "rating", "comment", "created_at"}).
			AddRow(3, 30, 20, 10, 4, "", at))

	items, total, err := repo.List(context.Background(), 20, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 23, total)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}
