package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDuplicate(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	assert.True(t, isDuplicate(dup))
	assert.True(t, isDuplicate(fmt.Errorf("insert: %w", dup)))
	assert.False(t, isDuplicate(&mysql.MySQLError{Number: 1213}))
	assert.False(t, isDuplicate(errors.New("boom")))
}

func TestSlotsJSON(t *testing.T) {
	raw, err := encodeSlots(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	slots, err := decodeSlots([]byte(`["6:30 AM","7:00 AM"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"6:30 AM", "7:00 AM"}, slots)

	slots, err = decodeSlots(nil)
	require.NoError(t, err)
	assert.Empty(t, slots)

	_, err = decodeSlots([]byte(`{`))
	assert.Error(t, err)
}

func TestFavoriteAddDuplicateIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewFavoriteRepo(db)
	insert := regexp.QuoteMeta("INSERT INTO favorites (user_id, lawyer_id) VALUES (?,?)")

	mock.ExpectExec(insert).WithArgs(1, 2).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).WithArgs(1, 2).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT lawyer_id FROM favorites WHERE user_id=? ORDER BY id")).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"lawyer_id"}).AddRow(2))

	require.NoError(t, repo.Add(context.Background(), 1, 2))
	assert.ErrorIs(t, repo.Add(context.Background(), 1, 2), ErrConflict)
	ids, err := repo.LawyerIDs(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
