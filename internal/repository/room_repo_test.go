package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestReserveBed_SingleConditionalUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepo(db)

	query := regexp.QuoteMeta("UPDATE `rooms` SET `occupied_beds`=occupied_beds + ? WHERE id = ? AND occupied_beds < bed_capacity")

	mock.ExpectBegin()
	mock.ExpectExec(query).WithArgs(1, 7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	reserved, err := repo.ReserveBed(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, reserved)

	mock.ExpectBegin()
	mock.ExpectExec(query).WithArgs(1, 7).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	reserved, err = repo.ReserveBed(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, reserved)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseBed_GuardsZero(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRoomRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `rooms` SET `occupied_beds`=occupied_beds - ? WHERE id = ? AND occupied_beds > 0")).
		WithArgs(1, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReleaseBed(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
