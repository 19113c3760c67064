package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentgov/election-api/internal/models"
)

func TestNominationCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNominationRepository(db)

	mock.ExpectExec("INSERT INTO nominations").WillReturnResult(sqlmock.NewResult(1, 1))

	n := &models.Nomination{
		UserID:    "u1",
		Positions: pq.StringArray{"President"},
		CPI:       8.7,
		Status:    models.NominationPending,
	}
	err := repo.Create(context.Background(), n)
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNominationFindByUserID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNominationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "positions", "cpi", "status", "locked", "created_at", "updated_at"}).
		AddRow("n1", "u1", []byte("{President}"), 8.7, string(models.NominationPending), false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, positions, cpi, status, locked, created_at, updated_at FROM nominations WHERE user_id = $1 LIMIT 1")).
		WithArgs("u1").
		WillReturnRows(rows)

	n, err := repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, models.NominationPending, n.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNominationUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNominationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE nominations SET status = $2, locked = $3, updated_at = $4 WHERE id = $1")).
		WithArgs("n1", models.NominationAccepted, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "n1", models.NominationAccepted, true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
