package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentgov/election-api/internal/models"
	appErrors "github.com/studentgov/election-api/pkg/errors"
)

func supporterRows(status models.SupporterStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "student_id", "candidate_id", "nomination_id", "role", "status", "created_at", "updated_at"}).
		AddRow("s1", "stu1", "cand1", "nom1", string(models.RoleProposer), string(status), now, now)
}

func TestAcceptWithinCapSucceedsUnderCap(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSupporterRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM supporter_requests WHERE id = $1 FOR UPDATE")).
		WithArgs("s1").
		WillReturnRows(supporterRows(models.SupporterPending))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM nominations WHERE id = $1 FOR UPDATE")).
		WithArgs("nom1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("nom1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM supporter_requests")).
		WithArgs("nom1", models.RoleProposer, models.SupporterAccepted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE supporter_requests SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("s1", models.SupporterAccepted, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.AcceptWithinCap(context.Background(), "s1", 5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The nomination row must be locked before the accepted rows are counted;
// the request-row lock alone does not serialise accepts of two different
// requests for the same nomination and role.
func TestAcceptWithinCapLocksNominationBeforeCounting(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSupporterRepository(db)

	mock.MatchExpectationsInOrder(true)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM supporter_requests WHERE id = $1 FOR UPDATE")).
		WithArgs("s1").
		WillReturnRows(supporterRows(models.SupporterPending))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM nominations WHERE id = $1 FOR UPDATE")).
		WithArgs("nom1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("nom1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM supporter_requests")).
		WithArgs("nom1", models.RoleProposer, models.SupporterAccepted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE supporter_requests")).
		WithArgs("s1", models.SupporterAccepted, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.AcceptWithinCap(context.Background(), "s1", 5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptWithinCapRejectsFullSlot(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSupporterRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM supporter_requests WHERE id = $1 FOR UPDATE")).
		WithArgs("s1").
		WillReturnRows(supporterRows(models.SupporterPending))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM nominations WHERE id = $1 FOR UPDATE")).
		WithArgs("nom1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("nom1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM supporter_requests")).
		WithArgs("nom1", models.RoleProposer, models.SupporterAccepted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectRollback()

	err := repo.AcceptWithinCap(context.Background(), "s1", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrCapacityExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptWithinCapRejectsNonPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSupporterRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM supporter_requests WHERE id = $1 FOR UPDATE")).
		WithArgs("s1").
		WillReturnRows(supporterRows(models.SupporterAccepted))
	mock.ExpectRollback()

	err := repo.AcceptWithinCap(context.Background(), "s1", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSupporterExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSupporterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM supporter_requests")).
		WithArgs("stu1", "nom1", models.RoleSeconder).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "stu1", "nom1", models.RoleSeconder)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
