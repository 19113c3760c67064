package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentgov/election-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestUserFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "roll_no", "department", "phone", "role", "created_at", "updated_at"}).
		AddRow("u1", "arya@iitk.ac.in", "hash", "Arya", "210101", "CSE", "", string(models.RoleStudent), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, name, roll_no, department, phone, role, created_at, updated_at FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("arya@iitk.ac.in").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "arya@iitk.ac.in")
	require.NoError(t, err)
	assert.Equal(t, "arya@iitk.ac.in", user.Email)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{
		Email:        "arya@iitk.ac.in",
		PasswordHash: "hash",
		Name:         "Arya",
		RollNo:       "210101",
		Department:   "CSE",
		Role:         models.RoleStudent,
	}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("u1", models.RoleAdmin, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateRole(context.Background(), "u1", models.RoleAdmin)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
