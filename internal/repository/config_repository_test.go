package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentgov/election-api/internal/models"
)

func configRowColumns() []string {
	return []string{
		"id", "nomination_start", "nomination_end", "campaigner_start", "campaigner_end",
		"manifesto_phase1_start", "manifesto_phase1_end", "manifesto_phase2_start", "manifesto_phase2_end",
		"manifesto_final_start", "manifesto_final_end",
		"max_proposers", "max_seconders", "max_campaigners",
		"phase1_reviewer_credentials", "phase2_reviewer_credentials", "final_reviewer_credentials",
		"created_at", "updated_at",
	}
}

func TestConfigGetReturnsExistingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewConfigRepository(db)

	now := time.Now()
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)
	rows := sqlmock.NewRows(configRowColumns()).
		AddRow("cfg1", start, end, nil, nil, nil, nil, nil, nil, nil, nil,
			5, 5, 10,
			[]byte(`{"username":"p1","password":"secret"}`), []byte(`{}`), []byte(`{}`),
			now, now)
	mock.ExpectQuery("SELECT (.+) FROM system_config").WillReturnRows(rows)

	cfg, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cfg1", cfg.ID)
	assert.Equal(t, 10, cfg.MaxCampaigners)
	assert.Equal(t, "p1", cfg.Phase1ReviewerCredentials.Username)
	require.NotNil(t, cfg.NominationStart)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigGetCreatesDefaultWhenAbsent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewConfigRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM system_config").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO system_config").WillReturnResult(sqlmock.NewResult(1, 1))

	cfg, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.ID)
	assert.Equal(t, models.DefaultMaxProposers, cfg.MaxProposers)
	assert.Equal(t, models.DefaultMaxSeconders, cfg.MaxSeconders)
	assert.Equal(t, models.DefaultMaxCampaigners, cfg.MaxCampaigners)
	assert.Nil(t, cfg.NominationStart)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewConfigRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE system_config SET")).WillReturnResult(sqlmock.NewResult(0, 1))

	cfg := &models.SystemConfig{ID: "cfg1", MaxProposers: 3, MaxSeconders: 3, MaxCampaigners: 8}
	err := repo.Update(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
