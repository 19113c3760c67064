package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studentgov/election-api/internal/models"
)

// ConfigRepository manages the single election configuration row. The row is
// created lazily with defaults the first time it is read.
type ConfigRepository struct {
	db *sqlx.DB
}

// NewConfigRepository creates a new instance of ConfigRepository.
func NewConfigRepository(db *sqlx.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

const configColumns = `id, nomination_start, nomination_end, campaigner_start, campaigner_end,
manifesto_phase1_start, manifesto_phase1_end, manifesto_phase2_start, manifesto_phase2_end,
manifesto_final_start, manifesto_final_end,
max_proposers, max_seconders, max_campaigners,
phase1_reviewer_credentials, phase2_reviewer_credentials, final_reviewer_credentials,
created_at, updated_at`

// Get returns the configuration row, creating it with defaults if absent.
func (r *ConfigRepository) Get(ctx context.Context) (*models.SystemConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM system_config ORDER BY created_at ASC LIMIT 1`, configColumns)
	var cfg models.SystemConfig
	err := r.db.GetContext(ctx, &cfg, query)
	if err == nil {
		return &cfg, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("get system config: %w", err)
	}
	return r.createDefault(ctx)
}

func (r *ConfigRepository) createDefault(ctx context.Context) (*models.SystemConfig, error) {
	now := time.Now().UTC()
	cfg := &models.SystemConfig{
		ID:             uuid.NewString(),
		MaxProposers:   models.DefaultMaxProposers,
		MaxSeconders:   models.DefaultMaxSeconders,
		MaxCampaigners: models.DefaultMaxCampaigners,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	const query = `INSERT INTO system_config (id, max_proposers, max_seconders, max_campaigners,
phase1_reviewer_credentials, phase2_reviewer_credentials, final_reviewer_credentials, created_at, updated_at)
VALUES (:id, :max_proposers, :max_seconders, :max_campaigners,
:phase1_reviewer_credentials, :phase2_reviewer_credentials, :final_reviewer_credentials, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cfg); err != nil {
		return nil, fmt.Errorf("create default system config: %w", err)
	}
	return cfg, nil
}

// Update rewrites the configuration row.
func (r *ConfigRepository) Update(ctx context.Context, cfg *models.SystemConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	const query = `UPDATE system_config SET
nomination_start = :nomination_start, nomination_end = :nomination_end,
campaigner_start = :campaigner_start, campaigner_end = :campaigner_end,
manifesto_phase1_start = :manifesto_phase1_start, manifesto_phase1_end = :manifesto_phase1_end,
manifesto_phase2_start = :manifesto_phase2_start, manifesto_phase2_end = :manifesto_phase2_end,
manifesto_final_start = :manifesto_final_start, manifesto_final_end = :manifesto_final_end,
max_proposers = :max_proposers, max_seconders = :max_seconders, max_campaigners = :max_campaigners,
phase1_reviewer_credentials = :phase1_reviewer_credentials,
phase2_reviewer_credentials = :phase2_reviewer_credentials,
final_reviewer_credentials = :final_reviewer_credentials,
updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, cfg)
	if err != nil {
		return fmt.Errorf("update system config: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
