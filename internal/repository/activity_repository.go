package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studentgov/election-api/internal/models"
)

// ActivityRepository records domain events for the superadmin audit trail.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new instance of ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create inserts an activity log entry.
func (r *ActivityRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO activity_logs (id, user_id, action, metadata, created_at)
VALUES (:id, :user_id, :action, :metadata, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}
	return nil
}

// List returns the most recent activity entries, bounded by limit.
func (r *ActivityRepository) List(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `SELECT id, user_id, action, metadata, created_at
FROM activity_logs
ORDER BY created_at DESC
LIMIT $1`
	var items []models.ActivityLog
	if err := r.db.SelectContext(ctx, &items, query, limit); err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	return items, nil
}
