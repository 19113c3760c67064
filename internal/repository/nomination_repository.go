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

// NominationRepository provides database access for candidate nominations.
type NominationRepository struct {
	db *sqlx.DB
}

// NewNominationRepository creates a new instance of NominationRepository.
func NewNominationRepository(db *sqlx.DB) *NominationRepository {
	return &NominationRepository{db: db}
}

const nominationColumns = `id, user_id, positions, cpi, status, locked, created_at, updated_at`

// Create inserts a new nomination for a candidate.
func (r *NominationRepository) Create(ctx context.Context, n *models.Nomination) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	const query = `INSERT INTO nominations (id, user_id, positions, cpi, status, locked, created_at, updated_at)
VALUES (:id, :user_id, :positions, :cpi, :status, :locked, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create nomination: %w", err)
	}
	return nil
}

// FindByID returns a nomination by identifier.
func (r *NominationRepository) FindByID(ctx context.Context, id string) (*models.Nomination, error) {
	query := fmt.Sprintf(`SELECT %s FROM nominations WHERE id = $1 LIMIT 1`, nominationColumns)
	var n models.Nomination
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find nomination by id: %w", err)
	}
	return &n, nil
}

// FindByUserID returns the nomination belonging to a candidate, if any.
func (r *NominationRepository) FindByUserID(ctx context.Context, userID string) (*models.Nomination, error) {
	query := fmt.Sprintf(`SELECT %s FROM nominations WHERE user_id = $1 LIMIT 1`, nominationColumns)
	var n models.Nomination
	if err := r.db.GetContext(ctx, &n, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find nomination by user: %w", err)
	}
	return &n, nil
}

// Update rewrites a nomination's editable fields.
func (r *NominationRepository) Update(ctx context.Context, n *models.Nomination) error {
	n.UpdatedAt = time.Now().UTC()
	const query = `UPDATE nominations
SET positions = :positions, cpi = :cpi, updated_at = :updated_at
WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, n)
	if err != nil {
		return fmt.Errorf("update nomination: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus changes a nomination's review status and lock flag.
func (r *NominationRepository) UpdateStatus(ctx context.Context, id string, status models.NominationStatus, locked bool) error {
	const query = `UPDATE nominations SET status = $2, locked = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, locked, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update nomination status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListDetail returns all nominations joined with candidate profile fields.
func (r *NominationRepository) ListDetail(ctx context.Context) ([]models.NominationDetail, error) {
	const query = `SELECT n.id, n.user_id, n.positions, n.cpi, n.status, n.locked, n.created_at, n.updated_at,
       u.name AS candidate_name, u.email AS candidate_email, u.roll_no AS candidate_roll_no, u.department AS department
FROM nominations n
JOIN users u ON u.id = n.user_id
ORDER BY n.created_at DESC`
	var items []models.NominationDetail
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list nominations: %w", err)
	}
	return items, nil
}

// ListDetailByStatus returns nominations in a given status with candidate fields.
func (r *NominationRepository) ListDetailByStatus(ctx context.Context, status models.NominationStatus) ([]models.NominationDetail, error) {
	const query = `SELECT n.id, n.user_id, n.positions, n.cpi, n.status, n.locked, n.created_at, n.updated_at,
       u.name AS candidate_name, u.email AS candidate_email, u.roll_no AS candidate_roll_no, u.department AS department
FROM nominations n
JOIN users u ON u.id = n.user_id
WHERE n.status = $1
ORDER BY n.created_at DESC`
	var items []models.NominationDetail
	if err := r.db.SelectContext(ctx, &items, query, status); err != nil {
		return nil, fmt.Errorf("list nominations by status: %w", err)
	}
	return items, nil
}
