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

// ManifestoRepository provides database access for phased manifesto uploads.
type ManifestoRepository struct {
	db *sqlx.DB
}

// NewManifestoRepository creates a new instance of ManifestoRepository.
func NewManifestoRepository(db *sqlx.DB) *ManifestoRepository {
	return &ManifestoRepository{db: db}
}

const manifestoColumns = `id, nomination_id, phase, file_name, file_url, storage_key, status, created_at, updated_at`

// Create inserts a new manifesto row.
func (r *ManifestoRepository) Create(ctx context.Context, m *models.Manifesto) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	const query = `INSERT INTO manifestos (id, nomination_id, phase, file_name, file_url, storage_key, status, created_at, updated_at)
VALUES (:id, :nomination_id, :phase, :file_name, :file_url, :storage_key, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("create manifesto: %w", err)
	}
	return nil
}

// FindByID returns a manifesto by identifier.
func (r *ManifestoRepository) FindByID(ctx context.Context, id string) (*models.Manifesto, error) {
	query := fmt.Sprintf(`SELECT %s FROM manifestos WHERE id = $1 LIMIT 1`, manifestoColumns)
	var m models.Manifesto
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find manifesto by id: %w", err)
	}
	return &m, nil
}

// FindByNominationAndPhase returns the single manifesto for a nomination and
// phase, if one exists.
func (r *ManifestoRepository) FindByNominationAndPhase(ctx context.Context, nominationID string, phase models.ManifestoPhase) (*models.Manifesto, error) {
	query := fmt.Sprintf(`SELECT %s FROM manifestos WHERE nomination_id = $1 AND phase = $2 LIMIT 1`, manifestoColumns)
	var m models.Manifesto
	if err := r.db.GetContext(ctx, &m, query, nominationID, phase); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find manifesto by nomination and phase: %w", err)
	}
	return &m, nil
}

// UpdateFile replaces the stored file reference in place, keeping the row
// identity stable across re-uploads. Status is reset alongside.
func (r *ManifestoRepository) UpdateFile(ctx context.Context, id, fileName, fileURL, storageKey string, status models.ManifestoStatus) error {
	const query = `UPDATE manifestos
SET file_name = $2, file_url = $3, storage_key = $4, status = $5, updated_at = $6
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, fileName, fileURL, storageKey, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update manifesto file: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus changes a manifesto's review status.
func (r *ManifestoRepository) UpdateStatus(ctx context.Context, id string, status models.ManifestoStatus) error {
	const query = `UPDATE manifestos SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update manifesto status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a manifesto row.
func (r *ManifestoRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM manifestos WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete manifesto: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByNomination returns all manifestos belonging to a nomination.
func (r *ManifestoRepository) ListByNomination(ctx context.Context, nominationID string) ([]models.Manifesto, error) {
	query := fmt.Sprintf(`SELECT %s FROM manifestos WHERE nomination_id = $1 ORDER BY phase ASC`, manifestoColumns)
	var items []models.Manifesto
	if err := r.db.SelectContext(ctx, &items, query, nominationID); err != nil {
		return nil, fmt.Errorf("list manifestos by nomination: %w", err)
	}
	return items, nil
}

// ListDetailByPhase returns manifestos for a phase with candidate fields.
// Reviewers see accepted candidates' submissions only.
func (r *ManifestoRepository) ListDetailByPhase(ctx context.Context, phase models.ManifestoPhase) ([]models.ManifestoDetail, error) {
	const query = `SELECT m.id, m.nomination_id, m.phase, m.file_name, m.file_url, m.storage_key, m.status, m.created_at, m.updated_at,
       u.name AS candidate_name, u.email AS candidate_email, u.roll_no AS candidate_roll_no, n.positions AS positions
FROM manifestos m
JOIN nominations n ON n.id = m.nomination_id
JOIN users u ON u.id = n.user_id
WHERE m.phase = $1 AND n.status = $2
ORDER BY m.created_at DESC`
	var items []models.ManifestoDetail
	if err := r.db.SelectContext(ctx, &items, query, phase, models.NominationAccepted); err != nil {
		return nil, fmt.Errorf("list manifestos by phase: %w", err)
	}
	return items, nil
}

// ListAllDetail returns every manifesto with candidate fields, for export.
func (r *ManifestoRepository) ListAllDetail(ctx context.Context) ([]models.ManifestoDetail, error) {
	const query = `SELECT m.id, m.nomination_id, m.phase, m.file_name, m.file_url, m.storage_key, m.status, m.created_at, m.updated_at,
       u.name AS candidate_name, u.email AS candidate_email, u.roll_no AS candidate_roll_no, n.positions AS positions
FROM manifestos m
JOIN nominations n ON n.id = m.nomination_id
JOIN users u ON u.id = n.user_id
ORDER BY m.phase ASC, m.created_at DESC`
	var items []models.ManifestoDetail
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list manifestos: %w", err)
	}
	return items, nil
}
